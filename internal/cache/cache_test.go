package cache

import (
	"encoding/json"
	"testing"
	"time"
)

func TestFreshBoundaries(t *testing.T) {
	fetched := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	rec := Record{Payload: json.RawMessage(`{}`), FetchedAt: fetched, Status: StatusSuccess}

	cases := []struct {
		kind   Kind
		window time.Duration
	}{
		{KindBalance, 24 * time.Hour},
		{KindTransactions, time.Hour},
	}
	for _, tc := range cases {
		if !Fresh(rec, tc.kind, fetched.Add(tc.window-time.Second)) {
			t.Fatalf("%s: should be fresh just inside the window", tc.kind)
		}
		if Fresh(rec, tc.kind, fetched.Add(tc.window)) {
			t.Fatalf("%s: must be stale exactly at the window boundary", tc.kind)
		}
		if Fresh(rec, tc.kind, fetched.Add(tc.window+time.Second)) {
			t.Fatalf("%s: must be stale past the window", tc.kind)
		}
	}
}

func TestFreshRequiresSuccessStatus(t *testing.T) {
	rec := Record{FetchedAt: time.Now(), Status: StatusError}
	if Fresh(rec, KindBalance, time.Now()) {
		t.Fatalf("error record must never be fresh")
	}
}

func TestPutGetRoundTrip(t *testing.T) {
	s := New(t.TempDir())

	if _, ok := s.Get(KindBalance); ok {
		t.Fatalf("empty store should report absent")
	}

	rec := Record{
		Payload:   json.RawMessage(`{"balance":322.51,"currency":"AUD"}`),
		FetchedAt: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
		Status:    StatusSuccess,
	}
	if err := s.Put(KindBalance, rec); err != nil {
		t.Fatal(err)
	}
	got, ok := s.Get(KindBalance)
	if !ok {
		t.Fatalf("expected record")
	}
	if string(got.Payload) != string(rec.Payload) || !got.FetchedAt.Equal(rec.FetchedAt) || got.Status != rec.Status {
		t.Fatalf("round trip changed record: %+v", got)
	}
}

func TestSlotsAreIndependent(t *testing.T) {
	s := New(t.TempDir())
	if err := s.Put(KindBalance, Record{Payload: json.RawMessage(`1`), FetchedAt: time.Now(), Status: StatusSuccess}); err != nil {
		t.Fatal(err)
	}
	if _, ok := s.Get(KindTransactions); ok {
		t.Fatalf("writing one kind must not populate another")
	}
}

func TestStaleRecordRetained(t *testing.T) {
	s := New(t.TempDir())
	old := Record{
		Payload:   json.RawMessage(`{"balance":1}`),
		FetchedAt: time.Now().Add(-48 * time.Hour),
		Status:    StatusSuccess,
	}
	if err := s.Put(KindBalance, old); err != nil {
		t.Fatal(err)
	}
	got, ok := s.Get(KindBalance)
	if !ok {
		t.Fatalf("stale record must be retained and readable")
	}
	if Fresh(got, KindBalance, time.Now()) {
		t.Fatalf("48h old balance must not be fresh")
	}
}
