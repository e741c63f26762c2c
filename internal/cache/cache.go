package cache

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Kind names a cached resource. Exactly one slot exists per kind, so the
// store never needs an eviction policy.
type Kind string

const (
	KindBalance      Kind = "balance"
	KindTransactions Kind = "transactions"
)

// Window returns the freshness window for a resource kind. A record older
// than its window is stale and must be re-fetched on explicit requests.
func (k Kind) Window() time.Duration {
	switch k {
	case KindTransactions:
		return time.Hour
	default:
		return 24 * time.Hour
	}
}

type Status string

const (
	StatusSuccess Status = "success"
	StatusError   Status = "error"
)

// Record is one cached fetch result. Payload holds the already-sanitized
// resource; nothing provider-internal is ever written here.
type Record struct {
	Payload   json.RawMessage `json:"payload"`
	FetchedAt time.Time       `json:"fetched_at"`
	Status    Status          `json:"status"`
}

// Fresh reports whether rec can be served without a provider call at now.
func Fresh(rec Record, kind Kind, now time.Time) bool {
	if rec.Status != StatusSuccess {
		return false
	}
	return now.Sub(rec.FetchedAt) < kind.Window()
}

// Store keeps one JSON file per kind under dir. Stale records are retained,
// never deleted; staleness is decided by the caller via Fresh.
type Store struct {
	mu  sync.Mutex
	dir string
}

func New(dir string) *Store {
	return &Store{dir: dir}
}

func (s *Store) file(kind Kind) string {
	return filepath.Join(s.dir, string(kind)+"_cache.json")
}

// Get returns the stored record for kind, fresh or not. Missing or
// unreadable files are reported as absent.
func (s *Store) Get(kind Kind) (Record, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, err := os.ReadFile(s.file(kind))
	if err != nil {
		return Record{}, false
	}
	var rec Record
	if err := json.Unmarshal(b, &rec); err != nil {
		return Record{}, false
	}
	return rec, true
}

// Put overwrites the slot for kind atomically (temp file + rename).
func (s *Store) Put(kind Kind, rec Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(s.dir, "."+string(kind)+"-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(b); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	return os.Rename(tmpName, s.file(kind))
}
