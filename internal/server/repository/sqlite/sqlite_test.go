package sqlite

import (
	"context"
	"errors"
	"testing"

	"github.com/TomHarkness/TransparentBalanceApp/internal/server/repository"
	"github.com/TomHarkness/TransparentBalanceApp/internal/shared/models"
)

func TestSessionJournal(t *testing.T) {
	repo, err := New("file:sqlite_sessions?mode=memory&cache=shared")
	if err != nil {
		t.Fatal(err)
	}
	defer repo.Close()
	ctx := context.Background()

	sess, err := repo.CreateSession(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if sess.ID == "" || sess.State != models.StateIdle {
		t.Fatalf("new session: %+v", sess)
	}

	sess.State = models.StateIdentityCreated
	sess.RemoteUserID = "remote-1"
	if err := repo.SaveSession(ctx, sess); err != nil {
		t.Fatal(err)
	}

	got, err := repo.GetSession(ctx, sess.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.State != models.StateIdentityCreated || got.RemoteUserID != "remote-1" {
		t.Fatalf("journaled session: %+v", got)
	}

	sess.State = models.StateFailed
	sess.LastError = "provider returned 400 from /users"
	if err := repo.SaveSession(ctx, sess); err != nil {
		t.Fatal(err)
	}
	got, err = repo.GetSession(ctx, sess.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.State != models.StateFailed || got.LastError == "" {
		t.Fatalf("failure not journaled: %+v", got)
	}
}

func TestGetSessionNotFound(t *testing.T) {
	repo, err := New("file:sqlite_missing?mode=memory&cache=shared")
	if err != nil {
		t.Fatal(err)
	}
	defer repo.Close()

	_, err = repo.GetSession(context.Background(), "nope")
	if !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
}

func TestSaveSessionUnknownID(t *testing.T) {
	repo, err := New("file:sqlite_save_missing?mode=memory&cache=shared")
	if err != nil {
		t.Fatal(err)
	}
	defer repo.Close()

	err = repo.SaveSession(context.Background(), models.OnboardingSession{ID: "nope"})
	if !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
}

func TestBoundAccountID(t *testing.T) {
	repo, err := New("file:sqlite_bound?mode=memory&cache=shared")
	if err != nil {
		t.Fatal(err)
	}
	defer repo.Close()
	ctx := context.Background()

	if _, err := repo.BoundAccountID(ctx); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("empty settings should report ErrNotFound, got %v", err)
	}

	if err := repo.SetBoundAccountID(ctx, "remote-1"); err != nil {
		t.Fatal(err)
	}
	if err := repo.SetBoundAccountID(ctx, "remote-2"); err != nil {
		t.Fatal(err)
	}
	got, err := repo.BoundAccountID(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if got != "remote-2" {
		t.Fatalf("binding must overwrite, got %q", got)
	}
}
