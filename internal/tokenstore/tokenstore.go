package tokenstore

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/TomHarkness/TransparentBalanceApp/internal/shared/models"
)

// Store persists the single provider credential across restarts. Load fails
// closed: a missing, malformed or expired record is reported as absent, so
// callers never have to distinguish "no token" from "bad token".
type Store struct {
	mu   sync.Mutex
	path string
	now  func() time.Time
}

func New(path string) *Store {
	return &Store{path: path, now: time.Now}
}

// NewWithClock is used by tests to control the expiry check.
func NewWithClock(path string, now func() time.Time) *Store {
	return &Store{path: path, now: now}
}

// Load returns the stored credential if it is still usable.
func (s *Store) Load() (models.Credential, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, err := os.ReadFile(s.path)
	if err != nil {
		return models.Credential{}, false
	}
	var cred models.Credential
	if err := json.Unmarshal(b, &cred); err != nil {
		return models.Credential{}, false
	}
	if !cred.Usable(s.now()) {
		return models.Credential{}, false
	}
	return cred, true
}

// Save replaces the stored credential. The record is written to a temp file
// and renamed into place so a concurrent Load never sees a partial write.
func (s *Store) Save(cred models.Credential) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, err := json.Marshal(cred)
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".token-*")
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
	if err := os.Chmod(tmpName, 0600); err != nil {
		os.Remove(tmpName)
		return err
	}
	return os.Rename(tmpName, s.path)
}
