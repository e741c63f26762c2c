package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/TomHarkness/TransparentBalanceApp/internal/server/repository"
	"github.com/TomHarkness/TransparentBalanceApp/internal/shared/models"
)

const boundAccountKey = "bound_account_id"

type Repository struct {
	db *sql.DB
}

func New(dsn string) (*Repository, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS onboarding_sessions (
			id TEXT PRIMARY KEY,
			state TEXT NOT NULL,
			remote_user_id TEXT NOT NULL DEFAULT '',
			consent_url TEXT NOT NULL DEFAULT '',
			last_error TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL
		);
		CREATE TABLE IF NOT EXISTS settings (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL,
			updated_at TIMESTAMP NOT NULL
		);
	`); err != nil {
		return nil, err
	}
	return &Repository{db: db}, nil
}

func (r *Repository) Close() error { return r.db.Close() }

// Sessions

// CreateSession journals a new flow at its initial state.
func (r *Repository) CreateSession(ctx context.Context) (models.OnboardingSession, error) {
	now := time.Now().UTC()
	sess := models.OnboardingSession{
		ID:        uuid.NewString(),
		State:     models.StateIdle,
		CreatedAt: now,
		UpdatedAt: now,
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO onboarding_sessions(id,state,created_at,updated_at) VALUES(?,?,?,?)`,
		sess.ID, string(sess.State), sess.CreatedAt, sess.UpdatedAt)
	if err != nil {
		return models.OnboardingSession{}, err
	}
	return sess, nil
}

// SaveSession overwrites the journaled record for sess.ID.
func (r *Repository) SaveSession(ctx context.Context, sess models.OnboardingSession) error {
	sess.UpdatedAt = time.Now().UTC()
	res, err := r.db.ExecContext(ctx,
		`UPDATE onboarding_sessions SET state=?, remote_user_id=?, consent_url=?, last_error=?, updated_at=? WHERE id=?`,
		string(sess.State), sess.RemoteUserID, sess.ConsentURL, sess.LastError, sess.UpdatedAt, sess.ID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *Repository) GetSession(ctx context.Context, id string) (models.OnboardingSession, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id,state,remote_user_id,consent_url,last_error,created_at,updated_at FROM onboarding_sessions WHERE id=?`, id)
	var sess models.OnboardingSession
	var state string
	err := row.Scan(&sess.ID, &state, &sess.RemoteUserID, &sess.ConsentURL, &sess.LastError, &sess.CreatedAt, &sess.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.OnboardingSession{}, repository.ErrNotFound
		}
		return models.OnboardingSession{}, err
	}
	sess.State = models.OnboardingState(state)
	return sess, nil
}

// Account binding

// SetBoundAccountID persists the remote account identifier granted by the
// consent flow. This is the only durable artifact of a completed flow.
func (r *Repository) SetBoundAccountID(ctx context.Context, userID string) error {
	now := time.Now().UTC()
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO settings(key,value,updated_at) VALUES(?,?,?)
		 ON CONFLICT(key) DO UPDATE SET value=excluded.value, updated_at=excluded.updated_at`,
		boundAccountKey, userID, now)
	return err
}

// BoundAccountID returns the persisted account identifier, or
// repository.ErrNotFound if no flow has been granted yet.
func (r *Repository) BoundAccountID(ctx context.Context) (string, error) {
	row := r.db.QueryRowContext(ctx, `SELECT value FROM settings WHERE key=?`, boundAccountKey)
	var v string
	if err := row.Scan(&v); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", repository.ErrNotFound
		}
		return "", err
	}
	return v, nil
}
