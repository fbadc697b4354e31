package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// SessionRepository persists session state snapshots so version counters
// and history survive a restart. Implements session.SnapshotRepository.
type SessionRepository struct {
	db *DB
}

// NewSessionRepository creates a session snapshot repository.
func NewSessionRepository(db *DB) *SessionRepository {
	return &SessionRepository{db: db}
}

// Save upserts the state snapshot for a session.
func (r *SessionRepository) Save(ctx context.Context, sessionID string, state []byte) error {
	query := `
		INSERT INTO session_snapshots (session_id, state, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (session_id) DO UPDATE SET state = $2, updated_at = $3
	`
	if _, err := r.db.ExecContext(ctx, query, sessionID, state, time.Now().UTC()); err != nil {
		return fmt.Errorf("failed to save session snapshot: %w", err)
	}
	return nil
}

// Load returns the latest snapshot for a session; found is false when the
// session was never persisted.
func (r *SessionRepository) Load(ctx context.Context, sessionID string) ([]byte, bool, error) {
	var state []byte
	err := r.db.QueryRowContext(ctx,
		`SELECT state FROM session_snapshots WHERE session_id = $1`, sessionID,
	).Scan(&state)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to load session snapshot: %w", err)
	}
	return state, true, nil
}
