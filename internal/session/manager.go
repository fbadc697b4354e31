package session

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"
)

// SnapshotRepository persists session state so version history survives a
// restart. Implementations must treat a missing snapshot as (nil, false, nil).
type SnapshotRepository interface {
	Save(ctx context.Context, sessionID string, state []byte) error
	Load(ctx context.Context, sessionID string) ([]byte, bool, error)
}

// Manager owns the live sessions of this process, keyed by session ID.
// Sessions are created on first touch; when a snapshot repository is
// configured, first touch restores persisted state.
type Manager struct {
	mu       sync.Mutex
	sessions map[string]*Session
	repo     SnapshotRepository // optional
}

// NewManager returns a Manager. repo may be nil to disable persistence.
func NewManager(repo SnapshotRepository) *Manager {
	return &Manager{
		sessions: make(map[string]*Session),
		repo:     repo,
	}
}

// Get returns the session for id, creating (and restoring) it if needed.
func (m *Manager) Get(ctx context.Context, id string) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()

	if sess, ok := m.sessions[id]; ok {
		return sess
	}

	sess := New(id)
	if m.repo != nil {
		data, found, err := m.repo.Load(ctx, id)
		if err != nil {
			log.Warn().Err(err).Str("session_id", id).Msg("Failed to load session snapshot, starting fresh")
		} else if found {
			if err := sess.UnmarshalState(data); err != nil {
				log.Warn().Err(err).Str("session_id", id).Msg("Corrupt session snapshot, starting fresh")
				sess = New(id)
			} else {
				log.Info().Str("session_id", id).Msg("Session restored from snapshot")
			}
		}
	}
	m.sessions[id] = sess
	return sess
}

// Persist writes the session's current state through the snapshot
// repository. No-op without one; persistence failures are logged, not
// surfaced, since the in-memory session remains authoritative for the
// conversation.
func (m *Manager) Persist(ctx context.Context, sess *Session) {
	if m.repo == nil {
		return
	}
	data, err := sess.MarshalState()
	if err != nil {
		log.Error().Err(err).Str("session_id", sess.ID).Msg("Failed to marshal session state")
		return
	}
	if err := m.repo.Save(ctx, sess.ID, data); err != nil {
		log.Warn().Err(err).Str("session_id", sess.ID).Msg("Failed to persist session snapshot")
	}
}
