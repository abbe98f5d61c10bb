package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// InterruptedMessage is the error recorded on sessions restored mid-generation.
const InterruptedMessage = "generation interrupted, please try again"

// ErrNotFound is returned for session ids that are neither live nor stored.
var ErrNotFound = errors.New("session not found")

// Manager owns the live sessions of this process and mirrors every change
// into a Store so a session can be restored after the process restarts.
type Manager struct {
	mu     sync.RWMutex
	live   map[string]*Session
	store  Store
	logger zerolog.Logger
}

func NewManager(store Store, logger zerolog.Logger) *Manager {
	if store == nil {
		store = NewMemoryStore()
	}
	return &Manager{
		live:   make(map[string]*Session),
		store:  store,
		logger: logger.With().Str("component", "session_manager").Logger(),
	}
}

// Create registers a fresh session.
func (m *Manager) Create(ctx context.Context) (*Session, error) {
	s := New(uuid.NewString())
	if err := m.store.Save(ctx, s.Snapshot()); err != nil {
		return nil, fmt.Errorf("persist session: %w", err)
	}
	m.mu.Lock()
	m.live[s.ID()] = s
	m.mu.Unlock()
	m.logger.Info().Str("session_id", s.ID()).Msg("session created")
	return s, nil
}

// Get returns the live session, restoring it from the store on a miss.
func (m *Manager) Get(ctx context.Context, id string) (*Session, error) {
	m.mu.RLock()
	s, ok := m.live[id]
	m.mu.RUnlock()
	if ok {
		return s, nil
	}

	snap, err := m.store.Load(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	if snap == nil {
		return nil, ErrNotFound
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	// another request may have restored it meanwhile
	if s, ok := m.live[id]; ok {
		return s, nil
	}
	s = Restore(*snap)
	if s.State() == StateGenerating {
		// the request that owned the ticket died with the previous process
		if err := s.GenerationFailed(InterruptedMessage); err == nil {
			if err := m.store.Save(ctx, s.Snapshot()); err != nil {
				m.logger.Warn().Err(err).Str("session_id", id).Msg("persist interrupted session failed")
			}
		}
	}
	m.live[id] = s
	m.logger.Info().Str("session_id", id).Str("state", string(s.State())).Msg("session restored")
	return s, nil
}

// Persist writes the current snapshot of s and returns it.
func (m *Manager) Persist(ctx context.Context, s *Session) (Snapshot, error) {
	snap := s.Snapshot()
	if err := m.store.Save(ctx, snap); err != nil {
		return snap, fmt.Errorf("persist session: %w", err)
	}
	return snap, nil
}

// Remove drops a session from memory and the store.
func (m *Manager) Remove(ctx context.Context, id string) error {
	m.mu.Lock()
	delete(m.live, id)
	m.mu.Unlock()
	return m.store.Delete(ctx, id)
}
