// internal/session/store.go
package session

import (
	"sync"

	"github.com/google/uuid"
)

// FormState is the in-progress multi-step form for one chat session. It
// is the only context that survives between messages, so the engine
// records both the position and every collected field here.
type FormState struct {
	ID     uuid.UUID
	Kind   string
	Step   int
	Fields map[string]any
}

// NewFormState creates form state positioned at the first step.
func NewFormState(kind string) *FormState {
	return &FormState{
		ID:     uuid.New(),
		Kind:   kind,
		Step:   0,
		Fields: make(map[string]any),
	}
}

// Store tracks per-chat authentication and pending form state.
// Implementations must be safe for concurrent use; sessions are
// independent keys, so cross-session ordering is not a concern.
type Store interface {
	// IsAuthenticated reports whether the session has logged in.
	// Unknown sessions are unauthenticated.
	IsAuthenticated(chatID int64) bool

	// SetAuthenticated flips the login flag. Revoking authentication
	// also discards any pending form for the session.
	SetAuthenticated(chatID int64, authenticated bool)

	// PendingForm returns the in-progress form, if any.
	PendingForm(chatID int64) (*FormState, bool)

	// SetPendingForm replaces the session's pending form.
	SetPendingForm(chatID int64, state *FormState)

	// ClearPendingForm discards the pending form. Idempotent.
	ClearPendingForm(chatID int64)
}

type entry struct {
	authenticated bool
	pending       *FormState
}

type store struct {
	mu       sync.RWMutex
	sessions map[int64]*entry
}

// NewStore creates an in-memory session store. State is lost on
// restart; re-authentication is cheap.
func NewStore() Store {
	return &store{sessions: make(map[int64]*entry)}
}

func (s *store) IsAuthenticated(chatID int64) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.sessions[chatID]
	return ok && e.authenticated
}

func (s *store) SetAuthenticated(chatID int64, authenticated bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e := s.sessions[chatID]
	if e == nil {
		e = &entry{}
		s.sessions[chatID] = e
	}
	e.authenticated = authenticated
	if !authenticated {
		e.pending = nil
	}
}

func (s *store) PendingForm(chatID int64) (*FormState, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.sessions[chatID]
	if !ok || e.pending == nil {
		return nil, false
	}
	return e.pending, true
}

func (s *store) SetPendingForm(chatID int64, state *FormState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e := s.sessions[chatID]
	if e == nil {
		e = &entry{}
		s.sessions[chatID] = e
	}
	e.pending = state
}

func (s *store) ClearPendingForm(chatID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.sessions[chatID]; ok {
		e.pending = nil
	}
}
