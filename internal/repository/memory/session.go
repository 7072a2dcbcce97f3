package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/csventilacion-cmyk/calculadoradb/internal/repository"
	"github.com/csventilacion-cmyk/calculadoradb/internal/session"
	"github.com/google/uuid"
)

// SessionRepository implements repository.SessionRepository in process memory
type SessionRepository struct {
	mu       sync.Mutex
	sessions map[uuid.UUID]*session.Session
	now      func() time.Time
}

// NewSessionRepository creates an empty in-memory session repository
func NewSessionRepository() *SessionRepository {
	return &SessionRepository{
		sessions: make(map[uuid.UUID]*session.Session),
		now:      time.Now,
	}
}

// Create stores a copy of s
func (r *SessionRepository) Create(ctx context.Context, s *session.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.sessions[s.ID]; exists {
		return fmt.Errorf("session %s already exists", s.ID)
	}
	r.sessions[s.ID] = s.Clone()
	return nil
}

// GetByID returns a copy of the stored session and marks it as seen
func (r *SessionRepository) GetByID(ctx context.Context, id uuid.UUID) (*session.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[id]
	if !ok {
		return nil, repository.ErrSessionNotFound
	}
	s.LastSeen = r.now()
	return s.Clone(), nil
}

// Update applies fn to a working copy and stores it only when fn succeeds
func (r *SessionRepository) Update(ctx context.Context, id uuid.UUID, fn func(*session.Session) error) (*session.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[id]
	if !ok {
		return nil, repository.ErrSessionNotFound
	}
	s.LastSeen = r.now()

	working := s.Clone()
	if err := fn(working); err != nil {
		return nil, err
	}
	r.sessions[id] = working
	return working.Clone(), nil
}

// Delete removes a session; deleting an unknown ID is not an error
func (r *SessionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.sessions, id)
	return nil
}

// DeleteIdle removes sessions whose LastSeen is before cutoff
func (r *SessionRepository) DeleteIdle(ctx context.Context, cutoff time.Time) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	removed := 0
	for id, s := range r.sessions {
		if s.LastSeen.Before(cutoff) {
			delete(r.sessions, id)
			removed++
		}
	}
	return removed, nil
}

// Len returns the number of stored sessions
func (r *SessionRepository) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}
