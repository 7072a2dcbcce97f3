package repository

import (
	"context"
	"errors"
	"time"

	"github.com/csventilacion-cmyk/calculadoradb/internal/session"
	"github.com/google/uuid"
)

// ErrSessionNotFound is returned when no session is stored under an ID
var ErrSessionNotFound = errors.New("session not found")

// SessionRepository defines the interface for session storage operations
type SessionRepository interface {
	Create(ctx context.Context, s *session.Session) error
	GetByID(ctx context.Context, id uuid.UUID) (*session.Session, error)
	// Update runs fn against the stored session while holding exclusive access
	// to it and returns a copy of the result. If fn fails nothing is kept.
	Update(ctx context.Context, id uuid.UUID, fn func(*session.Session) error) (*session.Session, error)
	Delete(ctx context.Context, id uuid.UUID) error
	// DeleteIdle removes sessions not seen since before cutoff and reports how many went
	DeleteIdle(ctx context.Context, cutoff time.Time) (int, error)
}
