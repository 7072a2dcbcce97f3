// Package session holds the per-browser state of the calculator: the login
// gate and the noise source table it unlocks.
package session

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/csventilacion-cmyk/calculadoradb/internal/noise"
)

// Session is the state owned by one browser cookie
type Session struct {
	ID        uuid.UUID
	Gate      Gate
	Table     *noise.Table
	CreatedAt time.Time
	LastSeen  time.Time
}

// New creates a logged out session whose table holds the default sources
func New(now time.Time) *Session {
	return &Session{
		ID:        uuid.New(),
		Table:     noise.NewTable(noise.DefaultSources()),
		CreatedAt: now,
		LastSeen:  now,
	}
}

// Clone returns a deep copy that can be read without holding any lock
func (s *Session) Clone() *Session {
	out := *s
	if s.Table != nil {
		out.Table = noise.NewTable(s.Table.Rows())
	}
	return &out
}

// Summary computes the aggregate of the current table
func (s *Session) Summary() noise.Result {
	if s.Table == nil {
		return noise.Summarize(nil)
	}
	return noise.Summarize(s.Table.Rows())
}

type ctxKey struct{}

// WithID stores the session ID resolved for a request
func WithID(ctx context.Context, id uuid.UUID) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// IDFromContext returns the session ID stored by WithID
func IDFromContext(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(ctxKey{}).(uuid.UUID)
	return id, ok
}
