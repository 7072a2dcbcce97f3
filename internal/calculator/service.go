package calculator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/csventilacion-cmyk/calculadoradb/internal/noise"
	"github.com/csventilacion-cmyk/calculadoradb/internal/repository"
	"github.com/csventilacion-cmyk/calculadoradb/internal/session"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// ErrLocked is returned for table operations on a session that has not logged in
var ErrLocked = errors.New("session is not authenticated")

// SourceUpdate carries a partial edit of one row. Nil fields are left alone.
type SourceUpdate struct {
	Name       *string
	Level      *float64
	ClearLevel bool
}

type Service interface {
	Start(ctx context.Context) (*session.Session, error)
	Get(ctx context.Context, id uuid.UUID) (*session.Session, error)
	Login(ctx context.Context, id uuid.UUID, attempt string) (*session.Session, error)
	Logout(ctx context.Context, id uuid.UUID) (*session.Session, error)
	AddSource(ctx context.Context, id uuid.UUID, src *noise.Source) (*session.Session, int, error)
	UpdateSource(ctx context.Context, id uuid.UUID, index int, upd SourceUpdate) (*session.Session, error)
	EditSource(ctx context.Context, id uuid.UUID, index int, field, value string) (*session.Session, error)
	RemoveSource(ctx context.Context, id uuid.UUID, index int) (*session.Session, error)
	ResetSources(ctx context.Context, id uuid.UUID) (*session.Session, error)
	Sweep(ctx context.Context) (int, error)
}

type service struct {
	repository  repository.SessionRepository
	credential  string
	idleTimeout time.Duration
	now         func() time.Time
}

func NewService(repo repository.SessionRepository, credential string, idleTimeout time.Duration) Service {
	return &service{
		repository:  repo,
		credential:  credential,
		idleTimeout: idleTimeout,
		now:         time.Now,
	}
}

func (s *service) Start(ctx context.Context) (*session.Session, error) {
	sess := session.New(s.now())
	if err := s.repository.Create(ctx, sess); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	return sess, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*session.Session, error) {
	return s.repository.GetByID(ctx, id)
}

func (s *service) Login(ctx context.Context, id uuid.UUID, attempt string) (*session.Session, error) {
	sess, err := s.repository.Update(ctx, id, func(sess *session.Session) error {
		sess.Gate.Submit(attempt, s.credential)
		return nil
	})
	if err != nil {
		return nil, err
	}
	log.Info().Str("sessionID", id.String()).Str("state", string(sess.Gate.State())).Msg("Login attempt")
	return sess, nil
}

func (s *service) Logout(ctx context.Context, id uuid.UUID) (*session.Session, error) {
	return s.repository.Update(ctx, id, func(sess *session.Session) error {
		sess.Gate.Logout()
		return nil
	})
}

func (s *service) AddSource(ctx context.Context, id uuid.UUID, src *noise.Source) (*session.Session, int, error) {
	if src != nil && src.Level != nil {
		if err := noise.ValidateLevel(*src.Level); err != nil {
			return nil, 0, err
		}
	}

	index := -1
	sess, err := s.unlocked(ctx, id, func(sess *session.Session) error {
		if src == nil {
			index = sess.Table.Add()
		} else {
			index = sess.Table.Append(*src)
		}
		return nil
	})
	if err != nil {
		return nil, 0, err
	}
	return sess, index, nil
}

func (s *service) UpdateSource(ctx context.Context, id uuid.UUID, index int, upd SourceUpdate) (*session.Session, error) {
	if upd.Level != nil {
		if err := noise.ValidateLevel(*upd.Level); err != nil {
			return nil, err
		}
	}

	return s.unlocked(ctx, id, func(sess *session.Session) error {
		if upd.Name != nil {
			if err := sess.Table.Rename(index, *upd.Name); err != nil {
				return err
			}
		}
		switch {
		case upd.ClearLevel:
			return sess.Table.SetLevel(index, nil)
		case upd.Level != nil:
			return sess.Table.SetLevel(index, upd.Level)
		}
		// an empty update still has to point at an existing row
		_, err := sess.Table.Get(index)
		return err
	})
}

func (s *service) EditSource(ctx context.Context, id uuid.UUID, index int, field, value string) (*session.Session, error) {
	return s.unlocked(ctx, id, func(sess *session.Session) error {
		return sess.Table.Edit(index, field, value)
	})
}

func (s *service) RemoveSource(ctx context.Context, id uuid.UUID, index int) (*session.Session, error) {
	return s.unlocked(ctx, id, func(sess *session.Session) error {
		return sess.Table.Remove(index)
	})
}

func (s *service) ResetSources(ctx context.Context, id uuid.UUID) (*session.Session, error) {
	return s.unlocked(ctx, id, func(sess *session.Session) error {
		sess.Table.Reset()
		return nil
	})
}

// Sweep drops sessions idle for longer than the configured timeout. A zero
// timeout keeps sessions until restart.
func (s *service) Sweep(ctx context.Context) (int, error) {
	if s.idleTimeout <= 0 {
		return 0, nil
	}
	removed, err := s.repository.DeleteIdle(ctx, s.now().Add(-s.idleTimeout))
	if err != nil {
		return 0, err
	}
	if removed > 0 {
		log.Info().Int("removed", removed).Dur("idleTimeout", s.idleTimeout).Msg("Swept idle sessions")
	}
	return removed, nil
}

// unlocked runs fn only when the session has passed the login gate
func (s *service) unlocked(ctx context.Context, id uuid.UUID, fn func(*session.Session) error) (*session.Session, error) {
	return s.repository.Update(ctx, id, func(sess *session.Session) error {
		if !sess.Gate.Authenticated {
			return ErrLocked
		}
		return fn(sess)
	})
}
