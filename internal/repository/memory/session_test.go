package memory

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/csventilacion-cmyk/calculadoradb/internal/repository"
	"github.com/csventilacion-cmyk/calculadoradb/internal/session"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionRepository_CreateGet(t *testing.T) {
	ctx := context.Background()
	repo := NewSessionRepository()

	s := session.New(time.Now())
	require.NoError(t, repo.Create(ctx, s))
	assert.Error(t, repo.Create(ctx, s), "duplicate ID")

	got, err := repo.GetByID(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, s.ID, got.ID)
	assert.Equal(t, 2, got.Table.Len())

	// callers only ever hold copies
	got.Table.Reset()
	again, err := repo.GetByID(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, again.Table.Len())

	_, err = repo.GetByID(ctx, uuid.New())
	assert.ErrorIs(t, err, repository.ErrSessionNotFound)
}

func TestSessionRepository_Update(t *testing.T) {
	ctx := context.Background()
	repo := NewSessionRepository()
	s := session.New(time.Now())
	require.NoError(t, repo.Create(ctx, s))

	updated, err := repo.Update(ctx, s.ID, func(s *session.Session) error {
		s.Table.Add()
		s.Gate.Authenticated = true
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, updated.Table.Len())
	assert.True(t, updated.Gate.Authenticated)

	_, err = repo.Update(ctx, s.ID, func(s *session.Session) error {
		s.Table.Reset()
		return errors.New("boom")
	})
	assert.EqualError(t, err, "boom")

	got, err := repo.GetByID(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, got.Table.Len(), "failed update must not be kept")

	_, err = repo.Update(ctx, uuid.New(), func(*session.Session) error { return nil })
	assert.ErrorIs(t, err, repository.ErrSessionNotFound)
}

func TestSessionRepository_DeleteIdle(t *testing.T) {
	ctx := context.Background()
	repo := NewSessionRepository()

	clock := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	repo.now = func() time.Time { return clock }

	old := session.New(clock)
	fresh := session.New(clock)
	require.NoError(t, repo.Create(ctx, old))
	require.NoError(t, repo.Create(ctx, fresh))

	clock = clock.Add(2 * time.Hour)
	_, err := repo.GetByID(ctx, fresh.ID)
	require.NoError(t, err)

	removed, err := repo.DeleteIdle(ctx, clock.Add(-time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 1, removed)
	assert.Equal(t, 1, repo.Len())

	_, err = repo.GetByID(ctx, old.ID)
	assert.ErrorIs(t, err, repository.ErrSessionNotFound)

	require.NoError(t, repo.Delete(ctx, fresh.ID))
	require.NoError(t, repo.Delete(ctx, fresh.ID))
	assert.Equal(t, 0, repo.Len())
}

func TestSessionRepository_ConcurrentUpdates(t *testing.T) {
	ctx := context.Background()
	repo := NewSessionRepository()
	s := session.New(time.Now())
	require.NoError(t, repo.Create(ctx, s))

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := repo.Update(ctx, s.ID, func(s *session.Session) error {
				s.Table.Add()
				return nil
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	got, err := repo.GetByID(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, 52, got.Table.Len())
}
