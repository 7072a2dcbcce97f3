package handlers

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/csventilacion-cmyk/calculadoradb/internal/calculator"
	"github.com/csventilacion-cmyk/calculadoradb/internal/noise"
	"github.com/csventilacion-cmyk/calculadoradb/internal/repository"
	"github.com/csventilacion-cmyk/calculadoradb/internal/repository/memory"
	"github.com/csventilacion-cmyk/calculadoradb/internal/session"
	"github.com/csventilacion-cmyk/calculadoradb/pkg/models"
	"github.com/danielgtaylor/huma/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testPassword = "csaires2025"

func newSessionContext(t *testing.T) (context.Context, calculator.Service) {
	t.Helper()
	svc := calculator.NewService(memory.NewSessionRepository(), testPassword, time.Hour)
	sess, err := svc.Start(context.Background())
	require.NoError(t, err)
	return session.WithID(context.Background(), sess.ID), svc
}

func statusOf(t *testing.T, err error) int {
	t.Helper()
	var se huma.StatusError
	require.True(t, errors.As(err, &se), "expected huma status error, got %v", err)
	return se.GetStatus()
}

func TestAPIError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "locked", err: calculator.ErrLocked, want: http.StatusUnauthorized},
		{name: "expired session", err: repository.ErrSessionNotFound, want: http.StatusUnauthorized},
		{name: "missing row", err: noise.ErrRowNotFound, want: http.StatusNotFound},
		{name: "out of bounds", err: noise.ErrLevelOutOfBounds, want: http.StatusUnprocessableEntity},
		{name: "not a number", err: noise.ErrInvalidLevel, want: http.StatusUnprocessableEntity},
		{name: "unknown field", err: noise.ErrUnknownField, want: http.StatusUnprocessableEntity},
		{name: "anything else", err: assert.AnError, want: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, statusOf(t, apiError(tt.err)))
		})
	}
}

func TestSessionHandler_LoginFlow(t *testing.T) {
	ctx, svc := newSessionContext(t)
	h := NewSessionHandler(svc)

	state, err := h.GetSession(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, "logged_out", state.Body.State)

	req := &models.LoginRequest{}
	req.Body.Password = "wrong"
	resp, err := h.Login(ctx, req)
	require.NoError(t, err, "a wrong password is reported in the body, not as an HTTP error")
	assert.Equal(t, "logged_out_error", resp.Body.State)
	assert.True(t, resp.Body.LoginFailed)
	assert.Equal(t, "Incorrect password. Try again.", resp.Body.Message)

	req.Body.Password = testPassword
	resp, err = h.Login(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, "logged_in", resp.Body.State)
	assert.True(t, resp.Body.Authenticated)
	assert.False(t, resp.Body.LoginFailed)

	out, err := h.Logout(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, "logged_out", out.Body.State)
	assert.False(t, out.Body.Authenticated)
}

func TestSessionHandler_NoSessionInContext(t *testing.T) {
	_, svc := newSessionContext(t)
	_, err := NewSessionHandler(svc).GetSession(context.Background(), nil)
	assert.Equal(t, http.StatusInternalServerError, statusOf(t, err))
}

func TestSourcesHandler(t *testing.T) {
	ctx, svc := newSessionContext(t)
	h := NewSourcesHandler(svc)

	_, err := h.ListSources(ctx, nil)
	assert.Equal(t, http.StatusUnauthorized, statusOf(t, err))

	_, err = svc.Login(ctx, mustID(t, ctx), testPassword)
	require.NoError(t, err)

	list, err := h.ListSources(ctx, nil)
	require.NoError(t, err)
	require.Len(t, list.Body.Sources, 2)
	assert.Equal(t, "Extractor S&P 1", list.Body.Sources[0].Name)
	assert.Equal(t, "66.76 dB", list.Body.Result.Readout)
	assert.Equal(t, 2, list.Body.Result.ActiveSources)
	assert.Empty(t, list.Body.Result.Warning)

	add := &models.AddSourceRequest{}
	added, err := h.AddSource(ctx, add)
	require.NoError(t, err)
	assert.Equal(t, 2, added.Body.Index)
	assert.Equal(t, noise.DefaultName, added.Body.Sources[2].Name)
	assert.Nil(t, added.Body.Sources[2].Level)

	upd := &models.UpdateSourceRequest{Index: 2}
	upd.Body.Level = noise.Level(62)
	updated, err := h.UpdateSource(ctx, upd)
	require.NoError(t, err)
	assert.Equal(t, 3, updated.Body.Result.ActiveSources)

	upd = &models.UpdateSourceRequest{Index: 7}
	_, err = h.UpdateSource(ctx, upd)
	assert.Equal(t, http.StatusNotFound, statusOf(t, err))

	removed, err := h.RemoveSource(ctx, &models.SourceIndexRequest{Index: 0})
	require.NoError(t, err)
	require.Len(t, removed.Body.Sources, 2)
	assert.Equal(t, "Inyector Muro", removed.Body.Sources[0].Name)
	assert.Equal(t, 0, removed.Body.Sources[0].Index)

	reset, err := h.ResetSources(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, reset.Body.Sources)
	assert.Equal(t, NoSourcesWarning, reset.Body.Result.Warning)
	assert.Equal(t, 0.0, reset.Body.Result.Total)
}

func TestSourcesHandler_Calculate(t *testing.T) {
	ctx, svc := newSessionContext(t)
	h := NewSourcesHandler(svc)

	req := &models.CalculateRequest{}
	req.Body.Sources = []models.CalculateSource{
		{Name: "a", Level: noise.Level(60)},
		{Name: "skipped"},
		{Name: "b", Level: noise.Level(60)},
	}

	_, err := h.Calculate(ctx, req)
	assert.Equal(t, http.StatusUnauthorized, statusOf(t, err))

	_, err = svc.Login(ctx, mustID(t, ctx), testPassword)
	require.NoError(t, err)

	resp, err := h.Calculate(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, "63.01 dB", resp.Body.Readout)
	assert.Equal(t, 2, resp.Body.ActiveSources)
	require.Len(t, resp.Body.Contributions, 2)
	assert.Equal(t, 2, resp.Body.Contributions[1].Index)

	// the stateless calculation leaves the table alone
	list, err := h.ListSources(ctx, nil)
	require.NoError(t, err)
	assert.Len(t, list.Body.Sources, 2)
}

func mustID(t *testing.T, ctx context.Context) uuid.UUID {
	t.Helper()
	id, ok := session.IDFromContext(ctx)
	require.True(t, ok)
	return id
}
