package handlers

import (
	"context"
	"errors"

	"github.com/csventilacion-cmyk/calculadoradb/internal/calculator"
	"github.com/csventilacion-cmyk/calculadoradb/internal/session"
	"github.com/csventilacion-cmyk/calculadoradb/pkg/models"
	"github.com/danielgtaylor/huma/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

var errNoSession = errors.New("no session bound to request")

// SessionHandler handles login state requests
type SessionHandler struct {
	svc calculator.Service
}

// NewSessionHandler creates a new session handler
func NewSessionHandler(svc calculator.Service) *SessionHandler {
	return &SessionHandler{svc: svc}
}

// GetSession returns the login state of the caller's session
func (h *SessionHandler) GetSession(ctx context.Context, _ *struct{}) (*models.GetSessionResponse, error) {
	id, err := sessionID(ctx)
	if err != nil {
		return nil, err
	}

	sess, err := h.svc.Get(ctx, id)
	if err != nil {
		return nil, apiError(err)
	}

	return &models.GetSessionResponse{Body: toSessionBody(sess.Gate)}, nil
}

// Login submits a password attempt. A wrong password is not an HTTP error;
// the returned state carries the failure flag.
func (h *SessionHandler) Login(ctx context.Context, req *models.LoginRequest) (*models.LoginResponse, error) {
	id, err := sessionID(ctx)
	if err != nil {
		return nil, err
	}

	sess, err := h.svc.Login(ctx, id, req.Body.Password)
	if err != nil {
		return nil, apiError(err)
	}

	return &models.LoginResponse{Body: toSessionBody(sess.Gate)}, nil
}

// Logout locks the calculator again
func (h *SessionHandler) Logout(ctx context.Context, _ *struct{}) (*models.LogoutResponse, error) {
	id, err := sessionID(ctx)
	if err != nil {
		return nil, err
	}

	sess, err := h.svc.Logout(ctx, id)
	if err != nil {
		return nil, apiError(err)
	}
	log.Info().Str("sessionID", id.String()).Msg("Session logged out")

	return &models.LogoutResponse{Body: toSessionBody(sess.Gate)}, nil
}

func sessionID(ctx context.Context) (uuid.UUID, error) {
	id, ok := session.IDFromContext(ctx)
	if !ok {
		return uuid.Nil, huma.Error500InternalServerError("Session not resolved", errNoSession)
	}
	return id, nil
}
