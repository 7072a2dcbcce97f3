package handlers

import (
	"context"

	"github.com/csventilacion-cmyk/calculadoradb/internal/calculator"
	"github.com/csventilacion-cmyk/calculadoradb/internal/noise"
	"github.com/csventilacion-cmyk/calculadoradb/pkg/models"
	"github.com/rs/zerolog/log"
)

// SourcesHandler handles noise source table requests
type SourcesHandler struct {
	svc calculator.Service
}

// NewSourcesHandler creates a new sources handler
func NewSourcesHandler(svc calculator.Service) *SourcesHandler {
	return &SourcesHandler{svc: svc}
}

// ListSources returns the table and its aggregate. Locked sessions get 401.
func (h *SourcesHandler) ListSources(ctx context.Context, _ *struct{}) (*models.ListSourcesResponse, error) {
	id, err := sessionID(ctx)
	if err != nil {
		return nil, err
	}

	sess, err := h.svc.Get(ctx, id)
	if err != nil {
		return nil, apiError(err)
	}
	if !sess.Gate.Authenticated {
		return nil, apiError(calculator.ErrLocked)
	}

	return &models.ListSourcesResponse{Body: toSourcesBody(sess)}, nil
}

// AddSource appends a row
func (h *SourcesHandler) AddSource(ctx context.Context, req *models.AddSourceRequest) (*models.AddSourceResponse, error) {
	id, err := sessionID(ctx)
	if err != nil {
		return nil, err
	}

	var src *noise.Source
	if req.Body.Name != "" || req.Body.Level != nil {
		src = &noise.Source{Name: req.Body.Name, Level: req.Body.Level}
	}

	sess, index, err := h.svc.AddSource(ctx, id, src)
	if err != nil {
		return nil, apiError(err)
	}
	log.Info().Str("sessionID", id.String()).Int("index", index).Msg("Noise source added")

	resp := &models.AddSourceResponse{}
	resp.Body.Index = index
	resp.Body.SourcesBody = toSourcesBody(sess)
	return resp, nil
}

// UpdateSource edits the name and/or level of one row
func (h *SourcesHandler) UpdateSource(ctx context.Context, req *models.UpdateSourceRequest) (*models.ListSourcesResponse, error) {
	id, err := sessionID(ctx)
	if err != nil {
		return nil, err
	}

	sess, err := h.svc.UpdateSource(ctx, id, req.Index, calculator.SourceUpdate{
		Name:       req.Body.Name,
		Level:      req.Body.Level,
		ClearLevel: req.Body.ClearLevel,
	})
	if err != nil {
		return nil, apiError(err)
	}

	return &models.ListSourcesResponse{Body: toSourcesBody(sess)}, nil
}

// RemoveSource deletes one row
func (h *SourcesHandler) RemoveSource(ctx context.Context, req *models.SourceIndexRequest) (*models.ListSourcesResponse, error) {
	id, err := sessionID(ctx)
	if err != nil {
		return nil, err
	}

	sess, err := h.svc.RemoveSource(ctx, id, req.Index)
	if err != nil {
		return nil, apiError(err)
	}

	return &models.ListSourcesResponse{Body: toSourcesBody(sess)}, nil
}

// ResetSources empties the table
func (h *SourcesHandler) ResetSources(ctx context.Context, _ *struct{}) (*models.ListSourcesResponse, error) {
	id, err := sessionID(ctx)
	if err != nil {
		return nil, err
	}

	sess, err := h.svc.ResetSources(ctx, id)
	if err != nil {
		return nil, apiError(err)
	}
	log.Info().Str("sessionID", id.String()).Msg("Noise source table reset")

	return &models.ListSourcesResponse{Body: toSourcesBody(sess)}, nil
}

// Calculate sums a posted list of levels without touching the session table
func (h *SourcesHandler) Calculate(ctx context.Context, req *models.CalculateRequest) (*models.CalculateResponse, error) {
	id, err := sessionID(ctx)
	if err != nil {
		return nil, err
	}
	sess, err := h.svc.Get(ctx, id)
	if err != nil {
		return nil, apiError(err)
	}
	if !sess.Gate.Authenticated {
		return nil, apiError(calculator.ErrLocked)
	}

	rows := make([]noise.Source, len(req.Body.Sources))
	for i, s := range req.Body.Sources {
		rows[i] = noise.Source{Name: s.Name, Level: s.Level}
	}

	return &models.CalculateResponse{Body: toResultBody(noise.Summarize(rows))}, nil
}
