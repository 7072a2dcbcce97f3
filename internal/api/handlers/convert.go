package handlers

import (
	"errors"

	"github.com/csventilacion-cmyk/calculadoradb/internal/calculator"
	"github.com/csventilacion-cmyk/calculadoradb/internal/noise"
	"github.com/csventilacion-cmyk/calculadoradb/internal/repository"
	"github.com/csventilacion-cmyk/calculadoradb/internal/session"
	"github.com/csventilacion-cmyk/calculadoradb/pkg/models"
	"github.com/danielgtaylor/huma/v2"
	"github.com/rs/zerolog/log"
)

// NoSourcesWarning is reported when no row has a level
const NoSourcesWarning = "Enter at least one source and its dB level."

func toSessionBody(g session.Gate) models.SessionStateBody {
	return models.SessionStateBody{
		State:         string(g.State()),
		Authenticated: g.Authenticated,
		LoginFailed:   g.LoginFailed,
		Message:       stateMessage(g.State()),
	}
}

func stateMessage(state session.State) string {
	switch state {
	case session.StateLoggedIn:
		return "Calculator unlocked"
	case session.StateLoggedOutError:
		return "Incorrect password. Try again."
	default:
		return "Enter the access password"
	}
}

func toSourcesBody(s *session.Session) models.SourcesBody {
	rows := s.Table.Rows()
	body := models.SourcesBody{
		Sources: make([]models.SourceRow, len(rows)),
		Result:  toResultBody(noise.Summarize(rows)),
	}
	for i, r := range rows {
		body.Sources[i] = models.SourceRow{Index: i, Name: r.Name, Level: r.Level}
	}
	return body
}

func toResultBody(res noise.Result) models.ResultBody {
	body := models.ResultBody{
		Total:         res.Total,
		Readout:       res.Readout,
		ActiveSources: res.Sources,
		Contributions: make([]models.Contribution, len(res.Contributions)),
	}
	if res.NoSources {
		body.Warning = NoSourcesWarning
	}
	for i, c := range res.Contributions {
		body.Contributions[i] = models.Contribution{Index: c.Index, Name: c.Name, Level: c.Level, Share: c.Share}
	}
	return body
}

// apiError maps domain errors onto HTTP problem responses
func apiError(err error) error {
	switch {
	case errors.Is(err, calculator.ErrLocked):
		return huma.Error401Unauthorized("Log in to use the calculator", err)
	case errors.Is(err, repository.ErrSessionNotFound):
		return huma.Error401Unauthorized("Session expired, reload the page", err)
	case errors.Is(err, noise.ErrRowNotFound):
		return huma.Error404NotFound("Noise source not found", err)
	case errors.Is(err, noise.ErrLevelOutOfBounds),
		errors.Is(err, noise.ErrInvalidLevel),
		errors.Is(err, noise.ErrUnknownField):
		return huma.Error422UnprocessableEntity(err.Error(), err)
	default:
		log.Error().Err(err).Msg("Unexpected calculator error")
		return huma.Error500InternalServerError("Internal error", err)
	}
}
