package handlers

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"strconv"
	"time"

	"github.com/csventilacion-cmyk/calculadoradb/internal/calculator"
	"github.com/csventilacion-cmyk/calculadoradb/internal/noise"
	"github.com/csventilacion-cmyk/calculadoradb/internal/repository"
	"github.com/csventilacion-cmyk/calculadoradb/internal/session"
	"github.com/csventilacion-cmyk/calculadoradb/internal/storage"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

//go:embed templates/*.html
var templateFS embed.FS

var pageTemplates = template.Must(template.New("").Funcs(template.FuncMap{
	"level":   func(v float64) string { return strconv.FormatFloat(v, 'f', 1, 64) + " dB" },
	"percent": func(v float64) string { return fmt.Sprintf("%.1f %%", v*100) },
}).ParseFS(templateFS, "templates/*.html"))

// PageConfig holds the text shown around the calculator
type PageConfig struct {
	Title   string
	Company string
	LogoKey string
}

// PageHandler serves the HTML calculator
type PageHandler struct {
	svc    calculator.Service
	assets storage.AssetStore
	cfg    PageConfig
	now    func() time.Time
}

// NewPageHandler creates a new page handler
func NewPageHandler(svc calculator.Service, assets storage.AssetStore, cfg PageConfig) *PageHandler {
	return &PageHandler{svc: svc, assets: assets, cfg: cfg, now: time.Now}
}

type rowView struct {
	Index int
	Name  string
	Level string
}

type pageData struct {
	Title       string
	Company     string
	Year        int
	HasLogo     bool
	LoggedIn    bool
	LoginFailed bool
	Error       string
	Rows        []rowView
	Result      noise.Result
	MinLevel    float64
	MaxLevel    float64
	LevelStep   float64
}

// Index renders the login page or the calculator, depending on the session gate
func (h *PageHandler) Index(w http.ResponseWriter, r *http.Request) {
	id, ok := session.IDFromContext(r.Context())
	if !ok {
		http.Error(w, "session not resolved", http.StatusInternalServerError)
		return
	}

	sess, err := h.svc.Get(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.render(w, r, http.StatusOK, sess, "")
}

// Login handles the password form
func (h *PageHandler) Login(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, func(ctx context.Context, id uuid.UUID) (*session.Session, error) {
		return h.svc.Login(ctx, id, r.PostFormValue("password"))
	})
}

// Logout handles the logout button
func (h *PageHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, func(ctx context.Context, id uuid.UUID) (*session.Session, error) {
		return h.svc.Logout(ctx, id)
	})
}

// AddSource appends a placeholder row
func (h *PageHandler) AddSource(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, func(ctx context.Context, id uuid.UUID) (*session.Session, error) {
		sess, _, err := h.svc.AddSource(ctx, id, nil)
		return sess, err
	})
}

// EditSource saves the name and level fields of one row
func (h *PageHandler) EditSource(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, func(ctx context.Context, id uuid.UUID) (*session.Session, error) {
		index, err := rowIndex(r)
		if err != nil {
			return nil, err
		}
		level, err := noise.ParseLevel(r.PostFormValue("level"))
		if err != nil {
			return nil, err
		}
		name := r.PostFormValue("name")
		return h.svc.UpdateSource(ctx, id, index, calculator.SourceUpdate{
			Name:       &name,
			Level:      level,
			ClearLevel: level == nil,
		})
	})
}

// RemoveSource deletes one row
func (h *PageHandler) RemoveSource(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, func(ctx context.Context, id uuid.UUID) (*session.Session, error) {
		index, err := rowIndex(r)
		if err != nil {
			return nil, err
		}
		return h.svc.RemoveSource(ctx, id, index)
	})
}

// ResetSources empties the table
func (h *PageHandler) ResetSources(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, func(ctx context.Context, id uuid.UUID) (*session.Session, error) {
		return h.svc.ResetSources(ctx, id)
	})
}

// Logo serves the optional logo asset, or 404 when there is none
func (h *PageHandler) Logo(w http.ResponseWriter, r *http.Request) {
	asset, err := h.assets.Fetch(r.Context(), h.cfg.LogoKey)
	if err != nil {
		if !errors.Is(err, storage.ErrAssetNotFound) {
			log.Warn().Err(err).Str("key", h.cfg.LogoKey).Msg("Failed to load logo")
		}
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", asset.ContentType)
	w.Header().Set("Cache-Control", "public, max-age=3600")
	w.Write(asset.Data)
}

// mutate runs one form action and redirects back to the page. Input errors
// re-render the page with the message instead.
func (h *PageHandler) mutate(w http.ResponseWriter, r *http.Request, action func(context.Context, uuid.UUID) (*session.Session, error)) {
	id, ok := session.IDFromContext(r.Context())
	if !ok {
		http.Error(w, "session not resolved", http.StatusInternalServerError)
		return
	}

	if _, err := action(r.Context(), id); err != nil {
		h.fail(w, r, err)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *PageHandler) fail(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, calculator.ErrLocked), errors.Is(err, repository.ErrSessionNotFound):
		http.Redirect(w, r, "/", http.StatusSeeOther)
	case errors.Is(err, noise.ErrRowNotFound),
		errors.Is(err, noise.ErrLevelOutOfBounds),
		errors.Is(err, noise.ErrInvalidLevel),
		errors.Is(err, errBadIndex):
		id, _ := session.IDFromContext(r.Context())
		sess, getErr := h.svc.Get(r.Context(), id)
		if getErr != nil {
			http.Redirect(w, r, "/", http.StatusSeeOther)
			return
		}
		h.render(w, r, http.StatusUnprocessableEntity, sess, formMessage(err))
	default:
		log.Error().Err(err).Str("path", r.URL.Path).Msg("Calculator page action failed")
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func (h *PageHandler) render(w http.ResponseWriter, r *http.Request, status int, sess *session.Session, message string) {
	data := pageData{
		Title:       h.cfg.Title,
		Company:     h.cfg.Company,
		Year:        h.now().Year(),
		HasLogo:     h.hasLogo(r.Context()),
		LoggedIn:    sess.Gate.Authenticated,
		LoginFailed: sess.Gate.LoginFailed,
		Error:       message,
		MinLevel:    noise.MinLevel,
		MaxLevel:    noise.MaxLevel,
		LevelStep:   noise.LevelStep,
	}
	if data.LoggedIn {
		rows := sess.Table.Rows()
		data.Result = noise.Summarize(rows)
		for i, row := range rows {
			view := rowView{Index: i, Name: row.Name}
			if row.Level != nil {
				view.Level = strconv.FormatFloat(*row.Level, 'f', -1, 64)
			}
			data.Rows = append(data.Rows, view)
		}
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	if err := pageTemplates.ExecuteTemplate(w, "page", data); err != nil {
		log.Error().Err(err).Msg("Failed to render calculator page")
	}
}

func (h *PageHandler) hasLogo(ctx context.Context) bool {
	if h.assets == nil || h.cfg.LogoKey == "" {
		return false
	}
	err := h.assets.Stat(ctx, h.cfg.LogoKey)
	if err != nil && !errors.Is(err, storage.ErrAssetNotFound) {
		log.Warn().Err(err).Str("key", h.cfg.LogoKey).Msg("Failed to check logo")
	}
	return err == nil
}

var errBadIndex = errors.New("invalid row index")

func rowIndex(r *http.Request) (int, error) {
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil || index < 0 {
		return 0, fmt.Errorf("%w: %q", errBadIndex, chi.URLParam(r, "index"))
	}
	return index, nil
}

func formMessage(err error) string {
	switch {
	case errors.Is(err, noise.ErrLevelOutOfBounds):
		return fmt.Sprintf("El nivel debe estar entre %.0f y %.0f dB.", noise.MinLevel, noise.MaxLevel)
	case errors.Is(err, noise.ErrInvalidLevel):
		return "El nivel sonoro debe ser un número."
	default:
		return "La fila indicada no existe."
	}
}
