package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/csventilacion-cmyk/calculadoradb/internal/calculator"
	"github.com/csventilacion-cmyk/calculadoradb/internal/session"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// SessionCookieName is the cookie carrying the session ID
const SessionCookieName = "calc_session"

// SessionMiddleware binds every request to a session, issuing a new one
// (and its cookie) when the request carries none or an unknown ID
func SessionMiddleware(svc calculator.Service, secureCookie bool) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if skipSession(r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}
			ctx := r.Context()

			if id, ok := readSessionCookie(r); ok {
				if _, err := svc.Get(ctx, id); err == nil {
					next.ServeHTTP(w, r.WithContext(session.WithID(ctx, id)))
					return
				}
			}

			if _, err := svc.Sweep(ctx); err != nil {
				log.Warn().Err(err).Msg("Failed to sweep idle sessions")
			}

			sess, err := svc.Start(ctx)
			if err != nil {
				log.Error().Err(err).Msg("Failed to start session")
				http.Error(w, "failed to start session", http.StatusInternalServerError)
				return
			}
			log.Info().Str("sessionID", sess.ID.String()).Msg("Started new session")

			http.SetCookie(w, &http.Cookie{
				Name:     SessionCookieName,
				Value:    sess.ID.String(),
				Path:     "/",
				HttpOnly: true,
				Secure:   secureCookie,
				SameSite: http.SameSiteLaxMode,
			})
			next.ServeHTTP(w, r.WithContext(session.WithID(ctx, sess.ID)))
		})
	}
}

// skipSession reports paths that never touch session state, so probes and
// docs do not allocate sessions
func skipSession(path string) bool {
	switch path {
	case "/health", "/logo":
		return true
	}
	return strings.HasPrefix(path, "/api/docs") || strings.HasPrefix(path, "/api/openapi") || strings.HasPrefix(path, "/schemas/")
}

func readSessionCookie(r *http.Request) (uuid.UUID, bool) {
	cookie, err := r.Cookie(SessionCookieName)
	if err != nil {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(strings.TrimSpace(cookie.Value))
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

// ZerologLogger returns a Chi middleware that logs HTTP requests using zerolog
func ZerologLogger() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			defer func() {
				log.Info().
					Str("method", r.Method).
					Str("path", r.URL.Path).
					Str("remote_ip", r.RemoteAddr).
					Str("request_id", middleware.GetReqID(r.Context())).
					Int("status", ww.Status()).
					Dur("latency", time.Since(start)).
					Str("user_agent", r.UserAgent()).
					Msg("HTTP request")
			}()

			next.ServeHTTP(ww, r)
		})
	}
}
