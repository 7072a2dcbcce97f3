package api

import (
	"context"
	"net/http"
	"time"

	"github.com/csventilacion-cmyk/calculadoradb/internal/api/handlers"
	"github.com/csventilacion-cmyk/calculadoradb/internal/calculator"
	"github.com/csventilacion-cmyk/calculadoradb/internal/storage"
	"github.com/csventilacion-cmyk/calculadoradb/pkg/models"
	"github.com/danielgtaylor/huma/v2"
	"github.com/go-chi/chi/v5"
)

// Version is reported by the health endpoint and the OpenAPI document
const Version = "1.0.0"

// RegisterRoutes sets up all page and API routes. The router must already
// carry SessionMiddleware.
func RegisterRoutes(router chi.Router, api huma.API, svc calculator.Service, assets storage.AssetStore, page handlers.PageConfig) {
	// Initialize handlers
	pageHandler := handlers.NewPageHandler(svc, assets, page)
	sessionHandler := handlers.NewSessionHandler(svc)
	sourcesHandler := handlers.NewSourcesHandler(svc)

	// HTML calculator
	router.Get("/", pageHandler.Index)
	router.Get("/logo", pageHandler.Logo)
	router.Post("/login", pageHandler.Login)
	router.Post("/logout", pageHandler.Logout)
	router.Post("/sources", pageHandler.AddSource)
	router.Post("/sources/reset", pageHandler.ResetSources)
	router.Post("/sources/{index}", pageHandler.EditSource)
	router.Post("/sources/{index}/delete", pageHandler.RemoveSource)

	huma.Register(api, huma.Operation{
		OperationID: "health",
		Method:      http.MethodGet,
		Path:        "/health",
		Summary:     "Health check",
		Description: "Returns the health status of the service",
	}, func(ctx context.Context, input *struct{}) (*models.HealthResponse, error) {
		resp := &models.HealthResponse{}
		resp.Body.Status = "healthy"
		resp.Body.Version = Version
		resp.Body.Time = time.Now()
		return resp, nil
	})

	// Session routes
	huma.Register(api, huma.Operation{
		OperationID: "getSession",
		Method:      http.MethodGet,
		Path:        "/api/session",
		Summary:     "Get session state",
		Description: "Returns the login state of the caller's session",
		Tags:        []string{"Session"},
	}, sessionHandler.GetSession)

	huma.Register(api, huma.Operation{
		OperationID: "login",
		Method:      http.MethodPost,
		Path:        "/api/session/login",
		Summary:     "Submit access password",
		Description: "Unlocks the calculator when the password matches; otherwise flags the failed attempt",
		Tags:        []string{"Session"},
	}, sessionHandler.Login)

	huma.Register(api, huma.Operation{
		OperationID: "logout",
		Method:      http.MethodPost,
		Path:        "/api/session/logout",
		Summary:     "Log out",
		Description: "Locks the calculator and clears the failed attempt flag",
		Tags:        []string{"Session"},
	}, sessionHandler.Logout)

	// Noise source routes
	huma.Register(api, huma.Operation{
		OperationID: "listSources",
		Method:      http.MethodGet,
		Path:        "/api/sources",
		Summary:     "List noise sources",
		Description: "Returns the session's noise source table and its energetic total",
		Tags:        []string{"Sources"},
	}, sourcesHandler.ListSources)

	huma.Register(api, huma.Operation{
		OperationID:   "addSource",
		Method:        http.MethodPost,
		Path:          "/api/sources",
		Summary:       "Add a noise source",
		Description:   "Appends a row; an empty body adds a placeholder row without a level",
		Tags:          []string{"Sources"},
		DefaultStatus: http.StatusCreated,
	}, sourcesHandler.AddSource)

	huma.Register(api, huma.Operation{
		OperationID: "updateSource",
		Method:      http.MethodPatch,
		Path:        "/api/sources/{index}",
		Summary:     "Edit a noise source",
		Description: "Changes the name and/or level of one row",
		Tags:        []string{"Sources"},
	}, sourcesHandler.UpdateSource)

	huma.Register(api, huma.Operation{
		OperationID: "removeSource",
		Method:      http.MethodDelete,
		Path:        "/api/sources/{index}",
		Summary:     "Remove a noise source",
		Description: "Deletes one row; later rows shift up by one position",
		Tags:        []string{"Sources"},
	}, sourcesHandler.RemoveSource)

	huma.Register(api, huma.Operation{
		OperationID: "resetSources",
		Method:      http.MethodDelete,
		Path:        "/api/sources",
		Summary:     "Clear all noise sources",
		Description: "Discards every row of the table",
		Tags:        []string{"Sources"},
	}, sourcesHandler.ResetSources)

	huma.Register(api, huma.Operation{
		OperationID: "calculate",
		Method:      http.MethodPost,
		Path:        "/api/calculate",
		Summary:     "Sum noise levels",
		Description: "Combines the posted levels by energetic summation without touching the session table",
		Tags:        []string{"Calculator"},
	}, sourcesHandler.Calculate)
}
