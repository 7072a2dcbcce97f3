package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/csventilacion-cmyk/calculadoradb/internal/api"
	"github.com/csventilacion-cmyk/calculadoradb/internal/api/handlers"
	"github.com/csventilacion-cmyk/calculadoradb/internal/calculator"
	"github.com/csventilacion-cmyk/calculadoradb/internal/config"
	"github.com/csventilacion-cmyk/calculadoradb/internal/repository/memory"
	"github.com/csventilacion-cmyk/calculadoradb/internal/storage"
)

func main() {
	// Configure zerolog for structured logging
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if os.Getenv("ENVIRONMENT") == "" || os.Getenv("ENVIRONMENT") == "dev" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}

	assets, err := newAssetStore(context.Background(), cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to set up logo storage")
	}

	repo := memory.NewSessionRepository()
	svc := calculator.NewService(repo, cfg.Access.Password, cfg.Session.IdleTimeout)

	// Create Chi router
	router := chi.NewRouter()

	// Middleware
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(api.ZerologLogger())
	router.Use(middleware.Recoverer)
	router.Use(middleware.Compress(5))
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.Server.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-Id"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	router.Use(api.SessionMiddleware(svc, cfg.Session.SecureCookie))

	// Create Huma API
	humaConfig := huma.DefaultConfig(cfg.Page.Title+" API", api.Version)
	humaConfig.DocsPath = "/api/docs"
	humaConfig.OpenAPIPath = "/api/openapi"
	humaAPI := humachi.New(router, humaConfig)

	api.RegisterRoutes(router, humaAPI, svc, assets, handlers.PageConfig{
		Title:   cfg.Page.Title,
		Company: cfg.Page.CompanyName,
		LogoKey: logoKey(cfg),
	})

	// Start server
	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Graceful shutdown
	go func() {
		log.Info().Str("addr", srv.Addr).Msg("Starting noise calculator server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed to start")
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}

func newAssetStore(ctx context.Context, cfg *config.Config) (storage.AssetStore, error) {
	switch cfg.Logo.Backend {
	case "s3":
		return storage.NewS3Store(ctx, storage.S3Config{
			Bucket:    cfg.AWS.S3Bucket,
			Region:    cfg.AWS.Region,
			AccessKey: cfg.AWS.AccessKeyID,
			SecretKey: cfg.AWS.SecretAccessKey,
		})
	case "minio":
		return storage.NewMinioStore(storage.MinioConfig{
			Endpoint:  cfg.AWS.S3Endpoint,
			Bucket:    cfg.AWS.S3Bucket,
			Region:    cfg.AWS.Region,
			AccessKey: cfg.AWS.AccessKeyID,
			SecretKey: cfg.AWS.SecretAccessKey,
		})
	default:
		return storage.NewFileStore(""), nil
	}
}

func logoKey(cfg *config.Config) string {
	if cfg.Logo.Backend == "file" {
		return cfg.Logo.Path
	}
	return cfg.Logo.Key
}
