// Package app contains the application setup for the catalog service.
package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/supplychain/orchestrator/internal/config"
	"github.com/supplychain/orchestrator/internal/service"
	"github.com/supplychain/orchestrator/internal/store"
	"github.com/supplychain/orchestrator/internal/transport/rest"
	"github.com/supplychain/orchestrator/pkg/server"
)

type Dependencies struct {
	ProductService service.ProductService
	Logger         *slog.Logger
}

func SetupDependencies(dbPool *pgxpool.Pool, logger *slog.Logger) *Dependencies {
	pService := service.NewService(store.NewPgStore(dbPool))

	return &Dependencies{
		ProductService: pService,
		Logger:         logger,
	}
}

// SetupHttpHandler initializes the HTTP router and routes for the catalog service.
// Also used by the E2E tests to run the real handler inside httptest.
func SetupHttpHandler(deps *Dependencies, corsCfg *cors.Options) http.Handler {
	mux := server.NewChiRouter(deps.Logger)
	if corsCfg != nil {
		mux.Use(cors.Handler(*corsCfg))
	}
	wireRoutes(mux, deps)
	return mux
}

// wireRoutes sets up the HTTP routes for the catalog service.
func wireRoutes(mux *chi.Mux, deps *Dependencies) {
	productHandler := rest.NewHandler(deps.ProductService, deps.Logger)
	productHandler.RegisterRoutes(mux)
}

// CorsOptions translates the CORS config section into chi cors options.
// Returns nil when no origins are configured, which disables CORS entirely.
func CorsOptions(cfg *config.Config) *cors.Options {
	if len(cfg.CORS.AllowedOrigins) == 0 {
		return nil
	}
	return &cors.Options{
		AllowedOrigins:   cfg.CORS.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: cfg.CORS.AllowCredentials,
	}
}

// SetupHttpServer creates and configures an HTTP server for the catalog service.
func SetupHttpServer(deps *Dependencies, cfg *config.Config) *http.Server {
	mux := SetupHttpHandler(deps, CorsOptions(cfg))

	httpCfg := server.HTTPConfig{
		Port:           cfg.HTTPServer.Port,
		MaxHeaderBytes: cfg.HTTPServer.MaxHeaderBytes,
		ReadTimeout:    cfg.HTTPServer.Timeout.Read,
		WriteTimeout:   cfg.HTTPServer.Timeout.Write,
		IdleTimeout:    cfg.HTTPServer.Timeout.Idle,
		ReadHeader:     cfg.HTTPServer.Timeout.ReadHeader,
	}

	return server.NewHTTPServer(httpCfg, mux)
}
