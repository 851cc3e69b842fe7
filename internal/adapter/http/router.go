package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/iho/generalledger/internal/adapter/http/handler"
	"github.com/iho/generalledger/internal/adapter/http/middleware"
	"github.com/iho/generalledger/internal/usecase"
)

// RouterConfig holds dependencies for the router.
type RouterConfig struct {
	LedgerHandler    *handler.LedgerHandler
	AccountHandler   *handler.AccountHandler
	EntryHandler     *handler.EntryHandler
	HealthHandler    *handler.HealthHandler
	IdempotencyStore usecase.IdempotencyStore
	Logger           zerolog.Logger
}

// NewRouter creates a new HTTP router.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.NewLoggingMiddleware(cfg.Logger).Wrap)
	r.Use(middleware.Metrics)

	// Health and metrics endpoints
	r.Get("/health", cfg.HealthHandler.Liveness)
	r.Get("/ready", cfg.HealthHandler.Readiness)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	// API v1
	r.Route("/api/v1", func(r chi.Router) {
		// Idempotency middleware for mutating requests
		if cfg.IdempotencyStore != nil {
			idempotencyMiddleware := middleware.NewIdempotencyMiddleware(cfg.IdempotencyStore)
			r.Use(idempotencyMiddleware.Wrap)
		}

		// Ledger domains and their account trees
		r.Route("/ledgers", func(r chi.Router) {
			r.Post("/", cfg.LedgerHandler.Create)
			r.Get("/{code}", cfg.LedgerHandler.Get)
			r.Put("/{code}", cfg.LedgerHandler.Update)

			r.Route("/{code}/accounts", func(r chi.Router) {
				r.Post("/", cfg.AccountHandler.Create)
				r.Get("/", cfg.AccountHandler.List)
				r.Get("/{accountCode}", cfg.AccountHandler.Get)
				r.Post("/{accountCode}/move", cfg.AccountHandler.Move)
				r.Delete("/{accountCode}", cfg.AccountHandler.Delete)
				r.Get("/{accountCode}/ancestors", cfg.AccountHandler.Ancestors)
				r.Get("/{accountCode}/balances", cfg.LedgerHandler.ListBalances)
				r.Get("/{accountCode}/balances/{currency}", cfg.LedgerHandler.GetBalance)
			})

			r.Get("/{code}/entries", cfg.EntryHandler.List)
		})

		// Journal entries
		r.Route("/entries", func(r chi.Router) {
			r.Post("/", cfg.EntryHandler.Post)
			r.Get("/{id}", cfg.EntryHandler.Get)
			r.Put("/{id}", cfg.EntryHandler.Update)
			r.Delete("/{id}", cfg.EntryHandler.Delete)
		})
	})

	return r
}
