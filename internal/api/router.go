package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/ledgerkit/banking-ledger/internal/api/handlers"
	"github.com/ledgerkit/banking-ledger/internal/config"
	"github.com/ledgerkit/banking-ledger/internal/metrics"
	"github.com/ledgerkit/banking-ledger/internal/middleware"
)

func NewRouter(cfg config.Config, accounts *handlers.AccountsHandler) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.Recover, middleware.HTTPMetrics, middleware.RateLimit(cfg.RateRPS))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"*"},
	}))

	// health & metrics
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) { _, _ = w.Write([]byte("ok")) })
	r.Handle("/metrics", metrics.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/accounts", accounts.Create)
		r.Get("/accounts/{id}", accounts.Get)
		r.Put("/accounts/{id}/balance", accounts.UpdateBalance)
	})

	return r
}
