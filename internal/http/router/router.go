// Package router wires every HTTP route of the API.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/compuse/compuse-api/internal/config"
	"github.com/compuse/compuse-api/internal/http/handlers/cpfcheck"
	"github.com/compuse/compuse-api/internal/http/handlers/registration"
	"github.com/compuse/compuse-api/internal/metrics"
	"github.com/compuse/compuse-api/internal/storage"
	"github.com/compuse/compuse-api/internal/utils/response"
)

// Deps are the collaborators the handlers close over.
type Deps struct {
	Storage   storage.Storage
	Validator *validator.Validate
	Metrics   *metrics.Metrics
	// Gatherer backs the metrics endpoint; nil disables it.
	Gatherer prometheus.Gatherer
	Config   config.Metrics
}

// ─────────────────────────────────────────────────────────────────────────────
// New returns the API handler.
//
// Route table:
//
//	GET    /healthz                           → liveness
//	POST   /api/cpf/validate                  → check a CPF
//	POST   /api/registrations                 → create a registration
//	GET    /api/registrations                 → list registrations
//	GET    /api/registrations/{id}            → get one registration
//	PATCH  /api/registrations/{id}/status     → change review status
//	DELETE /api/registrations/{id}            → delete a registration
//	GET    /metrics (configurable)            → Prometheus exposition
//
// ─────────────────────────────────────────────────────────────────────────────
func New(d Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		response.WriteJSON(w, http.StatusOK, response.OK())
	})

	r.Route("/api", func(r chi.Router) {
		r.Post("/cpf/validate", cpfcheck.Validate(d.Metrics))

		r.Route("/registrations", func(r chi.Router) {
			r.Post("/", registration.Create(d.Storage, d.Validator, d.Metrics))
			r.Get("/", registration.List(d.Storage))
			r.Get("/{id}", registration.GetByID(d.Storage))
			r.Patch("/{id}/status", registration.UpdateStatus(d.Storage, d.Validator))
			r.Delete("/{id}", registration.Delete(d.Storage))
		})
	})

	if d.Config.Enabled && d.Gatherer != nil {
		r.Method(http.MethodGet, d.Config.Path, promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{}))
	}

	return r
}
