// internal/handlers/api_server.go
package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	graphql "github.com/graph-gophers/graphql-go"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/twilightcoders/cardgames/internal/auth"
	"github.com/twilightcoders/cardgames/internal/gametype"
	"github.com/twilightcoders/cardgames/internal/middleware"
)

// Deps is everything the HTTP surface needs.
type Deps struct {
	Logger         *logrus.Logger
	Store          *gametype.Store
	Schema         *graphql.Schema
	Signer         *auth.Signer
	Registry       *prometheus.Registry
	PublicBaseURL  string
	RateLimitRPS   float64
	RateLimitBurst int
}

// NewRouter assembles the routes and middleware stack.
func NewRouter(d Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(middleware.LogMiddleware(d.Logger))
	r.Use(middleware.SecurityHeaders)
	if d.Registry != nil {
		r.Use(middleware.NewMetrics(d.Registry).Middleware)
		r.Handle("/metrics", promhttp.HandlerFor(d.Registry, promhttp.HandlerOpts{}))
	}

	r.Get("/healthz", healthHandler)

	r.Group(func(r chi.Router) {
		r.Use(middleware.RateLimitMiddleware(middleware.NewIPRateLimiter(rate.Limit(d.RateLimitRPS), d.RateLimitBurst)))
		r.Use(chimw.Timeout(15 * time.Second))

		// GET runs anonymously, so writes always need a POST with a bearer token.
		gql := newGraphQLHandler(d.Schema, d.Logger)
		r.Get("/graphql", gql.ServeHTTP)
		r.With(middleware.BearerAuth(d.Signer, d.Logger)).Post("/graphql", gql.ServeHTTP)

		share := &shareHandler{store: d.Store, baseURL: d.PublicBaseURL, log: d.Logger}
		r.Get("/share/{shortId}", share.describe)
		r.Get("/share/{shortId}/qr.png", share.qrCode)
	})

	return r
}

func healthHandler(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, code int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(payload)
}
