/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route
  definitions. This is the wiring layer that connects URLs to
  handlers.

MIDDLEWARE STACK:
  1. Recoverer:  Panic recovery (500 instead of crash)
  2. RequestID:  Unique ID per request for tracing
  3. CORS:       Cross-origin requests for frontend

LOGGING NOTE:
  No request-body logging middleware, deliberately. Document ingest
  bodies carry raw PII; access logging here records method, path, and
  status only, through the structured logger.

ROUTE GROUPS:
  /api/profiles/*   Profile CRUD, liability, simulations, advice
  /api/documents/*  Stateless redaction
  /api/reference    Statutory tables
  /api/scenarios/*  Demo scenarios

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/server/main.go: Server startup
*/
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(accessLog(h.Log))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:8080"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	// API routes
	r.Route("/api", func(r chi.Router) {
		// Profile routes
		r.Route("/profiles", func(r chi.Router) {
			r.Get("/", h.ListProfiles)
			r.Post("/", h.CreateProfile)
			r.Get("/{id}", h.GetProfile)
			r.Put("/{id}", h.UpdateProfile)
			r.Delete("/{id}", h.DeleteProfile)

			r.Get("/{id}/liability", h.GetLiability)
			r.Post("/{id}/simulations", h.RunSimulation)
			r.Get("/{id}/simulations", h.ListSimulations)
			r.Get("/{id}/optimal", h.OptimalSearch)
			r.Get("/{id}/recommendations", h.GetRecommendations)
			r.Post("/{id}/strategy", h.GetStrategyReport)
			r.Post("/{id}/documents", h.IngestDocument)
		})

		// Document routes
		r.Route("/documents", func(r chi.Router) {
			r.Post("/redact", h.RedactDocument)
		})

		// Reference tables
		r.Get("/reference", h.GetReference)

		// Scenario routes
		r.Route("/scenarios", func(r chi.Router) {
			r.Get("/", h.ListScenarios)
			r.Post("/load", h.LoadScenario)
			r.Post("/reset", h.ResetDatabase)
		})
	})

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	return r
}

// accessLog records method, path, status, and duration. Never bodies.
func accessLog(log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			log.Info("request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("duration", time.Since(start)),
				zap.String("request_id", middleware.GetReqID(r.Context())))
		})
	}
}
