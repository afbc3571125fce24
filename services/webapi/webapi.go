// Package webapi is the read side for the coordinator dashboard,
// plus a trigger endpoint for the scrape job.
package webapi

import (
	"context"
	"database/sql"
	"log/slog"
	"net/http"
	"time"

	"hauntops-backend/etl/fieldmap"
	"hauntops-backend/lib/scrapers/ivolunteer"
	"hauntops-backend/lib/scrapers/passage"
	"hauntops-backend/services/hauntops"
	"hauntops-backend/services/hauntops/db"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/google/uuid"
)

type Options struct {
	AllowedOrigins []string
	// builds a fresh logged-in portal session for triggered scrapes,
	// nil disables the trigger endpoint
	NewPortalClient func(ctx context.Context) (*passage.Client, error)
	MaxPages        int
	// builds a volunteer portal API session for triggered user
	// pulls, nil disables the trigger endpoint
	NewVolunteerClient func(ctx context.Context) (*ivolunteer.Client, error)
	Mapping            fieldmap.Mapping
}

type Server struct {
	svc    hauntops.Service
	qry    *db.Queries
	config Options
}

func NewServer(database *sql.DB, svc hauntops.Service, options Options) *Server {
	return &Server{
		svc:    svc,
		qry:    db.New(database),
		config: options,
	}
}

// Router builds the full route tree. Every request carries a
// generated request id so log lines from one call can be stitched
// together.
func (s *Server) Router() *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(requestID)
	r.Use(logRequests)

	r.Get("/healthz", s.handleHealthz)

	r.Route("/api", func(r chi.Router) {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: s.config.AllowedOrigins,
			AllowedMethods: []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders: []string{"Accept", "Content-Type"},
			MaxAge:         300,
		}))

		r.Get("/users", s.handleListUsers)
		r.Get("/events", s.handleListEvents)
		r.Get("/groups", s.handleListGroups)
		r.Get("/ticket-sales", s.handleListTicketSales)

		r.Post("/jobs/ticket-sales", s.handleRunTicketSales)
		r.Post("/jobs/fetch-users", s.handleRunFetchUsers)
	})

	return r
}

type contextKey string

const requestIDKey contextKey = "webapi.request_id"

func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := uuid.NewString()
		w.Header().Set("X-Request-Id", id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestIDKey, id)))
	})
}

func logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		slog.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
			"request_id", r.Context().Value(requestIDKey))
	})
}
