// Package server provides the HTTP API for submitting Search Console
// exports and retrieving analysis results.
package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/lucasvnasc/paginas-semelhantes/internal/metrics"
	"github.com/lucasvnasc/paginas-semelhantes/internal/service"
)

// Server wraps the HTTP server with dependencies and lifecycle management.
type Server struct {
	httpServer *http.Server
	logger     *slog.Logger
}

// New builds the server with its router and middleware stack.
func New(port string, jobs *service.JobManager, collector *metrics.Collector, logger *slog.Logger) *Server {
	h := &handler{jobs: jobs, metrics: collector, logger: logger}

	r := chi.NewRouter()
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(LoggingMiddleware(logger))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/health", h.health)
	r.Route("/api", func(r chi.Router) {
		r.Post("/analyses", h.createAnalysis)
		r.Get("/analyses", h.listAnalyses)
		r.Get("/analyses/{id}", h.getAnalysis)
		r.Get("/analyses/{id}/csv", h.downloadCSV)
		r.Get("/analyses/{id}/ws", h.watchAnalysis)
		r.Get("/stats", h.stats)
	})

	return &Server{
		httpServer: &http.Server{
			Addr:         ":" + port,
			Handler:      r,
			ReadTimeout:  30 * time.Second, // uploads can be large
			WriteTimeout: 60 * time.Second,
			IdleTimeout:  120 * time.Second,
		},
		logger: logger,
	}
}

// Handler exposes the router for tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// ListenAndServe starts serving and blocks until shutdown or failure.
func (s *Server) ListenAndServe() error {
	s.logger.Info("starting server", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
