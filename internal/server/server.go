// Package server exposes a Tracker over a small loopback HTTP API.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/runnerr0/trail/internal/activity"
)

const shutdownTimeout = 5 * time.Second

// Config holds server configuration.
type Config struct {
	Addr              string
	RequestsPerSecond float64 // <= 0 disables rate limiting
	Burst             int
	MaxRequestSize    int64
	Logger            *slog.Logger
}

// Server routes visit ingest and query requests to a Tracker.
type Server struct {
	tracker *activity.Tracker
	cfg     Config
	logger  *slog.Logger
	router  chi.Router
}

func New(tracker *activity.Tracker, cfg Config) *Server {
	if cfg.MaxRequestSize <= 0 {
		cfg.MaxRequestSize = 64 << 10
	}
	if cfg.Burst <= 0 {
		cfg.Burst = 1
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		tracker: tracker,
		cfg:     cfg,
		logger:  logger.With("component", "server"),
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(requestLogger(s.logger))
	r.Use(middleware.Recoverer)
	if s.cfg.RequestsPerSecond > 0 {
		r.Use(rateLimit(newRateLimiter(s.cfg.RequestsPerSecond, s.cfg.Burst)))
	}

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/v1/visits", func(r chi.Router) {
		r.Post("/", s.trackVisit)
		r.Get("/", s.listVisits)
		r.Get("/ids", s.listVisitIDs)
		r.Delete("/", s.removeVisits)
	})
	return r
}

// Handler returns the routed handler, mainly for tests.
func (s *Server) Handler() http.Handler { return s.router }

// Run listens on cfg.Addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.cfg.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve is Run over an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Warn("shutdown incomplete", "error", err)
		}
	}()

	s.logger.Info("listening", "addr", ln.Addr().String())
	err := srv.Serve(ln)
	if errors.Is(err, http.ErrServerClosed) {
		<-done
		return nil
	}
	return err
}
