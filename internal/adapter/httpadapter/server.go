// Package httpadapter serves the harvester's operational endpoints.
package httpadapter

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Server exposes /healthz, /readyz and /metrics for a long-running harvester.
type Server struct {
	httpServer *http.Server
	logger     *slog.Logger
}

// NewServer wires the operational routes. The harvester is ready once every
// checker passes.
func NewServer(addr string, logger *slog.Logger, checks ...sharedobs.ReadinessChecker) *Server {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", sharedobs.LivenessHandler())
	mux.HandleFunc("GET /readyz", sharedobs.ReadinessHandler(allReady(checks)))
	mux.Handle("GET /metrics", promhttp.Handler())

	return &Server{
		httpServer: &http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       10 * time.Second,
			WriteTimeout:      10 * time.Second,
			IdleTimeout:       60 * time.Second,
		},
		logger: logger,
	}
}

// Start blocks until the listener fails. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("ops server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

type allReady []sharedobs.ReadinessChecker

func (a allReady) CheckReadiness(ctx context.Context) error {
	var errs []error
	for _, c := range a {
		if err := c.CheckReadiness(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
