// Package dashboard serves the read-only analytics UI and its JSON views.
package dashboard

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/couchcryptid/haiti-crisis-monitor/internal/domain"
	"github.com/couchcryptid/haiti-crisis-monitor/internal/observability"
	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// ErrNoData is returned when the reports table is empty.
var ErrNoData = errors.New("no data found, run the harvester first")

// Store is the read side of the report database.
type Store interface {
	ListReports(ctx context.Context) ([]domain.Report, error)
	LocationHierarchy(ctx context.Context) ([]domain.LocationHierarchy, error)
	LocationAnalytics(ctx context.Context) ([]domain.LocationStat, error)
	DailyCounts(ctx context.Context) ([]domain.DailyCount, error)
	CheckReadiness(ctx context.Context) error
}

// Server is the dashboard HTTP server.
type Server struct {
	httpServer *http.Server
	store      Store
	clock      clockwork.Clock
	logger     *slog.Logger
	metrics    *observability.Metrics
}

// NewServer builds the router. A nil clock defaults to the real clock.
func NewServer(addr string, store Store, clock clockwork.Clock, logger *slog.Logger, metrics *observability.Metrics) *Server {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	s := &Server{store: store, clock: clock, logger: logger, metrics: metrics}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.instrument)

	r.Get("/", s.handleIndex)
	r.Get("/healthz", sharedobs.LivenessHandler())
	r.Get("/readyz", sharedobs.ReadinessHandler(store))
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Get("/summary", s.view(summaryView))
		r.Get("/filters", s.handleFilters)
		r.Get("/trends/monthly", s.view(monthlyView))
		r.Get("/trends/weekly", s.view(weeklyView))
		r.Get("/trends/daily", s.view(dailyView))
		r.Get("/event-types", s.view(typesView))
		r.Get("/severity", s.view(severityView))
		r.Get("/heatmap", s.view(heatmapView))
		r.Get("/forecast", s.view(forecastView))
		r.Get("/map", s.view(mapView))
		r.Get("/reports", s.view(reportsView))
		r.Get("/locations/top", s.handleTopLocations)
		r.Get("/locations/hierarchy", s.handleHierarchy)
		r.Get("/locations/analytics", s.handleLocationAnalytics)
		r.Get("/time-analytics", s.handleTimeAnalytics)
		r.Get("/export.csv", s.handleExportCSV)
		r.Get("/export.xlsx", s.handleExportXLSX)
	})

	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("dashboard server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the router, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

// instrument counts requests by route pattern and status code.
func (s *Server) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
			route = rc.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		s.metrics.DashboardRequests.WithLabelValues(route, strconv.Itoa(status)).Inc()
	})
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var status int
	var badQuery *queryError
	switch {
	case errors.Is(err, ErrNoData):
		status = http.StatusConflict
	case errors.As(err, &badQuery):
		status = http.StatusBadRequest
	default:
		status = http.StatusInternalServerError
		s.logger.Error("dashboard request failed", "path", r.URL.Path, "error", err)
		err = errors.New("internal error")
	}
	writeJSON(w, status, errorResponse{Error: err.Error()})
}
