package dashboard

import (
	"context"
	"fmt"
	"net/http"

	"github.com/couchcryptid/haiti-crisis-monitor/internal/analytics"
	"github.com/couchcryptid/haiti-crisis-monitor/internal/domain"
)

const (
	recentWeeks     = 7
	topLocationsDef = 10
)

// filtered loads every report and applies the request's filter. An empty
// table is ErrNoData; an empty filtered set is not.
func (s *Server) filtered(ctx context.Context, r *http.Request) ([]domain.Report, error) {
	f, err := parseFilter(r.URL.Query())
	if err != nil {
		return nil, err
	}
	all, err := s.store.ListReports(ctx)
	if err != nil {
		return nil, fmt.Errorf("load reports: %w", err)
	}
	if len(all) == 0 {
		return nil, ErrNoData
	}
	return analytics.Apply(all, f), nil
}

// view serves a JSON projection of the filtered report set.
func (s *Server) view(project func([]domain.Report) any) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		reports, err := s.filtered(r.Context(), r)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, project(reports))
	}
}

func summaryView(rs []domain.Report) any { return analytics.Summarize(rs) }
func monthlyView(rs []domain.Report) any { return analytics.MonthlyCounts(rs) }
func weeklyView(rs []domain.Report) any { return analytics.WeeklyCounts(rs, recentWeeks) }
func typesView(rs []domain.Report) any { return analytics.EventTypeShare(rs) }
func severityView(rs []domain.Report) any { return analytics.SeverityHistogram(rs) }
func heatmapView(rs []domain.Report) any { return analytics.DayHourHeatmap(rs) }
func mapView(rs []domain.Report) any { return analytics.MapPoints(rs) }
func dailyView(rs []domain.Report) any { return nonNil(analytics.DailyCounts(rs)) }
func reportsView(rs []domain.Report) any { return rs }

func forecastView(rs []domain.Report) any {
	return nonNil(analytics.Forecast(rs, analytics.MovingAverageWindow, analytics.ForecastHorizon))
}

func (s *Server) handleTopLocations(w http.ResponseWriter, r *http.Request) {
	n, err := intParam(r.URL.Query(), "n", topLocationsDef)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.view(func(rs []domain.Report) any { return analytics.TopLocations(rs, n) })(w, r)
}

// handleFilters lists filter choices from the whole table, not the filtered set.
func (s *Server) handleFilters(w http.ResponseWriter, r *http.Request) {
	all, err := s.store.ListReports(r.Context())
	if err != nil {
		s.writeError(w, r, fmt.Errorf("load reports: %w", err))
		return
	}
	if len(all) == 0 {
		s.writeError(w, r, ErrNoData)
		return
	}
	writeJSON(w, http.StatusOK, analytics.FilterOptions(all, s.clock.Now()))
}

// handleTimeAnalytics serves the time_analytics view as stored. It is not
// filtered.
func (s *Server) handleTimeAnalytics(w http.ResponseWriter, r *http.Request) {
	rows, err := s.store.DailyCounts(r.Context())
	if err != nil {
		s.writeError(w, r, fmt.Errorf("load daily counts: %w", err))
		return
	}
	writeJSON(w, http.StatusOK, nonNil(rows))
}

func (s *Server) handleHierarchy(w http.ResponseWriter, r *http.Request) {
	rows, err := s.store.LocationHierarchy(r.Context())
	if err != nil {
		s.writeError(w, r, fmt.Errorf("load location hierarchy: %w", err))
		return
	}
	writeJSON(w, http.StatusOK, nonNil(rows))
}

func (s *Server) handleLocationAnalytics(w http.ResponseWriter, r *http.Request) {
	rows, err := s.store.LocationAnalytics(r.Context())
	if err != nil {
		s.writeError(w, r, fmt.Errorf("load location analytics: %w", err))
		return
	}
	writeJSON(w, http.StatusOK, nonNil(rows))
}

// nonNil keeps empty results encoding as [] rather than null.
func nonNil[T any](rows []T) []T {
	if rows == nil {
		return []T{}
	}
	return rows
}
