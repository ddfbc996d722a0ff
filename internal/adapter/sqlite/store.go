// Package sqlite persists reports and the location reference table in a
// single SQLite file shared by the harvester, processor and dashboard.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/couchcryptid/haiti-crisis-monitor/internal/domain"

	_ "modernc.org/sqlite" // registers the "sqlite" driver
)

const driverName = "sqlite"

// Store implements report and location persistence over database/sql.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the database file at path. One connection is
// kept open so writes from sequential ingestion never contend.
func Open(path string) (*Store, error) {
	db, err := sql.Open(driverName, dsn(path))
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	db.SetMaxOpenConns(1)
	return New(db), nil
}

func dsn(path string) string {
	if strings.Contains(path, "?") {
		return path
	}
	return path + "?_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)"
}

// New wraps an existing handle.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// CheckReadiness pings the database.
func (s *Store) CheckReadiness(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("sqlite ping: %w", err)
	}
	return nil
}

// Migrate creates missing tables, adds missing columns, reseeds the
// location hierarchy and recreates the analytics views. It is safe to run
// on every start.
func (s *Store) Migrate(ctx context.Context) error {
	for _, stmt := range []string{createReports, createLocationHierarchy} {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("create table: %w", err)
		}
	}
	if err := s.addMissingColumns(ctx); err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, createReportURLIndex); err != nil {
		return fmt.Errorf("create index: %w", err)
	}
	if err := s.SeedHierarchy(ctx, domain.SeedHierarchy); err != nil {
		return err
	}
	for _, stmt := range viewStatements {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("create view: %w", err)
		}
	}
	return nil
}

func (s *Store) addMissingColumns(ctx context.Context) error {
	for _, col := range additiveColumns {
		stmt := fmt.Sprintf("ALTER TABLE reports ADD COLUMN %s %s", col.name, col.typ)
		if _, err := s.db.ExecContext(ctx, stmt); err != nil && !isDuplicateColumn(err) {
			return fmt.Errorf("add column %s: %w", col.name, err)
		}
	}
	return nil
}

func isDuplicateColumn(err error) bool {
	return strings.Contains(strings.ToLower(err.Error()), "duplicate column name")
}

// SeedHierarchy upserts rows into location_hierarchy in one transaction.
func (s *Store) SeedHierarchy(ctx context.Context, rows []domain.LocationHierarchy) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin seed: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, h := range rows {
		if _, err := tx.ExecContext(ctx, upsertLocation,
			h.Name, h.Type, h.Parent, h.Department, h.Lat, h.Lon, h.RiskLevel, h.PopulationEstimate, h.Notes,
		); err != nil {
			return fmt.Errorf("seed location %s: %w", h.Name, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit seed: %w", err)
	}
	return nil
}

// ReportExists reports whether a report with this URL is already stored.
// The check is not transactional with the following insert.
func (s *Store) ReportExists(ctx context.Context, url string) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx, `SELECT 1 FROM reports WHERE report_url = ? LIMIT 1`, url).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("check report url: %w", err)
	}
	return true, nil
}

// InsertReport stores r and returns its new id. location_coords is derived
// from r.Geo.
func (s *Store) InsertReport(ctx context.Context, r domain.Report) (int64, error) {
	meta, err := r.MetadataJSON()
	if err != nil {
		return 0, err
	}

	var lat, lon sql.NullFloat64
	if r.Geo != nil {
		lat = sql.NullFloat64{Float64: r.Geo.Lat, Valid: true}
		lon = sql.NullFloat64{Float64: r.Geo.Lon, Valid: true}
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO reports (
			timestamp, title, raw_text, event_type, location_text, location_coords,
			latitude, longitude, location_metadata, source_name, content_type,
			severity, report_url, created_date
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.Timestamp.UTC().Format(time.RFC3339),
		r.Title,
		r.RawText,
		r.EventType,
		r.LocationText,
		nullString(r.LocationCoords()),
		lat,
		lon,
		meta,
		r.SourceName,
		r.ContentType,
		domain.ClampSeverity(r.Severity),
		nullString(r.URL),
		nullString(r.CreatedDate),
	)
	if err != nil {
		return 0, fmt.Errorf("insert report: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("insert report id: %w", err)
	}
	return id, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

const selectReports = `
SELECT id, timestamp, title, raw_text, event_type, location_text, location_coords,
	latitude, longitude, location_metadata, source_name, content_type, severity,
	report_url, created_date
FROM reports`

// ListReports returns every report, newest ingestion first.
func (s *Store) ListReports(ctx context.Context) ([]domain.Report, error) {
	rows, err := s.db.QueryContext(ctx, selectReports+` ORDER BY timestamp DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("list reports: %w", err)
	}
	defer rows.Close()

	var out []domain.Report
	for rows.Next() {
		r, err := scanReport(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list reports: %w", err)
	}
	return out, nil
}

// CountReports returns the number of stored reports.
func (s *Store) CountReports(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM reports`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count reports: %w", err)
	}
	return n, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanReport(sc scanner) (domain.Report, error) {
	var (
		r                                     domain.Report
		ts                                    string
		title, eventType, location, coords    sql.NullString
		meta, source, contentType, url, cdate sql.NullString
		lat, lon                              sql.NullFloat64
		severity                              sql.NullInt64
	)
	if err := sc.Scan(&r.ID, &ts, &title, &r.RawText, &eventType, &location, &coords,
		&lat, &lon, &meta, &source, &contentType, &severity, &url, &cdate); err != nil {
		return domain.Report{}, fmt.Errorf("scan report: %w", err)
	}

	r.Timestamp, _ = domain.ParseTime(ts)
	r.Title = title.String
	r.EventType = eventType.String
	r.LocationText = location.String
	r.SourceName = source.String
	r.ContentType = contentType.String
	r.URL = url.String
	r.CreatedDate = cdate.String
	r.Severity = domain.DefaultSeverity
	if severity.Valid {
		r.Severity = domain.ClampSeverity(int(severity.Int64))
	}

	switch {
	case lat.Valid && lon.Valid:
		r.Geo = &domain.Geo{Lat: lat.Float64, Lon: lon.Float64}
	case coords.Valid:
		if g, ok := domain.ParseCoords(coords.String); ok {
			r.Geo = &g
		}
	}

	if meta.Valid && meta.String != "" {
		_ = json.Unmarshal([]byte(meta.String), &r.Metadata)
	}
	return r, nil
}

// LocationHierarchy returns the reference table, most specific types first.
func (s *Store) LocationHierarchy(ctx context.Context) ([]domain.LocationHierarchy, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT location_name, location_type, parent_location, department,
			latitude, longitude, risk_level, population_estimate, notes
		FROM location_hierarchy
		ORDER BY
			CASE location_type
				WHEN 'slum' THEN 1
				WHEN 'neighborhood' THEN 2
				WHEN 'commune' THEN 3
				WHEN 'city' THEN 4
				ELSE 5
			END,
			location_name`)
	if err != nil {
		return nil, fmt.Errorf("list location hierarchy: %w", err)
	}
	defer rows.Close()

	var out []domain.LocationHierarchy
	for rows.Next() {
		h, err := scanHierarchy(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list location hierarchy: %w", err)
	}
	return out, nil
}

// LookupLocation returns the hierarchy row named name, if any.
func (s *Store) LookupLocation(ctx context.Context, name string) (domain.LocationHierarchy, bool, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT location_name, location_type, parent_location, department,
			latitude, longitude, risk_level, population_estimate, notes
		FROM location_hierarchy
		WHERE location_name = ? LIMIT 1`, name)
	h, err := scanHierarchy(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.LocationHierarchy{}, false, nil
	}
	if err != nil {
		return domain.LocationHierarchy{}, false, err
	}
	return h, true, nil
}

func scanHierarchy(sc scanner) (domain.LocationHierarchy, error) {
	var (
		h                         domain.LocationHierarchy
		parent, dept, risk, notes sql.NullString
		lat, lon                  sql.NullFloat64
		population                sql.NullInt64
	)
	err := sc.Scan(&h.Name, &h.Type, &parent, &dept, &lat, &lon, &risk, &population, &notes)
	if errors.Is(err, sql.ErrNoRows) {
		return h, err
	}
	if err != nil {
		return h, fmt.Errorf("scan location: %w", err)
	}
	h.Parent = parent.String
	h.Department = dept.String
	h.Lat = lat.Float64
	h.Lon = lon.Float64
	h.RiskLevel = risk.String
	h.PopulationEstimate = int(population.Int64)
	h.Notes = notes.String
	return h, nil
}

// LocationAnalytics reads the location_analytics view, busiest first.
func (s *Store) LocationAnalytics(ctx context.Context) ([]domain.LocationStat, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT location_text, location_type, department, risk_level, total_reports,
			violence_reports, kidnapping_reports, displacement_reports, aid_requests,
			avg_severity, latest_incident, latitude, longitude
		FROM location_analytics
		ORDER BY total_reports DESC, location_text`)
	if err != nil {
		return nil, fmt.Errorf("location analytics: %w", err)
	}
	defer rows.Close()

	var out []domain.LocationStat
	for rows.Next() {
		var (
			st                    domain.LocationStat
			typ, dept, risk, last sql.NullString
			avg, lat, lon         sql.NullFloat64
		)
		if err := rows.Scan(&st.Location, &typ, &dept, &risk, &st.TotalReports,
			&st.ViolenceReports, &st.KidnappingReports, &st.DisplacementReports, &st.AidRequests,
			&avg, &last, &lat, &lon); err != nil {
			return nil, fmt.Errorf("scan location analytics: %w", err)
		}
		st.LocationType = typ.String
		st.Department = dept.String
		st.RiskLevel = risk.String
		st.AvgSeverity = avg.Float64
		st.LatestIncident = last.String
		if lat.Valid && lon.Valid {
			st.Geo = &domain.Geo{Lat: lat.Float64, Lon: lon.Float64}
		}
		out = append(out, st)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("location analytics: %w", err)
	}
	return out, nil
}

// DailyCounts reads the time_analytics view, newest day first.
func (s *Store) DailyCounts(ctx context.Context) ([]domain.DailyCount, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT report_date, event_type, location_text, daily_count
		FROM time_analytics`)
	if err != nil {
		return nil, fmt.Errorf("daily counts: %w", err)
	}
	defer rows.Close()

	var out []domain.DailyCount
	for rows.Next() {
		var (
			dc             domain.DailyCount
			date, evt, loc sql.NullString
		)
		if err := rows.Scan(&date, &evt, &loc, &dc.Count); err != nil {
			return nil, fmt.Errorf("scan daily count: %w", err)
		}
		dc.Date = date.String
		dc.EventType = evt.String
		dc.Location = loc.String
		out = append(out, dc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("daily counts: %w", err)
	}
	return out, nil
}
