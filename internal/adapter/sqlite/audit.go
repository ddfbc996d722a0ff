package sqlite

import (
	"context"
	"fmt"
)

// Audit counts rows that break the reports table's invariants. Rows written
// by older harvester versions are the usual source.
type Audit struct {
	Total              int      `json:"total"`
	SeverityOutOfRange int      `json:"severity_out_of_range"`
	EmptyText          int      `json:"empty_text"`
	CoordsMismatch     int      `json:"coords_mismatch"`
	LegacyCoordsOnly   int      `json:"legacy_coords_only"`
	DuplicateURLs      []string `json:"duplicate_urls"`
}

// Clean reports whether no invariant is broken. Legacy coordinate rows are
// readable and do not count.
func (a Audit) Clean() bool {
	return a.SeverityOutOfRange == 0 && a.EmptyText == 0 && a.CoordsMismatch == 0 && len(a.DuplicateURLs) == 0
}

var auditCounts = []struct {
	name  string
	query string
}{
	{"total", `SELECT COUNT(*) FROM reports`},
	{"severity", `SELECT COUNT(*) FROM reports WHERE severity IS NULL OR severity NOT BETWEEN 1 AND 5`},
	{"text", `SELECT COUNT(*) FROM reports WHERE raw_text IS NULL OR TRIM(raw_text) = ''`},
	{"coords", `SELECT COUNT(*) FROM reports
		WHERE (latitude IS NULL) != (longitude IS NULL)
		   OR (latitude IS NOT NULL AND (location_coords IS NULL OR location_coords = ''))`},
	{"legacy", `SELECT COUNT(*) FROM reports
		WHERE latitude IS NULL AND location_coords IS NOT NULL AND location_coords != ''`},
}

// Audit checks stored reports against the table's invariants.
func (s *Store) Audit(ctx context.Context) (Audit, error) {
	var a Audit
	dst := map[string]*int{
		"total":    &a.Total,
		"severity": &a.SeverityOutOfRange,
		"text":     &a.EmptyText,
		"coords":   &a.CoordsMismatch,
		"legacy":   &a.LegacyCoordsOnly,
	}
	for _, c := range auditCounts {
		if err := s.db.QueryRowContext(ctx, c.query).Scan(dst[c.name]); err != nil {
			return Audit{}, fmt.Errorf("audit %s: %w", c.name, err)
		}
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT report_url FROM reports
		WHERE report_url IS NOT NULL AND report_url != ''
		GROUP BY report_url HAVING COUNT(*) > 1
		ORDER BY report_url`)
	if err != nil {
		return Audit{}, fmt.Errorf("audit duplicates: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var url string
		if err := rows.Scan(&url); err != nil {
			return Audit{}, fmt.Errorf("scan duplicate url: %w", err)
		}
		a.DuplicateURLs = append(a.DuplicateURLs, url)
	}
	if err := rows.Err(); err != nil {
		return Audit{}, fmt.Errorf("audit duplicates: %w", err)
	}
	return a, nil
}
