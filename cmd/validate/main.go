// Command validate checks a reports database for integrity problems: rows
// outside the severity range, empty text, diverging coordinate columns,
// duplicate report URLs, unknown event types and reports whose location is
// missing from the hierarchy. It exits non-zero when a check fails.
//
// Usage:
//
//	go run ./cmd/validate -db reports.db
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/couchcryptid/haiti-crisis-monitor/internal/adapter/sqlite"
	"github.com/couchcryptid/haiti-crisis-monitor/internal/config"
	"github.com/couchcryptid/haiti-crisis-monitor/internal/domain"
)

// phase tracks pass/fail for a validation phase.
type phase struct {
	name     string
	errors   []string
	warnings []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) warnf(format string, args ...any) {
	p.warnings = append(p.warnings, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	dbPath := flag.String("db", "", "path to the reports database (default DB_PATH)")
	flag.Parse()

	if *dbPath == "" {
		if err := config.LoadDotEnv(); err != nil {
			fmt.Fprintf(os.Stderr, "FATAL: %v\n", err)
			os.Exit(1)
		}
		cfg, err := config.Load()
		if err != nil {
			fmt.Fprintf(os.Stderr, "FATAL: load config: %v\n", err)
			os.Exit(1)
		}
		*dbPath = cfg.DBPath
	}

	if code := run(context.Background(), *dbPath); code != 0 {
		os.Exit(code)
	}
}

func run(ctx context.Context, dbPath string) int {
	if _, err := os.Stat(dbPath); err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: %v\n", err)
		return 1
	}
	store, err := sqlite.Open(dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: %v\n", err)
		return 1
	}
	defer store.Close()

	fmt.Println("=== Haiti Report Integrity Validation ===")
	fmt.Println()

	audit, err := store.Audit(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: audit: %v\n", err)
		return 1
	}
	reports, err := store.ListReports(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: list reports: %v\n", err)
		return 1
	}
	hierarchy, err := store.LocationHierarchy(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: location hierarchy: %v\n", err)
		return 1
	}

	phases := []*phase{
		validateTable(audit),
		validateVocabulary(reports),
		validateLocations(reports, hierarchy),
	}

	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Printf("  %-32s %s\n", p.name, status)
	}

	fmt.Println()
	fmt.Printf("Reports: %d total, %d with coordinates, %d legacy coordinate rows\n",
		audit.Total, countGeolocated(reports), audit.LegacyCoordsOnly)

	for _, p := range phases {
		if len(p.errors) == 0 && len(p.warnings) == 0 {
			continue
		}
		fmt.Printf("\n--- %s ---\n", p.name)
		for _, e := range p.errors {
			fmt.Printf("  ERROR %s\n", e)
		}
		for _, w := range p.warnings {
			fmt.Printf("  WARN  %s\n", w)
		}
	}

	if allPassed {
		fmt.Println("\nAll validations passed.")
		return 0
	}
	fmt.Println("\nValidation FAILED.")
	return 1
}

func validateTable(a sqlite.Audit) *phase {
	p := &phase{name: "Table invariants"}
	if a.SeverityOutOfRange > 0 {
		p.errorf("%d rows with severity outside 1..5", a.SeverityOutOfRange)
	}
	if a.EmptyText > 0 {
		p.errorf("%d rows with empty raw_text", a.EmptyText)
	}
	if a.CoordsMismatch > 0 {
		p.errorf("%d rows where location_coords and latitude/longitude diverge", a.CoordsMismatch)
	}
	for _, url := range a.DuplicateURLs {
		p.errorf("duplicate report_url %s", url)
	}
	if a.LegacyCoordsOnly > 0 {
		p.warnf("%d rows carry only the legacy location_coords column", a.LegacyCoordsOnly)
	}
	return p
}

// validateVocabulary warns about labels outside the canonical vocabulary.
// They are tolerated in storage but invisible to conflict-only views.
func validateVocabulary(reports []domain.Report) *phase {
	p := &phase{name: "Event vocabulary"}
	unknown := map[string]int{}
	for _, r := range reports {
		if !domain.IsKnownEventType(r.EventType) {
			unknown[r.EventType]++
		}
	}
	for label, n := range unknown {
		p.warnf("%d reports labelled %q", n, label)
	}
	return p
}

func validateLocations(reports []domain.Report, hierarchy []domain.LocationHierarchy) *phase {
	p := &phase{name: "Location resolution"}
	known := make(map[string]bool, len(hierarchy))
	for _, h := range hierarchy {
		known[h.Name] = true
	}
	if len(known) == 0 {
		p.errorf("location_hierarchy is empty, run initdb")
		return p
	}
	missing := map[string]int{}
	for _, r := range reports {
		if r.Geo != nil && !r.Geo.Valid() {
			p.errorf("report %d has invalid coordinates %s", r.ID, r.Geo)
		}
		if r.LocationText != "" && r.Geo == nil && !known[r.LocationText] {
			missing[r.LocationText]++
		}
	}
	for loc, n := range missing {
		p.warnf("%d reports at %q have no coordinates and no hierarchy entry", n, loc)
	}
	return p
}

func countGeolocated(reports []domain.Report) int {
	var n int
	for _, r := range reports {
		if r.Geo != nil {
			n++
		}
	}
	return n
}
