// Command initdb creates or migrates the reports database, seeds the
// location hierarchy, recreates the analytics views and prints the
// hierarchy.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"text/tabwriter"

	"github.com/couchcryptid/haiti-crisis-monitor/internal/bootstrap"
	"github.com/couchcryptid/haiti-crisis-monitor/internal/config"
)

func main() {
	if err := config.LoadDotEnv(); err != nil {
		slog.Error("failed to load .env", "error", err)
		os.Exit(1)
	}
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()
	store, err := bootstrap.OpenStore(ctx, cfg)
	if err != nil {
		slog.Error("failed to initialize database", "path", cfg.DBPath, "error", err)
		os.Exit(1)
	}
	defer store.Close()

	rows, err := store.LocationHierarchy(ctx)
	if err != nil {
		slog.Error("failed to read location hierarchy", "error", err)
		os.Exit(1)
	}

	fmt.Printf("database ready: %s\n\n", cfg.DBPath)
	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "LOCATION\tTYPE\tPARENT\tRISK\tLAT,LON")
	for _, h := range rows {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", h.Name, h.Type, h.Parent, h.RiskLevel, h.Geo())
	}
	_ = tw.Flush()
}
