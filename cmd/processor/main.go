// Command processor classifies and stores free text given on the command
// line, one document per stdin line, or a built-in sample set.
//
// Usage:
//
//	processor "Armed gangs attacked residents in Martissant overnight"
//	cat reports.txt | processor
//	processor -samples
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/couchcryptid/haiti-crisis-monitor/internal/bootstrap"
	"github.com/couchcryptid/haiti-crisis-monitor/internal/config"
	"github.com/couchcryptid/haiti-crisis-monitor/internal/domain"
	"github.com/couchcryptid/haiti-crisis-monitor/internal/observability"
	"github.com/couchcryptid/haiti-crisis-monitor/internal/pipeline"
	"github.com/jonboulle/clockwork"
)

var samples = []domain.RawDocument{
	{Body: "Armed gangs attacked residents in Cité Soleil, forcing hundreds of families to flee their homes.", SourceName: "Sample", ContentType: "manual"},
	{Body: "Three aid workers were kidnapped on the road between Croix-des-Bouquets and Tabarre on Tuesday.", SourceName: "Sample", ContentType: "manual"},
	{Body: "Schools in Martissant remain closed after weeks of gunfire between rival armed groups.", SourceName: "Sample", ContentType: "manual"},
	{Body: "Protesters erected roadblocks with burning tires across Delmas demanding fuel and security.", SourceName: "Sample", ContentType: "manual"},
}

func main() {
	useSamples := flag.Bool("samples", false, "ingest the built-in sample reports")
	source := flag.String("source", "", "source name recorded on each report")
	flag.Parse()

	if err := config.LoadDotEnv(); err != nil {
		slog.Error("failed to load .env", "error", err)
		os.Exit(1)
	}
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	logger := observability.NewLogger(cfg.LogLevel, cfg.LogFormat)
	metrics := observability.NewMetrics()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := bootstrap.OpenStore(ctx, cfg)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer store.Close()

	ingestion := bootstrap.NewIngestion(cfg, store, clockwork.NewRealClock(), logger, metrics, pipeline.Options{})
	defer ingestion.Close()

	var docs []domain.RawDocument
	switch {
	case *useSamples:
		docs = samples
	case flag.NArg() > 0:
		for _, arg := range flag.Args() {
			docs = append(docs, domain.RawDocument{Body: arg, SourceName: *source})
		}
	default:
		docs, err = readLines(os.Stdin, *source)
		if err != nil {
			logger.Error("failed to read stdin", "error", err)
			os.Exit(1)
		}
	}

	counts := map[pipeline.Outcome]int{}
	for _, doc := range docs {
		if ctx.Err() != nil {
			break
		}
		res := ingestion.Ingest(ctx, doc)
		counts[res.Outcome]++
		printResult(os.Stdout, res)
	}

	fmt.Printf("\nstored=%d duplicate=%d dropped=%d failed=%d\n",
		counts[pipeline.OutcomeStored], counts[pipeline.OutcomeDuplicate],
		counts[pipeline.OutcomeDropped], counts[pipeline.OutcomeFailed])
	if counts[pipeline.OutcomeFailed] > 0 {
		ingestion.Close()
		store.Close()
		os.Exit(1)
	}
}

func readLines(r io.Reader, source string) ([]domain.RawDocument, error) {
	var docs []domain.RawDocument
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		if line := strings.TrimSpace(sc.Text()); line != "" {
			docs = append(docs, domain.RawDocument{Body: line, SourceName: source})
		}
	}
	return docs, sc.Err()
}

func printResult(w io.Writer, res pipeline.Result) {
	r := res.Report
	switch res.Outcome {
	case pipeline.OutcomeStored:
		fmt.Fprintf(w, "stored #%d  %-16s severity %d/5  %s", r.ID, r.EventType, r.Severity, valueOr(r.LocationText, "no location"))
		if c := r.LocationCoords(); c != "" {
			fmt.Fprintf(w, " (%s)", c)
		}
		fmt.Fprintf(w, "  [%s]\n", res.Classification.Source)
	case pipeline.OutcomeDropped:
		fmt.Fprintf(w, "dropped (%s)\n", res.Reason)
	case pipeline.OutcomeFailed:
		fmt.Fprintf(w, "failed: %v\n", res.Err)
	default:
		fmt.Fprintf(w, "%s\n", res.Outcome)
	}
}

func valueOr(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
