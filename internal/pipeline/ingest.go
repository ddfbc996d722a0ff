package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/couchcryptid/haiti-crisis-monitor/internal/classify"
	"github.com/couchcryptid/haiti-crisis-monitor/internal/domain"
	"github.com/couchcryptid/haiti-crisis-monitor/internal/observability"
	"github.com/jonboulle/clockwork"
)

// Classifier assigns an event type, location and severity to text.
type Classifier interface {
	Classify(ctx context.Context, text, contentType string) classify.Result
}

// ReportStore persists reports.
type ReportStore interface {
	ReportExists(ctx context.Context, url string) (bool, error)
	InsertReport(ctx context.Context, r domain.Report) (int64, error)
}

// LocationLookup resolves names against the seeded location hierarchy.
type LocationLookup interface {
	LookupLocation(ctx context.Context, name string) (domain.LocationHierarchy, bool, error)
}

// Publisher forwards stored reports downstream.
type Publisher interface {
	Publish(ctx context.Context, r domain.Report) error
}

// Outcome tags the result of ingesting one document.
type Outcome string

const (
	OutcomeStored    Outcome = "stored"
	OutcomeDuplicate Outcome = "duplicate"
	OutcomeDropped   Outcome = "dropped"
	OutcomeFailed    Outcome = "failed"
)

// Drop reasons.
const (
	ReasonEmpty           = "empty"
	ReasonTooShort        = "too_short"
	ReasonNaturalDisaster = "natural_disaster"
	ReasonNotConflict     = "not_conflict"
)

// Result describes what happened to one document. Report is set for stored
// outcomes and for dropped(natural_disaster), Err only for failed ones.
type Result struct {
	Outcome        Outcome
	Reason         string
	Report         domain.Report
	Classification classify.Result
	Err            error
}

// Options control ingestion behavior.
type Options struct {
	// DomainFilter drops reports that normalize to natural_disaster.
	// The harvester enables it, manual processing does not.
	DomainFilter bool
	// ConflictOnly also drops reports that are not conflict related: a type
	// off the conflict allow-list and no conflict keyword in the text.
	ConflictOnly bool
}

// IngestorDeps groups the Ingestor's collaborators. Locations, Geocoder and
// Publisher are optional.
type IngestorDeps struct {
	Classifier Classifier
	Store      ReportStore
	Locations  LocationLookup
	Geocoder   domain.Geocoder
	Publisher  Publisher
	Clock      clockwork.Clock
	Logger     *slog.Logger
	Metrics    *observability.Metrics
}

// Ingestor runs single documents through the ingestion steps.
type Ingestor struct {
	deps IngestorDeps
	opts Options
}

// NewIngestor creates an Ingestor. A nil clock defaults to the real clock.
func NewIngestor(deps IngestorDeps, opts Options) *Ingestor {
	if deps.Clock == nil {
		deps.Clock = clockwork.NewRealClock()
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	return &Ingestor{deps: deps, opts: opts}
}

// Ingest processes one document. It never panics and never returns an error
// directly; failures are reported as OutcomeFailed.
func (in *Ingestor) Ingest(ctx context.Context, doc domain.RawDocument) Result {
	res := in.ingest(ctx, doc)
	in.deps.Metrics.DocumentsIngested.WithLabelValues(string(res.Outcome)).Inc()
	if res.Outcome == OutcomeDropped {
		in.deps.Metrics.DocumentsDropped.WithLabelValues(res.Reason).Inc()
	}
	return res
}

func (in *Ingestor) ingest(ctx context.Context, doc domain.RawDocument) Result {
	log := in.deps.Logger.With("content_type", doc.ContentType, "url", doc.URL)

	text := domain.AssembleText(doc)
	if text == "" {
		return Result{Outcome: OutcomeDropped, Reason: ReasonEmpty}
	}
	if !domain.IsRelevant(text) {
		log.Debug("document too short", "length", len([]rune(text)))
		return Result{Outcome: OutcomeDropped, Reason: ReasonTooShort}
	}

	// The URL check runs before classification to avoid paying for an LLM
	// call on content that is already stored.
	if doc.URL != "" {
		exists, err := in.deps.Store.ReportExists(ctx, doc.URL)
		if err != nil {
			log.Error("duplicate check failed", "error", err)
			return Result{Outcome: OutcomeFailed, Err: err}
		}
		if exists {
			log.Debug("report already stored")
			return Result{Outcome: OutcomeDuplicate}
		}
	}

	cls := in.deps.Classifier.Classify(ctx, text, doc.ContentType)
	location, place := domain.ResolveLocation(text, cls.Location)
	eventType := domain.NormalizeEventType(cls.EventType, text)

	now := in.deps.Clock.Now().UTC()
	report := domain.Report{
		Timestamp:    now,
		Title:        reportTitle(doc, text),
		RawText:      text,
		EventType:    eventType,
		LocationText: location,
		SourceName:   valueOr(doc.SourceName, domain.DefaultSourceName),
		ContentType:  valueOr(doc.ContentType, domain.DefaultContentType),
		Severity:     domain.ClampSeverity(cls.Severity),
		URL:          doc.URL,
		CreatedDate:  createdDate(doc.CreatedDate, now),
		Metadata:     locationMetadata(location, place),
	}

	if in.opts.DomainFilter && eventType == domain.EventNaturalDisaster {
		log.Info("natural disaster report skipped", "title", report.Title)
		return Result{Outcome: OutcomeDropped, Reason: ReasonNaturalDisaster, Report: report, Classification: cls}
	}
	if in.opts.ConflictOnly && !domain.IsConflictRelated(eventType, text) {
		log.Info("non-conflict report skipped", "title", report.Title, "event_type", eventType)
		return Result{Outcome: OutcomeDropped, Reason: ReasonNotConflict, Report: report, Classification: cls}
	}

	report = in.locate(ctx, report, cls.Geo, log)

	id, err := in.deps.Store.InsertReport(ctx, report)
	if err != nil {
		log.Error("store report failed", "error", err)
		return Result{Outcome: OutcomeFailed, Report: report, Classification: cls, Err: err}
	}
	report.ID = id
	log.Info("report stored",
		"id", id,
		"event_type", report.EventType,
		"location", report.LocationText,
		"severity", report.Severity,
		"classified_by", cls.Source,
	)

	in.publish(ctx, report, log)
	return Result{Outcome: OutcomeStored, Report: report, Classification: cls}
}

// locate sets coordinates from, in order: the classifier, the location
// hierarchy, the geocoder.
func (in *Ingestor) locate(ctx context.Context, report domain.Report, fromClassifier *domain.Geo, log *slog.Logger) domain.Report {
	if fromClassifier != nil && fromClassifier.Valid() {
		g := *fromClassifier
		report.Geo = &g
		report.Metadata.GeoSource = domain.GeoSourceClassifier
		return report
	}
	if report.LocationText == "" {
		return report
	}
	if in.deps.Locations != nil {
		loc, ok, err := in.deps.Locations.LookupLocation(ctx, report.LocationText)
		switch {
		case err != nil:
			log.Warn("location hierarchy lookup failed", "location", report.LocationText, "error", err)
		case ok:
			if g := loc.Geo(); g.Valid() {
				report.Geo = &g
				report.Metadata.GeoSource = domain.GeoSourceHierarchy
				return report
			}
		}
	}
	return domain.EnrichWithGeocoding(ctx, report, in.deps.Geocoder, log)
}

func (in *Ingestor) publish(ctx context.Context, report domain.Report, log *slog.Logger) {
	if in.deps.Publisher == nil {
		return
	}
	if err := in.deps.Publisher.Publish(ctx, report); err != nil {
		in.deps.Metrics.PublishErrors.Inc()
		log.Warn("publish report failed", "id", report.ID, "error", err)
	}
}

func locationMetadata(location string, place *domain.Place) domain.LocationMetadata {
	switch {
	case place != nil:
		return domain.LocationMetadata{Type: place.Type, Parent: place.Parent, Precision: domain.PrecisionHigh}
	case location != "":
		return domain.LocationMetadata{Type: "unknown", Precision: domain.PrecisionMedium}
	default:
		return domain.LocationMetadata{Type: "unknown", Precision: domain.PrecisionLow}
	}
}

func reportTitle(doc domain.RawDocument, text string) string {
	if doc.Title != "" {
		return doc.Title
	}
	return domain.DeriveTitle(text)
}

func createdDate(raw string, now time.Time) string {
	if raw == "" {
		return now.Format(time.RFC3339)
	}
	return domain.NormalizeDate(raw)
}

func valueOr(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
