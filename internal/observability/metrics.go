package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "haiti_monitor"

// Metrics holds the Prometheus counters, histograms, and gauges shared by the
// harvester, processor and dashboard.
type Metrics struct {
	// Harvest metrics.
	DocumentsFetched *prometheus.CounterVec // labels: content_type
	FetchErrors      *prometheus.CounterVec // labels: content_type
	HarvestRunning   prometheus.Gauge
	HarvestDuration  prometheus.Histogram

	// Ingestion metrics.
	DocumentsIngested *prometheus.CounterVec // labels: outcome={stored,duplicate,dropped,failed}
	DocumentsDropped  *prometheus.CounterVec // labels: reason
	PublishErrors     prometheus.Counter

	// Classification metrics.
	Classifications *prometheus.CounterVec // labels: source={llm,fallback}
	LLMRequests     *prometheus.CounterVec // labels: outcome={success,error,malformed}
	LLMDuration     prometheus.Histogram

	// Geocoding metrics.
	GeocodeRequests    *prometheus.CounterVec   // labels: provider, outcome={success,error,empty}
	GeocodeCache       *prometheus.CounterVec   // labels: result={hit,miss}
	GeocodeAPIDuration *prometheus.HistogramVec // labels: provider
	GeocodeEnabled     prometheus.Gauge

	// Dashboard metrics.
	DashboardRequests *prometheus.CounterVec // labels: route, status
}

func newMetrics(withHelp bool) *Metrics {
	help := func(s string) string {
		if withHelp {
			return s
		}
		return ""
	}
	return &Metrics{
		DocumentsFetched: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "documents_fetched_total",
			Help:      help("Documents returned by ReliefWeb per content type."),
		}, []string{"content_type"}),
		FetchErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fetch_errors_total",
			Help:      help("Failed ReliefWeb fetches per content type."),
		}, []string{"content_type"}),
		HarvestRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "harvest_running",
			Help:      help("1 while a harvest pass is in progress."),
		}),
		HarvestDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "harvest_duration_seconds",
			Help:      help("Duration of a complete harvest pass across all content types."),
			Buckets:   []float64{1, 5, 10, 30, 60, 120, 300, 600},
		}),
		DocumentsIngested: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "documents_ingested_total",
			Help:      help("Ingestion outcomes."),
		}, []string{"outcome"}),
		DocumentsDropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "documents_dropped_total",
			Help:      help("Documents dropped before storage, by reason."),
		}, []string{"reason"}),
		PublishErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "publish_errors_total",
			Help:      help("Stored reports that could not be published to Kafka."),
		}),
		Classifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "classifications_total",
			Help:      help("Classification results by source."),
		}, []string{"source"}),
		LLMRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "llm_requests_total",
			Help:      help("LLM completion attempts by outcome."),
		}, []string{"outcome"}),
		LLMDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "llm_request_duration_seconds",
			Help:      help("LLM completion request duration in seconds."),
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}),
		GeocodeRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "geocode_requests_total",
			Help:      help("Geocoding API requests by provider and outcome."),
		}, []string{"provider", "outcome"}),
		GeocodeCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "geocode_cache_total",
			Help:      help("Geocoding cache lookups by result."),
		}, []string{"result"}),
		GeocodeAPIDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "geocode_api_duration_seconds",
			Help:      help("Geocoding API request duration in seconds."),
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}, []string{"provider"}),
		GeocodeEnabled: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "geocode_enabled",
			Help:      help("1 when an external geocoder is configured, 0 otherwise."),
		}),
		DashboardRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dashboard_requests_total",
			Help:      help("Dashboard HTTP requests by route and status code."),
		}, []string{"route", "status"}),
	}
}

// NewMetrics creates and registers all metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics(true)

	prometheus.MustRegister(
		m.DocumentsFetched,
		m.FetchErrors,
		m.HarvestRunning,
		m.HarvestDuration,
		m.DocumentsIngested,
		m.DocumentsDropped,
		m.PublishErrors,
		m.Classifications,
		m.LLMRequests,
		m.LLMDuration,
		m.GeocodeRequests,
		m.GeocodeCache,
		m.GeocodeAPIDuration,
		m.GeocodeEnabled,
		m.DashboardRequests,
	)

	return m
}

// NewMetricsForTesting creates unregistered Metrics to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics(false)
}
