// Package config loads process settings from the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
	"github.com/joho/godotenv"
)

// Geocoder backends selectable through GEOCODER.
const (
	GeocoderNominatim = "nominatim"
	GeocoderMapbox    = "mapbox"
	GeocoderNone      = "none"
)

// Config holds all settings shared by the binaries, populated from environment variables.
type Config struct {
	DBPath          string
	HTTPAddr        string
	DashboardAddr   string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	ReliefWebBaseURL string
	ReliefWebAppName string
	ReliefWebTimeout time.Duration

	HarvestContentTypes []string
	HarvestLimit        int
	HarvestInterval     time.Duration
	HarvestRequestDelay time.Duration
	// HarvestConflictOnly drops reports that are not conflict related.
	HarvestConflictOnly bool

	// LLM classification. An empty key disables the LLM and every
	// document goes through the keyword fallback.
	LLMAPIKey      string
	LLMBaseURL     string
	LLMModel       string
	LLMTimeout     time.Duration
	LLMMaxAttempts int
	LLMRetryDelay  time.Duration

	Geocoder            string
	GeocoderTimeout     time.Duration
	GeocoderCacheSize   int
	GeocoderCountryCode string
	NominatimBaseURL    string
	NominatimUserAgent  string
	MapboxToken         string

	KafkaEnabled bool
	KafkaBrokers []string
	KafkaTopic   string
}

// LLMEnabled reports whether an API key is configured.
func (c *Config) LLMEnabled() bool { return c.LLMAPIKey != "" }

// LoadDotEnv loads variables from the given files into the environment
// without overriding values already set. Missing files are ignored.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load %s: %w", f, err)
		}
	}
	return nil
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		DBPath:          sharedcfg.EnvOrDefault("DB_PATH", "reports.db"),
		HTTPAddr:        sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		DashboardAddr:   sharedcfg.EnvOrDefault("DASHBOARD_ADDR", ":8501"),
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		ReliefWebBaseURL: sharedcfg.EnvOrDefault("RELIEFWEB_BASE_URL", "https://api.reliefweb.int/v1"),
		ReliefWebAppName: sharedcfg.EnvOrDefault("RELIEFWEB_APPNAME", "haiti-crisis-dashboard"),

		HarvestContentTypes: parseList(sharedcfg.EnvOrDefault("HARVEST_CONTENT_TYPES", "reports,blog,references")),
		HarvestConflictOnly: os.Getenv("HARVEST_CONFLICT_ONLY") == "true",

		LLMAPIKey:  firstEnv("GOOGLE_API_KEY", "LLM_API_KEY"),
		LLMBaseURL: sharedcfg.EnvOrDefault("LLM_BASE_URL", "https://generativelanguage.googleapis.com/v1beta/openai/"),
		LLMModel:   sharedcfg.EnvOrDefault("LLM_MODEL", "gemini-2.0-flash"),

		Geocoder:            strings.ToLower(sharedcfg.EnvOrDefault("GEOCODER", GeocoderNominatim)),
		GeocoderCountryCode: sharedcfg.EnvOrDefault("GEOCODER_COUNTRY_CODE", "ht"),
		NominatimBaseURL:    sharedcfg.EnvOrDefault("NOMINATIM_BASE_URL", "https://nominatim.openstreetmap.org"),
		NominatimUserAgent:  sharedcfg.EnvOrDefault("NOMINATIM_USER_AGENT", "haiti_crisis_app"),
		MapboxToken:         os.Getenv("MAPBOX_TOKEN"),

		KafkaEnabled: os.Getenv("KAFKA_ENABLED") == "true",
		KafkaBrokers: sharedcfg.ParseBrokers(sharedcfg.EnvOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaTopic:   sharedcfg.EnvOrDefault("KAFKA_TOPIC", "haiti-reports"),
	}

	durations := []struct {
		key       string
		def       string
		dst       *time.Duration
		allowZero bool
	}{
		{"RELIEFWEB_TIMEOUT", "30s", &cfg.ReliefWebTimeout, false},
		{"HARVEST_INTERVAL", "0s", &cfg.HarvestInterval, true},
		{"HARVEST_REQUEST_DELAY", "300ms", &cfg.HarvestRequestDelay, true},
		{"LLM_TIMEOUT", "30s", &cfg.LLMTimeout, false},
		{"LLM_RETRY_DELAY", "5s", &cfg.LLMRetryDelay, true},
		{"GEOCODER_TIMEOUT", "10s", &cfg.GeocoderTimeout, false},
	}
	for _, d := range durations {
		v, err := parseDuration(d.key, d.def, d.allowZero)
		if err != nil {
			return nil, err
		}
		*d.dst = v
	}

	ints := []struct {
		key string
		def int
		dst *int
	}{
		{"HARVEST_LIMIT", 20, &cfg.HarvestLimit},
		{"LLM_MAX_ATTEMPTS", 3, &cfg.LLMMaxAttempts},
		{"GEOCODER_CACHE_SIZE", 1000, &cfg.GeocoderCacheSize},
	}
	for _, i := range ints {
		v, err := parsePositiveInt(i.key, i.def)
		if err != nil {
			return nil, err
		}
		*i.dst = v
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Geocoder {
	case GeocoderNominatim, GeocoderNone:
	case GeocoderMapbox:
		if c.MapboxToken == "" {
			return errors.New("GEOCODER is mapbox but MAPBOX_TOKEN is not set")
		}
	default:
		return fmt.Errorf("invalid GEOCODER %q", c.Geocoder)
	}
	if len(c.HarvestContentTypes) == 0 {
		return errors.New("HARVEST_CONTENT_TYPES is required")
	}
	if c.DBPath == "" {
		return errors.New("DB_PATH is required")
	}
	if c.KafkaEnabled {
		if len(c.KafkaBrokers) == 0 {
			return errors.New("KAFKA_BROKERS is required")
		}
		if c.KafkaTopic == "" {
			return errors.New("KAFKA_TOPIC is required")
		}
	}
	return nil
}

func parseDuration(key, def string, allowZero bool) (time.Duration, error) {
	d, err := time.ParseDuration(sharedcfg.EnvOrDefault(key, def))
	if err != nil || d < 0 || (d == 0 && !allowZero) {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return d, nil
}

func parsePositiveInt(key string, def int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return n, nil
}

func parseList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func firstEnv(keys ...string) string {
	for _, k := range keys {
		if v := os.Getenv(k); v != "" {
			return v
		}
	}
	return ""
}
