// Package nominatim implements domain.Geocoder against the OpenStreetMap
// Nominatim search API.
package nominatim

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/couchcryptid/haiti-crisis-monitor/internal/domain"
	"github.com/couchcryptid/haiti-crisis-monitor/internal/observability"
	"github.com/go-resty/resty/v2"
)

const (
	DefaultBaseURL   = "https://nominatim.openstreetmap.org"
	DefaultUserAgent = "haiti_crisis_app"

	provider = "nominatim"
)

// Client implements domain.Geocoder. Nominatim's usage policy requires an
// identifying User-Agent.
type Client struct {
	http        *resty.Client
	countryCode string
	logger      *slog.Logger
	metrics     *observability.Metrics
}

// NewClient creates a Nominatim client. countryCode (ISO 3166-1 alpha-2)
// restricts results when non-empty.
func NewClient(baseURL, userAgent, countryCode string, timeout time.Duration, logger *slog.Logger, metrics *observability.Metrics) *Client {
	rc := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetHeader("User-Agent", userAgent).
		SetHeader("Accept", "application/json")

	return &Client{
		http:        rc,
		countryCode: countryCode,
		logger:      logger,
		metrics:     metrics,
	}
}

// ForwardGeocode looks up "{name}, {country}" and returns the best match.
func (c *Client) ForwardGeocode(ctx context.Context, name, country string) (domain.GeocodingResult, error) {
	query := name
	if country != "" {
		query = fmt.Sprintf("%s, %s", name, country)
	}

	params := map[string]string{
		"q":      query,
		"format": "json",
		"limit":  "1",
	}
	if c.countryCode != "" {
		params["countrycodes"] = c.countryCode
	}

	var places []place
	start := time.Now()
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(params).
		ForceContentType("application/json").
		SetResult(&places).
		Get("/search")
	c.metrics.GeocodeAPIDuration.WithLabelValues(provider).Observe(time.Since(start).Seconds())
	if err != nil {
		c.metrics.GeocodeRequests.WithLabelValues(provider, "error").Inc()
		return domain.GeocodingResult{}, fmt.Errorf("nominatim request: %w", err)
	}
	if resp.IsError() {
		c.metrics.GeocodeRequests.WithLabelValues(provider, "error").Inc()
		return domain.GeocodingResult{}, fmt.Errorf("nominatim API error: status %d: %s", resp.StatusCode(), resp.Body())
	}

	if len(places) == 0 {
		c.metrics.GeocodeRequests.WithLabelValues(provider, "empty").Inc()
		return domain.GeocodingResult{}, nil
	}

	p := places[0]
	lat, errLat := strconv.ParseFloat(p.Lat, 64)
	lon, errLon := strconv.ParseFloat(p.Lon, 64)
	if errLat != nil || errLon != nil {
		c.metrics.GeocodeRequests.WithLabelValues(provider, "error").Inc()
		return domain.GeocodingResult{}, fmt.Errorf("nominatim coordinates %q,%q not numeric", p.Lat, p.Lon)
	}

	c.metrics.GeocodeRequests.WithLabelValues(provider, "success").Inc()
	return domain.GeocodingResult{
		Lat:              lat,
		Lon:              lon,
		FormattedAddress: p.DisplayName,
		PlaceName:        p.Name,
		Confidence:       p.Importance,
	}, nil
}

// Nominatim API response types. Coordinates arrive as strings.

type place struct {
	Lat         string  `json:"lat"`
	Lon         string  `json:"lon"`
	DisplayName string  `json:"display_name"`
	Name        string  `json:"name"`
	Importance  float64 `json:"importance"`
}
