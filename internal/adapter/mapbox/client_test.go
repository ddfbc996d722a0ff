package mapbox

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/couchcryptid/haiti-crisis-monitor/internal/observability"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testToken         = "test-token"
	contentTypeJSON   = "application/json"
	headerContentType = "Content-Type"
)

func testMetrics() *observability.Metrics {
	return observability.NewMetricsForTesting()
}

func testClient(baseURL string) *Client {
	return &Client{
		token:       testToken,
		countryCode: "ht",
		httpClient:  &http.Client{Timeout: 5 * time.Second},
		baseURL:     baseURL,
		metrics:     testMetrics(),
		logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

func TestClient_ForwardGeocode_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.URL.Path, "Kenscoff, Haiti")
		assert.Equal(t, "1", r.URL.Query().Get("limit"))
		assert.Equal(t, "ht", r.URL.Query().Get("country"))
		assert.Equal(t, testToken, r.URL.Query().Get("access_token"))

		resp := response{
			Features: []feature{
				{
					Center:    []float64{-72.2869, 18.4483},
					PlaceName: "Kenscoff, Ouest, Haiti",
					Text:      "Kenscoff",
					Relevance: 0.95,
				},
			},
		}
		w.Header().Set(headerContentType, contentTypeJSON)
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	result, err := c.ForwardGeocode(context.Background(), "Kenscoff", "Haiti")
	require.NoError(t, err)

	assert.InDelta(t, 18.4483, result.Lat, 1e-9)
	assert.InDelta(t, -72.2869, result.Lon, 1e-9)
	assert.Equal(t, "Kenscoff, Ouest, Haiti", result.FormattedAddress)
	assert.Equal(t, "Kenscoff", result.PlaceName)
	assert.InDelta(t, 0.95, result.Confidence, 1e-9)
	assert.InDelta(t, 1, testutil.ToFloat64(c.metrics.GeocodeRequests.WithLabelValues("mapbox", "success")), 0)
}

func TestClient_ForwardGeocode_NoResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set(headerContentType, contentTypeJSON)
		require.NoError(t, json.NewEncoder(w).Encode(response{Features: []feature{}}))
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	result, err := c.ForwardGeocode(context.Background(), "NONEXISTENT", "Haiti")
	require.NoError(t, err)
	assert.False(t, result.Found())
	assert.Empty(t, result.FormattedAddress)
	assert.InDelta(t, 1, testutil.ToFloat64(c.metrics.GeocodeRequests.WithLabelValues("mapbox", "empty")), 0)
}

func TestClient_ForwardGeocode_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"message":"Not Authorized"}`))
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	c.token = "bad-token"

	_, err := c.ForwardGeocode(context.Background(), "Delmas", "Haiti")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
	assert.InDelta(t, 1, testutil.ToFloat64(c.metrics.GeocodeRequests.WithLabelValues("mapbox", "error")), 0)
}

func TestClient_ForwardGeocode_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	c.httpClient = &http.Client{Timeout: 50 * time.Millisecond}

	_, err := c.ForwardGeocode(context.Background(), "Delmas", "Haiti")
	require.Error(t, err)
}
