package domain

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- mock geocoder ---

type mockGeocoder struct {
	result  GeocodingResult
	err     error
	calls   int
	name    string
	country string
}

func (m *mockGeocoder) ForwardGeocode(_ context.Context, name, country string) (GeocodingResult, error) {
	m.calls++
	m.name = name
	m.country = country
	return m.result, m.err
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// --- tests ---

func TestEnrichWithGeocoding_NilGeocoder(t *testing.T) {
	report := Report{LocationText: "Port-au-Prince"}

	result := EnrichWithGeocoding(context.Background(), report, nil, discardLogger())

	assert.Nil(t, result.Geo)
	assert.Empty(t, result.Metadata.GeoSource)
}

func TestEnrichWithGeocoding_ForwardGeocode(t *testing.T) {
	geo := &mockGeocoder{result: GeocodingResult{Lat: 18.5392, Lon: -72.335, PlaceName: "Port-au-Prince"}}
	report := Report{LocationText: "Port-au-Prince"}

	result := EnrichWithGeocoding(context.Background(), report, geo, discardLogger())

	require.NotNil(t, result.Geo)
	assert.InDelta(t, 18.5392, result.Geo.Lat, 0.0001)
	assert.InDelta(t, -72.335, result.Geo.Lon, 0.0001)
	assert.Equal(t, GeoSourceGeocoder, result.Metadata.GeoSource)
	assert.Equal(t, "Port-au-Prince", geo.name)
	assert.Equal(t, GeocodeCountry, geo.country)
}

func TestEnrichWithGeocoding_Error(t *testing.T) {
	geo := &mockGeocoder{err: errors.New("timeout")}
	report := Report{LocationText: "Port-au-Prince"}

	result := EnrichWithGeocoding(context.Background(), report, geo, discardLogger())

	assert.Nil(t, result.Geo)
	assert.Equal(t, GeoSourceFailed, result.Metadata.GeoSource)
}

func TestEnrichWithGeocoding_NotFound(t *testing.T) {
	geo := &mockGeocoder{}
	report := Report{LocationText: "Nowhere"}

	result := EnrichWithGeocoding(context.Background(), report, geo, discardLogger())

	assert.Nil(t, result.Geo)
	assert.Empty(t, result.Metadata.GeoSource)
	assert.Equal(t, 1, geo.calls)
}

func TestEnrichWithGeocoding_SkipsWhenCoordsPresent(t *testing.T) {
	geo := &mockGeocoder{}
	report := Report{LocationText: "Delmas", Geo: &Geo{Lat: 18.5, Lon: -72.3}}

	EnrichWithGeocoding(context.Background(), report, geo, discardLogger())

	assert.Zero(t, geo.calls)
}

func TestEnrichWithGeocoding_SkipsWithoutLocation(t *testing.T) {
	geo := &mockGeocoder{}

	EnrichWithGeocoding(context.Background(), Report{}, geo, discardLogger())

	assert.Zero(t, geo.calls)
}
