package domain

import "context"

// GeocodingResult contains location data returned by a geocoding provider.
type GeocodingResult struct {
	Lat              float64
	Lon              float64
	FormattedAddress string
	PlaceName        string
	Confidence       float64 // 0.0–1.0 provider confidence score
}

// Found reports whether the provider returned usable coordinates.
func (r GeocodingResult) Found() bool {
	return Geo{Lat: r.Lat, Lon: r.Lon}.Valid()
}

// Geocoder resolves place names to coordinates.
type Geocoder interface {
	// ForwardGeocode converts a place name, scoped to a country, to coordinates.
	ForwardGeocode(ctx context.Context, name, country string) (GeocodingResult, error)
}
