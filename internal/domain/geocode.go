package domain

import (
	"context"
	"log/slog"
)

// GeocodeCountry scopes every forward lookup.
const GeocodeCountry = "Haiti"

// Geo sources recorded in LocationMetadata.
const (
	GeoSourceClassifier = "classifier"
	GeoSourceHierarchy  = "hierarchy"
	GeoSourceGeocoder   = "geocoder"
	GeoSourceFailed     = "failed"
)

// EnrichWithGeocoding fills in coordinates for a report that has a location
// but none yet. If geocoder is nil or the lookup fails, the report is
// returned without coordinates (graceful degradation).
func EnrichWithGeocoding(ctx context.Context, report Report, geocoder Geocoder, logger *slog.Logger) Report {
	if geocoder == nil || report.Geo != nil || report.LocationText == "" {
		return report
	}

	result, err := geocoder.ForwardGeocode(ctx, report.LocationText, GeocodeCountry)
	if err != nil {
		logger.Warn("forward geocoding failed",
			"location", report.LocationText,
			"url", report.URL,
			"error", err,
		)
		report.Metadata.GeoSource = GeoSourceFailed
		return report
	}
	if !result.Found() {
		logger.Debug("location not found by geocoder", "location", report.LocationText)
		return report
	}
	report.Geo = &Geo{Lat: result.Lat, Lon: result.Lon}
	report.Metadata.GeoSource = GeoSourceGeocoder
	return report
}
