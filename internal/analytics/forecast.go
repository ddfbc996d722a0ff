package analytics

import (
	"time"

	"github.com/couchcryptid/haiti-crisis-monitor/internal/domain"
)

// Forecast parameters.
const (
	MovingAverageWindow = 7
	ForecastHorizon     = 30
)

// ForecastPoint is one day of the trend line. Observed days carry the
// actual count; projected days only the carried-forward average.
type ForecastPoint struct {
	Date          time.Time `json:"date"`
	Count         int       `json:"count"`
	MovingAverage float64   `json:"moving_average"`
	Projected     bool      `json:"projected"`
}

// Forecast computes a trailing moving average of daily counts, with days
// without reports counted as zero, and projects its last value flat for
// horizon days. It is a naive baseline, not a model.
func Forecast(reports []domain.Report, window, horizon int) []ForecastPoint {
	daily := DailyCounts(reports)
	if len(daily) == 0 {
		return nil
	}
	if window <= 0 {
		window = MovingAverageWindow
	}

	byDay := make(map[time.Time]int, len(daily))
	for _, d := range daily {
		byDay[d.Period] = d.Count
	}
	first, last := daily[0].Period, daily[len(daily)-1].Period

	var (
		points []ForecastPoint
		counts []int
		sum    int
	)
	for d := first; !d.After(last); d = d.AddDate(0, 0, 1) {
		n := byDay[d]
		counts = append(counts, n)
		sum += n
		if len(counts) > window {
			sum -= counts[len(counts)-window-1]
		}
		size := min(len(counts), window)
		points = append(points, ForecastPoint{
			Date:          d,
			Count:         n,
			MovingAverage: round2(float64(sum) / float64(size)),
		})
	}

	flat := points[len(points)-1].MovingAverage
	for i := 1; i <= horizon; i++ {
		points = append(points, ForecastPoint{
			Date:          last.AddDate(0, 0, i),
			MovingAverage: flat,
			Projected:     true,
		})
	}
	return points
}
