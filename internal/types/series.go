package types

import (
	"time"

	"github.com/moznion/go-optional"
)

// SeriesPoint is one plottable value of an indicator line.
// Value is None where the rolling window does not yet hold enough observations.
type SeriesPoint struct {
	Time  time.Time
	Value optional.Option[float64]
}

// Trend tags a line segment for up/down coloring.
type Trend string

const (
	TrendRising  Trend = "rising"
	TrendFalling Trend = "falling"
)

// LineSegment connects the closes of two consecutive bars.
type LineSegment struct {
	StartTime  time.Time
	StartClose float64
	EndTime    time.Time
	EndClose   float64
	Trend      Trend
}

// ComputationResult holds every plottable series derived from one OhlcSeries.
type ComputationResult struct {
	// PriceSegments is only populated when line-style output was requested.
	PriceSegments  []LineSegment
	SmaSeries      optional.Option[[]SeriesPoint]
	BollingerUpper optional.Option[[]SeriesPoint]
	BollingerLower optional.Option[[]SeriesPoint]
	PeriodHigh     optional.Option[float64]
	PeriodLow      optional.Option[float64]
}
