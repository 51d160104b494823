// Package indicator turns an OHLC series into plottable series: price line
// segments, a simple moving average, Bollinger bands and the period high/low.
//
// Every function is pure. Inputs are never modified and each call allocates its
// own output, so concurrent calls need no coordination.
package indicator

import (
	"math"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/stockview/internal/types"
	"github.com/rxtech-lab/stockview/pkg/errors"
)

func validateWindow(name string, window int) error {
	if window <= 0 {
		return errors.Newf(errors.ErrCodeInvalidConfiguration, "%s must be a positive integer, got %d", name, window)
	}

	return nil
}

// rolling applies fn to every trailing window of closes. Points before the
// window is full stay None, as do points where fn reports no value.
func rolling(series types.OhlcSeries, window int, fn func(closes []float64) (float64, bool)) []types.SeriesPoint {
	closes := series.Closes()
	points := make([]types.SeriesPoint, len(series))

	for i, bar := range series {
		points[i] = types.SeriesPoint{Time: bar.Time, Value: optional.None[float64]()}

		if i < window-1 {
			continue
		}

		if v, ok := fn(closes[i-window+1 : i+1]); ok {
			points[i].Value = optional.Some(v)
		}
	}

	return points
}

func mean(values []float64) float64 {
	sum := 0.0
	for _, v := range values {
		sum += v
	}

	return sum / float64(len(values))
}

// sampleStdDev divides by n-1 and is undefined for fewer than two values.
func sampleStdDev(values []float64) (float64, bool) {
	if len(values) < 2 {
		return 0, false
	}

	m := mean(values)

	var squaredDiffSum float64

	for _, v := range values {
		diff := v - m
		squaredDiffSum += diff * diff
	}

	return math.Sqrt(squaredDiffSum / float64(len(values)-1)), true
}
