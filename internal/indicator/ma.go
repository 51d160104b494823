package indicator

import (
	"github.com/rxtech-lab/stockview/internal/types"
)

// ComputeRollingMean returns the simple moving average of Close over a
// trailing window. Point i holds a value only when i >= window-1; a window
// longer than the series yields an all-None series.
func ComputeRollingMean(series types.OhlcSeries, window int) ([]types.SeriesPoint, error) {
	if err := validateWindow("sma window", window); err != nil {
		return nil, err
	}

	return rolling(series, window, func(closes []float64) (float64, bool) {
		return mean(closes), true
	}), nil
}

// ComputeRollingStdDev returns the sample standard deviation (n-1 divisor) of
// Close over a trailing window, with the same None rule as ComputeRollingMean.
// A window of 1 is accepted but every point is None.
func ComputeRollingStdDev(series types.OhlcSeries, window int) ([]types.SeriesPoint, error) {
	if err := validateWindow("stddev window", window); err != nil {
		return nil, err
	}

	return rolling(series, window, sampleStdDev), nil
}
