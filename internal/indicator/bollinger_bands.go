package indicator

import (
	"math"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/stockview/internal/types"
	"github.com/rxtech-lab/stockview/pkg/errors"
)

// ComputeBollingerBands returns mean ± multiplier*stddev over a trailing window.
// A negative multiplier is accepted and simply puts upper below lower.
func ComputeBollingerBands(series types.OhlcSeries, window int, multiplier float64) (upper, lower []types.SeriesPoint, err error) {
	sma, err := ComputeRollingMean(series, window)
	if err != nil {
		return nil, nil, err
	}

	return bandsFromMean(series, sma, window, multiplier)
}

// bandsFromMean lets Compute hand over an SMA it already holds for the same window.
func bandsFromMean(series types.OhlcSeries, sma []types.SeriesPoint, window int, multiplier float64) (upper, lower []types.SeriesPoint, err error) {
	if err := validateMultiplier(multiplier); err != nil {
		return nil, nil, err
	}

	stdDev, err := ComputeRollingStdDev(series, window)
	if err != nil {
		return nil, nil, err
	}

	upper = make([]types.SeriesPoint, len(series))
	lower = make([]types.SeriesPoint, len(series))

	for i := range series {
		upper[i] = types.SeriesPoint{Time: sma[i].Time, Value: optional.None[float64]()}
		lower[i] = types.SeriesPoint{Time: sma[i].Time, Value: optional.None[float64]()}

		if sma[i].Value.IsNone() || stdDev[i].Value.IsNone() {
			continue
		}

		m := sma[i].Value.Unwrap()
		sd := stdDev[i].Value.Unwrap()
		upper[i].Value = optional.Some(m + multiplier*sd)
		lower[i].Value = optional.Some(m - multiplier*sd)
	}

	return upper, lower, nil
}

func validateMultiplier(multiplier float64) error {
	if math.IsNaN(multiplier) || math.IsInf(multiplier, 0) {
		return errors.Newf(errors.ErrCodeInvalidConfiguration, "bollinger multiplier must be a finite number, got %v", multiplier)
	}

	return nil
}
