package indicator

import (
	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/stockview/internal/types"
)

// ComputeSummary returns the highest High and lowest Low in the series.
// Both are None for an empty series so callers never display a fake zero.
func ComputeSummary(series types.OhlcSeries) (high, low optional.Option[float64]) {
	if len(series) == 0 {
		return optional.None[float64](), optional.None[float64]()
	}

	h, l := series[0].High, series[0].Low
	for _, bar := range series[1:] {
		if bar.High > h {
			h = bar.High
		}

		if bar.Low < l {
			l = bar.Low
		}
	}

	return optional.Some(h), optional.Some(l)
}
