package indicator

import (
	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/stockview/internal/types"
)

// Compute derives every series the request asks for. The period high/low is
// always computed; an empty series yields None summaries and empty series, not
// an error. Configuration errors are returned before any work is done.
func Compute(series types.OhlcSeries, request IndicatorRequest) (types.ComputationResult, error) {
	if err := request.Validate(); err != nil {
		return types.ComputationResult{}, err
	}

	high, low := ComputeSummary(series)

	result := types.ComputationResult{
		PriceSegments:  []types.LineSegment{},
		SmaSeries:      optional.None[[]types.SeriesPoint](),
		BollingerUpper: optional.None[[]types.SeriesPoint](),
		BollingerLower: optional.None[[]types.SeriesPoint](),
		PeriodHigh:     high,
		PeriodLow:      low,
	}

	if request.IncludeLineSegments {
		result.PriceSegments = ComputeLineSegments(series)
	}

	var sma []types.SeriesPoint

	if request.IncludeSma {
		var err error

		sma, err = ComputeRollingMean(series, request.SmaWindow)
		if err != nil {
			return types.ComputationResult{}, err
		}

		result.SmaSeries = optional.Some(sma)
	}

	if request.IncludeBollinger {
		var (
			upper, lower []types.SeriesPoint
			err          error
		)

		if request.smaShared() {
			upper, lower, err = bandsFromMean(series, sma, request.BollingerWindow, request.BollingerStdDevMultiplier)
		} else {
			upper, lower, err = ComputeBollingerBands(series, request.BollingerWindow, request.BollingerStdDevMultiplier)
		}

		if err != nil {
			return types.ComputationResult{}, err
		}

		result.BollingerUpper = optional.Some(upper)
		result.BollingerLower = optional.Some(lower)
	}

	return result, nil
}
