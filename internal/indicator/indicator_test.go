package indicator

import (
	"math"
	"math/rand"
	"testing"
	"time"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/stockview/internal/types"
	"github.com/rxtech-lab/stockview/pkg/errors"
	"github.com/stretchr/testify/suite"
)

type IndicatorTestSuite struct {
	suite.Suite
	start time.Time
}

func TestIndicatorSuite(t *testing.T) {
	suite.Run(t, new(IndicatorTestSuite))
}

func (suite *IndicatorTestSuite) SetupTest() {
	suite.start = time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
}

func (suite *IndicatorTestSuite) seriesFromCloses(closes ...float64) types.OhlcSeries {
	series := make(types.OhlcSeries, len(closes))
	for i, c := range closes {
		series[i] = types.MarketData{
			Symbol: "TEST",
			Time:   suite.start.AddDate(0, 0, i),
			Open:   c,
			High:   c + 2,
			Low:    c - 2,
			Close:  c,
		}
	}

	return series
}

func (suite *IndicatorTestSuite) randomSeries(n int, seed int64) types.OhlcSeries {
	rng := rand.New(rand.NewSource(seed))
	series := make(types.OhlcSeries, n)
	price := 100.0

	for i := range series {
		open := price
		price = math.Max(1, price+rng.NormFloat64()*3)
		series[i] = types.MarketData{
			Time:  suite.start.AddDate(0, 0, i),
			Open:  open,
			High:  math.Max(open, price) + rng.Float64()*2,
			Low:   math.Min(open, price) - rng.Float64()*2,
			Close: price,
		}
	}

	return series
}

func values(points []types.SeriesPoint) []optional.Option[float64] {
	out := make([]optional.Option[float64], len(points))
	for i, p := range points {
		out[i] = p.Value
	}

	return out
}

func (suite *IndicatorTestSuite) TestSummaryMatchesHighAndLow() {
	series := suite.randomSeries(120, 7)

	high, low := ComputeSummary(series)
	suite.True(high.IsSome())
	suite.True(low.IsSome())

	expectedHigh, expectedLow := series[0].High, series[0].Low
	for _, bar := range series {
		expectedHigh = math.Max(expectedHigh, bar.High)
		expectedLow = math.Min(expectedLow, bar.Low)
	}

	suite.Equal(expectedHigh, high.Unwrap())
	suite.Equal(expectedLow, low.Unwrap())
}

func (suite *IndicatorTestSuite) TestSummaryEmptySeries() {
	high, low := ComputeSummary(types.OhlcSeries{})
	suite.True(high.IsNone())
	suite.True(low.IsNone())
}

func (suite *IndicatorTestSuite) TestSummaryMalformedBarDoesNotPanic() {
	series := types.OhlcSeries{{Time: suite.start, Open: 10, High: 5, Low: 20, Close: 12}}

	high, low := ComputeSummary(series)
	suite.Equal(5.0, high.Unwrap())
	suite.Equal(20.0, low.Unwrap())
}

func (suite *IndicatorTestSuite) TestLineSegmentsCountAndReconstruction() {
	for _, n := range []int{0, 1, 2, 5, 40} {
		series := suite.randomSeries(n, int64(n))
		segments := ComputeLineSegments(series)

		suite.Len(segments, max(n-1, 0))

		if n < 2 {
			continue
		}

		closes := []float64{segments[0].StartClose}
		for i, seg := range segments {
			closes = append(closes, seg.EndClose)
			suite.Equal(series[i].Time, seg.StartTime)
			suite.Equal(series[i+1].Time, seg.EndTime)
		}

		suite.Equal(series.Closes(), closes)
	}
}

func (suite *IndicatorTestSuite) TestLineSegmentsTrend() {
	segments := ComputeLineSegments(suite.seriesFromCloses(10, 11, 11, 9))

	suite.Require().Len(segments, 3)
	suite.Equal(types.TrendRising, segments[0].Trend)
	suite.Equal(types.TrendFalling, segments[1].Trend, "an unchanged close is drawn as falling")
	suite.Equal(types.TrendFalling, segments[2].Trend)
}

func (suite *IndicatorTestSuite) TestRollingMean() {
	points, err := ComputeRollingMean(suite.seriesFromCloses(10, 20, 30, 40), 3)
	suite.NoError(err)

	suite.Equal([]optional.Option[float64]{
		optional.None[float64](),
		optional.None[float64](),
		optional.Some(20.0),
		optional.Some(30.0),
	}, values(points))
	suite.Equal(suite.start.AddDate(0, 0, 3), points[3].Time)
}

func (suite *IndicatorTestSuite) TestRollingMeanWindowLongerThanSeries() {
	points, err := ComputeRollingMean(suite.seriesFromCloses(1, 2, 3), 50)
	suite.NoError(err)
	suite.Len(points, 3)

	for _, p := range points {
		suite.True(p.Value.IsNone())
	}
}

func (suite *IndicatorTestSuite) TestRollingStdDevIsSample() {
	points, err := ComputeRollingStdDev(suite.seriesFromCloses(10, 20), 2)
	suite.NoError(err)
	suite.Require().Len(points, 2)

	suite.True(points[0].Value.IsNone())
	suite.InDelta(7.0710678118654755, points[1].Value.Unwrap(), 1e-12)
}

func (suite *IndicatorTestSuite) TestRollingStdDevWindowOneIsUndefined() {
	points, err := ComputeRollingStdDev(suite.seriesFromCloses(10, 20, 30), 1)
	suite.NoError(err)

	for _, p := range points {
		suite.True(p.Value.IsNone())
	}
}

func (suite *IndicatorTestSuite) TestInvalidWindows() {
	series := suite.seriesFromCloses(1, 2, 3)

	for _, window := range []int{0, -1} {
		_, err := ComputeRollingMean(series, window)
		suite.True(errors.IsInvalidConfiguration(err), "sma window %d", window)

		_, err = ComputeRollingStdDev(series, window)
		suite.True(errors.IsInvalidConfiguration(err), "stddev window %d", window)

		_, _, err = ComputeBollingerBands(series, window, 2)
		suite.True(errors.IsInvalidConfiguration(err), "bollinger window %d", window)

		req := DefaultIndicatorRequest()
		req.SmaWindow = window
		_, err = Compute(series, req)
		suite.True(errors.IsInvalidConfiguration(err), "compute sma window %d", window)

		req = DefaultIndicatorRequest()
		req.IncludeBollinger = true
		req.BollingerWindow = window
		_, err = Compute(series, req)
		suite.True(errors.IsInvalidConfiguration(err), "compute bollinger window %d", window)
	}
}

func (suite *IndicatorTestSuite) TestInvalidWindowIgnoredWhenOverlayDisabled() {
	req := IndicatorRequest{IncludeSma: false, SmaWindow: 0, IncludeBollinger: false, BollingerWindow: -3}

	_, err := Compute(suite.seriesFromCloses(1, 2), req)
	suite.NoError(err)
}

func (suite *IndicatorTestSuite) TestNonFiniteMultiplierRejected() {
	series := suite.seriesFromCloses(1, 2, 3)

	_, _, err := ComputeBollingerBands(series, 2, math.NaN())
	suite.True(errors.IsInvalidConfiguration(err))

	_, _, err = ComputeBollingerBands(series, 2, math.Inf(1))
	suite.True(errors.IsInvalidConfiguration(err))
}

func (suite *IndicatorTestSuite) TestBollingerUpperAboveLower() {
	series := suite.randomSeries(200, 42)

	for _, multiplier := range []float64{0, 1, 2, 3.5} {
		upper, lower, err := ComputeBollingerBands(series, 20, multiplier)
		suite.NoError(err)

		for i := range upper {
			if upper[i].Value.IsNone() || lower[i].Value.IsNone() {
				continue
			}

			suite.GreaterOrEqual(upper[i].Value.Unwrap(), lower[i].Value.Unwrap())
		}
	}
}

func (suite *IndicatorTestSuite) TestBollingerNegativeMultiplierInverts() {
	upper, lower, err := ComputeBollingerBands(suite.seriesFromCloses(10, 20, 30), 2, -1)
	suite.NoError(err)
	suite.Less(upper[2].Value.Unwrap(), lower[2].Value.Unwrap())
}

func (suite *IndicatorTestSuite) TestBollingerMatchesManualComposition() {
	series := suite.randomSeries(150, 3)

	upper, lower, err := ComputeBollingerBands(series, 20, 2)
	suite.NoError(err)

	mean, err := ComputeRollingMean(series, 20)
	suite.NoError(err)

	stdDev, err := ComputeRollingStdDev(series, 20)
	suite.NoError(err)

	for i := range series {
		if mean[i].Value.IsNone() {
			suite.True(upper[i].Value.IsNone())
			suite.True(lower[i].Value.IsNone())

			continue
		}

		m, sd := mean[i].Value.Unwrap(), stdDev[i].Value.Unwrap()
		suite.Equal(m+2*sd, upper[i].Value.Unwrap())
		suite.Equal(m-2*sd, lower[i].Value.Unwrap())
	}
}

func (suite *IndicatorTestSuite) TestComputeReuseMatchesRecompute() {
	series := suite.randomSeries(120, 11)

	shared := IndicatorRequest{
		IncludeSma:                true,
		SmaWindow:                 30,
		IncludeBollinger:          true,
		BollingerWindow:           30,
		BollingerStdDevMultiplier: 2,
	}
	suite.True(shared.smaShared())

	result, err := Compute(series, shared)
	suite.NoError(err)

	upper, lower, err := ComputeBollingerBands(series, 30, 2)
	suite.NoError(err)

	suite.Equal(upper, result.BollingerUpper.Unwrap())
	suite.Equal(lower, result.BollingerLower.Unwrap())

	sma, err := ComputeRollingMean(series, 30)
	suite.NoError(err)
	suite.Equal(sma, result.SmaSeries.Unwrap())
}

func (suite *IndicatorTestSuite) TestComputeEmptySeries() {
	req := DefaultIndicatorRequest()
	req.IncludeBollinger = true
	req.IncludeLineSegments = true

	result, err := Compute(types.OhlcSeries{}, req)
	suite.NoError(err)

	suite.True(result.PeriodHigh.IsNone())
	suite.True(result.PeriodLow.IsNone())
	suite.Empty(result.PriceSegments)
	suite.Empty(result.SmaSeries.Unwrap())
	suite.Empty(result.BollingerUpper.Unwrap())
	suite.Empty(result.BollingerLower.Unwrap())
}

func (suite *IndicatorTestSuite) TestComputeFollowsFlags() {
	series := suite.seriesFromCloses(10, 20, 30, 40)

	result, err := Compute(series, IndicatorRequest{})
	suite.NoError(err)
	suite.Empty(result.PriceSegments)
	suite.True(result.SmaSeries.IsNone())
	suite.True(result.BollingerUpper.IsNone())
	suite.True(result.BollingerLower.IsNone())
	suite.Equal(42.0, result.PeriodHigh.Unwrap())
	suite.Equal(8.0, result.PeriodLow.Unwrap())

	result, err = Compute(series, IndicatorRequest{
		IncludeSma:                true,
		SmaWindow:                 3,
		IncludeBollinger:          true,
		BollingerWindow:           2,
		BollingerStdDevMultiplier: 2,
		IncludeLineSegments:       true,
	})
	suite.NoError(err)
	suite.Len(result.PriceSegments, 3)
	suite.Equal(30.0, result.SmaSeries.Unwrap()[3].Value.Unwrap())
	suite.Len(result.BollingerUpper.Unwrap(), 4)
}

func (suite *IndicatorTestSuite) TestComputeDoesNotMutateInput() {
	series := suite.randomSeries(60, 5)
	snapshot := append(types.OhlcSeries(nil), series...)

	req := DefaultIndicatorRequest()
	req.IncludeBollinger = true
	req.IncludeLineSegments = true

	_, err := Compute(series, req)
	suite.NoError(err)
	suite.Equal(snapshot, series)
}

func (suite *IndicatorTestSuite) TestDefaultIndicatorRequest() {
	req := DefaultIndicatorRequest()

	suite.True(req.IncludeSma)
	suite.Equal(50, req.SmaWindow)
	suite.False(req.IncludeBollinger)
	suite.Equal(50, req.BollingerWindow)
	suite.Equal(2.0, req.BollingerStdDevMultiplier)
	suite.NoError(req.Validate())
}
