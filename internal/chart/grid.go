package chart

import (
	"math"
	"time"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/stockview/internal/types"
)

type cellKind int

const (
	kindEmpty cellKind = iota
	kindRising
	kindFalling
	kindSma
	kindBand
)

type cell struct {
	glyph rune
	kind  cellKind
}

// column aggregates the bars drawn in one terminal column.
type column struct {
	time                   time.Time
	open, high, low, close float64
	sma, upper, lower      optional.Option[float64]
	// trend compares the close with the previous column's close.
	trend types.Trend
}

func newGrid(height, width int) [][]cell {
	grid := make([][]cell, height)
	for y := range grid {
		grid[y] = make([]cell, width)
	}

	return grid
}

// bucketize maps the series onto at most width columns. With one bar per
// column the trends are taken from the computed line segments; wider series
// are aggregated OHLC-style and trends compare aggregated closes, ties falling.
func bucketize(series types.OhlcSeries, result types.ComputationResult, width int) []column {
	n := len(series)
	count := min(n, width)
	columns := make([]column, count)

	sma := result.SmaSeries.TakeOr(nil)
	upper := result.BollingerUpper.TakeOr(nil)
	lower := result.BollingerLower.TakeOr(nil)

	for c := range columns {
		start := c * n / count
		end := (c + 1) * n / count

		col := column{
			time:  series[start].Time,
			open:  series[start].Open,
			high:  series[start].High,
			low:   series[start].Low,
			close: series[end-1].Close,
			sma:   lastDefined(sma, start, end),
			upper: lastDefined(upper, start, end),
			lower: lastDefined(lower, start, end),
			trend: types.TrendFalling,
		}

		for _, bar := range series[start:end] {
			col.high = math.Max(col.high, bar.High)
			col.low = math.Min(col.low, bar.Low)
		}

		columns[c] = col
	}

	segments := result.PriceSegments
	perBar := count == n && len(segments) == n-1

	for c := 1; c < count; c++ {
		switch {
		case perBar:
			columns[c].trend = segments[c-1].Trend
		case columns[c].close > columns[c-1].close:
			columns[c].trend = types.TrendRising
		}
	}

	// the first point takes the color of the segment leaving it
	if count > 1 {
		columns[0].trend = columns[1].trend
	}

	return columns
}

func lastDefined(points []types.SeriesPoint, start, end int) optional.Option[float64] {
	if len(points) < end {
		return optional.None[float64]()
	}

	for i := end - 1; i >= start; i-- {
		if points[i].Value.IsSome() {
			return points[i].Value
		}
	}

	return optional.None[float64]()
}

// priceRange spans every drawn value. A flat range is widened so it can be scaled.
func priceRange(columns []column) (float64, float64) {
	lo, hi := math.Inf(1), math.Inf(-1)

	for _, col := range columns {
		lo = math.Min(lo, col.low)
		hi = math.Max(hi, col.high)

		for _, v := range []optional.Option[float64]{col.sma, col.upper, col.lower} {
			if v.IsSome() {
				lo = math.Min(lo, v.Unwrap())
				hi = math.Max(hi, v.Unwrap())
			}
		}
	}

	if hi-lo < 1e-9 {
		lo, hi = lo-0.5, hi+0.5
	}

	return lo, hi
}

// priceRow maps price onto a row index, row 0 being the top (highest price).
func priceRow(price, lo, hi float64, height int) int {
	row := int(math.Round((hi - price) / (hi - lo) * float64(height-1)))

	return max(0, min(height-1, row))
}
