package indicator

import "github.com/rxtech-lab/stockview/internal/types"

// ComputeLineSegments pairs each bar with its predecessor. A segment is rising
// only when the close strictly increased; an unchanged close counts as falling.
func ComputeLineSegments(series types.OhlcSeries) []types.LineSegment {
	if len(series) < 2 {
		return []types.LineSegment{}
	}

	segments := make([]types.LineSegment, 0, len(series)-1)

	for i := 1; i < len(series); i++ {
		prev, curr := series[i-1], series[i]

		trend := types.TrendFalling
		if curr.Close > prev.Close {
			trend = types.TrendRising
		}

		segments = append(segments, types.LineSegment{
			StartTime:  prev.Time,
			StartClose: prev.Close,
			EndTime:    curr.Time,
			EndClose:   curr.Close,
			Trend:      trend,
		})
	}

	return segments
}
