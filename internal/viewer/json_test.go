package viewer

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/stockview/internal/indicator"
	"github.com/rxtech-lab/stockview/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReportJSON(t *testing.T) {
	start := time.Date(2024, 1, 2, 21, 0, 0, 0, time.UTC)
	series := types.OhlcSeries{
		{Symbol: "AAPL", Time: start, Open: 10, High: 11, Low: 9, Close: 10.5, Volume: 100},
		{Symbol: "AAPL", Time: start.AddDate(0, 0, 1), Open: 10.5, High: 12, Low: 10, Close: 11.5, Volume: 200},
	}

	request := indicator.IndicatorRequest{IncludeSma: true, SmaWindow: 2, IncludeLineSegments: true}
	result, err := indicator.Compute(series, request)
	require.NoError(t, err)

	report := Report{
		Symbol:     "AAPL",
		Period:     types.PeriodOneMonth,
		PlotType:   types.PlotTypeLine,
		Indicators: request,
		Company: types.CompanyInfo{
			LongName: optional.Some("Apple Inc."),
			Sector:   optional.None[string](),
			Industry: optional.None[string](),
		},
		Series: series,
		Result: result,
	}

	out := report.JSON()
	assert.Equal(t, "AAPL Line Chart (1mo)", out.Title)
	assert.Len(t, out.Bars, 2)
	require.Len(t, out.Segments, 1)
	assert.Equal(t, "rising", out.Segments[0].Trend)
	require.NotNil(t, out.PeriodHigh)
	assert.Equal(t, 12.0, *out.PeriodHigh)
	assert.Nil(t, out.BollingerUpper)

	require.NotNil(t, out.Sma)
	assert.Equal(t, "2-Day SMA", out.Sma.Label)
	assert.Nil(t, out.Sma.Points[0].Value)
	require.NotNil(t, out.Sma.Points[1].Value)
	assert.InDelta(t, 11.0, *out.Sma.Points[1].Value, 1e-9)

	encoded, err := json.Marshal(out)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(encoded, &decoded))

	company := decoded["company"].(map[string]any)
	assert.Equal(t, "Apple Inc.", company["longName"])
	assert.Nil(t, company["sector"])
	assert.NotContains(t, decoded, "bollingerLower")
}
