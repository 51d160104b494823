package types

import "time"

// MarketData is one sampled trading period (an OHLC bar) as returned by a market data provider.
type MarketData struct {
	Symbol string    `json:"symbol" csv:"symbol"`
	Time   time.Time `json:"time" csv:"time"`
	Open   float64   `json:"open" csv:"open"`
	High   float64   `json:"high" csv:"high"`
	Low    float64   `json:"low" csv:"low"`
	Close  float64   `json:"close" csv:"close"`
	Volume float64   `json:"volume" csv:"volume"`
}

// IsRising reports whether the bar closed at or above its open.
// Candlestick bodies use it to pick the up or down color.
func (m MarketData) IsRising() bool {
	return m.Close >= m.Open
}

// OhlcSeries is an ordered sequence of bars, ascending by Time.
// Computations receive it read-only and never modify it.
type OhlcSeries []MarketData

// Closes returns the close prices in series order.
func (s OhlcSeries) Closes() []float64 {
	closes := make([]float64, len(s))
	for i, bar := range s {
		closes[i] = bar.Close
	}

	return closes
}

// Since returns the bars whose time is strictly after start.
// The returned slice shares the backing array with s.
func (s OhlcSeries) Since(start time.Time) OhlcSeries {
	for i, bar := range s {
		if bar.Time.After(start) {
			return s[i:]
		}
	}

	return s[len(s):]
}

// Last returns the final bar and whether the series had one.
func (s OhlcSeries) Last() (MarketData, bool) {
	if len(s) == 0 {
		return MarketData{}, false
	}

	return s[len(s)-1], true
}
