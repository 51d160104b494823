package mocks

import (
	"math"
	"math/rand"
	"time"

	"github.com/rxtech-lab/stockview/internal/types"
)

// DataGenerator generates realistic daily bars for tests and benchmarks.
type DataGenerator struct {
	rng *rand.Rand
}

// NewDataGenerator creates a new DataGenerator with the given seed.
// Use a fixed seed for reproducible results in tests.
func NewDataGenerator(seed int64) *DataGenerator {
	return &DataGenerator{
		rng: rand.New(rand.NewSource(seed)),
	}
}

// GeneratorConfig configures how bars are generated.
type GeneratorConfig struct {
	Symbol    string
	StartTime time.Time
	// Count is the number of trading sessions to generate
	Count        int
	InitialPrice float64
	// Volatility controls the daily move (0.02 = 2% typical daily volatility)
	Volatility float64
	// Trend is the total drift over the series (-0.2 to 0.2 for bearish to bullish)
	Trend      float64
	VolumeBase float64
	// SkipWeekends leaves Saturdays and Sundays out like an equity exchange calendar
	SkipWeekends bool
}

// DefaultConfig returns roughly one year of equity sessions.
func DefaultConfig() GeneratorConfig {
	return GeneratorConfig{
		Symbol:       "TEST",
		StartTime:    time.Date(2024, 1, 2, 21, 0, 0, 0, time.UTC),
		Count:        252,
		InitialPrice: 150.0,
		Volatility:   0.015,
		Trend:        0.0,
		VolumeBase:   5_000_000,
		SkipWeekends: true,
	}
}

// Generate creates a series following a geometric Brownian motion model.
func (g *DataGenerator) Generate(config GeneratorConfig) types.OhlcSeries {
	data := make(types.OhlcSeries, config.Count)
	currentPrice := config.InitialPrice
	currentTime := config.StartTime

	for i := 0; i < config.Count; i++ {
		if config.SkipWeekends {
			currentTime = nextSession(currentTime)
		}

		open := currentPrice

		// Box-Muller transform for a normal draw
		u1 := g.rng.Float64()
		u2 := g.rng.Float64()
		z := math.Sqrt(-2*math.Log(u1)) * math.Cos(2*math.Pi*u2)

		drift := config.Trend / float64(config.Count)

		closePrice := open * (1 + config.Volatility*z + drift)
		if closePrice <= 0 {
			closePrice = open * 0.99
		}

		high := math.Max(open, closePrice) + math.Abs(g.rng.Float64()*config.Volatility*open*0.5)

		low := math.Min(open, closePrice) - math.Abs(g.rng.Float64()*config.Volatility*open*0.5)
		if low <= 0 {
			low = math.Min(open, closePrice) * 0.99
		}

		volume := config.VolumeBase * (0.7 + g.rng.Float64()*0.6)

		data[i] = types.MarketData{
			Symbol: config.Symbol,
			Time:   currentTime,
			Open:   roundToDecimals(open, 2),
			High:   roundToDecimals(high, 2),
			Low:    roundToDecimals(low, 2),
			Close:  roundToDecimals(closePrice, 2),
			Volume: math.Round(volume),
		}

		currentPrice = closePrice
		currentTime = currentTime.AddDate(0, 0, 1)
	}

	return data
}

// GenerateYear is a convenience function for one year of sessions with a fixed seed.
func GenerateYear(symbol string) types.OhlcSeries {
	gen := NewDataGenerator(42)
	config := DefaultConfig()
	config.Symbol = symbol

	return gen.Generate(config)
}

func nextSession(t time.Time) time.Time {
	for t.Weekday() == time.Saturday || t.Weekday() == time.Sunday {
		t = t.AddDate(0, 0, 1)
	}

	return t
}

func roundToDecimals(val float64, decimals int) float64 {
	pow := math.Pow(10, float64(decimals))

	return math.Round(val*pow) / pow
}
