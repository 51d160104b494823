package provider

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/rxtech-lab/stockview/internal/logger"
	"github.com/rxtech-lab/stockview/internal/types"
	"github.com/rxtech-lab/stockview/pkg/errors"
)

// ProviderType defines the type of market data provider.
type ProviderType string

const (
	ProviderYahoo   ProviderType = "yahoo"
	ProviderPolygon ProviderType = "polygon"
	ProviderBinance ProviderType = "binance"
	ProviderFile    ProviderType = "file"
)

// Provider supplies the raw inputs of a chart: the historical bars of a symbol
// and its descriptive metadata.
type Provider interface {
	// History returns the bars of symbol covering period, ascending by time.
	// An unknown symbol or a period without bars is reported as ErrCodeDataNotFound.
	History(ctx context.Context, symbol string, period types.Period) (types.OhlcSeries, error)
	// CompanyInfo returns whatever metadata the provider knows; missing fields stay None.
	CompanyInfo(ctx context.Context, symbol string) (types.CompanyInfo, error)
}

// Config carries the settings of every provider; each provider reads only its own fields.
type Config struct {
	PolygonApiKey  string
	YahooBaseURL   string
	BinanceBaseURL string
	// DataPath is the parquet file read by the file provider.
	DataPath string
	Timeout  time.Duration
	Logger   *logger.Logger
}

// NewMarketDataProvider creates a new market data provider based on the provider type.
func NewMarketDataProvider(providerType ProviderType, config Config) (Provider, error) {
	if config.Logger == nil {
		config.Logger = logger.NewNop()
	}

	switch providerType {
	case ProviderYahoo:
		return NewYahooClient(config.YahooBaseURL, config.Timeout, config.Logger), nil
	case ProviderPolygon:
		client, err := NewPolygonClient(config.PolygonApiKey)
		if err != nil {
			return nil, err
		}

		return client, nil
	case ProviderBinance:
		client, err := NewBinanceClient(config.BinanceBaseURL)
		if err != nil {
			return nil, err
		}

		return client, nil
	case ProviderFile:
		client, err := NewDuckDBClient(config.DataPath, config.Logger)
		if err != nil {
			return nil, err
		}

		return client, nil
	default:
		return nil, errors.New(errors.ErrCodeInvalidProvider, fmt.Sprintf("unsupported market data provider: %s", providerType))
	}
}

// Close releases resources held by providers that own them.
func Close(p Provider) error {
	if closer, ok := p.(interface{ Close() error }); ok {
		return closer.Close()
	}

	return nil
}

// sortAndTrim orders bars by time and keeps the requested period.
func sortAndTrim(series types.OhlcSeries, period types.Period) types.OhlcSeries {
	sortSeries(series)

	return period.Trim(series)
}

func sortSeries(series types.OhlcSeries) {
	slices.SortStableFunc(series, func(a, b types.MarketData) int {
		return a.Time.Compare(b.Time)
	})
}
