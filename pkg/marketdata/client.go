package marketdata

import (
	"context"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/stockview/internal/logger"
	"github.com/rxtech-lab/stockview/internal/types"
	"github.com/rxtech-lab/stockview/pkg/errors"
	"github.com/rxtech-lab/stockview/pkg/marketdata/provider"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// ClientConfig holds the configuration for the market data client.
type ClientConfig struct {
	ProviderType   provider.ProviderType `validate:"required,oneof=yahoo polygon binance file"`
	PolygonApiKey  string                `validate:"required_if=ProviderType polygon"`
	DataPath       string                `validate:"required_if=ProviderType file"`
	YahooBaseURL   string                `validate:"omitempty,url"`
	BinanceBaseURL string                `validate:"omitempty,url"`
	Timeout        time.Duration         `validate:"gte=0"`
}

// FetchParams identifies the series to fetch.
type FetchParams struct {
	Symbol string       `validate:"required,max=32,printascii"`
	Period types.Period `validate:"required,oneof=1d 1mo 3mo 6mo 1y 5y"`
}

// FetchResult is the raw input of a chart.
type FetchResult struct {
	Series  types.OhlcSeries
	Company types.CompanyInfo
}

// Client fetches series and company metadata from a provider.
type Client struct {
	provider provider.Provider
	validate *validator.Validate
	logger   *logger.Logger
}

// NewClient validates config and creates the configured provider.
func NewClient(config ClientConfig, log *logger.Logger) (*Client, error) {
	if log == nil {
		log = logger.NewNop()
	}

	validate := validator.New()
	if err := validate.Struct(config); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfiguration, "invalid client configuration", err)
	}

	marketProvider, err := provider.NewMarketDataProvider(config.ProviderType, provider.Config{
		PolygonApiKey:  config.PolygonApiKey,
		YahooBaseURL:   config.YahooBaseURL,
		BinanceBaseURL: config.BinanceBaseURL,
		DataPath:       config.DataPath,
		Timeout:        config.Timeout,
		Logger:         log,
	})
	if err != nil {
		return nil, err
	}

	return &Client{
		provider: marketProvider,
		validate: validate,
		logger:   log,
	}, nil
}

// NewClientWithProvider wraps an existing provider.
func NewClientWithProvider(p provider.Provider, log *logger.Logger) *Client {
	if log == nil {
		log = logger.NewNop()
	}

	return &Client{
		provider: p,
		validate: validator.New(),
		logger:   log,
	}
}

// Fetch loads the series and the company info concurrently. A failing series
// fails the fetch; failing company info is logged and reported as unknown.
func (c *Client) Fetch(ctx context.Context, params FetchParams) (FetchResult, error) {
	params.Symbol = NormalizeSymbol(params.Symbol)

	if err := c.validateParams(params); err != nil {
		return FetchResult{}, err
	}

	var (
		series  types.OhlcSeries
		company = types.CompanyInfo{
			LongName: optional.None[string](),
			Sector:   optional.None[string](),
			Industry: optional.None[string](),
		}
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var err error

		series, err = c.provider.History(gctx, params.Symbol, params.Period)

		return err
	})

	g.Go(func() error {
		info, err := c.provider.CompanyInfo(gctx, params.Symbol)
		if err != nil {
			c.logger.Warn("Company info unavailable",
				zap.String("symbol", params.Symbol),
				zap.Error(err),
			)

			return nil
		}

		company = info

		return nil
	})

	if err := g.Wait(); err != nil {
		return FetchResult{}, err
	}

	c.logger.Debug("Fetched market data",
		zap.String("symbol", params.Symbol),
		zap.String("period", params.Period.String()),
		zap.Int("bars", len(series)),
	)

	return FetchResult{Series: series, Company: company}, nil
}

// Close releases the provider's resources.
func (c *Client) Close() error {
	return provider.Close(c.provider)
}

func (c *Client) validateParams(params FetchParams) error {
	err := c.validate.Struct(params)
	if err == nil {
		if strings.ContainsAny(params.Symbol, " \t") {
			return errors.Newf(errors.ErrCodeInvalidSymbol, "invalid symbol %q", params.Symbol)
		}

		return nil
	}

	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) && len(validationErrors) > 0 && validationErrors[0].Field() == "Period" {
		return errors.Wrapf(errors.ErrCodeInvalidPeriod, err, "unsupported period %q", string(params.Period))
	}

	return errors.Wrapf(errors.ErrCodeInvalidSymbol, err, "invalid symbol %q", params.Symbol)
}

// NormalizeSymbol trims and upper-cases a ticker symbol.
func NormalizeSymbol(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}
