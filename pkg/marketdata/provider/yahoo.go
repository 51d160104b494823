package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/go-resty/resty/v2"
	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/stockview/internal/logger"
	"github.com/rxtech-lab/stockview/internal/types"
	"github.com/rxtech-lab/stockview/pkg/errors"
	"go.uber.org/zap"
)

const (
	DefaultYahooBaseURL = "https://query1.finance.yahoo.com"
	defaultYahooTimeout = 30 * time.Second
	yahooMaxRetries     = 3

	yahooChartPath        = "/v8/finance/chart/{symbol}"
	yahooQuoteSummaryPath = "/v10/finance/quoteSummary/{symbol}"
)

// YahooClient reads daily bars and company profiles from the public Yahoo Finance API.
type YahooClient struct {
	http       *resty.Client
	log        *logger.Logger
	newBackOff func() backoff.BackOff
}

type yahooError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

type yahooChartResult struct {
	Meta struct {
		Symbol    string `json:"symbol"`
		LongName  string `json:"longName"`
		ShortName string `json:"shortName"`
	} `json:"meta"`
	Timestamp  []int64 `json:"timestamp"`
	Indicators struct {
		Quote []struct {
			Open   []*float64 `json:"open"`
			High   []*float64 `json:"high"`
			Low    []*float64 `json:"low"`
			Close  []*float64 `json:"close"`
			Volume []*float64 `json:"volume"`
		} `json:"quote"`
	} `json:"indicators"`
}

type yahooChartResponse struct {
	Chart struct {
		Result []yahooChartResult `json:"result"`
		Error  *yahooError        `json:"error"`
	} `json:"chart"`
}

type yahooQuoteSummaryResponse struct {
	QuoteSummary struct {
		Result []struct {
			AssetProfile *struct {
				Sector   string `json:"sector"`
				Industry string `json:"industry"`
			} `json:"assetProfile"`
			Price *struct {
				LongName  string `json:"longName"`
				ShortName string `json:"shortName"`
			} `json:"price"`
		} `json:"result"`
		Error *yahooError `json:"error"`
	} `json:"quoteSummary"`
}

// NewYahooClient creates a client against baseURL (DefaultYahooBaseURL when empty).
func NewYahooClient(baseURL string, timeout time.Duration, log *logger.Logger) *YahooClient {
	if baseURL == "" {
		baseURL = DefaultYahooBaseURL
	}

	if timeout <= 0 {
		timeout = defaultYahooTimeout
	}

	if log == nil {
		log = logger.NewNop()
	}

	httpClient := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetTimeout(timeout).
		SetHeader("User-Agent", "Mozilla/5.0").
		SetHeader("Accept", "application/json")

	return &YahooClient{
		http: httpClient,
		log:  log,
		newBackOff: func() backoff.BackOff {
			return backoff.WithMaxRetries(backoff.NewExponentialBackOff(), yahooMaxRetries)
		},
	}
}

// History implements Provider.
func (c *YahooClient) History(ctx context.Context, symbol string, period types.Period) (types.OhlcSeries, error) {
	result, err := c.chart(ctx, symbol, period)
	if err != nil {
		return nil, err
	}

	series, err := chartToSeries(symbol, result)
	if err != nil {
		return nil, err
	}

	if len(series) == 0 {
		return nil, errors.Newf(errors.ErrCodeDataNotFound, "no bars returned for %s over %s", symbol, period)
	}

	sortSeries(series)

	c.log.Debug("Fetched Yahoo chart",
		zap.String("symbol", symbol),
		zap.String("period", period.String()),
		zap.Int("bars", len(series)),
	)

	return series, nil
}

// CompanyInfo implements Provider. The quoteSummary endpoint is tried first;
// when it is refused the long name is taken from the chart metadata instead.
func (c *YahooClient) CompanyInfo(ctx context.Context, symbol string) (types.CompanyInfo, error) {
	info, err := c.quoteSummary(ctx, symbol)
	if err == nil {
		return info, nil
	}

	c.log.Debug("Yahoo quoteSummary unavailable, using chart metadata",
		zap.String("symbol", symbol),
		zap.Error(err),
	)

	result, chartErr := c.chart(ctx, symbol, types.PeriodOneDay)
	if chartErr != nil {
		return types.CompanyInfo{}, chartErr
	}

	name := result.Meta.LongName
	if name == "" {
		name = result.Meta.ShortName
	}

	return types.CompanyInfo{
		LongName: types.OptionalString(name),
		Sector:   optional.None[string](),
		Industry: optional.None[string](),
	}, nil
}

func (c *YahooClient) chart(ctx context.Context, symbol string, period types.Period) (yahooChartResult, error) {
	body, status, err := c.get(ctx, yahooChartPath, symbol, map[string]string{
		"range":    period.String(),
		"interval": "1d",
	})
	if err != nil {
		return yahooChartResult{}, err
	}

	var resp yahooChartResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return yahooChartResult{}, errors.Wrapf(errors.ErrCodeMarketDataParseFailed, err, "failed to decode Yahoo chart for %s (status %d)", symbol, status)
	}

	if resp.Chart.Error != nil {
		return yahooChartResult{}, yahooAPIError(symbol, status, resp.Chart.Error)
	}

	if status != http.StatusOK {
		return yahooChartResult{}, errors.Newf(errors.ErrCodeMarketDataFetchFailed, "yahoo chart for %s returned status %d", symbol, status)
	}

	if len(resp.Chart.Result) == 0 {
		return yahooChartResult{}, errors.Newf(errors.ErrCodeDataNotFound, "no chart data for %s", symbol)
	}

	return resp.Chart.Result[0], nil
}

func (c *YahooClient) quoteSummary(ctx context.Context, symbol string) (types.CompanyInfo, error) {
	body, status, err := c.get(ctx, yahooQuoteSummaryPath, symbol, map[string]string{
		"modules": "assetProfile,price",
	})
	if err != nil {
		return types.CompanyInfo{}, err
	}

	if status != http.StatusOK {
		return types.CompanyInfo{}, errors.Newf(errors.ErrCodeMarketDataFetchFailed, "yahoo quoteSummary for %s returned status %d", symbol, status)
	}

	var resp yahooQuoteSummaryResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return types.CompanyInfo{}, errors.Wrapf(errors.ErrCodeMarketDataParseFailed, err, "failed to decode Yahoo quoteSummary for %s", symbol)
	}

	if resp.QuoteSummary.Error != nil {
		return types.CompanyInfo{}, yahooAPIError(symbol, status, resp.QuoteSummary.Error)
	}

	if len(resp.QuoteSummary.Result) == 0 {
		return types.CompanyInfo{}, errors.Newf(errors.ErrCodeDataNotFound, "no profile for %s", symbol)
	}

	result := resp.QuoteSummary.Result[0]
	info := types.CompanyInfo{
		LongName: optional.None[string](),
		Sector:   optional.None[string](),
		Industry: optional.None[string](),
	}

	if result.Price != nil {
		name := result.Price.LongName
		if name == "" {
			name = result.Price.ShortName
		}

		info.LongName = types.OptionalString(name)
	}

	if result.AssetProfile != nil {
		info.Sector = types.OptionalString(result.AssetProfile.Sector)
		info.Industry = types.OptionalString(result.AssetProfile.Industry)
	}

	return info, nil
}

// get retries transport failures, 429 and 5xx responses. Other statuses are
// handed back to the caller, which decodes Yahoo's JSON error body.
func (c *YahooClient) get(ctx context.Context, path, symbol string, query map[string]string) ([]byte, int, error) {
	var (
		body   []byte
		status int
	)

	operation := func() error {
		resp, err := c.http.R().
			SetContext(ctx).
			SetPathParam("symbol", symbol).
			SetQueryParams(query).
			Get(path)
		if err != nil {
			if ctx.Err() != nil {
				return backoff.Permanent(ctx.Err())
			}

			return err
		}

		status = resp.StatusCode()
		body = resp.Body()

		if status == http.StatusTooManyRequests || status >= http.StatusInternalServerError {
			return fmt.Errorf("yahoo returned status %d", status)
		}

		return nil
	}

	notify := func(err error, wait time.Duration) {
		c.log.Warn("Yahoo request failed, retrying",
			zap.String("path", path),
			zap.String("symbol", symbol),
			zap.Duration("backoff", wait),
			zap.Error(err),
		)
	}

	if err := backoff.RetryNotify(operation, backoff.WithContext(c.newBackOff(), ctx), notify); err != nil {
		return nil, status, errors.Wrapf(errors.ErrCodeMarketDataFetchFailed, err, "yahoo request for %s failed", symbol)
	}

	return body, status, nil
}

func yahooAPIError(symbol string, status int, apiErr *yahooError) error {
	if status == http.StatusNotFound || strings.EqualFold(apiErr.Code, "Not Found") {
		return errors.Newf(errors.ErrCodeDataNotFound, "unknown symbol %s: %s", symbol, apiErr.Description)
	}

	return errors.Newf(errors.ErrCodeMarketDataFetchFailed, "yahoo error for %s: %s %s", symbol, apiErr.Code, apiErr.Description)
}

// chartToSeries drops bars with a null price, which Yahoo emits for halted sessions.
func chartToSeries(symbol string, result yahooChartResult) (types.OhlcSeries, error) {
	if len(result.Timestamp) == 0 {
		return types.OhlcSeries{}, nil
	}

	if len(result.Indicators.Quote) == 0 {
		return nil, errors.Newf(errors.ErrCodeMarketDataParseFailed, "yahoo chart for %s has timestamps but no quotes", symbol)
	}

	quote := result.Indicators.Quote[0]
	series := make(types.OhlcSeries, 0, len(result.Timestamp))

	for i, ts := range result.Timestamp {
		open, okOpen := at(quote.Open, i)
		high, okHigh := at(quote.High, i)
		low, okLow := at(quote.Low, i)
		closePrice, okClose := at(quote.Close, i)

		if !okOpen || !okHigh || !okLow || !okClose {
			continue
		}

		volume, _ := at(quote.Volume, i)

		series = append(series, types.MarketData{
			Symbol: symbol,
			Time:   time.Unix(ts, 0).UTC(),
			Open:   open,
			High:   high,
			Low:    low,
			Close:  closePrice,
			Volume: volume,
		})
	}

	return series, nil
}

func at(values []*float64, i int) (float64, bool) {
	if i >= len(values) || values[i] == nil {
		return 0, false
	}

	return *values[i], true
}
