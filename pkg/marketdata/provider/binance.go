package provider

import (
	"context"
	"fmt"
	"time"

	binance "github.com/adshao/go-binance/v2"
	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/stockview/internal/types"
	"github.com/rxtech-lab/stockview/pkg/errors"
	"github.com/shopspring/decimal"
)

// binanceKlineLimit is the largest page Binance serves per klines request.
const binanceKlineLimit = 1000

// BinanceClient serves daily klines for crypto pairs such as BTCUSDT.
// The public market data endpoints need no credentials.
type BinanceClient struct {
	client *binance.Client
	now    func() time.Time
}

// NewBinanceClient creates a client; baseURL overrides the public API host when set.
func NewBinanceClient(baseURL string) (*BinanceClient, error) {
	client := binance.NewClient("", "")
	if baseURL != "" {
		client.BaseURL = baseURL
	}

	return &BinanceClient{
		client: client,
		now:    time.Now,
	}, nil
}

// History implements Provider. Requests are paged forward from the period start
// until Binance returns a short page or the end time is reached.
func (c *BinanceClient) History(ctx context.Context, symbol string, period types.Period) (types.OhlcSeries, error) {
	endTime := c.now()
	endMillis := endTime.UnixMilli()
	currentStart := period.Start(endTime).UnixMilli()

	series := types.OhlcSeries{}

	for {
		klines, err := c.client.NewKlinesService().
			Symbol(symbol).
			Interval("1d").
			StartTime(currentStart).
			EndTime(endMillis).
			Limit(binanceKlineLimit).
			Do(ctx)
		if err != nil {
			return nil, errors.Wrapf(errors.ErrCodeMarketDataFetchFailed, err, "failed to fetch klines from Binance for %s", symbol)
		}

		page, err := klinesToSeries(symbol, klines)
		if err != nil {
			return nil, err
		}

		series = append(series, page...)

		if len(klines) < binanceKlineLimit {
			break
		}

		// continue after the close of the last kline to avoid duplicates
		currentStart = klines[len(klines)-1].CloseTime + 1
		if currentStart >= endMillis {
			break
		}
	}

	if len(series) == 0 {
		return nil, errors.Newf(errors.ErrCodeDataNotFound, "no Binance klines for %s over %s", symbol, period)
	}

	return sortAndTrim(series, period), nil
}

// CompanyInfo implements Provider. Trading pairs have no sector or industry;
// the long name is "BASE/QUOTE".
func (c *BinanceClient) CompanyInfo(ctx context.Context, symbol string) (types.CompanyInfo, error) {
	info, err := c.client.NewExchangeInfoService().Symbol(symbol).Do(ctx)
	if err != nil {
		return types.CompanyInfo{}, errors.Wrapf(errors.ErrCodeMarketDataFetchFailed, err, "failed to fetch Binance exchange info for %s", symbol)
	}

	for _, s := range info.Symbols {
		if s.Symbol == symbol {
			return pairInfo(s.BaseAsset, s.QuoteAsset), nil
		}
	}

	return types.CompanyInfo{}, errors.Newf(errors.ErrCodeDataNotFound, "unknown Binance symbol %s", symbol)
}

func pairInfo(base, quote string) types.CompanyInfo {
	name := optional.None[string]()
	if base != "" && quote != "" {
		name = optional.Some(fmt.Sprintf("%s/%s", base, quote))
	}

	return types.CompanyInfo{
		LongName: name,
		Sector:   optional.None[string](),
		Industry: optional.None[string](),
	}
}

// klinesToSeries converts Binance's decimal strings, stamping each bar with its open time.
func klinesToSeries(symbol string, klines []*binance.Kline) (types.OhlcSeries, error) {
	series := make(types.OhlcSeries, 0, len(klines))

	for _, k := range klines {
		values := make([]float64, 5)

		for i, raw := range []string{k.Open, k.High, k.Low, k.Close, k.Volume} {
			d, err := decimal.NewFromString(raw)
			if err != nil {
				return nil, errors.Wrapf(errors.ErrCodeMarketDataParseFailed, err, "invalid Binance kline value %q for %s", raw, symbol)
			}

			values[i] = d.InexactFloat64()
		}

		series = append(series, types.MarketData{
			Symbol: symbol,
			Time:   time.UnixMilli(k.OpenTime).UTC(),
			Open:   values[0],
			High:   values[1],
			Low:    values[2],
			Close:  values[3],
			Volume: values[4],
		})
	}

	return series, nil
}
