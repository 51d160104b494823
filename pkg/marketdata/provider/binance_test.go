package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	binance "github.com/adshao/go-binance/v2"
	"github.com/rxtech-lab/stockview/internal/types"
	"github.com/rxtech-lab/stockview/pkg/errors"
	"github.com/stretchr/testify/suite"
)

type BinanceClientTestSuite struct {
	suite.Suite
}

func TestBinanceClientSuite(t *testing.T) {
	suite.Run(t, new(BinanceClientTestSuite))
}

func (suite *BinanceClientTestSuite) TestKlinesToSeries() {
	openTime := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	//nolint:exhaustruct
	klines := []*binance.Kline{
		{
			OpenTime:  openTime.UnixMilli(),
			Open:      "42283.58000000",
			High:      "44184.10000000",
			Low:       "42180.77000000",
			Close:     "44179.55000000",
			Volume:    "27174.29903000",
			CloseTime: openTime.Add(24*time.Hour).UnixMilli() - 1,
		},
	}

	series, err := klinesToSeries("BTCUSDT", klines)
	suite.Require().NoError(err)
	suite.Require().Len(series, 1)
	suite.Equal(openTime, series[0].Time)
	suite.Equal("BTCUSDT", series[0].Symbol)
	suite.InDelta(42283.58, series[0].Open, 1e-9)
	suite.InDelta(44184.10, series[0].High, 1e-9)
	suite.InDelta(42180.77, series[0].Low, 1e-9)
	suite.InDelta(44179.55, series[0].Close, 1e-9)
	suite.InDelta(27174.29903, series[0].Volume, 1e-9)
}

func (suite *BinanceClientTestSuite) TestKlinesToSeriesInvalidNumber() {
	//nolint:exhaustruct
	_, err := klinesToSeries("BTCUSDT", []*binance.Kline{{Open: "abc", High: "1", Low: "1", Close: "1", Volume: "1"}})
	suite.True(errors.HasCode(err, errors.ErrCodeMarketDataParseFailed))
}

func (suite *BinanceClientTestSuite) TestPairInfo() {
	info := pairInfo("BTC", "USDT")
	suite.Equal("BTC/USDT", info.DisplayLongName())
	suite.Equal(types.UnknownField, info.DisplaySector())

	suite.True(pairInfo("", "USDT").LongName.IsNone())
}

func (suite *BinanceClientTestSuite) TestHistoryAgainstMockServer() {
	now := time.Date(2024, 2, 1, 12, 0, 0, 0, time.UTC)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		suite.Equal("/api/v3/klines", r.URL.Path)
		suite.Equal("BTCUSDT", r.URL.Query().Get("symbol"))
		suite.Equal("1d", r.URL.Query().Get("interval"))

		rows := make([][]any, 0, 3)
		for i := 3; i >= 1; i-- {
			open := now.AddDate(0, 0, -i).Truncate(24 * time.Hour)
			price := fmt.Sprintf("%d.00", 40000+i)
			rows = append(rows, []any{
				open.UnixMilli(), price, price, price, price, "10.5",
				open.Add(24*time.Hour).UnixMilli() - 1, "420000.0", 100, "5.0", "200000.0", "0",
			})
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(rows)
	}))
	defer server.Close()

	client, err := NewBinanceClient(server.URL)
	suite.Require().NoError(err)
	client.now = func() time.Time { return now }

	series, err := client.History(context.Background(), "BTCUSDT", types.PeriodOneMonth)
	suite.Require().NoError(err)
	suite.Len(series, 3)
	suite.True(series[0].Time.Before(series[2].Time))
	suite.InDelta(40001.0, series[2].Close, 1e-9)
}
