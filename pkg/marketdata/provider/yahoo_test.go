package provider

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rxtech-lab/stockview/internal/logger"
	"github.com/rxtech-lab/stockview/internal/types"
	"github.com/rxtech-lab/stockview/pkg/errors"
	"github.com/stretchr/testify/suite"
)

const yahooChartBody = `{
  "chart": {
    "result": [{
      "meta": {"symbol": "AAPL", "longName": "Apple Inc.", "shortName": "Apple"},
      "timestamp": [1704306600, 1704220200, 1704393000],
      "indicators": {"quote": [{
        "open":   [184.22, 187.15, 182.15],
        "high":   [185.88, 188.44, 183.09],
        "low":    [183.43, 183.89, 180.88],
        "close":  [184.25, 185.64, null],
        "volume": [58414500, 82488700, 71983600]
      }]}
    }],
    "error": null
  }
}`

type YahooClientTestSuite struct {
	suite.Suite
	server   *httptest.Server
	handler  http.HandlerFunc
	requests atomic.Int32
}

func TestYahooClientSuite(t *testing.T) {
	suite.Run(t, new(YahooClientTestSuite))
}

func (suite *YahooClientTestSuite) SetupTest() {
	suite.requests.Store(0)
	suite.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		suite.requests.Add(1)
		suite.handler(w, r)
	}))
}

func (suite *YahooClientTestSuite) TearDownTest() {
	suite.server.Close()
}

func (suite *YahooClientTestSuite) newClient() *YahooClient {
	client := NewYahooClient(suite.server.URL, time.Second, logger.NewNop())
	client.newBackOff = func() backoff.BackOff {
		return backoff.WithMaxRetries(&backoff.ZeroBackOff{}, 2)
	}

	return client
}

func (suite *YahooClientTestSuite) TestHistoryParsesAndSortsBars() {
	suite.handler = func(w http.ResponseWriter, r *http.Request) {
		suite.Equal("/v8/finance/chart/AAPL", r.URL.Path)
		suite.Equal("1mo", r.URL.Query().Get("range"))
		suite.Equal("1d", r.URL.Query().Get("interval"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(yahooChartBody))
	}

	series, err := suite.newClient().History(context.Background(), "AAPL", types.PeriodOneMonth)
	suite.Require().NoError(err)

	// the bar with a null close is dropped
	suite.Require().Len(series, 2)
	suite.True(series[0].Time.Before(series[1].Time))
	suite.Equal(187.15, series[0].Open)
	suite.Equal(185.64, series[0].Close)
	suite.Equal(184.25, series[1].Close)
	suite.Equal("AAPL", series[1].Symbol)
	suite.Equal(58414500.0, series[1].Volume)
}

func (suite *YahooClientTestSuite) TestHistoryUnknownSymbol() {
	suite.handler = func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"chart":{"result":null,"error":{"code":"Not Found","description":"No data found, symbol may be delisted"}}}`))
	}

	_, err := suite.newClient().History(context.Background(), "NOPE", types.PeriodOneMonth)
	suite.Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeDataNotFound))
	suite.Equal(int32(1), suite.requests.Load(), "4xx responses are not retried")
}

func (suite *YahooClientTestSuite) TestHistoryEmptyResult() {
	suite.handler = func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"chart":{"result":[{"meta":{"symbol":"AAPL"},"indicators":{"quote":[{}]}}],"error":null}}`))
	}

	_, err := suite.newClient().History(context.Background(), "AAPL", types.PeriodOneDay)
	suite.True(errors.HasCode(err, errors.ErrCodeDataNotFound))
}

func (suite *YahooClientTestSuite) TestHistoryRetriesServerErrors() {
	suite.handler = func(w http.ResponseWriter, r *http.Request) {
		if suite.requests.Load() < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)

			return
		}

		_, _ = w.Write([]byte(yahooChartBody))
	}

	series, err := suite.newClient().History(context.Background(), "AAPL", types.PeriodOneMonth)
	suite.NoError(err)
	suite.Len(series, 2)
	suite.Equal(int32(3), suite.requests.Load())
}

func (suite *YahooClientTestSuite) TestHistoryGivesUpAfterRetries() {
	suite.handler = func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}

	_, err := suite.newClient().History(context.Background(), "AAPL", types.PeriodOneMonth)
	suite.True(errors.HasCode(err, errors.ErrCodeMarketDataFetchFailed))
	suite.Equal(int32(3), suite.requests.Load())
}

func (suite *YahooClientTestSuite) TestHistoryMalformedBody() {
	suite.handler = func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`not json`))
	}

	_, err := suite.newClient().History(context.Background(), "AAPL", types.PeriodOneMonth)
	suite.True(errors.HasCode(err, errors.ErrCodeMarketDataParseFailed))
}

func (suite *YahooClientTestSuite) TestCompanyInfoFromQuoteSummary() {
	suite.handler = func(w http.ResponseWriter, r *http.Request) {
		suite.Equal("/v10/finance/quoteSummary/AAPL", r.URL.Path)
		suite.Equal("assetProfile,price", r.URL.Query().Get("modules"))
		_, _ = w.Write([]byte(`{"quoteSummary":{"result":[{
			"assetProfile":{"sector":"Technology","industry":"Consumer Electronics"},
			"price":{"longName":"Apple Inc.","shortName":"Apple"}
		}],"error":null}}`))
	}

	info, err := suite.newClient().CompanyInfo(context.Background(), "AAPL")
	suite.Require().NoError(err)
	suite.Equal("Apple Inc.", info.DisplayLongName())
	suite.Equal("Technology", info.DisplaySector())
	suite.Equal("Consumer Electronics", info.DisplayIndustry())
}

func (suite *YahooClientTestSuite) TestCompanyInfoFallsBackToChartMeta() {
	suite.handler = func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/v10/finance/quoteSummary/AAPL" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"finance":{"result":null,"error":{"code":"Unauthorized","description":"Invalid Crumb"}}}`))

			return
		}

		suite.Equal("1d", r.URL.Query().Get("range"))
		_, _ = w.Write([]byte(yahooChartBody))
	}

	info, err := suite.newClient().CompanyInfo(context.Background(), "AAPL")
	suite.Require().NoError(err)
	suite.Equal("Apple Inc.", info.DisplayLongName())
	suite.True(info.Sector.IsNone())
	suite.True(info.Industry.IsNone())
}

func (suite *YahooClientTestSuite) TestCancelledContext() {
	suite.handler = func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(yahooChartBody))
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := suite.newClient().History(ctx, "AAPL", types.PeriodOneMonth)
	suite.True(errors.HasCode(err, errors.ErrCodeMarketDataFetchFailed))
}
