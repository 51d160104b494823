package server

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/moznion/go-optional"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rxtech-lab/stockview/internal/logger"
	"github.com/rxtech-lab/stockview/internal/metrics"
	"github.com/rxtech-lab/stockview/internal/types"
	"github.com/rxtech-lab/stockview/internal/viewer"
	"github.com/rxtech-lab/stockview/mocks"
	"github.com/rxtech-lab/stockview/pkg/errors"
	"github.com/rxtech-lab/stockview/pkg/marketdata"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"
)

type ServerTestSuite struct {
	suite.Suite
	ctrl         *gomock.Controller
	mockProvider *mocks.MockProvider
	metrics      *metrics.Metrics
	server       *Server
	series       types.OhlcSeries
}

func TestServerSuite(t *testing.T) {
	suite.Run(t, new(ServerTestSuite))
}

func (suite *ServerTestSuite) SetupTest() {
	suite.ctrl = gomock.NewController(suite.T())
	suite.mockProvider = mocks.NewMockProvider(suite.ctrl)
	suite.metrics = metrics.NewMetrics()

	client := marketdata.NewClientWithProvider(suite.mockProvider, logger.NewNop())
	service := viewer.NewService(client, logger.NewNop(), viewer.WithObserver(suite.metrics))
	suite.server = New(service, suite.metrics, logger.NewNop(), Options{Addr: "127.0.0.1:0", Defaults: viewer.DefaultRequest()})

	config := mocks.DefaultConfig()
	config.Count = 60
	suite.series = mocks.NewDataGenerator(7).Generate(config)
}

func (suite *ServerTestSuite) TearDownTest() {
	suite.ctrl.Finish()
}

func (suite *ServerTestSuite) get(target string, header http.Header) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	for k, v := range header {
		req.Header[k] = v
	}

	rec := httptest.NewRecorder()
	suite.server.Handler().ServeHTTP(rec, req)

	return rec
}

func (suite *ServerTestSuite) expectFetch(symbol string, period types.Period) {
	suite.mockProvider.EXPECT().History(gomock.Any(), symbol, period).Return(suite.series, nil)
	suite.mockProvider.EXPECT().CompanyInfo(gomock.Any(), symbol).Return(types.CompanyInfo{
		LongName: optional.Some("Apple Inc."),
		Sector:   optional.Some("Technology"),
		Industry: optional.Some("Consumer Electronics"),
	}, nil)
}

func (suite *ServerTestSuite) TestChart() {
	suite.expectFetch("AAPL", types.PeriodThreeMonths)

	rec := suite.get("/api/v1/chart/aapl?period=3mo&plot=line&sma_window=5&bollinger=true&bollinger_window=10", nil)
	suite.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())
	suite.Equal("application/json", rec.Header().Get("Content-Type"))
	suite.NotEmpty(rec.Header().Get(HeaderRequestID))

	var body viewer.ReportJSON
	suite.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &body))

	suite.Equal("AAPL", body.Symbol)
	suite.Equal("3mo", body.Period)
	suite.Equal("AAPL Line Chart (3mo)", body.Title)
	suite.Equal("Technology", *body.Company.Sector)
	suite.Len(body.Bars, 60)
	suite.Len(body.Segments, 59)
	suite.Require().NotNil(body.Sma)
	suite.Equal(5, body.Sma.Window)
	suite.Require().NotNil(body.BollingerUpper)
	suite.Equal(10, body.BollingerUpper.Window)
	suite.NotNil(body.PeriodHigh)

	suite.Equal(1.0, testutil.ToFloat64(suite.metrics.RequestsTotal.WithLabelValues(routeChart, "200")))
	suite.Equal(0.0, testutil.ToFloat64(suite.metrics.FetchErrors))
}

func (suite *ServerTestSuite) TestChartUsesDefaults() {
	suite.expectFetch("MSFT", types.PeriodOneMonth)

	rec := suite.get("/api/v1/chart/MSFT", nil)
	suite.Require().Equal(http.StatusOK, rec.Code)

	var body viewer.ReportJSON
	suite.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &body))
	suite.Equal("candlestick", body.PlotType)
	suite.Empty(body.Segments)
	suite.Require().NotNil(body.Sma)
	suite.Equal(50, body.Sma.Window)
	suite.Nil(body.BollingerUpper)
}

func (suite *ServerTestSuite) TestRequestIDIsPropagated() {
	suite.expectFetch("AAPL", types.PeriodOneMonth)

	rec := suite.get("/api/v1/chart/AAPL", http.Header{HeaderRequestID: []string{"req-123"}})
	suite.Equal("req-123", rec.Header().Get(HeaderRequestID))
}

func (suite *ServerTestSuite) TestChartErrors() {
	testCases := []struct {
		name   string
		target string
		setup  func()
		status int
		code   errors.ErrorCode
	}{
		{
			name:   "invalid period",
			target: "/api/v1/chart/AAPL?period=2w",
			status: http.StatusBadRequest,
			code:   errors.ErrCodeInvalidPeriod,
		},
		{
			name:   "invalid plot",
			target: "/api/v1/chart/AAPL?plot=bar",
			status: http.StatusBadRequest,
			code:   errors.ErrCodeInvalidPlotType,
		},
		{
			name:   "invalid boolean",
			target: "/api/v1/chart/AAPL?sma=maybe",
			status: http.StatusBadRequest,
			code:   errors.ErrCodeInvalidParameter,
		},
		{
			name:   "zero window",
			target: "/api/v1/chart/AAPL?sma_window=0",
			status: http.StatusBadRequest,
			code:   errors.ErrCodeInvalidConfiguration,
		},
		{
			name:   "invalid symbol",
			target: "/api/v1/chart/" + url.PathEscape("AA PL"),
			status: http.StatusBadRequest,
			code:   errors.ErrCodeInvalidSymbol,
		},
		{
			name:   "unknown symbol",
			target: "/api/v1/chart/NOPE",
			setup: func() {
				suite.mockProvider.EXPECT().History(gomock.Any(), "NOPE", types.PeriodOneMonth).
					Return(nil, errors.New(errors.ErrCodeDataNotFound, "no bars"))
				suite.mockProvider.EXPECT().CompanyInfo(gomock.Any(), "NOPE").
					Return(types.CompanyInfo{}, errors.New(errors.ErrCodeDataNotFound, "no profile")).AnyTimes()
			},
			status: http.StatusNotFound,
			code:   errors.ErrCodeDataNotFound,
		},
		{
			name:   "upstream failure",
			target: "/api/v1/chart/AAPL",
			setup: func() {
				suite.mockProvider.EXPECT().History(gomock.Any(), "AAPL", types.PeriodOneMonth).
					Return(nil, errors.New(errors.ErrCodeMarketDataFetchFailed, "503"))
				suite.mockProvider.EXPECT().CompanyInfo(gomock.Any(), "AAPL").
					Return(types.CompanyInfo{}, nil).AnyTimes()
			},
			status: http.StatusBadGateway,
			code:   errors.ErrCodeMarketDataFetchFailed,
		},
	}

	for _, tc := range testCases {
		suite.Run(tc.name, func() {
			if tc.setup != nil {
				tc.setup()
			}

			rec := suite.get(tc.target, nil)
			suite.Equal(tc.status, rec.Code, rec.Body.String())

			var body errorResponse
			suite.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &body))
			suite.Equal(int(tc.code), body.Code)
			suite.NotEmpty(body.Error)
			suite.NotEmpty(body.RequestID)
		})
	}
}

func (suite *ServerTestSuite) TestHealthAndProviders() {
	rec := suite.get("/healthz", nil)
	suite.Equal(http.StatusOK, rec.Code)
	suite.JSONEq(`{"status":"ok","version":"main"}`, rec.Body.String())

	rec = suite.get("/api/v1/providers", nil)
	suite.Require().Equal(http.StatusOK, rec.Code)

	var providers []marketdata.ProviderInfo
	suite.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &providers))
	suite.Len(providers, len(marketdata.GetSupportedProviders()))
}

func (suite *ServerTestSuite) TestUnknownRoute() {
	rec := suite.get("/nope", nil)
	suite.Equal(http.StatusNotFound, rec.Code)
	suite.NotEmpty(rec.Header().Get(HeaderRequestID))
}

func (suite *ServerTestSuite) TestMetricsEndpoint() {
	suite.get("/healthz", nil)

	rec := suite.get("/metrics", nil)
	suite.Require().Equal(http.StatusOK, rec.Code)
	suite.Contains(rec.Body.String(), `route="/healthz"`)
}

func (suite *ServerTestSuite) TestStartAndShutdown() {
	suite.Require().NoError(suite.server.Start())
	suite.NotEmpty(suite.server.Addr())

	resp, err := http.Get(fmt.Sprintf("http://%s/healthz", suite.server.Addr()))
	suite.Require().NoError(err)

	body, err := io.ReadAll(resp.Body)
	suite.NoError(err)
	suite.NoError(resp.Body.Close())
	suite.Contains(string(body), "ok")

	suite.NoError(suite.server.Shutdown(context.Background()))
}

func (suite *ServerTestSuite) TestRunStopsOnCancel() {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)

	go func() { done <- suite.server.Run(ctx) }()

	cancel()
	suite.NoError(<-done)
}

func (suite *ServerTestSuite) TestParseChartRequest() {
	defaults := viewer.DefaultRequest()

	req, err := ParseChartRequest("tsla", url.Values{
		ParamPeriod:              {"5y"},
		ParamBollinger:           {"true"},
		ParamBollingerMultiplier: {"2.5"},
		ParamSma:                 {"false"},
	}, defaults)
	suite.Require().NoError(err)

	suite.Equal("tsla", req.Symbol)
	suite.Equal(types.PeriodFiveYears, req.Period)
	suite.Equal(defaults.PlotType, req.PlotType)
	suite.False(req.Indicators.IncludeSma)
	suite.True(req.Indicators.IncludeBollinger)
	suite.Equal(2.5, req.Indicators.BollingerStdDevMultiplier)
	suite.Equal(defaults.Indicators.BollingerWindow, req.Indicators.BollingerWindow)

	_, err = ParseChartRequest("AAPL", url.Values{ParamBollingerWindow: {"ten"}}, defaults)
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidParameter))

	_, err = ParseChartRequest("AAPL", url.Values{ParamBollingerMultiplier: {"x"}}, defaults)
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidParameter))
}

func (suite *ServerTestSuite) TestStatusCode() {
	suite.Equal(http.StatusInternalServerError, StatusCode(errors.New(errors.ErrCodeQueryFailed, "boom")))
	suite.Equal(http.StatusBadGateway, StatusCode(errors.New(errors.ErrCodeDataSourceUnavailable, "down")))
	suite.Equal(http.StatusBadRequest, StatusCode(errors.New(errors.ErrCodeMissingParameter, "missing")))
}
