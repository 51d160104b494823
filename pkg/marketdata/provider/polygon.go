package provider

import (
	"context"
	"time"

	"github.com/moznion/go-optional"
	polygon "github.com/polygon-io/client-go/rest"
	"github.com/polygon-io/client-go/rest/models"
	"github.com/rxtech-lab/stockview/internal/types"
	"github.com/rxtech-lab/stockview/pkg/errors"
)

// polygonLookbackPadding widens the query so weekends and holidays at the
// start of a period never leave it empty; the series is trimmed afterwards.
const polygonLookbackPadding = 7 * 24 * time.Hour

// PolygonAggsIterator is the subset of the polygon iterator used here.
type PolygonAggsIterator interface {
	Next() bool
	Item() models.Agg
	Err() error
}

// PolygonAPIClient is the subset of the polygon REST client used here.
type PolygonAPIClient interface {
	ListAggs(ctx context.Context, params *models.ListAggsParams, options ...models.RequestOption) PolygonAggsIterator
	GetTickerDetails(ctx context.Context, params *models.GetTickerDetailsParams, options ...models.RequestOption) (*models.GetTickerDetailsResponse, error)
}

// polygonRESTClient adapts *polygon.Client to PolygonAPIClient.
type polygonRESTClient struct {
	client *polygon.Client
}

func (c *polygonRESTClient) ListAggs(ctx context.Context, params *models.ListAggsParams, options ...models.RequestOption) PolygonAggsIterator {
	return c.client.ListAggs(ctx, params, options...)
}

func (c *polygonRESTClient) GetTickerDetails(ctx context.Context, params *models.GetTickerDetailsParams, options ...models.RequestOption) (*models.GetTickerDetailsResponse, error) {
	return c.client.GetTickerDetails(ctx, params, options...)
}

type PolygonClient struct {
	apiClient PolygonAPIClient
	now       func() time.Time
}

func NewPolygonClient(apiKey string) (*PolygonClient, error) {
	if apiKey == "" {
		return nil, errors.New(errors.ErrCodeMissingParameter, "polygon apiKey is required")
	}

	return NewPolygonClientWithAPI(&polygonRESTClient{client: polygon.New(apiKey)}), nil
}

// NewPolygonClientWithAPI creates a PolygonClient on top of an existing API client.
func NewPolygonClientWithAPI(apiClient PolygonAPIClient) *PolygonClient {
	return &PolygonClient{
		apiClient: apiClient,
		now:       time.Now,
	}
}

// History implements Provider using daily aggregates.
func (c *PolygonClient) History(ctx context.Context, symbol string, period types.Period) (types.OhlcSeries, error) {
	endDate := c.now()
	startDate := period.Start(endDate).Add(-polygonLookbackPadding)

	//nolint:exhaustruct // third-party struct with many optional fields
	params := models.ListAggsParams{
		Ticker:     symbol,
		Multiplier: 1,
		Timespan:   models.Day,
		From:       models.Millis(startDate),
		To:         models.Millis(endDate),
	}.WithLimit(50000)

	iter := c.apiClient.ListAggs(ctx, params)

	series := types.OhlcSeries{}

	for iter.Next() {
		agg := iter.Item()
		series = append(series, types.MarketData{
			Symbol: symbol,
			Time:   time.Time(agg.Timestamp),
			Open:   agg.Open,
			High:   agg.High,
			Low:    agg.Low,
			Close:  agg.Close,
			Volume: agg.Volume,
		})
	}

	if iter.Err() != nil {
		return nil, errors.Wrapf(errors.ErrCodeMarketDataFetchFailed, iter.Err(), "error iterating polygon aggregates for %s", symbol)
	}

	if len(series) == 0 {
		return nil, errors.Newf(errors.ErrCodeDataNotFound, "no polygon aggregates for %s over %s", symbol, period)
	}

	return sortAndTrim(series, period), nil
}

// CompanyInfo implements Provider. Polygon has no sector field; the SIC
// description is reported as the industry.
func (c *PolygonClient) CompanyInfo(ctx context.Context, symbol string) (types.CompanyInfo, error) {
	//nolint:exhaustruct // only the ticker is needed
	resp, err := c.apiClient.GetTickerDetails(ctx, &models.GetTickerDetailsParams{Ticker: symbol})
	if err != nil {
		return types.CompanyInfo{}, errors.Wrapf(errors.ErrCodeMarketDataFetchFailed, err, "failed to get polygon ticker details for %s", symbol)
	}

	return types.CompanyInfo{
		LongName: types.OptionalString(resp.Results.Name),
		Sector:   optional.None[string](),
		Industry: types.OptionalString(resp.Results.SICDescription),
	}, nil
}
