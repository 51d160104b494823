// Package viewer turns a chart request into a Report: it fetches the series and
// company metadata, then runs the indicator computations over the series.
package viewer

import (
	"context"
	"fmt"
	"time"

	"github.com/rxtech-lab/stockview/internal/indicator"
	"github.com/rxtech-lab/stockview/internal/logger"
	"github.com/rxtech-lab/stockview/internal/types"
	"github.com/rxtech-lab/stockview/pkg/marketdata"
	"go.uber.org/zap"
)

// Request holds every user choice of one chart.
type Request struct {
	Symbol     string
	Period     types.Period
	PlotType   types.PlotType
	Indicators indicator.IndicatorRequest
}

// DefaultRequest returns AAPL over one month as candlesticks with the 50-day SMA.
func DefaultRequest() Request {
	return Request{
		Symbol:     "AAPL",
		Period:     types.DefaultPeriod,
		PlotType:   types.PlotTypeCandlestick,
		Indicators: indicator.DefaultIndicatorRequest(),
	}
}

// Validate checks the period, the plot type and the enabled overlays.
func (r Request) Validate() error {
	if err := r.Period.Validate(); err != nil {
		return err
	}

	if _, err := types.ParsePlotType(string(r.PlotType)); err != nil {
		return err
	}

	return r.Indicators.Validate()
}

// Report is everything a renderer needs to draw one chart.
type Report struct {
	Symbol      string
	Period      types.Period
	PlotType    types.PlotType
	Indicators  indicator.IndicatorRequest
	Company     types.CompanyInfo
	Series      types.OhlcSeries
	Result      types.ComputationResult
	GeneratedAt time.Time
}

// Title returns "<SYMBOL> <PlotType> Chart (<period>)".
func (r Report) Title() string {
	return fmt.Sprintf("%s %s Chart (%s)", r.Symbol, r.PlotType.Title(), r.Period)
}

// Fetcher loads the raw inputs of a chart. *marketdata.Client implements it.
type Fetcher interface {
	Fetch(ctx context.Context, params marketdata.FetchParams) (marketdata.FetchResult, error)
}

// Observer is notified of fetch and compute timings.
type Observer interface {
	ObserveFetch(duration time.Duration, err error)
	ObserveCompute(duration time.Duration, bars int)
}

type nopObserver struct{}

func (nopObserver) ObserveFetch(time.Duration, error)  {}
func (nopObserver) ObserveCompute(time.Duration, int) {}

// Service builds reports. It is safe for concurrent use when its Fetcher is.
type Service struct {
	fetcher  Fetcher
	logger   *logger.Logger
	observer Observer
	now      func() time.Time
}

type Option func(*Service)

// WithObserver reports timings to o.
func WithObserver(o Observer) Option {
	return func(s *Service) {
		s.observer = o
	}
}

func NewService(fetcher Fetcher, log *logger.Logger, opts ...Option) *Service {
	if log == nil {
		log = logger.NewNop()
	}

	s := &Service{
		fetcher:  fetcher,
		logger:   log,
		observer: nopObserver{},
		now:      time.Now,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// View validates req, fetches its data and computes the overlays. Line
// segments are produced exactly when the plot type is line.
func (s *Service) View(ctx context.Context, req Request) (Report, error) {
	req.Symbol = marketdata.NormalizeSymbol(req.Symbol)
	req.Indicators.IncludeLineSegments = req.PlotType == types.PlotTypeLine

	if err := req.Validate(); err != nil {
		return Report{}, err
	}

	fetchStart := s.now()
	data, err := s.fetcher.Fetch(ctx, marketdata.FetchParams{Symbol: req.Symbol, Period: req.Period})
	s.observer.ObserveFetch(s.now().Sub(fetchStart), err)

	if err != nil {
		s.logger.Error("Failed to fetch market data",
			zap.String("symbol", req.Symbol),
			zap.String("period", req.Period.String()),
			zap.Error(err),
		)

		return Report{}, err
	}

	computeStart := s.now()

	result, err := indicator.Compute(data.Series, req.Indicators)
	if err != nil {
		return Report{}, err
	}

	s.observer.ObserveCompute(s.now().Sub(computeStart), len(data.Series))

	s.logger.Info("Chart computed",
		zap.String("symbol", req.Symbol),
		zap.String("period", req.Period.String()),
		zap.String("plot", string(req.PlotType)),
		zap.Int("bars", len(data.Series)),
		zap.Bool("sma", req.Indicators.IncludeSma),
		zap.Bool("bollinger", req.Indicators.IncludeBollinger),
	)

	return Report{
		Symbol:      req.Symbol,
		Period:      req.Period,
		PlotType:    req.PlotType,
		Indicators:  req.Indicators,
		Company:     data.Company,
		Series:      data.Series,
		Result:      result,
		GeneratedAt: s.now(),
	}, nil
}
