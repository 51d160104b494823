package viewer

import (
	"fmt"
	"time"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/stockview/internal/types"
)

// ReportJSON is the wire form of a Report. Values that may be absent are
// pointers so they encode as null.
type ReportJSON struct {
	Symbol         string        `json:"symbol"`
	Period         string        `json:"period"`
	PlotType       string        `json:"plotType"`
	Title          string        `json:"title"`
	Company        CompanyJSON   `json:"company"`
	PeriodHigh     *float64      `json:"periodHigh"`
	PeriodLow      *float64      `json:"periodLow"`
	Bars           []BarJSON     `json:"bars"`
	Segments       []SegmentJSON `json:"segments,omitempty"`
	Sma            *OverlayJSON  `json:"sma,omitempty"`
	BollingerUpper *OverlayJSON  `json:"bollingerUpper,omitempty"`
	BollingerLower *OverlayJSON  `json:"bollingerLower,omitempty"`
	GeneratedAt    time.Time     `json:"generatedAt"`
}

type CompanyJSON struct {
	LongName *string `json:"longName"`
	Sector   *string `json:"sector"`
	Industry *string `json:"industry"`
}

type BarJSON struct {
	Time   time.Time `json:"time"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume float64   `json:"volume"`
}

type SegmentJSON struct {
	StartTime  time.Time `json:"startTime"`
	StartClose float64   `json:"startClose"`
	EndTime    time.Time `json:"endTime"`
	EndClose   float64   `json:"endClose"`
	Trend      string    `json:"trend"`
}

type OverlayJSON struct {
	Label  string      `json:"label"`
	Window int         `json:"window"`
	Points []PointJSON `json:"points"`
}

type PointJSON struct {
	Time  time.Time `json:"time"`
	Value *float64  `json:"value"`
}

// JSON converts the report to its wire form.
func (r Report) JSON() ReportJSON {
	out := ReportJSON{
		Symbol:   r.Symbol,
		Period:   r.Period.String(),
		PlotType: string(r.PlotType),
		Title:    r.Title(),
		Company: CompanyJSON{
			LongName: ptr(r.Company.LongName),
			Sector:   ptr(r.Company.Sector),
			Industry: ptr(r.Company.Industry),
		},
		PeriodHigh:  ptr(r.Result.PeriodHigh),
		PeriodLow:   ptr(r.Result.PeriodLow),
		Bars:        make([]BarJSON, len(r.Series)),
		GeneratedAt: r.GeneratedAt,
	}

	for i, bar := range r.Series {
		out.Bars[i] = BarJSON{
			Time:   bar.Time,
			Open:   bar.Open,
			High:   bar.High,
			Low:    bar.Low,
			Close:  bar.Close,
			Volume: bar.Volume,
		}
	}

	for _, seg := range r.Result.PriceSegments {
		out.Segments = append(out.Segments, SegmentJSON{
			StartTime:  seg.StartTime,
			StartClose: seg.StartClose,
			EndTime:    seg.EndTime,
			EndClose:   seg.EndClose,
			Trend:      string(seg.Trend),
		})
	}

	out.Sma = overlay(r.Result.SmaSeries, fmt.Sprintf("%d-Day SMA", r.Indicators.SmaWindow), r.Indicators.SmaWindow)
	out.BollingerUpper = overlay(r.Result.BollingerUpper, "Upper Bollinger Band", r.Indicators.BollingerWindow)
	out.BollingerLower = overlay(r.Result.BollingerLower, "Lower Bollinger Band", r.Indicators.BollingerWindow)

	return out
}

func overlay(series optional.Option[[]types.SeriesPoint], label string, window int) *OverlayJSON {
	if series.IsNone() {
		return nil
	}

	points := series.Unwrap()
	out := &OverlayJSON{
		Label:  label,
		Window: window,
		Points: make([]PointJSON, len(points)),
	}

	for i, p := range points {
		out.Points[i] = PointJSON{Time: p.Time, Value: ptr(p.Value)}
	}

	return out
}

func ptr[T any](o optional.Option[T]) *T {
	if o.IsNone() {
		return nil
	}

	v := o.Unwrap()

	return &v
}
