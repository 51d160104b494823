package types

import (
	"strings"
	"time"

	"github.com/rxtech-lab/stockview/pkg/errors"
)

// Period is the historical lookback requested from a provider. It is unrelated
// to the rolling window used by indicators.
type Period string

const (
	PeriodOneDay      Period = "1d"
	PeriodOneMonth    Period = "1mo"
	PeriodThreeMonths Period = "3mo"
	PeriodSixMonths   Period = "6mo"
	PeriodOneYear     Period = "1y"
	PeriodFiveYears   Period = "5y"
)

// DefaultPeriod is preselected in the interactive form.
const DefaultPeriod = PeriodOneMonth

// Periods lists the supported periods in display order.
func Periods() []Period {
	return []Period{
		PeriodOneDay,
		PeriodOneMonth,
		PeriodThreeMonths,
		PeriodSixMonths,
		PeriodOneYear,
		PeriodFiveYears,
	}
}

// ParsePeriod validates s against the supported periods.
func ParsePeriod(s string) (Period, error) {
	p := Period(strings.TrimSpace(s))
	if err := p.Validate(); err != nil {
		return "", err
	}

	return p, nil
}

// Validate returns ErrCodeInvalidPeriod for an unsupported period.
func (p Period) Validate() error {
	for _, known := range Periods() {
		if p == known {
			return nil
		}
	}

	return errors.Newf(errors.ErrCodeInvalidPeriod, "unsupported period %q, expected one of 1d, 1mo, 3mo, 6mo, 1y, 5y", string(p))
}

// Start returns the beginning of the period that ends at end.
func (p Period) Start(end time.Time) time.Time {
	switch p {
	case PeriodOneDay:
		return end.AddDate(0, 0, -1)
	case PeriodOneMonth:
		return end.AddDate(0, -1, 0)
	case PeriodThreeMonths:
		return end.AddDate(0, -3, 0)
	case PeriodSixMonths:
		return end.AddDate(0, -6, 0)
	case PeriodOneYear:
		return end.AddDate(-1, 0, 0)
	case PeriodFiveYears:
		return end.AddDate(-5, 0, 0)
	default:
		return end.AddDate(0, -1, 0)
	}
}

// Trim keeps the bars that fall inside the period anchored at the last bar.
// Providers that query by date range fetch with some padding for weekends and
// holidays and then trim, so "1d" always means the latest session.
func (p Period) Trim(series OhlcSeries) OhlcSeries {
	last, ok := series.Last()
	if !ok {
		return series
	}

	return series.Since(p.Start(last.Time))
}

func (p Period) String() string {
	return string(p)
}
