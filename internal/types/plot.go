package types

import (
	"strings"

	"github.com/rxtech-lab/stockview/pkg/errors"
)

// PlotType selects how the price series is drawn.
type PlotType string

const (
	PlotTypeCandlestick PlotType = "candlestick"
	PlotTypeLine        PlotType = "line"
)

// ParsePlotType accepts "candlestick" or "line" in any case.
func ParsePlotType(s string) (PlotType, error) {
	switch PlotType(strings.ToLower(strings.TrimSpace(s))) {
	case PlotTypeCandlestick:
		return PlotTypeCandlestick, nil
	case PlotTypeLine:
		return PlotTypeLine, nil
	default:
		return "", errors.Newf(errors.ErrCodeInvalidPlotType, "unsupported plot type %q, expected candlestick or line", s)
	}
}

// Title is the capitalized name used in chart titles.
func (p PlotType) Title() string {
	switch p {
	case PlotTypeLine:
		return "Line"
	default:
		return "Candlestick"
	}
}
