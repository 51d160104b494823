// Package chart draws a Report as a text chart for the terminal: a company
// header, a candlestick or trend-colored line plot with optional SMA and
// Bollinger overlays, axes, and a legend.
package chart

import (
	"fmt"
	"io"
	"math"
	"os"
	"strings"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/stockview/internal/types"
	"github.com/rxtech-lab/stockview/internal/viewer"
)

const (
	yLabelWidth   = 10
	dateLayout    = "2006-01-02"
	minPlotWidth  = 10
	minPlotHeight = 5

	glyphWick       = '│'
	glyphBody       = '┃'
	glyphLinePoint  = '●'
	glyphLineJoin   = '│'
	glyphSma        = '─'
	glyphBollinger  = '┄'
	legendSeparator = "   "
)

type Options struct {
	// Width is the full width in columns, axis labels included.
	Width int
	// Height is the number of plot rows.
	Height int
	// Output decides the color profile; os.Stdout when nil.
	Output io.Writer
}

func DefaultOptions() Options {
	return Options{Width: 100, Height: 20}
}

type Renderer struct {
	plotWidth int
	height    int
	styles    Styles
}

func NewRenderer(opts Options) *Renderer {
	if opts.Output == nil {
		opts.Output = os.Stdout
	}

	return &Renderer{
		plotWidth: max(opts.Width-yLabelWidth-1, minPlotWidth),
		height:    max(opts.Height, minPlotHeight),
		styles:    NewStyles(opts.Output),
	}
}

// Render returns the complete chart as a multi-line string.
func (r *Renderer) Render(report viewer.Report) string {
	var s strings.Builder

	s.WriteString(r.header(report))
	s.WriteString("\n")
	s.WriteString(r.styles.Title.Render(report.Title()))
	s.WriteString("\n")

	if len(report.Series) == 0 {
		s.WriteString(r.styles.Faint.Render(fmt.Sprintf("No price data for %s over %s", report.Symbol, report.Period)))
		s.WriteString("\n")

		return s.String()
	}

	columns := bucketize(report.Series, report.Result, r.plotWidth)
	lo, hi := priceRange(columns)
	grid := newGrid(r.height, len(columns))
	scale := func(price float64) int { return priceRow(price, lo, hi, r.height) }

	r.drawOverlays(grid, columns, scale)

	if report.PlotType == types.PlotTypeLine {
		r.drawLine(grid, columns, scale)
	} else {
		r.drawCandles(grid, columns, scale)
	}

	s.WriteString(r.styles.Label.Render("Price (USD)"))
	s.WriteString("\n")
	r.writeGrid(&s, grid, lo, hi)
	s.WriteString(r.xAxis(columns))
	s.WriteString(r.legend(report))
	s.WriteString("\n")

	return s.String()
}

func (r *Renderer) header(report viewer.Report) string {
	lines := []string{
		r.styles.Company.Render(fmt.Sprintf("%s (%s)", report.Company.DisplayLongName(), report.Symbol)),
		"Sector: " + report.Company.DisplaySector(),
		"Industry: " + report.Company.DisplayIndustry(),
		"Highest Price in Period: " + FormatPrice(report.Result.PeriodHigh),
		"Lowest Price in Period: " + FormatPrice(report.Result.PeriodLow),
	}

	return strings.Join(lines, "\n") + "\n"
}

// FormatPrice renders a summary price as "$123.45", or "N/A" when absent.
func FormatPrice(price optional.Option[float64]) string {
	if price.IsNone() {
		return types.UnknownField
	}

	return fmt.Sprintf("$%.2f", price.Unwrap())
}

func (r *Renderer) drawOverlays(grid [][]cell, columns []column, scale func(float64) int) {
	for x, col := range columns {
		for _, band := range []optional.Option[float64]{col.upper, col.lower} {
			if band.IsSome() {
				grid[scale(band.Unwrap())][x] = cell{glyph: glyphBollinger, kind: kindBand}
			}
		}

		if col.sma.IsSome() {
			grid[scale(col.sma.Unwrap())][x] = cell{glyph: glyphSma, kind: kindSma}
		}
	}
}

func (r *Renderer) drawCandles(grid [][]cell, columns []column, scale func(float64) int) {
	for x, col := range columns {
		kind := kindFalling
		if col.close >= col.open {
			kind = kindRising
		}

		for y := scale(col.high); y <= scale(col.low); y++ {
			grid[y][x] = cell{glyph: glyphWick, kind: kind}
		}

		for y := scale(math.Max(col.open, col.close)); y <= scale(math.Min(col.open, col.close)); y++ {
			grid[y][x] = cell{glyph: glyphBody, kind: kind}
		}
	}
}

func (r *Renderer) drawLine(grid [][]cell, columns []column, scale func(float64) int) {
	for x, col := range columns {
		kind := kindFalling
		if col.trend == types.TrendRising {
			kind = kindRising
		}

		y := scale(col.close)

		if x > 0 {
			prev := scale(columns[x-1].close)
			for j := min(prev, y) + 1; j < max(prev, y); j++ {
				grid[j][x] = cell{glyph: glyphLineJoin, kind: kind}
			}
		}

		grid[y][x] = cell{glyph: glyphLinePoint, kind: kind}
	}
}

func (r *Renderer) writeGrid(s *strings.Builder, grid [][]cell, lo, hi float64) {
	labelEvery := max(r.height/5, 1)

	for y, row := range grid {
		if y%labelEvery == 0 || y == len(grid)-1 {
			price := hi - float64(y)*(hi-lo)/float64(len(grid)-1)
			s.WriteString(r.styles.Axis.Render(fmt.Sprintf("%*.2f ┤", yLabelWidth-1, price)))
		} else {
			s.WriteString(r.styles.Axis.Render(strings.Repeat(" ", yLabelWidth) + "│"))
		}

		for _, c := range row {
			s.WriteString(r.renderCell(c))
		}

		s.WriteString("\n")
	}
}

func (r *Renderer) renderCell(c cell) string {
	glyph := string(c.glyph)

	switch c.kind {
	case kindRising:
		return r.styles.Rising.Render(glyph)
	case kindFalling:
		return r.styles.Falling.Render(glyph)
	case kindSma:
		return r.styles.Sma.Render(glyph)
	case kindBand:
		return r.styles.Band.Render(glyph)
	default:
		return " "
	}
}

// xAxis draws the baseline, date labels that do not overlap, and the axis title.
func (r *Renderer) xAxis(columns []column) string {
	var s strings.Builder

	s.WriteString(r.styles.Axis.Render(strings.Repeat(" ", yLabelWidth) + "└" + strings.Repeat("─", len(columns))))
	s.WriteString("\n")

	width := yLabelWidth + 1 + max(len(columns), len(dateLayout))
	labels := []rune(strings.Repeat(" ", width))
	next := 0
	step := max(len(dateLayout)+4, len(columns)/4)

	for x := 0; x < len(columns); x += step {
		label := columns[x].time.Format(dateLayout)
		pos := yLabelWidth + 1 + x

		if pos < next || pos+len(label) > width {
			continue
		}

		copy(labels[pos:], []rune(label))
		next = pos + len(label) + 2
	}

	s.WriteString(r.styles.Axis.Render(strings.TrimRight(string(labels), " ")))
	s.WriteString("\n")

	title := "Date"
	pad := max(yLabelWidth+1+(len(columns)-len(title))/2, 0)
	s.WriteString(strings.Repeat(" ", pad) + r.styles.Label.Render(title))
	s.WriteString("\n")

	return s.String()
}

func (r *Renderer) legend(report viewer.Report) string {
	var items []string

	if report.PlotType == types.PlotTypeLine {
		items = append(items,
			r.styles.Rising.Render(string(glyphLinePoint))+" Rising",
			r.styles.Falling.Render(string(glyphLinePoint))+" Falling",
		)
	} else {
		items = append(items,
			r.styles.Rising.Render(string(glyphBody))+" Rising",
			r.styles.Falling.Render(string(glyphBody))+" Falling",
		)
	}

	if report.Result.SmaSeries.IsSome() {
		items = append(items, r.styles.Sma.Render(string(glyphSma))+" "+SmaLegend(report.Indicators.SmaWindow))
	}

	if report.Result.BollingerUpper.IsSome() {
		items = append(items, r.styles.Band.Render(string(glyphBollinger))+" Upper Bollinger Band")
	}

	if report.Result.BollingerLower.IsSome() {
		items = append(items, r.styles.Band.Render(string(glyphBollinger))+" Lower Bollinger Band")
	}

	return strings.Join(items, legendSeparator)
}

// SmaLegend names the SMA overlay, e.g. "50-Day SMA".
func SmaLegend(window int) string {
	return fmt.Sprintf("%d-Day SMA", window)
}
