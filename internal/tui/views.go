package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/lipgloss"
	"github.com/rxtech-lab/stockview/internal/indicator"
	"github.com/rxtech-lab/stockview/internal/types"
)

const dateLayout = "2006-01-02"

// listItem implements list.Item for the period and plot type lists.
type listItem struct {
	name        string
	description string
}

func (i listItem) Title() string       { return i.name }
func (i listItem) Description() string { return i.description }
func (i listItem) FilterValue() string { return i.name }

var periodDescriptions = map[types.Period]string{
	types.PeriodOneDay:      "Last trading session",
	types.PeriodOneMonth:    "One month of daily bars",
	types.PeriodThreeMonths: "Three months of daily bars",
	types.PeriodSixMonths:   "Six months of daily bars",
	types.PeriodOneYear:     "One year of daily bars",
	types.PeriodFiveYears:   "Five years of daily bars",
}

func newList(title string, items []list.Item, selected int) list.Model {
	delegate := list.NewDefaultDelegate()
	delegate.ShowDescription = true

	l := list.New(items, delegate, 0, 0)
	l.Title = title
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)
	l.SetShowHelp(false)
	l.Select(selected)

	return l
}

// NewPeriodList creates the period selection list with selected highlighted.
func NewPeriodList(selected types.Period) list.Model {
	items := make([]list.Item, 0, len(types.Periods()))
	index := 0

	for i, p := range types.Periods() {
		items = append(items, listItem{name: p.String(), description: periodDescriptions[p]})

		if p == selected {
			index = i
		}
	}

	return newList("Select Period", items, index)
}

// NewPlotList creates the plot type selection list with selected highlighted.
func NewPlotList(selected types.PlotType) list.Model {
	items := []list.Item{
		listItem{name: string(types.PlotTypeCandlestick), description: "Open, high, low and close per session"},
		listItem{name: string(types.PlotTypeLine), description: "Closes joined, green rising and red falling"},
	}

	index := 0
	if selected == types.PlotTypeLine {
		index = 1
	}

	return newList("Select Plot Type", items, index)
}

// NewSymbolInput creates the ticker symbol input.
func NewSymbolInput(initial string) textinput.Model {
	ti := textinput.New()
	ti.Placeholder = "AAPL"
	ti.SetValue(initial)
	ti.Focus()
	ti.CharLimit = 32
	ti.Width = 20
	ti.Prompt = "> "

	return ti
}

// Rows of the indicator form.
const (
	rowSma = iota
	rowSmaWindow
	rowBollinger
	rowBollingerWindow
	rowBollingerMultiplier
	indicatorRows
)

const multiplierStep = 0.5

// adjustIndicator moves the numeric value on row by delta steps. Windows
// never drop below 1 and the multiplier never below zero.
func adjustIndicator(req indicator.IndicatorRequest, row, delta int) indicator.IndicatorRequest {
	switch row {
	case rowSmaWindow:
		req.SmaWindow = max(req.SmaWindow+delta, 1)
	case rowBollingerWindow:
		req.BollingerWindow = max(req.BollingerWindow+delta, 1)
	case rowBollingerMultiplier:
		req.BollingerStdDevMultiplier = max(req.BollingerStdDevMultiplier+float64(delta)*multiplierStep, 0)
	}

	return req
}

// toggleIndicator flips the overlay on row; numeric rows are left alone.
func toggleIndicator(req indicator.IndicatorRequest, row int) indicator.IndicatorRequest {
	switch row {
	case rowSma:
		req.IncludeSma = !req.IncludeSma
	case rowBollinger:
		req.IncludeBollinger = !req.IncludeBollinger
	}

	return req
}

// RenderIndicatorForm draws the overlay toggles and their parameters.
func RenderIndicatorForm(req indicator.IndicatorRequest, cursor int) string {
	check := func(on bool) string {
		if on {
			return "[x]"
		}

		return "[ ]"
	}

	rows := []string{
		fmt.Sprintf("%s Simple Moving Average", check(req.IncludeSma)),
		fmt.Sprintf("    Window: %d", req.SmaWindow),
		fmt.Sprintf("%s Bollinger Bands", check(req.IncludeBollinger)),
		fmt.Sprintf("    Window: %d", req.BollingerWindow),
		fmt.Sprintf("    Std Dev Multiplier: %.1f", req.BollingerStdDevMultiplier),
	}

	var s strings.Builder

	for i, row := range rows {
		if i == cursor {
			s.WriteString(CursorStyle.Render("> " + row))
		} else {
			s.WriteString("  " + row)
		}

		s.WriteString("\n")
	}

	return s.String()
}

// NewBarTable creates the table listing the bars of a report.
func NewBarTable() table.Model {
	columns := []table.Column{
		{Title: "Date", Width: 12},
		{Title: "Open", Width: 12},
		{Title: "High", Width: 12},
		{Title: "Low", Width: 12},
		{Title: "Close", Width: 14},
		{Title: "Volume", Width: 16},
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(10),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(s)

	return t
}

// UpdateTableRows fills the table with series, newest bar first.
func UpdateTableRows(t table.Model, series types.OhlcSeries) table.Model {
	rows := make([]table.Row, 0, len(series))

	for i := len(series) - 1; i >= 0; i-- {
		bar := series[i]
		previous := 0.0

		if i > 0 {
			previous = series[i-1].Close
		}

		rows = append(rows, table.Row{
			bar.Time.Format(dateLayout),
			fmt.Sprintf("%.2f", bar.Open),
			fmt.Sprintf("%.2f", bar.High),
			fmt.Sprintf("%.2f", bar.Low),
			FormatCloseWithChange(bar.Close, previous),
			fmt.Sprintf("%.0f", bar.Volume),
		})
	}

	t.SetRows(rows)

	return t
}
