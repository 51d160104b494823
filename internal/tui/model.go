// Package tui is the interactive chart form: pick a symbol, a period, a plot
// type and the overlays, then browse the rendered chart or its bars.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rxtech-lab/stockview/internal/chart"
	"github.com/rxtech-lab/stockview/internal/types"
	"github.com/rxtech-lab/stockview/internal/viewer"
	"github.com/rxtech-lab/stockview/pkg/marketdata"
)

// Application states.
const (
	StateSymbolInput = iota
	StatePeriodSelect
	StatePlotSelect
	StateIndicatorSelect
	StateLoading
	StateChart
)

// chartChrome is the number of rows around the plot: header, title, axes,
// legend and help.
const chartChrome = 16

// Viewer builds chart reports. *viewer.Service implements it.
type Viewer interface {
	View(ctx context.Context, req viewer.Request) (viewer.Report, error)
}

type Options struct {
	// Defaults pre-fills every step of the form.
	Defaults viewer.Request
	Chart    chart.Options
}

// Model is the main Bubble Tea model of the chart form.
type Model struct {
	state        int
	ctx          context.Context
	viewer       Viewer
	request      viewer.Request
	symbolInput  textinput.Model
	periodList   list.Model
	plotList     list.Model
	cursor       int
	spinner      spinner.Model
	barTable     table.Model
	showTable    bool
	report       *viewer.Report
	chartOptions chart.Options
	renderer     *chart.Renderer
	err          error
	width        int
	height       int
}

// NewModel creates a Model at the symbol input, pre-filled from opts.Defaults.
func NewModel(ctx context.Context, v Viewer, opts Options) Model {
	s := spinner.New()
	s.Spinner = spinner.Dot

	return Model{
		state:        StateSymbolInput,
		ctx:          ctx,
		viewer:       v,
		request:      opts.Defaults,
		symbolInput:  NewSymbolInput(opts.Defaults.Symbol),
		periodList:   NewPeriodList(opts.Defaults.Period),
		plotList:     NewPlotList(opts.Defaults.PlotType),
		spinner:      s,
		barTable:     NewBarTable(),
		chartOptions: opts.Chart,
		renderer:     chart.NewRenderer(opts.Chart),
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "q":
			// Only quit on 'q' if not in text input mode
			if m.state != StateSymbolInput {
				return m, tea.Quit
			}
		case "esc":
			return m.handleEsc()
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.periodList.SetSize(msg.Width, msg.Height-4)
		m.plotList.SetSize(msg.Width, msg.Height-4)
		m.barTable.SetWidth(msg.Width)
		m.barTable.SetHeight(max(msg.Height-8, 3))

		opts := m.chartOptions
		opts.Width = msg.Width
		opts.Height = msg.Height - chartChrome
		m.renderer = chart.NewRenderer(opts)

		return m, nil

	case ReportMsg:
		report := msg.Report
		m.report = &report
		m.err = nil
		m.barTable = UpdateTableRows(m.barTable, report.Series)
		m.state = StateChart

		return m, nil

	case ReportErrorMsg:
		m.report = nil
		m.err = msg.Err
		m.state = StateChart

		return m, nil

	case spinner.TickMsg:
		if m.state != StateLoading {
			return m, nil
		}

		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)

		return m, cmd
	}

	// Delegate to state-specific update
	switch m.state {
	case StateSymbolInput:
		return m.updateSymbolInput(msg)
	case StatePeriodSelect:
		return m.updatePeriodSelect(msg)
	case StatePlotSelect:
		return m.updatePlotSelect(msg)
	case StateIndicatorSelect:
		return m.updateIndicatorSelect(msg)
	case StateChart:
		return m.updateChart(msg)
	}

	return m, nil
}

func (m Model) handleEsc() (tea.Model, tea.Cmd) {
	switch m.state {
	case StatePeriodSelect:
		m.state = StateSymbolInput
		m.symbolInput.Focus()

		return m, textinput.Blink
	case StatePlotSelect:
		m.state = StatePeriodSelect
	case StateIndicatorSelect:
		m.err = nil
		m.state = StatePlotSelect
	case StateChart:
		m.report = nil
		m.err = nil
		m.showTable = false
		m.state = StateIndicatorSelect
	}

	return m, nil
}

func (m Model) updateSymbolInput(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok && msg.String() == "enter" {
		symbol := marketdata.NormalizeSymbol(m.symbolInput.Value())
		if symbol != "" {
			m.request.Symbol = symbol
			m.state = StatePeriodSelect
			m.symbolInput.Blur()

			return m, nil
		}
	}

	var cmd tea.Cmd
	m.symbolInput, cmd = m.symbolInput.Update(msg)

	return m, cmd
}

func (m Model) updatePeriodSelect(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok && msg.String() == "enter" {
		if item, ok := m.periodList.SelectedItem().(listItem); ok {
			m.request.Period = types.Period(item.name)
			m.state = StatePlotSelect

			return m, nil
		}
	}

	var cmd tea.Cmd
	m.periodList, cmd = m.periodList.Update(msg)

	return m, cmd
}

func (m Model) updatePlotSelect(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok && msg.String() == "enter" {
		if item, ok := m.plotList.SelectedItem().(listItem); ok {
			m.request.PlotType = types.PlotType(item.name)
			m.state = StateIndicatorSelect

			return m, nil
		}
	}

	var cmd tea.Cmd
	m.plotList, cmd = m.plotList.Update(msg)

	return m, cmd
}

func (m Model) updateIndicatorSelect(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch key.String() {
	case "up", "k":
		m.cursor = (m.cursor + indicatorRows - 1) % indicatorRows
	case "down", "j", "tab":
		m.cursor = (m.cursor + 1) % indicatorRows
	case " ", "x":
		m.request.Indicators = toggleIndicator(m.request.Indicators, m.cursor)
	case "left", "h", "-":
		m.request.Indicators = adjustIndicator(m.request.Indicators, m.cursor, -1)
	case "right", "l", "+":
		m.request.Indicators = adjustIndicator(m.request.Indicators, m.cursor, 1)
	case "enter":
		if err := m.request.Validate(); err != nil {
			m.err = err

			return m, nil
		}

		return m.load()
	}

	return m, nil
}

func (m Model) updateChart(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "t":
			if m.report != nil {
				m.showTable = !m.showTable
			}

			return m, nil
		case "r":
			return m.load()
		case "p":
			if m.request.PlotType == types.PlotTypeLine {
				m.request.PlotType = types.PlotTypeCandlestick
			} else {
				m.request.PlotType = types.PlotTypeLine
			}

			return m.load()
		}
	}

	if !m.showTable {
		return m, nil
	}

	var cmd tea.Cmd
	m.barTable, cmd = m.barTable.Update(msg)

	return m, cmd
}

// load switches to the loading screen and fetches the current request.
func (m Model) load() (tea.Model, tea.Cmd) {
	m.err = nil
	m.state = StateLoading

	return m, tea.Batch(m.spinner.Tick, m.fetchReport())
}

func (m Model) fetchReport() tea.Cmd {
	ctx, v, req := m.ctx, m.viewer, m.request

	return func() tea.Msg {
		report, err := v.View(ctx, req)
		if err != nil {
			return ReportErrorMsg{Err: err}
		}

		return ReportMsg{Report: report}
	}
}

// View implements tea.Model.
func (m Model) View() string {
	var s strings.Builder

	switch m.state {
	case StateSymbolInput:
		s.WriteString(TitleStyle.Render("Stock Data Visualization"))
		s.WriteString("\n\n")
		s.WriteString("Enter a ticker symbol (e.g., AAPL, MSFT, BTCUSDT):\n\n")
		s.WriteString(m.symbolInput.View())
		s.WriteString("\n\n")
		s.WriteString(HelpStyle.Render("Press Enter to confirm, ctrl+c to quit"))

	case StatePeriodSelect:
		s.WriteString(TitleStyle.Render(fmt.Sprintf("Period for %s", m.request.Symbol)))
		s.WriteString("\n\n")
		s.WriteString(m.periodList.View())
		s.WriteString("\n")
		s.WriteString(HelpStyle.Render("Press Enter to select, Esc to go back"))

	case StatePlotSelect:
		s.WriteString(TitleStyle.Render(fmt.Sprintf("Plot for %s (%s)", m.request.Symbol, m.request.Period)))
		s.WriteString("\n\n")
		s.WriteString(m.plotList.View())
		s.WriteString("\n")
		s.WriteString(HelpStyle.Render("Press Enter to select, Esc to go back"))

	case StateIndicatorSelect:
		s.WriteString(TitleStyle.Render("Technical Indicators"))
		s.WriteString("\n\n")
		s.WriteString(RenderIndicatorForm(m.request.Indicators, m.cursor))
		s.WriteString("\n")

		if m.err != nil {
			s.WriteString(ErrorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
			s.WriteString("\n\n")
		}

		s.WriteString(HelpStyle.Render("↑/↓: move | space: toggle | ←/→: adjust | Enter: draw chart | Esc: back"))

	case StateLoading:
		s.WriteString(fmt.Sprintf("%s Fetching %s (%s)...", m.spinner.View(), m.request.Symbol, m.request.Period))

	case StateChart:
		m.writeChart(&s)
	}

	return s.String()
}

func (m Model) writeChart(s *strings.Builder) {
	switch {
	case m.err != nil:
		s.WriteString(ErrorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
		s.WriteString("\n\n")
		s.WriteString(HelpStyle.Render("r: retry | Esc: back | q: quit"))

		return
	case m.report == nil:
		return
	case m.showTable:
		s.WriteString(TitleStyle.Render(m.report.Title()))
		s.WriteString("\n\n")
		s.WriteString(m.barTable.View())
		s.WriteString("\n")
	default:
		s.WriteString(m.renderer.Render(*m.report))
	}

	s.WriteString("\n")
	s.WriteString(HelpStyle.Render("t: chart/table | p: switch plot | r: refresh | Esc: back | q: quit"))
}
