package main

import (
	"context"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rxtech-lab/stockview/internal/chart"
	"github.com/rxtech-lab/stockview/internal/logger"
	"github.com/rxtech-lab/stockview/internal/tui"
	"github.com/rxtech-lab/stockview/internal/viewer"
	"github.com/rxtech-lab/stockview/pkg/marketdata"
	"github.com/urfave/cli/v3"
)

func tuiCommand() *cli.Command {
	return &cli.Command{
		Name:      "tui",
		Usage:     "Pick the symbol, period, plot type and overlays interactively",
		ArgsUsage: "[symbol]",
		Flags:     chartFlags(),
		Action:    tuiAction,
	}
}

// tuiAction runs the form full screen. Logs are discarded so they cannot
// tear the screen.
func tuiAction(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	log := logger.NewNop()

	client, err := marketdata.NewClient(cfg.ClientConfig(), log)
	if err != nil {
		return err
	}

	defer func() { _ = client.Close() }()

	model := tui.NewModel(ctx, viewer.NewService(client, log), tui.Options{
		Defaults: cfg.ViewRequest(),
		Chart: chart.Options{
			Width:  cfg.Chart.Width,
			Height: cfg.Chart.Height,
			Output: os.Stdout,
		},
	})

	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err = p.Run()

	return err
}
