package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rxtech-lab/stockview/internal/chart"
	"github.com/rxtech-lab/stockview/internal/viewer"
	"github.com/rxtech-lab/stockview/pkg/marketdata"
	"github.com/urfave/cli/v3"
)

func viewCommand() *cli.Command {
	flags := append(chartFlags(),
		&cli.BoolFlag{
			Name:  flagJSON,
			Usage: "Print the report as JSON instead of drawing it",
		},
		&cli.BoolFlag{
			Name:  flagNoProgress,
			Usage: "Do not show the fetch spinner",
		},
	)

	return &cli.Command{
		Name:      "view",
		Usage:     "Draw one chart and exit",
		ArgsUsage: "[symbol]",
		Flags:     flags,
		Action:    viewAction,
	}
}

func viewAction(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	log, err := newLogger(cfg)
	if err != nil {
		return err
	}

	defer func() { _ = log.Sync() }()

	client, err := marketdata.NewClient(cfg.ClientConfig(), log)
	if err != nil {
		return err
	}

	defer func() { _ = client.Close() }()

	service := viewer.NewService(client, log)
	req := cfg.ViewRequest()

	var report viewer.Report

	fetch := func() error {
		var err error

		report, err = service.View(ctx, req)

		return err
	}

	if cmd.Bool(flagNoProgress) {
		err = fetch()
	} else {
		err = withSpinner(stderr(cmd), fmt.Sprintf("Fetching %s (%s)", req.Symbol, req.Period), fetch)
	}

	if err != nil {
		return err
	}

	out := stdout(cmd)

	if cmd.Bool(flagJSON) {
		encoder := json.NewEncoder(out)
		encoder.SetIndent("", "  ")

		return encoder.Encode(report.JSON())
	}

	renderer := chart.NewRenderer(chart.Options{
		Width:  cfg.Chart.Width,
		Height: cfg.Chart.Height,
		Output: out,
	})

	_, err = fmt.Fprint(out, renderer.Render(report))

	return err
}
