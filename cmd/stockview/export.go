package main

import (
	"context"
	"fmt"

	"github.com/rxtech-lab/stockview/internal/types"
	"github.com/rxtech-lab/stockview/pkg/errors"
	"github.com/rxtech-lab/stockview/pkg/marketdata"
	"github.com/rxtech-lab/stockview/pkg/marketdata/writer"
	"github.com/schollz/progressbar/v3"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
)

func exportCommand() *cli.Command {
	return &cli.Command{
		Name:  "export",
		Usage: "Save the bars of one or more symbols to a parquet file for the file provider",
		Flags: []cli.Flag{
			&cli.StringSliceFlag{
				Name:     flagSymbol,
				Aliases:  []string{"s"},
				Usage:    "Ticker symbol; repeat for several",
				Required: true,
			},
			&cli.StringFlag{
				Name:    flagPeriod,
				Aliases: []string{"p"},
				Usage:   "Lookback period (1d, 1mo, 3mo, 6mo, 1y, 5y)",
			},
			&cli.StringFlag{
				Name:     flagOut,
				Aliases:  []string{"o"},
				Usage:    "Output parquet file",
				Required: true,
			},
		},
		Action: exportAction,
	}
}

func exportAction(ctx context.Context, cmd *cli.Command) error {
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

	symbols := cmd.StringSlice(flagSymbol)
	bar := progressbar.NewOptions(len(symbols),
		progressbar.OptionSetWriter(stderr(cmd)),
		progressbar.OptionSetDescription("Fetching"),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
	)

	all := types.OhlcSeries{}

	for _, symbol := range symbols {
		bar.Describe(fmt.Sprintf("Fetching %s", symbol))

		result, err := client.Fetch(ctx, marketdata.FetchParams{Symbol: symbol, Period: cfg.Chart.Period})
		if err != nil {
			return errors.Wrapf(errors.GetCode(err), err, "failed to fetch %s", symbol)
		}

		all = append(all, result.Series...)
		_ = bar.Add(1)
	}

	_ = bar.Finish()

	path, err := writer.WriteSeries(writer.NewDuckDBWriter(cmd.String(flagOut), log), all)
	if err != nil {
		return err
	}

	log.Info("Exported market data",
		zap.Strings("symbols", symbols),
		zap.Int("bars", len(all)),
		zap.String("path", path),
	)

	_, err = fmt.Fprintf(stdout(cmd), "Exported %d bars for %d symbols to %s\n", len(all), len(symbols), path)

	return err
}
