// Command stockview charts daily stock prices in the terminal, serves the same
// charts as JSON over HTTP, and exports bars to parquet for offline use.
package main

import (
	"context"
	"log"
	"os"

	"github.com/rxtech-lab/stockview/internal/version"
	"github.com/urfave/cli/v3"
)

func newApp() *cli.Command {
	return &cli.Command{
		Name:    "stockview",
		Usage:   "Chart daily stock prices with moving average and Bollinger band overlays",
		Version: version.GetVersion(),
		Flags:   globalFlags(),
		// without a subcommand the interactive form starts
		Action: tuiAction,
		Commands: []*cli.Command{
			viewCommand(),
			tuiCommand(),
			serveCommand(),
			exportCommand(),
			providersCommand(),
			schemaCommand(),
		},
	}
}

func main() {
	if err := newApp().Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}
