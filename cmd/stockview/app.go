package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rxtech-lab/stockview/internal/config"
	"github.com/rxtech-lab/stockview/internal/logger"
	"github.com/rxtech-lab/stockview/internal/types"
	"github.com/rxtech-lab/stockview/pkg/marketdata/provider"
	"github.com/schollz/progressbar/v3"
	"github.com/urfave/cli/v3"
)

// Flag names shared by several commands.
const (
	flagConfig   = "config"
	flagEnvFile  = "env-file"
	flagProvider = "provider"
	flagData     = "data"
	flagLogLevel = "log-level"
	flagTimeout  = "timeout"

	flagSymbol              = "symbol"
	flagPeriod              = "period"
	flagPlot                = "plot"
	flagSma                 = "sma"
	flagSmaWindow           = "sma-window"
	flagBollinger           = "bollinger"
	flagBollingerWindow     = "bollinger-window"
	flagBollingerMultiplier = "bollinger-multiplier"
	flagWidth               = "width"
	flagHeight              = "height"
	flagJSON                = "json"
	flagNoProgress          = "no-progress"
	flagAddr                = "addr"
	flagOut                 = "out"
)

const spinnerInterval = 100 * time.Millisecond

func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    flagConfig,
			Aliases: []string{"c"},
			Usage:   "Path to a YAML config file",
		},
		&cli.StringSliceFlag{
			Name:  flagEnvFile,
			Usage: "Load environment variables from these .env files; missing files are skipped",
			Value: []string{".env"},
		},
		&cli.StringFlag{
			Name:  flagProvider,
			Usage: fmt.Sprintf("Data provider to use (%s)", strings.Join(providerNames(), ", ")),
		},
		&cli.StringFlag{
			Name:    flagData,
			Aliases: []string{"d"},
			Usage:   "Parquet file read by the file provider",
		},
		&cli.StringFlag{
			Name:  flagLogLevel,
			Usage: "Log level (debug, info, warn, error)",
		},
		&cli.DurationFlag{
			Name:  flagTimeout,
			Usage: "Per request timeout of the data provider",
		},
	}
}

// chartFlags select the chart; unset flags keep the configured value.
func chartFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    flagSymbol,
			Aliases: []string{"s"},
			Usage:   "Ticker symbol, also accepted as the first argument",
		},
		&cli.StringFlag{
			Name:    flagPeriod,
			Aliases: []string{"p"},
			Usage:   "Lookback period (1d, 1mo, 3mo, 6mo, 1y, 5y)",
		},
		&cli.StringFlag{
			Name:  flagPlot,
			Usage: "Plot type (candlestick, line)",
		},
		&cli.BoolFlag{
			Name:  flagSma,
			Usage: "Draw the simple moving average",
		},
		&cli.IntFlag{
			Name:  flagSmaWindow,
			Usage: "SMA window in sessions",
		},
		&cli.BoolFlag{
			Name:  flagBollinger,
			Usage: "Draw Bollinger bands",
		},
		&cli.IntFlag{
			Name:  flagBollingerWindow,
			Usage: "Bollinger window in sessions",
		},
		&cli.FloatFlag{
			Name:  flagBollingerMultiplier,
			Usage: "Standard deviations between the middle and each band",
		},
		&cli.IntFlag{
			Name:  flagWidth,
			Usage: "Chart width in columns",
		},
		&cli.IntFlag{
			Name:  flagHeight,
			Usage: "Chart height in rows",
		},
	}
}

func providerNames() []string {
	return []string{
		string(provider.ProviderYahoo),
		string(provider.ProviderPolygon),
		string(provider.ProviderBinance),
		string(provider.ProviderFile),
	}
}

// loadConfig resolves the configuration: defaults, the YAML file, .env files
// and the environment, then flags set on the command line.
func loadConfig(cmd *cli.Command) (config.Config, error) {
	if err := config.LoadDotEnv(cmd.StringSlice(flagEnvFile)...); err != nil {
		return config.Config{}, err
	}

	cfg, err := config.Load(cmd.String(flagConfig))
	if err != nil {
		return config.Config{}, err
	}

	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return config.Config{}, err
	}

	applyFlags(&cfg, cmd)

	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}

	return cfg, nil
}

func applyFlags(cfg *config.Config, cmd *cli.Command) {
	if cmd.IsSet(flagProvider) {
		cfg.Provider.Type = provider.ProviderType(strings.ToLower(cmd.String(flagProvider)))
	}

	if cmd.IsSet(flagData) {
		cfg.Provider.DataPath = cmd.String(flagData)
	}

	if cmd.IsSet(flagTimeout) {
		cfg.Provider.Timeout = cmd.Duration(flagTimeout)
	}

	if cmd.IsSet(flagLogLevel) {
		cfg.Log.Level = strings.ToLower(cmd.String(flagLogLevel))
	}

	if symbol := cmd.Args().First(); symbol != "" {
		cfg.Chart.Symbol = symbol
	}

	// export declares --symbol as a list and reads it itself
	if symbol := cmd.String(flagSymbol); cmd.IsSet(flagSymbol) && symbol != "" {
		cfg.Chart.Symbol = symbol
	}

	if cmd.IsSet(flagPeriod) {
		cfg.Chart.Period = types.Period(strings.TrimSpace(cmd.String(flagPeriod)))
	}

	if cmd.IsSet(flagPlot) {
		cfg.Chart.PlotType = types.PlotType(strings.ToLower(strings.TrimSpace(cmd.String(flagPlot))))
	}

	if cmd.IsSet(flagSma) {
		cfg.Chart.Sma = cmd.Bool(flagSma)
	}

	if cmd.IsSet(flagSmaWindow) {
		cfg.Chart.SmaWindow = int(cmd.Int(flagSmaWindow))
	}

	if cmd.IsSet(flagBollinger) {
		cfg.Chart.Bollinger = cmd.Bool(flagBollinger)
	}

	if cmd.IsSet(flagBollingerWindow) {
		cfg.Chart.BollingerWindow = int(cmd.Int(flagBollingerWindow))
	}

	if cmd.IsSet(flagBollingerMultiplier) {
		cfg.Chart.BollingerStdDevMultiplier = cmd.Float(flagBollingerMultiplier)
	}

	if cmd.IsSet(flagWidth) {
		cfg.Chart.Width = int(cmd.Int(flagWidth))
	}

	if cmd.IsSet(flagHeight) {
		cfg.Chart.Height = int(cmd.Int(flagHeight))
	}

	if cmd.IsSet(flagAddr) {
		cfg.Server.Addr = cmd.String(flagAddr)
	}
}

func newLogger(cfg config.Config) (*logger.Logger, error) {
	return logger.NewLogger(cfg.LoggerOptions())
}

func stdout(cmd *cli.Command) io.Writer {
	if w := cmd.Root().Writer; w != nil {
		return w
	}

	return os.Stdout
}

func stderr(cmd *cli.Command) io.Writer {
	if w := cmd.Root().ErrWriter; w != nil {
		return w
	}

	return os.Stderr
}

// withSpinner runs fn while an indeterminate progress bar spins on w.
func withSpinner(w io.Writer, description string, fn func() error) error {
	bar := progressbar.NewOptions(-1,
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetDescription(description),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionClearOnFinish(),
	)

	done := make(chan struct{})
	stopped := make(chan struct{})

	go func() {
		defer close(stopped)

		ticker := time.NewTicker(spinnerInterval)
		defer ticker.Stop()

		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				_ = bar.Add(1)
			}
		}
	}()

	err := fn()

	close(done)
	<-stopped

	_ = bar.Finish()

	return err
}
