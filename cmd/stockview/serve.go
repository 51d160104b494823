package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rxtech-lab/stockview/internal/metrics"
	"github.com/rxtech-lab/stockview/internal/server"
	"github.com/rxtech-lab/stockview/internal/viewer"
	"github.com/rxtech-lab/stockview/pkg/marketdata"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
)

func serveCommand() *cli.Command {
	flags := append(chartFlags(), &cli.StringFlag{
		Name:  flagAddr,
		Usage: "Listen address such as :8080",
	})

	return &cli.Command{
		Name:   "serve",
		Usage:  "Serve chart reports as JSON over HTTP",
		Flags:  flags,
		Action: serveAction,
	}
}

func serveAction(ctx context.Context, cmd *cli.Command) error {
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

	m := metrics.NewMetrics()
	service := viewer.NewService(client, log, viewer.WithObserver(m))

	srv := server.New(service, m, log, server.Options{
		Addr:         cfg.Server.Addr,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		Defaults:     cfg.ViewRequest(),
	})

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info("Starting stockview server",
		zap.String("addr", cfg.Server.Addr),
		zap.String("provider", string(cfg.Provider.Type)),
	)

	return srv.Run(ctx)
}
