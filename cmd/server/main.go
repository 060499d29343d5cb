package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/samvad-hq/brightdata-go/internal/app"
	"github.com/samvad-hq/brightdata-go/internal/config"
	"github.com/samvad-hq/brightdata-go/internal/logger"
	"github.com/samvad-hq/brightdata-go/internal/server"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "server start failed: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, err := logger.Init(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Close()

	logger.InfoObj("server starting", "config", cfg.Redacted())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	rt, err := app.New(ctx, cfg, log)
	if err != nil {
		logger.ErrorObj("failed to initialize runtime", "error", err)
		return err
	}
	defer rt.Close()

	srvCfg := server.Config{
		ListenAddr: cfg.ServerAddr,
		Unlocker:   rt,
		Metrics:    rt.Metrics(),
		Logger:     log,
	}
	// Pages only fan out when sinks are configured explicitly.
	if cfg.SinksFile != "" {
		srvCfg.Sinks = rt.Sinks()
	}
	srv, err := server.New(srvCfg)
	if err != nil {
		return fmt.Errorf("build server: %w", err)
	}

	if err := srv.Run(ctx); err != nil {
		return fmt.Errorf("server run: %w", err)
	}
	return nil
}
