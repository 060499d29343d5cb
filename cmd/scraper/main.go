// scraper submits URLs to a Web Scraper API dataset. Synchronous results are
// delivered to the configured sinks; queued snapshots are recorded locally and
// can be checked once with --check.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/samvad-hq/brightdata-go/internal/app"
	"github.com/samvad-hq/brightdata-go/internal/config"
	"github.com/samvad-hq/brightdata-go/internal/logger"
	"github.com/samvad-hq/brightdata-go/pkg/brightdata"
)

const defaultURL = "https://www.amazon.com/dp/B0CRMZHDG8"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "scraper failed: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		format  string
		dataset string
		check   bool
	)
	flagSet := pflag.NewFlagSet("scraper", pflag.ContinueOnError)
	flagSet.StringVar(&format, "format", "json", "result format: json or raw")
	flagSet.StringVar(&dataset, "dataset", "", "dataset id (default: BRIGHTDATA_DATASET_ID)")
	flagSet.BoolVar(&check, "check", false, "check recorded snapshots once instead of scraping")
	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, err := logger.Init(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Close()

	logger.DebugObj("scraper starting", "config", cfg.Redacted())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	rt, err := app.New(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer rt.Close()

	if check {
		progress, err := rt.CheckSnapshots(ctx)
		if err != nil {
			return fmt.Errorf("check snapshots: %w", err)
		}
		logger.InfoObj("snapshots checked", "snapshot_meta", map[string]any{"count": len(progress)})
		return nil
	}

	f, err := brightdata.ParseFormat(format)
	if err != nil {
		return err
	}
	urls := flagSet.Args()
	if len(urls) == 0 {
		urls = []string{defaultURL}
	}

	if _, err := rt.Scrape(ctx, app.ScrapeRequest{DatasetID: dataset, URLs: urls, Format: f}); err != nil {
		return fmt.Errorf("scrape: %w", err)
	}
	return nil
}
