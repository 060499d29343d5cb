// serp runs a search through the SERP zone and delivers the result page.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/samvad-hq/brightdata-go/internal/app"
	"github.com/samvad-hq/brightdata-go/internal/config"
	"github.com/samvad-hq/brightdata-go/internal/logger"
	"github.com/samvad-hq/brightdata-go/pkg/brightdata"
)

const defaultQuery = "best python web scraping libraries"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "serp failed: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		engine string
		num    int
		format string
	)
	flagSet := pflag.NewFlagSet("serp", pflag.ContinueOnError)
	flagSet.StringVar(&engine, "engine", string(brightdata.EngineGoogle), "search engine: google or bing")
	flagSet.IntVar(&num, "num", 10, "number of results requested from the engine")
	flagSet.StringVar(&format, "format", "json", "result format: json (parsed) or raw (HTML)")
	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}

	f, err := brightdata.ParseFormat(format)
	if err != nil {
		return err
	}
	query := strings.Join(flagSet.Args(), " ")
	if query == "" {
		query = defaultQuery
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

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	rt, err := app.New(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer rt.Close()

	_, err = rt.Search(ctx, query, brightdata.SearchOptions{
		Engine:     brightdata.Engine(strings.ToLower(engine)),
		NumResults: num,
		Format:     f,
	})
	if err != nil {
		return fmt.Errorf("search: %w", err)
	}
	return nil
}
