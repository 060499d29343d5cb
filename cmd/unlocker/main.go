// unlocker fetches a page through the Web Unlocker API, or through the proxy
// endpoint with --proxy, and delivers the body or a page summary.
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
)

const defaultURL = "https://www.example.com"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "unlocker failed: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		viaProxy bool
		summary  bool
		maxLinks int
	)
	flagSet := pflag.NewFlagSet("unlocker", pflag.ContinueOnError)
	flagSet.BoolVar(&viaProxy, "proxy", false, "fetch through the proxy endpoint using zone credentials")
	flagSet.BoolVar(&summary, "summary", false, "deliver title, description and links instead of the HTML")
	flagSet.IntVar(&maxLinks, "max-links", 0, "links kept in a summary (default 20)")
	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}

	target := defaultURL
	if args := flagSet.Args(); len(args) > 0 {
		target = args[0]
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

	res, err := rt.Fetch(ctx, target, app.FetchOptions{ViaProxy: viaProxy, Summary: summary, MaxLinks: maxLinks})
	if err != nil {
		return fmt.Errorf("fetch %s: %w", target, err)
	}
	logger.InfoObj("page received", "page_meta", map[string]any{
		"url":   target,
		"chars": len(res.Text()),
	})
	return nil
}
