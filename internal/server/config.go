package server

import (
	"context"

	"github.com/samvad-hq/brightdata-go/internal/logger"
	"github.com/samvad-hq/brightdata-go/internal/metrics"
	"github.com/samvad-hq/brightdata-go/pkg/brightdata"
	"github.com/samvad-hq/brightdata-go/pkg/sinks"
)

// Unlocker fetches a page through the unlocker zone.
type Unlocker interface {
	Unlock(ctx context.Context, target string) (*brightdata.Result, error)
}

// Config wires the scrape endpoint.
type Config struct {
	// ListenAddr is the HTTP listen address, e.g. ":8080".
	ListenAddr string
	Unlocker   Unlocker
	// Metrics is optional; /metrics answers 503 without it.
	Metrics *metrics.Recorder
	// Sinks is optional; successful pages are also delivered there.
	Sinks  *sinks.Fanout
	Logger logger.Logger
}
