package app

import (
	"context"
	"fmt"

	"github.com/samvad-hq/brightdata-go/internal/config"
	"github.com/samvad-hq/brightdata-go/internal/logger"
	"github.com/samvad-hq/brightdata-go/internal/metrics"
	"github.com/samvad-hq/brightdata-go/internal/storage"
	"github.com/samvad-hq/brightdata-go/pkg/brightdata"
	"github.com/samvad-hq/brightdata-go/pkg/sinks"
)

// Runtime wires the Bright Data client together with the snapshot ledger,
// the sink fanout and the metrics recorder. Every command builds one.
type Runtime struct {
	cfg     *config.Config
	client  *brightdata.Client
	proxy   *brightdata.ProxyClient
	store   storage.Store
	fanout  *sinks.Fanout
	metrics *metrics.Recorder
	log     logger.Logger
}

// Option customizes a Runtime during construction.
type Option func(*Runtime)

// WithSinks replaces the sinks loaded from config.
func WithSinks(f *sinks.Fanout) Option {
	return func(r *Runtime) { r.fanout = f }
}

// WithStore replaces the snapshot store selected by config.
func WithStore(s storage.Store) Option {
	return func(r *Runtime) { r.store = s }
}

// New builds a runtime from config.
func New(ctx context.Context, cfg *config.Config, log logger.Logger, opts ...Option) (*Runtime, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	if log == nil {
		log = logger.NopLogger{}
	}
	if ctx == nil {
		ctx = context.Background()
	}

	rt := &Runtime{
		cfg:     cfg,
		metrics: metrics.NewRecorder(nil),
		log:     log,
	}
	for _, opt := range opts {
		opt(rt)
	}

	client, err := brightdata.New(brightdata.Options{
		APIKey:          cfg.APIKey,
		BaseURL:         cfg.BaseURL,
		DatasetID:       cfg.DatasetID,
		SERPZone:        cfg.SERPZone,
		UnlockerZone:    cfg.UnlockerZone,
		Timeout:         cfg.RequestTimeout,
		UnlockerTimeout: cfg.UnlockerTimeout,
		Logger:          log,
		Observer:        rt.metrics,
	})
	if err != nil {
		return nil, fmt.Errorf("build client: %w", err)
	}
	rt.client = client

	if rt.fanout == nil {
		fanout, err := buildFanout(ctx, cfg, log)
		if err != nil {
			rt.Close()
			return nil, err
		}
		rt.fanout = fanout
	}
	rt.fanout.WithObserver(rt.metrics)

	return rt, nil
}

func buildFanout(ctx context.Context, cfg *config.Config, log logger.Logger) (*sinks.Fanout, error) {
	reg := sinks.StdoutRegistry()
	if cfg.SinksFile != "" {
		loaded, err := sinks.LoadRegistry(cfg.SinksFile)
		if err != nil {
			return nil, fmt.Errorf("load sinks registry: %w", err)
		}
		reg = loaded
	}

	enabled := reg.Enabled()
	if len(enabled) == 0 {
		return nil, fmt.Errorf("no sinks enabled")
	}
	built, err := sinks.BuildAll(ctx, sinks.DefaultRegistry(), enabled, log)
	if err != nil {
		return nil, fmt.Errorf("build sinks: %w", err)
	}

	summaries := make([]map[string]string, 0, len(enabled))
	for _, c := range enabled {
		summaries = append(summaries, map[string]string{"id": c.ID, "type": c.Type})
	}
	log.InfoObj("sinks registry loaded", "sinks_meta", map[string]any{
		"count": len(summaries),
		"sinks": summaries,
	})
	return sinks.NewFanout(built), nil
}

// Client exposes the underlying API client.
func (r *Runtime) Client() *brightdata.Client { return r.client }

// Metrics exposes the recorder every call reports to.
func (r *Runtime) Metrics() *metrics.Recorder { return r.metrics }

// Sinks exposes the fanout results are delivered to.
func (r *Runtime) Sinks() *sinks.Fanout { return r.fanout }

// snapshots opens the snapshot store on first use. Only scrape and check
// runs touch it, so other commands never take the bbolt file lock.
func (r *Runtime) snapshots() (storage.Store, error) {
	if r.store != nil {
		return r.store, nil
	}
	store, err := storage.NewStore(r.cfg.SnapshotStore, r.cfg.SnapshotDBPath, storage.Options{SnapshotTTL: r.cfg.SnapshotTTL})
	if err != nil {
		return nil, fmt.Errorf("init storage: %w", err)
	}
	r.log.InfoObj("storage initialized", "storage_config", map[string]any{
		"type":                 r.cfg.SnapshotStore,
		"path":                 r.cfg.SnapshotDBPath,
		"snapshot_ttl_seconds": int(r.cfg.SnapshotTTL.Seconds()),
	})
	r.store = store
	return store, nil
}

// Close releases the snapshot store when it was opened.
func (r *Runtime) Close() {
	if r == nil || r.store == nil {
		return
	}
	if err := r.store.Close(); err != nil {
		r.log.ErrorObj("storage close failed", "error", err)
	}
}

// deliver hands env to every sink. Delivery failures are reported, not fatal,
// unless no sink accepted the envelope.
func (r *Runtime) deliver(ctx context.Context, env sinks.Envelope) error {
	n, err := r.fanout.Deliver(ctx, env)
	if err == nil {
		return nil
	}
	r.log.WarnObj("sink delivery failed", "sink_error", map[string]any{
		"operation": env.Operation,
		"delivered": n,
		"error":     err.Error(),
	})
	if n == 0 {
		return fmt.Errorf("deliver result: %w", err)
	}
	return nil
}
