package app

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/samvad-hq/brightdata-go/internal/storage"
	"github.com/samvad-hq/brightdata-go/pkg/brightdata"
	"github.com/samvad-hq/brightdata-go/pkg/extract"
	"github.com/samvad-hq/brightdata-go/pkg/sinks"
)

// ScrapeRequest describes one scraper run.
type ScrapeRequest struct {
	// DatasetID overrides the configured dataset when set.
	DatasetID string
	URLs      []string
	Format    brightdata.Format
}

// Scrape submits the URLs and delivers the outcome. Pending snapshots are
// recorded so a later CheckSnapshots can look at them.
func (r *Runtime) Scrape(ctx context.Context, req ScrapeRequest) (*brightdata.Result, error) {
	datasetID := req.DatasetID
	if datasetID == "" {
		datasetID = r.cfg.DatasetID
	}

	res, err := r.client.ScrapeDataset(ctx, datasetID, req.URLs, req.Format)
	if err != nil {
		return nil, err
	}

	if res.Snapshot != nil {
		if err := r.recordSnapshot(storage.SnapshotRecord{
			ID:          res.Snapshot.ID,
			DatasetID:   datasetID,
			ProgressURL: res.Snapshot.ProgressURL,
			SubmittedAt: time.Now().UTC(),
		}); err != nil {
			r.log.WarnObj("record snapshot failed", "snapshot_error", map[string]any{
				"snapshot_id": res.Snapshot.ID,
				"error":       err.Error(),
			})
		}
	}

	target := ""
	if len(req.URLs) == 1 {
		target = req.URLs[0]
	}
	if err := r.deliver(ctx, sinks.NewEnvelope(brightdata.OperationScrape, target, res)); err != nil {
		return res, err
	}
	return res, nil
}

// CheckSnapshots calls Progress once for every recorded snapshot and forgets
// the ones that reached a terminal status. It never waits for completion.
func (r *Runtime) CheckSnapshots(ctx context.Context) ([]brightdata.Progress, error) {
	store, err := r.snapshots()
	if err != nil {
		return nil, err
	}
	records, err := store.PendingSnapshots()
	if err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}
	if len(records) == 0 {
		r.log.InfoObj("no pending snapshots", "snapshot_meta", map[string]any{"count": 0})
		return nil, nil
	}

	out := make([]brightdata.Progress, 0, len(records))
	for _, rec := range records {
		progress, err := r.client.Progress(ctx, rec.ID)
		if err != nil {
			return out, fmt.Errorf("check snapshot %s: %w", rec.ID, err)
		}
		out = append(out, progress)

		if progress.Done() {
			if err := store.ForgetSnapshot(rec.ID); err != nil {
				r.log.WarnObj("forget snapshot failed", "snapshot_error", map[string]any{
					"snapshot_id": rec.ID,
					"error":       err.Error(),
				})
			}
		}

		env, err := progressEnvelope(rec, progress)
		if err != nil {
			return out, err
		}
		if err := r.deliver(ctx, env); err != nil {
			return out, err
		}
	}
	return out, nil
}

func (r *Runtime) recordSnapshot(rec storage.SnapshotRecord) error {
	store, err := r.snapshots()
	if err != nil {
		return err
	}
	return store.RecordSnapshot(rec)
}

func progressEnvelope(rec storage.SnapshotRecord, progress brightdata.Progress) (sinks.Envelope, error) {
	payload, err := json.Marshal(progress)
	if err != nil {
		return sinks.Envelope{}, fmt.Errorf("marshal progress: %w", err)
	}
	return sinks.Envelope{
		Operation:   brightdata.OperationProgress,
		Outcome:     string(brightdata.OutcomeSync),
		StatusCode:  200,
		SnapshotID:  rec.ID,
		Payload:     payload,
		CollectedAt: time.Now().UTC(),
	}, nil
}

// Search runs a SERP query and delivers the result.
func (r *Runtime) Search(ctx context.Context, query string, opts brightdata.SearchOptions) (*brightdata.Result, error) {
	res, err := r.client.Search(ctx, query, opts)
	if err != nil {
		return nil, err
	}
	if err := r.deliver(ctx, sinks.NewEnvelope(brightdata.OperationRequest, query, res)); err != nil {
		return res, err
	}
	return res, nil
}

// FetchOptions controls how Fetch retrieves and reports a page.
type FetchOptions struct {
	// ViaProxy routes through the proxy endpoint instead of the unlocker API.
	ViaProxy bool
	// Summary delivers a page summary instead of the raw body.
	Summary  bool
	MaxLinks int
}

// Fetch retrieves target through the unlocker API or the proxy endpoint.
func (r *Runtime) Fetch(ctx context.Context, target string, opts FetchOptions) (*brightdata.Result, error) {
	op := brightdata.OperationUnlock
	var (
		res *brightdata.Result
		err error
	)
	if opts.ViaProxy {
		op = brightdata.OperationProxy
		var proxy *brightdata.ProxyClient
		proxy, err = r.proxyClient()
		if err != nil {
			return nil, err
		}
		res, err = proxy.Fetch(ctx, target)
	} else {
		res, err = r.client.Unlock(ctx, target)
	}
	if err != nil {
		return nil, err
	}

	env := sinks.NewEnvelope(op, target, res)
	if opts.Summary {
		summary, err := extract.Summarize(res.Raw, target, opts.MaxLinks)
		if err != nil {
			return res, fmt.Errorf("summarize page: %w", err)
		}
		payload, err := json.Marshal(summary)
		if err != nil {
			return res, fmt.Errorf("marshal summary: %w", err)
		}
		env.Payload = payload
		env.Text = ""
	}
	if err := r.deliver(ctx, env); err != nil {
		return res, err
	}
	return res, nil
}

// Unlock fetches target through the unlocker API without delivering it.
// It lets the runtime back the HTTP scrape endpoint.
func (r *Runtime) Unlock(ctx context.Context, target string) (*brightdata.Result, error) {
	return r.client.Unlock(ctx, target)
}

func (r *Runtime) proxyClient() (*brightdata.ProxyClient, error) {
	if r.proxy != nil {
		return r.proxy, nil
	}
	if !r.cfg.HasProxyCredentials() {
		return nil, brightdata.ErrMissingProxyCredential
	}
	proxy, err := brightdata.NewProxyClient(brightdata.ProxyCredential{
		CustomerID: r.cfg.CustomerID,
		Zone:       r.cfg.ProxyZone,
		Password:   r.cfg.ProxyPassword,
		Host:       r.cfg.ProxyHost,
	}, r.cfg.UnlockerTimeout, r.log, r.metrics)
	if err != nil {
		return nil, err
	}
	r.proxy = proxy
	return proxy, nil
}
