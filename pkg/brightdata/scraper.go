package brightdata

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/samvad-hq/brightdata-go/pkg/httpclient"
)

// Scrape collects structured data for urls from the configured dataset.
func (c *Client) Scrape(ctx context.Context, urls []string, format Format) (*Result, error) {
	return c.ScrapeDataset(ctx, c.datasetID, urls, format)
}

// ScrapeDataset collects structured data for urls from datasetID.
//
// A 200 carries the records. A 202 means the job runs asynchronously; the
// returned Result carries the snapshot id and its progress URL, and polling is
// left to the caller.
func (c *Client) ScrapeDataset(ctx context.Context, datasetID string, urls []string, format Format) (*Result, error) {
	datasetID = strings.TrimSpace(datasetID)
	if datasetID == "" {
		return nil, fmt.Errorf("%w: dataset id is empty", ErrInvalidRequest)
	}
	if !format.valid() {
		return nil, fmt.Errorf("%w: unsupported format %q", ErrInvalidRequest, format)
	}

	inputs := make([]scrapeInput, 0, len(urls))
	for _, u := range urls {
		if u = strings.TrimSpace(u); u != "" {
			inputs = append(inputs, scrapeInput{URL: u})
		}
	}
	if len(inputs) == 0 {
		return nil, fmt.Errorf("%w: no urls to scrape", ErrInvalidRequest)
	}

	res, err := c.send(ctx, c.http, OperationScrape, httpclient.Request{
		Method:  http.MethodPost,
		URL:     c.baseURL + "/datasets/v3/scrape",
		Headers: c.authHeaders(),
		Query: map[string]string{
			"dataset_id": datasetID,
			"format":     string(format),
		},
		Body: inputs,
	}, format)
	if err != nil {
		return nil, err
	}

	if res.Pending() {
		snap, err := c.snapshotFrom(res.Raw)
		if err != nil {
			return nil, err
		}
		res.Snapshot = snap
		c.log.InfoObj("request queued", "snapshot", snap)
	}
	return res, nil
}

func (c *Client) snapshotFrom(body []byte) (*Snapshot, error) {
	var payload struct {
		SnapshotID string `json:"snapshot_id"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("%s: decode snapshot: %w: %v", OperationScrape, ErrMalformedResponse, err)
	}
	if payload.SnapshotID == "" {
		return nil, fmt.Errorf("%s: decode snapshot: %w: snapshot_id missing", OperationScrape, ErrMalformedResponse)
	}
	return &Snapshot{
		ID:          payload.SnapshotID,
		ProgressURL: c.ProgressURL(url.PathEscape(payload.SnapshotID)),
	}, nil
}

// Progress fetches the state of a snapshot once. It never polls.
func (c *Client) Progress(ctx context.Context, snapshotID string) (Progress, error) {
	snapshotID = strings.TrimSpace(snapshotID)
	if snapshotID == "" {
		return Progress{}, fmt.Errorf("%w: snapshot id is empty", ErrInvalidRequest)
	}

	res, err := c.send(ctx, c.http, OperationProgress, httpclient.Request{
		Method:  http.MethodGet,
		URL:     c.ProgressURL(url.PathEscape(snapshotID)),
		Headers: c.authHeaders(),
	}, FormatJSON)
	if err != nil {
		return Progress{}, err
	}

	var p Progress
	if err := res.Decode(&p); err != nil {
		return Progress{}, fmt.Errorf("%s: %w", OperationProgress, err)
	}
	if p.SnapshotID == "" {
		p.SnapshotID = snapshotID
	}
	return p, nil
}
