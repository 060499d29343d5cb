package brightdata

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Format selects how the vendor renders a response body.
type Format string

const (
	FormatJSON Format = "json"
	FormatRaw  Format = "raw"
)

// ParseFormat validates a user supplied format, defaulting to json when empty.
func ParseFormat(raw string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(raw))) {
	case "", FormatJSON:
		return FormatJSON, nil
	case FormatRaw:
		return FormatRaw, nil
	default:
		return "", fmt.Errorf("%w: unsupported format %q", ErrInvalidRequest, raw)
	}
}

func (f Format) valid() bool { return f == FormatJSON || f == FormatRaw }

// Outcome tags a successful call.
type Outcome string

const (
	// OutcomeSync means the vendor answered with the payload (HTTP 200).
	OutcomeSync Outcome = "sync"
	// OutcomePending means the work was queued (HTTP 202).
	OutcomePending Outcome = "pending"
)

// Snapshot identifies an asynchronously processing scrape job.
type Snapshot struct {
	ID          string `json:"snapshot_id"`
	ProgressURL string `json:"progress_url"`
}

// Result is the outcome of a single vendor call.
type Result struct {
	Outcome    Outcome
	StatusCode int
	Format     Format
	// Data holds the decoded JSON body; nil for raw results.
	Data any
	// Raw is the response body exactly as received.
	Raw      []byte
	Snapshot *Snapshot
}

// Text returns the body as a string.
func (r *Result) Text() string {
	if r == nil {
		return ""
	}
	return string(r.Raw)
}

// Pending reports whether the call was accepted for asynchronous processing.
func (r *Result) Pending() bool {
	return r != nil && r.Outcome == OutcomePending
}

// Decode unmarshals the raw body into v.
func (r *Result) Decode(v any) error {
	if r == nil || len(r.Raw) == 0 {
		return fmt.Errorf("%w: empty body", ErrMalformedResponse)
	}
	if err := json.Unmarshal(r.Raw, v); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return nil
}

// Progress status values reported by the dataset progress endpoint.
const (
	StatusRunning = "running"
	StatusReady   = "ready"
	StatusFailed  = "failed"
)

// Progress is the state of a snapshot as reported by the vendor.
type Progress struct {
	SnapshotID string `json:"snapshot_id"`
	DatasetID  string `json:"dataset_id"`
	Status     string `json:"status"`
	Records    int    `json:"records,omitempty"`
	Errors     int    `json:"errors,omitempty"`
}

// Done reports whether the snapshot reached a terminal state.
func (p Progress) Done() bool {
	return p.Status == StatusReady || p.Status == StatusFailed
}

type scrapeInput struct {
	URL string `json:"url"`
}

type requestBody struct {
	Zone   string `json:"zone"`
	URL    string `json:"url"`
	Format Format `json:"format"`
}
