package sinks

import (
	"encoding/json"
	"time"

	"github.com/samvad-hq/brightdata-go/pkg/brightdata"
)

// Envelope is the payload delivered downstream for one vendor call.
type Envelope struct {
	Operation   string          `json:"operation"`
	Target      string          `json:"target"`
	Outcome     string          `json:"outcome"`
	StatusCode  int             `json:"status_code"`
	SnapshotID  string          `json:"snapshot_id,omitempty"`
	ProgressURL string          `json:"progress_url,omitempty"`
	Payload     json.RawMessage `json:"payload,omitempty"`
	Text        string          `json:"text,omitempty"`
	CollectedAt time.Time       `json:"collected_at"`
}

// NewEnvelope wraps res. JSON bodies travel as payload, everything else as text.
func NewEnvelope(operation, target string, res *brightdata.Result) Envelope {
	env := Envelope{
		Operation:   operation,
		Target:      target,
		CollectedAt: time.Now().UTC(),
	}
	if res == nil {
		return env
	}

	env.Outcome = string(res.Outcome)
	env.StatusCode = res.StatusCode
	if res.Snapshot != nil {
		env.SnapshotID = res.Snapshot.ID
		env.ProgressURL = res.Snapshot.ProgressURL
	}
	if json.Valid(res.Raw) && (res.Format == brightdata.FormatJSON || res.Pending()) {
		env.Payload = json.RawMessage(res.Raw)
	} else {
		env.Text = string(res.Raw)
	}
	return env
}
