package sinks

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/samvad-hq/brightdata-go/pkg/httpclient"
)

// httpSink posts envelopes as JSON to a webhook.
type httpSink struct {
	id      string
	method  string
	url     string
	headers map[string]string
	client  httpclient.Client
	log     Logger
}

func newHTTPSink(_ context.Context, cfg SinkConfig, log Logger) (Sink, error) {
	if cfg.HTTP == nil {
		return nil, fmt.Errorf("sink %q missing http configuration", cfg.ID)
	}
	return &httpSink{
		id:      cfg.ID,
		method:  cfg.HTTP.Method,
		url:     cfg.HTTP.URL,
		headers: cfg.HTTP.Headers,
		client:  httpclient.NewRestyClient(time.Duration(cfg.HTTP.TimeoutSeconds) * time.Second),
		log:     ensureLogger(log),
	}, nil
}

func (h *httpSink) ID() string   { return h.id }
func (h *httpSink) Type() string { return TypeHTTP }

func (h *httpSink) Deliver(ctx context.Context, env Envelope) error {
	resp, err := h.client.Do(ctx, httpclient.Request{
		Method:  h.method,
		URL:     h.url,
		Headers: h.headers,
		Body:    env,
	})
	if err != nil {
		return fmt.Errorf("post envelope: %w", err)
	}
	if status := resp.StatusCode(); status < http.StatusOK || status >= http.StatusMultipleChoices {
		return fmt.Errorf("webhook answered %d: %s", status, snippet(resp.Body()))
	}
	h.log.DebugObj("http sink delivered envelope", "sink_http_delivery", map[string]any{
		"sink_id":   h.id,
		"operation": env.Operation,
		"status":    resp.StatusCode(),
	})
	return nil
}

func snippet(body []byte) string {
	const max = 512
	if len(body) > max {
		body = body[:max]
	}
	return strings.TrimSpace(string(body))
}
