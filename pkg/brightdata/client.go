package brightdata

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/samvad-hq/brightdata-go/pkg/httpclient"
)

const (
	DefaultBaseURL         = "https://api.brightdata.com"
	DefaultTimeout         = 30 * time.Second
	DefaultUnlockerTimeout = 60 * time.Second

	OperationScrape   = "scrape"
	OperationProgress = "progress"
	OperationRequest  = "request"
	OperationUnlock   = "unlock"
	OperationProxy    = "proxy"
)

// Logger defines the logging surface the client relies on.
type Logger interface {
	InfoObj(msg, key string, obj interface{})
	DebugObj(msg, key string, obj interface{})
	WarnObj(msg, key string, obj interface{})
	ErrorObj(msg, key string, obj interface{})
}

// NopLogger discards everything.
type NopLogger struct{}

func (NopLogger) InfoObj(string, string, interface{})  {}
func (NopLogger) DebugObj(string, string, interface{}) {}
func (NopLogger) WarnObj(string, string, interface{})  {}
func (NopLogger) ErrorObj(string, string, interface{}) {}

func ensureLogger(log Logger) Logger {
	if log == nil {
		return NopLogger{}
	}
	return log
}

// Observer receives one callback per vendor call. outcome is "sync", "pending" or "error".
type Observer interface {
	ObserveCall(operation, outcome string, elapsed time.Duration)
}

// Options configures a Client.
type Options struct {
	APIKey       string
	BaseURL      string
	DatasetID    string
	SERPZone     string
	UnlockerZone string

	Timeout         time.Duration
	UnlockerTimeout time.Duration

	// HTTPClient and UnlockerHTTPClient default to resty clients using the timeouts above.
	HTTPClient         httpclient.Client
	UnlockerHTTPClient httpclient.Client

	Logger   Logger
	Observer Observer
}

// Client calls the Bright Data scraper, SERP and unlocker APIs.
type Client struct {
	apiKey       string
	baseURL      string
	datasetID    string
	serpZone     string
	unlockerZone string

	http         httpclient.Client
	unlockerHTTP httpclient.Client
	log          Logger
	observer     Observer
}

// New validates opts and builds a Client. No request is made.
func New(opts Options) (*Client, error) {
	apiKey := strings.TrimSpace(opts.APIKey)
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}

	baseURL := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	unlockerTimeout := opts.UnlockerTimeout
	if unlockerTimeout <= 0 {
		unlockerTimeout = DefaultUnlockerTimeout
	}

	hc := opts.HTTPClient
	if hc == nil {
		hc = httpclient.NewRestyClient(timeout)
	}
	uhc := opts.UnlockerHTTPClient
	if uhc == nil {
		uhc = httpclient.NewRestyClient(unlockerTimeout)
	}

	return &Client{
		apiKey:       apiKey,
		baseURL:      baseURL,
		datasetID:    strings.TrimSpace(opts.DatasetID),
		serpZone:     strings.TrimSpace(opts.SERPZone),
		unlockerZone: strings.TrimSpace(opts.UnlockerZone),
		http:         hc,
		unlockerHTTP: uhc,
		log:          ensureLogger(opts.Logger),
		observer:     opts.Observer,
	}, nil
}

// ProgressURL returns the polling URL for a snapshot id.
func (c *Client) ProgressURL(snapshotID string) string {
	return c.baseURL + "/datasets/v3/progress/" + snapshotID
}

func (c *Client) authHeaders() map[string]string {
	return map[string]string{
		"Authorization": "Bearer " + c.apiKey,
	}
}

// send performs exactly one request and maps the status to a Result or error.
func (c *Client) send(ctx context.Context, hc httpclient.Client, op string, req httpclient.Request, format Format) (*Result, error) {
	start := time.Now()
	c.log.DebugObj("sending vendor request", "vendor_request", map[string]any{
		"operation": op,
		"method":    req.Method,
		"url":       req.URL,
	})

	resp, err := hc.Do(ctx, req)
	if err != nil {
		c.observe(op, "error", start)
		return nil, &TransportError{Operation: op, URL: req.URL, Err: err}
	}

	res, err := classify(op, resp.StatusCode(), resp.Body(), format)
	if err != nil {
		c.observe(op, "error", start)
		return nil, err
	}
	c.observe(op, string(res.Outcome), start)
	return res, nil
}

func (c *Client) observe(op, outcome string, start time.Time) {
	if c.observer == nil {
		return
	}
	c.observer.ObserveCall(op, outcome, time.Since(start))
}

// classify maps an HTTP status onto the three call outcomes.
func classify(op string, status int, body []byte, format Format) (*Result, error) {
	switch status {
	case http.StatusOK:
		res := &Result{Outcome: OutcomeSync, StatusCode: status, Format: format, Raw: body}
		if format == FormatJSON {
			data, err := decodeJSON(body)
			if err != nil {
				return nil, fmt.Errorf("%s: decode response: %w", op, err)
			}
			res.Data = data
		}
		return res, nil
	case http.StatusAccepted:
		res := &Result{Outcome: OutcomePending, StatusCode: status, Format: format, Raw: body}
		if data, err := decodeJSON(body); err == nil {
			res.Data = data
		}
		return res, nil
	default:
		return nil, &APIError{Operation: op, StatusCode: status, Body: string(body)}
	}
}

func decodeJSON(body []byte) (any, error) {
	var data any
	if err := json.Unmarshal(body, &data); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return data, nil
}
