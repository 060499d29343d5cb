package brightdata

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/samvad-hq/brightdata-go/pkg/httpclient"
)

// DefaultProxyHost is the super proxy endpoint for zone credentials.
const DefaultProxyHost = "brd.superproxy.io:33335"

// ProxyCredential holds zone credentials for the proxy interface.
type ProxyCredential struct {
	CustomerID string
	Zone       string
	Password   string
	Host       string
}

// Username is the proxy user derived from customer id and zone.
func (p ProxyCredential) Username() string {
	return "brd-customer-" + p.CustomerID + "-zone-" + p.Zone
}

// URL renders http://brd-customer-{id}-zone-{zone}:{password}@{host}.
func (p ProxyCredential) URL() string {
	host := strings.TrimSpace(p.Host)
	if host == "" {
		host = DefaultProxyHost
	}
	u := &url.URL{
		Scheme: "http",
		User:   url.UserPassword(p.Username(), p.Password),
		Host:   host,
	}
	return u.String()
}

func (p ProxyCredential) validate() error {
	if strings.TrimSpace(p.CustomerID) == "" || strings.TrimSpace(p.Zone) == "" || p.Password == "" {
		return ErrMissingProxyCredential
	}
	return nil
}

// ProxyClient fetches pages through the proxy endpoint. Credentials travel in
// the proxy URL; no bearer token is ever attached.
type ProxyClient struct {
	http     httpclient.Client
	log      Logger
	observer Observer
}

// NewProxyClient builds a ProxyClient routing through cred. timeout defaults to 60s.
func NewProxyClient(cred ProxyCredential, timeout time.Duration, log Logger, observer Observer) (*ProxyClient, error) {
	if err := cred.validate(); err != nil {
		return nil, err
	}
	if timeout <= 0 {
		timeout = DefaultUnlockerTimeout
	}
	hc, err := httpclient.NewRestyProxyClient(timeout, cred.URL())
	if err != nil {
		return nil, fmt.Errorf("build proxy transport: %w", err)
	}
	return newProxyClientWithHTTP(hc, log, observer), nil
}

func newProxyClientWithHTTP(hc httpclient.Client, log Logger, observer Observer) *ProxyClient {
	return &ProxyClient{http: hc, log: ensureLogger(log), observer: observer}
}

// Fetch GETs target through the proxy and returns the raw body.
func (p *ProxyClient) Fetch(ctx context.Context, target string) (*Result, error) {
	if err := validateTarget(target); err != nil {
		return nil, err
	}
	target = strings.TrimSpace(target)

	start := time.Now()
	p.log.DebugObj("sending proxied request", "vendor_request", map[string]any{
		"operation": OperationProxy,
		"url":       target,
	})

	resp, err := p.http.Get(ctx, target, nil)
	if err != nil {
		p.observe("error", start)
		return nil, &TransportError{Operation: OperationProxy, URL: target, Err: err}
	}

	status := resp.StatusCode()
	if status < http.StatusOK || status >= http.StatusMultipleChoices {
		p.observe("error", start)
		return nil, &APIError{Operation: OperationProxy, StatusCode: status, Body: string(resp.Body())}
	}
	p.observe(string(OutcomeSync), start)
	return &Result{Outcome: OutcomeSync, StatusCode: status, Format: FormatRaw, Raw: resp.Body()}, nil
}

func (p *ProxyClient) observe(outcome string, start time.Time) {
	if p.observer == nil {
		return
	}
	p.observer.ObserveCall(OperationProxy, outcome, time.Since(start))
}
