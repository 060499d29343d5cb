package brightdata

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/samvad-hq/brightdata-go/pkg/httpclient"
)

// Engine names a search engine reachable through the SERP zone.
type Engine string

const (
	EngineGoogle Engine = "google"
	EngineBing   Engine = "bing"

	defaultNumResults = 10
)

// SearchOptions tunes Search. Zero values fall back to google, 10 results, json.
type SearchOptions struct {
	Engine     Engine
	NumResults int
	Format     Format
	// Zone overrides the client's SERP zone.
	Zone string
}

// Request fetches target through zone via the generic /request endpoint.
func (c *Client) Request(ctx context.Context, zone, target string, format Format) (*Result, error) {
	return c.request(ctx, c.http, OperationRequest, zone, target, format)
}

// Search runs query through the SERP zone.
func (c *Client) Search(ctx context.Context, query string, opts SearchOptions) (*Result, error) {
	format := opts.Format
	if format == "" {
		format = FormatJSON
	}
	zone := strings.TrimSpace(opts.Zone)
	if zone == "" {
		zone = c.serpZone
	}

	searchURL, err := BuildSearchURL(opts.Engine, query, opts.NumResults)
	if err != nil {
		return nil, err
	}
	return c.request(ctx, c.http, OperationRequest, zone, searchURL, format)
}

// Unlock returns the raw HTML of target fetched through the unlocker zone.
func (c *Client) Unlock(ctx context.Context, target string) (*Result, error) {
	return c.request(ctx, c.unlockerHTTP, OperationUnlock, c.unlockerZone, target, FormatRaw)
}

func (c *Client) request(ctx context.Context, hc httpclient.Client, op, zone, target string, format Format) (*Result, error) {
	zone = strings.TrimSpace(zone)
	if zone == "" {
		return nil, fmt.Errorf("%w: zone is empty", ErrInvalidRequest)
	}
	if err := validateTarget(target); err != nil {
		return nil, err
	}
	if !format.valid() {
		return nil, fmt.Errorf("%w: unsupported format %q", ErrInvalidRequest, format)
	}

	return c.send(ctx, hc, op, httpclient.Request{
		Method:  http.MethodPost,
		URL:     c.baseURL + "/request",
		Headers: c.authHeaders(),
		Body: requestBody{
			Zone:   zone,
			URL:    strings.TrimSpace(target),
			Format: format,
		},
	}, format)
}

// BuildSearchURL renders the engine URL for query.
func BuildSearchURL(engine Engine, query string, num int) (string, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return "", fmt.Errorf("%w: query is empty", ErrInvalidRequest)
	}
	if num <= 0 {
		num = defaultNumResults
	}

	switch Engine(strings.ToLower(string(engine))) {
	case "", EngineGoogle:
		return "https://www.google.com/search?q=" + url.QueryEscape(query) + "&num=" + strconv.Itoa(num), nil
	case EngineBing:
		return "https://www.bing.com/search?q=" + url.QueryEscape(query) + "&count=" + strconv.Itoa(num), nil
	default:
		return "", fmt.Errorf("%w: unsupported engine %q", ErrInvalidRequest, engine)
	}
}

func validateTarget(target string) error {
	target = strings.TrimSpace(target)
	if target == "" {
		return fmt.Errorf("%w: url is empty", ErrInvalidRequest)
	}
	u, err := url.Parse(target)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return fmt.Errorf("%w: invalid url %q", ErrInvalidRequest, target)
	}
	return nil
}
