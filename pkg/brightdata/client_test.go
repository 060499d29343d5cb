package brightdata

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/samvad-hq/brightdata-go/pkg/httpclient"
)

// stubResponse implements httpclient.Response.
type stubResponse struct {
	body   []byte
	status int
}

func (s stubResponse) Body() []byte         { return s.body }
func (s stubResponse) StatusCode() int      { return s.status }
func (s stubResponse) Header(string) string { return "" }

// recordingHTTP records requests and replies with a canned response.
type recordingHTTP struct {
	mu    sync.Mutex
	calls []httpclient.Request
	resp  httpclient.Response
	err   error
}

func (r *recordingHTTP) Get(ctx context.Context, url string, headers map[string]string) (httpclient.Response, error) {
	return r.Do(ctx, httpclient.Request{Method: http.MethodGet, URL: url, Headers: headers})
}

func (r *recordingHTTP) Do(_ context.Context, req httpclient.Request) (httpclient.Response, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, req)
	if r.err != nil {
		return nil, r.err
	}
	return r.resp, nil
}

// recordingLogger keeps info messages.
type recordingLogger struct {
	mu   sync.Mutex
	info []string
}

func (l *recordingLogger) InfoObj(msg, _ string, _ interface{}) {
	l.mu.Lock()
	l.info = append(l.info, msg)
	l.mu.Unlock()
}
func (l *recordingLogger) DebugObj(string, string, interface{}) {}
func (l *recordingLogger) WarnObj(string, string, interface{})  {}
func (l *recordingLogger) ErrorObj(string, string, interface{}) {}

type recordingObserver struct {
	mu    sync.Mutex
	calls []string
}

func (o *recordingObserver) ObserveCall(op, outcome string, _ time.Duration) {
	o.mu.Lock()
	o.calls = append(o.calls, op+":"+outcome)
	o.mu.Unlock()
}

func newTestClient(t *testing.T, baseURL string, log Logger, obs Observer) *Client {
	t.Helper()
	c, err := New(Options{
		APIKey:       "test-key",
		BaseURL:      baseURL,
		DatasetID:    "gd_test",
		SERPZone:     "serp_zone",
		UnlockerZone: "unlock_zone",
		Timeout:      2 * time.Second,
		Logger:       log,
		Observer:     obs,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return c
}

func TestNewRequiresAPIKey(t *testing.T) {
	hc := &recordingHTTP{}
	if _, err := New(Options{APIKey: "  ", HTTPClient: hc}); !errors.Is(err, ErrMissingAPIKey) {
		t.Fatalf("expected ErrMissingAPIKey, got %v", err)
	}
	if len(hc.calls) != 0 {
		t.Fatalf("expected no network calls, got %d", len(hc.calls))
	}
}

func TestScrapeSyncReturnsDecodedJSON(t *testing.T) {
	const body = `[{"title":"Echo Dot","price":49.99,"tags":["speaker"]}]`

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/datasets/v3/scrape" {
			t.Errorf("unexpected %s %s", r.Method, r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("authorization = %q", got)
		}
		q := r.URL.Query()
		if q.Get("dataset_id") != "gd_test" || q.Get("format") != "json" {
			t.Errorf("unexpected query %v", q)
		}
		raw, _ := io.ReadAll(r.Body)
		var inputs []map[string]string
		if err := json.Unmarshal(raw, &inputs); err != nil {
			t.Errorf("decode body: %v", err)
		}
		if len(inputs) != 2 || inputs[0]["url"] != "https://a.example/1" || inputs[1]["url"] != "https://a.example/2" {
			t.Errorf("unexpected inputs %s", raw)
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(body))
	}))
	defer srv.Close()

	obs := &recordingObserver{}
	client := newTestClient(t, srv.URL, nil, obs)
	res, err := client.Scrape(context.Background(), []string{"https://a.example/1", " ", "https://a.example/2"}, FormatJSON)
	if err != nil {
		t.Fatalf("Scrape: %v", err)
	}
	if res.Outcome != OutcomeSync || res.StatusCode != http.StatusOK {
		t.Fatalf("unexpected outcome %s status %d", res.Outcome, res.StatusCode)
	}

	var want any
	if err := json.Unmarshal([]byte(body), &want); err != nil {
		t.Fatalf("decode want: %v", err)
	}
	if !reflect.DeepEqual(res.Data, want) {
		t.Fatalf("data = %#v, want %#v", res.Data, want)
	}
	if res.Snapshot != nil {
		t.Fatalf("sync result should not carry a snapshot")
	}
	if len(obs.calls) != 1 || obs.calls[0] != "scrape:sync" {
		t.Fatalf("observer calls = %v", obs.calls)
	}
}

func TestScrapeAcceptedReturnsSnapshot(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusAccepted)
		_, _ = w.Write([]byte(`{"snapshot_id":"s_m1x2y3"}`))
	}))
	defer srv.Close()

	log := &recordingLogger{}
	client := newTestClient(t, srv.URL, log, nil)
	res, err := client.Scrape(context.Background(), []string{"https://a.example"}, FormatJSON)
	if err != nil {
		t.Fatalf("Scrape: %v", err)
	}
	if !res.Pending() {
		t.Fatalf("expected pending outcome, got %s", res.Outcome)
	}
	if res.Snapshot == nil || res.Snapshot.ID != "s_m1x2y3" {
		t.Fatalf("unexpected snapshot %#v", res.Snapshot)
	}
	if want := srv.URL + "/datasets/v3/progress/s_m1x2y3"; res.Snapshot.ProgressURL != want {
		t.Fatalf("progress url = %q, want %q", res.Snapshot.ProgressURL, want)
	}
	if len(log.info) != 1 {
		t.Fatalf("expected one async notice, got %v", log.info)
	}
}

func TestScrapeAcceptedWithoutSnapshotIsMalformed(t *testing.T) {
	hc := &recordingHTTP{resp: stubResponse{status: http.StatusAccepted, body: []byte(`{}`)}}
	client, err := New(Options{APIKey: "k", DatasetID: "d", HTTPClient: hc})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := client.Scrape(context.Background(), []string{"https://a"}, FormatJSON); !errors.Is(err, ErrMalformedResponse) {
		t.Fatalf("expected ErrMalformedResponse, got %v", err)
	}
}

func TestScrapeErrorStatusSurfacesAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":"invalid token"}`))
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL, nil, nil)
	_, err := client.Scrape(context.Background(), []string{"https://a.example"}, FormatJSON)

	apiErr, ok := AsAPIError(err)
	if !ok {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.StatusCode != http.StatusUnauthorized || apiErr.Body != `{"error":"invalid token"}` {
		t.Fatalf("unexpected api error %+v", apiErr)
	}
}

func TestScrapeRejectsInvalidInputWithoutCalling(t *testing.T) {
	hc := &recordingHTTP{}
	client, err := New(Options{APIKey: "k", DatasetID: "d", HTTPClient: hc})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if _, err := client.Scrape(context.Background(), nil, FormatJSON); !errors.Is(err, ErrInvalidRequest) {
		t.Fatalf("expected ErrInvalidRequest for empty urls, got %v", err)
	}
	if _, err := client.Scrape(context.Background(), []string{"https://a"}, Format("xml")); !errors.Is(err, ErrInvalidRequest) {
		t.Fatalf("expected ErrInvalidRequest for bad format, got %v", err)
	}
	if len(hc.calls) != 0 {
		t.Fatalf("expected no calls, got %d", len(hc.calls))
	}
}

func TestTransportFailureIsWrapped(t *testing.T) {
	cause := errors.New("dial tcp: connection refused")
	hc := &recordingHTTP{err: cause}
	client, err := New(Options{APIKey: "k", DatasetID: "d", HTTPClient: hc})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	_, err = client.Scrape(context.Background(), []string{"https://a"}, FormatJSON)
	var tErr *TransportError
	if !errors.As(err, &tErr) {
		t.Fatalf("expected TransportError, got %v", err)
	}
	if !errors.Is(err, cause) {
		t.Fatalf("transport error should unwrap to cause")
	}
	if len(hc.calls) != 1 {
		t.Fatalf("expected exactly one attempt, got %d", len(hc.calls))
	}
}

func TestSyncJSONWithInvalidBodyIsMalformed(t *testing.T) {
	hc := &recordingHTTP{resp: stubResponse{status: http.StatusOK, body: []byte(`<html>`)}}
	client, err := New(Options{APIKey: "k", SERPZone: "z", HTTPClient: hc})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := client.Search(context.Background(), "go", SearchOptions{}); !errors.Is(err, ErrMalformedResponse) {
		t.Fatalf("expected ErrMalformedResponse, got %v", err)
	}
}

func TestProgressFetchesOnce(t *testing.T) {
	var hits int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		if r.Method != http.MethodGet || r.URL.Path != "/datasets/v3/progress/s_1" {
			t.Errorf("unexpected %s %s", r.Method, r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer test-key" {
			t.Errorf("missing bearer header")
		}
		_, _ = w.Write([]byte(`{"snapshot_id":"s_1","dataset_id":"gd_test","status":"running"}`))
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL, nil, nil)
	p, err := client.Progress(context.Background(), "s_1")
	if err != nil {
		t.Fatalf("Progress: %v", err)
	}
	if p.Status != StatusRunning || p.Done() {
		t.Fatalf("unexpected progress %+v", p)
	}
	if hits != 1 {
		t.Fatalf("expected one request, got %d", hits)
	}
}

func TestParseFormat(t *testing.T) {
	if f, err := ParseFormat(""); err != nil || f != FormatJSON {
		t.Fatalf("empty format: %v %v", f, err)
	}
	if f, err := ParseFormat("RAW"); err != nil || f != FormatRaw {
		t.Fatalf("raw format: %v %v", f, err)
	}
	if _, err := ParseFormat("csv"); !errors.Is(err, ErrInvalidRequest) {
		t.Fatalf("expected ErrInvalidRequest, got %v", err)
	}
}
