package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
	"unicode/utf16"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/samvad-hq/brightdata-go/internal/logger"
	"github.com/samvad-hq/brightdata-go/pkg/brightdata"
	"github.com/samvad-hq/brightdata-go/pkg/sinks"
)

// RequestIDHeader carries the per-request correlation id.
const RequestIDHeader = "X-Request-ID"

type ctxKey struct{}

// Server is the HTTP surface in front of the unlocker.
type Server struct {
	cfg    Config
	router chi.Router
	log    logger.Logger
}

// New builds a Server with its routes mounted.
func New(cfg Config) (*Server, error) {
	if cfg.Unlocker == nil {
		return nil, errors.New("server: unlocker must not be nil")
	}
	log := cfg.Logger
	if log == nil {
		log = logger.NopLogger{}
	}

	s := &Server{
		cfg:    cfg,
		router: chi.NewRouter(),
		log:    log,
	}
	s.routes()
	return s, nil
}

func (s *Server) routes() {
	r := s.router

	r.Use(s.requestIDMiddleware)

	r.Get("/healthz", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", s.cfg.Metrics.Handler())
	r.Post("/api/scrape", s.handleScrape)
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// HTTPServer creates an *http.Server ready to ListenAndServe.
func (s *Server) HTTPServer() *http.Server {
	return &http.Server{
		Addr:              s.cfg.ListenAddr,
		Handler:           s,
		ReadHeaderTimeout: 15 * time.Second,
	}
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := s.HTTPServer()
	errCh := make(chan error, 1)
	go func() {
		s.log.InfoObj("server listening", "server_meta", map[string]any{"addr": srv.Addr})
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("listen: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	s.log.InfoObj("server stopped", "server_meta", map[string]any{"addr": srv.Addr})
	return nil
}

func (s *Server) requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, id)

		s.log.DebugObj("http_request", "request", map[string]any{
			"id":     id,
			"method": r.Method,
			"path":   r.URL.Path,
		})
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKey{}, id)))
	})
}

// RequestID returns the id assigned to the request carried by ctx.
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(ctxKey{}).(string)
	return id
}

// --- JSON helpers ---

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// --- HTTP handlers ---

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type scrapeResponse struct {
	HTML   string `json:"html"`
	URL    string `json:"url"`
	Length int    `json:"length"`
}

func (s *Server) handleScrape(w http.ResponseWriter, r *http.Request) {
	var body struct {
		URL any `json:"url"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	target, _ := body.URL.(string)
	target = strings.TrimSpace(target)
	if target == "" {
		writeError(w, http.StatusBadRequest, "URL is required")
		return
	}

	res, err := s.cfg.Unlocker.Unlock(r.Context(), target)
	if err != nil {
		s.log.WarnObj("scrape failed", "scrape_error", map[string]any{
			"request_id": RequestID(r.Context()),
			"url":        target,
			"error":      err.Error(),
		})
		if apiErr, ok := brightdata.AsAPIError(err); ok {
			writeError(w, apiErr.StatusCode, fmt.Sprintf("Bright Data error: %d - %s", apiErr.StatusCode, apiErr.Body))
			return
		}
		if errors.Is(err, brightdata.ErrInvalidRequest) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	html := res.Text()
	s.deliver(r.Context(), target, res)
	writeJSON(w, http.StatusOK, scrapeResponse{
		HTML:   html,
		URL:    target,
		Length: utf16Len(html),
	})
}

// utf16Len counts UTF-16 code units, the unit browsers report for string length.
func utf16Len(s string) int {
	n := 0
	for _, r := range s {
		n += utf16.RuneLen(r)
	}
	return n
}

func (s *Server) deliver(ctx context.Context, target string, res *brightdata.Result) {
	if s.cfg.Sinks.Size() == 0 {
		return
	}
	if _, err := s.cfg.Sinks.Deliver(ctx, sinks.NewEnvelope(brightdata.OperationUnlock, target, res)); err != nil {
		s.log.WarnObj("sink delivery failed", "sink_error", map[string]any{
			"request_id": RequestID(ctx),
			"error":      err.Error(),
		})
	}
}
