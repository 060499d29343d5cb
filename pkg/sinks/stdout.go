package sinks

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"
	"unicode/utf8"
)

// stdoutSink writes envelopes for a human at a terminal.
type stdoutSink struct {
	id       string
	pretty   bool
	maxChars int

	mu sync.Mutex
	w  io.Writer
}

func newStdoutSink(_ context.Context, cfg SinkConfig, _ Logger) (Sink, error) {
	s := &stdoutSink{id: cfg.ID, w: os.Stdout}
	if cfg.Stdout != nil {
		s.pretty = cfg.Stdout.Pretty
		s.maxChars = cfg.Stdout.MaxChars
	}
	return s, nil
}

func (s *stdoutSink) ID() string   { return s.id }
func (s *stdoutSink) Type() string { return TypeStdout }

func (s *stdoutSink) Deliver(_ context.Context, env Envelope) error {
	var buf bytes.Buffer

	if env.SnapshotID != "" {
		fmt.Fprintf(&buf, "Request queued. Snapshot ID: %s\n", env.SnapshotID)
		fmt.Fprintf(&buf, "Poll with: GET %s\n", env.ProgressURL)
	}

	switch {
	case len(env.Payload) > 0 && s.pretty:
		if err := json.Indent(&buf, env.Payload, "", "  "); err != nil {
			return fmt.Errorf("indent payload: %w", err)
		}
		buf.WriteByte('\n')
	case len(env.Payload) > 0:
		buf.Write(env.Payload)
		buf.WriteByte('\n')
	case env.Text != "":
		buf.WriteString(truncate(env.Text, s.maxChars))
		buf.WriteByte('\n')
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.w.Write(buf.Bytes()); err != nil {
		return fmt.Errorf("write stdout: %w", err)
	}
	return nil
}

// truncate cuts s to at most max bytes without splitting a rune.
func truncate(s string, max int) string {
	if max <= 0 || len(s) <= max {
		return s
	}
	for max > 0 && !utf8.RuneStart(s[max]) {
		max--
	}
	return s[:max]
}
