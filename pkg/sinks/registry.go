package sinks

import (
	"context"
	"fmt"
)

// Builder creates a Sink from a config entry.
type Builder func(ctx context.Context, cfg SinkConfig, log Logger) (Sink, error)

// Registry maps sink types to builders.
type Registry map[string]Builder

// DefaultRegistry knows every sink type shipped with the package.
func DefaultRegistry() Registry {
	return Registry{
		TypeStdout: newStdoutSink,
		TypeHTTP:   newHTTPSink,
		TypeSQS:    newSQSSink,
		TypeSNS:    newSNSSink,
		TypePubSub: newPubSubSink,
	}
}

// SinkFor builds the sink described by cfg.
func (r Registry) SinkFor(ctx context.Context, cfg SinkConfig, log Logger) (Sink, error) {
	build, ok := r[cfg.Type]
	if !ok {
		return nil, fmt.Errorf("no sink registered for type %q", cfg.Type)
	}
	return build(ctx, cfg, log)
}

// BuildAll builds one sink per config, failing on the first error.
func BuildAll(ctx context.Context, reg Registry, cfgs []SinkConfig, log Logger) ([]Sink, error) {
	out := make([]Sink, 0, len(cfgs))
	for _, cfg := range cfgs {
		s, err := reg.SinkFor(ctx, cfg, log)
		if err != nil {
			return nil, fmt.Errorf("build sink %q: %w", cfg.ID, err)
		}
		out = append(out, s)
	}
	return out, nil
}
