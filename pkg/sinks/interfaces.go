package sinks

import "context"

// Sink delivers envelopes to a downstream destination (stdout, HTTP, SQS, etc).
type Sink interface {
	ID() string
	Type() string
	Deliver(ctx context.Context, env Envelope) error
}
