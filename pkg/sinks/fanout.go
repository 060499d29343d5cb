package sinks

import (
	"context"
	"errors"
	"fmt"
)

// DeliveryObserver is told about every individual sink delivery.
type DeliveryObserver interface {
	ObserveDelivery(sinkType string, err error)
}

// Fanout dispatches envelopes to all configured sinks.
type Fanout struct {
	sinks    []Sink
	observer DeliveryObserver
}

// NewFanout builds a dispatcher that fans out envelopes across sinks.
func NewFanout(sinks []Sink) *Fanout {
	cp := make([]Sink, 0, len(sinks))
	for _, s := range sinks {
		if s == nil {
			continue
		}
		cp = append(cp, s)
	}
	return &Fanout{sinks: cp}
}

// WithObserver attaches obs to f and returns f.
func (f *Fanout) WithObserver(obs DeliveryObserver) *Fanout {
	if f != nil {
		f.observer = obs
	}
	return f
}

// Deliver forwards the envelope to every registered sink.
// It returns the number of sinks that successfully handled the envelope.
func (f *Fanout) Deliver(ctx context.Context, env Envelope) (int, error) {
	if f == nil || len(f.sinks) == 0 {
		return 0, nil
	}

	var errs []error
	successful := 0
	for _, s := range f.sinks {
		err := s.Deliver(ctx, env)
		if f.observer != nil {
			f.observer.ObserveDelivery(s.Type(), err)
		}
		if err != nil {
			errs = append(errs, fmt.Errorf("%s sink[%s]: %w", s.Type(), s.ID(), err))
		} else {
			successful++
		}
	}
	return successful, errors.Join(errs...)
}

// Size returns the number of active sinks.
func (f *Fanout) Size() int {
	if f == nil {
		return 0
	}
	return len(f.sinks)
}
