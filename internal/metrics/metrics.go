package metrics

import (
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	resultDelivered = "delivered"
	resultFailed    = "failed"
)

// Recorder publishes Prometheus metrics for vendor calls and sink deliveries.
type Recorder struct {
	gatherer prometheus.Gatherer
	handler  http.Handler

	callRequests *prometheus.CounterVec
	callLatency  *prometheus.HistogramVec

	deliveries *prometheus.CounterVec
}

// NewRecorder constructs a Prometheus-backed Recorder. When reg is nil a dedicated
// registry is created so multiple recorders can coexist without conflicting with
// the global default registerer.
func NewRecorder(reg *prometheus.Registry) *Recorder {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}

	reg.MustRegister(
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewGoCollector(),
	)

	callRequests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "brightdata",
		Subsystem: "client",
		Name:      "requests_total",
		Help:      "Vendor API calls by operation and outcome.",
	}, []string{"operation", "outcome"})

	callLatency := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "brightdata",
		Subsystem: "client",
		Name:      "request_duration_seconds",
		Help:      "Latency distribution for vendor API calls.",
		Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
	}, []string{"operation"})

	deliveries := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "brightdata",
		Subsystem: "sink",
		Name:      "deliveries_total",
		Help:      "Envelope deliveries by sink type and result.",
	}, []string{"sink_type", "result"})

	reg.MustRegister(callRequests, callLatency, deliveries)

	return &Recorder{
		gatherer:     reg,
		handler:      promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
		callRequests: callRequests,
		callLatency:  callLatency,
		deliveries:   deliveries,
	}
}

// Handler exposes the Prometheus HTTP handler for the recorder's registry.
func (r *Recorder) Handler() http.Handler {
	if r == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, "metrics unavailable", http.StatusServiceUnavailable)
		})
	}
	return r.handler
}

// Gatherer returns the underlying Prometheus gatherer.
func (r *Recorder) Gatherer() prometheus.Gatherer {
	if r == nil {
		return prometheus.NewRegistry()
	}
	return r.gatherer
}

// ObserveCall records one vendor call. It satisfies brightdata.Observer.
func (r *Recorder) ObserveCall(operation, outcome string, elapsed time.Duration) {
	if r == nil {
		return
	}
	op := normalizeLabel(operation)
	r.callRequests.WithLabelValues(op, normalizeLabel(outcome)).Inc()
	r.callLatency.WithLabelValues(op).Observe(elapsed.Seconds())
}

// ObserveDelivery records the result of handing an envelope to one sink.
// It satisfies sinks.DeliveryObserver.
func (r *Recorder) ObserveDelivery(sinkType string, err error) {
	if r == nil {
		return
	}
	result := resultDelivered
	if err != nil {
		result = resultFailed
	}
	r.deliveries.WithLabelValues(normalizeLabel(sinkType), result).Inc()
}

func normalizeLabel(value string) string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return "unknown"
	}
	return trimmed
}
