package telemetry

import (
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusRecorder counts observations per event name and mirrors
// them to the debug log.
type PrometheusRecorder struct {
	events *prometheus.CounterVec
}

// NewPrometheus registers the event counter with reg and returns the
// recorder.
func NewPrometheus(reg prometheus.Registerer) *PrometheusRecorder {
	events := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "splitbill",
		Name:      "events_total",
		Help:      "Usage events emitted by the split session.",
	}, []string{"event"})
	reg.MustRegister(events)
	return &PrometheusRecorder{events: events}
}

// Record implements Recorder.
func (r *PrometheusRecorder) Record(event string, params map[string]any) {
	r.events.WithLabelValues(event).Inc()

	attrs := make([]any, 0, len(params)*2)
	for k, v := range params {
		attrs = append(attrs, k, v)
	}
	slog.Debug("event: "+event, attrs...)
}
