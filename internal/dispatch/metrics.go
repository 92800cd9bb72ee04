package dispatch

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	outcomeOK             = "ok"
	outcomeNotImplemented = "not_implemented"
)

var (
	callsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "arbridge",
			Subsystem: "dispatch",
			Name:      "calls_total",
			Help:      "Total number of dispatched calls by method and outcome",
		},
		[]string{"method", "outcome"},
	)

	callDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "arbridge",
			Subsystem: "dispatch",
			Name:      "call_duration_seconds",
			Help:      "Duration of dispatched calls in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method"},
	)
)

func init() {
	prometheus.MustRegister(callsTotal, callDuration)
}

// observeCall records one call. Unknown methods share the "unknown" label
// so arbitrary names cannot blow up cardinality.
func observeCall(method, outcome string, dur time.Duration) {
	callsTotal.WithLabelValues(method, outcome).Inc()
	if outcome != outcomeNotImplemented {
		callDuration.WithLabelValues(method).Observe(dur.Seconds())
	}
}
