package httpapi

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
)

const metricsNamespace = "arbridge"

var requestLabels = []string{"path", "method", "status"}

var (
	httpRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: metricsNamespace, Subsystem: "http",
		Name: "requests_total",
		Help: "HTTP requests served, by route pattern.",
	}, requestLabels)

	httpRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: metricsNamespace, Subsystem: "http",
		Name:    "request_duration_seconds",
		Help:    "HTTP request latency, by route pattern.",
		Buckets: prometheus.DefBuckets,
	}, requestLabels)

	httpResponseBytes = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: metricsNamespace, Subsystem: "http",
		Name:    "response_size_bytes",
		Help:    "Response body bytes written to the client.",
		Buckets: prometheus.ExponentialBuckets(64, 4, 7),
	}, []string{"path"})

	httpInflight = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: metricsNamespace, Subsystem: "http",
		Name: "inflight_requests",
		Help: "Requests currently being served.",
	})

	bodyRejectedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: metricsNamespace, Subsystem: "http",
		Name: "body_rejected_total",
		Help: "Call bodies rejected before dispatch.",
	}, []string{"reason"})
)

func init() {
	prometheus.MustRegister(httpRequestsTotal, httpRequestDuration, httpResponseBytes, httpInflight, bodyRejectedTotal)
}

// responseRecorder captures the status code and body size of a response.
type responseRecorder struct {
	http.ResponseWriter
	status  int
	written int
}

func (rr *responseRecorder) WriteHeader(code int) {
	rr.status = code
	rr.ResponseWriter.WriteHeader(code)
}

func (rr *responseRecorder) Write(b []byte) (int, error) {
	n, err := rr.ResponseWriter.Write(b)
	rr.written += n
	return n, err
}

// MetricsMiddleware records request count, latency and response size per route.
func MetricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		httpInflight.Inc()
		defer httpInflight.Dec()

		rec := &responseRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()
		next.ServeHTTP(rec, r)

		// chi fills in the route pattern while routing, so read it afterwards.
		path := routePatternOrPath(r)
		lv := []string{path, r.Method, strconv.Itoa(rec.status)}
		httpRequestsTotal.WithLabelValues(lv...).Inc()
		httpRequestDuration.WithLabelValues(lv...).Observe(time.Since(start).Seconds())
		httpResponseBytes.WithLabelValues(path).Observe(float64(rec.written))
	})
}

// routePatternOrPath prefers the chi route pattern so that path parameters
// such as {method} do not explode label cardinality.
func routePatternOrPath(r *http.Request) string {
	if rc := chi.RouteContext(r.Context()); rc != nil {
		if p := rc.RoutePattern(); p != "" {
			return p
		}
	}
	return r.URL.Path
}

func incBodyRejected(reason string) {
	if reason == "" {
		reason = "unspecified"
	}
	bodyRejectedTotal.WithLabelValues(reason).Inc()
}
