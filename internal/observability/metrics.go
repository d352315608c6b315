package observability

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce sync.Once

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "packctl",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests.",
		},
		[]string{"node", "method", "path", "status"},
	)
	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "packctl",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"node", "method", "path", "status"},
	)
	engineOps = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "packctl",
			Subsystem: "engine",
			Name:      "operations_total",
			Help:      "Pack and unpack operations by layout and outcome.",
		},
		[]string{"node", "layout", "op", "outcome"},
	)
	engineBits = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "packctl",
			Subsystem: "engine",
			Name:      "bits_total",
			Help:      "Bits packed or unpacked by layout.",
		},
		[]string{"node", "layout", "op"},
	)
)

func RegisterMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(httpRequests, httpDuration, engineOps, engineBits)
	})
}

func RecordHTTPRequest(node, method, path string, status int, duration time.Duration) {
	RegisterMetrics()
	statusLabel := strconv.Itoa(status)
	httpRequests.WithLabelValues(node, method, path, statusLabel).Inc()
	httpDuration.WithLabelValues(node, method, path, statusLabel).Observe(duration.Seconds())
}

// RecordEngineOp counts one pack or unpack. bits is the layout width; it is
// only added on success so the bits counter reflects data actually moved.
func RecordEngineOp(node, layout, op string, bits uint, success bool) {
	RegisterMetrics()
	outcome := "error"
	if success {
		outcome = "ok"
	}
	engineOps.WithLabelValues(node, layout, op, outcome).Inc()
	if success {
		engineBits.WithLabelValues(node, layout, op).Add(float64(bits))
	}
}
