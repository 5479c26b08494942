// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	OutcomeEvaluated = "evaluated"
	OutcomeSent      = "sent"
	OutcomeSkipped   = "skipped"
	OutcomeFailed    = "failed"

	PassOK    = "ok"
	PassError = "error"
	PassBusy  = "busy"
)

var (
	triggerLetters = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "deadbox_trigger_letters_total",
			Help: "Letters handled by the trigger evaluator, by outcome",
		},
		[]string{"outcome"},
	)
	triggerPasses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "deadbox_trigger_passes_total",
			Help: "Trigger evaluation passes by result",
		},
		[]string{"result"},
	)
	triggerPassDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "deadbox_trigger_pass_duration_seconds",
			Help:    "Duration of a full trigger evaluation pass",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 12),
		},
	)
	cleanupDeleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "deadbox_cleanup_deleted_total",
			Help: "Rows removed by the cleanup job, by kind",
		},
		[]string{"kind"},
	)
	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "deadbox_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)
)

// RecordPass records one finished (or refused) evaluation pass.
func RecordPass(result string, d time.Duration, evaluated, sent, skipped, failed int) {
	triggerPasses.WithLabelValues(result).Inc()
	if result == PassBusy {
		return
	}
	triggerPassDuration.Observe(d.Seconds())
	triggerLetters.WithLabelValues(OutcomeEvaluated).Add(float64(evaluated))
	triggerLetters.WithLabelValues(OutcomeSent).Add(float64(sent))
	triggerLetters.WithLabelValues(OutcomeSkipped).Add(float64(skipped))
	triggerLetters.WithLabelValues(OutcomeFailed).Add(float64(failed))
}

func RecordCleanup(kind string, n int64) {
	cleanupDeleted.WithLabelValues(kind).Add(float64(n))
}

func ObserveHTTPRequest(method, route string, status int, d time.Duration) {
	httpRequestDuration.WithLabelValues(method, route, statusLabel(status)).Observe(d.Seconds())
}

func statusLabel(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	case status >= 300:
		return "3xx"
	default:
		return "2xx"
	}
}
