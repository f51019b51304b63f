// Package metrics holds the Prometheus collectors exported at /metrics.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Surfaces a drag can happen on.
const (
	SurfaceAPI = "api"
	SurfaceTUI = "tui"
)

var (
	DragOutcomes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "slate_drag_outcomes_total",
			Help: "Resolved milestone drags by outcome",
		},
		[]string{"outcome", "surface"}, // outcome: committed, rejected, cancelled
	)

	MilestoneWrites = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "slate_milestone_writes_total",
			Help: "Milestone rows written by operation",
		},
		[]string{"op"}, // op: insert, update_dates, delete, plan
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "slate_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~4s
		},
		[]string{"method", "route", "status"},
	)

	BackupsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "slate_backups_total",
			Help: "Database backups by result",
		},
		[]string{"result"}, // result: success, failed
	)
)

// RecordDragOutcome counts one resolved drag.
func RecordDragOutcome(outcome, surface string) {
	DragOutcomes.WithLabelValues(outcome, surface).Inc()
}

// RecordMilestoneWrite counts n milestone rows written by op.
func RecordMilestoneWrite(op string, n int) {
	MilestoneWrites.WithLabelValues(op).Add(float64(n))
}

// RecordHTTPRequestDuration observes one request. route is the matched
// pattern, not the raw path, to keep label cardinality bounded.
func RecordHTTPRequestDuration(method, route, status string, duration time.Duration) {
	HTTPRequestDuration.WithLabelValues(method, route, status).Observe(duration.Seconds())
}

// RecordBackup counts one backup attempt.
func RecordBackup(err error) {
	if err != nil {
		BackupsTotal.WithLabelValues("failed").Inc()
		return
	}
	BackupsTotal.WithLabelValues("success").Inc()
}

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
