package rest

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	histogramResponseTime = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "expenses",
			Subsystem: "http",
			Name:      "histogram_response_time_seconds",
			Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 2},
		},
		[]string{"method", "route", "status"},
	)

	authFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "expenses",
			Subsystem: "auth",
			Name:      "failures_total",
		},
		[]string{"reason"},
	)
)

func observeResponse(method, route string, status int, elapsed time.Duration) {
	histogramResponseTime.
		WithLabelValues(method, route, strconv.Itoa(status)).
		Observe(elapsed.Seconds())
}

// countAuthFailure only counts client-side authentication failures, so the
// label set stays bounded.
func countAuthFailure(err error) {
	if status, detail := statusOf(err); status == http.StatusUnauthorized {
		authFailures.WithLabelValues(detail).Inc()
	}
}
