// Package monitoring holds the Prometheus collectors shared by the HTTP
// and storage adapters.
package monitoring

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: []float64{0.005, 0.025, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"method", "route"},
	)

	QueryDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "db_query_duration_seconds",
			Help:    "Duration of database calls",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		},
		[]string{"op"},
	)

	DashboardCountFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dashboard_count_failures_total",
			Help: "Dashboard count queries that failed and were shown as zero",
		},
		[]string{"metric"},
	)

	SessionEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "session_events_total",
			Help: "Session lifecycle events",
		},
		[]string{"event"},
	)
)

// Register adds every collector to reg.
func Register(reg prometheus.Registerer) {
	reg.MustRegister(RequestsTotal, RequestDuration, QueryDuration, DashboardCountFailures, SessionEvents)
}

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
