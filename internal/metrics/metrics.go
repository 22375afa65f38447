// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	RequestTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	MessagesCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "messagely_messages_created_total",
		Help: "Messages successfully created",
	})

	MessagesRead = promauto.NewCounter(prometheus.CounterOpts{
		Name: "messagely_messages_read_total",
		Help: "Successful mark-read calls",
	})

	// Logins is labelled by result: success, bad_password, unknown_user.
	Logins = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "messagely_logins_total",
			Help: "Authentication attempts by result",
		},
		[]string{"result"},
	)

	EventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "messagely_events_published_total",
			Help: "Message events handed to the bus by type and result",
		},
		[]string{"type", "result"},
	)
)

// RecordRequest takes a route pattern such as /messages/{id}, never a raw
// request path.
func RecordRequest(method, route string, statusCode int, durationSeconds float64) {
	status := strconv.Itoa(statusCode)
	RequestDuration.WithLabelValues(method, route, status).Observe(durationSeconds)
	RequestTotal.WithLabelValues(method, route, status).Inc()
}

func RecordLogin(result string) {
	Logins.WithLabelValues(result).Inc()
}

func RecordEvent(eventType string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	EventsPublished.WithLabelValues(eventType, result).Inc()
}
