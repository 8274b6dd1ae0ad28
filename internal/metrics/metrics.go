package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "veloce",
			Name:      "http_requests_total",
			Help:      "HTTP requests by endpoint.",
		},
		[]string{"endpoint"},
	)

	bookingsCreated = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "veloce",
			Name:      "bookings_created_total",
			Help:      "Bookings accepted by the API.",
		},
	)

	contactMessages = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "veloce",
			Name:      "contact_messages_total",
			Help:      "Contact messages accepted by the API.",
		},
	)
)

// Register registers Prometheus metrics. Safe to call multiple times.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(httpRequests, bookingsCreated, contactMessages)
	})
}

// IncHTTP increments the counter for an endpoint label.
func IncHTTP(endpoint string) {
	httpRequests.WithLabelValues(endpoint).Inc()
}

// IncBookingCreated counts an accepted booking.
func IncBookingCreated() {
	bookingsCreated.Inc()
}

// IncContactMessage counts an accepted contact message.
func IncContactMessage() {
	contactMessages.Inc()
}
