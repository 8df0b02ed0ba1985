package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

var (
	// Registry is the dedicated Prometheus registry for the API.
	Registry = prometheus.NewRegistry()
	// HTTPRequests counts requests by method, path, and status.
	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "http_requests_total", Help: "Total HTTP requests."},
		[]string{"method", "path", "status"},
	)
	// HTTPDuration records request durations in seconds.
	HTTPDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{Name: "http_request_duration_seconds", Help: "HTTP request duration in seconds.", Buckets: prometheus.DefBuckets},
		[]string{"method", "path", "status"},
	)

	// Allocations counts allocator runs by outcome (packed, overflow).
	Allocations = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "fleet_allocations_total", Help: "Fleet allocation runs by outcome."},
		[]string{"outcome"},
	)
	// OverflowItems counts cargo items that fit on no truck.
	OverflowItems = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "fleet_overflow_items_total", Help: "Cargo items landing in overflow."},
	)
	// Analyses counts season analyses by pricing mode.
	Analyses = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "season_analyses_total", Help: "Season analyses by pricing mode."},
		[]string{"mode"},
	)
	// NotificationDeliveries counts outbound notification outcomes.
	NotificationDeliveries = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "notification_deliveries_total", Help: "Notification deliveries by event type and status."},
		[]string{"event_type", "status"},
	)
)

// RegisterDefault registers collectors to the service registry.
func RegisterDefault() {
	regOnce.Do(func() {
		Registry.MustRegister(HTTPRequests)
		Registry.MustRegister(HTTPDuration)
		Registry.MustRegister(Allocations)
		Registry.MustRegister(OverflowItems)
		Registry.MustRegister(Analyses)
		Registry.MustRegister(NotificationDeliveries)
		Registry.MustRegister(collectors.NewGoCollector())
		Registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	})
}

var regOnce sync.Once
