package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
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

	// LocationReports counts accepted location reports by kind (bus/passenger).
	LocationReports = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "location_reports_total", Help: "Accepted location reports by kind."},
		[]string{"kind"},
	)
	// GeocodeUpstream counts geocoding proxy calls by outcome.
	GeocodeUpstream = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "geocode_upstream_total", Help: "Geocoding upstream calls by outcome."},
		[]string{"outcome"},
	)
)

var regOnce sync.Once

// Register installs all collectors on the registry, once.
func Register() {
	regOnce.Do(func() {
		Registry.MustRegister(HTTPRequests)
		Registry.MustRegister(HTTPDuration)
		Registry.MustRegister(LocationReports)
		Registry.MustRegister(GeocodeUpstream)
		Registry.MustRegister(collectors.NewGoCollector())
		Registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	})
}

// Handler serves the registry in the Prometheus exposition format.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}
