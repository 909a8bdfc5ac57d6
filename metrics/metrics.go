// Package metrics holds the Prometheus collectors for lookups, transfers and
// the HTTP API.
package metrics

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "basenft"

var (
	directoryLookupsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "directory",
			Name:      "lookups_total",
			Help:      "Recipient directory lookups by query kind and outcome",
		},
		[]string{"kind", "outcome"},
	)

	transfersTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "transfer",
			Name:      "items_total",
			Help:      "NFT transfer submissions by strategy and outcome",
		},
		[]string{"strategy", "outcome"},
	)

	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "server",
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "server",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)
)

// Register registers all collectors plus the Go and process collectors
func Register(reg prometheus.Registerer, logger *log.Logger) {
	for name, c := range map[string]prometheus.Collector{
		"go_collector":          collectors.NewGoCollector(),
		"process_collector":     collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		"directory_lookups":     directoryLookupsTotal,
		"transfer_items":        transfersTotal,
		"http_requests":         httpRequestsTotal,
		"http_request_duration": httpRequestDuration,
	} {
		registerIfNotExists(reg, c, name, logger)
	}
}

func registerIfNotExists(reg prometheus.Registerer, c prometheus.Collector, name string, logger *log.Logger) {
	if err := reg.Register(c); err != nil {
		var already prometheus.AlreadyRegisteredError
		if errors.As(err, &already) {
			logger.Debug("collector already registered", "name", name)
			return
		}
		logger.Error("failed to register collector", "name", name, "err", err)
	}
}

// Handler serves the default registry
func Handler() http.Handler {
	return promhttp.Handler()
}

// ObserveLookup counts one directory lookup
func ObserveLookup(kind, outcome string) {
	directoryLookupsTotal.WithLabelValues(kind, outcome).Inc()
}

// ObserveTransfer counts one submitted transfer item
func ObserveTransfer(strategy, outcome string) {
	transfersTotal.WithLabelValues(strategy, outcome).Inc()
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// HTTPMiddleware records request count and latency per route template
func HTTPMiddleware() mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

			next.ServeHTTP(rec, r)

			path := routePath(r)
			httpRequestsTotal.WithLabelValues(r.Method, path, strconv.Itoa(rec.status)).Inc()
			httpRequestDuration.WithLabelValues(r.Method, path).Observe(time.Since(start).Seconds())
		})
	}
}

// routePath uses the route template to keep label cardinality bounded
func routePath(r *http.Request) string {
	route := mux.CurrentRoute(r)
	if route == nil {
		return "unknown"
	}
	tpl, err := route.GetPathTemplate()
	if err != nil {
		return "unknown"
	}
	return tpl
}
