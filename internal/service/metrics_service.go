package service

import (
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsService encapsulates Prometheus instrumentation for the kiosk API.
type MetricsService struct {
	registry          *prometheus.Registry
	handler           http.Handler
	requestDuration   *prometheus.HistogramVec
	requestTotal      *prometheus.CounterVec
	cacheLatency      prometheus.Observer
	cacheWrite        prometheus.Observer
	cacheHits         prometheus.Counter
	cacheMisses       prometheus.Counter
	complaintsCreated *prometheus.CounterVec
	statusChanges     *prometheus.CounterVec
	repliesSaved      prometheus.Counter
	storeFailures     *prometheus.CounterVec
	elevations        *prometheus.CounterVec
	verifications     *prometheus.CounterVec
}

// NewMetricsService registers core Prometheus collectors. openSessions, when set,
// reports the number of live kiosk terminals.
func NewMetricsService(openSessions func() int) *MetricsService {
	registry := prometheus.NewRegistry()

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	cacheLatency := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "cache_latency_seconds",
		Help:    "Latency for cache lookups",
		Buckets: prometheus.DefBuckets,
	})

	cacheWrite := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "cache_write_seconds",
		Help:    "Latency for cache set operations",
		Buckets: prometheus.DefBuckets,
	})

	cacheHits := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cache_hits_total",
		Help: "Total cache hits",
	})

	cacheMisses := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cache_misses_total",
		Help: "Total cache misses",
	})

	complaintsCreated := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "complaints_submitted_total",
		Help: "Complaints accepted from kiosks by category",
	}, []string{"type"})

	statusChanges := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "complaint_status_changes_total",
		Help: "Status writes by administrators by target status",
	}, []string{"status"})

	repliesSaved := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "complaint_replies_saved_total",
		Help: "Replies saved by administrators",
	})

	storeFailures := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "complaint_store_failures_total",
		Help: "Record store failures by operation",
	}, []string{"operation"})

	elevations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "admin_elevation_attempts_total",
		Help: "Administrator elevation attempts by outcome",
	}, []string{"outcome"})

	verifications := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "phone_verifications_total",
		Help: "Phone verification steps by stage and outcome",
	}, []string{"stage", "outcome"})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, cacheLatency, cacheWrite, cacheHits, cacheMisses,
		complaintsCreated, statusChanges, repliesSaved, storeFailures, elevations, verifications, goroutines)

	if openSessions != nil {
		registry.MustRegister(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Name: "kiosk_sessions_open",
			Help: "Kiosk terminals holding a session",
		}, func() float64 {
			return float64(openSessions())
		}))
	}

	return &MetricsService{
		registry:          registry,
		handler:           promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration:   requestDuration,
		requestTotal:      requestTotal,
		cacheLatency:      cacheLatency,
		cacheWrite:        cacheWrite,
		cacheHits:         cacheHits,
		cacheMisses:       cacheMisses,
		complaintsCreated: complaintsCreated,
		statusChanges:     statusChanges,
		repliesSaved:      repliesSaved,
		storeFailures:     storeFailures,
		elevations:        elevations,
		verifications:     verifications,
	}
}

// Registry exposes the underlying registry, mainly for tests.
func (m *MetricsService) Registry() *prometheus.Registry {
	return m.registry
}

// Handler exposes the Prometheus HTTP handler.
func (m *MetricsService) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// ObserveHTTPRequest records request metrics.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := fmt.Sprintf("%d", status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
}

// RecordCacheOperation records a cache hit or miss.
func (m *MetricsService) RecordCacheOperation(hit bool, duration time.Duration) {
	if m == nil {
		return
	}
	m.cacheLatency.Observe(duration.Seconds())
	if hit {
		m.cacheHits.Inc()
		return
	}
	m.cacheMisses.Inc()
}

// ObserveCacheWrite tracks the duration for cache write operations.
func (m *MetricsService) ObserveCacheWrite(duration time.Duration) {
	if m == nil {
		return
	}
	m.cacheWrite.Observe(duration.Seconds())
}

// ComplaintSubmitted counts an accepted complaint.
func (m *MetricsService) ComplaintSubmitted(category string) {
	if m == nil {
		return
	}
	m.complaintsCreated.WithLabelValues(category).Inc()
}

// StatusChanged counts an administrator status write.
func (m *MetricsService) StatusChanged(status string) {
	if m == nil {
		return
	}
	m.statusChanges.WithLabelValues(status).Inc()
}

// ReplySaved counts a persisted reply.
func (m *MetricsService) ReplySaved() {
	if m == nil {
		return
	}
	m.repliesSaved.Inc()
}

// StoreFailure counts a failed record store call.
func (m *MetricsService) StoreFailure(operation string) {
	if m == nil {
		return
	}
	m.storeFailures.WithLabelValues(operation).Inc()
}

// ElevationAttempt counts an elevation attempt with its outcome.
func (m *MetricsService) ElevationAttempt(outcome string) {
	if m == nil {
		return
	}
	m.elevations.WithLabelValues(outcome).Inc()
}

// VerificationStep counts a phone verification request or confirmation.
func (m *MetricsService) VerificationStep(stage, outcome string) {
	if m == nil {
		return
	}
	m.verifications.WithLabelValues(stage, outcome).Inc()
}
