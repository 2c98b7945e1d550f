package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the
// prediction service.
type Metrics struct {
	PredictionsTotal *prometheus.CounterVec   // labels: endpoint, outcome={success,client_error,server_error}
	RiskLevels       *prometheus.CounterVec   // labels: level={Low,Medium,High}
	RequestDuration  *prometheus.HistogramVec // labels: endpoint

	// Location resolution metrics.
	ResolutionsTotal *prometheus.CounterVec // labels: method={GPS,Default,IP Geolocation,Fallback}, outcome={success,error}

	// Geocoding metrics.
	GeocodeRequests    *prometheus.CounterVec   // labels: method={forward,reverse}, outcome={success,error,empty}
	GeocodeCache       *prometheus.CounterVec   // labels: method={forward,reverse}, result={hit,miss}
	GeocodeAPIDuration *prometheus.HistogramVec // labels: method={forward,reverse}
	GeocodeEnabled     prometheus.Gauge

	// Audit trail metrics.
	AuditQueued     prometheus.Counter
	AuditDropped    prometheus.Counter
	AuditPublished  prometheus.Counter
	AuditErrors     prometheus.Counter
	AuditBatchSize  prometheus.Histogram
	RecorderRunning prometheus.Gauge
}

// NewMetrics creates and registers all service metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		PredictionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "roadrisk",
			Name:      "predictions_total",
			Help:      "Prediction requests by endpoint and outcome.",
		}, []string{"endpoint", "outcome"}),
		RiskLevels: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "roadrisk",
			Name:      "risk_levels_total",
			Help:      "Completed assessments by predicted risk level.",
		}, []string{"level"}),
		RequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "roadrisk",
			Name:      "request_duration_seconds",
			Help:      "API request handling duration.",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 2.5},
		}, []string{"endpoint"}),
		ResolutionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "roadrisk",
			Name:      "resolutions_total",
			Help:      "Location resolutions by method and outcome.",
		}, []string{"method", "outcome"}),
		GeocodeRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "roadrisk",
			Name:      "geocode_requests_total",
			Help:      "Geocoding API requests by method and outcome.",
		}, []string{"method", "outcome"}),
		GeocodeCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "roadrisk",
			Name:      "geocode_cache_total",
			Help:      "Geocoding cache lookups by method and result.",
		}, []string{"method", "result"}),
		GeocodeAPIDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "roadrisk",
			Name:      "geocode_api_duration_seconds",
			Help:      "Geocoding API request duration in seconds.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}, []string{"method"}),
		GeocodeEnabled: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "roadrisk",
			Name:      "geocode_enabled",
			Help:      "1 when geocoding enrichment is enabled, 0 otherwise.",
		}),
		AuditQueued: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "roadrisk",
			Name:      "audit_queued_total",
			Help:      "Audit records accepted onto the recorder queue.",
		}),
		AuditDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "roadrisk",
			Name:      "audit_dropped_total",
			Help:      "Audit records dropped because the recorder queue was full.",
		}),
		AuditPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "roadrisk",
			Name:      "audit_published_total",
			Help:      "Audit records written to the audit topic.",
		}),
		AuditErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "roadrisk",
			Name:      "audit_errors_total",
			Help:      "Audit batch write failures.",
		}),
		AuditBatchSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "roadrisk",
			Name:      "audit_batch_size",
			Help:      "Number of records per published audit batch.",
			Buckets:   []float64{1, 5, 10, 20, 30, 40, 50, 75, 100},
		}),
		RecorderRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "roadrisk",
			Name:      "audit_recorder_running",
			Help:      "1 when the audit recorder loop is active, 0 when shut down.",
		}),
	}

	prometheus.MustRegister(
		m.PredictionsTotal,
		m.RiskLevels,
		m.RequestDuration,
		m.ResolutionsTotal,
		m.GeocodeRequests,
		m.GeocodeCache,
		m.GeocodeAPIDuration,
		m.GeocodeEnabled,
		m.AuditQueued,
		m.AuditDropped,
		m.AuditPublished,
		m.AuditErrors,
		m.AuditBatchSize,
		m.RecorderRunning,
	)

	return m
}

// NewMetricsForTesting creates Metrics with unregistered collectors to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return &Metrics{
		PredictionsTotal:   prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "roadrisk", Name: "predictions_total"}, []string{"endpoint", "outcome"}),
		RiskLevels:         prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "roadrisk", Name: "risk_levels_total"}, []string{"level"}),
		RequestDuration:    prometheus.NewHistogramVec(prometheus.HistogramOpts{Namespace: "roadrisk", Name: "request_duration_seconds"}, []string{"endpoint"}),
		ResolutionsTotal:   prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "roadrisk", Name: "resolutions_total"}, []string{"method", "outcome"}),
		GeocodeRequests:    prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "roadrisk", Name: "geocode_requests_total"}, []string{"method", "outcome"}),
		GeocodeCache:       prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "roadrisk", Name: "geocode_cache_total"}, []string{"method", "result"}),
		GeocodeAPIDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{Namespace: "roadrisk", Name: "geocode_api_duration_seconds"}, []string{"method"}),
		GeocodeEnabled:     prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "roadrisk", Name: "geocode_enabled"}),
		AuditQueued:        prometheus.NewCounter(prometheus.CounterOpts{Namespace: "roadrisk", Name: "audit_queued_total"}),
		AuditDropped:       prometheus.NewCounter(prometheus.CounterOpts{Namespace: "roadrisk", Name: "audit_dropped_total"}),
		AuditPublished:     prometheus.NewCounter(prometheus.CounterOpts{Namespace: "roadrisk", Name: "audit_published_total"}),
		AuditErrors:        prometheus.NewCounter(prometheus.CounterOpts{Namespace: "roadrisk", Name: "audit_errors_total"}),
		AuditBatchSize:     prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "roadrisk", Name: "audit_batch_size"}),
		RecorderRunning:    prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "roadrisk", Name: "audit_recorder_running"}),
	}
}
