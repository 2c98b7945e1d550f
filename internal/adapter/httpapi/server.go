// Package httpapi exposes the prediction service over HTTP: the JSON
// prediction and location endpoints under /api, plus health, readiness,
// and metrics routes.
package httpapi

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/SangramKhandagale/Road-Accident-Prediction-Model/internal/domain"
	"github.com/SangramKhandagale/Road-Accident-Prediction-Model/internal/observability"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Assessor scores accident risk for a location under given conditions.
type Assessor interface {
	Assess(location string, cond domain.Conditions) (domain.Assessment, error)
}

// Resolver turns position signals into named locations.
type Resolver interface {
	Resolve(ctx context.Context, coords domain.Coordinates, accuracy string) (domain.LocationResolution, error)
	FromIP(ip string) domain.LocationResolution
	Default() domain.LocationResolution
	AreaTypeForName(ctx context.Context, name string) string
}

// AuditRecorder accepts completed assessments for the audit trail.
type AuditRecorder interface {
	Record(rec domain.AuditRecord)
}

// ReadinessChecker reports whether the service is ready to serve traffic.
type ReadinessChecker interface {
	CheckReadiness(ctx context.Context) error
}

// Server exposes the prediction API plus health, readiness, and metrics routes.
type Server struct {
	httpServer *http.Server
	assessor   Assessor
	resolver   Resolver
	recorder   AuditRecorder
	logger     *slog.Logger
	metrics    *observability.Metrics
}

// NewServer creates the HTTP server and wires all routes. recorder and ready
// may be nil when auditing is disabled.
func NewServer(addr string, assessor Assessor, resolver Resolver, recorder AuditRecorder, ready ReadinessChecker, logger *slog.Logger, metrics *observability.Metrics) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		assessor: assessor,
		resolver: resolver,
		recorder: recorder,
		logger:   logger,
		metrics:  metrics,
	}

	mux.HandleFunc("POST /api/predict", s.instrument("predict", s.handlePredict))
	mux.HandleFunc("POST /api/predict_comprehensive", s.instrument("predict_comprehensive", s.handlePredictComprehensive))
	mux.HandleFunc("POST /api/batch_predict", s.instrument("batch_predict", s.handleBatchPredict))
	mux.HandleFunc("POST /api/get_location", s.instrument("get_location", s.handleGetLocation))
	mux.HandleFunc("GET /api/health", s.handleAPIHealth)
	mux.HandleFunc("GET /api/model_info", s.handleModelInfo)
	mux.HandleFunc("GET /api/risk_factors", s.handleRiskFactors)
	mux.HandleFunc("GET /api/weather_info", s.handleWeatherInfo)

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", handleReady(ready))
	mux.Handle("GET /metrics", promhttp.Handler())

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

// instrument records request duration for an API endpoint.
func (s *Server) instrument(endpoint string, h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		timer := prometheus.NewTimer(s.metrics.RequestDuration.WithLabelValues(endpoint))
		defer timer.ObserveDuration()
		h(w, r)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func handleReady(checker ReadinessChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if checker == nil {
			writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := checker.CheckReadiness(ctx); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status": "not ready",
				"error":  err.Error(),
			})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best-effort response
}
