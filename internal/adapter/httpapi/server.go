// Package httpapi exposes the dashboard payload plus health, readiness,
// and metrics endpoints over HTTP.
package httpapi

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/couchcryptid/microseq-dashboard/internal/observability"
)

// PayloadSource serves the current dashboard payload as marshaled JSON.
type PayloadSource interface {
	Get(ctx context.Context) ([]byte, error)
}

// SnapshotLoader loads the precomputed payload fallback.
type SnapshotLoader interface {
	Load() ([]byte, error)
}

// ReadinessChecker reports whether the service is ready to serve traffic.
type ReadinessChecker interface {
	CheckReadiness(ctx context.Context) error
}

// Server exposes the dashboard API with health, readiness, and metrics routes.
type Server struct {
	httpServer *http.Server
	payloads   PayloadSource
	snapshots  SnapshotLoader
	cacheAge   time.Duration
	logger     *slog.Logger
	metrics    *observability.Metrics
}

// NewServer creates an HTTP server with /api/dashboard, /healthz, /readyz,
// and /metrics routes. cacheAge drives the shared-cache window advertised
// on dashboard responses.
func NewServer(addr string, payloads PayloadSource, snapshots SnapshotLoader, ready ReadinessChecker, cacheAge time.Duration, logger *slog.Logger, metrics *observability.Metrics) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		payloads:  payloads,
		snapshots: snapshots,
		cacheAge:  cacheAge,
		logger:    logger,
		metrics:   metrics,
	}

	mux.HandleFunc("GET /api/dashboard", s.withRequestID(s.handleDashboard))
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

// withRequestID tags each request with an ID for log correlation.
func (s *Server) withRequestID(next func(http.ResponseWriter, *http.Request, *slog.Logger)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-Id")
		if requestID == "" {
			requestID = uuid.NewString()
		}
		w.Header().Set("X-Request-Id", requestID)
		logger := s.logger.With("request_id", requestID, "path", r.URL.Path)
		next(w, r, logger)
	}
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request, logger *slog.Logger) {
	data, err := s.payloads.Get(r.Context())
	if err != nil {
		logger.Error("payload build failed", "error", err)
		if s.serveSnapshot(w, logger) {
			return
		}
		writeJSON(w, http.StatusBadGateway, map[string]string{
			"message": fmt.Sprintf("dashboard data unavailable: %v", err),
		})
		return
	}

	s.writePayload(w, data)
}

// serveSnapshot tries the precomputed payload after a failed build.
// Reports whether a response was written.
func (s *Server) serveSnapshot(w http.ResponseWriter, logger *slog.Logger) bool {
	if s.snapshots == nil {
		return false
	}
	data, err := s.snapshots.Load()
	if err != nil {
		logger.Warn("snapshot fallback unavailable", "error", err)
		return false
	}
	s.metrics.SnapshotFallbacks.Inc()
	logger.Info("serving snapshot fallback", "bytes", len(data))
	s.writePayload(w, data)
	return true
}

func (s *Server) writePayload(w http.ResponseWriter, data []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", fmt.Sprintf("public, max-age=%d", int(s.cacheAge.Seconds())))
	w.WriteHeader(http.StatusOK)
	w.Write(data) //nolint:errcheck // best-effort response write
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func handleReady(checker ReadinessChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
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
