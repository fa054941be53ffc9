// Package api provides the LogWise HTTP server: the upload-and-analyze
// web UI and the JSON API behind it.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/logwise-ai/logwise/internal/analyze"
	"github.com/logwise-ai/logwise/internal/domain"
	"github.com/logwise-ai/logwise/internal/health"
	"github.com/logwise-ai/logwise/internal/metrics"
)

// Analyzer runs one analysis job.
type Analyzer interface {
	Analyze(ctx context.Context, req analyze.Request) (*domain.Report, error)
}

// Store is the report archive surface the API needs.
type Store interface {
	Get(id string) (*domain.Report, error)
	List(limit int) ([]*domain.Report, error)
	Delete(id string) error
	Count() (int, error)
}

// Runtime is the probe surface used by /api/status.
type Runtime interface {
	Ping(ctx context.Context) error
	BaseURL() string
}

// Checker exposes health probe results.
type Checker interface {
	Statuses() []health.Status
	IsHealthy() bool
}

// ServerConfig wires a Server.
type ServerConfig struct {
	Analyzer    Analyzer
	Store       Store
	Runtime     Runtime
	Checker     Checker
	Model       string
	Version     string
	CORSOrigins []string
	MaxUploadMB int
	Metrics     bool
	Log         zerolog.Logger
}

// Server is the LogWise HTTP server.
type Server struct {
	cfg ServerConfig
	log zerolog.Logger
}

// NewServer creates a Server.
func NewServer(cfg ServerConfig) *Server {
	if cfg.MaxUploadMB <= 0 {
		cfg.MaxUploadMB = 32
	}
	if cfg.Version == "" {
		cfg.Version = "dev"
	}
	return &Server{cfg: cfg, log: cfg.Log}
}

// Handler returns the chi router with all routes mounted.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(10 * time.Minute)) // analyses can run long
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.corsOrigins(),
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type"},
	}))
	r.Use(s.instrument)

	r.Get("/", s.handleIndex)
	r.Get("/health", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Get("/status", s.handleStatus)
		r.Post("/inspect", s.handleInspect)
		r.Post("/analyze", s.handleAnalyze)
		r.Get("/reports", s.handleListReports)
		r.Get("/reports/{id}", s.handleGetReport)
		r.Get("/reports/{id}/download", s.handleDownloadReport)
		r.Delete("/reports/{id}", s.handleDeleteReport)
	})

	if s.cfg.Metrics {
		r.Handle("/metrics", promhttp.Handler())
	}

	return r
}

func (s *Server) corsOrigins() []string {
	if len(s.cfg.CORSOrigins) == 0 {
		return []string{"*"}
	}
	return s.cfg.CORSOrigins
}

// maxBodyBytes returns the configured upload cap in bytes.
func (s *Server) maxBodyBytes() int64 {
	return int64(s.cfg.MaxUploadMB) << 20
}

// instrument records per-route Prometheus metrics.
func (s *Server) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := chi.RouteContext(r.Context()).RoutePattern()
		if route == "" {
			route = "unmatched"
		}
		metrics.HTTPRequests.WithLabelValues(route, r.Method, strconv.Itoa(ww.Status())).Inc()
		metrics.HTTPDuration.WithLabelValues(route, r.Method).Observe(time.Since(start).Seconds())
	})
}

// decodeJSON decodes a JSON request body, rejecting unknown fields.
func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]any{
		"error": map[string]any{
			"message": msg,
			"type":    "error",
		},
	})
}
