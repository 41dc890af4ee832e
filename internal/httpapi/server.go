// Package httpapi serves summaries, chart specifications, PNG charts and combined downloads over HTTP.
package httpapi

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/KaramelBytes/ecboard/internal/dataset"
	"github.com/KaramelBytes/ecboard/internal/observability"
)

// Reloader produces a fresh dataset snapshot.
type Reloader interface {
	Reload(ctx context.Context) (*dataset.Dataset, error)
}

// ReloadFunc adapts a function to Reloader.
type ReloadFunc func(ctx context.Context) (*dataset.Dataset, error)

// Reload calls f(ctx).
func (f ReloadFunc) Reload(ctx context.Context) (*dataset.Dataset, error) { return f(ctx) }

// Server exposes the dashboard API plus health, readiness, and metrics endpoints.
type Server struct {
	httpServer *http.Server
	logger     *slog.Logger
	metrics    *observability.Metrics
	reloader   Reloader
	current    atomic.Pointer[dataset.Dataset]
}

// NewServer creates an HTTP server over an initial snapshot. reloader may be nil, in which
// case POST /api/reload answers 501.
func NewServer(addr string, initial *dataset.Dataset, reloader Reloader, m *observability.Metrics, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if m == nil {
		m = observability.NewMetricsForTesting()
	}
	mux := http.NewServeMux()
	s := &Server{
		logger:   logger,
		metrics:  m,
		reloader: reloader,
	}
	if initial != nil {
		s.current.Store(initial)
	}
	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.instrument(mux),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.Handle("GET /metrics", promhttp.Handler())

	mux.HandleFunc("GET /api/groups", s.handleGroups)
	mux.HandleFunc("GET /api/overview", s.handleOverview)
	mux.HandleFunc("GET /api/environment/summary", s.handleEnvironmentSummary)
	mux.HandleFunc("GET /api/growth/summary", s.handleGrowthSummary)
	mux.HandleFunc("GET /api/charts", s.handleChartList)
	mux.HandleFunc("GET /api/charts/{name}", s.handleChart)
	mux.HandleFunc("POST /api/reload", s.handleReload)

	mux.HandleFunc("GET /download/environment_combined.csv", s.handleEnvironmentDownload)
	mux.HandleFunc("GET /download/growth_combined.xlsx", s.handleGrowthDownload)

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

// Dataset returns the snapshot currently served.
func (s *Server) Dataset() *dataset.Dataset {
	return s.current.Load()
}

// errNotReady is reported by handlers when no snapshot has been loaded yet.
var errNotReady = errors.New("dataset not loaded")

func (s *Server) snapshot(w http.ResponseWriter) (*dataset.Dataset, bool) {
	ds := s.current.Load()
	if ds == nil {
		writeError(w, http.StatusServiceUnavailable, errNotReady.Error())
		return nil, false
	}
	return ds, true
}
