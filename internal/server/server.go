// Package server exposes the hive over HTTP: agent and task CRUD, the
// coordinator snapshot, resource info, monitoring data, auth, and the
// Prometheus scrape endpoint.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/hiveboard/hiveboard/internal/hive"
	"github.com/hiveboard/hiveboard/internal/monitor"
	"github.com/hiveboard/hiveboard/internal/resources"
	"github.com/hiveboard/hiveboard/pkg/config"
	"github.com/hiveboard/hiveboard/pkg/logging"
	"github.com/hiveboard/hiveboard/pkg/metrics"
)

// Server wires the HTTP API over the hive, resource, and monitor components
type Server struct {
	cfg       config.ServerConfig
	hive      *hive.Coordinator
	resources *resources.Manager
	monitor   *monitor.Monitor
	auth      *authService
	logger    logging.Logger
	collector *metrics.PrometheusCollector
	httpSrv   *http.Server
}

// New creates a server. The collector may be nil when metrics are disabled.
func New(cfg config.ServerConfig, h *hive.Coordinator, res *resources.Manager, mon *monitor.Monitor, logger logging.Logger, collector *metrics.PrometheusCollector) *Server {
	s := &Server{
		cfg:       cfg,
		hive:      h,
		resources: res,
		monitor:   mon,
		auth:      newAuthService(cfg, logger),
		logger:    logger,
		collector: collector,
	}
	s.httpSrv = &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           s.router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

func (s *Server) router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(s.observeMiddleware)

	r.Route("/api", func(r chi.Router) {
		r.Get("/agents", s.handleGetAgents)
		r.Post("/agents", s.handleCreateAgent)
		r.Get("/tasks", s.handleGetTasks)
		r.Post("/tasks", s.handleCreateTask)
		r.Get("/hive/status", s.handleHiveStatus)
		r.Get("/resources", s.handleResources)

		r.Route("/monitoring", func(r chi.Router) {
			r.Get("/metrics", s.handleMonitoringMetrics)
			r.Get("/alerts", s.handleAlerts)
			r.Get("/health", s.handleHealth)
		})

		r.Route("/auth", func(r chi.Router) {
			r.Post("/login", s.auth.handleLogin)
			r.Post("/register", s.auth.handleRegister)
			r.Post("/refresh", s.auth.handleRefresh)
		})
	})

	r.Get("/health", s.handleHealth)
	if s.collector != nil {
		r.Method(http.MethodGet, "/metrics", s.collector.Handler())
	}
	return r
}

// observeMiddleware logs each request and feeds latency and error counts
// into the Prometheus collector and the performance monitor
func (s *Server) observeMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		duration := time.Since(start)
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}

		if s.collector != nil {
			labels := metrics.Labels("path", routePattern(r), "method", r.Method)
			s.collector.ObserveDuration(metrics.HTTPRequestDuration.Name, start, labels)
			labels["status"] = fmt.Sprintf("%d", status)
			s.collector.IncrementCounter(metrics.HTTPRequests.Name, labels)
		}
		if s.monitor != nil {
			s.monitor.RecordRequest(duration, status >= http.StatusInternalServerError)
		}

		ctx := logging.WithRequestID(r.Context(), middleware.GetReqID(r.Context()))
		s.logger.WithContext(ctx).Debug("request served",
			logging.String("method", r.Method),
			logging.String("path", r.URL.Path),
			logging.Int("status", status),
			logging.Duration("duration", duration))
	})
}

func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if pattern := rctx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return r.URL.Path
}

// Start serves until the context is cancelled, then shuts down gracefully
func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", logging.String("addr", s.cfg.ListenAddr))
		if err := s.httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()
	if err := s.httpSrv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	s.logger.Info("http server stopped")
	return nil
}

// Handler exposes the router for tests
func (s *Server) Handler() http.Handler {
	return s.httpSrv.Handler
}
