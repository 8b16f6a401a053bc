// Package server wires the filesystem, its store and the HTTP surfaces into
// one gin router.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	api "github.com/GriffinCanCode/docfs/internal/api/http"
	"github.com/GriffinCanCode/docfs/internal/api/middleware"
	"github.com/GriffinCanCode/docfs/internal/api/ws"
	"github.com/GriffinCanCode/docfs/internal/fetch"
	"github.com/GriffinCanCode/docfs/internal/infrastructure/config"
	"github.com/GriffinCanCode/docfs/internal/infrastructure/logging"
	"github.com/GriffinCanCode/docfs/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/docfs/internal/infrastructure/tracing"
	"github.com/GriffinCanCode/docfs/internal/shell"
	"github.com/GriffinCanCode/docfs/internal/store"
	"github.com/GriffinCanCode/docfs/internal/vfs"
)

// ShutdownTimeout bounds how long Run waits for in-flight requests.
const ShutdownTimeout = 10 * time.Second

// Server wraps the HTTP server and dependencies
type Server struct {
	router  *gin.Engine
	backend *store.Backend
	fs      *vfs.FS
	logger  *logging.Logger
	config  *config.Config
	metrics *monitoring.Metrics
	tracer  *tracing.Tracer
}

// NewServer creates a new server instance
func NewServer(ctx context.Context, cfg *config.Config, logger *logging.Logger) (*Server, error) {
	if logger == nil {
		logger = logging.NewNop()
	}
	logger.Info("Initializing docfs server",
		zap.String("port", cfg.Server.Port),
		zap.String("backend", cfg.Store.Backend),
	)

	// Each server gets its own registry so tests can build several.
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics := monitoring.NewMetricsWith(registry)

	backend, err := store.Open(ctx, cfg.Store, metrics, logger.Logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}
	fs := vfs.New(backend, vfs.WithLogger(logger.Named("vfs")))
	fetcher := fetch.NewClient(cfg.Fetch,
		fetch.WithLogger(logger.Named("fetch")),
		fetch.WithMetrics(metrics),
	)

	if !cfg.Logging.Development {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	tracer := tracing.New("docfs", logger.Named("trace"))

	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(tracing.HTTPMiddleware(tracer))
	router.Use(middleware.Logger(logger.Named("http")))
	router.Use(monitoring.Middleware(metrics))
	router.Use(middleware.CORS(middleware.DefaultCORSConfig()))
	if cfg.RateLimit.Enabled {
		logger.Info("Rate limiting enabled",
			zap.Int("rps", cfg.RateLimit.RequestsPerSecond),
			zap.Int("burst", cfg.RateLimit.Burst),
		)
		router.Use(middleware.RateLimit(middleware.RateLimitFromConfig(cfg.RateLimit)))
	}

	handlers := api.NewHandlers(fs, metrics, logger.Named("api")).WithBackend(backend.Name)
	handlers.Register(router)

	wsHandler := ws.NewHandler(func() *shell.Session {
		return shell.NewSession(fs,
			shell.WithFetcher(fetcher),
			shell.WithMetrics(metrics),
			shell.WithLogger(logger.Named("shell")),
		)
	}, metrics, logger.Named("ws"))
	router.GET("/v1/shell", wsHandler.HandleConnection)

	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	logger.Info("Server initialized successfully")

	return &Server{
		router:  router,
		backend: backend,
		fs:      fs,
		logger:  logger,
		config:  cfg,
		metrics: metrics,
		tracer:  tracer,
	}, nil
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// FS returns the filesystem served by s.
func (s *Server) FS() *vfs.FS {
	return s.fs
}

// Run serves HTTP until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	addr := net.JoinHostPort(s.config.Server.Host, s.config.Server.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Starting HTTP server", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.logger.Info("Shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// Close releases the store, drains pending spans and flushes the logger.
func (s *Server) Close() error {
	s.logger.Info("Shutting down server...")
	s.tracer.Close()

	if err := s.backend.Close(); err != nil {
		s.logger.Error("Failed to close store", zap.Error(err))
		return fmt.Errorf("failed to close store: %w", err)
	}

	// Sync logger before exit
	s.logger.Sync()

	return nil
}
