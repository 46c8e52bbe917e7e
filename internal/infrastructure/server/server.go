package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	apihttp "github.com/GriffinCanCode/webdesk/internal/api/http"
	"github.com/GriffinCanCode/webdesk/internal/api/middleware"
	"github.com/GriffinCanCode/webdesk/internal/api/ws"
	"github.com/GriffinCanCode/webdesk/internal/domain/session"
	"github.com/GriffinCanCode/webdesk/internal/domain/vfs"
	"github.com/GriffinCanCode/webdesk/internal/domain/window"
	"github.com/GriffinCanCode/webdesk/internal/infrastructure/auth"
	"github.com/GriffinCanCode/webdesk/internal/infrastructure/blobstore"
	"github.com/GriffinCanCode/webdesk/internal/infrastructure/blobstore/backend"
	"github.com/GriffinCanCode/webdesk/internal/infrastructure/config"
	"github.com/GriffinCanCode/webdesk/internal/infrastructure/logging"
	"github.com/GriffinCanCode/webdesk/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/webdesk/internal/infrastructure/tracing"
)

// sweepInterval is how often idle sessions are checked for eviction.
const sweepInterval = time.Minute

// Server wraps the HTTP server and dependencies
type Server struct {
	router     *gin.Engine
	httpServer *http.Server
	sessions   *session.Manager
	persister  *session.AsyncPersister
	store      *blobstore.Guarded
	tracer     *tracing.Tracer
	logger     *logging.Logger
	config     *config.Config
	metrics    *monitoring.Metrics

	sweepCtx  context.Context
	stopSweep context.CancelFunc
	closeOnce sync.Once
	closeErr  error
}

// NewServer creates a new server instance. A nil logger builds one from
// the logging configuration.
func NewServer(ctx context.Context, cfg *config.Config, logger *logging.Logger) (*Server, error) {
	if logger == nil {
		var err error
		logger, err = logging.New(logging.Config{
			Level:       cfg.Logging.Level,
			Development: cfg.Logging.Development,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create logger: %w", err)
		}
	}

	logger.Info("Initializing webdesk server",
		zap.String("port", cfg.Server.Port),
		zap.String("store", cfg.Store.Backend),
	)

	// Initialize metrics first (needed by other components)
	metrics := monitoring.NewMetrics()
	tracer := tracing.New("webdesk", logger)

	defaultTree, err := loadDefaultTree(cfg.Desktop.SeedFile)
	if err != nil {
		tracer.Close()
		return nil, err
	}
	if cfg.Desktop.SeedFile != "" {
		logger.Info("Loaded seed tree", zap.String("file", cfg.Desktop.SeedFile))
	}

	store, err := backend.Open(ctx, cfg.Store, metrics, logger)
	if err != nil {
		tracer.Close()
		return nil, fmt.Errorf("failed to open store: %w", err)
	}

	persister := session.NewAsyncPersister(store, logger, metrics)
	sessions := session.NewManager(store, persister, session.Config{
		Viewport:    window.Size{Width: cfg.Desktop.ViewportWidth, Height: cfg.Desktop.ViewportHeight},
		IdleEvict:   cfg.Session.IdleEvict,
		DefaultTree: func() vfs.Tree { return defaultTree },
	}, metrics, logger)
	issuer := auth.NewIssuer(cfg.Session.Secret, cfg.Session.TTL)

	// Create router
	if !cfg.Logging.Development {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	// Add middleware
	router.Use(gin.Recovery())
	router.Use(tracing.HTTPMiddleware(tracer))
	router.Use(monitoring.Middleware(metrics))
	router.Use(middleware.CORS(middleware.DefaultCORSConfig(cfg.Server.AllowedOrigins...)))
	if cfg.RateLimit.Enabled {
		logger.Info("Rate limiting enabled",
			zap.Int("rps", cfg.RateLimit.RequestsPerSecond),
			zap.Int("burst", cfg.RateLimit.Burst),
		)
		router.Use(middleware.RateLimit(middleware.RateLimitConfig{
			RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
			Burst:             cfg.RateLimit.Burst,
			Metrics:           metrics,
		}))
	}

	handlers := apihttp.NewHandlers(apihttp.Config{
		Sessions: sessions,
		Issuer:   issuer,
		Store:    store,
		Backend:  cfg.Store.Backend,
		Cookie:   cfg.Session.Cookie,
		Metrics:  metrics,
		Logger:   logger,
	})
	wsHandler := ws.NewHandler(cfg.Server.AllowedOrigins, metrics, logger)
	sessionMW := middleware.Session(middleware.SessionConfig{
		Issuer:   issuer,
		Sessions: sessions,
		Cookie:   cfg.Session.Cookie,
		Tracer:   tracer,
	})

	// Register routes
	router.GET("/", handlers.Root)
	router.GET("/health", handlers.Health)
	handlers.Register(router.Group("/api/v1"), sessionMW, wsHandler.HandleConnection)

	// Metrics endpoints
	router.GET("/metrics", gin.WrapH(metrics.Handler()))
	router.GET("/metrics/json", apihttp.NewMetricsAggregator(metrics, store).GetAggregatedMetrics)

	logger.Info("Server initialized successfully")

	sweepCtx, stopSweep := context.WithCancel(context.Background())
	return &Server{
		router: router,
		httpServer: &http.Server{
			Addr:              net.JoinHostPort(cfg.Server.Host, cfg.Server.Port),
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		},
		sessions:  sessions,
		persister: persister,
		store:     store,
		tracer:    tracer,
		logger:    logger,
		config:    cfg,
		metrics:   metrics,
		sweepCtx:  sweepCtx,
		stopSweep: stopSweep,
	}, nil
}

func loadDefaultTree(seedFile string) (vfs.Tree, error) {
	if seedFile == "" {
		return vfs.DefaultTree(), nil
	}
	tree, err := vfs.LoadSeedFile(seedFile)
	if err != nil {
		return vfs.Tree{}, fmt.Errorf("failed to load seed file: %w", err)
	}
	return tree, nil
}

// Router returns the HTTP handler.
func (s *Server) Router() http.Handler {
	return s.router
}

// Sessions returns the session manager.
func (s *Server) Sessions() *session.Manager {
	return s.sessions
}

// Run starts the HTTP server and the idle session sweeper. It returns
// nil after a clean Close.
func (s *Server) Run() error {
	go s.sessions.Run(s.sweepCtx, sweepInterval)

	s.logger.Info("Starting HTTP server", zap.String("addr", s.httpServer.Addr))
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}

// Close gracefully shuts down the server: it stops accepting requests,
// drains pending tree writes, then releases the store and tracer.
func (s *Server) Close(ctx context.Context) error {
	s.closeOnce.Do(func() {
		s.closeErr = s.close(ctx)
	})
	return s.closeErr
}

func (s *Server) close(ctx context.Context) error {
	s.logger.Info("Shutting down server...")

	var errs []error
	if err := s.httpServer.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("failed to stop http server: %w", err))
	}
	s.stopSweep()

	if err := s.persister.Close(ctx); err != nil {
		s.logger.Error("Pending tree writes lost", zap.Error(err))
		errs = append(errs, fmt.Errorf("failed to drain persister: %w", err))
	}
	if err := s.store.Close(); err != nil {
		s.logger.Error("Failed to close store", zap.Error(err))
		errs = append(errs, fmt.Errorf("failed to close store: %w", err))
	}
	s.tracer.Close()

	// Sync logger before exit
	_ = s.logger.Sync()

	return errors.Join(errs...)
}
