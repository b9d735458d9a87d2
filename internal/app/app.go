package app

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"golang.org/x/sync/errgroup"

	"github.com/zygimantas124/pension-fund-lt/internal/config"
	"github.com/zygimantas124/pension-fund-lt/internal/dataset"
	apierrors "github.com/zygimantas124/pension-fund-lt/internal/errors"
	"github.com/zygimantas124/pension-fund-lt/internal/i18n"
	"github.com/zygimantas124/pension-fund-lt/internal/infrastructure"
	customMiddleware "github.com/zygimantas124/pension-fund-lt/internal/middleware"
	"github.com/zygimantas124/pension-fund-lt/internal/services"
	transporthttp "github.com/zygimantas124/pension-fund-lt/internal/transport/http"
	"github.com/zygimantas124/pension-fund-lt/pkg/contracts"
)

// systemMetricsInterval is how often runtime gauges are refreshed.
const systemMetricsInterval = 15 * time.Second

// Application represents the main application container
type Application struct {
	Config        *config.Config
	Paths         *config.Paths
	Router        *chi.Mux
	Server        *http.Server
	Logger        *slog.Logger
	Dataset       *dataset.Dataset
	Catalog       *i18n.Catalog
	Services      *ServiceContainer
	OTelProviders *infrastructure.OTelProviders
	Metrics       *infrastructure.BusinessMetrics
	SystemMetrics *infrastructure.SystemMetricsCollector
}

// ServiceContainer holds all application services
type ServiceContainer struct {
	Fund   *services.FundService
	Health *services.HealthService
}

// NewApplication loads configuration and builds the application.
func NewApplication() (*Application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	return New(cfg, logger)
}

// New builds the application from cfg. A missing dataset file is not fatal: the
// server starts degraded and fund queries answer 503 until a snapshot is built.
func New(cfg *config.Config, logger *slog.Logger) (*Application, error) {
	if logger == nil {
		logger = infrastructure.GetLogger()
	}

	logger.Info("Application starting",
		slog.String("name", config.AppName),
		slog.String("version", contracts.Version),
		slog.String("git_commit", contracts.GitCommit))

	paths, err := cfg.ResolvePaths()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve paths: %w", err)
	}
	if err := paths.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("failed to ensure directories: %w", err)
	}
	paths.LogPathResolution(logger)

	app := &Application{
		Config: cfg,
		Paths:  paths,
		Logger: logger,
	}

	if err := app.initializeServices(); err != nil {
		return nil, err
	}

	app.setupRouter()
	app.createServer()

	return app, nil
}

// initializeServices wires observability, the dataset and the services.
func (a *Application) initializeServices() error {
	ctx := context.Background()

	providers, err := infrastructure.InitializeOTel(
		infrastructure.OTelConfigFrom(a.Config.Observability, contracts.Version), a.Logger)
	if err != nil {
		return fmt.Errorf("failed to initialize OpenTelemetry: %w", err)
	}
	a.OTelProviders = providers

	a.Metrics, err = infrastructure.CreateBusinessMetrics(providers.Meter)
	if err != nil {
		return fmt.Errorf("failed to create business metrics: %w", err)
	}

	a.SystemMetrics, err = infrastructure.NewSystemMetricsCollector(providers.Meter, systemMetricsInterval)
	if err != nil {
		return fmt.Errorf("failed to create system metrics collector: %w", err)
	}

	a.Catalog, err = i18n.Load()
	if err != nil {
		return apierrors.NewConfigError("failed to load translations", err)
	}

	a.Dataset, err = dataset.Load(a.Paths.DatasetFile, a.Logger)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		infrastructure.WithError(a.Logger, err).Warn("Dataset file not found, starting without data",
			slog.String("path", a.Paths.DatasetFile),
			slog.String("action", "run the processor to build the snapshot"))
		a.Dataset = nil
	case err != nil:
		return apierrors.NewStorageError("failed to load dataset", err).
			WithContext("path", a.Paths.DatasetFile)
	default:
		a.Metrics.DatasetRecords.Add(ctx, int64(a.Dataset.Len()))
	}

	fund := services.NewFundService(a.Dataset, a.Catalog, a.Logger,
		services.WithCache(a.Config.Cache.TTL, a.Config.Cache.CleanupInterval),
		services.WithTracer(providers.Tracer),
		services.WithMetrics(a.Metrics),
	)
	health := services.NewHealthService(
		contracts.Version, contracts.BuildTime, contracts.GitCommit,
		a.Dataset, a.SystemMetrics, a.Logger)

	a.Services = &ServiceContainer{
		Fund:   fund,
		Health: health,
	}

	a.Logger.Info("Services initialized",
		slog.Bool("dataset_loaded", a.Dataset != nil),
		slog.Bool("cache_enabled", a.Config.Cache.TTL > 0))
	return nil
}

// setupRouter configures middleware and routes
func (a *Application) setupRouter() {
	r := chi.NewRouter()
	errorHandler := apierrors.NewErrorHandler(a.Logger, a.isDevelopmentMode())

	r.NotFound(errorHandler.NotFound)
	r.MethodNotAllowed(errorHandler.MethodNotAllowed)

	r.Use(customMiddleware.RequestID)
	r.Use(customMiddleware.RealIP)

	// preflights must be answered before routing, which rejects OPTIONS with 405
	if a.Config.Security.EnableCORS {
		r.Use(customMiddleware.CORS(a.getCORSConfig()))
	}

	// scrapes stay out of request logs, traces and the rate limit
	r.Method(http.MethodGet, config.MetricsEndpoint, transporthttp.NewMetricsHandler(a.OTelProviders.PrometheusHTTP))

	r.Group(func(r chi.Router) {
		otelMiddleware, err := customMiddleware.NewOTelMiddleware(a.OTelProviders, a.Metrics)
		if err != nil {
			a.Logger.Error("Failed to create OpenTelemetry middleware", slog.String("error", err.Error()))
		} else {
			r.Use(otelMiddleware.Handler)
		}

		r.Use(customMiddleware.StructuredLogger(a.Logger))
		r.Use(errorHandler.RecoveryMiddleware)
		r.Use(customMiddleware.SecurityHeaders)

		if a.Config.Security.RateLimit.Enabled {
			r.Use(customMiddleware.NewRateLimiter(
				a.Config.Security.RateLimit.RPS,
				a.Config.Security.RateLimit.Burst,
				a.Logger,
			).Handler)
		}

		transporthttp.NewHealthHandler(a.Services.Health, a.Logger).RegisterRoutes(r)

		r.Route(config.APIBasePath, func(r chi.Router) {
			r.Use(render.SetContentType(render.ContentTypeJSON))
			r.Use(customMiddleware.Compress(5))
			transporthttp.NewFundHandler(a.Services.Fund, a.Logger).RegisterRoutes(r)
		})
	})

	a.Router = r
}

func (a *Application) getCORSConfig() customMiddleware.CORSConfig {
	cfg := customMiddleware.CORSConfig{
		AllowedOrigins: a.Config.Security.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders: []string{
			"Accept",
			"Content-Type",
			"X-Request-ID",
			"X-Requested-With",
		},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
		Logger:         a.Logger,
	}

	a.Logger.Info("CORS configured", slog.Any("allowed_origins", cfg.AllowedOrigins))
	return cfg
}

// isDevelopmentMode enables stack traces in error responses.
func (a *Application) isDevelopmentMode() bool {
	return a.Config.Observability.Environment == "development"
}

// createServer creates the HTTP server
func (a *Application) createServer() {
	a.Server = &http.Server{
		Addr:           fmt.Sprintf(":%d", a.Config.Server.Port),
		Handler:        a.Router,
		ReadTimeout:    a.Config.Server.ReadTimeout,
		WriteTimeout:   a.Config.Server.WriteTimeout,
		IdleTimeout:    a.Config.Server.IdleTimeout,
		MaxHeaderBytes: a.Config.Server.MaxHeaderBytes,
	}
}

// Serve accepts connections on ln until ctx is cancelled, then shuts down
// gracefully. Background collectors run for the lifetime of ctx.
func (a *Application) Serve(ctx context.Context, ln net.Listener) error {
	a.Logger.InfoContext(ctx, "Starting application",
		slog.String("address", ln.Addr().String()),
		slog.String("level", a.Config.Logging.Level),
		slog.String("dataset", a.Paths.DatasetFile))

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.SystemMetrics.Start(gctx)
		return nil
	})

	g.Go(func() error {
		if err := a.Server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		return a.Stop(context.Background())
	})

	return g.Wait()
}

// Stop gracefully stops the application
func (a *Application) Stop(ctx context.Context) error {
	a.Logger.InfoContext(ctx, "Shutting down application")

	shutdownCtx, cancel := context.WithTimeout(ctx, a.Config.Server.ShutdownTimeout)
	defer cancel()

	if err := a.Server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}

	if a.OTelProviders != nil {
		if err := a.OTelProviders.Shutdown(shutdownCtx); err != nil {
			a.Logger.ErrorContext(ctx, "Error shutting down OpenTelemetry", slog.String("error", err.Error()))
		}
	}

	a.Logger.InfoContext(ctx, "Application shutdown complete")
	if err := infrastructure.CloseLogFile(); err != nil {
		return fmt.Errorf("failed to close log file: %w", err)
	}
	return nil
}

// Run listens on the configured port until SIGINT or SIGTERM.
func (a *Application) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ln, err := net.Listen("tcp", a.Server.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", a.Server.Addr, err)
	}

	return a.Serve(ctx, ln)
}
