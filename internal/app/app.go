package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	metricnoop "go.opentelemetry.io/otel/metric/noop"

	"ecomcli/internal/config"
	apierrors "ecomcli/internal/errors"
	"ecomcli/internal/exporter"
	"ecomcli/internal/infrastructure"
	customMiddleware "ecomcli/internal/middleware"
	"ecomcli/internal/services"
	handlers "ecomcli/internal/transport/http"
	"ecomcli/internal/validation"
	"ecomcli/internal/websocket"
	"ecomcli/pkg/contracts"
)

// AppName is reported in startup logs and spans
const AppName = "ecom-sales-analyzer"

// Application represents the main application container
type Application struct {
	Config          *config.Config
	Paths           *config.Paths
	Router          *chi.Mux
	Handler         http.Handler
	Server          *http.Server
	AnalysisService *services.AnalysisService
	HealthService   *services.HealthService
	Exporter        *exporter.Exporter
	Hub             *websocket.Hub
	Logger          *slog.Logger
	OTelProviders   *infrastructure.OTelProviders
	Metrics         *infrastructure.AnalysisMetrics
	ErrorHandler    *apierrors.ErrorHandler
}

// NewApplication wires every component from cfg
func NewApplication(cfg *config.Config, logger *slog.Logger) (*Application, error) {
	if logger == nil {
		logger = slog.Default()
	}

	logger.Info("Application starting",
		slog.String("name", AppName),
		slog.String("version", contracts.Version))

	paths, err := config.ResolvePaths(cfg.Paths)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve paths: %w", err)
	}
	if err := paths.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("failed to ensure directories: %w", err)
	}

	otelProviders, err := infrastructure.InitializeOTel(infrastructure.OTelConfigFrom(cfg.Telemetry), logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize OpenTelemetry: %w", err)
	}

	app := &Application{
		Config:        cfg,
		Paths:         paths,
		Logger:        logger,
		OTelProviders: otelProviders,
		ErrorHandler:  apierrors.NewErrorHandler(logger, false),
	}

	if err := app.initializeServices(); err != nil {
		_ = otelProviders.Shutdown(context.Background())
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	app.setupRouter()
	app.createServer()

	return app, nil
}

// initializeServices initializes all application services
func (a *Application) initializeServices() error {
	metrics, err := infrastructure.CreateAnalysisMetrics(a.OTelProviders.Meter)
	if err != nil {
		return fmt.Errorf("failed to create analysis metrics: %w", err)
	}
	a.Metrics = metrics

	a.Hub = websocket.NewHub(a.Config.Server.AllowedOrigins, a.Logger)

	tracer := services.NewAnalysisTracer(metrics)
	a.AnalysisService = services.NewAnalysisService(a.Config.Analysis, a.Paths.DataDir, tracer, a.Logger).
		WithPublisher(a.Hub)
	a.HealthService = services.NewHealthService(a.Paths.DataDir, a.AnalysisService, a.Logger)
	a.Exporter = exporter.NewExporter(a.Paths, a.Logger)

	return nil
}

// setupRouter configures the HTTP router and middleware
func (a *Application) setupRouter() {
	r := chi.NewRouter()

	r.NotFound(a.ErrorHandler.NotFound)
	r.MethodNotAllowed(a.ErrorHandler.MethodNotAllowed)

	r.Use(customMiddleware.RequestID)
	r.Use(customMiddleware.RealIP)
	r.Use(customMiddleware.Recoverer(a.ErrorHandler))

	// Run progress stream, outside the group so upgrades skip rate limiting
	r.Get("/ws", a.Hub.ServeWS)

	r.Group(func(r chi.Router) {
		r.Use(customMiddleware.StructuredLogger(a.Logger))
		r.Use(customMiddleware.HTTPMetrics(a.Metrics))
		r.Use(customMiddleware.SecurityHeaders)
		r.Use(customMiddleware.CORS(a.getCORSConfig()))

		if rl := a.Config.Server.RateLimit; rl.Enabled {
			r.Use(customMiddleware.NewRateLimiter(rl.RPS, rl.Burst, a.ErrorHandler, a.Logger).Handler)
		}

		a.setupAPIRoutes(r)
	})

	if a.OTelProviders.PrometheusHTTP != nil {
		r.Handle("/metrics", a.OTelProviders.PrometheusHTTP)
	}

	a.Router = r

	// HTTP metrics are recorded per route by HTTPMetrics; otelhttp only traces
	opts := []otelhttp.Option{otelhttp.WithMeterProvider(metricnoop.NewMeterProvider())}
	if a.OTelProviders.TracerProvider != nil {
		opts = append(opts, otelhttp.WithTracerProvider(a.OTelProviders.TracerProvider))
	}
	a.Handler = otelhttp.NewHandler(r, AppName, opts...)
}

// setupAPIRoutes mounts the JSON API under /api
func (a *Application) setupAPIRoutes(r chi.Router) {
	r.Route("/api", func(r chi.Router) {
		r.Use(render.SetContentType(render.ContentTypeJSON))

		healthHandler := handlers.NewHealthHandler(a.HealthService, a.Logger)
		r.Get("/health", healthHandler.HealthCheck)
		r.Get("/health/ready", healthHandler.ReadinessCheck)
		r.Get("/health/live", healthHandler.LivenessCheck)
		r.Get("/version", healthHandler.Version)

		analysisHandler := handlers.NewAnalysisHandler(a.AnalysisService, a.Config.Server.RunTimeout, a.Logger, a.ErrorHandler).
			WithExporter(a.Exporter)
		r.Mount("/analysis", analysisHandler.Routes())
	})
}

// getCORSConfig builds the CORS settings from the server config
func (a *Application) getCORSConfig() customMiddleware.CORSConfig {
	return customMiddleware.CORSConfig{
		AllowedOrigins: a.Config.Server.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", customMiddleware.RequestIDHeader},
		ExposedHeaders: []string{customMiddleware.RequestIDHeader},
		MaxAge:         300,
		Logger:         a.Logger,
	}
}

// createServer creates the HTTP server
func (a *Application) createServer() {
	a.Server = &http.Server{
		Addr:           fmt.Sprintf(":%d", a.Config.Server.Port),
		Handler:        a.Handler,
		ReadTimeout:    a.Config.Server.ReadTimeout,
		WriteTimeout:   a.Config.Server.WriteTimeout,
		IdleTimeout:    a.Config.Server.IdleTimeout,
		MaxHeaderBytes: a.Config.Server.MaxHeaderBytes,
	}
}

// Run serves HTTP until ctx is cancelled, SIGINT or SIGTERM arrives, or
// the listener fails, then shuts down gracefully
func (a *Application) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	a.performStartupHealthCheck(ctx)

	go a.Hub.Run(ctx)

	serverErr := make(chan error, 1)
	go func() {
		a.Logger.InfoContext(ctx, "HTTP server listening",
			slog.String("address", a.Server.Addr),
			slog.String("data_dir", a.Paths.DataDir),
			slog.String("reports_dir", a.Paths.ReportsDir))
		if err := a.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		if err != nil {
			a.shutdownTelemetry(context.Background())
			return fmt.Errorf("server error: %w", err)
		}
	case <-ctx.Done():
		a.Logger.Info("Received shutdown signal")
	}

	return a.Stop(context.Background())
}

// Stop gracefully stops the server and flushes telemetry
func (a *Application) Stop(ctx context.Context) error {
	a.Logger.InfoContext(ctx, "Shutting down application")

	shutdownCtx, cancel := context.WithTimeout(ctx, a.Config.Server.ShutdownTimeout)
	defer cancel()

	a.Hub.Stop()

	if err := a.Server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}

	a.shutdownTelemetry(shutdownCtx)

	a.Logger.InfoContext(ctx, "Application shutdown complete")
	return nil
}

func (a *Application) shutdownTelemetry(ctx context.Context) {
	if a.OTelProviders == nil {
		return
	}
	if err := a.OTelProviders.Shutdown(ctx); err != nil {
		a.Logger.ErrorContext(ctx, "Error shutting down OpenTelemetry", slog.String("error", err.Error()))
	}
}

// performStartupHealthCheck logs warnings for an unusable data or reports
// directory. Serving continues either way.
func (a *Application) performStartupHealthCheck(ctx context.Context) {
	v := validation.NewFileValidator(a.Logger)

	if err := v.ValidateOutputDirectory(a.Paths.ReportsDir); err != nil {
		a.Logger.WarnContext(ctx, "Reports directory unusable, exports will fail",
			slog.String("error", err.Error()))
	}

	check, err := v.CheckDataset(a.Paths.DataDir, a.Config.Analysis.Files)
	if err != nil {
		a.Logger.WarnContext(ctx, "Data directory unusable", slog.String("error", err.Error()))
		return
	}
	if !check.Complete() {
		a.Logger.WarnContext(ctx, "Dataset files missing, analysis runs will fail until they are added",
			slog.String("data_dir", check.Dir),
			slog.Any("missing", check.Missing))
		return
	}
	a.Logger.InfoContext(ctx, "Startup health check passed",
		slog.Bool("has_reviews", check.HasReviews))
}
