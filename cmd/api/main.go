package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/buildlink/onboarding-api/config"
	"github.com/buildlink/onboarding-api/internal/draftstore"
	"github.com/buildlink/onboarding-api/internal/handlers"
	"github.com/buildlink/onboarding-api/internal/middleware"
	"github.com/buildlink/onboarding-api/internal/remote"
	"github.com/buildlink/onboarding-api/internal/session"
	"github.com/buildlink/onboarding-api/internal/submit"
	"github.com/buildlink/onboarding-api/pkg/db"
	"github.com/buildlink/onboarding-api/pkg/httpclient"
	"github.com/buildlink/onboarding-api/pkg/jwt"
	"github.com/buildlink/onboarding-api/pkg/logger"
	"github.com/buildlink/onboarding-api/pkg/metrics"
	"github.com/buildlink/onboarding-api/pkg/objectstorage"
	"github.com/buildlink/onboarding-api/pkg/profiling"
	"github.com/buildlink/onboarding-api/pkg/tracing"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"
)

// attachBodyLimit is the request body cap for file attach endpoints. The
// per-file limit is 10 MB, but payloads arrive base64-encoded inside a JSON
// envelope, so the raw body needs roughly 4/3 headroom.
const attachBodyLimit = 16 * 1024 * 1024

// buildDraftStore selects the draft store backend from configuration and
// returns it together with a readiness probe for the health endpoint.
func buildDraftStore(ctx context.Context, cfg *config.Config) (draftstore.Store, func(ctx context.Context) error, func(), error) {
	switch cfg.DraftStore.Backend {
	case config.DraftBackendMemory:
		logger.Warn("Using in-memory draft store - drafts will not survive a restart")
		store := draftstore.NewMemoryStore()
		return store, func(context.Context) error { return nil }, func() {}, nil

	case config.DraftBackendRedis:
		store, err := draftstore.NewRedisStore(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			return nil, nil, nil, err
		}
		cleanup := func() {
			if closeErr := store.Close(); closeErr != nil {
				logger.Error("Failed to close Redis connection", zap.Error(closeErr))
			}
		}
		return store, store.Ping, cleanup, nil

	case config.DraftBackendPostgres:
		pool, err := db.NewPool(ctx, db.PoolConfig{
			URL:      cfg.Database.URL,
			MaxConns: cfg.Database.MaxConns,
			MinConns: cfg.Database.MinConns,
		})
		if err != nil {
			return nil, nil, nil, err
		}
		store := draftstore.NewPostgresStore(pool)
		return store, pool.Ping, pool.Close, nil

	default:
		return nil, nil, nil, fmt.Errorf("unknown draft store backend: %q", cfg.DraftStore.Backend)
	}
}

// buildDocumentAPI picks the document upload path: the document service
// over HTTP, or direct S3-compatible object storage.
func buildDocumentAPI(cfg *config.Config, httpClient httpclient.Client) (remote.DocumentAPI, error) {
	if !cfg.Remote.UploadViaStorage {
		return remote.NewDocumentClient(cfg.Remote.DocumentServiceURL, cfg.Remote.ServiceToken, httpClient), nil
	}

	storageClient, err := objectstorage.NewClient(
		cfg.ObjectStorage.AccessKeyID,
		cfg.ObjectStorage.SecretAccessKey,
		cfg.ObjectStorage.BucketName,
		cfg.ObjectStorage.Endpoint,
		cfg.ObjectStorage.Region,
	)
	if err != nil {
		return nil, err
	}
	return remote.NewStorageDocumentClient(storageClient), nil
}

func registerOnboardingRoutes(
	router *gin.Engine,
	cfg *config.Config,
	tokenManager *jwt.TokenManager,
	onboardingHandler *handlers.OnboardingHandler,
	startRateLimiter, generalRateLimiter *middleware.RateLimiter,
) {
	v1 := router.Group("/api/v1/onboarding")

	// Session creation (public)
	v1.POST("/start",
		startRateLimiter.Middleware(),
		middleware.BodySizeLimitMiddleware(64*1024),
		onboardingHandler.Start)

	// Wizard routes (protected)
	flow := v1.Group("")
	flow.Use(generalRateLimiter.Middleware())
	flow.Use(middleware.SessionMiddleware(tokenManager, cfg.Session.CookieDomain, cfg.Session.CookieSecure))

	flow.GET("/state", onboardingHandler.GetState)
	flow.PUT("/sections/:section", middleware.BodySizeLimitMiddleware(256*1024), onboardingHandler.UpdateSection)
	flow.POST("/sections/:section/files", middleware.BodySizeLimitMiddleware(attachBodyLimit), onboardingHandler.AttachFile)
	flow.DELETE("/sections/:section/files", middleware.BodySizeLimitMiddleware(64*1024), onboardingHandler.RemoveFile)

	flow.POST("/projects", onboardingHandler.AddProject)
	flow.PUT("/projects/:id", middleware.BodySizeLimitMiddleware(256*1024), onboardingHandler.UpdateProject)
	flow.DELETE("/projects/:id", onboardingHandler.RemoveProject)

	flow.POST("/next", onboardingHandler.Next)
	flow.POST("/prev", onboardingHandler.Prev)
	flow.POST("/submit", onboardingHandler.Submit)
}

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	err = logger.Initialize(logger.Config{
		Level:       cfg.Logging.Level,
		LogDir:      cfg.Logging.Dir,
		Environment: cfg.Server.AppEnv,
		ServiceName: cfg.Observability.ServiceName,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Starting BuildLink Onboarding API",
		zap.String("version", cfg.Observability.ServiceVersion),
		zap.String("environment", cfg.Server.AppEnv),
	)

	// Initialize distributed tracing
	tracerShutdown, err := tracing.InitTracer(
		cfg.Observability.ServiceName,
		cfg.Observability.ServiceNamespace,
		cfg.Observability.ServiceVersion,
		cfg.Observability.ServiceInstanceID,
		cfg.Server.AppEnv,
		cfg.Observability.CollectorEndpoint,
	)
	if err != nil {
		logger.Fatal("Failed to initialize tracer", zap.Error(err))
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if shutdownErr := tracerShutdown(ctx); shutdownErr != nil {
			logger.Error("Failed to shutdown tracer", zap.Error(shutdownErr))
		}
	}()

	// Initialize continuous profiling
	profilerStop, err := profiling.InitProfiler(profiling.Config{
		Enabled:               cfg.Profiling.Enabled,
		Endpoint:              cfg.Profiling.Endpoint,
		AppName:               cfg.Profiling.AppName,
		SampleTypes:           cfg.Profiling.SampleTypes,
		UploadIntervalSeconds: cfg.Profiling.UploadIntervalSeconds,
	}, cfg.Server.AppEnv)
	if err != nil {
		logger.Fatal("Failed to initialize profiler", zap.Error(err))
	}
	defer profilerStop()

	// Start infrastructure metrics collection
	metrics.RecordInfrastructureMetrics()

	// Initialize the draft store backend
	store, storeReady, storeCleanup, err := buildDraftStore(context.Background(), cfg)
	if err != nil {
		logger.Fatal("Failed to initialize draft store", zap.Error(err))
	}
	defer storeCleanup()

	// Initialize HTTP client for remote service calls
	httpClient := httpclient.NewStandardClient()

	// Initialize remote service clients
	profileClient := remote.NewProfileClient(cfg.Remote.ProfileServiceURL, cfg.Remote.ServiceToken, httpClient)
	documentAPI, err := buildDocumentAPI(cfg, httpClient)
	if err != nil {
		logger.Fatal("Failed to initialize document client", zap.Error(err))
	}
	projectClient := remote.NewProjectClient(cfg.Remote.ProjectServiceURL, cfg.Remote.ServiceToken, httpClient)

	// Submission orchestrator and session registry
	orchestrator := submit.NewOrchestrator(profileClient, documentAPI, projectClient, store)
	tokenManager := jwt.NewTokenManager(cfg.Session.JWTSecret, cfg.Session.JWTIssuer, cfg.Session.TTLHours)
	registry := session.NewRegistry(
		time.Duration(cfg.Session.RegistryTTLMins)*time.Minute,
		store,
		orchestrator,
	)

	// Initialize handlers
	onboardingHandler := handlers.NewOnboardingHandler(registry, tokenManager, cfg.Session.CookieDomain, cfg.Session.CookieSecure)
	healthHandler := handlers.NewHealthHandler(storeReady)

	// Set up Gin router
	gin.SetMode(cfg.Server.GinMode)
	router := gin.New()

	// Global middleware
	router.Use(gin.Recovery())
	router.Use(otelgin.Middleware(cfg.Observability.ServiceName))
	router.Use(middleware.ObservabilityMiddleware())
	router.Use(middleware.SecurityHeadersMiddleware())

	// CORS configuration - SECURITY: Only allow specific origins
	allowedOrigins := cfg.Server.AllowedOrigins
	if cfg.IsDevelopment() {
		allowedOrigins = append(allowedOrigins, "http://localhost:3000", "http://127.0.0.1:3000")
	}

	router.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "traceparent", "tracestate"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true, // Required for session cookies
		MaxAge:           12 * time.Hour,
	}))

	// SECURITY: Rate limiters to prevent abuse and DoS attacks
	generalRateLimiter := middleware.NewRateLimiter(50, 100) // 50 req/sec, burst of 100
	startRateLimiter := middleware.NewRateLimiter(1, 5)      // 1 req/sec, burst of 5 (session creation)

	// Utility endpoints (not versioned - operational endpoints)
	api := router.Group("/api")
	api.GET("/healthcheck", generalRateLimiter.Middleware(), healthHandler.Healthcheck)
	api.GET("/metrics", generalRateLimiter.Middleware(), gin.WrapH(promhttp.Handler()))

	// Onboarding wizard routes
	registerOnboardingRoutes(router, cfg, tokenManager, onboardingHandler, startRateLimiter, generalRateLimiter)

	// Create HTTP server
	srv := &http.Server{
		Addr:              "0.0.0.0:" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 15 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20, // SECURITY: 1 MB max header size
	}

	// Start server in a goroutine
	go func() {
		logger.Info("Server started", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}
