package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"session-hub/internal/adapter/gateway"
	adapterhandler "session-hub/internal/adapter/handler"
	"session-hub/internal/infrastructure/kvstore"
	"session-hub/internal/infrastructure/objectstore"
	"session-hub/internal/infrastructure/postgres"
	infratoken "session-hub/internal/infrastructure/token"
	"session-hub/internal/usecase"

	"session-hub/config"
	appmiddleware "session-hub/middleware"
	"session-hub/utils/logger"
	"session-hub/utils/otel"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"
	"golang.org/x/sync/errgroup"
)

func main() {
	// Handle healthcheck subcommand (for Docker healthcheck in distroless image)
	if len(os.Args) > 1 && os.Args[1] == "healthcheck" {
		if err := runHealthcheck(); err != nil {
			fmt.Fprintf(os.Stderr, "Healthcheck failed: %v\n", err)
			os.Exit(1)
		}
		os.Exit(0)
	}

	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	// Initialize OpenTelemetry
	otelCfg := otel.ConfigFromEnv()
	otelShutdown, err := otel.InitProvider(ctx, otelCfg)
	if err != nil {
		slog.Warn("failed to initialize OpenTelemetry, continuing without tracing", "error", err)
		otelCfg.Enabled = false
	}

	// Initialize structured logger
	logger.Init(otelCfg.Enabled)

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.ErrorContext(ctx, "failed to load configuration", "error", err)
		os.Exit(1)
	}

	slog.InfoContext(ctx, "configuration loaded",
		"kratos_url", cfg.KratosURL,
		"redis_addr", cfg.RedisAddr,
		"minio_endpoint", cfg.MinioEndpoint,
		"port", cfg.Port)

	// Infrastructure
	sessionStore := kvstore.NewRedisStoreWithOptions(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	defer sessionStore.Close()

	if err := sessionStore.Ping(ctx); err != nil {
		slog.ErrorContext(ctx, "failed to reach session store", "error", err)
		os.Exit(1)
	}

	storage, err := objectstore.NewMinioStorage(objectstore.Config{
		Endpoint:      cfg.MinioEndpoint,
		AccessKey:     cfg.MinioAccessKey,
		SecretKey:     cfg.MinioSecretKey,
		UseSSL:        cfg.MinioUseSSL,
		Bucket:        cfg.MinioBucket,
		PublicBaseURL: cfg.StoragePublicURL,
		UploadURLTTL:  cfg.UploadURLTTL,
	})
	if err != nil {
		slog.ErrorContext(ctx, "failed to create object storage client", "error", err)
		os.Exit(1)
	}
	if err := storage.EnsureBucket(ctx); err != nil {
		slog.ErrorContext(ctx, "failed to ensure storage bucket", "error", err)
		os.Exit(1)
	}

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		slog.ErrorContext(ctx, "failed to create database pool", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	userRepository := postgres.NewUserRepository(pool, slog.Default())
	kratosGateway := gateway.NewKratosGateway(cfg.KratosURL, 5*time.Second)
	tokenCodec := infratoken.NewJWTCodec(infratoken.JWTConfig{
		Secret: cfg.TokenSecret,
		Issuer: cfg.TokenIssuer,
		TTL:    cfg.TokenTTL,
	})

	// Usecases
	sessionBroker := usecase.NewSessionKeyBroker(sessionStore, slog.Default())
	orchestrator := usecase.NewAuthOrchestrator(userRepository, sessionBroker, slog.Default())
	authorize := usecase.NewAuthorize(sessionBroker)
	uploadBroker := usecase.NewUploadBroker(storage, slog.Default())

	// Handlers
	authHandler := adapterhandler.NewAuthHandler(
		orchestrator, authorize, kratosGateway, tokenCodec, cfg.TokenTTL, cfg.SecureCookies)
	uploadHandler := adapterhandler.NewUploadHandler(uploadBroker, authorize, authHandler)
	userHandler := adapterhandler.NewUserHandler(userRepository, authorize, authHandler)
	internalHandler := adapterhandler.NewInternalHandler(authorize)
	healthHandler := adapterhandler.NewHealthHandler()

	// Setup Echo server
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = adapterhandler.NewRequestValidator()

	// Security middleware
	e.Use(appmiddleware.SecurityHeaders())

	// OpenTelemetry tracing
	if otelCfg.Enabled {
		e.Use(otelecho.Middleware(otelCfg.ServiceName))
		e.Use(appmiddleware.OTelStatusMiddleware())
	}

	// Request logging
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		Skipper: func(c echo.Context) bool {
			return c.Request().URL.Path == "/health"
		},
		LogStatus:   true,
		LogURI:      true,
		LogError:    true,
		LogMethod:   true,
		LogLatency:  true,
		HandleError: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			rctx := c.Request().Context()
			if v.Error == nil {
				slog.InfoContext(rctx, "request completed",
					"method", v.Method,
					"uri", v.URI,
					"status", v.Status,
					"latency_ms", v.Latency.Milliseconds())
			} else {
				slog.ErrorContext(rctx, "request failed",
					"method", v.Method,
					"uri", v.URI,
					"status", v.Status,
					"latency_ms", v.Latency.Milliseconds(),
					"error", v.Error.Error())
			}
			return nil
		},
	}))

	e.Use(middleware.Recover())

	// Rate limiters per endpoint group
	sessionRL := appmiddleware.NewRateLimiter(60.0/60.0, 10) // 60 req/min
	uploadRL := appmiddleware.NewRateLimiter(20.0/60.0, 5)   // 20 req/min
	internalRL := appmiddleware.NewRateLimiter(100.0/60.0, 20)

	// Public routes
	e.GET("/auth/session", authHandler.HandleSession, sessionRL.Middleware())
	e.POST("/auth/logout", authHandler.HandleLogout, sessionRL.Middleware())
	e.POST("/uploads", uploadHandler.HandleBegin, uploadRL.Middleware())
	e.POST("/uploads/promote", uploadHandler.HandlePromote, uploadRL.Middleware())
	e.PATCH("/users/me", userHandler.HandleUpdateMe, sessionRL.Middleware())
	e.GET("/health", healthHandler.Handle)

	// Internal routes (protected by shared secret)
	internalGroup := e.Group("/internal",
		internalRL.Middleware(),
	)
	if cfg.AuthSharedSecret != "" {
		internalGroup.Use(appmiddleware.InternalAuth(cfg.AuthSharedSecret))
	}
	internalGroup.GET("/sessions/:key", internalHandler.HandleResolveSession)

	// Start server with errgroup for graceful shutdown
	address := fmt.Sprintf(":%s", cfg.Port)
	slog.InfoContext(ctx, "starting session-hub server", "address", address)

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := e.Start(address); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gCtx.Done()
		slog.Info("shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return e.Shutdown(shutdownCtx)
	})

	g.Go(func() error {
		<-gCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return otelShutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("shutdown error", "error", err)
		os.Exit(1)
	}

	slog.Info("server exited properly")
}

// runHealthcheck performs a health check against the local server.
func runHealthcheck() error {
	port := os.Getenv("PORT")
	if port == "" {
		port = "8888"
	}

	client := &http.Client{Timeout: 2 * time.Second}
	resp, err := client.Get(fmt.Sprintf("http://127.0.0.1:%s/health", port))
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health endpoint returned status: %d", resp.StatusCode)
	}
	return nil
}
