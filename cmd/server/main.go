package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/vietart/artmarket/internal"
	"github.com/vietart/artmarket/internal/auth"
	"github.com/vietart/artmarket/internal/billing"
	"github.com/vietart/artmarket/internal/bootstrap"
	"github.com/vietart/artmarket/internal/handler/api"
	"github.com/vietart/artmarket/internal/middleware"
	"github.com/vietart/artmarket/internal/postgres"
	"github.com/vietart/artmarket/internal/router"
	"github.com/vietart/artmarket/internal/routes"
	"github.com/vietart/artmarket/internal/service"
	"github.com/vietart/artmarket/internal/shipping"
	"github.com/vietart/artmarket/internal/telemetry"
)

func run() error {
	ctx := context.Background()

	// Load configuration
	cfg, err := internal.NewConfig()
	if err != nil {
		return fmt.Errorf("config initialization failed: %w", err)
	}

	// Configure logger
	logger := internal.NewLogger(os.Stdout, cfg.Env, cfg.LogLevel)

	// Initialize database/sql connection for migrations
	logger.Info("Connecting to database...")
	sqlDB, err := sql.Open("pgx", cfg.DatabaseUrl)
	if err != nil {
		return fmt.Errorf("database connection failed: %w", err)
	}
	defer sqlDB.Close()

	if err := sqlDB.Ping(); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}
	logger.Info("Database connection established")

	// Run migrations
	logger.Info("Running database migrations...")
	if err := internal.RunMigrations(sqlDB); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	logger.Info("Database migrations completed successfully")

	// Initialize pgx connection pool for application
	pool, err := postgres.Connect(ctx, cfg.DatabaseUrl)
	if err != nil {
		return fmt.Errorf("failed to create connection pool: %w", err)
	}
	defer pool.Close()

	// Initialize stores
	productStore := postgres.NewProductStore(pool)
	artistStore := postgres.NewArtistStore(pool)
	categoryStore := postgres.NewCategoryStore(pool)
	cartStore := postgres.NewCartStore(pool)
	orderStore := postgres.NewOrderStore(pool)
	userStore := postgres.NewUserStore(pool)

	// Seed the initial admin account
	if err := bootstrap.EnsureAdmin(ctx, userStore, &bootstrap.AdminConfig{
		Email:     cfg.Admin.Email,
		Password:  cfg.Admin.Password,
		FirstName: cfg.Admin.FirstName,
		LastName:  cfg.Admin.LastName,
	}, logger); err != nil {
		return fmt.Errorf("admin bootstrap failed: %w", err)
	}

	// Initialize billing provider. Without a Stripe key card payments run
	// against the mock, which is only acceptable outside production.
	var billingProvider billing.Provider
	if cfg.Stripe.SecretKey != "" {
		billingProvider, err = billing.NewStripeProvider(cfg.Stripe.SecretKey, cfg.Stripe.WebhookSecret)
		if err != nil {
			return fmt.Errorf("failed to initialize Stripe provider: %w", err)
		}
		logger.Info("Stripe billing provider initialized")
	} else {
		if cfg.Env == "prod" {
			return fmt.Errorf("STRIPE_SECRET_KEY must be set in production environment")
		}
		billingProvider = billing.NewMockProvider()
		logger.Warn("STRIPE_SECRET_KEY not set, using mock billing provider")
	}

	// Initialize metrics
	metrics := middleware.NewMetrics("artmarket")
	businessMetrics := telemetry.NewBusinessMetrics("artmarket")

	// Initialize token manager and services
	tokens := auth.NewTokenManager(cfg.JWT.AccessSecret, cfg.JWT.RefreshSecret, cfg.JWT.AccessTTL, cfg.JWT.RefreshTTL)

	productService := service.NewProductService(productStore, artistStore, logger, businessMetrics)
	cartService := service.NewCartService(cartStore, productStore, logger, businessMetrics)
	userService := service.NewUserService(userStore, tokens, logger, businessMetrics)
	orderService := service.NewOrderService(
		orderStore, cartStore, productStore, userStore,
		shipping.NewDefaultCalculator(), billingProvider,
		logger, businessMetrics,
	)

	// Build route dependencies
	authenticator := middleware.NewAuthenticator(tokens)
	authRateLimiter := middleware.NewRateLimiter(middleware.StrictRateLimiterConfig())
	defer authRateLimiter.Stop()

	deps := routes.APIDeps{
		Auth:            authenticator,
		AuthLimiter:     authRateLimiter.Middleware,
		AuthHandler:     api.NewAuthHandler(userService, logger),
		ProductHandler:  api.NewProductHandler(productService, logger),
		ArtistHandler:   api.NewArtistHandler(artistStore, logger),
		CategoryHandler: api.NewCategoryHandler(categoryStore, logger),
		CartHandler:     api.NewCartHandler(cartService, logger),
		OrderHandler:    api.NewOrderHandler(orderService, logger),
		UserHandler:     api.NewUserHandler(userService, logger),
		WebhookHandler:  api.NewWebhookHandler(billingProvider, orderService, logger),
		HealthHandler:   api.NewHealthHandler(pool),
		MetricsHandler:  metrics.Handler(),
	}

	// Create router and register routes
	defaultRateLimiter := middleware.NewRateLimiter(middleware.DefaultRateLimiterConfig())
	defer defaultRateLimiter.Stop()

	r := router.New(
		router.Recovery(logger),
		middleware.RequestID,
		metrics.Middleware,
		router.CORS(strings.Split(cfg.CORS.AllowedOrigins, ",")),
		middleware.MaxBodySize(middleware.DefaultMaxBodySize),
		middleware.Timeout(middleware.DefaultTimeout),
		defaultRateLimiter.Middleware,
		router.Logger(logger),
	)
	routes.RegisterAPIRoutes(r, deps)

	// Start server with graceful shutdown
	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Starting server", "address", addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case sig := <-stop:
		logger.Info("Shutting down", "signal", sig.String())
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown failed: %w", err)
	}

	logger.Info("Server stopped")
	return nil
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}
