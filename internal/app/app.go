// Package app wires together all dependencies and runs the syncup service.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	goredis "github.com/redis/go-redis/v9"

	"github.com/entremotivator/Syncup/internal/auth"
	"github.com/entremotivator/Syncup/internal/config"
	"github.com/entremotivator/Syncup/internal/entitlement"
	"github.com/entremotivator/Syncup/internal/event"
	"github.com/entremotivator/Syncup/internal/gateway"
	handler "github.com/entremotivator/Syncup/internal/handler/http"
	"github.com/entremotivator/Syncup/internal/repository/postgres"
	redisrepo "github.com/entremotivator/Syncup/internal/repository/redis"
	"github.com/entremotivator/Syncup/internal/service"
	"github.com/entremotivator/Syncup/internal/session"
	"github.com/entremotivator/Syncup/migrations"
	"github.com/entremotivator/Syncup/pkg/database"
	"github.com/entremotivator/Syncup/pkg/health"
	"github.com/entremotivator/Syncup/pkg/httpclient"
	pkgkafka "github.com/entremotivator/Syncup/pkg/kafka"
	"github.com/entremotivator/Syncup/pkg/middleware"
	"github.com/entremotivator/Syncup/pkg/tracing"
)

const sessionPruneInterval = time.Hour

// App holds the long-lived components of the running service.
type App struct {
	cfg            *config.Config
	logger         *slog.Logger
	pool           *pgxpool.Pool
	redisClient    *goredis.Client
	producer       *pkgkafka.Producer
	sessions       *session.Store
	httpServer     *http.Server
	tracerShutdown func(context.Context) error
}

// NewApp creates a new application instance, initializing all dependencies.
func NewApp(cfg *config.Config, logger *slog.Logger) (*App, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Initialize OpenTelemetry tracing.
	tracerShutdown, err := tracing.InitTracer(ctx, tracing.Config{
		ServiceName:    "syncup",
		ServiceVersion: "0.1.0",
		Environment:    cfg.Environment,
		OTLPEndpoint:   cfg.OTLPEndpoint,
		SampleRate:     cfg.TraceSample,
		Enabled:        cfg.TracingEnabled,
	})
	if err != nil {
		return nil, fmt.Errorf("init tracer: %w", err)
	}

	// Initialize PostgreSQL connection pool.
	pgCfg := database.PostgresConfig{
		Host:     cfg.PostgresHost,
		Port:     cfg.PostgresPort,
		User:     cfg.PostgresUser,
		Password: cfg.PostgresPass,
		DBName:   cfg.PostgresDB,
		SSLMode:  cfg.PostgresSSL,
	}

	pool, err := database.NewPostgresPool(ctx, &pgCfg, logger)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}
	logger.Info("connected to PostgreSQL",
		slog.String("host", cfg.PostgresHost),
		slog.Int("port", cfg.PostgresPort),
		slog.String("database", cfg.PostgresDB),
	)
	database.RegisterPoolMetrics(pool, "syncup")

	// Run database migrations.
	if err := database.RunMigrations(ctx, pool, migrations.FS, logger); err != nil {
		pool.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	logger.Info("database migrations completed")

	// Redis backs the purchase cache. The resolver works without it, so a
	// failed connection degrades to uncached reads instead of aborting boot.
	redisClient, err := database.NewRedisClient(ctx, database.RedisConfig{
		Host: cfg.RedisHost,
		Port: cfg.RedisPort,
		DB:   cfg.RedisDB,
	})
	if err != nil {
		logger.Warn("redis unavailable, purchase cache disabled",
			slog.String("addr", cfg.RedisAddr()),
			slog.String("error", err.Error()),
		)
		redisClient = nil
	}

	// Initialize Kafka producer.
	kafkaCfg := pkgkafka.DefaultProducerConfig(cfg.KafkaBrokers)
	producer := pkgkafka.NewProducer(kafkaCfg, logger)
	logger.Info("kafka producer initialized", slog.Any("brokers", cfg.KafkaBrokers))

	// Storefront gateway client behind a circuit breaker.
	baseClient := httpclient.New(httpclient.DefaultConfig())
	cbClient := httpclient.NewCircuitBreakerClient(
		baseClient,
		httpclient.DefaultCircuitBreakerConfig("wordpress"),
		logger,
	)
	gatewayClient := gateway.New(gateway.Config{
		BaseURL:         cfg.WPBaseURL,
		ConsumerKey:     cfg.WCConsumerKey,
		ConsumerSecret:  cfg.WCConsumerSecret,
		TokenTimeout:    cfg.TokenTimeout,
		OrdersTimeout:   cfg.OrdersTimeout,
		ValidateTimeout: cfg.ValidateTimeout,
	}, cbClient, logger)
	if !gatewayClient.Configured() {
		logger.Warn("WP_BASE_URL not set, storefront operations will degrade")
	}

	// Build the dependency graph.
	identityRepo := postgres.NewIdentityRepository(pool)
	orderRepo := postgres.NewOrderRepository(pool)
	productRepo := postgres.NewProductRepository(pool)
	usageRepo := postgres.NewUsageRepository(pool)
	historyRepo := postgres.NewHistoryRepository(pool)

	var purchaseCache *redisrepo.PurchaseCache
	var productCache *redisrepo.ProductCache
	if redisClient != nil {
		purchaseCache = redisrepo.NewPurchaseCache(redisClient, cfg.CacheTTL)
		productCache = redisrepo.NewProductCache(redisClient, cfg.CacheTTL)
	}

	resolver := entitlement.NewResolver(gatewayClient, purchaseCache, logger)
	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.SessionExpiry)
	sessions := session.NewStore(cfg.SessionMaxAge)
	eventProducer := event.NewProducer(producer, logger)

	authService := service.NewAuthService(
		gatewayClient, resolver, identityRepo, usageRepo, sessions,
		jwtManager, eventProducer, cfg.AuthStrategy, logger,
	)
	syncService := service.NewSyncService(
		gatewayClient, identityRepo, orderRepo, productRepo, eventProducer, logger,
	)
	usageService := service.NewUsageService(
		usageRepo, historyRepo, eventProducer, cfg.QueryLimit, logger,
	)

	// Health checks. Postgres is the only hard dependency: the service keeps
	// serving mirrored data when the storefront, Kafka, or Redis is down.
	healthHandler := health.NewHandler()
	healthHandler.Register("postgres", func(ctx context.Context) error {
		return pool.Ping(ctx)
	})
	healthHandler.RegisterNonCritical("kafka", func(ctx context.Context) error {
		return producer.Ping(ctx)
	})
	healthHandler.RegisterNonCritical("gateway", func(ctx context.Context) error {
		return gatewayClient.Ping(ctx)
	})
	if redisClient != nil {
		healthHandler.RegisterNonCritical("redis", func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		})
	}

	// HTTP router.
	corsCfg := middleware.DefaultCORSConfig()
	corsCfg.AllowedOrigins = cfg.CORSAllowedOrigins
	corsCfg.Environment = cfg.Environment

	router := handler.NewRouter(handler.RouterConfig{
		AuthService:   authService,
		SyncService:   syncService,
		UsageService:  usageService,
		Resolver:      resolver,
		Identities:    identityRepo,
		Orders:        orderRepo,
		Products:      productRepo,
		ProductCache:  productCache,
		HealthHandler: healthHandler,
		Logger:        logger,
		CORS:          corsCfg,
	})

	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           router,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return &App{
		cfg:            cfg,
		logger:         logger,
		pool:           pool,
		redisClient:    redisClient,
		producer:       producer,
		sessions:       sessions,
		httpServer:     httpServer,
		tracerShutdown: tracerShutdown,
	}, nil
}

// Run starts the HTTP server and blocks until the context is canceled.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		a.logger.Info("starting HTTP server",
			slog.String("addr", a.httpServer.Addr),
		)
		if err := a.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	go a.pruneSessions(ctx)

	select {
	case <-ctx.Done():
		a.logger.Info("shutdown signal received")
	case err := <-errCh:
		return err
	}

	return a.Shutdown()
}

// pruneSessions periodically drops sessions idle past the store's max age.
func (a *App) pruneSessions(ctx context.Context) {
	ticker := time.NewTicker(sessionPruneInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := a.sessions.PruneStale(); n > 0 {
				a.logger.Info("pruned stale sessions", slog.Int("count", n))
			}
		}
	}
}

// Shutdown gracefully stops all components in the correct order:
// 1. HTTP server (drain in-flight requests)
// 2. Tracer (flush pending spans from drained requests)
// 3. Kafka producer
// 4. Redis client
// 5. PostgreSQL pool
func (a *App) Shutdown() error {
	a.logger.Info("shutting down application...")

	var errs []error

	httpCtx, httpCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer httpCancel()
	if err := a.httpServer.Shutdown(httpCtx); err != nil {
		a.logger.Error("http server shutdown error", slog.String("error", err.Error()))
		errs = append(errs, err)
	}

	if a.tracerShutdown != nil {
		tracerCtx, tracerCancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer tracerCancel()
		if err := a.tracerShutdown(tracerCtx); err != nil {
			a.logger.Error("tracer shutdown error", slog.String("error", err.Error()))
			errs = append(errs, err)
		}
	}

	if err := a.producer.Close(); err != nil {
		a.logger.Error("kafka producer close error", slog.String("error", err.Error()))
		errs = append(errs, err)
	}

	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			a.logger.Error("redis close error", slog.String("error", err.Error()))
			errs = append(errs, err)
		}
	}

	a.pool.Close()

	a.logger.Info("application shutdown complete")
	return errors.Join(errs...)
}
