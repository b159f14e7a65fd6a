package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"

	"github.com/utafrali/storefront/pkg/database"
	"github.com/utafrali/storefront/pkg/health"
	"github.com/utafrali/storefront/pkg/httpclient"
	pkgkafka "github.com/utafrali/storefront/pkg/kafka"
	"github.com/utafrali/storefront/pkg/middleware"
	"github.com/utafrali/storefront/pkg/tracing"
	"github.com/utafrali/storefront/services/storefront/internal/client"
	"github.com/utafrali/storefront/services/storefront/internal/config"
	"github.com/utafrali/storefront/services/storefront/internal/event"
	handler "github.com/utafrali/storefront/services/storefront/internal/handler/http"
	"github.com/utafrali/storefront/services/storefront/internal/repository"
	"github.com/utafrali/storefront/services/storefront/internal/repository/memory"
	postgresrepo "github.com/utafrali/storefront/services/storefront/internal/repository/postgres"
	redisrepo "github.com/utafrali/storefront/services/storefront/internal/repository/redis"
	"github.com/utafrali/storefront/services/storefront/internal/service"
	"github.com/utafrali/storefront/services/storefront/migrations"
)

// ServiceName labels logs, metrics and traces.
const ServiceName = "storefront"

// App wires together all dependencies and runs the storefront service.
type App struct {
	cfg            *config.Config
	logger         *slog.Logger
	rdb            *redis.Client
	pool           *pgxpool.Pool
	producer       *pkgkafka.Producer
	carts          *service.CartRegistry
	httpServer     *http.Server
	shutdownTracer func(context.Context) error
}

// NewApp creates a new application instance, initializing all dependencies.
func NewApp(cfg *config.Config, logger *slog.Logger) (*App, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	a := &App{cfg: cfg, logger: logger}

	shutdownTracer, err := tracing.InitTracer(ctx, tracing.Config{
		ServiceName:  ServiceName,
		Environment:  cfg.Environment,
		OTLPEndpoint: cfg.OTELEndpoint,
		SampleRate:   cfg.OTELSampleRate,
		Enabled:      cfg.OTELEnabled,
	})
	if err != nil {
		return nil, fmt.Errorf("init tracer: %w", err)
	}
	a.shutdownTracer = shutdownTracer

	healthHandler := health.NewHandler()

	// Cart snapshots.
	snapshots, err := a.snapshotFactory(ctx, healthHandler)
	if err != nil {
		a.closeResources()
		return nil, err
	}

	// Profiles.
	pool, err := database.NewPostgresPool(ctx, database.PostgresConfig{
		DSN:      cfg.PostgresDSN,
		MaxConns: cfg.PostgresMaxConns,
	}, logger)
	if err != nil {
		a.closeResources()
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}
	a.pool = pool
	logger.Info("connected to PostgreSQL")

	if cfg.RunMigrations {
		if err := database.RunMigrations(ctx, pool, migrations.FS, logger); err != nil {
			a.closeResources()
			return nil, fmt.Errorf("run migrations: %w", err)
		}
	}
	if err := prometheus.Register(database.NewPoolStatsCollector(pool, ServiceName)); err != nil {
		logger.Warn("pool metrics not registered", slog.String("error", err.Error()))
	}
	healthHandler.Register("postgres", pool.Ping)

	// Kafka producer. Events are best effort, so the broker is optional.
	var observers service.ObserverFactory
	var notifier service.Notifier
	if len(cfg.KafkaBrokers) > 0 {
		a.producer = pkgkafka.NewProducer(pkgkafka.DefaultProducerConfig(cfg.KafkaBrokers), logger)
		eventProducer := event.NewProducer(a.producer, logger)
		observers = eventProducer.ForSession
		notifier = eventProducer
		healthHandler.RegisterOptional("kafka", a.producer.Ping)
		logger.Info("kafka producer initialized", slog.Any("brokers", cfg.KafkaBrokers))
	}

	// Build the dependency graph.
	cartOpts := []service.CartStoreOption{service.WithMutationLatency(cfg.MutationLatency)}
	registry := service.NewCartRegistry(snapshots, a.priceLookup(), observers, service.RegistryLimits{
		IdleTTL:     cfg.CartSessionIdleTTL,
		MaxSessions: cfg.CartMaxSessions,
	}, logger, cartOpts...)
	a.carts = registry

	coordinator := service.NewOrderCoordinator(a.orderSource(), notifier, logger)
	accounts := service.NewAccountService(postgresrepo.NewProfileRepository(pool), coordinator, logger)

	// HTTP router.
	corsCfg := middleware.DefaultCORSConfig()
	corsCfg.AllowedOrigins = cfg.CORSAllowedOrigins
	router := handler.NewRouter(registry, accounts, healthHandler, handler.RouterConfig{
		ServiceName:    ServiceName,
		CORS:           corsCfg,
		JWTSecret:      cfg.JWTSecret,
		RateLimitRPS:   cfg.RateLimitRPS,
		RateLimitBurst: cfg.RateLimitBurst,
	}, logger)

	a.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 35 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return a, nil
}

func (a *App) snapshotFactory(ctx context.Context, healthHandler *health.Handler) (repository.SnapshotStoreFactory, error) {
	if a.cfg.CartStore == config.CartStoreMemory {
		a.logger.Warn("cart snapshots kept in memory; carts are lost on restart")
		return memory.NewStore().Factory(), nil
	}

	rdb, err := database.NewRedisClient(ctx, database.RedisConfig{
		Addr:     a.cfg.RedisAddr,
		Password: a.cfg.RedisPass,
		DB:       a.cfg.RedisDB,
		Timeout:  a.cfg.RedisTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	a.rdb = rdb
	a.logger.Info("connected to Redis",
		slog.String("addr", a.cfg.RedisAddr),
		slog.Int("db", a.cfg.RedisDB),
	)
	healthHandler.Register("redis", func(ctx context.Context) error {
		return rdb.Ping(ctx).Err()
	})
	return redisrepo.NewFactory(rdb, a.cfg.CartTTL), nil
}

func (a *App) priceLookup() service.PriceLookup {
	if a.cfg.UseSimulatedCatalog() {
		a.logger.Info("using simulated catalog", slog.Duration("max_latency", a.cfg.SimulatedLatency))
		return service.NewSimulatedCatalog(nil, a.cfg.SimulatedLatency)
	}

	httpCfg := httpclient.DefaultConfig()
	httpCfg.Timeout = a.cfg.CatalogTimeout
	doer := httpclient.NewCircuitBreakerClient(
		httpclient.New(httpCfg),
		httpclient.DefaultCircuitBreakerConfig("catalog"),
		a.logger,
	)
	return client.NewCatalogClient(a.cfg.CatalogURL, doer)
}

// orderSource gives each order endpoint its own single-attempt client and
// breaker.
func (a *App) orderSource() repository.OrderSource {
	httpCfg := httpclient.DefaultConfig().SingleAttempt()
	httpCfg.Timeout = a.cfg.OrderTimeout

	primary := httpclient.NewCircuitBreakerClient(
		httpclient.New(httpCfg),
		httpclient.DefaultCircuitBreakerConfig("orders-primary"),
		a.logger,
	)
	secondary := httpclient.NewCircuitBreakerClient(
		httpclient.New(httpCfg),
		httpclient.DefaultCircuitBreakerConfig("orders-secondary"),
		a.logger,
	)
	return client.NewOrderClient(a.cfg.OrderPrimaryURL, primary, a.cfg.OrderSecondaryURL, secondary, a.logger)
}

// Run starts the HTTP server and blocks until the context is canceled.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go a.carts.Run(ctx, a.cfg.CartSweepInterval)

	go func() {
		a.logger.Info("starting HTTP server",
			slog.String("addr", a.httpServer.Addr),
		)
		if err := a.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("shutdown signal received")
	case err := <-errCh:
		a.closeResources()
		return err
	}

	return a.Shutdown()
}

// Shutdown gracefully stops all components.
func (a *App) Shutdown() error {
	a.logger.Info("shutting down application...")

	// Graceful HTTP server shutdown with a 10-second deadline.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := a.httpServer.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("http server shutdown error", slog.String("error", err.Error()))
	}

	a.closeResources()

	a.logger.Info("application shutdown complete")
	return nil
}

// closeResources releases every client that was opened, in reverse order.
func (a *App) closeResources() {
	if a.producer != nil {
		if err := a.producer.Close(); err != nil {
			a.logger.Error("kafka producer close error", slog.String("error", err.Error()))
		}
	}
	if a.pool != nil {
		a.pool.Close()
	}
	if a.rdb != nil {
		if err := a.rdb.Close(); err != nil {
			a.logger.Error("redis close error", slog.String("error", err.Error()))
		}
	}
	if a.shutdownTracer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := a.shutdownTracer(ctx); err != nil {
			a.logger.Error("tracer shutdown error", slog.String("error", err.Error()))
		}
	}
}
