package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"fleet_console_backend/internal/adapters"
	"fleet_console_backend/internal/booking"
	"fleet_console_backend/internal/catalog"
	"fleet_console_backend/internal/email"
	"fleet_console_backend/internal/events"
	apphttp "fleet_console_backend/internal/http"
	"fleet_console_backend/internal/http/router"
	"fleet_console_backend/internal/notification"
	"fleet_console_backend/internal/scheduler"
	"fleet_console_backend/migrations"
	"fleet_console_backend/platform/cache"
	"fleet_console_backend/platform/config"
	"fleet_console_backend/platform/db"
	"fleet_console_backend/platform/httpkit"
	"fleet_console_backend/platform/logger"
	"fleet_console_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"
)

const (
	// Upstream-bound routes (session start, submit) share this budget per client IP.
	upstreamRatePerSecond = 2
	upstreamRateBurst     = 10
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	// Initialize structured logger
	log := logger.New(cfg.Env)
	log.Info("starting server", "env", cfg.Env, "addr", cfg.HTTPAddr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ========================================================================
	// Infrastructure Layer
	// ========================================================================

	if err := withRetry(ctx, log, "database migrations", 5, 2*time.Second, func() error {
		return db.RunMigrations(ctx, cfg, migrations.FS)
	}); err != nil {
		log.Error("failed to run database migrations", "error", err)
		panic("failed to run database migrations: " + err.Error())
	}
	log.Info("database migrations complete")

	var pool *pgxpool.Pool
	if err := withRetry(ctx, log, "database connection", 5, 2*time.Second, func() error {
		p, err := db.NewPool(ctx, cfg)
		if err != nil {
			return err
		}
		pool = p
		return nil
	}); err != nil {
		log.Error("failed to connect to database", "error", err)
		panic("failed to connect to database: " + err.Error())
	}
	defer pool.Close()
	log.Info("database connection established")

	rdb := initRedis(ctx, cfg, log)
	if rdb != nil {
		defer func() { _ = rdb.Close() }()
	}

	// Event bus for decoupled communication between modules
	eventBus := events.NewInMemoryBus(log)
	defer eventBus.Wait()

	confirmations, closeScheduler := initConfirmationScheduler(cfg, log)
	if closeScheduler != nil {
		defer closeScheduler()
	}

	sender := email.NewSender(cfg)

	// Shared validator instance for dependency injection
	val := validator.New(cfg.GetPhoneDefaultRegion())

	// ========================================================================
	// Domain Modules (Composition Root)
	// ========================================================================

	// Notification module subscribes to domain events (not HTTP-facing)
	notificationModule := notification.New(sender, confirmations, log)
	notificationModule.RegisterHandlers(eventBus)

	catalogModule := catalog.NewModule(pool, rdb, val, cfg, log)
	if err := catalogModule.FlushCache(ctx); err != nil {
		log.Warn("failed to flush catalog cache", "error", err)
	}

	// Anti-Corruption Layer: booking only depends on its own CatalogReader port
	catalogReader := adapters.NewCatalogBookingReader(catalogModule.Service())
	bookingModule, err := booking.NewModule(pool, catalogReader, eventBus, val, cfg, log)
	if err != nil {
		log.Error("failed to initialize booking module", "error", err)
		panic("failed to initialize booking module: " + err.Error())
	}
	go bookingModule.RunJanitor(ctx)

	limiter := httpkit.NewIPRateLimiter(rate.Limit(upstreamRatePerSecond), upstreamRateBurst, log)
	go limiter.RunJanitor(ctx, 10*time.Minute)

	// ========================================================================
	// HTTP Layer
	// ========================================================================

	app := &apphttp.App{
		Config:      cfg,
		Logger:      log,
		Health:      db.NewPoolAdapter(pool),
		EventBus:    eventBus,
		RateLimiter: limiter,
		Modules: []apphttp.Module{
			catalogModule,
			bookingModule,
		},
	}

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router.New(app),
		ReadHeaderTimeout: 10 * time.Second,
	}

	srvErr := make(chan error, 1)
	go func() {
		log.Info("server listening", "addr", cfg.HTTPAddr)
		srvErr <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received, gracefully shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("server shutdown failed", "error", err)
		}
	case err := <-srvErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			panic("server error: " + err.Error())
		}
	}
}

// initRedis connects the shared Redis client. Redis is optional: without it
// the catalog is read straight from Postgres and confirmations are sent inline.
func initRedis(ctx context.Context, cfg config.RedisConfig, log *logger.Logger) *redis.Client {
	if cfg.GetRedisURL() == "" {
		log.Warn("REDIS_URL not configured; catalog cache disabled")
		return nil
	}

	rdb, err := cache.NewClient(ctx, cfg)
	if err != nil {
		log.Error("failed to connect to redis; catalog cache disabled", "error", err)
		return nil
	}
	return rdb
}

func initConfirmationScheduler(cfg config.SchedulerConfig, log *logger.Logger) (scheduler.ConfirmationScheduler, func()) {
	if cfg.GetRedisURL() == "" {
		log.Warn("REDIS_URL not configured; booking confirmations are sent inline")
		return nil, nil
	}

	client, err := scheduler.NewClient(cfg)
	if err != nil {
		log.Error("failed to initialize confirmation scheduler client", "error", err)
		return nil, nil
	}

	return client, func() {
		_ = client.Close()
	}
}

func withRetry(ctx context.Context, log *logger.Logger, name string, attempts int, baseDelay time.Duration, fn func() error) error {
	if attempts < 1 {
		return fmt.Errorf("%s: invalid retry attempts", name)
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := fn(); err == nil {
			return nil
		} else {
			lastErr = err
			log.Warn("retryable operation failed", "operation", name, "attempt", attempt, "error", err)
		}

		if attempt < attempts {
			delay := time.Duration(attempt*attempt) * baseDelay
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}
	}

	return errors.New(name + ": " + lastErr.Error())
}
