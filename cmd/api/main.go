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

	"crm_backend/internal/email"
	"crm_backend/internal/events"
	"crm_backend/internal/funnels"
	apphttp "crm_backend/internal/http"
	"crm_backend/internal/http/router"
	"crm_backend/internal/intake"
	"crm_backend/internal/leads"
	"crm_backend/internal/notification"
	"crm_backend/internal/scheduler"
	"crm_backend/internal/transactions"
	"crm_backend/platform/config"
	"crm_backend/platform/db"
	"crm_backend/platform/logger"
	"crm_backend/platform/phone"
	"crm_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
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
		return db.RunMigrations(ctx, cfg)
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

	// Event bus for decoupled communication between modules
	eventBus := events.NewInMemoryBus(log)

	slaScheduler, closeScheduler := initSLAScheduler(cfg, log)
	// Runs before pool.Close: in-flight handlers still need the pool and the
	// scheduler client.
	defer drainEvents(eventBus, closeScheduler)

	// Shared validator instance for dependency injection
	val := validator.New()
	normalizer := phone.NewNormalizer(cfg.GetPhoneDefaultRegion())

	// ========================================================================
	// Domain Modules (Composition Root)
	// ========================================================================

	transactionsModule := transactions.NewModule(pool, val, log)
	funnelsModule := funnels.NewModule(pool, val, log)
	leadsModule := leads.NewModule(
		pool,
		transactionsModule.Repository(),
		funnelsModule.Repository(),
		eventBus,
		val,
		normalizer,
		log,
	)
	intakeModule := intake.NewModule(pool, leadsModule.Service(), val, log)

	// Notification module subscribes to domain events (not HTTP-facing)
	notificationModule := notification.New(email.New(cfg, log), leadsModule.Repository(), log)
	notificationModule.RegisterHandlers(eventBus)

	if slaScheduler != nil {
		scheduler.NewSLASubscriber(slaScheduler, log).RegisterHandlers(eventBus)
	}

	// ========================================================================
	// HTTP Layer
	// ========================================================================

	app := &apphttp.App{
		Config:   cfg,
		Logger:   log,
		Health:   db.NewPoolAdapter(pool),
		EventBus: eventBus,
		Modules: []apphttp.Module{
			funnelsModule,
			leadsModule,
			transactionsModule,
			intakeModule,
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
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
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

func initSLAScheduler(cfg config.SchedulerConfig, log *logger.Logger) (scheduler.SLAScheduler, func()) {
	if cfg.GetRedisURL() == "" {
		log.Warn("REDIS_URL not configured; stage SLA checks disabled")
		return nil, nil
	}

	client, err := scheduler.NewClient(cfg)
	if err != nil {
		log.Error("failed to initialize sla scheduler client", "error", err)
		return nil, nil
	}

	return client, func() {
		_ = client.Close()
	}
}

type eventWaiter interface {
	Wait()
}

// drainEvents waits for asynchronous event handlers, then releases the
// resources they use.
func drainEvents(bus eventWaiter, release ...func()) {
	bus.Wait()
	for _, fn := range release {
		if fn != nil {
			fn()
		}
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
