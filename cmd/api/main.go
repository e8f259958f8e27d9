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

	"voicerly_backend/internal/adapters/storage"
	"voicerly_backend/internal/audio"
	audiorepo "voicerly_backend/internal/audio/repository"
	"voicerly_backend/internal/events"
	apphttp "voicerly_backend/internal/http"
	"voicerly_backend/internal/http/router"
	"voicerly_backend/internal/ratelimit"
	"voicerly_backend/internal/scheduler"
	"voicerly_backend/platform/config"
	"voicerly_backend/platform/db"
	"voicerly_backend/platform/logger"
	"voicerly_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"
)

const (
	shutdownTimeout        = 10 * time.Second
	limiterJanitorEvery    = 10 * time.Minute
	storageBucketEnsureErr = "failed to ensure storage bucket exists"
)

// ensureBucket wraps the retry logic for verifying a MinIO bucket exists.
func ensureBucket(ctx context.Context, log *logger.Logger, storageSvc storage.StorageService, bucket string) {
	if err := withRetry(ctx, log, "ensure audio bucket", 5, 2*time.Second, func() error {
		return storageSvc.EnsureBucketExists(ctx, bucket)
	}); err != nil {
		log.Error(storageBucketEnsureErr, "error", err, "bucket", bucket)
		panic(storageBucketEnsureErr + ": " + err.Error())
	}
}

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

	storageSvc, err := storage.NewMinIOService(cfg)
	if err != nil {
		log.Error("failed to initialize storage service", "error", err)
		panic("failed to initialize storage service: " + err.Error())
	}
	ensureBucket(ctx, log, storageSvc, cfg.GetMinioBucketAudio())
	log.Info("storage service initialized", "audioBucket", cfg.GetMinioBucketAudio())

	// Event bus for decoupled communication between modules
	eventBus := events.NewInMemoryBus(log)

	g, gctx := errgroup.WithContext(ctx)

	ratePolicy := ratelimit.Policy{Limit: cfg.GetUploadMaxPerWindow(), Window: cfg.GetUploadRateWindow()}
	limiter, closeRedis := initUploadLimiter(gctx, cfg, ratePolicy, log)
	if closeRedis != nil {
		defer closeRedis()
	}

	if closeScheduler := initStorageCleanup(cfg, eventBus, log); closeScheduler != nil {
		defer closeScheduler()
	}

	// Shared validator instance for dependency injection
	val := validator.New()

	// ========================================================================
	// Domain Modules (Composition Root)
	// ========================================================================

	audioModule := audio.NewModule(audiorepo.New(pool), storageSvc, limiter, eventBus, val, cfg, log)
	audioModule.RegisterHandlers(eventBus, log)

	// ========================================================================
	// HTTP Layer
	// ========================================================================

	app := &apphttp.App{
		Config: cfg,
		Logger: log,
		Health: db.NewPoolAdapter(pool),
		Modules: []apphttp.Module{
			audioModule,
		},
	}

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router.New(app),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g.Go(func() error {
		log.Info("server listening", "addr", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutdown signal received, gracefully shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error("server error", "error", err)
		eventBus.Wait()
		panic("server error: " + err.Error())
	}
	eventBus.Wait()
	log.Info("server stopped")
}

// initUploadLimiter picks the Redis-backed limiter when REDIS_URL is set so
// every instance shares one counter; otherwise it falls back to the
// in-process table with a janitor.
func initUploadLimiter(ctx context.Context, cfg config.RedisConfig, policy ratelimit.Policy, log *logger.Logger) (ratelimit.Limiter, func()) {
	if cfg.IsRedisEnabled() {
		opt, err := redis.ParseURL(cfg.GetRedisURL())
		if err != nil {
			log.Error("invalid REDIS_URL; using in-memory upload limiter", "error", err)
		} else {
			rdb := redis.NewClient(opt)
			log.Info("upload limiter backed by redis", "limit", policy.Limit, "window", policy.Window.String())
			return ratelimit.NewRedisLimiter(rdb, policy, log), func() { _ = rdb.Close() }
		}
	} else {
		log.Warn("REDIS_URL not configured; upload limit is per instance")
	}

	limiter := ratelimit.NewMemoryLimiter(policy)
	limiter.StartJanitor(ctx, limiterJanitorEvery)
	return limiter, nil
}

// initStorageCleanup routes orphaned storage objects to the deferred delete
// queue when Redis is available.
func initStorageCleanup(cfg config.SchedulerConfig, bus events.Bus, log *logger.Logger) func() {
	if !cfg.IsRedisEnabled() {
		log.Warn("REDIS_URL not configured; orphaned storage objects are only logged")
		return nil
	}

	client, err := scheduler.NewClient(cfg)
	if err != nil {
		log.Error("failed to initialize scheduler client", "error", err)
		return nil
	}

	bus.Subscribe(events.AudioStorageOrphaned{}.EventName(), scheduler.StorageOrphanHandler(client, log))
	return func() {
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
