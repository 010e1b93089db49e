// Command promptforge runs the PromptForge HTTP API.
//
// Startup order: environment (.env), configuration, logging, tracing,
// database, quota backend, event publisher, services, router. The server,
// the quota sweeper and the idempotency janitor run under one errgroup and
// stop together on SIGINT/SIGTERM; pending prompt saves are drained before
// the process exits.
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

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/promptforge/promptforge-api/internal/catalog"
	"github.com/promptforge/promptforge-api/internal/config"
	"github.com/promptforge/promptforge-api/internal/events"
	httpapi "github.com/promptforge/promptforge-api/internal/http"
	"github.com/promptforge/promptforge-api/internal/observability"
	"github.com/promptforge/promptforge-api/internal/provider"
	"github.com/promptforge/promptforge-api/internal/quota"
	"github.com/promptforge/promptforge-api/internal/repo"
	"github.com/promptforge/promptforge-api/internal/services"
	"github.com/promptforge/promptforge-api/internal/sysutil"
)

// version is overridden at build time with -ldflags "-X main.version=...".
var version = "dev"

const (
	sweepInterval   = time.Minute
	janitorInterval = 15 * time.Minute
	historyMaxLimit = 100
)

// @title       PromptForge API
// @version     1.0
// @description Developer tools that wrap a prompt in a task template and answer it with a language model.
// @BasePath    /api
func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(2)
	}
	observability.SetupLogging(cfg.LogLevel, cfg.LogPretty, os.Stderr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		log.Fatal().Err(err).Msg("promptforge exited")
	}
}

func run(ctx context.Context, cfg config.Config) error {
	appVersion := sysutil.FirstNonEmpty(os.Getenv("APP_VERSION"), version)

	shutdownTracing, err := observability.SetupOTel(ctx, cfg.OTEL, appVersion)
	if err != nil {
		return fmt.Errorf("tracing: %w", err)
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(sctx); err != nil {
			log.Warn().Err(err).Msg("tracer shutdown")
		}
	}()

	db, err := repo.Open(cfg.DB)
	if err != nil {
		return fmt.Errorf("database: %w", err)
	}
	if sqlDB, err := db.DB(); err == nil {
		defer sqlDB.Close()
	}
	if err := repo.AutoMigrate(db); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	if sysutil.IsTruthy(os.Getenv("MIGRATE_ONLY")) {
		log.Info().Str("driver", cfg.DB.Driver).Msg("migrations applied")
		return nil
	}

	cat, err := catalog.Load()
	if err != nil {
		return fmt.Errorf("catalog: %w", err)
	}

	g, gctx := errgroup.WithContext(ctx)

	guard, err := newQuotaGuard(gctx, g, cfg)
	if err != nil {
		return err
	}

	publisher := events.Publisher(events.Noop{})
	if cfg.NATS.URL != "" {
		nc, err := events.Connect(cfg.NATS.URL)
		if err != nil {
			return err
		}
		defer nc.Drain()
		publisher = events.NewNATSPublisher(nc, cfg.NATS.Subject)
	}

	gateway := provider.New(provider.Config{
		APIKey:   cfg.Provider.APIKey,
		BaseURL:  cfg.Provider.BaseURL,
		Model:    cfg.Provider.Model,
		Timeout:  cfg.Provider.Timeout,
		SiteURL:  cfg.Provider.SiteURL,
		SiteName: cfg.Provider.SiteName,
	})
	if !gateway.Enabled() {
		log.Warn().Msg("no provider credential configured, prompts will receive the fallback response")
	}

	users := services.NewUserService(db, cfg.Quota.DefaultLimit)
	prompts := &services.PromptService{
		DB:             db,
		Catalog:        cat,
		Quota:          guard,
		Gateway:        gateway,
		Limits:         users,
		Events:         publisher,
		MaxPromptRunes: cfg.MaxPromptRunes,
		PersistTimeout: cfg.PersistTimeout,
		IdempotencyTTL: cfg.IdempotencyTTL,
	}

	gin.SetMode(cfg.GinMode)
	r := gin.New()
	httpapi.RegisterRoutes(r, httpapi.Deps{
		DB:      db,
		Catalog: cat,
		Prompts: prompts,
		History: &services.HistoryService{DB: db, DefaultLimit: cfg.HistoryLimit, MaxLimit: historyMaxLimit},
		Usage:   &services.UsageService{DB: db, Quota: guard, Limits: users, Location: cfg.StatsTimezone},
		Users:   users,
	}, cfg)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
		MaxHeaderBytes:    cfg.MaxHeaderBytes,
	}

	g.Go(func() error {
		log.Info().
			Str("addr", srv.Addr).
			Str("version", appVersion).
			Str("quota_backend", cfg.Quota.Backend).
			Bool("provider", gateway.Enabled()).
			Msg("http server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		return runIdempotencyJanitor(gctx, db, janitorInterval)
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("shutting down")

		sctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(sctx); err != nil {
			log.Error().Err(err).Msg("http shutdown")
		}
		if err := prompts.Drain(sctx); err != nil {
			log.Warn().Err(err).Msg("pending prompt saves abandoned")
		}
		return nil
	})

	return g.Wait()
}

// newQuotaGuard builds the configured quota backend. The in-memory guard's
// sweeper joins g.
func newQuotaGuard(ctx context.Context, g *errgroup.Group, cfg config.Config) (quota.Guard, error) {
	switch cfg.Quota.Backend {
	case "redis":
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		pctx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := rdb.Ping(pctx).Err(); err != nil {
			_ = rdb.Close()
			return nil, fmt.Errorf("redis: %w", err)
		}
		g.Go(func() error {
			<-ctx.Done()
			return rdb.Close()
		})
		return quota.NewRedisGuard(rdb, cfg.Quota.Window), nil
	default:
		mg := quota.NewMemoryGuard(cfg.Quota.Window)
		g.Go(func() error { return mg.RunSweeper(ctx, sweepInterval) })
		return mg, nil
	}
}

// runIdempotencyJanitor deletes expired Idempotency-Key mappings every
// interval until ctx is done.
func runIdempotencyJanitor(ctx context.Context, db *gorm.DB, interval time.Duration) error {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-t.C:
			n, err := repo.DeleteExpiredIdempotency(ctx, db, time.Now().UTC())
			if err != nil {
				log.Warn().Err(err).Msg("idempotency cleanup failed")
				continue
			}
			if n > 0 {
				log.Debug().Int64("deleted", n).Msg("expired idempotency keys removed")
			}
		}
	}
}
