package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/trustflow/trustflow-backend/internal/cron"
	"github.com/trustflow/trustflow-backend/internal/publicdata"
	"github.com/trustflow/trustflow-backend/internal/spaces"
	"github.com/trustflow/trustflow-backend/internal/testimonials"
	"github.com/trustflow/trustflow-backend/pkg/config"
	"github.com/trustflow/trustflow-backend/pkg/db"
	"github.com/trustflow/trustflow-backend/pkg/instance"
	"github.com/trustflow/trustflow-backend/pkg/logger"
	"github.com/trustflow/trustflow-backend/pkg/metrics"
	"github.com/trustflow/trustflow-backend/pkg/migrate"
	"github.com/trustflow/trustflow-backend/pkg/redis"
)

const serviceKind = "cron-worker"

type flags struct {
	once        string
	metricsAddr string
}

func main() {
	var f flags
	flag.StringVar(&f.once, "once", "", "comma separated job names to run once and exit")
	flag.StringVar(&f.metricsAddr, "metrics-addr", "", "serve /metrics on this address, e.g. :9102")
	flag.Parse()

	bootLog := logger.New(logger.Options{ServiceName: serviceKind})
	if err := godotenv.Load(); err != nil {
		bootLog.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		bootLog.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}
	cfg.Service.Kind = serviceKind

	logg := logger.New(logger.Options{
		ServiceName: serviceKind,
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{
		"env":         cfg.App.Env,
		"serviceKind": cfg.Service.Kind,
		"instance":    instance.GetID(),
	})

	if err := run(ctx, cfg, logg, f); err != nil {
		logg.Error(ctx, "cron worker stopped unexpectedly", err)
		stop()
		os.Exit(1)
	}
	logg.Info(ctx, "cron worker shutting down gracefully")
}

func run(ctx context.Context, cfg *config.Config, logg *logger.Logger, f flags) error {
	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		return fmt.Errorf("bootstrap database: %w", err)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(ctx, "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
		return fmt.Errorf("dev migrations: %w", err)
	}

	redisClient, err := redis.New(ctx, cfg.Redis, logg)
	if err != nil {
		return fmt.Errorf("bootstrap redis: %w", err)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(ctx, "error closing redis", err)
		}
	}()

	spaceRepo := spaces.NewRepository(dbClient.DB())
	testimonialRepo := testimonials.NewRepository(dbClient.DB())
	publicData, err := publicdata.NewService(spaceRepo, testimonialRepo, redisClient, cfg.Popup.PublicCacheTTL, logg)
	if err != nil {
		return fmt.Errorf("public data service: %w", err)
	}

	warmJob, err := cron.NewCacheWarmJob(cron.CacheWarmJobParams{Logger: logg, Spaces: spaceRepo, Warmer: publicData})
	if err != nil {
		return fmt.Errorf("cache warm job: %w", err)
	}
	purgeJob, err := cron.NewPurgeJob(cron.PurgeJobParams{
		Logger:     logg,
		Repository: testimonialRepo,
		Retention:  cfg.Cron.DeletedTestimonialRetention,
	})
	if err != nil {
		return fmt.Errorf("purge job: %w", err)
	}
	registry, err := cron.NewRegistry(warmJob, purgeJob)
	if err != nil {
		return fmt.Errorf("register jobs: %w", err)
	}

	lock, err := cron.NewRedisLock(redisClient, redisClient.LockKey(cron.LockName), 0)
	if err != nil {
		return fmt.Errorf("cron lock: %w", err)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	service, err := cron.NewService(cron.ServiceParams{
		Logger:   logg,
		Registry: registry,
		Lock:     lock,
		Metrics:  metrics.NewCronJobMetrics(reg),
		Interval: cfg.Cron.Interval,
	})
	if err != nil {
		return fmt.Errorf("cron service: %w", err)
	}

	ctx = logg.WithField(ctx, "jobs", registry.Names())

	if names := splitNames(f.once); len(names) > 0 {
		logg.Info(ctx, "running cron jobs once")
		return service.RunOnce(ctx, names...)
	}

	if f.metricsAddr != "" {
		srv := serveMetrics(ctx, f.metricsAddr, reg, logg)
		defer shutdown(srv, logg)
	}

	logg.Info(ctx, "starting cron worker")
	if err := service.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func serveMetrics(ctx context.Context, addr string, reg *prometheus.Registry, logg *logger.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		logg.Info(logg.WithField(ctx, "addr", addr), "metrics listener started")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(ctx, "metrics listener failed", err)
		}
	}()
	return srv
}

func shutdown(srv *http.Server, logg *logger.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logg.Error(ctx, "metrics listener shutdown failed", err)
	}
}

func splitNames(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if name := strings.TrimSpace(part); name != "" {
			out = append(out, name)
		}
	}
	return out
}
