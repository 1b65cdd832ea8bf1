package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/trustflow/trustflow-backend/api/routes"
	"github.com/trustflow/trustflow-backend/internal/popup"
	"github.com/trustflow/trustflow-backend/internal/popupstream"
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

const shutdownTimeout = 15 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	httpMetrics := metrics.NewHTTPMetrics(registry)
	popupMetrics := metrics.NewPopupMetrics(registry)

	spaceRepo := spaces.NewRepository(dbClient.DB())
	testimonialRepo := testimonials.NewRepository(dbClient.DB())

	publicData, err := publicdata.NewService(spaceRepo, testimonialRepo, redisClient, cfg.Popup.PublicCacheTTL, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create public data service", err)
		os.Exit(1)
	}
	spaceService, err := spaces.NewService(spaceRepo, publicData)
	if err != nil {
		logg.Error(context.Background(), "failed to create space service", err)
		os.Exit(1)
	}
	testimonialService, err := testimonials.NewService(testimonialRepo, spaceRepo, publicData)
	if err != nil {
		logg.Error(context.Background(), "failed to create testimonial service", err)
		os.Exit(1)
	}

	streams, err := popupstream.NewServer(popupstream.Options{
		Source:      publicData,
		Metrics:     popupMetrics,
		Logger:      logg,
		Interval:    cfg.Popup.PollInterval,
		CardOptions: popup.CardOptions{AvatarBaseURL: cfg.Popup.AvatarBaseURL},
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create popup stream server", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{
		"env":      cfg.App.Env,
		"addr":     addr,
		"instance": instance.GetID(),
	})

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(cfg, logg, dbClient, redisClient, registry, httpMetrics,
			spaceService, testimonialService, publicData, streams),
		ReadHeaderTimeout: 10 * time.Second,
		// Popup streams are long lived, so no WriteTimeout.
		BaseContext: func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		logg.Info(ctx, "starting api server")
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-ctx.Done():
		logg.Info(ctx, "shutting down api server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(shutdownCtx, "api server shutdown failed", err)
		}
	}
}
