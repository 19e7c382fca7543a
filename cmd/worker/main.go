package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/mealbridge/mealbridge-backend/internal/notify"
	"github.com/mealbridge/mealbridge-backend/internal/users"
	"github.com/mealbridge/mealbridge-backend/pkg/config"
	"github.com/mealbridge/mealbridge-backend/pkg/db"
	"github.com/mealbridge/mealbridge-backend/pkg/instance"
	"github.com/mealbridge/mealbridge-backend/pkg/logger"
	"github.com/mealbridge/mealbridge-backend/pkg/mailer"
	"github.com/mealbridge/mealbridge-backend/pkg/metrics"
	"github.com/mealbridge/mealbridge-backend/pkg/pubsub"
	"github.com/mealbridge/mealbridge-backend/pkg/redis"
)

func main() {
	ctx := context.Background()
	logg := logger.New(logger.Options{ServiceName: "fanout-worker"})

	_ = godotenv.Load()

	cfg, err := config.Load()
	requireResource(ctx, logg, "config", err)

	logg = logger.New(logger.Options{
		ServiceName: "fanout-worker",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(ctx, cfg.DB, logg)
	requireResource(ctx, logg, "database", err)
	defer dbClient.Close()

	redisClient, err := redis.New(ctx, cfg.Redis, logg)
	requireResource(ctx, logg, "redis", err)
	defer redisClient.Close()

	pubsubClient, err := pubsub.NewClient(ctx, cfg.GCP, cfg.PubSub, logg)
	requireResource(ctx, logg, "pubsub", err)
	defer pubsubClient.Close()

	sender, err := mailer.New(cfg.SMTP)
	requireResource(ctx, logg, "mailer", err)

	domainMetrics := metrics.NewDomainMetrics(prometheus.NewRegistry())

	notifyService, err := notify.NewService(
		notify.NewRepository(dbClient.DB()),
		users.NewRepository(dbClient.DB()),
		sender,
		notify.Config{Recipients: cfg.Notify.FanoutRecipients},
		logg,
		domainMetrics,
	)
	requireResource(ctx, logg, "notify service", err)

	fanoutConsumer, err := notify.NewConsumer(notifyService, pubsubClient.DonationsSubscription(), redisClient, logg)
	requireResource(ctx, logg, "fan-out consumer", err)

	worker, err := NewService(ServiceParams{
		Config:         cfg,
		Logger:         logg,
		DB:             dbClient,
		Redis:          redisClient,
		PubSub:         pubsubClient,
		FanoutConsumer: fanoutConsumer,
	})
	requireResource(ctx, logg, "worker", err)

	runCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	runCtx = logg.WithFields(runCtx, map[string]any{"env": cfg.App.Env, "instance": instance.GetID()})
	logg.Info(runCtx, "donation fan-out worker ready")

	if err := worker.Run(runCtx); err != nil && !errors.Is(err, context.Canceled) {
		logg.Error(runCtx, "fan-out worker stopped unexpectedly", err)
		os.Exit(1)
	}
	logg.Info(context.Background(), "fan-out worker shut down")
}

func requireResource(ctx context.Context, logg *logger.Logger, resource string, err error) {
	if err == nil {
		return
	}
	logg.Error(ctx, fmt.Sprintf("resource not working: %s", resource), err)
	os.Exit(1)
}
