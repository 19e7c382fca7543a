package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/mealbridge/mealbridge-backend/api/controllers"
	"github.com/mealbridge/mealbridge-backend/api/routes"
	"github.com/mealbridge/mealbridge-backend/internal/admin"
	"github.com/mealbridge/mealbridge-backend/internal/auth"
	"github.com/mealbridge/mealbridge-backend/internal/donations"
	"github.com/mealbridge/mealbridge-backend/internal/media"
	"github.com/mealbridge/mealbridge-backend/internal/messages"
	"github.com/mealbridge/mealbridge-backend/internal/notify"
	"github.com/mealbridge/mealbridge-backend/internal/users"
	"github.com/mealbridge/mealbridge-backend/pkg/auth/session"
	"github.com/mealbridge/mealbridge-backend/pkg/config"
	"github.com/mealbridge/mealbridge-backend/pkg/db"
	"github.com/mealbridge/mealbridge-backend/pkg/logger"
	"github.com/mealbridge/mealbridge-backend/pkg/mailer"
	"github.com/mealbridge/mealbridge-backend/pkg/metrics"
	"github.com/mealbridge/mealbridge-backend/pkg/migrate"
	"github.com/mealbridge/mealbridge-backend/pkg/pubsub"
	"github.com/mealbridge/mealbridge-backend/pkg/redis"
	"github.com/mealbridge/mealbridge-backend/pkg/storage/gcs"
)

const shutdownGrace = 15 * time.Second

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

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
		logg.Error(ctx, "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(ctx, cfg.Redis, logg)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	sessionManager, err := session.NewManager(redisClient, cfg.JWT.AccessTokenTTL())
	if err != nil {
		logg.Error(ctx, "failed to create session manager", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	httpMetrics := metrics.NewHTTPMetrics(registry)
	domainMetrics := metrics.NewDomainMetrics(registry)

	userRepo := users.NewRepository(dbClient.DB())

	authService, err := auth.NewService(auth.ServiceParams{
		UserRepo:       userRepo,
		SessionManager: sessionManager,
		JWTConfig:      cfg.JWT,
	})
	if err != nil {
		logg.Error(ctx, "failed to create auth service", err)
		os.Exit(1)
	}

	registerService, err := auth.NewRegisterService(auth.RegisterServiceParams{
		TxRunner:       dbClient,
		PasswordConfig: cfg.Password,
	})
	if err != nil {
		logg.Error(ctx, "failed to create register service", err)
		os.Exit(1)
	}

	usersService, err := users.NewService(userRepo)
	if err != nil {
		logg.Error(ctx, "failed to create users service", err)
		os.Exit(1)
	}

	// The donation-created topic feeds the fan-out worker. The API still
	// serves donations when Pub/Sub is not configured.
	var publisher donations.EventPublisher
	if cfg.GCP.ProjectID != "" && cfg.PubSub.DonationsSubscription != "" {
		pubsubClient, err := pubsub.NewClient(ctx, cfg.GCP, cfg.PubSub, logg)
		if err != nil {
			logg.Error(ctx, "failed to bootstrap pubsub", err)
			os.Exit(1)
		}
		defer func() {
			if err := pubsubClient.Close(); err != nil {
				logg.Error(context.Background(), "error closing pubsub", err)
			}
		}()
		publisher, err = donations.NewPubSubPublisher(pubsubClient.DonationsPublisher())
		if err != nil {
			logg.Error(ctx, "failed to create donation publisher", err)
			os.Exit(1)
		}
	} else {
		logg.Warn(ctx, "pubsub not configured, donation fan-out disabled")
	}

	mediaRepo := media.NewRepository(dbClient.DB())

	donationsService, err := donations.NewService(
		donations.NewRepository(dbClient.DB()),
		dbClient,
		userRepo,
		mediaRepo,
		publisher,
		logg,
		donations.WithDomainMetrics(domainMetrics),
	)
	if err != nil {
		logg.Error(ctx, "failed to create donations service", err)
		os.Exit(1)
	}
	readiness := map[string]controllers.Pingable{
		"db":    dbClient,
		"redis": redisClient,
	}

	var mediaService media.Service
	if cfg.GCS.BucketName != "" {
		gcsClient, err := gcs.NewClient(ctx, cfg.GCS, cfg.GCP, logg)
		if err != nil {
			logg.Error(ctx, "failed to bootstrap gcs", err)
			os.Exit(1)
		}
		readiness["gcs"] = gcsClient
		mediaService, err = media.NewService(mediaRepo, gcsClient, cfg.GCS.BucketName)
		if err != nil {
			logg.Error(ctx, "failed to create media service", err)
			os.Exit(1)
		}
	} else {
		logg.Warn(ctx, "gcs bucket not configured, media uploads disabled")
	}

	var uploads messages.UploadReader
	if mediaService != nil {
		uploads = mediaRepo
	}
	messagesService, err := messages.NewService(messages.NewRepository(dbClient.DB()), userRepo, uploads)
	if err != nil {
		logg.Error(ctx, "failed to create messages service", err)
		os.Exit(1)
	}

	sender, err := mailer.New(cfg.SMTP)
	if err != nil {
		logg.Error(ctx, "failed to create mail sender", err)
		os.Exit(1)
	}
	notifyService, err := notify.NewService(
		notify.NewRepository(dbClient.DB()),
		userRepo,
		sender,
		notify.Config{Recipients: cfg.Notify.FanoutRecipients},
		logg,
		domainMetrics,
	)
	if err != nil {
		logg.Error(ctx, "failed to create notify service", err)
		os.Exit(1)
	}

	adminService, err := admin.NewService(userRepo, donationsService)
	if err != nil {
		logg.Error(ctx, "failed to create admin service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port

	handler := routes.NewRouter(routes.Deps{
		Config:      cfg,
		Logger:      logg,
		Redis:       redisClient,
		Sessions:    sessionManager,
		HTTPMetrics: httpMetrics,
		Gatherer:    registry,
		Readiness:   readiness,

		AuthService:     authService,
		RegisterService: registerService,
		UsersService:    usersService,
		DonationsSvc:    donationsService,
		MessagesSvc:     messagesService,
		NotifySvc:       notifyService,
		MediaSvc:        mediaService,
		AdminSvc:        adminService,
	})

	server := &http.Server{Addr: addr, Handler: handler}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(shutdownCtx, "api server shutdown failed", err)
		}
	}()

	startCtx := logg.WithFields(ctx, map[string]any{"env": cfg.App.Env, "addr": addr})
	logg.Info(startCtx, "starting api server")
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logg.Error(startCtx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
	logg.Info(context.Background(), "api server stopped")
}
