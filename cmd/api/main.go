package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/noah-isme/gema-trust-api/internal/config"
	"github.com/noah-isme/gema-trust-api/internal/database"
	"github.com/noah-isme/gema-trust-api/internal/handler"
	"github.com/noah-isme/gema-trust-api/internal/middleware"
	"github.com/noah-isme/gema-trust-api/internal/repository"
	"github.com/noah-isme/gema-trust-api/internal/router"
	"github.com/noah-isme/gema-trust-api/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	db, err := database.ConnectPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	// Content tables belong to the content services; only trust tables are migrated here.
	if err := database.Migrate(db, false); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient, err = database.ConnectRedis(cfg.RedisURL)
		if err != nil {
			logger.Warn().Err(err).Msg("redis unavailable, trail cache and pub/sub disabled")
			redisClient = nil
		} else {
			defer redisClient.Close()
		}
	}

	var natsConn *nats.Conn
	if cfg.NATSURL != "" {
		natsConn, err = database.ConnectNATS(cfg.NATSURL, cfg.AppName)
		if err != nil {
			logger.Warn().Err(err).Msg("nats unavailable, notifications will not be published")
			natsConn = nil
		} else {
			defer natsConn.Drain()
		}
	}

	validate := validator.New(validator.WithRequiredStructEnabled())

	store := repository.NewStore(db)
	transactor := repository.NewTransactor(db)
	statsRepo := repository.NewStatsRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)

	notifier := service.NewNotificationDispatcher(notificationRepo, redisClient, cfg.NotificationsChannel, natsConn, logger)
	trailService := service.NewActionTrailService(store.Trail, redisClient, cfg.TrailCacheTTL, cfg.TrailExportLimit, logger)
	badgeService := service.NewBadgeService(service.NewBadgeRegistry(service.DefaultBadgeRules()), statsRepo, store.Badges, transactor, notifier, logger)
	escalationService := service.NewEscalationService(store.Users, store.Warnings, transactor, notifier, validate, cfg.TempBanDuration, logger)
	appealService := service.NewAppealService(store.Appeals, transactor, notifier, validate, logger)
	trustService := service.NewTrustService(store.Users, store.Warnings, badgeService, statsRepo, service.EngagementPolicy{
		Posts:            cfg.Engagement.Posts,
		LikesReceived:    cfg.Engagement.LikesReceived,
		Comments:         cfg.Engagement.Comments,
		Followers:        cfg.Engagement.Followers,
		Following:        cfg.Engagement.Following,
		CommunityMembers: cfg.Engagement.CommunityMembers,
	}, transactor, validate, logger)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
	})

	middleware.Register(app, middleware.Config{Logger: &logger})
	router.Register(app, cfg, router.Dependencies{
		BadgeHandler:      handler.NewBadgeHandler(badgeService, validate, logger),
		TrustHandler:      handler.NewTrustHandler(trustService, logger),
		ModerationHandler: handler.NewModerationHandler(escalationService, trustService, logger),
		AppealHandler:     handler.NewAppealHandler(appealService, logger),
		TrailHandler:      handler.NewTrailHandler(trailService, logger),
		JWTMiddleware:     middleware.JWTProtected(cfg.JWTSecret),
	})

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	waitForShutdown(app)
}

func waitForShutdown(app *fiber.App) {
	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-shutdownCtx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}

	log.Println("server stopped")
}
