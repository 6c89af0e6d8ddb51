package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/undercover-social/backend/internal/application"
	"github.com/undercover-social/backend/internal/config"
	"github.com/undercover-social/backend/internal/infrastructure/postgres"
	webpushsender "github.com/undercover-social/backend/internal/infrastructure/webpush"
	kafkaconsumer "github.com/undercover-social/backend/internal/kafka"
	transporthttp "github.com/undercover-social/backend/internal/transport/http"
)

func main() {
	// ── Logging ──────────────────────────────────────────────────────────────
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	// ── Config ───────────────────────────────────────────────────────────────
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	if cfg.Server.Env == "production" {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	log.Info().Str("env", cfg.Server.Env).Str("port", cfg.Server.Port).Msg("starting undercover delivery core")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ── Database ──────────────────────────────────────────────────────────────
	pool, err := pgxpool.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		log.Fatal().Err(err).Msg("postgres ping failed")
	}
	log.Info().Msg("postgres connected")

	// ── Repositories ──────────────────────────────────────────────────────────
	posts := postgres.NewPostRepository(pool)
	broadcasts := postgres.NewBroadcastRepository(pool)
	notifications := postgres.NewNotificationRepository(pool)
	subscriptions := postgres.NewSubscriptionRepository(pool)
	directory := postgres.NewUserDirectory(pool)

	// ── Delivery pipeline ─────────────────────────────────────────────────────
	hub := transporthttp.NewHub()
	sender := webpushsender.NewSender(cfg.Push.Subscriber, cfg.Push.VAPIDPublicKey, cfg.Push.VAPIDPrivateKey)
	fanout := application.NewFanoutEngine(notifications, subscriptions, sender, hub, cfg.Push.Timeout())

	scheduler := application.NewTimerScheduler()
	broadcastSvc := application.NewBroadcastService(broadcasts, directory, fanout, scheduler)
	lifecycleSvc := application.NewLifecycleService(posts, fanout)

	// Re-register timers for broadcasts scheduled before the last restart.
	if err := broadcastSvc.RearmScheduled(ctx); err != nil {
		log.Error().Err(err).Msg("rearming scheduled broadcasts failed")
	}

	// ── HTTP Server ───────────────────────────────────────────────────────────
	handler := transporthttp.NewHandler(lifecycleSvc, notifications, subscriptions, hub, cfg.Push.VAPIDPublicKey)
	adminHandler := transporthttp.NewAdminHandler(broadcastSvc, lifecycleSvc, directory)
	router := transporthttp.NewRouter(handler, adminHandler, cfg.Auth.JWTSecret)

	// ── Kafka Consumer ────────────────────────────────────────────────────────
	consumer, err := kafkaconsumer.New(
		cfg.Kafka.Brokers,
		cfg.Kafka.ConsumerGroupID,
		cfg.Kafka.Topics,
		fanout,
	)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create kafka consumer")
	}

	go consumer.Start(ctx)
	log.Info().Strs("topics", cfg.Kafka.Topics).Msg("kafka consumer started")

	// ── Start HTTP Server ─────────────────────────────────────────────────────
	go func() {
		log.Info().Str("port", cfg.Server.Port).Msg("HTTP server listening")
		if err := router.Start(":" + cfg.Server.Port); err != nil {
			log.Info().Msg("HTTP server stopped")
		}
	}()

	// ── Graceful Shutdown ─────────────────────────────────────────────────────
	<-ctx.Done()
	log.Info().Msg("shutting down gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := router.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}

	log.Info().Msg("undercover delivery core stopped")
}
