package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/unclebandit/kickstarter-backend/internal/config"
	"github.com/unclebandit/kickstarter-backend/internal/db"
	"github.com/unclebandit/kickstarter-backend/internal/logger"
	"github.com/unclebandit/kickstarter-backend/internal/prediction"
	"github.com/unclebandit/kickstarter-backend/internal/queue"
	"github.com/unclebandit/kickstarter-backend/internal/repository"
	"github.com/unclebandit/kickstarter-backend/internal/service"
)

// The worker consumes campaign events from RabbitMQ and stores a
// prediction for every created or updated campaign.
func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		boot := logger.New(config.DefaultLogLevel, "development", "worker")
		boot.Fatal().Err(err).Msg("failed to load config")
	}
	log := logger.New(cfg.LogLevel, cfg.AppEnv, "worker")

	if cfg.RabbitMQURL == "" {
		log.Fatal().Msg("RABBITMQ_URL is required for the worker")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	conn, err := db.Init(ctx, cfg.DSN(), log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer conn.Close()

	q, err := queue.NewAMQPQueue(cfg.RabbitMQURL, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to rabbitmq")
	}
	defer q.Close()

	worker := service.NewPredictionWorker(
		&repository.CampaignRepository{DB: conn},
		&repository.PredictionRepository{DB: conn},
		prediction.NewClient(cfg.PredictionURL, cfg.PredictionTimeout(), log),
		log,
	)
	if err := worker.Start(q); err != nil {
		log.Fatal().Err(err).Msg("failed to register consumer")
	}

	log.Info().Str("topic", queue.CampaignEventsTopic).Msg("worker running, waiting for messages")

	select {
	case <-ctx.Done():
		log.Info().Msg("shutting down")
	case amqpErr := <-q.NotifyClose():
		// Exit non-zero so the supervisor restarts us against a fresh connection.
		log.Error().Interface("reason", amqpErr).Msg("rabbitmq connection closed")
		stop()
		conn.Close()
		os.Exit(1)
	}
}
