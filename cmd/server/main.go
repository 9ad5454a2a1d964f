// cmd/server/main.go
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
	"github.com/rs/zerolog"

	"github.com/unclebandit/kickstarter-backend/internal/config"
	"github.com/unclebandit/kickstarter-backend/internal/controller"
	"github.com/unclebandit/kickstarter-backend/internal/db"
	"github.com/unclebandit/kickstarter-backend/internal/logger"
	"github.com/unclebandit/kickstarter-backend/internal/prediction"
	"github.com/unclebandit/kickstarter-backend/internal/queue"
	"github.com/unclebandit/kickstarter-backend/internal/repository"
	"github.com/unclebandit/kickstarter-backend/internal/router"
	"github.com/unclebandit/kickstarter-backend/internal/service"
)

func main() {
	// Load .env
	envErr := godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		boot := logger.New(config.DefaultLogLevel, "development", "api")
		boot.Fatal().Err(err).Msg("failed to load config")
	}

	log := logger.New(cfg.LogLevel, cfg.AppEnv, "api")
	if envErr != nil {
		log.Debug().Msg("no .env file found, relying on OS environment variables")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	conn, err := db.Init(ctx, cfg.DSN(), log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer conn.Close()

	userRepo := &repository.UserRepository{DB: conn}
	campaignRepo := &repository.CampaignRepository{DB: conn}
	predictionRepo := &repository.PredictionRepository{DB: conn}

	predictor := prediction.NewClient(cfg.PredictionURL, cfg.PredictionTimeout(), log)

	q, closeQueue := setupQueue(cfg, log, campaignRepo, predictionRepo, predictor)
	defer closeQueue()

	userController := &controller.UserController{
		UserService: &service.UserService{UserRepo: userRepo},
		Logger:      log,
	}
	campaignController := controller.NewCampaignController(&service.CampaignService{
		CampaignRepo: campaignRepo,
		Predictor:    predictor,
		Queue:        q,
		Logger:       log,
	}, log)

	handler := router.NewRouter(router.Config{
		BasePath:  cfg.UsersBasePath,
		JWTSecret: cfg.JWTSecret,
		Logger:    log,
	}, userController, campaignController)

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		// Leaves room for a slow prediction call.
		WriteTimeout: cfg.PredictionTimeout() + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", srv.Addr).Str("base_path", cfg.UsersBasePath).Msg("server running")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("server stopped")
			stop()
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}

// setupQueue connects to RabbitMQ when configured. Otherwise events stay in
// process and the prediction worker runs alongside the API.
func setupQueue(
	cfg *config.Config,
	log zerolog.Logger,
	campaigns repository.CampaignRepositoryInterface,
	predictions repository.PredictionRepositoryInterface,
	predictor service.Predictor,
) (queue.Queue, func()) {
	if cfg.RabbitMQURL != "" {
		q, err := queue.NewAMQPQueue(cfg.RabbitMQURL, log)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to rabbitmq")
		}
		log.Info().Msg("publishing campaign events to rabbitmq")
		return q, func() {
			if err := q.Close(); err != nil {
				log.Warn().Err(err).Msg("failed to close rabbitmq connection")
			}
		}
	}

	q := queue.NewInMemoryQueue(log)
	worker := service.NewPredictionWorker(campaigns, predictions, predictor, log)
	if err := worker.Start(q); err != nil {
		log.Fatal().Err(err).Msg("failed to start prediction worker")
	}
	log.Info().Msg("campaign events handled in process")
	return q, q.Wait
}
