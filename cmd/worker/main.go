package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aviatio/flightdeck/config"
	"github.com/aviatio/flightdeck/internal/email"
	"github.com/aviatio/flightdeck/internal/kafka"
	"github.com/aviatio/flightdeck/internal/repository"
	"github.com/aviatio/flightdeck/internal/worker"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config.yaml"
	}
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		logger.Fatal("load config", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := pgxpool.New(ctx, cfg.Database.DSN())
	if err != nil {
		logger.Fatal("connect to database", zap.Error(err))
	}
	defer pool.Close()

	loyaltyRepo := repository.NewLoyaltyRepository(pool)
	txManager := repository.NewTxManager(pool)
	mailer := email.NewSender(logger)
	reconciler := worker.NewReconciler(txManager, loyaltyRepo, mailer, logger)

	consumer := kafka.NewWelcomeConsumer(cfg.Kafka.Brokers, cfg.Kafka.GroupID, cfg.Kafka.WelcomeTopic, logger)
	defer consumer.Close()

	go consumer.Run(ctx, func(ctx context.Context, event kafka.WelcomeEvent) error {
		if err := mailer.SendWelcome(ctx, event.Email, event.Name); err != nil {
			return err
		}
		return loyaltyRepo.MarkWelcomeEmailSent(ctx, event.MemberNumber)
	})

	reconcileTicker := time.NewTicker(time.Duration(cfg.Worker.ReconcileIntervalMinutes) * time.Minute)
	defer reconcileTicker.Stop()
	welcomeTicker := time.NewTicker(time.Duration(cfg.Worker.WelcomeSweepIntervalMinutes) * time.Minute)
	defer welcomeTicker.Stop()

	logger.Info("worker started")
	for {
		select {
		case <-reconcileTicker.C:
			if err := reconciler.ProcessCompletedFlights(ctx); err != nil {
				logger.Error("reconcile completed flights", zap.Error(err))
			}
		case <-welcomeTicker.C:
			if err := reconciler.SendPendingWelcomeEmails(ctx); err != nil {
				logger.Error("send pending welcome emails", zap.Error(err))
			}
		case <-ctx.Done():
			logger.Info("shutting down worker")
			return
		}
	}
}
