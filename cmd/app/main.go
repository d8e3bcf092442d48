package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aviatio/flightdeck/api"
	"github.com/aviatio/flightdeck/config"
	"github.com/aviatio/flightdeck/internal/auth"
	"github.com/aviatio/flightdeck/internal/bootstrap"
	"github.com/aviatio/flightdeck/internal/cache"
	"github.com/aviatio/flightdeck/internal/kafka"
	"github.com/aviatio/flightdeck/internal/predictor"
	"github.com/aviatio/flightdeck/internal/repository"
	"github.com/aviatio/flightdeck/internal/service/booking"
	"github.com/aviatio/flightdeck/internal/service/flights"
	"github.com/aviatio/flightdeck/internal/service/loyalty"
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

	poolCfg, err := pgxpool.ParseConfig(cfg.Database.DSN())
	if err != nil {
		logger.Fatal("parse database config", zap.Error(err))
	}
	if cfg.Database.MaxConns > 0 {
		poolCfg.MaxConns = int32(cfg.Database.MaxConns)
	}
	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		logger.Fatal("connect to database", zap.Error(err))
	}
	defer pool.Close()

	if err := repository.InitSchema(ctx, pool); err != nil {
		logger.Fatal("init schema", zap.Error(err))
	}

	var store cache.Cache
	switch cfg.Cache.Backend {
	case "redis":
		redisCache := cache.NewRedisCache(cfg.Redis)
		defer redisCache.Close()
		store = redisCache
	default:
		memCache := cache.NewMemoryCache(time.Duration(cfg.Cache.SweepMinutes) * time.Minute)
		defer memCache.Close()
		store = memCache
	}

	producer := kafka.NewProducer(cfg.Kafka.Brokers)
	defer producer.Close()
	publisher := kafka.NewRetryPublisher(producer, cfg.Kafka.PublishRetries)

	flightRepo := repository.NewFlightRepository(pool)
	bookingRepo := repository.NewBookingRepository(pool)
	loyaltyRepo := repository.NewLoyaltyRepository(pool)
	txManager := repository.NewTxManager(pool)

	var pricePredictor flights.Predictor
	if cfg.Predictor.BaseURL != "" {
		pricePredictor = predictor.NewClient(cfg.Predictor.BaseURL,
			time.Duration(cfg.Predictor.TimeoutSeconds)*time.Second)
	}

	ttls := flights.TTLs{
		Search:    time.Duration(cfg.Cache.SearchTTLSeconds) * time.Second,
		Flight:    time.Duration(cfg.Cache.FlightTTLSeconds) * time.Second,
		Reference: time.Duration(cfg.Cache.ReferenceTTLSeconds) * time.Second,
	}

	flightService := flights.NewFlightService(flightRepo, store, pricePredictor, ttls, logger)
	bookingService := booking.NewBookingService(
		txManager, flightRepo, bookingRepo, loyaltyRepo,
		store, publisher, cfg.Kafka.WelcomeTopic, logger)
	loyaltyService := loyalty.NewLoyaltyService(txManager, loyaltyRepo, logger)

	verifier := auth.NewVerifier(cfg.Auth.HMACSecret)
	router := bootstrap.NewRouter(bootstrap.Handlers{
		Flights:  api.NewFlightHandler(flightService, logger),
		Bookings: api.NewBookingHandler(bookingService, logger),
		Miles:    api.NewMilesHandler(loyaltyService, logger),
	}, verifier)

	if err := bootstrap.Run(ctx, cfg.HTTP.Address, router, logger); err != nil {
		logger.Fatal("http server", zap.Error(err))
	}
	logger.Info("server stopped")
}
