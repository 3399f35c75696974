package main // Entry point package

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

	"github.com/iliyamo/hotel-booking/internal/config"
	"github.com/iliyamo/hotel-booking/internal/database"
	"github.com/iliyamo/hotel-booking/internal/handler"
	"github.com/iliyamo/hotel-booking/internal/jobs"
	applog "github.com/iliyamo/hotel-booking/internal/log"
	"github.com/iliyamo/hotel-booking/internal/queue"
	"github.com/iliyamo/hotel-booking/internal/repository"
	"github.com/iliyamo/hotel-booking/internal/repository/memory"
	"github.com/iliyamo/hotel-booking/internal/router"
	"github.com/iliyamo/hotel-booking/internal/service"
)

func main() {
	_ = godotenv.Load() // .env is optional; real env vars win

	cfg, err := config.Load()
	logger := applog.New(cfg.Env)
	if err != nil {
		logger.Fatal().Err(err).Msg("invalid configuration")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, closeStore := openStore(ctx, cfg, logger)
	defer closeStore()

	rdb := config.NewRedisClient()
	if rdb == nil {
		logger.Warn().Msg("redis unavailable: in-process rate limiting, response cache disabled")
	} else {
		defer rdb.Close()
	}

	var publisher service.EventPublisher
	if cfg.RabbitURL != "" {
		publisher = queue.NewPublisher(cfg.RabbitURL, logger)
		if cfg.RunConsumer {
			consumer := queue.NewConsumer(cfg.RabbitURL, cfg.BookingLogDir, logger)
			go func() {
				if err := consumer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
					logger.Error().Err(err).Msg("booking consumer stopped")
				}
			}()
		}
	} else {
		logger.Warn().Msg("RABBITMQ_URL not set: booking events disabled")
	}

	opts := []service.Option{service.WithLogger(logger)}
	sessions := service.NewSessionManager(store, cfg.SessionTTL, opts...)
	accounts := service.NewAccountService(store, sessions, cfg.BcryptCost, opts...)
	availability := service.NewAvailabilityChecker(store, opts...)
	reservations := service.NewReservationService(store, availability, opts...)
	payments := service.NewPaymentProcessor(store, publisher, cfg.ReceiptSecret, cfg.ReceiptTTL, opts...)

	scheduler := jobs.NewScheduler(sessions, cfg.SessionPurgeCron, cfg.SessionRetention, logger)
	if err := scheduler.Start(); err != nil {
		logger.Fatal().Err(err).Msg("start scheduler")
	}
	defer scheduler.Stop()

	e := router.New(router.Deps{
		Auth:         handler.NewAuthHandler(accounts, sessions),
		Rooms:        handler.NewRoomHandler(availability),
		Reservations: handler.NewReservationHandler(reservations),
		Payments:     handler.NewPaymentHandler(payments),
		Sessions:     sessions,
		Redis:        rdb,
		RateLimit:    config.LoadRateLimitConfig(),
		Cache:        config.LoadCacheConfig(),
		Log:          logger,
	})

	addr := ":" + cfg.Port
	go func() {
		logger.Info().Str("addr", addr).Str("store", cfg.Store).Msg("listening")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("http server")
		}
	}()

	<-ctx.Done()
	logger.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("http shutdown")
	}
}

// openStore returns the configured store and its cleanup function.
func openStore(ctx context.Context, cfg config.Config, logger zerolog.Logger) (repository.Store, func()) {
	if cfg.Store == config.StoreMemory {
		st := memory.New()
		st.AddRooms(database.SeedRooms()...)
		logger.Warn().Msg("using in-memory store: data is lost on restart")
		return st, func() {}
	}

	db, err := database.Open(ctx, database.Options{
		User: cfg.DBUser,
		Pass: cfg.DBPass,
		Host: cfg.DBHost,
		Port: cfg.DBPort,
		Name: cfg.DBName,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("connect mysql")
	}
	if err := database.Migrate(ctx, db); err != nil {
		logger.Fatal().Err(err).Msg("migrate schema")
	}
	if cfg.DBSeed {
		n, err := database.Seed(ctx, db)
		if err != nil {
			logger.Fatal().Err(err).Msg("seed rooms")
		}
		if n > 0 {
			logger.Info().Int("rooms", n).Msg("seeded room catalogue")
		}
	}
	return repository.NewMySQLStore(db), func() { _ = db.Close() }
}
