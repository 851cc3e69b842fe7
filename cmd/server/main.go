package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	httpAdapter "github.com/iho/generalledger/internal/adapter/http"
	"github.com/iho/generalledger/internal/adapter/http/handler"
	postgresRepo "github.com/iho/generalledger/internal/adapter/repository/postgres"
	redisRepo "github.com/iho/generalledger/internal/adapter/repository/redis"
	"github.com/iho/generalledger/internal/chart"
	"github.com/iho/generalledger/internal/infrastructure/config"
	"github.com/iho/generalledger/internal/infrastructure/logger"
	"github.com/iho/generalledger/internal/infrastructure/postgres"
	"github.com/iho/generalledger/internal/infrastructure/redis"
	"github.com/iho/generalledger/internal/usecase"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	// Setup logger
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})

	ctx := context.Background()

	// Connect to PostgreSQL
	pool, err := postgres.NewPool(ctx, cfg.DatabaseURL, cfg.DatabaseMaxConns, cfg.DatabaseMinConns)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}
	defer pool.Close()
	log.Info().Msg("connected to postgres")

	// Run migrations
	if err := postgres.RunMigrations(cfg.DatabaseURL, cfg.MigrationsPath); err != nil {
		log.Fatal().Err(err).Msg("failed to run migrations")
	}

	// Connect to Redis
	redisClient, err := redis.NewClient(ctx, cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}
	defer redisClient.Close()
	log.Info().Msg("connected to redis")

	// Load chart of accounts templates
	charts := chart.NewRegistry()
	if cfg.ChartsPath != "" {
		charts, err = chart.LoadDir(cfg.ChartsPath)
		if err != nil {
			log.Fatal().Err(err).Str("path", cfg.ChartsPath).Msg("failed to load chart templates")
		}
		log.Info().Strs("templates", charts.Names()).Msg("loaded chart templates")
	}

	// Initialize repositories
	txManager := postgresRepo.NewTxManager(pool)
	retrier := postgresRepo.NewRetrier()
	domainRepo := postgresRepo.NewDomainRepository(pool)
	currencyRepo := postgresRepo.NewCurrencyRepository(pool)
	accountRepo := postgresRepo.NewAccountRepository(pool)
	balanceRepo := postgresRepo.NewBalanceRepository(pool)
	entryRepo := postgresRepo.NewEntryRepository(pool)
	idempotencyStore := redisRepo.NewIdempotencyStore(redisClient)
	idGen := postgresRepo.NewULIDGenerator()

	// Initialize use cases
	ledgerUC := usecase.NewLedgerUseCase(txManager, domainRepo, currencyRepo, accountRepo, balanceRepo, idGen)
	accountUC := usecase.NewAccountUseCase(txManager, domainRepo, currencyRepo, accountRepo, balanceRepo, entryRepo, idGen)
	journalUC := usecase.NewJournalUseCase(txManager, retrier, domainRepo, currencyRepo, accountRepo, balanceRepo, entryRepo, idGen)

	// Initialize handlers
	ledgerHandler := handler.NewLedgerHandler(ledgerUC, charts)
	accountHandler := handler.NewAccountHandler(accountUC)
	entryHandler := handler.NewEntryHandler(journalUC)
	healthHandler := handler.NewHealthHandler(pool, redisClient)

	// Create router
	router := httpAdapter.NewRouter(httpAdapter.RouterConfig{
		LedgerHandler:    ledgerHandler,
		AccountHandler:   accountHandler,
		EntryHandler:     entryHandler,
		HealthHandler:    healthHandler,
		IdempotencyStore: idempotencyStore,
		Logger:           log.Logger,
	})

	// Create server
	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}

	// Start server in goroutine
	go func() {
		log.Info().Str("port", cfg.HTTPPort).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server...")

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server stopped")
}
