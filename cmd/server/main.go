package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	httpAdapter "github.com/iho/walletledger/internal/adapter/http"
	"github.com/iho/walletledger/internal/adapter/http/handler"
	"github.com/iho/walletledger/internal/adapter/http/middleware"
	postgresRepo "github.com/iho/walletledger/internal/adapter/repository/postgres"
	redisRepo "github.com/iho/walletledger/internal/adapter/repository/redis"
	"github.com/iho/walletledger/internal/infrastructure/config"
	"github.com/iho/walletledger/internal/infrastructure/eventpublisher"
	"github.com/iho/walletledger/internal/infrastructure/logger"
	"github.com/iho/walletledger/internal/infrastructure/metrics"
	"github.com/iho/walletledger/internal/infrastructure/redis"
	"github.com/iho/walletledger/internal/usecase"
)

const limiterIdleTTL = 10 * time.Minute

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal().Err(err).Msg("server failed")
	}

	log.Info().Msg("server stopped")
}

func run(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(reg)

	store, err := openStorage(ctx, cfg, m, log)
	if err != nil {
		return err
	}
	defer store.close()

	var (
		idempotency usecase.IdempotencyStore
		velocity    usecase.VelocityCounter
		ledgerRepo  = store.ledger
	)

	if cfg.RedisEnabled {
		client, err := redis.NewClient(ctx, redis.ClientConfig{
			URL:          cfg.RedisURL,
			PoolSize:     cfg.RedisPoolSize,
			ConnectRetry: cfg.DatabaseTimeout,
		}, log)
		if err != nil {
			return fmt.Errorf("connect to redis: %w", err)
		}
		defer client.Close()
		log.Info().Msg("connected to redis")

		idempotency = redisRepo.NewIdempotencyStore(client)
		velocity = redisRepo.NewVelocityCounter(client)
		ledgerRepo = redisRepo.NewCachedLedgerRepository(store.ledger, redisRepo.NewCache(client), cfg.LedgerCache, log)
		store.checks["redis"] = handler.RedisCheck(client)
	}

	dispatcher := eventpublisher.NewDispatcher(eventpublisher.Config{
		AuditRepo:  store.audit,
		Alerts:     eventpublisher.NewLogPublisher(log),
		Metrics:    m,
		Logger:     log,
		BufferSize: cfg.EventBufferSize,
		Workers:    cfg.EventWorkers,
	})

	detector := usecase.NewAnomalyDetector(dispatcher, velocity, m, log, usecase.AnomalyConfig{
		SuspiciousAmount: cfg.SuspiciousAmount,
		VelocityLimit:    cfg.VelocityLimit,
		VelocityWindow:   cfg.VelocityWindow,
	})

	opts := []usecase.BalanceOption{
		usecase.WithMetrics(m),
		usecase.WithTimeouts(cfg.MutationTimeout, cfg.ReadTimeout),
		usecase.WithAnomalyDetector(detector),
	}
	if store.retrier != nil {
		opts = append(opts, usecase.WithRetrier(store.retrier))
	}

	engine := usecase.NewBalanceUseCase(store.txManager, store.accounts, store.history, dispatcher, dispatcher, log, opts...)

	if err := seedAccounts(ctx, store, engine, cfg.SeedAccounts, log); err != nil {
		return err
	}

	idGen := postgresRepo.NewULIDGenerator()

	accountUC := usecase.NewAccountUseCase(engine, idGen, m)
	transferUC := usecase.NewTransferUseCase(engine, dispatcher, dispatcher, idGen, m, log, cfg.TransferLimit)
	paymentUC := usecase.NewPaymentUseCase(engine, store.history, dispatcher, idGen, m, log)
	historyUC := usecase.NewHistoryUseCase(store.accounts, store.history)
	reconciliationUC := usecase.NewReconciliationUseCase(store.accounts, store.history, ledgerRepo, dispatcher)

	limiter := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst).OnReject(m.RecordRateLimitHit)

	router := httpAdapter.NewRouter(httpAdapter.RouterConfig{
		AccountHandler:   handler.NewAccountHandler(accountUC),
		TransferHandler:  handler.NewTransferHandler(transferUC),
		PaymentHandler:   handler.NewPaymentHandler(paymentUC),
		HistoryHandler:   handler.NewHistoryHandler(historyUC),
		LedgerHandler:    handler.NewLedgerHandler(reconciliationUC),
		HealthHandler:    handler.NewHealthHandler(store.checks),
		IdempotencyStore: idempotency,
		IdempotencyTTL:   cfg.IdempotencyTTL,
		RateLimiter:      limiter,
		Metrics:          m,
		Gatherer:         reg,
		Logger:           log,
	})

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)

	// The dispatcher outlives the server so events from in-flight requests
	// are still delivered; it is closed after Shutdown returns.
	g.Go(func() error {
		return dispatcher.Run(context.Background())
	})

	g.Go(func() error {
		log.Info().Str("port", cfg.HTTPPort).Str("storage", cfg.StorageDriver).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		ticker := time.NewTicker(limiterIdleTTL)
		defer ticker.Stop()

		for {
			select {
			case <-gctx.Done():
				return nil
			case <-ticker.C:
				if n := limiter.CleanupLimiters(limiterIdleTTL); n > 0 {
					log.Debug().Int("removed", n).Msg("cleaned up idle rate limiters")
				}
			}
		}
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPShutdownTimeout)
		defer cancel()

		err := server.Shutdown(shutdownCtx)
		dispatcher.Close()
		if err != nil {
			return fmt.Errorf("server forced to shutdown: %w", err)
		}
		return nil
	})

	return g.Wait()
}
