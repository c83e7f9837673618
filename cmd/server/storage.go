package main

import (
	"context"
	"fmt"
	"sort"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/iho/walletledger/internal/adapter/http/handler"
	"github.com/iho/walletledger/internal/adapter/repository/memory"
	postgresRepo "github.com/iho/walletledger/internal/adapter/repository/postgres"
	"github.com/iho/walletledger/internal/domain"
	"github.com/iho/walletledger/internal/infrastructure/config"
	"github.com/iho/walletledger/internal/infrastructure/metrics"
	"github.com/iho/walletledger/internal/infrastructure/postgres"
	"github.com/iho/walletledger/internal/usecase"
)

// storage bundles the repositories of one STORAGE_DRIVER.
type storage struct {
	txManager usecase.TransactionManager
	accounts  usecase.AccountRepository
	history   usecase.HistoryRepository
	ledger    usecase.LedgerRepository
	audit     usecase.AuditRepository
	retrier   usecase.Retrier
	checks    map[string]handler.CheckFunc

	// provision creates an account if it is missing. fund reports whether
	// the opening balance still has to be deposited.
	provision func(ctx context.Context, id string, balance decimal.Decimal) (fund bool, err error)
	close     func()
}

func openStorage(ctx context.Context, cfg *config.Config, m *metrics.Metrics, log zerolog.Logger) (*storage, error) {
	switch cfg.StorageDriver {
	case config.StorageMemory:
		return openMemory(log), nil
	case config.StoragePostgres:
		return openPostgres(ctx, cfg, m, log)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
	}
}

func openMemory(log zerolog.Logger) *storage {
	store := memory.NewStore()
	log.Warn().Msg("using in-memory storage; balances are lost on restart")

	return &storage{
		txManager: store,
		accounts:  store,
		history:   store,
		ledger:    store,
		checks:    map[string]handler.CheckFunc{},
		provision: func(ctx context.Context, id string, balance decimal.Decimal) (bool, error) {
			if _, err := store.GetByID(ctx, id); err == nil {
				return false, nil
			}
			store.Seed(id, balance)
			return false, nil
		},
		close: func() {},
	}
}

func openPostgres(ctx context.Context, cfg *config.Config, m *metrics.Metrics, log zerolog.Logger) (*storage, error) {
	if cfg.RunMigrations {
		if err := postgres.RunMigrations(cfg.DatabaseURL, cfg.MigrationsPath, log); err != nil {
			return nil, fmt.Errorf("run migrations: %w", err)
		}
	}

	pool, err := postgres.NewPoolWithConfig(ctx, postgres.PoolConfig{
		DatabaseURL:    cfg.DatabaseURL,
		MaxConns:       cfg.DatabaseMaxConns,
		MinConns:       cfg.DatabaseMinConns,
		ConnectTimeout: cfg.DatabaseTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}
	log.Info().Msg("connected to postgres")

	accounts := postgresRepo.NewAccountRepository(pool)
	retrier := postgresRepo.NewRetrier(log,
		postgresRepo.WithMaxRetries(cfg.DatabaseRetries),
		postgresRepo.WithRetryObserver(m.RecordStorageRetry),
	)

	return &storage{
		txManager: postgresRepo.NewTxManager(pool),
		accounts:  accounts,
		history:   postgresRepo.NewHistoryRepository(pool),
		ledger:    postgresRepo.NewLedgerRepository(pool),
		audit:     postgresRepo.NewAuditRepository(pool),
		retrier:   retrier,
		checks:    map[string]handler.CheckFunc{"postgres": handler.PostgresCheck(pool)},
		provision: func(ctx context.Context, id string, _ decimal.Decimal) (bool, error) {
			account, err := accounts.Provision(ctx, id)
			if err != nil {
				return false, err
			}
			return account.Version == 0, nil
		},
		close: pool.Close,
	}, nil
}

// seedAccounts provisions the configured accounts. Opening balances are
// applied only to accounts without history; on Postgres they go through the
// engine so each one leaves a DEPOSIT entry.
func seedAccounts(ctx context.Context, st *storage, engine usecase.BalanceEngine, seeds map[string]string, log zerolog.Logger) error {
	ids := make([]string, 0, len(seeds))
	for id := range seeds {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		balance, err := decimal.NewFromString(seeds[id])
		if err != nil {
			return fmt.Errorf("seed %s: %w", id, err)
		}

		fund, err := st.provision(ctx, id, balance)
		if err != nil {
			return fmt.Errorf("seed %s: %w", id, err)
		}

		if fund && balance.IsPositive() {
			_, err := engine.Increase(ctx, usecase.MutationInput{
				AccountID:   id,
				Amount:      balance,
				Kind:        domain.KindDeposit,
				Description: "opening balance",
				ActorID:     "SYSTEM",
			})
			if err != nil {
				return fmt.Errorf("seed %s: %w", id, err)
			}
		}

		log.Info().Str("account_id", id).Str("balance", balance.StringFixed(2)).Msg("account provisioned")
	}

	return nil
}
