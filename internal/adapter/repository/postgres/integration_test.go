package postgres_test

import (
	"context"
	"errors"
	"os"
	"sync"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/walletledger/internal/adapter/repository/postgres"
	"github.com/iho/walletledger/internal/domain"
	pgdb "github.com/iho/walletledger/internal/infrastructure/postgres"
	"github.com/iho/walletledger/internal/usecase"
	"github.com/iho/walletledger/internal/usecase/mocks"
)

type integrationEnv struct {
	pool     *pgxpool.Pool
	accounts *postgres.AccountRepository
	history  *postgres.HistoryRepository
	engine   *usecase.BalanceUseCase
	ids      *postgres.ULIDGenerator
}

func setupIntegration(t *testing.T) *integrationEnv {
	t.Helper()

	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	require.NoError(t, pgdb.RunMigrations(url, "", zerolog.Nop()))

	pool, err := pgdb.NewPool(context.Background(), url, 20, 1)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	env := &integrationEnv{
		pool:     pool,
		accounts: postgres.NewAccountRepository(pool),
		history:  postgres.NewHistoryRepository(pool),
		ids:      postgres.NewULIDGenerator(),
	}

	env.engine = usecase.NewBalanceUseCase(
		postgres.NewTxManager(pool),
		env.accounts,
		env.history,
		mocks.NewRecordingAuditSink(),
		mocks.NewRecordingAlertSink(),
		zerolog.Nop(),
		usecase.WithRetrier(postgres.NewRetrier(zerolog.Nop())),
	)

	return env
}

// provision creates a fresh account funded with balance through the engine.
func (e *integrationEnv) provision(t *testing.T, balance decimal.Decimal) string {
	t.Helper()

	id := "IT-" + e.ids.Generate()
	_, err := e.accounts.Provision(context.Background(), id)
	require.NoError(t, err)

	if balance.IsPositive() {
		_, err = e.engine.Increase(context.Background(), usecase.MutationInput{AccountID: id, Amount: balance})
		require.NoError(t, err)
	}

	return id
}

func TestIntegrationDecreaseAndInsufficient(t *testing.T) {
	env := setupIntegration(t)
	id := env.provision(t, decimal.NewFromInt(100000))

	result, err := env.engine.Decrease(context.Background(), usecase.MutationInput{AccountID: id, Amount: decimal.NewFromInt(30000), Kind: domain.KindPayment})
	require.NoError(t, err)
	assert.True(t, result.BalanceAfter.Equal(decimal.NewFromInt(70000)))
	assert.NotZero(t, result.EntryID)

	_, err = env.engine.Decrease(context.Background(), usecase.MutationInput{AccountID: id, Amount: decimal.NewFromInt(150000)})
	require.ErrorIs(t, err, domain.ErrInsufficientBalance)

	balance, err := env.engine.GetBalance(context.Background(), id)
	require.NoError(t, err)
	assert.True(t, balance.Equal(decimal.NewFromInt(70000)))
}

func TestIntegrationConcurrentDecreases(t *testing.T) {
	const n = 20

	env := setupIntegration(t)
	id := env.provision(t, decimal.NewFromInt(n*5))

	var (
		wg           sync.WaitGroup
		mu           sync.Mutex
		insufficient int
	)

	for range n + 1 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := env.engine.Decrease(context.Background(), usecase.MutationInput{AccountID: id, Amount: decimal.NewFromInt(5)})
			if errors.Is(err, domain.ErrInsufficientBalance) {
				mu.Lock()
				insufficient++
				mu.Unlock()
				return
			}
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, insufficient)

	account, err := env.accounts.GetByID(context.Background(), id)
	require.NoError(t, err)
	assert.True(t, account.Balance.IsZero())

	chain, err := env.history.ListChain(context.Background(), id)
	require.NoError(t, err)
	require.Len(t, chain, n+1)
	assert.Equal(t, int64(n+1), account.Version)

	for i := 1; i < len(chain); i++ {
		assert.True(t, chain[i].BalanceBefore.Equal(chain[i-1].BalanceAfter))
	}
}

func TestIntegrationTransferIsAtomic(t *testing.T) {
	env := setupIntegration(t)
	from := env.provision(t, decimal.NewFromInt(100))
	to := env.provision(t, decimal.Zero)

	transfers := usecase.NewTransferUseCase(env.engine, mocks.NewRecordingAuditSink(), mocks.NewRecordingAlertSink(), env.ids, nil, zerolog.Nop(), decimal.Zero)

	transfer, err := transfers.Transfer(context.Background(), usecase.TransferInput{FromAccountID: from, ToAccountID: to, Amount: decimal.NewFromInt(60)})
	require.NoError(t, err)

	entries, err := env.history.ListByReference(context.Background(), transfer.ID)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	_, err = transfers.Transfer(context.Background(), usecase.TransferInput{FromAccountID: from, ToAccountID: to, Amount: decimal.NewFromInt(60)})
	require.ErrorIs(t, err, domain.ErrInsufficientBalance)

	fromBalance, _ := env.engine.GetBalance(context.Background(), from)
	toBalance, _ := env.engine.GetBalance(context.Background(), to)
	assert.True(t, fromBalance.Equal(decimal.NewFromInt(40)))
	assert.True(t, toBalance.Equal(decimal.NewFromInt(60)))
}
