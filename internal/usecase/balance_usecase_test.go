package usecase_test

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/iho/walletledger/internal/adapter/repository/memory"
	"github.com/iho/walletledger/internal/domain"
	"github.com/iho/walletledger/internal/usecase"
	"github.com/iho/walletledger/internal/usecase/mocks"
)

type engineFixture struct {
	store  *memory.Store
	audit  *mocks.RecordingAuditSink
	alerts *mocks.RecordingAlertSink
	engine *usecase.BalanceUseCase
}

func newEngine(t *testing.T, store *memory.Store, opts ...usecase.BalanceOption) *engineFixture {
	t.Helper()

	if store == nil {
		store = memory.NewStore()
	}

	f := &engineFixture{
		store:  store,
		audit:  mocks.NewRecordingAuditSink(),
		alerts: mocks.NewRecordingAlertSink(),
	}
	f.engine = usecase.NewBalanceUseCase(store, store, store, f.audit, f.alerts, zerolog.Nop(), opts...)

	return f
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestBalanceUseCase_DecreaseScenario(t *testing.T) {
	f := newEngine(t, nil)
	f.store.Seed("ACC1", dec("100000"))

	result, err := f.engine.Decrease(context.Background(), usecase.MutationInput{
		AccountID:   "ACC1",
		Amount:      dec("30000"),
		Kind:        domain.KindPayment,
		Description: "order 1",
		ReferenceID: "PAY_1",
		ActorID:     "u-1",
	})
	require.NoError(t, err)

	assert.True(t, result.BalanceBefore.Equal(dec("100000")))
	assert.True(t, result.BalanceAfter.Equal(dec("70000")))
	assert.True(t, result.ChangeAmount.Equal(dec("-30000")))
	assert.Equal(t, domain.KindPayment, result.Kind)
	assert.Equal(t, "PAY_1", result.ReferenceID)
	assert.Equal(t, int64(2), result.Version)

	balance, err := f.engine.GetBalance(context.Background(), "ACC1")
	require.NoError(t, err)
	assert.True(t, balance.Equal(dec("70000")))

	entries, err := f.store.ListByReference(context.Background(), "PAY_1")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, result.EntryID, entries[0].ID)
	assert.True(t, entries[0].Amount.Equal(dec("-30000")))
	assert.Equal(t, domain.TransactionStatusCompleted, entries[0].Status)
	assert.Equal(t, "order 1", entries[0].Description)

	assert.Equal(t, 1, f.audit.Count(domain.AuditLevelSuccess))
	require.Equal(t, 1, f.alerts.Count(domain.AlertBalanceChanged))

	alert := f.alerts.Alerts()[0]
	assert.Equal(t, domain.DirectionDebit, alert.Direction)
	assert.Equal(t, "u-1", alert.ActorID)
	assert.True(t, alert.Amount.Equal(dec("30000")))
	assert.True(t, alert.Balance.Equal(dec("70000")))
}

func TestBalanceUseCase_InsufficientBalance(t *testing.T) {
	f := newEngine(t, nil)
	f.store.Seed("ACC1", dec("100000"))

	_, err := f.engine.Decrease(context.Background(), usecase.MutationInput{
		AccountID: "ACC1",
		Amount:    dec("150000"),
		Kind:      domain.KindWithdrawal,
		ActorID:   "u-1",
	})
	require.ErrorIs(t, err, domain.ErrInsufficientBalance)

	var insufficient *domain.InsufficientBalanceError
	require.ErrorAs(t, err, &insufficient)
	assert.True(t, insufficient.Current.Equal(dec("100000")))
	assert.True(t, insufficient.Requested.Equal(dec("150000")))

	balance, err := f.engine.GetBalance(context.Background(), "ACC1")
	require.NoError(t, err)
	assert.True(t, balance.Equal(dec("100000")))

	chain, err := f.store.ListChain(context.Background(), "ACC1")
	require.NoError(t, err)
	assert.Len(t, chain, 1)

	assert.Equal(t, 1, f.audit.Count(domain.AuditLevelWarning))
	assert.Equal(t, 0, f.audit.Count(domain.AuditLevelSuccess))
	assert.Len(t, f.alerts.Alerts(), 1)
	require.Equal(t, 1, f.alerts.Count(domain.AlertInsufficientBalance))

	alert := f.alerts.Alerts()[0]
	assert.Equal(t, "u-1", alert.ActorID)
	assert.True(t, alert.Balance.Equal(dec("100000")))
	assert.True(t, alert.Amount.Equal(dec("150000")))
}

func TestBalanceUseCase_DecreaseToExactlyZero(t *testing.T) {
	f := newEngine(t, nil)
	f.store.Seed("ACC1", dec("250.50"))

	result, err := f.engine.Decrease(context.Background(), usecase.MutationInput{AccountID: "ACC1", Amount: dec("250.50")})
	require.NoError(t, err)
	assert.True(t, result.BalanceAfter.IsZero())
	assert.Equal(t, domain.KindWithdrawal, result.Kind)
}

func TestBalanceUseCase_AccountNotFound(t *testing.T) {
	f := newEngine(t, nil)

	_, err := f.engine.Increase(context.Background(), usecase.MutationInput{AccountID: "NOPE", Amount: dec("10")})
	require.ErrorIs(t, err, domain.ErrAccountNotFound)
	assert.False(t, errors.Is(err, domain.ErrInternal))

	assert.Equal(t, 1, f.audit.Count(domain.AuditLevelWarning))
	assert.Empty(t, f.alerts.Alerts())

	_, err = f.engine.GetBalance(context.Background(), "NOPE")
	assert.ErrorIs(t, err, domain.ErrAccountNotFound)

	_, err = f.engine.GetBalanceForUpdate(context.Background(), "NOPE")
	assert.ErrorIs(t, err, domain.ErrAccountNotFound)
}

func TestBalanceUseCase_InvalidAmount(t *testing.T) {
	f := newEngine(t, nil)
	f.store.Seed("ACC1", dec("100"))

	amounts := []string{"0", "-5", "0.001"}

	for _, amount := range amounts {
		t.Run("increase "+amount, func(t *testing.T) {
			_, err := f.engine.Increase(context.Background(), usecase.MutationInput{AccountID: "ACC1", Amount: dec(amount)})
			assert.ErrorIs(t, err, domain.ErrInvalidAmount)
		})

		t.Run("decrease "+amount, func(t *testing.T) {
			_, err := f.engine.Decrease(context.Background(), usecase.MutationInput{AccountID: "ACC1", Amount: dec(amount)})
			assert.ErrorIs(t, err, domain.ErrInvalidAmount)
		})
	}

	chain, err := f.store.ListChain(context.Background(), "ACC1")
	require.NoError(t, err)
	assert.Len(t, chain, 1)
	assert.Empty(t, f.alerts.Alerts())
}

func TestBalanceUseCase_InvalidKind(t *testing.T) {
	f := newEngine(t, nil)
	f.store.Seed("ACC1", dec("100"))

	_, err := f.engine.Increase(context.Background(), usecase.MutationInput{AccountID: "ACC1", Amount: dec("1"), Kind: "BONUS"})
	assert.ErrorIs(t, err, domain.ErrInvalidKind)
}

func TestBalanceUseCase_ActorFromContext(t *testing.T) {
	f := newEngine(t, nil)
	f.store.Seed("ACC1", dec("0"))

	ctx := domain.WithActor(context.Background(), "u-ctx")
	_, err := f.engine.Increase(ctx, usecase.MutationInput{AccountID: "ACC1", Amount: dec("5")})
	require.NoError(t, err)

	_, err = f.engine.Increase(context.Background(), usecase.MutationInput{AccountID: "ACC1", Amount: dec("5")})
	require.NoError(t, err)

	alerts := f.alerts.Alerts()
	require.Len(t, alerts, 2)
	assert.Equal(t, "u-ctx", alerts[0].ActorID)
	assert.Equal(t, domain.DefaultActorID, alerts[1].ActorID)
}

func TestBalanceUseCase_ConcurrentDecreasesDrainToZero(t *testing.T) {
	const n = 50

	f := newEngine(t, nil)
	f.store.Seed("ACC1", decimal.NewFromInt(n*10))

	errs := runConcurrentDecreases(f.engine, "ACC1", n, dec("10"))
	for _, err := range errs {
		require.NoError(t, err)
	}

	balance, err := f.engine.GetBalance(context.Background(), "ACC1")
	require.NoError(t, err)
	assert.True(t, balance.IsZero(), "balance = %s", balance)

	assertChain(t, f.store, "ACC1")
}

func TestBalanceUseCase_ConcurrentDecreasesOneTooMany(t *testing.T) {
	const n = 40

	f := newEngine(t, nil)
	f.store.Seed("ACC1", decimal.NewFromInt(n*10))

	errs := runConcurrentDecreases(f.engine, "ACC1", n+1, dec("10"))

	succeeded, insufficient := 0, 0
	for _, err := range errs {
		switch {
		case err == nil:
			succeeded++
		case errors.Is(err, domain.ErrInsufficientBalance):
			insufficient++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}

	assert.Equal(t, n, succeeded)
	assert.Equal(t, 1, insufficient)

	balance, err := f.engine.GetBalance(context.Background(), "ACC1")
	require.NoError(t, err)
	assert.True(t, balance.IsZero())
	assert.Equal(t, 1, f.alerts.Count(domain.AlertInsufficientBalance))

	assertChain(t, f.store, "ACC1")
}

func TestBalanceUseCase_Conservation(t *testing.T) {
	f := newEngine(t, nil)
	f.store.Seed("ACC1", dec("1000"))

	var wg sync.WaitGroup
	for i := range 60 {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			amount := decimal.NewFromInt(int64(i%7 + 1))
			input := usecase.MutationInput{AccountID: "ACC1", Amount: amount, ReferenceID: fmt.Sprintf("R%d", i)}
			if i%3 == 0 {
				_, _ = f.engine.Increase(context.Background(), input)
				return
			}
			_, _ = f.engine.Decrease(context.Background(), input)
		}(i)
	}
	wg.Wait()

	account, err := f.store.GetByID(context.Background(), "ACC1")
	require.NoError(t, err)

	chain, err := f.store.ListChain(context.Background(), "ACC1")
	require.NoError(t, err)

	sum := decimal.Zero
	for _, e := range chain {
		sum = sum.Add(e.Amount)
		assert.False(t, e.BalanceAfter.IsNegative())
	}

	assert.True(t, account.Balance.Equal(sum), "balance %s != history sum %s", account.Balance, sum)
	assert.Equal(t, int64(len(chain)), account.Version)

	total, amounts, err := f.store.CheckConsistency(context.Background())
	require.NoError(t, err)
	assert.True(t, total.Equal(amounts))
}

func TestBalanceUseCase_CommitFailureLeavesNoWrites(t *testing.T) {
	store := memory.NewStore(memory.WithCommitHook(func(*memory.Tx) error {
		return errors.New("connection reset by peer")
	}))
	f := newEngine(t, store)
	store.Seed("ACC1", dec("100"))

	_, err := f.engine.Decrease(context.Background(), usecase.MutationInput{AccountID: "ACC1", Amount: dec("40")})
	require.ErrorIs(t, err, domain.ErrInternal)
	assert.False(t, errors.Is(err, domain.ErrTimeout))
	assert.NotContains(t, err.Error(), "connection reset")

	var internal *domain.InternalError
	require.ErrorAs(t, err, &internal)
	assert.Equal(t, domain.ReasonStorage, internal.Reason)

	balance, err := f.engine.GetBalance(context.Background(), "ACC1")
	require.NoError(t, err)
	assert.True(t, balance.Equal(dec("100")))

	chain, err := store.ListChain(context.Background(), "ACC1")
	require.NoError(t, err)
	assert.Len(t, chain, 1)

	assert.Equal(t, 1, f.audit.Count(domain.AuditLevelError))
	assert.Empty(t, f.alerts.Alerts())
}

func TestBalanceUseCase_LockTimeout(t *testing.T) {
	f := newEngine(t, nil, usecase.WithTimeouts(30*time.Millisecond, time.Second))
	f.store.Seed("ACC1", dec("100"))

	ctx := context.Background()
	holder, err := f.store.Begin(ctx)
	require.NoError(t, err)
	_, err = f.store.GetByIDForUpdate(ctx, holder, "ACC1")
	require.NoError(t, err)

	_, err = f.engine.Decrease(ctx, usecase.MutationInput{AccountID: "ACC1", Amount: dec("10")})
	require.ErrorIs(t, err, domain.ErrTimeout)
	require.ErrorIs(t, err, domain.ErrInternal)

	// plain reads are not blocked by the held lock
	balance, err := f.engine.GetBalance(ctx, "ACC1")
	require.NoError(t, err)
	assert.True(t, balance.Equal(dec("100")))

	require.NoError(t, holder.Rollback(ctx))

	_, err = f.engine.Decrease(ctx, usecase.MutationInput{AccountID: "ACC1", Amount: dec("10")})
	require.NoError(t, err)
}

func TestBalanceUseCase_GetBalanceForUpdateReleasesLockOutsideTransaction(t *testing.T) {
	f := newEngine(t, nil, usecase.WithTimeouts(100*time.Millisecond, time.Second))
	f.store.Seed("ACC1", dec("100"))

	balance, err := f.engine.GetBalanceForUpdate(context.Background(), "ACC1")
	require.NoError(t, err)
	assert.True(t, balance.Equal(dec("100")))

	_, err = f.engine.Decrease(context.Background(), usecase.MutationInput{AccountID: "ACC1", Amount: dec("10")})
	require.NoError(t, err)
}

func TestBalanceUseCase_HasSufficientBalance(t *testing.T) {
	f := newEngine(t, nil)
	f.store.Seed("ACC1", dec("100"))

	ok, err := f.engine.HasSufficientBalance(context.Background(), "ACC1", dec("100"))
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = f.engine.HasSufficientBalance(context.Background(), "ACC1", dec("100.01"))
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = f.engine.HasSufficientBalance(context.Background(), "NOPE", dec("1"))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestBalanceUseCase_RunInTransactionRollsBackAllWrites(t *testing.T) {
	f := newEngine(t, nil)
	f.store.Seed("A", dec("100"))
	f.store.Seed("B", dec("0"))

	err := f.engine.RunInTransaction(context.Background(), func(ctx context.Context) error {
		assert.True(t, usecase.InTransaction(ctx))

		if _, err := f.engine.Decrease(ctx, usecase.MutationInput{AccountID: "A", Amount: dec("60"), Kind: domain.KindTransfer}); err != nil {
			return err
		}

		if _, err := f.engine.Increase(ctx, usecase.MutationInput{AccountID: "B", Amount: dec("60"), Kind: domain.KindTransfer}); err != nil {
			return err
		}

		// second debit fails and aborts the whole unit
		_, err := f.engine.Decrease(ctx, usecase.MutationInput{AccountID: "A", Amount: dec("60"), Kind: domain.KindTransfer})
		return err
	})
	require.ErrorIs(t, err, domain.ErrInsufficientBalance)

	a, _ := f.engine.GetBalance(context.Background(), "A")
	b, _ := f.engine.GetBalance(context.Background(), "B")
	assert.True(t, a.Equal(dec("100")))
	assert.True(t, b.IsZero())

	// success events of rolled back mutations are never emitted
	assert.Equal(t, 0, f.audit.Count(domain.AuditLevelSuccess))
	assert.Equal(t, 0, f.alerts.Count(domain.AlertBalanceChanged))
	assert.Equal(t, 1, f.alerts.Count(domain.AlertInsufficientBalance))
}

func TestBalanceUseCase_RunInTransactionCommitsAndEmitsAfterCommit(t *testing.T) {
	f := newEngine(t, nil)
	f.store.Seed("A", dec("100"))

	err := f.engine.RunInTransaction(context.Background(), func(ctx context.Context) error {
		if _, err := f.engine.GetBalanceForUpdate(ctx, "A"); err != nil {
			return err
		}

		first, err := f.engine.Decrease(ctx, usecase.MutationInput{AccountID: "A", Amount: dec("30")})
		if err != nil {
			return err
		}

		second, err := f.engine.Decrease(ctx, usecase.MutationInput{AccountID: "A", Amount: dec("30")})
		if err != nil {
			return err
		}

		assert.True(t, second.BalanceBefore.Equal(first.BalanceAfter))
		assert.Equal(t, 0, f.audit.Count(domain.AuditLevelSuccess), "events must wait for commit")

		return nil
	})
	require.NoError(t, err)

	balance, _ := f.engine.GetBalance(context.Background(), "A")
	assert.True(t, balance.Equal(dec("40")))
	assert.Equal(t, 2, f.audit.Count(domain.AuditLevelSuccess))
	assert.Equal(t, 2, f.alerts.Count(domain.AlertBalanceChanged))

	assertChain(t, f.store, "A")
}

func TestBalanceUseCase_RunInTransactionBoundsBeginAndCommit(t *testing.T) {
	stalled := func(ctx context.Context) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(2 * time.Second):
			return nil
		}
	}

	tests := []struct {
		name  string
		op    string
		setup func(txMgr *mocks.MockTransactionManager, tx *mocks.MockTransaction)
	}{
		{
			name: "commit",
			op:   "commit",
			setup: func(txMgr *mocks.MockTransactionManager, tx *mocks.MockTransaction) {
				txMgr.BeginFunc = func(context.Context) (usecase.Transaction, error) { return tx, nil }
				tx.CommitFunc = stalled
			},
		},
		{
			name: "begin",
			op:   "begin",
			setup: func(txMgr *mocks.MockTransactionManager, _ *mocks.MockTransaction) {
				txMgr.BeginFunc = func(ctx context.Context) (usecase.Transaction, error) { return nil, stalled(ctx) }
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tx := &mocks.MockTransaction{}
			txMgr := mocks.NewMockTransactionManager()
			tt.setup(txMgr, tx)

			audit := mocks.NewRecordingAuditSink()
			engine := usecase.NewBalanceUseCase(txMgr, mocks.NewMockAccountRepository(), mocks.NewMockHistoryRepository(),
				audit, mocks.NewRecordingAlertSink(), zerolog.Nop(), usecase.WithTimeouts(100*time.Millisecond, time.Second))

			start := time.Now()
			err := engine.RunInTransaction(context.Background(), func(context.Context) error { return nil })
			elapsed := time.Since(start)

			require.ErrorIs(t, err, domain.ErrTimeout)
			assert.Less(t, elapsed, time.Second)

			var internal *domain.InternalError
			require.True(t, errors.As(err, &internal))
			assert.Equal(t, domain.ReasonTimeout, internal.Reason)
			assert.Equal(t, tt.op, internal.Op)
			assert.Equal(t, 1, audit.Count(domain.AuditLevelError))
		})
	}
}

func TestBalanceUseCase_PanicBecomesUnexpectedInternalError(t *testing.T) {
	accRepo := mocks.NewMockAccountRepository()
	accRepo.GetByIDForUpdateFunc = func(context.Context, usecase.Transaction, string) (*domain.AccountBalance, error) {
		panic("nil map write")
	}

	tx := &mocks.MockTransaction{}
	txMgr := mocks.NewMockTransactionManager()
	txMgr.BeginFunc = func(context.Context) (usecase.Transaction, error) { return tx, nil }

	audit := mocks.NewRecordingAuditSink()
	engine := usecase.NewBalanceUseCase(txMgr, accRepo, mocks.NewMockHistoryRepository(), audit, mocks.NewRecordingAlertSink(), zerolog.Nop())

	_, err := engine.Increase(context.Background(), usecase.MutationInput{AccountID: "A", Amount: dec("1")})

	var internal *domain.InternalError
	require.ErrorAs(t, err, &internal)
	assert.Equal(t, domain.ReasonUnexpected, internal.Reason)
	assert.True(t, tx.RolledBack)
	assert.Equal(t, 1, audit.Count(domain.AuditLevelError))
}

func TestBalanceUseCase_HistoryFailureRollsBack(t *testing.T) {
	accRepo := mocks.NewMockAccountRepository()
	accRepo.Put(&domain.AccountBalance{AccountID: "A", Balance: dec("10")})

	historyRepo := mocks.NewMockHistoryRepository()
	historyRepo.CreateFunc = func(context.Context, usecase.Transaction, *domain.TransactionHistoryEntry) error {
		return errors.New("relation does not exist")
	}

	tx := &mocks.MockTransaction{}
	txMgr := mocks.NewMockTransactionManager()
	txMgr.BeginFunc = func(context.Context) (usecase.Transaction, error) { return tx, nil }

	engine := usecase.NewBalanceUseCase(txMgr, accRepo, historyRepo, mocks.NewRecordingAuditSink(), mocks.NewRecordingAlertSink(), zerolog.Nop())

	_, err := engine.Increase(context.Background(), usecase.MutationInput{AccountID: "A", Amount: dec("1")})
	require.ErrorIs(t, err, domain.ErrInternal)
	assert.False(t, strings.Contains(err.Error(), "relation"))
	assert.False(t, tx.Committed)
	assert.True(t, tx.RolledBack)
}

func TestBalanceUseCase_UsesRetrierAndRecordsMetrics(t *testing.T) {
	ctrl := gomock.NewController(t)

	retrier := mocks.NewMockRetrier(ctrl)
	retrier.EXPECT().
		Retry(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, op func() error) error { return op() }).
		Times(1)

	metrics := mocks.NewMockMetricsRecorder(ctrl)
	metrics.EXPECT().
		RecordMutation(domain.KindDeposit, domain.DirectionCredit, usecase.OutcomeSuccess, gomock.Any(), gomock.Any()).
		Times(1)

	f := newEngine(t, nil, usecase.WithRetrier(retrier), usecase.WithMetrics(metrics))
	f.store.Seed("A", dec("0"))

	_, err := f.engine.Increase(context.Background(), usecase.MutationInput{AccountID: "A", Amount: dec("5")})
	require.NoError(t, err)
}

func runConcurrentDecreases(engine *usecase.BalanceUseCase, accountID string, n int, amount decimal.Decimal) []error {
	errs := make([]error, n)

	var wg sync.WaitGroup
	start := make(chan struct{})

	for i := range n {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			_, errs[i] = engine.Decrease(context.Background(), usecase.MutationInput{
				AccountID:   accountID,
				Amount:      amount,
				ReferenceID: fmt.Sprintf("W%d", i),
			})
		}(i)
	}

	close(start)
	wg.Wait()

	return errs
}

func assertChain(t *testing.T, store *memory.Store, accountID string) {
	t.Helper()

	chain, err := store.ListChain(context.Background(), accountID)
	require.NoError(t, err)

	sort.Slice(chain, func(i, j int) bool { return chain[i].Version < chain[j].Version })

	for i, e := range chain {
		assert.True(t, e.IsConsistent(), "entry %d inconsistent", e.ID)
		assert.Equal(t, int64(i+1), e.Version)
		if i > 0 {
			assert.True(t, e.BalanceBefore.Equal(chain[i-1].BalanceAfter), "entry %d does not continue the chain", e.ID)
		}
	}

	account, err := store.GetByID(context.Background(), accountID)
	require.NoError(t, err)
	if len(chain) > 0 {
		assert.True(t, account.Balance.Equal(chain[len(chain)-1].BalanceAfter))
	}
}
