package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/iho/walletledger/internal/domain"
)

// MutationInput represents input for Increase and Decrease.
type MutationInput struct {
	AccountID   string
	Amount      decimal.Decimal
	Kind        domain.TransactionKind
	Description string
	ReferenceID string
	ActorID     string
}

// BalanceOption configures a BalanceUseCase.
type BalanceOption func(*BalanceUseCase)

// WithRetrier retries owned transactions on transient storage conflicts.
func WithRetrier(r Retrier) BalanceOption {
	return func(uc *BalanceUseCase) {
		if r != nil {
			uc.retrier = r
		}
	}
}

// WithAnomalyDetector enables suspicious activity detection after commits.
func WithAnomalyDetector(d *AnomalyDetector) BalanceOption {
	return func(uc *BalanceUseCase) { uc.detector = d }
}

// WithMetrics sets the metrics recorder.
func WithMetrics(m MetricsRecorder) BalanceOption {
	return func(uc *BalanceUseCase) {
		if m != nil {
			uc.metrics = m
		}
	}
}

// WithTimeouts overrides the mutation and read time budgets.
func WithTimeouts(mutation, read time.Duration) BalanceOption {
	return func(uc *BalanceUseCase) {
		if mutation > 0 {
			uc.mutationTimeout = mutation
		}
		if read > 0 {
			uc.readTimeout = read
		}
	}
}

// WithClock overrides the clock used for timestamps.
func WithClock(now func() time.Time) BalanceOption {
	return func(uc *BalanceUseCase) { uc.now = now }
}

// BalanceUseCase is the only writer of account balances and history. Every
// mutation locks the account, re-validates under the lock and writes the new
// balance together with its history entry in one storage transaction.
type BalanceUseCase struct {
	txManager   TransactionManager
	accountRepo AccountRepository
	historyRepo HistoryRepository
	audit       AuditSink
	alerts      AlertSink
	detector    *AnomalyDetector
	retrier     Retrier
	metrics     MetricsRecorder
	logger      zerolog.Logger
	now         func() time.Time

	mutationTimeout time.Duration
	readTimeout     time.Duration
}

// NewBalanceUseCase creates a new BalanceUseCase.
func NewBalanceUseCase(
	txManager TransactionManager,
	accountRepo AccountRepository,
	historyRepo HistoryRepository,
	audit AuditSink,
	alerts AlertSink,
	logger zerolog.Logger,
	opts ...BalanceOption,
) *BalanceUseCase {
	uc := &BalanceUseCase{
		txManager:       txManager,
		accountRepo:     accountRepo,
		historyRepo:     historyRepo,
		audit:           audit,
		alerts:          alerts,
		retrier:         onceRetrier{},
		metrics:         noopMetrics{},
		logger:          logger,
		now:             func() time.Time { return time.Now().UTC() },
		mutationTimeout: DefaultMutationTimeout,
		readTimeout:     DefaultReadTimeout,
	}

	for _, opt := range opts {
		opt(uc)
	}

	return uc
}

// Increase credits the account by a positive amount.
func (uc *BalanceUseCase) Increase(ctx context.Context, input MutationInput) (*domain.BalanceChangeResult, error) {
	return uc.mutate(ctx, domain.DirectionCredit, input)
}

// Decrease debits the account by a positive amount. The balance may reach
// exactly zero but never go below it.
func (uc *BalanceUseCase) Decrease(ctx context.Context, input MutationInput) (*domain.BalanceChangeResult, error) {
	return uc.mutate(ctx, domain.DirectionDebit, input)
}

// GetAccount returns the last committed snapshot without taking the mutation lock.
func (uc *BalanceUseCase) GetAccount(ctx context.Context, accountID string) (*domain.AccountBalance, error) {
	rctx, cancel := context.WithTimeout(ctx, uc.readTimeout)
	defer cancel()

	account, err := uc.accountRepo.GetByID(rctx, accountID)
	if err != nil {
		return nil, uc.readFailure(ctx, rctx, "get_balance", accountID, err)
	}

	return account, nil
}

// GetBalance returns the last committed balance without taking the mutation lock.
func (uc *BalanceUseCase) GetBalance(ctx context.Context, accountID string) (decimal.Decimal, error) {
	account, err := uc.GetAccount(ctx, accountID)
	if err != nil {
		return decimal.Zero, err
	}

	return account.Balance, nil
}

// GetBalanceForUpdate reads the balance under the exclusive account lock.
// Inside RunInTransaction the lock is held until the transaction ends;
// otherwise it is released before returning.
func (uc *BalanceUseCase) GetBalanceForUpdate(ctx context.Context, accountID string) (decimal.Decimal, error) {
	lctx, cancel := context.WithTimeout(ctx, uc.mutationTimeout)
	defer cancel()

	if scope := scopeFrom(ctx); scope != nil {
		account, err := uc.accountRepo.GetByIDForUpdate(lctx, scope.tx, accountID)
		if err != nil {
			return decimal.Zero, uc.readFailure(ctx, lctx, "get_balance_for_update", accountID, err)
		}
		return account.Balance, nil
	}

	tx, err := uc.txManager.Begin(lctx)
	if err != nil {
		return decimal.Zero, uc.readFailure(ctx, lctx, "get_balance_for_update", accountID, fmt.Errorf("begin transaction: %w", err))
	}
	defer func() { _ = tx.Rollback(context.WithoutCancel(ctx)) }()

	account, err := uc.accountRepo.GetByIDForUpdate(lctx, tx, accountID)
	if err != nil {
		return decimal.Zero, uc.readFailure(ctx, lctx, "get_balance_for_update", accountID, err)
	}

	return account.Balance, nil
}

// HasSufficientBalance reports whether the account balance covers amount.
// A missing account yields false without an error.
func (uc *BalanceUseCase) HasSufficientBalance(ctx context.Context, accountID string, amount decimal.Decimal) (bool, error) {
	balance, err := uc.GetBalance(ctx, accountID)
	if errors.Is(err, domain.ErrAccountNotFound) {
		return false, nil
	}

	if err != nil {
		return false, err
	}

	return balance.GreaterThanOrEqual(amount), nil
}

// RunInTransaction runs fn inside one business transaction. Engine calls
// made with the context passed to fn join that transaction, so their locks
// are held and their writes committed or rolled back together. Success
// events of joined calls are emitted only after commit. A nested call joins
// the outer transaction.
func (uc *BalanceUseCase) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if scopeFrom(ctx) != nil {
		return fn(ctx)
	}

	bctx, cancelBegin := context.WithTimeout(ctx, uc.mutationTimeout)
	defer cancelBegin()

	tx, err := uc.txManager.Begin(bctx)
	if err != nil {
		return uc.internalFailure(ctx, bctx, "begin", "", fmt.Errorf("begin transaction: %w", err))
	}

	scope := &txScope{tx: tx}
	committed := false

	defer func() {
		if !committed {
			_ = tx.Rollback(context.WithoutCancel(ctx))
		}
		scope.finish(committed)
	}()

	if err := fn(withScope(ctx, scope)); err != nil {
		return err
	}

	cctx, cancelCommit := context.WithTimeout(ctx, uc.mutationTimeout)
	defer cancelCommit()

	if err := tx.Commit(cctx); err != nil {
		return uc.internalFailure(ctx, cctx, "commit", "", fmt.Errorf("commit transaction: %w", err))
	}

	committed = true

	return nil
}

func (uc *BalanceUseCase) mutate(ctx context.Context, direction domain.Direction, input MutationInput) (*domain.BalanceChangeResult, error) {
	start := time.Now()

	if input.ActorID == "" {
		input.ActorID = domain.ActorFromContext(ctx)
	}

	if input.Kind == "" {
		input.Kind = defaultKind(direction)
	}

	scope := scopeFrom(ctx)

	if err := validateMutation(input); err != nil {
		uc.metrics.RecordMutation(input.Kind, direction, OutcomeInvalid, time.Since(start), input.Amount.Abs())
		uc.emit(ctx, scope, func(ctx context.Context) {
			uc.audit.LogWarning(ctx, domain.AuditCategoryBalanceChange, domain.ResourceAccount, input.AccountID, err.Error())
		})
		return nil, err
	}

	signed := input.Amount
	if direction == domain.DirectionDebit {
		signed = input.Amount.Neg()
	}

	mctx, cancel := context.WithTimeout(ctx, uc.mutationTimeout)
	defer cancel()

	var (
		result *domain.BalanceChangeResult
		err    error
	)

	if scope != nil {
		result, err = uc.apply(mctx, scope.tx, input, signed)
	} else {
		err = uc.retrier.Retry(mctx, func() error {
			r, err := uc.applyOwned(mctx, input, signed)
			if err != nil {
				return err
			}
			result = r
			return nil
		})
	}

	if err != nil {
		return nil, uc.mutationFailure(ctx, mctx, scope, direction, input, time.Since(start), err)
	}

	uc.mutationSuccess(ctx, scope, direction, input, result, time.Since(start))

	return result, nil
}

func (uc *BalanceUseCase) applyOwned(ctx context.Context, input MutationInput, signed decimal.Decimal) (*domain.BalanceChangeResult, error) {
	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(context.WithoutCancel(ctx)) }()

	result, err := uc.apply(ctx, tx, input, signed)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}

	return result, nil
}

// apply runs the locked part of the mutation inside tx.
func (uc *BalanceUseCase) apply(ctx context.Context, tx Transaction, input MutationInput, signed decimal.Decimal) (result *domain.BalanceChangeResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &panicError{value: r}
		}
	}()

	account, err := uc.accountRepo.GetByIDForUpdate(ctx, tx, input.AccountID)
	if err != nil {
		return nil, err
	}

	if err := account.ValidateChange(signed); err != nil {
		return nil, err
	}

	now := uc.now()
	after := account.Apply(signed)
	version := account.Version + 1

	if err := uc.accountRepo.UpdateBalance(ctx, tx, account.AccountID, after, version, now); err != nil {
		return nil, fmt.Errorf("update balance: %w", err)
	}

	entry := &domain.TransactionHistoryEntry{
		AccountID:     account.AccountID,
		Kind:          input.Kind,
		Amount:        signed,
		BalanceBefore: account.Balance,
		BalanceAfter:  after,
		Description:   input.Description,
		ReferenceID:   input.ReferenceID,
		Status:        domain.TransactionStatusCompleted,
		Version:       version,
		CreatedAt:     now,
	}

	if err := uc.historyRepo.Create(ctx, tx, entry); err != nil {
		return nil, fmt.Errorf("create history entry: %w", err)
	}

	return &domain.BalanceChangeResult{
		AccountID:     account.AccountID,
		BalanceBefore: account.Balance,
		BalanceAfter:  after,
		ChangeAmount:  signed,
		Kind:          input.Kind,
		ReferenceID:   input.ReferenceID,
		EntryID:       entry.ID,
		Version:       version,
	}, nil
}

func (uc *BalanceUseCase) mutationSuccess(ctx context.Context, scope *txScope, direction domain.Direction, input MutationInput, result *domain.BalanceChangeResult, elapsed time.Duration) {
	events := func(ctx context.Context) {
		uc.metrics.RecordMutation(input.Kind, direction, OutcomeSuccess, elapsed, input.Amount)

		uc.logger.Info().
			Str("account_id", result.AccountID).
			Str("kind", string(result.Kind)).
			Str("direction", string(direction)).
			Str("amount", result.ChangeAmount.StringFixed(2)).
			Str("balance_after", result.BalanceAfter.StringFixed(2)).
			Str("reference_id", result.ReferenceID).
			Str("actor_id", input.ActorID).
			Dur("duration", elapsed).
			Msg("balance changed")

		uc.audit.LogSuccess(ctx, domain.AuditCategoryBalanceChange, domain.ResourceAccount, result.AccountID, "balance changed", domain.JSON{
			"kind":           string(result.Kind),
			"amount":         result.ChangeAmount.StringFixed(2),
			"balance_before": result.BalanceBefore.StringFixed(2),
			"balance_after":  result.BalanceAfter.StringFixed(2),
			"reference_id":   result.ReferenceID,
			"entry_id":       result.EntryID,
			"version":        result.Version,
		})

		uc.alerts.RaiseBalanceChanged(ctx, result.AccountID, input.ActorID, direction, input.Amount, result.BalanceAfter)

		if uc.detector != nil {
			uc.detector.Inspect(ctx, result.AccountID, input.ActorID, input.Amount, input.Kind)
		}
	}

	if scope != nil {
		detached := context.WithoutCancel(ctx)
		scope.afterCommit(func() { events(detached) })
		return
	}

	events(context.WithoutCancel(ctx))
}

func (uc *BalanceUseCase) mutationFailure(ctx, mctx context.Context, scope *txScope, direction domain.Direction, input MutationInput, elapsed time.Duration, err error) error {
	var insufficient *domain.InsufficientBalanceError

	switch {
	case errors.As(err, &insufficient):
		uc.metrics.RecordMutation(input.Kind, direction, OutcomeInsufficient, elapsed, input.Amount)
		uc.logger.Warn().
			Str("account_id", input.AccountID).
			Str("current", insufficient.Current.StringFixed(2)).
			Str("requested", insufficient.Requested.StringFixed(2)).
			Str("actor_id", input.ActorID).
			Msg("insufficient balance")
		uc.emit(ctx, scope, func(ctx context.Context) {
			uc.audit.LogWarning(ctx, domain.AuditCategoryBalanceInsufficient, domain.ResourceAccount, input.AccountID, insufficient.Error())
			uc.alerts.RaiseInsufficientBalance(ctx, input.AccountID, input.ActorID, insufficient.Current, insufficient.Requested)
		})
		return err

	case errors.Is(err, domain.ErrAccountNotFound):
		uc.metrics.RecordMutation(input.Kind, direction, OutcomeNotFound, elapsed, input.Amount)
		uc.logger.Warn().Str("account_id", input.AccountID).Msg("balance change on missing account")
		uc.emit(ctx, scope, func(ctx context.Context) {
			uc.audit.LogWarning(ctx, domain.AuditCategoryBalanceChange, domain.ResourceAccount, input.AccountID, "account not found")
		})
		return err

	case domain.IsBusinessError(err), errors.Is(err, domain.ErrInternal):
		return err
	}

	uc.metrics.RecordMutation(input.Kind, direction, OutcomeError, elapsed, input.Amount)

	return uc.internalFailure(ctx, mctx, opName(direction), input.AccountID, err)
}

func (uc *BalanceUseCase) readFailure(ctx, rctx context.Context, op, accountID string, err error) error {
	if domain.IsBusinessError(err) || errors.Is(err, domain.ErrInternal) {
		return err
	}

	return uc.internalFailure(ctx, rctx, op, accountID, err)
}

// internalFailure turns an unexpected error into an opaque InternalError
// after logging and auditing the cause.
func (uc *BalanceUseCase) internalFailure(ctx, opCtx context.Context, op, accountID string, err error) error {
	reason := classify(opCtx, err)
	internal := domain.NewInternalError(op, reason, err)

	uc.metrics.RecordInternalError(reason)
	uc.logger.Error().
		Err(err).
		Str("op", op).
		Str("account_id", accountID).
		Str("reason", string(reason)).
		Msg("balance operation failed")

	uc.emit(ctx, scopeFrom(ctx), func(ctx context.Context) {
		uc.audit.LogError(ctx, domain.AuditCategoryBalanceChange, domain.ResourceAccount, accountID, internal.Error(), err)
	})

	return internal
}

// emit runs fn outside any lock held for ctx: immediately when no business
// transaction is open, otherwise once it ends.
func (uc *BalanceUseCase) emit(ctx context.Context, scope *txScope, fn func(ctx context.Context)) {
	detached := context.WithoutCancel(ctx)

	if scope != nil {
		scope.afterEnd(func() { fn(detached) })
		return
	}

	fn(detached)
}

func validateMutation(input MutationInput) error {
	if err := domain.ValidateAmount(input.Amount); err != nil {
		return err
	}

	if !input.Kind.IsValid() {
		return fmt.Errorf("%w: %q", domain.ErrInvalidKind, input.Kind)
	}

	return nil
}

func classify(ctx context.Context, err error) domain.InternalReason {
	var p *panicError

	switch {
	case errors.As(err, &p):
		return domain.ReasonUnexpected
	case errors.Is(err, context.DeadlineExceeded), errors.Is(ctx.Err(), context.DeadlineExceeded):
		return domain.ReasonTimeout
	default:
		return domain.ReasonStorage
	}
}

func defaultKind(direction domain.Direction) domain.TransactionKind {
	if direction == domain.DirectionDebit {
		return domain.KindWithdrawal
	}
	return domain.KindDeposit
}

func opName(direction domain.Direction) string {
	if direction == domain.DirectionDebit {
		return "decrease"
	}
	return "increase"
}

type panicError struct {
	value any
}

func (e *panicError) Error() string {
	return fmt.Sprintf("panic: %v", e.value)
}

type onceRetrier struct{}

func (onceRetrier) Retry(_ context.Context, operation func() error) error {
	return operation()
}

type noopMetrics struct{}

func (noopMetrics) RecordMutation(domain.TransactionKind, domain.Direction, string, time.Duration, decimal.Decimal) {
}

func (noopMetrics) RecordInternalError(domain.InternalReason) {}

func (noopMetrics) RecordSuspiciousActivity(string) {}
