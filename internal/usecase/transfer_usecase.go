package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/iho/walletledger/internal/domain"
)

// BalanceEngine is the subset of BalanceUseCase used by orchestrators.
type BalanceEngine interface {
	Increase(ctx context.Context, input MutationInput) (*domain.BalanceChangeResult, error)
	Decrease(ctx context.Context, input MutationInput) (*domain.BalanceChangeResult, error)
	GetAccount(ctx context.Context, accountID string) (*domain.AccountBalance, error)
	GetBalance(ctx context.Context, accountID string) (decimal.Decimal, error)
	GetBalanceForUpdate(ctx context.Context, accountID string) (decimal.Decimal, error)
	HasSufficientBalance(ctx context.Context, accountID string, amount decimal.Decimal) (bool, error)
	RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// OperationRecorder records outcomes of orchestrated operations.
type OperationRecorder interface {
	RecordOperation(operation, outcome string, amount decimal.Decimal)
}

// Orchestrated operation names.
const (
	OperationTransfer = "transfer"
	OperationPayment  = "payment"
	OperationRefund   = "refund"
	OperationDeposit  = "deposit"
	OperationWithdraw = "withdraw"
)

// TransferUseCase moves money between two wallet accounts.
type TransferUseCase struct {
	engine  BalanceEngine
	audit   AuditSink
	alerts  AlertSink
	idGen   IDGenerator
	metrics OperationRecorder
	logger  zerolog.Logger
	limit   decimal.Decimal
	now     func() time.Time
}

// NewTransferUseCase creates a new TransferUseCase. A non-positive limit
// disables the per-transfer limit.
func NewTransferUseCase(
	engine BalanceEngine,
	audit AuditSink,
	alerts AlertSink,
	idGen IDGenerator,
	metrics OperationRecorder,
	logger zerolog.Logger,
	limit decimal.Decimal,
) *TransferUseCase {
	if metrics == nil {
		metrics = noopOperationRecorder{}
	}

	return &TransferUseCase{
		engine:  engine,
		audit:   audit,
		alerts:  alerts,
		idGen:   idGen,
		metrics: metrics,
		logger:  logger,
		limit:   limit,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// TransferInput represents input for a transfer.
type TransferInput struct {
	FromAccountID string
	ToAccountID   string
	Amount        decimal.Decimal
	Description   string
	ActorID       string
}

// Transfer debits the source and credits the destination in one business
// transaction. Both accounts are locked in a fixed order before mutating.
func (uc *TransferUseCase) Transfer(ctx context.Context, input TransferInput) (*domain.Transfer, error) {
	if input.ActorID == "" {
		input.ActorID = domain.ActorFromContext(ctx)
	}

	transfer := &domain.Transfer{
		FromAccountID: strings.TrimSpace(input.FromAccountID),
		ToAccountID:   strings.TrimSpace(input.ToAccountID),
		Amount:        input.Amount,
		Description:   input.Description,
	}

	transfer.ID = domain.TransferReferencePrefix + uc.idGen.Generate()
	transfer.CreatedAt = uc.now()

	// 0. Advisory pre-checks
	if err := uc.precheck(ctx, transfer); err != nil {
		var insufficient *domain.InsufficientBalanceError
		if errors.As(err, &insufficient) {
			uc.alerts.RaiseInsufficientBalance(ctx, insufficient.AccountID, input.ActorID, insufficient.Current, insufficient.Requested)
		}
		return nil, uc.fail(ctx, transfer, err)
	}

	if transfer.Description == "" {
		transfer.Description = fmt.Sprintf("transfer %s -> %s", transfer.FromAccountID, transfer.ToAccountID)
	}

	uc.audit.LogSuccess(ctx, domain.AuditCategoryTransferStart, domain.ResourceTransfer, transfer.ID, "transfer started", domain.JSON{
		"from_account_id": transfer.FromAccountID,
		"to_account_id":   transfer.ToAccountID,
		"amount":          transfer.Amount.StringFixed(2),
		"actor_id":        input.ActorID,
	})

	// 1. Lock, debit and credit inside one business transaction
	err := uc.engine.RunInTransaction(ctx, func(ctx context.Context) error {
		first, second := transfer.LockOrder()

		if _, err := uc.engine.GetBalanceForUpdate(ctx, first); err != nil {
			return err
		}

		if _, err := uc.engine.GetBalanceForUpdate(ctx, second); err != nil {
			return err
		}

		debit, err := uc.engine.Decrease(ctx, MutationInput{
			AccountID:   transfer.FromAccountID,
			Amount:      transfer.Amount,
			Kind:        domain.KindTransfer,
			Description: transfer.Description,
			ReferenceID: transfer.ID,
			ActorID:     input.ActorID,
		})
		if err != nil {
			return err
		}

		credit, err := uc.engine.Increase(ctx, MutationInput{
			AccountID:   transfer.ToAccountID,
			Amount:      transfer.Amount,
			Kind:        domain.KindTransfer,
			Description: transfer.Description,
			ReferenceID: transfer.ID,
			ActorID:     input.ActorID,
		})
		if err != nil {
			return err
		}

		transfer.Debit = debit
		transfer.Credit = credit

		return nil
	})
	if err != nil {
		return nil, uc.fail(ctx, transfer, err)
	}

	transfer.Status = domain.TransferStatusCompleted
	uc.metrics.RecordOperation(OperationTransfer, OutcomeSuccess, transfer.Amount)
	uc.audit.LogSuccess(ctx, domain.AuditCategoryTransferComplete, domain.ResourceTransfer, transfer.ID, "transfer completed", domain.JSON{
		"from_account_id":    transfer.FromAccountID,
		"to_account_id":      transfer.ToAccountID,
		"amount":             transfer.Amount.StringFixed(2),
		"from_balance_after": transfer.Debit.BalanceAfter.StringFixed(2),
		"to_balance_after":   transfer.Credit.BalanceAfter.StringFixed(2),
	})

	return transfer, nil
}

// fail records a rejected or aborted transfer and returns err unchanged.
func (uc *TransferUseCase) fail(ctx context.Context, transfer *domain.Transfer, err error) error {
	transfer.Status = domain.TransferStatusFailed
	uc.metrics.RecordOperation(OperationTransfer, outcomeOf(err), transfer.Amount)

	if domain.IsBusinessError(err) {
		uc.audit.LogWarning(ctx, domain.AuditCategoryTransferFailed, domain.ResourceTransfer, transfer.ID, "transfer failed: "+err.Error())
	} else {
		uc.audit.LogError(ctx, domain.AuditCategoryTransferFailed, domain.ResourceTransfer, transfer.ID, "transfer failed", err)
	}

	uc.logger.Warn().
		Err(err).
		Str("transfer_id", transfer.ID).
		Str("from_account_id", transfer.FromAccountID).
		Str("to_account_id", transfer.ToAccountID).
		Msg("transfer failed")

	return err
}

func (uc *TransferUseCase) precheck(ctx context.Context, transfer *domain.Transfer) error {
	if err := transfer.Validate(); err != nil {
		return err
	}

	if uc.limit.IsPositive() && transfer.Amount.GreaterThan(uc.limit) {
		return fmt.Errorf("%w: maximum is %s", domain.ErrTransferLimitExceeded, uc.limit.StringFixed(2))
	}

	if _, err := uc.engine.GetBalance(ctx, transfer.ToAccountID); err != nil {
		return err
	}

	from, err := uc.engine.GetAccount(ctx, transfer.FromAccountID)
	if err != nil {
		return err
	}

	if !from.CanCover(transfer.Amount) {
		return &domain.InsufficientBalanceError{
			AccountID: from.AccountID,
			Current:   from.Balance,
			Requested: transfer.Amount,
		}
	}

	return nil
}

func outcomeOf(err error) string {
	switch {
	case err == nil:
		return OutcomeSuccess
	case errors.Is(err, domain.ErrInsufficientBalance):
		return OutcomeInsufficient
	case errors.Is(err, domain.ErrAccountNotFound), errors.Is(err, domain.ErrPaymentNotFound):
		return OutcomeNotFound
	case domain.IsBusinessError(err):
		return OutcomeInvalid
	default:
		return OutcomeError
	}
}

type noopOperationRecorder struct{}

func (noopOperationRecorder) RecordOperation(string, string, decimal.Decimal) {}
