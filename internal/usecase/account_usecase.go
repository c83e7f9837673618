package usecase

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/iho/walletledger/internal/domain"
)

// AccountUseCase handles wallet deposits, withdrawals and balance reads.
type AccountUseCase struct {
	engine  BalanceEngine
	idGen   IDGenerator
	metrics OperationRecorder
}

// NewAccountUseCase creates a new AccountUseCase.
func NewAccountUseCase(engine BalanceEngine, idGen IDGenerator, metrics OperationRecorder) *AccountUseCase {
	if metrics == nil {
		metrics = noopOperationRecorder{}
	}

	return &AccountUseCase{
		engine:  engine,
		idGen:   idGen,
		metrics: metrics,
	}
}

// WalletOperationInput represents input for a deposit or withdrawal.
type WalletOperationInput struct {
	AccountID   string
	Amount      decimal.Decimal
	Description string
	ReferenceID string
	ActorID     string
}

// Deposit credits the account with kind DEPOSIT. A reference id is
// generated when the caller supplies none.
func (uc *AccountUseCase) Deposit(ctx context.Context, input WalletOperationInput) (*domain.BalanceChangeResult, error) {
	result, err := uc.engine.Increase(ctx, uc.mutation(input, domain.KindDeposit))
	uc.metrics.RecordOperation(OperationDeposit, outcomeOf(err), input.Amount)

	return result, err
}

// Withdraw debits the account with kind WITHDRAWAL.
func (uc *AccountUseCase) Withdraw(ctx context.Context, input WalletOperationInput) (*domain.BalanceChangeResult, error) {
	result, err := uc.engine.Decrease(ctx, uc.mutation(input, domain.KindWithdrawal))
	uc.metrics.RecordOperation(OperationWithdraw, outcomeOf(err), input.Amount)

	return result, err
}

// GetAccount retrieves the balance snapshot of an account.
func (uc *AccountUseCase) GetAccount(ctx context.Context, id string) (*domain.AccountBalance, error) {
	return uc.engine.GetAccount(ctx, id)
}

// GetBalance retrieves the current balance of an account.
func (uc *AccountUseCase) GetBalance(ctx context.Context, id string) (decimal.Decimal, error) {
	return uc.engine.GetBalance(ctx, id)
}

// HasSufficientBalance reports whether the account covers amount.
func (uc *AccountUseCase) HasSufficientBalance(ctx context.Context, id string, amount decimal.Decimal) (bool, error) {
	return uc.engine.HasSufficientBalance(ctx, id, amount)
}

func (uc *AccountUseCase) mutation(input WalletOperationInput, kind domain.TransactionKind) MutationInput {
	if input.ReferenceID == "" {
		input.ReferenceID = uc.idGen.Generate()
	}

	return MutationInput{
		AccountID:   input.AccountID,
		Amount:      input.Amount,
		Kind:        kind,
		Description: input.Description,
		ReferenceID: input.ReferenceID,
		ActorID:     input.ActorID,
	}
}
