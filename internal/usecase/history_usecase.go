package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/walletledger/internal/domain"
)

// HistoryUseCase handles read access to transaction history.
type HistoryUseCase struct {
	accountRepo AccountRepository
	historyRepo HistoryRepository
}

// NewHistoryUseCase creates a new HistoryUseCase.
func NewHistoryUseCase(accountRepo AccountRepository, historyRepo HistoryRepository) *HistoryUseCase {
	return &HistoryUseCase{
		accountRepo: accountRepo,
		historyRepo: historyRepo,
	}
}

// ListByAccount returns entries of an account, newest first.
func (uc *HistoryUseCase) ListByAccount(ctx context.Context, accountID string, limit, offset int) ([]*domain.TransactionHistoryEntry, error) {
	if _, err := uc.accountRepo.GetByID(ctx, accountID); err != nil {
		return nil, err
	}

	limit, offset = domain.ValidatePagination(limit, offset)

	return uc.historyRepo.ListByAccount(ctx, accountID, limit, offset)
}

// ListByReference returns every entry carrying the reference id.
func (uc *HistoryUseCase) ListByReference(ctx context.Context, referenceID string) ([]*domain.TransactionHistoryEntry, error) {
	return uc.historyRepo.ListByReference(ctx, referenceID)
}

// GetBalanceAt returns the balance of an account as of at. Accounts
// without earlier history had a zero balance.
func (uc *HistoryUseCase) GetBalanceAt(ctx context.Context, accountID string, at time.Time) (decimal.Decimal, error) {
	if _, err := uc.accountRepo.GetByID(ctx, accountID); err != nil {
		return decimal.Zero, err
	}

	return uc.historyRepo.GetBalanceAtTime(ctx, accountID, at)
}
