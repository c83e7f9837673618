package postgres

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/iho/walletledger/internal/infrastructure/postgres/generated"
)

// LedgerRepository implements usecase.LedgerRepository.
type LedgerRepository struct {
	queries *generated.Queries
}

// NewLedgerRepository creates a new LedgerRepository.
func NewLedgerRepository(db generated.DBTX) *LedgerRepository {
	return &LedgerRepository{queries: generated.New(db)}
}

// CheckConsistency returns the sum of all balances and the sum of all history amounts.
func (r *LedgerRepository) CheckConsistency(ctx context.Context) (totalBalance decimal.Decimal, totalAmount decimal.Decimal, err error) {
	result, err := r.queries.CheckLedgerConsistency(ctx)
	if err != nil {
		return decimal.Zero, decimal.Zero, err
	}

	totalBalance, err = toDecimal(result.TotalBalance)
	if err != nil {
		return decimal.Zero, decimal.Zero, err
	}

	totalAmount, err = toDecimal(result.TotalAmount)
	if err != nil {
		return decimal.Zero, decimal.Zero, err
	}

	return totalBalance, totalAmount, nil
}
