package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// AccountBalance is the current balance snapshot of a wallet account.
type AccountBalance struct {
	AccountID string
	Balance   decimal.Decimal
	Version   int64
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Apply returns the balance after adding a signed amount.
func (a *AccountBalance) Apply(signed decimal.Decimal) decimal.Decimal {
	return a.Balance.Add(signed)
}

// ValidateChange checks that a signed change keeps the balance non-negative.
// A result of exactly zero is allowed.
func (a *AccountBalance) ValidateChange(signed decimal.Decimal) error {
	if a.Apply(signed).IsNegative() {
		return &InsufficientBalanceError{
			AccountID: a.AccountID,
			Current:   a.Balance,
			Requested: signed.Abs(),
		}
	}
	return nil
}

// CanCover reports whether the balance covers amount.
func (a *AccountBalance) CanCover(amount decimal.Decimal) bool {
	return a.Balance.GreaterThanOrEqual(amount)
}
