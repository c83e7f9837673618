package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// TransactionKind classifies a balance mutation.
type TransactionKind string

const (
	KindDeposit    TransactionKind = "DEPOSIT"
	KindWithdrawal TransactionKind = "WITHDRAWAL"
	KindTransfer   TransactionKind = "TRANSFER"
	KindPayment    TransactionKind = "PAYMENT"
	KindRefund     TransactionKind = "REFUND"
)

var validKinds = map[TransactionKind]bool{
	KindDeposit:    true,
	KindWithdrawal: true,
	KindTransfer:   true,
	KindPayment:    true,
	KindRefund:     true,
}

// IsValid reports whether k is a known kind.
func (k TransactionKind) IsValid() bool {
	return validKinds[k]
}

// ParseTransactionKind parses a kind case-insensitively.
func ParseTransactionKind(s string) (TransactionKind, error) {
	k := TransactionKind(strings.ToUpper(strings.TrimSpace(s)))
	if !k.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidKind, s)
	}
	return k, nil
}

// TransactionStatus is the status of a history entry. The engine only ever
// writes completed rows.
type TransactionStatus string

const TransactionStatusCompleted TransactionStatus = "COMPLETED"

// Direction is the direction of a balance change.
type Direction string

const (
	DirectionCredit Direction = "CREDIT"
	DirectionDebit  Direction = "DEBIT"
)

// DirectionOf derives the direction from the sign of a signed amount.
func DirectionOf(signed decimal.Decimal) Direction {
	if signed.IsNegative() {
		return DirectionDebit
	}
	return DirectionCredit
}

// TransactionHistoryEntry is an immutable record of one committed mutation.
type TransactionHistoryEntry struct {
	CreatedAt     time.Time
	ID            int64
	AccountID     string
	Kind          TransactionKind
	Amount        decimal.Decimal
	BalanceBefore decimal.Decimal
	BalanceAfter  decimal.Decimal
	Description   string
	ReferenceID   string
	Status        TransactionStatus
	Version       int64
}

// IsConsistent reports whether balance_after == balance_before + amount.
func (e *TransactionHistoryEntry) IsConsistent() bool {
	return e.BalanceBefore.Add(e.Amount).Equal(e.BalanceAfter)
}

// BalanceChangeResult is returned to callers of the engine after a commit.
type BalanceChangeResult struct {
	AccountID     string
	BalanceBefore decimal.Decimal
	BalanceAfter  decimal.Decimal
	ChangeAmount  decimal.Decimal
	Kind          TransactionKind
	ReferenceID   string
	EntryID       int64
	Version       int64
}

// Direction returns the direction of the change.
func (r *BalanceChangeResult) Direction() Direction {
	return DirectionOf(r.ChangeAmount)
}
