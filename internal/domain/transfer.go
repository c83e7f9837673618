package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Reference id prefixes for orchestrated operations.
const (
	TransferReferencePrefix = "TRF_"
	PaymentReferencePrefix  = "PAY_"
	RefundReferencePrefix   = "RFD_"
)

// TransferStatus is the outcome of a transfer.
type TransferStatus string

const (
	TransferStatusCompleted TransferStatus = "COMPLETED"
	TransferStatusFailed    TransferStatus = "FAILED"
)

// Transfer represents a money movement between two wallet accounts.
type Transfer struct {
	CreatedAt     time.Time
	ID            string
	FromAccountID string
	ToAccountID   string
	Amount        decimal.Decimal
	Description   string
	Status        TransferStatus
	Debit         *BalanceChangeResult
	Credit        *BalanceChangeResult
}

// Validate checks the transfer request before any account is touched.
func (t *Transfer) Validate() error {
	if strings.TrimSpace(t.FromAccountID) == "" || strings.TrimSpace(t.ToAccountID) == "" {
		return ErrInvalidAccountID
	}

	if t.FromAccountID == t.ToAccountID {
		return ErrSameAccount
	}

	return ValidateAmount(t.Amount)
}

// LockOrder returns both account ids in the order their locks must be taken.
func (t *Transfer) LockOrder() (string, string) {
	if t.FromAccountID < t.ToAccountID {
		return t.FromAccountID, t.ToAccountID
	}
	return t.ToAccountID, t.FromAccountID
}
