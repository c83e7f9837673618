package domain

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Payment is a wallet debit in favour of a merchant order.
type Payment struct {
	ID         string
	AccountID  string
	MerchantID string
	OrderID    string
	Amount     decimal.Decimal
	Result     *BalanceChangeResult
}

// Validate checks the payment request.
func (p *Payment) Validate() error {
	if strings.TrimSpace(p.AccountID) == "" {
		return ErrInvalidAccountID
	}
	return ValidateAmount(p.Amount)
}

// Description renders the history description of the payment.
func (p *Payment) Description() string {
	return fmt.Sprintf("payment merchant=%s order=%s", p.MerchantID, p.OrderID)
}

// Refund returns funds of an earlier payment to the wallet.
type Refund struct {
	ID        string
	PaymentID string
	AccountID string
	Amount    decimal.Decimal
	Reason    string
	Result    *BalanceChangeResult
}

// Validate checks the refund request.
func (r *Refund) Validate() error {
	if strings.TrimSpace(r.AccountID) == "" {
		return ErrInvalidAccountID
	}
	if strings.TrimSpace(r.PaymentID) == "" {
		return ErrInvalidPaymentID
	}
	return ValidateAmount(r.Amount)
}

// Description renders the history description of the refund.
func (r *Refund) Description() string {
	if r.Reason == "" {
		return fmt.Sprintf("refund of %s", r.PaymentID)
	}
	return fmt.Sprintf("refund of %s: %s", r.PaymentID, r.Reason)
}
