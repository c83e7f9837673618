package dto

import (
	"github.com/shopspring/decimal"

	"github.com/iho/walletledger/internal/usecase"
)

// WalletOperationRequest is the body of a deposit or withdrawal.
type WalletOperationRequest struct {
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description,omitempty"`
	ReferenceID string          `json:"reference_id,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *WalletOperationRequest) ToUseCaseInput(accountID string) usecase.WalletOperationInput {
	return usecase.WalletOperationInput{
		AccountID:   accountID,
		Amount:      r.Amount,
		Description: r.Description,
		ReferenceID: r.ReferenceID,
	}
}

// CreateTransferRequest represents a request to create a transfer.
type CreateTransferRequest struct {
	FromAccountID string          `json:"from_account_id"`
	ToAccountID   string          `json:"to_account_id"`
	Amount        decimal.Decimal `json:"amount"`
	Description   string          `json:"description,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *CreateTransferRequest) ToUseCaseInput() usecase.TransferInput {
	return usecase.TransferInput{
		FromAccountID: r.FromAccountID,
		ToAccountID:   r.ToAccountID,
		Amount:        r.Amount,
		Description:   r.Description,
	}
}

// PaymentRequest represents a request to pay a merchant order.
type PaymentRequest struct {
	AccountID  string          `json:"account_id"`
	MerchantID string          `json:"merchant_id"`
	OrderID    string          `json:"order_id"`
	Amount     decimal.Decimal `json:"amount"`
}

// ToUseCaseInput converts to use case input.
func (r *PaymentRequest) ToUseCaseInput() usecase.PayInput {
	return usecase.PayInput{
		AccountID:  r.AccountID,
		MerchantID: r.MerchantID,
		OrderID:    r.OrderID,
		Amount:     r.Amount,
	}
}

// RefundRequest represents a request to refund a payment.
type RefundRequest struct {
	AccountID string          `json:"account_id"`
	Amount    decimal.Decimal `json:"amount"`
	Reason    string          `json:"reason,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *RefundRequest) ToUseCaseInput(paymentID string) usecase.RefundInput {
	return usecase.RefundInput{
		PaymentID: paymentID,
		AccountID: r.AccountID,
		Amount:    r.Amount,
		Reason:    r.Reason,
	}
}
