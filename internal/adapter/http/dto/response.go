package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/walletledger/internal/domain"
	"github.com/iho/walletledger/internal/usecase"
)

func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}

// AccountResponse represents a balance snapshot in API responses.
type AccountResponse struct {
	AccountID string    `json:"account_id"`
	Balance   string    `json:"balance"`
	Version   int64     `json:"version"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// AccountFromDomain converts domain account to response.
func AccountFromDomain(a *domain.AccountBalance) *AccountResponse {
	return &AccountResponse{
		AccountID: a.AccountID,
		Balance:   money(a.Balance),
		Version:   a.Version,
		CreatedAt: a.CreatedAt,
		UpdatedAt: a.UpdatedAt,
	}
}

// BalanceResponse is the current or historical balance of an account.
type BalanceResponse struct {
	AccountID string     `json:"account_id"`
	Balance   string     `json:"balance"`
	At        *time.Time `json:"at,omitempty"`
}

// SufficientResponse answers a sufficiency check.
type SufficientResponse struct {
	AccountID  string `json:"account_id"`
	Amount     string `json:"amount"`
	Sufficient bool   `json:"sufficient"`
}

// BalanceChangeResponse represents a committed mutation.
type BalanceChangeResponse struct {
	AccountID     string `json:"account_id"`
	Kind          string `json:"kind"`
	Direction     string `json:"direction"`
	BalanceBefore string `json:"balance_before"`
	BalanceAfter  string `json:"balance_after"`
	ChangeAmount  string `json:"change_amount"`
	ReferenceID   string `json:"reference_id"`
	EntryID       int64  `json:"entry_id"`
	Version       int64  `json:"version"`
}

// BalanceChangeFromDomain converts a mutation result to response.
func BalanceChangeFromDomain(r *domain.BalanceChangeResult) *BalanceChangeResponse {
	if r == nil {
		return nil
	}

	return &BalanceChangeResponse{
		AccountID:     r.AccountID,
		Kind:          string(r.Kind),
		Direction:     string(r.Direction()),
		BalanceBefore: money(r.BalanceBefore),
		BalanceAfter:  money(r.BalanceAfter),
		ChangeAmount:  money(r.ChangeAmount),
		ReferenceID:   r.ReferenceID,
		EntryID:       r.EntryID,
		Version:       r.Version,
	}
}

// HistoryEntryResponse represents a transaction history entry.
type HistoryEntryResponse struct {
	ID            int64     `json:"id"`
	AccountID     string    `json:"account_id"`
	Kind          string    `json:"kind"`
	Amount        string    `json:"amount"`
	BalanceBefore string    `json:"balance_before"`
	BalanceAfter  string    `json:"balance_after"`
	Description   string    `json:"description,omitempty"`
	ReferenceID   string    `json:"reference_id"`
	Status        string    `json:"status"`
	Version       int64     `json:"version"`
	CreatedAt     time.Time `json:"created_at"`
}

// HistoryFromDomain converts history entries to responses.
func HistoryFromDomain(entries []*domain.TransactionHistoryEntry) []*HistoryEntryResponse {
	result := make([]*HistoryEntryResponse, len(entries))
	for i, e := range entries {
		result[i] = &HistoryEntryResponse{
			ID:            e.ID,
			AccountID:     e.AccountID,
			Kind:          string(e.Kind),
			Amount:        money(e.Amount),
			BalanceBefore: money(e.BalanceBefore),
			BalanceAfter:  money(e.BalanceAfter),
			Description:   e.Description,
			ReferenceID:   e.ReferenceID,
			Status:        string(e.Status),
			Version:       e.Version,
			CreatedAt:     e.CreatedAt,
		}
	}
	return result
}

// ListHistoryResponse is a page of history entries.
type ListHistoryResponse struct {
	Entries []*HistoryEntryResponse `json:"entries"`
	Limit   int                     `json:"limit,omitempty"`
	Offset  int                     `json:"offset,omitempty"`
}

// TransferResponse represents a transfer in API responses.
type TransferResponse struct {
	ID            string                 `json:"id"`
	FromAccountID string                 `json:"from_account_id"`
	ToAccountID   string                 `json:"to_account_id"`
	Amount        string                 `json:"amount"`
	Description   string                 `json:"description,omitempty"`
	Status        string                 `json:"status"`
	Debit         *BalanceChangeResponse `json:"debit,omitempty"`
	Credit        *BalanceChangeResponse `json:"credit,omitempty"`
	CreatedAt     time.Time              `json:"created_at"`
}

// TransferFromDomain converts domain transfer to response.
func TransferFromDomain(t *domain.Transfer) *TransferResponse {
	return &TransferResponse{
		ID:            t.ID,
		FromAccountID: t.FromAccountID,
		ToAccountID:   t.ToAccountID,
		Amount:        money(t.Amount),
		Description:   t.Description,
		Status:        string(t.Status),
		Debit:         BalanceChangeFromDomain(t.Debit),
		Credit:        BalanceChangeFromDomain(t.Credit),
		CreatedAt:     t.CreatedAt,
	}
}

// PaymentResponse represents a payment in API responses.
type PaymentResponse struct {
	ID         string                 `json:"id"`
	AccountID  string                 `json:"account_id"`
	MerchantID string                 `json:"merchant_id"`
	OrderID    string                 `json:"order_id"`
	Amount     string                 `json:"amount"`
	Result     *BalanceChangeResponse `json:"result,omitempty"`
}

// PaymentFromDomain converts domain payment to response.
func PaymentFromDomain(p *domain.Payment) *PaymentResponse {
	return &PaymentResponse{
		ID:         p.ID,
		AccountID:  p.AccountID,
		MerchantID: p.MerchantID,
		OrderID:    p.OrderID,
		Amount:     money(p.Amount),
		Result:     BalanceChangeFromDomain(p.Result),
	}
}

// RefundResponse represents a refund in API responses.
type RefundResponse struct {
	ID        string                 `json:"id"`
	PaymentID string                 `json:"payment_id"`
	AccountID string                 `json:"account_id"`
	Amount    string                 `json:"amount"`
	Reason    string                 `json:"reason,omitempty"`
	Result    *BalanceChangeResponse `json:"result,omitempty"`
}

// RefundFromDomain converts domain refund to response.
func RefundFromDomain(r *domain.Refund) *RefundResponse {
	return &RefundResponse{
		ID:        r.ID,
		PaymentID: r.PaymentID,
		AccountID: r.AccountID,
		Amount:    money(r.Amount),
		Reason:    r.Reason,
		Result:    BalanceChangeFromDomain(r.Result),
	}
}

// ReconciliationResponse is the chain check of one account.
type ReconciliationResponse struct {
	AccountID         string    `json:"account_id"`
	RecordedBalance   string    `json:"recorded_balance"`
	CalculatedBalance string    `json:"calculated_balance"`
	Difference        string    `json:"difference"`
	Version           int64     `json:"version"`
	EntryCount        int       `json:"entry_count"`
	Issues            []string  `json:"issues,omitempty"`
	IsReconciled      bool      `json:"is_reconciled"`
	CheckedAt         time.Time `json:"checked_at"`
}

// ReconciliationFromUseCase converts a reconciliation result to response.
func ReconciliationFromUseCase(r *usecase.ReconciliationResult) *ReconciliationResponse {
	return &ReconciliationResponse{
		AccountID:         r.AccountID,
		RecordedBalance:   money(r.RecordedBalance),
		CalculatedBalance: money(r.CalculatedBalance),
		Difference:        money(r.Difference),
		Version:           r.Version,
		EntryCount:        r.EntryCount,
		Issues:            r.Issues,
		IsReconciled:      r.IsReconciled,
		CheckedAt:         r.LastChecked,
	}
}

// LedgerConsistencyResponse is the ledger-wide conservation check.
type LedgerConsistencyResponse struct {
	TotalBalance string    `json:"total_balance"`
	TotalAmount  string    `json:"total_history_amount"`
	Difference   string    `json:"difference"`
	Consistent   bool      `json:"consistent"`
	CheckedAt    time.Time `json:"checked_at"`
}

// LedgerConsistencyFromUseCase converts a consistency result to response.
func LedgerConsistencyFromUseCase(c *usecase.LedgerConsistency) *LedgerConsistencyResponse {
	return &LedgerConsistencyResponse{
		TotalBalance: money(c.TotalBalance),
		TotalAmount:  money(c.TotalAmount),
		Difference:   money(c.Difference),
		Consistent:   c.Consistent,
		CheckedAt:    c.CheckedAt,
	}
}

// ErrorResponse represents an error in API responses.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
