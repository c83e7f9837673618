package dto

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/walletledger/internal/domain"
	"github.com/iho/walletledger/internal/usecase"
)

func TestAccountFromDomain(t *testing.T) {
	now := time.Now()
	account := &domain.AccountBalance{
		AccountID: "ACC-1",
		Balance:   decimal.RequireFromString("123.4"),
		Version:   2,
		CreatedAt: now,
		UpdatedAt: now,
	}

	resp := AccountFromDomain(account)
	if resp.AccountID != "ACC-1" || resp.Balance != "123.40" || resp.Version != 2 {
		t.Fatalf("unexpected account response: %+v", resp)
	}
}

func TestTransferFromDomain(t *testing.T) {
	transfer := &domain.Transfer{
		ID:            "TRF_1",
		FromAccountID: "A",
		ToAccountID:   "B",
		Amount:        decimal.NewFromInt(10),
		Status:        domain.TransferStatusCompleted,
		Debit: &domain.BalanceChangeResult{
			AccountID:     "A",
			BalanceBefore: decimal.NewFromInt(100),
			BalanceAfter:  decimal.NewFromInt(90),
			ChangeAmount:  decimal.NewFromInt(-10),
			Kind:          domain.KindTransfer,
			ReferenceID:   "TRF_1",
		},
	}

	resp := TransferFromDomain(transfer)
	if resp.ID != "TRF_1" || resp.Amount != "10.00" || resp.Status != "COMPLETED" {
		t.Fatalf("unexpected transfer response: %+v", resp)
	}

	if resp.Debit == nil || resp.Debit.Direction != "DEBIT" || resp.Debit.ChangeAmount != "-10.00" {
		t.Fatalf("unexpected debit leg: %+v", resp.Debit)
	}

	if resp.Credit != nil {
		t.Fatalf("expected missing credit leg to stay nil")
	}

	data, err := json.Marshal(resp)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	if strings.Contains(string(data), `"credit"`) {
		t.Fatalf("expected credit to be omitted, got %s", data)
	}
}

func TestHistoryFromDomain(t *testing.T) {
	entries := []*domain.TransactionHistoryEntry{{
		ID:            7,
		AccountID:     "ACC-1",
		Kind:          domain.KindPayment,
		Amount:        decimal.NewFromInt(-30000),
		BalanceBefore: decimal.NewFromInt(100000),
		BalanceAfter:  decimal.NewFromInt(70000),
		ReferenceID:   "PAY_1",
		Status:        domain.TransactionStatusCompleted,
		Version:       3,
	}}

	list := HistoryFromDomain(entries)
	if len(list) != 1 {
		t.Fatalf("expected one entry, got %d", len(list))
	}

	e := list[0]
	if e.Amount != "-30000.00" || e.BalanceAfter != "70000.00" || e.Kind != "PAYMENT" || e.Status != "COMPLETED" {
		t.Fatalf("unexpected entry: %+v", e)
	}
}

func TestLedgerAndReconciliationResponses(t *testing.T) {
	consistency := LedgerConsistencyFromUseCase(&usecase.LedgerConsistency{
		TotalBalance: decimal.NewFromInt(10),
		TotalAmount:  decimal.NewFromInt(10),
		Consistent:   true,
	})
	if !consistency.Consistent || consistency.Difference != "0.00" {
		t.Fatalf("unexpected consistency response: %+v", consistency)
	}

	rec := ReconciliationFromUseCase(&usecase.ReconciliationResult{
		AccountID:         "ACC-1",
		RecordedBalance:   decimal.NewFromInt(5),
		CalculatedBalance: decimal.NewFromInt(4),
		Difference:        decimal.NewFromInt(1),
		Issues:            []string{"balance mismatch"},
	})
	if rec.IsReconciled || rec.Difference != "1.00" || len(rec.Issues) != 1 {
		t.Fatalf("unexpected reconciliation response: %+v", rec)
	}
}
