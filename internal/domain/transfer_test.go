package domain

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func TestTransfer_Validate(t *testing.T) {
	tests := []struct {
		name     string
		transfer Transfer
		wantErr  error
	}{
		{
			name:     "valid transfer",
			transfer: Transfer{FromAccountID: "A", ToAccountID: "B", Amount: decimal.NewFromInt(100)},
		},
		{
			name:     "same account",
			transfer: Transfer{FromAccountID: "A", ToAccountID: "A", Amount: decimal.NewFromInt(100)},
			wantErr:  ErrSameAccount,
		},
		{
			name:     "missing source",
			transfer: Transfer{ToAccountID: "B", Amount: decimal.NewFromInt(100)},
			wantErr:  ErrInvalidAccountID,
		},
		{
			name:     "zero amount",
			transfer: Transfer{FromAccountID: "A", ToAccountID: "B", Amount: decimal.Zero},
			wantErr:  ErrInvalidAmount,
		},
		{
			name:     "negative amount",
			transfer: Transfer{FromAccountID: "A", ToAccountID: "B", Amount: decimal.NewFromInt(-5)},
			wantErr:  ErrInvalidAmount,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.transfer.Validate()

			if tt.wantErr == nil && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestTransfer_LockOrder(t *testing.T) {
	tr := Transfer{FromAccountID: "ACC9", ToAccountID: "ACC1"}

	first, second := tr.LockOrder()
	if first != "ACC1" || second != "ACC9" {
		t.Fatalf("expected ACC1, ACC9 got %s, %s", first, second)
	}

	tr = Transfer{FromAccountID: "ACC1", ToAccountID: "ACC9"}

	first, second = tr.LockOrder()
	if first != "ACC1" || second != "ACC9" {
		t.Fatalf("expected ACC1, ACC9 got %s, %s", first, second)
	}
}

func TestPayment_Validate(t *testing.T) {
	p := Payment{AccountID: "ACC1", MerchantID: "M1", OrderID: "O1", Amount: decimal.NewFromInt(10)}
	if err := p.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if p.Description() != "payment merchant=M1 order=O1" {
		t.Errorf("unexpected description %q", p.Description())
	}

	p.Amount = decimal.Zero
	if err := p.Validate(); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount, got %v", err)
	}
}

func TestRefund_Validate(t *testing.T) {
	r := Refund{AccountID: "ACC1", PaymentID: "PAY_1", Amount: decimal.NewFromInt(10)}
	if err := r.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	r.PaymentID = ""
	err := r.Validate()
	if !errors.Is(err, ErrInvalidPaymentID) {
		t.Fatalf("expected ErrInvalidPaymentID, got %v", err)
	}
	if errors.Is(err, ErrInvalidAccountID) {
		t.Fatal("missing payment id must not be reported as an invalid account id")
	}
}
