package domain

import (
	"errors"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
)

func TestValidateAmount(t *testing.T) {
	t.Parallel()

	if err := ValidateAmount(decimal.RequireFromString("100.25")); err != nil {
		t.Fatalf("expected valid amount, got %v", err)
	}

	if err := ValidateAmount(decimal.Zero); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount for zero, got %v", err)
	}

	if err := ValidateAmount(decimal.NewFromInt(-1)); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount for negative, got %v", err)
	}

	if err := ValidateAmount(decimal.RequireFromString("0.001")); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount for sub-cent amount, got %v", err)
	}

	huge := decimal.RequireFromString(MaxMutationAmount).Add(decimal.NewFromInt(1))
	if err := ValidateAmount(huge); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount for huge amount, got %v", err)
	}

	if err := ValidateAmount(decimal.RequireFromString("0.01")); err != nil {
		t.Fatalf("expected one cent to be valid, got %v", err)
	}
}

func TestValidateAccountID(t *testing.T) {
	t.Parallel()

	if err := ValidateAccountID("ACC1"); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if err := ValidateAccountID("  "); !errors.Is(err, ErrInvalidAccountID) {
		t.Fatalf("expected ErrInvalidAccountID, got %v", err)
	}

	if err := ValidateAccountID(strings.Repeat("a", MaxAccountIDLength+1)); !errors.Is(err, ErrInvalidAccountID) {
		t.Fatalf("expected ErrInvalidAccountID, got %v", err)
	}
}

func TestValidatePagination(t *testing.T) {
	t.Parallel()

	limit, offset := ValidatePagination(0, -10)
	if limit != 50 || offset != 0 {
		t.Fatalf("expected defaults (50,0), got (%d,%d)", limit, offset)
	}

	limit, _ = ValidatePagination(5000, 0)
	if limit != 1000 {
		t.Fatalf("expected limit capped at 1000, got %d", limit)
	}
}
