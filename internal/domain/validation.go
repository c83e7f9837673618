package domain

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Validation constants
const (
	MaxMutationAmount  = "1000000000000" // 1 trillion
	AmountScale        = 2
	MaxAccountIDLength = 64
)

var maxMutationAmount = decimal.RequireFromString(MaxMutationAmount)

// ValidateAmount validates a mutation amount. Every failure wraps ErrInvalidAmount.
func ValidateAmount(amount decimal.Decimal) error {
	if amount.LessThanOrEqual(decimal.Zero) {
		return ErrInvalidAmount
	}

	if !amount.Equal(amount.Truncate(AmountScale)) {
		return fmt.Errorf("%w: at most %d decimal places", ErrInvalidAmount, AmountScale)
	}

	if amount.GreaterThan(maxMutationAmount) {
		return fmt.Errorf("%w: maximum amount is %s", ErrInvalidAmount, MaxMutationAmount)
	}

	return nil
}

// ValidateAccountID validates an opaque account id.
func ValidateAccountID(id string) error {
	id = strings.TrimSpace(id)

	if id == "" {
		return fmt.Errorf("%w: id cannot be empty", ErrInvalidAccountID)
	}

	if len(id) > MaxAccountIDLength {
		return fmt.Errorf("%w: id exceeds %d characters", ErrInvalidAccountID, MaxAccountIDLength)
	}

	return nil
}

// ValidatePagination validates and limits pagination parameters
func ValidatePagination(limit, offset int) (int, int) {
	const MaxPageSize = 1000
	const DefaultPageSize = 50

	if limit <= 0 {
		limit = DefaultPageSize
	}

	if limit > MaxPageSize {
		limit = MaxPageSize
	}

	if offset < 0 {
		offset = 0
	}

	return limit, offset
}
