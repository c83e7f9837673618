package domain

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	// Engine errors
	ErrInvalidAmount       = errors.New("amount must be positive")
	ErrAccountNotFound     = errors.New("account not found")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrInternal            = errors.New("internal error")
	ErrTimeout             = errors.New("operation timed out")
	ErrInvalidKind         = errors.New("invalid transaction kind")

	// Orchestration errors
	ErrSameAccount           = errors.New("cannot transfer to same account")
	ErrTransferLimitExceeded = errors.New("transfer amount exceeds limit")
	ErrInvalidAccountID      = errors.New("invalid account id")
	ErrInvalidPaymentID      = errors.New("invalid payment id")
	ErrPaymentNotFound       = errors.New("payment not found")
	ErrRefundExceedsPayment  = errors.New("refund exceeds paid amount")
)

// InsufficientBalanceError carries the balance observed under lock and the
// amount that was requested.
type InsufficientBalanceError struct {
	AccountID string
	Current   decimal.Decimal
	Requested decimal.Decimal
}

func (e *InsufficientBalanceError) Error() string {
	return fmt.Sprintf("insufficient balance on account %s: current %s, requested %s",
		e.AccountID, e.Current.StringFixed(2), e.Requested.StringFixed(2))
}

// Is makes errors.Is(err, ErrInsufficientBalance) true.
func (e *InsufficientBalanceError) Is(target error) bool {
	return target == ErrInsufficientBalance
}

// InternalReason distinguishes internal failures without exposing storage detail.
type InternalReason string

const (
	ReasonStorage    InternalReason = "storage"
	ReasonTimeout    InternalReason = "timeout"
	ReasonUnexpected InternalReason = "unexpected"
)

// InternalError is the opaque error surfaced for non-business failures.
// The cause is kept for logging and is not part of Error().
type InternalError struct {
	Reason InternalReason
	Op     string
	cause  error
}

// NewInternalError wraps cause as an internal failure of op.
func NewInternalError(op string, reason InternalReason, cause error) *InternalError {
	return &InternalError{Reason: reason, Op: op, cause: cause}
}

func (e *InternalError) Error() string {
	if e.Reason == ReasonTimeout {
		return fmt.Sprintf("%s: operation timed out", e.Op)
	}
	return fmt.Sprintf("%s: internal error", e.Op)
}

// Cause returns the underlying error for logging.
func (e *InternalError) Cause() error {
	return e.cause
}

// Is matches ErrInternal, and ErrTimeout for timeouts.
func (e *InternalError) Is(target error) bool {
	switch target {
	case ErrInternal:
		return true
	case ErrTimeout:
		return e.Reason == ReasonTimeout
	}
	return false
}

// IsBusinessError reports whether err is an expected error that must reach
// the caller unwrapped.
func IsBusinessError(err error) bool {
	return errors.Is(err, ErrInvalidAmount) ||
		errors.Is(err, ErrAccountNotFound) ||
		errors.Is(err, ErrInsufficientBalance) ||
		errors.Is(err, ErrSameAccount) ||
		errors.Is(err, ErrTransferLimitExceeded) ||
		errors.Is(err, ErrInvalidAccountID) ||
		errors.Is(err, ErrInvalidPaymentID) ||
		errors.Is(err, ErrPaymentNotFound) ||
		errors.Is(err, ErrRefundExceedsPayment) ||
		errors.Is(err, ErrInvalidKind)
}
