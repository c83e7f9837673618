package domain

import (
	"encoding/json"
	"time"
)

// AuditEvent is a structured audit record emitted by the engine and orchestrators.
type AuditEvent struct {
	CreatedAt    time.Time
	Payload      JSON
	ID           string
	Level        AuditLevel
	Category     string // BALANCE_CHANGE, TRANSFER_START, ...
	ResourceType string // ACCOUNT, TRANSFER, PAYMENT
	ResourceID   string
	Message      string
	Cause        string
	ActorID      string
	RequestID    string
}

// JSON is a type alias for JSON data
type JSON map[string]any

// AuditLevel is the severity of an audit event.
type AuditLevel string

const (
	AuditLevelSuccess AuditLevel = "success"
	AuditLevelWarning AuditLevel = "warning"
	AuditLevelError   AuditLevel = "error"
)

// Audit categories
const (
	AuditCategoryBalanceChange       = "BALANCE_CHANGE"
	AuditCategoryBalanceInsufficient = "BALANCE_INSUFFICIENT"
	AuditCategoryTransferStart       = "TRANSFER_START"
	AuditCategoryTransferComplete    = "TRANSFER_COMPLETE"
	AuditCategoryTransferFailed      = "TRANSFER_FAILED"
	AuditCategoryPayment             = "PAYMENT"
	AuditCategoryRefund              = "REFUND"
	AuditCategoryReconciliation      = "RECONCILIATION"
)

// Audit resource types
const (
	ResourceAccount  = "ACCOUNT"
	ResourceTransfer = "TRANSFER"
	ResourcePayment  = "PAYMENT"
	ResourceLedger   = "LEDGER"
)

// MarshalState converts a domain object to JSON for audit logging
func MarshalState(v any) JSON {
	if v == nil {
		return nil
	}

	data, err := json.Marshal(v)
	if err != nil {
		return JSON{"error": "failed to marshal state"}
	}

	var result JSON
	if err := json.Unmarshal(data, &result); err != nil {
		return JSON{"error": "failed to unmarshal state"}
	}

	return result
}

// AuditFilter defines filters for querying audit events
type AuditFilter struct {
	StartDate    *time.Time
	EndDate      *time.Time
	Level        AuditLevel
	Category     string
	ResourceType string
	ResourceID   string
	ActorID      string
	Limit        int
	Offset       int
}
