package domain

import "github.com/shopspring/decimal"

// AlertKind identifies the alert being raised.
type AlertKind string

const (
	AlertInsufficientBalance AlertKind = "INSUFFICIENT_BALANCE"
	AlertBalanceChanged      AlertKind = "BALANCE_CHANGED"
	AlertSuspiciousActivity  AlertKind = "SUSPICIOUS_ACTIVITY"
)

// Alert is a notification request handed to the alert sink. Delivery is
// someone else's concern.
type Alert struct {
	Kind            AlertKind
	AccountID       string
	ActorID         string
	Direction       Direction
	TransactionKind TransactionKind
	Amount          decimal.Decimal
	Balance         decimal.Decimal
	Reason          string
}
