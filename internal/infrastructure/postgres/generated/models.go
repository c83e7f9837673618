package generated

import (
	"github.com/jackc/pgx/v5/pgtype"
)

type AccountBalance struct {
	AccountID string             `json:"account_id"`
	Balance   pgtype.Numeric     `json:"balance"`
	Version   int64              `json:"version"`
	CreatedAt pgtype.Timestamptz `json:"created_at"`
	UpdatedAt pgtype.Timestamptz `json:"updated_at"`
}

type AuditLog struct {
	ID           string             `json:"id"`
	Level        string             `json:"level"`
	Category     string             `json:"category"`
	ResourceType string             `json:"resource_type"`
	ResourceID   string             `json:"resource_id"`
	Message      string             `json:"message"`
	Payload      []byte             `json:"payload"`
	Cause        string             `json:"cause"`
	ActorID      string             `json:"actor_id"`
	RequestID    string             `json:"request_id"`
	CreatedAt    pgtype.Timestamptz `json:"created_at"`
}

type TransactionHistory struct {
	ID            int64              `json:"id"`
	AccountID     string             `json:"account_id"`
	Kind          string             `json:"kind"`
	Amount        pgtype.Numeric     `json:"amount"`
	BalanceBefore pgtype.Numeric     `json:"balance_before"`
	BalanceAfter  pgtype.Numeric     `json:"balance_after"`
	Description   string             `json:"description"`
	ReferenceID   string             `json:"reference_id"`
	Status        string             `json:"status"`
	Version       int64              `json:"version"`
	CreatedAt     pgtype.Timestamptz `json:"created_at"`
}
