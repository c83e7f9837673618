package generated

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

const createAuditLog = `-- name: CreateAuditLog :exec
INSERT INTO audit_logs (id, level, category, resource_type, resource_id, message, payload, cause, actor_id, request_id, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
`

type CreateAuditLogParams struct {
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

func (q *Queries) CreateAuditLog(ctx context.Context, arg CreateAuditLogParams) error {
	_, err := q.db.Exec(ctx, createAuditLog,
		arg.ID,
		arg.Level,
		arg.Category,
		arg.ResourceType,
		arg.ResourceID,
		arg.Message,
		arg.Payload,
		arg.Cause,
		arg.ActorID,
		arg.RequestID,
		arg.CreatedAt,
	)
	return err
}
