package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/iho/walletledger/internal/domain"
	"github.com/iho/walletledger/internal/infrastructure/postgres/generated"
)

// AuditRepository implements audit log persistence
type AuditRepository struct {
	db      generated.DBTX
	queries *generated.Queries
}

// NewAuditRepository creates a new audit repository
func NewAuditRepository(db generated.DBTX) *AuditRepository {
	return &AuditRepository{
		db:      db,
		queries: generated.New(db),
	}
}

// Create inserts a new audit log entry
func (r *AuditRepository) Create(ctx context.Context, event *domain.AuditEvent) error {
	if event.ID == "" {
		event.ID = ulid.Make().String()
	}

	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now().UTC()
	}

	var payload []byte
	if event.Payload != nil {
		var err error
		payload, err = json.Marshal(event.Payload)
		if err != nil {
			return fmt.Errorf("marshal audit payload: %w", err)
		}
	}

	return r.queries.CreateAuditLog(ctx, generated.CreateAuditLogParams{
		ID:           event.ID,
		Level:        string(event.Level),
		Category:     event.Category,
		ResourceType: event.ResourceType,
		ResourceID:   event.ResourceID,
		Message:      event.Message,
		Payload:      payload,
		Cause:        event.Cause,
		ActorID:      event.ActorID,
		RequestID:    event.RequestID,
		CreatedAt:    timeToPgTimestamptz(event.CreatedAt),
	})
}

// List retrieves audit events matching filter, newest first
func (r *AuditRepository) List(ctx context.Context, filter domain.AuditFilter) ([]*domain.AuditEvent, error) {
	query, args := buildAuditQuery(filter)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []*domain.AuditEvent
	for rows.Next() {
		var (
			row     generated.AuditLog
			payload []byte
		)

		err := rows.Scan(
			&row.ID,
			&row.Level,
			&row.Category,
			&row.ResourceType,
			&row.ResourceID,
			&row.Message,
			&payload,
			&row.Cause,
			&row.ActorID,
			&row.RequestID,
			&row.CreatedAt,
		)
		if err != nil {
			return nil, err
		}

		event := &domain.AuditEvent{
			ID:           row.ID,
			Level:        domain.AuditLevel(row.Level),
			Category:     row.Category,
			ResourceType: row.ResourceType,
			ResourceID:   row.ResourceID,
			Message:      row.Message,
			Cause:        row.Cause,
			ActorID:      row.ActorID,
			RequestID:    row.RequestID,
			CreatedAt:    row.CreatedAt.Time,
		}

		if payload != nil {
			_ = json.Unmarshal(payload, &event.Payload)
		}

		events = append(events, event)
	}

	return events, rows.Err()
}

func buildAuditQuery(filter domain.AuditFilter) (string, []any) {
	var (
		sb   strings.Builder
		args []any
	)

	sb.WriteString(`SELECT id, level, category, resource_type, resource_id, message, payload, cause, actor_id, request_id, created_at
FROM audit_logs
WHERE 1=1`)

	where := func(clause string, value any) {
		args = append(args, value)
		fmt.Fprintf(&sb, " AND %s $%d", clause, len(args))
	}

	if filter.StartDate != nil {
		where("created_at >=", *filter.StartDate)
	}

	if filter.EndDate != nil {
		where("created_at <=", *filter.EndDate)
	}

	if filter.Level != "" {
		where("level =", string(filter.Level))
	}

	if filter.Category != "" {
		where("category =", filter.Category)
	}

	if filter.ResourceType != "" {
		where("resource_type =", filter.ResourceType)
	}

	if filter.ResourceID != "" {
		where("resource_id =", filter.ResourceID)
	}

	if filter.ActorID != "" {
		where("actor_id =", filter.ActorID)
	}

	sb.WriteString(" ORDER BY created_at DESC, id DESC")

	limit, offset := domain.ValidatePagination(filter.Limit, filter.Offset)

	args = append(args, limit)
	fmt.Fprintf(&sb, " LIMIT $%d", len(args))

	args = append(args, offset)
	fmt.Fprintf(&sb, " OFFSET $%d", len(args))

	return sb.String(), args
}
