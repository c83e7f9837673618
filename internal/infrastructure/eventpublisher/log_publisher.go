package eventpublisher

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/iho/walletledger/internal/domain"
)

// LogPublisher is an AlertPublisher that writes alerts to the log.
type LogPublisher struct {
	logger zerolog.Logger
}

// NewLogPublisher creates a new LogPublisher.
func NewLogPublisher(logger zerolog.Logger) *LogPublisher {
	return &LogPublisher{logger: logger}
}

// Publish logs the alert. Balance changes are info, everything else warn.
func (p *LogPublisher) Publish(_ context.Context, alert domain.Alert) error {
	event := p.logger.Warn()
	if alert.Kind == domain.AlertBalanceChanged {
		event = p.logger.Info()
	}

	event = event.
		Str("alert", string(alert.Kind)).
		Str("account_id", alert.AccountID).
		Str("actor_id", alert.ActorID).
		Str("amount", alert.Amount.String())

	if alert.Direction != "" {
		event = event.Str("direction", string(alert.Direction))
	}

	switch alert.Kind {
	case domain.AlertSuspiciousActivity:
		event = event.Str("kind", string(alert.TransactionKind)).Str("reason", alert.Reason)
	default:
		event = event.Str("balance", alert.Balance.String())
	}

	event.Msg("ALERT")

	return nil
}

// logAuditEvent writes an audit event at the log level matching its severity.
func logAuditEvent(logger zerolog.Logger, e *domain.AuditEvent) {
	var event *zerolog.Event
	switch e.Level {
	case domain.AuditLevelError:
		event = logger.Error()
	case domain.AuditLevelWarning:
		event = logger.Warn()
	default:
		event = logger.Info()
	}

	event = event.
		Str("audit", e.Category).
		Str("resource_type", e.ResourceType).
		Str("resource_id", e.ResourceID).
		Str("actor_id", e.ActorID)

	if e.RequestID != "" {
		event = event.Str("request_id", e.RequestID)
	}
	if e.Cause != "" {
		event = event.Str("cause", e.Cause)
	}
	if len(e.Payload) > 0 {
		event = event.Interface("payload", e.Payload)
	}

	event.Msg(e.Message)
}
