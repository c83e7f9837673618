package eventpublisher

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/iho/walletledger/internal/domain"
	"github.com/iho/walletledger/internal/usecase"
)

// Event types used in metrics labels.
const (
	EventTypeAudit = "audit"
	EventTypeAlert = "alert"
)

// AlertPublisher delivers alerts to an external channel.
type AlertPublisher interface {
	Publish(ctx context.Context, alert domain.Alert) error
}

// DeliveryRecorder counts dispatcher outcomes.
type DeliveryRecorder interface {
	RecordEventDelivered(eventType string)
	RecordEventFailed(eventType string)
	RecordEventDropped(eventType string)
}

// Config for Dispatcher.
type Config struct {
	AuditRepo       usecase.AuditRepository
	Alerts          AlertPublisher
	Metrics         DeliveryRecorder
	Logger          zerolog.Logger
	BufferSize      int
	Workers         int
	DeliveryTimeout time.Duration
}

type envelope struct {
	audit *domain.AuditEvent
	alert *domain.Alert
}

// Dispatcher implements usecase.AuditSink and usecase.AlertSink. Events are
// queued on a bounded buffer and delivered by a worker group; when the buffer
// is full the event is dropped and counted, so callers never block. Without
// an AuditRepo audit events are written to the logger.
type Dispatcher struct {
	auditRepo       usecase.AuditRepository
	alerts          AlertPublisher
	metrics         DeliveryRecorder
	logger          zerolog.Logger
	workers         int
	deliveryTimeout time.Duration

	mu     sync.RWMutex
	closed bool
	queue  chan envelope
	done   chan struct{}
	once   sync.Once
}

// NewDispatcher creates a new Dispatcher.
func NewDispatcher(cfg Config) *Dispatcher {
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = 1024
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 4
	}
	if cfg.DeliveryTimeout <= 0 {
		cfg.DeliveryTimeout = 5 * time.Second
	}
	if cfg.Metrics == nil {
		cfg.Metrics = noopDeliveryRecorder{}
	}

	return &Dispatcher{
		auditRepo:       cfg.AuditRepo,
		alerts:          cfg.Alerts,
		metrics:         cfg.Metrics,
		logger:          cfg.Logger,
		workers:         cfg.Workers,
		deliveryTimeout: cfg.DeliveryTimeout,
		queue:           make(chan envelope, cfg.BufferSize),
		done:            make(chan struct{}),
	}
}

// Run starts the workers and blocks until ctx is cancelled or Close is
// called. Queued events are drained before it returns.
func (d *Dispatcher) Run(ctx context.Context) error {
	d.logger.Info().
		Int("workers", d.workers).
		Int("buffer", cap(d.queue)).
		Msg("event dispatcher started")

	var g errgroup.Group
	for range d.workers {
		g.Go(func() error {
			for env := range d.queue {
				d.deliver(env)
			}
			return nil
		})
	}

	select {
	case <-ctx.Done():
		d.Close()
	case <-d.done:
	}

	err := g.Wait()
	d.logger.Info().Msg("event dispatcher stopped")

	return err
}

// Close stops accepting events. Workers exit once the buffer is drained.
func (d *Dispatcher) Close() {
	d.once.Do(func() {
		d.mu.Lock()
		d.closed = true
		close(d.queue)
		d.mu.Unlock()
		close(d.done)
	})
}

// LogSuccess queues a success audit event.
func (d *Dispatcher) LogSuccess(ctx context.Context, category, resourceType, resourceID, message string, payload domain.JSON) {
	d.enqueueAudit(ctx, domain.AuditLevelSuccess, category, resourceType, resourceID, message, payload, nil)
}

// LogWarning queues a warning audit event.
func (d *Dispatcher) LogWarning(ctx context.Context, category, resourceType, resourceID, message string) {
	d.enqueueAudit(ctx, domain.AuditLevelWarning, category, resourceType, resourceID, message, nil, nil)
}

// LogError queues an error audit event.
func (d *Dispatcher) LogError(ctx context.Context, category, resourceType, resourceID, message string, cause error) {
	d.enqueueAudit(ctx, domain.AuditLevelError, category, resourceType, resourceID, message, nil, cause)
}

// RaiseInsufficientBalance queues an insufficient-balance alert.
func (d *Dispatcher) RaiseInsufficientBalance(_ context.Context, accountID, actorID string, current, requested decimal.Decimal) {
	d.enqueue(envelope{alert: &domain.Alert{
		Kind:      domain.AlertInsufficientBalance,
		AccountID: accountID,
		ActorID:   actorID,
		Direction: domain.DirectionDebit,
		Amount:    requested,
		Balance:   current,
	}})
}

// RaiseBalanceChanged queues a balance-changed alert.
func (d *Dispatcher) RaiseBalanceChanged(_ context.Context, accountID, actorID string, direction domain.Direction, amount, balanceAfter decimal.Decimal) {
	d.enqueue(envelope{alert: &domain.Alert{
		Kind:      domain.AlertBalanceChanged,
		AccountID: accountID,
		ActorID:   actorID,
		Direction: direction,
		Amount:    amount,
		Balance:   balanceAfter,
	}})
}

// RaiseSuspiciousActivity queues a suspicious-activity alert.
func (d *Dispatcher) RaiseSuspiciousActivity(_ context.Context, accountID, actorID string, amount decimal.Decimal, kind domain.TransactionKind, reason string) {
	d.enqueue(envelope{alert: &domain.Alert{
		Kind:            domain.AlertSuspiciousActivity,
		AccountID:       accountID,
		ActorID:         actorID,
		Amount:          amount,
		TransactionKind: kind,
		Reason:          reason,
	}})
}

func (d *Dispatcher) enqueueAudit(ctx context.Context, level domain.AuditLevel, category, resourceType, resourceID, message string, payload domain.JSON, cause error) {
	event := &domain.AuditEvent{
		Level:        level,
		Category:     category,
		ResourceType: resourceType,
		ResourceID:   resourceID,
		Message:      message,
		Payload:      payload,
		ActorID:      domain.ActorFromContext(ctx),
		RequestID:    domain.RequestIDFromContext(ctx),
		CreatedAt:    time.Now().UTC(),
	}
	if cause != nil {
		event.Cause = cause.Error()
	}

	d.enqueue(envelope{audit: event})
}

func (d *Dispatcher) enqueue(env envelope) {
	eventType := env.eventType()

	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		d.metrics.RecordEventDropped(eventType)
		return
	}

	select {
	case d.queue <- env:
	default:
		d.metrics.RecordEventDropped(eventType)
		d.logger.Warn().Str("event_type", eventType).Msg("event buffer full, dropping event")
	}
}

func (d *Dispatcher) deliver(env envelope) {
	ctx, cancel := context.WithTimeout(context.Background(), d.deliveryTimeout)
	defer cancel()

	eventType := env.eventType()

	var err error
	switch {
	case env.audit != nil && d.auditRepo != nil:
		err = d.auditRepo.Create(ctx, env.audit)
	case env.audit != nil:
		// no audit store configured; the log is the audit trail
		logAuditEvent(d.logger, env.audit)
	case env.alert != nil && d.alerts != nil:
		err = d.alerts.Publish(ctx, *env.alert)
	default:
		d.metrics.RecordEventDropped(eventType)
		return
	}

	if err != nil {
		d.metrics.RecordEventFailed(eventType)
		d.logger.Error().Err(err).Str("event_type", eventType).Msg("failed to deliver event")
		return
	}

	d.metrics.RecordEventDelivered(eventType)
}

func (e envelope) eventType() string {
	if e.audit != nil {
		return EventTypeAudit
	}
	return EventTypeAlert
}

type noopDeliveryRecorder struct{}

func (noopDeliveryRecorder) RecordEventDelivered(string) {}
func (noopDeliveryRecorder) RecordEventFailed(string)    {}
func (noopDeliveryRecorder) RecordEventDropped(string)   {}
