package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/walletledger/internal/domain"
)

// AccountRepository defines data access for account balances.
type AccountRepository interface {
	GetByID(ctx context.Context, id string) (*domain.AccountBalance, error)
	GetByIDForUpdate(ctx context.Context, tx Transaction, id string) (*domain.AccountBalance, error)
	UpdateBalance(ctx context.Context, tx Transaction, id string, balance decimal.Decimal, version int64, updatedAt time.Time) error
	List(ctx context.Context, limit, offset int) ([]*domain.AccountBalance, error)
}

// HistoryRepository defines data access for the append-only transaction history.
type HistoryRepository interface {
	// Create appends entry inside tx and sets entry.ID.
	Create(ctx context.Context, tx Transaction, entry *domain.TransactionHistoryEntry) error
	// ListByAccount returns entries newest first.
	ListByAccount(ctx context.Context, accountID string, limit, offset int) ([]*domain.TransactionHistoryEntry, error)
	// ListChain returns every entry of an account oldest first.
	ListChain(ctx context.Context, accountID string) ([]*domain.TransactionHistoryEntry, error)
	ListByReference(ctx context.Context, referenceID string) ([]*domain.TransactionHistoryEntry, error)
	GetBalanceAtTime(ctx context.Context, accountID string, at time.Time) (decimal.Decimal, error)
}

// LedgerRepository defines data access for ledger-wide operations.
type LedgerRepository interface {
	CheckConsistency(ctx context.Context) (totalBalance, totalAmount decimal.Decimal, err error)
}

// AuditRepository defines persistence for audit events.
type AuditRepository interface {
	Create(ctx context.Context, event *domain.AuditEvent) error
	List(ctx context.Context, filter domain.AuditFilter) ([]*domain.AuditEvent, error)
}

// Transaction represents a storage transaction. Locks taken through it are
// held until Commit or Rollback. Rollback after Commit is a no-op.
type Transaction interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// TransactionManager handles transaction lifecycle.
type TransactionManager interface {
	Begin(ctx context.Context) (Transaction, error)
}

// Retrier retries an operation on transient storage conflicts.
type Retrier interface {
	Retry(ctx context.Context, operation func() error) error
}

// IDGenerator generates unique IDs.
type IDGenerator interface {
	Generate() string
}

// AuditSink receives audit events. Implementations must not block.
type AuditSink interface {
	LogSuccess(ctx context.Context, category, resourceType, resourceID, message string, payload domain.JSON)
	LogWarning(ctx context.Context, category, resourceType, resourceID, message string)
	LogError(ctx context.Context, category, resourceType, resourceID, message string, cause error)
}

// AlertSink receives alerts. Implementations must not block.
type AlertSink interface {
	RaiseInsufficientBalance(ctx context.Context, accountID, actorID string, current, requested decimal.Decimal)
	RaiseBalanceChanged(ctx context.Context, accountID, actorID string, direction domain.Direction, amount, balanceAfter decimal.Decimal)
	RaiseSuspiciousActivity(ctx context.Context, accountID, actorID string, amount decimal.Decimal, kind domain.TransactionKind, reason string)
}

// VelocityCounter counts events per key over a fixed window.
type VelocityCounter interface {
	// Increment adds one to key and returns the count in the current window.
	Increment(ctx context.Context, key string, window time.Duration) (int64, error)
}

// MetricsRecorder records engine metrics.
type MetricsRecorder interface {
	RecordMutation(kind domain.TransactionKind, direction domain.Direction, outcome string, duration time.Duration, amount decimal.Decimal)
	RecordInternalError(reason domain.InternalReason)
	RecordSuspiciousActivity(rule string)
}

// Cache defines caching operations.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// IdempotencyStore handles idempotency key storage.
type IdempotencyStore interface {
	// CheckAndSet atomically checks if key exists, sets if not.
	// Returns (exists, existingValue, error).
	CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	// Update updates an existing key with the final response.
	Update(ctx context.Context, key string, response []byte, ttl time.Duration) error
	// Release drops a key so that a failed request can be retried.
	Release(ctx context.Context, key string) error
}
