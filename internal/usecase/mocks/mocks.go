package mocks

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/walletledger/internal/domain"
	"github.com/iho/walletledger/internal/usecase"
)

// MockAccountRepository is a mock implementation of AccountRepository.
type MockAccountRepository struct {
	mu       sync.RWMutex
	accounts map[string]*domain.AccountBalance

	GetByIDFunc          func(ctx context.Context, id string) (*domain.AccountBalance, error)
	GetByIDForUpdateFunc func(ctx context.Context, tx usecase.Transaction, id string) (*domain.AccountBalance, error)
	UpdateBalanceFunc    func(ctx context.Context, tx usecase.Transaction, id string, balance decimal.Decimal, version int64, updatedAt time.Time) error
	ListFunc             func(ctx context.Context, limit, offset int) ([]*domain.AccountBalance, error)
}

func NewMockAccountRepository() *MockAccountRepository {
	return &MockAccountRepository{
		accounts: make(map[string]*domain.AccountBalance),
	}
}

// Put stores a copy of account.
func (m *MockAccountRepository) Put(account *domain.AccountBalance) {
	m.mu.Lock()
	defer m.mu.Unlock()
	acc := *account
	m.accounts[account.AccountID] = &acc
}

func (m *MockAccountRepository) GetByID(ctx context.Context, id string) (*domain.AccountBalance, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if acc, ok := m.accounts[id]; ok {
		cp := *acc
		return &cp, nil
	}
	return nil, domain.ErrAccountNotFound
}

func (m *MockAccountRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.AccountBalance, error) {
	if m.GetByIDForUpdateFunc != nil {
		return m.GetByIDForUpdateFunc(ctx, tx, id)
	}
	return m.GetByID(ctx, id)
}

func (m *MockAccountRepository) UpdateBalance(ctx context.Context, tx usecase.Transaction, id string, balance decimal.Decimal, version int64, updatedAt time.Time) error {
	if m.UpdateBalanceFunc != nil {
		return m.UpdateBalanceFunc(ctx, tx, id, balance, version, updatedAt)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	acc, ok := m.accounts[id]
	if !ok {
		return domain.ErrAccountNotFound
	}
	acc.Balance = balance
	acc.Version = version
	acc.UpdatedAt = updatedAt
	return nil
}

func (m *MockAccountRepository) List(ctx context.Context, limit, offset int) ([]*domain.AccountBalance, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, limit, offset)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	ids := make([]string, 0, len(m.accounts))
	for id := range m.accounts {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	var accounts []*domain.AccountBalance
	for i := offset; i < len(ids) && len(accounts) < limit; i++ {
		cp := *m.accounts[ids[i]]
		accounts = append(accounts, &cp)
	}
	return accounts, nil
}

// MockHistoryRepository is a mock implementation of HistoryRepository.
type MockHistoryRepository struct {
	mu      sync.RWMutex
	entries []*domain.TransactionHistoryEntry
	nextID  int64

	CreateFunc           func(ctx context.Context, tx usecase.Transaction, entry *domain.TransactionHistoryEntry) error
	ListByAccountFunc    func(ctx context.Context, accountID string, limit, offset int) ([]*domain.TransactionHistoryEntry, error)
	ListChainFunc        func(ctx context.Context, accountID string) ([]*domain.TransactionHistoryEntry, error)
	ListByReferenceFunc  func(ctx context.Context, referenceID string) ([]*domain.TransactionHistoryEntry, error)
	GetBalanceAtTimeFunc func(ctx context.Context, accountID string, at time.Time) (decimal.Decimal, error)
}

func NewMockHistoryRepository() *MockHistoryRepository {
	return &MockHistoryRepository{}
}

// Entries returns a copy of every stored entry in insertion order.
func (m *MockHistoryRepository) Entries() []domain.TransactionHistoryEntry {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]domain.TransactionHistoryEntry, 0, len(m.entries))
	for _, e := range m.entries {
		out = append(out, *e)
	}
	return out
}

func (m *MockHistoryRepository) Create(ctx context.Context, tx usecase.Transaction, entry *domain.TransactionHistoryEntry) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, tx, entry)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	entry.ID = m.nextID
	cp := *entry
	m.entries = append(m.entries, &cp)
	return nil
}

func (m *MockHistoryRepository) ListByAccount(ctx context.Context, accountID string, limit, offset int) ([]*domain.TransactionHistoryEntry, error) {
	if m.ListByAccountFunc != nil {
		return m.ListByAccountFunc(ctx, accountID, limit, offset)
	}
	chain, _ := m.ListChain(ctx, accountID)
	var out []*domain.TransactionHistoryEntry
	for i := len(chain) - 1 - offset; i >= 0 && len(out) < limit; i-- {
		out = append(out, chain[i])
	}
	return out, nil
}

func (m *MockHistoryRepository) ListChain(ctx context.Context, accountID string) ([]*domain.TransactionHistoryEntry, error) {
	if m.ListChainFunc != nil {
		return m.ListChainFunc(ctx, accountID)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*domain.TransactionHistoryEntry
	for _, e := range m.entries {
		if e.AccountID == accountID {
			cp := *e
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *MockHistoryRepository) ListByReference(ctx context.Context, referenceID string) ([]*domain.TransactionHistoryEntry, error) {
	if m.ListByReferenceFunc != nil {
		return m.ListByReferenceFunc(ctx, referenceID)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*domain.TransactionHistoryEntry
	for _, e := range m.entries {
		if e.ReferenceID == referenceID {
			cp := *e
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *MockHistoryRepository) GetBalanceAtTime(ctx context.Context, accountID string, at time.Time) (decimal.Decimal, error) {
	if m.GetBalanceAtTimeFunc != nil {
		return m.GetBalanceAtTimeFunc(ctx, accountID, at)
	}
	return decimal.Zero, nil
}

// MockLedgerRepository is a mock implementation of LedgerRepository.
type MockLedgerRepository struct {
	CheckConsistencyFunc func(ctx context.Context) (decimal.Decimal, decimal.Decimal, error)
}

func (m *MockLedgerRepository) CheckConsistency(ctx context.Context) (decimal.Decimal, decimal.Decimal, error) {
	if m.CheckConsistencyFunc != nil {
		return m.CheckConsistencyFunc(ctx)
	}
	return decimal.Zero, decimal.Zero, nil
}

// MockTransactionManager is a mock implementation of TransactionManager.
type MockTransactionManager struct {
	BeginFunc func(ctx context.Context) (usecase.Transaction, error)
}

func NewMockTransactionManager() *MockTransactionManager {
	return &MockTransactionManager{}
}

func (m *MockTransactionManager) Begin(ctx context.Context) (usecase.Transaction, error) {
	if m.BeginFunc != nil {
		return m.BeginFunc(ctx)
	}
	return &MockTransaction{}, nil
}

// MockTransaction is a mock implementation of Transaction.
type MockTransaction struct {
	CommitFunc   func(ctx context.Context) error
	RollbackFunc func(ctx context.Context) error

	mu         sync.Mutex
	Committed  bool
	RolledBack bool
}

func (m *MockTransaction) Commit(ctx context.Context) error {
	if m.CommitFunc != nil {
		return m.CommitFunc(ctx)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Committed = true
	return nil
}

func (m *MockTransaction) Rollback(ctx context.Context) error {
	if m.RollbackFunc != nil {
		return m.RollbackFunc(ctx)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.Committed {
		m.RolledBack = true
	}
	return nil
}

// MockIDGenerator is a mock implementation of IDGenerator.
type MockIDGenerator struct {
	GenerateFunc func() string
	counter      int
	mu           sync.Mutex
}

func NewMockIDGenerator() *MockIDGenerator {
	return &MockIDGenerator{}
}

func (m *MockIDGenerator) Generate() string {
	if m.GenerateFunc != nil {
		return m.GenerateFunc()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counter++
	return fmt.Sprintf("mock-id-%d", m.counter)
}

// MockIdempotencyStore is a mock implementation of IdempotencyStore.
type MockIdempotencyStore struct {
	mu   sync.RWMutex
	data map[string][]byte

	CheckAndSetFunc func(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	UpdateFunc      func(ctx context.Context, key string, response []byte, ttl time.Duration) error
}

func NewMockIdempotencyStore() *MockIdempotencyStore {
	return &MockIdempotencyStore{
		data: make(map[string][]byte),
	}
}

func (m *MockIdempotencyStore) CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error) {
	if m.CheckAndSetFunc != nil {
		return m.CheckAndSetFunc(ctx, key, response, ttl)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.data[key]; ok {
		return true, existing, nil
	}
	if response != nil {
		m.data[key] = response
	} else {
		m.data[key] = []byte("processing")
	}
	return false, nil, nil
}

func (m *MockIdempotencyStore) Update(ctx context.Context, key string, response []byte, ttl time.Duration) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, key, response, ttl)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = response
	return nil
}

func (m *MockIdempotencyStore) Release(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

// AuditRecord is one event captured by RecordingAuditSink.
type AuditRecord struct {
	Level        domain.AuditLevel
	Category     string
	ResourceType string
	ResourceID   string
	Message      string
	Payload      domain.JSON
	Cause        error
}

// RecordingAuditSink captures audit events in memory.
type RecordingAuditSink struct {
	mu      sync.Mutex
	records []AuditRecord
}

func NewRecordingAuditSink() *RecordingAuditSink {
	return &RecordingAuditSink{}
}

func (s *RecordingAuditSink) LogSuccess(_ context.Context, category, resourceType, resourceID, message string, payload domain.JSON) {
	s.add(AuditRecord{Level: domain.AuditLevelSuccess, Category: category, ResourceType: resourceType, ResourceID: resourceID, Message: message, Payload: payload})
}

func (s *RecordingAuditSink) LogWarning(_ context.Context, category, resourceType, resourceID, message string) {
	s.add(AuditRecord{Level: domain.AuditLevelWarning, Category: category, ResourceType: resourceType, ResourceID: resourceID, Message: message})
}

func (s *RecordingAuditSink) LogError(_ context.Context, category, resourceType, resourceID, message string, cause error) {
	s.add(AuditRecord{Level: domain.AuditLevelError, Category: category, ResourceType: resourceType, ResourceID: resourceID, Message: message, Cause: cause})
}

func (s *RecordingAuditSink) add(r AuditRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, r)
}

// Records returns captured events.
func (s *RecordingAuditSink) Records() []AuditRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]AuditRecord(nil), s.records...)
}

// Count returns the number of captured events with the given level.
func (s *RecordingAuditSink) Count(level domain.AuditLevel) int {
	n := 0
	for _, r := range s.Records() {
		if r.Level == level {
			n++
		}
	}
	return n
}

// RecordingAlertSink captures alerts in memory.
type RecordingAlertSink struct {
	mu     sync.Mutex
	alerts []domain.Alert
}

func NewRecordingAlertSink() *RecordingAlertSink {
	return &RecordingAlertSink{}
}

func (s *RecordingAlertSink) RaiseInsufficientBalance(_ context.Context, accountID, actorID string, current, requested decimal.Decimal) {
	s.add(domain.Alert{Kind: domain.AlertInsufficientBalance, AccountID: accountID, ActorID: actorID, Direction: domain.DirectionDebit, Amount: requested, Balance: current})
}

func (s *RecordingAlertSink) RaiseBalanceChanged(_ context.Context, accountID, actorID string, direction domain.Direction, amount, balanceAfter decimal.Decimal) {
	s.add(domain.Alert{Kind: domain.AlertBalanceChanged, AccountID: accountID, ActorID: actorID, Direction: direction, Amount: amount, Balance: balanceAfter})
}

func (s *RecordingAlertSink) RaiseSuspiciousActivity(_ context.Context, accountID, actorID string, amount decimal.Decimal, kind domain.TransactionKind, reason string) {
	s.add(domain.Alert{Kind: domain.AlertSuspiciousActivity, AccountID: accountID, ActorID: actorID, Amount: amount, TransactionKind: kind, Reason: reason})
}

func (s *RecordingAlertSink) add(a domain.Alert) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.alerts = append(s.alerts, a)
}

// Alerts returns captured alerts.
func (s *RecordingAlertSink) Alerts() []domain.Alert {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.Alert(nil), s.alerts...)
}

// Count returns the number of captured alerts of the given kind.
func (s *RecordingAlertSink) Count(kind domain.AlertKind) int {
	n := 0
	for _, a := range s.Alerts() {
		if a.Kind == kind {
			n++
		}
	}
	return n
}
