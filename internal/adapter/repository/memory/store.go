// Package memory provides an in-process ledger store. Accounts are locked
// with one weighted semaphore each, so lock waits honour context deadlines,
// and writes are staged on the transaction until commit.
package memory

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/semaphore"

	"github.com/iho/walletledger/internal/domain"
	"github.com/iho/walletledger/internal/usecase"
)

var (
	errTxClosed  = errors.New("transaction already closed")
	errNotLocked = errors.New("account not locked by transaction")
)

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the clock used for seeded rows.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithCommitHook installs a hook that runs before a commit is applied. A
// non-nil error aborts the commit and leaves the store untouched.
func WithCommitHook(hook func(tx *Tx) error) Option {
	return func(s *Store) { s.commitHook = hook }
}

// Store implements usecase.TransactionManager, usecase.AccountRepository,
// usecase.HistoryRepository and usecase.LedgerRepository.
type Store struct {
	mu       sync.RWMutex
	accounts map[string]*domain.AccountBalance
	history  []*domain.TransactionHistoryEntry

	locksMu sync.Mutex
	locks   map[string]*semaphore.Weighted

	nextID     atomic.Int64
	now        func() time.Time
	commitHook func(tx *Tx) error
}

// NewStore creates an empty Store.
func NewStore(opts ...Option) *Store {
	s := &Store{
		accounts: make(map[string]*domain.AccountBalance),
		locks:    make(map[string]*semaphore.Weighted),
		now:      func() time.Time { return time.Now().UTC() },
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Seed provisions an account. A positive opening balance is recorded as a
// DEPOSIT history entry so the history chain starts at zero.
func (s *Store) Seed(id string, balance decimal.Decimal) {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	account := &domain.AccountBalance{
		AccountID: id,
		Balance:   decimal.Zero,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.accounts[id] = account

	if !balance.IsPositive() {
		return
	}

	account.Balance = balance
	account.Version = 1

	s.history = append(s.history, &domain.TransactionHistoryEntry{
		ID:            s.nextID.Add(1),
		AccountID:     id,
		Kind:          domain.KindDeposit,
		Amount:        balance,
		BalanceBefore: decimal.Zero,
		BalanceAfter:  balance,
		Description:   "opening balance",
		Status:        domain.TransactionStatusCompleted,
		Version:       1,
		CreatedAt:     now,
	})
}

// Begin starts a new transaction.
func (s *Store) Begin(ctx context.Context) (usecase.Transaction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return &Tx{
		store:  s,
		held:   make(map[string]*semaphore.Weighted),
		staged: make(map[string]*domain.AccountBalance),
	}, nil
}

// GetByID returns the last committed snapshot of an account.
func (s *Store) GetByID(ctx context.Context, id string) (*domain.AccountBalance, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	account, ok := s.accounts[id]
	if !ok {
		return nil, domain.ErrAccountNotFound
	}

	cp := *account

	return &cp, nil
}

// GetByIDForUpdate locks the account for tx and returns its state as seen
// by tx. Locking is reentrant within one transaction.
func (s *Store) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.AccountBalance, error) {
	t, err := s.txOf(tx)
	if err != nil {
		return nil, err
	}

	if _, err := s.GetByID(ctx, id); err != nil {
		return nil, err
	}

	if err := t.lock(ctx, id); err != nil {
		return nil, err
	}

	t.mu.Lock()
	staged, ok := t.staged[id]
	t.mu.Unlock()

	if ok {
		cp := *staged
		return &cp, nil
	}

	return s.GetByID(ctx, id)
}

// UpdateBalance stages a new balance for an account locked by tx.
func (s *Store) UpdateBalance(ctx context.Context, tx usecase.Transaction, id string, balance decimal.Decimal, version int64, updatedAt time.Time) error {
	t, err := s.txOf(tx)
	if err != nil {
		return err
	}

	current, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if t.done {
		return errTxClosed
	}

	if _, ok := t.held[id]; !ok {
		return fmt.Errorf("%w: %s", errNotLocked, id)
	}

	current.Balance = balance
	current.Version = version
	current.UpdatedAt = updatedAt
	t.staged[id] = current

	return nil
}

// List lists committed accounts ordered by id.
func (s *Store) List(ctx context.Context, limit, offset int) ([]*domain.AccountBalance, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.accounts))
	for id := range s.accounts {
		ids = append(ids, id)
	}

	slices.Sort(ids)

	accounts := make([]*domain.AccountBalance, 0, limit)
	for i := offset; i < len(ids) && len(accounts) < limit; i++ {
		cp := *s.accounts[ids[i]]
		accounts = append(accounts, &cp)
	}

	return accounts, nil
}

// Create stages a history entry on tx and assigns its id.
func (s *Store) Create(ctx context.Context, tx usecase.Transaction, entry *domain.TransactionHistoryEntry) error {
	t, err := s.txOf(tx)
	if err != nil {
		return err
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if t.done {
		return errTxClosed
	}

	if _, ok := t.held[entry.AccountID]; !ok {
		return fmt.Errorf("%w: %s", errNotLocked, entry.AccountID)
	}

	entry.ID = s.nextID.Add(1)
	cp := *entry
	t.entries = append(t.entries, &cp)

	return nil
}

// ListByAccount returns committed entries of an account, newest first.
func (s *Store) ListByAccount(ctx context.Context, accountID string, limit, offset int) ([]*domain.TransactionHistoryEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries := make([]*domain.TransactionHistoryEntry, 0, limit)
	skipped := 0

	for i := len(s.history) - 1; i >= 0 && len(entries) < limit; i-- {
		e := s.history[i]
		if e.AccountID != accountID {
			continue
		}

		if skipped < offset {
			skipped++
			continue
		}

		cp := *e
		entries = append(entries, &cp)
	}

	return entries, nil
}

// ListChain returns every committed entry of an account, oldest first.
func (s *Store) ListChain(ctx context.Context, accountID string) ([]*domain.TransactionHistoryEntry, error) {
	return s.filter(func(e *domain.TransactionHistoryEntry) bool { return e.AccountID == accountID }), nil
}

// ListByReference returns committed entries carrying referenceID, oldest first.
func (s *Store) ListByReference(ctx context.Context, referenceID string) ([]*domain.TransactionHistoryEntry, error) {
	return s.filter(func(e *domain.TransactionHistoryEntry) bool { return e.ReferenceID == referenceID }), nil
}

// GetBalanceAtTime returns the balance after the last entry created at or before at.
func (s *Store) GetBalanceAtTime(ctx context.Context, accountID string, at time.Time) (decimal.Decimal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for i := len(s.history) - 1; i >= 0; i-- {
		e := s.history[i]
		if e.AccountID == accountID && !e.CreatedAt.After(at) {
			return e.BalanceAfter, nil
		}
	}

	return decimal.Zero, nil
}

// CheckConsistency returns the sum of balances and the sum of history amounts.
func (s *Store) CheckConsistency(ctx context.Context) (decimal.Decimal, decimal.Decimal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	totalBalance := decimal.Zero
	for _, a := range s.accounts {
		totalBalance = totalBalance.Add(a.Balance)
	}

	totalAmount := decimal.Zero
	for _, e := range s.history {
		totalAmount = totalAmount.Add(e.Amount)
	}

	return totalBalance, totalAmount, nil
}

func (s *Store) filter(match func(*domain.TransactionHistoryEntry) bool) []*domain.TransactionHistoryEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var entries []*domain.TransactionHistoryEntry
	for _, e := range s.history {
		if match(e) {
			cp := *e
			entries = append(entries, &cp)
		}
	}

	return entries
}

func (s *Store) lockFor(id string) *semaphore.Weighted {
	s.locksMu.Lock()
	defer s.locksMu.Unlock()

	sem, ok := s.locks[id]
	if !ok {
		sem = semaphore.NewWeighted(1)
		s.locks[id] = sem
	}

	return sem
}

func (s *Store) txOf(tx usecase.Transaction) (*Tx, error) {
	t, ok := tx.(*Tx)
	if !ok || t.store != s {
		return nil, fmt.Errorf("memory: foreign transaction %T", tx)
	}

	return t, nil
}

// apply publishes staged writes of t.
func (s *Store) apply(t *Tx) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, staged := range t.staged {
		s.accounts[id] = staged
	}

	s.history = append(s.history, t.entries...)
}

// Tx is a memory store transaction.
type Tx struct {
	store *Store

	mu      sync.Mutex
	held    map[string]*semaphore.Weighted
	staged  map[string]*domain.AccountBalance
	entries []*domain.TransactionHistoryEntry
	done    bool
}

// Commit publishes staged writes and releases every lock held by the transaction.
func (t *Tx) Commit(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.done {
		return errTxClosed
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	if hook := t.store.commitHook; hook != nil {
		if err := hook(t); err != nil {
			return err
		}
	}

	t.store.apply(t)
	t.release()

	return nil
}

// Rollback discards staged writes and releases locks. It is a no-op after Commit.
func (t *Tx) Rollback(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.done {
		return nil
	}

	t.release()

	return nil
}

// Locked reports the ids locked by the transaction.
func (t *Tx) Locked() []string {
	t.mu.Lock()
	defer t.mu.Unlock()

	ids := make([]string, 0, len(t.held))
	for id := range t.held {
		ids = append(ids, id)
	}

	slices.Sort(ids)

	return ids
}

func (t *Tx) lock(ctx context.Context, id string) error {
	t.mu.Lock()
	if t.done {
		t.mu.Unlock()
		return errTxClosed
	}

	if _, ok := t.held[id]; ok {
		t.mu.Unlock()
		return nil
	}
	t.mu.Unlock()

	sem := t.store.lockFor(id)
	if err := sem.Acquire(ctx, 1); err != nil {
		return fmt.Errorf("lock account %s: %w", id, err)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if t.done {
		sem.Release(1)
		return errTxClosed
	}

	t.held[id] = sem

	return nil
}

// release must be called with t.mu held.
func (t *Tx) release() {
	for id, sem := range t.held {
		sem.Release(1)
		delete(t.held, id)
	}

	t.staged = nil
	t.entries = nil
	t.done = true
}
