package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/iho/walletledger/internal/domain"
	"github.com/iho/walletledger/internal/infrastructure/postgres/generated"
	"github.com/iho/walletledger/internal/usecase"
)

// HistoryRepository implements usecase.HistoryRepository.
type HistoryRepository struct {
	queries *generated.Queries
}

// NewHistoryRepository creates a new HistoryRepository.
func NewHistoryRepository(db generated.DBTX) *HistoryRepository {
	return &HistoryRepository{
		queries: generated.New(db),
	}
}

// Create appends a history entry inside tx and sets its id.
func (r *HistoryRepository) Create(ctx context.Context, tx usecase.Transaction, entry *domain.TransactionHistoryEntry) error {
	queries, err := queriesFor(tx)
	if err != nil {
		return err
	}

	id, err := queries.CreateHistoryEntry(ctx, generated.CreateHistoryEntryParams{
		AccountID:     entry.AccountID,
		Kind:          string(entry.Kind),
		Amount:        decimalToNumeric(entry.Amount),
		BalanceBefore: decimalToNumeric(entry.BalanceBefore),
		BalanceAfter:  decimalToNumeric(entry.BalanceAfter),
		Description:   entry.Description,
		ReferenceID:   entry.ReferenceID,
		Status:        string(entry.Status),
		Version:       entry.Version,
		CreatedAt:     timeToPgTimestamptz(entry.CreatedAt),
	})
	if err != nil {
		return err
	}

	entry.ID = id

	return nil
}

// ListByAccount returns entries of an account, newest first.
func (r *HistoryRepository) ListByAccount(ctx context.Context, accountID string, limit, offset int) ([]*domain.TransactionHistoryEntry, error) {
	rows, err := r.queries.ListHistoryByAccount(ctx, generated.ListHistoryByAccountParams{
		AccountID: accountID,
		Limit:     int32(limit),
		Offset:    int32(offset),
	})
	if err != nil {
		return nil, err
	}

	return rowsToEntries(rows), nil
}

// ListChain returns every entry of an account in version order.
func (r *HistoryRepository) ListChain(ctx context.Context, accountID string) ([]*domain.TransactionHistoryEntry, error) {
	rows, err := r.queries.ListHistoryChain(ctx, accountID)
	if err != nil {
		return nil, err
	}

	return rowsToEntries(rows), nil
}

// ListByReference returns every entry carrying referenceID.
func (r *HistoryRepository) ListByReference(ctx context.Context, referenceID string) ([]*domain.TransactionHistoryEntry, error) {
	rows, err := r.queries.ListHistoryByReference(ctx, referenceID)
	if err != nil {
		return nil, err
	}

	return rowsToEntries(rows), nil
}

// GetBalanceAtTime returns the balance after the last entry created at or
// before at, or zero when there is none.
func (r *HistoryRepository) GetBalanceAtTime(ctx context.Context, accountID string, at time.Time) (decimal.Decimal, error) {
	balance, err := r.queries.GetBalanceAtTime(ctx, generated.GetBalanceAtTimeParams{
		AccountID: accountID,
		CreatedAt: timeToPgTimestamptz(at),
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return decimal.Zero, nil
		}

		return decimal.Zero, fmt.Errorf("balance of %s at %s: %w", accountID, at.Format(time.RFC3339), err)
	}

	return toDecimal(balance)
}

func rowsToEntries(rows []generated.TransactionHistory) []*domain.TransactionHistoryEntry {
	entries := make([]*domain.TransactionHistoryEntry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, rowToEntry(row))
	}

	return entries
}

func rowToEntry(row generated.TransactionHistory) *domain.TransactionHistoryEntry {
	return &domain.TransactionHistoryEntry{
		ID:            row.ID,
		AccountID:     row.AccountID,
		Kind:          domain.TransactionKind(row.Kind),
		Amount:        numericToDecimal(row.Amount),
		BalanceBefore: numericToDecimal(row.BalanceBefore),
		BalanceAfter:  numericToDecimal(row.BalanceAfter),
		Description:   row.Description,
		ReferenceID:   row.ReferenceID,
		Status:        domain.TransactionStatus(row.Status),
		Version:       row.Version,
		CreatedAt:     row.CreatedAt.Time,
	}
}
