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

var errVersionConflict = errors.New("account version changed concurrently")

// AccountRepository implements usecase.AccountRepository.
type AccountRepository struct {
	queries *generated.Queries
}

// NewAccountRepository creates a new AccountRepository. db is usually a
// *pgxpool.Pool.
func NewAccountRepository(db generated.DBTX) *AccountRepository {
	return &AccountRepository{
		queries: generated.New(db),
	}
}

// Provision creates an account with a zero balance. Provisioning an existing
// account returns it unchanged.
func (r *AccountRepository) Provision(ctx context.Context, id string) (*domain.AccountBalance, error) {
	if err := domain.ValidateAccountID(id); err != nil {
		return nil, err
	}

	row, err := r.queries.CreateAccountBalance(ctx, generated.CreateAccountBalanceParams{
		AccountID: id,
		CreatedAt: timeToPgTimestamptz(time.Now().UTC()),
	})
	if err != nil {
		return nil, fmt.Errorf("provision account %s: %w", id, err)
	}

	return rowToAccount(row), nil
}

// GetByID retrieves the last committed balance of an account.
func (r *AccountRepository) GetByID(ctx context.Context, id string) (*domain.AccountBalance, error) {
	row, err := r.queries.GetAccountBalance(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrAccountNotFound
		}

		return nil, err
	}

	return rowToAccount(row), nil
}

// GetByIDForUpdate retrieves an account with a FOR UPDATE lock held until tx ends.
func (r *AccountRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.AccountBalance, error) {
	queries, err := queriesFor(tx)
	if err != nil {
		return nil, err
	}

	row, err := queries.GetAccountBalanceForUpdate(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrAccountNotFound
		}

		return nil, err
	}

	return rowToAccount(row), nil
}

// UpdateBalance writes the new balance and version of a locked account. The
// stored version must be version-1.
func (r *AccountRepository) UpdateBalance(ctx context.Context, tx usecase.Transaction, id string, balance decimal.Decimal, version int64, updatedAt time.Time) error {
	queries, err := queriesFor(tx)
	if err != nil {
		return err
	}

	affected, err := queries.UpdateAccountBalance(ctx, generated.UpdateAccountBalanceParams{
		AccountID: id,
		Balance:   decimalToNumeric(balance),
		Version:   version,
		UpdatedAt: timeToPgTimestamptz(updatedAt),
	})
	if err != nil {
		return err
	}

	if affected != 1 {
		return fmt.Errorf("%w: %s at version %d", errVersionConflict, id, version)
	}

	return nil
}

// List lists accounts ordered by id.
func (r *AccountRepository) List(ctx context.Context, limit, offset int) ([]*domain.AccountBalance, error) {
	rows, err := r.queries.ListAccountBalances(ctx, generated.ListAccountBalancesParams{
		Limit:  int32(limit),
		Offset: int32(offset),
	})
	if err != nil {
		return nil, err
	}

	accounts := make([]*domain.AccountBalance, 0, len(rows))
	for _, row := range rows {
		accounts = append(accounts, rowToAccount(row))
	}

	return accounts, nil
}

func rowToAccount(row generated.AccountBalance) *domain.AccountBalance {
	return &domain.AccountBalance{
		AccountID: row.AccountID,
		Balance:   numericToDecimal(row.Balance),
		Version:   row.Version,
		CreatedAt: row.CreatedAt.Time,
		UpdatedAt: row.UpdatedAt.Time,
	}
}
