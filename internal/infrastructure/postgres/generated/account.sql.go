package generated

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

const countAccountBalances = `-- name: CountAccountBalances :one
SELECT COUNT(*) FROM account_balances
`

func (q *Queries) CountAccountBalances(ctx context.Context) (int64, error) {
	row := q.db.QueryRow(ctx, countAccountBalances)
	var count int64
	err := row.Scan(&count)
	return count, err
}

const createAccountBalance = `-- name: CreateAccountBalance :one
INSERT INTO account_balances (account_id, balance, version, created_at, updated_at)
VALUES ($1, 0, 0, $2, $2)
ON CONFLICT (account_id) DO UPDATE SET account_id = EXCLUDED.account_id
RETURNING account_id, balance, version, created_at, updated_at
`

type CreateAccountBalanceParams struct {
	AccountID string             `json:"account_id"`
	CreatedAt pgtype.Timestamptz `json:"created_at"`
}

func (q *Queries) CreateAccountBalance(ctx context.Context, arg CreateAccountBalanceParams) (AccountBalance, error) {
	row := q.db.QueryRow(ctx, createAccountBalance, arg.AccountID, arg.CreatedAt)
	var i AccountBalance
	err := row.Scan(
		&i.AccountID,
		&i.Balance,
		&i.Version,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const getAccountBalance = `-- name: GetAccountBalance :one
SELECT account_id, balance, version, created_at, updated_at FROM account_balances WHERE account_id = $1
`

func (q *Queries) GetAccountBalance(ctx context.Context, accountID string) (AccountBalance, error) {
	row := q.db.QueryRow(ctx, getAccountBalance, accountID)
	var i AccountBalance
	err := row.Scan(
		&i.AccountID,
		&i.Balance,
		&i.Version,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const getAccountBalanceForUpdate = `-- name: GetAccountBalanceForUpdate :one
SELECT account_id, balance, version, created_at, updated_at FROM account_balances WHERE account_id = $1 FOR UPDATE
`

func (q *Queries) GetAccountBalanceForUpdate(ctx context.Context, accountID string) (AccountBalance, error) {
	row := q.db.QueryRow(ctx, getAccountBalanceForUpdate, accountID)
	var i AccountBalance
	err := row.Scan(
		&i.AccountID,
		&i.Balance,
		&i.Version,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const listAccountBalances = `-- name: ListAccountBalances :many
SELECT account_id, balance, version, created_at, updated_at FROM account_balances ORDER BY account_id LIMIT $1 OFFSET $2
`

type ListAccountBalancesParams struct {
	Limit  int32 `json:"limit"`
	Offset int32 `json:"offset"`
}

func (q *Queries) ListAccountBalances(ctx context.Context, arg ListAccountBalancesParams) ([]AccountBalance, error) {
	rows, err := q.db.Query(ctx, listAccountBalances, arg.Limit, arg.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []AccountBalance
	for rows.Next() {
		var i AccountBalance
		if err := rows.Scan(
			&i.AccountID,
			&i.Balance,
			&i.Version,
			&i.CreatedAt,
			&i.UpdatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const updateAccountBalance = `-- name: UpdateAccountBalance :execrows
UPDATE account_balances
SET balance = $2, version = $3, updated_at = $4
WHERE account_id = $1 AND version = $3 - 1
`

type UpdateAccountBalanceParams struct {
	AccountID string             `json:"account_id"`
	Balance   pgtype.Numeric     `json:"balance"`
	Version   int64              `json:"version"`
	UpdatedAt pgtype.Timestamptz `json:"updated_at"`
}

func (q *Queries) UpdateAccountBalance(ctx context.Context, arg UpdateAccountBalanceParams) (int64, error) {
	result, err := q.db.Exec(ctx, updateAccountBalance,
		arg.AccountID,
		arg.Balance,
		arg.Version,
		arg.UpdatedAt,
	)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}
