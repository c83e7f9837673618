package generated

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

const createHistoryEntry = `-- name: CreateHistoryEntry :one
INSERT INTO transaction_history (account_id, kind, amount, balance_before, balance_after, description, reference_id, status, version, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
RETURNING id
`

type CreateHistoryEntryParams struct {
	AccountID     string             `json:"account_id"`
	Kind          string             `json:"kind"`
	Amount        pgtype.Numeric     `json:"amount"`
	BalanceBefore pgtype.Numeric     `json:"balance_before"`
	BalanceAfter  pgtype.Numeric     `json:"balance_after"`
	Description   string             `json:"description"`
	ReferenceID   string             `json:"reference_id"`
	Status        string             `json:"status"`
	Version       int64              `json:"version"`
	CreatedAt     pgtype.Timestamptz `json:"created_at"`
}

func (q *Queries) CreateHistoryEntry(ctx context.Context, arg CreateHistoryEntryParams) (int64, error) {
	row := q.db.QueryRow(ctx, createHistoryEntry,
		arg.AccountID,
		arg.Kind,
		arg.Amount,
		arg.BalanceBefore,
		arg.BalanceAfter,
		arg.Description,
		arg.ReferenceID,
		arg.Status,
		arg.Version,
		arg.CreatedAt,
	)
	var id int64
	err := row.Scan(&id)
	return id, err
}

const getBalanceAtTime = `-- name: GetBalanceAtTime :one
SELECT balance_after FROM transaction_history
WHERE account_id = $1 AND created_at <= $2
ORDER BY created_at DESC, id DESC
LIMIT 1
`

type GetBalanceAtTimeParams struct {
	AccountID string             `json:"account_id"`
	CreatedAt pgtype.Timestamptz `json:"created_at"`
}

func (q *Queries) GetBalanceAtTime(ctx context.Context, arg GetBalanceAtTimeParams) (pgtype.Numeric, error) {
	row := q.db.QueryRow(ctx, getBalanceAtTime, arg.AccountID, arg.CreatedAt)
	var balance_after pgtype.Numeric
	err := row.Scan(&balance_after)
	return balance_after, err
}

const listHistoryByAccount = `-- name: ListHistoryByAccount :many
SELECT id, account_id, kind, amount, balance_before, balance_after, description, reference_id, status, version, created_at FROM transaction_history
WHERE account_id = $1
ORDER BY id DESC
LIMIT $2 OFFSET $3
`

type ListHistoryByAccountParams struct {
	AccountID string `json:"account_id"`
	Limit     int32  `json:"limit"`
	Offset    int32  `json:"offset"`
}

func (q *Queries) ListHistoryByAccount(ctx context.Context, arg ListHistoryByAccountParams) ([]TransactionHistory, error) {
	rows, err := q.db.Query(ctx, listHistoryByAccount, arg.AccountID, arg.Limit, arg.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []TransactionHistory
	for rows.Next() {
		var i TransactionHistory
		if err := rows.Scan(
			&i.ID,
			&i.AccountID,
			&i.Kind,
			&i.Amount,
			&i.BalanceBefore,
			&i.BalanceAfter,
			&i.Description,
			&i.ReferenceID,
			&i.Status,
			&i.Version,
			&i.CreatedAt,
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

const listHistoryByReference = `-- name: ListHistoryByReference :many
SELECT id, account_id, kind, amount, balance_before, balance_after, description, reference_id, status, version, created_at FROM transaction_history
WHERE reference_id = $1
ORDER BY id
`

func (q *Queries) ListHistoryByReference(ctx context.Context, referenceID string) ([]TransactionHistory, error) {
	rows, err := q.db.Query(ctx, listHistoryByReference, referenceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []TransactionHistory
	for rows.Next() {
		var i TransactionHistory
		if err := rows.Scan(
			&i.ID,
			&i.AccountID,
			&i.Kind,
			&i.Amount,
			&i.BalanceBefore,
			&i.BalanceAfter,
			&i.Description,
			&i.ReferenceID,
			&i.Status,
			&i.Version,
			&i.CreatedAt,
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

const listHistoryChain = `-- name: ListHistoryChain :many
SELECT id, account_id, kind, amount, balance_before, balance_after, description, reference_id, status, version, created_at FROM transaction_history
WHERE account_id = $1
ORDER BY version, id
`

func (q *Queries) ListHistoryChain(ctx context.Context, accountID string) ([]TransactionHistory, error) {
	rows, err := q.db.Query(ctx, listHistoryChain, accountID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []TransactionHistory
	for rows.Next() {
		var i TransactionHistory
		if err := rows.Scan(
			&i.ID,
			&i.AccountID,
			&i.Kind,
			&i.Amount,
			&i.BalanceBefore,
			&i.BalanceAfter,
			&i.Description,
			&i.ReferenceID,
			&i.Status,
			&i.Version,
			&i.CreatedAt,
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
