package generated

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

const checkLedgerConsistency = `-- name: CheckLedgerConsistency :one
SELECT
    (SELECT COALESCE(SUM(balance), 0) FROM account_balances)::NUMERIC AS total_balance,
    (SELECT COALESCE(SUM(amount), 0) FROM transaction_history)::NUMERIC AS total_amount
`

type CheckLedgerConsistencyRow struct {
	TotalBalance pgtype.Numeric `json:"total_balance"`
	TotalAmount  pgtype.Numeric `json:"total_amount"`
}

func (q *Queries) CheckLedgerConsistency(ctx context.Context) (CheckLedgerConsistencyRow, error) {
	row := q.db.QueryRow(ctx, checkLedgerConsistency)
	var i CheckLedgerConsistencyRow
	err := row.Scan(&i.TotalBalance, &i.TotalAmount)
	return i, err
}
