package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/iho/walletledger/internal/usecase"
)

const ledgerConsistencyKey = "ledger:consistency"

type ledgerTotals struct {
	TotalBalance decimal.Decimal `json:"total_balance"`
	TotalAmount  decimal.Decimal `json:"total_amount"`
}

// CachedLedgerRepository caches ledger-wide totals for a short TTL. Cache
// failures fall through to the wrapped repository.
type CachedLedgerRepository struct {
	inner  usecase.LedgerRepository
	cache  usecase.Cache
	ttl    time.Duration
	logger zerolog.Logger
}

// NewCachedLedgerRepository wraps inner with cache.
func NewCachedLedgerRepository(inner usecase.LedgerRepository, cache usecase.Cache, ttl time.Duration, logger zerolog.Logger) *CachedLedgerRepository {
	return &CachedLedgerRepository{
		inner:  inner,
		cache:  cache,
		ttl:    ttl,
		logger: logger,
	}
}

// CheckConsistency returns cached totals when fresh, otherwise recomputes them.
func (r *CachedLedgerRepository) CheckConsistency(ctx context.Context) (decimal.Decimal, decimal.Decimal, error) {
	cached, err := r.cache.Get(ctx, ledgerConsistencyKey)
	switch {
	case err == nil:
		var totals ledgerTotals
		if err := json.Unmarshal(cached, &totals); err == nil {
			return totals.TotalBalance, totals.TotalAmount, nil
		}
	case !errors.Is(err, ErrCacheMiss):
		r.logger.Warn().Err(err).Msg("ledger cache read failed")
	}

	totalBalance, totalAmount, err := r.inner.CheckConsistency(ctx)
	if err != nil {
		return decimal.Zero, decimal.Zero, err
	}

	data, err := json.Marshal(ledgerTotals{TotalBalance: totalBalance, TotalAmount: totalAmount})
	if err == nil {
		if err := r.cache.Set(ctx, ledgerConsistencyKey, data, r.ttl); err != nil {
			r.logger.Warn().Err(err).Msg("ledger cache write failed")
		}
	}

	return totalBalance, totalAmount, nil
}
