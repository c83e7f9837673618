package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog"
)

// retryableStates maps the SQLSTATEs after which a whole unit of work can be
// replayed to the reason reported for them.
var retryableStates = map[string]string{
	"40P01": "deadlock",
	"40001": "serialization_failure",
	"55P03": "lock_not_available",
}

// Retrier implements usecase.Retrier. Operations failing with a retryable
// SQLSTATE are replayed with exponential backoff; anything else is returned
// on the first attempt.
type Retrier struct {
	maxRetries      uint64
	initialInterval time.Duration
	maxInterval     time.Duration
	observe         func(reason string)
	logger          zerolog.Logger
}

// RetrierOption configures a Retrier.
type RetrierOption func(*Retrier)

// WithMaxRetries caps the replays after the first attempt.
func WithMaxRetries(n uint64) RetrierOption {
	return func(r *Retrier) { r.maxRetries = n }
}

// WithBackoff sets the first and the largest wait between attempts.
func WithBackoff(initial, max time.Duration) RetrierOption {
	return func(r *Retrier) {
		r.initialInterval = initial
		r.maxInterval = max
	}
}

// WithRetryObserver is called with the reason of every replay.
func WithRetryObserver(fn func(reason string)) RetrierOption {
	return func(r *Retrier) { r.observe = fn }
}

// NewRetrier creates a Retrier allowing three replays 50ms to 1s apart.
func NewRetrier(logger zerolog.Logger, opts ...RetrierOption) *Retrier {
	r := &Retrier{
		maxRetries:      3,
		initialInterval: 50 * time.Millisecond,
		maxInterval:     time.Second,
		observe:         func(string) {},
		logger:          logger,
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Retry runs operation until it succeeds, fails permanently, runs out of
// replays or ctx is done.
func (r *Retrier) Retry(ctx context.Context, operation func() error) error {
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = r.initialInterval
	policy.MaxInterval = r.maxInterval
	policy.MaxElapsedTime = 0 // bounded by maxRetries and ctx

	attempt := func() error {
		err := operation()
		if err != nil && retryReason(err) == "" {
			return backoff.Permanent(err)
		}
		return err
	}

	notify := func(err error, wait time.Duration) {
		reason := retryReason(err)
		r.observe(reason)
		r.logger.Warn().
			Err(err).
			Str("reason", reason).
			Dur("backoff", wait).
			Msg("retrying storage operation")
	}

	b := backoff.WithContext(backoff.WithMaxRetries(policy, r.maxRetries), ctx)

	return backoff.RetryNotify(attempt, b, notify)
}

// retryReason names the retryable condition behind err, or returns "".
func retryReason(err error) string {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return ""
	}

	return retryableStates[pgErr.Code]
}
