package usecase

import "time"

const (
	// DefaultMutationTimeout bounds lock wait and commit of a single mutation.
	DefaultMutationTimeout = 30 * time.Second

	// DefaultReadTimeout bounds plain balance reads.
	DefaultReadTimeout = 10 * time.Second

	// DefaultTransferLimit is the maximum amount of a single transfer.
	DefaultTransferLimit = "1000000"

	// DefaultSuspiciousAmount is the single-mutation amount above which a suspicious activity alert is raised.
	DefaultSuspiciousAmount = "10000000"

	// DefaultVelocityLimit is the number of mutations per window above which an account is flagged.
	DefaultVelocityLimit = 20

	// DefaultVelocityWindow is the velocity counting window.
	DefaultVelocityWindow = time.Minute

	// IdempotencyKeyTTL is how long idempotency keys are cached
	IdempotencyKeyTTL = 24 * time.Hour
)

// Mutation outcomes recorded in metrics.
const (
	OutcomeSuccess      = "success"
	OutcomeInsufficient = "insufficient_balance"
	OutcomeNotFound     = "not_found"
	OutcomeInvalid      = "invalid"
	OutcomeError        = "error"
)
