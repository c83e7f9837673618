package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/iho/walletledger/internal/domain"
)

const detectTimeout = 500 * time.Millisecond

// Detection rules
const (
	ruleAmount   = "amount"
	ruleVelocity = "velocity"
)

// AnomalyConfig configures suspicious activity detection.
type AnomalyConfig struct {
	SuspiciousAmount decimal.Decimal
	VelocityLimit    int64
	VelocityWindow   time.Duration
}

// DefaultAnomalyConfig returns the default detection thresholds.
func DefaultAnomalyConfig() AnomalyConfig {
	return AnomalyConfig{
		SuspiciousAmount: decimal.RequireFromString(DefaultSuspiciousAmount),
		VelocityLimit:    DefaultVelocityLimit,
		VelocityWindow:   DefaultVelocityWindow,
	}
}

// AnomalyDetector flags committed mutations that look suspicious. It never
// returns errors to the caller; failures are logged.
type AnomalyDetector struct {
	alerts  AlertSink
	counter VelocityCounter
	metrics MetricsRecorder
	logger  zerolog.Logger
	cfg     AnomalyConfig
}

// NewAnomalyDetector creates a new AnomalyDetector. counter may be nil, in
// which case only the amount threshold is checked.
func NewAnomalyDetector(alerts AlertSink, counter VelocityCounter, metrics MetricsRecorder, logger zerolog.Logger, cfg AnomalyConfig) *AnomalyDetector {
	if metrics == nil {
		metrics = noopMetrics{}
	}

	return &AnomalyDetector{
		alerts:  alerts,
		counter: counter,
		metrics: metrics,
		logger:  logger,
		cfg:     cfg,
	}
}

// Inspect checks a committed mutation and raises suspicious activity alerts.
func (d *AnomalyDetector) Inspect(ctx context.Context, accountID, actorID string, amount decimal.Decimal, kind domain.TransactionKind) {
	if d.cfg.SuspiciousAmount.IsPositive() && amount.GreaterThan(d.cfg.SuspiciousAmount) {
		d.raise(ctx, ruleAmount, accountID, actorID, amount, kind, fmt.Sprintf("amount %s exceeds threshold %s", amount.StringFixed(2), d.cfg.SuspiciousAmount.StringFixed(2)))
	}

	if d.counter == nil || d.cfg.VelocityLimit <= 0 {
		return
	}

	ctx, cancel := context.WithTimeout(ctx, detectTimeout)
	defer cancel()

	count, err := d.counter.Increment(ctx, velocityKey(accountID), d.cfg.VelocityWindow)
	if err != nil {
		d.logger.Warn().Err(err).Str("account_id", accountID).Msg("velocity check failed")
		return
	}

	if count > d.cfg.VelocityLimit {
		d.raise(ctx, ruleVelocity, accountID, actorID, amount, kind, fmt.Sprintf("%d mutations within %s", count, d.cfg.VelocityWindow))
	}
}

func (d *AnomalyDetector) raise(ctx context.Context, rule, accountID, actorID string, amount decimal.Decimal, kind domain.TransactionKind, reason string) {
	d.metrics.RecordSuspiciousActivity(rule)
	d.logger.Warn().
		Str("account_id", accountID).
		Str("actor_id", actorID).
		Str("amount", amount.StringFixed(2)).
		Str("kind", string(kind)).
		Str("rule", rule).
		Str("reason", reason).
		Msg("suspicious activity detected")
	d.alerts.RaiseSuspiciousActivity(ctx, accountID, actorID, amount, kind, reason)
}

func velocityKey(accountID string) string {
	return "velocity:" + accountID
}
