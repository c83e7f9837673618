package postgres

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog"
)

func fastRetrier(maxRetries uint64, reasons *[]string) *Retrier {
	return NewRetrier(zerolog.Nop(),
		WithMaxRetries(maxRetries),
		WithBackoff(time.Millisecond, 2*time.Millisecond),
		WithRetryObserver(func(reason string) { *reasons = append(*reasons, reason) }),
	)
}

func TestRetrierReplays(t *testing.T) {
	deadlock := &pgconn.PgError{Code: "40P01"}
	serialization := &pgconn.PgError{Code: "40001"}
	checkViolation := &pgconn.PgError{Code: "23514"}

	tests := []struct {
		name       string
		failures   []error // returned by successive attempts, then nil
		maxRetries uint64
		wantErr    error
		attempts   int
		reasons    []string
	}{
		{
			name:       "succeeds after deadlock",
			failures:   []error{deadlock},
			maxRetries: 2,
			attempts:   2,
			reasons:    []string{"deadlock"},
		},
		{
			name:       "wrapped serialization failure is retried",
			failures:   []error{fmt.Errorf("update balance: %w", serialization), serialization},
			maxRetries: 3,
			attempts:   3,
			reasons:    []string{"serialization_failure", "serialization_failure"},
		},
		{
			name:       "gives up after max retries",
			failures:   []error{serialization, serialization, serialization, serialization},
			maxRetries: 2,
			wantErr:    serialization,
			attempts:   3,
			reasons:    []string{"serialization_failure", "serialization_failure"},
		},
		{
			name:       "constraint violation is permanent",
			failures:   []error{checkViolation},
			maxRetries: 3,
			wantErr:    checkViolation,
			attempts:   1,
		},
		{
			name:       "plain error is permanent",
			failures:   []error{errAccountGone},
			maxRetries: 3,
			wantErr:    errAccountGone,
			attempts:   1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var reasons []string
			r := fastRetrier(tt.maxRetries, &reasons)

			attempts := 0
			err := r.Retry(context.Background(), func() error {
				attempts++
				if attempts <= len(tt.failures) {
					return tt.failures[attempts-1]
				}
				return nil
			})

			if tt.wantErr == nil && err != nil {
				t.Fatalf("expected success, got %v", err)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
			if attempts != tt.attempts {
				t.Fatalf("expected %d attempts, got %d", tt.attempts, attempts)
			}
			if fmt.Sprint(reasons) != fmt.Sprint(tt.reasons) {
				t.Fatalf("expected retry reasons %v, got %v", tt.reasons, reasons)
			}
		})
	}
}

func TestRetrierStopsWhenContextIsDone(t *testing.T) {
	var reasons []string
	r := NewRetrier(zerolog.Nop(),
		WithMaxRetries(100),
		WithBackoff(50*time.Millisecond, 50*time.Millisecond),
		WithRetryObserver(func(reason string) { reasons = append(reasons, reason) }),
	)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	attempts := 0
	err := r.Retry(ctx, func() error {
		attempts++
		return &pgconn.PgError{Code: "55P03"}
	})

	if err == nil {
		t.Fatal("expected an error once the context expired")
	}
	if attempts > 2 {
		t.Fatalf("expected the context to stop replays, got %d attempts", attempts)
	}
}

func TestRetryReason(t *testing.T) {
	tests := map[string]string{
		"40P01": "deadlock",
		"40001": "serialization_failure",
		"55P03": "lock_not_available",
		"23505": "",
	}

	for code, want := range tests {
		if got := retryReason(&pgconn.PgError{Code: code}); got != want {
			t.Errorf("code %s: expected %q, got %q", code, want, got)
		}
	}

	if got := retryReason(errors.New("connection reset")); got != "" {
		t.Errorf("expected non-postgres error to be permanent, got %q", got)
	}
}

var errAccountGone = errors.New("account gone")
