package redis

import (
	"context"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// VelocityCounter implements usecase.VelocityCounter with fixed windows:
// one INCR counter per key and window, expiring with the window.
type VelocityCounter struct {
	client *redis.Client
	prefix string
	now    func() time.Time
}

// NewVelocityCounter creates a new VelocityCounter.
func NewVelocityCounter(client *redis.Client) *VelocityCounter {
	return &VelocityCounter{
		client: client,
		prefix: "ratelimit:",
		now:    time.Now,
	}
}

// Increment adds one to key in the current window and returns the new count.
func (v *VelocityCounter) Increment(ctx context.Context, key string, window time.Duration) (int64, error) {
	if window <= 0 {
		window = time.Minute
	}

	bucket := v.now().UnixNano() / int64(window)
	fullKey := v.prefix + key + ":" + strconv.FormatInt(bucket, 10)

	var incr *redis.IntCmd
	_, err := v.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, fullKey)
		pipe.Expire(ctx, fullKey, window)
		return nil
	})
	if err != nil {
		return 0, err
	}

	return incr.Val(), nil
}
