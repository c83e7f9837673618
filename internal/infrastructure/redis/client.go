package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// ClientConfig configures the Redis connection.
type ClientConfig struct {
	URL          string
	PoolSize     int
	ConnectRetry time.Duration
}

// NewClient creates a Redis client and waits up to cfg.ConnectRetry for the
// server to answer PING.
func NewClient(ctx context.Context, cfg ClientConfig, logger zerolog.Logger) (*redis.Client, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}

	if cfg.PoolSize > 0 {
		opts.PoolSize = cfg.PoolSize
	}

	client := redis.NewClient(opts)

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 100 * time.Millisecond
	b.MaxElapsedTime = cfg.ConnectRetry

	ping := func() error {
		err := client.Ping(ctx).Err()
		if err != nil {
			logger.Warn().Err(err).Str("addr", opts.Addr).Msg("redis not ready")
		}
		return err
	}

	var policy backoff.BackOff = backoff.WithContext(b, ctx)
	if cfg.ConnectRetry <= 0 {
		policy = &backoff.StopBackOff{}
	}

	if err := backoff.Retry(ping, policy); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	return client, nil
}
