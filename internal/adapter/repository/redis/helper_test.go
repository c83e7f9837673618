package redis

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	redislib "github.com/redis/go-redis/v9"
)

// startRedis runs an in-process server for the test and returns a client
// bound to it. Both are closed when the test ends.
func startRedis(t *testing.T) (*redislib.Client, *miniredis.Miniredis) {
	t.Helper()

	server := miniredis.RunT(t)
	client := redislib.NewClient(&redislib.Options{
		Addr:       server.Addr(),
		MaxRetries: -1,
	})
	t.Cleanup(func() { _ = client.Close() })

	if err := client.Ping(context.Background()).Err(); err != nil {
		t.Fatalf("ping miniredis: %v", err)
	}

	return client, server
}

// connectRedis is startRedis for tests that never inspect the server.
func connectRedis(t *testing.T) *redislib.Client {
	t.Helper()

	client, _ := startRedis(t)
	return client
}

// requireTTL fails unless key exists and expires within max.
func requireTTL(t *testing.T, server *miniredis.Miniredis, key string, max time.Duration) {
	t.Helper()

	if !server.Exists(key) {
		t.Fatalf("expected key %s in redis, have %v", key, server.Keys())
	}

	if ttl := server.TTL(key); ttl <= 0 || ttl > max {
		t.Fatalf("expected %s to expire within %s, got ttl %s", key, max, ttl)
	}
}
