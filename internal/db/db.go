package db

import (
	"context"
	"time"
)

// Store is the key-value facade behind the budget counters and the summary cache.
// The SQLite kv table backs it by default; Redis (rueidis) when the cache is enabled.
type Store interface {
	Pinger
	KVStore
	Close()
	WaitForReady(ctx context.Context, timeout time.Duration) error
}

// Pinger checks database connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// KVStore provides simple key-value operations. Values set with a TTL disappear after it.
type KVStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
	IncrBy(ctx context.Context, key string, val int64) error
	Expire(ctx context.Context, key string, ttl time.Duration, nx bool) error
	Del(ctx context.Context, key string) error
}

// Purger deletes expired keys from stores that do not expire them on their own.
type Purger interface {
	PurgeExpired(ctx context.Context) (int64, error)
}
