package redis

import "github.com/redis/rueidis"

// NewStoreForTest creates a Store over the provided rueidis client (test-only).
func NewStoreForTest(c rueidis.Client, cfg Config) *Store {
	return newStore(c, cfg)
}
