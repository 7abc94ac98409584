package redis

import (
	"context"
	"time"

	"github.com/redis/rueidis"

	"github.com/kailas-cloud/paperdigest/internal/db"
)

// Get retrieves a value by key, through the client-side cache when enabled.
func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	get := s.client.B().Get().Key(s.key(key))

	var res rueidis.RedisResult
	if s.cacheTTL > 0 {
		res = s.client.DoCache(ctx, get.Cache(), s.cacheTTL)
	} else {
		res = s.client.Do(ctx, get.Build())
	}

	data, err := res.AsBytes()
	if err != nil {
		if rueidis.IsRedisNil(err) {
			return nil, db.ErrKeyNotFound
		}
		return nil, &db.Error{Op: db.OpGet, Err: err}
	}
	return data, nil
}

// Set stores a value at the given key.
func (s *Store) Set(ctx context.Context, key string, value []byte) error {
	cmd := s.client.B().Set().Key(s.key(key)).Value(rueidis.BinaryString(value)).Build()
	return s.exec(ctx, db.OpSet, cmd)
}

// SetWithTTL stores a value that expires after ttl.
func (s *Store) SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	cmd := s.client.B().Set().Key(s.key(key)).Value(rueidis.BinaryString(value)).Ex(ttl).Build()
	return s.exec(ctx, db.OpSet, cmd)
}

// IncrBy atomically increments a counter.
func (s *Store) IncrBy(ctx context.Context, key string, val int64) error {
	return s.exec(ctx, db.OpIncrBy, s.client.B().Incrby().Key(s.key(key)).Increment(val).Build())
}

// Expire sets a TTL on a key. With nx the TTL is only set when the key has none yet (EXPIRE NX).
func (s *Store) Expire(ctx context.Context, key string, ttl time.Duration, nx bool) error {
	expire := s.client.B().Expire().Key(s.key(key)).Seconds(int64(ttl.Seconds()))
	if nx {
		return s.exec(ctx, db.OpExpire, expire.Nx().Build())
	}
	return s.exec(ctx, db.OpExpire, expire.Build())
}

// Del removes a key. Missing keys are not an error.
func (s *Store) Del(ctx context.Context, key string) error {
	return s.exec(ctx, db.OpDel, s.client.B().Del().Key(s.key(key)).Build())
}

func (s *Store) exec(ctx context.Context, op string, cmd rueidis.Completed) error {
	if err := s.client.Do(ctx, cmd).Error(); err != nil {
		return &db.Error{Op: op, Err: err}
	}
	return nil
}
