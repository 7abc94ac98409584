package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"time"

	"github.com/kailas-cloud/paperdigest/internal/db"
)

// Get retrieves a live value by key.
func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	var data []byte
	err := s.conn.QueryRowContext(ctx,
		`SELECT value FROM kv WHERE key = ? AND (expires_at IS NULL OR expires_at > ?)`,
		key, s.now().UnixMilli(),
	).Scan(&data)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, db.ErrKeyNotFound
		}
		return nil, &db.Error{Op: db.OpGet, Err: err}
	}
	return data, nil
}

// Set stores a value without expiry.
func (s *Store) Set(ctx context.Context, key string, value []byte) error {
	_, err := s.conn.ExecContext(ctx,
		`INSERT INTO kv(key, value, expires_at) VALUES(?, ?, NULL)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, expires_at = NULL`,
		key, value,
	)
	if err != nil {
		return &db.Error{Op: db.OpSet, Err: err}
	}
	return nil
}

// SetWithTTL stores a value that expires after ttl.
func (s *Store) SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	_, err := s.conn.ExecContext(ctx,
		`INSERT INTO kv(key, value, expires_at) VALUES(?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, expires_at = excluded.expires_at`,
		key, value, s.now().Add(ttl).UnixMilli(),
	)
	if err != nil {
		return &db.Error{Op: db.OpSet, Err: err}
	}
	return nil
}

// IncrBy adds val to the integer stored at key. An expired key restarts from zero.
func (s *Store) IncrBy(ctx context.Context, key string, val int64) error {
	now := s.now().UnixMilli()
	_, err := s.conn.ExecContext(ctx,
		`INSERT INTO kv(key, value, expires_at) VALUES(?, ?, NULL)
		 ON CONFLICT(key) DO UPDATE SET
		   value = CASE
		     WHEN kv.expires_at IS NOT NULL AND kv.expires_at <= ? THEN excluded.value
		     ELSE CAST(CAST(kv.value AS INTEGER) + CAST(excluded.value AS INTEGER) AS TEXT)
		   END,
		   expires_at = CASE
		     WHEN kv.expires_at IS NOT NULL AND kv.expires_at <= ? THEN NULL
		     ELSE kv.expires_at
		   END`,
		key, strconv.FormatInt(val, 10), now, now,
	)
	if err != nil {
		return &db.Error{Op: db.OpIncrBy, Err: err}
	}
	return nil
}

// Expire sets a TTL on key. With nx it only applies when the key has no expiry yet.
func (s *Store) Expire(ctx context.Context, key string, ttl time.Duration, nx bool) error {
	q := `UPDATE kv SET expires_at = ? WHERE key = ?`
	if nx {
		q += ` AND expires_at IS NULL`
	}
	if _, err := s.conn.ExecContext(ctx, q, s.now().Add(ttl).UnixMilli(), key); err != nil {
		return &db.Error{Op: db.OpExpire, Err: err}
	}
	return nil
}

// Del removes a key.
func (s *Store) Del(ctx context.Context, key string) error {
	if _, err := s.conn.ExecContext(ctx, `DELETE FROM kv WHERE key = ?`, key); err != nil {
		return &db.Error{Op: db.OpDel, Err: err}
	}
	return nil
}

// PurgeExpired deletes expired rows and returns how many were removed.
func (s *Store) PurgeExpired(ctx context.Context) (int64, error) {
	res, err := s.conn.ExecContext(ctx,
		`DELETE FROM kv WHERE expires_at IS NOT NULL AND expires_at <= ?`, s.now().UnixMilli())
	if err != nil {
		return 0, &db.Error{Op: db.OpDel, Err: err}
	}
	n, _ := res.RowsAffected()
	return n, nil
}
