package meta

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/kailas-cloud/paperdigest/internal/db/sqlite"
	"github.com/kailas-cloud/paperdigest/internal/domain"
)

// KeyLastFetch records when the fetch pipeline last completed.
const KeyLastFetch = "last_fetch_time"

// Repo is a string key-value store over the meta table.
type Repo struct {
	q sqlite.Querier
}

// New creates a meta repository.
func New(q sqlite.Querier) *Repo {
	return &Repo{q: q}
}

// Get returns the value stored under key.
func (r *Repo) Get(ctx context.Context, key string) (string, error) {
	var v string
	err := r.q.QueryRowContext(ctx, `SELECT value FROM meta WHERE key = ?`, key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("meta %s: %w", key, domain.ErrNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("get meta %s: %w", key, err)
	}
	return v, nil
}

// Set stores value under key.
func (r *Repo) Set(ctx context.Context, key, value string) error {
	_, err := r.q.ExecContext(ctx,
		`INSERT INTO meta(key, value) VALUES(?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key, value)
	if err != nil {
		return fmt.Errorf("set meta %s: %w", key, err)
	}
	return nil
}

// LastFetch returns the last completed fetch time, or the zero time if none was recorded.
func (r *Repo) LastFetch(ctx context.Context) (time.Time, error) {
	v, err := r.Get(ctx, KeyLastFetch)
	if errors.Is(err, domain.ErrNotFound) {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, err
	}
	return sqlite.ParseTime(v), nil
}

// SetLastFetch records t as the last completed fetch time.
func (r *Repo) SetLastFetch(ctx context.Context, t time.Time) error {
	return r.Set(ctx, KeyLastFetch, sqlite.FormatTime(t))
}
