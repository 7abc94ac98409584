package digest

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"

	"github.com/kailas-cloud/paperdigest/internal/db/sqlite"
	"github.com/kailas-cloud/paperdigest/internal/domain"
	domdigest "github.com/kailas-cloud/paperdigest/internal/domain/digest"
)

const columns = `id, target, schedule, send_hour, keywords, enabled, last_sent`

// Repo implements usecase/digest.Repository over SQLite.
type Repo struct {
	q sqlite.Querier
}

// New creates a digest config repository.
func New(q sqlite.Querier) *Repo {
	return &Repo{q: q}
}

// Create stores a digest config.
func (r *Repo) Create(ctx context.Context, c domdigest.Config) error {
	kws, err := json.Marshal(c.Keywords())
	if err != nil {
		return fmt.Errorf("marshal keywords: %w", err)
	}
	_, err = r.q.ExecContext(ctx,
		`INSERT INTO digest_configs(`+columns+`) VALUES(?, ?, ?, ?, ?, ?, ?)`,
		c.ID(), c.Target(), string(c.Schedule()), c.SendHour(), string(kws),
		boolToInt(c.Enabled()), sqlite.FormatTime(c.LastSent()))
	if sqlite.IsUniqueViolation(err) {
		return fmt.Errorf("digest %s: %w", c.ID(), domain.ErrAlreadyExists)
	}
	if err != nil {
		return fmt.Errorf("insert digest: %w", err)
	}
	return nil
}

// Get returns one digest config.
func (r *Repo) Get(ctx context.Context, id string) (domdigest.Config, error) {
	c, err := scan(r.q.QueryRowContext(ctx, `SELECT `+columns+` FROM digest_configs WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return domdigest.Config{}, fmt.Errorf("digest %s: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return domdigest.Config{}, fmt.Errorf("get digest %s: %w", id, err)
	}
	return c, nil
}

// List returns all digest configs.
func (r *Repo) List(ctx context.Context) ([]domdigest.Config, error) {
	return r.list(ctx, `SELECT `+columns+` FROM digest_configs ORDER BY target, id`)
}

// ListEnabled returns the configs the scheduler should consider.
func (r *Repo) ListEnabled(ctx context.Context) ([]domdigest.Config, error) {
	return r.list(ctx, `SELECT `+columns+` FROM digest_configs WHERE enabled = 1 ORDER BY target, id`)
}

// Delete removes a digest config.
func (r *Repo) Delete(ctx context.Context, id string) error {
	res, err := r.q.ExecContext(ctx, `DELETE FROM digest_configs WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete digest %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("digest %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

// MarkSent records a successful send.
func (r *Repo) MarkSent(ctx context.Context, id string, at time.Time) error {
	res, err := r.q.ExecContext(ctx,
		`UPDATE digest_configs SET last_sent = ? WHERE id = ?`, sqlite.FormatTime(at), id)
	if err != nil {
		return fmt.Errorf("mark digest %s sent: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("digest %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

func (r *Repo) list(ctx context.Context, query string) ([]domdigest.Config, error) {
	rows, err := r.q.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list digests: %w", err)
	}
	defer rows.Close()

	out := make([]domdigest.Config, 0)
	for rows.Next() {
		c, err := scan(rows)
		if err != nil {
			return nil, fmt.Errorf("scan digest: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate digests: %w", err)
	}
	return out, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scan(s scanner) (domdigest.Config, error) {
	var (
		id, target, schedule, kws, lastSent string
		sendHour, enabled                   int
	)
	if err := s.Scan(&id, &target, &schedule, &sendHour, &kws, &enabled, &lastSent); err != nil {
		return domdigest.Config{}, err //nolint:wrapcheck // callers check sql.ErrNoRows
	}
	var keywords []string
	if err := json.Unmarshal([]byte(kws), &keywords); err != nil {
		return domdigest.Config{}, fmt.Errorf("digest %s keywords: %w", id, err)
	}
	return domdigest.Reconstruct(id, target, domdigest.Schedule(schedule), sendHour,
		keywords, enabled != 0, sqlite.ParseTime(lastSent)), nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
