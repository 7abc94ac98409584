package subscription

import (
	"context"
	"fmt"

	"github.com/kailas-cloud/paperdigest/internal/db/sqlite"
	"github.com/kailas-cloud/paperdigest/internal/domain"
	domsub "github.com/kailas-cloud/paperdigest/internal/domain/subscription"
)

// Repo implements usecase/subscription.Repository over SQLite.
type Repo struct {
	q sqlite.Querier
}

// New creates a subscription repository.
func New(q sqlite.Querier) *Repo {
	return &Repo{q: q}
}

// Add stores a subscription. A duplicate keyword yields ErrAlreadyExists.
func (r *Repo) Add(ctx context.Context, s domsub.Subscription) error {
	_, err := r.q.ExecContext(ctx,
		`INSERT INTO subscriptions(keyword, created_at) VALUES(?, ?)`,
		s.Keyword(), sqlite.FormatTime(s.CreatedAt()))
	if sqlite.IsUniqueViolation(err) {
		return fmt.Errorf("subscription %q: %w", s.Keyword(), domain.ErrAlreadyExists)
	}
	if err != nil {
		return fmt.Errorf("insert subscription: %w", err)
	}
	return nil
}

// Remove deletes a subscription. An unknown keyword yields ErrNotFound.
func (r *Repo) Remove(ctx context.Context, keyword string) error {
	res, err := r.q.ExecContext(ctx, `DELETE FROM subscriptions WHERE keyword = ?`, keyword)
	if err != nil {
		return fmt.Errorf("delete subscription: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("subscription %q: %w", keyword, domain.ErrNotFound)
	}
	return nil
}

// List returns all subscriptions ordered by keyword.
func (r *Repo) List(ctx context.Context) ([]domsub.Subscription, error) {
	rows, err := r.q.QueryContext(ctx, `SELECT keyword, created_at FROM subscriptions ORDER BY keyword`)
	if err != nil {
		return nil, fmt.Errorf("list subscriptions: %w", err)
	}
	defer rows.Close()

	out := make([]domsub.Subscription, 0)
	for rows.Next() {
		var kw, created string
		if err := rows.Scan(&kw, &created); err != nil {
			return nil, fmt.Errorf("scan subscription: %w", err)
		}
		out = append(out, domsub.Reconstruct(kw, sqlite.ParseTime(created)))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate subscriptions: %w", err)
	}
	return out, nil
}
