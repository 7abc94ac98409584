package paper

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/kailas-cloud/paperdigest/internal/db/sqlite"
	"github.com/kailas-cloud/paperdigest/internal/domain"
	dompaper "github.com/kailas-cloud/paperdigest/internal/domain/paper"
)

var orderBy = map[string]string{
	dompaper.SortDate:  "published_at DESC, id ASC",
	dompaper.SortVotes: "score DESC, published_at DESC, id ASC",
	dompaper.SortTitle: "title COLLATE NOCASE ASC, id ASC",
}

// Repo implements the paper stores of the fetch, paper and similar use cases.
type Repo struct {
	q   sqlite.Querier
	now func() time.Time
}

// New creates a paper repository.
func New(q sqlite.Querier) *Repo {
	return &Repo{q: q, now: time.Now}
}

// Save inserts papers that are not stored yet and returns how many were new.
// Existing rows are left untouched so votes and summaries survive refetches.
func (r *Repo) Save(ctx context.Context, papers ...dompaper.Paper) (int, error) {
	inserted := 0
	fetchedAt := sqlite.FormatTime(r.now())
	for _, p := range papers {
		rw, err := toRow(p)
		if err != nil {
			return inserted, err
		}
		if rw.FetchedAt == "" {
			rw.FetchedAt = fetchedAt
		}
		res, err := r.q.ExecContext(ctx, `INSERT INTO papers (`+columns+`)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(id) DO NOTHING`,
			rw.ID, rw.Title, rw.Abstract, rw.Authors, rw.Categories, rw.PrimaryCategory,
			rw.URL, rw.PDFURL, rw.PublishedAt, rw.UpdatedAt, rw.FetchedAt,
			rw.Summary, rw.MatchedKeywords, rw.Score,
		)
		if err != nil {
			return inserted, fmt.Errorf("insert paper %s: %w", p.ID(), err)
		}
		if n, _ := res.RowsAffected(); n > 0 {
			inserted++
		}
	}
	return inserted, nil
}

// Exists reports whether a paper is stored.
func (r *Repo) Exists(ctx context.Context, id string) (bool, error) {
	var one int
	err := r.q.QueryRowContext(ctx, `SELECT 1 FROM papers WHERE id = ?`, id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("exists paper %s: %w", id, err)
	}
	return true, nil
}

// Get returns one paper.
func (r *Repo) Get(ctx context.Context, id string) (dompaper.Paper, error) {
	rw, err := scanRow(r.q.QueryRowContext(ctx, `SELECT `+columns+` FROM papers WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return dompaper.Paper{}, fmt.Errorf("get %s: %w", id, domain.ErrPaperNotFound)
	}
	if err != nil {
		return dompaper.Paper{}, fmt.Errorf("get paper %s: %w", id, err)
	}
	return toDomain(rw)
}

// GetMany returns the stored papers among ids, in the order of ids. Unknown ids are skipped.
func (r *Repo) GetMany(ctx context.Context, ids []string) ([]dompaper.Paper, error) {
	if len(ids) == 0 {
		return []dompaper.Paper{}, nil
	}
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	rows, err := r.q.QueryContext(ctx,
		`SELECT `+columns+` FROM papers WHERE id IN (`+placeholders(len(ids))+`)`, args...)
	if err != nil {
		return nil, fmt.Errorf("get papers: %w", err)
	}
	found, err := scanAll(rows)
	if err != nil {
		return nil, err
	}

	byID := make(map[string]dompaper.Paper, len(found))
	for _, p := range found {
		byID[p.ID()] = p
	}
	out := make([]dompaper.Paper, 0, len(found))
	for _, id := range ids {
		if p, ok := byID[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

// List returns a page of papers filtered by keyword.
func (r *Repo) List(ctx context.Context, q dompaper.ListQuery) ([]dompaper.Paper, error) {
	order, ok := orderBy[q.Sort]
	if !ok {
		order = orderBy[dompaper.SortDate]
	}
	where, args := keywordClause(q.Keyword)
	args = append(args, q.Limit, q.Offset)

	rows, err := r.q.QueryContext(ctx,
		`SELECT `+columns+` FROM papers`+where+` ORDER BY `+order+` LIMIT ? OFFSET ?`, args...)
	if err != nil {
		return nil, fmt.Errorf("list papers: %w", err)
	}
	return scanAll(rows)
}

// Count returns the number of papers matching keyword (all papers when empty).
func (r *Repo) Count(ctx context.Context, keyword string) (int, error) {
	where, args := keywordClause(keyword)
	var n int
	if err := r.q.QueryRowContext(ctx, `SELECT COUNT(*) FROM papers`+where, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count papers: %w", err)
	}
	return n, nil
}

// Snapshot returns up to limit papers, most recently published first.
func (r *Repo) Snapshot(ctx context.Context, limit int) ([]dompaper.Paper, error) {
	rows, err := r.q.QueryContext(ctx,
		`SELECT `+columns+` FROM papers ORDER BY published_at DESC, id ASC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("snapshot papers: %w", err)
	}
	return scanAll(rows)
}

// Vote adds delta to a paper's score and returns the new score.
func (r *Repo) Vote(ctx context.Context, id string, delta int) (int, error) {
	var score int
	err := r.q.QueryRowContext(ctx,
		`UPDATE papers SET score = score + ? WHERE id = ? RETURNING score`, delta, id).Scan(&score)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("vote %s: %w", id, domain.ErrPaperNotFound)
	}
	if err != nil {
		return 0, fmt.Errorf("vote paper %s: %w", id, err)
	}
	return score, nil
}

// SetSummary stores a generated summary.
func (r *Repo) SetSummary(ctx context.Context, id, summary string) error {
	res, err := r.q.ExecContext(ctx, `UPDATE papers SET summary = ? WHERE id = ?`, summary, id)
	if err != nil {
		return fmt.Errorf("set summary %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("set summary %s: %w", id, domain.ErrPaperNotFound)
	}
	return nil
}

// Stats aggregates paper, subscription and collection counts.
func (r *Repo) Stats(ctx context.Context) (domain.Stats, error) {
	var st domain.Stats
	err := r.q.QueryRowContext(ctx, `SELECT
		(SELECT COUNT(*) FROM papers),
		(SELECT COUNT(DISTINCT keyword) FROM subscriptions),
		(SELECT COALESCE(SUM(ABS(score)), 0) FROM papers),
		(SELECT COUNT(*) FROM collections)`,
	).Scan(&st.TotalPapers, &st.Subscriptions, &st.TotalVotes, &st.Collections)
	if err != nil {
		return domain.Stats{}, fmt.Errorf("stats: %w", err)
	}
	return st, nil
}

func keywordClause(keyword string) (string, []any) {
	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		return "", nil
	}
	like := "%" + escapeLike(keyword) + "%"
	return ` WHERE (title LIKE ? ESCAPE '\' OR abstract LIKE ? ESCAPE '\' OR matched_keywords LIKE ? ESCAPE '\')`,
		[]any{like, like, like}
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}
