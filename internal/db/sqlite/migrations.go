package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/kailas-cloud/paperdigest/internal/db"
)

// Manager handles schema versioning.
type Manager struct{}

type migration struct {
	up   []string
	down []string
}

var migrations = []migration{
	// v1: papers, subscriptions, fetch bookkeeping.
	{
		up: []string{
			`CREATE TABLE IF NOT EXISTS papers (
				id TEXT PRIMARY KEY,
				title TEXT NOT NULL,
				abstract TEXT NOT NULL DEFAULT '',
				authors TEXT NOT NULL DEFAULT '[]',
				categories TEXT NOT NULL DEFAULT '[]',
				primary_category TEXT NOT NULL DEFAULT '',
				url TEXT NOT NULL DEFAULT '',
				pdf_url TEXT NOT NULL DEFAULT '',
				published_at TEXT NOT NULL DEFAULT '',
				updated_at TEXT NOT NULL DEFAULT '',
				fetched_at TEXT NOT NULL,
				summary TEXT NOT NULL DEFAULT '',
				matched_keywords TEXT NOT NULL DEFAULT '[]',
				score INTEGER NOT NULL DEFAULT 0
			);`,
			`CREATE INDEX IF NOT EXISTS idx_papers_published ON papers(published_at DESC);`,
			`CREATE INDEX IF NOT EXISTS idx_papers_score ON papers(score DESC);`,
			`CREATE TABLE IF NOT EXISTS subscriptions (
				keyword TEXT PRIMARY KEY,
				created_at TEXT NOT NULL
			);`,
			`CREATE TABLE IF NOT EXISTS meta (
				key TEXT PRIMARY KEY,
				value TEXT NOT NULL
			);`,
		},
		down: []string{
			`DROP TABLE IF EXISTS meta;`,
			`DROP TABLE IF EXISTS subscriptions;`,
			`DROP INDEX IF EXISTS idx_papers_score;`,
			`DROP INDEX IF EXISTS idx_papers_published;`,
			`DROP TABLE IF EXISTS papers;`,
		},
	},
	// v2: collections and digest configs.
	{
		up: []string{
			`CREATE TABLE IF NOT EXISTS collections (
				id TEXT PRIMARY KEY,
				name TEXT NOT NULL UNIQUE,
				description TEXT NOT NULL DEFAULT '',
				created_at INTEGER NOT NULL
			);`,
			`CREATE TABLE IF NOT EXISTS collection_papers (
				collection_id TEXT NOT NULL,
				paper_id TEXT NOT NULL,
				added_at INTEGER NOT NULL,
				PRIMARY KEY (collection_id, paper_id),
				FOREIGN KEY (collection_id) REFERENCES collections(id) ON DELETE CASCADE
			);`,
			`CREATE TABLE IF NOT EXISTS digest_configs (
				id TEXT PRIMARY KEY,
				target TEXT NOT NULL,
				schedule TEXT NOT NULL DEFAULT 'daily',
				send_hour INTEGER NOT NULL DEFAULT 8,
				keywords TEXT NOT NULL DEFAULT '[]',
				enabled INTEGER NOT NULL DEFAULT 1,
				last_sent TEXT NOT NULL DEFAULT ''
			);`,
		},
		down: []string{
			`DROP TABLE IF EXISTS digest_configs;`,
			`DROP TABLE IF EXISTS collection_papers;`,
			`DROP TABLE IF EXISTS collections;`,
		},
	},
	// v3: key-value table backing the budget tracker and summary cache without Redis.
	{
		up: []string{
			`CREATE TABLE IF NOT EXISTS kv (
				key TEXT PRIMARY KEY,
				value BLOB NOT NULL,
				expires_at INTEGER
			);`,
			`CREATE INDEX IF NOT EXISTS idx_kv_expires ON kv(expires_at);`,
		},
		down: []string{
			`DROP INDEX IF EXISTS idx_kv_expires;`,
			`DROP TABLE IF EXISTS kv;`,
		},
	},
}

// LatestVersion is the schema version UpToLatest migrates to.
var LatestVersion = len(migrations)

func (m Manager) ensureTable(ctx context.Context, conn *sql.DB) error {
	if _, err := conn.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations (version INTEGER NOT NULL);`); err != nil {
		return &db.Error{Op: db.OpMigrate, Err: err}
	}
	var cnt int
	if err := conn.QueryRowContext(ctx, `SELECT COUNT(1) FROM schema_migrations`).Scan(&cnt); err != nil {
		return &db.Error{Op: db.OpMigrate, Err: err}
	}
	if cnt == 0 {
		if _, err := conn.ExecContext(ctx, `INSERT INTO schema_migrations(version) VALUES(0)`); err != nil {
			return &db.Error{Op: db.OpMigrate, Err: err}
		}
	}
	return nil
}

// Version returns the current schema version.
func (m Manager) Version(ctx context.Context, conn *sql.DB) (int, error) {
	if err := m.ensureTable(ctx, conn); err != nil {
		return 0, err
	}
	var v int
	if err := conn.QueryRowContext(ctx, `SELECT version FROM schema_migrations`).Scan(&v); err != nil {
		return 0, &db.Error{Op: db.OpMigrate, Err: err}
	}
	return v, nil
}

// UpToLatest applies pending migrations in order, each in its own transaction.
func (m Manager) UpToLatest(ctx context.Context, conn *sql.DB) error {
	cur, err := m.Version(ctx, conn)
	if err != nil {
		return err
	}
	for v := cur + 1; v <= LatestVersion; v++ {
		if err := m.apply(ctx, conn, migrations[v-1].up, v); err != nil {
			return fmt.Errorf("migrate up to v%d: %w", v, err)
		}
	}
	return nil
}

// DownOne rolls back the last applied migration. At version 0 it is a no-op.
func (m Manager) DownOne(ctx context.Context, conn *sql.DB) error {
	cur, err := m.Version(ctx, conn)
	if err != nil {
		return err
	}
	if cur <= 0 {
		return nil
	}
	if err := m.apply(ctx, conn, migrations[cur-1].down, cur-1); err != nil {
		return fmt.Errorf("migrate down from v%d: %w", cur, err)
	}
	return nil
}

func (m Manager) apply(ctx context.Context, conn *sql.DB, stmts []string, version int) error {
	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return &db.Error{Op: db.OpMigrate, Err: err}
	}
	defer func() { _ = tx.Rollback() }()

	for i, s := range stmts {
		if _, err := tx.ExecContext(ctx, s); err != nil {
			return &db.Error{Op: db.OpMigrate, Err: fmt.Errorf("step %d: %w", i, err)}
		}
	}
	if _, err := tx.ExecContext(ctx, `UPDATE schema_migrations SET version = ?`, version); err != nil {
		return &db.Error{Op: db.OpMigrate, Err: err}
	}
	if err := tx.Commit(); err != nil {
		return &db.Error{Op: db.OpMigrate, Err: err}
	}
	return nil
}
