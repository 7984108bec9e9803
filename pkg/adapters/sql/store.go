// Package sql implements core.Store on a relational database through
// database/sql. Two dialects are supported: sqlite (modernc.org/sqlite, no cgo)
// and postgres (github.com/lib/pq).
package sql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/aretw0/tally/pkg/core"
)

// Dialect selects the SQL flavour.
type Dialect string

const (
	SQLite   Dialect = "sqlite"
	Postgres Dialect = "postgres"
)

// DefaultTable is the table name used when Config.Table is empty.
const DefaultTable = "tally_kv"

// openDB is a package-level var to allow test injection.
var openDB = sql.Open

// Config holds the configuration for the SQL store.
type Config struct {
	Dialect Dialect
	// DSN is a file path for sqlite and a connection string for postgres.
	DSN    string
	Table  string
	Logger *slog.Logger
}

// Store keeps every key in one row of a key/value table.
type Store struct {
	db      *sql.DB
	dialect Dialect
	table   string
	logger  *slog.Logger
}

// Open connects to the database. The schema is created by Initialize.
func Open(cfg Config) (*Store, error) {
	if cfg.Table == "" {
		cfg.Table = DefaultTable
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.DiscardHandler)
	}
	var driver string
	switch cfg.Dialect {
	case SQLite:
		driver = "sqlite"
	case Postgres:
		driver = "postgres"
	default:
		return nil, fmt.Errorf("unsupported sql dialect %q", cfg.Dialect)
	}
	if cfg.DSN == "" {
		return nil, fmt.Errorf("%w: empty dsn", core.ErrStoreUnavailable)
	}

	db, err := openDB(driver, cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %v", core.ErrStoreUnavailable, cfg.Dialect, err)
	}
	if cfg.Dialect == SQLite {
		// A single writer avoids SQLITE_BUSY between pooled connections.
		db.SetMaxOpenConns(1)
	}
	return &Store{
		db:      db,
		dialect: cfg.Dialect,
		table:   pq.QuoteIdentifier(cfg.Table),
		logger:  cfg.Logger,
	}, nil
}

// Initialize applies pragmas and creates the key/value table.
func (s *Store) Initialize(ctx context.Context) error {
	if s.dialect == SQLite {
		pragmas := []string{
			"PRAGMA journal_mode = WAL",
			"PRAGMA busy_timeout = 5000",
			"PRAGMA synchronous = NORMAL",
		}
		for _, p := range pragmas {
			if _, err := s.db.ExecContext(ctx, p); err != nil {
				return fmt.Errorf("%w: pragma %q: %v", core.ErrStoreUnavailable, p, err)
			}
		}
	}

	valueType := "BLOB"
	if s.dialect == Postgres {
		valueType = "BYTEA"
	}
	schema := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
		key        TEXT PRIMARY KEY,
		value      %s NOT NULL,
		updated_at BIGINT NOT NULL
	)`, s.table, valueType)
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("%w: create table: %v", core.ErrStoreUnavailable, err)
	}
	return nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) Get(ctx context.Context, key string) ([]byte, bool, error) {
	q := fmt.Sprintf("SELECT value FROM %s WHERE key = %s", s.table, s.arg(1))
	var value []byte
	err := s.db.QueryRowContext(ctx, q, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("%w: read %s: %v", core.ErrStoreUnavailable, key, err)
	}
	return value, true, nil
}

func (s *Store) Set(ctx context.Context, key string, value []byte) error {
	if key == "" {
		return fmt.Errorf("empty key")
	}
	if value == nil {
		value = []byte{}
	}
	// Both dialects accept the ON CONFLICT upsert.
	q := fmt.Sprintf(`INSERT INTO %s (key, value, updated_at) VALUES (%s, %s, %s)
		ON CONFLICT (key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		s.table, s.arg(1), s.arg(2), s.arg(3))
	if _, err := s.db.ExecContext(ctx, q, key, value, time.Now().UnixMilli()); err != nil {
		return fmt.Errorf("%w: write %s: %v", core.ErrStoreUnavailable, key, err)
	}
	s.logger.Debug("store write", "key", key, "bytes", len(value))
	return nil
}

func (s *Store) Delete(ctx context.Context, key string) error {
	q := fmt.Sprintf("DELETE FROM %s WHERE key = %s", s.table, s.arg(1))
	if _, err := s.db.ExecContext(ctx, q, key); err != nil {
		return fmt.Errorf("%w: delete %s: %v", core.ErrStoreUnavailable, key, err)
	}
	return nil
}

// Keys lists the keys matching pattern. Glob matching happens in Go so that
// both dialects share the doublestar semantics of the other adapters.
func (s *Store) Keys(ctx context.Context, pattern string) ([]string, error) {
	if pattern != "" && !doublestar.ValidatePattern(pattern) {
		return nil, fmt.Errorf("invalid key pattern %q: %w", pattern, doublestar.ErrBadPattern)
	}
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf("SELECT key FROM %s", s.table))
	if err != nil {
		return nil, fmt.Errorf("%w: list keys: %v", core.ErrStoreUnavailable, err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, fmt.Errorf("%w: scan key: %v", core.ErrStoreUnavailable, err)
		}
		if pattern != "" {
			if match, _ := doublestar.Match(pattern, k); !match {
				continue
			}
		}
		keys = append(keys, k)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: list keys: %v", core.ErrStoreUnavailable, err)
	}
	sort.Strings(keys)
	return keys, nil
}

func (s *Store) arg(n int) string {
	if s.dialect == Postgres {
		return fmt.Sprintf("$%d", n)
	}
	return "?"
}

var _ core.Store = (*Store)(nil)
var _ core.Initializer = (*Store)(nil)
