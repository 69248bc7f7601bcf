// Package postgres implements pathstore.Store on PostgreSQL, one row per
// path in a single key-value table.
package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/and161185/geohunt/internal/pathstore"
)

// PgxPool is a minimal abstraction over a Postgres connection pool.
// It is implemented by *pgxpool.Pool and pgxmock.PgxPoolIface.
type PgxPool interface {
	// Exec executes a SQL command and returns the command tag.
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	// Query executes a SELECT and returns a rows iterator.
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	// QueryRow executes a query expected to return at most one row.
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	// Close shuts down the pool and frees resources.
	Close()
}

// Store implements the path store over a paths(path, value) table.
type Store struct{ Pool PgxPool }

var _ pathstore.Store = (*Store)(nil)

// New creates a store backed by a new connection pool for the given DSN.
func New(ctx context.Context, dsn string) (*Store, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}
	return &Store{Pool: pool}, nil
}

// Close closes the underlying pool.
func (s *Store) Close() { s.Pool.Close() }

// Exists reports whether a row is stored at exactly this path.
func (s *Store) Exists(ctx context.Context, path string) (bool, error) {
	const q = `SELECT EXISTS(SELECT 1 FROM paths WHERE path=$1)`
	var ok bool
	if err := s.Pool.QueryRow(ctx, q, path).Scan(&ok); err != nil {
		return false, err
	}
	return ok, nil
}

// Get returns the value at the path, or nil when absent.
func (s *Store) Get(ctx context.Context, path string) (json.RawMessage, error) {
	const q = `SELECT value FROM paths WHERE path=$1`
	var value json.RawMessage
	err := s.Pool.QueryRow(ctx, q, path).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return value, nil
}

// Set writes the value at the path, overwriting any previous value.
func (s *Store) Set(ctx context.Context, path string, value json.RawMessage) error {
	const q = `
INSERT INTO paths (path, value) VALUES ($1, $2)
ON CONFLICT (path) DO UPDATE SET value = EXCLUDED.value`
	_, err := s.Pool.Exec(ctx, q, path, value)
	return err
}

// Remove deletes the path and its subtree. Absent paths are a no-op.
func (s *Store) Remove(ctx context.Context, path string) error {
	const q = `DELETE FROM paths WHERE path=$1 OR path LIKE $2`
	_, err := s.Pool.Exec(ctx, q, path, likeSubtree(path))
	return err
}

// Children returns the sorted immediate child segments below the path.
func (s *Store) Children(ctx context.Context, path string) ([]string, error) {
	const q = `SELECT path FROM paths WHERE path LIKE $1`
	rows, err := s.Pool.Query(ctx, q, likeSubtree(path))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	seen := map[string]bool{}
	prefix := path + "/"
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, err
		}
		seg := strings.TrimPrefix(p, prefix)
		if i := strings.IndexByte(seg, '/'); i >= 0 {
			seg = seg[:i]
		}
		if seg != "" {
			seen[seg] = true
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	keys := make([]string, 0, len(seen))
	for k := range seen {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}

// likeSubtree escapes LIKE metacharacters in the path so ids containing
// % or _ cannot widen the subtree match.
func likeSubtree(path string) string {
	esc := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(path)
	return esc + "/%"
}
