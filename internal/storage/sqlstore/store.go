// Package sqlstore implements storage.Queries over database/sql. The sqlite and
// postgres backends share it and differ only in their Dialect.
package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/julianstephens/levelup/internal/storage"
)

// Dialect captures the differences between the supported SQL engines.
type Dialect struct {
	Name string
	// Numbered placeholders ($1, $2, ...) instead of '?'
	Numbered bool
	// LockDay serializes writers for one (user, date) inside a transaction.
	// nil means the engine already serializes writers.
	LockDay func(ctx context.Context, q Querier, key string) error
}

// Querier is the subset of *sql.DB and *sql.Tx the store needs.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type Store struct {
	db      *sql.DB
	q       Querier
	dialect Dialect
}

var (
	_ storage.Queries    = (*Store)(nil)
	_ storage.Transactor = (*Store)(nil)
)

// New creates a store bound to no connection yet; call Attach once opened.
func New(dialect Dialect) *Store {
	return &Store{dialect: dialect}
}

// Attach binds the store to an open connection pool.
func (s *Store) Attach(db *sql.DB) {
	s.db = db
	s.q = db
}

// Detach forgets the connection pool after it was closed.
func (s *Store) Detach() {
	s.db = nil
	s.q = nil
}

// DB returns the underlying connection pool, nil before Attach.
func (s *Store) DB() *sql.DB {
	return s.db
}

// WithTx runs fn with a Store bound to a fresh transaction. A Store that is
// already bound to a transaction runs fn inside it.
func (s *Store) WithTx(ctx context.Context, fn func(q storage.Queries) error) error {
	if s.db == nil {
		return fmt.Errorf("storage not loaded")
	}
	if _, ok := s.q.(*sql.Tx); ok {
		return fn(s)
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	txStore := &Store{db: s.db, q: tx, dialect: s.dialect}
	if err := fn(txStore); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	committed = true
	return nil
}

// LockDay takes the dialect's per-day writer lock, if it has one.
func (s *Store) LockDay(ctx context.Context, userID, date string) error {
	if s.dialect.LockDay == nil {
		return nil
	}
	return s.dialect.LockDay(ctx, s.q, userID+"|"+date)
}

// rebind rewrites '?' placeholders for dialects that number them.
func (s *Store) rebind(query string) string {
	if !s.dialect.Numbered {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for i := 0; i < len(query); i++ {
		if query[i] == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteByte(query[i])
	}
	return b.String()
}

func (s *Store) exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return s.q.ExecContext(ctx, s.rebind(query), args...)
}

func (s *Store) query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return s.q.QueryContext(ctx, s.rebind(query), args...)
}

func (s *Store) queryRow(ctx context.Context, query string, args ...any) *sql.Row {
	return s.q.QueryRowContext(ctx, s.rebind(query), args...)
}

// execAffected runs query and reports whether any row changed.
func (s *Store) execAffected(ctx context.Context, query string, args ...any) (bool, error) {
	result, err := s.exec(ctx, query, args...)
	if err != nil {
		return false, err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows > 0, nil
}

func (s *Store) count(ctx context.Context, query string, args ...any) (int, error) {
	var n int
	if err := s.queryRow(ctx, query, args...).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

func notFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return storage.ErrNotFound
	}
	return err
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func parseTime(value, field string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse %s: %w", field, err)
	}
	return t, nil
}

func parseNullTime(value sql.NullString, field string) (*time.Time, error) {
	if !value.Valid {
		return nil, nil
	}
	t, err := parseTime(value.String, field)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func nullTime(t *time.Time) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: formatTime(*t), Valid: true}
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func stringPtr(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	v := s.String
	return &v
}
