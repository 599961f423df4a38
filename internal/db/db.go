package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

type Dialect string

const (
	SQLite   Dialect = "sqlite"
	Postgres Dialect = "postgres"
)

// DB is a *sql.DB that knows its dialect. Queries are written with "?"
// placeholders and rebound for PostgreSQL on the way in.
type DB struct {
	*sql.DB
	Dialect Dialect
}

// Open connects to SQLite (modernc) or PostgreSQL (pgx) and pings it.
func Open(driver, dsn string) (*DB, error) {
	switch Dialect(driver) {
	case SQLite, "":
		sdb, err := sql.Open("sqlite", sqliteDSN(dsn))
		if err != nil {
			return nil, err
		}
		// One writer keeps in-memory databases and pragmas on a single connection.
		sdb.SetMaxOpenConns(1)
		return &DB{DB: sdb, Dialect: SQLite}, sdb.Ping()
	case Postgres:
		sdb, err := sql.Open("pgx", dsn)
		if err != nil {
			return nil, err
		}
		sdb.SetMaxOpenConns(20)
		return &DB{DB: sdb, Dialect: Postgres}, sdb.Ping()
	default:
		return nil, fmt.Errorf("db: unknown driver %q", driver)
	}
}

func sqliteDSN(dsn string) string {
	if dsn == "" || dsn == ":memory:" || dsn == "memory" {
		dsn = "file::memory:"
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	if !strings.Contains(dsn, "foreign_keys") {
		dsn += sep + "_pragma=foreign_keys(1)"
		sep = "&"
	}
	if !strings.Contains(dsn, "_time_format") {
		dsn += sep + "_time_format=sqlite"
	}
	return dsn
}

// Rebind rewrites "?" placeholders to "$1..$n" for PostgreSQL.
func (d *DB) Rebind(q string) string {
	return rebind(d.Dialect, q)
}

func rebind(d Dialect, q string) string {
	if d != Postgres || !strings.Contains(q, "?") {
		return q
	}
	var b strings.Builder
	b.Grow(len(q) + 8)
	n := 0
	inQuote := false
	for i := 0; i < len(q); i++ {
		c := q[i]
		if c == '\'' {
			inQuote = !inQuote
		}
		if c == '?' && !inQuote {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteByte(c)
	}
	return b.String()
}

func (d *DB) ExecContext(ctx context.Context, q string, args ...any) (sql.Result, error) {
	return d.DB.ExecContext(ctx, d.Rebind(q), args...)
}

func (d *DB) QueryContext(ctx context.Context, q string, args ...any) (*sql.Rows, error) {
	return d.DB.QueryContext(ctx, d.Rebind(q), args...)
}

func (d *DB) QueryRowContext(ctx context.Context, q string, args ...any) *sql.Row {
	return d.DB.QueryRowContext(ctx, d.Rebind(q), args...)
}

// Tx mirrors DB for statements run inside a transaction.
type Tx struct {
	*sql.Tx
	dialect Dialect
}

func (d *DB) BeginTx(ctx context.Context) (*Tx, error) {
	tx, err := d.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	return &Tx{Tx: tx, dialect: d.Dialect}, nil
}

func (t *Tx) ExecContext(ctx context.Context, q string, args ...any) (sql.Result, error) {
	return t.Tx.ExecContext(ctx, rebind(t.dialect, q), args...)
}

func (t *Tx) QueryContext(ctx context.Context, q string, args ...any) (*sql.Rows, error) {
	return t.Tx.QueryContext(ctx, rebind(t.dialect, q), args...)
}

func (t *Tx) QueryRowContext(ctx context.Context, q string, args ...any) *sql.Row {
	return t.Tx.QueryRowContext(ctx, rebind(t.dialect, q), args...)
}

// WithTx runs fn in a transaction, committing on success.
func (d *DB) WithTx(ctx context.Context, fn func(*Tx) error) error {
	tx, err := d.BeginTx(ctx)
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

// IsUniqueViolation reports whether err is a UNIQUE/PRIMARY KEY failure
// from either driver.
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	var sqErr *sqlite.Error
	if errors.As(err, &sqErr) {
		return sqErr.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE ||
			sqErr.Code() == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY ||
			strings.Contains(sqErr.Error(), "UNIQUE constraint failed")
	}
	return false
}

// IsCheckViolation reports whether err is a CHECK or NOT NULL failure.
func IsCheckViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23514" || pgErr.Code == "23502"
	}
	var sqErr *sqlite.Error
	if errors.As(err, &sqErr) {
		return sqErr.Code() == sqlite3.SQLITE_CONSTRAINT_CHECK ||
			sqErr.Code() == sqlite3.SQLITE_CONSTRAINT_NOTNULL ||
			strings.Contains(sqErr.Error(), "CHECK constraint failed")
	}
	return false
}

// IsForeignKeyViolation reports whether err references a missing row.
func IsForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23503"
	}
	var sqErr *sqlite.Error
	if errors.As(err, &sqErr) {
		return sqErr.Code() == sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY ||
			strings.Contains(sqErr.Error(), "FOREIGN KEY constraint failed")
	}
	return false
}
