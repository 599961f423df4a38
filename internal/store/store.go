// Package store holds the SQL repositories for profiles, posts, comments,
// projects and admin users.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"portfolio/internal/db"
	"portfolio/internal/models"
)

var (
	ErrNotFound = errors.New("not found")
	ErrConflict = errors.New("conflict")
	ErrInvalid  = models.ErrInvalid
)

type base struct {
	db  *db.DB
	now func() time.Time
}

func (b *base) clock() time.Time {
	return b.now().UTC()
}

type Store struct {
	Profiles *Profiles
	Posts    *Posts
	Taxonomy *Taxonomy
	Comments *Comments
	Projects *Projects
	Users    *Users

	b *base
}

func New(d *db.DB) *Store {
	b := &base{db: d, now: time.Now}
	return &Store{
		Profiles: &Profiles{b},
		Posts:    &Posts{b},
		Taxonomy: &Taxonomy{b},
		Comments: &Comments{b},
		Projects: &Projects{b},
		Users:    &Users{b},
		b:        b,
	}
}

// SetClock replaces the time source used for timestamps.
func (s *Store) SetClock(now func() time.Time) {
	s.b.now = now
}

// classify maps driver errors onto the store's sentinel errors.
func classify(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, sql.ErrNoRows):
		return ErrNotFound
	case db.IsUniqueViolation(err):
		return fmt.Errorf("%w: %v", ErrConflict, err)
	case db.IsCheckViolation(err), db.IsForeignKeyViolation(err):
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	return err
}

type execer interface {
	ExecContext(ctx context.Context, q string, args ...any) (sql.Result, error)
}

// execOne runs a statement that must touch exactly one row.
func execOne(ctx context.Context, e execer, q string, args ...any) error {
	res, err := e.ExecContext(ctx, q, args...)
	if err != nil {
		return classify(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

func timePtr(nt sql.NullTime) *time.Time {
	if !nt.Valid {
		return nil
	}
	t := nt.Time
	return &t
}

func nullInt(v *int64) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *v, Valid: true}
}
