// Package sqlite contains SQLite implementations of repository interfaces.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gofrs/uuid/v5"
	sqlitedrv "modernc.org/sqlite"
	sqlitelib "modernc.org/sqlite/lib"

	"github.com/and161185/tzaware/internal/errs"
	"github.com/and161185/tzaware/internal/model"
	"github.com/and161185/tzaware/tzaware"
)

// TimeLayout is the naive UTC text form stored in timestamp columns.
const TimeLayout = "2006-01-02 15:04:05.000000000"

var (
	entryCols = "id, info, expected_offset, " + model.AtColumns.Select() + ", created_at"

	insEntry = `
INSERT INTO entries (id, info, expected_offset, ` + model.AtColumns.Select() + `, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?)`
	selEntry  = `SELECT ` + entryCols + ` FROM entries WHERE id = ?`
	listEntry = `
SELECT ` + entryCols + `
FROM entries
ORDER BY ` + model.AtColumns.UTC + ` ASC NULLS FIRST, created_at ASC, id ASC
LIMIT ?`
)

// Open opens a SQLite database. In-memory databases are pinned to one connection so
// every query sees the same data.
func Open(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	if dsn == ":memory:" || strings.Contains(dsn, "mode=memory") {
		db.SetMaxOpenConns(1)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// EntryRepo implements EntryRepository on SQLite. SQLite has no timestamp type; the
// UTC instant is kept as naive text in TimeLayout, which sorts chronologically.
type EntryRepo struct {
	db     *sql.DB
	policy tzaware.Policy
	now    func() time.Time
}

// NewEntryRepo constructs an entry repository.
func NewEntryRepo(db *sql.DB, policy tzaware.Policy) *EntryRepo {
	return &EntryRepo{db: db, policy: policy, now: time.Now}
}

// Create inserts an entry row and sets CreatedAt.
func (r *EntryRepo) Create(ctx context.Context, e *model.Entry) error {
	if !model.InYearRange(e.At) {
		return fmt.Errorf("validation: %s does not fit %q: %w", e.At, TimeLayout, errs.ErrValidation)
	}
	f := tzaware.RoundFields(e.At, 0)
	args := f.Args()
	if f.UTC.Valid {
		args[0] = formatTime(f.UTC.Time)
	}
	created := r.now().UTC()

	_, err := r.db.ExecContext(ctx, insEntry,
		append(append([]any{e.ID.String(), e.Info, optInt32(e.ExpectedOffset)}, args...), formatTime(created))...)
	if err != nil {
		if isUniqueViolation(err) {
			return errs.ErrAlreadyExists
		}
		return err
	}
	e.CreatedAt = created
	return nil
}

// Get selects an entry by ID.
func (r *EntryRepo) Get(ctx context.Context, id uuid.UUID) (*model.Entry, error) {
	e, err := r.scan(r.db.QueryRowContext(ctx, selEntry, id.String()))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errs.ErrNotFound
		}
		return nil, err
	}
	return e, nil
}

// List returns entries by UTC instant ascending with NULL instants first.
func (r *EntryRepo) List(ctx context.Context, limit int) ([]model.Entry, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := r.db.QueryContext(ctx, listEntry, limit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []model.Entry
	for rows.Next() {
		e, err := r.scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *e)
	}
	return out, rows.Err()
}

// Count returns the number of entries.
func (r *EntryRepo) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM entries`).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

// Delete removes an entry by ID.
func (r *EntryRepo) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM entries WHERE id = ?`, id.String())
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return errs.ErrNotFound
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func (r *EntryRepo) scan(row scanner) (*model.Entry, error) {
	var (
		e        model.Entry
		id       string
		expected sql.NullInt32
		utc      sql.NullString
		created  string
		f        tzaware.Fields
	)
	dest := f.ScanDest()
	dest[0] = &utc
	if err := row.Scan(append(append([]any{&id, &e.Info, &expected}, dest...), &created)...); err != nil {
		return nil, err
	}

	var err error
	if e.ID, err = uuid.FromString(id); err != nil {
		return nil, fmt.Errorf("entry %q: %w", id, err)
	}
	if utc.Valid {
		t, err := parseTime(utc.String)
		if err != nil {
			return nil, fmt.Errorf("entry %s: %s: %w", id, model.AtColumns.UTC, err)
		}
		f.UTC = sql.NullTime{Time: t, Valid: true}
	}
	if e.At, err = r.policy.Rehydrate(f); err != nil {
		return nil, fmt.Errorf("entry %s: %w", id, err)
	}
	if expected.Valid {
		v := expected.Int32
		e.ExpectedOffset = &v
	}
	if e.CreatedAt, err = parseTime(created); err != nil {
		return nil, fmt.Errorf("entry %s: created_at: %w", id, err)
	}
	return &e, nil
}

func formatTime(t time.Time) string { return t.UTC().Format(TimeLayout) }

func parseTime(s string) (time.Time, error) {
	return time.ParseInLocation(TimeLayout, s, time.UTC)
}

func optInt32(p *int32) any {
	if p == nil {
		return nil
	}
	return *p
}

// isUniqueViolation reports whether the error is a primary key or unique constraint violation.
func isUniqueViolation(err error) bool {
	var se *sqlitedrv.Error
	if !errors.As(err, &se) {
		return false
	}
	switch se.Code() {
	case sqlitelib.SQLITE_CONSTRAINT_PRIMARYKEY, sqlitelib.SQLITE_CONSTRAINT_UNIQUE:
		return true
	}
	// base result code only
	return se.Code()&0xff == sqlitelib.SQLITE_CONSTRAINT && strings.Contains(se.Error(), "UNIQUE constraint failed")
}
