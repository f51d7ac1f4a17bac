package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/jackc/pgx/v5"

	"github.com/and161185/tzaware/internal/errs"
	"github.com/and161185/tzaware/internal/model"
	"github.com/and161185/tzaware/tzaware"
)

var (
	entryCols = "id, info, expected_offset, " + model.AtColumns.Select() + ", created_at"

	insEntry = `
INSERT INTO entries (id, info, expected_offset, ` + model.AtColumns.Select() + `)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING created_at`
	selEntry  = `SELECT ` + entryCols + ` FROM entries WHERE id=$1`
	listEntry = `
SELECT ` + entryCols + `
FROM entries
ORDER BY ` + model.AtColumns.UTC + ` ASC NULLS FIRST, created_at ASC, id ASC
LIMIT $1`
)

// EntryRepo implements EntryRepository using PostgreSQL. The composite timestamp is
// stored in a TIMESTAMP (no time zone), a TEXT and an INTEGER column.
type EntryRepo struct {
	db     *DB
	policy tzaware.Policy
}

// NewEntryRepo constructs an entry repository. policy governs rehydration of rows.
func NewEntryRepo(db *DB, policy tzaware.Policy) *EntryRepo {
	return &EntryRepo{db: db, policy: policy}
}

// Create inserts an entry row. The UTC instant is rounded to microseconds and e.At is
// updated to what was stored.
func (r *EntryRepo) Create(ctx context.Context, e *model.Entry) error {
	f := tzaware.RoundFields(e.At, Precision)
	args := append([]any{e.ID, e.Info, optInt32(e.ExpectedOffset)}, f.Args()...)

	var created time.Time
	if err := r.db.Pool.QueryRow(ctx, insEntry, args...).Scan(&created); err != nil {
		if isUniqueViolation(err) {
			return errs.ErrAlreadyExists
		}
		return err
	}
	e.At = tzaware.FromFields(f)
	e.CreatedAt = created.UTC()
	return nil
}

// Get selects an entry by ID.
func (r *EntryRepo) Get(ctx context.Context, id uuid.UUID) (*model.Entry, error) {
	e, err := r.scan(r.db.Pool.QueryRow(ctx, selEntry, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errs.ErrNotFound
		}
		return nil, err
	}
	return e, nil
}

// List returns entries by UTC instant ascending with NULL instants first.
func (r *EntryRepo) List(ctx context.Context, limit int) ([]model.Entry, error) {
	var lim any
	if limit > 0 {
		lim = int64(limit)
	}
	rows, err := r.db.Pool.Query(ctx, listEntry, lim)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

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
	const q = `SELECT COUNT(*) FROM entries`
	var n int64
	if err := r.db.Pool.QueryRow(ctx, q).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

// Delete removes an entry by ID.
func (r *EntryRepo) Delete(ctx context.Context, id uuid.UUID) error {
	const q = `DELETE FROM entries WHERE id=$1`
	tag, err := r.db.Pool.Exec(ctx, q, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return errs.ErrNotFound
	}
	return nil
}

func (r *EntryRepo) scan(row pgx.Row) (*model.Entry, error) {
	var (
		e        model.Entry
		expected *int32
		utc      *time.Time
		zone     *string
		offset   *int32
	)
	if err := row.Scan(&e.ID, &e.Info, &expected, &utc, &zone, &offset, &e.CreatedAt); err != nil {
		return nil, err
	}
	if utc != nil {
		u := utc.UTC()
		utc = &u
	}
	at, err := r.policy.Rehydrate(tzaware.NewFields(utc, zone, offset))
	if err != nil {
		return nil, fmt.Errorf("entry %s: %w", e.ID, err)
	}
	e.At = at
	e.ExpectedOffset = expected
	e.CreatedAt = e.CreatedAt.UTC()
	return &e, nil
}

func optInt32(p *int32) any {
	if p == nil {
		return nil
	}
	return *p
}
