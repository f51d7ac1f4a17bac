package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gofrs/uuid/v5"
	"github.com/stretchr/testify/require"

	"github.com/and161185/tzaware/internal/errs"
	"github.com/and161185/tzaware/internal/migrate"
	"github.com/and161185/tzaware/internal/model"
	"github.com/and161185/tzaware/tzaware"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	ctx := context.Background()
	db, err := Open(ctx, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	_, err = migrate.UpDB(ctx, db, migrate.SQLite)
	require.NoError(t, err)
	return db
}

func newRepo(t *testing.T, policy tzaware.Policy) *EntryRepo {
	t.Helper()
	r := NewEntryRepo(setupTestDB(t), policy)
	created := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	r.now = func() time.Time {
		created = created.Add(time.Second)
		return created
	}
	return r
}

func mustLoc(t *testing.T, name string) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation(name)
	require.NoError(t, err)
	return loc
}

func newEntry(info string, at tzaware.Instant) *model.Entry {
	return &model.Entry{ID: uuid.Must(uuid.NewV4()), Info: info, At: at}
}

func TestEntryRepo_RoundTrip(t *testing.T) {
	ctx := context.Background()
	r := newRepo(t, tzaware.Strict)

	at := time.Date(2010, 1, 16, 9, 0, 0, 123456789, mustLoc(t, "America/Los_Angeles"))
	exp := int32(-28800)
	e := newEntry("PST date", tzaware.Decompose(at))
	e.ExpectedOffset = &exp
	require.NoError(t, r.Create(ctx, e))
	require.False(t, e.CreatedAt.IsZero())

	got, err := r.Get(ctx, e.ID)
	require.NoError(t, err)
	require.Equal(t, e.ID, got.ID)
	require.Equal(t, "PST date", got.Info)
	require.Equal(t, e.CreatedAt, got.CreatedAt)
	require.True(t, tzaware.Equal(e.At, got.At))

	real, ok := got.At.Time()
	require.True(t, ok)
	require.True(t, real.Equal(at))
	require.Equal(t, at.Format(time.RFC3339Nano), real.Format(time.RFC3339Nano))
	zone, _ := got.At.Zone()
	require.Equal(t, "PST", zone)

	match, known := got.OffsetMatches()
	require.True(t, known)
	require.True(t, match)
}

func TestEntryRepo_EmptyInstant(t *testing.T) {
	ctx := context.Background()
	r := newRepo(t, tzaware.Strict)

	e := newEntry("null date", tzaware.Empty())
	require.NoError(t, r.Create(ctx, e))

	got, err := r.Get(ctx, e.ID)
	require.NoError(t, err)
	require.True(t, got.At.IsEmpty())
	require.Nil(t, got.ExpectedOffset)
	_, known := got.OffsetMatches()
	require.False(t, known)
}

func TestEntryRepo_ListSortedByUTC(t *testing.T) {
	ctx := context.Background()
	r := newRepo(t, tzaware.Strict)

	local := func(name string) tzaware.Instant {
		return tzaware.Decompose(time.Date(2010, 1, 20, 6, 0, 0, 0, mustLoc(t, name)))
	}
	for _, e := range []*model.Entry{
		newEntry("London (UTC)", local("Europe/London")),
		newEntry("Toronto (UTC-5)", local("America/Toronto")),
		newEntry("null date", tzaware.Empty()),
		newEntry("Rome (UTC+1)", local("Europe/Rome")),
	} {
		require.NoError(t, r.Create(ctx, e))
	}

	out, err := r.List(ctx, 0)
	require.NoError(t, err)
	var infos []string
	for _, e := range out {
		infos = append(infos, e.Info)
	}
	require.Equal(t, []string{"null date", "Rome (UTC+1)", "London (UTC)", "Toronto (UTC-5)"}, infos)
	require.True(t, out[1].At.TimeOrZero().Equal(time.Date(2010, 1, 20, 6, 0, 0, 0, mustLoc(t, "Europe/Rome"))))

	out, err = r.List(ctx, 2)
	require.NoError(t, err)
	require.Len(t, out, 2)

	n, err := r.Count(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(4), n)
}

func TestEntryRepo_YearRange(t *testing.T) {
	ctx := context.Background()
	r := newRepo(t, tzaware.Strict)

	tooLate := newEntry("far future", tzaware.Decompose(time.Date(10000, 1, 1, 0, 0, 0, 0, time.UTC)))
	require.ErrorIs(t, r.Create(ctx, tooLate), errs.ErrValidation)

	last := time.Date(9999, 12, 31, 23, 59, 59, 999999999, time.UTC)
	e := newEntry("last instant", tzaware.Decompose(last))
	require.NoError(t, r.Create(ctx, e))

	got, err := r.Get(ctx, e.ID)
	require.NoError(t, err)
	utc, _ := got.At.UTC()
	require.Equal(t, last, utc)

	out, err := r.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, out, 1)
}

func TestEntryRepo_Duplicate(t *testing.T) {
	ctx := context.Background()
	r := newRepo(t, tzaware.Strict)

	e := newEntry("first date", tzaware.Decompose(time.Now()))
	require.NoError(t, r.Create(ctx, e))
	require.ErrorIs(t, r.Create(ctx, e), errs.ErrAlreadyExists)
}

func TestEntryRepo_NotFound(t *testing.T) {
	ctx := context.Background()
	r := newRepo(t, tzaware.Strict)

	id := uuid.Must(uuid.NewV4())
	_, err := r.Get(ctx, id)
	require.ErrorIs(t, err, errs.ErrNotFound)
	require.ErrorIs(t, r.Delete(ctx, id), errs.ErrNotFound)

	e := newEntry("gone", tzaware.Empty())
	require.NoError(t, r.Create(ctx, e))
	require.NoError(t, r.Delete(ctx, e.ID))
	_, err = r.Get(ctx, e.ID)
	require.ErrorIs(t, err, errs.ErrNotFound)
}

func TestEntryRepo_IncompleteRowPolicy(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	id := uuid.Must(uuid.NewV4())
	_, err := db.ExecContext(ctx,
		`INSERT INTO entries (id, info, at_tzname, created_at) VALUES (?, 'broken', 'PST', '2024-05-01 10:00:00.000000000')`,
		id.String())
	require.NoError(t, err)

	_, err = NewEntryRepo(db, tzaware.Strict).Get(ctx, id)
	require.ErrorIs(t, err, tzaware.ErrIncompleteComposite)

	_, err = NewEntryRepo(db, tzaware.Strict).List(ctx, 0)
	require.ErrorIs(t, err, tzaware.ErrIncompleteComposite)

	got, err := NewEntryRepo(db, tzaware.Legacy).Get(ctx, id)
	require.NoError(t, err)
	require.True(t, got.At.IsEmpty())
}

func TestEntryRepo_BadStoredTime(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	id := uuid.Must(uuid.NewV4())
	mock.ExpectQuery(regexp.QuoteMeta(selEntry)).
		WithArgs(id.String()).
		WillReturnRows(sqlmock.NewRows([]string{"id", "info", "expected_offset", "at_utc", "at_tzname", "at_tzoffset", "created_at"}).
			AddRow(id.String(), "bad", nil, "yesterday", nil, nil, "2024-05-01 10:00:00.000000000"))

	_, err = NewEntryRepo(db, tzaware.Strict).Get(context.Background(), id)
	require.Error(t, err)
	require.Contains(t, err.Error(), "at_utc")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEntryRepo_ExecError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	boom := errors.New("disk full")
	mock.ExpectExec("INSERT INTO entries").WillReturnError(boom)

	err = NewEntryRepo(db, tzaware.Strict).Create(context.Background(), newEntry("x", tzaware.Empty()))
	require.ErrorIs(t, err, boom)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEntryRepo_StoredTextIsNaiveUTC(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	r := NewEntryRepo(db, tzaware.Strict)

	at := time.Date(2010, 1, 15, 8, 0, 0, 0, time.FixedZone("NZDT", 13*3600))
	e := newEntry("New Zealand date", tzaware.Decompose(at))
	require.NoError(t, r.Create(ctx, e))

	var utc, zone string
	var off int64
	require.NoError(t, db.QueryRowContext(ctx,
		`SELECT at_utc, at_tzname, at_tzoffset FROM entries WHERE id = ?`, e.ID.String()).Scan(&utc, &zone, &off))
	require.Equal(t, "2010-01-14 19:00:00.000000000", utc)
	require.Equal(t, "NZDT", zone)
	require.Equal(t, int64(46800), off)
}
