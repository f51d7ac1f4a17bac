package migrate

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

func openMemory(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestUpDB_SQLite(t *testing.T) {
	ctx := context.Background()
	db := openMemory(t)

	n, err := UpDB(ctx, db, SQLite)
	require.NoError(t, err)
	require.Equal(t, 1, n)

	n, err = UpDB(ctx, db, SQLite)
	require.NoError(t, err)
	require.Equal(t, 0, n)

	v, err := Version(ctx, db, SQLite)
	require.NoError(t, err)
	require.Equal(t, int64(1), v)

	var cols []string
	rows, err := db.QueryContext(ctx, `SELECT name FROM pragma_table_info('entries') ORDER BY cid`)
	require.NoError(t, err)
	defer rows.Close()
	for rows.Next() {
		var name string
		require.NoError(t, rows.Scan(&name))
		cols = append(cols, name)
	}
	require.NoError(t, rows.Err())
	require.Equal(t, []string{"id", "info", "expected_offset", "at_utc", "at_tzname", "at_tzoffset", "created_at"}, cols)
}

func TestUpDB_UnknownDialect(t *testing.T) {
	_, err := UpDB(context.Background(), openMemory(t), Dialect("oracle"))
	require.Error(t, err)
	require.Contains(t, err.Error(), "unsupported dialect")
}
