// Package migrate applies embedded SQL migrations on startup.
package migrate

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/and161185/tzaware/migrations"
)

// Dialect selects the migration set and SQL dialect.
type Dialect string

const (
	Postgres Dialect = "postgres"
	SQLite   Dialect = "sqlite"
)

func (d Dialect) goose() (goose.Dialect, error) {
	switch d {
	case Postgres:
		return goose.DialectPostgres, nil
	case SQLite:
		return goose.DialectSQLite3, nil
	}
	return "", fmt.Errorf("migrate: unsupported dialect %q", string(d))
}

func provider(db *sql.DB, d Dialect) (*goose.Provider, error) {
	gd, err := d.goose()
	if err != nil {
		return nil, err
	}
	fsys, err := fs.Sub(migrations.FS, string(d))
	if err != nil {
		return nil, err
	}
	return goose.NewProvider(gd, db, fsys)
}

// Up runs all pending Postgres migrations for the given DSN.
func Up(ctx context.Context, dsn string) error {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return err
	}
	defer db.Close()

	_, err = UpDB(ctx, db, Postgres)
	return err
}

// UpDB runs all pending migrations of dialect d on db and returns how many were applied.
func UpDB(ctx context.Context, db *sql.DB, d Dialect) (int, error) {
	p, err := provider(db, d)
	if err != nil {
		return 0, err
	}
	res, err := p.Up(ctx)
	if err != nil {
		return 0, fmt.Errorf("migrate %s: %w", d, err)
	}
	return len(res), nil
}

// Version reports the current schema version of db.
func Version(ctx context.Context, db *sql.DB, d Dialect) (int64, error) {
	p, err := provider(db, d)
	if err != nil {
		return 0, err
	}
	return p.GetDBVersion(ctx)
}
