package main

import (
	"context"
	"fmt"

	"github.com/and161185/tzaware/internal/config"
	"github.com/and161185/tzaware/internal/migrate"
	"github.com/and161185/tzaware/internal/repository"
	"github.com/and161185/tzaware/internal/repository/postgres"
	"github.com/and161185/tzaware/internal/repository/rediskv"
	"github.com/and161185/tzaware/internal/repository/sqlite"
	"github.com/and161185/tzaware/tzaware"
)

// store is an opened backend.
type store struct {
	repo    repository.EntryRepository
	migrate func(ctx context.Context) error
	close   func()
}

func openStore(ctx context.Context, cfg config.Config, policy tzaware.Policy) (*store, error) {
	switch cfg.Driver {
	case "postgres":
		db, err := postgres.New(ctx, cfg.DSN)
		if err != nil {
			return nil, err
		}
		return &store{
			repo:    postgres.NewEntryRepo(db, policy),
			migrate: func(ctx context.Context) error { return migrate.Up(ctx, cfg.DSN) },
			close:   db.Close,
		}, nil
	case "sqlite":
		db, err := sqlite.Open(ctx, cfg.DSN)
		if err != nil {
			return nil, err
		}
		return &store{
			repo: sqlite.NewEntryRepo(db, policy),
			migrate: func(ctx context.Context) error {
				_, err := migrate.UpDB(ctx, db, migrate.SQLite)
				return err
			},
			close: func() { _ = db.Close() },
		}, nil
	case "redis":
		c := rediskv.NewClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err := c.Ping(ctx).Err(); err != nil {
			_ = c.Close()
			return nil, err
		}
		return &store{
			repo:    rediskv.NewEntryRepo(c, cfg.Redis.Prefix, policy),
			migrate: func(context.Context) error { return nil },
			close:   func() { _ = c.Close() },
		}, nil
	}
	return nil, fmt.Errorf("unknown driver %q", cfg.Driver)
}
