package repo

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	DriverPostgres = "postgres"
	DriverMySQL    = "mysql"
	DriverSQLite   = "sqlite"
)

// Stores is one opened backend. The handle is long-lived and shared by every request.
type Stores struct {
	Tasks TaskRepository
	Users UserRepository

	migrate  func(context.Context) error
	rollback func(context.Context) error
	close    func()
}

func (s *Stores) Migrate(ctx context.Context) error { return s.migrate(ctx) }

func (s *Stores) Rollback(ctx context.Context) error { return s.rollback(ctx) }

func (s *Stores) Close() { s.close() }

func Open(ctx context.Context, driver, dsn string) (*Stores, error) {
	switch driver {
	case DriverPostgres, "":
		pool, err := pgxpool.New(ctx, dsn)
		if err != nil {
			return nil, fmt.Errorf("could not connect to postgres: %w", err)
		}
		if err := pool.Ping(ctx); err != nil {
			pool.Close()
			return nil, fmt.Errorf("could not ping postgres: %w", err)
		}
		return &Stores{
			Tasks:    NewTaskRepo(pool),
			Users:    NewUserRepo(pool),
			migrate:  func(ctx context.Context) error { return Migrate(ctx, pool) },
			rollback: func(ctx context.Context) error { return Rollback(ctx, pool) },
			close:    pool.Close,
		}, nil

	case DriverMySQL, DriverSQLite:
		db, err := sql.Open(driver, dsn)
		if err != nil {
			return nil, fmt.Errorf("could not open %s: %w", driver, err)
		}
		if driver == DriverSQLite && strings.Contains(dsn, ":memory:") {
			// every connection would get its own empty database
			db.SetMaxOpenConns(1)
		}
		if err := db.PingContext(ctx); err != nil {
			db.Close()
			return nil, fmt.Errorf("could not ping %s: %w", driver, err)
		}
		store := NewSQLStore(db, Dialect(driver))
		return &Stores{
			Tasks:    store,
			Users:    store,
			migrate:  store.Migrate,
			rollback: store.Rollback,
			close:    func() { store.Close() },
		}, nil
	}
	return nil, fmt.Errorf("unknown database driver %q", driver)
}
