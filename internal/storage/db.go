// Package storage implements bun-backed Postgres persistence for plan
// caches, learned phrase mappings, execution history, and navigation
// trees, grounded on the teacher's BunStore.
package storage

import (
	"context"
	"database/sql"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
)

// Store wraps a bun.DB with the models this module persists.
type Store struct {
	db *bun.DB
}

// NewStore opens a Postgres connection pool via dsn and wraps it in bun.
func NewStore(dsn string) *Store {
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	db := bun.NewDB(sqldb, pgdialect.New())
	return &Store{db: db}
}

// InitSchema creates every table this package owns if it does not exist.
func (s *Store) InitSchema(ctx context.Context) error {
	models := []interface{}{
		(*PlanCacheModel)(nil),
		(*LearnedMappingModel)(nil),
		(*ExecutionRecordModel)(nil),
		(*NavigationTreeModel)(nil),
	}
	for _, model := range models {
		if _, err := s.db.NewCreateTable().Model(model).IfNotExists().Exec(ctx); err != nil {
			return err
		}
	}
	return nil
}

// Ping checks connectivity to the underlying database.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close releases the underlying connection pool.
func (s *Store) Close() error {
	return s.db.Close()
}
