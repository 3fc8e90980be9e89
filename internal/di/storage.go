package di

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"

	"github.com/SantoNinoNZ/admin-sub000/internal/runtimeconfig"
)

// OpenDatabase opens a bun handle for the configured storage binding. Only
// sqlite is opened directly; postgres hosts own their *sql.DB pool and wrap
// it through NewPostgresDB.
func OpenDatabase(cfg runtimeconfig.StorageConfig) (*bun.DB, error) {
	switch cfg.Driver {
	case "sqlite":
		sqlDB, err := sql.Open("sqlite3", cfg.DSN)
		if err != nil {
			return nil, fmt.Errorf("open sqlite database: %w", err)
		}
		return bun.NewDB(sqlDB, sqlitedialect.New()), nil
	case "postgres":
		return nil, fmt.Errorf("postgres: pass the pool through NewPostgresDB and WithBunDB")
	case "":
		return nil, nil
	default:
		return nil, runtimeconfig.ErrStorageDriverUnknown
	}
}

// NewPostgresDB wraps a host-owned postgres pool with the bun dialect the
// repositories expect.
func NewPostgresDB(sqlDB *sql.DB) *bun.DB {
	return bun.NewDB(sqlDB, pgdialect.New())
}
