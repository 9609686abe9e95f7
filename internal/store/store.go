// Package store opens the backend selected by DB_DRIVER.
package store

import (
	"context"
	"fmt"

	"shopledger-backend/internal/config"
	"shopledger-backend/internal/db"
	"shopledger-backend/internal/ports"
	"shopledger-backend/internal/repository"
	"shopledger-backend/internal/store/memory"
	"shopledger-backend/internal/store/sqlite"
)

// Open connects to the configured backend and makes sure its schema exists.
func Open(ctx context.Context, cfg config.Config) (ports.Store, error) {
	switch cfg.DBDriver {
	case config.DriverPostgres:
		pg, err := db.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		if err := pg.Migrate(ctx); err != nil {
			pg.Close()
			return nil, err
		}
		return repository.NewStore(pg), nil
	case config.DriverSQLite:
		s, err := sqlite.Open(cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		return s, nil
	case config.DriverMemory:
		return memory.New(), nil
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DBDriver)
	}
}
