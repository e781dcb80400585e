package main

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/sells-group/evidence-cli/internal/store"
)

// defaultSQLitePath is used when the sqlite driver has no database_url.
const defaultSQLitePath = "evidence.db"

func storeTables() store.Tables {
	return store.Tables{
		Leads:    cfg.Store.LeadsTable,
		Evidence: cfg.Store.EvidenceTable,
	}
}

func initStore(ctx context.Context) (store.Store, error) {
	switch cfg.Store.Driver {
	case "sqlite":
		dsn := cfg.Store.DatabaseURL
		if dsn == "" {
			dsn = defaultSQLitePath
		}
		return store.NewSQLite(dsn, storeTables())
	case "postgres":
		return store.NewPostgres(ctx, cfg.Store.DatabaseURL, storeTables(), &store.PoolConfig{
			MaxConns: cfg.Store.MaxConns,
			Password: cfg.Store.ServiceKey,
		})
	default:
		return nil, eris.Errorf("unsupported store driver: %s", cfg.Store.Driver)
	}
}
