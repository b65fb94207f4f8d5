package storage

import (
	"context"
	"fmt"

	"trendradar/internal/config"
	"trendradar/internal/domain/trend"
)

// Backend is a trend store that can also answer list queries
type Backend interface {
	trend.Store
	FindTrends(ctx context.Context, filter trend.Filter) ([]trend.Document, error)
}

// Open returns the configured backend and a function releasing its resources
func Open(ctx context.Context, cfg config.Config) (Backend, func(), error) {
	switch cfg.Store.Backend {
	case config.BackendFile:
		store, err := NewFileStore(cfg.Store.DataDir)
		if err != nil {
			return nil, nil, err
		}
		return store, func() {}, nil

	case config.BackendPostgres:
		db, err := Connect(ctx, cfg.Database)
		if err != nil {
			return nil, nil, err
		}
		store := NewTrendStore(db)
		if err := store.EnsureSchema(ctx); err != nil {
			db.Close()
			return nil, nil, err
		}
		return store, db.Close, nil

	default:
		return nil, nil, fmt.Errorf("unknown store backend: %s", cfg.Store.Backend)
	}
}
