package main

import (
	"context"
	"fmt"

	"github.com/sorobanhub/registry/internal/audit"
	"github.com/sorobanhub/registry/internal/catalog"
	"github.com/sorobanhub/registry/internal/common"
	"github.com/sorobanhub/registry/internal/config"
	"github.com/sorobanhub/registry/internal/service"
	"github.com/sorobanhub/registry/internal/storage"
)

// initStorage opens the configured database and runs migrations.
func initStorage(ctx context.Context) (service.Storage, error) {
	cfg := config.Load()

	store, err := storage.NewSQLiteStorage(cfg.DatabasePath)
	if err != nil {
		return nil, common.NewUserError(fmt.Sprintf("could not open the registry database at %s", cfg.DatabasePath), err)
	}

	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return store, nil
}

// initAuditService wires storage and the embedded checklist into an audit
// service. The caller owns closing the returned storage.
func initAuditService(ctx context.Context) (*audit.Service, service.Storage, error) {
	store, err := initStorage(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	cat, err := catalog.Load()
	if err != nil {
		_ = store.Close()
		return nil, nil, fmt.Errorf("failed to load checklist catalog: %w", err)
	}

	svc, err := audit.NewService(store, cat)
	if err != nil {
		_ = store.Close()
		return nil, nil, fmt.Errorf("failed to build audit service: %w", err)
	}

	return svc, store, nil
}
