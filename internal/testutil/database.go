// Package testutil provides test utilities for the registry: in-memory
// databases with migrations applied and seeded fixtures for contracts.
package testutil

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/sorobanhub/registry/internal/model"
	"github.com/sorobanhub/registry/internal/service"
	"github.com/sorobanhub/registry/internal/storage"
)

// TestDB is an in-memory database handle for tests.
type TestDB struct {
	Storage service.Storage
	t       *testing.T
}

// SetupTestDB creates a new in-memory SQLite database, runs migrations, and
// registers cleanup on the test.
func SetupTestDB(t *testing.T) *TestDB {
	t.Helper()

	store, err := storage.NewSQLiteStorage(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	ctx := context.Background()
	if err := store.Migrate(ctx); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	t.Cleanup(func() {
		_ = store.Close()
	})

	return &TestDB{
		Storage: store,
		t:       t,
	}
}

// SeedContract inserts a testnet contract with generated identifiers and
// returns it. Fails the test on error.
func (db *TestDB) SeedContract(name string) *model.Contract {
	db.t.Helper()

	contract := &model.Contract{
		ID:        uuid.NewString(),
		Address:   "C" + uuid.NewString(),
		Name:      name,
		Publisher: "testutil",
		Network:   model.NetworkTestnet,
		CreatedAt: time.Now().UTC(),
	}
	if err := db.Storage.SaveContract(context.Background(), contract); err != nil {
		db.t.Fatalf("failed to seed contract %q: %v", name, err)
	}
	return contract
}

// WithTransaction executes fn inside a transaction that is always rolled
// back, so tests can exercise transactional paths without mutating state.
func (db *TestDB) WithTransaction(fn func(tx service.Transaction) error) error {
	tx, err := db.Storage.BeginTx(context.Background())
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() { _ = tx.Rollback() }()

	return fn(tx)
}
