package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sorobanhub/registry/internal/model"
	"github.com/sorobanhub/registry/internal/service"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// dbtx is the subset of database/sql shared by *sql.DB and *sql.Tx, so every
// query helper can run either standalone or inside a caller's transaction.
type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// SQLiteStorage implements the Storage interface using SQLite.
type SQLiteStorage struct {
	db     *sql.DB
	dbPath string
}

// NewSQLiteStorage creates a new SQLite storage instance.
func NewSQLiteStorage(dbPath string) (*SQLiteStorage, error) {
	if err := validateString(dbPath, "dbPath"); err != nil {
		return nil, err
	}

	// Ensure directory exists
	if dbPath != ":memory:" {
		dir := filepath.Dir(dbPath)
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite doesn't benefit from multiple connections
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &SQLiteStorage{
		db:     db,
		dbPath: dbPath,
	}, nil
}

// Close closes the database connection.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

// BeginTx starts a new database transaction.
func (s *SQLiteStorage) BeginTx(ctx context.Context) (service.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}

	return &sqliteTransaction{
		tx:      tx,
		storage: s,
	}, nil
}

// sqliteTransaction wraps sql.Tx to implement service.Transaction.
type sqliteTransaction struct {
	tx      *sql.Tx
	storage *SQLiteStorage
}

func (t *sqliteTransaction) Commit() error {
	return t.tx.Commit()
}

func (t *sqliteTransaction) Rollback() error {
	return t.tx.Rollback()
}

// Transaction methods delegate to the main storage with the transaction.
func (t *sqliteTransaction) SaveContract(ctx context.Context, contract *model.Contract) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateContract(contract); err != nil {
		return err
	}
	return t.storage.saveContractTx(ctx, t.tx, contract)
}

func (t *sqliteTransaction) GetContract(ctx context.Context, id string) (*model.Contract, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(id, "id"); err != nil {
		return nil, err
	}
	return t.storage.getContractTx(ctx, t.tx, id)
}

func (t *sqliteTransaction) ListContracts(ctx context.Context, filter service.ContractFilter) ([]model.Contract, int64, error) {
	if err := validateContext(ctx); err != nil {
		return nil, 0, err
	}
	return t.storage.listContractsTx(ctx, t.tx, filter)
}

func (t *sqliteTransaction) SaveAudit(ctx context.Context, audit *model.AuditRecord) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateAudit(audit); err != nil {
		return err
	}
	return t.storage.saveAuditTx(ctx, t.tx, audit)
}

func (t *sqliteTransaction) GetAudit(ctx context.Context, id string) (*model.AuditRecord, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(id, "id"); err != nil {
		return nil, err
	}
	return t.storage.getAuditTx(ctx, t.tx, id)
}

func (t *sqliteTransaction) ListAuditsByContract(ctx context.Context, contractID string) ([]model.AuditRecord, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(contractID, "contractID"); err != nil {
		return nil, err
	}
	return t.storage.listAuditsByContractTx(ctx, t.tx, contractID)
}

func (t *sqliteTransaction) GetLatestAudit(ctx context.Context, contractID string) (*model.AuditRecord, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(contractID, "contractID"); err != nil {
		return nil, err
	}
	return t.storage.getLatestAuditTx(ctx, t.tx, contractID)
}

func (t *sqliteTransaction) UpdateAuditScore(ctx context.Context, auditID string, score float64) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(auditID, "auditID"); err != nil {
		return err
	}
	return t.storage.updateAuditScoreTx(ctx, t.tx, auditID, score)
}

func (t *sqliteTransaction) DeleteAudit(ctx context.Context, id string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(id, "id"); err != nil {
		return err
	}
	return t.storage.deleteAuditTx(ctx, t.tx, id)
}

func (t *sqliteTransaction) SaveCheckRows(ctx context.Context, rows []model.AuditCheckRow) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateCheckRows(rows); err != nil {
		return err
	}
	return t.storage.saveCheckRowsTx(ctx, t.tx, rows)
}

func (t *sqliteTransaction) GetCheckRows(ctx context.Context, auditID string) ([]model.AuditCheckRow, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(auditID, "auditID"); err != nil {
		return nil, err
	}
	return t.storage.getCheckRowsTx(ctx, t.tx, auditID)
}

func (t *sqliteTransaction) GetCheckRow(ctx context.Context, auditID, checkID string) (*model.AuditCheckRow, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(auditID, "auditID"); err != nil {
		return nil, err
	}
	if err := validateString(checkID, "checkID"); err != nil {
		return nil, err
	}
	return t.storage.getCheckRowTx(ctx, t.tx, auditID, checkID)
}

func (t *sqliteTransaction) UpdateCheckRow(ctx context.Context, row *model.AuditCheckRow) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateCheckRow(row); err != nil {
		return err
	}
	return t.storage.updateCheckRowTx(ctx, t.tx, row)
}

func (t *sqliteTransaction) Migrate(_ context.Context) error {
	// Migrations should not be run within a transaction
	return fmt.Errorf("migrations cannot be run within a transaction")
}

func (t *sqliteTransaction) BeginTx(_ context.Context) (service.Transaction, error) {
	// Nested transactions not supported
	return nil, fmt.Errorf("nested transactions not supported")
}

func (t *sqliteTransaction) Close() error {
	// Transactions should be committed or rolled back, not closed
	return fmt.Errorf("transactions must be committed or rolled back, not closed")
}
