// Package service defines the interfaces for all application services.
package service

import (
	"context"

	"github.com/sorobanhub/registry/internal/model"
)

// ContractFilter defines filtering options for contract listings.
type ContractFilter struct {
	Query    string
	Network  model.Network
	Page     int64
	PageSize int64
}

// Storage defines the contract for our persistence layer.
type Storage interface {
	// Contract operations
	SaveContract(ctx context.Context, contract *model.Contract) error
	GetContract(ctx context.Context, id string) (*model.Contract, error)
	ListContracts(ctx context.Context, filter ContractFilter) ([]model.Contract, int64, error)

	// Audit operations
	SaveAudit(ctx context.Context, audit *model.AuditRecord) error
	GetAudit(ctx context.Context, id string) (*model.AuditRecord, error)
	ListAuditsByContract(ctx context.Context, contractID string) ([]model.AuditRecord, error)
	UpdateAuditScore(ctx context.Context, auditID string, score float64) error
	DeleteAudit(ctx context.Context, id string) error
	GetLatestAudit(ctx context.Context, contractID string) (*model.AuditRecord, error)

	// Check row operations
	SaveCheckRows(ctx context.Context, rows []model.AuditCheckRow) error
	GetCheckRows(ctx context.Context, auditID string) ([]model.AuditCheckRow, error)
	GetCheckRow(ctx context.Context, auditID, checkID string) (*model.AuditCheckRow, error)
	UpdateCheckRow(ctx context.Context, row *model.AuditCheckRow) error

	// Database management
	Migrate(ctx context.Context) error
	BeginTx(ctx context.Context) (Transaction, error)
	Close() error
}

// Transaction represents a database transaction.
type Transaction interface {
	Commit() error
	Rollback() error
	// Include all Storage methods for use within transaction
	Storage
}
