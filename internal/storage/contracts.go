package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/sorobanhub/registry/internal/common"
	"github.com/sorobanhub/registry/internal/model"
	"github.com/sorobanhub/registry/internal/service"
)

// SaveContract inserts a contract or updates its mutable fields.
func (s *SQLiteStorage) SaveContract(ctx context.Context, contract *model.Contract) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateContract(contract); err != nil {
		return err
	}
	return s.saveContractTx(ctx, s.db, contract)
}

func (s *SQLiteStorage) saveContractTx(ctx context.Context, q dbtx, contract *model.Contract) error {
	now := time.Now().UTC()
	if contract.CreatedAt.IsZero() {
		contract.CreatedAt = now
	}
	contract.UpdatedAt = now

	_, err := q.ExecContext(ctx, `
		INSERT INTO contracts (id, address, name, description, publisher, network, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			description = excluded.description,
			publisher = excluded.publisher,
			updated_at = excluded.updated_at
	`, contract.ID, contract.Address, contract.Name, contract.Description,
		contract.Publisher, string(contract.Network), contract.CreatedAt, contract.UpdatedAt)
	if err != nil {
		return fmt.Errorf("%w: saving contract: %v", common.ErrStorage, err)
	}
	return nil
}

// GetContract fetches a contract by its registry id.
func (s *SQLiteStorage) GetContract(ctx context.Context, id string) (*model.Contract, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(id, "id"); err != nil {
		return nil, err
	}
	return s.getContractTx(ctx, s.db, id)
}

func (s *SQLiteStorage) getContractTx(ctx context.Context, q dbtx, id string) (*model.Contract, error) {
	var contract model.Contract
	var network string
	err := q.QueryRowContext(ctx, `
		SELECT id, address, name, description, publisher, network, created_at, updated_at
		FROM contracts WHERE id = ?
	`, id).Scan(&contract.ID, &contract.Address, &contract.Name, &contract.Description,
		&contract.Publisher, &network, &contract.CreatedAt, &contract.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: contract %q", common.ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: fetching contract: %v", common.ErrStorage, err)
	}
	contract.Network = model.Network(network)
	return &contract, nil
}

// ListContracts returns one page of contracts plus the unpaged total.
func (s *SQLiteStorage) ListContracts(ctx context.Context, filter service.ContractFilter) ([]model.Contract, int64, error) {
	if err := validateContext(ctx); err != nil {
		return nil, 0, err
	}
	return s.listContractsTx(ctx, s.db, filter)
}

func (s *SQLiteStorage) listContractsTx(ctx context.Context, q dbtx, filter service.ContractFilter) ([]model.Contract, int64, error) {
	where := "WHERE 1=1"
	args := []any{}
	if filter.Query != "" {
		where += " AND (name LIKE ? OR address LIKE ?)"
		like := "%" + filter.Query + "%"
		args = append(args, like, like)
	}
	if filter.Network != "" {
		where += " AND network = ?"
		args = append(args, string(filter.Network))
	}

	var total int64
	if err := q.QueryRowContext(ctx, "SELECT COUNT(*) FROM contracts "+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("%w: counting contracts: %v", common.ErrStorage, err)
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize < 1 {
		pageSize = 20
	}
	listArgs := append(args, pageSize, (page-1)*pageSize)

	rows, err := q.QueryContext(ctx, `
		SELECT id, address, name, description, publisher, network, created_at, updated_at
		FROM contracts `+where+`
		ORDER BY created_at DESC, id
		LIMIT ? OFFSET ?
	`, listArgs...)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: listing contracts: %v", common.ErrStorage, err)
	}
	defer func() { _ = rows.Close() }()

	var contracts []model.Contract
	for rows.Next() {
		var contract model.Contract
		var network string
		if err := rows.Scan(&contract.ID, &contract.Address, &contract.Name, &contract.Description,
			&contract.Publisher, &network, &contract.CreatedAt, &contract.UpdatedAt); err != nil {
			return nil, 0, fmt.Errorf("%w: scanning contract: %v", common.ErrStorage, err)
		}
		contract.Network = model.Network(network)
		contracts = append(contracts, contract)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("%w: iterating contracts: %v", common.ErrStorage, err)
	}

	return contracts, total, nil
}
