package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/sorobanhub/registry/internal/common"
	"github.com/sorobanhub/registry/internal/model"
)

// SaveAudit inserts a new audit record.
func (s *SQLiteStorage) SaveAudit(ctx context.Context, audit *model.AuditRecord) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateAudit(audit); err != nil {
		return err
	}
	return s.saveAuditTx(ctx, s.db, audit)
}

func (s *SQLiteStorage) saveAuditTx(ctx context.Context, q dbtx, audit *model.AuditRecord) error {
	now := time.Now().UTC()
	if audit.CreatedAt.IsZero() {
		audit.CreatedAt = now
	}
	audit.UpdatedAt = now

	var summary *string
	if audit.Summary != "" {
		summary = &audit.Summary
	}

	_, err := q.ExecContext(ctx, `
		INSERT INTO security_audits (id, contract_id, contract_source, auditor, audit_date, overall_score, summary, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, audit.ID, audit.ContractID, audit.ContractSource, audit.Auditor, audit.AuditDate,
		audit.OverallScore, summary, audit.CreatedAt, audit.UpdatedAt)
	if err != nil {
		return fmt.Errorf("%w: saving audit: %v", common.ErrStorage, err)
	}
	return nil
}

// GetAudit fetches an audit record by id.
func (s *SQLiteStorage) GetAudit(ctx context.Context, id string) (*model.AuditRecord, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(id, "id"); err != nil {
		return nil, err
	}
	return s.getAuditTx(ctx, s.db, id)
}

const auditColumns = "id, contract_id, contract_source, auditor, audit_date, overall_score, summary, created_at, updated_at"

func scanAudit(scan func(dest ...any) error) (*model.AuditRecord, error) {
	var audit model.AuditRecord
	var summary sql.NullString
	err := scan(&audit.ID, &audit.ContractID, &audit.ContractSource, &audit.Auditor,
		&audit.AuditDate, &audit.OverallScore, &summary, &audit.CreatedAt, &audit.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if summary.Valid {
		audit.Summary = summary.String
	}
	return &audit, nil
}

func (s *SQLiteStorage) getAuditTx(ctx context.Context, q dbtx, id string) (*model.AuditRecord, error) {
	row := q.QueryRowContext(ctx, "SELECT "+auditColumns+" FROM security_audits WHERE id = ?", id)
	audit, err := scanAudit(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: audit %q", common.ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: fetching audit: %v", common.ErrStorage, err)
	}
	return audit, nil
}

// ListAuditsByContract returns every audit for a contract, newest first.
func (s *SQLiteStorage) ListAuditsByContract(ctx context.Context, contractID string) ([]model.AuditRecord, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(contractID, "contractID"); err != nil {
		return nil, err
	}
	return s.listAuditsByContractTx(ctx, s.db, contractID)
}

func (s *SQLiteStorage) listAuditsByContractTx(ctx context.Context, q dbtx, contractID string) ([]model.AuditRecord, error) {
	rows, err := q.QueryContext(ctx, "SELECT "+auditColumns+" FROM security_audits WHERE contract_id = ? ORDER BY audit_date DESC, id", contractID)
	if err != nil {
		return nil, fmt.Errorf("%w: listing audits: %v", common.ErrStorage, err)
	}
	defer func() { _ = rows.Close() }()

	var audits []model.AuditRecord
	for rows.Next() {
		audit, scanErr := scanAudit(rows.Scan)
		if scanErr != nil {
			return nil, fmt.Errorf("%w: scanning audit: %v", common.ErrStorage, scanErr)
		}
		audits = append(audits, *audit)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating audits: %v", common.ErrStorage, err)
	}
	return audits, nil
}

// GetLatestAudit returns the most recent audit for a contract.
func (s *SQLiteStorage) GetLatestAudit(ctx context.Context, contractID string) (*model.AuditRecord, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(contractID, "contractID"); err != nil {
		return nil, err
	}
	return s.getLatestAuditTx(ctx, s.db, contractID)
}

func (s *SQLiteStorage) getLatestAuditTx(ctx context.Context, q dbtx, contractID string) (*model.AuditRecord, error) {
	row := q.QueryRowContext(ctx, "SELECT "+auditColumns+" FROM security_audits WHERE contract_id = ? ORDER BY audit_date DESC, id LIMIT 1", contractID)
	audit, err := scanAudit(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: no audits for contract %q", common.ErrNotFound, contractID)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: fetching latest audit: %v", common.ErrStorage, err)
	}
	return audit, nil
}

// UpdateAuditScore refreshes the cached overall score on an audit record.
func (s *SQLiteStorage) UpdateAuditScore(ctx context.Context, auditID string, score float64) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(auditID, "auditID"); err != nil {
		return err
	}
	return s.updateAuditScoreTx(ctx, s.db, auditID, score)
}

func (s *SQLiteStorage) updateAuditScoreTx(ctx context.Context, q dbtx, auditID string, score float64) error {
	res, err := q.ExecContext(ctx, `
		UPDATE security_audits SET overall_score = ?, updated_at = ? WHERE id = ?
	`, score, time.Now().UTC(), auditID)
	if err != nil {
		return fmt.Errorf("%w: updating audit score: %v", common.ErrStorage, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: updating audit score: %v", common.ErrStorage, err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: audit %q", common.ErrNotFound, auditID)
	}
	return nil
}

// DeleteAudit removes an audit; its check rows cascade.
func (s *SQLiteStorage) DeleteAudit(ctx context.Context, id string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(id, "id"); err != nil {
		return err
	}
	return s.deleteAuditTx(ctx, s.db, id)
}

func (s *SQLiteStorage) deleteAuditTx(ctx context.Context, q dbtx, id string) error {
	res, err := q.ExecContext(ctx, "DELETE FROM security_audits WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("%w: deleting audit: %v", common.ErrStorage, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: deleting audit: %v", common.ErrStorage, err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: audit %q", common.ErrNotFound, id)
	}
	return nil
}
