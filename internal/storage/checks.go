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

// SaveCheckRows inserts the full check set for a new audit. Callers creating
// an audit should run this inside the same transaction as SaveAudit so the
// record and its rows land atomically.
func (s *SQLiteStorage) SaveCheckRows(ctx context.Context, rows []model.AuditCheckRow) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateCheckRows(rows); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: beginning transaction: %v", common.ErrStorage, err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := s.saveCheckRowsTx(ctx, tx, rows); err != nil {
		return err
	}

	return tx.Commit()
}

func (s *SQLiteStorage) saveCheckRowsTx(ctx context.Context, q dbtx, rows []model.AuditCheckRow) error {
	now := time.Now().UTC()
	for i := range rows {
		if rows[i].UpdatedAt.IsZero() {
			rows[i].UpdatedAt = now
		}
		_, err := q.ExecContext(ctx, `
			INSERT INTO audit_checks (id, audit_id, check_id, status, notes, auto_detected, evidence, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		`, rows[i].ID, rows[i].AuditID, rows[i].CheckID, string(rows[i].Status),
			rows[i].Notes, rows[i].AutoDetected, rows[i].Evidence, rows[i].UpdatedAt)
		if err != nil {
			return fmt.Errorf("%w: saving check row %q: %v", common.ErrStorage, rows[i].CheckID, err)
		}
	}
	return nil
}

const checkColumns = "id, audit_id, check_id, status, notes, auto_detected, evidence, updated_at"

func scanCheckRow(scan func(dest ...any) error) (*model.AuditCheckRow, error) {
	var row model.AuditCheckRow
	var status string
	err := scan(&row.ID, &row.AuditID, &row.CheckID, &status,
		&row.Notes, &row.AutoDetected, &row.Evidence, &row.UpdatedAt)
	if err != nil {
		return nil, err
	}
	row.Status = model.CheckStatus(status)
	return &row, nil
}

// GetCheckRows returns every check row of an audit.
func (s *SQLiteStorage) GetCheckRows(ctx context.Context, auditID string) ([]model.AuditCheckRow, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(auditID, "auditID"); err != nil {
		return nil, err
	}
	return s.getCheckRowsTx(ctx, s.db, auditID)
}

func (s *SQLiteStorage) getCheckRowsTx(ctx context.Context, q dbtx, auditID string) ([]model.AuditCheckRow, error) {
	rows, err := q.QueryContext(ctx, "SELECT "+checkColumns+" FROM audit_checks WHERE audit_id = ? ORDER BY check_id", auditID)
	if err != nil {
		return nil, fmt.Errorf("%w: listing check rows: %v", common.ErrStorage, err)
	}
	defer func() { _ = rows.Close() }()

	var out []model.AuditCheckRow
	for rows.Next() {
		row, scanErr := scanCheckRow(rows.Scan)
		if scanErr != nil {
			return nil, fmt.Errorf("%w: scanning check row: %v", common.ErrStorage, scanErr)
		}
		out = append(out, *row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating check rows: %v", common.ErrStorage, err)
	}
	return out, nil
}

// GetCheckRow returns one check row of an audit.
func (s *SQLiteStorage) GetCheckRow(ctx context.Context, auditID, checkID string) (*model.AuditCheckRow, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(auditID, "auditID"); err != nil {
		return nil, err
	}
	if err := validateString(checkID, "checkID"); err != nil {
		return nil, err
	}
	return s.getCheckRowTx(ctx, s.db, auditID, checkID)
}

func (s *SQLiteStorage) getCheckRowTx(ctx context.Context, q dbtx, auditID, checkID string) (*model.AuditCheckRow, error) {
	row := q.QueryRowContext(ctx, "SELECT "+checkColumns+" FROM audit_checks WHERE audit_id = ? AND check_id = ?", auditID, checkID)
	out, err := scanCheckRow(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: check %q in audit %q", common.ErrNotFound, checkID, auditID)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: fetching check row: %v", common.ErrStorage, err)
	}
	return out, nil
}

// UpdateCheckRow overwrites the mutable state of one check row.
func (s *SQLiteStorage) UpdateCheckRow(ctx context.Context, row *model.AuditCheckRow) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateCheckRow(row); err != nil {
		return err
	}
	return s.updateCheckRowTx(ctx, s.db, row)
}

func (s *SQLiteStorage) updateCheckRowTx(ctx context.Context, q dbtx, row *model.AuditCheckRow) error {
	row.UpdatedAt = time.Now().UTC()
	res, err := q.ExecContext(ctx, `
		UPDATE audit_checks
		SET status = ?, notes = ?, auto_detected = ?, evidence = ?, updated_at = ?
		WHERE audit_id = ? AND check_id = ?
	`, string(row.Status), row.Notes, row.AutoDetected, row.Evidence, row.UpdatedAt,
		row.AuditID, row.CheckID)
	if err != nil {
		return fmt.Errorf("%w: updating check row: %v", common.ErrStorage, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: updating check row: %v", common.ErrStorage, err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: check %q in audit %q", common.ErrNotFound, row.CheckID, row.AuditID)
	}
	return nil
}
