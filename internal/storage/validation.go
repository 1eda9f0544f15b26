// Package storage provides the data persistence layer for the registry.
package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sorobanhub/registry/internal/model"
)

// Validation errors.
var (
	ErrNilContext      = errors.New("context cannot be nil")
	ErrEmptyString     = errors.New("string parameter cannot be empty")
	ErrNilParameter    = errors.New("parameter cannot be nil")
	ErrEmptySlice      = errors.New("slice cannot be empty")
	ErrInvalidContract = errors.New("invalid contract")
	ErrInvalidAudit    = errors.New("invalid audit record")
	ErrInvalidCheckRow = errors.New("invalid check row")
)

// validateContext ensures the context is not nil.
func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

// validateString ensures a string parameter is not empty.
func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

// validateContract validates a contract before persisting it.
func validateContract(contract *model.Contract) error {
	if contract == nil {
		return fmt.Errorf("%w: contract", ErrNilParameter)
	}
	if err := contract.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidContract, err)
	}
	return nil
}

// validateAudit validates an audit record before persisting it.
func validateAudit(audit *model.AuditRecord) error {
	if audit == nil {
		return fmt.Errorf("%w: audit", ErrNilParameter)
	}
	if err := audit.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidAudit, err)
	}
	return nil
}

// validateCheckRow validates a single check row.
func validateCheckRow(row *model.AuditCheckRow) error {
	if row == nil {
		return fmt.Errorf("%w: row", ErrNilParameter)
	}
	if err := row.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidCheckRow, err)
	}
	return nil
}

// validateCheckRows validates a slice of check rows.
func validateCheckRows(rows []model.AuditCheckRow) error {
	if rows == nil {
		return fmt.Errorf("%w: rows", ErrNilParameter)
	}
	if len(rows) == 0 {
		return fmt.Errorf("%w: rows", ErrEmptySlice)
	}

	for i, row := range rows {
		if err := validateCheckRow(&row); err != nil {
			return fmt.Errorf("check row at index %d: %w", i, err)
		}
	}
	return nil
}
