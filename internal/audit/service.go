// Package audit implements the security audit sessions: creating an audit
// with its full check set, applying automatic detection, handling manual
// check updates, and assembling reports.
package audit

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/sorobanhub/registry/internal/catalog"
	"github.com/sorobanhub/registry/internal/common"
	"github.com/sorobanhub/registry/internal/detect"
	"github.com/sorobanhub/registry/internal/model"
	"github.com/sorobanhub/registry/internal/report"
	"github.com/sorobanhub/registry/internal/scoring"
	"github.com/sorobanhub/registry/internal/service"
)

// Service coordinates audit sessions against the shared checklist catalog.
type Service struct {
	store    service.Storage
	catalog  *catalog.Catalog
	detector *detect.Detector
}

// NewService builds the audit service and its detector from the catalog.
func NewService(store service.Storage, cat *catalog.Catalog) (*Service, error) {
	detector, err := detect.New(cat)
	if err != nil {
		return nil, err
	}
	return &Service{
		store:    store,
		catalog:  cat,
		detector: detector,
	}, nil
}

// Catalog exposes the checklist items for read-only introspection.
func (s *Service) Catalog() []model.ChecklistItem {
	return s.catalog.Items()
}

// CreateAudit starts a new audit for a contract: one pending check row per
// catalog item, seeded by the detection engine when source code is supplied.
// The record and all of its rows are written in a single transaction; a
// partial check set can never become visible.
//
// Detection runs exactly once, here, against the snapshot of source code
// supplied at creation. It is never re-run on an existing audit.
func (s *Service) CreateAudit(ctx context.Context, contractID, auditor string, sourceCode *string) (*model.AuditResponse, error) {
	if strings.TrimSpace(auditor) == "" {
		return nil, fmt.Errorf("%w: auditor is required", common.ErrInvalidInput)
	}

	if _, err := s.store.GetContract(ctx, contractID); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	audit := model.AuditRecord{
		ID:             uuid.NewString(),
		ContractID:     contractID,
		ContractSource: sourceCode,
		Auditor:        auditor,
		AuditDate:      now,
	}

	rows := make([]model.AuditCheckRow, 0, s.catalog.Len())
	for _, item := range s.catalog.Items() {
		rows = append(rows, model.AuditCheckRow{
			ID:        uuid.NewString(),
			AuditID:   audit.ID,
			CheckID:   item.ID,
			Status:    model.CheckPending,
			UpdatedAt: now,
		})
	}

	if sourceCode != nil {
		s.applyDetection(rows, s.detector.Detect(*sourceCode))
	}

	overall, _ := scoring.Compute(rows, s.catalog)
	audit.OverallScore = overall

	tx, err := s.store.BeginTx(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	if err := tx.SaveAudit(ctx, &audit); err != nil {
		return nil, err
	}
	if err := tx.SaveCheckRows(ctx, rows); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("%w: committing audit: %v", common.ErrStorage, err)
	}

	common.LogInfo("audit created", common.Fields{
		"audit_id":    audit.ID,
		"contract_id": contractID,
		"checks":      len(rows),
		"scanned":     sourceCode != nil,
	})

	resp := report.BuildResponse(audit, rows, s.catalog)
	return &resp, nil
}

// applyDetection maps detection outcomes onto freshly created rows. The
// checklist describes vulnerability patterns, so a match means unresolved
// risk: matched items fail with the evidence attached. An automatic item
// with no match passes. A semi-automatic item with no match stays pending;
// it needs a human verdict and is never auto-passed.
func (s *Service) applyDetection(rows []model.AuditCheckRow, outcomes map[string]detect.Outcome) {
	for i := range rows {
		outcome, ok := outcomes[rows[i].CheckID]
		if !ok {
			// Manual item; detection leaves it untouched.
			continue
		}

		item, err := s.catalog.Get(rows[i].CheckID)
		if err != nil {
			continue
		}

		switch {
		case outcome.Matched:
			evidence := outcome.Evidence
			rows[i].Status = model.CheckFailed
			rows[i].AutoDetected = true
			rows[i].Evidence = &evidence
		case item.Detection.Type == model.DetectionAutomatic:
			rows[i].Status = model.CheckPassed
			rows[i].AutoDetected = true
		}
	}
}

// GetAudit returns the full report for an audit. Scores are recomputed from
// the current rows on every read.
func (s *Service) GetAudit(ctx context.Context, auditID string) (*model.AuditResponse, error) {
	audit, rows, err := s.fetch(ctx, auditID)
	if err != nil {
		return nil, err
	}
	resp := report.BuildResponse(*audit, rows, s.catalog)
	return &resp, nil
}

// UpdateCheck records a human verdict on one check. It is the only mutation
// path after creation; it always overrides detection results and clears the
// auto-detected flag. The audit's cached overall score is refreshed in the
// same transaction.
func (s *Service) UpdateCheck(ctx context.Context, auditID, checkID string, status model.CheckStatus, notes *string) (*model.CheckWithStatus, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("%w: check status %q", common.ErrInvalidInput, status)
	}

	item, err := s.catalog.Get(checkID)
	if err != nil {
		return nil, err
	}

	tx, err := s.store.BeginTx(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	row, err := tx.GetCheckRow(ctx, auditID, checkID)
	if err != nil {
		return nil, err
	}

	row.Status = status
	row.Notes = notes
	row.AutoDetected = false
	if err := tx.UpdateCheckRow(ctx, row); err != nil {
		return nil, err
	}

	rows, err := tx.GetCheckRows(ctx, auditID)
	if err != nil {
		return nil, err
	}
	overall, _ := scoring.Compute(rows, s.catalog)
	if err := tx.UpdateAuditScore(ctx, auditID, overall); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("%w: committing check update: %v", common.ErrStorage, err)
	}

	common.LogInfo("check updated", common.Fields{
		"audit_id": auditID,
		"check_id": checkID,
		"status":   status,
	})

	joined := report.JoinCheck(item, *row)
	return &joined, nil
}

// ExportAudit renders the audit as a markdown document.
func (s *Service) ExportAudit(ctx context.Context, auditID string, opts model.ExportOptions) (string, error) {
	audit, rows, err := s.fetch(ctx, auditID)
	if err != nil {
		return "", err
	}
	return report.Export(*audit, rows, s.catalog, opts), nil
}

// ListAudits returns the audit history of a contract, newest first.
func (s *Service) ListAudits(ctx context.Context, contractID string) ([]model.AuditRecord, error) {
	if _, err := s.store.GetContract(ctx, contractID); err != nil {
		return nil, err
	}
	return s.store.ListAuditsByContract(ctx, contractID)
}

// DeleteAudit removes an audit and its check rows.
func (s *Service) DeleteAudit(ctx context.Context, auditID string) error {
	return s.store.DeleteAudit(ctx, auditID)
}

// SecuritySummary returns the contract-card view of the latest audit. The
// cached overall score is used here; it is refreshed on every mutation.
func (s *Service) SecuritySummary(ctx context.Context, contractID string) (*model.ContractSecuritySummary, error) {
	if _, err := s.store.GetContract(ctx, contractID); err != nil {
		return nil, err
	}
	latest, err := s.store.GetLatestAudit(ctx, contractID)
	if err != nil {
		return nil, err
	}
	return &model.ContractSecuritySummary{
		AuditID:      latest.ID,
		AuditDate:    latest.AuditDate,
		Auditor:      latest.Auditor,
		OverallScore: latest.OverallScore,
		ScoreBadge:   report.Badge(latest.OverallScore),
	}, nil
}

func (s *Service) fetch(ctx context.Context, auditID string) (*model.AuditRecord, []model.AuditCheckRow, error) {
	audit, err := s.store.GetAudit(ctx, auditID)
	if err != nil {
		return nil, nil, err
	}
	rows, err := s.store.GetCheckRows(ctx, auditID)
	if err != nil {
		return nil, nil, err
	}
	return audit, rows, nil
}
