// Package report merges catalog metadata with live audit state into the
// externally consumable report shapes and renders the markdown export.
package report

import (
	"github.com/sorobanhub/registry/internal/catalog"
	"github.com/sorobanhub/registry/internal/model"
	"github.com/sorobanhub/registry/internal/scoring"
)

// JoinCheck combines one checklist item with its row state.
func JoinCheck(item model.ChecklistItem, row model.AuditCheckRow) model.CheckWithStatus {
	return model.CheckWithStatus{
		ID:            item.ID,
		Category:      item.Category.DisplayName(),
		Title:         item.Title,
		Description:   item.Description,
		Severity:      item.Severity.DisplayName(),
		DetectionType: string(item.Detection.Type),
		AutoPatterns:  item.Detection.Patterns,
		Remediation:   item.Remediation,
		References:    item.References,
		Status:        row.Status,
		Notes:         row.Notes,
		AutoDetected:  row.AutoDetected,
		Evidence:      row.Evidence,
	}
}

// BuildResponse assembles the full audit report. Checks are presented in
// catalog order regardless of storage order, scores are recomputed from the
// rows, and the record's cached overall score is refreshed for display so the
// two can never diverge on a read.
func BuildResponse(audit model.AuditRecord, rows []model.AuditCheckRow, cat *catalog.Catalog) model.AuditResponse {
	byCheckID := make(map[string]model.AuditCheckRow, len(rows))
	for _, row := range rows {
		byCheckID[row.CheckID] = row
	}

	checks := make([]model.CheckWithStatus, 0, len(rows))
	autoDetected := 0
	for _, item := range cat.Items() {
		row, ok := byCheckID[item.ID]
		if !ok {
			// Item was added to the catalog after this audit was created;
			// existing audits keep their creation-time check set.
			continue
		}
		if row.AutoDetected {
			autoDetected++
		}
		checks = append(checks, JoinCheck(item, row))
	}

	overall, categoryScores := scoring.Compute(rows, cat)
	audit.OverallScore = overall

	return model.AuditResponse{
		Audit:             audit,
		Checks:            checks,
		CategoryScores:    categoryScores,
		AutoDetectedCount: autoDetected,
	}
}
