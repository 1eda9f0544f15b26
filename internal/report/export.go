package report

import (
	"fmt"
	"strings"

	"github.com/sorobanhub/registry/internal/catalog"
	"github.com/sorobanhub/registry/internal/model"
	"github.com/sorobanhub/registry/internal/scoring"
)

var statusLabels = map[model.CheckStatus]string{
	model.CheckPassed:        "PASSED",
	model.CheckFailed:        "FAILED",
	model.CheckPending:       "PENDING",
	model.CheckNotApplicable: "N/A",
}

// Export renders the audit as a markdown document. Output is fully
// deterministic for fixed inputs: categories follow the fixed category order,
// checks follow catalog order, and all numbers use one decimal place.
//
// With FailuresOnly set, only failed checks are listed but the header and
// every category score line remain, so a clean audit still exports a usable
// summary.
func Export(audit model.AuditRecord, rows []model.AuditCheckRow, cat *catalog.Catalog, opts model.ExportOptions) string {
	overall, categoryScores := scoring.Compute(rows, cat)

	byCheckID := make(map[string]model.AuditCheckRow, len(rows))
	for _, row := range rows {
		byCheckID[row.CheckID] = row
	}

	var b strings.Builder
	b.WriteString("# Security Audit Report\n\n")
	fmt.Fprintf(&b, "- **Contract:** %s\n", audit.ContractID)
	fmt.Fprintf(&b, "- **Audit ID:** %s\n", audit.ID)
	fmt.Fprintf(&b, "- **Auditor:** %s\n", audit.Auditor)
	fmt.Fprintf(&b, "- **Date:** %s\n", audit.AuditDate.UTC().Format("2006-01-02 15:04 UTC"))
	fmt.Fprintf(&b, "- **Overall Score:** %.1f / 100 (%s)\n", overall, Badge(overall))
	if audit.Summary != "" {
		fmt.Fprintf(&b, "- **Summary:** %s\n", audit.Summary)
	}

	scoreByCategory := make(map[string]model.CategoryScore, len(categoryScores))
	for _, cs := range categoryScores {
		scoreByCategory[cs.Category] = cs
	}

	for _, category := range model.Categories {
		cs, ok := scoreByCategory[category.DisplayName()]
		if !ok {
			continue
		}

		fmt.Fprintf(&b, "\n## %s\n\n", category.DisplayName())
		fmt.Fprintf(&b, "Score: %.1f/100 (%d/%d passed)", cs.Score, cs.Passed, cs.Total)
		if cs.FailedCritical > 0 {
			fmt.Fprintf(&b, ", %d critical failed", cs.FailedCritical)
		}
		if cs.FailedHigh > 0 {
			fmt.Fprintf(&b, ", %d high failed", cs.FailedHigh)
		}
		b.WriteString("\n")

		for _, item := range cat.ByCategory(category) {
			row, ok := byCheckID[item.ID]
			if !ok {
				continue
			}
			if opts.FailuresOnly && row.Status != model.CheckFailed {
				continue
			}
			writeCheck(&b, item, row, opts)
		}
	}

	return b.String()
}

func writeCheck(b *strings.Builder, item model.ChecklistItem, row model.AuditCheckRow, opts model.ExportOptions) {
	fmt.Fprintf(b, "\n### [%s] %s: %s\n\n", statusLabels[row.Status], item.ID, item.Title)
	fmt.Fprintf(b, "- Severity: %s\n", item.Severity.DisplayName())
	fmt.Fprintf(b, "- Detection: %s\n", item.Detection.Type)
	if row.AutoDetected {
		b.WriteString("- Auto-detected: yes\n")
	}
	if row.Evidence != nil && *row.Evidence != "" {
		fmt.Fprintf(b, "- Evidence: `%s`\n", *row.Evidence)
	}
	if row.Notes != nil && *row.Notes != "" {
		fmt.Fprintf(b, "- Notes: %s\n", *row.Notes)
	}
	if opts.IncludeDescriptions && item.Description != "" {
		fmt.Fprintf(b, "- Description: %s\n", item.Description)
	}
	if row.Status == model.CheckFailed && item.Remediation != "" {
		fmt.Fprintf(b, "- Remediation: %s\n", item.Remediation)
	}
}
