package model

import "time"

// CheckWithStatus joins a checklist item's static metadata with its live
// state inside one audit. It is rebuilt on every read and never persisted.
type CheckWithStatus struct {
	// static catalog metadata
	ID            string   `json:"id"`
	Category      string   `json:"category"`
	Title         string   `json:"title"`
	Description   string   `json:"description"`
	Severity      string   `json:"severity"`
	DetectionType string   `json:"detection_type"`
	AutoPatterns  []string `json:"auto_patterns,omitempty"`
	Remediation   string   `json:"remediation"`
	References    []string `json:"references,omitempty"`

	// live audit state
	Status       CheckStatus `json:"status"`
	Notes        *string     `json:"notes,omitempty"`
	AutoDetected bool        `json:"auto_detected"`
	Evidence     *string     `json:"evidence,omitempty"`
}

// CategoryScore is the per-category breakdown of an audit score, derived
// from the current check rows on every read.
type CategoryScore struct {
	Category       string  `json:"category"`
	Score          float64 `json:"score"`
	Passed         int     `json:"passed"`
	Total          int     `json:"total"`
	FailedCritical int     `json:"failed_critical"`
	FailedHigh     int     `json:"failed_high"`
}

// AuditResponse is the full audit report: audit metadata, every check joined
// with its state, category scores, and the count of auto-detected rows.
type AuditResponse struct {
	Audit             AuditRecord       `json:"audit"`
	Checks            []CheckWithStatus `json:"checks"`
	CategoryScores    []CategoryScore   `json:"category_scores"`
	AutoDetectedCount int               `json:"auto_detected_count"`
}

// ContractSecuritySummary is the lightweight latest-audit view shown on
// contract cards.
type ContractSecuritySummary struct {
	AuditID      string    `json:"audit_id"`
	AuditDate    time.Time `json:"audit_date"`
	Auditor      string    `json:"auditor"`
	OverallScore float64   `json:"overall_score"`
	ScoreBadge   string    `json:"score_badge"`
}

// CreateAuditRequest is the payload for starting a new audit.
type CreateAuditRequest struct {
	Auditor    string  `json:"auditor"`
	SourceCode *string `json:"source_code,omitempty"`
}

// UpdateCheckRequest is the payload for a manual check update.
type UpdateCheckRequest struct {
	Status string  `json:"status"`
	Notes  *string `json:"notes,omitempty"`
}

// ExportOptions controls the markdown export rendering.
type ExportOptions struct {
	IncludeDescriptions bool
	FailuresOnly        bool
}
