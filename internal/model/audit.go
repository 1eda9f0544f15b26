package model

import (
	"fmt"
	"time"
)

// CheckStatus is the state of one checklist item within one audit.
type CheckStatus string

const (
	CheckPending       CheckStatus = "pending"
	CheckPassed        CheckStatus = "passed"
	CheckFailed        CheckStatus = "failed"
	CheckNotApplicable CheckStatus = "not_applicable"
)

// Valid reports whether the status is one of the known check states.
func (s CheckStatus) Valid() bool {
	switch s {
	case CheckPending, CheckPassed, CheckFailed, CheckNotApplicable:
		return true
	default:
		return false
	}
}

// ParseCheckStatus converts a wire value into a CheckStatus.
func ParseCheckStatus(s string) (CheckStatus, error) {
	status := CheckStatus(s)
	if !status.Valid() {
		return "", fmt.Errorf("invalid check status %q", s)
	}
	return status, nil
}

// AuditRecord is one complete audit session for a contract. A contract may
// accumulate any number of audits over time; history is preserved.
type AuditRecord struct {
	AuditDate      time.Time `json:"audit_date"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
	ID             string    `json:"id"`
	ContractID     string    `json:"contract_id"`
	Auditor        string    `json:"auditor"`
	Summary        string    `json:"summary,omitempty"`
	ContractSource *string   `json:"-"`
	OverallScore   float64   `json:"overall_score"`
}

// Validate ensures the audit record has the fields storage requires.
func (a *AuditRecord) Validate() error {
	if a.ID == "" {
		return fmt.Errorf("audit record missing ID")
	}
	if a.ContractID == "" {
		return fmt.Errorf("audit record missing contract ID")
	}
	if a.Auditor == "" {
		return fmt.Errorf("audit record missing auditor")
	}
	return nil
}

// AuditCheckRow is the mutable per-check state within a single audit. Exactly
// one row exists per (audit, catalog item) pair, created with the audit.
type AuditCheckRow struct {
	UpdatedAt    time.Time   `json:"updated_at"`
	ID           string      `json:"id"`
	AuditID      string      `json:"audit_id"`
	CheckID      string      `json:"check_id"`
	Status       CheckStatus `json:"status"`
	Notes        *string     `json:"notes,omitempty"`
	Evidence     *string     `json:"evidence,omitempty"`
	AutoDetected bool        `json:"auto_detected"`
}

// Validate ensures the check row has the fields storage requires.
func (r *AuditCheckRow) Validate() error {
	if r.ID == "" {
		return fmt.Errorf("check row missing ID")
	}
	if r.AuditID == "" {
		return fmt.Errorf("check row missing audit ID")
	}
	if r.CheckID == "" {
		return fmt.Errorf("check row missing check ID")
	}
	if !r.Status.Valid() {
		return fmt.Errorf("check row has invalid status %q", r.Status)
	}
	return nil
}
