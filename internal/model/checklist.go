// Package model defines the core domain models used throughout the application.
package model

// CheckCategory groups checklist items by the class of vulnerability they cover.
type CheckCategory string

const (
	CategoryInputValidation   CheckCategory = "input_validation"
	CategoryStateManagement   CheckCategory = "state_management"
	CategoryAccessControl     CheckCategory = "access_control"
	CategoryReentrancy        CheckCategory = "reentrancy"
	CategoryNumericalSafety   CheckCategory = "numerical_safety"
	CategoryAuthentication    CheckCategory = "authentication_authorization"
	CategoryDataSerialization CheckCategory = "data_serialization"
	CategoryErrorHandling     CheckCategory = "error_handling"
	CategoryStoragePatterns   CheckCategory = "storage_patterns"
	CategoryTokenSafety       CheckCategory = "token_safety"
	CategoryEventLogging      CheckCategory = "event_logging"
	CategoryUpgradeability    CheckCategory = "upgradeability"
	CategoryCrossContract     CheckCategory = "cross_contract_calls"
	CategoryResourceLimits    CheckCategory = "resource_limits"
)

// Categories lists every check category in report order. Report sections and
// category scores always follow this order.
var Categories = []CheckCategory{
	CategoryInputValidation,
	CategoryStateManagement,
	CategoryAccessControl,
	CategoryReentrancy,
	CategoryNumericalSafety,
	CategoryAuthentication,
	CategoryDataSerialization,
	CategoryErrorHandling,
	CategoryStoragePatterns,
	CategoryTokenSafety,
	CategoryEventLogging,
	CategoryUpgradeability,
	CategoryCrossContract,
	CategoryResourceLimits,
}

var categoryNames = map[CheckCategory]string{
	CategoryInputValidation:   "Input Validation",
	CategoryStateManagement:   "State Management",
	CategoryAccessControl:     "Access Control",
	CategoryReentrancy:        "Reentrancy",
	CategoryNumericalSafety:   "Numerical Safety",
	CategoryAuthentication:    "Authentication & Authorization",
	CategoryDataSerialization: "Data Serialization",
	CategoryErrorHandling:     "Error Handling",
	CategoryStoragePatterns:   "Storage Patterns",
	CategoryTokenSafety:       "Token Safety",
	CategoryEventLogging:      "Event Logging",
	CategoryUpgradeability:    "Upgradeability",
	CategoryCrossContract:     "Cross-Contract Calls",
	CategoryResourceLimits:    "Resource Limits",
}

// Valid reports whether the category is one of the known categories.
func (c CheckCategory) Valid() bool {
	_, ok := categoryNames[c]
	return ok
}

// DisplayName returns the human-readable category name used in reports.
func (c CheckCategory) DisplayName() string {
	if name, ok := categoryNames[c]; ok {
		return name
	}
	return string(c)
}

// Severity rates how damaging a failed check is.
type Severity string

const (
	SeverityInfo     Severity = "info"
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

var severityRanks = map[Severity]int{
	SeverityInfo:     0,
	SeverityLow:      1,
	SeverityMedium:   2,
	SeverityHigh:     3,
	SeverityCritical: 4,
}

// Valid reports whether the severity is one of the known levels.
func (s Severity) Valid() bool {
	_, ok := severityRanks[s]
	return ok
}

// Rank returns the severity's position in the Info < Low < Medium < High < Critical order.
func (s Severity) Rank() int {
	return severityRanks[s]
}

// DisplayName returns the capitalized severity label used in reports.
func (s Severity) DisplayName() string {
	switch s {
	case SeverityInfo:
		return "Info"
	case SeverityLow:
		return "Low"
	case SeverityMedium:
		return "Medium"
	case SeverityHigh:
		return "High"
	case SeverityCritical:
		return "Critical"
	default:
		return string(s)
	}
}

// DetectionType indicates how much tooling versus human judgment decides a check.
type DetectionType string

const (
	// DetectionAutomatic checks are decided purely by pattern matching.
	DetectionAutomatic DetectionType = "automatic"
	// DetectionManual checks must be reviewed by a human auditor.
	DetectionManual DetectionType = "manual"
	// DetectionSemiAutomatic checks are flagged by patterns but confirmed by a human.
	DetectionSemiAutomatic DetectionType = "semi_automatic"
)

// DetectionMethod describes how a checklist item is evaluated. Patterns is
// ordered and only meaningful for automatic and semi-automatic items.
type DetectionMethod struct {
	Type     DetectionType `json:"type" yaml:"type"`
	Patterns []string      `json:"patterns,omitempty" yaml:"patterns,omitempty"`
}

// PatternBased reports whether the detection engine evaluates this method.
func (d DetectionMethod) PatternBased() bool {
	switch d.Type {
	case DetectionAutomatic, DetectionSemiAutomatic:
		return true
	case DetectionManual:
		return false
	default:
		return false
	}
}

// ChecklistItem is one static entry in the security audit checklist. The
// catalog of items is loaded once at startup and shared read-only across
// every audit.
type ChecklistItem struct {
	ID          string          `json:"id" yaml:"id"`
	Category    CheckCategory   `json:"category" yaml:"category"`
	Title       string          `json:"title" yaml:"title"`
	Description string          `json:"description" yaml:"description"`
	Severity    Severity        `json:"severity" yaml:"severity"`
	Detection   DetectionMethod `json:"detection" yaml:"detection"`
	Remediation string          `json:"remediation" yaml:"remediation"`
	References  []string        `json:"references,omitempty" yaml:"references,omitempty"`
}
