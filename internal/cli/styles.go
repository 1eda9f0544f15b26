// Package cli provides styled terminal output using lipgloss.
package cli

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/sorobanhub/registry/internal/model"
)

var (
	// PrimaryColor is the main theme color.
	PrimaryColor = lipgloss.Color("#7D56F4")
	// SuccessColor indicates passed checks and successful operations.
	SuccessColor = lipgloss.Color("#4ECDC4")
	// WarningColor indicates medium findings and caution messages.
	WarningColor = lipgloss.Color("#FFE66D")
	// ErrorColor indicates failed checks and errors.
	ErrorColor = lipgloss.Color("#FF6B6B")
	// InfoColor indicates informational messages.
	InfoColor = lipgloss.Color("#95E1D3")
	// SubtleColor indicates less prominent UI elements.
	SubtleColor = lipgloss.Color("#666666")

	// TitleStyle is used for section titles.
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(PrimaryColor).
			MarginBottom(1)

	// SuccessStyle formats success messages.
	SuccessStyle = lipgloss.NewStyle().
			Foreground(SuccessColor)

	// WarningStyle formats warning messages.
	WarningStyle = lipgloss.NewStyle().
			Foreground(WarningColor)

	// ErrorStyle formats error messages.
	ErrorStyle = lipgloss.NewStyle().
			Foreground(ErrorColor)

	// InfoStyle formats informational messages.
	InfoStyle = lipgloss.NewStyle().
			Foreground(InfoColor)

	// SubtleStyle formats less prominent text.
	SubtleStyle = lipgloss.NewStyle().
			Foreground(SubtleColor)

	// HeaderStyle is used for table headers.
	HeaderStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("86"))
)

// Icons.
const (
	SuccessIcon = "✓"
	ErrorIcon   = "✗"
	WarningIcon = "⚠"
	ShieldIcon  = "🛡"
)

// FormatSuccess formats a success message with icon.
func FormatSuccess(message string) string {
	return SuccessStyle.Render(SuccessIcon + " " + message)
}

// FormatError formats an error message with icon.
func FormatError(message string) string {
	return ErrorStyle.Render(ErrorIcon + " " + message)
}

// FormatTitle formats a section title with the shield icon.
func FormatTitle(title string) string {
	return TitleStyle.Render(ShieldIcon + " " + title)
}

var severityStyles = map[model.Severity]lipgloss.Style{
	model.SeverityInfo:     SubtleStyle,
	model.SeverityLow:      InfoStyle,
	model.SeverityMedium:   WarningStyle,
	model.SeverityHigh:     ErrorStyle,
	model.SeverityCritical: lipgloss.NewStyle().Bold(true).Foreground(ErrorColor),
}

// RenderSeverity colors a severity label by its rank.
func RenderSeverity(sev model.Severity) string {
	style, ok := severityStyles[sev]
	if !ok {
		return string(sev)
	}
	return style.Render(sev.DisplayName())
}

// RenderStatus colors a check status for terminal display.
func RenderStatus(status model.CheckStatus) string {
	switch status {
	case model.CheckPassed:
		return SuccessStyle.Render("PASSED")
	case model.CheckFailed:
		return ErrorStyle.Render("FAILED")
	case model.CheckNotApplicable:
		return SubtleStyle.Render("N/A")
	default:
		return WarningStyle.Render("PENDING")
	}
}

// RenderScore colors a 0-100 score and appends its badge.
func RenderScore(score float64, badge string) string {
	text := fmt.Sprintf("%.1f (%s)", score, badge)
	switch {
	case score >= 85:
		return SuccessStyle.Render(text)
	case score >= 55:
		return WarningStyle.Render(text)
	default:
		return ErrorStyle.Render(text)
	}
}
