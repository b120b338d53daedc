// ABOUTME: Shared lipgloss styles for consistent terminal output
// ABOUTME: Defines colors, panels, status and amount styles used by commands and the chat screen

package styles

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	// Colors - Core palette
	Primary   = lipgloss.Color("#6366F1") // Indigo
	Secondary = lipgloss.Color("#10B981") // Green
	Warning   = lipgloss.Color("#F59E0B") // Amber
	Danger    = lipgloss.Color("#EF4444") // Red
	Muted     = lipgloss.Color("#6B7280") // Gray
	Text      = lipgloss.Color("#F9FAFB") // Light

	// Colors - Extended palette
	Accent  = lipgloss.Color("#818CF8") // Lighter indigo for highlights
	Surface = lipgloss.Color("#374151") // Elevated surface background
	Income  = lipgloss.Color("#10B981")
	Expense = lipgloss.Color("#F87171")

	// Base styles
	Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(Primary).
		MarginBottom(1)

	Subtitle = lipgloss.NewStyle().
			Foreground(Muted)

	// Status indicators
	StatusOK = lipgloss.NewStyle().
			Foreground(Secondary).
			Bold(true)

	StatusWarning = lipgloss.NewStyle().
			Foreground(Warning).
			Bold(true)

	StatusCritical = lipgloss.NewStyle().
			Foreground(Danger).
			Bold(true)

	// Panels
	Panel = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(Muted).
		Padding(0, 1)

	// Help text
	Help = lipgloss.NewStyle().
		Foreground(Muted).
		MarginTop(1)

	// Label/value pairs
	Label = lipgloss.NewStyle().
		Foreground(Muted).
		Width(14)

	ValueStyle = lipgloss.NewStyle().
			Foreground(Text).
			Bold(true)

	// Chat bubbles
	UserMessage = lipgloss.NewStyle().
			Foreground(Accent).
			Bold(true)

	AssistantMessage = lipgloss.NewStyle().
				Foreground(Text)

	IncomeStyle = lipgloss.NewStyle().
			Foreground(Income)

	ExpenseStyle = lipgloss.NewStyle().
			Foreground(Expense)
)

// KV renders an aligned "label  value" line.
func KV(label, value string) string {
	return Label.Render(label) + " " + ValueStyle.Render(value)
}

// BudgetBar renders how much of a budget is used. Colors shift at 80% and 100%.
func BudgetBar(percent float64, width int) string {
	filled := int(percent / 100.0 * float64(width))
	filled = max(0, min(filled, width))

	bar := strings.Repeat("█", filled) + strings.Repeat("░", width-filled)

	color := Secondary
	if percent >= 80 {
		color = Warning
	}
	if percent >= 100 {
		color = Danger
	}

	return lipgloss.NewStyle().Foreground(color).Render(bar)
}

// Amount styles an amount by transaction type.
func Amount(kind, formatted string) string {
	if kind == "income" {
		return IncomeStyle.Render("+" + formatted)
	}
	return ExpenseStyle.Render("-" + formatted)
}
