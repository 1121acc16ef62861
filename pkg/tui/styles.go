// SPDX-License-Identifier: GPL-3.0-only
package tui

import "github.com/charmbracelet/lipgloss"

// Color palette
var (
	ColorPrimary   = lipgloss.Color("#7C3AED") // Purple
	ColorSecondary = lipgloss.Color("#3B82F6") // Blue
	ColorSuccess   = lipgloss.Color("#22C55E") // Green
	ColorWarning   = lipgloss.Color("#F59E0B") // Amber
	ColorError     = lipgloss.Color("#EF4444") // Red
	ColorMuted     = lipgloss.Color("#6B7280") // Gray
	ColorBorder    = lipgloss.Color("#374151") // Dark gray
	ColorBg        = lipgloss.Color("#1F2937") // Dark background
	ColorText      = lipgloss.Color("#F9FAFB") // Light text
	ColorTextMuted = lipgloss.Color("#9CA3AF") // Muted text
)

// Styles contains all UI styles
type Styles struct {
	App       lipgloss.Style
	Header    lipgloss.Style
	StatusBar lipgloss.Style
	HelpBar   lipgloss.Style

	// Search input
	Container   lipgloss.Style
	Prompt      lipgloss.Style
	Placeholder lipgloss.Style
	Cursor      lipgloss.Style

	// Query highlighting
	Key      lipgloss.Style
	Operator lipgloss.Style
	Value    lipgloss.Style
	Negation lipgloss.Style
	Invalid  lipgloss.Style
	FreeText lipgloss.Style
	Boolean  lipgloss.Style
	Paren    lipgloss.Style

	// Dropdown
	Dropdown         lipgloss.Style
	GroupTitle       lipgloss.Style
	Suggestion       lipgloss.Style
	SuggestionActive lipgloss.Style
	Description      lipgloss.Style
	Exceeds          lipgloss.Style
	Loading          lipgloss.Style

	// Shortcuts and actions
	Shortcut    lipgloss.Style
	ShortcutKey lipgloss.Style
	Action      lipgloss.Style
	Overflow    lipgloss.Style

	// Submitted searches
	HistoryTitle lipgloss.Style
	HistoryItem  lipgloss.Style
	Status       lipgloss.Style
	Error        lipgloss.Style
}

// DefaultStyles creates the default style set
func DefaultStyles() Styles {
	return Styles{
		App: lipgloss.NewStyle(),

		Header: lipgloss.NewStyle().
			Background(ColorBg).
			Foreground(ColorText).
			Bold(true).
			Padding(0, 1),

		StatusBar: lipgloss.NewStyle().
			BorderStyle(lipgloss.NormalBorder()).
			BorderTop(true).
			BorderForeground(ColorBorder).
			Foreground(ColorTextMuted).
			Padding(0, 1),

		HelpBar: lipgloss.NewStyle().
			Foreground(ColorMuted).
			Padding(0, 1),

		Container: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorBorder).
			Padding(0, 1),
		Prompt: lipgloss.NewStyle().
			Foreground(ColorPrimary).
			Bold(true),
		Placeholder: lipgloss.NewStyle().
			Foreground(ColorMuted),
		Cursor: lipgloss.NewStyle().
			Reverse(true),

		Key: lipgloss.NewStyle().
			Foreground(ColorSecondary).
			Bold(true),
		Operator: lipgloss.NewStyle().
			Foreground(ColorWarning),
		Value: lipgloss.NewStyle().
			Foreground(ColorSuccess),
		Negation: lipgloss.NewStyle().
			Foreground(ColorPrimary).
			Bold(true),
		Invalid: lipgloss.NewStyle().
			Foreground(ColorError).
			Underline(true),
		FreeText: lipgloss.NewStyle().
			Foreground(ColorText),
		Boolean: lipgloss.NewStyle().
			Foreground(ColorWarning).
			Bold(true),
		Paren: lipgloss.NewStyle().
			Foreground(ColorTextMuted),

		Dropdown: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorBorder).
			Padding(0, 1),
		GroupTitle: lipgloss.NewStyle().
			Foreground(ColorTextMuted).
			Bold(true),
		Suggestion: lipgloss.NewStyle().
			Foreground(ColorText).
			Padding(0, 1),
		SuggestionActive: lipgloss.NewStyle().
			Background(ColorPrimary).
			Foreground(ColorText).
			Padding(0, 1),
		Description: lipgloss.NewStyle().
			Foreground(ColorMuted),
		Exceeds: lipgloss.NewStyle().
			Foreground(ColorMuted).
			Strikethrough(true).
			Padding(0, 1),
		Loading: lipgloss.NewStyle().
			Foreground(ColorPrimary).
			Italic(true),

		Shortcut: lipgloss.NewStyle().
			Foreground(ColorTextMuted),
		ShortcutKey: lipgloss.NewStyle().
			Foreground(ColorSecondary),
		Action: lipgloss.NewStyle().
			Background(ColorBorder).
			Foreground(ColorText).
			Padding(0, 1).
			MarginRight(1),
		Overflow: lipgloss.NewStyle().
			Foreground(ColorMuted),

		HistoryTitle: lipgloss.NewStyle().
			Foreground(ColorTextMuted).
			Bold(true).
			MarginTop(1),
		HistoryItem: lipgloss.NewStyle().
			Foreground(ColorText).
			PaddingLeft(2),
		Status: lipgloss.NewStyle().
			Foreground(ColorSuccess),
		Error: lipgloss.NewStyle().
			Foreground(ColorError),
	}
}
