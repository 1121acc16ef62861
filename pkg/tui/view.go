// SPDX-License-Identifier: GPL-3.0-only
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/bascanada/smartsearch/pkg/autocomplete"
	"github.com/bascanada/smartsearch/pkg/query"
)

const prompt = "❯ "

// View renders the model
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if m.width == 0 {
		return "Loading..."
	}

	sections := []string{
		m.styles.Header.Render("smartsearch"),
		m.renderInput(),
	}
	if hints := m.renderShortcuts(); hints != "" {
		sections = append(sections, hints)
	}
	if m.Bar.IsOpen() && m.Bar.Focused() {
		sections = append(sections, m.renderDropdown())
	}
	if history := m.renderHistory(); history != "" {
		sections = append(sections, history)
	}
	sections = append(sections, m.renderStatusBar())
	h := m.help
	h.ShowAll = m.showHelp
	sections = append(sections, m.styles.HelpBar.Render(h.View(m.keys)))

	return m.styles.App.Render(lipgloss.JoinVertical(lipgloss.Left, sections...))
}

func (m Model) renderInput() string {
	var text string
	switch {
	case m.Bar.Query() == "" && !m.Bar.Focused():
		text = m.styles.Placeholder.Render(m.Bar.Input.Placeholder)
	case m.Bar.Query() == "":
		text = m.styles.Cursor.Render(" ") + m.styles.Placeholder.Render(m.Bar.Input.Placeholder)
	default:
		cur := -1
		if m.Bar.Focused() {
			cur = m.Bar.Cursor()
		}
		text = renderQuery(m.Bar.Query(), m.Bar.Tree(), cur, m.styles)
	}

	line := m.styles.Prompt.Render(prompt) + text
	if actions := m.renderActions(); actions != "" {
		line = lipgloss.JoinHorizontal(lipgloss.Top, line, "  ", actions)
	}

	style := m.styles.Container
	if m.Bar.Focused() {
		style = style.BorderForeground(ColorPrimary)
	}
	if w := m.width - style.GetHorizontalFrameSize(); w > 0 {
		style = style.Width(w)
	}
	return style.Render(line)
}

func (m Model) renderActions() string {
	inline, overflow := m.Bar.Actions()

	parts := make([]string, 0, len(inline)+1)
	for _, a := range inline {
		parts = append(parts, m.styles.Action.Render(a.Label+" "+a.Binding.Help().Key))
	}
	if len(overflow) > 0 {
		keys := make([]string, 0, len(overflow))
		for _, a := range overflow {
			keys = append(keys, a.Binding.Help().Key)
		}
		parts = append(parts, m.styles.Overflow.Render(fmt.Sprintf("⋯ %s", strings.Join(keys, " "))))
	}
	return strings.Join(parts, "")
}

func (m Model) renderShortcuts() string {
	if !m.Bar.Focused() {
		return ""
	}
	shortcuts := m.Bar.ApplicableShortcuts()
	if len(shortcuts) == 0 {
		return ""
	}

	parts := make([]string, 0, len(shortcuts))
	for _, s := range shortcuts {
		parts = append(parts, m.styles.ShortcutKey.Render(s.Binding.Help().Key)+" "+m.styles.Shortcut.Render(s.Text))
	}
	return " " + strings.Join(parts, m.styles.Shortcut.Render(" · "))
}

func (m Model) renderDropdown() string {
	suggestions := m.Bar.Suggestions()

	var lines []string
	if m.Bar.IsLoading() && len(suggestions.Items) == 0 {
		lines = append(lines, m.styles.Loading.Render("loading suggestions..."))
	}

	index := 0
	for _, group := range suggestions.Groups {
		lines = append(lines, m.styles.GroupTitle.Render(group.Title))
		for _, item := range group.Children {
			lines = append(lines, m.renderItem(item, index == m.Bar.Active()))
			index++
		}
	}
	if len(lines) == 0 {
		return ""
	}

	// keep room for the input, status and help lines
	if limit := m.height - 10; limit > 0 && len(lines) > limit {
		lines = lines[:limit]
	}

	style := m.styles.Dropdown
	if w := m.width - style.GetHorizontalFrameSize(); w > 0 {
		style = style.Width(w)
	}
	return style.Render(strings.Join(lines, "\n"))
}

func (m Model) renderItem(item autocomplete.SearchItem, active bool) string {
	title := item.Title
	if title == "" {
		title = item.Value
	}
	if item.Description != "" {
		title += " " + m.styles.Description.Render(item.Description)
	}

	switch {
	case item.Exceeds:
		return m.styles.Exceeds.Render(title)
	case active:
		return m.styles.SuggestionActive.Render("▸ " + title)
	default:
		return m.styles.Suggestion.Render("  " + title)
	}
}

func (m Model) renderHistory() string {
	history := m.History()
	if len(history) == 0 {
		return ""
	}

	lines := []string{m.styles.HistoryTitle.Render("Searches")}
	for _, q := range history {
		if q == "" {
			q = "(everything)"
		}
		lines = append(lines, m.styles.HistoryItem.Render(q))
	}
	return strings.Join(lines, "\n")
}

func (m Model) renderStatusBar() string {
	res := m.Bar.Result()

	parts := []string{"state: " + res.State.String()}
	if res.TagName != "" {
		parts = append(parts, "key: "+res.TagName)
	}
	if tree := m.Bar.Tree(); tree != nil {
		parts = append(parts, fmt.Sprintf("%d filters", len(query.FilterTokens(tree))))
	} else if m.Bar.Query() != "" {
		parts = append(parts, m.styles.Error.Render("does not parse"))
	}
	if !m.Bar.IsValid() {
		parts = append(parts, m.styles.Error.Render("invalid filters"))
	}
	if m.Bar.IsLoading() {
		parts = append(parts, m.styles.Loading.Render("loading"))
	}

	if s := m.session; s.status != "" {
		style := m.styles.Status
		if s.failed {
			style = m.styles.Error
		}
		parts = append(parts, style.Render(s.status))
	}

	style := m.styles.StatusBar
	if w := m.width - style.GetHorizontalFrameSize(); w > 0 {
		style = style.Width(w)
	}
	return style.Render(strings.Join(parts, " │ "))
}
