package searchbar

import (
	"github.com/charmbracelet/bubbles/key"

	"github.com/bascanada/smartsearch/pkg/editor"
	"github.com/bascanada/smartsearch/pkg/query"
)

// ShortcutType identifies a token shortcut
type ShortcutType int

const (
	ShortcutDelete ShortcutType = iota
	ShortcutExclude
	ShortcutInclude
	ShortcutPrevious
	ShortcutNext
)

// Shortcut is a key combination editing the token under the cursor
type Shortcut struct {
	Type    ShortcutType
	Text    string
	Binding key.Binding

	canRun func(tok *query.Token, filterCount int) bool
	run    func(text string, tree *query.ParsedQuery, cursor int) editor.Edit
}

// Applies reports whether the shortcut can run for the token under the
// cursor and the number of filters in the query.
func (s Shortcut) Applies(tok *query.Token, filterCount int) bool {
	return s.canRun(tok, filterCount)
}

func isFilter(tok *query.Token) bool {
	return tok != nil && tok.Kind == query.TokenFilter
}

func moveTo(dir editor.Direction) func(string, *query.ParsedQuery, int) editor.Edit {
	return func(text string, tree *query.ParsedQuery, cursor int) editor.Edit {
		return editor.MoveToToken(text, tree, cursor, dir)
	}
}

// Shortcuts lists every token shortcut bound with the given keymap.
func Shortcuts(k KeyMap) []Shortcut {
	return []Shortcut{
		{
			Type:    ShortcutDelete,
			Text:    "Delete",
			Binding: k.DeleteToken,
			canRun:  func(tok *query.Token, _ int) bool { return isFilter(tok) },
			run:     editor.DeleteToken,
		},
		{
			Type:    ShortcutExclude,
			Text:    "Exclude",
			Binding: k.Negate,
			canRun:  func(tok *query.Token, _ int) bool { return isFilter(tok) && !tok.Negated },
			run:     editor.NegateToken,
		},
		{
			Type:    ShortcutInclude,
			Text:    "Include",
			Binding: k.Negate,
			canRun:  func(tok *query.Token, _ int) bool { return isFilter(tok) && tok.Negated },
			run:     editor.NegateToken,
		},
		{
			Type:    ShortcutPrevious,
			Text:    "Previous",
			Binding: k.PrevToken,
			canRun:  func(_ *query.Token, count int) bool { return count > 1 },
			run:     moveTo(editor.Previous),
		},
		{
			Type:    ShortcutNext,
			Text:    "Next",
			Binding: k.NextToken,
			canRun:  func(_ *query.Token, count int) bool { return count > 1 },
			run:     moveTo(editor.Next),
		},
	}
}
