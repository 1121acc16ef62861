// SPDX-License-Identifier: GPL-3.0-only
package tui

import (
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"

	"github.com/bascanada/smartsearch/pkg/query"
)

type class int

const (
	classPlain class = iota
	classKey
	classOperator
	classValue
	classNegation
	classInvalid
	classBoolean
	classParen
)

func (s Styles) class(c class) lipgloss.Style {
	switch c {
	case classKey:
		return s.Key
	case classOperator:
		return s.Operator
	case classValue:
		return s.Value
	case classNegation:
		return s.Negation
	case classInvalid:
		return s.Invalid
	case classBoolean:
		return s.Boolean
	case classParen:
		return s.Paren
	default:
		return s.FreeText
	}
}

// classify assigns a highlight class to every byte of the query.
func classify(text string, tree *query.ParsedQuery) []class {
	classes := make([]class, len(text))
	if tree == nil {
		return classes
	}
	paint := func(loc query.Location, c class) {
		for i := max(loc.Start, 0); i < loc.End && i < len(classes); i++ {
			classes[i] = c
		}
	}

	var visit func(tokens []*query.Token)
	visit = func(tokens []*query.Token) {
		for _, tok := range tokens {
			switch tok.Kind {
			case query.TokenFilter:
				if tok.IsInvalid() {
					paint(tok.Location, classInvalid)
					continue
				}
				paint(tok.Location, classOperator)
				if tok.Negated {
					paint(query.Location{Start: tok.Location.Start, End: tok.Location.Start + 1}, classNegation)
				}
				if tok.Key != nil {
					paint(tok.Key.Location, classKey)
				}
				if tok.Value != nil {
					if tok.Value.Kind == query.TokenValueTextList {
						paint(tok.Value.Location, classParen)
						for _, item := range tok.Value.Items {
							paint(item.Location, classValue)
						}
					} else {
						paint(tok.Value.Location, classValue)
					}
				}
			case query.TokenLogicBoolean:
				paint(tok.Location, classBoolean)
			case query.TokenLogicGroup:
				paint(tok.Location, classParen)
				visit(tok.Inner)
			}
		}
	}
	visit(tree.Tokens)
	return classes
}

// renderQuery highlights the query and draws the cursor at a byte offset.
// A negative cursor draws no cursor.
func renderQuery(text string, tree *query.ParsedQuery, cursor int, s Styles) string {
	classes := classify(text, tree)

	var b strings.Builder
	runStart := 0
	flush := func(end int) {
		if end > runStart {
			b.WriteString(s.class(classes[runStart]).Render(text[runStart:end]))
		}
		runStart = end
	}

	for i := 0; i < len(text); {
		_, size := utf8.DecodeRuneInString(text[i:])
		if i == cursor {
			flush(i)
			b.WriteString(s.Cursor.Render(text[i : i+size]))
			runStart = i + size
		} else if classes[i] != classes[runStart] {
			flush(i)
		}
		i += size
	}
	flush(len(text))

	if cursor >= len(text) {
		b.WriteString(s.Cursor.Render(" "))
	}
	return b.String()
}
