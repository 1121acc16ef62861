// Package editor splices query text around the tokens of a parsed query.
// Every function is pure: it takes the current text, tree and cursor and
// returns the text and cursor to apply.
package editor

import (
	"slices"
	"strings"

	"github.com/bascanada/smartsearch/pkg/autocomplete"
	"github.com/bascanada/smartsearch/pkg/query"
)

// Edit is the outcome of an editing operation
type Edit struct {
	Query  string `json:"query"`
	Cursor int    `json:"cursor"`
	// Changed is false when the operation did not apply
	Changed bool `json:"changed"`
	// Submit asks the caller to run the search right away
	Submit bool `json:"submit,omitempty"`
}

// Direction of a token move
type Direction int

const (
	Next Direction = iota
	Previous
)

func unchanged(text string, cursor int) Edit {
	return Edit{Query: text, Cursor: cursor}
}

func splice(text string, start, end int, replacement string, cursor int) Edit {
	return Edit{
		Query:   text[:start] + replacement + text[end:],
		Cursor:  cursor,
		Changed: true,
	}
}

// DeleteToken removes the filter or free text under the cursor. Neighbors
// on both sides are kept apart by a single space.
func DeleteToken(text string, tree *query.ParsedQuery, cursor int) Edit {
	tok := query.CursorToken(tree, cursor)
	if tok == nil {
		return unchanged(text, cursor)
	}

	left := strings.TrimSpace(text[:tok.Location.Start])
	right := strings.TrimSpace(text[tok.Location.End:])

	sep := ""
	if left != "" && right != "" {
		sep = " "
	}

	return Edit{
		Query:   left + sep + right,
		Cursor:  len(left) + len(sep),
		Changed: true,
	}
}

// NegateToken toggles the negation marker of the filter under the cursor.
func NegateToken(text string, tree *query.ParsedQuery, cursor int) Edit {
	tok := query.CursorToken(tree, cursor)
	if tok == nil || tok.Kind != query.TokenFilter {
		return unchanged(text, cursor)
	}

	keyStart := tok.Key.Location.Start
	if tok.Negated {
		newCursor := cursor
		if cursor >= keyStart {
			newCursor--
		}
		return splice(text, keyStart-1, keyStart, "", newCursor)
	}

	newCursor := cursor
	if cursor >= keyStart {
		newCursor++
	}
	return splice(text, keyStart, keyStart, query.NegationMarker, newCursor)
}

// MoveToToken puts the cursor at the end of the next or previous filter.
// From outside a filter, or from the last one, it goes to the first filter
// in that direction.
func MoveToToken(text string, tree *query.ParsedQuery, cursor int, dir Direction) Edit {
	filters := query.FilterTokens(tree)
	if len(filters) == 0 {
		return unchanged(text, cursor)
	}
	if dir == Previous {
		slices.Reverse(filters)
	}

	target := filters[0]
	if tok := query.CursorToken(tree, cursor); tok != nil {
		if i := slices.Index(filters, tok); i >= 0 && i < len(filters)-1 {
			target = filters[i+1]
		}
	}

	return Edit{Query: text, Cursor: target.Location.End, Changed: target.Location.End != cursor}
}

// ExpandBrackets turns an empty filter value into an empty list, putting the
// cursor between the brackets. It applies when "[" is typed on an empty value.
func ExpandBrackets(text string, tree *query.ParsedQuery, cursor int) Edit {
	tok := query.CursorToken(tree, cursor)
	if tok == nil || tok.Kind != query.TokenFilter || tok.Value == nil {
		return unchanged(text, cursor)
	}
	value := tok.Value
	if value.Text != "" || !value.Location.Contains(cursor) {
		return unchanged(text, cursor)
	}

	clauseStart := value.Location.Start
	rest := text[value.Location.End:]
	if rest != "" && !startsWithSeparator(rest) {
		rest = " " + rest
	}

	return Edit{
		Query:   text[:clauseStart] + query.EmptyList + rest,
		Cursor:  clauseStart + 1,
		Changed: true,
	}
}

// AcceptRecent replaces the whole query with a recent search and asks for
// the search to run.
func AcceptRecent(item autocomplete.SearchItem) Edit {
	return Edit{
		Query:   item.Value,
		Cursor:  len(item.Value),
		Changed: true,
		Submit:  true,
	}
}

// Accept splices a suggestion into the query at the token under the cursor.
func Accept(text string, tree *query.ParsedQuery, cursor int, item autocomplete.SearchItem) Edit {
	if item.Kind == autocomplete.KindRecentSearch {
		return AcceptRecent(item)
	}

	tok := query.CursorToken(tree, cursor)
	if tok == nil {
		return splice(text, cursor, cursor, item.Value, cursor+len(item.Value))
	}

	switch tok.Kind {
	case query.TokenFreeText:
		term := query.CursorSearchTerm(tok, cursor)
		return splice(text, term.Start, term.End, item.Value, term.Start+len(item.Value))

	case query.TokenFilter:
		switch {
		case item.Kind == autocomplete.KindTagOperator:
			return acceptOperator(text, tok, item.Value)
		case tok.Value != nil && tok.Value.Location.Contains(cursor):
			return acceptValue(text, tree, tok, cursor, item.Value)
		case tok.Key != nil && tok.Key.Location.Contains(cursor):
			start := tok.Key.Location.Start
			end := min(tok.Key.Location.End+1, len(text))
			return splice(text, start, end, item.Value, start+len(item.Value))
		}
	}

	return unchanged(text, cursor)
}

// acceptOperator re-emits the key with the operator. "is not" negates the
// key rather than the operator.
func acceptOperator(text string, tok *query.Token, op string) Edit {
	replacement := tok.Key.Text + op
	if op == autocomplete.OperatorIsNot {
		replacement = query.NegationMarker + tok.Key.Text + autocomplete.OperatorIs
	}

	start := tok.Location.Start
	end := tok.Value.Location.Start
	return splice(text, start, end, replacement, start+len(replacement))
}

func acceptValue(text string, tree *query.ParsedQuery, tok *query.Token, cursor int, value string) Edit {
	if tok.KeyName() == autocomplete.UserKey && !strings.HasPrefix(value, `"`) {
		value = `"` + strings.TrimSpace(value) + `"`
	}

	if tok.Value.Kind == query.TokenValueTextList {
		item := query.CursorValue(tree, cursor)
		if item != nil {
			return splice(text, item.Location.Start, item.Location.End, value, item.Location.Start+len(value))
		}

		at := cursor
		if tok.Value.Text == query.EmptyList {
			at = tok.Value.Location.Start + 1
		}
		return splice(text, at, at, value, at+len(value))
	}

	start := tok.Value.Location.Start
	end := tok.Value.Location.End
	if end < len(text) && (text[end] == ' ' || text[end] == '\t' || text[end] == '\n') {
		end++
	}

	return splice(text, start, end, value+" ", start+len(value))
}

func startsWithSeparator(s string) bool {
	switch s[0] {
	case ' ', '\t', '\n', ')':
		return true
	}
	return false
}
