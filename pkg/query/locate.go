package query

import "slices"

// Visit tells Walk how to proceed after a token was visited
type Visit int

const (
	// Continue descends into the children of the token
	Continue Visit = iota
	// Skip moves to the next sibling without descending
	Skip
	// Return stops the walk, returning the visited token
	Return
)

// Walk traverses the tree depth-first in text order. It returns the token
// for which fn answered Return, or nil once the tree is exhausted.
func Walk(tree *ParsedQuery, fn func(*Token) Visit) *Token {
	if tree == nil {
		return nil
	}
	return walk(tree.Tokens, fn)
}

func walk(tokens []*Token, fn func(*Token) Visit) *Token {
	for _, tok := range tokens {
		switch fn(tok) {
		case Return:
			return tok
		case Skip:
			continue
		}
		if found := walk(tok.Children(), fn); found != nil {
			return found
		}
	}
	return nil
}

// FindTokenAtCursor returns the first token of one of the given kinds whose
// location contains the cursor. Tokens of other kinds are only descended into.
func FindTokenAtCursor(tree *ParsedQuery, cursor int, kinds ...TokenKind) *Token {
	return Walk(tree, func(tok *Token) Visit {
		if !slices.Contains(kinds, tok.Kind) {
			return Continue
		}
		if tok.Location.Contains(cursor) {
			return Return
		}
		return Skip
	})
}

// CursorToken is the filter or free text under the cursor.
func CursorToken(tree *ParsedQuery, cursor int) *Token {
	return FindTokenAtCursor(tree, cursor, TokenFilter, TokenFreeText)
}

// CursorValue is the value text under the cursor, including list items.
func CursorValue(tree *ParsedQuery, cursor int) *Token {
	return FindTokenAtCursor(tree, cursor, TokenValueText)
}

// SearchTerm is the word being typed at the cursor, in absolute offsets
type SearchTerm struct {
	Start      int    `json:"start"`
	End        int    `json:"end"`
	SearchTerm string `json:"searchTerm"`
}

// CursorSearchTerm scans the token text around the cursor for the nearest
// space or colon on each side. A leading negation marker is not part of
// the term.
func CursorSearchTerm(tok *Token, cursor int) SearchTerm {
	text := tok.Text
	rel := min(max(cursor-tok.Location.Start, 0), len(text))

	start := rel
	for start > 0 && !isTermDelimiter(text[start-1]) {
		start--
	}
	end := rel
	for end < len(text) && !isTermDelimiter(text[end]) {
		end++
	}

	if start < end && text[start] == NegationMarker[0] {
		start++
	}

	return SearchTerm{
		Start:      tok.Location.Start + start,
		End:        tok.Location.Start + end,
		SearchTerm: text[start:end],
	}
}

func isTermDelimiter(ch byte) bool {
	return ch == ' ' || ch == ':'
}

// FilterTokens lists every filter of the tree, nested groups included.
func FilterTokens(tree *ParsedQuery) []*Token {
	filters := []*Token{}
	Walk(tree, func(tok *Token) Visit {
		if tok.Kind == TokenFilter {
			filters = append(filters, tok)
			return Skip
		}
		return Continue
	})
	return filters
}

// IsValid reports whether the query may be submitted. A query that failed
// to parse is considered valid, the backend has the final word on it.
func IsValid(tree *ParsedQuery) bool {
	invalid := Walk(tree, func(tok *Token) Visit {
		if tok.IsInvalid() {
			return Return
		}
		if tok.Kind == TokenFilter {
			return Skip
		}
		return Continue
	})
	return invalid == nil
}
