package query

import (
	"fmt"
	"unicode"
	"unicode/utf8"
)

// KeyKindFunc resolves the value kind declared for a key.
type KeyKindFunc func(key string) ValueKind

// Option configures a Lexer
type Option func(*Lexer)

// WithKeyKind makes the lexer validate filter values against the kind of their key.
func WithKeyKind(fn KeyKindFunc) Option {
	return func(l *Lexer) {
		l.keyKind = fn
	}
}

// Lexer turns a query string into a token tree
type Lexer struct {
	input   string
	pos     int
	depth   int
	keyKind KeyKindFunc
}

// NewLexer creates a new lexer for the given input
func NewLexer(input string, opts ...Option) *Lexer {
	l := &Lexer{input: input}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Parse tokenizes the whole input. A malformed query (unbalanced
// parentheses, unterminated quote or list) returns an error.
func (l *Lexer) Parse() (*ParsedQuery, error) {
	l.pos = 0
	l.depth = 0

	tokens, err := l.readSequence()
	if err != nil {
		return nil, err
	}
	if l.pos < len(l.input) {
		return nil, fmt.Errorf("unexpected '%c' at position %d", l.input[l.pos], l.pos)
	}

	return &ParsedQuery{Query: l.input, Tokens: tokens}, nil
}

// Parse is the total form of Lexer.Parse: it never panics and returns nil
// when the query cannot be parsed.
func Parse(input string, opts ...Option) (parsed *ParsedQuery) {
	defer func() {
		if r := recover(); r != nil {
			parsed = nil
		}
	}()

	parsed, err := NewLexer(input, opts...).Parse()
	if err != nil {
		return nil
	}
	return parsed
}

// readSequence reads tokens until the end of input or a closing parenthesis
func (l *Lexer) readSequence() ([]*Token, error) {
	tokens := []*Token{}

	for l.pos < len(l.input) {
		ch := l.input[l.pos]

		if isSpace(ch) {
			tokens = append(tokens, l.readSpaces())
			continue
		}

		if ch == '(' {
			group, err := l.readGroup()
			if err != nil {
				return nil, err
			}
			tokens = append(tokens, group)
			continue
		}

		if ch == ')' {
			if l.depth > 0 {
				return tokens, nil
			}
			return nil, fmt.Errorf("unexpected ')' at position %d", l.pos)
		}

		if tok := l.readBoolean(); tok != nil {
			tokens = append(tokens, tok)
			continue
		}

		filter, err := l.readFilter()
		if err != nil {
			return nil, err
		}
		if filter != nil {
			tokens = append(tokens, filter)
			continue
		}

		free, err := l.readFreeText()
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, free)
	}

	return tokens, nil
}

func (l *Lexer) readSpaces() *Token {
	start := l.pos
	for l.pos < len(l.input) && isSpace(l.input[l.pos]) {
		l.pos++
	}
	return l.token(TokenSpaces, start)
}

// readGroup reads a parenthesized group of tokens
func (l *Lexer) readGroup() (*Token, error) {
	start := l.pos
	l.pos++ // consume (
	l.depth++

	inner, err := l.readSequence()
	if err != nil {
		return nil, err
	}
	if l.pos >= len(l.input) || l.input[l.pos] != ')' {
		return nil, fmt.Errorf("expected ')' for group opened at position %d", start)
	}
	l.pos++ // consume )
	l.depth--

	group := l.token(TokenLogicGroup, start)
	group.Inner = inner
	return group, nil
}

// readBoolean reads AND / OR when they stand as a whole word
func (l *Lexer) readBoolean() *Token {
	for _, word := range []string{"AND", "OR"} {
		end := l.pos + len(word)
		if end > len(l.input) || l.input[l.pos:end] != word {
			continue
		}
		if end < len(l.input) && !isSpace(l.input[end]) && l.input[end] != ')' && l.input[end] != '(' {
			continue
		}
		start := l.pos
		l.pos = end
		return l.token(TokenLogicBoolean, start)
	}
	return nil
}

// readFilter tries to read "[!]key:[op]value". It returns nil without
// consuming input when the text at the cursor is not a filter.
func (l *Lexer) readFilter() (*Token, error) {
	start := l.pos
	keyStart := start
	negated := false
	if l.input[keyStart] == '!' {
		negated = true
		keyStart++
	}

	keyEnd := keyStart
	for keyEnd < len(l.input) && isKeyChar(l.input[keyEnd]) {
		keyEnd++
	}
	if keyEnd == keyStart || keyEnd >= len(l.input) || l.input[keyEnd] != ':' {
		return nil, nil
	}

	key := &Token{
		Kind:     TokenKeySimple,
		Location: Location{Start: keyStart, End: keyEnd},
		Text:     l.input[keyStart:keyEnd],
	}

	l.pos = keyEnd + 1 // consume :
	op := l.readOperator()

	value, err := l.readValue()
	if err != nil {
		return nil, err
	}

	filter := l.token(TokenFilter, start)
	filter.Key = key
	filter.Operator = op
	filter.Value = value
	filter.Negated = negated
	l.validate(filter)

	return filter, nil
}

// readOperator reads a comparison operator (longer operators first)
func (l *Lexer) readOperator() string {
	for _, op := range []string{OpGreaterThanEqual, OpLessThanEqual, OpGreaterThan, OpLessThan, OpEqual} {
		end := l.pos + len(op)
		if end <= len(l.input) && l.input[l.pos:end] == op {
			l.pos = end
			return op
		}
	}
	return OpDefault
}

// readValue reads an empty, bare, quoted or list value
func (l *Lexer) readValue() (*Token, error) {
	if l.pos >= len(l.input) || isSpace(l.input[l.pos]) || (l.depth > 0 && l.input[l.pos] == ')') {
		return &Token{Kind: TokenValueText, Location: Location{Start: l.pos, End: l.pos}}, nil
	}

	switch l.input[l.pos] {
	case '"':
		return l.readQuoted(TokenValueText)
	case '[':
		return l.readList()
	}

	start := l.pos
	for l.pos < len(l.input) && !l.atWordEnd() {
		l.pos++
	}
	value := l.token(TokenValueText, start)
	value.Content = value.Text
	return value, nil
}

// readList reads "[a, "b c", d]"
func (l *Lexer) readList() (*Token, error) {
	start := l.pos
	l.pos++ // consume [

	var items []*Token
	for {
		l.skipSpaces()
		if l.pos >= len(l.input) {
			return nil, fmt.Errorf("unterminated list starting at position %d", start)
		}

		switch l.input[l.pos] {
		case ']':
			l.pos++
			list := l.token(TokenValueTextList, start)
			list.Items = items
			return list, nil
		case ',':
			l.pos++
			continue
		case '"':
			item, err := l.readQuoted(TokenValueText)
			if err != nil {
				return nil, err
			}
			items = append(items, item)
		default:
			itemStart := l.pos
			for l.pos < len(l.input) && !isSpace(l.input[l.pos]) && l.input[l.pos] != ',' && l.input[l.pos] != ']' {
				l.pos++
			}
			item := l.token(TokenValueText, itemStart)
			item.Content = item.Text
			items = append(items, item)
		}
	}
}

// readQuoted reads a double quoted string, honoring backslash escapes
func (l *Lexer) readQuoted(kind TokenKind) (*Token, error) {
	start := l.pos
	l.pos++ // skip opening quote

	content := make([]byte, 0, 16)
	for l.pos < len(l.input) {
		ch := l.input[l.pos]
		if ch == '\\' && l.pos+1 < len(l.input) {
			content = append(content, l.input[l.pos+1])
			l.pos += 2
			continue
		}
		if ch == '"' {
			l.pos++ // skip closing quote
			tok := l.token(kind, start)
			tok.Content = string(content)
			tok.Quoted = true
			return tok, nil
		}
		content = append(content, ch)
		l.pos++
	}

	return nil, fmt.Errorf("unterminated quoted string starting at position %d", start)
}

// readFreeText reads a word or a quoted phrase
func (l *Lexer) readFreeText() (*Token, error) {
	if l.input[l.pos] == '"' {
		return l.readQuoted(TokenFreeText)
	}

	start := l.pos
	for l.pos < len(l.input) && !l.atWordEnd() {
		l.pos++
	}
	tok := l.token(TokenFreeText, start)
	tok.Content = tok.Text
	return tok, nil
}

func (l *Lexer) atWordEnd() bool {
	ch := l.input[l.pos]
	return isSpace(ch) || (l.depth > 0 && ch == ')')
}

func (l *Lexer) skipSpaces() {
	for l.pos < len(l.input) && isSpace(l.input[l.pos]) {
		l.pos++
	}
}

func (l *Lexer) token(kind TokenKind, start int) *Token {
	return &Token{
		Kind:     kind,
		Location: Location{Start: start, End: l.pos},
		Text:     l.input[start:l.pos],
	}
}

// isSpace only looks at ASCII whitespace so multi-byte characters are never split.
func isSpace(ch byte) bool {
	return ch < utf8.RuneSelf && unicode.IsSpace(rune(ch))
}

func isKeyChar(ch byte) bool {
	return (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') || (ch >= '0' && ch <= '9') ||
		ch == '_' || ch == '-' || ch == '.'
}
