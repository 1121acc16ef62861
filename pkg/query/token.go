// Package query tokenizes search bar queries into a located token tree.
package query

// TokenKind represents the type of a token
type TokenKind int

const (
	TokenSpaces TokenKind = iota
	TokenFilter
	TokenFreeText
	TokenLogicBoolean
	TokenLogicGroup
	TokenKeySimple
	TokenValueText
	TokenValueTextList
)

var tokenKindNames = map[TokenKind]string{
	TokenSpaces:        "spaces",
	TokenFilter:        "filter",
	TokenFreeText:      "freeText",
	TokenLogicBoolean:  "logicBoolean",
	TokenLogicGroup:    "logicGroup",
	TokenKeySimple:     "keySimple",
	TokenValueText:     "valueText",
	TokenValueTextList: "valueTextList",
}

func (k TokenKind) String() string {
	if name, ok := tokenKindNames[k]; ok {
		return name
	}
	return "unknown"
}

// MarshalText lets token kinds serialize by name in JSON payloads.
func (k TokenKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// FilterType classifies a filter by the shape of the value it accepts
type FilterType int

const (
	FilterText FilterType = iota
	FilterTextIn
	FilterNumeric
	FilterBoolean
	FilterDate
)

func (f FilterType) String() string {
	switch f {
	case FilterTextIn:
		return "textIn"
	case FilterNumeric:
		return "numeric"
	case FilterBoolean:
		return "boolean"
	case FilterDate:
		return "date"
	default:
		return "text"
	}
}

// MarshalText lets filter types serialize by name in JSON payloads.
func (f FilterType) MarshalText() ([]byte, error) {
	return []byte(f.String()), nil
}

// ValueKind is the kind of value a key holds, as declared by the tag catalog
type ValueKind string

const (
	KindString  ValueKind = "string"
	KindNumber  ValueKind = "number"
	KindBoolean ValueKind = "boolean"
	KindDate    ValueKind = "date"
)

// Comparison operators accepted right after the key separator.
const (
	OpDefault          = ""
	OpEqual            = "="
	OpGreaterThan      = ">"
	OpLessThan         = "<"
	OpGreaterThanEqual = ">="
	OpLessThanEqual    = "<="
)

// NegationMarker prefixes a negated filter key.
const NegationMarker = "!"

// EmptyList is the canonical empty list placeholder.
const EmptyList = "[]"

// Location is a half-open byte range [Start, End) within the query.
type Location struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Contains reports whether a cursor sitting at pos is within the location.
// Both boundaries are inclusive: a cursor right after the last character
// is still inside.
func (l Location) Contains(pos int) bool {
	return pos >= l.Start && pos <= l.End
}

// Token is a node of the parsed query tree
type Token struct {
	Kind     TokenKind `json:"kind"`
	Location Location  `json:"location"`
	Text     string    `json:"text"`

	// Filter
	Key      *Token     `json:"key,omitempty"`
	Operator string     `json:"operator,omitempty"`
	Value    *Token     `json:"value,omitempty"`
	Negated  bool       `json:"negated,omitempty"`
	Filter   FilterType `json:"filter,omitempty"`
	Invalid  string     `json:"invalid,omitempty"`

	// ValueText: content without surrounding quotes
	Content string `json:"content,omitempty"`
	Quoted  bool   `json:"quoted,omitempty"`

	// ValueTextList
	Items []*Token `json:"items,omitempty"`

	// LogicGroup
	Inner []*Token `json:"inner,omitempty"`
}

// Children returns the direct sub-tokens in text order.
func (t *Token) Children() []*Token {
	switch t.Kind {
	case TokenFilter:
		children := make([]*Token, 0, 2)
		if t.Key != nil {
			children = append(children, t.Key)
		}
		if t.Value != nil {
			children = append(children, t.Value)
		}
		return children
	case TokenValueTextList:
		return t.Items
	case TokenLogicGroup:
		return t.Inner
	}
	return nil
}

// IsInvalid reports whether the parser flagged this filter.
func (t *Token) IsInvalid() bool {
	return t.Kind == TokenFilter && t.Invalid != ""
}

// KeyName returns the key of a filter token, empty for other kinds.
func (t *Token) KeyName() string {
	if t == nil || t.Key == nil {
		return ""
	}
	return t.Key.Text
}

// ParsedQuery is the root of a successful parse.
type ParsedQuery struct {
	Query  string   `json:"query"`
	Tokens []*Token `json:"tokens"`
}
