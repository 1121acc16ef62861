package query

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

var relativeDate = regexp.MustCompile(`^[+-]?\d+[smhdw]$`)

var booleanValues = map[string]bool{
	"true": true, "false": true,
	"1": true, "0": true,
	"yes": true, "no": true,
}

// validate sets the filter type and flags filters whose value does not
// match the kind of their key. Without a KeyKindFunc every key is a string.
func (l *Lexer) validate(filter *Token) {
	kind := KindString
	if l.keyKind != nil {
		if k := l.keyKind(filter.Key.Text); k != "" {
			kind = k
		}
	}

	value := filter.Value
	if value.Kind == TokenValueTextList {
		if kind != KindString {
			filter.Filter = filterTypeOf(kind)
			filter.Invalid = "lists are only supported on text keys"
			return
		}
		filter.Filter = FilterTextIn
		if filter.Operator != OpDefault {
			filter.Invalid = "comparison operators are not supported on lists"
			return
		}
		if len(value.Items) == 0 {
			filter.Invalid = "list is empty"
		}
		return
	}

	filter.Filter = filterTypeOf(kind)
	if value.Text == "" {
		filter.Invalid = "filter must have a value"
		return
	}

	comparison := filter.Operator != OpDefault && filter.Operator != OpEqual
	switch kind {
	case KindNumber:
		if _, err := strconv.ParseFloat(value.Content, 64); err != nil {
			filter.Invalid = "expected a number"
		}
	case KindBoolean:
		if comparison {
			filter.Invalid = "comparison operators are not supported on boolean keys"
			return
		}
		if !booleanValues[strings.ToLower(value.Content)] {
			filter.Invalid = "expected true or false"
		}
	case KindDate:
		if !isDate(value.Content) {
			filter.Invalid = "expected a date"
		}
	default:
		if comparison {
			filter.Invalid = "comparison operators are not supported on text keys"
		}
	}
}

func filterTypeOf(kind ValueKind) FilterType {
	switch kind {
	case KindNumber:
		return FilterNumeric
	case KindBoolean:
		return FilterBoolean
	case KindDate:
		return FilterDate
	default:
		return FilterText
	}
}

func isDate(value string) bool {
	if relativeDate.MatchString(value) {
		return true
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if _, err := time.Parse(layout, value); err == nil {
			return true
		}
	}
	return false
}
