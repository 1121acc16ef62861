package autocomplete

import "github.com/bascanada/smartsearch/pkg/query"

// Operator suggestion values. They are spliced right after the key.
const (
	OperatorIs             = ":"
	OperatorIsNot          = "!:"
	OperatorGreater        = ":>"
	OperatorLess           = ":<"
	OperatorGreaterOrEqual = ":>="
	OperatorLessOrEqual    = ":<="
)

var operatorDescriptions = map[string]string{
	OperatorIs:             "is",
	OperatorIsNot:          "is not",
	OperatorGreater:        "is greater than",
	OperatorLess:           "is less than",
	OperatorGreaterOrEqual: "is greater than or equal to",
	OperatorLessOrEqual:    "is less than or equal to",
}

// Operators lists the operators valid for a value kind.
func Operators(kind query.ValueKind) []string {
	switch kind {
	case query.KindNumber, query.KindDate:
		return []string{OperatorIs, OperatorIsNot, OperatorGreater, OperatorLess, OperatorGreaterOrEqual, OperatorLessOrEqual}
	default:
		return []string{OperatorIs, OperatorIsNot}
	}
}

// OperatorGroup is the operator section for a key.
func OperatorGroup(tagName string, kind query.ValueKind) AutocompleteGroup {
	ops := Operators(kind)
	items := make([]SearchItem, 0, len(ops))
	for _, op := range ops {
		items = append(items, SearchItem{
			Value:       op,
			Title:       tagName + op,
			Description: operatorDescriptions[op],
			Kind:        KindTagOperator,
		})
	}
	return AutocompleteGroup{
		SearchItems: items,
		TagName:     tagName,
		Kind:        KindTagOperator,
	}
}
