// Package autocomplete builds the suggestion groups shown under the search bar.
package autocomplete

// ItemKind categorizes a suggestion entry
type ItemKind int

const (
	// KindTagKey suggests a key, its value is "key:"
	KindTagKey ItemKind = iota
	// KindTagValue suggests a value for the key under the cursor
	KindTagValue
	// KindTagOperator suggests an operator (":", "!:", ":>", ...)
	KindTagOperator
	// KindRecentSearch replaces the whole query with a previous search
	KindRecentSearch
	// KindInvalidTag is shown when the key under the cursor is unknown
	KindInvalidTag
	// KindDefault is a configured suggestion shown on an empty query
	KindDefault
	// KindFirstRelease is the "latest" shortcut of release keys
	KindFirstRelease
)

var itemKindNames = map[ItemKind]string{
	KindTagKey:       "tagKey",
	KindTagValue:     "tagValue",
	KindTagOperator:  "tagOperator",
	KindRecentSearch: "recentSearch",
	KindInvalidTag:   "invalidTag",
	KindDefault:      "default",
	KindFirstRelease: "firstRelease",
}

func (k ItemKind) String() string {
	if name, ok := itemKindNames[k]; ok {
		return name
	}
	return "unknown"
}

// MarshalText lets item kinds serialize by name in JSON payloads.
func (k ItemKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText is the reverse of MarshalText.
func (k *ItemKind) UnmarshalText(text []byte) error {
	for kind, name := range itemKindNames {
		if name == string(text) {
			*k = kind
			return nil
		}
	}
	*k = KindDefault
	return nil
}

// SearchItem is a single suggestion entry
type SearchItem struct {
	Value       string   `json:"value" yaml:"value"`
	Title       string   `json:"title,omitempty" yaml:"title,omitempty"`
	Description string   `json:"description,omitempty" yaml:"description,omitempty"`
	Kind        ItemKind `json:"kind" yaml:"-"`

	// Callback runs instead of splicing Value into the query
	Callback func() `json:"-" yaml:"-"`

	IgnoreMaxSearchItems bool `json:"ignoreMaxSearchItems,omitempty" yaml:"ignoreMaxSearchItems,omitempty"`

	// Exceeds is set when inserting Value would go past the max query length
	Exceeds bool `json:"exceeds,omitempty" yaml:"-"`
}

// AutocompleteGroup is what a builder state produces before flattening
type AutocompleteGroup struct {
	SearchItems       []SearchItem `json:"searchItems"`
	RecentSearchItems []SearchItem `json:"recentSearchItems,omitempty"`
	TagName           string       `json:"tagName"`
	Kind              ItemKind     `json:"kind"`
}

// SearchGroup is a titled section of the dropdown
type SearchGroup struct {
	Title    string       `json:"title"`
	Kind     ItemKind     `json:"kind"`
	TagName  string       `json:"tagName,omitempty"`
	Children []SearchItem `json:"children"`
}

// Suggestions is the render-ordered dropdown: the sections and the flat list
// keyboard navigation indexes into.
type Suggestions struct {
	Groups []SearchGroup `json:"groups"`
	Items  []SearchItem  `json:"items"`
}

// NoLimit disables the item cap or the remaining characters budget.
const NoLimit = -1

func groupTitle(kind ItemKind, tagName string) string {
	switch kind {
	case KindTagKey:
		return "Keys"
	case KindTagValue:
		if tagName != "" {
			return "Values of " + tagName
		}
		return "Values"
	case KindTagOperator:
		return "Operators"
	case KindRecentSearch:
		return "Recent Searches"
	case KindInvalidTag:
		return "Unknown key"
	default:
		return "Suggested"
	}
}

// Flatten turns groups into dropdown sections. Groups keep their priority
// order, each followed by its recent searches. maxItems caps the total number
// of items, items flagged IgnoreMaxSearchItems survive the cap. Items whose
// value is longer than charsLeft are flagged Exceeds but kept.
func Flatten(groups []AutocompleteGroup, maxItems int, charsLeft int) Suggestions {
	out := Suggestions{Groups: []SearchGroup{}, Items: []SearchItem{}}
	taken := 0

	keep := func(items []SearchItem) []SearchItem {
		kept := make([]SearchItem, 0, len(items))
		for _, item := range items {
			if maxItems >= 0 && taken >= maxItems && !item.IgnoreMaxSearchItems {
				continue
			}
			if charsLeft >= 0 && len(item.Value) > charsLeft {
				item.Exceeds = true
			}
			kept = append(kept, item)
			taken++
		}
		return kept
	}

	add := func(group SearchGroup) {
		if len(group.Children) == 0 {
			return
		}
		out.Groups = append(out.Groups, group)
		out.Items = append(out.Items, group.Children...)
	}

	for _, g := range groups {
		add(SearchGroup{
			Title:    groupTitle(g.Kind, g.TagName),
			Kind:     g.Kind,
			TagName:  g.TagName,
			Children: keep(g.SearchItems),
		})
		add(SearchGroup{
			Title:    groupTitle(KindRecentSearch, ""),
			Kind:     KindRecentSearch,
			Children: keep(g.RecentSearchItems),
		})
	}

	return out
}
