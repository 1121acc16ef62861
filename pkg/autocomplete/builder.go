package autocomplete

import (
	"context"
	"fmt"
	"strings"

	"github.com/bascanada/smartsearch/pkg/query"
)

// State is what the cursor points at
type State int

const (
	StateDefault State = iota
	StateValue
	StateKey
	StateOperator
	StateFreeText
)

func (s State) String() string {
	switch s {
	case StateValue:
		return "value"
	case StateKey:
		return "key"
	case StateOperator:
		return "operator"
	case StateFreeText:
		return "freeText"
	default:
		return "default"
	}
}

// MarshalText lets states serialize by name in JSON payloads.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Options tunes the suggestions produced by a Builder
type Options struct {
	// MaxSearchItems caps the number of suggestions, 0 means no cap
	MaxSearchItems int
	// MaxQueryLength is used to flag suggestions that would not fit, 0 means no limit
	MaxQueryLength        int
	DisplayRecentSearches bool
	ExcludeEnvironment    bool
	// Normalize is applied to the search term before matching
	Normalize func(string) string
	// Matcher filters keys, substring matching when nil
	Matcher Matcher
	// DefaultItems replace the key list on an empty query
	DefaultItems []SearchItem
	DocsURL      string
	// OpenDocs is called when an unknown key suggestion is selected
	OpenDocs func(url string)
}

// Request is the query state suggestions are computed for
type Request struct {
	Query  string
	Tree   *query.ParsedQuery
	Cursor int
}

// Result holds the groups for a request and their flattened form
type Result struct {
	State       State               `json:"state"`
	TagName     string              `json:"tagName,omitempty"`
	Token       *query.Token        `json:"token,omitempty"`
	Groups      []AutocompleteGroup `json:"-"`
	Suggestions Suggestions         `json:"suggestions"`
}

// Builder decides which suggestions apply at the cursor
type Builder struct {
	catalog  *Catalog
	fetchers *Fetchers
	opts     Options
}

// NewBuilder creates a builder. fetchers may be nil, only static
// suggestions are produced then.
func NewBuilder(catalog *Catalog, fetchers *Fetchers, opts Options) *Builder {
	if opts.Matcher == nil {
		opts.Matcher = SubstringMatcher{}
	}
	if opts.Normalize == nil {
		opts.Normalize = func(s string) string { return s }
	}
	return &Builder{catalog: catalog, fetchers: fetchers, opts: opts}
}

// Catalog returns the tags the builder suggests from.
func (b *Builder) Catalog() *Catalog {
	return b.catalog
}

// Fetchers returns the suggestion sources, possibly nil.
func (b *Builder) Fetchers() *Fetchers {
	return b.fetchers
}

// Build computes the suggestions for the cursor position of the request.
func (b *Builder) Build(ctx context.Context, req Request) Result {
	res := b.groups(ctx, req)

	// recent searches follow the last section, except on operators and unknown keys
	if n := len(res.Groups); n > 0 && res.State != StateOperator && res.Groups[n-1].Kind != KindInvalidTag {
		res.Groups[n-1].RecentSearchItems = b.recentItems(ctx, req.Query)
	}

	maxItems := NoLimit
	if b.opts.MaxSearchItems > 0 {
		maxItems = b.opts.MaxSearchItems
	}
	charsLeft := NoLimit
	if b.opts.MaxQueryLength > 0 {
		charsLeft = max(b.opts.MaxQueryLength-len(req.Query), 0)
	}

	res.Suggestions = Flatten(res.Groups, maxItems, charsLeft)
	return res
}

func (b *Builder) groups(ctx context.Context, req Request) Result {
	tok := query.CursorToken(req.Tree, req.Cursor)
	if tok == nil {
		return Result{State: StateDefault, Groups: b.DefaultGroups()}
	}

	if tok.Kind == query.TokenFreeText {
		term := query.CursorSearchTerm(tok, req.Cursor).SearchTerm
		if term == "" {
			return Result{State: StateDefault, Groups: b.DefaultGroups()}
		}
		return Result{
			State:  StateFreeText,
			Token:  tok,
			Groups: []AutocompleteGroup{b.TagKeyGroup(term)},
		}
	}

	tagName := tok.KeyName()
	kind := b.catalog.KeyKind(tagName)
	res := Result{Token: tok, TagName: tagName}

	switch {
	case tok.Value != nil && tok.Value.Location.Contains(req.Cursor):
		res.State = StateValue
		values := b.ValueGroup(ctx, tagName, valueSearchText(req.Tree, req.Cursor))
		if req.Cursor == tok.Value.Location.Start && values.Kind != KindInvalidTag {
			res.Groups = append(res.Groups, OperatorGroup(tagName, kind))
		}
		res.Groups = append(res.Groups, values)

	case tok.Key != nil && tok.Key.Location.Contains(req.Cursor):
		res.State = StateKey
		if req.Cursor == tok.Key.Location.End {
			res.Groups = append(res.Groups, OperatorGroup(tagName, kind))
		}
		res.Groups = append(res.Groups, b.TagKeyGroup(tagName))

	default:
		res.State = StateOperator
		res.Groups = []AutocompleteGroup{OperatorGroup(tagName, kind)}
	}

	return res
}

// valueSearchText is the value typed at the cursor, without quotes.
func valueSearchText(tree *query.ParsedQuery, cursor int) string {
	value := query.CursorValue(tree, cursor)
	if value == nil || value.Text == query.EmptyList {
		return ""
	}
	if value.Quoted {
		return value.Content
	}
	return value.Text
}

// DefaultGroups is shown when the cursor is not on a token.
func (b *Builder) DefaultGroups() []AutocompleteGroup {
	if len(b.opts.DefaultItems) == 0 {
		return []AutocompleteGroup{b.TagKeyGroup("")}
	}

	items := make([]SearchItem, len(b.opts.DefaultItems))
	for i, item := range b.opts.DefaultItems {
		item.Kind = KindDefault
		items[i] = item
	}
	return []AutocompleteGroup{{
		SearchItems: items,
		Kind:        KindDefault,
	}}
}

// TagKeys returns the sorted keys matching the term.
func (b *Builder) TagKeys(term string) []string {
	term = b.opts.Normalize(term)

	keys := []string{}
	for _, key := range b.catalog.Keys() {
		if b.opts.ExcludeEnvironment && key == EnvironmentKey {
			continue
		}
		if term != "" && !b.opts.Matcher.Match(key, term) {
			continue
		}
		keys = append(keys, key)
	}
	return keys
}

// TagKeyGroup suggests keys matching the term.
func (b *Builder) TagKeyGroup(term string) AutocompleteGroup {
	keys := b.TagKeys(term)
	items := make([]SearchItem, 0, len(keys))
	for _, key := range keys {
		tag, _ := b.catalog.Get(key)
		items = append(items, SearchItem{
			Value:       key + ":",
			Title:       key,
			Description: tag.Description,
			Kind:        KindTagKey,
		})
	}

	return AutocompleteGroup{
		SearchItems: items,
		TagName:     term,
		Kind:        KindTagKey,
	}
}

// ValueGroup suggests values of a key. An unknown key yields a single
// invalid tag item pointing to the documentation.
func (b *Builder) ValueGroup(ctx context.Context, tagName, text string) AutocompleteGroup {
	tag, ok := b.catalog.Get(tagName)
	if !ok {
		return b.invalidTagGroup(tagName)
	}

	text = b.opts.Normalize(text)

	var items []SearchItem
	var values []string
	switch {
	case tag.IsRelease():
		if strings.Contains("latest", strings.ToLower(text)) {
			items = append(items, SearchItem{
				Value:       "latest",
				Title:       "latest",
				Description: "The most recent release",
				Kind:        KindFirstRelease,
			})
		}
		var releases []string
		if b.fetchers != nil {
			releases = b.fetchers.Releases(ctx, text)
		}
		values = mergeValues(PredefinedValues(tag, text), releases)
	case HasPredefinedValues(tag):
		values = PredefinedValues(tag, text)
	case b.fetchers != nil:
		values = b.fetchers.TagValues(ctx, tag, text)
	}

	for _, v := range values {
		items = append(items, SearchItem{
			Value: EscapeValue(v),
			Title: v,
			Kind:  KindTagValue,
		})
	}

	return AutocompleteGroup{
		SearchItems: items,
		TagName:     tagName,
		Kind:        KindTagValue,
	}
}

func (b *Builder) invalidTagGroup(tagName string) AutocompleteGroup {
	url := b.opts.DocsURL
	return AutocompleteGroup{
		SearchItems: []SearchItem{{
			Value:       tagName,
			Title:       fmt.Sprintf("The field %q isn't supported here", tagName),
			Description: "See all searchable properties in the docs",
			Kind:        KindInvalidTag,
			Callback: func() {
				if b.opts.OpenDocs != nil {
					b.opts.OpenDocs(url)
				}
			},
			IgnoreMaxSearchItems: true,
		}},
		TagName: tagName,
		Kind:    KindInvalidTag,
	}
}

func (b *Builder) recentItems(ctx context.Context, text string) []SearchItem {
	if !b.opts.DisplayRecentSearches || b.fetchers == nil {
		return nil
	}

	searches := b.fetchers.RecentSearches(ctx, text)
	items := make([]SearchItem, 0, len(searches))
	for _, s := range searches {
		items = append(items, SearchItem{
			Value: s.Query,
			Title: s.Query,
			Kind:  KindRecentSearch,
		})
	}
	return items
}

// EscapeValue quotes values that would not survive as a bare word.
func EscapeValue(value string) string {
	if value == "" || !strings.ContainsAny(value, " \t\"()[],") {
		return value
	}
	return `"` + strings.ReplaceAll(value, `"`, `\"`) + `"`
}
