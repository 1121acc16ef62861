package autocomplete

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bascanada/smartsearch/pkg/query"
)

func testCatalog() *Catalog {
	return NewCatalog(
		Tag{Key: "environment", Values: []string{"production", "staging"}},
		Tag{Key: "level", Values: []string{"error", "warning", "info"}},
		Tag{Key: "count", Kind: query.KindNumber},
		Tag{Key: "url"},
		Tag{Key: "release"},
		Tag{Key: "user"},
	)
}

func testFetchers(values []string, recent []RecentSearch) *Fetchers {
	return NewFetchers(FetchersOptions{
		Values: TagValueFetcherFunc(func(ctx context.Context, tag Tag, q string, params map[string]string) ([]string, error) {
			return values, nil
		}),
		Recent: RecentSearchFetcherFunc(func(ctx context.Context, q string) ([]RecentSearch, error) {
			return recent, nil
		}),
		Releases: ReleaseFetcherFunc(func(ctx context.Context, prefix string, limit int) ([]Release, error) {
			return []Release{{Version: "1.0.0"}, {Version: "1.1.0"}}, nil
		}),
		Debounce: time.Millisecond,
	})
}

func build(t *testing.T, b *Builder, text string, cursor int) Result {
	t.Helper()
	return b.Build(context.Background(), Request{
		Query:  text,
		Tree:   b.Catalog().Parse(text),
		Cursor: cursor,
	})
}

func itemValues(items []SearchItem) []string {
	values := make([]string, 0, len(items))
	for _, item := range items {
		values = append(values, item.Value)
	}
	return values
}

func groupKinds(groups []AutocompleteGroup) []ItemKind {
	kinds := make([]ItemKind, 0, len(groups))
	for _, g := range groups {
		kinds = append(kinds, g.Kind)
	}
	return kinds
}

func TestTagKeys(t *testing.T) {
	b := NewBuilder(NewCatalog(Tag{Key: "level"}, Tag{Key: "environment"}), nil, Options{})
	assert.Equal(t, []string{"environment"}, b.TagKeys("env"))
	assert.Equal(t, []string{"environment", "level"}, b.TagKeys(""))

	excluded := NewBuilder(NewCatalog(Tag{Key: "level"}, Tag{Key: "environment"}), nil, Options{ExcludeEnvironment: true})
	assert.Empty(t, excluded.TagKeys("env"))
	assert.Equal(t, []string{"level"}, excluded.TagKeys(""))
}

func TestTagKeys_NormalizeAndFuzzy(t *testing.T) {
	catalog := NewCatalog(Tag{Key: "event.type"}, Tag{Key: "level"})

	lower := NewBuilder(catalog, nil, Options{Normalize: func(s string) string { return s + "l" }})
	assert.Equal(t, []string{"level"}, lower.TagKeys("leve"))

	fuzzy := NewBuilder(catalog, nil, Options{Matcher: NewFuzzyMatcher()})
	assert.Equal(t, []string{"event.type"}, fuzzy.TagKeys("evty"))
}

func TestBuild_DefaultState(t *testing.T) {
	b := NewBuilder(testCatalog(), nil, Options{})

	res := build(t, b, "", 0)
	assert.Equal(t, StateDefault, res.State)
	require.Len(t, res.Groups, 1)
	assert.Equal(t, KindTagKey, res.Groups[0].Kind)
	assert.Contains(t, itemValues(res.Suggestions.Items), "level:")

	staged := NewBuilder(testCatalog(), nil, Options{
		DefaultItems: []SearchItem{{Value: "is:unresolved", Title: "Unresolved"}},
	})
	res = build(t, staged, "", 0)
	assert.Equal(t, []string{"is:unresolved"}, itemValues(res.Suggestions.Items))
	assert.Equal(t, KindDefault, res.Suggestions.Items[0].Kind)
}

func TestBuild_DefaultOnParseFailure(t *testing.T) {
	b := NewBuilder(testCatalog(), nil, Options{})
	res := build(t, b, `level:"oops`, 3)
	assert.Equal(t, StateDefault, res.State)
}

func TestBuild_RecentSearches(t *testing.T) {
	recent := []RecentSearch{{Query: "a"}, {Query: "b"}, {Query: "c"}, {Query: "d"}}
	b := NewBuilder(testCatalog(), testFetchers(nil, recent), Options{DisplayRecentSearches: true})

	res := build(t, b, "", 0)
	require.Len(t, res.Groups, 1)
	assert.Equal(t, []string{"a", "b", "c"}, itemValues(res.Groups[0].RecentSearchItems))

	last := res.Suggestions.Groups[len(res.Suggestions.Groups)-1]
	assert.Equal(t, KindRecentSearch, last.Kind)

	hidden := NewBuilder(testCatalog(), testFetchers(nil, recent), Options{})
	assert.Empty(t, build(t, hidden, "", 0).Groups[0].RecentSearchItems)
}

func TestBuild_ValueState(t *testing.T) {
	b := NewBuilder(testCatalog(), nil, Options{})

	res := build(t, b, "level:", 6)
	assert.Equal(t, StateValue, res.State)
	assert.Equal(t, "level", res.TagName)
	assert.Equal(t, []ItemKind{KindTagOperator, KindTagValue}, groupKinds(res.Groups))
	assert.Equal(t, []string{"error", "warning", "info"}, itemValues(res.Groups[1].SearchItems))

	res = build(t, b, "level:err", 9)
	assert.Equal(t, []ItemKind{KindTagValue}, groupKinds(res.Groups))
	assert.Equal(t, []string{"error"}, itemValues(res.Groups[0].SearchItems))
}

func TestBuild_ValueStateInList(t *testing.T) {
	b := NewBuilder(testCatalog(), nil, Options{})

	res := build(t, b, "level:[]", 7)
	assert.Equal(t, StateValue, res.State)
	assert.Equal(t, []string{"error", "warning", "info"}, itemValues(res.Groups[len(res.Groups)-1].SearchItems))

	res = build(t, b, "level:[error, warn]", 18)
	assert.Equal(t, []string{"warning"}, itemValues(res.Groups[len(res.Groups)-1].SearchItems))
}

func TestBuild_UnknownKey(t *testing.T) {
	opened := ""
	b := NewBuilder(testCatalog(), nil, Options{
		DocsURL:  "https://docs.example.com/search",
		OpenDocs: func(url string) { opened = url },
	})

	res := build(t, b, "foo:", 4)
	assert.Equal(t, StateValue, res.State)
	require.Equal(t, []ItemKind{KindInvalidTag}, groupKinds(res.Groups))

	item := res.Suggestions.Items[0]
	require.NotNil(t, item.Callback)
	item.Callback()
	assert.Equal(t, "https://docs.example.com/search", opened)
}

func TestBuild_KeyState(t *testing.T) {
	b := NewBuilder(testCatalog(), nil, Options{})

	res := build(t, b, "count:5", 2)
	assert.Equal(t, StateKey, res.State)
	assert.Equal(t, []ItemKind{KindTagKey}, groupKinds(res.Groups))
	assert.Equal(t, []string{"count:"}, itemValues(res.Groups[0].SearchItems))

	res = build(t, b, "count:5", 5)
	assert.Equal(t, []ItemKind{KindTagOperator, KindTagKey}, groupKinds(res.Groups))
	assert.Len(t, res.Groups[0].SearchItems, 6)
}

func TestBuild_OperatorState(t *testing.T) {
	b := NewBuilder(testCatalog(), nil, Options{})

	res := build(t, b, "!level:error", 0)
	assert.Equal(t, StateOperator, res.State)
	require.Equal(t, []ItemKind{KindTagOperator}, groupKinds(res.Groups))
	assert.Equal(t, []string{":", "!:"}, itemValues(res.Groups[0].SearchItems))
}

func TestBuild_FreeTextState(t *testing.T) {
	b := NewBuilder(testCatalog(), nil, Options{})

	res := build(t, b, "lev", 3)
	assert.Equal(t, StateFreeText, res.State)
	assert.Equal(t, []string{"level:"}, itemValues(res.Suggestions.Items))

	res = build(t, b, "!env", 4)
	assert.Equal(t, StateFreeText, res.State)
	assert.Equal(t, []string{"environment:"}, itemValues(res.Suggestions.Items))
}

func TestBuild_RemoteValues(t *testing.T) {
	b := NewBuilder(testCatalog(), testFetchers([]string{"/home", "/a b"}, nil), Options{})

	res := build(t, b, "url:", 4)
	assert.Equal(t, []string{"/home", `"/a b"`}, itemValues(res.Groups[len(res.Groups)-1].SearchItems))
}

func TestBuild_Releases(t *testing.T) {
	b := NewBuilder(testCatalog(), testFetchers(nil, nil), Options{})

	res := build(t, b, "release:", 8)
	assert.Equal(t, []string{"latest", "1.0.0", "1.1.0"}, itemValues(res.Groups[len(res.Groups)-1].SearchItems))
	assert.Equal(t, KindFirstRelease, res.Groups[len(res.Groups)-1].SearchItems[0].Kind)
}

func TestBuild_FetchFailureIsEmpty(t *testing.T) {
	var captured []error
	fetchers := NewFetchers(FetchersOptions{
		Values: TagValueFetcherFunc(func(ctx context.Context, tag Tag, q string, params map[string]string) ([]string, error) {
			return nil, errors.New("boom")
		}),
		Reporter: ReporterFunc(func(err error, context string) { captured = append(captured, err) }),
		Debounce: time.Millisecond,
	})
	b := NewBuilder(testCatalog(), fetchers, Options{})

	res := build(t, b, "url:x", 5)
	assert.Equal(t, StateValue, res.State)
	assert.Empty(t, res.Suggestions.Items)
	require.Len(t, captured, 1)
	assert.ErrorContains(t, captured[0], "boom")
}

func TestBuild_MaxQueryLength(t *testing.T) {
	b := NewBuilder(testCatalog(), nil, Options{MaxQueryLength: 10})

	res := build(t, b, "level:", 6)
	items := res.Groups[len(res.Groups)-1].SearchItems
	require.NotEmpty(t, items)

	exceeds := map[string]bool{}
	for _, item := range res.Suggestions.Items {
		exceeds[item.Value] = item.Exceeds
	}
	assert.False(t, exceeds["info"])
	assert.True(t, exceeds["warning"])
}
