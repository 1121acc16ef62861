package autocomplete

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/bascanada/smartsearch/pkg/log"
	"github.com/bascanada/smartsearch/pkg/query"
)

const (
	// MaxRecentSearches is how many recent searches are suggested at once
	MaxRecentSearches = 3
	// ReleasePageSize is the number of releases asked per lookup
	ReleasePageSize = 50
	// DefaultCacheTTL is how long remote values are reused
	DefaultCacheTTL = 30 * time.Second
)

// RecentSearch is a previously submitted query
type RecentSearch struct {
	ID       string    `json:"id" yaml:"id"`
	Query    string    `json:"query" yaml:"query"`
	LastSeen time.Time `json:"lastSeen" yaml:"lastSeen"`
}

// Release is a version known to the release lookup
type Release struct {
	Version     string    `json:"version"`
	DateCreated time.Time `json:"dateCreated,omitempty"`
}

// TagValueFetcher looks up values of a key remotely
type TagValueFetcher interface {
	FetchTagValues(ctx context.Context, tag Tag, query string, params map[string]string) ([]string, error)
}

// TagValueFetcherFunc adapts a function to TagValueFetcher
type TagValueFetcherFunc func(ctx context.Context, tag Tag, query string, params map[string]string) ([]string, error)

func (f TagValueFetcherFunc) FetchTagValues(ctx context.Context, tag Tag, query string, params map[string]string) ([]string, error) {
	return f(ctx, tag, query, params)
}

// RecentSearchFetcher lists previous searches matching a query
type RecentSearchFetcher interface {
	FetchRecentSearches(ctx context.Context, query string) ([]RecentSearch, error)
}

// RecentSearchFetcherFunc adapts a function to RecentSearchFetcher
type RecentSearchFetcherFunc func(ctx context.Context, query string) ([]RecentSearch, error)

func (f RecentSearchFetcherFunc) FetchRecentSearches(ctx context.Context, query string) ([]RecentSearch, error) {
	return f(ctx, query)
}

// ReleaseFetcher lists releases whose version starts with a prefix
type ReleaseFetcher interface {
	FetchReleases(ctx context.Context, prefix string, limit int) ([]Release, error)
}

// ReleaseFetcherFunc adapts a function to ReleaseFetcher
type ReleaseFetcherFunc func(ctx context.Context, prefix string, limit int) ([]Release, error)

func (f ReleaseFetcherFunc) FetchReleases(ctx context.Context, prefix string, limit int) ([]Release, error) {
	return f(ctx, prefix, limit)
}

// RecentSearchSaver persists a submitted query
type RecentSearchSaver interface {
	SaveRecentSearch(ctx context.Context, query string) error
}

// RecentSearchSaverFunc adapts a function to RecentSearchSaver
type RecentSearchSaverFunc func(ctx context.Context, query string) error

func (f RecentSearchSaverFunc) SaveRecentSearch(ctx context.Context, query string) error {
	return f(ctx, query)
}

// FetchersOptions configures Fetchers
type FetchersOptions struct {
	Values   TagValueFetcher
	Recent   RecentSearchFetcher
	Releases ReleaseFetcher
	Reporter Reporter

	// Params are forwarded to every remote value lookup
	Params   map[string]string
	Debounce time.Duration
	CacheTTL time.Duration
}

// Fetchers resolves suggestions from the configured sources. Lookups are
// debounced and failures are reported, then treated as no results.
type Fetchers struct {
	opts FetchersOptions

	values   *Debouncer[string, []string]
	recent   *Debouncer[string, []RecentSearch]
	releases *Debouncer[string, []Release]
	cache    *cache.Cache

	mu sync.Mutex
	// noValueQuery remembers, per key, a prefix that returned nothing
	noValueQuery map[string]string
}

// NewFetchers creates the suggestion sources
func NewFetchers(opts FetchersOptions) *Fetchers {
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = DefaultCacheTTL
	}
	if opts.Reporter == nil {
		opts.Reporter = LogReporter{}
	}

	return &Fetchers{
		opts:         opts,
		values:       NewDebouncer[string, []string](opts.Debounce),
		recent:       NewDebouncer[string, []RecentSearch](opts.Debounce),
		releases:     NewDebouncer[string, []Release](opts.Debounce),
		cache:        cache.New(opts.CacheTTL, 2*opts.CacheTTL),
		noValueQuery: map[string]string{},
	}
}

// ResetNoValueQuery forgets the prefixes known to return nothing.
func (f *Fetchers) ResetNoValueQuery() {
	f.mu.Lock()
	f.noValueQuery = map[string]string{}
	f.mu.Unlock()
	f.cache.Flush()
}

// TagValues looks up values of a key remotely.
func (f *Fetchers) TagValues(ctx context.Context, tag Tag, text string) []string {
	if f.opts.Values == nil {
		return nil
	}

	f.mu.Lock()
	prefix, known := f.noValueQuery[tag.Key]
	f.mu.Unlock()
	if known && strings.HasPrefix(text, prefix) {
		log.Debug("skipping lookup of %s values for %q, %q had none", tag.Key, text, prefix)
		return nil
	}

	cacheKey := tag.Key + "\x00" + text
	if cached, ok := f.cache.Get(cacheKey); ok {
		return cached.([]string)
	}

	values, err := f.values.Do(ctx, cacheKey, func(ctx context.Context) ([]string, error) {
		return f.opts.Values.FetchTagValues(ctx, tag, text, f.opts.Params)
	})
	if errors.Is(err, ErrSuperseded) {
		return nil
	}
	if err != nil {
		f.opts.Reporter.Capture(fmt.Errorf("fetching values of %s: %w", tag.Key, err), "autocomplete.tagValues")
		return nil
	}

	f.mu.Lock()
	if len(values) == 0 && text != "" {
		f.noValueQuery[tag.Key] = text
	} else {
		delete(f.noValueQuery, tag.Key)
	}
	f.mu.Unlock()

	f.cache.Set(cacheKey, values, cache.DefaultExpiration)
	return values
}

// Releases looks up release versions starting with text.
func (f *Fetchers) Releases(ctx context.Context, text string) []string {
	if f.opts.Releases == nil {
		return nil
	}

	releases, err := f.releases.Do(ctx, text, func(ctx context.Context) ([]Release, error) {
		return f.opts.Releases.FetchReleases(ctx, text, ReleasePageSize)
	})
	if errors.Is(err, ErrSuperseded) {
		return nil
	}
	if err != nil {
		f.opts.Reporter.Capture(fmt.Errorf("fetching releases: %w", err), "autocomplete.releases")
		return nil
	}

	versions := make([]string, 0, len(releases))
	for _, r := range releases {
		versions = append(versions, r.Version)
	}
	return versions
}

// RecentSearches returns at most MaxRecentSearches previous searches.
func (f *Fetchers) RecentSearches(ctx context.Context, text string) []RecentSearch {
	if f.opts.Recent == nil {
		return nil
	}

	searches, err := f.recent.Do(ctx, text, func(ctx context.Context) ([]RecentSearch, error) {
		return f.opts.Recent.FetchRecentSearches(ctx, text)
	})
	if errors.Is(err, ErrSuperseded) {
		return nil
	}
	if err != nil {
		f.opts.Reporter.Capture(fmt.Errorf("fetching recent searches: %w", err), "autocomplete.recentSearches")
		return nil
	}

	if len(searches) > MaxRecentSearches {
		searches = searches[:MaxRecentSearches]
	}
	return searches
}

var implicitValues = map[query.ValueKind][]string{
	query.KindBoolean: {"true", "false"},
	query.KindDate:    {"-1h", "-24h", "-7d", "-14d", "-30d"},
}

// HasPredefinedValues reports whether values of the tag are known statically.
func HasPredefinedValues(tag Tag) bool {
	return tag.Predefined || len(tag.Values) > 0 || len(implicitValues[tag.ValueKind()]) > 0
}

// PredefinedValues filters the static values of a tag by substring.
func PredefinedValues(tag Tag, text string) []string {
	values := tag.Values
	if len(values) == 0 {
		values = implicitValues[tag.ValueKind()]
	}

	lower := strings.ToLower(text)
	matched := make([]string, 0, len(values))
	for _, v := range values {
		if text == "" || strings.Contains(strings.ToLower(v), lower) {
			matched = append(matched, v)
		}
	}

	if tag.MaxSuggestedValues > 0 && len(matched) > tag.MaxSuggestedValues {
		matched = matched[:tag.MaxSuggestedValues]
	}
	return matched
}

func mergeValues(lists ...[]string) []string {
	merged := []string{}
	for _, list := range lists {
		for _, v := range list {
			if !slices.Contains(merged, v) {
				merged = append(merged, v)
			}
		}
	}
	return merged
}
