package config

import (
	"fmt"

	"github.com/bascanada/smartsearch/pkg/autocomplete"
	"github.com/bascanada/smartsearch/pkg/log"
	"github.com/bascanada/smartsearch/pkg/recent"
	"github.com/bascanada/smartsearch/pkg/remote"
)

// Engine is the autocomplete pipeline assembled from a config.
type Engine struct {
	Catalog  *autocomplete.Catalog
	Fetchers *autocomplete.Fetchers
	Builder  *autocomplete.Builder
	// Saver persists submitted searches, nil when nothing is configured
	Saver autocomplete.RecentSearchSaver
	// Recent lists past searches, nil when nothing is configured
	Recent autocomplete.RecentSearchFetcher
}

// EngineOptions carries the hooks that cannot come from a file.
type EngineOptions struct {
	Reporter autocomplete.Reporter
	OpenDocs func(url string)
}

// NewEngine wires the catalog, fetchers and builder. A remote API serves
// tag values and releases. Recent searches come from the remote API unless
// a local store is configured.
func (c *Config) NewEngine(opts EngineOptions) (*Engine, error) {
	if opts.Reporter == nil {
		opts.Reporter = autocomplete.LogReporter{}
	}

	fopts := autocomplete.FetchersOptions{
		Reporter: opts.Reporter,
		Debounce: c.DebounceDuration(),
		CacheTTL: c.CacheTTLDuration(),
	}

	e := &Engine{Catalog: autocomplete.NewCatalog(c.CatalogTags()...)}

	if c.Remote != nil {
		client := remote.GetClient(c.Remote.URL, remote.ClientOptions{
			Auth:     remote.HeaderAuth{Headers: c.Remote.Headers},
			Insecure: c.Remote.Insecure,
		})
		source := remote.NewSource(client, c.SaveScope)
		fopts.Values = source
		fopts.Releases = source
		fopts.Params = c.Remote.Params
		e.Recent, e.Saver = source, source
		log.Debug("suggestions served by %s", c.Remote.URL)
	}

	if c.Recent != nil {
		path := c.Recent.Path
		if path == "" {
			var err error
			if path, err = recent.DefaultPath(DefaultConfigDir); err != nil {
				return nil, fmt.Errorf("locating recent searches: %w", err)
			}
		}
		store := recent.NewStore(path, c.SaveScope, c.Recent.Max)
		e.Recent, e.Saver = store, store
		log.Debug("recent searches stored in %s", path)
	}
	fopts.Recent = e.Recent

	var matcher autocomplete.Matcher
	if c.FuzzyKeys {
		matcher = autocomplete.NewFuzzyMatcher()
	}

	defaultItems := make([]autocomplete.SearchItem, 0, len(c.DefaultItems))
	for _, item := range c.DefaultItems {
		title := item.Title
		if title == "" {
			title = item.Value
		}
		defaultItems = append(defaultItems, autocomplete.SearchItem{
			Value:       item.Value,
			Title:       title,
			Description: item.Description,
		})
	}

	e.Fetchers = autocomplete.NewFetchers(fopts)
	e.Builder = autocomplete.NewBuilder(e.Catalog, e.Fetchers, autocomplete.Options{
		MaxSearchItems:        c.MaxSearchItems,
		MaxQueryLength:        c.MaxQueryLength,
		DisplayRecentSearches: c.DisplayRecentSearches,
		ExcludeEnvironment:    c.ExcludeEnvironment,
		Normalize:             c.NormalizeFunc(),
		Matcher:               matcher,
		DefaultItems:          defaultItems,
		DocsURL:               c.DocsURL,
		OpenDocs:              opts.OpenDocs,
	})
	return e, nil
}

// Reload swaps in the tags of cfg and forgets cached lookups.
func (e *Engine) Reload(cfg *Config) {
	e.Catalog.Replace(cfg.CatalogTags())
	e.Fetchers.ResetNoValueQuery()
}
