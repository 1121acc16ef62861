package autocomplete

import (
	"sort"
	"sync"

	"github.com/bascanada/smartsearch/pkg/query"
)

// Keys handled by the release fetcher
const (
	ReleaseKey      = "release"
	FirstReleaseKey = "firstRelease"
	EnvironmentKey  = "environment"
	// UserKey values are always quoted, they may contain the key separator
	UserKey = "user"
)

// Tag describes a searchable key
type Tag struct {
	Key         string          `json:"key" yaml:"key"`
	Name        string          `json:"name,omitempty" yaml:"name,omitempty"`
	Description string          `json:"description,omitempty" yaml:"description,omitempty"`
	Kind        query.ValueKind `json:"kind,omitempty" yaml:"kind,omitempty"`
	// Values are the statically known values of the key
	Values []string `json:"values,omitempty" yaml:"values,omitempty"`
	// Predefined makes the key suggest from Values only, without remote lookup
	Predefined         bool `json:"predefined,omitempty" yaml:"predefined,omitempty"`
	MaxSuggestedValues int  `json:"maxSuggestedValues,omitempty" yaml:"maxSuggestedValues,omitempty"`
}

// ValueKind defaults to string.
func (t Tag) ValueKind() query.ValueKind {
	if t.Kind == "" {
		return query.KindString
	}
	return t.Kind
}

// IsRelease reports whether values come from the release fetcher.
func (t Tag) IsRelease() bool {
	return t.Key == ReleaseKey || t.Key == FirstReleaseKey
}

// Catalog is the set of searchable keys. It is safe for concurrent use and
// is swapped as a whole when the configuration is reloaded.
type Catalog struct {
	mu   sync.RWMutex
	tags map[string]Tag
}

// NewCatalog creates a catalog from a list of tags
func NewCatalog(tags ...Tag) *Catalog {
	c := &Catalog{}
	c.Replace(tags)
	return c
}

// Replace swaps every tag of the catalog.
func (c *Catalog) Replace(tags []Tag) {
	m := make(map[string]Tag, len(tags))
	for _, t := range tags {
		if t.Name == "" {
			t.Name = t.Key
		}
		m[t.Key] = t
	}

	c.mu.Lock()
	c.tags = m
	c.mu.Unlock()
}

// Get returns the tag for a key.
func (c *Catalog) Get(key string) (Tag, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	t, ok := c.tags[key]
	return t, ok
}

// Keys returns every key, sorted.
func (c *Catalog) Keys() []string {
	c.mu.RLock()
	keys := make([]string, 0, len(c.tags))
	for k := range c.tags {
		keys = append(keys, k)
	}
	c.mu.RUnlock()

	sort.Strings(keys)
	return keys
}

// Tags returns every tag, sorted by key.
func (c *Catalog) Tags() []Tag {
	keys := c.Keys()
	tags := make([]Tag, 0, len(keys))
	for _, k := range keys {
		if t, ok := c.Get(k); ok {
			tags = append(tags, t)
		}
	}
	return tags
}

// KeyKind resolves the value kind of a key for the query lexer. Unknown
// keys are strings.
func (c *Catalog) KeyKind(key string) query.ValueKind {
	if t, ok := c.Get(key); ok {
		return t.ValueKind()
	}
	return query.KindString
}

// Parse parses a query with the catalog driving filter validation.
func (c *Catalog) Parse(text string) *query.ParsedQuery {
	return query.Parse(text, query.WithKeyKind(c.KeyKind))
}
