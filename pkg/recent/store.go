// Package recent persists submitted searches in a YAML file and serves them
// back as recent-search suggestions.
package recent

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/bascanada/smartsearch/pkg/autocomplete"
)

const (
	// DefaultFile is the store filename under the config directory
	DefaultFile = "recent.yaml"
	// DefaultMax is the number of searches kept per scope
	DefaultMax = 20
)

type file struct {
	Scopes map[string][]autocomplete.RecentSearch `yaml:"scopes"`
}

// Store keeps recent searches per scope.
type Store struct {
	path  string
	scope string
	max   int
	now   func() time.Time

	mu sync.Mutex
}

// NewStore returns a store for the scope backed by path. The file is only
// created on the first save.
func NewStore(path, scope string, max int) *Store {
	if max <= 0 {
		max = DefaultMax
	}
	return &Store{path: path, scope: scope, max: max, now: time.Now}
}

// DefaultPath is the store location under dir, the user's config directory.
func DefaultPath(dir string) (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, dir, DefaultFile), nil
}

func (s *Store) load() (*file, error) {
	f := &file{Scopes: map[string][]autocomplete.RecentSearch{}}

	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return f, nil
		}
		return f, err
	}
	if err := yaml.Unmarshal(data, f); err != nil {
		return f, fmt.Errorf("parsing recent searches %s: %w", s.path, err)
	}
	if f.Scopes == nil {
		f.Scopes = map[string][]autocomplete.RecentSearch{}
	}
	return f, nil
}

func (s *Store) save(f *file) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0750); err != nil {
		return err
	}
	data, err := yaml.Marshal(f)
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, data, 0600)
}

// FetchRecentSearches returns the searches of the scope containing query,
// most recent first.
func (s *Store) FetchRecentSearches(ctx context.Context, query string) ([]autocomplete.RecentSearch, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := s.load()
	if err != nil {
		return nil, err
	}

	query = strings.ToLower(strings.TrimSpace(query))
	matched := []autocomplete.RecentSearch{}
	for _, r := range f.Scopes[s.scope] {
		if query == "" || strings.Contains(strings.ToLower(r.Query), query) {
			matched = append(matched, r)
		}
	}

	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].LastSeen.After(matched[j].LastSeen)
	})
	return matched, ctx.Err()
}

// SaveRecentSearch records the query. Saving a known query only refreshes
// its timestamp. The oldest searches beyond the store size are dropped.
func (s *Store) SaveRecentSearch(ctx context.Context, query string) error {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := s.load()
	if err != nil {
		return err
	}

	searches := f.Scopes[s.scope]
	found := false
	for i := range searches {
		if searches[i].Query == query {
			searches[i].LastSeen = s.now()
			found = true
			break
		}
	}
	if !found {
		searches = append(searches, autocomplete.RecentSearch{
			ID:       uuid.NewString(),
			Query:    query,
			LastSeen: s.now(),
		})
	}

	sort.SliceStable(searches, func(i, j int) bool {
		return searches[i].LastSeen.After(searches[j].LastSeen)
	})
	if len(searches) > s.max {
		searches = searches[:s.max]
	}

	f.Scopes[s.scope] = searches
	return s.save(f)
}

var (
	_ autocomplete.RecentSearchFetcher = (*Store)(nil)
	_ autocomplete.RecentSearchSaver   = (*Store)(nil)
)
