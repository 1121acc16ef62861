package remote

import (
	"context"
	"net/url"
	"strconv"

	"github.com/bascanada/smartsearch/pkg/autocomplete"
)

// Source resolves tag values, recent searches and releases from the remote
// API and saves searches to it.
type Source struct {
	client HttpClient
	// Scope is the recent-search type sent along with saved searches
	Scope string
}

func NewSource(client HttpClient, scope string) *Source {
	return &Source{client: client, Scope: scope}
}

type tagValuesResponse struct {
	Values []string `json:"values"`
}

// FetchTagValues calls GET /tags/{key}/values.
func (s *Source) FetchTagValues(ctx context.Context, tag autocomplete.Tag, query string, params map[string]string) ([]string, error) {
	qp := map[string]string{}
	for k, v := range params {
		qp[k] = v
	}
	if query != "" {
		qp["query"] = query
	}

	var res tagValuesResponse
	if err := s.client.Get(ctx, "/tags/"+url.PathEscape(tag.Key)+"/values", qp, &res); err != nil {
		return nil, err
	}
	return res.Values, nil
}

// FetchRecentSearches calls GET /recent-searches.
func (s *Source) FetchRecentSearches(ctx context.Context, query string) ([]autocomplete.RecentSearch, error) {
	qp := map[string]string{
		"limit": strconv.Itoa(autocomplete.MaxRecentSearches),
	}
	if query != "" {
		qp["query"] = query
	}
	if s.Scope != "" {
		qp["type"] = s.Scope
	}

	var res []autocomplete.RecentSearch
	if err := s.client.Get(ctx, "/recent-searches", qp, &res); err != nil {
		return nil, err
	}
	return res, nil
}

// FetchReleases calls GET /releases.
func (s *Source) FetchReleases(ctx context.Context, prefix string, limit int) ([]autocomplete.Release, error) {
	qp := map[string]string{
		"per_page": strconv.Itoa(limit),
	}
	if prefix != "" {
		qp["query"] = prefix
	}

	var res []autocomplete.Release
	if err := s.client.Get(ctx, "/releases", qp, &res); err != nil {
		return nil, err
	}
	return res, nil
}

type saveRequest struct {
	Query string `json:"query"`
	Type  string `json:"type,omitempty"`
}

// SaveRecentSearch calls POST /recent-searches.
func (s *Source) SaveRecentSearch(ctx context.Context, query string) error {
	return s.client.PostJson(ctx, "/recent-searches", saveRequest{Query: query, Type: s.Scope}, nil)
}

var (
	_ autocomplete.TagValueFetcher     = (*Source)(nil)
	_ autocomplete.RecentSearchFetcher = (*Source)(nil)
	_ autocomplete.ReleaseFetcher      = (*Source)(nil)
	_ autocomplete.RecentSearchSaver   = (*Source)(nil)
)
