package remote

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/h2non/gock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bascanada/smartsearch/pkg/autocomplete"
)

const testURL = "http://search.example.com"

func newTestSource(t *testing.T, scope string) *Source {
	t.Helper()
	t.Cleanup(gock.Off)
	gock.DisableNetworking()

	client := GetClient(testURL+"/", ClientOptions{
		Auth: HeaderAuth{Headers: map[string]string{"Authorization": "Bearer secret-token"}},
	})
	return NewSource(client, scope)
}

func TestGetClient_NormalizesURL(t *testing.T) {
	assert.Equal(t, "https://search.example.com", GetClient("search.example.com//", ClientOptions{}).url)
	assert.Equal(t, "http://localhost:8080", GetClient("http://localhost:8080", ClientOptions{}).url)
	assert.Equal(t, "", GetClient("", ClientOptions{}).url)
}

func TestFetchTagValues(t *testing.T) {
	gock.New(testURL).
		Get("/tags/level/values").
		MatchHeader("Authorization", "Bearer secret-token").
		MatchParam("query", "err").
		MatchParam("project", "42").
		Reply(200).
		JSON(map[string]any{"values": []string{"error", "error-fatal"}})

	s := newTestSource(t, "")
	values, err := s.FetchTagValues(context.Background(), autocomplete.Tag{Key: "level"}, "err", map[string]string{"project": "42"})

	require.NoError(t, err)
	assert.Equal(t, []string{"error", "error-fatal"}, values)
	assert.True(t, gock.IsDone())
}

func TestFetchTagValues_EscapesKey(t *testing.T) {
	gock.New(testURL).
		Get("/tags/http.status%20code/values").
		Reply(200).
		JSON(map[string]any{"values": []string{"200"}})

	s := newTestSource(t, "")
	values, err := s.FetchTagValues(context.Background(), autocomplete.Tag{Key: "http.status code"}, "", nil)

	require.NoError(t, err)
	assert.Equal(t, []string{"200"}, values)
}

func TestFetchTagValues_StatusError(t *testing.T) {
	gock.New(testURL).
		Get("/tags/level/values").
		Reply(503).
		BodyString("unavailable\n")

	s := newTestSource(t, "")
	_, err := s.FetchTagValues(context.Background(), autocomplete.Tag{Key: "level"}, "", nil)

	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusServiceUnavailable, statusErr.StatusCode)
	assert.Equal(t, "unavailable", statusErr.Body)
}

func TestFetchTagValues_BadJSON(t *testing.T) {
	gock.New(testURL).
		Get("/tags/level/values").
		Reply(200).
		BodyString("{not json")

	s := newTestSource(t, "")
	_, err := s.FetchTagValues(context.Background(), autocomplete.Tag{Key: "level"}, "", nil)
	assert.ErrorContains(t, err, "decoding response")
}

func TestFetchRecentSearches(t *testing.T) {
	gock.New(testURL).
		Get("/recent-searches").
		MatchParam("limit", "3").
		MatchParam("query", "level").
		MatchParam("type", "issues").
		Reply(200).
		JSON([]map[string]any{
			{"id": "1", "query": "level:error", "lastSeen": "2026-01-02T15:04:05Z"},
			{"id": "2", "query": "level:info"},
		})

	s := newTestSource(t, "issues")
	searches, err := s.FetchRecentSearches(context.Background(), "level")

	require.NoError(t, err)
	require.Len(t, searches, 2)
	assert.Equal(t, "level:error", searches[0].Query)
	assert.Equal(t, 2026, searches[0].LastSeen.Year())
	assert.Equal(t, "2", searches[1].ID)
}

func TestFetchReleases(t *testing.T) {
	gock.New(testURL).
		Get("/releases").
		MatchParam("per_page", "50").
		MatchParam("query", "1.").
		Reply(200).
		JSON([]map[string]any{{"version": "1.0.0"}, {"version": "1.1.0"}})

	s := newTestSource(t, "")
	releases, err := s.FetchReleases(context.Background(), "1.", autocomplete.ReleasePageSize)

	require.NoError(t, err)
	assert.Equal(t, []autocomplete.Release{{Version: "1.0.0"}, {Version: "1.1.0"}}, releases)
}

func TestSaveRecentSearch(t *testing.T) {
	gock.New(testURL).
		Post("/recent-searches").
		MatchType("json").
		JSON(map[string]string{"query": "level:error", "type": "issues"}).
		Reply(201)

	s := newTestSource(t, "issues")
	require.NoError(t, s.SaveRecentSearch(context.Background(), "level:error"))
	assert.True(t, gock.IsDone())
}

func TestSource_WithFetchers(t *testing.T) {
	gock.New(testURL).
		Get("/tags/url/values").
		Times(1).
		Reply(200).
		JSON(map[string]any{"values": []string{"/api/0/issues", "/api/0/events"}})

	s := newTestSource(t, "")
	fetchers := autocomplete.NewFetchers(autocomplete.FetchersOptions{Values: s, Debounce: 1})
	b := autocomplete.NewBuilder(autocomplete.NewCatalog(autocomplete.Tag{Key: "url"}), fetchers, autocomplete.Options{})

	group := b.ValueGroup(context.Background(), "url", "")
	require.Len(t, group.SearchItems, 2)
	assert.Equal(t, "/api/0/issues", group.SearchItems[0].Value)

	// second lookup is served from the cache
	group = b.ValueGroup(context.Background(), "url", "")
	assert.Len(t, group.SearchItems, 2)
	assert.True(t, gock.IsDone())
}

func TestMaskHeaderMap(t *testing.T) {
	h := http.Header{}
	h.Set("Authorization", "Bearer secret-token")
	h.Set("Cookie", "ab")
	h.Set("Accept", "application/json")

	masked := maskHeaderMap(h)
	assert.Contains(t, masked, "Authorization: Bear...REDACTED")
	assert.Contains(t, masked, "Cookie: REDACTED")
	assert.Contains(t, masked, "Accept: application/json")
	assert.NotContains(t, masked, "secret-token")
}
