package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bascanada/smartsearch/pkg/autocomplete"
	"github.com/bascanada/smartsearch/pkg/query"
)

const sampleYAML = `
defaultQuery: "is:unresolved"
maxQueryLength: 200
maxSearchItems: 8
normalize: lower
fuzzyKeys: true
saveScope: issues
debounce: 150ms
docsUrl: https://docs.example.com/search
recent:
  max: 5
tags:
  level:
    description: Severity
    values: [error, warning]
  count:
    kind: number
  seen:
    kind: date
defaultItems:
  - value: "is:unresolved"
    title: Unresolved issues
`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestLoad_YAML(t *testing.T) {
	path := writeFile(t, "config.yaml", sampleYAML)

	cfg, resolved, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, path, resolved)
	assert.Equal(t, "is:unresolved", cfg.DefaultQuery)
	assert.Equal(t, 200, cfg.MaxQueryLength)
	assert.Equal(t, 150*time.Millisecond, cfg.DebounceDuration())
	assert.Zero(t, cfg.CacheTTLDuration())
	require.NotNil(t, cfg.Recent)
	assert.Equal(t, 5, cfg.Recent.Max)

	tags := cfg.CatalogTags()
	require.Len(t, tags, 3)
	assert.Equal(t, "count", tags[0].Key)
	assert.Equal(t, query.KindNumber, tags[0].Kind)
	assert.Equal(t, []string{"error", "warning"}, tags[1].Values)
	assert.Equal(t, query.KindDate, tags[2].Kind)
}

func TestLoad_JSONAndFallback(t *testing.T) {
	json := `{"maxSearchItems": 3, "tags": {"level": {"values": ["error"]}}}`

	cfg, _, err := Load(writeFile(t, "config.json", json))
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.MaxSearchItems)

	cfg, _, err = Load(writeFile(t, "config", json))
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.MaxSearchItems)

	cfg, _, err = Load(writeFile(t, "config.conf", "maxSearchItems: 4\n"))
	require.NoError(t, err)
	assert.Equal(t, 4, cfg.MaxSearchItems)
}

func TestLoad_Errors(t *testing.T) {
	_, _, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.True(t, errors.Is(err, ErrConfigNotFound))

	_, _, err = Load(writeFile(t, "bad.yaml", "tags: [\n"))
	assert.True(t, errors.Is(err, ErrConfigParse))

	_, _, err = Load(writeFile(t, "bad.json", "{"))
	assert.True(t, errors.Is(err, ErrConfigParse))
}

func TestValidate(t *testing.T) {
	cfg := &Config{
		MaxQueryLength: -1,
		Normalize:      "upper",
		Debounce:       "soon",
		Remote:         &Remote{},
		Tags: map[string]TagConfig{
			"bad key": {},
			"level":   {Kind: "color"},
		},
	}

	err := cfg.Validate()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrConfigInvalid))
	for _, want := range []string{"maxQueryLength", "normalize", "debounce", "remote", "'bad key'", "unknown kind 'color'"} {
		assert.Contains(t, err.Error(), want)
	}

	assert.NoError(t, Default().Validate())
}

func TestResolvePath(t *testing.T) {
	t.Setenv(EnvConfigPath, "/tmp/from-env.yaml")

	path, err := ResolvePath("explicit.yaml")
	require.NoError(t, err)
	assert.Equal(t, "explicit.yaml", path)

	path, err = ResolvePath("  ")
	require.NoError(t, err)
	assert.Equal(t, "/tmp/from-env.yaml", path)

	t.Setenv(EnvConfigPath, "")
	t.Setenv("HOME", "/home/tester")
	path, err = ResolvePath("")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/home/tester", DefaultConfigDir, DefaultConfigFile), path)
}

func TestWrite_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	require.NoError(t, Write(path, Default()))

	cfg, _, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, Default().Tags, cfg.Tags)
}

func TestNewEngine(t *testing.T) {
	path := writeFile(t, "config.yaml", sampleYAML)
	cfg, _, err := Load(path)
	require.NoError(t, err)
	cfg.Recent.Path = filepath.Join(t.TempDir(), "recent.yaml")

	var opened []string
	e, err := cfg.NewEngine(EngineOptions{OpenDocs: func(url string) { opened = append(opened, url) }})
	require.NoError(t, err)
	require.NotNil(t, e.Saver)
	require.NotNil(t, e.Recent)

	// normalize lower then fuzzy match
	assert.Equal(t, []string{"level"}, e.Builder.TagKeys("LVL"))

	ctx := context.Background()
	require.NoError(t, e.Saver.SaveRecentSearch(ctx, "level:error"))
	searches, err := e.Recent.FetchRecentSearches(ctx, "")
	require.NoError(t, err)
	require.Len(t, searches, 1)

	res := e.Builder.Build(ctx, autocomplete.Request{Query: "", Tree: e.Catalog.Parse(""), Cursor: 0})
	require.NotEmpty(t, res.Suggestions.Items)
	assert.Equal(t, "is:unresolved", res.Suggestions.Items[0].Value)
	assert.Equal(t, autocomplete.KindDefault, res.Suggestions.Items[0].Kind)

	group := e.Builder.ValueGroup(ctx, "nope", "")
	require.Len(t, group.SearchItems, 1)
	group.SearchItems[0].Callback()
	assert.Equal(t, []string{"https://docs.example.com/search"}, opened)
}

func TestEngine_Reload(t *testing.T) {
	cfg := &Config{Tags: map[string]TagConfig{"level": {}}}
	e, err := cfg.NewEngine(EngineOptions{})
	require.NoError(t, err)
	assert.Nil(t, e.Saver)

	e.Reload(&Config{Tags: map[string]TagConfig{"url": {}, "user": {}}})
	assert.Equal(t, []string{"url", "user"}, e.Catalog.Keys())
}

func TestWatcher_Reloads(t *testing.T) {
	path := writeFile(t, "config.yaml", "tags:\n  level: {}\n")

	reloaded := make(chan *Config, 4)
	failed := make(chan error, 4)
	w, err := NewWatcher(path, WatcherOptions{
		Debounce: 20 * time.Millisecond,
		OnReload: func(cfg *Config) { reloaded <- cfg },
		OnError:  func(err error) { failed <- err },
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(func() {
		cancel()
		_ = w.Stop()
	})
	require.NoError(t, w.Start(ctx))

	require.NoError(t, os.WriteFile(path, []byte("tags:\n  url: {}\n  user: {}\n"), 0600))
	select {
	case cfg := <-reloaded:
		assert.Len(t, cfg.Tags, 2)
	case <-time.After(5 * time.Second):
		t.Fatal("config was not reloaded")
	}

	require.NoError(t, os.WriteFile(path, []byte("tags: [\n"), 0600))
	select {
	case err := <-failed:
		assert.True(t, errors.Is(err, ErrConfigParse))
	case <-time.After(5 * time.Second):
		t.Fatal("reload error was not reported")
	}
}
