package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bascanada/smartsearch/pkg/config"
)

func TestBuildWizardConfig_Static(t *testing.T) {
	cfg, err := buildWizardConfig(wizardAnswers{
		Source:    sourceStatic,
		Recent:    recentLocal,
		SaveScope: "issues",
		Tags: []wizardTag{
			{Key: "level", Kind: "string", Description: "Severity", Values: "error, warning ,, info"},
			{Key: "count", Kind: "number"},
		},
	})
	require.NoError(t, err)

	assert.Nil(t, cfg.Remote)
	require.NotNil(t, cfg.Recent)
	assert.True(t, cfg.DisplayRecentSearches)
	assert.Equal(t, "issues", cfg.SaveScope)

	level := cfg.Tags["level"]
	assert.Equal(t, []string{"error", "warning", "info"}, level.Values)
	assert.True(t, level.Predefined)
	assert.Empty(t, level.Kind)
	assert.Equal(t, "number", cfg.Tags["count"].Kind)
	assert.False(t, cfg.Tags["count"].Predefined)
}

func TestBuildWizardConfig_Remote(t *testing.T) {
	cfg, err := buildWizardConfig(wizardAnswers{
		Source:      sourceRemote,
		RemoteURL:   " https://search.example.com/api ",
		AuthHeader:  "Authorization",
		AuthValue:   "Bearer abc",
		Recent:      recentNone,
		StartFromEx: true,
		Tags:        []wizardTag{{Key: "service", Kind: "string", Values: "api"}},
	})
	require.NoError(t, err)

	require.NotNil(t, cfg.Remote)
	assert.Equal(t, "https://search.example.com/api", cfg.Remote.URL)
	assert.Equal(t, "Bearer abc", cfg.Remote.Headers["Authorization"])
	assert.Nil(t, cfg.Recent)
	assert.False(t, cfg.DisplayRecentSearches)

	// example keys are kept, remote keys are not predefined
	assert.Contains(t, cfg.Tags, "level")
	assert.False(t, cfg.Tags["service"].Predefined)
}

func TestValidateTagKey(t *testing.T) {
	assert.NoError(t, validateTagKey("http.status_code"))
	assert.Error(t, validateTagKey(""))
	assert.Error(t, validateTagKey("has space"))
	assert.Error(t, validateTagKey("a:b"))
}

func TestMergeConfig(t *testing.T) {
	existing := &config.Config{
		Placeholder: "search issues",
		Tags:        map[string]config.TagConfig{"level": {Values: []string{"error"}}, "user": {}},
	}
	generated := &config.Config{
		SaveScope: "issues",
		Tags:      map[string]config.TagConfig{"level": {Values: []string{"fatal"}}},
	}

	merged := mergeConfig(existing, generated)
	assert.Equal(t, "search issues", merged.Placeholder)
	assert.Equal(t, "issues", merged.SaveScope)
	assert.Equal(t, []string{"fatal"}, merged.Tags["level"].Values)
	assert.Contains(t, merged.Tags, "user")
}
