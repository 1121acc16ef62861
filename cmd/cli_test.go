package cmd

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bascanada/smartsearch/pkg/config"
)

// runCLI executes the root command against a temporary config file.
func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, config.Write(path, &config.Config{
		Tags: map[string]config.TagConfig{
			"level": {Values: []string{"error", "warning"}},
			"count": {Kind: "number"},
		},
	}))

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(append([]string{"--config", path}, args...))
	_, err := rootCmd.ExecuteC()
	return out.String(), err
}

func TestVersionCommand_Output(t *testing.T) {
	rootCmd.SetArgs([]string{"version"})

	out := captureStdout(t, func() {
		_, err := rootCmd.ExecuteC()
		require.NoError(t, err)
	})
	// default sha1ver is 'develop'
	assert.Equal(t, "develop\n", out)
}

func TestParseCommand_JSON(t *testing.T) {
	out, err := runCLI(t, "parse", "--json", "level:error count:>3")
	require.NoError(t, err)

	var parsed struct {
		Parsed bool             `json:"parsed"`
		Valid  bool             `json:"valid"`
		Tokens []map[string]any `json:"tokens"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &parsed))
	assert.True(t, parsed.Parsed)
	assert.True(t, parsed.Valid)
	require.Len(t, parsed.Tokens, 2)
	assert.Equal(t, "filter", parsed.Tokens[0]["kind"])
}

func TestParseCommand_InvalidFilter(t *testing.T) {
	out, err := runCLI(t, "parse", "--json=false", "--no-color", "count:abc")
	require.Error(t, err)
	assert.Contains(t, out, "expected a number")
}

func TestSuggestCommand(t *testing.T) {
	out, err := runCLI(t, "suggest", "--json=false", "--no-color", "level:")
	require.NoError(t, err)
	assert.Contains(t, out, "state: value")
	assert.Contains(t, out, "Values of level")
	assert.Contains(t, out, "warning")

	out, err = runCLI(t, "suggest", "--json", "--cursor", "0", "level:error")
	require.NoError(t, err)
	assert.Contains(t, out, `"state": "key"`)
}
