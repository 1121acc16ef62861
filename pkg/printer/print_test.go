package printer

import (
	"bytes"
	"os"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bascanada/smartsearch/pkg/autocomplete"
	"github.com/bascanada/smartsearch/pkg/query"
)

func withColor(t *testing.T, enabled bool) {
	t.Helper()
	prev := color.NoColor
	InitColorState(&enabled, nil)
	t.Cleanup(func() {
		color.NoColor = prev
		globalColorState.enabled = !prev
	})
}

func TestInitColorState(t *testing.T) {
	enabled := true
	InitColorState(&enabled, nil)
	assert.True(t, IsColorEnabled())
	assert.False(t, color.NoColor)

	t.Setenv("NO_COLOR", "1")
	InitColorState(nil, os.Stdout)
	assert.False(t, IsColorEnabled())

	t.Setenv("NO_COLOR", "")
	InitColorState(nil, &bytes.Buffer{})
	assert.False(t, IsColorEnabled())
	assert.True(t, color.NoColor)
}

func TestHighlight(t *testing.T) {
	text := `!level:error (url:/api OR count:>5) foo`
	tree := query.Parse(text)
	require.NotNil(t, tree)

	withColor(t, false)
	assert.Equal(t, text, Highlight(text, tree))

	withColor(t, true)
	colored := Highlight(text, tree)
	assert.NotEqual(t, text, colored)
	assert.Contains(t, colored, "\x1b[")
	assert.Contains(t, colored, "level")

	assert.Equal(t, `level:"open`, Highlight(`level:"open`, nil))
}

func TestTree(t *testing.T) {
	withColor(t, false)
	text := "count:abc (a:1)"
	var buf bytes.Buffer
	Tree(&buf, text, query.Parse(text, query.WithKeyKind(func(key string) query.ValueKind {
		if key == "count" {
			return query.KindNumber
		}
		return query.KindString
	})))

	out := buf.String()
	assert.Contains(t, out, `filter     [0,9] "count:abc"`)
	assert.Contains(t, out, `  filter     [11,14] "a:1"`)
	assert.Contains(t, out, "logicGroup")

	buf.Reset()
	Tree(&buf, "(", nil)
	assert.Contains(t, buf.String(), "query does not parse")
}

func TestSuggestions(t *testing.T) {
	withColor(t, false)
	res := autocomplete.Result{
		State: autocomplete.StateValue,
		Suggestions: autocomplete.Flatten([]autocomplete.AutocompleteGroup{{
			Kind:    autocomplete.KindTagValue,
			TagName: "level",
			SearchItems: []autocomplete.SearchItem{
				{Value: "error", Title: "error", Kind: autocomplete.KindTagValue},
				{Value: "warning", Title: "warning", Description: "less bad", Kind: autocomplete.KindTagValue},
			},
		}}, autocomplete.NoLimit, 5),
	}

	var buf bytes.Buffer
	Suggestions(&buf, res, 1)
	out := buf.String()
	assert.Contains(t, out, "state: value")
	assert.Contains(t, out, "Values of level")
	assert.Contains(t, out, "  error\n")
	assert.Contains(t, out, "  warning  less bad  too long")

	buf.Reset()
	Suggestions(&buf, autocomplete.Result{}, -1)
	assert.Contains(t, buf.String(), "no suggestions")
}

func TestJSON(t *testing.T) {
	withColor(t, false)
	var buf bytes.Buffer
	require.NoError(t, JSON(&buf, map[string]any{"state": "key", "items": []string{"a"}}))
	assert.Equal(t, "{\n  \"items\": [\n    \"a\"\n  ],\n  \"state\": \"key\"\n}\n", buf.String())

	withColor(t, true)
	buf.Reset()
	require.NoError(t, JSON(&buf, map[string]any{"state": "key"}))
	assert.Contains(t, buf.String(), "state")
	assert.Contains(t, buf.String(), "\x1b[")
}
