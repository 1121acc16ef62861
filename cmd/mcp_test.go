package cmd

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	mcpclient "github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bascanada/smartsearch/pkg/config"
	"github.com/bascanada/smartsearch/pkg/editor"
)

func testBundle(t *testing.T) *MCPServerBundle {
	t.Helper()
	cfg := &config.Config{
		Tags: map[string]config.TagConfig{
			"level":       {Description: "Severity", Values: []string{"error", "warning"}},
			"environment": {Values: []string{"production"}},
			"count":       {Kind: "number"},
		},
	}
	engine, err := cfg.NewEngine(config.EngineOptions{})
	require.NoError(t, err)

	bundle, err := BuildMCPServer(engine)
	require.NoError(t, err)
	return bundle
}

func callTool(t *testing.T, bundle *MCPServerBundle, name string, args map[string]any) (string, bool) {
	t.Helper()
	handler, ok := bundle.ToolHandlers[name]
	require.True(t, ok, "tool %s is not registered", name)

	res, err := handler(context.Background(), mcp.CallToolRequest{
		Params: mcp.CallToolParams{Name: name, Arguments: args},
	})
	require.NoError(t, err)
	require.NotEmpty(t, res.Content)

	text, ok := res.Content[0].(mcp.TextContent)
	require.True(t, ok, "expected text content")
	return text.Text, res.IsError
}

func TestBuildMCPServer_NoEngine(t *testing.T) {
	_, err := BuildMCPServer(nil)
	assert.Error(t, err)
}

func TestMCP_ListTags(t *testing.T) {
	out, isErr := callTool(t, testBundle(t), "list_tags", nil)
	require.False(t, isErr)

	var tags []tagDescription
	require.NoError(t, json.Unmarshal([]byte(out), &tags))
	require.Len(t, tags, 3)
	assert.Equal(t, "count", tags[0].Key)
	assert.Equal(t, "number", string(tags[0].Kind))
	assert.Equal(t, "level", tags[2].Key)
	assert.Equal(t, []string{"error", "warning"}, tags[2].Values)
}

func TestMCP_ParseQuery(t *testing.T) {
	bundle := testBundle(t)

	out, isErr := callTool(t, bundle, "parse_query", map[string]any{"query": "level:error count:abc"})
	require.False(t, isErr)

	var parsed map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &parsed))
	assert.Equal(t, true, parsed["parsed"])
	assert.Equal(t, false, parsed["valid"])
	assert.Contains(t, out, "expected a number")

	_, isErr = callTool(t, bundle, "parse_query", map[string]any{})
	assert.True(t, isErr)
}

func TestMCP_Suggest(t *testing.T) {
	bundle := testBundle(t)

	out, isErr := callTool(t, bundle, "suggest", map[string]any{"query": "level:"})
	require.False(t, isErr)
	assert.Contains(t, out, `"state": "value"`)
	assert.Contains(t, out, `"value": "error"`)

	out, isErr = callTool(t, bundle, "suggest", map[string]any{"query": "levl:"})
	require.False(t, isErr)
	assert.Contains(t, out, `"didYouMean": [`)
	assert.Contains(t, out, `"level"`)

	_, isErr = callTool(t, bundle, "suggest", map[string]any{"query": "a", "cursor": 5})
	assert.True(t, isErr)
}

func TestMCP_EditQuery(t *testing.T) {
	bundle := testBundle(t)

	tests := []struct {
		name   string
		args   map[string]any
		expect string
	}{
		{"accept value", map[string]any{"query": "level:", "action": "accept", "value": "error"}, "level:error "},
		{"accept key", map[string]any{"query": "lev", "action": "accept", "value": "level:"}, "level:"},
		{"negate", map[string]any{"query": "level:error", "action": "negate"}, "!level:error"},
		{"delete", map[string]any{"query": "level:error", "action": "delete", "cursor": 0}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, isErr := callTool(t, bundle, "edit_query", tt.args)
			require.False(t, isErr, out)

			var edit editor.Edit
			require.NoError(t, json.Unmarshal([]byte(out), &edit))
			assert.Equal(t, tt.expect, edit.Query)
		})
	}
}

func TestMCP_EditQuery_Errors(t *testing.T) {
	bundle := testBundle(t)

	out, isErr := callTool(t, bundle, "edit_query", map[string]any{"query": "level:", "action": "accept", "value": "fatal"})
	assert.True(t, isErr)
	assert.Contains(t, out, "error, warning")

	_, isErr = callTool(t, bundle, "edit_query", map[string]any{"query": "level:", "action": "accept"})
	assert.True(t, isErr)

	_, isErr = callTool(t, bundle, "edit_query", map[string]any{"query": "level:", "action": "rename"})
	assert.True(t, isErr)
}

func TestMCP_InProcessClient(t *testing.T) {
	bundle := testBundle(t)

	client, err := mcpclient.NewInProcessClient(bundle.Server)
	require.NoError(t, err)
	defer client.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	require.NoError(t, client.Start(ctx))

	_, err = client.Initialize(ctx, mcp.InitializeRequest{
		Params: mcp.InitializeParams{
			ProtocolVersion: mcp.LATEST_PROTOCOL_VERSION,
			ClientInfo:      mcp.Implementation{Name: "smartsearch-test", Version: "1.0.0"},
		},
	})
	require.NoError(t, err)

	tools, err := client.ListTools(ctx, mcp.ListToolsRequest{})
	require.NoError(t, err)
	names := []string{}
	for _, tool := range tools.Tools {
		names = append(names, tool.Name)
	}
	assert.ElementsMatch(t, []string{"list_tags", "parse_query", "suggest", "edit_query"}, names)

	res, err := client.CallTool(ctx, mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Name:      "suggest",
			Arguments: map[string]any{"query": "lev"},
		},
	})
	require.NoError(t, err)
	require.NotEmpty(t, res.Content)
	text, ok := res.Content[0].(mcp.TextContent)
	require.True(t, ok)
	assert.Contains(t, text.Text, `"value": "level:"`)
}
