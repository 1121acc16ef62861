package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"github.com/bascanada/smartsearch/pkg/autocomplete"
	"github.com/bascanada/smartsearch/pkg/config"
	"github.com/bascanada/smartsearch/pkg/editor"
	"github.com/bascanada/smartsearch/pkg/query"
)

// Edit actions accepted by the edit_query tool
const (
	editAccept   = "accept"
	editDelete   = "delete"
	editNegate   = "negate"
	editNext     = "next"
	editPrevious = "previous"
	editBrackets = "brackets"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Starts a MCP server",
	Long: `Starts a MCP server over stdio, exposing the query parser, the suggestions
and the query edits as tools, so an assistant can write valid queries.`,
	PreRun: onCommandStart,
	Run: func(cmd *cobra.Command, args []string) {
		_, _, engine := mustLoadEngine(config.EngineOptions{})
		bundle, err := BuildMCPServer(engine)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error building MCP server: %v\n", err)
			os.Exit(1)
		}
		if err := server.ServeStdio(bundle.Server); err != nil {
			fmt.Fprintf(os.Stderr, "MCP server error: %v\n", err)
			os.Exit(1)
		}
	},
}

// MCPServerBundle is the MCP server with direct access to its handlers.
type MCPServerBundle struct {
	Server       *server.MCPServer
	ToolHandlers map[string]server.ToolHandlerFunc
}

type tagDescription struct {
	Key         string          `json:"key"`
	Kind        query.ValueKind `json:"kind"`
	Description string          `json:"description,omitempty"`
	Values      []string        `json:"values,omitempty"`
}

type suggestOutput struct {
	autocomplete.Result
	DidYouMean []string `json:"didYouMean,omitempty"`
}

// BuildMCPServer registers the tools backed by the engine.
func BuildMCPServer(engine *config.Engine) (*MCPServerBundle, error) {
	if engine == nil || engine.Builder == nil {
		return nil, fmt.Errorf("engine is not configured")
	}

	s := server.NewMCPServer("smartsearch", sha1ver, server.WithToolCapabilities(false))
	bundle := &MCPServerBundle{Server: s, ToolHandlers: map[string]server.ToolHandlerFunc{}}
	add := func(tool mcp.Tool, handler server.ToolHandlerFunc) {
		s.AddTool(tool, handler)
		bundle.ToolHandlers[tool.Name] = handler
	}

	catalog := engine.Catalog
	builder := engine.Builder

	add(mcp.NewTool("list_tags",
		mcp.WithDescription("List the keys usable in key:value filters, with their kind and known values."),
	), func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		tags := []tagDescription{}
		for _, tag := range catalog.Tags() {
			tags = append(tags, tagDescription{
				Key:         tag.Key,
				Kind:        tag.ValueKind(),
				Description: tag.Description,
				Values:      tag.Values,
			})
		}
		return jsonResult(tags)
	})

	add(mcp.NewTool("parse_query",
		mcp.WithDescription("Parse a search query. Returns its tokens and whether it can be submitted. Invalid filters carry the reason they are rejected."),
		mcp.WithString("query", mcp.Required(), mcp.Description("The query, e.g. level:error !environment:staging count:>10 timeout")),
	), func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		text, err := req.RequireString("query")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		tree := catalog.Parse(text)
		return jsonResult(parseOutput{
			Query:  text,
			Parsed: tree != nil,
			Valid:  query.IsValid(tree),
			Tokens: tokensOf(tree),
		})
	})

	add(mcp.NewTool("suggest",
		mcp.WithDescription("List the autocomplete suggestions for a query at a cursor position."),
		mcp.WithString("query", mcp.Required(), mcp.Description("The query being written")),
		mcp.WithNumber("cursor", mcp.Description("Byte offset of the cursor, the end of the query when omitted")),
	), func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		text, err := req.RequireString("query")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		cursor, err := toolCursor(req, text)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		out := suggestOutput{Result: suggest(ctx, builder, text, cursor)}
		if _, known := catalog.Get(out.TagName); out.State == autocomplete.StateValue && !known {
			out.DidYouMean = suggestSimilar(out.TagName, catalog.Keys(), 3)
		}
		return jsonResult(out)
	})

	add(mcp.NewTool("edit_query",
		mcp.WithDescription("Apply an edit to the token under the cursor. accept inserts a suggestion value returned by the suggest tool, delete removes the filter, negate toggles its exclusion, next and previous move between filters, brackets turns the value into a list."),
		mcp.WithString("query", mcp.Required(), mcp.Description("The query being written")),
		mcp.WithString("action", mcp.Required(),
			mcp.Enum(editAccept, editDelete, editNegate, editNext, editPrevious, editBrackets),
			mcp.Description("The edit to apply"),
		),
		mcp.WithNumber("cursor", mcp.Description("Byte offset of the cursor, the end of the query when omitted")),
		mcp.WithString("value", mcp.Description("For accept, the value of the suggestion to insert")),
	), func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		text, err := req.RequireString("query")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		action, err := req.RequireString("action")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		cursor, err := toolCursor(req, text)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		tree := catalog.Parse(text)
		var edit editor.Edit
		switch action {
		case editAccept:
			item, err := findSuggestion(ctx, builder, text, cursor, req.GetString("value", ""))
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			edit = editor.Accept(text, tree, cursor, item)
		case editDelete:
			edit = editor.DeleteToken(text, tree, cursor)
		case editNegate:
			edit = editor.NegateToken(text, tree, cursor)
		case editNext:
			edit = editor.MoveToToken(text, tree, cursor, editor.Next)
		case editPrevious:
			edit = editor.MoveToToken(text, tree, cursor, editor.Previous)
		case editBrackets:
			edit = editor.ExpandBrackets(text, tree, cursor)
		default:
			return mcp.NewToolResultError(fmt.Sprintf("unknown action %q", action)), nil
		}
		return jsonResult(edit)
	})

	return bundle, nil
}

// toolCursor reads the optional cursor argument.
func toolCursor(req mcp.CallToolRequest, text string) (int, error) {
	cursor := req.GetInt("cursor", len(text))
	if cursor < 0 || cursor > len(text) {
		return 0, fmt.Errorf("cursor %d is outside of the query (length %d)", cursor, len(text))
	}
	return cursor, nil
}

// findSuggestion looks up the suggestion with the given value at the cursor.
func findSuggestion(ctx context.Context, b *autocomplete.Builder, text string, cursor int, value string) (autocomplete.SearchItem, error) {
	if value == "" {
		return autocomplete.SearchItem{}, fmt.Errorf("accept needs the value of a suggestion")
	}

	res := suggest(ctx, b, text, cursor)
	values := make([]string, 0, len(res.Suggestions.Items))
	for _, item := range res.Suggestions.Items {
		if item.Value == value {
			if item.Exceeds {
				return autocomplete.SearchItem{}, fmt.Errorf("%q would make the query too long", value)
			}
			return item, nil
		}
		values = append(values, item.Value)
	}
	return autocomplete.SearchItem{}, fmt.Errorf("%q is not suggested at the cursor, suggestions are: %s", value, strings.Join(values, ", "))
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, err
	}
	return mcp.NewToolResultText(string(data)), nil
}
