package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/bascanada/smartsearch/pkg/autocomplete"
	"github.com/bascanada/smartsearch/pkg/config"
	"github.com/bascanada/smartsearch/pkg/printer"
	"github.com/bascanada/smartsearch/pkg/query"
)

var (
	cursorFlag     int
	suggestTimeout time.Duration
)

type parseOutput struct {
	Query  string         `json:"query"`
	Parsed bool           `json:"parsed"`
	Valid  bool           `json:"valid"`
	Tokens []*query.Token `json:"tokens,omitempty"`
}

var parseCmd = &cobra.Command{
	Use:   "parse <query>",
	Short: "Parse a query and print its tokens",
	Long: `Parse a query with the configured tags and print the token tree,
with the location of every token and the reason invalid filters are rejected.

Examples:
  smartsearch parse 'level:error count:>10'
  smartsearch parse --json '(a:1 OR b:[x, y]) timeout'`,
	Args:   cobra.ExactArgs(1),
	PreRun: onCommandStart,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, _, engine := mustLoadEngine(config.EngineOptions{})
		text := args[0]
		tree := engine.Catalog.Parse(text)

		out := cmd.OutOrStdout()
		initColor(cmd)
		if jsonOutput {
			return printer.JSON(out, parseOutput{
				Query:  text,
				Parsed: tree != nil,
				Valid:  query.IsValid(tree),
				Tokens: tokensOf(tree),
			})
		}

		fmt.Fprintln(out, printer.Highlight(text, tree))
		printer.Tree(out, text, tree)
		if !query.IsValid(tree) {
			return fmt.Errorf("query has invalid filters")
		}
		return nil
	},
}

var suggestCmd = &cobra.Command{
	Use:   "suggest <query>",
	Short: "Print the suggestions for a query",
	Long: `Print the autocomplete suggestions shown for a query with the cursor at
--cursor (a byte offset, the end of the query by default).

Examples:
  smartsearch suggest 'lev'
  smartsearch suggest 'level:' --json
  smartsearch suggest 'level:error count:' --cursor 6`,
	Args:   cobra.ExactArgs(1),
	PreRun: onCommandStart,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, _, engine := mustLoadEngine(config.EngineOptions{})
		text := args[0]

		cursor := cursorFlag
		if cursor < 0 || cursor > len(text) {
			cursor = len(text)
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), suggestTimeout)
		defer cancel()
		res := suggest(ctx, engine.Builder, text, cursor)

		out := cmd.OutOrStdout()
		initColor(cmd)
		if jsonOutput {
			return printer.JSON(out, res)
		}
		printer.Suggestions(out, res, -1)
		return nil
	},
}

func suggest(ctx context.Context, b *autocomplete.Builder, text string, cursor int) autocomplete.Result {
	return b.Build(ctx, autocomplete.Request{
		Query:  text,
		Tree:   b.Catalog().Parse(text),
		Cursor: cursor,
	})
}

func tokensOf(tree *query.ParsedQuery) []*query.Token {
	if tree == nil {
		return nil
	}
	tokens := make([]*query.Token, 0, len(tree.Tokens))
	for _, tok := range tree.Tokens {
		if tok.Kind != query.TokenSpaces {
			tokens = append(tokens, tok)
		}
	}
	return tokens
}

func initColor(cmd *cobra.Command) {
	if noColor {
		disabled := false
		printer.InitColorState(&disabled, cmd.OutOrStdout())
		return
	}
	printer.InitColorState(nil, cmd.OutOrStdout())
}

func init() {
	for _, c := range []*cobra.Command{parseCmd, suggestCmd} {
		c.Flags().BoolVar(&jsonOutput, "json", false, "output as JSON")
		c.Flags().BoolVar(&noColor, "no-color", strings.TrimSpace(os.Getenv("NO_COLOR")) != "", "disable colored output")
	}
	suggestCmd.Flags().IntVar(&cursorFlag, "cursor", -1, "cursor byte offset, the end of the query when negative")
	suggestCmd.Flags().DurationVar(&suggestTimeout, "timeout", 10*time.Second, "maximum time spent fetching suggestions")
}
