// SPDX-License-Identifier: GPL-3.0-only
package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/bascanada/smartsearch/pkg/config"
	"github.com/bascanada/smartsearch/pkg/log"
	"github.com/bascanada/smartsearch/pkg/tui"
)

var (
	initialQuery string
	exitOnSearch bool
	watchConfig  bool
)

var tuiCmd = &cobra.Command{
	Use:     "tui",
	Aliases: []string{"ui"},
	Short:   "Launch the interactive search bar",
	Long: `Launch an interactive Terminal User Interface around the search bar.

The TUI provides:
  - Syntax highlighting of filters, operators and groups
  - Key, operator and value suggestions (Tab to accept, arrows to move)
  - Token shortcuts: Alt+Backspace delete, Alt+1 exclude, Alt+arrows move
  - Recent searches, saved on every search
  - Live reload of the config file

With --exit-on-search the submitted query is printed to stdout, so the
bar can feed another command:

  smartsearch tui --exit-on-search --logging-path /tmp/smartsearch.log

Examples:
  # Start from a query
  smartsearch tui -q 'level:error '`,
	PreRun: onCommandStart,
	Run:    runTUI,
}

func runTUI(cmd *cobra.Command, args []string) {
	var p *tea.Program
	cfg, path, engine := mustLoadEngine(config.EngineOptions{
		OpenDocs: func(url string) {
			// called from Update, the program loop would block on Send
			go p.Send(tui.DocsMsg{URL: url})
		},
	})

	model := tui.New(tui.Options{
		Config:       cfg,
		Engine:       engine,
		InitialQuery: initialQuery,
		ExitOnSearch: exitOnSearch,
	})
	p = tea.NewProgram(model, tea.WithAltScreen(), tea.WithOutput(os.Stderr))

	if watchConfig && path != "" {
		stop, err := startTUIWatcher(cmd.Context(), path, p)
		if err != nil {
			log.Warn("config reload disabled: %v", err)
		} else {
			defer stop()
		}
	}

	finalModel, err := p.Run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error running TUI: %v\n", err)
		os.Exit(1)
	}

	if m, ok := finalModel.(tui.Model); ok && exitOnSearch {
		if last := m.LastSearch(); last != "" {
			fmt.Fprintln(cmd.OutOrStdout(), last)
		}
	}
}

func startTUIWatcher(ctx context.Context, path string, p *tea.Program) (func(), error) {
	watcher, err := config.NewWatcher(path, config.WatcherOptions{
		// the terminal belongs to the TUI
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		OnReload: func(cfg *config.Config) {
			p.Send(tui.ConfigReloadedMsg{Config: cfg})
		},
		OnError: func(err error) {
			p.Send(tui.ConfigErrorMsg{Err: err})
		},
	})
	if err != nil {
		return nil, err
	}
	if err := watcher.Start(ctx); err != nil {
		_ = watcher.Stop()
		return nil, err
	}
	return func() { _ = watcher.Stop() }, nil
}

func init() {
	tuiCmd.Flags().StringVarP(&initialQuery, "query", "q", "", "initial query, the config defaultQuery when empty")
	tuiCmd.Flags().BoolVar(&exitOnSearch, "exit-on-search", false, "quit after the first search and print it")
	tuiCmd.Flags().BoolVar(&watchConfig, "watch", true, "reload the config file when it changes")
}
