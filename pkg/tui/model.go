// SPDX-License-Identifier: GPL-3.0-only
package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/bascanada/smartsearch/pkg/config"
	"github.com/bascanada/smartsearch/pkg/log"
	"github.com/bascanada/smartsearch/pkg/searchbar"
)

// maxHistory is the number of submitted searches kept on screen
const maxHistory = 10

// ConfigReloadedMsg is sent when the config file changed on disk
type ConfigReloadedMsg struct {
	Config *config.Config
}

// ConfigErrorMsg is sent when a changed config file could not be loaded
type ConfigErrorMsg struct {
	Err error
}

// DocsMsg asks to point the user at the search syntax documentation
type DocsMsg struct {
	URL string
}

// Options configures the TUI
type Options struct {
	Config       *config.Config
	Engine       *config.Engine
	InitialQuery string
	// ExitOnSearch quits after the first search
	ExitOnSearch bool
}

// session holds what the bar callbacks report. It is shared by every copy
// of the model, callbacks only run from Update.
type session struct {
	history []string
	status  string
	failed  bool
}

func (s *session) notify(status string, failed bool) {
	s.status, s.failed = status, failed
}

// Model is the main TUI model
type Model struct {
	Bar searchbar.Controller

	keys    KeyMap
	styles  Styles
	help    help.Model
	engine  *config.Engine
	session *session
	initCmd tea.Cmd

	exitOnSearch bool
	showHelp     bool
	width        int
	height       int
	quitting     bool
}

// New creates the TUI model with a focused search bar
func New(opts Options) Model {
	cfg := opts.Config
	s := &session{}

	bar := searchbar.New(opts.Engine.Builder, searchbar.Options{
		InitialQuery:   opts.InitialQuery,
		DefaultQuery:   cfg.DefaultQuery,
		Placeholder:    cfg.Placeholder,
		MaxQueryLength: cfg.MaxQueryLength,
		UseFormWrapper: true,
		SaveScope:      cfg.SaveScope,
		Saver:          opts.Engine.Saver,
		OnChange: func(string) {
			s.notify("", false)
		},
		OnSavedRecentSearch: func(q string) {
			s.notify(fmt.Sprintf("saved %q", q), false)
		},
	})
	// the view draws its own cursor
	bar.Input.Cursor.SetMode(cursor.CursorStatic)

	keys := DefaultKeyMap()
	bar.KeyMap = keys.Bar

	m := Model{
		Bar:          bar,
		keys:         keys,
		styles:       DefaultStyles(),
		help:         help.New(),
		engine:       opts.Engine,
		session:      s,
		exitOnSearch: opts.ExitOnSearch,
	}
	m.initCmd = m.Bar.Focus()
	return m
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return m.initCmd
}

// History lists the submitted searches, most recent first.
func (m Model) History() []string {
	return m.session.history
}

// LastSearch is the most recent submitted search, empty when none.
func (m Model) LastSearch() string {
	if len(m.session.history) == 0 {
		return ""
	}
	return m.session.history[0]
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		var cmd tea.Cmd
		m.Bar, cmd = m.Bar.Update(msg)
		return m, cmd

	case searchbar.SubmitMsg:
		m.session.history = append([]string{msg.Query}, m.session.history...)
		if len(m.session.history) > maxHistory {
			m.session.history = m.session.history[:maxHistory]
		}
		log.Info("search submitted: %q", msg.Query)
		if m.exitOnSearch {
			m.quitting = true
			return m, tea.Quit
		}
		return m, nil

	case ConfigReloadedMsg:
		m.engine.Reload(msg.Config)
		m.session.notify(fmt.Sprintf("config reloaded, %d tags", len(msg.Config.Tags)), false)
		// recompute the suggestions for the new catalog
		var cmd tea.Cmd
		m.Bar, cmd = m.Bar.Update(searchbar.SetCursorMsg{Cursor: m.Bar.Cursor()})
		return m, cmd

	case DocsMsg:
		m.session.notify("search syntax: "+msg.URL, false)
		return m, nil

	case ConfigErrorMsg:
		m.session.notify("config reload failed: "+msg.Err.Error(), true)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	var cmd tea.Cmd
	m.Bar, cmd = m.Bar.Update(msg)
	return m, cmd
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.ForceQuit) {
		m.quitting = true
		return m, tea.Quit
	}

	if !m.Bar.Focused() {
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit
		case key.Matches(msg, m.keys.Help):
			m.showHelp = !m.showHelp
			return m, nil
		case key.Matches(msg, m.keys.Focus), key.Matches(msg, m.keys.Bar.Submit):
			var cmd tea.Cmd
			m.Bar, cmd = m.Bar.Update(searchbar.FocusMsg{})
			return m, cmd
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.Bar, cmd = m.Bar.Update(msg)
	return m, cmd
}
