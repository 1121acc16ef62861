// Package searchbar holds the search bar controller: it owns the query text,
// keeps the parsed tree in sync, runs the autocomplete pipeline and handles
// keyboard navigation and submission.
package searchbar

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/bascanada/smartsearch/pkg/autocomplete"
	"github.com/bascanada/smartsearch/pkg/editor"
	"github.com/bascanada/smartsearch/pkg/log"
	"github.com/bascanada/smartsearch/pkg/query"
)

const (
	buildTimeout = 10 * time.Second
	saveTimeout  = 5 * time.Second
)

// Options configures a Controller
type Options struct {
	// InitialQuery wins over DefaultQuery when set
	InitialQuery   string
	DefaultQuery   string
	Placeholder    string
	MaxQueryLength int
	// UseFormWrapper makes a search also emit a SubmitMsg
	UseFormWrapper bool
	// SaveScope enables saving submitted searches as recent searches
	SaveScope string
	Saver     autocomplete.RecentSearchSaver
	Reporter  autocomplete.Reporter

	ActionOverflowWidth int
	ActionOverflowStep  int

	OnChange            func(query string)
	OnBlur              func(query string)
	OnClose             func(query string)
	OnSearch            func(query string)
	OnSavedRecentSearch func(query string)
}

// Controller is the search bar state machine
type Controller struct {
	Input  textinput.Model
	KeyMap KeyMap

	builder   *autocomplete.Builder
	opts      Options
	shortcuts []Shortcut
	actions   []Action

	tree       *query.ParsedQuery
	result     autocomplete.Result
	active     int
	open       bool
	loading    bool
	generation uint64
	width      int
}

// New creates a controller suggesting from the builder
func New(builder *autocomplete.Builder, opts Options) Controller {
	if opts.Reporter == nil {
		opts.Reporter = autocomplete.LogReporter{}
	}
	if opts.ActionOverflowWidth <= 0 {
		opts.ActionOverflowWidth = DefaultActionOverflowWidth
	}
	if opts.ActionOverflowStep <= 0 {
		opts.ActionOverflowStep = DefaultActionOverflowStep
	}
	if opts.Placeholder == "" {
		opts.Placeholder = "type to search, Tab to autocomplete..."
	}

	ti := textinput.New()
	ti.Prompt = ""
	ti.Placeholder = opts.Placeholder
	if opts.MaxQueryLength > 0 {
		ti.CharLimit = opts.MaxQueryLength
	}

	initial := opts.InitialQuery
	if initial == "" {
		initial = opts.DefaultQuery
	}
	ti.SetValue(initial)

	km := DefaultKeyMap()
	c := Controller{
		Input:     ti,
		KeyMap:    km,
		builder:   builder,
		opts:      opts,
		shortcuts: Shortcuts(km),
		actions:   DefaultActions(km),
		active:    -1,
	}
	c.tree = c.parse(ti.Value())
	return c
}

// Query is the current text.
func (c Controller) Query() string {
	return c.Input.Value()
}

// Cursor is the byte offset of the cursor in the query.
func (c Controller) Cursor() int {
	return byteOffset(c.Input.Value(), c.Input.Position())
}

// Tree is the parsed query, nil when it does not parse.
func (c Controller) Tree() *query.ParsedQuery {
	return c.tree
}

// Result is the last accepted autocomplete result.
func (c Controller) Result() autocomplete.Result {
	return c.result
}

// Suggestions are the dropdown contents.
func (c Controller) Suggestions() autocomplete.Suggestions {
	return c.result.Suggestions
}

// Active is the highlighted suggestion index, -1 when none.
func (c Controller) Active() int {
	return c.active
}

func (c Controller) IsOpen() bool    { return c.open }
func (c Controller) IsLoading() bool { return c.loading }
func (c Controller) Focused() bool   { return c.Input.Focused() }

// IsValid reports whether the query can be submitted.
func (c Controller) IsValid() bool {
	return query.IsValid(c.tree)
}

// ApplicableShortcuts lists the shortcuts usable at the cursor.
func (c Controller) ApplicableShortcuts() []Shortcut {
	tok := query.CursorToken(c.tree, c.Cursor())
	count := len(query.FilterTokens(c.tree))

	applicable := []Shortcut{}
	for _, s := range c.shortcuts {
		if s.Applies(tok, count) {
			applicable = append(applicable, s)
		}
	}
	return applicable
}

// Actions splits the action buttons between inline and overflow.
func (c Controller) Actions() (inline, overflow []Action) {
	return SplitActions(c.actions, c.width, c.opts.ActionOverflowWidth, c.opts.ActionOverflowStep)
}

// Focus activates the input and opens the dropdown
func (c *Controller) Focus() tea.Cmd {
	c.open = true
	return tea.Batch(c.Input.Focus(), c.refresh())
}

// Blur deactivates the input
func (c *Controller) Blur() {
	c.Input.Blur()
	c.open = false
	c.active = -1
	if c.opts.OnBlur != nil {
		c.opts.OnBlur(c.Query())
	}
}

// Update handles messages for the search bar
func (c Controller) Update(msg tea.Msg) (Controller, tea.Cmd) {
	switch msg := msg.(type) {
	case SuggestionsMsg:
		if msg.Generation != c.generation || msg.Cursor != c.Cursor() {
			log.Debug("dropping stale suggestions (generation %d, cursor %d)", msg.Generation, msg.Cursor)
			return c, nil
		}
		c.result = msg.Result
		c.loading = false
		c.active = -1
		return c, nil

	case savedMsg:
		if msg.Err != nil {
			c.opts.Reporter.Capture(fmt.Errorf("saving recent search: %w", msg.Err), "searchbar.save")
			return c, nil
		}
		if c.opts.OnSavedRecentSearch != nil {
			c.opts.OnSavedRecentSearch(msg.Query)
		}
		return c, nil

	case FocusMsg:
		cmd := c.Focus()
		return c, cmd

	case ClickOutsideMsg:
		c.open = false
		c.active = -1
		if c.opts.OnClose != nil {
			c.opts.OnClose(c.Query())
		}
		return c, nil

	case PasteMsg:
		return c.paste(msg.Text)

	case SetQueryMsg:
		return c.setQuery(msg.Query, len(msg.Query))

	case SetCursorMsg:
		c.Input.SetCursor(runeOffset(c.Query(), msg.Cursor))
		return c, c.refresh()

	case SelectMsg:
		items := c.result.Suggestions.Items
		if msg.Index < 0 || msg.Index >= len(items) {
			return c, nil
		}
		c.active = msg.Index
		return c.accept(items[msg.Index])

	case tea.WindowSizeMsg:
		c.width = msg.Width
		return c, nil

	case tea.KeyMsg:
		if !c.Input.Focused() {
			return c, nil
		}
		return c.handleKey(msg)
	}

	var cmd tea.Cmd
	c.Input, cmd = c.Input.Update(msg)
	return c, cmd
}

// handleKey processes keyboard input
func (c Controller) handleKey(msg tea.KeyMsg) (Controller, tea.Cmd) {
	items := c.result.Suggestions.Items
	highlighted := c.active >= 0 && c.active < len(items)

	switch {
	case msg.Paste:
		return c.paste(string(msg.Runes))

	case key.Matches(msg, c.KeyMap.Down):
		if c.open && len(items) > 0 {
			c.active = moveIndex(c.active, len(items), 1)
		}
		return c, nil

	case key.Matches(msg, c.KeyMap.Up):
		if c.open && len(items) > 0 {
			c.active = moveIndex(c.active, len(items), -1)
		}
		return c, nil

	case key.Matches(msg, c.KeyMap.Accept):
		if highlighted {
			return c.accept(items[c.active])
		}
		c.open = false
		return c, nil

	case key.Matches(msg, c.KeyMap.Submit):
		if highlighted {
			return c.accept(items[c.active])
		}
		return c.submit()

	case key.Matches(msg, c.KeyMap.Escape):
		if !c.open {
			c.Blur()
			return c, nil
		}
		c.active = -1
		c.open = false
		return c, nil

	case key.Matches(msg, c.KeyMap.Paste):
		return c, c.readClipboard()

	case key.Matches(msg, c.KeyMap.Clear):
		return c.RunAction(ActionClear)

	case key.Matches(msg, c.KeyMap.Copy):
		return c.RunAction(ActionCopy)

	case key.Matches(msg, c.KeyMap.Save):
		return c.RunAction(ActionSave)
	}

	for _, s := range c.ApplicableShortcuts() {
		if key.Matches(msg, s.Binding) {
			return c.applyEdit(s.run(c.Query(), c.tree, c.Cursor()))
		}
	}

	if msg.Type == tea.KeyRunes && string(msg.Runes) == "[" {
		if edit := editor.ExpandBrackets(c.Query(), c.tree, c.Cursor()); edit.Changed {
			return c.applyEdit(edit)
		}
	}

	before, cursor := c.Query(), c.Cursor()

	var cmd, next tea.Cmd
	c.Input, cmd = c.Input.Update(msg)

	switch {
	case c.Query() != before:
		c, next = c.textChanged()
	case c.Cursor() != cursor:
		next = c.refresh()
	}
	return c, tea.Batch(cmd, next)
}

// RunAction runs one of the action buttons.
func (c Controller) RunAction(action ActionType) (Controller, tea.Cmd) {
	switch action {
	case ActionClear:
		c.Input.SetValue("")
		c.tree = c.parse("")
		c.open = false
		c.active = -1
		if c.opts.OnChange != nil {
			c.opts.OnChange("")
		}
		if c.opts.OnSearch != nil {
			c.opts.OnSearch("")
		}
		return c, nil

	case ActionCopy:
		text, reporter := c.Query(), c.opts.Reporter
		return c, func() tea.Msg {
			if err := clipboard.WriteAll(text); err != nil {
				reporter.Capture(fmt.Errorf("copying query: %w", err), "searchbar.copy")
			}
			return nil
		}

	case ActionSave:
		text := normalizeSpaces(c.Query())
		if text == "" || c.opts.Saver == nil {
			return c, nil
		}
		return c, c.save(text)
	}
	return c, nil
}

// accept applies a suggestion, running its callback when it has one.
func (c Controller) accept(item autocomplete.SearchItem) (Controller, tea.Cmd) {
	if item.Callback != nil {
		item.Callback()
		c.open = false
		c.active = -1
		return c, nil
	}
	if item.Exceeds {
		return c, nil
	}
	return c.applyEdit(editor.Accept(c.Query(), c.tree, c.Cursor(), item))
}

func (c Controller) applyEdit(edit editor.Edit) (Controller, tea.Cmd) {
	if !edit.Changed {
		return c, nil
	}

	if edit.Query == c.Query() {
		c.Input.SetCursor(runeOffset(edit.Query, edit.Cursor))
		return c, c.refresh()
	}

	c, cmd := c.setQuery(edit.Query, edit.Cursor)
	if !edit.Submit {
		return c, cmd
	}
	c, submit := c.submit()
	return c, tea.Batch(cmd, submit)
}

func (c Controller) setQuery(text string, cursor int) (Controller, tea.Cmd) {
	c.Input.SetValue(text)
	c.Input.SetCursor(runeOffset(c.Input.Value(), cursor))
	return c.textChanged()
}

func (c Controller) textChanged() (Controller, tea.Cmd) {
	text := c.Query()
	c.tree = c.parse(text)
	c.open = true
	c.active = -1
	if c.opts.OnChange != nil {
		c.opts.OnChange(text)
	}
	return c, c.refresh()
}

// submit blurs the bar and runs the search when the query is valid.
func (c Controller) submit() (Controller, tea.Cmd) {
	c.Blur()

	if !query.IsValid(c.tree) {
		log.Debug("query %q has invalid filters, not searching", c.Query())
		return c, nil
	}

	text := normalizeSpaces(c.Query())
	if c.opts.OnSearch != nil {
		c.opts.OnSearch(text)
	}

	var cmds []tea.Cmd
	if c.opts.UseFormWrapper {
		cmds = append(cmds, func() tea.Msg { return SubmitMsg{Query: text} })
	}
	if c.opts.SaveScope != "" && text != "" && c.opts.Saver != nil {
		cmds = append(cmds, c.save(text))
	}
	return c, tea.Batch(cmds...)
}

func (c Controller) paste(text string) (Controller, tea.Cmd) {
	text = newlines.Replace(text)
	if text == "" {
		return c, nil
	}

	current, cursor := c.Query(), c.Cursor()
	return c.setQuery(current[:cursor]+text+current[cursor:], cursor+len(text))
}

// refresh starts computing suggestions for the current state.
func (c *Controller) refresh() tea.Cmd {
	c.generation++
	c.loading = true

	generation := c.generation
	req := autocomplete.Request{Query: c.Query(), Tree: c.tree, Cursor: c.Cursor()}
	builder := c.builder

	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), buildTimeout)
		defer cancel()
		return SuggestionsMsg{
			Generation: generation,
			Cursor:     req.Cursor,
			Result:     builder.Build(ctx, req),
		}
	}
}

func (c Controller) save(text string) tea.Cmd {
	saver := c.opts.Saver
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
		defer cancel()
		return savedMsg{Query: text, Err: saver.SaveRecentSearch(ctx, text)}
	}
}

func (c Controller) readClipboard() tea.Cmd {
	reporter := c.opts.Reporter
	return func() tea.Msg {
		text, err := clipboard.ReadAll()
		if err != nil {
			reporter.Capture(fmt.Errorf("reading clipboard: %w", err), "searchbar.paste")
			return nil
		}
		return PasteMsg{Text: text}
	}
}

func (c Controller) parse(text string) *query.ParsedQuery {
	return c.builder.Catalog().Parse(text)
}

var newlines = strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ")

func normalizeSpaces(text string) string {
	return strings.Join(strings.Fields(text), " ")
}

// moveIndex cycles through n items, starting at 0 when nothing is highlighted
func moveIndex(active, n, delta int) int {
	if active < 0 {
		return 0
	}
	return (active + delta + n) % n
}

func byteOffset(s string, runes int) int {
	i := 0
	for pos := range s {
		if i == runes {
			return pos
		}
		i++
	}
	return len(s)
}

func runeOffset(s string, bytes int) int {
	bytes = min(max(bytes, 0), len(s))
	return utf8.RuneCountInString(s[:bytes])
}
