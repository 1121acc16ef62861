package searchbar

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the keys handled by the search bar
type KeyMap struct {
	// Suggestions
	Up     key.Binding
	Down   key.Binding
	Accept key.Binding
	Submit key.Binding
	Escape key.Binding

	// Token shortcuts
	DeleteToken key.Binding
	Negate      key.Binding
	PrevToken   key.Binding
	NextToken   key.Binding

	// Actions
	Paste key.Binding
	Clear key.Binding
	Copy  key.Binding
	Save  key.Binding
}

// DefaultKeyMap returns the default keybindings
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "ctrl+p"),
			key.WithHelp("↑", "previous suggestion"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "ctrl+n"),
			key.WithHelp("↓", "next suggestion"),
		),
		Accept: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("Tab", "accept"),
		),
		Submit: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("Enter", "search"),
		),
		Escape: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("Esc", "close"),
		),
		DeleteToken: key.NewBinding(
			key.WithKeys("alt+backspace"),
			key.WithHelp("Alt+⌫", "delete"),
		),
		Negate: key.NewBinding(
			key.WithKeys("alt+1"),
			key.WithHelp("Alt+1", "exclude/include"),
		),
		PrevToken: key.NewBinding(
			key.WithKeys("alt+left"),
			key.WithHelp("Alt+←", "previous"),
		),
		NextToken: key.NewBinding(
			key.WithKeys("alt+right"),
			key.WithHelp("Alt+→", "next"),
		),
		Paste: key.NewBinding(
			key.WithKeys("ctrl+v"),
			key.WithHelp("Ctrl+v", "paste"),
		),
		Clear: key.NewBinding(
			key.WithKeys("ctrl+l"),
			key.WithHelp("Ctrl+l", "clear"),
		),
		Copy: key.NewBinding(
			key.WithKeys("ctrl+y"),
			key.WithHelp("Ctrl+y", "copy query"),
		),
		Save: key.NewBinding(
			key.WithKeys("ctrl+s"),
			key.WithHelp("Ctrl+s", "save search"),
		),
	}
}

// ShortHelp returns keybindings to be shown in the mini help view
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Down, k.Accept, k.Submit, k.Escape}
}

// FullHelp returns keybindings for the expanded help view
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Accept, k.Submit, k.Escape},
		{k.DeleteToken, k.Negate, k.PrevToken, k.NextToken},
		{k.Paste, k.Clear, k.Copy, k.Save},
	}
}
