// SPDX-License-Identifier: GPL-3.0-only
package tui

import (
	"github.com/charmbracelet/bubbles/key"

	"github.com/bascanada/smartsearch/pkg/searchbar"
)

// KeyMap defines the keys handled outside of the search bar
type KeyMap struct {
	Focus key.Binding
	Help  key.Binding
	Quit  key.Binding
	// ForceQuit works even while typing
	ForceQuit key.Binding

	Bar searchbar.KeyMap
}

// DefaultKeyMap returns the default keybindings
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Focus: key.NewBinding(
			key.WithKeys("/", "i"),
			key.WithHelp("/", "search"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q"),
			key.WithHelp("q", "quit"),
		),
		ForceQuit: key.NewBinding(
			key.WithKeys("ctrl+c"),
			key.WithHelp("ctrl+c", "quit"),
		),
		Bar: searchbar.DefaultKeyMap(),
	}
}

// ShortHelp returns keybindings to be shown in the mini help view
func (k KeyMap) ShortHelp() []key.Binding {
	return append(k.Bar.ShortHelp(), k.Help, k.ForceQuit)
}

// FullHelp returns keybindings for the expanded help view
func (k KeyMap) FullHelp() [][]key.Binding {
	return append(k.Bar.FullHelp(), []key.Binding{k.Focus, k.Help, k.Quit, k.ForceQuit})
}
