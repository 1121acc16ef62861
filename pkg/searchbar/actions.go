package searchbar

import "github.com/charmbracelet/bubbles/key"

// ActionType identifies a search bar button
type ActionType int

const (
	ActionClear ActionType = iota
	ActionCopy
	ActionSave
)

// Action is a button shown next to the input
type Action struct {
	Type    ActionType
	Label   string
	Binding key.Binding
}

// Default overflow layout, in terminal columns
const (
	DefaultActionOverflowWidth = 60
	DefaultActionOverflowStep  = 10
)

// DefaultActions returns the clear, copy and save actions.
func DefaultActions(k KeyMap) []Action {
	return []Action{
		{Type: ActionClear, Label: "Clear", Binding: k.Clear},
		{Type: ActionCopy, Label: "Copy", Binding: k.Copy},
		{Type: ActionSave, Label: "Save", Binding: k.Save},
	}
}

// SplitActions decides which actions fit inline for the given width. Below
// overflowWidth every action goes to the overflow menu, then one more action
// is shown inline for every step columns. A zero width shows them all.
func SplitActions(actions []Action, width, overflowWidth, step int) (inline, overflow []Action) {
	if width <= 0 || step <= 0 {
		return actions, nil
	}

	visible := 0
	if width >= overflowWidth {
		visible = (width-overflowWidth)/step + 1
	}
	visible = min(visible, len(actions))

	return actions[:visible], actions[visible:]
}
