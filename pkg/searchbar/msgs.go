package searchbar

import "github.com/bascanada/smartsearch/pkg/autocomplete"

// SuggestionsMsg carries the suggestions computed for a past state of the
// bar. It is dropped when the bar has changed since.
type SuggestionsMsg struct {
	Generation uint64
	Cursor     int
	Result     autocomplete.Result
}

// FocusMsg focuses the input and opens the dropdown.
type FocusMsg struct{}

// ClickOutsideMsg reports a pointer event outside of the bar.
type ClickOutsideMsg struct{}

// PasteMsg inserts text at the cursor as a paste would.
type PasteMsg struct {
	Text string
}

// SetQueryMsg replaces the query, the cursor goes to the end.
type SetQueryMsg struct {
	Query string
}

// SetCursorMsg moves the cursor to a byte offset of the query.
type SetCursorMsg struct {
	Cursor int
}

// SelectMsg accepts the suggestion at Index, as a click would.
type SelectMsg struct {
	Index int
}

// SubmitMsg is emitted on search when the bar is wrapped in a form.
type SubmitMsg struct {
	Query string
}

// savedMsg reports the outcome of persisting a search.
type savedMsg struct {
	Query string
	Err   error
}
