package server

import (
	"fmt"
	"strings"
)

// resolveCursor defaults a missing cursor to the end of the query and
// checks that it falls within it.
func resolveCursor(text string, cursor *int) (int, error) {
	if cursor == nil {
		return len(text), nil
	}
	if *cursor < 0 || *cursor > len(text) {
		return 0, fmt.Errorf("cursor must be between 0 and %d", len(text))
	}
	return *cursor, nil
}

func validateEditRequest(req *EditRequest) error {
	switch req.Action {
	case ActionAccept:
		if req.Item == nil || strings.TrimSpace(req.Item.Value) == "" {
			return fmt.Errorf("action %q requires an item with a value", ActionAccept)
		}
	case ActionDelete, ActionNegate, ActionNext, ActionPrevious, ActionBrackets:
	case "":
		return fmt.Errorf("action is required")
	default:
		return fmt.Errorf("unknown action %q", req.Action)
	}
	return nil
}
