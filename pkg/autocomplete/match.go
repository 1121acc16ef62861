package autocomplete

import (
	"strings"
	"sync"

	"github.com/junegunn/fzf/src/algo"
	"github.com/junegunn/fzf/src/util"
)

// Matcher decides whether a candidate key matches the search term
type Matcher interface {
	Match(candidate, term string) bool
}

// SubstringMatcher matches case-insensitive substrings
type SubstringMatcher struct{}

func (SubstringMatcher) Match(candidate, term string) bool {
	return strings.Contains(strings.ToLower(candidate), strings.ToLower(term))
}

func init() {
	algo.Init("default")
}

// FuzzyMatcher matches with the fzf algorithm, "evt" matches "event.type".
type FuzzyMatcher struct {
	mu   sync.Mutex
	slab *util.Slab
}

// NewFuzzyMatcher creates a fzf backed matcher
func NewFuzzyMatcher() *FuzzyMatcher {
	return &FuzzyMatcher{slab: util.MakeSlab(64, 4096)}
}

func (f *FuzzyMatcher) Match(candidate, term string) bool {
	if term == "" {
		return true
	}
	chars := util.ToChars([]byte(strings.ToLower(candidate)))
	pattern := []rune(strings.ToLower(term))

	// the slab is scratch space shared between calls
	f.mu.Lock()
	result, _ := algo.FuzzyMatchV2(false, true, true, &chars, pattern, false, f.slab)
	f.mu.Unlock()

	return result.Start >= 0 && result.Score > 0
}
