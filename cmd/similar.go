package cmd

import (
	"sort"
	"strings"
)

// levenshtein is the edit distance between a and b, in bytes.
func levenshtein(a, b string) int {
	if a == b {
		return 0
	}
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}

	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(a); i++ {
		curr[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			curr[j] = min(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(b)]
}

// suggestSimilar returns up to limit candidates close to target, closest
// first. Candidates containing target, or contained in it, rank higher.
func suggestSimilar(target string, candidates []string, limit int) []string {
	type scored struct {
		value string
		score int
	}

	target = strings.ToLower(target)
	var ranked []scored
	for _, c := range candidates {
		lc := strings.ToLower(c)
		if lc == target {
			continue
		}
		score := levenshtein(target, lc)
		if strings.Contains(lc, target) || strings.Contains(target, lc) {
			score = 1
		}
		if score > max(len(target)/2, 2) {
			continue
		}
		ranked = append(ranked, scored{value: c, score: score})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].score != ranked[j].score {
			return ranked[i].score < ranked[j].score
		}
		return ranked[i].value < ranked[j].value
	})

	out := make([]string, 0, limit)
	for i := 0; i < len(ranked) && i < limit; i++ {
		out = append(out, ranked[i].value)
	}
	return out
}
