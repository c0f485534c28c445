package mapping

import (
	"strings"
	"unicode/utf8"
)

// DefaultAutoMapThreshold is the minimum name similarity required for
// auto-mapping. Tunable via the mapping module's auto_map_threshold setting;
// 0.8 tolerates minor spelling differences without linking unrelated names.
const DefaultAutoMapThreshold = 0.8

// Similarity returns the normalized-case Levenshtein ratio of two names:
// 1 − distance/max(len), in runes. Identical strings score 1, fully
// dissimilar strings score 0.
func Similarity(a, b string) float64 {
	a = strings.ToLower(strings.TrimSpace(a))
	b = strings.ToLower(strings.TrimSpace(b))

	if a == b {
		return 1
	}

	la := utf8.RuneCountInString(a)
	lb := utf8.RuneCountInString(b)
	if la == 0 || lb == 0 {
		return 0
	}

	maxLen := la
	if lb > maxLen {
		maxLen = lb
	}

	return 1 - float64(levenshtein([]rune(a), []rune(b)))/float64(maxLen)
}

// levenshtein computes the edit distance between two rune slices using a
// single-row dynamic program.
func levenshtein(a, b []rune) int {
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}

	row := make([]int, len(b)+1)
	for j := range row {
		row[j] = j
	}

	for i := 1; i <= len(a); i++ {
		prev := row[0]
		row[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			cur := min(row[j]+1, row[j-1]+1, prev+cost)
			prev = row[j]
			row[j] = cur
		}
	}

	return row[len(b)]
}
