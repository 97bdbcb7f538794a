package textmatch

import "strings"

// fuzzyTolerance returns the edit-distance budget for a string of the given
// length: 1 for short strings, 2 up to eight characters, 3 beyond.
func fuzzyTolerance(length int) int {
	switch {
	case length <= 4:
		return 1
	case length <= 8:
		return 2
	default:
		return 3
	}
}

// IsFuzzyMatch reports whether a and b are equal within a length-scaled
// Levenshtein tolerance. Comparison is case-insensitive.
func IsFuzzyMatch(a, b string) bool {
	a = strings.ToLower(a)
	b = strings.ToLower(b)
	if a == b {
		return true
	}
	longest := max(len(a), len(b))
	return Levenshtein(a, b) <= fuzzyTolerance(longest)
}

// Similarity returns 1 - distance/maxLen in [0,1]; 1 for identical strings.
func Similarity(a, b string) float64 {
	a = strings.ToLower(a)
	b = strings.ToLower(b)
	longest := max(len(a), len(b))
	if longest == 0 {
		return 1
	}
	return 1 - float64(Levenshtein(a, b))/float64(longest)
}

// Levenshtein computes the edit distance between a and b using two rolling
// rows rather than the full matrix.
func Levenshtein(a, b string) int {
	if a == b {
		return 0
	}
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}

	prev := make([]int, len(a)+1)
	curr := make([]int, len(a)+1)
	for i := range prev {
		prev[i] = i
	}

	for j := 1; j <= len(b); j++ {
		curr[0] = j
		for i := 1; i <= len(a); i++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			curr[i] = min(curr[i-1]+1, prev[i]+1, prev[i-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(a)]
}
