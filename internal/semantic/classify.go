package semantic

import (
	"sort"
	"strings"

	"github.com/halcyard/recall/internal/textmatch"
)

// Strong is the minimum score at which a classification is trusted enough to
// drive folder routing on its own. A single root-term hit (score 2) stays
// advisory.
const Strong = 3

// Match is one scored domain classification. Subtype is set when a subtype
// vocabulary contributed to the score, and names the best-matching subtype.
type Match struct {
	Domain  *Domain
	Subtype string
	Score   int
}

// Strong reports whether the match is confident enough to act on alone.
func (m Match) Strong() bool {
	return m.Score >= Strong
}

// Classify scores the query against every domain and returns matches ranked
// by score, with ties broken by domain specificity (narrower wins). Root-term
// and edge-case hits score 2 each, subtype-term hits 3. Fuzzy matching
// absorbs small typos in individual terms.
func Classify(query string) []Match {
	tokens := queryTokens(query)
	if len(tokens) == 0 {
		return nil
	}

	var matches []Match
	for i := range domains {
		d := &domains[i]
		score := 0
		for _, term := range d.Terms {
			if termHit(tokens, term) {
				score += 2
			}
		}
		for _, term := range d.EdgeCases {
			if termHit(tokens, term) {
				score += 2
			}
		}
		subtype, subScore := bestSubtype(d, tokens)
		score += subScore
		if score > 0 {
			matches = append(matches, Match{Domain: d, Subtype: subtype, Score: score})
		}
	}

	sort.SliceStable(matches, func(a, b int) bool {
		if matches[a].Score != matches[b].Score {
			return matches[a].Score > matches[b].Score
		}
		return matches[a].Domain.Specificity > matches[b].Domain.Specificity
	})
	return matches
}

// Best returns the top classification for the query, or a zero Match when
// nothing scored.
func Best(query string) Match {
	ranked := Classify(query)
	if len(ranked) == 0 {
		return Match{}
	}
	return ranked[0]
}

func bestSubtype(d *Domain, tokens []string) (string, int) {
	bestName, bestScore := "", 0
	// Iterate deterministically so equal-scoring subtypes resolve the same
	// way on every run.
	names := make([]string, 0, len(d.Subtypes))
	for name := range d.Subtypes {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		score := 0
		for _, term := range d.Subtypes[name] {
			if termHit(tokens, term) {
				score += 3
			}
		}
		if score > bestScore {
			bestName, bestScore = name, score
		}
	}
	return bestName, bestScore
}

// termHit matches a vocabulary term against query tokens. Multi-word terms
// must appear as a token subsequence; single words match exactly or fuzzily.
func termHit(tokens []string, term string) bool {
	term = strings.ToLower(term)
	words := strings.FieldsFunc(term, func(r rune) bool { return r == ' ' || r == '-' })
	if len(words) > 1 {
		return phraseHit(tokens, words)
	}
	for _, tok := range tokens {
		if tok == term || textmatch.IsFuzzyMatch(tok, term) {
			return true
		}
	}
	return false
}

func phraseHit(tokens, words []string) bool {
	if len(tokens) < len(words) {
		return false
	}
	for i := 0; i+len(words) <= len(tokens); i++ {
		ok := true
		for j, w := range words {
			if tokens[i+j] != w {
				ok = false
				break
			}
		}
		if ok {
			return true
		}
	}
	return false
}

func queryTokens(query string) []string {
	norm := textmatch.Normalize(query)
	if norm == "" {
		return nil
	}
	return strings.Fields(norm)
}

// NormalizeCategory maps a user-supplied category name onto a canonical
// form: lowercase, trimmed, with singular/plural variants reduced so
// "recipes" and "recipe" address the same category. Normalization is purely
// lexical; semantic classification routes folders, never renames categories.
func NormalizeCategory(category string) string {
	c := strings.ToLower(strings.TrimSpace(category))
	if c == "" {
		return c
	}
	return Singularize(c)
}

// Singularize applies conservative English pluralization reversal: -ies to
// -y, consonant+es to -e removal, then a bare -s strip. Words that do not
// look plural pass through unchanged.
func Singularize(word string) string {
	switch {
	case len(word) > 3 && strings.HasSuffix(word, "ies"):
		return word[:len(word)-3] + "y"
	case len(word) > 3 && strings.HasSuffix(word, "es") && !strings.HasSuffix(word, "ses") && isConsonant(word[len(word)-3]):
		return word[:len(word)-1]
	case len(word) > 2 && strings.HasSuffix(word, "s") && !strings.HasSuffix(word, "ss"):
		return word[:len(word)-1]
	}
	return word
}

func isConsonant(b byte) bool {
	switch b {
	case 'a', 'e', 'i', 'o', 'u':
		return false
	}
	return b >= 'a' && b <= 'z'
}
