// Package textmatch provides the text primitives the retrieval engine is
// built on: normalization, tokenization, stop-word filtering, edit-distance
// fuzzy matching, and synonym expansion. Everything here is a pure function.
package textmatch

import (
	"regexp"
	"strings"
)

// stopWords are excluded from query tokens before scoring.
var stopWords = map[string]struct{}{
	"a": {}, "an": {}, "and": {}, "are": {}, "as": {}, "at": {},
	"be": {}, "by": {}, "for": {}, "from": {}, "has": {}, "he": {},
	"in": {}, "is": {}, "it": {}, "its": {}, "of": {}, "on": {},
	"that": {}, "the": {}, "to": {}, "was": {}, "will": {}, "with": {},
}

var (
	whitespaceRegex = regexp.MustCompile(`\s+`)
	separatorRegex  = regexp.MustCompile(`[\p{P}\p{S}]+`)
)

// Normalize lowers a term to its canonical key form: trimmed, lower-cased,
// punctuation and separators stripped, internal whitespace collapsed.
func Normalize(s string) string {
	s = strings.TrimSpace(strings.ToLower(s))
	s = separatorRegex.ReplaceAllString(s, " ")
	s = whitespaceRegex.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// Tokenize splits text into lower-cased word tokens, dropping stop words and
// tokens shorter than three characters.
func Tokenize(s string) []string {
	fields := strings.Fields(strings.ToLower(s))
	tokens := make([]string, 0, len(fields))
	for _, f := range fields {
		f = strings.Trim(f, `.,;:!?"'()[]{}`)
		if len(f) <= 2 {
			continue
		}
		if _, stop := stopWords[f]; stop {
			continue
		}
		tokens = append(tokens, f)
	}
	return tokens
}

// IsStopWord reports whether w is in the stop-word list.
func IsStopWord(w string) bool {
	_, ok := stopWords[strings.ToLower(w)]
	return ok
}
