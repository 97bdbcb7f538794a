package textmatch

// coreSynonyms maps high-value query terms to their expansions. Directional:
// user vocabulary on the left, corpus vocabulary on the right.
var coreSynonyms = map[string][]string{
	"lifts":    {"workout", "exercise", "training", "strength", "gym"},
	"lift":     {"workout", "exercise", "training", "strength"},
	"workout":  {"exercise", "training", "gym", "strength"},
	"workouts": {"exercise", "training", "gym"},
	"exercise": {"workout", "training", "gym"},
	"recipe":   {"food", "meal", "cooking", "dish", "preparation"},
	"recipes":  {"food", "meal", "cooking", "dish"},
	"client":   {"customer", "account", "contact", "business"},
	"clients":  {"customer", "account", "contact", "business"},
}

// maxExpansionsPerTerm caps how many synonyms a single term contributes, to
// keep expansion from drowning literal matches.
const maxExpansionsPerTerm = 4

// Expander expands query terms through the synonym dictionary. Extra entries
// from configuration are merged over the core table at construction.
type Expander struct {
	synonyms map[string][]string
}

// NewExpander builds an Expander with optional additional synonyms.
func NewExpander(extra map[string][]string) *Expander {
	if len(extra) == 0 {
		return &Expander{synonyms: coreSynonyms}
	}
	merged := make(map[string][]string, len(coreSynonyms)+len(extra))
	for k, v := range coreSynonyms {
		merged[k] = v
	}
	for k, v := range extra {
		merged[k] = v
	}
	return &Expander{synonyms: merged}
}

// Expand returns the term plus its configured synonyms, capped.
func (e *Expander) Expand(term string) []string {
	term = Normalize(term)
	out := []string{term}
	for _, syn := range e.synonyms[term] {
		if len(out) > maxExpansionsPerTerm {
			break
		}
		out = append(out, syn)
	}
	return out
}

// ExpandAll expands every token of the query, deduplicated, original tokens
// first, capped at maxTerms.
func (e *Expander) ExpandAll(query string, maxTerms int) []string {
	words := Tokenize(query)
	seen := make(map[string]struct{}, len(words))
	out := make([]string, 0, maxTerms)

	add := func(t string) {
		if len(out) >= maxTerms {
			return
		}
		if _, dup := seen[t]; dup {
			return
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}

	for _, w := range words {
		add(w)
	}
	for _, w := range words {
		for _, syn := range e.synonyms[w] {
			add(syn)
		}
	}
	return out
}
