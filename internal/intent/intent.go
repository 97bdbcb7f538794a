// Package intent classifies a free-text query into one of three retrieval
// strategies: categorical (the user wants everything of a kind), specific
// entity (the user wants one named thing), or general (relevance scoring
// over whole content). Classification runs on ordered rules; the first rule
// that fires wins.
package intent

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/halcyard/recall/internal/semantic"
	"github.com/halcyard/recall/internal/textmatch"
)

// Kind names the retrieval strategy the query calls for.
type Kind int

const (
	General Kind = iota
	Categorical
	SpecificEntity
)

func (k Kind) String() string {
	switch k {
	case Categorical:
		return "categorical"
	case SpecificEntity:
		return "specific_entity"
	default:
		return "general"
	}
}

// Intent is the classified query. Category is set for Categorical intents
// (already normalized), EntityName for SpecificEntity intents. Semantic
// carries the best domain classification regardless of kind, and IsList
// records whether the phrasing asked for an enumeration.
type Intent struct {
	Kind       Kind
	Category   string
	EntityName string
	Semantic   semantic.Match
	IsList     bool
	NameQuery  bool
}

// Classifier applies the rule chain. DishNames extends recipe forcing with
// vault-specific dish vocabulary; Categories lists the category names the
// vault is known to hold, letting bare "my X" phrasings resolve.
type Classifier struct {
	DishNames  []string
	Categories []string
}

var (
	listPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)^(?:list|show me|show|give me)\s+(?:all\s+)?(?:of\s+)?(?:my|the)\s+(.+)$`),
		regexp.MustCompile(`(?i)^(?:what|which|who)\s+(.+?)\s+do\s+i\s+have\b`),
		regexp.MustCompile(`(?i)^(?:what|who)\s+are\s+(?:all\s+)?my\s+(.+)$`),
		regexp.MustCompile(`(?i)^all\s+(?:of\s+)?my\s+(.+)$`),
	}
	entityPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)^tell me about\s+(.+)$`),
		regexp.MustCompile(`(?i)^who is\s+(.+)$`),
		regexp.MustCompile(`(?i)^(?:info|information|details)\s+(?:on|about|for)\s+(.+)$`),
		regexp.MustCompile(`(?i)^(?:look up|pull up|find)\s+(?:the\s+)?(.+?)\s+(?:capsule|note|record|file)$`),
	}
	// Openers that ask for an explanation of a concept rather than a stored
	// entity. They stay general so content scoring governs.
	explainOpeners = []string{"describe ", "explain ", "what is ", "what's ", "how do ", "how does ", "why "}

	nameCues = []string{
		"who is", "contact", "call", "email", "phone", "reach",
		"meet", "meeting with", "find", "search", "looking for",
		"client", "person",
	}
)

// Classify runs the rule chain over the query.
func (c *Classifier) Classify(query string) Intent {
	trimmed := strings.TrimSpace(query)
	lower := strings.ToLower(trimmed)
	out := Intent{
		Semantic:  semantic.Best(trimmed),
		NameQuery: DetectNameQuery(trimmed),
	}

	// Dish vocabulary forces the recipe category before anything else: a
	// query naming a known dish is a recipe lookup no matter how it is
	// phrased.
	if cat, ok := c.forceRecipe(lower); ok {
		out.Kind = Categorical
		out.Category = cat
		out.IsList = looksLikeList(lower)
		return out
	}

	// Explanation openers never resolve to a stored entity.
	explain := false
	for _, op := range explainOpeners {
		if strings.HasPrefix(lower, op) {
			explain = true
			break
		}
	}

	for _, re := range listPatterns {
		if m := re.FindStringSubmatch(trimmed); m != nil {
			if cat := c.extractCategory(m[1]); cat != "" {
				out.Kind = Categorical
				out.Category = cat
				out.IsList = true
				return out
			}
		}
	}

	if !explain {
		for _, re := range entityPatterns {
			if m := re.FindStringSubmatch(trimmed); m != nil {
				name := cleanEntity(m[1])
				if name != "" {
					out.Kind = SpecificEntity
					out.EntityName = name
					return out
				}
			}
		}
	}

	// Bare known-category queries ("my recipes", "groceries") resolve
	// categorically when the whole query is the category.
	if cat := c.bareCategory(lower); cat != "" {
		out.Kind = Categorical
		out.Category = cat
		out.IsList = looksLikeList(lower)
		return out
	}

	out.Kind = General
	out.IsList = looksLikeList(lower)
	return out
}

func (c *Classifier) forceRecipe(lower string) (string, bool) {
	if strings.Contains(lower, "recipe") {
		return "recipe", true
	}
	for _, dish := range c.DishNames {
		d := strings.ToLower(strings.TrimSpace(dish))
		if d != "" && containsWord(lower, d) {
			return "recipe", true
		}
	}
	return "", false
}

// extractCategory reduces a captured tail like "failed recipes please" to a
// normalized category: a known category wins, then a strong semantic read of
// the tail, then plain singularization of the head noun.
func (c *Classifier) extractCategory(tail string) string {
	tail = strings.TrimSpace(strings.TrimRight(tail, "?.!"))
	if tail == "" {
		return ""
	}
	words := strings.Fields(strings.ToLower(tail))
	// Walk from the last word back: list phrasings put the noun at the end
	// ("all my failed recipes").
	for i := len(words) - 1; i >= 0; i-- {
		w := semantic.NormalizeCategory(words[i])
		if c.knownCategory(w) {
			return w
		}
	}
	// Fall back to a strong semantic read of the whole tail.
	if m := semantic.Best(tail); m.Strong() {
		if m.Subtype != "" {
			return m.Subtype
		}
		return m.Domain.Name
	}
	// Last resort: singularize the head noun. A list-shaped query stays
	// categorical even when no dictionary knows its vocabulary.
	return semantic.NormalizeCategory(words[len(words)-1])
}

func (c *Classifier) bareCategory(lower string) string {
	q := strings.TrimSpace(strings.TrimRight(lower, "?.!"))
	q = strings.TrimPrefix(q, "my ")
	if strings.ContainsRune(q, ' ') {
		return ""
	}
	norm := semantic.NormalizeCategory(q)
	if c.knownCategory(norm) {
		return norm
	}
	return ""
}

func (c *Classifier) knownCategory(norm string) bool {
	for _, known := range c.Categories {
		if semantic.NormalizeCategory(known) == norm {
			return true
		}
	}
	return false
}

// containsWord reports whether phrase appears in s on word boundaries.
func containsWord(s, phrase string) bool {
	idx := 0
	for {
		i := strings.Index(s[idx:], phrase)
		if i < 0 {
			return false
		}
		start := idx + i
		end := start + len(phrase)
		leftOK := start == 0 || !isWordByte(s[start-1])
		rightOK := end == len(s) || !isWordByte(s[end])
		if leftOK && rightOK {
			return true
		}
		idx = start + 1
	}
}

func isWordByte(b byte) bool {
	return b == '_' || ('a' <= b && b <= 'z') || ('A' <= b && b <= 'Z') || ('0' <= b && b <= '9')
}

func cleanEntity(s string) string {
	s = strings.TrimSpace(strings.TrimRight(s, "?.!"))
	s = strings.TrimPrefix(strings.ToLower(s), "the ")
	return strings.TrimSpace(s)
}

func looksLikeList(lower string) bool {
	for _, cue := range []string{"list", "all my", "all of my", "show me", "what are my", "who are my", "everything"} {
		if strings.Contains(lower, cue) {
			return true
		}
	}
	return false
}

// DetectNameQuery reports whether the query is looking for a person: the
// whole query is one to three capitalized words ("John", "Angela Smith"), a
// name cue appears, or a capitalized token shows up past the first word and
// is not a stop word.
func DetectNameQuery(query string) bool {
	words := strings.Fields(query)
	if n := len(words); n >= 1 && n <= 3 {
		all := true
		for _, w := range words {
			if !isCapitalizedWord(w) {
				all = false
				break
			}
		}
		if all {
			return true
		}
	}
	lower := strings.ToLower(query)
	for _, cue := range nameCues {
		if strings.Contains(lower, cue) {
			return true
		}
	}
	for i, w := range words {
		if i == 0 {
			continue
		}
		r := []rune(w)
		if len(r) > 1 && unicode.IsUpper(r[0]) && !textmatch.IsStopWord(strings.ToLower(w)) {
			return true
		}
	}
	return false
}

// isCapitalizedWord matches a leading upper-case letter followed only by
// lower-case letters.
func isCapitalizedWord(w string) bool {
	r := []rune(w)
	if len(r) < 2 || !unicode.IsUpper(r[0]) {
		return false
	}
	for _, c := range r[1:] {
		if !unicode.IsLower(c) {
			return false
		}
	}
	return true
}
