// Package score computes a relevance score in [0,1] for one capsule against
// one prepared query. Scoring is a weighted sum of independent signals;
// every weight is injected so tuning stays in configuration.
package score

import (
	"strings"
	"time"

	"github.com/halcyard/recall/internal/capsule"
	"github.com/halcyard/recall/internal/config"
	"github.com/halcyard/recall/internal/intent"
	"github.com/halcyard/recall/internal/semantic"
	"github.com/halcyard/recall/internal/textmatch"
)

// maxExpandedTerms caps synonym expansion per query.
const maxExpandedTerms = 12

// exploratoryCues activate the chaos bonus: the user asked to be surprised,
// so higher-entropy capsules get a nudge.
var exploratoryCues = []string{
	"random", "surprise", "anything", "something", "weird",
	"explore", "wild", "inspiration", "interesting",
}

// Scorer scores capsules. Safe for concurrent use.
type Scorer struct {
	weights  config.Weights
	expander *textmatch.Expander
}

func New(weights config.Weights, expander *textmatch.Expander) *Scorer {
	if expander == nil {
		expander = textmatch.NewExpander(nil)
	}
	return &Scorer{weights: weights, expander: expander}
}

// Query is the per-query precomputation shared across all candidates: the
// normalized form, content tokens, synonym-only expansions, and the
// classified intent.
type Query struct {
	Raw         string
	Norm        string
	Tokens      []string
	Expanded    []string
	Intent      intent.Intent
	Exploratory bool
}

// Prepare normalizes and expands the query once so per-capsule scoring does
// no repeated text work.
func (s *Scorer) Prepare(raw string, it intent.Intent) *Query {
	q := &Query{
		Raw:    raw,
		Norm:   textmatch.Normalize(raw),
		Tokens: textmatch.Tokenize(raw),
		Intent: it,
	}
	seen := make(map[string]struct{}, len(q.Tokens))
	for _, t := range q.Tokens {
		seen[t] = struct{}{}
	}
	for _, term := range s.expander.ExpandAll(raw, maxExpandedTerms) {
		if _, dup := seen[term]; dup {
			continue
		}
		seen[term] = struct{}{}
		q.Expanded = append(q.Expanded, term)
	}
	lower := strings.ToLower(raw)
	for _, cue := range exploratoryCues {
		if strings.Contains(lower, cue) {
			q.Exploratory = true
			break
		}
	}
	return q
}

// Breakdown is the per-signal decomposition of one score, kept for debug
// output and tests.
type Breakdown struct {
	Semantic float64
	Type     float64
	Content  float64
	Metadata float64
	Expanded float64
	Recency  float64
	Chaos    float64
	Total    float64
}

// Score returns the weighted relevance of c for q at time now.
func (s *Scorer) Score(c *capsule.Capsule, q *Query, now time.Time) float64 {
	return s.Explain(c, q, now).Total
}

// Explain scores c and returns the full signal breakdown. Name-like queries
// shift weight from content onto metadata, since a person's record often
// carries the name in its filename rather than its prose.
func (s *Scorer) Explain(c *capsule.Capsule, q *Query, now time.Time) Breakdown {
	b := Breakdown{
		Semantic: semanticSignal(c, q),
		Type:     typeSignal(c, q),
		Content:  contentSignal(c, q),
		Metadata: metadataSignal(c, q),
		Recency:  recencySignal(c, now),
	}
	b.Expanded = expandedSignal(c, q, b.Content > 0 || b.Metadata > 0)
	if q.Exploratory {
		b.Chaos = c.EffectiveChaos()
	}

	contentW, metaW := s.weights.Content, s.weights.Metadata
	if q.Intent.NameQuery {
		contentW, metaW = s.weights.ContentNameLike, s.weights.MetadataNameLike
	}

	b.Total = clamp01(s.weights.Semantic*b.Semantic +
		s.weights.Type*b.Type +
		contentW*b.Content +
		metaW*b.Metadata +
		s.weights.Expanded*b.Expanded +
		s.weights.Recency*b.Recency +
		s.weights.Chaos*b.Chaos)
	return b
}

// semanticSignal credits capsules whose recorded domain agrees with the
// query's classification. A direct domain or subtype match is full credit;
// a capsule category that classifies into the same domain earns partial.
func semanticSignal(c *capsule.Capsule, q *Query) float64 {
	m := q.Intent.Semantic
	if m.Domain == nil {
		return 0
	}
	meta := c.Metadata
	if meta.Domain != "" && strings.EqualFold(meta.Domain, m.Domain.Name) {
		if m.Subtype != "" && strings.EqualFold(meta.Subtype, m.Subtype) {
			return 1.0
		}
		return 0.8
	}
	if meta.Subtype != "" && m.Subtype != "" && strings.EqualFold(meta.Subtype, m.Subtype) {
		return 0.8
	}
	if meta.Category != "" {
		if cm := semantic.Best(meta.Category); cm.Domain != nil && cm.Domain.Name == m.Domain.Name {
			return 0.6
		}
	}
	return 0
}

// typeSignal credits agreement between the query text and the capsule's
// type tag: a direct mention of the type, singular or plural, is full
// credit; a type classifying into the query's semantic domain earns half.
func typeSignal(c *capsule.Capsule, q *Query) float64 {
	typ := strings.ToLower(c.EffectiveType())
	if typ == "" || q.Norm == "" {
		return 0
	}
	if strings.Contains(q.Norm, typ) ||
		strings.Contains(q.Norm, typ+"s") ||
		strings.Contains(q.Norm, strings.TrimSuffix(typ, "s")) {
		return 1.0
	}
	if qm := q.Intent.Semantic; qm.Domain != nil {
		if tm := semantic.Best(typ); tm.Domain != nil && tm.Domain.Name == qm.Domain.Name {
			return 0.5
		}
	}
	return 0
}

// contentSignal measures query presence in the capsule body: an exact
// normalized phrase is full credit; otherwise the matched-token ratio with a
// small bonus when the first hit lands early in the text.
func contentSignal(c *capsule.Capsule, q *Query) float64 {
	if q.Norm == "" {
		return 0
	}
	body := textmatch.Normalize(c.Body())
	if body == "" {
		return 0
	}
	if strings.Contains(body, q.Norm) {
		return 1.0
	}
	if len(q.Tokens) == 0 {
		return 0
	}
	bodyTokens := strings.Fields(body)
	tokenSet := make(map[string]struct{}, len(bodyTokens))
	for _, t := range bodyTokens {
		tokenSet[t] = struct{}{}
	}
	matched, firstHit := 0, -1
	for _, t := range q.Tokens {
		if _, ok := tokenSet[t]; ok {
			matched++
			if firstHit < 0 {
				firstHit = strings.Index(body, t)
			}
			continue
		}
		for _, bt := range bodyTokens {
			if textmatch.IsFuzzyMatch(t, bt) {
				matched++
				if firstHit < 0 {
					firstHit = strings.Index(body, bt)
				}
				break
			}
		}
	}
	if matched == 0 {
		return 0
	}
	sig := float64(matched) / float64(len(q.Tokens))
	if firstHit >= 0 && firstHit < 200 {
		sig += 0.1
	}
	return clamp01(sig)
}

// metadataSignal matches query tokens against the capsule's filename,
// folder, and tags. Filenames split on word separators, so a record named
// "john_and_sarah" answers queries for either name, but a file whose name
// is exactly the queried name outranks a compound one, via the precision
// factor over filename words.
func metadataSignal(c *capsule.Capsule, q *Query) float64 {
	if len(q.Tokens) == 0 {
		return 0
	}
	nameFields := strings.Fields(textmatch.Normalize(c.Metadata.FileName))
	var otherFields []string
	if c.Metadata.Folder != "" {
		otherFields = append(otherFields, strings.Fields(textmatch.Normalize(c.Metadata.Folder))...)
	}
	otherFields = append(otherFields, c.NormalizedTags()...)
	if len(nameFields) == 0 && len(otherFields) == 0 {
		return 0
	}

	matched := 0
	nameHits := make(map[string]struct{})
	for _, t := range q.Tokens {
		hit := false
		for _, f := range nameFields {
			if t == f || textmatch.IsFuzzyMatch(t, f) {
				nameHits[f] = struct{}{}
				hit = true
				break
			}
		}
		if !hit {
			for _, f := range otherFields {
				if t == f || textmatch.IsFuzzyMatch(t, f) {
					hit = true
					break
				}
			}
		}
		if hit {
			matched++
		}
	}
	if matched == 0 {
		return 0
	}
	recall := float64(matched) / float64(len(q.Tokens))
	precision := 1.0
	if len(nameFields) > 0 && len(nameHits) > 0 {
		precision = float64(len(nameHits)) / float64(len(nameFields))
	}
	return clamp01(recall * (0.75 + 0.25*precision))
}

// expandedSignal measures synonym-term presence. When direct terms already
// matched, synonym credit decays so expansions refine rather than dominate.
func expandedSignal(c *capsule.Capsule, q *Query, directMatched bool) float64 {
	if len(q.Expanded) == 0 {
		return 0
	}
	body := textmatch.Normalize(c.Body())
	name := textmatch.Normalize(c.Metadata.FileName)
	matched := 0
	for _, t := range q.Expanded {
		if containsToken(body, t) || containsToken(name, t) {
			matched++
		}
	}
	if matched == 0 {
		return 0
	}
	sig := float64(matched) / float64(len(q.Expanded))
	if directMatched {
		sig *= 0.7
	}
	return clamp01(sig)
}

// recencySignal bands by age: a week, a month, a quarter. Undated capsules
// earn nothing rather than being treated as fresh.
func recencySignal(c *capsule.Capsule, now time.Time) float64 {
	ts := c.EffectiveTime()
	if ts.IsZero() {
		return 0
	}
	age := now.Sub(ts)
	switch {
	case age < 0:
		return 1.0
	case age <= 7*24*time.Hour:
		return 1.0
	case age <= 30*24*time.Hour:
		return 0.6
	case age <= 90*24*time.Hour:
		return 0.3
	}
	return 0
}

func containsToken(text, token string) bool {
	if text == "" || token == "" {
		return false
	}
	for _, f := range strings.Fields(text) {
		if f == token {
			return true
		}
	}
	return false
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
