// Package threshold turns a scored candidate pool into the final result
// list. The cutoff is derived per query from the score distribution rather
// than fixed: a percentile baseline, a step-down schedule when too few
// candidates clear it, mercy inclusion for near-miss recent items, and a
// diversity pass that collapses near-duplicate records.
package threshold

import (
	"math"
	"sort"

	"github.com/halcyard/recall/internal/capsule"
	"github.com/halcyard/recall/internal/config"
)

// projectWindow is the raw-score distance within which a project-scoped
// candidate is preferred over a global one; outside it relevance alone rules.
const projectWindow = 0.1

// Candidate is one scored record entering selection.
type Candidate struct {
	Capsule       *capsule.Capsule
	Score         float64
	ProjectScoped bool
}

// Stats describes how a selection was made, for diagnostics.
type Stats struct {
	Tau        float64 // final cutoff applied
	K          int     // target result count
	Candidates int     // pool size entering selection
	Returned   int
	StepDowns  int // schedule steps consumed
	MercyAdded int
	Collapsed  int // candidates removed by the diversity pass
}

// Selector applies the adaptive threshold. Stateless; safe for concurrent use.
type Selector struct {
	cfg config.Selector
}

func New(cfg config.Selector) *Selector {
	return &Selector{cfg: cfg}
}

// Select picks and orders the final results from the pool. isList selects
// the larger target K used for enumeration-style queries; limit caps the
// returned count (non-positive means the configured maximum).
//
// If no candidate crosses the real-match floor the result is empty: a pool
// whose scores are made up only of recency or chaos bonuses is a no-match,
// not a weak match.
func (s *Selector) Select(pool []Candidate, isList bool, limit int) ([]Candidate, Stats) {
	st := Stats{K: s.cfg.KDefault, Candidates: len(pool)}
	if isList {
		st.K = s.cfg.KList
	}
	if limit <= 0 || limit > s.cfg.MaxResults {
		limit = s.cfg.MaxResults
	}
	if len(pool) == 0 {
		return nil, st
	}

	real := false
	for i := range pool {
		if pool[i].Score > s.cfg.RealMatchFloor {
			real = true
			break
		}
	}
	if !real {
		return nil, st
	}

	ranked := make([]Candidate, len(pool))
	copy(ranked, pool)
	orderCandidates(ranked)

	tau := s.percentileCutoff(ranked)
	selected := aboveCutoff(ranked, tau)

	// Step down the schedule while short of K. Only steps below the current
	// cutoff can admit anyone new.
	for _, step := range s.cfg.Steps {
		if len(selected) >= st.K || step >= tau {
			continue
		}
		tau = step
		selected = aboveCutoff(ranked, tau)
		st.StepDowns++
	}

	// Mercy inclusion: near-miss candidates within MercyDelta of the final
	// cutoff, most recent first, until K is reached.
	if len(selected) < st.K {
		selected, st.MercyAdded = s.mercyFill(ranked, selected, tau, st.K)
	}

	// Diversity: collapse records that share folder, type, and day, keeping
	// the best of each group, but never dedup below the target count.
	deduped := collapse(selected)
	if len(deduped) >= min(st.K, len(selected)) {
		st.Collapsed = len(selected) - len(deduped)
		selected = deduped
	}

	if len(selected) > limit {
		selected = selected[:limit]
	}
	st.Tau = tau
	st.Returned = len(selected)
	return selected, st
}

// percentileCutoff returns the configured percentile of the score
// distribution, floored at epsilon.
func (s *Selector) percentileCutoff(ranked []Candidate) float64 {
	scores := make([]float64, len(ranked))
	for i, c := range ranked {
		scores[i] = c.Score
	}
	sort.Float64s(scores)
	idx := int(math.Ceil(s.cfg.Percentile*float64(len(scores)))) - 1
	if idx < 0 {
		idx = 0
	}
	if idx >= len(scores) {
		idx = len(scores) - 1
	}
	tau := scores[idx]
	if tau < s.cfg.Epsilon {
		tau = s.cfg.Epsilon
	}
	return tau
}

func aboveCutoff(ranked []Candidate, tau float64) []Candidate {
	out := make([]Candidate, 0, len(ranked))
	for _, c := range ranked {
		if c.Score >= tau {
			out = append(out, c)
		}
	}
	return out
}

// mercyFill admits candidates scoring within MercyDelta below tau, most
// recent first, until the target count. The window never reaches below
// epsilon. Returns the grown set re-ordered.
func (s *Selector) mercyFill(ranked, selected []Candidate, tau float64, k int) ([]Candidate, int) {
	in := make(map[string]struct{}, len(selected))
	for _, c := range selected {
		in[c.Capsule.ID] = struct{}{}
	}
	floor := tau - s.cfg.MercyDelta
	if floor < s.cfg.Epsilon {
		floor = s.cfg.Epsilon
	}
	var near []Candidate
	for _, c := range ranked {
		if _, ok := in[c.Capsule.ID]; ok {
			continue
		}
		if c.Score < tau && c.Score >= floor {
			near = append(near, c)
		}
	}
	sort.SliceStable(near, func(a, b int) bool {
		ta, tb := near[a].Capsule.EffectiveTime(), near[b].Capsule.EffectiveTime()
		if !ta.Equal(tb) {
			return ta.After(tb)
		}
		return near[a].Capsule.ID < near[b].Capsule.ID
	})

	added := 0
	for _, c := range near {
		if len(selected) >= k {
			break
		}
		selected = append(selected, c)
		added++
	}
	if added > 0 {
		orderCandidates(selected)
	}
	return selected, added
}

// collapse applies the diversity pass: candidates sharing folder, type, and
// calendar day are considered redundant; the highest-ranked of each group
// survives. Input order is preserved for survivors, so running the pass on
// an already-collapsed set is a no-op.
func collapse(selected []Candidate) []Candidate {
	seen := make(map[string]struct{}, len(selected))
	out := make([]Candidate, 0, len(selected))
	for _, c := range selected {
		key := diversityKey(c.Capsule)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, c)
	}
	return out
}

func diversityKey(c *capsule.Capsule) string {
	day := "undated"
	if ts := c.EffectiveTime(); !ts.IsZero() {
		day = ts.Format("2006-01-02")
	}
	return c.Metadata.Folder + "|" + c.EffectiveType() + "|" + day
}

// orderCandidates sorts by the chaos-weighted score. A project-scoped
// candidate is preferred over a global one only when their raw scores are
// within the preference window; recency and ID break residual ties, making
// ordering fully deterministic for identical inputs.
func orderCandidates(cs []Candidate) {
	sort.SliceStable(cs, func(a, b int) bool {
		if cs[a].ProjectScoped != cs[b].ProjectScoped &&
			math.Abs(cs[a].Score-cs[b].Score) < projectWindow {
			return cs[a].ProjectScoped
		}
		wa, wb := weightedScore(cs[a]), weightedScore(cs[b])
		if wa != wb {
			return wa > wb
		}
		ta, tb := cs[a].Capsule.EffectiveTime(), cs[b].Capsule.EffectiveTime()
		if !ta.Equal(tb) {
			return ta.After(tb)
		}
		return cs[a].Capsule.ID < cs[b].Capsule.ID
	})
}

func weightedScore(c Candidate) float64 {
	return c.Score * (1 + c.Capsule.EffectiveChaos())
}
