package retriever

import (
	"context"
	"sort"
	"time"

	"github.com/halcyard/recall/internal/capsule"
	"github.com/halcyard/recall/internal/errors"
	"github.com/halcyard/recall/internal/intent"
	"github.com/halcyard/recall/internal/semantic"
	"github.com/halcyard/recall/internal/threshold"
)

func categoricalIntent(category string) intent.Intent {
	return intent.Intent{Kind: intent.Categorical, Category: category, IsList: true}
}

func invalidRange() error {
	return errors.NewInvalidRequest("date range end precedes its start")
}

// ByCategoryInput lists everything of one category. Project is optional;
// without it only the global store (plus vault notes) is consulted.
type ByCategoryInput struct {
	Project  string `json:"project,omitempty"`
	Category string `json:"category"`
	Limit    int    `json:"limit,omitempty"`
}

// ByCategoryOutput carries the listing, most recent first, every entry at
// maximal relevance.
type ByCategoryOutput struct {
	Results []Result `json:"results"`
	Stats   Stats    `json:"stats"`
}

// RetrieveByCategory bypasses scoring entirely: the caller already knows it
// wants everything of one kind.
func (e *Engine) RetrieveByCategory(ctx context.Context, in ByCategoryInput) (*ByCategoryOutput, error) {
	start := e.now()
	if err := validateProject(in.Project); err != nil {
		return nil, err
	}
	if err := validateCategory(in.Category); err != nil {
		return nil, err
	}
	reqID := e.requestID()

	want := semantic.NormalizeCategory(in.Category)
	it := categoricalIntent(want)
	results, st := e.retrieveCategorical(ctx, it, in.Project, nil, in.Limit)

	out := &ByCategoryOutput{
		Results: results,
		Stats: Stats{
			RequestID:  reqID,
			Project:    in.Project,
			Intent:     it.Kind.String(),
			Candidates: st.Candidates,
			Tau:        st.Tau,
			Returned:   len(results),
			Elapsed:    e.now().Sub(start),
		},
	}
	e.logger.Info("category listing done",
		"request_id", reqID, "category", want,
		"project", in.Project, "returned", len(results))
	return out, nil
}

// ByDateRangeInput filters capsules chronologically. Zero bounds are open.
type ByDateRangeInput struct {
	Project string    `json:"project,omitempty"`
	After   time.Time `json:"after,omitempty"`
	Before  time.Time `json:"before,omitempty"`
	Limit   int       `json:"limit,omitempty"`
}

// ByDateRangeOutput carries the matching capsules, oldest first.
type ByDateRangeOutput struct {
	Capsules []*capsule.Capsule `json:"capsules"`
	Stats    Stats              `json:"stats"`
}

// RetrieveByDateRange returns capsules whose effective time falls inside
// [after, before]. No scoring; undated capsules never match.
func (e *Engine) RetrieveByDateRange(ctx context.Context, in ByDateRangeInput) (*ByDateRangeOutput, error) {
	start := e.now()
	if err := validateProject(in.Project); err != nil {
		return nil, err
	}
	if !in.After.IsZero() && !in.Before.IsZero() && in.Before.Before(in.After) {
		return nil, invalidRange()
	}
	reqID := e.requestID()

	var pool []threshold.Candidate
	for _, root := range e.resolver.Roots(in.Project) {
		for _, c := range e.scanner.ScanCapsules(ctx, root.Path) {
			ts := c.EffectiveTime()
			if ts.IsZero() {
				continue
			}
			if !in.After.IsZero() && ts.Before(in.After) {
				continue
			}
			if !in.Before.IsZero() && ts.After(in.Before) {
				continue
			}
			pool = append(pool, threshold.Candidate{Capsule: c, ProjectScoped: root.ProjectScoped})
		}
	}
	pool = dedupByID(pool)

	sort.SliceStable(pool, func(a, b int) bool {
		ta, tb := pool[a].Capsule.EffectiveTime(), pool[b].Capsule.EffectiveTime()
		if !ta.Equal(tb) {
			return ta.Before(tb)
		}
		return pool[a].Capsule.ID < pool[b].Capsule.ID
	})

	candidates := len(pool)
	if in.Limit > 0 && len(pool) > in.Limit {
		pool = pool[:in.Limit]
	}
	capsules := make([]*capsule.Capsule, len(pool))
	for i, c := range pool {
		capsules[i] = c.Capsule
	}

	out := &ByDateRangeOutput{
		Capsules: capsules,
		Stats: Stats{
			RequestID:  reqID,
			Project:    in.Project,
			Intent:     "date_range",
			Candidates: candidates,
			Returned:   len(capsules),
			Elapsed:    e.now().Sub(start),
		},
	}
	e.logger.Info("date range listing done",
		"request_id", reqID, "project", in.Project, "returned", len(capsules))
	return out, nil
}

// ByTypeInput lists capsules of one record type.
type ByTypeInput struct {
	Project string `json:"project,omitempty"`
	Type    string `json:"type"`
	Limit   int    `json:"limit,omitempty"`
}

// RetrieveByType lists every capsule of the given type, most recent first.
// Vault notes participate when the requested type is the vault-content type.
func (e *Engine) RetrieveByType(ctx context.Context, in ByTypeInput) (*ByCategoryOutput, error) {
	start := e.now()
	if err := validateProject(in.Project); err != nil {
		return nil, err
	}
	if err := validateCategory(in.Type); err != nil {
		return nil, err
	}
	reqID := e.requestID()

	var pool []threshold.Candidate
	for _, root := range e.resolver.Roots(in.Project) {
		for _, c := range e.scanner.ScanCapsules(ctx, root.Path) {
			if c.EffectiveType() != in.Type {
				continue
			}
			pool = append(pool, threshold.Candidate{Capsule: c, ProjectScoped: root.ProjectScoped})
		}
	}
	pool = dedupByID(pool)
	pool = e.applyFilters(pool, nil)

	sort.SliceStable(pool, func(a, b int) bool {
		ta, tb := pool[a].Capsule.EffectiveTime(), pool[b].Capsule.EffectiveTime()
		if !ta.Equal(tb) {
			return ta.After(tb)
		}
		return pool[a].Capsule.ID < pool[b].Capsule.ID
	})

	candidates := len(pool)
	max := e.cfg.Selector.MaxResults
	if in.Limit > 0 && in.Limit < max {
		max = in.Limit
	}
	if len(pool) > max {
		pool = pool[:max]
	}

	results := make([]Result, len(pool))
	for i, c := range pool {
		results[i] = Result{Capsule: c.Capsule, Score: 1.0, ProjectScoped: c.ProjectScoped}
	}
	out := &ByCategoryOutput{
		Results: results,
		Stats: Stats{
			RequestID:  reqID,
			Project:    in.Project,
			Intent:     "type_listing",
			Candidates: candidates,
			Returned:   len(results),
			Elapsed:    e.now().Sub(start),
		},
	}
	e.logger.Info("type listing done",
		"request_id", reqID, "type", in.Type, "returned", len(results))
	return out, nil
}
