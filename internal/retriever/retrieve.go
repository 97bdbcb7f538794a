package retriever

import (
	"context"
	"os"
	"sort"
	"strings"

	"github.com/halcyard/recall/internal/capsule"
	"github.com/halcyard/recall/internal/intent"
	"github.com/halcyard/recall/internal/semantic"
	"github.com/halcyard/recall/internal/textmatch"
	"github.com/halcyard/recall/internal/threshold"
)

// RetrieveInput carries one query. Limit caps the result count (the
// configured maximum applies regardless). ForceSpecific skips intent
// classification and treats the query as literal text. MinRelevance is a
// debug-only floor applied after selection.
type RetrieveInput struct {
	Query         string  `json:"query"`
	Limit         int     `json:"limit,omitempty"`
	Project       string  `json:"project,omitempty"`
	ForceSpecific bool    `json:"force_specific,omitempty"`
	MinRelevance  float64 `json:"min_relevance,omitempty"`
}

// RetrieveOutput is the ranked answer plus its diagnostics.
type RetrieveOutput struct {
	Results []Result `json:"results"`
	Stats   Stats    `json:"stats"`
}

// Retrieve answers a free-text query against the capsule stores and the
// vault. No matching content is a successful empty result; only malformed
// parameters are errors.
func (e *Engine) Retrieve(ctx context.Context, in RetrieveInput) (*RetrieveOutput, error) {
	start := e.now()
	if err := validateQuery(in.Query); err != nil {
		return nil, err
	}

	reqID := e.requestID()
	log := e.logger.With("request_id", reqID)

	query, tags := extractHashtags(in.Query)
	if strings.TrimSpace(query) == "" {
		// Tag-only query: match on tags alone.
		query = strings.Join(tags, " ")
	}

	project, err := e.resolveProject(in.Project, query, os.Getenv)
	if err != nil {
		return nil, err
	}

	var it intent.Intent
	if in.ForceSpecific {
		it = intent.Intent{
			Kind:      intent.General,
			Semantic:  semantic.Best(query),
			NameQuery: intent.DetectNameQuery(query),
		}
	} else {
		it = e.classifier.Classify(query)
	}
	log.Debug("query classified",
		"intent", it.Kind.String(), "category", it.Category,
		"entity", it.EntityName, "project", project)

	var results []Result
	var stats threshold.Stats
	if it.Kind == intent.Categorical {
		results, stats = e.retrieveCategorical(ctx, it, project, tags, in.Limit)
	} else {
		results, stats = e.retrieveScored(ctx, it, query, project, tags, in.Limit)
	}

	if in.MinRelevance > 0 {
		kept := results[:0]
		for _, r := range results {
			if r.Score >= in.MinRelevance {
				kept = append(kept, r)
			}
		}
		results = kept
	}

	out := &RetrieveOutput{
		Results: results,
		Stats: Stats{
			RequestID:  reqID,
			Project:    project,
			Intent:     it.Kind.String(),
			Candidates: stats.Candidates,
			Tau:        stats.Tau,
			Returned:   len(results),
			StepDowns:  stats.StepDowns,
			MercyAdded: stats.MercyAdded,
			Collapsed:  stats.Collapsed,
			Elapsed:    e.now().Sub(start),
		},
	}
	log.Info("retrieve done",
		"intent", it.Kind.String(), "candidates", stats.Candidates,
		"returned", len(results), "tau", stats.Tau,
		"elapsed", out.Stats.Elapsed)
	return out, nil
}

// retrieveScored is the general and specific-entity path: gather, score,
// select adaptively.
func (e *Engine) retrieveScored(ctx context.Context, it intent.Intent,
	query, project string, tags []string, limit int) ([]Result, threshold.Stats) {

	pool := e.gather(ctx, it, project, tags)
	if len(pool) == 0 {
		return nil, threshold.Stats{}
	}

	scoreQuery := query
	if it.Kind == intent.SpecificEntity && it.EntityName != "" {
		// Score against the extracted name so filler words ("tell me
		// about") don't dilute filename matching.
		scoreQuery = it.EntityName
	}
	q := e.scorer.Prepare(scoreQuery, it)
	now := e.now()
	for i := range pool {
		pool[i].Score = e.scorer.Score(pool[i].Capsule, q, now)
	}
	if it.Kind == intent.SpecificEntity && it.EntityName != "" {
		promoteEntityFiles(pool, it.EntityName)
	}

	selected, st := e.selector.Select(pool, it.IsList, limit)
	results := make([]Result, len(selected))
	for i, c := range selected {
		results[i] = Result{Capsule: c.Capsule, Score: c.Score, ProjectScoped: c.ProjectScoped}
	}
	return results, st
}

// retrieveCategorical lists everything of the intent's category: capsules
// whose category, type, or tags match, plus vault notes from the category's
// folder. No scoring; every hit is maximal relevance, sorted by recency.
func (e *Engine) retrieveCategorical(ctx context.Context, it intent.Intent,
	project string, tags []string, limit int) ([]Result, threshold.Stats) {

	want := it.Category
	var pool []threshold.Candidate

	for _, root := range e.resolver.Roots(project) {
		for _, c := range e.scanner.ScanCapsules(ctx, root.Path) {
			if !matchesCategory(c, want) {
				continue
			}
			pool = append(pool, threshold.Candidate{
				Capsule: c, ProjectScoped: root.ProjectScoped,
			})
		}
	}
	if e.isVaultCategory(want) {
		folder := e.resolver.ResolveFolder(want)
		for _, c := range e.scanner.ScanNotes(ctx, folder) {
			pool = append(pool, threshold.Candidate{Capsule: c})
		}
	}

	pool = dedupByID(pool)
	pool = e.applyFilters(pool, tags)

	sort.SliceStable(pool, func(a, b int) bool {
		ta, tb := pool[a].Capsule.EffectiveTime(), pool[b].Capsule.EffectiveTime()
		if !ta.Equal(tb) {
			return ta.After(tb)
		}
		return pool[a].Capsule.ID < pool[b].Capsule.ID
	})

	candidates := len(pool)
	max := e.cfg.Selector.MaxResults
	if limit > 0 && limit < max {
		max = limit
	}
	if len(pool) > max {
		pool = pool[:max]
	}

	results := make([]Result, len(pool))
	for i, c := range pool {
		results[i] = Result{Capsule: c.Capsule, Score: 1.0, ProjectScoped: c.ProjectScoped}
	}
	return results, threshold.Stats{Candidates: candidates, Returned: len(results), Tau: 1.0}
}

// gather collects the candidate pool for scored retrieval: all capsule
// store roots in priority order, then the vault folders the intent points
// at. First occurrence of an ID wins.
func (e *Engine) gather(ctx context.Context, it intent.Intent,
	project string, tags []string) []threshold.Candidate {

	var pool []threshold.Candidate
	for _, root := range e.resolver.Roots(project) {
		for _, c := range e.scanner.ScanCapsules(ctx, root.Path) {
			pool = append(pool, threshold.Candidate{
				Capsule: c, ProjectScoped: root.ProjectScoped,
			})
		}
	}
	for _, folder := range e.vaultFolders(it) {
		for _, c := range e.scanner.ScanNotes(ctx, folder) {
			pool = append(pool, threshold.Candidate{Capsule: c})
		}
	}
	pool = dedupByID(pool)
	return e.applyFilters(pool, tags)
}

// vaultFolders picks which note folders to scan for an intent. Entity
// lookups always include the people-shaped folders; otherwise only a strong
// semantic classification pulls its folder (and fallbacks) in.
func (e *Engine) vaultFolders(it intent.Intent) []string {
	var folders []string
	add := func(f string) {
		if f == "" {
			return
		}
		for _, have := range folders {
			if have == f {
				return
			}
		}
		folders = append(folders, f)
	}

	if it.Semantic.Strong() && it.Semantic.Domain != nil {
		add(it.Semantic.Domain.Folder)
		for _, fb := range it.Semantic.Domain.Fallbacks {
			add(fb)
		}
	}
	if it.Kind == intent.SpecificEntity || it.NameQuery {
		add("contacts")
		add("clients")
	}
	return folders
}

func (e *Engine) applyFilters(pool []threshold.Candidate, tags []string) []threshold.Candidate {
	filterFailures := e.cfg.FilterFailuresEnabled()
	out := pool[:0]
	for _, c := range pool {
		if len(tags) > 0 && !hasAllTags(c.Capsule, tags) {
			continue
		}
		if filterFailures && e.isFailureCapsule(c.Capsule) {
			continue
		}
		out = append(out, c)
	}
	return out
}

func (e *Engine) isVaultCategory(category string) bool {
	norm := semantic.NormalizeCategory(category)
	for _, vc := range e.cfg.VaultCategories {
		if semantic.NormalizeCategory(vc) == norm {
			return true
		}
	}
	return false
}

// promoteEntityFiles lifts vault documents whose filename is the asked-for
// entity (whole name, fuzzy) to maximal relevance, so a direct file hit is
// never cut by the adaptive threshold. Partial-name files (a compound
// filename sharing tokens with the entity) keep their scored relevance.
func promoteEntityFiles(pool []threshold.Candidate, entity string) {
	want := textmatch.Normalize(entity)
	if want == "" {
		return
	}
	for i := range pool {
		c := pool[i].Capsule
		if c.Type != capsule.TypeVaultContent {
			continue
		}
		name := textmatch.Normalize(c.Metadata.FileName)
		if name == want || textmatch.IsFuzzyMatch(name, want) {
			pool[i].Score = 1.0
		}
	}
}

// matchesCategory checks a capsule against a normalized category via its
// recorded category, its type, or its tags. Tags compare singularized, so a
// "clients" tag answers a "client" listing.
func matchesCategory(c *capsule.Capsule, want string) bool {
	if semantic.NormalizeCategory(c.Metadata.Category) == want {
		return true
	}
	if semantic.NormalizeCategory(c.EffectiveType()) == want {
		return true
	}
	for _, tag := range c.NormalizedTags() {
		if semantic.NormalizeCategory(tag) == want {
			return true
		}
	}
	return false
}
