// Package retriever orchestrates a query end to end: validate, classify
// intent, resolve candidate sources, scan fresh, score, and select. Every
// invocation is stateless; nothing is indexed or cached between queries.
package retriever

import (
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/halcyard/recall/internal/capsule"
	"github.com/halcyard/recall/internal/config"
	"github.com/halcyard/recall/internal/errors"
	"github.com/halcyard/recall/internal/intent"
	"github.com/halcyard/recall/internal/score"
	"github.com/halcyard/recall/internal/textmatch"
	"github.com/halcyard/recall/internal/threshold"
	"github.com/halcyard/recall/internal/vault"
)

// EnvForceProject overrides project resolution for every query when set.
const EnvForceProject = "RECALL_FORCE_PROJECT"

const (
	maxProjectLen  = 100
	maxCategoryLen = 50

	// Queries longer than this skip project inference; they are prose, not
	// a scoped lookup.
	maxInferenceQueryLen = 1000
)

var namePattern = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// Engine is the retrieval core. Construct once, use for many queries; all
// methods are safe for concurrent use.
type Engine struct {
	cfg        *config.Config
	logger     *slog.Logger
	resolver   *vault.Resolver
	scanner    *vault.Scanner
	classifier *intent.Classifier
	scorer     *score.Scorer
	selector   *threshold.Selector

	now func() time.Time
}

func New(cfg *config.Config, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		cfg:      cfg,
		logger:   logger,
		resolver: vault.NewResolver(cfg, logger),
		scanner:  vault.NewScanner(cfg, logger),
		classifier: &intent.Classifier{
			DishNames:  cfg.DishNames,
			Categories: cfg.VaultCategories,
		},
		scorer:   score.New(cfg.Weights, textmatch.NewExpander(cfg.Synonyms)),
		selector: threshold.New(cfg.Selector),
		now:      time.Now,
	}
}

// Result is one ranked hit.
type Result struct {
	Capsule       *capsule.Capsule `json:"capsule"`
	Score         float64          `json:"score"`
	ProjectScoped bool             `json:"project_scoped,omitempty"`
}

// Stats describes how a query was answered, for logs and debug output.
type Stats struct {
	RequestID  string        `json:"request_id"`
	Project    string        `json:"project,omitempty"`
	Intent     string        `json:"intent"`
	Candidates int           `json:"candidates"`
	Tau        float64       `json:"tau"`
	Returned   int           `json:"returned"`
	StepDowns  int           `json:"step_downs,omitempty"`
	MercyAdded int           `json:"mercy_added,omitempty"`
	Collapsed  int           `json:"collapsed,omitempty"`
	Elapsed    time.Duration `json:"elapsed"`
}

func (e *Engine) requestID() string {
	return ulid.Make().String()
}

// VaultFolders lists the vault's topic folders.
func (e *Engine) VaultFolders() ([]string, error) {
	return e.resolver.ListFolders()
}

// validateProject checks a project name against the allow-listed pattern.
// Empty is fine (global scope).
func validateProject(project string) error {
	if project == "" {
		return nil
	}
	if len(project) > maxProjectLen || !namePattern.MatchString(project) {
		return errors.NewInvalidProject(project)
	}
	return nil
}

func validateCategory(category string) error {
	if category == "" || len(category) > maxCategoryLen {
		return errors.NewInvalidCategory(category)
	}
	for _, f := range strings.Fields(category) {
		if !namePattern.MatchString(f) {
			return errors.NewInvalidCategory(category)
		}
	}
	return nil
}

func validateQuery(query string) error {
	if strings.TrimSpace(query) == "" {
		return errors.NewInvalidRequest("query must not be empty")
	}
	if strings.ContainsRune(query, 0) {
		return errors.NewInvalidRequest("query contains a null byte")
	}
	return nil
}

// resolveProject picks the project scope for a query: an explicit argument
// wins, then the environment override, then inference from query text.
func (e *Engine) resolveProject(explicit, query string, env func(string) string) (string, error) {
	if explicit != "" {
		if err := validateProject(explicit); err != nil {
			return "", err
		}
		return explicit, nil
	}
	if forced := env(EnvForceProject); forced != "" {
		if validateProject(forced) != nil {
			e.logger.Warn("ignoring invalid forced project", "project", forced)
		} else {
			return forced, nil
		}
	}
	if len(query) <= maxInferenceQueryLen {
		return e.resolver.InferProject(query), nil
	}
	return "", nil
}

// dedupByID keeps the first occurrence of each capsule ID. Scan order puts
// project-scoped roots first, so the project copy of a record always wins.
func dedupByID(cands []threshold.Candidate) []threshold.Candidate {
	seen := make(map[string]struct{}, len(cands))
	out := cands[:0]
	for _, c := range cands {
		if _, dup := seen[c.Capsule.ID]; dup {
			continue
		}
		seen[c.Capsule.ID] = struct{}{}
		out = append(out, c)
	}
	return out
}

// isFailureCapsule reports whether a conversation record is a stored
// assistant failure ("I don't have any...") rather than real content.
// Surfacing those as memories is worse than silence.
func (e *Engine) isFailureCapsule(c *capsule.Capsule) bool {
	if c.Metadata.Failure {
		return true
	}
	if c.EffectiveType() != "conversation" {
		return false
	}
	body := strings.ToLower(c.Body())
	for _, phrase := range e.cfg.FailurePhrases {
		if strings.Contains(body, strings.ToLower(phrase)) {
			return true
		}
	}
	return false
}

// extractHashtags splits "#tag" filters out of the query text. Returns the
// query with tags removed and the normalized tag list.
func extractHashtags(query string) (string, []string) {
	if !strings.Contains(query, "#") {
		return query, nil
	}
	var tags []string
	var rest []string
	for _, f := range strings.Fields(query) {
		if strings.HasPrefix(f, "#") && len(f) > 1 {
			tags = append(tags, textmatch.Normalize(f[1:]))
			continue
		}
		rest = append(rest, f)
	}
	return strings.Join(rest, " "), tags
}

func hasAllTags(c *capsule.Capsule, tags []string) bool {
	for _, t := range tags {
		if !c.HasTag(t) {
			return false
		}
	}
	return true
}
