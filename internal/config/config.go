// Package config holds the injectable configuration for the retrieval
// engine. Every empirically tuned constant (scorer weights, the percentile
// baseline, the step-down schedule) lives here as a named default that a
// config file may override; the engine itself carries no literals.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// StoreDirName is the hidden directory under the vault root that holds the
// capsule stores.
const StoreDirName = ".recall"

// Config is the root configuration for the retrieval engine.
type Config struct {
	// VaultPath is the root folder of the user's notes. Required for any
	// operation that touches disk.
	VaultPath string `yaml:"vault_path"`

	// CatchAllFolder receives content with no better folder mapping. Created
	// on first use so content is never silently dropped.
	CatchAllFolder string `yaml:"catch_all_folder"`

	// CoreFolders are vault folders expected to exist; categories resolving
	// to one of these skip the discovery fallback.
	CoreFolders []string `yaml:"core_folders"`

	// Folders overrides the domain → vault folder mapping.
	Folders map[string]string `yaml:"folders"`

	// ProjectMappings maps query keywords to project folder names, consulted
	// before the domain classifier when inferring a project from query text.
	ProjectMappings map[string]string `yaml:"project_mappings"`

	// VaultCategories are categories whose content lives primarily as raw
	// vault files rather than structured capsules.
	VaultCategories []string `yaml:"vault_categories"`

	// DishNames feed the recipe heuristic: queries mentioning one of these
	// are forced to a categorical recipes intent.
	DishNames []string `yaml:"dish_names"`

	// Synonyms adds entries to the static synonym dictionary.
	Synonyms map[string][]string `yaml:"synonyms"`

	// FilterFailures drops conversation capsules that contain known
	// assistant-failure phrases. On by default.
	FilterFailures *bool `yaml:"filter_failures"`

	// FailurePhrases are the phrases the failure filter looks for.
	FailurePhrases []string `yaml:"failure_phrases"`

	Scan     Scan     `yaml:"scan"`
	Weights  Weights  `yaml:"weights"`
	Selector Selector `yaml:"selector"`
}

// Scan bounds the per-query corpus walk.
type Scan struct {
	// MaxDepth limits directory recursion.
	MaxDepth int `yaml:"max_depth"`

	// MaxFileBytes is the ceiling above which files are skipped with a
	// warning, never loaded.
	MaxFileBytes int64 `yaml:"max_file_bytes"`

	// Concurrency bounds the number of in-flight file reads.
	Concurrency int `yaml:"concurrency"`
}

// Weights are the relevance scorer's signal weights. NameLike variants apply
// when the query looks like a person or entity name.
type Weights struct {
	Semantic         float64 `yaml:"semantic"`
	Type             float64 `yaml:"type"`
	Content          float64 `yaml:"content"`
	ContentNameLike  float64 `yaml:"content_name_like"`
	Metadata         float64 `yaml:"metadata"`
	MetadataNameLike float64 `yaml:"metadata_name_like"`
	Expanded         float64 `yaml:"expanded"`
	Recency          float64 `yaml:"recency"`
	Chaos            float64 `yaml:"chaos"`
}

// Selector configures the adaptive threshold selection.
type Selector struct {
	// KDefault is the target result count for non-listing queries.
	KDefault int `yaml:"k_default"`

	// KList is the target result count for categorical/listing queries.
	KList int `yaml:"k_list"`

	// MaxResults is the hard cap on returned results.
	MaxResults int `yaml:"max_results"`

	// Percentile of the score distribution used as the initial cutoff.
	Percentile float64 `yaml:"percentile"`

	// Epsilon is the absolute floor for the cutoff.
	Epsilon float64 `yaml:"epsilon"`

	// Steps is the step-down schedule tried when the percentile cutoff
	// yields fewer than K results.
	Steps []float64 `yaml:"steps"`

	// MercyDelta admits candidates scoring within this distance below the
	// final cutoff, most recent first, when still short of K.
	MercyDelta float64 `yaml:"mercy_delta"`

	// RealMatchFloor separates genuine matches from scores made up only of
	// recency/chaos bonuses. If nothing crosses it, the result is empty.
	RealMatchFloor float64 `yaml:"real_match_floor"`
}

// DefaultConfig returns the engine defaults. The numeric values are tuned
// constants carried over from production use; override rather than re-derive.
func DefaultConfig() *Config {
	return &Config{
		CatchAllFolder: "Misc",
		CoreFolders:    []string{"clients", "Foods", "medical", "legal", "contacts"},
		ProjectMappings: map[string]string{
			"clients": "clients", "client": "clients",
			"customers": "clients", "customer": "clients",
			"recipes": "foods", "recipe": "foods",
			"food": "foods", "foods": "foods",
			"meals": "foods", "meal": "foods", "cooking": "foods",
			"lifts": "lifts", "lift": "lifts",
			"workout": "lifts", "workouts": "lifts",
			"exercise": "lifts", "exercises": "lifts",
			"training": "lifts", "gym": "lifts",
			// semantic subtypes / domains
			"sales": "clients", "professional": "clients",
			"nutrition": "foods", "physical": "lifts",
		},
		VaultCategories: []string{
			"clients", "sales", "professional",
			"cooking", "food", "foods", "recipes",
			"medical", "health", "legal", "contacts",
		},
		DishNames: []string{
			"bacon wrapped", "carnivore ice cream", "halloumi",
			"duck breast", "lamb", "custard",
		},
		FailurePhrases: []string{
			"i don't have",
			"no client data",
			"would you like me to re-index",
			"i don't see any",
			"no information about",
		},
		Scan: Scan{
			MaxDepth:     10,
			MaxFileBytes: 50 * 1024 * 1024,
			Concurrency:  8,
		},
		Weights: Weights{
			Semantic:         0.25,
			Type:             0.20,
			Content:          0.35,
			ContentNameLike:  0.25,
			Metadata:         0.10,
			MetadataNameLike: 0.25,
			Expanded:         0.10,
			Recency:          0.03,
			Chaos:            0.02,
		},
		Selector: Selector{
			KDefault:       5,
			KList:          7,
			MaxResults:     25,
			Percentile:     0.65,
			Epsilon:        0.01,
			Steps:          []float64{0.15, 0.10, 0.06, 0.03, 0.01},
			MercyDelta:     0.01,
			RealMatchFloor: 0.1,
		},
	}
}

// DefaultConfigPath returns ~/.recall/config.yaml.
func DefaultConfigPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, StoreDirName, "config.yaml")
}

// Load reads configuration from path, merging it over the defaults.
// A missing file yields the defaults; a malformed file is an error.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	path = strings.TrimSpace(path)
	if path == "" {
		path = DefaultConfigPath()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	var file Config
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	merge(cfg, &file)
	return cfg, nil
}

// FilterFailuresEnabled reports whether the failure filter is active.
func (c *Config) FilterFailuresEnabled() bool {
	if c.FilterFailures == nil {
		return true
	}
	return *c.FilterFailures
}

// GlobalCapsuleDir returns the global capsule store path.
func (c *Config) GlobalCapsuleDir() string {
	return filepath.Join(c.VaultPath, StoreDirName, "capsules")
}

// ProjectCapsuleDir returns the project-scoped capsule store path.
func (c *Config) ProjectCapsuleDir(project string) string {
	return filepath.Join(c.VaultPath, StoreDirName, "projects", project, "capsules")
}

// merge overlays non-zero values from src onto dst. Scalars replace; maps
// merge key-wise; lists replace wholesale (a list override is a full
// statement of intent, not an append).
func merge(dst, src *Config) {
	if src.VaultPath != "" {
		dst.VaultPath = src.VaultPath
	}
	if src.CatchAllFolder != "" {
		dst.CatchAllFolder = src.CatchAllFolder
	}
	if len(src.CoreFolders) > 0 {
		dst.CoreFolders = src.CoreFolders
	}
	if len(src.Folders) > 0 {
		if dst.Folders == nil {
			dst.Folders = make(map[string]string)
		}
		for k, v := range src.Folders {
			dst.Folders[k] = v
		}
	}
	if len(src.ProjectMappings) > 0 {
		for k, v := range src.ProjectMappings {
			dst.ProjectMappings[k] = v
		}
	}
	if len(src.VaultCategories) > 0 {
		dst.VaultCategories = src.VaultCategories
	}
	if len(src.DishNames) > 0 {
		dst.DishNames = src.DishNames
	}
	if len(src.Synonyms) > 0 {
		if dst.Synonyms == nil {
			dst.Synonyms = make(map[string][]string)
		}
		for k, v := range src.Synonyms {
			dst.Synonyms[k] = v
		}
	}
	if src.FilterFailures != nil {
		dst.FilterFailures = src.FilterFailures
	}
	if len(src.FailurePhrases) > 0 {
		dst.FailurePhrases = src.FailurePhrases
	}

	if src.Scan.MaxDepth > 0 {
		dst.Scan.MaxDepth = src.Scan.MaxDepth
	}
	if src.Scan.MaxFileBytes > 0 {
		dst.Scan.MaxFileBytes = src.Scan.MaxFileBytes
	}
	if src.Scan.Concurrency > 0 {
		dst.Scan.Concurrency = src.Scan.Concurrency
	}

	mergeWeights(&dst.Weights, &src.Weights)
	mergeSelector(&dst.Selector, &src.Selector)
}

func mergeWeights(dst, src *Weights) {
	if src.Semantic > 0 {
		dst.Semantic = src.Semantic
	}
	if src.Type > 0 {
		dst.Type = src.Type
	}
	if src.Content > 0 {
		dst.Content = src.Content
	}
	if src.ContentNameLike > 0 {
		dst.ContentNameLike = src.ContentNameLike
	}
	if src.Metadata > 0 {
		dst.Metadata = src.Metadata
	}
	if src.MetadataNameLike > 0 {
		dst.MetadataNameLike = src.MetadataNameLike
	}
	if src.Expanded > 0 {
		dst.Expanded = src.Expanded
	}
	if src.Recency > 0 {
		dst.Recency = src.Recency
	}
	if src.Chaos > 0 {
		dst.Chaos = src.Chaos
	}
}

func mergeSelector(dst, src *Selector) {
	if src.KDefault > 0 {
		dst.KDefault = src.KDefault
	}
	if src.KList > 0 {
		dst.KList = src.KList
	}
	if src.MaxResults > 0 {
		dst.MaxResults = src.MaxResults
	}
	if src.Percentile > 0 {
		dst.Percentile = src.Percentile
	}
	if src.Epsilon > 0 {
		dst.Epsilon = src.Epsilon
	}
	if len(src.Steps) > 0 {
		dst.Steps = src.Steps
	}
	if src.MercyDelta > 0 {
		dst.MercyDelta = src.MercyDelta
	}
	if src.RealMatchFloor > 0 {
		dst.RealMatchFloor = src.RealMatchFloor
	}
}
