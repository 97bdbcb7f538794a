// Package vault locates and reads the two corpora behind every query: the
// file-per-record capsule stores under the hidden store directory, and the
// plain markdown note folders of the vault itself. Nothing here caches
// across queries; a fresh read is the correctness baseline.
package vault

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/halcyard/recall/internal/config"
	"github.com/halcyard/recall/internal/semantic"
	"github.com/halcyard/recall/internal/textmatch"
)

// Root is one capsule store directory to scan. Project-scoped roots are
// consulted before the global root so project records win deduplication.
type Root struct {
	Path          string
	ProjectScoped bool
}

// Resolver maps queries and categories onto concrete directories.
type Resolver struct {
	cfg    *config.Config
	logger *slog.Logger
}

func NewResolver(cfg *config.Config, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{cfg: cfg, logger: logger}
}

// Roots returns the capsule store roots for a query, project-scoped first.
// An empty project yields only the global store.
func (r *Resolver) Roots(project string) []Root {
	var roots []Root
	if project != "" {
		roots = append(roots, Root{Path: r.cfg.ProjectCapsuleDir(project), ProjectScoped: true})
	}
	roots = append(roots, Root{Path: r.cfg.GlobalCapsuleDir()})
	return roots
}

// ResolveFolder maps a category onto a vault folder through an ordered
// chain: explicit configuration, core folder by name, the semantic domain's
// folder and its fallbacks, fuzzy discovery over folders that actually
// exist, and finally the catch-all. The catch-all is created on first use so
// a category never resolves to nowhere.
func (r *Resolver) ResolveFolder(category string) string {
	norm := semantic.NormalizeCategory(category)

	if mapped, ok := r.cfg.Folders[norm]; ok {
		return mapped
	}
	if mapped, ok := r.cfg.Folders[strings.ToLower(category)]; ok {
		return mapped
	}

	for _, core := range r.cfg.CoreFolders {
		if semantic.NormalizeCategory(core) == norm {
			return core
		}
	}

	if m := semantic.Best(category); m.Strong() && m.Domain.Folder != "" {
		if r.folderExists(m.Domain.Folder) {
			return m.Domain.Folder
		}
		for _, fb := range m.Domain.Fallbacks {
			if r.folderExists(fb) {
				return fb
			}
		}
	}

	if found := r.discoverFolder(norm); found != "" {
		return found
	}

	return r.EnsureCatchAll()
}

// discoverFolder fuzzy-matches the category against top-level vault folders
// on disk. Candidates are visited in name order so ties resolve the same
// way every query.
func (r *Resolver) discoverFolder(norm string) string {
	folders, err := r.ListFolders()
	if err != nil {
		return ""
	}
	for _, f := range folders {
		fn := semantic.NormalizeCategory(f)
		if fn == norm || textmatch.IsFuzzyMatch(fn, norm) {
			return f
		}
	}
	return ""
}

// ListFolders returns the vault's top-level topic folders, sorted by name.
// The hidden store directory is excluded.
func (r *Resolver) ListFolders() ([]string, error) {
	entries, err := os.ReadDir(r.cfg.VaultPath)
	if err != nil {
		return nil, fmt.Errorf("list vault folders: %w", err)
	}
	var out []string
	for _, e := range entries {
		if !e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		out = append(out, e.Name())
	}
	return out, nil
}

// EnsureCatchAll creates the catch-all folder (with a short README marking
// its purpose) if missing and returns its name. Creation failures degrade to
// returning the name anyway; the scanner treats a missing folder as empty.
func (r *Resolver) EnsureCatchAll() string {
	name := r.cfg.CatchAllFolder
	dir := filepath.Join(r.cfg.VaultPath, name)
	if _, err := os.Stat(dir); err == nil {
		return name
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		r.logger.Warn("catch-all folder create failed", "folder", name, "error", err)
		return name
	}
	readme := filepath.Join(dir, "README.md")
	content := "# " + name + "\n\nContent without a better home lands here. File it properly when you get a chance.\n"
	if err := os.WriteFile(readme, []byte(content), 0o644); err != nil {
		r.logger.Warn("catch-all readme write failed", "error", err)
	}
	r.logger.Info("catch-all folder created", "folder", name)
	return name
}

// FolderPath returns the absolute path of a vault topic folder.
func (r *Resolver) FolderPath(folder string) string {
	return filepath.Join(r.cfg.VaultPath, folder)
}

func (r *Resolver) folderExists(folder string) bool {
	info, err := os.Stat(filepath.Join(r.cfg.VaultPath, folder))
	return err == nil && info.IsDir()
}

// InferProject guesses the project a query addresses: the keyword map is
// consulted token by token, then the semantic classifier's domain and
// subtype names are tried against the same map. Empty when nothing applies.
func (r *Resolver) InferProject(query string) string {
	for _, tok := range strings.Fields(textmatch.Normalize(query)) {
		if p, ok := r.cfg.ProjectMappings[tok]; ok {
			return p
		}
	}
	if m := semantic.Best(query); m.Strong() {
		if m.Subtype != "" {
			if p, ok := r.cfg.ProjectMappings[m.Subtype]; ok {
				return p
			}
		}
		if p, ok := r.cfg.ProjectMappings[m.Domain.Name]; ok {
			return p
		}
	}
	return ""
}
