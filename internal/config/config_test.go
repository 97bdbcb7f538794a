package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Selector.Percentile != 0.65 {
		t.Errorf("Percentile = %v, want 0.65", cfg.Selector.Percentile)
	}
	if cfg.Selector.MaxResults != 25 {
		t.Errorf("MaxResults = %d, want 25", cfg.Selector.MaxResults)
	}
	if cfg.Weights.Content != 0.35 {
		t.Errorf("Weights.Content = %v, want 0.35", cfg.Weights.Content)
	}
	if cfg.Scan.MaxDepth != 10 {
		t.Errorf("Scan.MaxDepth = %d, want 10", cfg.Scan.MaxDepth)
	}
	if !cfg.FilterFailuresEnabled() {
		t.Error("failure filter should default to enabled")
	}
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.CatchAllFolder != "Misc" {
		t.Errorf("CatchAllFolder = %q, want Misc", cfg.CatchAllFolder)
	}
}

func TestLoadMergesOverDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	body := `
vault_path: /notes
catch_all_folder: Uncategorized
selector:
  k_default: 3
weights:
  content: 0.5
project_mappings:
  invoices: billing
filter_failures: false
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.VaultPath != "/notes" {
		t.Errorf("VaultPath = %q, want /notes", cfg.VaultPath)
	}
	if cfg.CatchAllFolder != "Uncategorized" {
		t.Errorf("CatchAllFolder = %q, want Uncategorized", cfg.CatchAllFolder)
	}
	if cfg.Selector.KDefault != 3 {
		t.Errorf("KDefault = %d, want 3", cfg.Selector.KDefault)
	}
	// Untouched selector values keep defaults
	if cfg.Selector.KList != 7 {
		t.Errorf("KList = %d, want default 7", cfg.Selector.KList)
	}
	if cfg.Weights.Content != 0.5 {
		t.Errorf("Weights.Content = %v, want 0.5", cfg.Weights.Content)
	}
	if cfg.Weights.Semantic != 0.25 {
		t.Errorf("Weights.Semantic = %v, want default 0.25", cfg.Weights.Semantic)
	}
	// Map overrides merge key-wise
	if cfg.ProjectMappings["invoices"] != "billing" {
		t.Errorf("ProjectMappings[invoices] = %q, want billing", cfg.ProjectMappings["invoices"])
	}
	if cfg.ProjectMappings["clients"] != "clients" {
		t.Error("default project mappings should survive a partial override")
	}
	if cfg.FilterFailuresEnabled() {
		t.Error("filter_failures: false should disable the failure filter")
	}
}

func TestLoadMalformedFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("vault_path: [unclosed"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("Load should fail on malformed yaml")
	}
}

func TestStorePaths(t *testing.T) {
	cfg := DefaultConfig()
	cfg.VaultPath = "/vault"

	if got := cfg.GlobalCapsuleDir(); got != filepath.Join("/vault", ".recall", "capsules") {
		t.Errorf("GlobalCapsuleDir = %q", got)
	}
	if got := cfg.ProjectCapsuleDir("clients"); got != filepath.Join("/vault", ".recall", "projects", "clients", "capsules") {
		t.Errorf("ProjectCapsuleDir = %q", got)
	}
}
