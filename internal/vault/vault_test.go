package vault

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/halcyard/recall/internal/config"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.VaultPath = t.TempDir()
	return cfg
}

func discard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func mkfolder(t *testing.T, cfg *config.Config, name string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Join(cfg.VaultPath, name), 0o755); err != nil {
		t.Fatal(err)
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestRootsProjectFirst(t *testing.T) {
	cfg := testConfig(t)
	r := NewResolver(cfg, discard())

	roots := r.Roots("clients")
	if len(roots) != 2 {
		t.Fatalf("roots = %d, want 2", len(roots))
	}
	if !roots[0].ProjectScoped || roots[1].ProjectScoped {
		t.Errorf("project root must come first: %+v", roots)
	}
	if roots[0].Path != cfg.ProjectCapsuleDir("clients") {
		t.Errorf("project root path = %s", roots[0].Path)
	}

	global := r.Roots("")
	if len(global) != 1 || global[0].ProjectScoped {
		t.Errorf("no-project roots = %+v", global)
	}
}

func TestResolveFolderConfigOverrideWins(t *testing.T) {
	cfg := testConfig(t)
	cfg.Folders = map[string]string{"recipe": "Kitchen"}
	r := NewResolver(cfg, discard())
	if got := r.ResolveFolder("recipes"); got != "Kitchen" {
		t.Errorf("ResolveFolder(recipes) = %q, want Kitchen", got)
	}
}

func TestResolveFolderCoreByName(t *testing.T) {
	cfg := testConfig(t)
	r := NewResolver(cfg, discard())
	if got := r.ResolveFolder("clients"); got != "clients" {
		t.Errorf("ResolveFolder(clients) = %q, want clients", got)
	}
}

func TestResolveFolderSemanticDomain(t *testing.T) {
	cfg := testConfig(t)
	mkfolder(t, cfg, "medical")
	r := NewResolver(cfg, discard())
	// "health symptoms" classifies strongly into wellness, whose folder is
	// medical.
	if got := r.ResolveFolder("health symptoms"); got != "medical" {
		t.Errorf("ResolveFolder = %q, want medical", got)
	}
}

func TestResolveFolderFuzzyDiscovery(t *testing.T) {
	cfg := testConfig(t)
	mkfolder(t, cfg, "Receipts")
	r := NewResolver(cfg, discard())
	// "receipt" is not a core folder or domain, but an existing folder is
	// one normalization step away.
	if got := r.ResolveFolder("receipts"); got != "Receipts" {
		t.Errorf("ResolveFolder(receipts) = %q, want Receipts", got)
	}
}

func TestResolveFolderFallsBackToCatchAll(t *testing.T) {
	cfg := testConfig(t)
	r := NewResolver(cfg, discard())
	got := r.ResolveFolder("zzyqx")
	if got != cfg.CatchAllFolder {
		t.Fatalf("ResolveFolder = %q, want %q", got, cfg.CatchAllFolder)
	}
	// Bootstrap: folder and README exist afterwards.
	if _, err := os.Stat(filepath.Join(cfg.VaultPath, got, "README.md")); err != nil {
		t.Errorf("catch-all README missing: %v", err)
	}
}

func TestListFoldersSkipsHidden(t *testing.T) {
	cfg := testConfig(t)
	mkfolder(t, cfg, "clients")
	mkfolder(t, cfg, config.StoreDirName)
	r := NewResolver(cfg, discard())
	folders, err := r.ListFolders()
	if err != nil {
		t.Fatal(err)
	}
	if len(folders) != 1 || folders[0] != "clients" {
		t.Errorf("folders = %v, want [clients]", folders)
	}
}

func TestInferProject(t *testing.T) {
	cfg := testConfig(t)
	r := NewResolver(cfg, discard())
	tests := []struct{ query, want string }{
		{"show me my workout log", "lifts"},
		{"recipe for the weekend", "foods"},
		{"client follow-ups", "clients"},
		{"random thoughts", ""},
	}
	for _, tt := range tests {
		if got := r.InferProject(tt.query); got != tt.want {
			t.Errorf("InferProject(%q) = %q, want %q", tt.query, got, tt.want)
		}
	}
}

func TestScanCapsulesSkipsMalformed(t *testing.T) {
	cfg := testConfig(t)
	dir := cfg.GlobalCapsuleDir()
	writeFile(t, filepath.Join(dir, "good.json"),
		`{"id":"c1","type":"conversation","content":"hello world","timestamp":"2026-08-01T10:00:00Z"}`)
	writeFile(t, filepath.Join(dir, "bad.json"), `{not json`)
	writeFile(t, filepath.Join(dir, "empty.json"), `{"id":"c2"}`)
	writeFile(t, filepath.Join(dir, "notes.txt"), `not a capsule`)

	s := NewScanner(cfg, discard())
	got := s.ScanCapsules(context.Background(), dir)
	if len(got) != 1 {
		t.Fatalf("scanned %d capsules, want 1", len(got))
	}
	if got[0].ID != "c1" {
		t.Errorf("capsule id = %s", got[0].ID)
	}
}

func TestScanCapsulesMissingDir(t *testing.T) {
	cfg := testConfig(t)
	s := NewScanner(cfg, discard())
	if got := s.ScanCapsules(context.Background(), filepath.Join(cfg.VaultPath, "nope")); len(got) != 0 {
		t.Errorf("missing dir scanned %d capsules", len(got))
	}
}

func TestScanCapsulesDepthLimit(t *testing.T) {
	cfg := testConfig(t)
	cfg.Scan.MaxDepth = 1
	dir := cfg.GlobalCapsuleDir()
	writeFile(t, filepath.Join(dir, "top.json"),
		`{"id":"top","type":"conversation","content":"x"}`)
	writeFile(t, filepath.Join(dir, "a", "one.json"),
		`{"id":"one","type":"conversation","content":"x"}`)
	writeFile(t, filepath.Join(dir, "a", "b", "two.json"),
		`{"id":"two","type":"conversation","content":"x"}`)

	s := NewScanner(cfg, discard())
	got := s.ScanCapsules(context.Background(), dir)
	if len(got) != 2 {
		t.Fatalf("scanned %d capsules, want 2 (depth-limited)", len(got))
	}
	for _, c := range got {
		if c.ID == "two" {
			t.Error("capsule below depth limit was scanned")
		}
	}
}

func TestScanCapsulesSizeCeiling(t *testing.T) {
	cfg := testConfig(t)
	cfg.Scan.MaxFileBytes = 16
	dir := cfg.GlobalCapsuleDir()
	writeFile(t, filepath.Join(dir, "big.json"),
		`{"id":"big","type":"conversation","content":"way past the tiny ceiling"}`)

	s := NewScanner(cfg, discard())
	if got := s.ScanCapsules(context.Background(), dir); len(got) != 0 {
		t.Errorf("oversized file scanned, got %d capsules", len(got))
	}
}

func TestScanNotes(t *testing.T) {
	cfg := testConfig(t)
	writeFile(t, filepath.Join(cfg.VaultPath, "clients", "Angela Smith.md"),
		"# Angela Smith\n\nPrefers morning meetings.\n")
	writeFile(t, filepath.Join(cfg.VaultPath, "clients", "notes.txt"), "ignored")

	s := NewScanner(cfg, discard())
	got := s.ScanNotes(context.Background(), "clients")
	if len(got) != 1 {
		t.Fatalf("scanned %d notes, want 1", len(got))
	}
	c := got[0]
	if c.Metadata.Folder != "clients" {
		t.Errorf("folder = %q", c.Metadata.Folder)
	}
	if c.Metadata.FileName != "Angela Smith" {
		t.Errorf("file name = %q", c.Metadata.FileName)
	}
	if c.EffectiveTime().IsZero() {
		t.Error("note capsule should carry the file mod time")
	}
}

func TestScanNotesDeterministicOrder(t *testing.T) {
	cfg := testConfig(t)
	for _, n := range []string{"c.md", "a.md", "b.md"} {
		writeFile(t, filepath.Join(cfg.VaultPath, "notes", n), "# "+n+"\n\nbody\n")
	}
	s := NewScanner(cfg, discard())
	first := s.ScanNotes(context.Background(), "notes")
	for i := 0; i < 5; i++ {
		again := s.ScanNotes(context.Background(), "notes")
		if len(again) != len(first) {
			t.Fatal("scan count changed")
		}
		for j := range again {
			if again[j].ID != first[j].ID {
				t.Fatalf("scan order changed at %d", j)
			}
		}
	}
}

func TestScanCancelledContext(t *testing.T) {
	cfg := testConfig(t)
	dir := cfg.GlobalCapsuleDir()
	writeFile(t, filepath.Join(dir, "a.json"),
		`{"id":"a","type":"conversation","content":"x"}`)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := NewScanner(cfg, discard())
	if got := s.ScanCapsules(ctx, dir); len(got) != 0 {
		t.Errorf("cancelled scan returned %d capsules", len(got))
	}
}
