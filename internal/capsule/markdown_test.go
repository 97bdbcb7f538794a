package capsule

import (
	"strings"
	"testing"
	"time"
)

const sampleNote = `# Duck Breast with Custard

A rich dinner recipe for special occasions.

## Ingredients

- 2 duck breasts
- 500ml custard
`

func TestExtractMarkdown(t *testing.T) {
	doc := ExtractMarkdown([]byte(sampleNote))

	if doc.Title != "Duck Breast with Custard" {
		t.Errorf("Title = %q", doc.Title)
	}
	if doc.Summary != "A rich dinner recipe for special occasions." {
		t.Errorf("Summary = %q", doc.Summary)
	}
	if !strings.Contains(doc.PlainText, "duck breasts") {
		t.Errorf("PlainText missing list content: %q", doc.PlainText)
	}
	if strings.Contains(doc.PlainText, "#") {
		t.Errorf("PlainText should strip markup: %q", doc.PlainText)
	}
}

func TestExtractMarkdownNoHeading(t *testing.T) {
	doc := ExtractMarkdown([]byte("just a plain paragraph of text"))
	if doc.Title != "" {
		t.Errorf("Title = %q, want empty", doc.Title)
	}
	if doc.Summary != "just a plain paragraph of text" {
		t.Errorf("Summary = %q", doc.Summary)
	}
}

func TestFromMarkdown(t *testing.T) {
	mod := time.Date(2026, 8, 15, 12, 0, 0, 0, time.UTC)
	c := FromMarkdown("Foods", "bacon-wrapped_duck.md", []byte(sampleNote), mod)

	if c.ID != "vault_Foods_bacon-wrapped_duck" {
		t.Errorf("ID = %q", c.ID)
	}
	if c.Type != TypeVaultContent {
		t.Errorf("Type = %q", c.Type)
	}
	// Heading wins over the file-name-derived display name.
	if c.Metadata.FileName != "Duck Breast with Custard" {
		t.Errorf("FileName = %q", c.Metadata.FileName)
	}
	if c.Metadata.Folder != "Foods" {
		t.Errorf("Folder = %q", c.Metadata.Folder)
	}
	if !c.Timestamp.Equal(mod) {
		t.Error("Timestamp should be the file mod time")
	}
	if !c.Valid() {
		t.Error("synthesized capsule must be valid")
	}
}

func TestFromMarkdownStableID(t *testing.T) {
	a := FromMarkdown("clients", "Angela Smith.md", []byte("notes"), time.Now())
	b := FromMarkdown("clients", "Angela Smith.md", []byte("notes"), time.Now())
	if a.ID != b.ID {
		t.Errorf("ids differ across scans: %q vs %q", a.ID, b.ID)
	}
}

func TestDisplayName(t *testing.T) {
	tests := []struct{ in, want string }{
		{"angela smith", "Angela Smith"},
		{"bacon-wrapped_duck", "Bacon Wrapped Duck"},
		{"already Title", "Already Title"},
	}
	for _, tt := range tests {
		if got := DisplayName(tt.in); got != tt.want {
			t.Errorf("DisplayName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
