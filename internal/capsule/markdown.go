package capsule

import (
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// md is the shared parser; goldmark parsers are safe for concurrent use.
var md = goldmark.New()

// MarkdownDoc is the text extracted from a vault note.
type MarkdownDoc struct {
	// Title is the first heading, or empty if the note has none.
	Title string

	// Summary is the first paragraph's text.
	Summary string

	// PlainText is the full text content with markup stripped.
	PlainText string
}

// ExtractMarkdown parses src and pulls out title, summary, and plain text by
// walking the AST.
func ExtractMarkdown(src []byte) MarkdownDoc {
	doc := md.Parser().Parse(text.NewReader(src))

	var out MarkdownDoc
	var plain strings.Builder

	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch node := n.(type) {
		case *ast.Heading:
			if out.Title == "" {
				out.Title = nodeText(node, src)
			}
		case *ast.Paragraph:
			t := nodeText(node, src)
			if out.Summary == "" && t != "" {
				out.Summary = t
			}
		case *ast.Text:
			seg := node.Segment
			plain.Write(seg.Value(src))
			if node.HardLineBreak() || node.SoftLineBreak() {
				plain.WriteByte('\n')
			} else {
				plain.WriteByte(' ')
			}
		}
		return ast.WalkContinue, nil
	})

	out.PlainText = strings.TrimSpace(plain.String())
	if out.Summary == "" {
		// Fenced-code-only or heading-only notes still need a summary.
		out.Summary = truncate(out.PlainText, 200)
	}
	return out
}

// nodeText collects the text segments under a node.
func nodeText(n ast.Node, src []byte) string {
	var b strings.Builder
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		if t, ok := c.(*ast.Text); ok {
			b.Write(t.Segment.Value(src))
			continue
		}
		b.WriteString(nodeText(c, src))
	}
	return strings.TrimSpace(b.String())
}

// FromMarkdown synthesizes a capsule from a raw vault note. The id is stable
// across scans so deduplication and repeat queries behave deterministically.
func FromMarkdown(folder, fileName string, src []byte, modTime time.Time) *Capsule {
	name := strings.TrimSuffix(fileName, filepath.Ext(fileName))
	doc := ExtractMarkdown(src)

	display := DisplayName(name)
	if doc.Title != "" {
		display = doc.Title
	}

	return &Capsule{
		ID:        "vault_" + folder + "_" + strings.ReplaceAll(name, " ", "_"),
		Type:      TypeVaultContent,
		Content:   string(src),
		Summary:   doc.Summary,
		Timestamp: modTime,
		Metadata: Metadata{
			FileName: display,
			Folder:   folder,
			Created:  modTime,
		},
	}
}

// DisplayName turns a file base name into a human-readable title:
// separators become spaces and each word is capitalized.
func DisplayName(name string) string {
	name = strings.NewReplacer("-", " ", "_", " ").Replace(name)
	words := strings.Fields(name)
	for i, w := range words {
		runes := []rune(w)
		runes[0] = unicode.ToUpper(runes[0])
		words[i] = string(runes)
	}
	return strings.Join(words, " ")
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
