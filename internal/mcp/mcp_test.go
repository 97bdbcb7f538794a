package mcp

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/halcyard/recall/internal/config"
	"github.com/halcyard/recall/internal/retriever"
)

// testEngine builds an engine over a temporary vault seeded with one
// capsule and one note.
func testEngine(t *testing.T) *retriever.Engine {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.VaultPath = t.TempDir()

	dir := cfg.GlobalCapsuleDir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	capsuleJSON := `{"id":"lease-1","type":"conversation",` +
		`"content":"lease renewal paperwork due next month",` +
		`"timestamp":"` + time.Now().Add(-time.Hour).UTC().Format(time.RFC3339) + `",` +
		`"metadata":{"category":"legal"}}`
	if err := os.WriteFile(filepath.Join(dir, "lease-1.json"), []byte(capsuleJSON), 0o644); err != nil {
		t.Fatal(err)
	}

	notes := filepath.Join(cfg.VaultPath, "contacts")
	if err := os.MkdirAll(notes, 0o755); err != nil {
		t.Fatal(err)
	}
	note := "# Dana Reyes\n\nLandlord contact for the lease.\n"
	if err := os.WriteFile(filepath.Join(notes, "Dana Reyes.md"), []byte(note), 0o644); err != nil {
		t.Fatal(err)
	}

	return retriever.New(cfg, slog.New(slog.DiscardHandler))
}

// makeRequest creates a CallToolRequest with the given arguments.
func makeRequest(args map[string]any) mcp.CallToolRequest {
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Arguments: args,
		},
	}
}

func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	if len(res.Content) == 0 {
		t.Fatal("result has no content")
	}
	tc, ok := res.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("content type %T, want TextContent", res.Content[0])
	}
	return tc.Text
}

func TestRegistryComplete(t *testing.T) {
	names := AllToolNames()
	if len(names) != len(toolRegistry) {
		t.Fatalf("AllToolNames returned %d names", len(names))
	}
	for name, entry := range toolRegistry {
		if entry.def.Name != name {
			t.Errorf("tool %q registered under def name %q", name, entry.def.Name)
		}
		if entry.handler == nil {
			t.Errorf("tool %q has no handler", name)
		}
	}
}

func TestHandleQuery(t *testing.T) {
	h := NewHandlers(testEngine(t))
	res, err := h.HandleQuery(context.Background(), makeRequest(map[string]any{
		"query": "lease renewal paperwork",
	}))
	if err != nil {
		t.Fatal(err)
	}
	if res.IsError {
		t.Fatalf("handler errored: %s", resultText(t, res))
	}

	var out retriever.RetrieveOutput
	if err := json.Unmarshal([]byte(resultText(t, res)), &out); err != nil {
		t.Fatal(err)
	}
	if len(out.Results) == 0 {
		t.Fatal("query returned no results")
	}
	if out.Results[0].Capsule.ID != "lease-1" {
		t.Errorf("top result = %s", out.Results[0].Capsule.ID)
	}
}

func TestHandleQueryInvalidProject(t *testing.T) {
	h := NewHandlers(testEngine(t))
	res, err := h.HandleQuery(context.Background(), makeRequest(map[string]any{
		"query":   "anything",
		"project": "../escape",
	}))
	if err != nil {
		t.Fatal(err)
	}
	if !res.IsError {
		t.Fatal("invalid project accepted")
	}
	if !strings.Contains(resultText(t, res), "INVALID_PROJECT") {
		t.Errorf("error payload = %s", resultText(t, res))
	}
}

func TestHandleCategory(t *testing.T) {
	h := NewHandlers(testEngine(t))
	res, err := h.HandleCategory(context.Background(), makeRequest(map[string]any{
		"category": "legal",
	}))
	if err != nil {
		t.Fatal(err)
	}
	if res.IsError {
		t.Fatalf("handler errored: %s", resultText(t, res))
	}
	var out retriever.ByCategoryOutput
	if err := json.Unmarshal([]byte(resultText(t, res)), &out); err != nil {
		t.Fatal(err)
	}
	if len(out.Results) != 1 || out.Results[0].Capsule.ID != "lease-1" {
		t.Errorf("category listing = %+v", out.Results)
	}
}

func TestHandleByDateBadTimestamp(t *testing.T) {
	h := NewHandlers(testEngine(t))
	res, err := h.HandleByDate(context.Background(), makeRequest(map[string]any{
		"after": "yesterday-ish",
	}))
	if err != nil {
		t.Fatal(err)
	}
	if !res.IsError {
		t.Fatal("malformed timestamp accepted")
	}
}

func TestHandleByType(t *testing.T) {
	h := NewHandlers(testEngine(t))
	res, err := h.HandleByType(context.Background(), makeRequest(map[string]any{
		"type": "conversation",
	}))
	if err != nil {
		t.Fatal(err)
	}
	if res.IsError {
		t.Fatalf("handler errored: %s", resultText(t, res))
	}
	var out retriever.ByCategoryOutput
	if err := json.Unmarshal([]byte(resultText(t, res)), &out); err != nil {
		t.Fatal(err)
	}
	if len(out.Results) != 1 {
		t.Errorf("type listing returned %d results", len(out.Results))
	}
}
