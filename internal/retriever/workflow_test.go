package retriever

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/halcyard/recall/internal/config"
)

// TestAssistantWorkflow exercises the full query lifecycle the way the
// orchestration layer drives it: seed a vault, answer a free-text query,
// list a category, then pull a date window.
func TestAssistantWorkflow(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.VaultPath = t.TempDir()
	engine := New(cfg, slog.New(slog.DiscardHandler))
	ctx := context.Background()

	// Seed: two client conversations in the project store, one global fact,
	// and a vault note.
	writeCapsule(t, cfg.ProjectCapsuleDir("clients"), testCapsule{
		ID: "acme-kickoff", Type: "conversation",
		Content:   "kickoff call with Acme, budget approved for phase one",
		Timestamp: ts(24 * time.Hour),
		Metadata:  map[string]any{"category": "client"},
	})
	writeCapsule(t, cfg.ProjectCapsuleDir("clients"), testCapsule{
		ID: "acme-followup", Type: "conversation",
		Content:   "Acme followup, they want the revised budget by Friday",
		Timestamp: ts(2 * time.Hour),
		Metadata:  map[string]any{"category": "client"},
	})
	writeCapsule(t, cfg.GlobalCapsuleDir(), testCapsule{
		ID: "garage-fact", Type: "fact",
		Content:   "garage door code is rotated monthly",
		Timestamp: ts(48 * time.Hour),
	})
	writeNote(t, cfg, "clients", "Acme Corp",
		"# Acme Corp\n\nMain contact is Dana. Net-30 terms.\n")

	// Free-text retrieval finds the Acme material and ranks the fresher
	// followup above the kickoff.
	out, err := engine.Retrieve(ctx, RetrieveInput{
		Query: "Acme budget", Project: "clients",
	})
	require.NoError(t, err)
	require.NotEmpty(t, out.Results)
	require.NotEmpty(t, out.Stats.RequestID)
	ids := make([]string, 0, len(out.Results))
	for _, r := range out.Results {
		require.GreaterOrEqual(t, r.Score, 0.0)
		require.LessOrEqual(t, r.Score, 1.0)
		ids = append(ids, r.Capsule.ID)
	}
	require.Contains(t, ids, "acme-followup")
	require.Contains(t, ids, "acme-kickoff")
	require.Less(t,
		indexOf(ids, "acme-followup"), indexOf(ids, "acme-kickoff"),
		"fresher record should rank first at equal content relevance")

	// Categorical listing returns both client records plus the vault note,
	// all at maximal relevance.
	listing, err := engine.RetrieveByCategory(ctx, ByCategoryInput{
		Project: "clients", Category: "clients",
	})
	require.NoError(t, err)
	require.Len(t, listing.Results, 3)
	for _, r := range listing.Results {
		require.Equal(t, 1.0, r.Score)
	}

	// Date window around the followup catches only it.
	window, err := engine.RetrieveByDateRange(ctx, ByDateRangeInput{
		Project: "clients",
		After:   time.Now().Add(-12 * time.Hour),
	})
	require.NoError(t, err)
	require.Len(t, window.Capsules, 1)
	require.Equal(t, "acme-followup", window.Capsules[0].ID)

	// Malformed parameters are rejected, not absorbed.
	_, err = engine.RetrieveByCategory(ctx, ByCategoryInput{Category: "no spaces/allowed"})
	require.Error(t, err)
}

func indexOf(ss []string, want string) int {
	for i, s := range ss {
		if s == want {
			return i
		}
	}
	return -1
}
