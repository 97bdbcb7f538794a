package capsule

import (
	"testing"
	"time"
)

func TestValid(t *testing.T) {
	tests := []struct {
		name string
		c    *Capsule
		want bool
	}{
		{"content only", &Capsule{ID: "a", Content: "x"}, true},
		{"summary only", &Capsule{ID: "a", Summary: "x"}, true},
		{"missing id", &Capsule{Content: "x"}, false},
		{"missing body", &Capsule{ID: "a"}, false},
		{"nil", nil, false},
	}
	for _, tt := range tests {
		if got := tt.c.Valid(); got != tt.want {
			t.Errorf("%s: Valid() = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestParseJSON(t *testing.T) {
	data := []byte(`{
		"id": "cap_1",
		"type": "conversation",
		"content": "We discussed the deadlift program.",
		"timestamp": "2026-08-20T10:00:00Z",
		"chaosScore": 0.7,
		"metadata": {
			"fileName": "session-42",
			"folder": "lifts",
			"tags": ["#strength", "gym"],
			"chaosScore": 0.9
		}
	}`)

	c, err := ParseJSON(data)
	if err != nil {
		t.Fatalf("ParseJSON failed: %v", err)
	}
	if c.ID != "cap_1" || c.Type != "conversation" {
		t.Errorf("unexpected identity: %+v", c)
	}
	if c.Timestamp.IsZero() {
		t.Error("timestamp should parse")
	}
	// metadata chaos wins over top-level
	if got := c.EffectiveChaos(); got != 0.9 {
		t.Errorf("EffectiveChaos = %v, want 0.9", got)
	}
	tags := c.NormalizedTags()
	if len(tags) != 2 || tags[0] != "strength" || tags[1] != "gym" {
		t.Errorf("NormalizedTags = %v", tags)
	}
	if !c.HasTag("strength") || c.HasTag("cardio") {
		t.Error("HasTag mismatch")
	}
}

func TestParseJSONMalformed(t *testing.T) {
	if _, err := ParseJSON([]byte(`{not json`)); err == nil {
		t.Error("ParseJSON should fail on malformed input")
	}
}

func TestParseJSONEpochAndDateOnly(t *testing.T) {
	c, err := ParseJSON([]byte(`{"id":"a","content":"x","timestamp":1724140800000}`))
	if err != nil {
		t.Fatalf("ParseJSON failed: %v", err)
	}
	if c.Timestamp.IsZero() {
		t.Error("millisecond epoch should parse")
	}

	c, err = ParseJSON([]byte(`{"id":"b","content":"x","metadata":{"created":"2026-08-20"}}`))
	if err != nil {
		t.Fatalf("ParseJSON failed: %v", err)
	}
	if c.EffectiveTime().IsZero() {
		t.Error("date-only metadata.created should parse")
	}
}

func TestParseJSONUnparseableTimestampIsNotFatal(t *testing.T) {
	c, err := ParseJSON([]byte(`{"id":"a","content":"x","timestamp":"last tuesday"}`))
	if err != nil {
		t.Fatalf("ParseJSON failed: %v", err)
	}
	if !c.Timestamp.IsZero() {
		t.Error("unparseable timestamp should stay zero")
	}
	if !c.Valid() {
		t.Error("record should remain valid without a timestamp")
	}
}

func TestEffectiveTimePreference(t *testing.T) {
	ts := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	created := time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)

	c := &Capsule{ID: "a", Content: "x", Timestamp: ts, Metadata: Metadata{Created: created}}
	if !c.EffectiveTime().Equal(ts) {
		t.Error("top-level timestamp should win")
	}

	c = &Capsule{ID: "a", Content: "x", Metadata: Metadata{Created: created}}
	if !c.EffectiveTime().Equal(created) {
		t.Error("metadata.created should be the fallback")
	}
}

func TestEffectiveChaosDefault(t *testing.T) {
	c := &Capsule{ID: "a", Content: "x"}
	if got := c.EffectiveChaos(); got != DefaultChaos {
		t.Errorf("EffectiveChaos = %v, want %v", got, DefaultChaos)
	}
}

func TestEffectiveChaosClamped(t *testing.T) {
	over := 1.5
	c := &Capsule{ID: "a", Content: "x", ChaosScore: &over}
	if got := c.EffectiveChaos(); got != 1 {
		t.Errorf("EffectiveChaos = %v, want clamped 1", got)
	}
}
