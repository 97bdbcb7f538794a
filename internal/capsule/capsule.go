// Package capsule defines the unit of retrieval: a stored record of a past
// conversational exchange or derived fact, plus the synthetic capsules built
// from raw vault markdown files.
package capsule

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// TypeVaultContent marks capsules synthesized from raw vault files.
const TypeVaultContent = "vault_content"

// DefaultChaos is assumed when a record carries no exploratory weight.
const DefaultChaos = 0.5

// Metadata holds the descriptive fields attached to a capsule.
type Metadata struct {
	FileName   string    `json:"fileName,omitempty"`
	Folder     string    `json:"folder,omitempty"`
	Tags       []string  `json:"tags,omitempty"`
	Project    string    `json:"project,omitempty"`
	Author     string    `json:"author,omitempty"`
	Domain     string    `json:"domain,omitempty"`
	Subtype    string    `json:"subtype,omitempty"`
	Type       string    `json:"type,omitempty"`
	Category   string    `json:"category,omitempty"`
	ChaosScore *float64  `json:"chaosScore,omitempty"`
	Created    time.Time `json:"created,omitempty"`
	Failure    bool      `json:"failure,omitempty"`
}

// Capsule is an immutable-once-written record. This engine only reads them;
// creation belongs to the conversation-processing subsystem.
type Capsule struct {
	ID         string    `json:"id"`
	Type       string    `json:"type,omitempty"`
	Content    string    `json:"content,omitempty"`
	Summary    string    `json:"summary,omitempty"`
	Timestamp  time.Time `json:"timestamp,omitempty"`
	Metadata   Metadata  `json:"metadata,omitempty"`
	ChaosScore *float64  `json:"chaosScore,omitempty"`
}

// Valid reports whether the record is usable: it must carry an id and at
// least one of content or summary. Invalid records are excluded before
// scoring, never surfaced.
func (c *Capsule) Valid() bool {
	if c == nil || c.ID == "" {
		return false
	}
	return c.Content != "" || c.Summary != ""
}

// Body returns content, falling back to summary.
func (c *Capsule) Body() string {
	if c.Content != "" {
		return c.Content
	}
	return c.Summary
}

// EffectiveType returns the type tag, preferring the top-level field.
func (c *Capsule) EffectiveType() string {
	if c.Type != "" {
		return c.Type
	}
	return c.Metadata.Type
}

// EffectiveTime returns the record's creation time, preferring the top-level
// timestamp over metadata.created. Zero when neither is set.
func (c *Capsule) EffectiveTime() time.Time {
	if !c.Timestamp.IsZero() {
		return c.Timestamp
	}
	return c.Metadata.Created
}

// EffectiveChaos returns the stored exploratory weight, metadata first, then
// the top-level field, then the default.
func (c *Capsule) EffectiveChaos() float64 {
	if c.Metadata.ChaosScore != nil {
		return clamp01(*c.Metadata.ChaosScore)
	}
	if c.ChaosScore != nil {
		return clamp01(*c.ChaosScore)
	}
	return DefaultChaos
}

// NormalizedTags returns the capsule's tags lower-cased with any leading
// '#' stripped.
func (c *Capsule) NormalizedTags() []string {
	if len(c.Metadata.Tags) == 0 {
		return nil
	}
	out := make([]string, 0, len(c.Metadata.Tags))
	for _, t := range c.Metadata.Tags {
		out = append(out, strings.ToLower(strings.TrimPrefix(t, "#")))
	}
	return out
}

// HasTag reports whether tag (already normalized) is among the capsule's
// tags.
func (c *Capsule) HasTag(tag string) bool {
	for _, t := range c.NormalizedTags() {
		if t == tag {
			return true
		}
	}
	return false
}

// ParseJSON decodes a capsule record. Timestamps are accepted in RFC 3339 or
// date-only form; anything unparseable leaves the field zero rather than
// failing the record.
func ParseJSON(data []byte) (*Capsule, error) {
	var raw struct {
		ID         string          `json:"id"`
		Type       string          `json:"type"`
		Content    string          `json:"content"`
		Summary    string          `json:"summary"`
		Timestamp  flexTime        `json:"timestamp"`
		ChaosScore *float64        `json:"chaosScore"`
		Metadata   json.RawMessage `json:"metadata"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse capsule: %w", err)
	}

	c := &Capsule{
		ID:         raw.ID,
		Type:       raw.Type,
		Content:    raw.Content,
		Summary:    raw.Summary,
		Timestamp:  raw.Timestamp.t,
		ChaosScore: raw.ChaosScore,
	}

	if len(raw.Metadata) > 0 {
		var meta struct {
			FileName   string   `json:"fileName"`
			Folder     string   `json:"folder"`
			Tags       []string `json:"tags"`
			Project    string   `json:"project"`
			Author     string   `json:"author"`
			Domain     string   `json:"domain"`
			Subtype    string   `json:"subtype"`
			Type       string   `json:"type"`
			Category   string   `json:"category"`
			ChaosScore *float64 `json:"chaosScore"`
			Created    flexTime `json:"created"`
			Failure    bool     `json:"failure"`
		}
		if err := json.Unmarshal(raw.Metadata, &meta); err != nil {
			return nil, fmt.Errorf("parse capsule metadata: %w", err)
		}
		c.Metadata = Metadata{
			FileName:   meta.FileName,
			Folder:     meta.Folder,
			Tags:       meta.Tags,
			Project:    meta.Project,
			Author:     meta.Author,
			Domain:     meta.Domain,
			Subtype:    meta.Subtype,
			Type:       meta.Type,
			Category:   meta.Category,
			ChaosScore: meta.ChaosScore,
			Created:    meta.Created.t,
			Failure:    meta.Failure,
		}
	}

	return c, nil
}

// flexTime tolerates the timestamp shapes found in real capsule files.
type flexTime struct {
	t time.Time
}

var timeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func (f *flexTime) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		// Numeric epoch, millis or seconds.
		var n int64
		if err2 := json.Unmarshal(data, &n); err2 == nil && n > 0 {
			if n > 1e12 {
				f.t = time.UnixMilli(n).UTC()
			} else {
				f.t = time.Unix(n, 0).UTC()
			}
			return nil
		}
		return nil
	}
	if s == "" {
		return nil
	}
	for _, layout := range timeLayouts {
		if parsed, err := time.Parse(layout, s); err == nil {
			f.t = parsed
			return nil
		}
	}
	return nil
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
