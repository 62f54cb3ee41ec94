package changeset

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"stlcat/internal/field"
	"stlcat/internal/rules"
)

// Source records how a field diff was derived.
type Source string

const (
	SourceAuto     Source = "auto"
	SourceManual   Source = "manual"
	SourceBackfill Source = "backfill"
)

// Entry is one proposed field diff. OldValue is the store value the diff
// was computed against; apply uses it as an optimistic concurrency check.
type Entry struct {
	RecordID   string          `json:"record_id"`
	Field      field.Key       `json:"field"`
	OldValue   field.Value     `json:"old_value"`
	NewValue   field.Value     `json:"new_value"`
	Source     Source          `json:"source"`
	Confidence float64         `json:"confidence"`
	Warnings   []rules.Warning `json:"warnings,omitempty"`
	Rules      []string        `json:"rules,omitempty"`
}

// Summary carries the run-level counts a reviewer sees first.
type Summary struct {
	WouldCreate int `json:"would_create"`
	WouldUpdate int `json:"would_update"`
	Skipped     int `json:"skipped"`
}

// ChangeSet is the immutable dry-run artifact handed to review and apply.
// Digest covers everything except the run id and timestamp, so two runs
// over identical inputs under the same ruleset produce identical digests.
type ChangeSet struct {
	ID            string    `json:"id"`
	CreatedAt     time.Time `json:"created_at"`
	RulesetDigest string    `json:"ruleset_digest"`
	VocabVersion  int       `json:"vocab_version"`
	Digest        string    `json:"digest"`
	Entries       []Entry   `json:"entries"`
	Summary       Summary   `json:"summary"`
}

type digestPayload struct {
	RulesetDigest string  `json:"ruleset_digest"`
	VocabVersion  int     `json:"vocab_version"`
	Entries       []Entry `json:"entries"`
	Summary       Summary `json:"summary"`
}

// ComputeDigest returns the content digest of the changeset regardless of
// its id or timestamp.
func (cs *ChangeSet) ComputeDigest() (string, error) {
	payload, err := json.Marshal(digestPayload{
		RulesetDigest: cs.RulesetDigest,
		VocabVersion:  cs.VocabVersion,
		Entries:       cs.Entries,
		Summary:       cs.Summary,
	})
	if err != nil {
		return "", fmt.Errorf("marshal changeset for digest: %w", err)
	}
	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:]), nil
}

// EntriesFor returns the entries targeting one record, in changeset order.
func (cs *ChangeSet) EntriesFor(recordID string) []Entry {
	var out []Entry
	for _, entry := range cs.Entries {
		if entry.RecordID == recordID {
			out = append(out, entry)
		}
	}
	return out
}

// RecordIDs returns the distinct record ids in first-appearance order.
func (cs *ChangeSet) RecordIDs() []string {
	seen := make(map[string]struct{}, len(cs.Entries))
	var out []string
	for _, entry := range cs.Entries {
		if _, ok := seen[entry.RecordID]; ok {
			continue
		}
		seen[entry.RecordID] = struct{}{}
		out = append(out, entry.RecordID)
	}
	return out
}
