package changeset

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"stlcat/internal/field"
	"stlcat/internal/matchers"
	"stlcat/internal/rules"
)

// Builder accumulates per-record diffs in input order and seals them into
// an immutable ChangeSet. The builder never touches the store; callers
// hand it the current field values they read.
type Builder struct {
	rulesetDigest string
	vocabVersion  int
	entries       []Entry
	summary       Summary
}

func NewBuilder(rulesetDigest string, vocabVersion int) *Builder {
	return &Builder{
		rulesetDigest: rulesetDigest,
		vocabVersion:  vocabVersion,
	}
}

// AddResult diffs one classification result against the record's current
// values. Records unknown to the store (created=true) count as
// would-create; records with at least one changed field count as
// would-update; untouched records count as skipped.
func (b *Builder) AddResult(recordID string, current field.Values, created bool, result rules.Result) {
	changed := 0
	for _, key := range field.AllKeys() {
		finding, ok := result.Fields[key]
		if !ok {
			continue
		}
		old, has := current[key]
		if !has {
			old = field.Unknown()
		}
		if old.Equal(finding.Value) {
			continue
		}
		b.entries = append(b.entries, Entry{
			RecordID:   recordID,
			Field:      key,
			OldValue:   old,
			NewValue:   finding.Value,
			Source:     SourceAuto,
			Confidence: result.Confidence,
			Warnings:   finding.Warnings,
			Rules:      finding.Rules,
		})
		changed++
	}
	switch {
	case created:
		b.summary.WouldCreate++
	case changed > 0:
		b.summary.WouldUpdate++
	default:
		b.summary.Skipped++
	}
}

// AddProposal records a matcher proposal as a diff.
func (b *Builder) AddProposal(proposal matchers.Proposal, current field.Values) {
	old, has := current[proposal.Field]
	if !has {
		old = field.Unknown()
	}
	next := field.Enum(proposal.Key)
	if old.Equal(next) {
		b.summary.Skipped++
		return
	}
	b.entries = append(b.entries, Entry{
		RecordID:   proposal.RecordID,
		Field:      proposal.Field,
		OldValue:   old,
		NewValue:   next,
		Source:     SourceAuto,
		Confidence: proposal.Score,
		Rules:      proposal.Rules,
	})
	b.summary.WouldUpdate++
}

// Build seals the accumulated entries with a fresh run id and the content
// digest.
func (b *Builder) Build(now time.Time) (*ChangeSet, error) {
	cs := &ChangeSet{
		ID:            uuid.NewString(),
		CreatedAt:     now.UTC(),
		RulesetDigest: b.rulesetDigest,
		VocabVersion:  b.vocabVersion,
		Entries:       b.entries,
		Summary:       b.summary,
	}
	digest, err := cs.ComputeDigest()
	if err != nil {
		return nil, fmt.Errorf("seal changeset: %w", err)
	}
	cs.Digest = digest
	return cs, nil
}
