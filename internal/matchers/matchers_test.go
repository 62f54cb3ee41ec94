package matchers_test

import (
	"errors"
	"testing"

	"stlcat/internal/field"
	"stlcat/internal/logging"
	"stlcat/internal/matchers"
	"stlcat/internal/testsupport"
	"stlcat/internal/tokenize"
)

// leftovers builds an adjacent leftover token run, the shape the rule
// engine hands to matchers when no tokens in between were consumed.
func leftovers(texts ...string) []tokenize.Token {
	tokens := make([]tokenize.Token, len(texts))
	for i, text := range texts {
		tokens[i] = tokenize.Token{
			Text:     text,
			Source:   tokenize.SourceDirectory,
			Segment:  0,
			Position: i,
		}
	}
	return tokens
}

func unitRecord(id string, tokens ...string) matchers.Record {
	return matchers.Record{
		ID: id,
		Fields: field.Values{
			field.KeySystem:  field.Enum("warhammer_40k"),
			field.KeyFaction: field.Enum("astra_militarum"),
		},
		Tokens: leftovers(tokens...),
	}
}

func TestUnitMatcherScoresOverlap(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	snap := testsupport.NewVocab(t)
	matcher := matchers.NewUnitMatcher(cfg.Matcher, snap, logging.NewNop())

	proposals := matcher.Propose([]matchers.Record{
		unitRecord("rec-1", "conscripts", "squad"),
	})
	if len(proposals) != 1 {
		t.Fatalf("expected one proposal, got %d", len(proposals))
	}
	p := proposals[0]
	if p.Key != "conscripts" || p.Field != field.KeyUnit || p.State != matchers.StateProposed {
		t.Fatalf("unexpected proposal: %+v", p)
	}
	if p.Score < cfg.Matcher.MinScore {
		t.Fatalf("proposal score below minimum: %v", p.Score)
	}
}

func TestUnitMatcherRequiresSystemAndFaction(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	snap := testsupport.NewVocab(t)
	matcher := matchers.NewUnitMatcher(cfg.Matcher, snap, logging.NewNop())

	record := matchers.Record{
		ID:     "rec-1",
		Fields: field.Values{field.KeySystem: field.Enum("warhammer_40k")},
		Tokens: leftovers("conscripts"),
	}
	if proposals := matcher.Propose([]matchers.Record{record}); len(proposals) != 0 {
		t.Fatalf("matched without faction: %+v", proposals)
	}
}

func TestUnitMatcherStopTokenSuppresses(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	snap := testsupport.NewVocab(t)
	matcher := matchers.NewUnitMatcher(cfg.Matcher, snap, logging.NewNop())

	proposals := matcher.Propose([]matchers.Record{
		unitRecord("rec-1", "conscripts", "terrain"),
	})
	if len(proposals) != 0 {
		t.Fatalf("stop token did not suppress match: %+v", proposals)
	}
}

func TestUnitMatcherMinDeltaBreaksTies(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	snap := testsupport.NewVocab(t)
	matcher := matchers.NewUnitMatcher(cfg.Matcher, snap, logging.NewNop())

	// "squad" and "tank" are weak signals for different units; neither
	// clears the minimum score, and no strong signal separates them.
	proposals := matcher.Propose([]matchers.Record{
		unitRecord("rec-1", "squad", "tank"),
	})
	if len(proposals) != 0 {
		t.Fatalf("ambiguous weak overlap matched: %+v", proposals)
	}
}

func TestUnitMatcherKitRollup(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	snap := testsupport.NewVocab(t)
	matcher := matchers.NewUnitMatcher(cfg.Matcher, snap, logging.NewNop())

	parent := unitRecord("parent", "conscripts", "whiteshields")
	child := unitRecord("child")
	child.KitParent = "parent"

	proposals := matcher.Propose([]matchers.Record{parent, child})
	if len(proposals) != 2 {
		t.Fatalf("expected parent and inherited child proposals, got %+v", proposals)
	}
	inherited := proposals[1]
	if inherited.RecordID != "child" || inherited.Key != "conscripts" {
		t.Fatalf("unexpected inherited proposal: %+v", inherited)
	}
	if inherited.Rules[0] != "unit.kit_rollup" {
		t.Fatalf("inherited proposal has wrong rule: %+v", inherited)
	}
}

func TestUnitMatcherKitRollupDisabled(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithKitRollup(false))
	snap := testsupport.NewVocab(t)
	matcher := matchers.NewUnitMatcher(cfg.Matcher, snap, logging.NewNop())

	parent := unitRecord("parent", "conscripts", "whiteshields")
	child := unitRecord("child")
	child.KitParent = "parent"

	proposals := matcher.Propose([]matchers.Record{parent, child})
	if len(proposals) != 1 || proposals[0].RecordID != "parent" {
		t.Fatalf("child matched with roll-up disabled: %+v", proposals)
	}
}

func TestCharacterMatcherProposesFranchise(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	snap := testsupport.NewVocab(t)
	matcher := matchers.NewCharacterMatcher(cfg.Matcher, snap, logging.NewNop())

	proposals := matcher.Propose([]matchers.Record{{
		ID:     "rec-1",
		Fields: field.Values{},
		Tokens: leftovers("kara", "brightblade", "bust"),
	}})
	if len(proposals) != 2 {
		t.Fatalf("expected character and franchise proposals, got %+v", proposals)
	}
	if proposals[0].Field != field.KeyCharacter || proposals[0].Key != "kara_brightblade" {
		t.Fatalf("unexpected character proposal: %+v", proposals[0])
	}
	if proposals[1].Field != field.KeyFranchise || proposals[1].Key != "dragonhold" {
		t.Fatalf("unexpected franchise proposal: %+v", proposals[1])
	}
}

func TestCharacterMatcherRequiresAdjacentTokens(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	snap := testsupport.NewVocab(t)
	matcher := matchers.NewCharacterMatcher(cfg.Matcher, snap, logging.NewNop())

	// A consumed token sat between the two leftovers, so the alias phrase
	// never existed in the name.
	gapped := matchers.Record{
		ID:     "rec-1",
		Fields: field.Values{},
		Tokens: []tokenize.Token{
			{Text: "kara", Source: tokenize.SourceDirectory, Segment: 0, Position: 0},
			{Text: "brightblade", Source: tokenize.SourceDirectory, Segment: 0, Position: 2},
		},
	}
	// Adjacent positions in different path segments are not a phrase either.
	split := matchers.Record{
		ID:     "rec-2",
		Fields: field.Values{},
		Tokens: []tokenize.Token{
			{Text: "kara", Source: tokenize.SourceDirectory, Segment: 0, Position: 0},
			{Text: "brightblade", Source: tokenize.SourceFilename, Segment: 1, Position: 1},
		},
	}

	if proposals := matcher.Propose([]matchers.Record{gapped, split}); len(proposals) != 0 {
		t.Fatalf("non-adjacent tokens matched: %+v", proposals)
	}
}

func TestCharacterMatcherRevalidateDetectsDrift(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	snap := testsupport.NewVocab(t)
	matcher := matchers.NewCharacterMatcher(cfg.Matcher, snap, logging.NewNop())

	proposal := matchers.Proposal{
		RecordID: "rec-1",
		Field:    field.KeyCharacter,
		Key:      "kara_brightblade",
		State:    matchers.StateProposed,
	}
	if err := matcher.Revalidate(proposal, snap); err != nil {
		t.Fatalf("revalidate against same snapshot failed: %v", err)
	}

	// A snapshot without the character rejects the stale proposal.
	driftDir := t.TempDir()
	testsupport.WriteVocabFile(t, driftDir, "character.toml", `
domain = "character"
version = 4

[entries.someone_else]
aliases = ["someone else"]
`)
	drifted := testsupport.MustLoadVocab(t, driftDir)
	err := matcher.Revalidate(proposal, drifted)
	if !errors.Is(err, matchers.ErrVocabularyDrift) {
		t.Fatalf("expected vocabulary drift error, got %v", err)
	}
}

func TestCollectionMatcherDesignerScoped(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	snap := testsupport.NewVocab(t)
	matcher := matchers.NewCollectionMatcher(cfg.Matcher, snap, logging.NewNop())

	scoped := matchers.Record{
		ID:     "rec-1",
		Fields: field.Values{field.KeyDesigner: field.Enum("loot_studios")},
		Tokens: leftovers("northern", "dragons"),
	}
	unscoped := matchers.Record{
		ID:     "rec-2",
		Fields: field.Values{},
		Tokens: leftovers("northern", "dragons"),
	}

	proposals := matcher.Propose([]matchers.Record{scoped, unscoped})
	if len(proposals) != 1 {
		t.Fatalf("expected a single designer-scoped proposal, got %+v", proposals)
	}
	if proposals[0].RecordID != "rec-1" || proposals[0].Key != "northern_dragons" {
		t.Fatalf("unexpected collection proposal: %+v", proposals[0])
	}
}

func TestCollectionMatcherConsolidatesSublines(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	snap := testsupport.NewVocab(t)
	matcher := matchers.NewCollectionMatcher(cfg.Matcher, snap, logging.NewNop())

	record := matchers.Record{
		ID:     "rec-1",
		Fields: field.Values{field.KeyDesigner: field.Enum("loot_studios")},
		Tokens: leftovers("dotn", "dragon"),
	}
	proposals := matcher.Propose([]matchers.Record{record})
	if len(proposals) != 1 || proposals[0].Key != "northern_dragons" {
		t.Fatalf("subline did not consolidate: %+v", proposals)
	}
	if proposals[0].Rules[0] != "collection.subline" {
		t.Fatalf("expected subline rule, got %+v", proposals[0])
	}
}

func TestStateTransitions(t *testing.T) {
	cases := []struct {
		from, to matchers.State
		ok       bool
	}{
		{matchers.StateUnmatched, matchers.StateProposed, true},
		{matchers.StateProposed, matchers.StateReviewed, true},
		{matchers.StateProposed, matchers.StateRejected, true},
		{matchers.StateReviewed, matchers.StateApplied, true},
		{matchers.StateApplied, matchers.StateProposed, false},
		{matchers.StateRejected, matchers.StateReviewed, false},
		{matchers.StateUnmatched, matchers.StateApplied, false},
	}
	for _, tc := range cases {
		_, err := matchers.Transition(tc.from, tc.to)
		if tc.ok && err != nil {
			t.Fatalf("%s -> %s should be valid: %v", tc.from, tc.to, err)
		}
		if !tc.ok && err == nil {
			t.Fatalf("%s -> %s should be rejected", tc.from, tc.to)
		}
	}
}
