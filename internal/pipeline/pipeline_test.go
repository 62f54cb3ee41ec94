package pipeline_test

import (
	"context"
	"testing"

	"stlcat/internal/catalog"
	"stlcat/internal/field"
	"stlcat/internal/logging"
	"stlcat/internal/pipeline"
	"stlcat/internal/testsupport"
)

func seedRecords(t *testing.T, store *catalog.Store, relPaths ...string) {
	t.Helper()
	ctx := context.Background()
	for i, relPath := range relPaths {
		v := &catalog.Variant{
			ID:      relPath,
			RelPath: relPath,
		}
		if err := store.InsertVariant(ctx, v); err != nil {
			t.Fatalf("insert record %d: %v", i, err)
		}
	}
}

func TestNormalizeDeterministicAcrossWorkerCounts(t *testing.T) {
	relPaths := []string{
		"tabletop/loot_studios/high_elf_archer_pose02/archer.stl",
		"tabletop/astra_militarum/cadian_conscripts/squad.stl",
		"display/titan_forge/dragon_1-10_120mm/dragon.stl",
		"minis/sorceress_sexy/sorceress.stl",
		"minis/dragon_split_merged/dragon.stl",
	}

	run := func(workers int) ([]byte, map[string]int) {
		cfg := testsupport.NewConfig(t, testsupport.WithWorkers(workers))
		snap := testsupport.NewVocab(t)
		store := testsupport.MustOpenStore(t, cfg)
		seedRecords(t, store, relPaths...)

		runner := pipeline.New(cfg, snap, store, logging.NewNop())
		out, err := runner.Normalize(context.Background())
		if err != nil {
			t.Fatalf("normalize with %d workers: %v", workers, err)
		}
		digest, err := out.ChangeSet.ComputeDigest()
		if err != nil {
			t.Fatalf("digest: %v", err)
		}
		return []byte(digest), out.Residuals
	}

	digest1, residuals1 := run(1)
	digest4, residuals4 := run(4)

	if string(digest1) != string(digest4) {
		t.Fatalf("changeset content depends on worker count: %s vs %s", digest1, digest4)
	}
	if len(residuals1) != len(residuals4) {
		t.Fatalf("residual merge not deterministic: %v vs %v", residuals1, residuals4)
	}
	for token, count := range residuals1 {
		if residuals4[token] != count {
			t.Fatalf("residual count mismatch for %q: %d vs %d", token, count, residuals4[token])
		}
	}
}

func TestNormalizeHonorsCancellation(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	snap := testsupport.NewVocab(t)
	store := testsupport.MustOpenStore(t, cfg)
	seedRecords(t, store, "minis/a/x.stl", "minis/b/y.stl")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	runner := pipeline.New(cfg, snap, store, logging.NewNop())
	if _, err := runner.Normalize(ctx); err == nil {
		t.Fatal("expected cancellation error")
	}
}

func TestRunMatcherUnitProposals(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	snap := testsupport.NewVocab(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	v := &catalog.Variant{
		ID:      "rec-1",
		RelPath: "tabletop/conscripts_whiteshields/squad.stl",
		Fields: field.Values{
			field.KeySystem:  field.Enum("warhammer_40k"),
			field.KeyFaction: field.Enum("astra_militarum"),
		},
	}
	if err := store.InsertVariant(ctx, v); err != nil {
		t.Fatalf("insert: %v", err)
	}

	runner := pipeline.New(cfg, snap, store, logging.NewNop())
	cs, err := runner.RunMatcher(ctx, pipeline.MatchUnit)
	if err != nil {
		t.Fatalf("run matcher: %v", err)
	}
	if len(cs.Entries) != 1 {
		t.Fatalf("expected one unit entry, got %+v", cs.Entries)
	}
	entry := cs.Entries[0]
	if entry.Field != field.KeyUnit || !entry.NewValue.Equal(field.Enum("conscripts")) {
		t.Fatalf("unexpected matcher entry: %+v", entry)
	}
}

func TestRunMatcherCollection(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	snap := testsupport.NewVocab(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	v := &catalog.Variant{
		ID:      "rec-1",
		RelPath: "archive/northern_dragons/wyvern.stl",
		Fields: field.Values{
			field.KeyDesigner: field.Enum("loot_studios"),
		},
	}
	if err := store.InsertVariant(ctx, v); err != nil {
		t.Fatalf("insert: %v", err)
	}

	runner := pipeline.New(cfg, snap, store, logging.NewNop())
	cs, err := runner.RunMatcher(ctx, pipeline.MatchCollection)
	if err != nil {
		t.Fatalf("run matcher: %v", err)
	}
	if len(cs.Entries) != 1 || !cs.Entries[0].NewValue.Equal(field.Enum("northern_dragons")) {
		t.Fatalf("unexpected collection entries: %+v", cs.Entries)
	}
}
