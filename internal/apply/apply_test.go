package apply_test

import (
	"context"
	"testing"
	"time"

	"stlcat/internal/apply"
	"stlcat/internal/catalog"
	"stlcat/internal/changeset"
	"stlcat/internal/field"
	"stlcat/internal/logging"
	"stlcat/internal/rules"
	"stlcat/internal/testsupport"
)

func buildChangeSet(t *testing.T, recordID string, current field.Values, result rules.Result) *changeset.ChangeSet {
	t.Helper()
	builder := changeset.NewBuilder("digest-a", 3)
	builder.AddResult(recordID, current, false, result)
	cs, err := builder.Build(time.Now())
	if err != nil {
		t.Fatalf("build changeset: %v", err)
	}
	return cs
}

func designerResult(key string) rules.Result {
	return rules.Result{
		Fields: map[field.Key]rules.Finding{
			field.KeyDesigner: {Value: field.Enum(key), Delta: 0.5, Rules: []string{"designer.alias"}},
		},
		Confidence: 1.5,
	}
}

func TestApplyIsIdempotent(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	if err := store.InsertVariant(ctx, &catalog.Variant{ID: "rec-1", RelPath: "minis/a"}); err != nil {
		t.Fatalf("insert: %v", err)
	}
	cs := buildChangeSet(t, "rec-1", field.Values{}, designerResult("loot_studios"))

	engine := apply.New(store, logging.NewNop())
	first, err := engine.Apply(ctx, cs)
	if err != nil {
		t.Fatalf("first apply: %v", err)
	}
	if first.Applied != 1 {
		t.Fatalf("expected one applied entry, got %+v", first)
	}

	second, err := engine.Apply(ctx, cs)
	if err != nil {
		t.Fatalf("second apply: %v", err)
	}
	if second.Applied != 0 || second.NoOps != 1 {
		t.Fatalf("second apply was not a no-op: %+v", second)
	}

	got, err := store.GetVariant(ctx, "rec-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !got.Fields[field.KeyDesigner].Equal(field.Enum("loot_studios")) {
		t.Fatalf("value not committed: %+v", got.Fields)
	}
}

func TestApplyNeverTouchesOverriddenField(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	if err := store.InsertVariant(ctx, &catalog.Variant{ID: "rec-1", RelPath: "minis/a"}); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if err := store.SetOverride(ctx, "rec-1", field.KeyDesigner, field.Enum("pinned_studio")); err != nil {
		t.Fatalf("set override: %v", err)
	}

	cs := buildChangeSet(t, "rec-1", field.Values{}, designerResult("loot_studios"))
	engine := apply.New(store, logging.NewNop())
	outcome, err := engine.Apply(ctx, cs)
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if outcome.Overridden != 1 || outcome.Applied != 0 {
		t.Fatalf("override not respected: %+v", outcome)
	}

	got, err := store.GetVariant(ctx, "rec-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !got.Fields[field.KeyDesigner].Equal(field.Enum("pinned_studio")) {
		t.Fatalf("live value was overwritten: %+v", got.Fields)
	}
	// The derived value is still retained for audit.
	if !got.AutoFields[field.KeyDesigner].Equal(field.Enum("loot_studios")) {
		t.Fatalf("auto value not updated: %+v", got.AutoFields)
	}
}

func TestApplyRejectsStaleEntryPerRecord(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	stale := &catalog.Variant{ID: "rec-stale", RelPath: "minis/a"}
	fresh := &catalog.Variant{ID: "rec-fresh", RelPath: "minis/b"}
	for _, v := range []*catalog.Variant{stale, fresh} {
		if err := store.InsertVariant(ctx, v); err != nil {
			t.Fatalf("insert %s: %v", v.ID, err)
		}
	}

	builder := changeset.NewBuilder("digest-a", 3)
	builder.AddResult("rec-stale", field.Values{}, false, designerResult("loot_studios"))
	builder.AddResult("rec-fresh", field.Values{}, false, designerResult("titan_forge"))
	cs, err := builder.Build(time.Now())
	if err != nil {
		t.Fatalf("build changeset: %v", err)
	}

	// Concurrent external edit after the proposal was generated.
	stale.Fields = field.Values{field.KeyDesigner: field.Enum("someone_else")}
	if err := store.UpdateVariant(ctx, stale); err != nil {
		t.Fatalf("simulate external edit: %v", err)
	}

	engine := apply.New(store, logging.NewNop())
	outcome, err := engine.Apply(ctx, cs)
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if outcome.Stale != 1 || outcome.Applied != 1 {
		t.Fatalf("stale isolation failed: %+v", outcome)
	}
	if _, ok := outcome.StaleRecords["rec-stale"]; !ok {
		t.Fatalf("stale record not reported: %+v", outcome.StaleRecords)
	}

	// The stale record keeps the external edit; the fresh record applied.
	gotStale, err := store.GetVariant(ctx, "rec-stale")
	if err != nil {
		t.Fatalf("get stale: %v", err)
	}
	if !gotStale.Fields[field.KeyDesigner].Equal(field.Enum("someone_else")) {
		t.Fatalf("stale record was overwritten: %+v", gotStale.Fields)
	}
	gotFresh, err := store.GetVariant(ctx, "rec-fresh")
	if err != nil {
		t.Fatalf("get fresh: %v", err)
	}
	if !gotFresh.Fields[field.KeyDesigner].Equal(field.Enum("titan_forge")) {
		t.Fatalf("fresh record not applied: %+v", gotFresh.Fields)
	}
}

func TestApplyMissingRecordIsIsolated(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	if err := store.InsertVariant(ctx, &catalog.Variant{ID: "rec-1", RelPath: "minis/a"}); err != nil {
		t.Fatalf("insert: %v", err)
	}

	builder := changeset.NewBuilder("digest-a", 3)
	builder.AddResult("rec-gone", field.Values{}, false, designerResult("loot_studios"))
	builder.AddResult("rec-1", field.Values{}, false, designerResult("titan_forge"))
	cs, err := builder.Build(time.Now())
	if err != nil {
		t.Fatalf("build changeset: %v", err)
	}

	engine := apply.New(store, logging.NewNop())
	outcome, err := engine.Apply(ctx, cs)
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if outcome.Stale != 1 || outcome.Applied != 1 {
		t.Fatalf("missing record not isolated: %+v", outcome)
	}
}
