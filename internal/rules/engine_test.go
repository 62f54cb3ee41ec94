package rules_test

import (
	"reflect"
	"testing"

	"stlcat/internal/field"
	"stlcat/internal/logging"
	"stlcat/internal/rules"
	"stlcat/internal/testsupport"
	"stlcat/internal/tokenize"
)

func classify(t *testing.T, relPath string) rules.Result {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	snap := testsupport.NewVocab(t)
	engine := rules.NewEngine(cfg, snap, logging.NewNop())
	return engine.Classify(tokenize.Tokenize(relPath, cfg.Tokenizer))
}

func mustEnum(t *testing.T, result rules.Result, key field.Key, want string) {
	t.Helper()
	finding, ok := result.Fields[key]
	if !ok {
		t.Fatalf("field %s not set; fields: %v", key, result.Values())
	}
	if finding.Value.Kind() != field.KindEnum || finding.Value.Str() != want {
		t.Fatalf("field %s = %s, want enum %q", key, finding.Value.Display(), want)
	}
}

func mustUnset(t *testing.T, result rules.Result, key field.Key) {
	t.Helper()
	if _, ok := result.Fields[key]; ok {
		t.Fatalf("field %s unexpectedly set to %s", key, result.Fields[key].Value.Display())
	}
}

func hasWarning(result rules.Result, warning rules.Warning) bool {
	for _, w := range result.AllWarnings() {
		if w == warning {
			return true
		}
	}
	return false
}

func TestClassifyLineageHeldBackWithoutSystem(t *testing.T) {
	result := classify(t, "minis/high_elf_archer_pose02/archer.stl")

	mustEnum(t, result, field.KeyLineageFamily, "elf")
	mustUnset(t, result, field.KeyLineagePrimary)
	mustUnset(t, result, field.KeySystem)
	mustUnset(t, result, field.KeyFaction)

	pose, ok := result.Fields[field.KeyPose]
	if !ok || pose.Value.Str() != "02" {
		t.Fatalf("expected pose 02, got %+v", pose)
	}
	if hasWarning(result, rules.WarnFactionWithoutSystem) {
		t.Fatal("no faction token present; warning is wrong")
	}
	if !containsToken(result.Residual, "archer") {
		t.Fatalf("expected archer in residuals, got %v", result.Residual)
	}
}

func TestClassifyLineagePrimaryCommitsWithSystem(t *testing.T) {
	result := classify(t, "minis/40k_high_elf_archer/archer.stl")

	mustEnum(t, result, field.KeySystem, "warhammer_40k")
	mustEnum(t, result, field.KeyLineageFamily, "elf")
	mustEnum(t, result, field.KeyLineagePrimary, "high_elf")
}

func TestClassifyFactionImpliesSystemAndLineage(t *testing.T) {
	result := classify(t, "minis/astra_militarum/cadian_conscripts/squad.stl")

	mustEnum(t, result, field.KeySystem, "warhammer_40k")
	mustEnum(t, result, field.KeyFaction, "astra_militarum")
	mustEnum(t, result, field.KeyLineageFamily, "human")

	// The unit alias stays leftover for the unit matcher and is not
	// residual.
	if containsToken(result.Residual, "conscripts") {
		t.Fatalf("unit alias recorded as residual: %v", result.Residual)
	}
	found := false
	for _, token := range result.Leftover {
		if token.Text == "conscripts" {
			found = true
		}
	}
	if !found {
		t.Fatal("expected conscripts among leftover tokens")
	}
}

func TestClassifyFactionWithoutSystemIgnored(t *testing.T) {
	result := classify(t, "minis/freeguild_spearmen/spearman.stl")

	mustUnset(t, result, field.KeySystem)
	mustUnset(t, result, field.KeyFaction)
	if !hasWarning(result, rules.WarnFactionWithoutSystem) {
		t.Fatalf("expected faction_without_system, warnings: %v", result.AllWarnings())
	}
}

func TestClassifyStrongCueSuppressesWeakWarning(t *testing.T) {
	result := classify(t, "minis/sorceress_nude_sexy/sorceress.stl")

	mustEnum(t, result, field.KeyContentFlag, "nsfw")
	if hasWarning(result, rules.WarnNSFWWeakConfidence) {
		t.Fatalf("weak cue warned after strong cue fired: %v", result.AllWarnings())
	}
	if containsToken(result.Residual, "sexy") {
		t.Fatalf("weak cue leaked into residuals: %v", result.Residual)
	}
}

func TestClassifyWeakCueAloneWarns(t *testing.T) {
	result := classify(t, "minis/sorceress_sexy/sorceress.stl")

	mustEnum(t, result, field.KeyContentFlag, "nsfw")
	if !hasWarning(result, rules.WarnNSFWWeakConfidence) {
		t.Fatalf("expected nsfw_weak_confidence, warnings: %v", result.AllWarnings())
	}
}

func TestClassifySegmentationConflictSymmetry(t *testing.T) {
	for _, relPath := range []string{
		"minis/dragon_split_merged/dragon.stl",
		"minis/dragon_merged_split/dragon.stl",
	} {
		result := classify(t, relPath)
		finding, ok := result.Fields[field.KeySegmentation]
		if !ok {
			t.Fatalf("%s: segmentation field absent", relPath)
		}
		if !finding.Value.IsUnknown() {
			t.Fatalf("%s: conflicting cues picked %s", relPath, finding.Value.Display())
		}
		if !hasWarning(result, rules.WarnSegmentationConflict) {
			t.Fatalf("%s: missing segmentation_conflict", relPath)
		}
	}
}

func TestClassifyDesignerCollision(t *testing.T) {
	result := classify(t, "minis/loot_studios_x_titan_forge/mini.stl")

	finding, ok := result.Fields[field.KeyDesigner]
	if !ok || !finding.Value.IsUnknown() {
		t.Fatalf("expected explicit unknown designer, got %+v", finding)
	}
	if !hasWarning(result, rules.WarnDesignerAliasCollision) {
		t.Fatalf("expected designer_alias_collision, warnings: %v", result.AllWarnings())
	}
}

func TestClassifyStructuralScaleChecks(t *testing.T) {
	result := classify(t, "display/dragon_1-100_500mm/dragon.stl")

	if !hasWarning(result, rules.WarnUncommonScaleRatio) {
		t.Fatalf("expected uncommon_scale_ratio for 1:100, warnings: %v", result.AllWarnings())
	}
	// 1750/100 = 17.5mm expected; 500mm is far outside tolerance.
	if !hasWarning(result, rules.WarnScaleMMRatioConflict) {
		t.Fatalf("expected scale_mm_ratio_conflict, warnings: %v", result.AllWarnings())
	}
}

func TestClassifyIntendedUseTopSegmentOnly(t *testing.T) {
	result := classify(t, "display/knight_tabletop/knight.stl")
	mustEnum(t, result, field.KeyIntendedUse, "display")
}

func TestClassifyIntendedUseConflict(t *testing.T) {
	result := classify(t, "tabletop_terrain/dragon/dragon.stl")

	finding, ok := result.Fields[field.KeyIntendedUse]
	if !ok {
		t.Fatalf("intended_use field absent; fields: %v", result.Values())
	}
	if !finding.Value.IsUnknown() {
		t.Fatalf("conflicting use buckets picked %s", finding.Value.Display())
	}
	if !hasWarning(result, rules.WarnIntendedUseConflict) {
		t.Fatalf("expected intended_use_conflict, warnings: %v", result.AllWarnings())
	}
}

func TestClassifyAmbiguousLineageTokenSkipped(t *testing.T) {
	// "drow" aliases both the dark_elf lineage and the drow_saga
	// franchise; a single shared token must not commit a lineage.
	result := classify(t, "minis/drow_ranger/model.stl")

	mustUnset(t, result, field.KeyLineageFamily)
	mustUnset(t, result, field.KeyLineagePrimary)
	if !hasWarning(result, rules.WarnAmbiguousLineageToken) {
		t.Fatalf("expected ambiguous_lineage_token, warnings: %v", result.AllWarnings())
	}
	// The token stays available for the franchise matcher.
	found := false
	for _, token := range result.Leftover {
		if token.Text == "drow" {
			found = true
		}
	}
	if !found {
		t.Fatal("expected drow among leftover tokens")
	}
}

func TestClassifyVariantAxisConflicts(t *testing.T) {
	for _, tc := range []struct {
		relPath string
		key     field.Key
	}{
		{"minis/dragon_hollow_solid/dragon.stl", field.KeyInternalVolume},
		{"minis/dragon_supported_unsupported/dragon.stl", field.KeySupportState},
	} {
		result := classify(t, tc.relPath)
		finding, ok := result.Fields[tc.key]
		if !ok {
			t.Fatalf("%s: %s field absent", tc.relPath, tc.key)
		}
		if !finding.Value.IsUnknown() {
			t.Fatalf("%s: conflicting cues picked %s", tc.relPath, finding.Value.Display())
		}
		if !hasWarning(result, rules.WarnVariantAxisConflict) {
			t.Fatalf("%s: missing variant_axis_conflict", tc.relPath)
		}
	}
}

func TestClassifyRoleCueConflict(t *testing.T) {
	result := classify(t, "minis/hero_npc_pack/model.stl")

	finding, ok := result.Fields[field.KeyPCCandidate]
	if !ok || finding.Value.Flag() {
		t.Fatalf("conflicting role cues must leave flag false, got %+v", finding)
	}
	if !hasWarning(result, rules.WarnPCCandidateConflict) {
		t.Fatalf("expected pc_candidate_conflict, warnings: %v", result.AllWarnings())
	}
}

func TestClassifyConfidenceAccounting(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	snap := testsupport.NewVocab(t)
	engine := rules.NewEngine(cfg, snap, logging.NewNop())

	clean := engine.Classify(tokenize.Tokenize("archive/loot_studios/dragon.stl", cfg.Tokenizer))
	want := cfg.Scoring.Baseline + cfg.Scoring.MatchIncrement
	if clean.Confidence != want {
		t.Fatalf("confidence = %v, want %v", clean.Confidence, want)
	}

	warned := engine.Classify(tokenize.Tokenize("archive/freeguild/model.stl", cfg.Tokenizer))
	if warned.Confidence >= cfg.Scoring.Baseline {
		t.Fatalf("warning did not penalize confidence: %v", warned.Confidence)
	}
}

func TestClassifyDeterministic(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	snap := testsupport.NewVocab(t)
	engine := rules.NewEngine(cfg, snap, logging.NewNop())

	const relPath = "tabletop/loot_studios/astra_militarum/conscripts_split_supported_1-10/squad_v2.stl"
	first := engine.Classify(tokenize.Tokenize(relPath, cfg.Tokenizer))
	second := engine.Classify(tokenize.Tokenize(relPath, cfg.Tokenizer))
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("classification not deterministic:\n%+v\n%+v", first, second)
	}
}

func containsToken(tokens []string, target string) bool {
	for _, token := range tokens {
		if token == target {
			return true
		}
	}
	return false
}
