package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"stlcat/internal/config"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	cfg, resolved, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if exists {
		t.Fatal("expected missing file to be reported")
	}
	if resolved != path {
		t.Fatalf("expected resolved path %q, got %q", path, resolved)
	}
	if cfg.Tokenizer.MinTokenLength != 2 {
		t.Fatalf("unexpected default min token length: %d", cfg.Tokenizer.MinTokenLength)
	}
	if cfg.Pipeline.Workers != 4 {
		t.Fatalf("unexpected default workers: %d", cfg.Pipeline.Workers)
	}
	if !cfg.Matcher.KitRollup {
		t.Fatal("expected kit roll-up enabled by default")
	}
}

func TestLoadAppliesOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := `
[paths]
catalog_dir = "` + filepath.Join(dir, "catalog") + `"
vocab_dir = "` + filepath.Join(dir, "vocab") + `"
changeset_dir = "` + filepath.Join(dir, "changesets") + `"
log_dir = "` + filepath.Join(dir, "logs") + `"

[tokenizer]
min_token_length = 3

[matcher]
min_score = 4.0
min_delta = 2.0
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !exists {
		t.Fatal("expected config file to be found")
	}
	if cfg.Tokenizer.MinTokenLength != 3 {
		t.Fatalf("override not applied: %d", cfg.Tokenizer.MinTokenLength)
	}
	if cfg.Matcher.MinScore != 4.0 || cfg.Matcher.MinDelta != 2.0 {
		t.Fatalf("matcher overrides not applied: %+v", cfg.Matcher)
	}
}

func TestValidateRejectsBadMatcherThresholds(t *testing.T) {
	cfg := config.Default()
	cfg.Matcher.MinScore = 1.0
	cfg.Matcher.MinDelta = 2.0
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected validation error when min_delta exceeds min_score")
	}
}

func TestRulesetDigestStability(t *testing.T) {
	a := config.Default()
	b := config.Default()

	digestA, err := a.RulesetDigest()
	if err != nil {
		t.Fatalf("digest: %v", err)
	}
	digestB, err := b.RulesetDigest()
	if err != nil {
		t.Fatalf("digest: %v", err)
	}
	if digestA != digestB {
		t.Fatalf("identical configs produced different digests: %s vs %s", digestA, digestB)
	}

	b.Tokenizer.MinTokenLength = 5
	changed, err := b.RulesetDigest()
	if err != nil {
		t.Fatalf("digest: %v", err)
	}
	if changed == digestA {
		t.Fatal("tokenizer change did not alter the ruleset digest")
	}

	// Path changes never affect pipeline output, so the digest ignores them.
	c := config.Default()
	c.Paths.LogDir = "/tmp/elsewhere"
	pathOnly, err := c.RulesetDigest()
	if err != nil {
		t.Fatalf("digest: %v", err)
	}
	if pathOnly != digestA {
		t.Fatal("path change unexpectedly altered the ruleset digest")
	}
}
