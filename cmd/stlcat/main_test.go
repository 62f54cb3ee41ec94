package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"stlcat/internal/config"
	"stlcat/internal/testsupport"
)

type cliTestEnv struct {
	baseDir    string
	configPath string
	libraryDir string
}

func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.CatalogDir = filepath.Join(base, "catalog")
	cfg.Paths.VocabDir = filepath.Join(base, "vocab")
	cfg.Paths.ChangeSetDir = filepath.Join(base, "changesets")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Pipeline.Workers = 2

	if err := os.MkdirAll(cfg.Paths.VocabDir, 0o755); err != nil {
		t.Fatalf("create vocab dir: %v", err)
	}
	testsupport.SeedVocab(t, cfg.Paths.VocabDir)

	configPath := filepath.Join(base, "config.toml")
	data, err := toml.Marshal(cfg)
	if err != nil {
		t.Fatalf("marshal config: %v", err)
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	library := filepath.Join(base, "library")
	for _, rel := range []string{
		"minis/astra_militarum/cadian_conscripts/squad.stl",
		"display/dragon_1-10_120mm_v2/dragon.stl",
	} {
		path := filepath.Join(library, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("create library dir: %v", err)
		}
		if err := os.WriteFile(path, []byte("solid"), 0o644); err != nil {
			t.Fatalf("write model file: %v", err)
		}
	}

	return &cliTestEnv{baseDir: base, configPath: configPath, libraryDir: library}
}

func runCLI(t *testing.T, configPath string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	buf := &bytes.Buffer{}
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs(append([]string{"--config", configPath}, args...))
	err := cmd.Execute()
	return buf.String(), err
}

func requireContains(t *testing.T, output, needle string) {
	t.Helper()
	if !strings.Contains(output, needle) {
		t.Fatalf("expected output to contain %q, got:\n%s", needle, output)
	}
}

func TestCLIScanNormalizeApplyFlow(t *testing.T) {
	env := setupCLITestEnv(t)

	out, err := runCLI(t, env.configPath, "scan", env.libraryDir)
	if err != nil {
		t.Fatalf("scan preview: %v\n%s", err, out)
	}
	requireContains(t, out, "Preview only")

	out, err = runCLI(t, env.configPath, "scan", env.libraryDir, "--commit")
	if err != nil {
		t.Fatalf("scan --commit: %v\n%s", err, out)
	}
	requireContains(t, out, "Inserted 2 new record(s)")

	out, err = runCLI(t, env.configPath, "normalize")
	if err != nil {
		t.Fatalf("normalize: %v\n%s", err, out)
	}
	requireContains(t, out, "Change set")

	files, err := filepath.Glob(filepath.Join(env.baseDir, "changesets", "changeset-*.json"))
	if err != nil || len(files) != 1 {
		t.Fatalf("expected one change set file, got %v (err %v)", files, err)
	}

	out, err = runCLI(t, env.configPath, "changeset", "show", files[0])
	if err != nil {
		t.Fatalf("changeset show: %v\n%s", err, out)
	}
	requireContains(t, out, "astra_militarum")

	out, err = runCLI(t, env.configPath, "apply", files[0])
	if err != nil {
		t.Fatalf("apply: %v\n%s", err, out)
	}
	requireContains(t, out, "Applied")

	out, err = runCLI(t, env.configPath, "show", "minis/astra_militarum/cadian_conscripts")
	if err != nil {
		t.Fatalf("show: %v\n%s", err, out)
	}
	requireContains(t, out, "astra_militarum")
}

func TestCLIScanIgnoresUnknownFiles(t *testing.T) {
	env := setupCLITestEnv(t)
	if err := os.WriteFile(filepath.Join(env.libraryDir, "minis", "readme.txt"), []byte("x"), 0o644); err != nil {
		t.Fatalf("write readme: %v", err)
	}

	out, err := runCLI(t, env.configPath, "scan", env.libraryDir)
	if err != nil {
		t.Fatalf("scan: %v\n%s", err, out)
	}
	if strings.Contains(out, "readme") {
		t.Fatalf("non-model file should not produce a candidate:\n%s", out)
	}
}

func TestCLIClassifyPreview(t *testing.T) {
	env := setupCLITestEnv(t)

	out, err := runCLI(t, env.configPath, "classify", "display/dragon_1-10_120mm_v2/dragon.stl")
	if err != nil {
		t.Fatalf("classify: %v\n%s", err, out)
	}
	requireContains(t, out, "Scale Ratio")
	requireContains(t, out, "Confidence:")
}

func TestCLIStatsEmptyCatalog(t *testing.T) {
	env := setupCLITestEnv(t)

	out, err := runCLI(t, env.configPath, "catalog", "stats")
	if err != nil {
		t.Fatalf("stats: %v\n%s", err, out)
	}
	requireContains(t, out, "Records")
}

func TestCLIVocabValidate(t *testing.T) {
	env := setupCLITestEnv(t)

	out, err := runCLI(t, env.configPath, "vocab", "validate")
	if err != nil {
		t.Fatalf("vocab validate: %v\n%s", err, out)
	}
	requireContains(t, out, "ok")
}

func TestCLIUnknownMatcherRejected(t *testing.T) {
	env := setupCLITestEnv(t)

	if _, err := runCLI(t, env.configPath, "match", "nonsense"); err == nil {
		t.Fatal("expected unknown matcher to fail")
	}
}
