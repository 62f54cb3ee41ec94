package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"stlcat/internal/vocab"
)

// WriteVocabFile drops one vocabulary TOML file into dir.
func WriteVocabFile(t testing.TB, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write vocab file %s: %v", name, err)
	}
	return path
}

// SeedVocab writes the shared fixture vocabulary into dir. The fixture is
// intentionally small but covers every domain the passes and matchers
// touch: two designers, two systems, system-scoped factions with lineage
// implications, family-bearing lineages, scored units, and a
// designer-scoped collection.
func SeedVocab(t testing.TB, dir string) {
	t.Helper()

	WriteVocabFile(t, dir, "designer.toml", `
domain = "designer"
version = 3

[entries.loot_studios]
aliases = ["loot studios", "lootstudios"]

[entries.titan_forge]
aliases = ["titan forge", "titanforge"]
`)

	WriteVocabFile(t, dir, "system.toml", `
domain = "system"
version = 3

[entries.warhammer_40k]
aliases = ["warhammer 40k", "40k", "wh40k"]

[entries.age_of_sigmar]
aliases = ["age of sigmar", "aos"]
`)

	WriteVocabFile(t, dir, "faction.toml", `
domain = "faction"
version = 3

[entries.astra_militarum]
system = "warhammer_40k"
lineage = "human"
aliases = ["astra militarum", "imperial guard", "cadian"]

[entries.stormcast_eternals]
system = "age_of_sigmar"
lineage = "human"
aliases = ["stormcast"]

[entries.free_peoples]
aliases = ["free peoples", "freeguild"]
`)

	WriteVocabFile(t, dir, "lineage.toml", `
domain = "lineage"
version = 3

[entries.high_elf]
family = "elf"
aliases = ["high elf", "high-elf"]

[entries.dark_elf]
family = "elf"
aliases = ["dark elf", "drow"]

[entries.dwarf]
family = "dwarf"
aliases = ["duardin"]
`)

	WriteVocabFile(t, dir, "unit.toml", `
domain = "unit"
version = 3

[entries.conscripts]
system = "warhammer_40k"
faction = "astra_militarum"
base = "25mm"
aliases = ["conscript"]
strong = ["conscripts", "whiteshields"]
weak = ["squad", "infantry"]
stop = ["terrain"]

[entries.leman_russ]
system = "warhammer_40k"
faction = "astra_militarum"
base = "vehicle"
aliases = ["leman russ"]
strong = ["leman", "russ"]
weak = ["tank", "battle"]
stop = ["ruins"]
`)

	WriteVocabFile(t, dir, "franchise.toml", `
domain = "franchise"
version = 3

[entries.dragonhold]
aliases = ["dragonhold saga"]

[entries.drow_saga]
aliases = ["drow saga", "drow"]
`)

	WriteVocabFile(t, dir, "character.toml", `
domain = "character"
version = 3

[entries.kara_brightblade]
franchise = "dragonhold"
aliases = ["kara brightblade"]
`)

	WriteVocabFile(t, dir, "collection.toml", `
domain = "collection"
version = 3

[entries.northern_dragons]
designer = "loot_studios"
aliases = ["northern dragons"]
sublines = ["northern dragons vol 2", "dotn"]
`)
}

// NewVocab seeds the fixture vocabulary in a temp dir and loads it.
func NewVocab(t testing.TB) *vocab.Snapshot {
	t.Helper()
	dir := t.TempDir()
	SeedVocab(t, dir)
	return MustLoadVocab(t, dir)
}

// MustLoadVocab loads a vocabulary directory, failing the test on error.
func MustLoadVocab(t testing.TB, dir string) *vocab.Snapshot {
	t.Helper()
	snapshot, err := vocab.Load(dir)
	if err != nil {
		t.Fatalf("load vocabulary from %s: %v", dir, err)
	}
	return snapshot
}
