package testsupport

import (
	"testing"

	"stlcat/internal/catalog"
	"stlcat/internal/config"
)

// MustOpenStore opens a catalog store against the test config's temp
// directories and closes it when the test ends.
func MustOpenStore(t testing.TB, cfg *config.Config) *catalog.Store {
	t.Helper()
	store, err := catalog.Open(cfg)
	if err != nil {
		t.Fatalf("open catalog store: %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Errorf("close catalog store: %v", err)
		}
	})
	return store
}
