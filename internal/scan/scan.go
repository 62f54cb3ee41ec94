// Package scan enumerates a flat extracted file tree into candidate
// Variant records. Archive extraction already happened upstream; the scan
// only groups model files by folder and detects kit structure.
package scan

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/uuid"

	"stlcat/internal/catalog"
	"stlcat/internal/logging"
)

// Candidate is one prospective Variant: a directory that directly contains
// model files. A candidate nested under another candidate is a kit child.
type Candidate struct {
	ID      string
	RelPath string
	// KitParent is the RelPath of the nearest enclosing candidate, empty
	// for top-level records.
	KitParent string
}

var modelExtensions = map[string]struct{}{
	".stl":      {},
	".obj":      {},
	".3mf":      {},
	".lys":      {},
	".chitubox": {},
}

// Walk enumerates root and returns candidates sorted by relative path.
func Walk(root string) ([]Candidate, error) {
	modelDirs := make(map[string]struct{})
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		ext := strings.ToLower(filepath.Ext(d.Name()))
		if _, ok := modelExtensions[ext]; !ok {
			return nil
		}
		rel, relErr := filepath.Rel(root, filepath.Dir(path))
		if relErr != nil {
			return relErr
		}
		if rel == "." {
			// Loose files at the root have no grouping folder; skip them.
			return nil
		}
		modelDirs[filepath.ToSlash(rel)] = struct{}{}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", root, err)
	}

	relPaths := make([]string, 0, len(modelDirs))
	for rel := range modelDirs {
		relPaths = append(relPaths, rel)
	}
	sort.Strings(relPaths)

	candidates := make([]Candidate, 0, len(relPaths))
	for _, rel := range relPaths {
		candidates = append(candidates, Candidate{
			ID:        uuid.NewString(),
			RelPath:   rel,
			KitParent: nearestParent(rel, modelDirs),
		})
	}
	return candidates, nil
}

// nearestParent walks up the path looking for the closest enclosing
// candidate directory.
func nearestParent(rel string, modelDirs map[string]struct{}) string {
	for dir := parentDir(rel); dir != ""; dir = parentDir(dir) {
		if _, ok := modelDirs[dir]; ok {
			return dir
		}
	}
	return ""
}

func parentDir(rel string) string {
	idx := strings.LastIndex(rel, "/")
	if idx < 0 {
		return ""
	}
	return rel[:idx]
}

// CommitResult summarizes a scan commit.
type CommitResult struct {
	Inserted int
	Existing int
}

// Commit inserts new candidates into the store, skipping records whose
// relative path is already cataloged. Kit children link to their parent's
// stored id, whether the parent was just inserted or already existed.
func Commit(ctx context.Context, store *catalog.Store, candidates []Candidate, logger *slog.Logger) (*CommitResult, error) {
	logger = logging.NewComponentLogger(logger, "scan")
	result := &CommitResult{}
	idByRelPath := make(map[string]string, len(candidates))

	for _, candidate := range candidates {
		existing, err := store.GetVariantByRelPath(ctx, candidate.RelPath)
		switch {
		case err == nil:
			idByRelPath[candidate.RelPath] = existing.ID
			result.Existing++
			continue
		case errors.Is(err, catalog.ErrNotFound):
		default:
			return nil, fmt.Errorf("look up %s: %w", candidate.RelPath, err)
		}

		parentID := ""
		if candidate.KitParent != "" {
			parentID = idByRelPath[candidate.KitParent]
		}
		v := &catalog.Variant{
			ID:        candidate.ID,
			RelPath:   candidate.RelPath,
			KitParent: parentID,
		}
		if err := store.InsertVariant(ctx, v); err != nil {
			return nil, fmt.Errorf("insert %s: %w", candidate.RelPath, err)
		}
		idByRelPath[candidate.RelPath] = candidate.ID
		result.Inserted++
	}

	logger.Info("scan committed",
		logging.Int("inserted", result.Inserted),
		logging.Int("existing", result.Existing))
	return result, nil
}
