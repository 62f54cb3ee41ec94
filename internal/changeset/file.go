package changeset

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"stlcat/internal/fileutil"
)

// Write serializes the changeset into dir using its id as the filename and
// returns the full path. Changesets are immutable once written.
func Write(cs *ChangeSet, dir string) (string, error) {
	data, err := json.MarshalIndent(cs, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal changeset: %w", err)
	}
	path := filepath.Join(dir, fmt.Sprintf("changeset-%s.json", cs.ID))
	if err := fileutil.WriteAtomic(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write changeset: %w", err)
	}
	return path, nil
}

// Load reads a changeset file and verifies its content digest.
func Load(path string) (*ChangeSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read changeset: %w", err)
	}
	var cs ChangeSet
	if err := json.Unmarshal(data, &cs); err != nil {
		return nil, fmt.Errorf("parse changeset %s: %w", filepath.Base(path), err)
	}
	if cs.Digest == "" {
		return nil, fmt.Errorf("changeset %s has no content digest", filepath.Base(path))
	}
	digest, err := cs.ComputeDigest()
	if err != nil {
		return nil, err
	}
	if cs.Digest != digest {
		return nil, fmt.Errorf("changeset %s digest mismatch: file was modified after it was written", filepath.Base(path))
	}
	return &cs, nil
}
