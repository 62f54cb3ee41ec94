package vocab

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	lru "github.com/hashicorp/golang-lru/v2"
)

const cacheSize = 8

// Cache memoizes loaded snapshots keyed by a fingerprint of the vocabulary
// directory contents, so repeated runs against an unchanged vocabulary skip
// the load and collision checks.
type Cache struct {
	snapshots *lru.Cache[string, *Snapshot]
}

// NewCache constructs a snapshot cache.
func NewCache() (*Cache, error) {
	snapshots, err := lru.New[string, *Snapshot](cacheSize)
	if err != nil {
		return nil, fmt.Errorf("init vocabulary cache: %w", err)
	}
	return &Cache{snapshots: snapshots}, nil
}

// Load returns the snapshot for dir, loading it only when the directory
// fingerprint is not cached.
func (c *Cache) Load(dir string) (*Snapshot, error) {
	key, err := fingerprintDir(dir)
	if err != nil {
		return nil, err
	}
	if snapshot, ok := c.snapshots.Get(key); ok {
		return snapshot, nil
	}
	snapshot, err := Load(dir)
	if err != nil {
		return nil, err
	}
	c.snapshots.Add(key, snapshot)
	return snapshot, nil
}

func fingerprintDir(dir string) (string, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "*.toml"))
	if err != nil {
		return "", fmt.Errorf("list vocabulary dir: %w", err)
	}
	sort.Strings(matches)

	hash := sha256.New()
	hash.Write([]byte(dir))
	for _, path := range matches {
		info, err := os.Stat(path)
		if err != nil {
			return "", fmt.Errorf("stat vocabulary file: %w", err)
		}
		hash.Write([]byte(path))
		hash.Write([]byte(strconv.FormatInt(info.Size(), 10)))
		hash.Write([]byte(strconv.FormatInt(info.ModTime().UnixNano(), 10)))
	}
	return hex.EncodeToString(hash.Sum(nil)), nil
}
