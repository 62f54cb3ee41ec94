package vocab

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// ErrAliasCollision indicates one alias maps to two canonical keys within a
// single domain. The whole load fails; no partial vocabulary is usable.
var ErrAliasCollision = errors.New("alias collision")

// ErrMalformedVocabulary indicates a vocabulary file could not be parsed or
// declared an unknown domain.
var ErrMalformedVocabulary = errors.New("malformed vocabulary")

type entryDoc struct {
	Aliases   []string `toml:"aliases"`
	System    string   `toml:"system"`
	Faction   string   `toml:"faction"`
	Lineage   string   `toml:"lineage"`
	Family    string   `toml:"family"`
	Base      string   `toml:"base"`
	Strong    []string `toml:"strong"`
	Weak      []string `toml:"weak"`
	Stop      []string `toml:"stop"`
	Designer  string   `toml:"designer"`
	Franchise string   `toml:"franchise"`
	Sublines  []string `toml:"sublines"`
}

type fileDoc struct {
	Domain  string              `toml:"domain"`
	Version int                 `toml:"version"`
	Entries map[string]entryDoc `toml:"entries"`
}

// Load reads every *.toml file in dir and builds an immutable Snapshot.
// Files are read in lexical order; the snapshot version is the highest file
// version encountered.
func Load(dir string) (*Snapshot, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "*.toml"))
	if err != nil {
		return nil, fmt.Errorf("list vocabulary dir: %w", err)
	}
	if len(matches) == 0 {
		return nil, fmt.Errorf("%w: no vocabulary files in %s", ErrMalformedVocabulary, dir)
	}
	sort.Strings(matches)

	snapshot := &Snapshot{domains: make(map[Domain]*domainIndex)}
	for _, path := range matches {
		doc, err := parseFile(path)
		if err != nil {
			return nil, err
		}
		domain, ok := ParseDomain(doc.Domain)
		if !ok {
			return nil, fmt.Errorf("%w: %s declares unknown domain %q", ErrMalformedVocabulary, filepath.Base(path), doc.Domain)
		}
		if doc.Version > snapshot.version {
			snapshot.version = doc.Version
		}
		if err := snapshot.addDomainEntries(domain, doc.Entries, filepath.Base(path)); err != nil {
			return nil, err
		}
	}
	return snapshot, nil
}

// ValidateFile parses one vocabulary file and checks it in isolation:
// structure, known domain, and intra-file alias collisions.
func ValidateFile(path string) (Domain, int, error) {
	doc, err := parseFile(path)
	if err != nil {
		return "", 0, err
	}
	domain, ok := ParseDomain(doc.Domain)
	if !ok {
		return "", 0, fmt.Errorf("%w: %s declares unknown domain %q", ErrMalformedVocabulary, filepath.Base(path), doc.Domain)
	}
	probe := &Snapshot{domains: make(map[Domain]*domainIndex)}
	if err := probe.addDomainEntries(domain, doc.Entries, filepath.Base(path)); err != nil {
		return domain, doc.Version, err
	}
	return domain, doc.Version, nil
}

func parseFile(path string) (*fileDoc, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read vocabulary file: %w", err)
	}
	var doc fileDoc
	if err := toml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: parse %s: %v", ErrMalformedVocabulary, filepath.Base(path), err)
	}
	if strings.TrimSpace(doc.Domain) == "" {
		return nil, fmt.Errorf("%w: %s is missing a domain declaration", ErrMalformedVocabulary, filepath.Base(path))
	}
	return &doc, nil
}

func (s *Snapshot) addDomainEntries(domain Domain, entries map[string]entryDoc, fileName string) error {
	idx := s.domains[domain]
	if idx == nil {
		idx = &domainIndex{
			entries: make(map[string]*Entry),
			byAlias: make(map[string]string),
		}
		s.domains[domain] = idx
	}

	keys := make([]string, 0, len(entries))
	for key := range entries {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		doc := entries[key]
		entry := &Entry{
			Key:    key,
			Domain: domain,
			Meta: Metadata{
				System:      doc.System,
				Faction:     doc.Faction,
				Lineage:     doc.Lineage,
				Family:      doc.Family,
				BaseProfile: doc.Base,
				Strong:      doc.Strong,
				Weak:        doc.Weak,
				Stop:        doc.Stop,
				Designer:    doc.Designer,
				Franchise:   doc.Franchise,
				Sublines:    doc.Sublines,
			},
		}

		// The canonical key always resolves to itself.
		aliases := append([]string{key}, doc.Aliases...)
		for _, alias := range aliases {
			normalized := NormalizeAlias(alias)
			if normalized == "" {
				continue
			}
			if existing, ok := idx.byAlias[normalized]; ok {
				if existing == key {
					continue
				}
				return fmt.Errorf("%w: domain %s alias %q maps to both %q and %q (%s)",
					ErrAliasCollision, domain, normalized, existing, key, fileName)
			}
			idx.byAlias[normalized] = key
			entry.Aliases = append(entry.Aliases, normalized)
			if gram := aliasGram(normalized); gram > idx.maxGram {
				idx.maxGram = gram
			}
		}
		if existing, ok := idx.entries[key]; ok {
			// Same key declared across files: merge aliases, keep first metadata.
			existing.Aliases = append(existing.Aliases, entry.Aliases...)
			continue
		}
		idx.entries[key] = entry
	}
	return nil
}
