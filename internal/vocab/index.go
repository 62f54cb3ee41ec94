package vocab

import "sort"

// Resolution is one cross-domain lookup hit.
type Resolution struct {
	Domain Domain
	Key    string
}

type domainIndex struct {
	entries map[string]*Entry
	byAlias map[string]string
	maxGram int
}

// Snapshot is an immutable view of every loaded domain at one vocabulary
// version. Safe for concurrent reads.
type Snapshot struct {
	version int
	domains map[Domain]*domainIndex
}

// Version returns the monotonically increasing vocabulary map version.
func (s *Snapshot) Version() int {
	if s == nil {
		return 0
	}
	return s.version
}

// Resolve maps a normalized phrase to a canonical key within one domain.
func (s *Snapshot) Resolve(domain Domain, phrase string) (string, bool) {
	idx := s.domainIdx(domain)
	if idx == nil {
		return "", false
	}
	key, ok := idx.byAlias[NormalizeAlias(phrase)]
	return key, ok
}

// ResolveAny reports every domain whose alias table contains the phrase,
// in stable domain order. Used for cross-domain ambiguity checks.
func (s *Snapshot) ResolveAny(phrase string) []Resolution {
	if s == nil {
		return nil
	}
	normalized := NormalizeAlias(phrase)
	var hits []Resolution
	for _, domain := range allDomains {
		idx := s.domains[domain]
		if idx == nil {
			continue
		}
		if key, ok := idx.byAlias[normalized]; ok {
			hits = append(hits, Resolution{Domain: domain, Key: key})
		}
	}
	return hits
}

// Entry returns the entry for a canonical key within a domain.
func (s *Snapshot) Entry(domain Domain, key string) (*Entry, bool) {
	idx := s.domainIdx(domain)
	if idx == nil {
		return nil, false
	}
	entry, ok := idx.entries[key]
	return entry, ok
}

// Entries returns every entry in a domain sorted by canonical key.
func (s *Snapshot) Entries(domain Domain) []*Entry {
	idx := s.domainIdx(domain)
	if idx == nil {
		return nil
	}
	out := make([]*Entry, 0, len(idx.entries))
	for _, entry := range idx.entries {
		out = append(out, entry)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

// MaxGram returns the longest alias phrase length (in words) in a domain.
// Matchers use it to bound their n-gram window.
func (s *Snapshot) MaxGram(domain Domain) int {
	idx := s.domainIdx(domain)
	if idx == nil {
		return 0
	}
	return idx.maxGram
}

// UnitsFor returns the unit entries scoped to a system and faction, sorted
// by canonical key so matcher iteration is deterministic.
func (s *Snapshot) UnitsFor(system, faction string) []*Entry {
	var out []*Entry
	for _, entry := range s.Entries(DomainUnit) {
		if entry.Meta.System == system && entry.Meta.Faction == faction {
			out = append(out, entry)
		}
	}
	return out
}

// CollectionsFor returns the collection entries scoped to one designer.
func (s *Snapshot) CollectionsFor(designer string) []*Entry {
	var out []*Entry
	for _, entry := range s.Entries(DomainCollection) {
		if entry.Meta.Designer == designer {
			out = append(out, entry)
		}
	}
	return out
}

func (s *Snapshot) domainIdx(domain Domain) *domainIndex {
	if s == nil {
		return nil
	}
	return s.domains[domain]
}
