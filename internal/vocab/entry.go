package vocab

import "strings"

// Domain identifies one alias table.
type Domain string

const (
	DomainDesigner   Domain = "designer"
	DomainSystem     Domain = "system"
	DomainFaction    Domain = "faction"
	DomainLineage    Domain = "lineage"
	DomainUnit       Domain = "unit"
	DomainFranchise  Domain = "franchise"
	DomainCharacter  Domain = "character"
	DomainCollection Domain = "collection"
)

var allDomains = []Domain{
	DomainDesigner,
	DomainSystem,
	DomainFaction,
	DomainLineage,
	DomainUnit,
	DomainFranchise,
	DomainCharacter,
	DomainCollection,
}

var domainSet = func() map[Domain]struct{} {
	set := make(map[Domain]struct{}, len(allDomains))
	for _, domain := range allDomains {
		set[domain] = struct{}{}
	}
	return set
}()

// AllDomains returns the ordered list of known domains.
func AllDomains() []Domain {
	cp := make([]Domain, len(allDomains))
	copy(cp, allDomains)
	return cp
}

// ParseDomain converts a string into a known Domain.
func ParseDomain(value string) (Domain, bool) {
	normalized := Domain(strings.ToLower(strings.TrimSpace(value)))
	if normalized == "" {
		return "", false
	}
	_, ok := domainSet[normalized]
	return normalized, ok
}

// Metadata carries optional per-entry attributes consumed by specific passes
// and matchers. Which fields are meaningful depends on the entry's domain.
type Metadata struct {
	// System scopes a faction or unit to one game system.
	System string
	// Faction scopes a unit to one faction.
	Faction string
	// Lineage is the lineage family a faction deterministically implies.
	Lineage string
	// Family is the lineage family a lineage entry belongs to; the entry
	// key itself is the primary lineage.
	Family string
	// BaseProfile is the tabletop base a unit ships on.
	BaseProfile string
	// Strong and Weak are the signal token sets used by unit scoring.
	Strong []string
	Weak   []string
	// Stop lists conflict tokens that suppress a unit match outright.
	Stop []string
	// Designer scopes a collection to the studio that released it.
	Designer string
	// Franchise links a character entry to its franchise key.
	Franchise string
	// Sublines lists release sub-line names consolidated into this
	// collection id.
	Sublines []string
}

// Entry is one canonical key with its ordered alias phrases.
// Entries are immutable once the snapshot is built.
type Entry struct {
	Key     string
	Domain  Domain
	Aliases []string
	Meta    Metadata
}

// NormalizeAlias canonicalizes an alias phrase: lowercase, separator
// characters collapsed to single spaces. Both vocabulary aliases and lookup
// phrases go through this so comparisons are exact.
func NormalizeAlias(phrase string) string {
	var b strings.Builder
	b.Grow(len(phrase))
	lastSpace := true
	for _, r := range strings.ToLower(strings.TrimSpace(phrase)) {
		switch {
		case r >= 'a' && r <= 'z' || r >= '0' && r <= '9':
			b.WriteRune(r)
			lastSpace = false
		default:
			if !lastSpace {
				b.WriteByte(' ')
				lastSpace = true
			}
		}
	}
	return strings.TrimRight(b.String(), " ")
}

// aliasGram returns the word count of a normalized alias phrase.
func aliasGram(normalized string) int {
	if normalized == "" {
		return 0
	}
	return strings.Count(normalized, " ") + 1
}
