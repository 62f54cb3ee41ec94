package matchers

import (
	"log/slog"

	"stlcat/internal/config"
	"stlcat/internal/field"
	"stlcat/internal/logging"
	"stlcat/internal/tokenize"
	"stlcat/internal/vocab"
)

// CollectionMatcher maps release naming patterns to one canonical
// collection id. Collections are designer-scoped: a record with no
// resolved designer is never matched, and sub-line names consolidate into
// the parent collection id instead of minting their own.
type CollectionMatcher struct {
	cfg    config.Matcher
	snap   *vocab.Snapshot
	logger *slog.Logger
}

func NewCollectionMatcher(cfg config.Matcher, snap *vocab.Snapshot, logger *slog.Logger) *CollectionMatcher {
	return &CollectionMatcher{
		cfg:    cfg,
		snap:   snap,
		logger: logging.NewComponentLogger(logger, "matcher.collection"),
	}
}

func (m *CollectionMatcher) Propose(records []Record) []Proposal {
	var proposals []Proposal
	for _, record := range records {
		designer, ok := enumField(record.Fields, field.KeyDesigner)
		if !ok {
			continue
		}
		for _, entry := range m.snap.CollectionsFor(designer) {
			rule, matched := m.matchCollection(entry, record.Tokens)
			if !matched {
				continue
			}
			proposals = append(proposals, Proposal{
				RecordID: record.ID,
				Field:    field.KeyCollection,
				Key:      entry.Key,
				Score:    m.cfg.StrongWeight,
				State:    StateProposed,
				Rules:    []string{rule},
			})
			break
		}
	}
	return proposals
}

func (m *CollectionMatcher) matchCollection(entry *vocab.Entry, tokens []tokenize.Token) (string, bool) {
	for _, alias := range entry.Aliases {
		if hasPhrase(tokens, alias) {
			return "collection.alias", true
		}
	}
	for _, subline := range entry.Meta.Sublines {
		if hasPhrase(tokens, vocab.NormalizeAlias(subline)) {
			return "collection.subline", true
		}
	}
	return "", false
}
