package matchers

import (
	"errors"
	"fmt"
	"log/slog"

	"stlcat/internal/config"
	"stlcat/internal/field"
	"stlcat/internal/logging"
	"stlcat/internal/tokenize"
	"stlcat/internal/vocab"
)

// ErrVocabularyDrift indicates a proposal no longer validates against the
// current vocabulary snapshot; the entry changed between propose and commit.
var ErrVocabularyDrift = errors.New("vocabulary drift")

// CharacterMatcher resolves franchise and character fields. It is
// two-phase: proposals are produced in a dry run, then independently
// revalidated against the snapshot active at commit time, so a vocabulary
// edit between the two phases rejects the stale proposal instead of
// applying it.
type CharacterMatcher struct {
	cfg    config.Matcher
	snap   *vocab.Snapshot
	logger *slog.Logger
}

func NewCharacterMatcher(cfg config.Matcher, snap *vocab.Snapshot, logger *slog.Logger) *CharacterMatcher {
	return &CharacterMatcher{
		cfg:    cfg,
		snap:   snap,
		logger: logging.NewComponentLogger(logger, "matcher.character"),
	}
}

// Propose finds character alias phrases in the leftover tokens. A matched
// character also proposes its franchise; a bare franchise alias proposes
// the franchise alone.
func (m *CharacterMatcher) Propose(records []Record) []Proposal {
	var proposals []Proposal
	for _, record := range records {
		if key, ok := m.findAlias(vocab.DomainCharacter, record.Tokens); ok {
			proposals = append(proposals, Proposal{
				RecordID: record.ID,
				Field:    field.KeyCharacter,
				Key:      key,
				Score:    m.cfg.StrongWeight,
				State:    StateProposed,
				Rules:    []string{"character.alias"},
			})
			if entry, found := m.snap.Entry(vocab.DomainCharacter, key); found && entry.Meta.Franchise != "" {
				proposals = append(proposals, Proposal{
					RecordID: record.ID,
					Field:    field.KeyFranchise,
					Key:      entry.Meta.Franchise,
					Score:    m.cfg.StrongWeight,
					State:    StateProposed,
					Rules:    []string{"character.implies_franchise"},
				})
			}
			continue
		}
		if key, ok := m.findAlias(vocab.DomainFranchise, record.Tokens); ok {
			proposals = append(proposals, Proposal{
				RecordID: record.ID,
				Field:    field.KeyFranchise,
				Key:      key,
				Score:    m.cfg.StrongWeight,
				State:    StateProposed,
				Rules:    []string{"franchise.alias"},
			})
		}
	}
	return proposals
}

// Revalidate re-resolves one proposal against a snapshot. Commit callers
// pass the snapshot loaded at commit time, not the one the proposal was
// computed with.
func (m *CharacterMatcher) Revalidate(proposal Proposal, snap *vocab.Snapshot) error {
	switch proposal.Field {
	case field.KeyCharacter:
		if _, ok := snap.Entry(vocab.DomainCharacter, proposal.Key); !ok {
			return fmt.Errorf("%w: character %q is gone", ErrVocabularyDrift, proposal.Key)
		}
	case field.KeyFranchise:
		if _, ok := snap.Entry(vocab.DomainFranchise, proposal.Key); !ok {
			return fmt.Errorf("%w: franchise %q is gone", ErrVocabularyDrift, proposal.Key)
		}
	default:
		return fmt.Errorf("%w: unexpected field %s", ErrVocabularyDrift, proposal.Field)
	}
	return nil
}

// findAlias returns the canonical key of the longest alias phrase found in
// the token run for one domain. Only adjacent runs are considered: a
// consumed token between two leftovers breaks the phrase.
func (m *CharacterMatcher) findAlias(domain vocab.Domain, tokens []tokenize.Token) (string, bool) {
	maxGram := m.snap.MaxGram(domain)
	for width := maxGram; width >= 1; width-- {
		for start := 0; start+width <= len(tokens); start++ {
			phrase, adjacent := phraseAt(tokens, start, width)
			if !adjacent {
				continue
			}
			if key, ok := m.snap.Resolve(domain, phrase); ok {
				return key, true
			}
		}
	}
	return "", false
}
