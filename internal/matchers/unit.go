package matchers

import (
	"log/slog"

	"stlcat/internal/config"
	"stlcat/internal/field"
	"stlcat/internal/logging"
	"stlcat/internal/tokenize"
	"stlcat/internal/vocab"
)

// UnitMatcher scores system/faction-scoped unit candidates by weighted
// token overlap. It never guesses: a candidate must clear the minimum
// score and beat the runner-up by the configured delta, and an explicit
// stop token suppresses the match outright.
type UnitMatcher struct {
	cfg    config.Matcher
	snap   *vocab.Snapshot
	logger *slog.Logger
}

func NewUnitMatcher(cfg config.Matcher, snap *vocab.Snapshot, logger *slog.Logger) *UnitMatcher {
	return &UnitMatcher{
		cfg:    cfg,
		snap:   snap,
		logger: logging.NewComponentLogger(logger, "matcher.unit"),
	}
}

// Propose evaluates every record and returns proposals in input order.
// Kit children with no viable candidate of their own inherit their
// parent's proposal when roll-up is enabled.
func (m *UnitMatcher) Propose(records []Record) []Proposal {
	byRecord := make(map[string]Proposal, len(records))
	var proposals []Proposal
	for _, record := range records {
		proposal, ok := m.proposeOne(record)
		if !ok {
			continue
		}
		byRecord[record.ID] = proposal
		proposals = append(proposals, proposal)
	}

	if !m.cfg.KitRollup {
		return proposals
	}
	for _, record := range records {
		if _, matched := byRecord[record.ID]; matched {
			continue
		}
		if record.KitParent == "" {
			continue
		}
		parent, ok := byRecord[record.KitParent]
		if !ok {
			continue
		}
		inherited := Proposal{
			RecordID: record.ID,
			Field:    field.KeyUnit,
			Key:      parent.Key,
			Score:    parent.Score,
			State:    StateProposed,
			Rules:    []string{"unit.kit_rollup"},
		}
		byRecord[record.ID] = inherited
		proposals = append(proposals, inherited)
	}
	return proposals
}

func (m *UnitMatcher) proposeOne(record Record) (Proposal, bool) {
	system, ok := enumField(record.Fields, field.KeySystem)
	if !ok {
		return Proposal{}, false
	}
	faction, ok := enumField(record.Fields, field.KeyFaction)
	if !ok {
		return Proposal{}, false
	}

	tokens := tokenSet(record.Tokens)
	var best, runnerUp float64
	var bestKey string
	for _, entry := range m.snap.UnitsFor(system, faction) {
		score, suppressed := m.scoreUnit(entry, record.Tokens, tokens)
		if suppressed {
			continue
		}
		if score > best {
			runnerUp = best
			best = score
			bestKey = entry.Key
		} else if score > runnerUp {
			runnerUp = score
		}
	}

	if bestKey == "" || best < m.cfg.MinScore || best-runnerUp < m.cfg.MinDelta {
		return Proposal{}, false
	}
	m.logger.Debug("unit proposed",
		logging.String(logging.FieldRecordID, record.ID),
		logging.String("unit", bestKey),
		logging.Float64("score", best))
	return Proposal{
		RecordID: record.ID,
		Field:    field.KeyUnit,
		Key:      bestKey,
		Score:    best,
		State:    StateProposed,
		Rules:    []string{"unit.overlap"},
	}, true
}

// scoreUnit accumulates strong and weak signal weights; alias phrases
// count as strong. A stop token present anywhere suppresses the candidate
// regardless of score.
func (m *UnitMatcher) scoreUnit(entry *vocab.Entry, ordered []tokenize.Token, tokens map[string]struct{}) (float64, bool) {
	for _, stop := range entry.Meta.Stop {
		if _, ok := tokens[vocab.NormalizeAlias(stop)]; ok {
			return 0, true
		}
	}
	score := 0.0
	for _, alias := range entry.Aliases {
		if hasPhrase(ordered, alias) {
			score += m.cfg.StrongWeight
			break
		}
	}
	for _, strong := range entry.Meta.Strong {
		if hasPhrase(ordered, vocab.NormalizeAlias(strong)) {
			score += m.cfg.StrongWeight
		}
	}
	for _, weak := range entry.Meta.Weak {
		if hasPhrase(ordered, vocab.NormalizeAlias(weak)) {
			score += m.cfg.WeakWeight
		}
	}
	return score, false
}
