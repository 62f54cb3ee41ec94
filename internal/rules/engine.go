package rules

import (
	"log/slog"
	"strings"

	"stlcat/internal/config"
	"stlcat/internal/field"
	"stlcat/internal/logging"
	"stlcat/internal/tokenize"
	"stlcat/internal/vocab"
)

// Engine runs the ordered classification passes against one vocabulary
// snapshot. An Engine is read-only after construction and safe for
// concurrent use.
type Engine struct {
	scale   config.Scale
	scoring config.Scoring
	snap    *vocab.Snapshot
	logger  *slog.Logger
}

// NewEngine builds an engine bound to a configuration and a vocabulary
// snapshot.
func NewEngine(cfg *config.Config, snap *vocab.Snapshot, logger *slog.Logger) *Engine {
	return &Engine{
		scale:   cfg.Scale,
		scoring: cfg.Scoring,
		snap:    snap,
		logger:  logging.NewComponentLogger(logger, "rules"),
	}
}

// Classify derives field values from one tokenization result. Each pass is
// pure given the tokens, the snapshot, and the accumulated result; nothing
// here touches persistent state.
func (e *Engine) Classify(tok tokenize.Result) Result {
	result := Result{
		Fields:       make(map[field.Key]Finding),
		VocabVersion: e.snap.Version(),
	}
	s := newStream(tok.Tokens)

	e.passStructural(tok.Structural, &result)
	e.passDesigner(s, &result)
	e.passSystemFaction(s, &result)
	e.passLineage(s, &result)
	e.passVariantAxes(s, &result)
	strongFired := e.passStrongContent(s, &result)
	e.passIntendedUse(tok.TopSegment, s, &result)
	e.passRoleCue(s, &result)
	e.passWeakContent(s, &result, strongFired)
	e.passResidual(s, &result)

	result.Leftover = s.leftovers()
	result.Confidence = e.score(&result)
	return result
}

// Pass 1: structural extraction. Values arrive typed from the tokenizer;
// this pass only records them and cross-checks scale against height.
func (e *Engine) passStructural(st tokenize.Structural, result *Result) {
	if st.ScaleDen != 0 {
		result.setField(field.KeyScaleRatio, field.Int(int64(st.ScaleDen)), e.scoring.MatchIncrement, "structural.scale")
		if !containsInt(e.scale.AllowedDenominators, st.ScaleDen) || containsInt(e.scale.SuspectDenominators, st.ScaleDen) {
			result.warnField(field.KeyScaleRatio, WarnUncommonScaleRatio)
		}
	}
	if st.HeightMM != 0 {
		result.setField(field.KeyHeightMM, field.Int(int64(st.HeightMM)), e.scoring.MatchIncrement, "structural.height")
	}
	if st.ScaleDen != 0 && st.HeightMM != 0 {
		expected := float64(e.scale.ReferenceHeightMM) / float64(st.ScaleDen)
		drift := float64(st.HeightMM) - expected
		if drift < 0 {
			drift = -drift
		}
		if drift > expected*float64(e.scale.TolerancePct)/100 {
			result.warnField(field.KeyHeightMM, WarnScaleMMRatioConflict)
		}
	}
	if st.Version != 0 {
		result.setField(field.KeyVersion, field.Int(int64(st.Version)), e.scoring.MatchIncrement, "structural.version")
	}
	if st.PoseID != "" {
		result.setField(field.KeyPose, field.String(st.PoseID), e.scoring.MatchIncrement, "structural.pose")
	}
}

// Pass 2: designer alias resolution. Two different designers matching the
// same path is a collision, not a choice.
func (e *Engine) passDesigner(s *stream, result *Result) {
	matches := s.findMatches(e.snap, vocab.DomainDesigner)
	if len(matches) == 0 {
		return
	}
	keys := distinctKeys(matches)
	for _, m := range matches {
		s.consume(m)
	}
	if len(keys) > 1 {
		e.logger.Debug("designer alias collision", logging.Any("designers", keys))
		result.setField(field.KeyDesigner, field.Unknown(), 0, "designer.alias")
		result.warnField(field.KeyDesigner, WarnDesignerAliasCollision)
		return
	}
	result.setField(field.KeyDesigner, field.Enum(keys[0]), e.scoring.MatchIncrement, "designer.alias")
}

// Pass 3: system, then faction. A faction whose entry names its system can
// resolve the system on its own; a faction token with no resolvable system
// is left alone and flagged, so cross-system misclassification cannot
// happen.
func (e *Engine) passSystemFaction(s *stream, result *Result) {
	systemKey := ""
	sysMatches := s.findMatches(e.snap, vocab.DomainSystem)
	if keys := distinctKeys(sysMatches); len(keys) == 1 {
		systemKey = keys[0]
		for _, m := range sysMatches {
			s.consume(m)
		}
		result.setField(field.KeySystem, field.Enum(systemKey), e.scoring.MatchIncrement, "system.alias")
	} else if len(keys) > 1 {
		for _, m := range sysMatches {
			s.consume(m)
		}
		result.setField(field.KeySystem, field.Unknown(), 0, "system.alias")
	}

	var factionKeys []string
	warned := false
	for _, m := range s.findMatches(e.snap, vocab.DomainFaction) {
		entry, ok := e.snap.Entry(vocab.DomainFaction, m.key)
		if !ok {
			continue
		}
		implied := entry.Meta.System
		if systemKey == "" && implied != "" {
			systemKey = implied
			result.setField(field.KeySystem, field.Enum(systemKey), e.scoring.MatchIncrement, "faction.implies_system")
		}
		if systemKey == "" {
			if !warned {
				result.warnRecord(WarnFactionWithoutSystem)
				warned = true
			}
			continue
		}
		if implied != "" && implied != systemKey {
			// Faction belongs to a different system; not ours.
			continue
		}
		s.consume(m)
		if !containsString(factionKeys, m.key) {
			factionKeys = append(factionKeys, m.key)
		}
	}
	switch len(factionKeys) {
	case 0:
	case 1:
		result.setField(field.KeyFaction, field.Enum(factionKeys[0]), e.scoring.MatchIncrement, "faction.alias")
	default:
		result.setField(field.KeyFaction, field.Unknown(), 0, "faction.alias")
	}
}

// Pass 4: lineage. A resolved faction that deterministically implies a
// lineage family wins outright and the token scan is skipped. Otherwise
// lineage entries are keyed by primary with the family in metadata; the
// primary is only committed once the system is known, the family always is.
func (e *Engine) passLineage(s *stream, result *Result) {
	if factionFinding, ok := result.Fields[field.KeyFaction]; ok && factionFinding.Value.Kind() == field.KindEnum {
		if entry, found := e.snap.Entry(vocab.DomainFaction, factionFinding.Value.Str()); found && entry.Meta.Lineage != "" {
			result.setField(field.KeyLineageFamily, field.Enum(entry.Meta.Lineage), e.scoring.MatchIncrement, "faction.implies_lineage")
			return
		}
	}

	var primaries, families []string
	for _, m := range s.findMatches(e.snap, vocab.DomainLineage) {
		if m.width == 1 && len(e.snap.ResolveAny(m.phrase)) > 1 {
			// Single token also aliased in another domain; do not guess.
			result.warnRecord(WarnAmbiguousLineageToken)
			continue
		}
		entry, ok := e.snap.Entry(vocab.DomainLineage, m.key)
		if !ok {
			continue
		}
		s.consume(m)
		if !containsString(primaries, m.key) {
			primaries = append(primaries, m.key)
		}
		family := entry.Meta.Family
		if family == "" {
			family = m.key
		}
		if !containsString(families, family) {
			families = append(families, family)
		}
	}

	switch len(families) {
	case 0:
	case 1:
		result.setField(field.KeyLineageFamily, field.Enum(families[0]), e.scoring.MatchIncrement, "lineage.alias")
	default:
		result.setField(field.KeyLineageFamily, field.Unknown(), 0, "lineage.alias")
		result.warnField(field.KeyLineageFamily, WarnAmbiguousLineageToken)
		return
	}

	// The primary lineage stays held back until the system is resolved;
	// the same primary word can mean different things across systems.
	_, systemResolved := result.Fields[field.KeySystem]
	if systemResolved && len(primaries) == 1 && primaries[0] != "" {
		result.setField(field.KeyLineagePrimary, field.Enum(primaries[0]), e.scoring.MatchIncrement, "lineage.primary")
	}
}

// Pass 5: variant axes. Conflicting cues within one axis force explicit
// Unknown plus the axis's conflict warning.
func (e *Engine) passVariantAxes(s *stream, result *Result) {
	for _, ax := range variantAxes {
		var values []string
		for i, token := range s.tokens {
			if s.consumed[i] {
				continue
			}
			value, ok := ax.cues[token.Text]
			if !ok {
				continue
			}
			s.consumed[i] = true
			if !containsString(values, value) {
				values = append(values, value)
			}
		}
		switch len(values) {
		case 0:
		case 1:
			result.setField(ax.key, field.Enum(values[0]), e.scoring.MatchIncrement, "axis."+string(ax.key))
		default:
			result.setField(ax.key, field.Unknown(), 0, "axis."+string(ax.key))
			result.warnField(ax.key, ax.conflict)
		}
	}
}

// Pass 6: strong content-flag cues.
func (e *Engine) passStrongContent(s *stream, result *Result) bool {
	fired := false
	for i, token := range s.tokens {
		if s.consumed[i] {
			continue
		}
		if _, ok := strongNSFWCues[token.Text]; ok {
			s.consumed[i] = true
			fired = true
		}
	}
	if fired {
		result.setField(field.KeyContentFlag, field.Enum("nsfw"), e.scoring.MatchIncrement, "content.strong")
	}
	return fired
}

// Pass 7: intended-use bucket, derived from the top-level path segment only.
func (e *Engine) passIntendedUse(topSegment string, s *stream, result *Result) {
	if topSegment == "" {
		return
	}
	var buckets []string
	for _, word := range strings.Fields(topSegment) {
		bucket, ok := intendedUseBuckets[word]
		if !ok {
			continue
		}
		s.consumeText(word)
		if !containsString(buckets, bucket) {
			buckets = append(buckets, bucket)
		}
	}
	switch len(buckets) {
	case 0:
	case 1:
		result.setField(field.KeyIntendedUse, field.Enum(buckets[0]), e.scoring.MatchIncrement, "use.top_segment")
	default:
		result.setField(field.KeyIntendedUse, field.Unknown(), 0, "use.top_segment")
		result.warnField(field.KeyIntendedUse, WarnIntendedUseConflict)
	}
}

// Pass 8: role cue. Positive and negative cues together leave the flag
// false with a conflict warning; monster terms always negate.
func (e *Engine) passRoleCue(s *stream, result *Result) {
	var positive, negative, monster bool
	for i, token := range s.tokens {
		if s.consumed[i] {
			continue
		}
		switch {
		case hasCue(pcPositiveCues, token.Text):
			positive = true
		case hasCue(pcNegativeCues, token.Text):
			negative = true
		case hasCue(pcMonsterCues, token.Text):
			monster = true
		default:
			continue
		}
		s.consumed[i] = true
	}
	switch {
	case positive && negative:
		result.setField(field.KeyPCCandidate, field.Bool(false), 0, "role.cue")
		result.warnField(field.KeyPCCandidate, WarnPCCandidateConflict)
	case positive && !monster:
		result.setField(field.KeyPCCandidate, field.Bool(true), e.scoring.MatchIncrement, "role.cue")
	case negative || monster:
		result.setField(field.KeyPCCandidate, field.Bool(false), e.scoring.MatchIncrement, "role.cue")
	}
}

// Pass 9: weak content cues. Weak tokens are always consumed, but they
// only set the field when no strong cue already fired, and then with a
// warning attached.
func (e *Engine) passWeakContent(s *stream, result *Result, strongFired bool) {
	fired := false
	for i, token := range s.tokens {
		if s.consumed[i] {
			continue
		}
		if _, ok := weakNSFWCues[token.Text]; ok {
			s.consumed[i] = true
			fired = true
		}
	}
	if fired && !strongFired {
		result.setField(field.KeyContentFlag, field.Enum("nsfw"), e.scoring.MatchIncrement, "content.weak")
		result.warnField(field.KeyContentFlag, WarnNSFWWeakConfidence)
	}
}

// Pass 10: residual collection. A leftover token is residual only when no
// domain knows it at all; unit and franchise aliases stay available for the
// context matchers instead.
func (e *Engine) passResidual(s *stream, result *Result) {
	for i, token := range s.tokens {
		if s.consumed[i] {
			continue
		}
		if len(e.snap.ResolveAny(token.Text)) == 0 {
			result.Residual = append(result.Residual, token.Text)
		}
	}
}

// score accumulates the per-record confidence: baseline, plus an increment
// for each unambiguous finding, minus a penalty per warning. The score can
// only drop below the baseline when warnings explain why.
func (e *Engine) score(result *Result) float64 {
	score := e.scoring.Baseline
	for _, finding := range result.Fields {
		if finding.Value.Kind() != field.KindUnknown {
			score += finding.Delta
		}
	}
	warnings := len(result.AllWarnings())
	score -= float64(warnings) * e.scoring.WarningPenalty
	if score < 0 && warnings == 0 {
		score = 0
	}
	return score
}

func distinctKeys(matches []match) []string {
	var keys []string
	for _, m := range matches {
		if !containsString(keys, m.key) {
			keys = append(keys, m.key)
		}
	}
	return keys
}

func containsString(values []string, target string) bool {
	for _, v := range values {
		if v == target {
			return true
		}
	}
	return false
}

func containsInt(values []int, target int) bool {
	for _, v := range values {
		if v == target {
			return true
		}
	}
	return false
}

func hasCue(cues map[string]struct{}, token string) bool {
	_, ok := cues[token]
	return ok
}
