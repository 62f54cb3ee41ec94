package rules

import (
	"strings"

	"stlcat/internal/tokenize"
	"stlcat/internal/vocab"
)

// stream tracks which tokens the passes have consumed. Consumed tokens are
// invisible to later passes and never reach residual collection.
type stream struct {
	tokens   []tokenize.Token
	consumed []bool
}

func newStream(tokens []tokenize.Token) *stream {
	return &stream{
		tokens:   tokens,
		consumed: make([]bool, len(tokens)),
	}
}

// match is one vocabulary hit over a contiguous unconsumed token window.
type match struct {
	key    string
	phrase string
	start  int
	width  int
}

// findMatches locates every alias hit for a domain without consuming
// tokens, longest n-gram first so a multi-word alias always beats the
// shorter matches it subsumes. Windows never span consumed tokens or
// segment boundaries.
func (s *stream) findMatches(snap *vocab.Snapshot, domain vocab.Domain) []match {
	maxGram := snap.MaxGram(domain)
	if maxGram == 0 {
		return nil
	}
	taken := make([]bool, len(s.tokens))
	var found []match
	for width := maxGram; width >= 1; width-- {
		for start := 0; start+width <= len(s.tokens); start++ {
			phrase, ok := s.window(taken, start, width)
			if !ok {
				continue
			}
			key, ok := snap.Resolve(domain, phrase)
			if !ok {
				continue
			}
			for i := start; i < start+width; i++ {
				taken[i] = true
			}
			found = append(found, match{key: key, phrase: phrase, start: start, width: width})
		}
	}
	// Longest-first discovery scrambles positional order; restore it so
	// pass output is stable in stream order.
	for i := 1; i < len(found); i++ {
		for j := i; j > 0 && found[j-1].start > found[j].start; j-- {
			found[j-1], found[j] = found[j], found[j-1]
		}
	}
	return found
}

// window joins an unconsumed, unclaimed, single-segment token run into a
// lookup phrase.
func (s *stream) window(taken []bool, start, width int) (string, bool) {
	segment := s.tokens[start].Segment
	parts := make([]string, 0, width)
	for i := start; i < start+width; i++ {
		if s.consumed[i] || taken[i] {
			return "", false
		}
		if s.tokens[i].Segment != segment {
			return "", false
		}
		parts = append(parts, s.tokens[i].Text)
	}
	return strings.Join(parts, " "), true
}

func (s *stream) consume(m match) {
	for i := m.start; i < m.start+m.width; i++ {
		s.consumed[i] = true
	}
}

// consumeText consumes every unconsumed token with the given text.
func (s *stream) consumeText(text string) {
	for i, token := range s.tokens {
		if !s.consumed[i] && token.Text == text {
			s.consumed[i] = true
		}
	}
}

// leftovers returns the unconsumed tokens in stream order.
func (s *stream) leftovers() []tokenize.Token {
	var out []tokenize.Token
	for i, token := range s.tokens {
		if !s.consumed[i] {
			out = append(out, token)
		}
	}
	return out
}
