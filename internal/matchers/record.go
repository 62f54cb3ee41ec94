package matchers

import (
	"strings"

	"stlcat/internal/field"
	"stlcat/internal/tokenize"
	"stlcat/internal/vocab"
)

// Record is the matcher view of one Variant: its normalized fields, the
// tokens the base passes left unconsumed, and its kit link.
type Record struct {
	ID     string
	Fields field.Values
	// Tokens are the leftover tokens in stream order, with their original
	// provenance so phrase matching can require true adjacency.
	Tokens []tokenize.Token
	// KitParent is the parent record id when this record is a kit child.
	KitParent string
}

// Proposal is one candidate field assignment produced by a matcher.
type Proposal struct {
	RecordID string
	Field    field.Key
	Key      string
	Score    float64
	State    State
	// Rules names the matcher logic that produced the proposal.
	Rules []string
}

func enumField(fields field.Values, key field.Key) (string, bool) {
	value, ok := fields[key]
	if !ok || value.Kind() != field.KindEnum {
		return "", false
	}
	return value.Str(), true
}

// tokenSet builds a membership set over normalized single tokens.
func tokenSet(tokens []tokenize.Token) map[string]struct{} {
	set := make(map[string]struct{}, len(tokens))
	for _, token := range tokens {
		set[vocab.NormalizeAlias(token.Text)] = struct{}{}
	}
	return set
}

// phraseAt joins a token run into a lookup phrase. The run must sit in one
// path segment at consecutive stream positions; leftovers of consumed
// neighbors never rejoin into phrases they did not form in the name.
func phraseAt(tokens []tokenize.Token, start, width int) (string, bool) {
	first := tokens[start]
	parts := make([]string, 0, width)
	for i := start; i < start+width; i++ {
		token := tokens[i]
		if token.Segment != first.Segment || token.Position != first.Position+(i-start) {
			return "", false
		}
		parts = append(parts, token.Text)
	}
	return strings.Join(parts, " "), true
}

// hasPhrase reports whether a normalized alias phrase appears as an
// adjacent token run.
func hasPhrase(tokens []tokenize.Token, phrase string) bool {
	words := strings.Fields(phrase)
	if len(words) == 0 {
		return false
	}
	for start := 0; start+len(words) <= len(tokens); start++ {
		candidate, ok := phraseAt(tokens, start, len(words))
		if ok && candidate == phrase {
			return true
		}
	}
	return false
}
