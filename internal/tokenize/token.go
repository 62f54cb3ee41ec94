package tokenize

// Source records where a token came from within the path.
type Source string

const (
	SourceDirectory Source = "directory"
	SourceFilename  Source = "filename"
)

// Token is a normalized string fragment with provenance. Tokens are
// ephemeral: they are recomputed on every run and never persisted.
type Token struct {
	Text string
	// Source distinguishes filename tokens from directory segment tokens.
	Source Source
	// Segment is the index of the path segment the token came from.
	Segment int
	// Position is the token's index in the full token sequence.
	Position int
}

// Structural holds the typed values claimed by structural pattern
// extraction. Zero values mean the pattern did not fire.
type Structural struct {
	// ScaleDen is the denominator of a 1:N scale ratio.
	ScaleDen int
	// HeightMM is an explicit millimeter height.
	HeightMM int
	// Version is a vN revision marker.
	Version int
	// PoseID is the identifier following a pose/alt/variant marker, with
	// leading zeros preserved.
	PoseID string
}

// Result is the output of one tokenization run.
type Result struct {
	Tokens     []Token
	Structural Structural
	// TopSegment is the normalized first directory segment, used by the
	// intended-use pass which only ever looks at the top level.
	TopSegment string
}

// Texts returns just the token strings, in order.
func (r Result) Texts() []string {
	out := make([]string, len(r.Tokens))
	for i, token := range r.Tokens {
		out[i] = token.Text
	}
	return out
}
