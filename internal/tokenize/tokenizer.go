package tokenize

import (
	"path"
	"strings"

	"stlcat/internal/config"
)

// Tokenize splits a relative path into normalized tokens and structural
// extractions. Directory segments come first, filename tokens last; the
// filename's extension is discarded before tokenization.
func Tokenize(relPath string, cfg config.Tokenizer) Result {
	segments := splitSegments(relPath)
	stopwords := stopwordSet(cfg.Stopwords)
	replacer := separatorReplacer(cfg.Separators)

	var result Result
	position := 0
	for segIdx, segment := range segments {
		source := SourceDirectory
		raw := segment
		if segIdx == len(segments)-1 {
			source = SourceFilename
			raw = strings.TrimSuffix(raw, path.Ext(raw))
		}
		lowered := strings.ToLower(raw)
		cleaned := extractStructural(lowered, &result.Structural)
		cleaned = replacer.Replace(cleaned)

		if segIdx == 0 && len(segments) > 1 {
			result.TopSegment = strings.Join(strings.Fields(cleaned), " ")
		}

		for _, text := range strings.Fields(cleaned) {
			if len(text) < cfg.MinTokenLength {
				continue
			}
			if _, stopped := stopwords[text]; stopped {
				continue
			}
			result.Tokens = append(result.Tokens, Token{
				Text:     text,
				Source:   source,
				Segment:  segIdx,
				Position: position,
			})
			position++
		}
	}
	return result
}

func splitSegments(relPath string) []string {
	normalized := strings.ReplaceAll(relPath, "\\", "/")
	parts := strings.Split(normalized, "/")
	segments := make([]string, 0, len(parts))
	for _, part := range parts {
		if strings.TrimSpace(part) == "" {
			continue
		}
		segments = append(segments, part)
	}
	return segments
}

func stopwordSet(stopwords []string) map[string]struct{} {
	set := make(map[string]struct{}, len(stopwords))
	for _, word := range stopwords {
		normalized := strings.ToLower(strings.TrimSpace(word))
		if normalized == "" {
			continue
		}
		set[normalized] = struct{}{}
	}
	return set
}

func separatorReplacer(separators []string) *strings.Replacer {
	pairs := make([]string, 0, len(separators)*2)
	for _, sep := range separators {
		if sep == "" {
			continue
		}
		pairs = append(pairs, sep, " ")
	}
	return strings.NewReplacer(pairs...)
}
