package tokenize

import (
	"regexp"
	"strconv"
	"strings"
)

// Structural patterns run against each raw lowercased path segment before
// separator splitting, so forms like "1-10" and "pose02" survive intact.
// Word boundaries are spelled out explicitly because \b treats underscores
// as word characters, and underscores are the dominant separator in these
// trees.
var (
	scalePattern   = regexp.MustCompile(`(?:^|[^a-z0-9])1[-_:x](\d{1,3})(?:[^0-9]|$)`)
	heightPattern  = regexp.MustCompile(`(?:^|[^a-z0-9])(\d{2,3})\s?mm(?:[^a-z0-9]|$)`)
	versionPattern = regexp.MustCompile(`(?:^|[^a-z0-9])v(\d{1,2})(?:[^0-9]|$)`)
	posePattern    = regexp.MustCompile(`(?:^|[^a-z0-9])(?:pose|alt|variant)[-_ ]?(\d{1,2})(?:[^0-9]|$)`)
)

// extractStructural pulls typed values out of a raw segment and blanks every
// matched span so it never reaches alias resolution. The first match per
// pattern across the whole path wins; later occurrences are still consumed.
func extractStructural(segment string, acc *Structural) string {
	segment = claim(segment, scalePattern, func(capture string) {
		if acc.ScaleDen == 0 {
			if value, err := strconv.Atoi(capture); err == nil {
				acc.ScaleDen = value
			}
		}
	})
	segment = claim(segment, heightPattern, func(capture string) {
		if acc.HeightMM == 0 {
			if value, err := strconv.Atoi(capture); err == nil {
				acc.HeightMM = value
			}
		}
	})
	segment = claim(segment, versionPattern, func(capture string) {
		if acc.Version == 0 {
			if value, err := strconv.Atoi(capture); err == nil {
				acc.Version = value
			}
		}
	})
	segment = claim(segment, posePattern, func(capture string) {
		if acc.PoseID == "" {
			acc.PoseID = capture
		}
	})
	return segment
}

func claim(segment string, pattern *regexp.Regexp, keep func(capture string)) string {
	matches := pattern.FindAllStringSubmatchIndex(segment, -1)
	if matches == nil {
		return segment
	}
	var b strings.Builder
	b.Grow(len(segment))
	prev := 0
	for _, loc := range matches {
		keep(segment[loc[2]:loc[3]])
		b.WriteString(segment[prev:loc[0]])
		b.WriteByte(' ')
		prev = loc[1]
	}
	b.WriteString(segment[prev:])
	return b.String()
}
