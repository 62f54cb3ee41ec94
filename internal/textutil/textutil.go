// Package textutil provides small text helpers shared by the CLI output
// layer: canonical-key display titles and conditional formatting.
package textutil

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var titleCaser = cases.Title(language.English)

// DisplayTitle renders a canonical key ("dragons_of_the_north") as a
// human-facing title ("Dragons Of The North").
func DisplayTitle(key string) string {
	key = strings.TrimSpace(key)
	if key == "" {
		return ""
	}
	return titleCaser.String(strings.ReplaceAll(key, "_", " "))
}

// Ternary is a generic conditional helper that returns a if cond is true, b otherwise.
func Ternary[T any](cond bool, a, b T) T {
	if cond {
		return a
	}
	return b
}
