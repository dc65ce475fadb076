package engine

import (
	"regexp"
	"strings"
)

var multiSpace = regexp.MustCompile(` {2,}`)

// StripSourceName removes every whole-word, case-insensitive occurrence of
// name from title, collapses repeated spaces and trims. If nothing is left,
// or name is empty, title is returned unchanged.
func StripSourceName(title, name string) string {
	name = strings.TrimSpace(name)
	if title == "" || name == "" {
		return title
	}
	re, err := regexp.Compile(`(?i)\b` + regexp.QuoteMeta(name) + `\b`)
	if err != nil {
		return title
	}
	out := strings.TrimSpace(multiSpace.ReplaceAllString(re.ReplaceAllString(title, ""), " "))
	if out == "" {
		return title
	}
	return out
}
