package expression

import (
	"strings"

	"github.com/jonesrussell/north-cloud/deal-filter/internal/textnorm"
)

// Match reports whether the token occurs in text. Literal segments must appear
// in order; the leftmost occurrence of each is taken, which is sufficient for
// unanchored wildcard patterns.
func (t Token) Match(text string) bool {
	pos := 0
	for _, seg := range t.segments {
		i := strings.Index(text[pos:], seg)
		if i < 0 {
			return false
		}
		pos += i + len(seg)
	}
	return true
}

// longestSegment is a literal that must be present in any matching text.
func (t Token) longestSegment() string {
	var best string
	for _, seg := range t.segments {
		if len(seg) > len(best) {
			best = seg
		}
	}
	return best
}

// MatchNormalized reports whether every include token and no exclude token
// matches text. text must already be normalized.
func (e *CompiledExpression) MatchNormalized(text string) bool {
	if e == nil || len(e.Include) == 0 {
		return false
	}
	for _, tok := range e.Include {
		if !tok.Match(text) {
			return false
		}
	}
	for _, tok := range e.Exclude {
		if tok.Match(text) {
			return false
		}
	}
	return true
}

// Matches normalizes text and evaluates the expression against it.
func (e *CompiledExpression) Matches(text string) bool {
	return e.MatchNormalized(textnorm.Normalize(text))
}

// AnyMatch reports whether any expression matches normalized text.
func AnyMatch(exprs []*CompiledExpression, text string) bool {
	for _, e := range exprs {
		if e.MatchNormalized(text) {
			return true
		}
	}
	return false
}
