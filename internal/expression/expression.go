// Package expression parses include/exclude word rules such as
// "sony + headset -ps5 -refurb*" and matches them against normalized text.
//
// Include terms are joined with "+", exclude terms follow a space and a
// hyphen, and "*" inside a term stands for any run of characters. Matching is
// an unanchored, case-insensitive substring search.
package expression

import (
	"strings"

	"github.com/jonesrussell/north-cloud/deal-filter/internal/textnorm"
)

const (
	wildcard      = "*"
	excludeMarker = " -"
	includeJoin   = "+"
)

// Token is one sanitized term with its compiled wildcard matcher.
type Token struct {
	Text     string
	segments []string
}

// CompiledExpression is a parsed rule. Include is never empty.
type CompiledExpression struct {
	Raw     string
	Include []Token
	Exclude []Token
}

// Parse compiles raw into an expression. It returns nil when no include term
// survives sanitization; such a rule must be skipped, never treated as a
// match-everything rule.
func Parse(raw string) *CompiledExpression {
	expr := textnorm.Normalize(raw)
	if expr == "" {
		return nil
	}

	// A leading hyphen starts an exclude term, leaving the include clause empty.
	parts := strings.Split(" "+expr, excludeMarker)
	includeClause := strings.TrimSpace(parts[0])

	var include []Token
	for _, term := range strings.Split(includeClause, includeJoin) {
		if tok, ok := compileToken(term); ok {
			include = append(include, tok)
		}
	}
	if len(include) == 0 {
		return nil
	}

	var exclude []Token
	for _, term := range parts[1:] {
		term = strings.TrimPrefix(strings.TrimSpace(term), "-")
		if tok, ok := compileToken(term); ok {
			exclude = append(exclude, tok)
		}
	}

	return &CompiledExpression{Raw: expr, Include: include, Exclude: exclude}
}

// ParseAll compiles every raw rule, dropping the invalid ones. The second
// return value lists the rules that were dropped.
func ParseAll(raws []string) ([]*CompiledExpression, []string) {
	compiled := make([]*CompiledExpression, 0, len(raws))
	var dropped []string
	for _, raw := range raws {
		if expr := Parse(raw); expr != nil {
			compiled = append(compiled, expr)
			continue
		}
		dropped = append(dropped, raw)
	}
	return compiled, dropped
}

func compileToken(term string) (Token, bool) {
	text := textnorm.Normalize(term)
	if text == "" {
		return Token{}, false
	}
	if strings.TrimSpace(strings.ReplaceAll(text, wildcard, "")) == "" {
		return Token{}, false
	}

	segments := make([]string, 0, strings.Count(text, wildcard)+1)
	for _, seg := range strings.Split(text, wildcard) {
		if seg != "" {
			segments = append(segments, seg)
		}
	}
	return Token{Text: text, segments: segments}, true
}

// IncludeTerms returns the sanitized include term texts.
func (e *CompiledExpression) IncludeTerms() []string {
	return tokenTexts(e.Include)
}

// ExcludeTerms returns the sanitized exclude term texts.
func (e *CompiledExpression) ExcludeTerms() []string {
	return tokenTexts(e.Exclude)
}

func tokenTexts(tokens []Token) []string {
	out := make([]string, len(tokens))
	for i, t := range tokens {
		out[i] = t.Text
	}
	return out
}
