package expression

import (
	ahocorasick "github.com/cloudflare/ahocorasick"
)

// Index prefilters a set of expressions with an Aho-Corasick automaton over
// one required literal per expression, so full matching only runs on
// expressions whose literal occurs in the text.
type Index struct {
	exprs     []*CompiledExpression
	matcher   *ahocorasick.Matcher
	literals  []string
	litToExpr map[string][]int
}

// NewIndex builds an index over exprs. nil entries are skipped.
func NewIndex(exprs []*CompiledExpression) *Index {
	idx := &Index{litToExpr: make(map[string][]int)}

	for _, e := range exprs {
		if e == nil || len(e.Include) == 0 {
			continue
		}
		pos := len(idx.exprs)
		idx.exprs = append(idx.exprs, e)

		lit := requiredLiteral(e)
		if _, seen := idx.litToExpr[lit]; !seen {
			idx.literals = append(idx.literals, lit)
		}
		idx.litToExpr[lit] = append(idx.litToExpr[lit], pos)
	}

	if len(idx.literals) > 0 {
		idx.matcher = ahocorasick.NewStringMatcher(idx.literals)
	}
	return idx
}

// requiredLiteral picks the longest literal segment across include tokens.
func requiredLiteral(e *CompiledExpression) string {
	var best string
	for _, tok := range e.Include {
		if seg := tok.longestSegment(); len(seg) > len(best) {
			best = seg
		}
	}
	return best
}

// Len returns the number of indexed expressions.
func (idx *Index) Len() int {
	if idx == nil {
		return 0
	}
	return len(idx.exprs)
}

// Expressions returns the indexed expressions in insertion order.
func (idx *Index) Expressions() []*CompiledExpression {
	if idx == nil {
		return nil
	}
	return idx.exprs
}

// FirstMatch returns the first expression, in insertion order, that matches
// normalized text, or nil.
func (idx *Index) FirstMatch(text string) *CompiledExpression {
	if idx == nil || idx.matcher == nil {
		return nil
	}

	hits := idx.matcher.Match([]byte(text))
	if len(hits) == 0 {
		return nil
	}

	candidates := make(map[int]struct{}, len(hits))
	for _, hit := range hits {
		if hit >= len(idx.literals) {
			continue
		}
		for _, pos := range idx.litToExpr[idx.literals[hit]] {
			candidates[pos] = struct{}{}
		}
	}

	for pos, e := range idx.exprs {
		if _, ok := candidates[pos]; !ok {
			continue
		}
		if e.MatchNormalized(text) {
			return e
		}
	}
	return nil
}

// Match reports whether any indexed expression matches normalized text.
func (idx *Index) Match(text string) bool {
	return idx.FirstMatch(text) != nil
}
