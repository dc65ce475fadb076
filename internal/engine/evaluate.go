// Package engine decides whether a listing item is hidden or shown.
package engine

import (
	"github.com/jonesrussell/north-cloud/deal-filter/internal/domain"
	"github.com/jonesrussell/north-cloud/deal-filter/internal/expression"
	"github.com/jonesrussell/north-cloud/deal-filter/internal/textnorm"
)

// Evaluate applies the rules in fixed precedence; the first rule that fires
// decides. Hard blocks (manual, score, price, author, source) are checked
// before the whitelist, and the whitelist overrides word filters.
//
// Evaluate is pure: equal inputs always produce equal decisions.
func Evaluate(item domain.Item, rules domain.RuleSet, excludes, whitelist *expression.Index) domain.Decision {
	if rules.IsManuallyHidden(item.ID) {
		return domain.Hidden(domain.ReasonManual, "")
	}

	if rules.HideColdItems && item.Score != nil && *item.Score < 0 {
		return domain.Hidden(domain.ReasonLowScore, "")
	}

	if rules.MaxPrice > 0 && item.Price != nil && *item.Price > rules.MaxPrice {
		return domain.Hidden(domain.ReasonPriceCeiling, "")
	}

	if rules.BlocksAuthor(textnorm.Normalize(item.Author)) {
		return domain.Hidden(domain.ReasonBlockedAuthor, "")
	}

	if rules.BlocksSource(item.SourceID) {
		return domain.Hidden(domain.ReasonBlockedSource, "")
	}

	title := textnorm.Normalize(item.Title())

	if expr := whitelist.FirstMatch(title); expr != nil {
		return domain.Shown(domain.ReasonWhitelisted, expr.Raw)
	}

	if expr := excludes.FirstMatch(title); expr != nil {
		return domain.Hidden(domain.ReasonWordFilter, expr.Raw)
	}

	return domain.Shown(domain.ReasonVisible, "")
}
