package domain

// Reason discloses which rule produced a Decision.
type Reason string

const (
	ReasonManual        Reason = "manual"
	ReasonLowScore      Reason = "low-score"
	ReasonPriceCeiling  Reason = "price-ceiling"
	ReasonBlockedAuthor Reason = "blocked-author"
	ReasonBlockedSource Reason = "blocked-source"
	ReasonWhitelisted   Reason = "whitelisted"
	ReasonWordFilter    Reason = "word-filter"
	ReasonVisible       Reason = "visible"
)

// Decision is the outcome of evaluating one item. Rule names the matching
// expression for word and whitelist decisions.
type Decision struct {
	Hide   bool   `json:"hide"`
	Reason Reason `json:"reason"`
	Rule   string `json:"rule,omitempty"`
}

// Hidden returns a hide decision.
func Hidden(reason Reason, rule string) Decision {
	return Decision{Hide: true, Reason: reason, Rule: rule}
}

// Shown returns a show decision.
func Shown(reason Reason, rule string) Decision {
	return Decision{Hide: false, Reason: reason, Rule: rule}
}
