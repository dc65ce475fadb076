package extractor

// Selectors lists CSS selectors for every item field. Where a field has a
// candidate list, the first candidate that yields a value wins.
type Selectors struct {
	Item       string
	TitleLink  string
	Title      string
	SourceLink string
	Author     string
	DealLink   string
	Price      []string
	Score      []string
	ActionArea string
}

// DefaultSelectors matches the markup of mydealz-style listing pages.
func DefaultSelectors() Selectors {
	return Selectors{
		Item:       "article.thread--deal, article.thread--voucher",
		TitleLink:  ".thread-title a",
		Title:      ".thread-title",
		SourceLink: `a[data-t="merchantLink"], a[href*="merchant-id="]`,
		Author:     `.threadMetaAuthor a, [data-t="usernameLink"]`,
		DealLink:   `a[href*="/deals/"]`,
		Price: []string{
			".thread-price",
			".threadItemCard-price",
			".cept-price",
			`[class*="price"]`,
		},
		Score: []string{
			".cept-vote-temp .overflow--wrap-off",
			".cept-vote-temp",
			`[class*="temperature"]`,
		},
		ActionArea: ".cept-threadActions, .thread-item__actions, .thread-footer",
	}
}
