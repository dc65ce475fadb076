// Package domain holds the value types shared by the filter pipeline.
package domain

// Item is one listing entry read from a page. A fresh Item is built on every
// extraction pass; nil Price or Score means the value was absent.
type Item struct {
	ID           string   `json:"id"`
	RawTitle     string   `json:"rawTitle"`
	DisplayTitle string   `json:"displayTitle"`
	SourceID     string   `json:"sourceId,omitempty"`
	SourceName   string   `json:"sourceName,omitempty"`
	Price        *float64 `json:"price"`
	Score        *float64 `json:"score"`
	Author       string   `json:"author,omitempty"`
}

// Title returns the display title, falling back to the raw title.
func (i Item) Title() string {
	if i.DisplayTitle != "" {
		return i.DisplayTitle
	}
	return i.RawTitle
}

// Float returns a pointer to v.
func Float(v float64) *float64 {
	return &v
}
