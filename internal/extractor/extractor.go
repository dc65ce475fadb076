// Package extractor reads listing items out of a document. Missing
// sub-elements leave the corresponding field empty or nil; extraction never
// fails.
package extractor

import (
	"regexp"
	"strings"

	"github.com/google/uuid"

	"github.com/jonesrussell/north-cloud/deal-filter/internal/domain"
)

// Attributes written back onto the document.
const (
	// AssignedIDAttr holds a generated id on elements that carry none.
	AssignedIDAttr = "data-deal-filter-id"
	// OriginalTitleAttr keeps the title text from before any rewrite.
	OriginalTitleAttr = "data-deal-filter-original-title"
)

var sourceIDPattern = regexp.MustCompile(`merchant-id=(\d+)`)

// Extractor builds Items from document nodes.
type Extractor struct {
	sel   Selectors
	newID func() string
}

// New returns an extractor using sel.
func New(sel Selectors) *Extractor {
	return &Extractor{
		sel:   sel,
		newID: func() string { return "deal-" + uuid.NewString() },
	}
}

// Selectors returns the selectors in use.
func (x *Extractor) Selectors() Selectors {
	return x.sel
}

// Extract reads one item element.
func (x *Extractor) Extract(n Node) domain.Item {
	title := x.title(n)
	sourceID, sourceName := x.source(n)

	return domain.Item{
		ID:           x.id(n),
		RawTitle:     title,
		DisplayTitle: title,
		SourceID:     sourceID,
		SourceName:   sourceName,
		Price:        x.firstNumber(n, x.sel.Price),
		Score:        x.firstNumber(n, x.sel.Score),
		Author:       x.text(n, x.sel.Author),
	}
}

// id resolves the item identity: id attribute, data-thread-id, deal link,
// then a generated id kept on the node for the rest of its lifetime.
func (x *Extractor) id(n Node) string {
	if id := nonEmptyAttr(n, "id"); id != "" {
		return id
	}
	if id := nonEmptyAttr(n, "data-thread-id"); id != "" {
		return id
	}
	if link, ok := n.Find(x.sel.DealLink); ok {
		if href := nonEmptyAttr(link, "href"); href != "" {
			return href
		}
	}
	if id := nonEmptyAttr(n, AssignedIDAttr); id != "" {
		return id
	}

	id := x.newID()
	if setter, ok := n.(AttrSetter); ok {
		setter.SetAttr(AssignedIDAttr, id)
	}
	return id
}

func (x *Extractor) title(n Node) string {
	if link, ok := n.Find(x.sel.TitleLink); ok {
		if t := nonEmptyAttr(link, OriginalTitleAttr); t != "" {
			return t
		}
		if t := nonEmptyAttr(link, "title"); t != "" {
			return t
		}
		if t := strings.TrimSpace(link.Text()); t != "" {
			return t
		}
	}
	return x.text(n, x.sel.Title)
}

func (x *Extractor) source(n Node) (id, name string) {
	link, ok := n.Find(x.sel.SourceLink)
	if !ok {
		return "", ""
	}
	name = strings.TrimSpace(link.Text())
	if href, ok := link.Attr("href"); ok {
		if m := sourceIDPattern.FindStringSubmatch(href); m != nil {
			id = m[1]
		}
	}
	return id, name
}

func (x *Extractor) firstNumber(n Node, candidates []string) *float64 {
	for _, selector := range candidates {
		found, ok := n.Find(selector)
		if !ok {
			continue
		}
		if v := ParseNumber(found.Text()); v != nil {
			return v
		}
	}
	return nil
}

func (x *Extractor) text(n Node, selector string) string {
	found, ok := n.Find(selector)
	if !ok {
		return ""
	}
	return strings.TrimSpace(found.Text())
}
