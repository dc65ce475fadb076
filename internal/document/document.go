// Package document is the presentation side of the filter: it loads a listing
// page, exposes its item elements and writes decisions back as CSS classes and
// data attributes.
package document

import (
	"bytes"
	"fmt"
	"io"

	"github.com/PuerkitoBio/goquery"

	"github.com/jonesrussell/north-cloud/deal-filter/internal/domain"
	"github.com/jonesrussell/north-cloud/deal-filter/internal/extractor"
)

const (
	// HiddenClass marks items hidden by the filter.
	HiddenClass = "mdm-hidden"
	// ReasonAttr discloses why an item is shown or hidden.
	ReasonAttr = "data-deal-filter-reason"
	hiddenStyle = "." + HiddenClass + " { display: none !important; }"
	styleMarker = "data-deal-filter-style"
)

// Page is one parsed listing document.
type Page struct {
	doc *goquery.Document
	sel extractor.Selectors
}

// Parse reads an HTML document.
func Parse(r io.Reader, sel extractor.Selectors) (*Page, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	return &Page{doc: doc, sel: sel}, nil
}

// ParseBytes reads an HTML document from memory.
func ParseBytes(body []byte, sel extractor.Selectors) (*Page, error) {
	return Parse(bytes.NewReader(body), sel)
}

// Elements returns every item element currently in the page.
func (p *Page) Elements() []*Element {
	var out []*Element
	p.doc.Find(p.sel.Item).Each(func(_ int, s *goquery.Selection) {
		out = append(out, &Element{node: extractor.FromSelection(s), sel: p.sel})
	})
	return out
}

// HTML renders the page, adding the stylesheet rule that hides marked items.
func (p *Page) HTML() (string, error) {
	head := p.doc.Find("head").First()
	if head.Length() > 0 && head.Find("style["+styleMarker+"]").Length() == 0 {
		head.AppendHtml("<style " + styleMarker + ">" + hiddenStyle + "</style>")
	}
	html, err := goquery.OuterHtml(p.doc.Selection)
	if err != nil {
		return "", fmt.Errorf("render html: %w", err)
	}
	return html, nil
}

// Element is one item element of a page.
type Element struct {
	node *extractor.Selection
	sel  extractor.Selectors
}

// Node returns the element as an extractor node.
func (e *Element) Node() extractor.Node {
	return e.node
}

// Hidden reports whether the element carries the hidden class.
func (e *Element) Hidden() bool {
	return e.node.Goquery().HasClass(HiddenClass)
}

// Apply writes a decision onto the element.
func (e *Element) Apply(d domain.Decision) {
	s := e.node.Goquery()
	if d.Hide {
		s.AddClass(HiddenClass)
	} else {
		s.RemoveClass(HiddenClass)
	}
	s.SetAttr(ReasonAttr, string(d.Reason))
}

// SetDisplayTitle writes title into the title link, remembering the original
// text the first time. Passing the original title restores it.
func (e *Element) SetDisplayTitle(title string) {
	link := e.node.Goquery().Find(e.sel.TitleLink).First()
	if link.Length() == 0 {
		return
	}
	if _, ok := link.Attr(extractor.OriginalTitleAttr); !ok {
		original := link.AttrOr("title", "")
		if original == "" {
			original = link.Text()
		}
		if original == title {
			return
		}
		link.SetAttr(extractor.OriginalTitleAttr, original)
	}
	link.SetText(title)
}
