package extractor

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Node is the read-only view of one document element the extractor needs.
type Node interface {
	// Attr returns the attribute value and whether it exists.
	Attr(name string) (string, bool)
	// Text returns the combined text content.
	Text() string
	// Find returns the first descendant matching selector.
	Find(selector string) (Node, bool)
}

// AttrSetter is implemented by nodes that can carry an assigned id.
type AttrSetter interface {
	SetAttr(name, value string)
}

// Selection adapts a goquery selection to Node.
type Selection struct {
	sel *goquery.Selection
}

// FromSelection wraps the first element of sel.
func FromSelection(sel *goquery.Selection) *Selection {
	return &Selection{sel: sel.First()}
}

// Goquery exposes the wrapped selection.
func (s *Selection) Goquery() *goquery.Selection {
	return s.sel
}

func (s *Selection) Attr(name string) (string, bool) {
	return s.sel.Attr(name)
}

func (s *Selection) Text() string {
	return s.sel.Text()
}

func (s *Selection) Find(selector string) (Node, bool) {
	found := s.sel.Find(selector).First()
	if found.Length() == 0 {
		return nil, false
	}
	return &Selection{sel: found}, true
}

func (s *Selection) SetAttr(name, value string) {
	s.sel.SetAttr(name, value)
}

// nonEmptyAttr returns a trimmed attribute value, or "" when absent or blank.
func nonEmptyAttr(n Node, name string) string {
	v, ok := n.Attr(name)
	if !ok {
		return ""
	}
	return strings.TrimSpace(v)
}
