package document_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/north-cloud/deal-filter/internal/document"
	"github.com/jonesrussell/north-cloud/deal-filter/internal/domain"
	"github.com/jonesrussell/north-cloud/deal-filter/internal/extractor"
)

const pageHTML = `<html><head><title>Deals</title></head><body>
<article class="thread--deal" id="a1"><strong class="thread-title"><a href="/deals/1">Echo Dot bei Amazon</a></strong></article>
<article class="thread--voucher" id="a2"><strong class="thread-title">Voucher</strong></article>
<article class="thread--discussion" id="a3"></article>
</body></html>`

func parsePage(t *testing.T) *document.Page {
	t.Helper()
	page, err := document.Parse(strings.NewReader(pageHTML), extractor.DefaultSelectors())
	require.NoError(t, err)
	return page
}

func TestPage_Elements(t *testing.T) {
	page := parsePage(t)
	elements := page.Elements()
	require.Len(t, elements, 2)

	id, ok := elements[1].Node().Attr("id")
	require.True(t, ok)
	assert.Equal(t, "a2", id)
}

func TestElement_ApplyTogglesClass(t *testing.T) {
	el := parsePage(t).Elements()[0]

	el.Apply(domain.Hidden(domain.ReasonWordFilter, "echo"))
	assert.True(t, el.Hidden())
	reason, _ := el.Node().Attr(document.ReasonAttr)
	assert.Equal(t, "word-filter", reason)

	el.Apply(domain.Shown(domain.ReasonVisible, ""))
	assert.False(t, el.Hidden())
}

func TestElement_SetDisplayTitleRestores(t *testing.T) {
	page := parsePage(t)
	el := page.Elements()[0]
	x := extractor.New(extractor.DefaultSelectors())

	el.SetDisplayTitle("Echo Dot bei")
	link, ok := el.Node().Find(".thread-title a")
	require.True(t, ok)
	assert.Equal(t, "Echo Dot bei", link.Text())
	assert.Equal(t, "Echo Dot bei Amazon", x.Extract(el.Node()).RawTitle, "extraction keeps reading the original")

	el.SetDisplayTitle("Echo Dot bei Amazon")
	assert.Equal(t, "Echo Dot bei Amazon", link.Text())
}

func TestElement_SetDisplayTitleUnchangedIsNoop(t *testing.T) {
	el := parsePage(t).Elements()[0]
	el.SetDisplayTitle("Echo Dot bei Amazon")

	link, _ := el.Node().Find(".thread-title a")
	_, marked := link.Attr(extractor.OriginalTitleAttr)
	assert.False(t, marked)
}

func TestPage_HTMLAddsStyleOnce(t *testing.T) {
	page := parsePage(t)
	page.Elements()[0].Apply(domain.Hidden(domain.ReasonManual, ""))

	first, err := page.HTML()
	require.NoError(t, err)
	second, err := page.HTML()
	require.NoError(t, err)

	assert.Equal(t, 1, strings.Count(second, "display: none !important"))
	assert.Equal(t, first, second)
	assert.Contains(t, first, document.HiddenClass)
}
