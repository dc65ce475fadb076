package extractor_test

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/north-cloud/deal-filter/internal/extractor"
)

const listingHTML = `<!DOCTYPE html>
<html><body>
<article class="thread thread--deal" id="thread_100">
  <div class="cept-vote-temp"><span class="overflow--wrap-off">1234°</span></div>
  <strong class="thread-title"><a href="/deals/sony-wh-1000xm5-100" title="Sony WH-1000XM5 bei Amazon">Sony WH…</a></strong>
  <span class="thread-price">249,99€</span>
  <a data-t="merchantLink" href="/search/deals?merchant-id=42">Amazon</a>
  <span class="threadMetaAuthor"><a href="/profile/alice">Alice</a></span>
</article>
<article class="thread thread--voucher" data-thread-id="200">
  <div class="cept-vote-temp">-15°</div>
  <strong class="thread-title">  10% Gutschein  </strong>
  <span class="thread-price">GRATIS</span>
  <span class="cept-price">5,00€</span>
  <a data-t="usernameLink" href="/profile/bob">bob</a>
</article>
<article class="thread thread--deal">
  <strong class="thread-title"><a href="/deals/kaffee-300">Kaffee 1kg</a></strong>
  <a href="/visit?merchant-id=7">Lidl</a>
</article>
<article class="thread thread--deal">
  <strong class="thread-title"><a href="/visit/x">No ids here</a></strong>
</article>
<article class="thread thread--discussion" id="ignored"></article>
</body></html>`

func loadItems(t *testing.T) []*extractor.Selection {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(listingHTML))
	require.NoError(t, err)

	var nodes []*extractor.Selection
	doc.Find(extractor.DefaultSelectors().Item).Each(func(_ int, s *goquery.Selection) {
		nodes = append(nodes, extractor.FromSelection(s))
	})
	return nodes
}

func TestExtract_FullItem(t *testing.T) {
	nodes := loadItems(t)
	require.Len(t, nodes, 4)

	item := extractor.New(extractor.DefaultSelectors()).Extract(nodes[0])

	assert.Equal(t, "thread_100", item.ID)
	assert.Equal(t, "Sony WH-1000XM5 bei Amazon", item.RawTitle)
	assert.Equal(t, item.RawTitle, item.DisplayTitle)
	assert.Equal(t, "42", item.SourceID)
	assert.Equal(t, "Amazon", item.SourceName)
	assert.Equal(t, "Alice", item.Author)
	require.NotNil(t, item.Price)
	assert.InDelta(t, 249.99, *item.Price, 1e-9)
	require.NotNil(t, item.Score)
	assert.InDelta(t, 1234, *item.Score, 1e-9)
}

func TestExtract_FallbackCandidates(t *testing.T) {
	nodes := loadItems(t)
	item := extractor.New(extractor.DefaultSelectors()).Extract(nodes[1])

	assert.Equal(t, "200", item.ID)
	assert.Equal(t, "10% Gutschein", item.RawTitle)
	assert.Equal(t, "bob", item.Author)
	assert.Empty(t, item.SourceID)
	require.NotNil(t, item.Price, "GRATIS is skipped in favour of the next candidate")
	assert.InDelta(t, 5.0, *item.Price, 1e-9)
	require.NotNil(t, item.Score)
	assert.InDelta(t, -15, *item.Score, 1e-9)
}

func TestExtract_MissingFields(t *testing.T) {
	nodes := loadItems(t)
	item := extractor.New(extractor.DefaultSelectors()).Extract(nodes[2])

	assert.Equal(t, "/deals/kaffee-300", item.ID)
	assert.Equal(t, "Kaffee 1kg", item.RawTitle)
	assert.Equal(t, "7", item.SourceID)
	assert.Equal(t, "Lidl", item.SourceName)
	assert.Nil(t, item.Price)
	assert.Nil(t, item.Score)
	assert.Empty(t, item.Author)
}

func TestExtract_GeneratedIDIsStableForNode(t *testing.T) {
	nodes := loadItems(t)
	x := extractor.New(extractor.DefaultSelectors())

	first := x.Extract(nodes[3]).ID
	assert.True(t, strings.HasPrefix(first, "deal-"))
	assert.Equal(t, first, x.Extract(nodes[3]).ID)

	assigned, ok := nodes[3].Attr(extractor.AssignedIDAttr)
	require.True(t, ok)
	assert.Equal(t, first, assigned)
}
