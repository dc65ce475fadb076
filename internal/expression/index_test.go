package expression_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/north-cloud/deal-filter/internal/expression"
)

func TestIndex_FirstMatchAgreesWithLinearScan(t *testing.T) {
	exprs, _ := expression.ParseAll([]string{
		"sony -ps5",
		"cable + usb",
		"iphone*pro",
		"kaffee",
		"tv -refurb*",
	})
	idx := expression.NewIndex(exprs)
	require.Equal(t, len(exprs), idx.Len())

	texts := []string{
		"sony headset",
		"sony ps5 bundle",
		"usb-c cable 2m",
		"hdmi cable",
		"apple iphone 15 pro",
		"kaffeevollautomat",
		"oled tv refurbished",
		"oled tv",
		"nothing relevant",
	}
	for _, text := range texts {
		assert.Equal(t, expression.AnyMatch(exprs, text), idx.Match(text), text)
	}
}

func TestIndex_FirstMatchOrder(t *testing.T) {
	exprs, _ := expression.ParseAll([]string{"oled", "tv"})
	idx := expression.NewIndex(exprs)

	got := idx.FirstMatch("oled tv")
	require.NotNil(t, got)
	assert.Equal(t, "oled", got.Raw)
}

func TestIndex_SharedLiteral(t *testing.T) {
	exprs, _ := expression.ParseAll([]string{"tv -oled", "tv + lg"})
	idx := expression.NewIndex(exprs)

	got := idx.FirstMatch("lg oled tv")
	require.NotNil(t, got)
	assert.Equal(t, "tv + lg", got.Raw)
}

func TestIndex_Empty(t *testing.T) {
	idx := expression.NewIndex(nil)
	assert.Equal(t, 0, idx.Len())
	assert.False(t, idx.Match("anything"))

	var nilIdx *expression.Index
	assert.Nil(t, nilIdx.FirstMatch("x"))
}
