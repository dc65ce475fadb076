package expression_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/north-cloud/deal-filter/internal/expression"
)

func TestMatches(t *testing.T) {
	tests := []struct {
		raw  string
		text string
		want bool
	}{
		{raw: "sony -ps5", text: "Sony Headset", want: true},
		{raw: "sony -ps5", text: "Sony PS5 Bundle", want: false},
		{raw: "cable + usb", text: "USB-C Cable", want: true},
		{raw: "cable + usb", text: "HDMI Cable", want: false},
		{raw: "iphone*pro", text: "Apple iPhone 15 Pro Max", want: true},
		{raw: "iphone*pro", text: "Apple Pro iPhone", want: false},
		{raw: "*book", text: "MacBook Air", want: true},
		{raw: "galaxy s2*", text: "Samsung Galaxy S24 Ultra", want: true},
		{raw: "a.b", text: "axb", want: false},
		{raw: "a.b", text: "file a.b", want: true},
		{raw: "(50%)", text: "Rabatt (50%) heute", want: true},
		{raw: "tv -refurb*", text: "OLED TV refurbished", want: false},
		{raw: "tv", text: "", want: false},
		{raw: "ＴＶ", text: "big tv", want: true},
		{raw: "big tv", text: "BIG \t TV stand", want: true},
	}

	for _, tt := range tests {
		t.Run(tt.raw+"/"+tt.text, func(t *testing.T) {
			expr := expression.Parse(tt.raw)
			require.NotNil(t, expr)
			assert.Equal(t, tt.want, expr.Matches(tt.text))
		})
	}
}

func TestMatchNormalized_NilExpression(t *testing.T) {
	var expr *expression.CompiledExpression
	assert.False(t, expr.MatchNormalized("anything"))
}

func TestAnyMatch(t *testing.T) {
	exprs, _ := expression.ParseAll([]string{"ps5", "xbox"})
	assert.True(t, expression.AnyMatch(exprs, "xbox series x"))
	assert.False(t, expression.AnyMatch(exprs, "switch oled"))
	assert.False(t, expression.AnyMatch(nil, "xbox"))
}
