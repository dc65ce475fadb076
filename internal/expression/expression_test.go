package expression_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/north-cloud/deal-filter/internal/expression"
)

func TestParse_Invalid(t *testing.T) {
	inputs := []string{"", "   ", "*", "***", "* *", "* + **", "-onlyexclude", "  -foo -bar", "+", "* -ps5"}
	for _, in := range inputs {
		t.Run(in, func(t *testing.T) {
			assert.Nil(t, expression.Parse(in))
		})
	}
}

func TestParse_Structure(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		include []string
		exclude []string
	}{
		{name: "single", raw: "Sony", include: []string{"sony"}},
		{name: "include and exclude", raw: "sony -ps5", include: []string{"sony"}, exclude: []string{"ps5"}},
		{name: "conjunction", raw: "cable + usb", include: []string{"cable", "usb"}},
		{name: "tight plus", raw: "cable+usb", include: []string{"cable", "usb"}},
		{name: "multiple excludes", raw: "foo + bar -baz -qux", include: []string{"foo", "bar"}, exclude: []string{"baz", "qux"}},
		{name: "double hyphen", raw: "tv --refurbished", include: []string{"tv"}, exclude: []string{"refurbished"}},
		{name: "wildcard exclude dropped", raw: "tv -*", include: []string{"tv"}},
		{name: "wildcard kept inside term", raw: "iphone*pro", include: []string{"iphone*pro"}},
		{name: "empty include term dropped", raw: "tv + * + oled", include: []string{"tv", "oled"}},
		{name: "hyphen inside word", raw: "usb-c", include: []string{"usb-c"}},
		{name: "whitespace collapsed", raw: "  big   tv  ", include: []string{"big tv"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			expr := expression.Parse(tt.raw)
			require.NotNil(t, expr)
			assert.Equal(t, tt.include, expr.IncludeTerms())
			if tt.exclude == nil {
				assert.Empty(t, expr.ExcludeTerms())
			} else {
				assert.Equal(t, tt.exclude, expr.ExcludeTerms())
			}
		})
	}
}

func TestParse_Deterministic(t *testing.T) {
	a := expression.Parse("Sony + Headset -PS5")
	b := expression.Parse("sony+headset   -ps5")
	require.NotNil(t, a)
	require.NotNil(t, b)
	assert.Equal(t, a.IncludeTerms(), b.IncludeTerms())
	assert.Equal(t, a.ExcludeTerms(), b.ExcludeTerms())
}

func TestParseAll_DropsInvalid(t *testing.T) {
	compiled, dropped := expression.ParseAll([]string{"sony", "*", "usb + cable", "-x"})
	require.Len(t, compiled, 2)
	assert.Equal(t, []string{"*", "-x"}, dropped)
}
