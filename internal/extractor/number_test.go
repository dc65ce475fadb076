package extractor_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/north-cloud/deal-filter/internal/extractor"
)

func TestParseNumber(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{in: "49,99€", want: 49.99},
		{in: "1\u00a0299,99\u00a0€", want: 1299.99},
		{in: "1.299,00€", want: 1299},
		{in: "1,299.00", want: 1299},
		{in: "12.5", want: 12.5},
		{in: "-45°", want: -45},
		{in: "  1234° ", want: 1234},
		{in: "15.-", want: 15},
		{in: "ab 5-10 €", want: 5},
		{in: "0", want: 0},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got := extractor.ParseNumber(tt.in)
			require.NotNil(t, got)
			assert.InDelta(t, tt.want, *got, 1e-9)
		})
	}
}

func TestParseNumber_Absent(t *testing.T) {
	for _, in := range []string{"", "   ", "GRATIS", "kostenlos", "-", ".,", "--5"} {
		assert.Nil(t, extractor.ParseNumber(in), in)
	}
}
