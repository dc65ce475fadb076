package extractor

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

var leadingNumber = regexp.MustCompile(`^-?(\d+(\.\d+)?|\.\d+)`)

// ParseNumber reads a localized number such as "1 299,99 €", "-12°" or
// "1.299,00". It returns nil when the text holds no number.
func ParseNumber(text string) *float64 {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	var b strings.Builder
	for _, r := range text {
		if (r >= '0' && r <= '9') || r == '.' || r == ',' || r == '-' {
			b.WriteRune(r)
		}
	}
	cleaned := b.String()

	lastDot := strings.LastIndex(cleaned, ".")
	lastComma := strings.LastIndex(cleaned, ",")
	switch {
	case lastDot >= 0 && lastComma > lastDot:
		// "1.299,00": dots group thousands.
		cleaned = strings.ReplaceAll(cleaned, ".", "")
	case lastComma >= 0 && lastDot > lastComma:
		// "1,299.00": commas group thousands.
		cleaned = strings.ReplaceAll(cleaned, ",", "")
	case lastDot >= 0:
		cleaned = strings.ReplaceAll(cleaned[:lastDot], ".", "") + cleaned[lastDot:]
	}
	cleaned = strings.Replace(cleaned, ",", ".", 1)

	m := leadingNumber.FindString(cleaned)
	if m == "" {
		return nil
	}
	v, err := strconv.ParseFloat(m, 64)
	if err != nil || math.IsInf(v, 0) || math.IsNaN(v) {
		return nil
	}
	return &v
}
