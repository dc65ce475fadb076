package settings

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/mitchellh/mapstructure"

	"github.com/jonesrussell/north-cloud/deal-filter/internal/domain"
)

var errNotArray = errors.New("expected an array")

// decodeStrings keeps the trimmed, non-empty string elements of a JSON array.
// Elements of any other type are skipped.
func decodeStrings(raw json.RawMessage) ([]string, error) {
	var values []any
	if err := json.Unmarshal(raw, &values); err != nil {
		return nil, errNotArray
	}
	out := make([]string, 0, len(values))
	for _, v := range values {
		if s, ok := v.(string); ok {
			if s = strings.TrimSpace(s); s != "" {
				out = append(out, s)
			}
		}
	}
	return out, nil
}

type storedSource struct {
	ID   string `mapstructure:"id"`
	Name string `mapstructure:"name"`
}

// decodeSources reads {id, name} records. Numeric ids are accepted; records
// that are not objects or have an empty id are skipped; the name defaults to
// the id.
func decodeSources(raw json.RawMessage) ([]domain.Source, error) {
	var values []any
	if err := json.Unmarshal(raw, &values); err != nil {
		return nil, errNotArray
	}
	out := make([]domain.Source, 0, len(values))
	for _, v := range values {
		record, ok := v.(map[string]any)
		if !ok {
			continue
		}
		var src storedSource
		if err := mapstructure.WeakDecode(record, &src); err != nil {
			continue
		}
		id := strings.TrimSpace(src.ID)
		if id == "" {
			continue
		}
		name := strings.TrimSpace(src.Name)
		if name == "" {
			name = id
		}
		out = append(out, domain.Source{ID: id, Name: name})
	}
	return out, nil
}

func decodeFloat(raw json.RawMessage) (float64, error) {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return 0, fmt.Errorf("expected a number: %w", err)
	}
	if v == nil {
		return 0, nil
	}
	var f float64
	if err := mapstructure.WeakDecode(v, &f); err != nil {
		return 0, fmt.Errorf("expected a number: %w", err)
	}
	return domain.SanitizeMaxPrice(f), nil
}

func decodeBool(raw json.RawMessage) (bool, error) {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return false, fmt.Errorf("expected a boolean: %w", err)
	}
	if v == nil {
		return false, nil
	}
	var b bool
	if err := mapstructure.WeakDecode(v, &b); err != nil {
		return false, fmt.Errorf("expected a boolean: %w", err)
	}
	return b, nil
}

// applyField decodes raw into the RuleSet field named key. Unknown keys are
// ignored.
func applyField(r *domain.RuleSet, key string, raw json.RawMessage) error {
	var err error
	switch key {
	case domain.KeyExcludeWords:
		r.ExcludeWords, err = decodeStrings(raw)
	case domain.KeyWhitelistWords:
		r.WhitelistWords, err = decodeStrings(raw)
	case domain.KeyBlockedSources:
		r.BlockedSources, err = decodeSources(raw)
	case domain.KeyBlockedAuthors:
		r.BlockedAuthors, err = decodeStrings(raw)
	case domain.KeyManuallyHiddenIDs:
		r.ManuallyHiddenIDs, err = decodeStrings(raw)
	case domain.KeyMaxPrice:
		r.MaxPrice, err = decodeFloat(raw)
	case domain.KeyHideColdItems:
		r.HideColdItems, err = decodeBool(raw)
	case domain.KeyStripSourceNames:
		r.StripSourceNames, err = decodeBool(raw)
	}
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	return nil
}

// fieldValues maps every RuleSet key to its value.
func fieldValues(r domain.RuleSet) map[string]any {
	return map[string]any{
		domain.KeyExcludeWords:      r.ExcludeWords,
		domain.KeyWhitelistWords:    r.WhitelistWords,
		domain.KeyBlockedSources:    r.BlockedSources,
		domain.KeyBlockedAuthors:    r.BlockedAuthors,
		domain.KeyMaxPrice:          r.MaxPrice,
		domain.KeyHideColdItems:     r.HideColdItems,
		domain.KeyManuallyHiddenIDs: r.ManuallyHiddenIDs,
		domain.KeyStripSourceNames:  r.StripSourceNames,
	}
}
