package settings

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/jonesrussell/north-cloud/deal-filter/internal/domain"
)

const sourceSeparator = "|"

// editable is the hand-edited form of a RuleSet. Blocked sources are
// written one per line as "id|name".
type editable struct {
	ExcludeWords      []string `yaml:"exclude_words"`
	WhitelistWords    []string `yaml:"whitelist_words"`
	BlockedSources    []string `yaml:"blocked_sources"`
	BlockedAuthors    []string `yaml:"blocked_authors"`
	MaxPrice          float64  `yaml:"max_price"`
	HideColdItems     bool     `yaml:"hide_cold_items"`
	StripSourceNames  bool     `yaml:"strip_source_names"`
	ManuallyHiddenIDs []string `yaml:"manually_hidden_ids"`
}

const editableHeader = `# deal-filter rules
# exclude_words / whitelist_words: one expression per entry, e.g. "iphone+case -leather"
# blocked_sources: "id|name"; the name defaults to the id
# max_price: 0 disables the price ceiling
`

// MarshalEditable renders rules as an annotated YAML document.
func MarshalEditable(rules domain.RuleSet) ([]byte, error) {
	rules = rules.Canonical()
	doc := editable{
		ExcludeWords:      rules.ExcludeWords,
		WhitelistWords:    rules.WhitelistWords,
		BlockedAuthors:    rules.BlockedAuthors,
		MaxPrice:          rules.MaxPrice,
		HideColdItems:     rules.HideColdItems,
		StripSourceNames:  rules.StripSourceNames,
		ManuallyHiddenIDs: rules.ManuallyHiddenIDs,
		BlockedSources:    make([]string, 0, len(rules.BlockedSources)),
	}
	for _, s := range rules.BlockedSources {
		doc.BlockedSources = append(doc.BlockedSources, s.ID+sourceSeparator+s.Name)
	}

	body, err := yaml.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encode rules: %w", err)
	}
	return append([]byte(editableHeader), body...), nil
}

// UnmarshalEditable parses a document written by MarshalEditable. Empty
// lines are dropped, duplicates removed and authors normalized.
func UnmarshalEditable(data []byte) (domain.RuleSet, error) {
	var doc editable
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return domain.RuleSet{}, fmt.Errorf("parse rules: %w", err)
	}

	rules := domain.RuleSet{
		ExcludeWords:      doc.ExcludeWords,
		WhitelistWords:    doc.WhitelistWords,
		BlockedAuthors:    doc.BlockedAuthors,
		MaxPrice:          doc.MaxPrice,
		HideColdItems:     doc.HideColdItems,
		StripSourceNames:  doc.StripSourceNames,
		ManuallyHiddenIDs: doc.ManuallyHiddenIDs,
	}
	for _, line := range doc.BlockedSources {
		id, name, _ := strings.Cut(line, sourceSeparator)
		rules.BlockedSources = append(rules.BlockedSources, domain.Source{ID: id, Name: name})
	}
	return rules.Canonical(), nil
}
