package domain

import (
	"encoding/json"
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/cespare/xxhash/v2"

	"github.com/jonesrussell/north-cloud/deal-filter/internal/textnorm"
)

// Source identifies a merchant by its numeric site id.
type Source struct {
	ID   string `json:"id"   yaml:"id"`
	Name string `json:"name" yaml:"name"`
}

// RuleSet is the complete user-configured filter configuration.
type RuleSet struct {
	ExcludeWords      []string `json:"excludeWords"`
	WhitelistWords    []string `json:"whitelistWords"`
	BlockedSources    []Source `json:"blockedSources"`
	BlockedAuthors    []string `json:"blockedAuthors"`
	MaxPrice          float64  `json:"maxPrice"`
	HideColdItems     bool     `json:"hideColdItems"`
	ManuallyHiddenIDs []string `json:"manuallyHiddenIds"`
	// StripSourceNames removes each item's own source name from its displayed title.
	StripSourceNames bool `json:"stripSourceNames"`
}

// RuleSet JSON keys, also used as persistence keys.
const (
	KeyExcludeWords      = "excludeWords"
	KeyWhitelistWords    = "whitelistWords"
	KeyBlockedSources    = "blockedSources"
	KeyBlockedAuthors    = "blockedAuthors"
	KeyMaxPrice          = "maxPrice"
	KeyHideColdItems     = "hideColdItems"
	KeyManuallyHiddenIDs = "manuallyHiddenIds"
	KeyStripSourceNames  = "stripSourceNames"
)

// RuleSetKeys lists every RuleSet field key.
var RuleSetKeys = []string{
	KeyExcludeWords,
	KeyWhitelistWords,
	KeyBlockedSources,
	KeyBlockedAuthors,
	KeyMaxPrice,
	KeyHideColdItems,
	KeyManuallyHiddenIDs,
	KeyStripSourceNames,
}

// Canonical returns a copy with trimmed, de-duplicated, non-nil lists,
// normalized author names, source names defaulted to their id and a
// non-negative finite max price.
func (r RuleSet) Canonical() RuleSet {
	return RuleSet{
		ExcludeWords:      uniqueTrimmed(r.ExcludeWords, strings.TrimSpace),
		WhitelistWords:    uniqueTrimmed(r.WhitelistWords, strings.TrimSpace),
		BlockedSources:    canonicalSources(r.BlockedSources),
		BlockedAuthors:    uniqueTrimmed(r.BlockedAuthors, textnorm.Normalize),
		MaxPrice:          SanitizeMaxPrice(r.MaxPrice),
		HideColdItems:     r.HideColdItems,
		ManuallyHiddenIDs: uniqueTrimmed(r.ManuallyHiddenIDs, strings.TrimSpace),
		StripSourceNames:  r.StripSourceNames,
	}
}

// SanitizeMaxPrice maps negative and non-finite values to 0 (disabled).
func SanitizeMaxPrice(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0
	}
	return v
}

func uniqueTrimmed(in []string, clean func(string) string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]struct{}, len(in))
	for _, s := range in {
		s = clean(s)
		if s == "" {
			continue
		}
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}

func canonicalSources(in []Source) []Source {
	out := make([]Source, 0, len(in))
	seen := make(map[string]struct{}, len(in))
	for _, src := range in {
		id := strings.TrimSpace(src.ID)
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		name := strings.TrimSpace(src.Name)
		if name == "" {
			name = id
		}
		out = append(out, Source{ID: id, Name: name})
	}
	return out
}

// IsManuallyHidden reports whether id was hidden by hand.
func (r RuleSet) IsManuallyHidden(id string) bool {
	return id != "" && slices.Contains(r.ManuallyHiddenIDs, id)
}

// BlocksSource reports whether the source id is blocked.
func (r RuleSet) BlocksSource(id string) bool {
	if id == "" {
		return false
	}
	return slices.ContainsFunc(r.BlockedSources, func(s Source) bool { return s.ID == id })
}

// BlocksAuthor reports whether the already-normalized author is blocked.
func (r RuleSet) BlocksAuthor(normalizedAuthor string) bool {
	return normalizedAuthor != "" && slices.Contains(r.BlockedAuthors, normalizedAuthor)
}

// Version is a content hash of the canonical rule set. Duplicates and the
// order of the set-like lists do not affect it. Word list order does, since
// the first matching expression is reported.
func (r RuleSet) Version() string {
	c := r.Canonical()
	slices.Sort(c.BlockedAuthors)
	slices.Sort(c.ManuallyHiddenIDs)
	slices.SortFunc(c.BlockedSources, func(a, b Source) int { return strings.Compare(a.ID, b.ID) })

	// Marshalling a struct of strings, bools and a finite float cannot fail.
	payload, _ := json.Marshal(c)
	return fmt.Sprintf("%016x", xxhash.Sum64(payload))
}
