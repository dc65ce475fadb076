// Package settings owns the live RuleSet: it loads it defensively from a
// key-value store, persists every change and hands out immutable copies.
package settings

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/jonesrussell/north-cloud/deal-filter/internal/domain"
	"github.com/jonesrussell/north-cloud/deal-filter/internal/logger"
	"github.com/jonesrussell/north-cloud/deal-filter/internal/storage"
)

// ErrInvalidImport is returned when an import payload is rejected.
var ErrInvalidImport = errors.New("invalid settings import")

// legacyKeys maps current keys to the names used by older stores.
var legacyKeys = map[string]string{
	domain.KeyManuallyHiddenIDs: "hiddenDeals",
	domain.KeyBlockedSources:    "excludeMerchantsData",
	domain.KeyBlockedAuthors:    "blockedUsers",
	domain.KeyHideColdItems:     "hideColdDeals",
	domain.KeyStripSourceNames:  "hideMatchingMerchantNames",
}

// Store is the single owner of the RuleSet.
type Store struct {
	kv     storage.Store
	logger logger.Logger

	// writeMu serializes changes from the read of the live rules through
	// persistence, so the stored keys always describe one rule set.
	writeMu sync.Mutex

	mu      sync.RWMutex
	rules   domain.RuleSet
	version string

	subMu sync.Mutex
	subs  []chan struct{}
}

// New returns a store holding the default (empty) rule set.
func New(kv storage.Store, log logger.Logger) *Store {
	if log == nil {
		log = logger.NewNop()
	}
	rules := domain.RuleSet{}.Canonical()
	return &Store{kv: kv, logger: log, rules: rules, version: rules.Version()}
}

// Load reads every key from the backing store. Missing, unreadable or
// malformed values fall back to defaults; Load never fails.
func (s *Store) Load(ctx context.Context) domain.RuleSet {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	var rules domain.RuleSet
	for _, key := range domain.RuleSetKeys {
		raw, ok := s.read(ctx, key)
		if !ok {
			continue
		}
		if err := applyField(&rules, key, raw); err != nil {
			s.logger.Warn("Ignoring malformed stored setting",
				logger.String("key", key),
				logger.Error(err),
			)
		}
	}

	s.replace(rules)
	current := s.Current()
	s.logger.Info("Settings loaded",
		logger.String("version", s.Version()),
		logger.Int("exclude_words", len(current.ExcludeWords)),
		logger.Int("whitelist_words", len(current.WhitelistWords)),
		logger.Int("blocked_sources", len(current.BlockedSources)),
		logger.Int("blocked_authors", len(current.BlockedAuthors)),
		logger.Int("hidden_items", len(current.ManuallyHiddenIDs)),
	)
	return current
}

func (s *Store) read(ctx context.Context, key string) (json.RawMessage, bool) {
	names := []string{key}
	if legacy, ok := legacyKeys[key]; ok {
		names = append(names, legacy)
	}
	for _, name := range names {
		raw, err := s.kv.Get(ctx, name)
		if err == nil {
			return raw, true
		}
		if !errors.Is(err, storage.ErrNotFound) {
			s.logger.Warn("Failed to read setting, using default",
				logger.String("key", name),
				logger.Error(err),
			)
			return nil, false
		}
	}
	return nil, false
}

// Current returns a copy of the live rule set.
func (s *Store) Current() domain.RuleSet {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return clone(s.rules)
}

// Version identifies the live rule set; it changes on every effective edit.
func (s *Store) Version() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

// Update replaces the rule set, persists it and notifies subscribers.
// Persistence failures are logged; the in-memory rule set still changes.
func (s *Store) Update(ctx context.Context, rules domain.RuleSet) domain.RuleSet {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	return s.update(ctx, rules)
}

// update requires writeMu.
func (s *Store) update(ctx context.Context, rules domain.RuleSet) domain.RuleSet {
	s.replace(rules)
	current := s.Current()
	s.persist(ctx, current)
	s.notify()
	return current
}

func (s *Store) replace(rules domain.RuleSet) {
	rules = rules.Canonical()
	s.mu.Lock()
	s.rules = rules
	s.version = rules.Version()
	s.mu.Unlock()
}

func (s *Store) persist(ctx context.Context, rules domain.RuleSet) {
	for key, value := range fieldValues(rules) {
		payload, err := json.Marshal(value)
		if err != nil {
			s.logger.Error("Failed to encode setting", logger.String("key", key), logger.Error(err))
			continue
		}
		if err = s.kv.Set(ctx, key, payload); err != nil {
			s.logger.Error("Failed to persist setting", logger.String("key", key), logger.Error(err))
		}
	}
}

// Export serializes the live rule set as a JSON object.
func (s *Store) Export() ([]byte, error) {
	payload, err := json.MarshalIndent(s.Current(), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode settings: %w", err)
	}
	return payload, nil
}

// Import merges a JSON object over the live rule set: present keys replace
// their value, absent keys keep theirs. Legacy key names are accepted; the
// current name wins when both are present. A payload that is not a JSON
// object, or that carries a value of the wrong shape, is rejected and nothing
// changes.
func (s *Store) Import(ctx context.Context, payload []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(payload, &fields); err != nil || fields == nil {
		s.logger.Warn("Rejected settings import", logger.Error(err))
		return fmt.Errorf("%w: expected a JSON object", ErrInvalidImport)
	}
	for key, legacy := range legacyKeys {
		raw, ok := fields[legacy]
		if !ok {
			continue
		}
		delete(fields, legacy)
		if _, current := fields[key]; !current {
			fields[key] = raw
		}
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	merged := s.Current()
	for key, raw := range fields {
		if err := applyField(&merged, key, raw); err != nil {
			s.logger.Warn("Rejected settings import", logger.Error(err))
			return fmt.Errorf("%w: %w", ErrInvalidImport, err)
		}
	}

	current := s.update(ctx, merged)
	s.logger.Info("Settings imported", logger.Int("keys", len(fields)), logger.String("version", current.Version()))
	return nil
}

// HideItem adds id to the manually hidden set. It reports whether the set changed.
func (s *Store) HideItem(ctx context.Context, id string) bool {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	rules := s.Current()
	if id == "" || slices.Contains(rules.ManuallyHiddenIDs, id) {
		return false
	}
	rules.ManuallyHiddenIDs = append(rules.ManuallyHiddenIDs, id)
	s.update(ctx, rules)
	return true
}

// ResetHidden empties the manually hidden set and returns how many ids it held.
func (s *Store) ResetHidden(ctx context.Context) int {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	rules := s.Current()
	n := len(rules.ManuallyHiddenIDs)
	rules.ManuallyHiddenIDs = nil
	s.update(ctx, rules)
	return n
}

// SetMaxPrice sets the price ceiling; 0 disables it. Invalid values become 0.
func (s *Store) SetMaxPrice(ctx context.Context, v float64) float64 {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	rules := s.Current()
	rules.MaxPrice = domain.SanitizeMaxPrice(v)
	return s.update(ctx, rules).MaxPrice
}

// Subscribe returns a channel that receives a value after every change.
// Notifications coalesce: a slow reader sees at most one pending signal.
func (s *Store) Subscribe() <-chan struct{} {
	ch := make(chan struct{}, 1)
	s.subMu.Lock()
	s.subs = append(s.subs, ch)
	s.subMu.Unlock()
	return ch
}

func (s *Store) notify() {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	for _, ch := range s.subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

func clone(r domain.RuleSet) domain.RuleSet {
	r.ExcludeWords = slices.Clone(r.ExcludeWords)
	r.WhitelistWords = slices.Clone(r.WhitelistWords)
	r.BlockedSources = slices.Clone(r.BlockedSources)
	r.BlockedAuthors = slices.Clone(r.BlockedAuthors)
	r.ManuallyHiddenIDs = slices.Clone(r.ManuallyHiddenIDs)
	return r
}
