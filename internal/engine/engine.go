package engine

import (
	"sync"

	"github.com/jonesrussell/north-cloud/deal-filter/internal/domain"
	"github.com/jonesrussell/north-cloud/deal-filter/internal/expression"
	"github.com/jonesrussell/north-cloud/deal-filter/internal/logger"
)

// Snapshot is an immutable compiled view of one RuleSet. A pass evaluates
// every item against a single snapshot.
type Snapshot struct {
	Rules     domain.RuleSet
	Version   string
	excludes  *expression.Index
	whitelist *expression.Index
	dropped   []string
}

// Compile builds a snapshot. Rules that fail to parse are dropped and
// returned so the caller can report them.
func Compile(rules domain.RuleSet) (*Snapshot, []string) {
	rules = rules.Canonical()

	excludes, droppedExcludes := expression.ParseAll(rules.ExcludeWords)
	whitelist, droppedWhitelist := expression.ParseAll(rules.WhitelistWords)

	snap := &Snapshot{
		Rules:     rules,
		Version:   rules.Version(),
		excludes:  expression.NewIndex(excludes),
		whitelist: expression.NewIndex(whitelist),
		dropped:   append(droppedExcludes, droppedWhitelist...),
	}
	return snap, snap.dropped
}

// Evaluate decides item against this snapshot.
func (s *Snapshot) Evaluate(item domain.Item) domain.Decision {
	return Evaluate(item, s.Rules, s.excludes, s.whitelist)
}

// DisplayTitle is the title shown for an item with the given raw title and
// source name under this snapshot.
func (s *Snapshot) DisplayTitle(raw, sourceName string) string {
	if !s.Rules.StripSourceNames {
		return raw
	}
	return StripSourceName(raw, sourceName)
}

// SettingsVersion is the version of the rules this snapshot was compiled from.
func (s *Snapshot) SettingsVersion() string {
	return s.Version
}

// ExcludeCount and WhitelistCount report how many expressions compiled.
func (s *Snapshot) ExcludeCount() int   { return s.excludes.Len() }
func (s *Snapshot) WhitelistCount() int { return s.whitelist.Len() }

// Dropped lists the raw rules that failed to parse.
func (s *Snapshot) Dropped() []string {
	return s.dropped
}

// Engine holds the current snapshot and swaps it when rules change.
type Engine struct {
	mu     sync.RWMutex
	snap   *Snapshot
	logger logger.Logger
}

// New compiles rules into a ready engine.
func New(rules domain.RuleSet, log logger.Logger) *Engine {
	if log == nil {
		log = logger.NewNop()
	}
	e := &Engine{logger: log}
	e.Refresh(rules)
	return e
}

// Refresh recompiles the engine for rules and reports whether the snapshot
// changed. It is a no-op when the version is unchanged.
func (e *Engine) Refresh(rules domain.RuleSet) bool {
	if cur := e.Snapshot(); cur != nil && cur.Version == rules.Version() {
		return false
	}

	snap, dropped := Compile(rules)
	for _, raw := range dropped {
		e.logger.Debug("Skipping invalid filter expression", logger.String("rule", raw))
	}

	e.mu.Lock()
	e.snap = snap
	e.mu.Unlock()

	e.logger.Info("Filter rules compiled",
		logger.String("version", snap.Version),
		logger.Int("exclude_rules", snap.ExcludeCount()),
		logger.Int("whitelist_rules", snap.WhitelistCount()),
		logger.Int("dropped_rules", len(dropped)),
	)
	return true
}

// SnapshotOf refreshes the engine for rules and returns a snapshot compiled
// from exactly those rules.
func (e *Engine) SnapshotOf(rules domain.RuleSet) *Snapshot {
	e.Refresh(rules)
	if snap := e.Snapshot(); snap.Version == rules.Version() {
		return snap
	}
	// a concurrent refresh installed other rules
	snap, _ := Compile(rules)
	return snap
}

// Snapshot returns the current compiled rules.
func (e *Engine) Snapshot() *Snapshot {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.snap
}

// Evaluate decides item against the current snapshot.
func (e *Engine) Evaluate(item domain.Item) domain.Decision {
	return e.Snapshot().Evaluate(item)
}

// Version returns the current settings version.
func (e *Engine) Version() string {
	return e.Snapshot().Version
}
