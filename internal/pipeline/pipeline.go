// Package pipeline runs evaluation passes: it reads the items currently
// present in a source, decides each one against a rules snapshot and writes
// the decisions back.
package pipeline

//go:generate mockgen -destination=mocks/mock_pipeline.go -package=mocks . Element,ItemSource,Evaluator

import (
	"context"
	"errors"
	"time"

	"github.com/jonesrussell/north-cloud/deal-filter/internal/domain"
	"github.com/jonesrussell/north-cloud/deal-filter/internal/extractor"
)

// ErrItemPanic wraps a panic recovered while processing a single item.
var ErrItemPanic = errors.New("item evaluation panicked")

// Element is one item as presented by a source.
type Element interface {
	Node() extractor.Node
	// Apply shows or hides the element.
	Apply(d domain.Decision)
	// SetDisplayTitle replaces the visible title.
	SetDisplayTitle(title string)
}

// ItemSource yields the elements currently present.
type ItemSource interface {
	Elements(ctx context.Context) ([]Element, error)
}

// Committer is implemented by sources that must flush applied decisions
// once a pass completes.
type Committer interface {
	Commit(ctx context.Context) error
}

// Evaluator is an immutable compiled rule set.
type Evaluator interface {
	Evaluate(item domain.Item) domain.Decision
	DisplayTitle(raw, sourceName string) string
	SettingsVersion() string
}

// RulesFunc returns the evaluator a pass should use.
type RulesFunc func() Evaluator

// ItemDecision is the outcome for one item of a pass.
type ItemDecision struct {
	Item     domain.Item     `json:"item"`
	Decision domain.Decision `json:"decision"`
	Cached   bool            `json:"cached"`
}

// PassResult summarizes one pass.
type PassResult struct {
	StartedAt       time.Time      `json:"startedAt"`
	Duration        time.Duration  `json:"duration"`
	SettingsVersion string         `json:"settingsVersion"`
	Items           int            `json:"items"`
	Hidden          int            `json:"hidden"`
	Failures        int            `json:"failures"`
	Hits            int            `json:"cacheHits"`
	Misses          int            `json:"cacheMisses"`
	Evicted         int            `json:"cacheEvicted"`
	Decisions       []ItemDecision `json:"decisions,omitempty"`
}
