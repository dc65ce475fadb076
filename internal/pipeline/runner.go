package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/jonesrussell/north-cloud/deal-filter/internal/evalcache"
	"github.com/jonesrussell/north-cloud/deal-filter/internal/extractor"
	"github.com/jonesrussell/north-cloud/deal-filter/internal/logger"
	"github.com/jonesrussell/north-cloud/deal-filter/internal/telemetry"
	"github.com/jonesrussell/north-cloud/deal-filter/internal/watch"
)

// Config holds the runner's collaborators. Telemetry and Logger are optional.
type Config struct {
	Source    ItemSource
	Extractor *extractor.Extractor
	Rules     RulesFunc
	Cache     *evalcache.Cache
	Telemetry *telemetry.Provider
	Logger    logger.Logger
}

// Runner executes passes one at a time.
type Runner struct {
	source    ItemSource
	extractor *extractor.Extractor
	rules     RulesFunc
	cache     *evalcache.Cache
	telemetry *telemetry.Provider
	logger    logger.Logger

	passMu sync.Mutex

	mu   sync.RWMutex
	last *PassResult
}

// NewRunner validates cfg and returns a runner.
func NewRunner(cfg Config) (*Runner, error) {
	if cfg.Source == nil {
		return nil, errors.New("pipeline: source is required")
	}
	if cfg.Rules == nil {
		return nil, errors.New("pipeline: rules are required")
	}
	if cfg.Extractor == nil {
		cfg.Extractor = extractor.New(extractor.DefaultSelectors())
	}
	if cfg.Cache == nil {
		cfg.Cache = evalcache.New(evalcache.DefaultMaxEntries)
	}
	if cfg.Logger == nil {
		cfg.Logger = logger.NewNop()
	}
	return &Runner{
		source:    cfg.Source,
		extractor: cfg.Extractor,
		rules:     cfg.Rules,
		cache:     cfg.Cache,
		telemetry: cfg.Telemetry,
		logger:    cfg.Logger,
	}, nil
}

// CacheStats reports evaluation cache activity.
func (r *Runner) CacheStats() evalcache.Stats {
	return r.cache.Stats()
}

// RunPass evaluates every element the source currently holds against one
// rules snapshot. A failure on one item is logged and counted; the item keeps
// whatever visibility it had and the pass continues.
func (r *Runner) RunPass(ctx context.Context) (PassResult, error) {
	r.passMu.Lock()
	defer r.passMu.Unlock()

	snap := r.rules()
	result := PassResult{StartedAt: time.Now(), SettingsVersion: snap.SettingsVersion()}

	ctx, span := r.startSpan(ctx, "pipeline.pass", attribute.String("settings_version", result.SettingsVersion))
	defer span.End()

	err := r.runPass(ctx, snap, &result)
	result.Duration = time.Since(result.StartedAt)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		r.logger.Error("Evaluation pass failed", logger.Error(err))
	} else {
		span.SetAttributes(
			attribute.Int("items", result.Items),
			attribute.Int("hidden", result.Hidden),
			attribute.Int("failures", result.Failures),
		)
		r.logger.Debug("Evaluation pass completed",
			logger.Int("items", result.Items),
			logger.Int("hidden", result.Hidden),
			logger.Int("failures", result.Failures),
			logger.Int("cache_hits", result.Hits),
			logger.Int("cache_evicted", result.Evicted),
			logger.Duration("duration", result.Duration),
		)
		r.mu.Lock()
		r.last = &result
		r.mu.Unlock()
	}

	if r.telemetry != nil {
		r.telemetry.RecordPass(ctx, telemetry.PassStats{
			Items:     result.Items,
			Failures:  result.Failures,
			Hits:      result.Hits,
			Misses:    result.Misses,
			Evicted:   result.Evicted,
			CacheSize: r.cache.Len(),
			Duration:  result.Duration,
		}, err)
	}

	return result, err
}

func (r *Runner) runPass(ctx context.Context, snap Evaluator, result *PassResult) error {
	elements, err := r.source.Elements(ctx)
	if err != nil {
		return fmt.Errorf("read items: %w", err)
	}

	r.cache.BeginPass()
	result.Decisions = make([]ItemDecision, 0, len(elements))

	for _, el := range elements {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		d, itemErr := r.process(snap, el)
		if itemErr != nil {
			result.Failures++
			r.logger.Error("Failed to evaluate item",
				logger.String("item_id", d.Item.ID),
				logger.Error(itemErr),
			)
			continue
		}

		result.Items++
		if d.Decision.Hide {
			result.Hidden++
		}
		if d.Cached {
			result.Hits++
		} else {
			result.Misses++
		}
		if r.telemetry != nil {
			r.telemetry.RecordDecision(d.Decision)
		}
		result.Decisions = append(result.Decisions, d)
	}

	result.Evicted = r.cache.EndPass()

	if c, ok := r.source.(Committer); ok {
		if err = c.Commit(ctx); err != nil {
			return fmt.Errorf("commit pass: %w", err)
		}
	}
	return nil
}

// process decides a single element. A panic anywhere in extraction,
// evaluation or application is converted into an error.
func (r *Runner) process(snap Evaluator, el Element) (d ItemDecision, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("%w: %v", ErrItemPanic, rec)
		}
	}()

	item := r.extractor.Extract(el.Node())
	d.Item = item
	item.DisplayTitle = snap.DisplayTitle(item.RawTitle, item.SourceName)
	d.Item = item

	decision, hit := r.cache.GetOrEvaluate(item.ID, item, snap.SettingsVersion(), snap.Evaluate)

	el.SetDisplayTitle(item.DisplayTitle)
	el.Apply(decision)

	d.Decision = decision
	d.Cached = hit
	return d, nil
}

func (r *Runner) startSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	if r.telemetry == nil {
		return ctx, trace.SpanFromContext(ctx)
	}
	return r.telemetry.StartSpan(ctx, name, attrs...)
}

// LastResult returns the most recent successful pass, if any.
func (r *Runner) LastResult() (PassResult, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.last == nil {
		return PassResult{}, false
	}
	return *r.last, true
}

// LastDecisions returns the per-item decisions of the most recent successful pass.
func (r *Runner) LastDecisions() []ItemDecision {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.last == nil {
		return nil
	}
	out := make([]ItemDecision, len(r.last.Decisions))
	copy(out, r.last.Decisions)
	return out
}

// Run performs an initial pass, then one pass per debounced signal until ctx
// ends. A signal arriving while a pass is pending restarts the debounce window.
func (r *Runner) Run(ctx context.Context, signal watch.Signal, window time.Duration) {
	r.logger.Info("Pipeline runner starting", logger.Duration("debounce", window))

	_, _ = r.RunPass(ctx)

	debounced := watch.Debounce(ctx, signal, window)
	for {
		select {
		case <-ctx.Done():
			r.logger.Info("Pipeline runner stopped")
			return
		case _, ok := <-debounced:
			if !ok {
				r.logger.Info("Pipeline runner stopped")
				return
			}
			_, _ = r.RunPass(ctx)
		}
	}
}
