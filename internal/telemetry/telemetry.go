// Package telemetry exports Prometheus metrics and OpenTelemetry spans for
// evaluation passes.
package telemetry

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/jonesrussell/north-cloud/deal-filter/internal/domain"
)

const serviceName = "deal-filter"

// Metrics holds every deal-filter Prometheus metric.
type Metrics struct {
	PassesTotal   *prometheus.CounterVec
	PassDuration  prometheus.Histogram
	ItemsPerPass  prometheus.Histogram
	Decisions     *prometheus.CounterVec
	ItemFailures  prometheus.Counter
	CacheHits     prometheus.Counter
	CacheMisses   prometheus.Counter
	CacheEvicted  prometheus.Counter
	CacheSize     prometheus.Gauge
	CompiledRules *prometheus.GaugeVec
	DroppedRules  prometheus.Gauge
	SettingsSaves prometheus.Counter
}

// Provider bundles metrics and a tracer.
type Provider struct {
	Tracer   trace.Tracer
	Metrics  *Metrics
	registry *prometheus.Registry
}

// NewProvider registers metrics on a private registry, so several providers
// can coexist in one process.
func NewProvider() *Provider {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	return &Provider{
		Tracer:   otel.Tracer(serviceName),
		Metrics:  initMetrics(promauto.With(reg)),
		registry: reg,
	}
}

// Registry exposes the registry backing this provider.
func (p *Provider) Registry() *prometheus.Registry {
	return p.registry
}

// Handler serves the /metrics endpoint.
func (p *Provider) Handler() http.Handler {
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{})
}

func initMetrics(f promauto.Factory) *Metrics {
	return &Metrics{
		PassesTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "deal_filter_passes_total",
			Help: "Evaluation passes by outcome",
		}, []string{"outcome"}),
		PassDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "deal_filter_pass_duration_seconds",
			Help:    "Time spent in one evaluation pass",
			Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),
		ItemsPerPass: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "deal_filter_items_per_pass",
			Help:    "Items seen per evaluation pass",
			Buckets: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000},
		}),
		Decisions: f.NewCounterVec(prometheus.CounterOpts{
			Name: "deal_filter_decisions_total",
			Help: "Decisions by reason",
		}, []string{"reason", "hidden"}),
		ItemFailures: f.NewCounter(prometheus.CounterOpts{
			Name: "deal_filter_item_failures_total",
			Help: "Items whose evaluation failed",
		}),
		CacheHits: f.NewCounter(prometheus.CounterOpts{
			Name: "deal_filter_cache_hits_total",
			Help: "Decisions served from the evaluation cache",
		}),
		CacheMisses: f.NewCounter(prometheus.CounterOpts{
			Name: "deal_filter_cache_misses_total",
			Help: "Decisions that required a full evaluation",
		}),
		CacheEvicted: f.NewCounter(prometheus.CounterOpts{
			Name: "deal_filter_cache_evictions_total",
			Help: "Cache entries removed after a pass",
		}),
		CacheSize: f.NewGauge(prometheus.GaugeOpts{
			Name: "deal_filter_cache_entries",
			Help: "Current evaluation cache size",
		}),
		CompiledRules: f.NewGaugeVec(prometheus.GaugeOpts{
			Name: "deal_filter_compiled_rules",
			Help: "Compiled word expressions by list",
		}, []string{"list"}),
		DroppedRules: f.NewGauge(prometheus.GaugeOpts{
			Name: "deal_filter_dropped_rules",
			Help: "Word expressions skipped as invalid",
		}),
		SettingsSaves: f.NewCounter(prometheus.CounterOpts{
			Name: "deal_filter_settings_changes_total",
			Help: "Rule set changes applied",
		}),
	}
}

// PassStats summarizes one pass for metrics.
type PassStats struct {
	Items     int
	Failures  int
	Hits      int
	Misses    int
	Evicted   int
	CacheSize int
	Duration  time.Duration
}

// RecordPass records a completed pass.
func (p *Provider) RecordPass(_ context.Context, stats PassStats, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	p.Metrics.PassesTotal.WithLabelValues(outcome).Inc()
	p.Metrics.PassDuration.Observe(stats.Duration.Seconds())
	p.Metrics.ItemsPerPass.Observe(float64(stats.Items))
	p.Metrics.ItemFailures.Add(float64(stats.Failures))
	p.Metrics.CacheHits.Add(float64(stats.Hits))
	p.Metrics.CacheMisses.Add(float64(stats.Misses))
	p.Metrics.CacheEvicted.Add(float64(stats.Evicted))
	p.Metrics.CacheSize.Set(float64(stats.CacheSize))
}

// RecordDecision counts one decision.
func (p *Provider) RecordDecision(d domain.Decision) {
	hidden := "false"
	if d.Hide {
		hidden = "true"
	}
	p.Metrics.Decisions.WithLabelValues(string(d.Reason), hidden).Inc()
}

// RecordRules records the size of the compiled rule set.
func (p *Provider) RecordRules(excludes, whitelist, dropped int) {
	p.Metrics.CompiledRules.WithLabelValues("exclude").Set(float64(excludes))
	p.Metrics.CompiledRules.WithLabelValues("whitelist").Set(float64(whitelist))
	p.Metrics.DroppedRules.Set(float64(dropped))
	p.Metrics.SettingsSaves.Inc()
}

// StartSpan starts a new trace span.
func (p *Provider) StartSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return p.Tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}
