package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jonesrussell/north-cloud/deal-filter/internal/api"
	"github.com/jonesrussell/north-cloud/deal-filter/internal/config"
	"github.com/jonesrussell/north-cloud/deal-filter/internal/engine"
	"github.com/jonesrussell/north-cloud/deal-filter/internal/evalcache"
	"github.com/jonesrussell/north-cloud/deal-filter/internal/extractor"
	"github.com/jonesrussell/north-cloud/deal-filter/internal/pipeline"
	"github.com/jonesrussell/north-cloud/deal-filter/internal/settings"
	"github.com/jonesrussell/north-cloud/deal-filter/internal/source"
	"github.com/jonesrussell/north-cloud/deal-filter/internal/telemetry"
	"github.com/jonesrussell/north-cloud/deal-filter/internal/watch"
)

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the filter pipeline and the HTTP API",
		Long: `serve keeps the configured listing source filtered: it runs a pass at start-up
and again whenever the source changes, the schedule fires, the rules change or a
pass is requested over the API.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			d, err := loadDeps(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = d.log.Sync() }()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, d)
		},
	}
}

func runServe(ctx context.Context, d *deps) error {
	store, kv, err := openSettings(ctx, d)
	if err != nil {
		return err
	}
	defer closeStorage(kv, d.log)

	prov := telemetry.NewProvider()
	eng := engine.New(store.Current(), d.log)
	recordRules(prov, eng.Snapshot())

	rules := rulesOf(store, eng)
	trigger := watch.NewTrigger()
	go refreshOnChange(store, eng, prov, trigger)(ctx)

	var (
		passes   api.PassReporter
		passTrig api.Trigger
	)
	runner, signals, err := buildPipeline(ctx, d, rules, prov)
	if err != nil {
		return err
	}
	if runner != nil {
		passes, passTrig = runner, trigger
		signals = append(signals, trigger.C())
		go runner.Run(ctx, watch.Merge(ctx, signals...), d.cfg.Pipeline.Debounce)
	} else {
		d.log.Info("No listing source configured, serving the API only")
	}

	h := api.NewHandler(store, rules, passes, passTrig)
	srv := api.NewServer(d.cfg.Server, d.cfg.Debug, d.log, h, prov.Handler())

	errCh := srv.StartAsync()
	select {
	case <-ctx.Done():
		d.log.Info("Shutdown signal received")
	case err = <-errCh:
		if err != nil {
			return err
		}
	}
	return srv.Shutdown(context.Background())
}

// buildPipeline wires the source, runner and change signals. It returns a nil
// runner when no source is configured.
func buildPipeline(ctx context.Context, d *deps, rules pipeline.RulesFunc, prov *telemetry.Provider) (*pipeline.Runner, []watch.Signal, error) {
	pc := d.cfg.Pipeline
	if (pc.Source.Kind == config.SourceFile && pc.Source.Path == "") ||
		(pc.Source.Kind == config.SourceHTTP && pc.Source.URL == "") {
		return nil, nil, nil
	}

	sel := extractor.DefaultSelectors()
	src, err := source.New(pc.Source, pc.Output, sel, d.log)
	if err != nil {
		return nil, nil, err
	}

	runner, err := pipeline.NewRunner(pipeline.Config{
		Source:    src,
		Extractor: extractor.New(sel),
		Rules:     rules,
		Cache:     evalcache.New(pc.CacheMaxEntries),
		Telemetry: prov,
		Logger:    d.log,
	})
	if err != nil {
		return nil, nil, err
	}

	var signals []watch.Signal
	if pc.Watch {
		fw, fwErr := watch.NewFileWatcher(pc.Source.Path, d.log)
		if fwErr != nil {
			return nil, nil, fmt.Errorf("watch %s: %w", pc.Source.Path, fwErr)
		}
		go fw.Run(ctx)
		signals = append(signals, fw.C())
	}
	if pc.Schedule != "" {
		sched, schedErr := watch.NewSchedule(pc.Schedule, d.log)
		if schedErr != nil {
			return nil, nil, schedErr
		}
		sched.Start()
		go func() {
			<-ctx.Done()
			sched.Stop()
		}()
		signals = append(signals, sched.C())
	}
	return runner, signals, nil
}

// refreshOnChange subscribes to settings saves and returns the loop that
// recompiles the engine and requests a pass after each one. The engine may
// already have been refreshed by a reader, so the applied version is tracked
// here.
func refreshOnChange(store *settings.Store, eng *engine.Engine, prov *telemetry.Provider, trigger *watch.Trigger) func(context.Context) {
	changed := store.Subscribe()
	applied := eng.Version()
	return func(ctx context.Context) {
		for {
			select {
			case <-ctx.Done():
				return
			case <-changed:
				eng.Refresh(store.Current())
				if snap := eng.Snapshot(); snap.Version != applied {
					applied = snap.Version
					recordRules(prov, snap)
					trigger.Fire()
				}
			}
		}
	}
}

func recordRules(prov *telemetry.Provider, snap *engine.Snapshot) {
	prov.RecordRules(snap.ExcludeCount(), snap.WhitelistCount(), len(snap.Dropped()))
}

