package cmd

import (
	"context"
	"fmt"

	"github.com/jonesrussell/north-cloud/deal-filter/internal/engine"
	"github.com/jonesrussell/north-cloud/deal-filter/internal/logger"
	"github.com/jonesrussell/north-cloud/deal-filter/internal/pipeline"
	"github.com/jonesrussell/north-cloud/deal-filter/internal/settings"
	"github.com/jonesrussell/north-cloud/deal-filter/internal/storage"
)

// openSettings opens the configured store and loads the live rule set.
// The caller closes the returned storage.
func openSettings(ctx context.Context, d *deps) (*settings.Store, storage.Store, error) {
	kv, err := storage.Open(ctx, d.cfg.Storage)
	if err != nil {
		return nil, nil, fmt.Errorf("open storage: %w", err)
	}
	store := settings.New(kv, d.log)
	store.Load(ctx)
	return store, kv, nil
}

func closeStorage(kv storage.Store, log logger.Logger) {
	if err := kv.Close(); err != nil {
		log.Warn("Failed to close storage", logger.Error(err))
	}
}

// rulesOf hands out the engine snapshot for the store's live rules, so a
// change is visible to the next evaluation without waiting for the refresh
// loop.
func rulesOf(store *settings.Store, e *engine.Engine) pipeline.RulesFunc {
	return func() pipeline.Evaluator { return e.SnapshotOf(store.Current()) }
}
