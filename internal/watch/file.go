package watch

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/jonesrussell/north-cloud/deal-filter/internal/logger"
)

// FileWatcher signals when a single file is written, created or replaced.
// The parent directory is watched so editors that save via rename are seen.
type FileWatcher struct {
	path    string
	watcher *fsnotify.Watcher
	ch      chan struct{}
	logger  logger.Logger
}

// NewFileWatcher starts watching path.
func NewFileWatcher(path string, log logger.Logger) (*FileWatcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", path, err)
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create file watcher: %w", err)
	}
	if err = w.Add(filepath.Dir(abs)); err != nil {
		_ = w.Close()
		return nil, fmt.Errorf("watch %s: %w", filepath.Dir(abs), err)
	}

	return &FileWatcher{
		path:    abs,
		watcher: w,
		ch:      make(chan struct{}, 1),
		logger:  log,
	}, nil
}

// C returns the signal channel.
func (f *FileWatcher) C() Signal {
	return f.ch
}

// Run forwards relevant events until ctx ends, then closes the watcher.
func (f *FileWatcher) Run(ctx context.Context) {
	defer func() { _ = f.watcher.Close() }()

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-f.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != f.path {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename) {
				f.logger.Debug("Source file changed",
					logger.String("path", f.path),
					logger.String("op", event.Op.String()),
				)
				notify(f.ch)
			}
		case err, ok := <-f.watcher.Errors:
			if !ok {
				return
			}
			f.logger.Warn("File watcher error", logger.String("path", f.path), logger.Error(err))
		}
	}
}
