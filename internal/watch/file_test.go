package watch_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/north-cloud/deal-filter/internal/logger"
	"github.com/jonesrussell/north-cloud/deal-filter/internal/watch"
)

func TestFileWatcher_SignalsOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "deals.html")
	require.NoError(t, os.WriteFile(path, []byte("<html></html>"), 0o600))

	w, err := watch.NewFileWatcher(path, logger.NewNop())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.txt"), []byte("x"), 0o600))
	assert.False(t, receive(t, w.C(), 100*time.Millisecond), "other files are ignored")

	require.NoError(t, os.WriteFile(path, []byte("<html><body></body></html>"), 0o600))
	assert.True(t, receive(t, w.C(), 2*time.Second))
}

func TestNewFileWatcher_MissingDirectory(t *testing.T) {
	_, err := watch.NewFileWatcher(filepath.Join(t.TempDir(), "missing", "deals.html"), logger.NewNop())
	require.Error(t, err)
}
