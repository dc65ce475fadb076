package logger_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/jonesrussell/north-cloud/deal-filter/internal/logger"
)

func TestFromContext_ReturnsStoredLogger(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	l := logger.NewFromZap(zap.New(core))

	ctx := logger.WithContext(context.Background(), l)
	logger.FromContext(ctx).Info("stored", logger.String("k", "v"))

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "stored", entry.Message)
	assert.Equal(t, "v", entry.ContextMap()["k"])
}

func TestFromContext_FallsBackToNop(t *testing.T) {
	l := logger.FromContext(context.Background())
	require.NotNil(t, l)
	assert.NotPanics(t, func() { l.Error("nobody listens") })
}

func TestWith_AttachesFields(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	l := logger.NewFromZap(zap.New(core)).With(logger.String("component", "pipeline"))

	l.Warn("pass failed", logger.Int("items", 3))

	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, "pipeline", fields["component"])
	assert.EqualValues(t, 3, fields["items"])
}

func TestNew_DevelopmentBuilds(t *testing.T) {
	l, err := logger.New(logger.Config{Level: "error", Development: true, OutputPaths: []string{"stderr"}})
	require.NoError(t, err)
	assert.NotNil(t, l)
}
