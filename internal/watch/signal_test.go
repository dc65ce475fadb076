package watch_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/north-cloud/deal-filter/internal/watch"
)

func receive(t *testing.T, ch watch.Signal, within time.Duration) bool {
	t.Helper()
	select {
	case _, ok := <-ch:
		return ok
	case <-time.After(within):
		return false
	}
}

func TestDebounce_CoalescesBurst(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	in := make(chan struct{}, 10)
	out := watch.Debounce(ctx, in, 30*time.Millisecond)

	for range 5 {
		in <- struct{}{}
		time.Sleep(5 * time.Millisecond)
	}

	require.True(t, receive(t, out, time.Second))
	assert.False(t, receive(t, out, 100*time.Millisecond), "burst must produce exactly one signal")
}

func TestDebounce_LaterInputSupersedesPending(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	in := make(chan struct{}, 1)
	out := watch.Debounce(ctx, in, 80*time.Millisecond)

	in <- struct{}{}
	time.Sleep(40 * time.Millisecond)
	in <- struct{}{}

	assert.False(t, receive(t, out, 60*time.Millisecond), "window restarts on new input")
	assert.True(t, receive(t, out, time.Second))
}

func TestDebounce_ClosesWithContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	out := watch.Debounce(ctx, make(chan struct{}), time.Millisecond)
	cancel()

	select {
	case _, ok := <-out:
		assert.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("debounce output not closed")
	}
}

func TestDebounce_FlushesPendingOnInputClose(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	in := make(chan struct{}, 1)
	out := watch.Debounce(ctx, in, time.Hour)

	in <- struct{}{}
	close(in)

	require.True(t, receive(t, out, time.Second), "pending signal is emitted on close")
	select {
	case _, ok := <-out:
		assert.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("debounce output not closed")
	}
}

func TestDebounce_CloseWithoutPendingEmitsNothing(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	in := make(chan struct{})
	out := watch.Debounce(ctx, in, time.Hour)
	close(in)

	select {
	case _, ok := <-out:
		assert.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("debounce output not closed")
	}
}

func TestMerge(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a := watch.NewTrigger()
	b := watch.NewTrigger()
	out := watch.Merge(ctx, a.C(), nil, b.C())

	b.Fire()
	assert.True(t, receive(t, out, time.Second))
	a.Fire()
	assert.True(t, receive(t, out, time.Second))
}

func TestTrigger_Coalesces(t *testing.T) {
	tr := watch.NewTrigger()
	tr.Fire()
	tr.Fire()

	assert.True(t, receive(t, tr.C(), 10*time.Millisecond))
	assert.False(t, receive(t, tr.C(), 10*time.Millisecond))
}
