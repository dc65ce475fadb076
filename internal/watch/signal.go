// Package watch produces "document changed" signals: coalesced, debounced
// channels fed by file changes, cron schedules and explicit triggers.
package watch

import (
	"context"
	"sync"
	"time"
)

// Signal is a change notification without payload.
type Signal = <-chan struct{}

// Debounce emits one signal after in has been quiet for window. Every new
// input restarts the window, so a burst collapses into a single output and
// a pending emission is superseded by later input. The returned channel is
// closed when ctx ends or in is closed; closing in emits any pending signal
// first.
func Debounce(ctx context.Context, in Signal, window time.Duration) Signal {
	out := make(chan struct{}, 1)

	go func() {
		defer close(out)

		var timer *time.Timer
		var timerC <-chan time.Time
		stop := func() {
			if timer != nil {
				timer.Stop()
			}
		}
		defer stop()

		for {
			select {
			case <-ctx.Done():
				return
			case _, ok := <-in:
				if !ok {
					// flush a pending emission before closing
					if timerC != nil {
						notify(out)
					}
					return
				}
				if window <= 0 {
					notify(out)
					continue
				}
				stop()
				timer = time.NewTimer(window)
				timerC = timer.C
			case <-timerC:
				timer, timerC = nil, nil
				notify(out)
			}
		}
	}()

	return out
}

// Merge fans several signals into one coalescing channel. nil inputs are
// ignored. The output closes when ctx ends.
func Merge(ctx context.Context, ins ...Signal) Signal {
	out := make(chan struct{}, 1)
	var wg sync.WaitGroup

	for _, in := range ins {
		if in == nil {
			continue
		}
		wg.Add(1)
		go func(in Signal) {
			defer wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case _, ok := <-in:
					if !ok {
						return
					}
					notify(out)
				}
			}
		}(in)
	}

	go func() {
		<-ctx.Done()
		wg.Wait()
		close(out)
	}()

	return out
}

// notify sends without blocking; a pending signal already covers this one.
func notify(ch chan<- struct{}) {
	select {
	case ch <- struct{}{}:
	default:
	}
}

// Trigger is a manually fired signal.
type Trigger struct {
	ch chan struct{}
}

// NewTrigger returns a ready trigger.
func NewTrigger() *Trigger {
	return &Trigger{ch: make(chan struct{}, 1)}
}

// Fire requests a pass.
func (t *Trigger) Fire() {
	notify(t.ch)
}

// C returns the signal channel.
func (t *Trigger) C() Signal {
	return t.ch
}
