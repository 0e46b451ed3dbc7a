// Package poll provides the shared fixed-interval refresh primitive. A Task
// is pausable: when the terminal loses focus the poll loop is suspended,
// and regaining focus performs an immediate refresh and restarts the
// interval, so the view is never stale-on-return.
package poll

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Task runs fn on a fixed interval until stopped.
type Task struct {
	name     string
	interval time.Duration
	fn       func(ctx context.Context)
	log      *zap.Logger

	mu      sync.Mutex
	paused  bool
	started bool

	stopCh chan struct{}
	kickCh chan struct{}
}

// NewTask creates a Task; fn is invoked from the task's own goroutine.
func NewTask(name string, interval time.Duration, fn func(ctx context.Context), log *zap.Logger) *Task {
	if log == nil {
		log = zap.NewNop()
	}
	return &Task{
		name:     name,
		interval: interval,
		fn:       fn,
		log:      log,
		stopCh:   make(chan struct{}),
		kickCh:   make(chan struct{}, 1),
	}
}

// Start launches the poll loop. The first run happens after one interval;
// callers wanting an immediate run use Kick. Start is idempotent.
func (t *Task) Start(ctx context.Context) {
	t.mu.Lock()
	if t.started {
		t.mu.Unlock()
		return
	}
	t.started = true
	t.mu.Unlock()

	t.log.Info("starting poll task", zap.String("task", t.name), zap.Duration("interval", t.interval))
	go t.loop(ctx)
}

// Stop terminates the loop. Safe to call once.
func (t *Task) Stop() {
	close(t.stopCh)
}

// Pause suspends ticks until Resume. Paused ticks are skipped, not queued.
func (t *Task) Pause() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.paused {
		return
	}
	t.paused = true
	t.log.Debug("poll task paused", zap.String("task", t.name))
}

// Resume lifts a pause, triggers an immediate run, and restarts the
// interval. A Resume without a preceding Pause is a no-op.
func (t *Task) Resume() {
	t.mu.Lock()
	if !t.paused {
		t.mu.Unlock()
		return
	}
	t.paused = false
	t.mu.Unlock()

	t.log.Debug("poll task resumed", zap.String("task", t.name))
	t.Kick()
}

// Kick requests an immediate run and restarts the interval. Coalesced if a
// kick is already pending.
func (t *Task) Kick() {
	select {
	case t.kickCh <- struct{}{}:
	default:
	}
}

func (t *Task) isPaused() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.paused
}

func (t *Task) loop(ctx context.Context) {
	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if t.isPaused() {
				continue
			}
			t.fn(ctx)
		case <-t.kickCh:
			if t.isPaused() {
				continue
			}
			ticker.Reset(t.interval)
			t.fn(ctx)
		case <-t.stopCh:
			t.log.Info("poll task stopped", zap.String("task", t.name))
			return
		case <-ctx.Done():
			t.log.Info("poll task cancelled", zap.String("task", t.name))
			return
		}
	}
}
