package poll

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTaskRunsOnInterval(t *testing.T) {
	var runs atomic.Int32
	task := NewTask("test", 20*time.Millisecond, func(context.Context) { runs.Add(1) }, nil)
	task.Start(context.Background())
	defer task.Stop()

	time.Sleep(130 * time.Millisecond)
	assert.GreaterOrEqual(t, runs.Load(), int32(3))
}

func TestPauseStopsRuns(t *testing.T) {
	var runs atomic.Int32
	task := NewTask("test", 20*time.Millisecond, func(context.Context) { runs.Add(1) }, nil)
	task.Start(context.Background())
	defer task.Stop()

	task.Pause()
	time.Sleep(120 * time.Millisecond)
	assert.Equal(t, int32(0), runs.Load())
}

func TestResumeRunsImmediately(t *testing.T) {
	var runs atomic.Int32
	task := NewTask("test", time.Hour, func(context.Context) { runs.Add(1) }, nil)
	task.Start(context.Background())
	defer task.Stop()

	task.Pause()
	task.Resume()

	// The immediate post-resume run does not wait for the hour interval.
	deadline := time.Now().Add(time.Second)
	for runs.Load() == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	assert.Equal(t, int32(1), runs.Load())
}

func TestResumeWithoutPauseIsNoop(t *testing.T) {
	var runs atomic.Int32
	task := NewTask("test", time.Hour, func(context.Context) { runs.Add(1) }, nil)
	task.Start(context.Background())
	defer task.Stop()

	task.Resume()
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, int32(0), runs.Load())
}

func TestStopEndsLoop(t *testing.T) {
	var runs atomic.Int32
	task := NewTask("test", 10*time.Millisecond, func(context.Context) { runs.Add(1) }, nil)
	task.Start(context.Background())

	time.Sleep(35 * time.Millisecond)
	task.Stop()
	time.Sleep(30 * time.Millisecond) // let any in-flight tick settle
	after := runs.Load()
	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, after, runs.Load())
}
