package scheduler_test

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"commercial-file-service/internal/scheduler"
	"commercial-file-service/pkg/metrics"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type funcTask struct {
	name string
	fn   func(ctx context.Context) error
}

func (t funcTask) Name() string                  { return t.name }
func (t funcTask) Run(ctx context.Context) error { return t.fn(ctx) }

func TestRegister(t *testing.T) {
	r := scheduler.New(context.Background())
	noop := funcTask{name: "noop", fn: func(context.Context) error { return nil }}

	require.NoError(t, r.Register("0 0 8 * * *", noop))
	assert.Error(t, r.Register("0 0 2 * * *", noop), "duplicate name")
	assert.Error(t, r.Register("every morning", funcTask{name: "bad", fn: noop.fn}))
}

func TestRunOnce(t *testing.T) {
	ctx := context.Background()
	r := scheduler.New(ctx)

	var calls int
	require.NoError(t, r.Register("0 0 8 * * *", funcTask{name: "run-once-ok", fn: func(context.Context) error {
		calls++
		return nil
	}}))
	boom := errors.New("boom")
	require.NoError(t, r.Register("0 0 8 * * *", funcTask{name: "run-once-fail", fn: func(context.Context) error {
		return boom
	}}))

	require.NoError(t, r.RunOnce(ctx, "run-once-ok"))
	assert.Equal(t, 1, calls)
	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.TaskRunsTotal.WithLabelValues("run-once-ok", "ok")))

	assert.ErrorIs(t, r.RunOnce(ctx, "run-once-fail"), boom)
	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.TaskRunsTotal.WithLabelValues("run-once-fail", "error")))

	assert.ErrorIs(t, r.RunOnce(ctx, "missing"), scheduler.ErrUnknownTask)
}

func TestRunOnce_RecoversPanic(t *testing.T) {
	ctx := context.Background()
	r := scheduler.New(ctx)
	require.NoError(t, r.Register("0 0 8 * * *", funcTask{name: "panicky", fn: func(context.Context) error {
		panic("nil map")
	}}))

	err := r.RunOnce(ctx, "panicky")
	assert.ErrorContains(t, err, "panicked")

	// the guard is released after a panic
	assert.ErrorContains(t, r.RunOnce(ctx, "panicky"), "panicked")
}

func TestRunOnce_SkipsOverlappingRun(t *testing.T) {
	ctx := context.Background()
	r := scheduler.New(ctx)

	started := make(chan struct{})
	release := make(chan struct{})
	require.NoError(t, r.Register("0 0 8 * * *", funcTask{name: "slow", fn: func(context.Context) error {
		close(started)
		<-release
		return nil
	}}))

	done := make(chan error, 1)
	go func() { done <- r.RunOnce(ctx, "slow") }()
	<-started

	assert.ErrorIs(t, r.RunOnce(ctx, "slow"), scheduler.ErrAlreadyRunning)

	close(release)
	assert.NoError(t, <-done)
}

func TestStartStop(t *testing.T) {
	r := scheduler.New(context.Background())

	var ticks atomic.Int32
	require.NoError(t, r.Register("* * * * * *", funcTask{name: "every-second", fn: func(context.Context) error {
		ticks.Add(1)
		return nil
	}}))

	r.Start()
	assert.Eventually(t, func() bool { return ticks.Load() > 0 }, 3*time.Second, 50*time.Millisecond)
	r.Stop()

	after := ticks.Load()
	time.Sleep(1200 * time.Millisecond)
	assert.Equal(t, after, ticks.Load())
}

func TestStop_LetsRunningTickFinish(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	r := scheduler.New(ctx)

	started := make(chan struct{})
	release := make(chan struct{})
	var calls atomic.Int32
	var finished atomic.Bool
	var runErr atomic.Value
	require.NoError(t, r.Register("* * * * * *", funcTask{name: "slow-sweep", fn: func(ctx context.Context) error {
		if calls.Add(1) > 1 {
			return nil
		}
		close(started)
		<-release
		runErr.Store(fmt.Sprint(ctx.Err()))
		finished.Store(true)
		return nil
	}}))

	r.Start()
	select {
	case <-started:
	case <-time.After(3 * time.Second):
		t.Fatal("task never started")
	}

	cancel()
	go func() {
		time.Sleep(100 * time.Millisecond)
		close(release)
	}()
	r.Stop()

	assert.True(t, finished.Load())
	assert.Equal(t, "<nil>", runErr.Load())
}
