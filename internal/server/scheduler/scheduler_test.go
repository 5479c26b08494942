package scheduler

import (
	"bytes"
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mukimuddin/deadbox/internal/common"
	"github.com/mukimuddin/deadbox/internal/logging"
)

func TestRun_RunsImmediatelyThenOnInterval(t *testing.T) {
	var calls atomic.Int32
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	s := New("test", 20*time.Millisecond, func(ctx context.Context, now time.Time) error {
		calls.Add(1)
		return nil
	}, logging.Discard())

	done := make(chan struct{})
	go func() {
		s.Run(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool { return calls.Load() >= 1 }, time.Second, time.Millisecond)
	require.Eventually(t, func() bool { return calls.Load() >= 3 }, 2*time.Second, 5*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestRun_FirstRunDoesNotWaitForInterval(t *testing.T) {
	ran := make(chan time.Time, 1)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	fixed := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	s := New("startup", time.Hour, func(ctx context.Context, now time.Time) error {
		ran <- now
		return nil
	}, logging.Discard())
	s.now = func() time.Time { return fixed }

	go s.Run(ctx)

	select {
	case got := <-ran:
		assert.Equal(t, fixed, got)
	case <-time.After(time.Second):
		t.Fatal("job did not run at startup")
	}
}

func TestTick_LogsErrorsAndKeepsGoing(t *testing.T) {
	var buf bytes.Buffer
	s := New("flaky", time.Hour, func(ctx context.Context, now time.Time) error {
		return errors.New("db unavailable")
	}, logging.NewJSON(&buf, "debug"))

	s.tick(context.Background())
	s.tick(context.Background())

	assert.Equal(t, 2, bytes.Count(buf.Bytes(), []byte(`"msg":"run failed"`)))
	assert.Contains(t, buf.String(), "db unavailable")
}

func TestTick_PassInProgressIsAWarning(t *testing.T) {
	var buf bytes.Buffer
	s := New("busy", time.Hour, func(ctx context.Context, now time.Time) error {
		return common.ErrPassInProgress
	}, logging.NewJSON(&buf, "debug"))

	s.tick(context.Background())
	assert.Contains(t, buf.String(), `"level":"WARN"`)
	assert.NotContains(t, buf.String(), "run failed")
}

func TestTick_ShutdownIsNotAnError(t *testing.T) {
	var buf bytes.Buffer
	ctx, cancel := context.WithCancel(context.Background())
	s := New("stop", time.Hour, func(ctx context.Context, now time.Time) error {
		cancel()
		return ctx.Err()
	}, logging.NewJSON(&buf, "debug"))

	s.tick(ctx)
	assert.Contains(t, buf.String(), "run interrupted by shutdown")
	assert.NotContains(t, buf.String(), `"level":"ERROR"`)
}

func TestTick_PanicIsLoggedAsFailedRun(t *testing.T) {
	var buf bytes.Buffer
	var calls int
	s := New("crashy", time.Hour, func(ctx context.Context, now time.Time) error {
		calls++
		panic(errors.New("nil letter"))
	}, logging.NewJSON(&buf, "debug"))

	require.NotPanics(t, func() {
		s.tick(context.Background())
		s.tick(context.Background())
	})
	assert.Equal(t, 2, calls)
	assert.Equal(t, 2, bytes.Count(buf.Bytes(), []byte(`"msg":"run failed"`)))
	assert.Contains(t, buf.String(), "job panicked")
}

func TestRun_PanickingJobKeepsTicking(t *testing.T) {
	var calls atomic.Int32
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	s := New("crashy", 10*time.Millisecond, func(ctx context.Context, now time.Time) error {
		calls.Add(1)
		panic("unexpected state")
	}, logging.Discard())

	go s.Run(ctx)
	require.Eventually(t, func() bool { return calls.Load() >= 3 }, 2*time.Second, 5*time.Millisecond)
}

func TestRun_NonPositiveIntervalReturns(t *testing.T) {
	for _, interval := range []time.Duration{0, -time.Second} {
		var buf bytes.Buffer
		var called atomic.Bool
		s := New("misconfigured", interval, func(ctx context.Context, now time.Time) error {
			called.Store(true)
			return nil
		}, logging.NewJSON(&buf, "debug"))

		done := make(chan struct{})
		go func() {
			defer close(done)
			s.Run(context.Background())
		}()
		select {
		case <-done:
		case <-time.After(time.Second):
			t.Fatalf("Run(%v) did not return", interval)
		}
		assert.False(t, called.Load())
		assert.Contains(t, buf.String(), "interval must be positive")
	}
}
