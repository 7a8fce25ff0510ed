package scheduler_test

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kode4food/alarm/pkg/scheduler"
)

func TestFromClockDrivesClampedWaits(t *testing.T) {
	mock := clock.NewMock()
	now, makeTimer := scheduler.FromClock(mock)
	s := scheduler.New(100*time.Millisecond, scheduler.Dependencies{
		Clock:            now,
		TimerConstructor: makeTimer,
	})
	defer s.Stop()

	start := mock.Now()
	var runs atomic.Int32
	done := make(chan struct{}, 1)
	_, err := s.ScheduleAt(start.Add(250*time.Millisecond), func() error {
		runs.Add(1)
		done <- struct{}{}
		return nil
	})
	require.NoError(t, err)

	for _, next := range []time.Duration{
		200 * time.Millisecond, 250 * time.Millisecond,
	} {
		mock.Add(100 * time.Millisecond)
		want := start.Add(next)
		require.Eventually(t, func() bool {
			wake, ok := s.WakeUp()
			return ok && wake.Equal(want)
		}, schedulerWaitTimeout, time.Millisecond)
		assert.Equal(t, int32(0), runs.Load())
	}

	mock.Add(50 * time.Millisecond)
	select {
	case <-done:
	case <-time.After(schedulerWaitTimeout):
		t.Fatal("scheduled task did not run")
	}
	assert.Equal(t, int32(1), runs.Load())
	assert.Empty(t, s.Pending())
}

func TestNewTimerStops(t *testing.T) {
	fired := make(chan struct{}, 1)
	timer := scheduler.NewTimer(time.Hour, func() {
		fired <- struct{}{}
	})
	assert.True(t, timer.Stop())
	assert.False(t, timer.Stop())
}
