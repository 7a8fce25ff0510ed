package scheduler

import (
	"time"

	"github.com/benbjohnson/clock"
)

type (
	// Clock provides the current time for scheduling decisions
	Clock func() time.Time

	// Timer is a single-shot platform timer that can be cancelled
	Timer interface {
		Stop() bool
	}

	// TimerConstructor arms a platform timer that calls fire after delay
	TimerConstructor func(delay time.Duration, fire func()) Timer
)

// NewTimer arms the default system-backed timer
func NewTimer(delay time.Duration, fire func()) Timer {
	return time.AfterFunc(delay, fire)
}

// FromClock adapts a clock.Clock into the scheduler's clock and timer hooks
func FromClock(c clock.Clock) (Clock, TimerConstructor) {
	return c.Now, func(delay time.Duration, fire func()) Timer {
		return c.AfterFunc(delay, fire)
	}
}
