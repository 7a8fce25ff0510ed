package scheduler

import (
	"log/slog"
	"math"
	"time"

	"github.com/kode4food/alarm/pkg/log"
)

type (
	// Alarm owns the single outstanding platform timer and decides when it
	// must be replaced. It is not safe for concurrent use
	Alarm struct {
		now       Clock
		makeTimer TimerConstructor
		fire      FireFunc
		metrics   *Metrics
		maxDelay  time.Duration
		timer     Timer
		wakeUp    time.Time
		gen       uint64
	}

	// FireFunc receives the generation of the arm whose timer elapsed
	FireFunc func(gen uint64)
)

const (
	// DefaultMaxDelay caps a single wait when no maximum is configured
	DefaultMaxDelay = 24 * time.Hour

	// MaxTimerDelay is the longest wait a single platform timer is trusted
	// to represent
	MaxTimerDelay = math.MaxInt32 * time.Millisecond
)

// NewAlarm creates an idle alarm. fire is invoked from the platform timer's
// goroutine with the generation that armed it
func NewAlarm(
	now Clock, makeTimer TimerConstructor, maxDelay time.Duration,
	fire FireFunc, m *Metrics,
) *Alarm {
	return &Alarm{
		now:       now,
		makeTimer: makeTimer,
		fire:      fire,
		metrics:   m,
		maxDelay:  NormalizeMaxDelay(maxDelay),
	}
}

// NormalizeMaxDelay maps a non-positive delay to DefaultMaxDelay and clamps
// anything above MaxTimerDelay
func NormalizeMaxDelay(d time.Duration) time.Duration {
	switch {
	case d <= 0:
		return DefaultMaxDelay
	case d > MaxTimerDelay:
		return MaxTimerDelay
	default:
		return d
	}
}

// Configure replaces the delay ceiling and re-arms for head so the new
// ceiling applies to the wait already in progress
func (a *Alarm) Configure(maxDelay time.Duration, head *Task) {
	a.maxDelay = NormalizeMaxDelay(maxDelay)
	a.Rearm(head)
}

// NotifyEarliest re-arms for head when nothing is armed or candidate falls
// strictly before the armed wake-up. Reports whether the timer was replaced
func (a *Alarm) NotifyEarliest(candidate time.Time, head *Task) bool {
	if a.timer != nil && !candidate.Before(a.wakeUp) {
		return false
	}
	a.Rearm(head)
	return true
}

// Rearm disarms any outstanding timer and arms for head if there is one
func (a *Alarm) Rearm(head *Task) {
	a.Disarm()
	if head != nil {
		a.ArmFor(head)
	}
}

// ArmFor starts the platform timer for t, waiting no longer than the
// configured ceiling
func (a *Alarm) ArmFor(t *Task) {
	now := a.now()
	delay := max(0, t.At.Sub(now))
	delay = min(delay, a.maxDelay)

	a.gen++
	gen := a.gen
	a.wakeUp = now.Add(delay)
	a.timer = a.makeTimer(delay, func() {
		a.fire(gen)
	})
	a.metrics.timerArmed()

	slog.Debug("Alarm armed",
		log.TaskID(t.ID),
		log.Delay(delay),
		log.Time("wake_up", a.wakeUp))
}

// Disarm cancels the outstanding timer, if any
func (a *Alarm) Disarm() {
	if a.timer == nil {
		return
	}
	a.timer.Stop()
	a.timer = nil
	a.wakeUp = time.Time{}
}

// Claim consumes the armed timer if gen identifies it. A timer that elapsed
// after being replaced or disarmed is stale and is not claimed
func (a *Alarm) Claim(gen uint64) bool {
	if a.timer == nil || gen != a.gen {
		return false
	}
	a.timer = nil
	a.wakeUp = time.Time{}
	return true
}

// Armed reports whether a platform timer is outstanding
func (a *Alarm) Armed() bool {
	return a.timer != nil
}

// WakeUp returns the instant the outstanding timer is due to fire
func (a *Alarm) WakeUp() (time.Time, bool) {
	return a.wakeUp, a.timer != nil
}

// MaxDelay returns the current ceiling on a single wait
func (a *Alarm) MaxDelay() time.Duration {
	return a.maxDelay
}
