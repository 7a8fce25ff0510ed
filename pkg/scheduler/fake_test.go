package scheduler_test

import (
	"time"

	"github.com/kode4food/alarm/pkg/scheduler"
)

type (
	fakePlatform struct {
		now    time.Time
		timers []*fakeTimer
	}

	fakeTimer struct {
		delay   time.Duration
		due     time.Time
		fire    func()
		stopped bool
		fired   bool
	}
)

var epoch = time.Date(2026, 2, 27, 12, 0, 0, 0, time.UTC)

func newFakePlatform() *fakePlatform {
	return &fakePlatform{now: epoch}
}

func (p *fakePlatform) deps() scheduler.Dependencies {
	return scheduler.Dependencies{
		Clock:            p.Now,
		TimerConstructor: p.NewTimer,
	}
}

func (p *fakePlatform) Now() time.Time {
	return p.now
}

func (p *fakePlatform) NewTimer(
	delay time.Duration, fire func(),
) scheduler.Timer {
	t := &fakeTimer{
		delay: delay,
		due:   p.now.Add(delay),
		fire:  fire,
	}
	p.timers = append(p.timers, t)
	return t
}

// active returns the outstanding timers, of which there must never be more
// than one
func (p *fakePlatform) active() []*fakeTimer {
	var res []*fakeTimer
	for _, t := range p.timers {
		if !t.stopped && !t.fired {
			res = append(res, t)
		}
	}
	return res
}

// Advance moves the clock forward by d, firing the outstanding timer each
// time its due instant is reached
func (p *fakePlatform) Advance(d time.Duration) int {
	target := p.now.Add(d)
	fired := 0
	for {
		active := p.active()
		if len(active) != 1 || active[0].due.After(target) {
			break
		}
		t := active[0]
		p.now = t.due
		t.fired = true
		t.fire()
		fired++
	}
	p.now = target
	return fired
}

func (p *fakePlatform) delays() []time.Duration {
	res := make([]time.Duration, len(p.timers))
	for i, t := range p.timers {
		res[i] = t.delay
	}
	return res
}

func (t *fakeTimer) Stop() bool {
	wasActive := !t.stopped && !t.fired
	t.stopped = true
	return wasActive
}
