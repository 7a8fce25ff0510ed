package scheduler

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/kode4food/alarm/pkg/log"
)

type (
	// Scheduler runs callbacks at absolute instants using one platform timer
	// regardless of how many tasks are pending. It is safe for concurrent use
	Scheduler struct {
		now     Clock
		queue   *Queue
		alarm   *Alarm
		metrics *Metrics
		ready   []*Task
		running bool
		mu      sync.Mutex
	}

	// Dependencies supplies the scheduler's collaborators. Zero values fall
	// back to the system clock and timers, without metrics
	Dependencies struct {
		Clock            Clock
		TimerConstructor TimerConstructor
		Metrics          *Metrics
	}
)

var (
	ErrInvalidTime       = errors.New("invalid scheduling time")
	ErrMissingCallback   = errors.New("callback is missing")
	ErrMissingIdentifier = errors.New("task identifier is missing")
	ErrTaskPanicked      = errors.New("scheduled task panicked")
)

// New creates an idle scheduler. A non-positive maxDelay selects
// DefaultMaxDelay, and values above MaxTimerDelay are clamped
func New(maxDelay time.Duration, deps Dependencies) *Scheduler {
	if deps.Clock == nil {
		deps.Clock = time.Now
	}
	if deps.TimerConstructor == nil {
		deps.TimerConstructor = NewTimer
	}
	s := &Scheduler{
		now:     deps.Clock,
		queue:   NewQueue(),
		metrics: deps.Metrics,
	}
	s.alarm = NewAlarm(
		deps.Clock, deps.TimerConstructor, maxDelay, s.fire, deps.Metrics,
	)
	return s
}

// Schedule parses at with ParseTime and schedules fn for that instant. See
// ScheduleAt for the result
func (s *Scheduler) Schedule(at any, fn TaskFunc) (TaskID, error) {
	t, err := ParseTime(at)
	if err != nil {
		return "", err
	}
	return s.ScheduleAt(t, fn)
}

// ScheduleAt queues fn to run at the given instant and returns an identifier
// for cancellation. When at is not in the future, fn runs before ScheduleAt
// returns and the identifier is empty
func (s *Scheduler) ScheduleAt(at time.Time, fn TaskFunc) (TaskID, error) {
	if at.IsZero() {
		return "", fmt.Errorf("%w: zero time", ErrInvalidTime)
	}
	if fn == nil {
		return "", ErrMissingCallback
	}

	s.mu.Lock()
	if !at.After(s.now()) {
		s.mu.Unlock()
		s.metrics.taskImmediate()
		s.run("", fn)
		return "", nil
	}
	id := s.queue.Insert(at, fn)
	s.alarm.NotifyEarliest(at, s.queue.Peek())
	s.metrics.taskScheduled(s.queue.Len())
	s.mu.Unlock()
	return id, nil
}

// Cancel removes a pending task. Unknown identifiers, and tasks that have
// already run, are ignored
func (s *Scheduler) Cancel(id TaskID) error {
	if id == "" {
		return ErrMissingIdentifier
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.queue.Remove(id) {
		s.metrics.taskCancelled()
		s.metrics.setPending(s.queue.Len())
	}
	s.alarm.Rearm(s.queue.Peek())
	return nil
}

// SetMaxDelay replaces the ceiling on a single timer wait, applying the same
// defaults and clamping as New, and re-arms immediately
func (s *Scheduler) SetMaxDelay(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.alarm.Configure(d, s.queue.Peek())
}

// MaxDelay returns the effective ceiling on a single timer wait
func (s *Scheduler) MaxDelay() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.alarm.MaxDelay()
}

// WakeUp returns the instant the platform timer is armed for
func (s *Scheduler) WakeUp() (time.Time, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.alarm.WakeUp()
}

// Pending returns the queued tasks in the order they will run
func (s *Scheduler) Pending() []Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.queue.Tasks()
}

// Now returns the current time from the scheduler's clock
func (s *Scheduler) Now() time.Time {
	return s.now()
}

// Stop disarms the timer and discards every pending task, including due
// tasks that have not started yet. A callback already running is not
// interrupted. The scheduler remains usable afterward
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.alarm.Disarm()
	s.ready = nil
	if n := s.queue.Clear(); n > 0 {
		slog.Info("Scheduler stopped with pending tasks",
			slog.Int("dropped", n))
	}
	s.metrics.setPending(0)
}

// fire drains every due task and re-arms for the new head, then hands the
// drained tasks to the runner. Only one goroutine runs callbacks at a time:
// a fire that finds the runner busy queues its tasks behind the ones already
// drained and returns. Callbacks run without the lock held, so they may call
// back into the scheduler
func (s *Scheduler) fire(gen uint64) {
	s.mu.Lock()
	if !s.alarm.Claim(gen) {
		s.mu.Unlock()
		return
	}
	s.metrics.timerFired()
	s.ready = append(s.ready, s.queue.PopDue(s.now())...)
	s.alarm.Rearm(s.queue.Peek())
	s.metrics.setPending(s.queue.Len())
	if s.running {
		s.mu.Unlock()
		return
	}
	s.running = true
	s.mu.Unlock()

	for {
		t, ok := s.nextReady()
		if !ok {
			return
		}
		s.run(t.ID, t.Func)
	}
}

func (s *Scheduler) nextReady() (*Task, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.ready) == 0 {
		s.ready = nil
		s.running = false
		return nil, false
	}
	t := s.ready[0]
	s.ready[0] = nil
	s.ready = s.ready[1:]
	return t, true
}

func (s *Scheduler) run(id TaskID, fn TaskFunc) {
	if err := callTask(fn); err != nil {
		s.metrics.taskFailed()
		slog.Error("Scheduled task failed",
			log.TaskID(id),
			log.Error(err))
		return
	}
	s.metrics.taskExecuted()
}

func callTask(fn TaskFunc) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrTaskPanicked, r)
		}
	}()
	return fn()
}
