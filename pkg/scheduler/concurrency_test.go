package scheduler_test

import (
	"math/rand/v2"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kode4food/alarm/pkg/scheduler"
)

type eventLog struct {
	mu     sync.Mutex
	events []string
}

func (l *eventLog) add(e string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, e)
}

func (l *eventLog) snapshot() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return slices.Clone(l.events)
}

func TestLaterFireWaitsForRunningCallback(t *testing.T) {
	p := newFakePlatform()
	s := scheduler.New(0, p.deps())

	var events []string
	_, err := s.ScheduleAt(epoch.Add(20*time.Millisecond), func() error {
		events = append(events, "A start")
		// B falls due while A is still running
		p.Advance(10 * time.Millisecond)
		events = append(events, "A end")
		return nil
	})
	require.NoError(t, err)
	_, err = s.ScheduleAt(epoch.Add(30*time.Millisecond), func() error {
		events = append(events, "B start")
		events = append(events, "B end")
		return nil
	})
	require.NoError(t, err)

	p.Advance(20 * time.Millisecond)
	assert.Equal(t,
		[]string{"A start", "A end", "B start", "B end"}, events,
	)
	assert.Empty(t, s.Pending())
	assert.Empty(t, p.active())
}

func TestCallbacksDoNotOverlapOnSystemTimer(t *testing.T) {
	s := scheduler.New(0, scheduler.Dependencies{})
	defer s.Stop()

	log := &eventLog{}
	done := make(chan struct{})
	now := time.Now()
	_, err := s.ScheduleAt(now.Add(20*time.Millisecond), func() error {
		log.add("A start")
		time.Sleep(100 * time.Millisecond)
		log.add("A end")
		return nil
	})
	require.NoError(t, err)
	_, err = s.ScheduleAt(now.Add(30*time.Millisecond), func() error {
		log.add("B start")
		close(done)
		return nil
	})
	require.NoError(t, err)

	select {
	case <-done:
	case <-time.After(schedulerWaitTimeout):
		t.Fatal("second task did not run")
	}
	assert.Equal(t, []string{"A start", "A end", "B start"}, log.snapshot())
}

func TestStopInsideCallbackDropsDrainedTasks(t *testing.T) {
	p := newFakePlatform()
	s := scheduler.New(0, p.deps())

	var runs []string
	_, err := s.ScheduleAt(epoch.Add(time.Second), func() error {
		runs = append(runs, "first")
		s.Stop()
		return nil
	})
	require.NoError(t, err)
	_, err = s.ScheduleAt(epoch.Add(time.Second), func() error {
		runs = append(runs, "second")
		return nil
	})
	require.NoError(t, err)

	p.Advance(time.Second)
	assert.Len(t, runs, 1)
	assert.Empty(t, s.Pending())
}

func TestConcurrentScheduleCancelSetMaxDelay(t *testing.T) {
	s := scheduler.New(0, scheduler.Dependencies{})
	defer s.Stop()

	const (
		workers   = 8
		perWorker = 10
	)

	var (
		mu      sync.Mutex
		runs    = map[int]int{}
		callers sync.WaitGroup
		fired   sync.WaitGroup
	)
	record := func(key int) {
		mu.Lock()
		defer mu.Unlock()
		runs[key]++
	}

	fired.Add(workers * perWorker / 2)
	for w := range workers {
		callers.Add(1)
		go func() {
			defer callers.Done()
			for i := range perWorker {
				key := w*perWorker + i
				if i%2 == 1 {
					id, err := s.ScheduleAt(
						time.Now().Add(time.Hour), func() error {
							record(key)
							return nil
						},
					)
					assert.NoError(t, err)
					assert.NoError(t, s.Cancel(id))
					continue
				}

				in := time.Duration(5+rand.IntN(40)) * time.Millisecond
				_, err := s.ScheduleAt(time.Now().Add(in), func() error {
					record(key)
					fired.Done()
					return nil
				})
				assert.NoError(t, err)

				if i%3 == 0 {
					s.SetMaxDelay(
						time.Duration(1+rand.IntN(20)) * time.Millisecond,
					)
				}
				pending := s.Pending()
				assert.True(t, slices.IsSortedFunc(pending,
					func(a, b scheduler.Task) int {
						return a.At.Compare(b.At)
					},
				))
			}
		}()
	}
	callers.Wait()

	done := make(chan struct{})
	go func() {
		fired.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(schedulerWaitTimeout):
		t.Fatal("scheduled tasks did not all run")
	}

	assert.Empty(t, s.Pending())
	mu.Lock()
	defer mu.Unlock()
	assert.Len(t, runs, workers*perWorker/2)
	for key, n := range runs {
		assert.Equal(t, 0, key%perWorker%2, "cancelled task %d ran", key)
		assert.Equal(t, 1, n, "task %d ran %d times", key, n)
	}
}
