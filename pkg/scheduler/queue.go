package scheduler

import (
	"slices"
	"time"
)

type (
	// TaskID identifies a queued task for cancellation
	TaskID string

	// TaskFunc is called once its scheduled time arrives
	TaskFunc func() error

	// Task is a callback bound to the instant it becomes due
	Task struct {
		At   time.Time
		Func TaskFunc
		ID   TaskID
	}

	// Queue stores pending tasks sorted by scheduled time, earliest first.
	// It is not safe for concurrent use
	Queue struct {
		tasks []*Task
		ids   *Registry
	}
)

// NewQueue creates an empty task queue
func NewQueue() *Queue {
	return &Queue{
		ids: NewRegistry(),
	}
}

// Insert adds a task at its sorted position and returns its identifier
func (q *Queue) Insert(at time.Time, fn TaskFunc) TaskID {
	t := &Task{
		At:   at,
		Func: fn,
		ID:   q.ids.Issue(),
	}
	q.tasks = slices.Insert(q.tasks, q.search(at), t)
	return t.ID
}

// Peek returns the earliest task without removing it
func (q *Queue) Peek() *Task {
	if len(q.tasks) == 0 {
		return nil
	}
	return q.tasks[0]
}

// PopDue removes and returns, earliest first, every leading task scheduled at
// or before now
func (q *Queue) PopDue(now time.Time) []*Task {
	n := 0
	for n < len(q.tasks) && !q.tasks[n].At.After(now) {
		n++
	}
	if n == 0 {
		return nil
	}
	due := slices.Clone(q.tasks[:n])
	for _, t := range due {
		q.ids.Release(t.ID)
	}
	q.tasks = slices.Delete(q.tasks, 0, n)
	return due
}

// Remove deletes the task with the given identifier, reporting whether it
// was pending
func (q *Queue) Remove(id TaskID) bool {
	if !q.ids.Release(id) {
		return false
	}
	idx := slices.IndexFunc(q.tasks, func(t *Task) bool {
		return t.ID == id
	})
	if idx < 0 {
		return false
	}
	q.tasks = slices.Delete(q.tasks, idx, idx+1)
	return true
}

// Clear drops every pending task and returns how many were removed
func (q *Queue) Clear() int {
	n := len(q.tasks)
	for _, t := range q.tasks {
		q.ids.Release(t.ID)
	}
	q.tasks = nil
	return n
}

// Len returns the number of pending tasks
func (q *Queue) Len() int {
	return len(q.tasks)
}

// Tasks returns a copy of the pending tasks in scheduled order
func (q *Queue) Tasks() []Task {
	res := make([]Task, len(q.tasks))
	for i, t := range q.tasks {
		res[i] = *t
	}
	return res
}

// search finds an insertion index for at. Within a run of equal times any
// index of the run may be returned
func (q *Queue) search(at time.Time) int {
	start, end := 0, len(q.tasks)-1
	for start <= end {
		mid := (start + end) / 2
		switch q.tasks[mid].At.Compare(at) {
		case -1:
			start = mid + 1
		case 1:
			end = mid - 1
		default:
			return mid
		}
	}
	return start
}
