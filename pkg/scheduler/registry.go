package scheduler

import "github.com/google/uuid"

// Registry tracks the identifiers of tasks that are still pending
type Registry struct {
	live map[TaskID]struct{}
}

// NewRegistry creates an empty identifier registry
func NewRegistry() *Registry {
	return &Registry{
		live: map[TaskID]struct{}{},
	}
}

// Issue returns a fresh random identifier and marks it live. An identifier
// already live is never handed out twice
func (r *Registry) Issue() TaskID {
	for {
		id := TaskID(uuid.New().String())
		if _, ok := r.live[id]; ok {
			continue
		}
		r.live[id] = struct{}{}
		return id
	}
}

// Live reports whether id was issued and has not been released
func (r *Registry) Live(id TaskID) bool {
	_, ok := r.live[id]
	return ok
}

// Release marks id as no longer pending, reporting whether it was live
func (r *Registry) Release(id TaskID) bool {
	if _, ok := r.live[id]; !ok {
		return false
	}
	delete(r.live, id)
	return true
}

// Len returns the number of live identifiers
func (r *Registry) Len() int {
	return len(r.live)
}
