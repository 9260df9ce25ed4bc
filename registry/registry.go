// Package registry holds the trigger registry: a thread-safe map from event
// type to a priority-ordered, insertion-stable list of triggers.
package registry

import (
	"fmt"
	"sort"
	"sync"
)

// Trigger is the registry's own view of a registered trigger: just enough
// to order and look it up. Raw carries the caller's full trigger value
// (trigger.Trigger) opaquely, so this package never needs to import the
// root package and the two have no cyclic dependency.
type Trigger struct {
	ID        string
	EventType string
	Priority  int

	// IDPrefix, if set, is used instead of EventType as the base of an
	// auto-generated ID when ID is left blank. Ignored when ID is non-blank.
	IDPrefix string

	// Raw is the original value passed to Register; the lifecycle package
	// hands it to the caller-supplied Resolve function, which type-asserts it
	// back to execute the trigger.
	Raw any

	sequence uint64
}

// Stats summarizes registry occupancy for introspection.
type Stats struct {
	TotalTriggers   int
	TriggersByEvent map[string]int
}

// Registry is the trigger registry. A single RWMutex guards the top-level
// map; each event-type bucket is replaced wholesale on every mutation
// (copy-on-write) so a Snapshot taken under RLock remains valid after the
// lock is released, even if the registry is mutated concurrently.
type Registry struct {
	mu       sync.RWMutex
	buckets  map[string][]Trigger
	counter  uint64
}

// New creates an empty Registry.
func New() *Registry {
	return &Registry{buckets: make(map[string][]Trigger)}
}

// Register validates and inserts t, re-sorting its event-type bucket by
// (priority, insertion order). If t.ID is empty, an id is generated from
// t.IDPrefix (or the event type, if IDPrefix is blank) and a monotonic
// counter, so every auto-generated id is unique regardless of how many
// triggers share an IDPrefix or EventType. Returns the trigger's final id.
func (r *Registry) Register(t Trigger) (string, error) {
	if t.EventType == "" {
		return "", fmt.Errorf("registry: empty event type")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.counter++
	t.sequence = r.counter
	if t.ID == "" {
		base := t.EventType
		if t.IDPrefix != "" {
			base = t.IDPrefix
		}
		t.ID = fmt.Sprintf("%s-%d", base, t.sequence)
	}

	bucket := r.buckets[t.EventType]
	next := make([]Trigger, len(bucket), len(bucket)+1)
	copy(next, bucket)
	next = append(next, t)

	sort.SliceStable(next, func(i, j int) bool {
		if next[i].Priority != next[j].Priority {
			return next[i].Priority < next[j].Priority
		}
		return next[i].sequence < next[j].sequence
	})

	r.buckets[t.EventType] = next
	return t.ID, nil
}

// Unregister removes the trigger with the given id from whichever bucket
// holds it. Returns true if a trigger was removed.
func (r *Registry) Unregister(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	for eventType, bucket := range r.buckets {
		for i, t := range bucket {
			if t.ID != id {
				continue
			}
			next := make([]Trigger, 0, len(bucket)-1)
			next = append(next, bucket[:i]...)
			next = append(next, bucket[i+1:]...)
			if len(next) == 0 {
				delete(r.buckets, eventType)
			} else {
				r.buckets[eventType] = next
			}
			return true
		}
	}
	return false
}

// ClearEvent removes every trigger registered for eventType, returning how
// many were removed.
func (r *Registry) ClearEvent(eventType string) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := len(r.buckets[eventType])
	delete(r.buckets, eventType)
	return n
}

// ClearAll empties the registry.
func (r *Registry) ClearAll() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.buckets = make(map[string][]Trigger)
}

// Snapshot returns a defensive copy of the bucket for eventType, in dispatch
// order. An empty eventType returns the flat union of every bucket, each
// internally still in its own priority order. The returned slice is safe to
// iterate without holding any lock and is unaffected by later mutations.
func (r *Registry) Snapshot(eventType string) []Trigger {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if eventType != "" {
		bucket := r.buckets[eventType]
		out := make([]Trigger, len(bucket))
		copy(out, bucket)
		return out
	}

	total := 0
	for _, b := range r.buckets {
		total += len(b)
	}
	out := make([]Trigger, 0, total)
	for _, b := range r.buckets {
		out = append(out, b...)
	}
	return out
}

// Count returns the number of triggers for eventType ("" for all).
func (r *Registry) Count(eventType string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if eventType != "" {
		return len(r.buckets[eventType])
	}
	total := 0
	for _, b := range r.buckets {
		total += len(b)
	}
	return total
}

// Stats reports total occupancy and a per-event breakdown.
func (r *Registry) Stats() Stats {
	r.mu.RLock()
	defer r.mu.RUnlock()

	byEvent := make(map[string]int, len(r.buckets))
	total := 0
	for eventType, b := range r.buckets {
		byEvent[eventType] = len(b)
		total += len(b)
	}
	return Stats{TotalTriggers: total, TriggersByEvent: byEvent}
}
