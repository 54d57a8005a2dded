// Package usage tracks how many free generations each client has consumed per operation.
package usage

import (
	"context"
	"errors"
	"sync"
)

// ErrLimitReached is returned by TryConsume when no free generations are left.
var ErrLimitReached = errors.New("free generation limit reached")

// Counter is a persistent per-key integer.
type Counter interface {
	Get(ctx context.Context, key string) (int, error)
	Increment(ctx context.Context, key string) (int, error)
	// IncrementBelow adds one only while the count is below limit, as a single step.
	// It returns the resulting count and whether the increment happened.
	IncrementBelow(ctx context.Context, key string, limit int) (int, bool, error)
}

// Key scopes an operation counter to one client.
func Key(clientID, operation string) string {
	return clientID + "/" + operation
}

// MemoryCounter keeps counts in process memory.
type MemoryCounter struct {
	mu     sync.Mutex
	counts map[string]int
}

func NewMemoryCounter() *MemoryCounter {
	return &MemoryCounter{counts: make(map[string]int)}
}

func (m *MemoryCounter) Get(_ context.Context, key string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.counts[key], nil
}

func (m *MemoryCounter) Increment(_ context.Context, key string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counts[key]++
	return m.counts[key], nil
}

func (m *MemoryCounter) IncrementBelow(_ context.Context, key string, limit int) (int, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.counts[key] >= limit {
		return m.counts[key], false, nil
	}
	m.counts[key]++
	return m.counts[key], true, nil
}

// Status is the usage of one operation for one client. Limit 0 means unlimited.
type Status struct {
	Used      int `json:"used"`
	Limit     int `json:"limit"`
	Remaining int `json:"remaining"`
}

// Exhausted reports whether no free generations are left.
func (s Status) Exhausted() bool {
	return s.Limit > 0 && s.Remaining <= 0
}

func newStatus(used, limit int) Status {
	s := Status{Used: used, Limit: limit}
	if limit > 0 {
		s.Remaining = max(limit-used, 0)
	}
	return s
}

// Tracker applies per-operation limits on top of a Counter.
type Tracker struct {
	counter Counter
	limits  map[string]int
}

func NewTracker(counter Counter, limits map[string]int) *Tracker {
	if counter == nil {
		counter = NewMemoryCounter()
	}
	copied := make(map[string]int, len(limits))
	for k, v := range limits {
		copied[k] = v
	}
	return &Tracker{counter: counter, limits: copied}
}

func (t *Tracker) Status(ctx context.Context, clientID, operation string) (Status, error) {
	used, err := t.counter.Get(ctx, Key(clientID, operation))
	if err != nil {
		return Status{}, err
	}
	return newStatus(used, t.limits[operation]), nil
}

// TryConsume records one accepted use, refusing with ErrLimitReached once the limit is
// used up. Check and increment are one counter operation. Operations without a limit are
// counted and never refused.
func (t *Tracker) TryConsume(ctx context.Context, clientID, operation string) (Status, error) {
	key := Key(clientID, operation)
	limit := t.limits[operation]
	if limit <= 0 {
		used, err := t.counter.Increment(ctx, key)
		if err != nil {
			return Status{}, err
		}
		return newStatus(used, 0), nil
	}
	used, ok, err := t.counter.IncrementBelow(ctx, key, limit)
	if err != nil {
		return Status{}, err
	}
	st := newStatus(used, limit)
	if !ok {
		return st, ErrLimitReached
	}
	return st, nil
}
