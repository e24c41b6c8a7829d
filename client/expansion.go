package client

import "sync"

// Expansion tracks which list rows are expanded. Keys are whatever the
// feature identifies rows by: client name for API keys, the numeric id for
// Speak Up entries.
type Expansion[K comparable] struct {
	mu  sync.Mutex
	set map[K]struct{}
}

// NewExpansion creates an empty expansion set.
func NewExpansion[K comparable]() *Expansion[K] {
	return &Expansion[K]{set: make(map[K]struct{})}
}

// Toggle flips the expansion state of one row.
func (e *Expansion[K]) Toggle(key K) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, ok := e.set[key]; ok {
		delete(e.set, key)
	} else {
		e.set[key] = struct{}{}
	}
}

// IsExpanded reports whether the row is expanded.
func (e *Expansion[K]) IsExpanded(key K) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	_, ok := e.set[key]
	return ok
}

// Collapse closes every expanded row.
func (e *Expansion[K]) Collapse() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.set = make(map[K]struct{})
}
