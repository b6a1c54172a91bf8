// Package workflow implements the client-side orchestration around the
// analysis/scoring/suggestion oracle: the editable document, the debounced
// rescore scheduler, suggestion patch application, and the controller state
// machine that ties them together.
package workflow

import (
	"sync"

	"github.com/jordan/content-optimizer/internal/types"
)

// Document owns the single mutable document of an editing session. All
// writes go through Update so ordering is deterministic and every change
// emits exactly one edit signal to subscribers.
type Document struct {
	mu        sync.Mutex
	state     types.DocumentState
	listeners []func()
}

// NewDocument creates a document seeded with an initial state.
func NewDocument(initial types.DocumentState) *Document {
	return &Document{state: initial.Clone()}
}

// Snapshot returns a consistent copy of the current document state.
func (d *Document) Snapshot() types.DocumentState {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state.Clone()
}

// Update is the single setter path. The mutate callback receives a copy of
// the current state; if the callback changed anything, the new state is
// installed and subscribers are signaled once.
func (d *Document) Update(mutate func(*types.DocumentState)) {
	d.mu.Lock()
	next := d.state.Clone()
	mutate(&next)
	changed := !d.state.Equal(next)
	if changed {
		d.state = next
	}
	listeners := d.listeners
	d.mu.Unlock()

	if !changed {
		return
	}
	for _, fn := range listeners {
		fn()
	}
}

// Subscribe registers a callback invoked after every effective change.
// Callbacks run on the caller's goroutine, outside the document lock.
func (d *Document) Subscribe(fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.listeners = append(d.listeners, fn)
}
