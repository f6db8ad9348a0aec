package dispatch

import (
	"errors"
	"sync"

	"github.com/llehouerou/bgm/internal/device"
)

var ErrInvalidHandle = errors.New("dispatch: invalid device handle")

// Table maps device handles to completion callbacks. It is shared by every
// manager of a process because notifications carry only the handle.
type Table struct {
	mu      sync.Mutex
	entries map[device.Handle]Callback
}

// NewTable creates an empty table.
func NewTable() *Table {
	return &Table{entries: make(map[device.Handle]Callback)}
}

// Find returns the callback bound to h.
func (t *Table) Find(h device.Handle) (Callback, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	cb, ok := t.entries[h]
	return cb, ok
}

// Upsert binds cb to h, replacing any previous binding.
// A nil cb is accepted and leaves the table unchanged.
func (t *Table) Upsert(h device.Handle, cb Callback) error {
	if cb == nil {
		return nil
	}
	if h == device.InvalidHandle {
		return ErrInvalidHandle
	}
	t.mu.Lock()
	t.entries[h] = cb
	t.mu.Unlock()
	return nil
}

// Remove drops the binding of h, if any, and returns it.
func (t *Table) Remove(h device.Handle) (Callback, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	cb, ok := t.entries[h]
	delete(t.entries, h)
	return cb, ok
}

// RemoveIf drops the binding of h when match accepts it, atomically with
// the lookup. It reports whether a binding was removed.
func (t *Table) RemoveIf(h device.Handle, match func(Callback) bool) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	cb, ok := t.entries[h]
	if !ok || !match(cb) {
		return false
	}
	delete(t.entries, h)
	return true
}

// Len returns the number of bindings.
func (t *Table) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.entries)
}
