package bgm

import (
	"sync"
	"sync/atomic"

	"github.com/llehouerou/bgm/internal/device"
)

// entry is one registered track. path and key never change; handle is
// written by the owning manager under its mutex while the entry is not
// referenced by a fade. status is shared with the fade worker and the
// notification router, so it is only accessed atomically.
type entry struct {
	key    Key
	path   string
	handle device.Handle
	status atomic.Int32
	volume atomic.Int32

	// fades counts fade messages still referencing the entry.
	fades fadeRefs
}

// fadeRefs counts outstanding fade messages. Unlike a WaitGroup it may be
// waited on while new references are taken.
type fadeRefs struct {
	mu   sync.Mutex
	n    int
	idle chan struct{}
}

func (f *fadeRefs) Add() {
	f.mu.Lock()
	if f.n == 0 {
		f.idle = make(chan struct{})
	}
	f.n++
	f.mu.Unlock()
}

func (f *fadeRefs) Done() {
	f.mu.Lock()
	f.n--
	if f.n == 0 {
		close(f.idle)
	}
	f.mu.Unlock()
}

// Idle returns a channel closed once no fade references remain, or nil
// when none are outstanding.
func (f *fadeRefs) Idle() <-chan struct{} {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.n == 0 {
		return nil
	}
	return f.idle
}

func (e *entry) loadStatus() Status {
	return Status(e.status.Load())
}

func (e *entry) setStatus(s Status) {
	e.status.Store(int32(s))
}

func (e *entry) casStatus(from, to Status) bool {
	return e.status.CompareAndSwap(int32(from), int32(to))
}

// claimFade moves a playing entry to FadingOut and reports the status it
// left. It fails when the entry is not playing.
func (e *entry) claimFade() (Status, bool) {
	for {
		st := e.loadStatus()
		if !st.IsPlaying() {
			return st, false
		}
		if e.casStatus(st, FadingOut) {
			return st, true
		}
	}
}

func (e *entry) info() TrackInfo {
	return TrackInfo{
		Key:    e.key,
		Path:   e.path,
		Status: e.loadStatus(),
		Volume: int(e.volume.Load()),
		Handle: e.handle,
	}
}

// registry keeps entries in load order with path and key indexes.
type registry struct {
	entries []*entry
	byPath  map[string]*entry
	byKey   map[Key]*entry
}

func newRegistry() *registry {
	return &registry{
		byPath: make(map[string]*entry),
		byKey:  make(map[Key]*entry),
	}
}

func (r *registry) add(e *entry) {
	r.entries = append(r.entries, e)
	r.byPath[e.path] = e
	r.byKey[e.key] = e
}

func (r *registry) lookupPath(path string) *entry {
	return r.byPath[path]
}

// lookup resolves key to its entry. MasterKey resolves to the first entry,
// in load order, that is playing or fading out.
func (r *registry) lookup(key Key) *entry {
	if key != MasterKey {
		return r.byKey[key]
	}
	for _, e := range r.entries {
		if e.loadStatus().IsPlaying() {
			return e
		}
	}
	return nil
}

func (r *registry) all() []*entry {
	return r.entries
}

func (r *registry) len() int {
	return len(r.entries)
}

func (r *registry) clear() {
	r.entries = nil
	clear(r.byPath)
	clear(r.byKey)
}
