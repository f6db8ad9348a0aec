package bgm

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/llehouerou/bgm/internal/dispatch"
	"github.com/llehouerou/bgm/internal/host"
	"github.com/llehouerou/bgm/internal/router"
)

// Runtime holds the state shared by every manager of a process: the key
// counter, the dispatch table, and the notification router installed in
// the first manager's window while at least one manager is alive.
type Runtime struct {
	nextKey atomic.Uint32
	table   *dispatch.Table

	mu        sync.Mutex
	instances int
	window    host.Window
	hook      host.HookID
}

// NewRuntime creates an isolated runtime.
func NewRuntime() *Runtime {
	return &Runtime{table: dispatch.NewTable()}
}

var defaultRuntime = sync.OnceValue(NewRuntime)

// DefaultRuntime returns the process-wide runtime used by managers created
// without WithRuntime.
func DefaultRuntime() *Runtime {
	return defaultRuntime()
}

// Table returns the dispatch table shared by the runtime's managers.
func (rt *Runtime) Table() *dispatch.Table {
	return rt.table
}

// Instances returns the number of live managers.
func (rt *Runtime) Instances() int {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	return rt.instances
}

// HookInstalled reports whether the notification router is installed.
func (rt *Runtime) HookInstalled() bool {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	return rt.window != nil
}

func (rt *Runtime) allocKey() (Key, error) {
	for {
		k := rt.nextKey.Load()
		if Key(k) >= MasterKey {
			return InvalidKey, ErrKeysExhausted
		}
		if rt.nextKey.CompareAndSwap(k, k+1) {
			return Key(k), nil
		}
	}
}

// acquire registers a manager. The first manager installs the router into
// its window; on failure the count is restored and rollback runs before
// the instance mutex is released.
func (rt *Runtime) acquire(w host.Window, rollback func()) error {
	rt.mu.Lock()
	defer rt.mu.Unlock()

	rt.instances++
	if rt.instances > 1 {
		return nil
	}
	id, err := w.InstallHook(router.New(rt.table))
	if err != nil {
		rt.instances--
		rollback()
		return fmt.Errorf("%w: %w", ErrHookInstall, err)
	}
	rt.window = w
	rt.hook = id
	return nil
}

// release unregisters a manager, removing the router with the last one.
func (rt *Runtime) release() error {
	rt.mu.Lock()
	defer rt.mu.Unlock()

	rt.instances--
	if rt.instances > 0 || rt.window == nil {
		return nil
	}
	w, id := rt.window, rt.hook
	rt.window = nil
	rt.hook = 0
	if err := w.RemoveHook(id); err != nil {
		return fmt.Errorf("%w: %w", ErrHookRemove, err)
	}
	return nil
}
