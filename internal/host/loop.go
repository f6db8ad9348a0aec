package host

import (
	"context"
	"sync"
)

const defaultQueueSize = 64

// Verify Loop implements Window at compile time.
var _ Window = (*Loop)(nil)

type installedHook struct {
	id   HookID
	hook Hook
}

// Loop is a message pump. Messages posted to it are dispatched in order on
// the goroutine running Run: hooks first, most recently installed first,
// then the handler for messages no hook claimed.
type Loop struct {
	msgs    chan Message
	handler func(Message)

	mu     sync.RWMutex
	hooks  []installedHook
	nextID HookID

	done   chan struct{}
	closed bool
}

// NewLoop creates a loop delivering unhandled messages to handler.
// handler may be nil. size <= 0 selects a default queue size.
func NewLoop(handler func(Message), size int) *Loop {
	if size <= 0 {
		size = defaultQueueSize
	}
	return &Loop{
		msgs:    make(chan Message, size),
		handler: handler,
		done:    make(chan struct{}),
	}
}

// Post enqueues msg without blocking.
func (l *Loop) Post(msg Message) error {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.closed {
		return ErrClosed
	}
	select {
	case l.msgs <- msg:
		return nil
	default:
		return ErrQueueFull
	}
}

// InstallHook adds h in front of the hook chain.
func (l *Loop) InstallHook(h Hook) (HookID, error) {
	if h == nil {
		return 0, ErrNilHook
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return 0, ErrClosed
	}
	l.nextID++
	l.hooks = append(l.hooks, installedHook{id: l.nextID, hook: h})
	return l.nextID, nil
}

// RemoveHook removes the hook installed under id.
func (l *Loop) RemoveHook(id HookID) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i, h := range l.hooks {
		if h.id == id {
			l.hooks = append(l.hooks[:i], l.hooks[i+1:]...)
			return nil
		}
	}
	return ErrUnknownHook
}

// HookCount returns the number of installed hooks.
func (l *Loop) HookCount() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.hooks)
}

// Run pumps messages until ctx is canceled. Messages still queued when ctx
// ends are dropped; later posts fail with ErrClosed.
func (l *Loop) Run(ctx context.Context) error {
	defer l.shutdown()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg := <-l.msgs:
			l.Dispatch(msg)
		}
	}
}

// Done is closed once Run has returned.
func (l *Loop) Done() <-chan struct{} {
	return l.done
}

// Dispatch runs msg through the hook chain and the handler synchronously.
// Run calls it for every queued message; tests may call it directly.
func (l *Loop) Dispatch(msg Message) {
	l.mu.RLock()
	hooks := make([]Hook, 0, len(l.hooks))
	for i := len(l.hooks) - 1; i >= 0; i-- {
		hooks = append(hooks, l.hooks[i].hook)
	}
	l.mu.RUnlock()

	for _, h := range hooks {
		if h(msg) {
			return
		}
	}
	if l.handler != nil {
		l.handler(msg)
	}
}

func (l *Loop) shutdown() {
	l.mu.Lock()
	if !l.closed {
		l.closed = true
		close(l.done)
	}
	l.mu.Unlock()
}
