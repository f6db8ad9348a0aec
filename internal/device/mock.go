// internal/device/mock.go
package device

import (
	"sync"
	"time"

	"github.com/llehouerou/bgm/internal/host"
)

// Op names a driver operation recorded by Mock.
type Op string

const (
	OpOpen       Op = "open"
	OpVolume     Op = "volume"
	OpSetVolume  Op = "setvolume"
	OpPlay       Op = "play"
	OpPlayNotify Op = "playnotify"
	OpPlayFrom   Op = "playfrom"
	OpStop       Op = "stop"
	OpClose      Op = "close"
)

// Call records one driver invocation.
type Call struct {
	Op     Op
	Handle Handle
	Path   string
	Level  int
	Offset time.Duration
}

type mockDevice struct {
	path    string
	volume  int
	playing bool
	notify  host.Window
}

// Mock is a test double for Driver. It is safe for concurrent use and
// emulates the pending-notification rules of the real drivers.
type Mock struct {
	mu         sync.Mutex
	initVolume int
	devices    map[Handle]*mockDevice
	calls      []Call
	failures   map[Op]error
	forced     *Handle
}

// NewMock creates a mock driver whose devices open at MaxVolume.
func NewMock() *Mock {
	return &Mock{
		initVolume: MaxVolume,
		devices:    make(map[Handle]*mockDevice),
		failures:   make(map[Op]error),
	}
}

func (m *Mock) Open(path string) (Handle, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, Call{Op: OpOpen, Path: path})
	if err := m.failures[OpOpen]; err != nil {
		return InvalidHandle, err
	}
	var h Handle
	if m.forced != nil {
		h = *m.forced
		m.forced = nil
	} else {
		h = NextHandle()
	}
	m.devices[h] = &mockDevice{path: path, volume: m.initVolume}
	return h, nil
}

func (m *Mock) Volume(h Handle) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, Call{Op: OpVolume, Handle: h})
	d, err := m.deviceLocked(OpVolume, h)
	if err != nil {
		return 0, err
	}
	return d.volume, nil
}

func (m *Mock) SetVolume(h Handle, level int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, Call{Op: OpSetVolume, Handle: h, Level: level})
	d, err := m.deviceLocked(OpSetVolume, h)
	if err != nil {
		return err
	}
	d.volume = level
	return nil
}

func (m *Mock) Play(h Handle) error {
	return m.start(Call{Op: OpPlay, Handle: h}, nil)
}

func (m *Mock) PlayNotify(h Handle, w host.Window) error {
	return m.start(Call{Op: OpPlayNotify, Handle: h}, w)
}

func (m *Mock) PlayFrom(h Handle, offset time.Duration) error {
	return m.start(Call{Op: OpPlayFrom, Handle: h, Offset: offset}, nil)
}

func (m *Mock) start(c Call, w host.Window) error {
	m.mu.Lock()
	m.calls = append(m.calls, c)
	d, err := m.deviceLocked(c.Op, c.Handle)
	if err != nil {
		m.mu.Unlock()
		return err
	}
	prev := d.notify
	d.notify = w
	d.playing = true
	m.mu.Unlock()

	if prev != nil {
		code := CodeAborted
		if w != nil {
			code = CodeSuperseded
		}
		_ = prev.Post(NotifyMessage(c.Handle, code))
	}
	return nil
}

func (m *Mock) Stop(h Handle) error {
	m.mu.Lock()
	m.calls = append(m.calls, Call{Op: OpStop, Handle: h})
	d, err := m.deviceLocked(OpStop, h)
	if err != nil {
		m.mu.Unlock()
		return err
	}
	prev := d.notify
	d.notify = nil
	d.playing = false
	m.mu.Unlock()

	if prev != nil {
		_ = prev.Post(NotifyMessage(h, CodeAborted))
	}
	return nil
}

func (m *Mock) Close(h Handle) error {
	m.mu.Lock()
	m.calls = append(m.calls, Call{Op: OpClose, Handle: h})
	d, err := m.deviceLocked(OpClose, h)
	if err != nil {
		m.mu.Unlock()
		return err
	}
	prev := d.notify
	delete(m.devices, h)
	m.mu.Unlock()

	if prev != nil {
		_ = prev.Post(NotifyMessage(h, CodeAborted))
	}
	return nil
}

func (m *Mock) deviceLocked(op Op, h Handle) (*mockDevice, error) {
	if err := m.failures[op]; err != nil {
		return nil, err
	}
	d, ok := m.devices[h]
	if !ok {
		return nil, ErrUnknownHandle
	}
	return d, nil
}

// Test helpers

// FailOn makes every later call of op return err. A nil err clears it.
func (m *Mock) FailOn(op Op, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err == nil {
		delete(m.failures, op)
		return
	}
	m.failures[op] = err
}

// SetInitialVolume sets the volume newly opened devices report.
func (m *Mock) SetInitialVolume(level int) {
	m.mu.Lock()
	m.initVolume = level
	m.mu.Unlock()
}

// ForceNextHandle makes the next successful Open return h.
func (m *Mock) ForceNextHandle(h Handle) {
	m.mu.Lock()
	m.forced = &h
	m.mu.Unlock()
}

// Calls returns a copy of every recorded call.
func (m *Mock) Calls() []Call {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Call(nil), m.calls...)
}

// CallsOf returns the recorded calls of op.
func (m *Mock) CallsOf(op Op) []Call {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Call
	for _, c := range m.calls {
		if c.Op == op {
			out = append(out, c)
		}
	}
	return out
}

// Levels returns the levels passed to SetVolume for h, in order.
func (m *Mock) Levels(h Handle) []int {
	var out []int
	for _, c := range m.CallsOf(OpSetVolume) {
		if c.Handle == h {
			out = append(out, c.Level)
		}
	}
	return out
}

// CurrentVolume returns the volume of an open device.
func (m *Mock) CurrentVolume(h Handle) (int, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.devices[h]
	if !ok {
		return 0, false
	}
	return d.volume, true
}

// IsPlaying reports whether h is open and playing.
func (m *Mock) IsPlaying(h Handle) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.devices[h]
	return ok && d.playing
}

// IsOpen reports whether h is open.
func (m *Mock) IsOpen(h Handle) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.devices[h]
	return ok
}

// Finish simulates h reaching the end of its stream.
func (m *Mock) Finish(h Handle) {
	m.mu.Lock()
	d, ok := m.devices[h]
	if !ok || !d.playing {
		m.mu.Unlock()
		return
	}
	prev := d.notify
	d.notify = nil
	d.playing = false
	m.mu.Unlock()

	if prev != nil {
		_ = prev.Post(NotifyMessage(h, CodeSuccessful))
	}
}

// Verify Mock implements Driver at compile time.
var _ Driver = (*Mock)(nil)
