package bgm

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/llehouerou/bgm/internal/device"
	"github.com/llehouerou/bgm/internal/dispatch"
	"github.com/llehouerou/bgm/internal/host"
)

// Manager owns a set of tracks played through one device driver and
// addressed to one host window. Its methods are safe for concurrent use,
// including from completion callbacks, except that Close must not be
// called from a callback completing a fadeout.
type Manager struct {
	rt     *Runtime
	window host.Window
	driver device.Driver
	log    zerolog.Logger
	worker *worker

	mu     sync.Mutex
	tracks *registry
	closed bool
	// aborted holds callbacks taken off the dispatch table under mu. They
	// are completed by unlock once mu is released.
	aborted []dispatch.Callback
}

// New creates a manager for window and driver and starts its fade worker.
// The first manager of a runtime installs the notification router into its
// window.
func New(window host.Window, driver device.Driver, opts ...Option) (*Manager, error) {
	if window == nil {
		return nil, ErrInvalidWindow
	}
	if driver == nil {
		return nil, ErrNilDriver
	}
	o := buildOptions(opts)

	m := &Manager{
		rt:     o.runtime,
		window: window,
		driver: driver,
		log:    o.log,
		tracks: newRegistry(),
	}
	m.worker = startWorker(driver, m.rt.table, m.log, o.queueSize)
	if err := m.rt.acquire(window, m.worker.terminate); err != nil {
		return nil, err
	}
	m.log.Debug().Int("instances", m.rt.Instances()).Msg("manager started")
	return m, nil
}

// Close stops the fade worker, unloads every track and detaches the
// manager from its runtime. It is safe to call more than once and on a nil
// manager.
func (m *Manager) Close() error {
	if m == nil {
		return nil
	}
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil
	}
	m.closed = true
	m.mu.Unlock()

	// Outside the mutex: callbacks completed by the worker may still call
	// in and must see ErrClosed rather than block.
	m.worker.terminate()

	var errs []error
	m.mu.Lock()
	for _, e := range m.tracks.all() {
		if err := m.unloadEntry(e); err != nil {
			errs = append(errs, fmt.Errorf("unload %q: %w", e.path, err))
		}
	}
	m.tracks.clear()
	m.unlock()

	if err := m.rt.release(); err != nil {
		errs = append(errs, err)
	}
	m.log.Debug().Msg("manager closed")
	return errors.Join(errs...)
}

// Load registers path and opens its device. Loading a registered path
// reopens it if needed and returns its existing key.
func (m *Manager) Load(path string) (Key, error) {
	if path == "" {
		return InvalidKey, ErrEmptyPath
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return InvalidKey, ErrClosed
	}

	if e := m.tracks.lookupPath(path); e != nil {
		if e.loadStatus() != Unloaded {
			return e.key, nil
		}
		h, vol, err := m.open(path)
		if err != nil {
			return InvalidKey, err
		}
		e.handle = h
		e.volume.Store(int32(vol))
		e.setStatus(Loaded)
		m.log.Debug().Uint32("key", uint32(e.key)).Str("path", path).Msg("track reloaded")
		return e.key, nil
	}

	h, vol, err := m.open(path)
	if err != nil {
		return InvalidKey, err
	}
	key, err := m.rt.allocKey()
	if err != nil {
		_ = m.driver.Close(h)
		return InvalidKey, err
	}
	e := &entry{key: key, path: path, handle: h}
	e.volume.Store(int32(vol))
	e.setStatus(Loaded)
	m.tracks.add(e)
	m.log.Debug().Uint32("key", uint32(key)).Str("path", path).Int("volume", vol).Msg("track loaded")
	return key, nil
}

func (m *Manager) open(path string) (device.Handle, int, error) {
	h, err := m.driver.Open(path)
	if err != nil {
		return device.InvalidHandle, 0, fmt.Errorf("open %q: %w", path, err)
	}
	vol, err := m.driver.Volume(h)
	if err != nil {
		_ = m.driver.Close(h)
		return device.InvalidHandle, 0, fmt.Errorf("read volume of %q: %w", path, err)
	}
	return h, vol, nil
}

// Unload stops the track and closes its device. The key stays registered
// and Load reopens it.
func (m *Manager) Unload(key Key) error {
	m.mu.Lock()
	defer m.unlock()
	e, err := m.lookup(key)
	if err != nil {
		return err
	}
	return m.unloadEntry(e)
}

func (m *Manager) unloadEntry(e *entry) error {
	for {
		if e.loadStatus() == Unloaded {
			return nil
		}
		if err := m.stopEntry(e); err != nil {
			return err
		}
		if !m.waitFades(e) {
			break
		}
	}
	if err := m.driver.Close(e.handle); err != nil {
		return fmt.Errorf("close %q: %w", e.path, err)
	}
	e.setStatus(Unloaded)
	m.log.Debug().Uint32("key", uint32(e.key)).Msg("track unloaded")
	return nil
}

// Play starts the track. A non-nil cb is completed exactly once: by the
// device at the end of the stream, or with Aborted when the playback is
// stopped or taken over by a fadeout. Playing a track that is already
// playing does nothing; playing a track that is fading out cancels the
// fade and restarts it.
func (m *Manager) Play(key Key, cb dispatch.Callback) error {
	m.mu.Lock()
	defer m.unlock()
	e, err := m.lookup(key)
	if err != nil {
		return err
	}
	return m.playEntry(e, 0, cb)
}

// PlayFrom starts the track at offset. Negative offsets play from the
// start. No completion callback is attached.
func (m *Manager) PlayFrom(key Key, offset time.Duration) error {
	m.mu.Lock()
	defer m.unlock()
	e, err := m.lookup(key)
	if err != nil {
		return err
	}
	return m.playEntry(e, max(offset, 0), nil)
}

func (m *Manager) playEntry(e *entry, offset time.Duration, cb dispatch.Callback) error {
	for {
		switch e.loadStatus() {
		case Playing:
			return nil
		case Unloaded:
			return ErrNotLoaded
		case FadingOut:
			// Playing again cancels the fade; the worker completes it with
			// Aborted.
			if err := m.stopEntry(e); err != nil {
				return err
			}
		}
		// A cancelled fade may still be restoring the volume.
		if !m.waitFades(e) {
			break
		}
		if m.closed {
			return ErrClosed
		}
	}

	var err error
	switch {
	case cb != nil:
		err = m.driver.PlayNotify(e.handle, m.window)
	case offset > 0:
		err = m.driver.PlayFrom(e.handle, offset)
	default:
		err = m.driver.Play(e.handle)
	}
	if err != nil {
		return fmt.Errorf("play %q: %w", e.path, err)
	}
	e.setStatus(Playing)

	if sess := newSession(cb, false); sess != nil {
		if err := m.rt.table.Upsert(e.handle, sess); err != nil {
			if serr := m.stopEntry(e); serr != nil {
				m.log.Warn().Err(serr).Uint32("key", uint32(e.key)).Msg("stop after bind failure")
			}
			return fmt.Errorf("bind callback of %q: %w", e.path, err)
		}
	}
	m.log.Debug().
		Uint32("key", uint32(e.key)).
		Dur("offset", offset).
		Bool("notify", cb != nil).
		Msg("track playing")
	return nil
}

// Stop halts the track identified by key, or by MasterKey the first track
// playing. Stopping a track that is not playing does nothing. It returns
// the key of the track.
func (m *Manager) Stop(key Key) (Key, error) {
	m.mu.Lock()
	defer m.unlock()
	e, err := m.lookup(key)
	if err != nil {
		return InvalidKey, err
	}
	if err := m.stopEntry(e); err != nil {
		return InvalidKey, err
	}
	return e.key, nil
}

func (m *Manager) stopEntry(e *entry) error {
	if !e.loadStatus().IsPlaying() {
		return nil
	}
	if err := m.driver.Stop(e.handle); err != nil {
		return fmt.Errorf("stop %q: %w", e.path, err)
	}
	e.setStatus(Loaded)
	if cb, ok := m.rt.table.Remove(e.handle); ok {
		m.aborted = append(m.aborted, cb)
	}
	m.log.Debug().Uint32("key", uint32(e.key)).Msg("track stopped")
	return nil
}

// Fadeout lowers the volume of the track identified by key, or by
// MasterKey the first track playing, to silence over ticks calls of pacer,
// then stops it and restores its volume. The request is queued for the
// manager's worker and Fadeout returns immediately with the track's key.
//
// A non-nil cb is completed exactly once: Successful when the ramp ran to
// the end, Aborted when it was cancelled by Stop, Unload, another Fadeout
// or Close. The callback previously attached to the track is completed
// with Aborted.
func (m *Manager) Fadeout(key Key, pacer Pacer, ticks int, cb dispatch.Callback) (Key, error) {
	if pacer == nil {
		return InvalidKey, ErrNilPacer
	}
	if ticks < 0 {
		return InvalidKey, ErrNegativeDuration
	}

	m.mu.Lock()
	e, err := m.lookup(key)
	if err != nil {
		m.mu.Unlock()
		return InvalidKey, err
	}
	err = m.fadeEntry(e, pacer, ticks, cb)
	m.unlock()
	if err != nil {
		return InvalidKey, err
	}
	return e.key, nil
}

// fadeEntry queues a fade of e. The callback bound to e until now is
// completed with Aborted.
func (m *Manager) fadeEntry(e *entry, pacer Pacer, ticks int, cb dispatch.Callback) error {
	if _, ok := e.claimFade(); !ok {
		return ErrNotPlaying
	}
	m.worker.setPacer(pacer)
	e.fades.Add()

	if prev, ok := m.rt.table.Remove(e.handle); ok {
		m.aborted = append(m.aborted, prev)
	}
	sess := newSession(cb, true)
	if sess != nil {
		if err := m.rt.table.Upsert(e.handle, sess); err != nil {
			e.fades.Done()
			m.abandonFade(e)
			return fmt.Errorf("bind fade callback of %q: %w", e.path, err)
		}
	}

	msg := message{kind: msgFade, entry: e, ticks: ticks, session: sess}
	if err := m.worker.post(msg); err != nil {
		if sess != nil {
			m.rt.table.RemoveIf(e.handle, sess.matcher())
		}
		e.fades.Done()
		m.abandonFade(e)
		return err
	}
	m.log.Debug().Uint32("key", uint32(e.key)).Int("ticks", ticks).Msg("fade queued")
	return nil
}

// waitFades waits until the worker holds no fade of e. mu is released while
// waiting, since the worker may be completing another fade whose callback
// calls into the manager; the caller must re-check e afterwards. It reports
// whether it had to wait.
func (m *Manager) waitFades(e *entry) bool {
	idle := e.fades.Idle()
	if idle == nil {
		return false
	}
	m.mu.Unlock()
	<-idle
	m.mu.Lock()
	return true
}

// abandonFade stops a track whose fade request could not be queued.
func (m *Manager) abandonFade(e *entry) {
	if err := m.stopEntry(e); err != nil {
		m.log.Warn().Err(err).Uint32("key", uint32(e.key)).Msg("stop after failed fade request")
	}
}

// Position reports the playback position of the track when the driver
// supports it.
func (m *Manager) Position(key Key) (time.Duration, error) {
	p, ok := m.driver.(device.Positioner)
	if !ok {
		return 0, ErrPositionUnsupported
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	e, err := m.lookup(key)
	if err != nil {
		return 0, err
	}
	if e.loadStatus() == Unloaded {
		return 0, ErrNotLoaded
	}
	return p.Position(e.handle)
}

// Tracks returns a snapshot of every registered track in load order.
func (m *Manager) Tracks() []TrackInfo {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]TrackInfo, 0, m.tracks.len())
	for _, e := range m.tracks.all() {
		out = append(out, e.info())
	}
	return out
}

// Track returns a snapshot of the track identified by key.
func (m *Manager) Track(key Key) (TrackInfo, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e := m.tracks.lookup(key)
	if e == nil {
		return TrackInfo{}, false
	}
	return e.info(), true
}

// Playing returns the track MasterKey currently designates.
func (m *Manager) Playing() (TrackInfo, bool) {
	return m.Track(MasterKey)
}

// unlock releases mu, then completes the callbacks aborted while it was
// held so that they may call back into the manager.
func (m *Manager) unlock() {
	aborted := m.aborted
	m.aborted = nil
	m.mu.Unlock()
	for _, cb := range aborted {
		if s, ok := cb.(*session); ok {
			s.abort()
		} else {
			cb.Notify(dispatch.Aborted)
		}
	}
}

func (m *Manager) lookup(key Key) (*entry, error) {
	if m.closed {
		return nil, ErrClosed
	}
	e := m.tracks.lookup(key)
	if e == nil {
		return nil, fmt.Errorf("%w: %d", ErrUnknownKey, key)
	}
	return e, nil
}
