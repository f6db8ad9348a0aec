package bgm

import (
	"sync/atomic"

	"github.com/rs/zerolog"

	"github.com/llehouerou/bgm/internal/device"
	"github.com/llehouerou/bgm/internal/dispatch"
)

const defaultQueueSize = 16

type messageKind int

const (
	msgFade messageKind = iota
	msgTerminate
)

type message struct {
	kind    messageKind
	entry   *entry
	ticks   int
	session *session
}

type pacerSlot struct {
	p Pacer
}

// worker performs fadeouts for one manager on its own goroutine.
type worker struct {
	driver device.Driver
	table  *dispatch.Table
	log    zerolog.Logger

	mailbox chan message
	pacer   atomic.Pointer[pacerSlot]
	ready   chan struct{}
	done    chan struct{}
}

// startWorker launches the worker and returns once it is receiving.
func startWorker(driver device.Driver, table *dispatch.Table, log zerolog.Logger, size int) *worker {
	if size <= 0 {
		size = defaultQueueSize
	}
	w := &worker{
		driver:  driver,
		table:   table,
		log:     log,
		mailbox: make(chan message, size),
		ready:   make(chan struct{}),
		done:    make(chan struct{}),
	}
	go w.run()
	<-w.ready
	return w
}

// setPacer replaces the pacer used by the next fade to start.
func (w *worker) setPacer(p Pacer) {
	w.pacer.Store(&pacerSlot{p: p})
}

func (w *worker) currentPacer() Pacer {
	if slot := w.pacer.Load(); slot != nil {
		return slot.p
	}
	return PacerFunc(func() {})
}

// post queues msg without blocking.
func (w *worker) post(msg message) error {
	select {
	case w.mailbox <- msg:
		return nil
	default:
		return ErrQueueFull
	}
}

// terminate stops the worker and waits for it to exit. The in-flight fade
// and every queued fade are completed with Aborted first.
func (w *worker) terminate() {
	w.mailbox <- message{kind: msgTerminate}
	<-w.done
}

func (w *worker) run() {
	defer close(w.done)
	close(w.ready)

	var next *message
	for {
		var msg message
		if next != nil {
			msg, next = *next, nil
		} else {
			msg = <-w.mailbox
		}
		switch msg.kind {
		case msgTerminate:
			w.drain()
			return
		case msgFade:
			next = w.fade(msg)
		}
	}
}

// fade ramps the entry's volume down over msg.ticks pacer ticks, then stops
// the device and restores its volume. It returns the message that preempted
// the ramp, if any.
func (w *worker) fade(msg message) *message {
	e := msg.entry
	pacer := w.currentPacer()
	saved := int(e.volume.Load())
	n := msg.ticks

	completed := true
	var preempt *message
	// interrupted polls once for a fresher message and for a status change
	// made by the owning manager.
	interrupted := func() bool {
		select {
		case m := <-w.mailbox:
			preempt = &m
			return true
		default:
		}
		return e.loadStatus() != FadingOut
	}

	for tick := 1; tick <= n; tick++ {
		if interrupted() {
			completed = false
			break
		}
		level := saved * (n - tick) / n
		if err := w.driver.SetVolume(e.handle, level); err != nil {
			w.log.Warn().Err(err).Uint32("key", uint32(e.key)).Int("level", level).Msg("fade volume")
		}
		pacer.Wait()
	}
	if completed && interrupted() {
		completed = false
	}

	// A fresher fade of the same entry takes the device over as it is.
	handover := preempt != nil && preempt.kind == msgFade && preempt.entry == e
	w.finish(msg, completed, !handover)
	return preempt
}

// drain aborts every fade request still queued.
func (w *worker) drain() {
	for {
		select {
		case msg := <-w.mailbox:
			if msg.kind == msgFade {
				w.finish(msg, false, true)
			}
		default:
			return
		}
	}
}

// finish releases msg's entry and completes its session. With settle set
// the device is stopped, its saved volume restored and the entry returned
// to Loaded unless someone else moved it already.
func (w *worker) finish(msg message, completed, settle bool) {
	e := msg.entry
	if settle {
		if err := w.driver.Stop(e.handle); err != nil {
			w.log.Warn().Err(err).Uint32("key", uint32(e.key)).Msg("fade stop")
		}
		if err := w.driver.SetVolume(e.handle, int(e.volume.Load())); err != nil {
			w.log.Warn().Err(err).Uint32("key", uint32(e.key)).Msg("fade restore volume")
		}
		e.casStatus(FadingOut, Loaded)
	}
	if msg.session != nil {
		w.table.RemoveIf(e.handle, msg.session.matcher())
	}
	e.fades.Done()

	w.log.Debug().
		Uint32("key", uint32(e.key)).
		Int("ticks", msg.ticks).
		Bool("completed", completed).
		Msg("fade finished")

	if msg.session == nil {
		return
	}
	if completed {
		msg.session.deliver(dispatch.Successful)
	} else {
		msg.session.abort()
	}
}
