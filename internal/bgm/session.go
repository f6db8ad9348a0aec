package bgm

import (
	"sync/atomic"

	"github.com/llehouerou/bgm/internal/dispatch"
)

// session wraps a caller callback so that one play or fade request is
// completed at most once, whichever of the router, the worker or a
// preempting request gets there first.
type session struct {
	cb    dispatch.Callback
	fired atomic.Bool
	// fade sessions are completed by the worker only. Device notifications
	// routed to them belong to the playback the fade took over.
	fade bool
}

func newSession(cb dispatch.Callback, fade bool) *session {
	if cb == nil {
		return nil
	}
	return &session{cb: cb, fade: fade}
}

// Notify implements dispatch.Callback for deliveries through the table.
func (s *session) Notify(n dispatch.Notify) {
	if s.fade {
		return
	}
	s.deliver(n)
}

func (s *session) deliver(n dispatch.Notify) {
	if s.fired.CompareAndSwap(false, true) {
		s.cb.Notify(n)
	}
}

// abort completes any session, fade or not, with Aborted.
func (s *session) abort() {
	s.deliver(dispatch.Aborted)
}

func (s *session) matcher() func(dispatch.Callback) bool {
	return func(cb dispatch.Callback) bool {
		other, ok := cb.(*session)
		return ok && other == s
	}
}
