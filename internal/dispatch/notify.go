// Package dispatch holds the process-wide table routing device completion
// notifications to the callbacks registered for each device handle.
package dispatch

import "github.com/llehouerou/bgm/internal/device"

// Notify is the outcome reported to a completion callback.
type Notify int

const (
	Successful Notify = iota
	Superseded
	Aborted
	Failure
)

// String returns the notification name.
func (n Notify) String() string {
	switch n {
	case Successful:
		return "Successful"
	case Superseded:
		return "Superseded"
	case Aborted:
		return "Aborted"
	case Failure:
		return "Failure"
	default:
		return "Unknown"
	}
}

// FromCode translates a raw device code. Unrecognized codes are failures.
func FromCode(code uint32) Notify {
	switch code {
	case device.CodeSuccessful:
		return Successful
	case device.CodeSuperseded:
		return Superseded
	case device.CodeAborted:
		return Aborted
	default:
		return Failure
	}
}

// Callback receives completion notifications.
type Callback interface {
	Notify(n Notify)
}

// CallbackFunc adapts a function to Callback.
type CallbackFunc func(Notify)

// Notify calls f(n).
func (f CallbackFunc) Notify(n Notify) { f(n) }
