// Package host models the host application's window and its message loop.
//
// A Window accepts posted messages and lets callers hook the inbound message
// stream. Loop is a channel-pumped implementation that runs on its own
// goroutine, standing in for the application's UI thread.
package host

import "errors"

var (
	ErrQueueFull   = errors.New("host: message queue full")
	ErrClosed      = errors.New("host: loop closed")
	ErrNilHook     = errors.New("host: nil hook")
	ErrUnknownHook = errors.New("host: unknown hook")
)

// MessageType identifies the kind of a Message.
type MessageType uint32

const (
	// MsgNone is never posted; the zero Message has this type.
	MsgNone MessageType = iota
	// MsgDeviceNotify carries an audio device completion notification.
	// WParam holds the raw device notify code, LParam the device handle.
	MsgDeviceNotify
	// MsgUser is the first type available to applications.
	MsgUser MessageType = 0x400
)

// String returns the message type name.
func (t MessageType) String() string {
	switch {
	case t == MsgNone:
		return "None"
	case t == MsgDeviceNotify:
		return "DeviceNotify"
	case t >= MsgUser:
		return "User"
	default:
		return "Unknown"
	}
}

// Message is one entry of the host's inbound message stream.
type Message struct {
	Type   MessageType
	WParam uint64
	LParam uint64
}

// Hook observes messages before the window handler does.
// Returning true marks the message as handled and stops its propagation.
type Hook func(Message) bool

// HookID identifies an installed hook.
type HookID uint64

// Window is the host window notifications are addressed to.
type Window interface {
	Post(msg Message) error
	InstallHook(h Hook) (HookID, error)
	RemoveHook(id HookID) error
}
