// Package device defines the audio device driver the manager drives and
// its implementations.
package device

import (
	"errors"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"github.com/llehouerou/bgm/internal/host"
)

// Handle identifies an open device.
type Handle uint32

// InvalidHandle is never returned by a successful Open.
const InvalidHandle Handle = 0

var lastHandle atomic.Uint32

// NextHandle allocates a handle unique within the process. Every driver
// takes its handles here: completion notifications carry only the handle
// and are routed through one table shared by all managers.
func NextHandle() Handle {
	for {
		if h := Handle(lastHandle.Add(1)); h != InvalidHandle {
			return h
		}
	}
}

// MaxVolume is the nominal full volume level.
const MaxVolume = 1000

// Raw notification codes posted in host.MsgDeviceNotify's WParam.
const (
	CodeSuccessful uint32 = 0x01
	CodeSuperseded uint32 = 0x02
	CodeAborted    uint32 = 0x04
	CodeFailure    uint32 = 0x08
)

var (
	ErrUnknownHandle     = errors.New("device: unknown handle")
	ErrUnsupportedFormat = errors.New("device: unsupported format")
)

// Driver is the audio command subsystem. Every call is synchronous and
// may fail independently.
type Driver interface {
	Open(path string) (Handle, error)
	Volume(h Handle) (int, error)
	SetVolume(h Handle, level int) error
	Play(h Handle) error
	// PlayNotify starts playback and posts a host.MsgDeviceNotify to w
	// when the playback ends, is superseded or is aborted.
	PlayNotify(h Handle, w host.Window) error
	PlayFrom(h Handle, offset time.Duration) error
	Stop(h Handle) error
	Close(h Handle) error
}

// Positioner is implemented by drivers able to report the playback position.
type Positioner interface {
	Position(h Handle) (time.Duration, error)
}

// NotifyMessage builds the host message announcing code for h.
func NotifyMessage(h Handle, code uint32) host.Message {
	return host.Message{
		Type:   host.MsgDeviceNotify,
		WParam: uint64(code),
		LParam: uint64(h),
	}
}

// HandleOf extracts the device handle from a device notification.
func HandleOf(msg host.Message) Handle {
	return Handle(msg.LParam)
}

const (
	extMP3  = ".mp3"
	extFLAC = ".flac"
	extWAV  = ".wav"
	extOGG  = ".ogg"
)

// IsMusicFile reports whether path has an extension the drivers can open.
func IsMusicFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case extMP3, extFLAC, extWAV, extOGG:
		return true
	default:
		return false
	}
}
