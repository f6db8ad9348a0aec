// Package bgm manages background music tracks for a host application.
//
// A Manager keeps a registry of tracks keyed by path, drives each track
// through the Unloaded, Loaded, Playing and FadingOut states, and runs a
// worker goroutine that performs volume fadeouts paced by the caller's
// frame clock. Completion callbacks are delivered through a dispatch table
// shared by every manager of a Runtime and routed from the host window's
// message loop.
package bgm

import (
	"errors"

	"github.com/llehouerou/bgm/internal/device"
)

var (
	ErrInvalidWindow       = errors.New("bgm: invalid host window")
	ErrNilDriver           = errors.New("bgm: nil device driver")
	ErrHookInstall         = errors.New("bgm: install notification router")
	ErrHookRemove          = errors.New("bgm: remove notification router")
	ErrClosed              = errors.New("bgm: manager closed")
	ErrEmptyPath           = errors.New("bgm: empty path")
	ErrUnknownKey          = errors.New("bgm: unknown key")
	ErrNotLoaded           = errors.New("bgm: track not loaded")
	ErrNotPlaying          = errors.New("bgm: track not playing")
	ErrNilPacer            = errors.New("bgm: nil pacer")
	ErrNegativeDuration    = errors.New("bgm: negative fade duration")
	ErrQueueFull           = errors.New("bgm: fade queue full")
	ErrKeysExhausted       = errors.New("bgm: track keys exhausted")
	ErrPositionUnsupported = errors.New("bgm: driver does not report positions")
)

// Key identifies a loaded track. Keys are unique across every manager of a
// Runtime and are never reused.
type Key uint32

const (
	// InvalidKey is returned alongside errors.
	InvalidKey Key = 0xffffffff
	// MasterKey selects the first track that is playing or fading out.
	MasterKey Key = 0xfffffffe
)

// Status is the lifecycle state of a track.
type Status int32

const (
	Unloaded Status = iota
	Loaded
	Playing
	FadingOut
)

func (s Status) String() string {
	switch s {
	case Unloaded:
		return "Unloaded"
	case Loaded:
		return "Loaded"
	case Playing:
		return "Playing"
	case FadingOut:
		return "FadingOut"
	default:
		return "Unknown"
	}
}

// IsPlaying reports whether the track is audible (Playing or FadingOut).
func (s Status) IsPlaying() bool {
	return s >= Playing
}

// TrackInfo is a snapshot of one registry entry.
type TrackInfo struct {
	Key    Key
	Path   string
	Status Status
	// Volume is the level saved at load time, 0..device.MaxVolume.
	Volume int
	Handle device.Handle
}

// Pacer blocks until the next frame of the caller's clock.
type Pacer interface {
	Wait()
}

// PacerFunc adapts a function to Pacer.
type PacerFunc func()

// Wait calls f().
func (f PacerFunc) Wait() { f() }
