// Package mpris exposes the background music manager over the MPRIS D-Bus
// interface, so desktop media keys can stop, resume and fade out tracks.
package mpris

import (
	"time"

	"github.com/llehouerou/bgm/internal/bgm"
	"github.com/llehouerou/bgm/internal/dispatch"
)

// Player is the playback surface MPRIS drives. *bgm.Manager implements it.
type Player interface {
	Playing() (bgm.TrackInfo, bool)
	Position(key bgm.Key) (time.Duration, error)
	Play(key bgm.Key, cb dispatch.Callback) error
	Stop(key bgm.Key) (bgm.Key, error)
	Fadeout(key bgm.Key, pacer bgm.Pacer, ticks int, cb dispatch.Callback) (bgm.Key, error)
}

// Fade configures the fadeout MPRIS Stop performs.
type Fade struct {
	Pacer bgm.Pacer
	Ticks int
}

// Verify Manager implements Player at compile time.
var _ Player = (*bgm.Manager)(nil)
