//go:build linux

package mpris

import (
	"fmt"
	"hash/fnv"
	"path/filepath"
	"strings"
	"sync"

	"github.com/godbus/dbus/v5"
	"github.com/quarckster/go-mpris-server/pkg/server"
	"github.com/quarckster/go-mpris-server/pkg/types"

	"github.com/llehouerou/bgm/internal/bgm"
	"github.com/llehouerou/bgm/internal/catalog"
	"github.com/llehouerou/bgm/internal/device"
)

// Adapter serves a Player on the session bus.
type Adapter struct {
	server *server.Server
}

// New creates and starts an MPRIS adapter for player.
func New(player Player, fade Fade) (*Adapter, error) {
	a := &Adapter{
		server: server.NewServer("bgm", &rootAdapter{}, newPlayerAdapter(player, fade)),
	}
	go func() {
		_ = a.server.Listen()
	}()
	return a, nil
}

// Close stops the adapter and releases D-Bus resources.
func (a *Adapter) Close() error {
	return a.server.Stop()
}

// rootAdapter implements OrgMprisMediaPlayer2Adapter.
type rootAdapter struct{}

func (r *rootAdapter) Raise() error {
	return nil
}

func (r *rootAdapter) Quit() error {
	return nil
}

func (r *rootAdapter) CanQuit() (bool, error) {
	return false, nil
}

func (r *rootAdapter) CanRaise() (bool, error) {
	return false, nil
}

func (r *rootAdapter) HasTrackList() (bool, error) {
	return false, nil
}

func (r *rootAdapter) Identity() (string, error) {
	return "bgm", nil
}

//nolint:revive // Method name required by interface.
func (r *rootAdapter) SupportedUriSchemes() ([]string, error) {
	return []string{"file"}, nil
}

func (r *rootAdapter) SupportedMimeTypes() ([]string, error) {
	return []string{"audio/mpeg", "audio/flac", "audio/ogg", "audio/wav"}, nil
}

// playerAdapter implements OrgMprisMediaPlayer2PlayerAdapter. Stop fades
// the playing track out; Pause stops it at once; Play resumes the last
// track seen playing.
type playerAdapter struct {
	player Player
	fade   Fade

	mu   sync.Mutex
	last bgm.Key
}

func newPlayerAdapter(player Player, fade Fade) *playerAdapter {
	return &playerAdapter{player: player, fade: fade, last: bgm.InvalidKey}
}

// playing returns the playing track and remembers it for Play.
func (p *playerAdapter) playing() (bgm.TrackInfo, bool) {
	info, ok := p.player.Playing()
	if ok {
		p.mu.Lock()
		p.last = info.Key
		p.mu.Unlock()
	}
	return info, ok
}

func (p *playerAdapter) lastKey() bgm.Key {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.last
}

func (p *playerAdapter) Next() error {
	return nil
}

func (p *playerAdapter) Previous() error {
	return nil
}

func (p *playerAdapter) Pause() error {
	info, ok := p.playing()
	if !ok {
		return nil
	}
	_, err := p.player.Stop(info.Key)
	return err
}

func (p *playerAdapter) PlayPause() error {
	if _, ok := p.playing(); ok {
		return p.Pause()
	}
	return p.Play()
}

func (p *playerAdapter) Stop() error {
	info, ok := p.playing()
	if !ok || info.Status == bgm.FadingOut {
		return nil
	}
	_, err := p.player.Fadeout(info.Key, p.fade.Pacer, p.fade.Ticks, nil)
	return err
}

func (p *playerAdapter) Play() error {
	if _, ok := p.playing(); ok {
		return nil
	}
	key := p.lastKey()
	if key == bgm.InvalidKey {
		return nil
	}
	return p.player.Play(key, nil)
}

func (p *playerAdapter) Seek(_ types.Microseconds) error {
	return nil
}

func (p *playerAdapter) SetPosition(_ string, _ types.Microseconds) error {
	return nil
}

//nolint:revive // Method name required by interface.
func (p *playerAdapter) OpenUri(_ string) error {
	return nil
}

func (p *playerAdapter) PlaybackStatus() (types.PlaybackStatus, error) {
	if _, ok := p.playing(); ok {
		return types.PlaybackStatusPlaying, nil
	}
	if p.lastKey() != bgm.InvalidKey {
		return types.PlaybackStatusPaused, nil
	}
	return types.PlaybackStatusStopped, nil
}

func (p *playerAdapter) Rate() (float64, error) {
	return 1.0, nil
}

func (p *playerAdapter) SetRate(_ float64) error {
	return nil
}

func (p *playerAdapter) Metadata() (types.Metadata, error) {
	info, ok := p.playing()
	if !ok {
		return types.Metadata{}, nil
	}

	meta := types.Metadata{
		TrackId: dbus.ObjectPath(formatTrackID(info.Path)),
		Title:   strings.TrimSuffix(filepath.Base(info.Path), filepath.Ext(info.Path)),
	}
	if artPath := catalog.CoverArt(info.Path); artPath != "" {
		meta.ArtUrl = "file://" + artPath
	}
	return meta, nil
}

func (p *playerAdapter) Volume() (float64, error) {
	info, ok := p.playing()
	if !ok {
		return 1.0, nil
	}
	return float64(info.Volume) / device.MaxVolume, nil
}

func (p *playerAdapter) SetVolume(_ float64) error {
	return nil
}

func (p *playerAdapter) Position() (int64, error) {
	info, ok := p.playing()
	if !ok {
		return 0, nil
	}
	pos, err := p.player.Position(info.Key)
	if err != nil {
		return 0, nil //nolint:nilerr // drivers without positions report the start
	}
	return pos.Microseconds(), nil
}

func (p *playerAdapter) MinimumRate() (float64, error) {
	return 1.0, nil
}

func (p *playerAdapter) MaximumRate() (float64, error) {
	return 1.0, nil
}

func (p *playerAdapter) CanGoNext() (bool, error) {
	return false, nil
}

func (p *playerAdapter) CanGoPrevious() (bool, error) {
	return false, nil
}

func (p *playerAdapter) CanPlay() (bool, error) {
	if _, ok := p.playing(); ok {
		return true, nil
	}
	return p.lastKey() != bgm.InvalidKey, nil
}

func (p *playerAdapter) CanPause() (bool, error) {
	return true, nil
}

func (p *playerAdapter) CanSeek() (bool, error) {
	return false, nil
}

func (p *playerAdapter) CanControl() (bool, error) {
	return true, nil
}

func formatTrackID(path string) string {
	h := fnv.New64a()
	h.Write([]byte(path))
	return fmt.Sprintf("/org/mpris/MediaPlayer2/Track/%x", h.Sum64())
}
