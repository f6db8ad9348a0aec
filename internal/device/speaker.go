package device

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/effects"
	"github.com/gopxl/beep/v2/flac"
	"github.com/gopxl/beep/v2/mp3"
	"github.com/gopxl/beep/v2/speaker"
	"github.com/gopxl/beep/v2/vorbis"
	"github.com/gopxl/beep/v2/wav"

	"github.com/llehouerou/bgm/internal/host"
)

// Verify Speaker implements Driver and Positioner at compile time.
var (
	_ Driver     = (*Speaker)(nil)
	_ Positioner = (*Speaker)(nil)
)

type speakerTrack struct {
	path     string
	file     *os.File
	streamer beep.StreamSeekCloser
	format   beep.Format
	ctrl     *beep.Ctrl
	volume   *effects.Volume
	level    int

	// session increments on every start so a late end-of-stream callback
	// from an earlier playback is ignored.
	session uint64
	mixing  bool
	playing bool
	notify  host.Window
}

// Speaker drives the system audio output through beep's speaker.
// Every open handle is a streamer in the speaker's mixer; Stop pauses it
// in place, so a later Play resumes from the same position.
type Speaker struct {
	mu         sync.Mutex
	tracks     map[Handle]*speakerTrack
	sampleRate beep.SampleRate
	ready      bool
}

// NewSpeaker creates a driver. The speaker itself is initialized on the
// first Open, at that file's sample rate.
func NewSpeaker() *Speaker {
	return &Speaker{tracks: make(map[Handle]*speakerTrack)}
}

func (s *Speaker) Open(path string) (Handle, error) {
	f, err := os.Open(path)
	if err != nil {
		return InvalidHandle, err
	}

	streamer, format, err := decode(f, path)
	if err != nil {
		f.Close()
		return InvalidHandle, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.ready {
		s.sampleRate = format.SampleRate
		if err := speaker.Init(s.sampleRate, s.sampleRate.N(time.Second/10)); err != nil {
			streamer.Close()
			f.Close()
			return InvalidHandle, err
		}
		s.ready = true
	}

	var play beep.Streamer = streamer
	if format.SampleRate != s.sampleRate {
		play = beep.Resample(4, format.SampleRate, s.sampleRate, streamer)
	}
	ctrl := &beep.Ctrl{Streamer: play, Paused: true}

	h := NextHandle()
	s.tracks[h] = &speakerTrack{
		path:     path,
		file:     f,
		streamer: streamer,
		format:   format,
		ctrl:     ctrl,
		volume:   &effects.Volume{Streamer: ctrl, Base: 2},
		level:    MaxVolume,
	}
	return h, nil
}

func decode(f *os.File, path string) (beep.StreamSeekCloser, beep.Format, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case extMP3:
		return mp3.Decode(f)
	case extFLAC:
		return flac.Decode(f)
	case extWAV:
		return wav.Decode(f)
	case extOGG:
		return vorbis.Decode(f)
	default:
		return nil, beep.Format{}, fmt.Errorf("%w: %s", ErrUnsupportedFormat, ext)
	}
}

func (s *Speaker) Volume(h Handle) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tracks[h]
	if !ok {
		return 0, ErrUnknownHandle
	}
	return t.level, nil
}

func (s *Speaker) SetVolume(h Handle, level int) error {
	level = min(max(level, 0), MaxVolume)

	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tracks[h]
	if !ok {
		return ErrUnknownHandle
	}
	t.level = level
	speaker.Lock()
	t.volume.Silent = level == 0
	t.volume.Volume = levelToVolume(level)
	speaker.Unlock()
	return nil
}

// levelToVolume converts a 0-MaxVolume level to beep's base-2 Volume:
// full level is 0, half is -1, a quarter is -2.
func levelToVolume(level int) float64 {
	if level <= 0 {
		return -10
	}
	if level >= MaxVolume {
		return 0
	}
	return math.Log2(float64(level) / MaxVolume)
}

func (s *Speaker) Play(h Handle) error {
	return s.start(h, -1, nil)
}

func (s *Speaker) PlayNotify(h Handle, w host.Window) error {
	return s.start(h, -1, w)
}

func (s *Speaker) PlayFrom(h Handle, offset time.Duration) error {
	return s.start(h, max(offset, 0), nil)
}

// start resumes h, seeking to offset first when offset >= 0.
func (s *Speaker) start(h Handle, offset time.Duration, w host.Window) error {
	s.mu.Lock()
	t, ok := s.tracks[h]
	if !ok {
		s.mu.Unlock()
		return ErrUnknownHandle
	}

	speaker.Lock()
	var err error
	switch {
	case offset >= 0:
		pos := min(t.format.SampleRate.N(offset), max(t.streamer.Len()-1, 0))
		err = t.streamer.Seek(pos)
	case t.streamer.Position() >= t.streamer.Len():
		err = t.streamer.Seek(0)
	}
	if err == nil {
		t.ctrl.Paused = false
	}
	speaker.Unlock()
	if err != nil {
		s.mu.Unlock()
		return err
	}

	t.session++
	session := t.session
	prev := t.notify
	t.notify = w
	t.playing = true
	if !t.mixing {
		t.mixing = true
		speaker.Play(beep.Seq(t.volume, beep.Callback(func() {
			// Runs under the speaker lock; finish takes s.mu.
			go s.finish(h, session)
		})))
	}
	s.mu.Unlock()

	if prev != nil {
		code := CodeAborted
		if w != nil {
			code = CodeSuperseded
		}
		_ = prev.Post(NotifyMessage(h, code))
	}
	return nil
}

// finish handles the end of h's stream. The mixer drops a drained stream,
// so the track is re-added on the next start.
func (s *Speaker) finish(h Handle, session uint64) {
	s.mu.Lock()
	t, ok := s.tracks[h]
	if !ok {
		s.mu.Unlock()
		return
	}
	t.mixing = false
	if session != t.session || !t.playing {
		s.mu.Unlock()
		return
	}
	prev := t.notify
	t.notify = nil
	t.playing = false
	s.mu.Unlock()

	if prev != nil {
		_ = prev.Post(NotifyMessage(h, CodeSuccessful))
	}
}

func (s *Speaker) Stop(h Handle) error {
	s.mu.Lock()
	t, ok := s.tracks[h]
	if !ok {
		s.mu.Unlock()
		return ErrUnknownHandle
	}
	speaker.Lock()
	t.ctrl.Paused = true
	speaker.Unlock()
	prev := t.notify
	t.notify = nil
	t.playing = false
	s.mu.Unlock()

	if prev != nil {
		_ = prev.Post(NotifyMessage(h, CodeAborted))
	}
	return nil
}

func (s *Speaker) Close(h Handle) error {
	s.mu.Lock()
	t, ok := s.tracks[h]
	if !ok {
		s.mu.Unlock()
		return ErrUnknownHandle
	}
	delete(s.tracks, h)
	speaker.Lock()
	// A nil streamer drains the Ctrl, which lets the mixer drop it.
	t.ctrl.Streamer = nil
	speaker.Unlock()
	prev := t.notify
	s.mu.Unlock()

	// The decoders close the file along with the streamer.
	err := t.streamer.Close()
	_ = t.file.Close()
	if prev != nil {
		_ = prev.Post(NotifyMessage(h, CodeAborted))
	}
	return err
}

// Position returns the playback position of h.
func (s *Speaker) Position(h Handle) (time.Duration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tracks[h]
	if !ok {
		return 0, ErrUnknownHandle
	}
	speaker.Lock()
	pos := t.format.SampleRate.D(t.streamer.Position())
	speaker.Unlock()
	return pos, nil
}
