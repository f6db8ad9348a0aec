// Package pacer paces loops at a fixed frame rate.
package pacer

import (
	"errors"
	"sync"
	"time"
)

var ErrInvalidFPS = errors.New("pacer: fps must be positive")

// Pacer blocks callers until the next frame boundary.
type Pacer struct {
	fps    float64
	period time.Duration

	mu   sync.Mutex
	last time.Time
}

// New creates a pacer ticking fps times per second. The first frame starts
// now.
func New(fps float64) (*Pacer, error) {
	if fps <= 0 {
		return nil, ErrInvalidFPS
	}
	return &Pacer{
		fps:    fps,
		period: time.Duration(float64(time.Second) / fps),
		last:   time.Now(),
	}, nil
}

// FPS returns the configured frame rate.
func (p *Pacer) FPS() float64 {
	return p.fps
}

// Period returns the duration of one frame.
func (p *Pacer) Period() time.Duration {
	return p.period
}

// Frames converts d to a whole number of frames, rounding down.
func (p *Pacer) Frames(d time.Duration) int {
	if d <= 0 {
		return 0
	}
	return int(d / p.period)
}

// Wait sleeps out the rest of the frame that began with the previous Wait
// and starts the next one. A caller arriving while another caller waits
// blocks until that frame ends and returns without starting a frame of
// its own.
func (p *Pacer) Wait() {
	if !p.mu.TryLock() {
		p.mu.Lock()
		p.mu.Unlock() //nolint:staticcheck // only waits for the current frame
		return
	}
	defer p.mu.Unlock()

	if elapsed := time.Since(p.last); elapsed < p.period {
		time.Sleep(p.period - elapsed)
	}
	p.last = time.Now()
}
