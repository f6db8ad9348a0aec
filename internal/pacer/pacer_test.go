package pacer

import (
	"testing"
	"testing/synctest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_RejectsNonPositiveFPS(t *testing.T) {
	for _, fps := range []float64{0, -60} {
		p, err := New(fps)
		assert.Nil(t, p)
		assert.ErrorIs(t, err, ErrInvalidFPS)
	}
}

func TestPacer_Period(t *testing.T) {
	p, err := New(50)
	require.NoError(t, err)

	assert.Equal(t, 20*time.Millisecond, p.Period())
	assert.InDelta(t, 50.0, p.FPS(), 1e-9)
	assert.Equal(t, 25, p.Frames(500*time.Millisecond))
	assert.Equal(t, 0, p.Frames(-time.Second))
}

func TestPacer_WaitHoldsFrameRate(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		p, err := New(50)
		require.NoError(t, err)

		start := time.Now()
		for range 10 {
			p.Wait()
		}

		assert.Equal(t, 200*time.Millisecond, time.Since(start))
	})
}

func TestPacer_WaitAccountsForWork(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		p, err := New(50)
		require.NoError(t, err)

		start := time.Now()
		time.Sleep(15 * time.Millisecond)
		p.Wait()
		assert.Equal(t, 20*time.Millisecond, time.Since(start))

		// A frame that overran does not sleep.
		time.Sleep(30 * time.Millisecond)
		before := time.Now()
		p.Wait()
		assert.Equal(t, time.Duration(0), time.Since(before))
	})
}

func TestPacer_ConcurrentWaiterSharesFrame(t *testing.T) {
	p, err := New(100)
	require.NoError(t, err)

	// Hold the frame as a first waiter would.
	p.mu.Lock()
	frameStart := p.last

	done := make(chan struct{})
	go func() {
		p.Wait()
		close(done)
	}()

	select {
	case <-done:
		t.Fatal("follower returned while the frame was held")
	case <-time.After(20 * time.Millisecond):
	}

	p.mu.Unlock()
	<-done
	assert.Equal(t, frameStart, p.last, "follower must not start a frame")
}
