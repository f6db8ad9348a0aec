package device

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/llehouerou/bgm/internal/host"
)

// recordingWindow captures posted messages.
type recordingWindow struct {
	posted []host.Message
}

func (w *recordingWindow) Post(m host.Message) error {
	w.posted = append(w.posted, m)
	return nil
}

func (w *recordingWindow) InstallHook(host.Hook) (host.HookID, error) { return 1, nil }

func (w *recordingWindow) RemoveHook(host.HookID) error { return nil }

func TestIsMusicFile(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"song.mp3", true},
		{"song.MP3", true},
		{"dir/song.flac", true},
		{"song.wav", true},
		{"song.ogg", true},
		{"song.opus", false},
		{"song.txt", false},
		{"song", false},
		{"dir.mp3/song", false},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, IsMusicFile(tt.path))
		})
	}
}

func TestLevelToVolume(t *testing.T) {
	assert.InDelta(t, 0.0, levelToVolume(MaxVolume), 1e-9)
	assert.InDelta(t, -1.0, levelToVolume(MaxVolume/2), 1e-9)
	assert.InDelta(t, -2.0, levelToVolume(MaxVolume/4), 1e-9)
	assert.InDelta(t, -10.0, levelToVolume(0), 1e-9)
	assert.InDelta(t, 0.0, levelToVolume(MaxVolume*2), 1e-9)
}

func TestNotifyMessage_RoundTrip(t *testing.T) {
	msg := NotifyMessage(42, CodeAborted)

	assert.Equal(t, host.MsgDeviceNotify, msg.Type)
	assert.Equal(t, uint64(CodeAborted), msg.WParam)
	assert.Equal(t, Handle(42), HandleOf(msg))
}

func TestMock_OpenAssignsDistinctHandles(t *testing.T) {
	m := NewMock()

	a, err := m.Open("a.mp3")
	require.NoError(t, err)
	b, err := m.Open("b.mp3")
	require.NoError(t, err)

	assert.NotEqual(t, InvalidHandle, a)
	assert.NotEqual(t, a, b)
	v, err := m.Volume(a)
	require.NoError(t, err)
	assert.Equal(t, MaxVolume, v)
}

func TestNextHandle_UniqueAcrossDrivers(t *testing.T) {
	first, second := NewMock(), NewMock()
	seen := make(map[Handle]bool)
	for range 3 {
		for _, m := range []*Mock{first, second} {
			h, err := m.Open("town.mp3")
			require.NoError(t, err)
			assert.NotEqual(t, InvalidHandle, h)
			assert.False(t, seen[h], "handle %d issued twice", h)
			seen[h] = true
		}
	}
}

func TestMock_FailOn(t *testing.T) {
	m := NewMock()
	boom := errors.New("boom")
	m.FailOn(OpOpen, boom)

	_, err := m.Open("a.mp3")
	require.ErrorIs(t, err, boom)

	m.FailOn(OpOpen, nil)
	_, err = m.Open("a.mp3")
	assert.NoError(t, err)
}

func TestMock_PendingNotifyRules(t *testing.T) {
	m := NewMock()
	w := &recordingWindow{}
	h, err := m.Open("a.mp3")
	require.NoError(t, err)

	require.NoError(t, m.PlayNotify(h, w))
	require.NoError(t, m.PlayNotify(h, w))
	require.NoError(t, m.Stop(h))
	require.NoError(t, m.PlayNotify(h, w))
	m.Finish(h)

	require.Len(t, w.posted, 3)
	assert.Equal(t, uint64(CodeSuperseded), w.posted[0].WParam)
	assert.Equal(t, uint64(CodeAborted), w.posted[1].WParam)
	assert.Equal(t, uint64(CodeSuccessful), w.posted[2].WParam)
	assert.False(t, m.IsPlaying(h))
}

func TestMock_StopWithoutNotifyPostsNothing(t *testing.T) {
	m := NewMock()
	w := &recordingWindow{}
	h, err := m.Open("a.mp3")
	require.NoError(t, err)

	require.NoError(t, m.Play(h))
	require.NoError(t, m.Stop(h))
	require.NoError(t, m.Close(h))

	assert.Empty(t, w.posted)
	assert.False(t, m.IsOpen(h))
	assert.ErrorIs(t, m.Stop(h), ErrUnknownHandle)
}

func TestMock_Levels(t *testing.T) {
	m := NewMock()
	h, err := m.Open("a.mp3")
	require.NoError(t, err)

	require.NoError(t, m.SetVolume(h, 500))
	require.NoError(t, m.SetVolume(h, 250))

	assert.Equal(t, []int{500, 250}, m.Levels(h))
	v, ok := m.CurrentVolume(h)
	assert.True(t, ok)
	assert.Equal(t, 250, v)
}
