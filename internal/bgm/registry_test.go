package bgm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEntry(key Key, path string, st Status) *entry {
	e := &entry{key: key, path: path}
	e.setStatus(st)
	return e
}

func TestRegistry_Lookup(t *testing.T) {
	r := newRegistry()
	r.add(newEntry(0, "a.mp3", Loaded))
	r.add(newEntry(1, "b.mp3", FadingOut))
	r.add(newEntry(2, "c.mp3", Playing))

	assert.Equal(t, "b.mp3", r.lookup(1).path)
	assert.Nil(t, r.lookup(7))
	assert.Equal(t, "c.mp3", r.lookupPath("c.mp3").path)
	assert.Nil(t, r.lookupPath("d.mp3"))

	// MasterKey picks the first audible entry in load order.
	master := r.lookup(MasterKey)
	require.NotNil(t, master)
	assert.Equal(t, Key(1), master.key)
}

func TestRegistry_LookupMasterNonePlaying(t *testing.T) {
	r := newRegistry()
	r.add(newEntry(0, "a.mp3", Loaded))
	r.add(newEntry(1, "b.mp3", Unloaded))

	assert.Nil(t, r.lookup(MasterKey))
}

func TestRegistry_Clear(t *testing.T) {
	r := newRegistry()
	r.add(newEntry(0, "a.mp3", Loaded))

	r.clear()

	assert.Equal(t, 0, r.len())
	assert.Nil(t, r.lookup(0))
	assert.Nil(t, r.lookupPath("a.mp3"))
}

func TestEntry_ClaimFade(t *testing.T) {
	tests := []struct {
		from Status
		ok   bool
		want Status
	}{
		{Unloaded, false, Unloaded},
		{Loaded, false, Loaded},
		{Playing, true, FadingOut},
		{FadingOut, true, FadingOut},
	}
	for _, tt := range tests {
		t.Run(tt.from.String(), func(t *testing.T) {
			e := newEntry(0, "a.mp3", tt.from)
			prev, ok := e.claimFade()
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.from, prev)
			assert.Equal(t, tt.want, e.loadStatus())
		})
	}
}

func TestStatus(t *testing.T) {
	tests := []struct {
		s       Status
		name    string
		playing bool
	}{
		{Unloaded, "Unloaded", false},
		{Loaded, "Loaded", false},
		{Playing, "Playing", true},
		{FadingOut, "FadingOut", true},
		{Status(9), "Unknown", true},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.name, tt.s.String())
		assert.Equal(t, tt.playing, tt.s.IsPlaying(), tt.name)
	}
}

func TestFadeRefs(t *testing.T) {
	var f fadeRefs
	assert.Nil(t, f.Idle())

	f.Add()
	f.Add()
	idle := f.Idle()
	require.NotNil(t, idle)

	f.Done()
	select {
	case <-idle:
		t.Fatal("idle with a reference left")
	default:
	}
	f.Done()
	<-idle
	assert.Nil(t, f.Idle())

	// A new reference after idling gets a fresh channel.
	f.Add()
	next := f.Idle()
	require.NotNil(t, next)
	assert.NotEqual(t, idle, next)
	f.Done()
	<-next
}
