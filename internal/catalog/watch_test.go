package catalog

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func waitChange(t *testing.T, w *Watcher) {
	t.Helper()
	select {
	case _, ok := <-w.Changes():
		require.True(t, ok, "changes closed")
	case <-time.After(5 * time.Second):
		t.Fatal("timeout waiting for change")
	}
}

func assertNoChange(t *testing.T, w *Watcher) {
	t.Helper()
	select {
	case <-w.Changes():
		t.Fatal("unexpected change")
	case <-time.After(2 * settle):
	}
}

func TestWatch_NewMusicFile(t *testing.T) {
	dir := t.TempDir()
	w, err := Watch(dir)
	require.NoError(t, err)
	defer w.Close()

	writeFile(t, filepath.Join(dir, "town.mp3"), 10)
	waitChange(t, w)
}

func TestWatch_IgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	w, err := Watch(dir)
	require.NoError(t, err)
	defer w.Close()

	writeFile(t, filepath.Join(dir, "notes.txt"), 10)
	assertNoChange(t, w)
}

func TestWatch_Subdirectories(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "battle", "boss.flac"), 10)
	w, err := Watch(dir)
	require.NoError(t, err)
	defer w.Close()

	require.NoError(t, os.Remove(filepath.Join(dir, "battle", "boss.flac")))
	waitChange(t, w)
}

func TestWatch_MissingDir(t *testing.T) {
	_, err := Watch(filepath.Join(t.TempDir(), "nope"))
	assert.Error(t, err)
}

func TestWatch_CloseClosesChannels(t *testing.T) {
	w, err := Watch(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, w.Close())
	require.NoError(t, w.Close())

	_, ok := <-w.Changes()
	assert.False(t, ok)
	_, ok = <-w.Errors()
	assert.False(t, ok)
}

func TestWatcher_Relevant(t *testing.T) {
	w := &Watcher{}
	tests := []struct {
		name  string
		event fsnotify.Event
		want  bool
	}{
		{"music write", fsnotify.Event{Name: "/m/a.mp3", Op: fsnotify.Write}, true},
		{"music chmod", fsnotify.Event{Name: "/m/a.mp3", Op: fsnotify.Chmod}, false},
		{"text create", fsnotify.Event{Name: "/m/a.txt", Op: fsnotify.Create}, false},
		{"music removed", fsnotify.Event{Name: "/m/a.ogg", Op: fsnotify.Remove}, true},
		{"directory removed", fsnotify.Event{Name: "/m/battle", Op: fsnotify.Remove}, true},
		{"cover renamed", fsnotify.Event{Name: "/m/cover.jpg", Op: fsnotify.Rename}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, w.relevant(tt.event))
		})
	}
}
