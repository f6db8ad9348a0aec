package catalog

import (
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/llehouerou/bgm/internal/device"
)

// settle is how long the watcher waits after the last relevant event before
// reporting a change, so a copy of many files yields a single rescan.
const settle = 250 * time.Millisecond

// Watcher reports changes to the music files below a directory.
type Watcher struct {
	watcher *fsnotify.Watcher
	changes chan struct{}
	errors  chan error
	closeCh chan struct{}
	done    chan struct{}
	once    sync.Once
}

// Watch starts watching dir and every directory below it.
func Watch(dir string) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	w := &Watcher{
		watcher: fw,
		changes: make(chan struct{}, 1),
		errors:  make(chan error, 1),
		closeCh: make(chan struct{}),
		done:    make(chan struct{}),
	}
	if err := w.addTree(dir); err != nil {
		_ = fw.Close()
		return nil, err
	}
	go w.run()
	return w, nil
}

// Changes yields one value per settled batch of changes. It is closed by
// Close.
func (w *Watcher) Changes() <-chan struct{} { return w.changes }

// Errors yields watch errors. Errors are dropped while a previous one is
// still pending.
func (w *Watcher) Errors() <-chan error { return w.errors }

func (w *Watcher) Close() error {
	var err error
	w.once.Do(func() {
		close(w.closeCh)
		err = w.watcher.Close()
		<-w.done
		close(w.changes)
		close(w.errors)
	})
	return err
}

func (w *Watcher) addTree(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			return fs.SkipDir
		}
		if !d.IsDir() {
			return nil
		}
		if err := w.watcher.Add(path); err != nil && path == root {
			return err
		}
		return nil
	})
}

func (w *Watcher) run() {
	defer close(w.done)

	timer := time.NewTimer(settle)
	timer.Stop()
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !w.relevant(event) {
				continue
			}
			timer.Reset(settle)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			select {
			case w.errors <- err:
			default:
			}
		case <-timer.C:
			select {
			case w.changes <- struct{}{}:
			default:
			}
		case <-w.closeCh:
			timer.Stop()
			return
		}
	}
}

// relevant reports whether event can change the catalog. New directories
// are added to the watch list as a side effect.
func (w *Watcher) relevant(event fsnotify.Event) bool {
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
		return false
	}
	if event.Has(fsnotify.Create) {
		if isDir(event.Name) {
			_ = w.addTree(event.Name)
			return true
		}
	}
	// Removed or renamed directories have no extension; rescanning is
	// the only way to learn what they held.
	if event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
		return filepath.Ext(event.Name) == "" || device.IsMusicFile(event.Name)
	}
	return device.IsMusicFile(event.Name)
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
