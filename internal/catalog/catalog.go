// Package catalog lists the music files of a folder with the titles found
// in their tags.
package catalog

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/dhowden/tag"
	"github.com/dustin/go-humanize"

	"github.com/llehouerou/bgm/internal/device"
)

// Track is a music file found by Scan.
type Track struct {
	Path   string
	Title  string
	Artist string
	Size   int64
}

// Label is the text shown for the track: "Artist - Title" when the artist
// is known, the title otherwise.
func (t Track) Label() string {
	if t.Artist == "" {
		return t.Title
	}
	return t.Artist + " - " + t.Title
}

// HumanSize formats the file size, e.g. "4.2 MiB".
func (t Track) HumanSize() string {
	if t.Size <= 0 {
		return "0 B"
	}
	return humanize.IBytes(uint64(t.Size)) //nolint:gosec // size is positive above
}

// Scan walks dir and returns every file the drivers can open, sorted by
// path. Unreadable tags fall back to the file name; unreadable
// subdirectories are skipped.
func Scan(dir string) ([]Track, error) {
	if _, err := os.Stat(dir); err != nil {
		return nil, err
	}

	var tracks []Track
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if d != nil && d.IsDir() && path != dir {
				return fs.SkipDir
			}
			return err
		}
		if d.IsDir() || !device.IsMusicFile(path) {
			return nil
		}

		t := Track{Path: path}
		if info, err := d.Info(); err == nil {
			t.Size = info.Size()
		}
		readTags(&t)
		tracks = append(tracks, t)
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(tracks, func(i, j int) bool {
		return tracks[i].Path < tracks[j].Path
	})
	return tracks, nil
}

func readTags(t *Track) {
	t.Title = strings.TrimSuffix(filepath.Base(t.Path), filepath.Ext(t.Path))

	f, err := os.Open(t.Path)
	if err != nil {
		return
	}
	defer f.Close()

	m, err := tag.ReadFrom(f)
	if err != nil {
		return
	}
	if title := strings.TrimSpace(m.Title()); title != "" {
		t.Title = title
	}
	artist := m.AlbumArtist()
	if artist == "" {
		artist = m.Artist()
	}
	t.Artist = strings.TrimSpace(artist)
}
