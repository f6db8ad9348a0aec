package catalog

import (
	"fmt"
	"hash/fnv"
	"image"
	_ "image/jpeg" // cover art decoders
	"image/png"
	"os"
	"path/filepath"

	"github.com/nfnt/resize"
)

// ThumbnailSize is the edge length, in pixels, of notification icons.
const ThumbnailSize = 128

// Thumbnail returns a PNG copy of the cover image at coverPath scaled to fit
// within size x size pixels, cached under dir. The cache entry is keyed by
// the cover's path, size and modification time.
func Thumbnail(coverPath, dir string, size uint) (string, error) {
	info, err := os.Stat(coverPath)
	if err != nil {
		return "", err
	}
	h := fnv.New64a()
	fmt.Fprintf(h, "%s\x00%d\x00%d\x00%d", coverPath, info.Size(), info.ModTime().UnixNano(), size)
	out := filepath.Join(dir, fmt.Sprintf("%016x.png", h.Sum64()))
	if _, err := os.Stat(out); err == nil {
		return out, nil
	}

	f, err := os.Open(coverPath)
	if err != nil {
		return "", err
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	if err != nil {
		return "", fmt.Errorf("decode %s: %w", filepath.Base(coverPath), err)
	}
	thumb := resize.Thumbnail(size, size, img, resize.Lanczos3)

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	tmp, err := os.CreateTemp(dir, "thumb-*.png")
	if err != nil {
		return "", err
	}
	if err := png.Encode(tmp, thumb); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", err
	}
	if err := os.Rename(tmp.Name(), out); err != nil {
		os.Remove(tmp.Name())
		return "", err
	}
	return out, nil
}
