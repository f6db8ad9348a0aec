package catalog

import (
	"os"
	"path/filepath"
	"testing"
)

func TestCoverArt(t *testing.T) {
	dir := t.TempDir()
	trackPath := filepath.Join(dir, "track.mp3")

	if got := CoverArt(trackPath); got != "" {
		t.Errorf("CoverArt() = %q, want empty", got)
	}

	folderPath := filepath.Join(dir, "folder.png")
	if err := os.WriteFile(folderPath, []byte{}, 0o600); err != nil {
		t.Fatal(err)
	}
	if got := CoverArt(trackPath); got != folderPath {
		t.Errorf("CoverArt() = %q, want %q", got, folderPath)
	}

	// cover.jpg takes priority over folder.png
	coverPath := filepath.Join(dir, "cover.jpg")
	if err := os.WriteFile(coverPath, []byte{0xFF, 0xD8, 0xFF}, 0o600); err != nil {
		t.Fatal(err)
	}
	if got := CoverArt(trackPath); got != coverPath {
		t.Errorf("CoverArt() = %q, want %q (higher priority)", got, coverPath)
	}
}
