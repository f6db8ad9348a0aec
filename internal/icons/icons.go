// Package icons holds the track status glyphs of the player.
package icons

import "github.com/llehouerou/bgm/internal/bgm"

// Style represents the icon style to use.
type Style string

const (
	StyleNerd    Style = "nerd"
	StyleUnicode Style = "unicode"
	StyleNone    Style = "none"
)

// Icons holds the icon characters for the current style.
type Icons struct {
	Playing   string
	FadingOut string
	Loaded    string
	Stopped   string
}

var (
	nerdIcons = Icons{
		Playing:   "\uf04b",     // nf-fa-play
		FadingOut: "\U000f075e", // nf-md-volume_minus
		Loaded:    "\uf04c",     // nf-fa-pause
		Stopped:   "\uf04d",     // nf-fa-stop
	}

	unicodeIcons = Icons{
		Playing:   "▶",
		FadingOut: "↘",
		Loaded:    "·",
		Stopped:   "■",
	}

	noneIcons = Icons{
		Playing:   ">",
		FadingOut: "~",
		Loaded:    ".",
		Stopped:   "-",
	}

	// current holds the active icon set
	current = unicodeIcons
)

// Init selects the icon set for style. Unknown styles select unicode.
// Call this once at startup with the config value.
func Init(style string) {
	switch Style(style) {
	case StyleNerd:
		current = nerdIcons
	case StyleNone:
		current = noneIcons
	default:
		current = unicodeIcons
	}
}

// ForStatus returns the glyph of a track in status s. Unloaded tracks have
// none and get a blank of the same width.
func ForStatus(s bgm.Status) string {
	switch s {
	case bgm.Playing:
		return current.Playing
	case bgm.FadingOut:
		return current.FadingOut
	case bgm.Loaded:
		return current.Loaded
	default:
		return " "
	}
}

// Stopped returns the glyph shown when nothing plays.
func Stopped() string {
	return current.Stopped
}
