package keymap

import "github.com/charmbracelet/bubbles/key"

// Binding describes a single key binding.
type Binding struct {
	Action      Action
	Keys        []string
	Description string
	Context     string // "global", "catalog", "track"
}

// All contains every key binding of the player.
var All = []Binding{
	// Global
	{ActionQuit, []string{"q", "ctrl+c"}, "quit", "global"},
	{ActionHelp, []string{"?"}, "help", "global"},

	// Catalog
	{ActionMoveUp, []string{"k", "up"}, "up", "catalog"},
	{ActionMoveDown, []string{"j", "down"}, "down", "catalog"},
	{ActionJumpStart, []string{"g", "home"}, "first", "catalog"},
	{ActionJumpEnd, []string{"G", "end"}, "last", "catalog"},
	{ActionRescan, []string{"r"}, "rescan", "catalog"},

	// Track
	{ActionPlay, []string{"enter", " "}, "play", "track"},
	{ActionStop, []string{"s"}, "stop", "track"},
	{ActionFadeout, []string{"f"}, "fade out", "track"},
	{ActionFadeAll, []string{"F"}, "fade out playing", "track"},
	{ActionUnload, []string{"u"}, "unload", "track"},
}

// ByContext returns key bindings filtered by context.
func ByContext(context string) []Binding {
	var result []Binding
	for _, kb := range All {
		if kb.Context == context {
			result = append(result, kb)
		}
	}
	return result
}

// KeyBinding converts b into a bubbles key binding for help rendering.
func (b Binding) KeyBinding() key.Binding {
	keys := b.Keys
	if len(keys) == 0 {
		return key.NewBinding(key.WithDisabled())
	}
	return key.NewBinding(
		key.WithKeys(keys...),
		key.WithHelp(helpKey(keys[0]), b.Description),
	)
}

// helpKey returns the label shown for k in help lines.
func helpKey(k string) string {
	switch k {
	case " ":
		return "space"
	case "up":
		return "↑"
	case "down":
		return "↓"
	default:
		return k
	}
}
