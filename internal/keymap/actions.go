// Package keymap defines key bindings and action dispatch for the player.
package keymap

// Action represents a user-triggerable action.
type Action string

const (
	// Global actions
	ActionQuit Action = "quit"
	ActionHelp Action = "help"

	// Catalog navigation
	ActionMoveUp    Action = "move_up"
	ActionMoveDown  Action = "move_down"
	ActionJumpStart Action = "jump_start"
	ActionJumpEnd   Action = "jump_end"
	ActionRescan    Action = "rescan"

	// Track actions
	ActionPlay    Action = "play"    // enter - load and play the selected track
	ActionStop    Action = "stop"    // s - stop the selected track
	ActionFadeout Action = "fadeout" // f - fade out the selected track
	ActionFadeAll Action = "fade_all"
	ActionUnload  Action = "unload"
)
