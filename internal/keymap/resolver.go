package keymap

import "github.com/charmbracelet/bubbles/key"

// Resolver maps key strings to actions.
type Resolver struct {
	bindings map[string]Action   // key -> action
	byAction map[Action][]string // action -> keys (for help/documentation)
	help     []key.Binding
	helpOf   map[Action]key.Binding
}

// NewResolver creates a resolver from bindings.
func NewResolver(bindings []Binding) *Resolver {
	r := &Resolver{
		bindings: make(map[string]Action),
		byAction: make(map[Action][]string),
		helpOf:   make(map[Action]key.Binding),
	}
	for _, b := range bindings {
		for _, k := range b.Keys {
			r.bindings[k] = b.Action
		}
		r.byAction[b.Action] = append(r.byAction[b.Action], b.Keys...)
		kb := b.KeyBinding()
		r.help = append(r.help, kb)
		if _, ok := r.helpOf[b.Action]; !ok {
			r.helpOf[b.Action] = kb
		}
	}
	for action, keys := range r.byAction {
		r.byAction[action] = dedupe(keys)
	}
	return r
}

// Resolve returns the action for a key, or empty string if not bound.
func (r *Resolver) Resolve(key string) Action {
	return r.bindings[key]
}

// KeysFor returns the keys bound to an action.
func (r *Resolver) KeysFor(action Action) []string {
	return r.byAction[action]
}

// ShortHelp implements help.KeyMap.
func (r *Resolver) ShortHelp() []key.Binding {
	var short []key.Binding
	for _, action := range []Action{ActionPlay, ActionStop, ActionFadeout, ActionQuit, ActionHelp} {
		if kb, ok := r.helpOf[action]; ok {
			short = append(short, kb)
		}
	}
	return short
}

// FullHelp implements help.KeyMap. Bindings are grouped in columns of four.
func (r *Resolver) FullHelp() [][]key.Binding {
	var cols [][]key.Binding
	for i := 0; i < len(r.help); i += 4 {
		cols = append(cols, r.help[i:min(i+4, len(r.help))])
	}
	return cols
}

// dedupe removes duplicate strings from a slice.
func dedupe(s []string) []string {
	seen := make(map[string]bool)
	result := make([]string, 0, len(s))
	for _, v := range s {
		if !seen[v] {
			seen[v] = true
			result = append(result, v)
		}
	}
	return result
}
