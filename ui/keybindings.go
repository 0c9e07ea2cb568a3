package ui

import (
	"github.com/gdamore/tcell/v2"
)

// KeyAction represents an action that can be triggered by keybindings
type KeyAction struct {
	name    string
	handler func()
}

// KeyBindingManager manages all keybindings and dispatches events
type KeyBindingManager struct {
	bindings  map[tcell.Key]KeyAction // special key -> action mapping
	runeMap   map[rune]KeyAction      // rune -> action mapping
	sequences map[string]KeyAction    // two-rune sequences like "gg"
	pending   string                  // first rune of a sequence in progress
}

// NewKeyBindingManager creates a new key binding manager
func NewKeyBindingManager() *KeyBindingManager {
	return &KeyBindingManager{
		bindings:  make(map[tcell.Key]KeyAction),
		runeMap:   make(map[rune]KeyAction),
		sequences: make(map[string]KeyAction),
	}
}

// RegisterKeyBinding registers a single key binding
func (km *KeyBindingManager) RegisterKeyBinding(action KeyAction, keys []tcell.Key, runes []rune) {
	for _, key := range keys {
		km.bindings[key] = action
	}
	for _, r := range runes {
		km.runeMap[r] = action
	}
}

// RegisterSequence binds a two-rune sequence such as "gg"
func (km *KeyBindingManager) RegisterSequence(action KeyAction, seq string) {
	km.sequences[seq] = action
}

func (km *KeyBindingManager) startsSequence(r rune) bool {
	for seq := range km.sequences {
		if []rune(seq)[0] == r {
			return true
		}
	}
	return false
}

// HandleKey handles a keyboard event and returns true if it was consumed
func (km *KeyBindingManager) HandleKey(event *tcell.EventKey) bool {
	if event.Key() != tcell.KeyRune {
		km.pending = ""
		if action, ok := km.bindings[event.Key()]; ok {
			action.handler()
			return true
		}
		return false
	}

	r := event.Rune()

	if km.pending != "" {
		seq := km.pending + string(r)
		km.pending = ""
		if action, ok := km.sequences[seq]; ok {
			action.handler()
			return true
		}
		// not a sequence; treat the rune on its own
	}

	if km.startsSequence(r) {
		km.pending = string(r)
		return true
	}

	if action, ok := km.runeMap[r]; ok {
		action.handler()
		return true
	}
	return false
}

// ResetPending resets the pending key sequence
func (km *KeyBindingManager) ResetPending() {
	km.pending = ""
}
