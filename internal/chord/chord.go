// Package chord parses keyboard chord strings and matches live key events
// against registered bindings.
//
// A chord is an order-independent set of modifiers plus exactly one primary
// key, compared case-insensitively. "ctrl+shift+v", "SHIFT+CTRL+V" and
// "cmd+shift+v" all normalize to the same chord: the platform command key is
// treated as ctrl so one binding string works everywhere.
package chord

import (
	"errors"
	"fmt"
	"strings"
)

// Modifier is a bitmask of held modifier keys.
type Modifier uint8

const (
	ModCtrl Modifier = 1 << iota
	ModAlt
	ModShift
)

var (
	ErrNoKey       = errors.New("chord has no primary key")
	ErrMultipleKey = errors.New("chord has more than one primary key")
)

// Chord is a normalized modifier set plus one primary key.
// Construct only via Parse or FromEvent so normalization is guaranteed.
type Chord struct {
	mods Modifier
	key  string
}

// Mods returns the modifier bitmask.
func (c Chord) Mods() Modifier { return c.mods }

// Key returns the lowercased primary key.
func (c Chord) Key() string { return c.key }

// IsZero reports whether the chord is the zero value (no primary key).
func (c Chord) IsZero() bool { return c.key == "" }

// String returns the canonical form, e.g. "ctrl+shift+v".
func (c Chord) String() string {
	var parts []string
	if c.mods&ModCtrl != 0 {
		parts = append(parts, "ctrl")
	}
	if c.mods&ModAlt != 0 {
		parts = append(parts, "alt")
	}
	if c.mods&ModShift != 0 {
		parts = append(parts, "shift")
	}
	parts = append(parts, c.key)
	return strings.Join(parts, "+")
}

// modifierNames maps accepted modifier spellings to their bit.
var modifierNames = map[string]Modifier{
	"ctrl":    ModCtrl,
	"control": ModCtrl,
	"cmd":     ModCtrl, // platform command key ≡ ctrl
	"command": ModCtrl,
	"meta":    ModCtrl,
	"super":   ModCtrl,
	"alt":     ModAlt,
	"option":  ModAlt,
	"shift":   ModShift,
}

// Parse normalizes a user-configured chord string like "Ctrl+Shift+V".
// Separator is "+", tokens are case-insensitive, modifier order is
// irrelevant, and exactly one non-modifier token must be present.
func Parse(s string) (Chord, error) {
	var c Chord
	for _, tok := range strings.Split(s, "+") {
		tok = strings.ToLower(strings.TrimSpace(tok))
		if tok == "" {
			continue
		}
		if m, ok := modifierNames[tok]; ok {
			c.mods |= m
			continue
		}
		if c.key != "" {
			return Chord{}, fmt.Errorf("%q: %w", s, ErrMultipleKey)
		}
		c.key = tok
	}
	if c.key == "" {
		return Chord{}, fmt.Errorf("%q: %w", s, ErrNoKey)
	}
	return c, nil
}

// KeyEvent is the per-keydown snapshot the host key hook delivers. It is
// ephemeral: derived from one event, never retained.
type KeyEvent struct {
	Key   string
	Ctrl  bool
	Alt   bool
	Shift bool
	Meta  bool

	// FromEditable marks events whose target is a text-entry control.
	// Such events are never matched, so normal typing is not hijacked.
	FromEditable bool
}

// FromEvent builds the pressed chord for a key event. Returns the zero Chord
// for modifier-only keydowns (pressing just "shift" is not a chord).
func FromEvent(e KeyEvent) Chord {
	key := strings.ToLower(e.Key)
	if _, isMod := modifierNames[key]; isMod || key == "" {
		return Chord{}
	}
	var c Chord
	c.key = key
	if e.Ctrl || e.Meta {
		c.mods |= ModCtrl
	}
	if e.Alt {
		c.mods |= ModAlt
	}
	if e.Shift {
		c.mods |= ModShift
	}
	return c
}
