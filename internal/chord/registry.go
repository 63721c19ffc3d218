package chord

import (
	"log/slog"
	"sync"
)

// Binding associates a chord string with a named action. Chord strings come
// from external settings and snippet data, so they may be malformed — Parse
// failures are reported and the binding skipped, never fatal.
type Binding struct {
	Chord  string
	Name   string
	Action func()
}

// Collision records two bindings normalizing to the same chord.
// The most recently registered binding wins.
type Collision struct {
	Chord   Chord
	Kept    string
	Dropped string
}

// Malformed records a binding whose chord string did not parse.
type Malformed struct {
	Name  string
	Chord string
	Err   error
}

// Report summarizes one Register call.
type Report struct {
	Registered int
	Collisions []Collision
	Malformed  []Malformed
}

type entry struct {
	name   string
	action func()
}

// Registry matches key events against the current binding set.
// Register replaces the whole set atomically, so it is safe to call
// whenever the settings or snippet collaborators change — stale bindings
// can never fire after the swap.
type Registry struct {
	mu       sync.RWMutex
	bindings map[Chord]entry
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{bindings: make(map[Chord]entry)}
}

// Register parses and installs bindings, replacing any previous set.
// Malformed chords are skipped; on a collision the later binding wins.
// Both conditions are logged and returned in the report.
func (r *Registry) Register(bindings []Binding) Report {
	var rep Report
	next := make(map[Chord]entry, len(bindings))

	for _, b := range bindings {
		c, err := Parse(b.Chord)
		if err != nil {
			rep.Malformed = append(rep.Malformed, Malformed{Name: b.Name, Chord: b.Chord, Err: err})
			slog.Warn("shortcut skipped, malformed chord", "binding", b.Name, "chord", b.Chord, "err", err)
			continue
		}
		if prev, ok := next[c]; ok {
			rep.Collisions = append(rep.Collisions, Collision{Chord: c, Kept: b.Name, Dropped: prev.name})
			slog.Warn("shortcut collision, last registration wins",
				"chord", c.String(), "kept", b.Name, "dropped", prev.name)
		}
		next[c] = entry{name: b.Name, action: b.Action}
	}
	rep.Registered = len(next)

	r.mu.Lock()
	r.bindings = next
	r.mu.Unlock()

	return rep
}

// Dispatch matches a key-down event against the registered bindings and
// invokes the bound action exactly once on a match. The returned bool tells
// the caller to prevent the event's default behavior and stop propagation.
//
// Events from editable targets and modifier-only keydowns never match.
// Matching is exact: a binding for ctrl+v does not fire while ctrl+shift
// is held.
func (r *Registry) Dispatch(e KeyEvent) bool {
	if e.FromEditable {
		return false
	}
	pressed := FromEvent(e)
	if pressed.IsZero() {
		return false
	}

	r.mu.RLock()
	ent, ok := r.bindings[pressed]
	r.mu.RUnlock()
	if !ok {
		return false
	}

	slog.Debug("shortcut matched", "chord", pressed.String(), "binding", ent.name)
	if ent.action != nil {
		ent.action()
	}
	return true
}

// Len returns the number of active bindings.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.bindings)
}
