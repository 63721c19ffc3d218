// Package clip provides the system clipboard behind a small interface.
//
// The real backend uses golang.design/x/clipboard. When the display
// environment is unavailable (headless server, container, denied permission)
// New falls back to a no-op backend whose reads fail with ErrUnavailable —
// callers treat that as an expected skip, not a fault.
package clip

import "errors"

// ErrUnavailable is returned by Read when no clipboard is accessible.
// Expected steady state on headless hosts; callers skip the cycle.
var ErrUnavailable = errors.New("clipboard unavailable")

// Backend is the interface all clipboard implementations satisfy.
type Backend interface {
	// Name returns a human-readable name for the backend.
	Name() string

	// Read returns the current clipboard text. Returns ErrUnavailable when
	// the clipboard cannot be accessed.
	Read() (string, error)

	// Write sets the clipboard text.
	Write(text string) error

	// Watch returns a channel that receives a signal whenever the clipboard
	// changes, including changes made through Write. The channel is never
	// closed. The caller should call Read() when it receives from the channel.
	Watch() <-chan struct{}

	// Close releases any resources held by the backend.
	Close()
}
