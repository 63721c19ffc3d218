package dedupe

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var t0 = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func TestRejectsBlank(t *testing.T) {
	g := NewGuard(0)

	assert.False(t, g.ShouldAccept("", t0))
	assert.False(t, g.ShouldAccept("   ", t0))
	assert.False(t, g.ShouldAccept("\n\t", t0))
}

func TestAcceptsNewContentOnce(t *testing.T) {
	g := NewGuard(0)

	assert.True(t, g.ShouldAccept("hello", t0))
	// same clipboard re-read on the next tick
	assert.False(t, g.ShouldAccept("hello", t0.Add(2*time.Second)))
	assert.False(t, g.ShouldAccept("hello", t0.Add(4*time.Second)))

	assert.True(t, g.ShouldAccept("world", t0.Add(6*time.Second)))
}

func TestSuppressionWindow(t *testing.T) {
	g := NewGuard(3 * time.Second)

	g.RecordEmission("foo()", t0)

	assert.False(t, g.ShouldAccept("foo()", t0.Add(time.Second)))
	assert.False(t, g.ShouldAccept("foo()", t0.Add(2999*time.Millisecond)))

	// other content is unaffected by the window
	assert.True(t, g.ShouldAccept("bar", t0.Add(time.Second)))

	// after expiry the same content is acceptable again
	assert.True(t, g.ShouldAccept("foo()", t0.Add(4*time.Second)))
}

func TestEmissionDoesNotBlockDifferentContent(t *testing.T) {
	g := NewGuard(3 * time.Second)

	g.RecordEmission("one", t0)
	assert.True(t, g.ShouldAccept("two", t0.Add(time.Millisecond)))
	assert.True(t, g.ShouldAccept("three", t0.Add(2*time.Millisecond)))
}

func TestNewEmissionReplacesWindow(t *testing.T) {
	g := NewGuard(3 * time.Second)

	g.RecordEmission("first", t0)
	g.RecordEmission("second", t0.Add(time.Second))

	// only the latest window is active; captures are serialized so one
	// window at a time is sufficient
	assert.True(t, g.ShouldAccept("first", t0.Add(2*time.Second)))
	assert.False(t, g.ShouldAccept("second", t0.Add(2*time.Second)))
}

func TestReset(t *testing.T) {
	g := NewGuard(3 * time.Second)

	assert.True(t, g.ShouldAccept("hello", t0))
	g.RecordEmission("hello", t0)
	g.Reset()

	assert.True(t, g.ShouldAccept("hello", t0.Add(time.Millisecond)))
}
