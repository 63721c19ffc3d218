// Package dedupe filters clipboard observations so that history only ever
// receives genuinely new content.
//
// The daemon both reads and writes the clipboard: copying a snippet puts its
// content on the clipboard, which the poller would then re-observe as a new
// capture and loop it straight back into history. The guard blocks that loop
// with a time-bounded suppression window recorded after every successful
// emission, and additionally drops re-reads of unchanged content.
//
// The window is a best-effort heuristic: an external copy of identical
// content inside the window is silently lost. Its duration just needs to
// exceed OS clipboard propagation latency.
package dedupe

import (
	"strings"
	"sync"
	"time"
)

// DefaultSuppressFor is the default suppression window duration.
const DefaultSuppressFor = 3 * time.Second

// Guard is safe for concurrent use; one mutex covers both the last-observed
// content and the suppression window so the accept decision is atomic.
type Guard struct {
	mu          sync.Mutex
	suppressFor time.Duration

	lastObserved    string
	suppressed      string
	suppressedUntil time.Time
}

// NewGuard returns a guard with the given suppression window duration.
// A non-positive duration selects DefaultSuppressFor.
func NewGuard(suppressFor time.Duration) *Guard {
	if suppressFor <= 0 {
		suppressFor = DefaultSuppressFor
	}
	return &Guard{suppressFor: suppressFor}
}

// ShouldAccept reports whether candidate is new content worth classifying.
// On accept, candidate becomes the last-observed content, so an immediate
// re-read of the same clipboard returns false.
func (g *Guard) ShouldAccept(candidate string, now time.Time) bool {
	if strings.TrimSpace(candidate) == "" {
		return false
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	if candidate == g.lastObserved {
		return false
	}
	if candidate == g.suppressed && now.Before(g.suppressedUntil) {
		return false
	}
	g.lastObserved = candidate
	return true
}

// RecordEmission opens a suppression window for content the daemon itself
// just wrote or persisted. Called by the emission sink only after the write
// succeeded; a failed write must not blacklist future captures of the same
// content. One window at a time is enough — emissions are serialized.
func (g *Guard) RecordEmission(content string, now time.Time) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.suppressed = content
	g.suppressedUntil = now.Add(g.suppressFor)
}

// Reset clears all guard state. Used when monitoring is torn down so a
// restart begins with a clean slate.
func (g *Guard) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.lastObserved = ""
	g.suppressed = ""
	g.suppressedUntil = time.Time{}
}
