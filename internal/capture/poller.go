// Package capture runs the clipboard observation pipeline.
//
// Two producers feed one trigger channel: a ticker that fires while
// monitoring is enabled, and the backend's copy-event watcher (delayed by a
// short settle so the OS clipboard has finished updating). A single consumer
// drains the channel, reads the clipboard, and runs the dedup guard and
// classifier before handing the item to the emission sink. Because only the
// consumer touches the guard, racing triggers collapse into at most one
// duplicate read — the guard's last-observed check absorbs the rest.
package capture

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"go.klb.dev/snipstash/internal/classify"
	"go.klb.dev/snipstash/internal/clip"
	"go.klb.dev/snipstash/internal/dedupe"
	"go.klb.dev/snipstash/internal/store"
)

const (
	// DefaultInterval is the steady-state poll period.
	DefaultInterval = 2 * time.Second
	// DefaultSettle is the delay between a copy event and the read, covering
	// OS clipboard propagation.
	DefaultSettle = 150 * time.Millisecond
)

// Emitter receives classified items. Implemented by sink.Sink.
type Emitter interface {
	CaptureItem(ctx context.Context, it store.Item) error
}

// Config holds the poller's tunables. Zero values select the defaults.
type Config struct {
	Interval time.Duration
	Settle   time.Duration
	Enabled  bool
}

// Poller observes the clipboard and emits new classified content.
type Poller struct {
	backend    clip.Backend
	guard      *dedupe.Guard
	classifier *classify.Classifier
	sink       Emitter

	interval time.Duration
	settle   time.Duration

	enabled  atomic.Bool
	enableCh chan struct{}
	now      func() time.Time
}

// New constructs a Poller. Run must be called to start it.
func New(backend clip.Backend, guard *dedupe.Guard, classifier *classify.Classifier, sink Emitter, cfg Config) *Poller {
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultInterval
	}
	if cfg.Settle <= 0 {
		cfg.Settle = DefaultSettle
	}
	p := &Poller{
		backend:    backend,
		guard:      guard,
		classifier: classifier,
		sink:       sink,
		interval:   cfg.Interval,
		settle:     cfg.Settle,
		enableCh:   make(chan struct{}, 1),
		now:        time.Now,
	}
	p.enabled.Store(cfg.Enabled)
	return p
}

// SetEnabled toggles clipboard monitoring. Disabling stops the ticker
// deterministically (once the toggle is observed no further timed reads
// happen) and resets the dedup guard so monitoring restarts with a clean
// slate. Safe to call from any goroutine.
func (p *Poller) SetEnabled(on bool) {
	if p.enabled.Swap(on) == on {
		return
	}
	if !on {
		p.guard.Reset()
	}
	select {
	case p.enableCh <- struct{}{}:
	default:
	}
}

// Enabled reports whether monitoring is currently on.
func (p *Poller) Enabled() bool { return p.enabled.Load() }

// Run blocks until ctx is cancelled, driving both producers and the
// consumer. All goroutines are joined before Run returns.
func (p *Poller) Run(ctx context.Context) {
	triggers := make(chan struct{}, 1)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		p.tickLoop(ctx, triggers)
	}()
	go func() {
		defer wg.Done()
		p.watchLoop(ctx, triggers)
	}()

	p.consume(ctx, triggers)
	wg.Wait()
}

// tickLoop is the timer producer. The ticker exists only while monitoring is
// enabled, so toggling cannot leak interval handles.
func (p *Poller) tickLoop(ctx context.Context, triggers chan<- struct{}) {
	var ticker *time.Ticker
	var tick <-chan time.Time
	stop := func() {
		if ticker != nil {
			ticker.Stop()
			ticker, tick = nil, nil
		}
	}
	defer stop()

	apply := func() {
		if p.enabled.Load() {
			if ticker == nil {
				ticker = time.NewTicker(p.interval)
				tick = ticker.C
			}
		} else {
			stop()
		}
	}
	apply()

	for {
		select {
		case <-ctx.Done():
			return
		case <-p.enableCh:
			apply()
		case <-tick:
			fire(triggers)
		}
	}
}

// watchLoop is the copy-event producer. Events arriving while monitoring is
// disabled are dropped.
func (p *Poller) watchLoop(ctx context.Context, triggers chan<- struct{}) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-p.backend.Watch():
			if !p.enabled.Load() {
				continue
			}
			// let the OS clipboard finish updating before reading
			select {
			case <-ctx.Done():
				return
			case <-time.After(p.settle):
			}
			fire(triggers)
		}
	}
}

// consume is the single consumer and the only goroutine that touches the
// guard, which is what keeps the accept decision race-free.
func (p *Poller) consume(ctx context.Context, triggers <-chan struct{}) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-triggers:
			if !p.enabled.Load() {
				continue
			}
			p.cycle(ctx)
		}
	}
}

func (p *Poller) cycle(ctx context.Context) {
	text, err := p.backend.Read()
	if err != nil {
		// permission-denied or headless: expected, the next trigger retries
		slog.Debug("clipboard read skipped", "err", err)
		return
	}

	now := p.now()
	if !p.guard.ShouldAccept(text, now) {
		return
	}

	it := store.Item{
		ID:         uuid.NewString(),
		Content:    text,
		Kind:       p.classifier.Classify(text),
		CapturedAt: now,
	}
	if err := p.sink.CaptureItem(ctx, it); err != nil {
		slog.Warn("capture dropped", "err", err)
	}
}

// fire coalesces trigger signals; one pending trigger is enough because the
// consumer re-reads the live clipboard anyway.
func fire(triggers chan<- struct{}) {
	select {
	case triggers <- struct{}{}:
	default:
	}
}
