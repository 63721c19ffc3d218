package clip

import (
	"context"
	"log/slog"

	"golang.design/x/clipboard"
)

type systemBackend struct {
	watchCh chan struct{}
	cancel  context.CancelFunc
}

// New returns the system clipboard backend, or a headless no-op backend if
// the display environment is unavailable. clipboard.Init is called here
// rather than in init() so that CLI sub-commands that never touch the
// clipboard don't trigger the warning.
func New() Backend {
	if err := clipboard.Init(); err != nil {
		slog.Warn("clipboard unavailable, running headless", "err", err)
		return Headless()
	}
	ctx, cancel := context.WithCancel(context.Background())
	b := &systemBackend{
		watchCh: make(chan struct{}, 1),
		cancel:  cancel,
	}
	go b.forward(ctx)
	return b
}

func (b *systemBackend) Name() string { return "system clipboard" }

// forward coalesces change notifications from the library's watcher into the
// signal channel. A pending signal is enough; the consumer re-reads anyway.
func (b *systemBackend) forward(ctx context.Context) {
	for range clipboard.Watch(ctx, clipboard.FmtText) {
		select {
		case b.watchCh <- struct{}{}:
		default:
		}
	}
}

func (b *systemBackend) Read() (string, error) {
	return string(clipboard.Read(clipboard.FmtText)), nil
}

func (b *systemBackend) Write(text string) error {
	clipboard.Write(clipboard.FmtText, []byte(text))
	return nil
}

func (b *systemBackend) Watch() <-chan struct{} { return b.watchCh }
func (b *systemBackend) Close()                 { b.cancel() }
