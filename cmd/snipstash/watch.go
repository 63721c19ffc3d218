package main

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"

	"go.klb.dev/snipstash/internal/capture"
	"go.klb.dev/snipstash/internal/chord"
	"go.klb.dev/snipstash/internal/classify"
	"go.klb.dev/snipstash/internal/clip"
	"go.klb.dev/snipstash/internal/dedupe"
	"go.klb.dev/snipstash/internal/ipc"
	"go.klb.dev/snipstash/internal/message"
	"go.klb.dev/snipstash/internal/settings"
	"go.klb.dev/snipstash/internal/sink"
	"go.klb.dev/snipstash/internal/store"
	"go.klb.dev/snipstash/internal/wire"
)

// snippetDebounce coalesces bursts of database file events into one rebind.
const snippetDebounce = 500 * time.Millisecond

func newWatchCmd() *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Run the clipboard capture daemon",
		Long: `Watches the system clipboard, classifies new content (text, url, code)
and stores it as history. Snippets with a trigger chord are registered as
shortcuts; activating one copies the snippet to the clipboard.

Settings changes to clipboard_enabled, history_limit and the shortcut
bindings are picked up from the config file without a restart. The timing
settings (poll_interval, suppress_for, settle_delay) are read once at
startup. Other sub-commands reach the daemon through a local socket.

Config file search order:
  /etc/snipstash/snipstash.toml
  $HOME/.config/snipstash/snipstash.toml
  path supplied via --config

Precedence (lowest → highest): defaults → config file → SNIPSTASH_* env vars → flags`,
		Args:    cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error { return bindViper(cmd, v) },
		RunE:    func(_ *cobra.Command, _ []string) error { return runWatch(v) },
	}

	addDataDirFlag(cmd)
	addLoggingFlags(cmd)
	addConfigFlag(cmd)

	return cmd
}

// daemon ties the capture subsystem to its collaborators for the lifetime of
// one watch process.
type daemon struct {
	store     *store.Store
	backend   clip.Backend
	sink      *sink.Sink
	registry  *chord.Registry
	poller    *capture.Poller
	provider  *settings.Provider
	notifier  sink.Notifier
	startedAt time.Time
}

func runWatch(v *viper.Viper) error {
	setupLogging(v)

	provider := settings.NewProvider(v)
	cfg := provider.Current()

	slog.Info("snipstash watch starting",
		"version", Version,
		"monitoring", cfg.ClipboardEnabled,
		"poll_interval", cfg.PollInterval,
	)

	st, err := store.Open(v.GetString("data-dir"))
	if err != nil {
		return err
	}
	defer st.Close()

	backend := clip.New()
	defer backend.Close()
	slog.Info("clipboard backend", "name", backend.Name())

	guard := dedupe.NewGuard(cfg.SuppressFor)
	classifier := classify.New()
	notifier := sink.LogNotifier{}
	snk := sink.New(st, backend, guard, classifier, notifier)
	snk.SetHistoryLimit(cfg.HistoryLimit)

	d := &daemon{
		store:     st,
		backend:   backend,
		sink:      snk,
		registry:  chord.NewRegistry(),
		provider:  provider,
		notifier:  notifier,
		startedAt: time.Now(),
	}
	d.poller = capture.New(backend, guard, classifier, snk, capture.Config{
		Interval: cfg.PollInterval,
		Settle:   cfg.SettleDelay,
		Enabled:  cfg.ClipboardEnabled,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	d.rebind(ctx)
	provider.Watch()
	sub := provider.Subscribe()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		d.poller.Run(ctx)
		return nil
	})
	g.Go(func() error {
		d.settingsLoop(ctx, sub)
		return nil
	})
	g.Go(func() error {
		return d.watchSnippets(ctx)
	})

	// IPC socket for copy/paste/history/trigger/status CLI tools
	ipcLn, err := ipc.Listen()
	if err != nil {
		slog.Warn("IPC socket unavailable", "err", err)
	} else {
		slog.Info("IPC socket listening", "path", ipc.SocketPath())
		g.Go(func() error {
			d.serveIPC(ipcLn)
			return nil
		})
		g.Go(func() error {
			<-ctx.Done()
			return ipcLn.Close()
		})
	}

	err = g.Wait()
	if errors.Is(err, net.ErrClosed) || errors.Is(err, context.Canceled) {
		err = nil
	}
	slog.Info("snipstash watch stopped")
	return err
}

// settingsLoop applies settings changes to the running subsystem: monitoring
// enablement toggles the poller, the history cap moves to the sink, shortcut
// changes rebind. The timing settings (poll_interval, suppress_for,
// settle_delay) are fixed at startup; changing them takes a restart.
func (d *daemon) settingsLoop(ctx context.Context, sub <-chan settings.Settings) {
	for {
		select {
		case <-ctx.Done():
			return
		case s := <-sub:
			d.poller.SetEnabled(s.ClipboardEnabled)
			d.sink.SetHistoryLimit(s.HistoryLimit)
			d.rebind(ctx)
		}
	}
}

// rebind derives the full binding set from the snippet and settings
// collaborators and swaps it in atomically. Safe to call repeatedly.
func (d *daemon) rebind(ctx context.Context) {
	var bindings []chord.Binding

	snips, err := d.store.Snippets(ctx)
	if err != nil {
		slog.Error("loading snippets for shortcuts", "err", err)
	}
	for _, sn := range snips {
		if sn.Trigger == "" {
			continue
		}
		bindings = append(bindings, chord.Binding{
			Chord:  sn.Trigger,
			Name:   "snippet:" + sn.Title,
			Action: func() { _ = d.sink.CopySnippet(sn) },
		})
	}

	// application-level shortcuts registered last so they win collisions
	// against snippet triggers
	cfg := d.provider.Current()
	if cfg.SnippetShortcut != "" {
		bindings = append(bindings, chord.Binding{
			Chord:  cfg.SnippetShortcut,
			Name:   "app:snippets",
			Action: func() { d.notifier.Notify("Snippets", "snippet panel requested") },
		})
	}
	if cfg.ClipboardShortcut != "" {
		bindings = append(bindings, chord.Binding{
			Chord:  cfg.ClipboardShortcut,
			Name:   "app:clipboard",
			Action: func() { d.notifier.Notify("Clipboard", "clipboard history requested") },
		})
	}

	rep := d.registry.Register(bindings)
	slog.Info("shortcuts registered",
		"active", rep.Registered,
		"collisions", len(rep.Collisions),
		"malformed", len(rep.Malformed),
	)
}

// watchSnippets watches the data directory so snippet edits made by the CLI
// (a separate process) rebind shortcuts without restarting the daemon.
func (d *daemon) watchSnippets(ctx context.Context) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := w.Add(filepath.Dir(d.store.Path())); err != nil {
		return err
	}

	var pending <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Base(ev.Name) != filepath.Base(d.store.Path()) &&
				!isWALSibling(ev.Name, d.store.Path()) {
				continue
			}
			pending = time.After(snippetDebounce)
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			slog.Warn("snippet watcher error", "err", err)
		case <-pending:
			pending = nil
			d.rebind(ctx)
		}
	}
}

// isWALSibling reports whether name is the WAL or SHM companion of dbPath.
func isWALSibling(name, dbPath string) bool {
	return name == dbPath+"-wal" || name == dbPath+"-shm"
}

func (d *daemon) serveIPC(ln net.Listener) {
	for {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		go d.handleIPC(conn)
	}
}

func (d *daemon) handleIPC(conn net.Conn) {
	defer conn.Close()
	wc := wire.New(conn)

	msg, err := wc.ReadMsg()
	if err != nil {
		return
	}
	ctx := context.Background()

	switch msg.Type {
	case message.TypeCopy:
		if err := d.sink.CopyText(ctx, msg.Text); err != nil {
			slog.Warn("ipc copy failed", "err", err)
			_ = wc.WriteMsg(message.Errorf("copy: %v", err))
			return
		}
		_ = wc.WriteMsg(&message.Message{Type: message.TypeAck})

	case message.TypeLatest:
		it, err := d.store.Latest(ctx)
		if errors.Is(err, store.ErrNotFound) {
			_ = wc.WriteMsg(&message.Message{Type: message.TypeItems})
			return
		}
		if err != nil {
			_ = wc.WriteMsg(message.Errorf("latest: %v", err))
			return
		}
		_ = wc.WriteMsg(&message.Message{Type: message.TypeItems, Items: toWireItems(it)})

	case message.TypeHistory:
		items, err := d.store.Recent(ctx, msg.Limit)
		if err != nil {
			_ = wc.WriteMsg(message.Errorf("history: %v", err))
			return
		}
		_ = wc.WriteMsg(&message.Message{Type: message.TypeItems, Items: toWireItems(items...)})

	case message.TypeTrigger:
		c, err := chord.Parse(msg.Chord)
		if err != nil {
			_ = wc.WriteMsg(message.Errorf("trigger: %v", err))
			return
		}
		handled := d.registry.Dispatch(chord.KeyEvent{
			Key:   c.Key(),
			Ctrl:  c.Mods()&chord.ModCtrl != 0,
			Alt:   c.Mods()&chord.ModAlt != 0,
			Shift: c.Mods()&chord.ModShift != 0,
		})
		_ = wc.WriteMsg(&message.Message{Type: message.TypeAck, Chord: c.String(), Handled: handled})

	case message.TypeStatus:
		items, snippets, err := d.store.Counts(ctx)
		if err != nil {
			_ = wc.WriteMsg(message.Errorf("status: %v", err))
			return
		}
		_ = wc.WriteMsg(&message.Message{
			Type: message.TypeStatusResponse,
			Status: &message.Status{
				Version:    Version,
				Source:     defaultSource(),
				Backend:    d.backend.Name(),
				Monitoring: d.poller.Enabled(),
				Bindings:   d.registry.Len(),
				Items:      items,
				Snippets:   snippets,
				StartedAt:  d.startedAt,
			},
		})

	default:
		_ = wc.WriteMsg(message.Errorf("unknown request type %q", msg.Type))
	}
}

func toWireItems(items ...store.Item) []message.Item {
	out := make([]message.Item, 0, len(items))
	for _, it := range items {
		out = append(out, message.Item{
			ID:         it.ID,
			Content:    it.Content,
			Kind:       string(it.Kind),
			CapturedAt: it.CapturedAt,
		})
	}
	return out
}
