// Package settings exposes the daemon's user-tunable configuration
// reactively: the provider watches the config file and fans changes out to
// subscribers, so monitoring can be toggled and shortcuts rebound without a
// restart.
package settings

import (
	"log/slog"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// Settings is one immutable snapshot of the daemon configuration.
type Settings struct {
	ClipboardEnabled  bool
	PollInterval      time.Duration
	SuppressFor       time.Duration
	SettleDelay       time.Duration
	HistoryLimit      int
	SnippetShortcut   string
	ClipboardShortcut string
}

// SetDefaults registers the daemon defaults on v. The 2s poll and 3s
// suppression values are deliberate: suppression must outlast OS clipboard
// propagation plus one poll period.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("clipboard_enabled", true)
	v.SetDefault("poll_interval", 2*time.Second)
	v.SetDefault("suppress_for", 3*time.Second)
	v.SetDefault("settle_delay", 150*time.Millisecond)
	v.SetDefault("history_limit", 500)
	v.SetDefault("snippet_shortcut", "")
	v.SetDefault("clipboard_shortcut", "")
}

// Provider reads settings from a viper instance and announces changes.
type Provider struct {
	v *viper.Viper

	mu      sync.RWMutex
	current Settings
	subs    []chan Settings
}

// NewProvider wraps v, which should already have its config file bound.
// Defaults are registered here so Current is always fully populated.
func NewProvider(v *viper.Viper) *Provider {
	SetDefaults(v)
	return &Provider{v: v, current: load(v)}
}

// Current returns the latest settings snapshot.
func (p *Provider) Current() Settings {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.current
}

// Subscribe returns a channel receiving each settings change. The channel
// holds only the most recent snapshot; a slow subscriber sees the newest
// state, not every intermediate one.
func (p *Provider) Subscribe() <-chan Settings {
	ch := make(chan Settings, 1)
	p.mu.Lock()
	p.subs = append(p.subs, ch)
	p.mu.Unlock()
	return ch
}

// Watch starts watching the config file for edits. No-op when no config
// file is in use (pure flag/env configuration cannot change at runtime).
func (p *Provider) Watch() {
	if p.v.ConfigFileUsed() == "" {
		slog.Debug("no config file, settings watch disabled")
		return
	}
	p.v.OnConfigChange(func(e fsnotify.Event) {
		slog.Debug("config file changed", "file", e.Name, "op", e.Op.String())
		p.Reload()
	})
	p.v.WatchConfig()
	slog.Info("watching settings", "file", p.v.ConfigFileUsed())
}

// Reload re-derives the snapshot from viper and notifies subscribers if
// anything changed.
func (p *Provider) Reload() {
	next := load(p.v)

	p.mu.Lock()
	if next == p.current {
		p.mu.Unlock()
		return
	}
	p.current = next
	subs := append([]chan Settings(nil), p.subs...)
	p.mu.Unlock()

	slog.Info("settings updated",
		"clipboard_enabled", next.ClipboardEnabled,
		"poll_interval", next.PollInterval,
	)
	for _, ch := range subs {
		// keep only the newest snapshot per subscriber
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- next:
		default:
		}
	}
}

func load(v *viper.Viper) Settings {
	return Settings{
		ClipboardEnabled:  v.GetBool("clipboard_enabled"),
		PollInterval:      v.GetDuration("poll_interval"),
		SuppressFor:       v.GetDuration("suppress_for"),
		SettleDelay:       v.GetDuration("settle_delay"),
		HistoryLimit:      v.GetInt("history_limit"),
		SnippetShortcut:   v.GetString("snippet_shortcut"),
		ClipboardShortcut: v.GetString("clipboard_shortcut"),
	}
}
