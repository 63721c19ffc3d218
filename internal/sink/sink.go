// Package sink is the boundary adapter between the capture subsystem and
// its side effects. It is the only component that persists history items,
// writes the OS clipboard, or opens suppression windows on the dedup guard.
//
// Ordering matters: a suppression window is recorded only after the side
// effect succeeded. Recording first would let a failed persist silently
// blacklist legitimate future captures of the same content.
package sink

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"go.klb.dev/snipstash/internal/classify"
	"go.klb.dev/snipstash/internal/store"
)

// History is the slice of the store the sink needs.
type History interface {
	Insert(ctx context.Context, it store.Item) error
	Prune(ctx context.Context, keep int) error
}

// ClipboardWriter is the slice of the clipboard backend the sink needs.
type ClipboardWriter interface {
	Write(text string) error
}

// Recorder is the dedup guard's emission interface.
type Recorder interface {
	RecordEmission(content string, now time.Time)
}

// Notifier delivers fire-and-forget user-visible acknowledgments.
// Optional: the sink works with a nil notifier.
type Notifier interface {
	Notify(title, body string)
}

// LogNotifier is the default Notifier; it just logs at info level.
type LogNotifier struct{}

func (LogNotifier) Notify(title, body string) {
	slog.Info("notification", "title", title, "body", body)
}

// Sink fans subsystem events out to persistence and the clipboard.
type Sink struct {
	history    History
	clipboard  ClipboardWriter
	guard      Recorder
	classifier *classify.Classifier
	notifier   Notifier
	limit      atomic.Int64
	now        func() time.Time
}

// New constructs a Sink. notifier may be nil.
func New(history History, clipboard ClipboardWriter, guard Recorder, classifier *classify.Classifier, notifier Notifier) *Sink {
	return &Sink{
		history:    history,
		clipboard:  clipboard,
		guard:      guard,
		classifier: classifier,
		notifier:   notifier,
		now:        time.Now,
	}
}

// SetHistoryLimit caps stored history at n items; every successful persist
// prunes the oldest overflow. n <= 0 disables the cap. Safe to call from any
// goroutine, so settings reloads can adjust it live.
func (s *Sink) SetHistoryLimit(n int) {
	s.limit.Store(int64(n))
}

// CaptureItem persists an item observed on the clipboard and, on success,
// opens a suppression window so the persisted content is not re-ingested.
// A persist failure is recoverable: it is reported and no window is opened.
func (s *Sink) CaptureItem(ctx context.Context, it store.Item) error {
	if err := s.history.Insert(ctx, it); err != nil {
		s.notify("Capture failed", err.Error())
		return fmt.Errorf("persisting capture: %w", err)
	}
	s.guard.RecordEmission(it.Content, s.now())
	s.pruneHistory(ctx)
	slog.Debug("capture persisted", "kind", it.Kind, "bytes", len(it.Content))
	return nil
}

// CopyText classifies text, persists it, and writes it to the OS clipboard.
// The write is suppressed from re-ingestion by the same window as the
// persist. Used by the copy CLI path.
func (s *Sink) CopyText(ctx context.Context, text string) error {
	it := store.Item{
		ID:         uuid.NewString(),
		Content:    text,
		Kind:       s.classifier.Classify(text),
		CapturedAt: s.now(),
	}
	if err := s.history.Insert(ctx, it); err != nil {
		return fmt.Errorf("persisting copy: %w", err)
	}
	s.guard.RecordEmission(it.Content, s.now())
	s.pruneHistory(ctx)
	if err := s.clipboard.Write(text); err != nil {
		return fmt.Errorf("writing clipboard: %w", err)
	}
	return nil
}

// CopySnippet writes a snippet's content to the OS clipboard on behalf of a
// shortcut activation. The self-write is suppressed only once the clipboard
// accepted it.
func (s *Sink) CopySnippet(sn store.Snippet) error {
	if err := s.clipboard.Write(sn.Content); err != nil {
		s.notify("Copy failed", err.Error())
		return fmt.Errorf("writing clipboard: %w", err)
	}
	s.guard.RecordEmission(sn.Content, s.now())
	s.notify("Snippet Copied", sn.Title)
	return nil
}

// pruneHistory enforces the history cap after a successful persist. A prune
// failure never fails the capture that triggered it.
func (s *Sink) pruneHistory(ctx context.Context) {
	keep := int(s.limit.Load())
	if keep <= 0 {
		return
	}
	if err := s.history.Prune(ctx, keep); err != nil {
		slog.Warn("history prune failed", "err", err)
	}
}

func (s *Sink) notify(title, body string) {
	if s.notifier != nil {
		s.notifier.Notify(title, body)
	}
}
