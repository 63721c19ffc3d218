package main

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.klb.dev/snipstash/internal/capture"
	"go.klb.dev/snipstash/internal/chord"
	"go.klb.dev/snipstash/internal/classify"
	"go.klb.dev/snipstash/internal/clip"
	"go.klb.dev/snipstash/internal/dedupe"
	"go.klb.dev/snipstash/internal/message"
	"go.klb.dev/snipstash/internal/settings"
	"go.klb.dev/snipstash/internal/sink"
	"go.klb.dev/snipstash/internal/store"
	"go.klb.dev/snipstash/internal/wire"
)

func newTestDaemon(t *testing.T) (*daemon, *clip.Memory, *dedupe.Guard) {
	t.Helper()

	st, err := store.Open(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	mem := clip.NewMemory()
	guard := dedupe.NewGuard(time.Second)
	classifier := classify.New()
	provider := settings.NewProvider(viper.New())
	snk := sink.New(st, mem, guard, classifier, nil)
	snk.SetHistoryLimit(provider.Current().HistoryLimit)

	d := &daemon{
		store:     st,
		backend:   mem,
		sink:      snk,
		registry:  chord.NewRegistry(),
		provider:  provider,
		notifier:  sink.LogNotifier{},
		startedAt: time.Now(),
	}
	d.poller = capture.New(mem, guard, classifier, snk, capture.Config{Enabled: true})
	return d, mem, guard
}

// roundTrip sends one request through the daemon's IPC handler and returns
// the response.
func roundTrip(t *testing.T, d *daemon, req *message.Message) *message.Message {
	t.Helper()

	client, server := net.Pipe()
	go d.handleIPC(server)
	defer client.Close()

	wc := wire.New(client)
	require.NoError(t, wc.WriteMsg(req))
	resp, err := wc.ReadMsg()
	require.NoError(t, err)
	return resp
}

func TestIPCCopyThenPaste(t *testing.T) {
	d, mem, guard := newTestDaemon(t)

	resp := roundTrip(t, d, &message.Message{Type: message.TypeCopy, Text: "hello"})
	assert.Equal(t, message.TypeAck, resp.Type)

	// the text reached the clipboard
	text, err := mem.Read()
	require.NoError(t, err)
	assert.Equal(t, "hello", text)

	// and history
	resp = roundTrip(t, d, &message.Message{Type: message.TypeLatest})
	require.Equal(t, message.TypeItems, resp.Type)
	require.Len(t, resp.Items, 1)
	assert.Equal(t, "hello", resp.Items[0].Content)
	assert.Equal(t, "text", resp.Items[0].Kind)

	// the self-write is inside a suppression window, so the poller would
	// not re-ingest it
	assert.False(t, guard.ShouldAccept("hello", time.Now()))
}

func TestIPCLatestEmptyHistory(t *testing.T) {
	d, _, _ := newTestDaemon(t)

	resp := roundTrip(t, d, &message.Message{Type: message.TypeLatest})
	assert.Equal(t, message.TypeItems, resp.Type)
	assert.Empty(t, resp.Items)
}

func TestIPCHistoryLimit(t *testing.T) {
	d, _, _ := newTestDaemon(t)
	ctx := context.Background()

	for _, c := range []string{"one", "two", "three"} {
		require.NoError(t, d.store.Insert(ctx, store.Item{
			ID: uuid.NewString(), Content: c, Kind: classify.KindText, CapturedAt: time.Now(),
		}))
		time.Sleep(time.Millisecond) // distinct capture times
	}

	resp := roundTrip(t, d, &message.Message{Type: message.TypeHistory, Limit: 2})
	require.Equal(t, message.TypeItems, resp.Type)
	require.Len(t, resp.Items, 2)
	assert.Equal(t, "three", resp.Items[0].Content)
}

func TestIPCTriggerSnippet(t *testing.T) {
	d, mem, _ := newTestDaemon(t)
	ctx := context.Background()

	require.NoError(t, d.store.PutSnippet(ctx, store.Snippet{
		ID: uuid.NewString(), Title: "greet", Content: "foo()", Trigger: "ctrl+shift+1",
	}))
	d.rebind(ctx)

	// modifier order on the wire doesn't matter
	resp := roundTrip(t, d, &message.Message{Type: message.TypeTrigger, Chord: "shift+ctrl+1"})
	require.Equal(t, message.TypeAck, resp.Type)
	assert.True(t, resp.Handled)

	text, err := mem.Read()
	require.NoError(t, err)
	assert.Equal(t, "foo()", text)
}

func TestIPCTriggerUnmatched(t *testing.T) {
	d, _, _ := newTestDaemon(t)

	resp := roundTrip(t, d, &message.Message{Type: message.TypeTrigger, Chord: "ctrl+9"})
	require.Equal(t, message.TypeAck, resp.Type)
	assert.False(t, resp.Handled)
}

func TestIPCTriggerMalformed(t *testing.T) {
	d, _, _ := newTestDaemon(t)

	resp := roundTrip(t, d, &message.Message{Type: message.TypeTrigger, Chord: "ctrl+shift"})
	assert.Equal(t, message.TypeError, resp.Type)
}

func TestIPCStatus(t *testing.T) {
	d, _, _ := newTestDaemon(t)
	ctx := context.Background()

	require.NoError(t, d.store.PutSnippet(ctx, store.Snippet{
		ID: uuid.NewString(), Title: "s", Content: "c", Trigger: "ctrl+alt+s",
	}))
	d.rebind(ctx)

	resp := roundTrip(t, d, &message.Message{Type: message.TypeStatus})
	require.Equal(t, message.TypeStatusResponse, resp.Type)
	require.NotNil(t, resp.Status)
	assert.True(t, resp.Status.Monitoring)
	assert.Equal(t, 1, resp.Status.Bindings)
	assert.Equal(t, 1, resp.Status.Snippets)
	assert.Equal(t, "memory", resp.Status.Backend)
}

func TestCaptureHonorsHistoryLimit(t *testing.T) {
	d, _, _ := newTestDaemon(t)
	ctx := context.Background()

	d.sink.SetHistoryLimit(3)

	// five captures through the daemon's ingest path, oldest first
	for i, c := range []string{"one", "two", "three", "four", "five"} {
		require.NoError(t, d.sink.CaptureItem(ctx, store.Item{
			ID:         uuid.NewString(),
			Content:    c,
			Kind:       classify.KindText,
			CapturedAt: time.Now().Add(time.Duration(i) * time.Millisecond),
		}))
	}

	items, _, err := d.store.Counts(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, items)

	recent, err := d.store.Recent(ctx, 0)
	require.NoError(t, err)
	require.Len(t, recent, 3)
	assert.Equal(t, "five", recent[0].Content)
	assert.Equal(t, "three", recent[2].Content)
}

func TestRebindDropsStaleSnippetTriggers(t *testing.T) {
	d, _, _ := newTestDaemon(t)
	ctx := context.Background()

	sn := store.Snippet{ID: uuid.NewString(), Title: "old", Content: "x", Trigger: "ctrl+alt+o"}
	require.NoError(t, d.store.PutSnippet(ctx, sn))
	d.rebind(ctx)
	require.Equal(t, 1, d.registry.Len())

	require.NoError(t, d.store.DeleteSnippet(ctx, sn.ID))
	d.rebind(ctx)

	assert.Zero(t, d.registry.Len())
	resp := roundTrip(t, d, &message.Message{Type: message.TypeTrigger, Chord: "ctrl+alt+o"})
	assert.False(t, resp.Handled)
}
