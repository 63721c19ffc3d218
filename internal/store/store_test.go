package store

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.klb.dev/snipstash/internal/classify"
)

func openTest(t *testing.T) *Store {
	t.Helper()
	s, err := Open(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func item(content string, kind classify.Kind, at time.Time) Item {
	return Item{ID: uuid.NewString(), Content: content, Kind: kind, CapturedAt: at}
}

func TestInsertAndLatest(t *testing.T) {
	s := openTest(t)
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	require.NoError(t, s.Insert(ctx, item("first", classify.KindText, base)))
	require.NoError(t, s.Insert(ctx, item("https://example.com", classify.KindURL, base.Add(time.Minute))))

	latest, err := s.Latest(ctx)
	require.NoError(t, err)
	assert.Equal(t, "https://example.com", latest.Content)
	assert.Equal(t, classify.KindURL, latest.Kind)
	assert.True(t, latest.CapturedAt.Equal(base.Add(time.Minute)))
}

func TestLatestEmpty(t *testing.T) {
	s := openTest(t)
	_, err := s.Latest(context.Background())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRecentOrderAndLimit(t *testing.T) {
	s := openTest(t)
	ctx := context.Background()
	base := time.Now()

	for i, c := range []string{"a", "b", "c"} {
		require.NoError(t, s.Insert(ctx, item(c, classify.KindText, base.Add(time.Duration(i)*time.Second))))
	}

	items, err := s.Recent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "c", items[0].Content)
	assert.Equal(t, "b", items[1].Content)

	all, err := s.Recent(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestDeleteAndClear(t *testing.T) {
	s := openTest(t)
	ctx := context.Background()

	it := item("x", classify.KindText, time.Now())
	require.NoError(t, s.Insert(ctx, it))
	require.NoError(t, s.Delete(ctx, it.ID))
	assert.ErrorIs(t, s.Delete(ctx, it.ID), ErrNotFound)

	require.NoError(t, s.Insert(ctx, item("y", classify.KindText, time.Now())))
	require.NoError(t, s.Clear(ctx))
	n, _, err := s.Counts(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestPrune(t *testing.T) {
	s := openTest(t)
	ctx := context.Background()
	base := time.Now()

	for i := 0; i < 5; i++ {
		require.NoError(t, s.Insert(ctx, item(string(rune('a'+i)), classify.KindText, base.Add(time.Duration(i)*time.Second))))
	}
	require.NoError(t, s.Prune(ctx, 2))

	items, err := s.Recent(ctx, 0)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "e", items[0].Content)
	assert.Equal(t, "d", items[1].Content)
}

func TestSnippetsKeepOrder(t *testing.T) {
	s := openTest(t)
	ctx := context.Background()

	greet := Snippet{ID: uuid.NewString(), Title: "greet", Content: "hello", Trigger: "ctrl+shift+1"}
	sig := Snippet{ID: uuid.NewString(), Title: "sig", Content: "-- me"}
	require.NoError(t, s.PutSnippet(ctx, greet))
	require.NoError(t, s.PutSnippet(ctx, sig))

	// update must not move the snippet
	greet.Content = "hello there"
	require.NoError(t, s.PutSnippet(ctx, greet))

	got, err := s.Snippets(ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "greet", got[0].Title)
	assert.Equal(t, "hello there", got[0].Content)
	assert.Equal(t, "sig", got[1].Title)
}

func TestSnippetLookupAndDelete(t *testing.T) {
	s := openTest(t)
	ctx := context.Background()

	sn := Snippet{ID: uuid.NewString(), Title: "t", Content: "c"}
	require.NoError(t, s.PutSnippet(ctx, sn))

	got, err := s.Snippet(ctx, sn.ID)
	require.NoError(t, err)
	assert.Equal(t, sn, got)

	require.NoError(t, s.DeleteSnippet(ctx, sn.ID))
	_, err = s.Snippet(ctx, sn.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}
