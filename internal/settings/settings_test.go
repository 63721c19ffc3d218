package settings

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, dir, body string) string {
	t.Helper()
	path := filepath.Join(dir, "snipstash.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0600))
	return path
}

func newFileProvider(t *testing.T, body string) (*Provider, string) {
	t.Helper()
	path := writeConfig(t, t.TempDir(), body)
	v := viper.New()
	v.SetConfigFile(path)
	require.NoError(t, v.ReadInConfig())
	return NewProvider(v), path
}

func TestDefaults(t *testing.T) {
	p := NewProvider(viper.New())
	s := p.Current()

	assert.True(t, s.ClipboardEnabled)
	assert.Equal(t, 2*time.Second, s.PollInterval)
	assert.Equal(t, 3*time.Second, s.SuppressFor)
	assert.Equal(t, 150*time.Millisecond, s.SettleDelay)
	assert.Equal(t, 500, s.HistoryLimit)
	assert.Empty(t, s.SnippetShortcut)
}

func TestConfigFileOverrides(t *testing.T) {
	p, _ := newFileProvider(t, `
clipboard_enabled = false
poll_interval = "5s"
snippet_shortcut = "ctrl+shift+s"
`)
	s := p.Current()

	assert.False(t, s.ClipboardEnabled)
	assert.Equal(t, 5*time.Second, s.PollInterval)
	assert.Equal(t, "ctrl+shift+s", s.SnippetShortcut)
	// untouched keys keep defaults
	assert.Equal(t, 3*time.Second, s.SuppressFor)
}

func TestReloadNotifiesSubscribers(t *testing.T) {
	p, path := newFileProvider(t, `clipboard_enabled = true`)
	sub := p.Subscribe()

	require.NoError(t, os.WriteFile(path, []byte(`clipboard_enabled = false`), 0600))
	require.NoError(t, p.v.ReadInConfig())
	p.Reload()

	select {
	case s := <-sub:
		assert.False(t, s.ClipboardEnabled)
	case <-time.After(time.Second):
		t.Fatal("no settings update received")
	}
	assert.False(t, p.Current().ClipboardEnabled)
}

func TestReloadNoChangeIsSilent(t *testing.T) {
	p, _ := newFileProvider(t, `clipboard_enabled = true`)
	sub := p.Subscribe()

	p.Reload()

	select {
	case <-sub:
		t.Fatal("unchanged settings must not notify")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestSubscriberKeepsNewestOnly(t *testing.T) {
	p, path := newFileProvider(t, `history_limit = 1`)
	sub := p.Subscribe()

	for _, limit := range []string{"2", "3", "4"} {
		require.NoError(t, os.WriteFile(path, []byte("history_limit = "+limit), 0600))
		require.NoError(t, p.v.ReadInConfig())
		p.Reload()
	}

	s := <-sub
	assert.Equal(t, 4, s.HistoryLimit)
	select {
	case <-sub:
		t.Fatal("intermediate snapshot left behind")
	default:
	}
}
