package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"go.klb.dev/snipstash/internal/classify"
	"go.klb.dev/snipstash/internal/clip"
	"go.klb.dev/snipstash/internal/dedupe"
	"go.klb.dev/snipstash/internal/ipc"
	"go.klb.dev/snipstash/internal/logging"
	"go.klb.dev/snipstash/internal/message"
	"go.klb.dev/snipstash/internal/settings"
	"go.klb.dev/snipstash/internal/sink"
	"go.klb.dev/snipstash/internal/store"
	"go.klb.dev/snipstash/internal/wire"
)

func newCopyCmd() *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:   "copy",
		Short: "Copy stdin to the clipboard and history (like pbcopy)",
		Long: `Reads stdin, classifies it, stores it as history, and puts it on the
system clipboard.

If the watch daemon is running the request goes through its socket, so the
write is suppressed from being re-captured. Otherwise the store and
clipboard are used directly.`,
		Args:    cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error { return bindViper(cmd, v) },
		RunE:    func(_ *cobra.Command, _ []string) error { return runCopy(v) },
	}

	addDataDirFlag(cmd)
	addConfigFlag(cmd)

	return cmd
}

func runCopy(v *viper.Viper) error {
	logging.Quiet()

	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return fmt.Errorf("read stdin: %w", err)
	}
	if len(data) == 0 {
		return nil
	}
	text := string(data)

	// Try the daemon first
	if ipc.IsRunning() {
		conn, err := ipc.Dial()
		if err == nil {
			defer conn.Close()
			wc := wire.New(conn)
			if err := wc.WriteMsg(&message.Message{Type: message.TypeCopy, Text: text}); err != nil {
				return fmt.Errorf("ipc copy: %w", err)
			}
			resp, err := wc.ReadMsg()
			if err != nil {
				return fmt.Errorf("ipc copy: %w", err)
			}
			if resp.Type == message.TypeError {
				return fmt.Errorf("copy: %s", resp.Error)
			}
			return nil
		}
	}

	// No daemon: write the store and clipboard directly
	st, err := store.Open(v.GetString("data-dir"))
	if err != nil {
		return err
	}
	defer st.Close()

	backend := clip.New()
	defer backend.Close()

	s := sink.New(st, backend, dedupe.NewGuard(0), classify.New(), nil)
	s.SetHistoryLimit(settings.NewProvider(v).Current().HistoryLimit)
	return s.CopyText(context.Background(), text)
}
