package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"go.klb.dev/snipstash/internal/ipc"
	"go.klb.dev/snipstash/internal/logging"
	"go.klb.dev/snipstash/internal/message"
	"go.klb.dev/snipstash/internal/store"
	"go.klb.dev/snipstash/internal/wire"
)

func newPasteCmd() *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:   "paste",
		Short: "Print the newest history item to stdout (like pbpaste)",
		Long: `Writes the most recently captured history item to stdout.

If history is empty, nothing is printed (exit 0).`,
		Args:    cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error { return bindViper(cmd, v) },
		RunE:    func(_ *cobra.Command, _ []string) error { return runPaste(v) },
	}

	addDataDirFlag(cmd)
	addConfigFlag(cmd)

	return cmd
}

func runPaste(v *viper.Viper) error {
	logging.Quiet()

	if ipc.IsRunning() {
		conn, err := ipc.Dial()
		if err == nil {
			defer conn.Close()
			wc := wire.New(conn)
			if err := wc.WriteMsg(&message.Message{Type: message.TypeLatest}); err != nil {
				return fmt.Errorf("ipc paste: %w", err)
			}
			resp, err := wc.ReadMsg()
			if err != nil {
				return fmt.Errorf("ipc paste: %w", err)
			}
			if resp.Type == message.TypeError {
				return fmt.Errorf("paste: %s", resp.Error)
			}
			if len(resp.Items) > 0 {
				_, err = os.Stdout.WriteString(resp.Items[0].Content)
				return err
			}
			return nil
		}
	}

	st, err := store.Open(v.GetString("data-dir"))
	if err != nil {
		return err
	}
	defer st.Close()

	it, err := st.Latest(context.Background())
	if errors.Is(err, store.ErrNotFound) {
		// Empty history — exit 0, print nothing (pbpaste behaviour).
		return nil
	}
	if err != nil {
		return err
	}
	_, err = os.Stdout.WriteString(it.Content)
	return err
}
