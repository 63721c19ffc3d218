package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"go.klb.dev/snipstash/internal/ipc"
	"go.klb.dev/snipstash/internal/logging"
	"go.klb.dev/snipstash/internal/message"
	"go.klb.dev/snipstash/internal/wire"
)

func newTriggerCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "trigger <chord>",
		Short: "Dispatch a chord to the watch daemon",
		Long: `Sends a key chord (e.g. "ctrl+shift+1") to the running daemon's
shortcut matcher, exactly as an OS key hook would. Bind this command in your
hotkey tool of choice (sxhkd, skhd, AutoHotkey) to get global shortcuts.

Prints "no binding" when the chord matched nothing; exit code is 0 either
way so hotkey tools don't log spurious failures.`,
		Args: cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error { return runTrigger(args[0]) },
	}
	return cmd
}

func runTrigger(chordStr string) error {
	logging.Quiet()

	if !ipc.IsRunning() {
		return fmt.Errorf("no watch daemon on %s (start one with \"snipstash watch\")", ipc.SocketPath())
	}
	conn, err := ipc.Dial()
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}
	defer conn.Close()

	wc := wire.New(conn)
	if err := wc.WriteMsg(&message.Message{Type: message.TypeTrigger, Chord: chordStr}); err != nil {
		return fmt.Errorf("trigger: %w", err)
	}
	resp, err := wc.ReadMsg()
	if err != nil {
		return fmt.Errorf("trigger: %w", err)
	}
	if resp.Type == message.TypeError {
		return fmt.Errorf("trigger: %s", resp.Error)
	}
	if !resp.Handled {
		fmt.Printf("no binding for %s\n", resp.Chord)
	}
	return nil
}
