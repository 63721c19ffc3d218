package main

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"go.klb.dev/snipstash/internal/ipc"
	"go.klb.dev/snipstash/internal/logging"
	"go.klb.dev/snipstash/internal/message"
	"go.klb.dev/snipstash/internal/wire"
)

func newStatusCmd() *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show daemon state",
		Long: `Displays the watch daemon's state: clipboard backend, whether
monitoring is enabled, and how many shortcuts, history items, and snippets
are active. Requires a running daemon.`,
		Args:    cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error { return bindViper(cmd, v) },
		RunE:    func(_ *cobra.Command, _ []string) error { return runStatus(v) },
	}

	cmd.Flags().Bool("json", false, "output raw JSON")
	addConfigFlag(cmd)

	return cmd
}

func runStatus(v *viper.Viper) error {
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
	if err := wc.WriteMsg(&message.Message{Type: message.TypeStatus}); err != nil {
		return fmt.Errorf("status: %w", err)
	}
	resp, err := wc.ReadMsg()
	if err != nil {
		return fmt.Errorf("status: %w", err)
	}
	if resp.Type == message.TypeError {
		return fmt.Errorf("status: %s", resp.Error)
	}
	if resp.Status == nil {
		return fmt.Errorf("status: malformed response")
	}

	if v.GetBool("json") {
		enc, _ := json.MarshalIndent(resp.Status, "", "  ")
		fmt.Println(string(enc))
		return nil
	}

	printStatus(resp.Status)
	return nil
}

func printStatus(s *message.Status) {
	w := tabwriter.NewWriter(os.Stdout, 1, 0, 2, ' ', 0)
	fmt.Fprintf(w, "Version:\t%s\n", s.Version)
	fmt.Fprintf(w, "Host:\t%s\n", s.Source)
	fmt.Fprintf(w, "Transport:\tipc (%s)\n", ipc.SocketPath())
	fmt.Fprintf(w, "Backend:\t%s\n", s.Backend)
	fmt.Fprintf(w, "Monitoring:\t%v\n", s.Monitoring)
	fmt.Fprintf(w, "Shortcuts:\t%d\n", s.Bindings)
	fmt.Fprintf(w, "History:\t%d items\n", s.Items)
	fmt.Fprintf(w, "Snippets:\t%d\n", s.Snippets)
	if !s.StartedAt.IsZero() {
		fmt.Fprintf(w, "Started:\t%s (%s)\n", s.StartedAt.UTC().Format(time.RFC3339), fmtAge(s.StartedAt))
	}
	_ = w.Flush()
}
