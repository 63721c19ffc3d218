package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"go.klb.dev/snipstash/internal/ipc"
	"go.klb.dev/snipstash/internal/logging"
	"go.klb.dev/snipstash/internal/message"
	"go.klb.dev/snipstash/internal/store"
	"go.klb.dev/snipstash/internal/wire"
)

func newHistoryCmd() *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:     "history",
		Short:   "List captured clipboard history",
		Args:    cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error { return bindViper(cmd, v) },
		RunE:    func(_ *cobra.Command, _ []string) error { return runHistory(v) },
	}

	cmd.Flags().IntP("limit", "n", 20, "maximum number of items to list (0 = all)")
	addDataDirFlag(cmd)
	addConfigFlag(cmd)

	cmd.AddCommand(newHistoryClearCmd())
	return cmd
}

func newHistoryClearCmd() *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:     "clear",
		Short:   "Delete all history items",
		Args:    cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error { return bindViper(cmd, v) },
		RunE: func(_ *cobra.Command, _ []string) error {
			logging.Quiet()
			st, err := store.Open(v.GetString("data-dir"))
			if err != nil {
				return err
			}
			defer st.Close()
			return st.Clear(context.Background())
		},
	}

	addDataDirFlag(cmd)
	addConfigFlag(cmd)
	return cmd
}

func runHistory(v *viper.Viper) error {
	logging.Quiet()
	limit := v.GetInt("limit")

	items, err := fetchHistory(v, limit)
	if err != nil {
		return err
	}
	if len(items) == 0 {
		fmt.Println("History is empty.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 1, 0, 2, ' ', 0)
	fmt.Fprintf(w, "KIND\tCAPTURED\tCONTENT\n")
	for _, it := range items {
		fmt.Fprintf(w, "%s\t%s\t%s\n", it.Kind, fmtAge(it.CapturedAt), preview(it.Content, 60))
	}
	return w.Flush()
}

func fetchHistory(v *viper.Viper, limit int) ([]message.Item, error) {
	if ipc.IsRunning() {
		conn, err := ipc.Dial()
		if err == nil {
			defer conn.Close()
			wc := wire.New(conn)
			if err := wc.WriteMsg(&message.Message{Type: message.TypeHistory, Limit: limit}); err != nil {
				return nil, fmt.Errorf("ipc history: %w", err)
			}
			resp, err := wc.ReadMsg()
			if err != nil {
				return nil, fmt.Errorf("ipc history: %w", err)
			}
			if resp.Type == message.TypeError {
				return nil, fmt.Errorf("history: %s", resp.Error)
			}
			return resp.Items, nil
		}
	}

	st, err := store.Open(v.GetString("data-dir"))
	if err != nil {
		return nil, err
	}
	defer st.Close()

	items, err := st.Recent(context.Background(), limit)
	if err != nil {
		return nil, err
	}
	out := make([]message.Item, 0, len(items))
	for _, it := range items {
		out = append(out, message.Item{
			ID:         it.ID,
			Content:    it.Content,
			Kind:       string(it.Kind),
			CapturedAt: it.CapturedAt,
		})
	}
	return out, nil
}
