package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"go.klb.dev/snipstash/internal/chord"
	"go.klb.dev/snipstash/internal/logging"
	"go.klb.dev/snipstash/internal/store"
)

func newSnippetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "snippet",
		Short: "Manage snippets",
		Long: `Snippets are reusable pieces of text. A snippet with a trigger chord
(e.g. --trigger ctrl+shift+1) is registered as a shortcut by the watch
daemon; activating it copies the snippet to the clipboard.`,
	}

	cmd.AddCommand(
		newSnippetAddCmd(),
		newSnippetListCmd(),
		newSnippetRmCmd(),
	)
	return cmd
}

func newSnippetAddCmd() *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:     "add <title>",
		Short:   "Add a snippet (content from stdin unless --content is given)",
		Args:    cobra.ExactArgs(1),
		PreRunE: func(cmd *cobra.Command, _ []string) error { return bindViper(cmd, v) },
		RunE: func(_ *cobra.Command, args []string) error {
			return runSnippetAdd(v, args[0])
		},
	}

	cmd.Flags().String("content", "", "snippet content (default: read stdin)")
	cmd.Flags().String("trigger", "", "chord to bind, e.g. ctrl+shift+1")
	addDataDirFlag(cmd)
	addConfigFlag(cmd)
	return cmd
}

func runSnippetAdd(v *viper.Viper, title string) error {
	logging.Quiet()

	content := v.GetString("content")
	if content == "" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return fmt.Errorf("read stdin: %w", err)
		}
		content = string(data)
	}
	if content == "" {
		return fmt.Errorf("empty snippet content")
	}

	trigger := v.GetString("trigger")
	if trigger != "" {
		// validate and canonicalize now so the daemon never sees garbage
		c, err := chord.Parse(trigger)
		if err != nil {
			return fmt.Errorf("invalid trigger: %w", err)
		}
		trigger = c.String()
	}

	st, err := store.Open(v.GetString("data-dir"))
	if err != nil {
		return err
	}
	defer st.Close()

	sn := store.Snippet{
		ID:      uuid.NewString(),
		Title:   title,
		Content: content,
		Trigger: trigger,
	}
	if err := st.PutSnippet(context.Background(), sn); err != nil {
		return err
	}
	fmt.Println(sn.ID)
	return nil
}

func newSnippetListCmd() *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:     "list",
		Short:   "List snippets in order",
		Args:    cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error { return bindViper(cmd, v) },
		RunE: func(_ *cobra.Command, _ []string) error {
			logging.Quiet()
			st, err := store.Open(v.GetString("data-dir"))
			if err != nil {
				return err
			}
			defer st.Close()

			snips, err := st.Snippets(context.Background())
			if err != nil {
				return err
			}
			if len(snips) == 0 {
				fmt.Println("No snippets.")
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 1, 0, 2, ' ', 0)
			fmt.Fprintf(w, "ID\tTITLE\tTRIGGER\tCONTENT\n")
			for _, sn := range snips {
				trigger := sn.Trigger
				if trigger == "" {
					trigger = "-"
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", sn.ID, sn.Title, trigger, preview(sn.Content, 40))
			}
			return w.Flush()
		},
	}

	addDataDirFlag(cmd)
	addConfigFlag(cmd)
	return cmd
}

func newSnippetRmCmd() *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:     "rm <id>",
		Short:   "Delete a snippet",
		Args:    cobra.ExactArgs(1),
		PreRunE: func(cmd *cobra.Command, _ []string) error { return bindViper(cmd, v) },
		RunE: func(_ *cobra.Command, args []string) error {
			logging.Quiet()
			st, err := store.Open(v.GetString("data-dir"))
			if err != nil {
				return err
			}
			defer st.Close()
			return st.DeleteSnippet(context.Background(), args[0])
		},
	}

	addDataDirFlag(cmd)
	addConfigFlag(cmd)
	return cmd
}
