// snipstash: personal snippet and clipboard manager.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"go.klb.dev/snipstash/internal/logging"
)

// Version is set at build time via -ldflags "-X main.Version=x.y.z".
var Version = "dev"

func main() {
	root := &cobra.Command{
		Use:   "snipstash",
		Short: "Personal snippet and clipboard manager",
		Long: `snipstash watches the system clipboard, classifies and deduplicates
what you copy, and keeps it as searchable history. Snippets can be bound to
keyboard chords and copied to the clipboard on activation.

Run "snipstash watch" to start the capture daemon. The other sub-commands
talk to the daemon over a local socket when one is running, and fall back to
the data directory otherwise.

Config file search order (first found wins):
  /etc/snipstash/snipstash.toml
  $HOME/.config/snipstash/snipstash.toml
  path supplied via --config

All flags can be set via SNIPSTASH_<FLAG> env vars or config-file keys.`,
		SilenceUsage: true,
	}

	root.AddCommand(
		newWatchCmd(),
		newCopyCmd(),
		newPasteCmd(),
		newHistoryCmd(),
		newSnippetCmd(),
		newTriggerCmd(),
		newStatusCmd(),
		newVersionCmd(),
	)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(_ *cobra.Command, _ []string) {
			fmt.Printf("snipstash %s\n", Version)
		},
	}
}

// resolveLogging sets up the global slog logger after flags are parsed.
func resolveLogging(interactive bool, formatStr, levelStr string) {
	format := logging.ParseFormat(formatStr)
	level := logging.ParseLevel(levelStr)
	if levelStr == "" {
		if interactive {
			level = logging.ParseLevel("debug")
		} else {
			level = logging.ParseLevel("info")
		}
	}
	logging.Setup(format, level)
}
