package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "matex",
	Short: "Materialize documentation snippets as git branches",
	Long: `matex extracts annotated shell snippets from Markdown documents,
executes them, and publishes the repositories they build as branches of
the hosting repository. Branch tips carry a content fingerprint, so an
unchanged snippet is never re-executed.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringP("repo", "C", ".", "path to the hosting repository")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

// newLogger builds the stderr logger shared by all subcommands. Diagnostic
// output goes to stderr; stdout carries only the per-key result lines.
func newLogger() *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}
