package main

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/myyoda/matex"
)

var materializeCmd = &cobra.Command{
	Use:   "materialize",
	Short: "Extract, execute and publish every snippet",
	Long: `materialize scans the content directory for Markdown documents,
executes every annotated snippet whose branches are stale, and publishes
the resulting repositories as branches. With --worktrees-under the branches
are additionally checked out under the given directory.

One result line per (snippet, target) key is printed to stdout. The exit
status is non-zero when any key failed.`,
	RunE: runMaterialize,
}

func init() {
	materializeCmd.Flags().String("content", "", "directory scanned for *.md documents")
	materializeCmd.Flags().String("namespace", "", "branch namespace prefix")
	materializeCmd.Flags().String("remote", "", "remote used to resolve the base URL")
	materializeCmd.Flags().Int("timeout", 0, "default snippet timeout in seconds")
	materializeCmd.Flags().String("worktrees-under", "", "check materialized branches out under this directory")
	rootCmd.AddCommand(materializeCmd)
}

func runMaterialize(cmd *cobra.Command, args []string) error {
	repoDir, _ := cmd.Flags().GetString("repo")
	fs := afero.NewOsFs()
	log := newLogger()

	cfg, err := matex.LoadConfig(fs, repoDir)
	if err != nil {
		return err
	}
	applyFlagOverrides(cmd, &cfg)

	// The content directory is relative to the repository, not the cwd.
	content := cfg.Content
	if !filepath.IsAbs(content) {
		content = filepath.Join(repoDir, content)
	}

	snippets, parseErrs := matex.LoadSnippets(fs, content, time.Duration(cfg.Timeout)*time.Second)
	for _, perr := range parseErrs {
		log.Warn("skipping malformed snippet", "error", perr)
	}
	if len(snippets) == 0 && len(parseErrs) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "no snippets found in", content)
		return nil
	}

	opts := []matex.Option{
		matex.WithLogger(log),
		matex.WithNamespace(cfg.Namespace),
		matex.WithRemote(cfg.Remote),
	}
	if worktrees, _ := cmd.Flags().GetString("worktrees-under"); worktrees != "" {
		opts = append(opts, matex.WithWorktreesUnder(worktrees))
	}

	m, err := matex.New(repoDir, opts...)
	if err != nil {
		return err
	}

	results, err := m.Run(cmd.Context(), snippets)
	if err != nil {
		return err
	}

	failed := 0
	for _, res := range results {
		line := fmt.Sprintf("%-11s %s", res.Status, res.Branch)
		switch {
		case res.Failed():
			failed++
			line += ": " + res.Err.Error()
		case res.Detail != "":
			line += " (" + res.Detail + ")"
		}
		fmt.Fprintln(cmd.OutOrStdout(), line)
	}
	if failed > 0 || len(parseErrs) > 0 {
		return fmt.Errorf("%d of %d keys failed, %d snippets malformed",
			failed, len(results), len(parseErrs))
	}
	return nil
}

// applyFlagOverrides lets command-line flags win over .matex.yml values.
func applyFlagOverrides(cmd *cobra.Command, cfg *matex.Config) {
	if cmd.Flags().Changed("content") {
		cfg.Content, _ = cmd.Flags().GetString("content")
	}
	if cmd.Flags().Changed("namespace") {
		cfg.Namespace, _ = cmd.Flags().GetString("namespace")
	}
	if cmd.Flags().Changed("remote") {
		cfg.Remote, _ = cmd.Flags().GetString("remote")
	}
	if cmd.Flags().Changed("timeout") {
		cfg.Timeout, _ = cmd.Flags().GetInt("timeout")
	}
}
