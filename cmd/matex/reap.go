package main

import (
	"fmt"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/myyoda/matex"
)

var reapCmd = &cobra.Command{
	Use:   "reap",
	Short: "Delete every materialized branch from the remote",
	Long: `reap lists all branches under the configured namespace on the remote
and deletes them. With --dry-run the branches are only listed.`,
	RunE: runReap,
}

func init() {
	reapCmd.Flags().String("namespace", "", "branch namespace prefix")
	reapCmd.Flags().String("remote", "", "remote to prune")
	reapCmd.Flags().Bool("dry-run", false, "list branches without deleting them")
	rootCmd.AddCommand(reapCmd)
}

func runReap(cmd *cobra.Command, args []string) error {
	repoDir, _ := cmd.Flags().GetString("repo")
	dryRun, _ := cmd.Flags().GetBool("dry-run")

	cfg, err := matex.LoadConfig(afero.NewOsFs(), repoDir)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("namespace") {
		cfg.Namespace, _ = cmd.Flags().GetString("namespace")
	}
	if cmd.Flags().Changed("remote") {
		cfg.Remote, _ = cmd.Flags().GetString("remote")
	}

	rp, err := matex.NewReaper(repoDir, cfg.Remote, cfg.Namespace,
		matex.WithReaperLogger(newLogger()))
	if err != nil {
		return err
	}

	branches, err := rp.Reap(cmd.Context(), dryRun)
	if err != nil {
		return err
	}

	verb := "deleted"
	if dryRun {
		verb = "would delete"
	}
	for _, branch := range branches {
		fmt.Fprintln(cmd.OutOrStdout(), verb, branch)
	}
	if len(branches) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "no branches to reap")
	}
	return nil
}
