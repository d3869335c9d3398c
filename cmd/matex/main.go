// Command matex materializes runnable documentation snippets as git
// branches of the hosting repository, and prunes those branches again.
//
// Usage:
//
//	matex materialize [--worktrees DIR]
//	matex reap [--dry-run]
//
// See each subcommand's help for flags. Configuration defaults may also be
// set in a .matex.yml file at the repository root.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := execute(); err != nil {
		fmt.Fprintln(os.Stderr, "matex:", err)
		os.Exit(1)
	}
}
