/*
Package matex materializes runnable shell snippets embedded in documentation
into standalone git branches and worktrees.

It provides content-addressed caching of snippet executions: each snippet body
is fingerprinted, and the fingerprint travels with the materialized branch as
a git note, so repeated runs detect "nothing changed" and skip the expensive
regeneration entirely.

# Overview

Documentation files under a content directory embed fenced sh/bash blocks
annotated with "# pragma:" directives. Blocks carrying a "testrun" pragma are
runnable; blocks additionally carrying one or more "materialize" pragmas name
repositories that the snippet builds and that should be published as branches
of the hosting repository.

Executing a snippet is potentially expensive (it may clone repositories,
build files, initialize nested projects), so materialization is idempotent:
a branch is regenerated only when the snippet body that produced it has
changed.

# Core Architecture

One materialization key is the triple (document id, run id, target name).
It maps deterministically to a branch:

	examples/<document_id>/<run_id>/<target>

The cache protocol keeps branch history pristine. The fingerprint of the
snippet body is attached to the branch tip as a git note under
refs/notes/<namespace> - never as a commit or commit-message marker - so the
published history is exactly the history the snippet itself created. A branch
tip without a parseable note is treated as a cache miss and regenerated.

Snippets run in a fresh scratch directory with TMPDIR pointed inside it, so
everything a snippet leaves behind is found and cleaned up in one place.
The resulting tree is published with a single atomic ref update; a failed
regeneration never leaves a partially written branch.

# Basic Usage

Materializing every snippet in a repository:

	snippets, errs := matex.LoadSnippets(afero.NewOsFs(), "content/examples", 60*time.Second)
	for _, err := range errs {
	    log.Println(err) // malformed pragmas abort their snippet only
	}

	m, err := matex.New(".")
	if err != nil {
	    log.Fatal(err)
	}

	results, err := m.Run(ctx, snippets)
	if err != nil {
	    log.Fatal(err) // unresolvable remote, lock held, ...
	}

	for _, r := range results {
	    fmt.Printf("%s %s\n", r.Status, r.Branch)
	}

Pruning materialized branches from the remote:

	reaper, err := matex.NewReaper(".", "origin", "examples")
	if err != nil {
	    log.Fatal(err)
	}
	deleted, err := reaper.Reap(ctx, false)

# Subprocesses

All git operations and snippet executions are shell-outs through the narrow
Runner interface, which runs one command in one directory with a context
deadline and captured output. Production code uses the git CLI directly
(compatible with user configuration, credential helpers and aliases); tests
substitute a scripted Runner and never need git installed.
*/
package matex
