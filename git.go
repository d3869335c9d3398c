package matex

import (
	"context"
	"fmt"
	"strings"
)

// gitRepo is a thin porcelain over the git CLI, scoped to one repository.
// Every method is a single git invocation through the Runner; none of them
// keeps state between calls.
type gitRepo struct {
	dir string
	run Runner
}

// output runs git with args and returns its trimmed stdout.
func (g gitRepo) output(ctx context.Context, args ...string) (string, error) {
	out, err := g.run.Run(ctx, g.dir, nil, "git", args...)
	return strings.TrimSpace(out), err
}

// gitDir returns the absolute path of the repository's .git directory.
func (g gitRepo) gitDir(ctx context.Context) (string, error) {
	return g.output(ctx, "rev-parse", "--absolute-git-dir")
}

// branchTip resolves the tip commit of a local branch. ok is false when the
// branch does not exist.
func (g gitRepo) branchTip(ctx context.Context, branch string) (tip string, ok bool) {
	out, err := g.output(ctx, "rev-parse", "--verify", "--quiet", "refs/heads/"+branch)
	if err != nil || out == "" {
		return "", false
	}
	return out, true
}

// fetchBranch publishes the HEAD of the repository at src as a local branch,
// force-updating it in a single atomic ref write.
func (g gitRepo) fetchBranch(ctx context.Context, src, branch string) error {
	_, err := g.output(ctx, "fetch", "--quiet", src, "+HEAD:refs/heads/"+branch)
	if err != nil {
		return fmt.Errorf("publish %s: %w", branch, err)
	}
	return nil
}

// noteShow reads the note attached to commit under notesRef. Returns an
// error when no note exists.
func (g gitRepo) noteShow(ctx context.Context, notesRef, commit string) (string, error) {
	return g.output(ctx, "notes", "--ref="+notesRef, "show", commit)
}

// noteAdd attaches message as a note to commit under notesRef, replacing
// any prior note on that commit.
func (g gitRepo) noteAdd(ctx context.Context, notesRef, commit, message string) error {
	_, err := g.output(ctx, "notes", "--ref="+notesRef, "add", "-f", "-m", message, commit)
	return err
}

// remoteURL reads the configured URL of a named remote.
func (g gitRepo) remoteURL(ctx context.Context, name string) (string, error) {
	return g.output(ctx, "remote", "get-url", name)
}

// worktreeAdd checks branch out into a new worktree at path.
func (g gitRepo) worktreeAdd(ctx context.Context, path, branch string) error {
	_, err := g.output(ctx, "worktree", "add", "--force", path, branch)
	return err
}

// worktreeRemove drops the worktree at path. Removing a path that is not a
// registered worktree is an error; callers decide whether that matters.
func (g gitRepo) worktreeRemove(ctx context.Context, path string) error {
	_, err := g.output(ctx, "worktree", "remove", "--force", path)
	return err
}

// lsRemoteHeads enumerates branch names on remote matching pattern, without
// touching local refs.
func (g gitRepo) lsRemoteHeads(ctx context.Context, remote, pattern string) ([]string, error) {
	out, err := g.output(ctx, "ls-remote", "--heads", remote, pattern)
	if err != nil {
		return nil, err
	}
	var branches []string
	for _, line := range strings.Split(out, "\n") {
		// "<sha>\trefs/heads/<branch>"
		_, ref, found := strings.Cut(strings.TrimSpace(line), "\t")
		if !found {
			continue
		}
		if branch, ok := strings.CutPrefix(ref, "refs/heads/"); ok {
			branches = append(branches, branch)
		}
	}
	return branches, nil
}

// pushDelete deletes branches on remote in one push.
func (g gitRepo) pushDelete(ctx context.Context, remote string, branches []string) error {
	args := append([]string{"push", remote, "--delete"}, branches...)
	_, err := g.output(ctx, args...)
	return err
}

// addFile stages one file.
func (g gitRepo) addFile(ctx context.Context, file string) error {
	_, err := g.output(ctx, "add", "--", file)
	return err
}

// amend folds the currently staged changes into the tip commit without
// changing its message. The commit count stays what it was.
func (g gitRepo) amend(ctx context.Context) error {
	_, err := g.output(ctx, "commit", "--amend", "--no-edit", "--quiet")
	return err
}
