package matex

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"

	"github.com/spf13/afero"
)

// snapshot is the scratch area a snippet execution left behind. It owns the
// whole directory; Close releases it. Individual target trees are located
// inside it with findTree.
type snapshot struct {
	scratch string
	fs      afero.Fs
}

// Close removes the scratch area and everything under it.
func (s *snapshot) Close() error {
	return s.fs.RemoveAll(s.scratch)
}

// executor runs snippet bodies in isolated scratch directories.
type executor struct {
	run Runner
	fs  afero.Fs
	log *slog.Logger
}

// execute runs the snippet body as a script inside a fresh scratch
// directory. TMPDIR points into the scratch area, so any mktemp the snippet
// performs stays inside it and is reclaimed with it.
//
// On success the caller owns the returned snapshot and must Close it. On
// timeout or a non-matching exit code the scratch area is already cleaned
// up and an *ExecError carrying the captured output is returned.
func (e *executor) execute(ctx context.Context, sn Snippet) (*snapshot, error) {
	scratch, err := afero.TempDir(e.fs, "", "matex-"+sn.RunID+"-")
	if err != nil {
		return nil, err
	}
	snap := &snapshot{scratch: scratch, fs: e.fs}

	script := filepath.Join(scratch, "snippet.sh")
	if err := afero.WriteFile(e.fs, script, []byte(sn.Body), 0o700); err != nil {
		snap.Close()
		return nil, err
	}

	runCtx, cancel := context.WithTimeout(ctx, sn.Timeout)
	defer cancel()

	e.log.Debug("executing snippet",
		"run_id", sn.RunID,
		"timeout", sn.Timeout,
		"scratch", scratch)

	out, err := e.run.Run(runCtx, scratch, []string{"TMPDIR=" + scratch}, "sh", script)
	if execErr := e.check(sn, runCtx, out, err); execErr != nil {
		snap.Close()
		return nil, execErr
	}
	return snap, nil
}

// check maps a runner outcome onto the snippet's declared expectations.
func (e *executor) check(sn Snippet, runCtx context.Context, out string, err error) error {
	exitCode := 0
	output := out

	var cmdErr *CommandError
	if errors.As(err, &cmdErr) {
		exitCode = cmdErr.ExitCode
		if cmdErr.Stderr != "" {
			output += "\n" + cmdErr.Stderr
		}
	}

	if runCtx.Err() == context.DeadlineExceeded {
		return &ExecError{RunID: sn.RunID, TimedOut: true, Output: output}
	}
	if err != nil && cmdErr == nil {
		// The command could not be started at all.
		return err
	}
	if exitCode != sn.ExpectedExit {
		return &ExecError{
			RunID:    sn.RunID,
			ExitCode: exitCode,
			Expected: sn.ExpectedExit,
			Output:   output,
		}
	}
	return nil
}

// errTreeFound stops the walk early once the target tree is located.
var errTreeFound = errors.New("tree found")

// findTree locates the directory tree named target that the snippet
// produced: a directory whose base name is target and which contains a .git
// entry. The snippet's own actions created it; it is returned unmodified.
func (s *snapshot) findTree(target string) (string, error) {
	var found string
	err := afero.Walk(s.fs, s.scratch, func(path string, info fs.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() {
			return nil
		}
		if filepath.Base(path) == ".git" {
			return filepath.SkipDir
		}
		if filepath.Base(path) == target {
			if ok, _ := afero.Exists(s.fs, filepath.Join(path, ".git")); ok {
				found = path
				return errTreeFound
			}
		}
		return nil
	})
	if err != nil && !errors.Is(err, errTreeFound) {
		return "", err
	}
	if found == "" {
		return "", fmt.Errorf("snippet left no repository named %q", target)
	}
	return found, nil
}
