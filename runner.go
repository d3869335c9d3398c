package matex

import (
	"bytes"
	"context"
	"errors"
	"os"
	"os/exec"
	"strings"
)

// Runner executes one external command in one directory and captures its
// output. It is the single boundary between the materialization core and
// the outside world: git operations and snippet executions both go through
// it, so tests can substitute a scripted implementation.
//
// env entries ("KEY=value") are appended to the inherited environment.
// Cancellation and deadlines come from ctx.
type Runner interface {
	Run(ctx context.Context, dir string, env []string, name string, args ...string) (stdout string, err error)
}

// execRunner is the production Runner on top of os/exec.
type execRunner struct{}

func (execRunner) Run(ctx context.Context, dir string, env []string, name string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	if len(env) > 0 {
		cmd.Env = append(os.Environ(), env...)
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if err == nil {
		return stdout.String(), nil
	}

	cmdErr := &CommandError{
		Name:     name,
		Args:     args,
		ExitCode: -1,
		Stderr:   strings.TrimSpace(stderr.String()),
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		cmdErr.ExitCode = exitErr.ExitCode()
	} else {
		cmdErr.Err = err
	}
	return stdout.String(), cmdErr
}
