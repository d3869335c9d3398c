package matex

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors
var (
	// ErrRemoteNotFound is returned when no remote URL can be resolved from
	// either the environment or the local git configuration. It is fatal to
	// a materialization run: submodule rewriting cannot proceed without it.
	ErrRemoteNotFound = errors.New("no remote URL could be resolved")

	// ErrRecordCorrupt is returned when a cache record is present on a
	// branch tip but cannot be parsed. Lookups treat it as a cache miss.
	ErrRecordCorrupt = errors.New("cache record is unparsable")

	// ErrLocked is returned when another materialization process holds the
	// repository lock.
	ErrLocked = errors.New("repository is locked by another materialization")
)

// PragmaError reports a malformed annotation in a documentation snippet.
// It aborts the snippet that carries it, never the whole run.
type PragmaError struct {
	File   string // documentation file the snippet came from
	Reason string
}

// Error implements the error interface.
func (e *PragmaError) Error() string {
	return fmt.Sprintf("%s: %s", e.File, e.Reason)
}

// ExecError reports a snippet execution that did not complete as its
// pragmas declared: a non-matching exit code or a timeout. Output carries
// the captured stdout and stderr of the run.
type ExecError struct {
	RunID    string
	ExitCode int
	Expected int
	TimedOut bool
	Output   string
}

// Error implements the error interface.
func (e *ExecError) Error() string {
	var buf strings.Builder
	if e.TimedOut {
		fmt.Fprintf(&buf, "snippet %s timed out", e.RunID)
	} else {
		fmt.Fprintf(&buf, "snippet %s exited with code %d (expected %d)", e.RunID, e.ExitCode, e.Expected)
	}
	if out := strings.TrimSpace(e.Output); out != "" {
		fmt.Fprintf(&buf, "\noutput:\n%s", out)
	}
	return buf.String()
}

// CommandError reports an external command that exited non-zero or could
// not be started. All git failures surface as CommandError.
type CommandError struct {
	Name     string
	Args     []string
	ExitCode int // -1 when the command could not be started
	Stderr   string
	Err      error // underlying start error, if any
}

// Error implements the error interface.
func (e *CommandError) Error() string {
	cmd := e.Name
	if len(e.Args) > 0 {
		cmd += " " + strings.Join(e.Args, " ")
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", cmd, e.Err)
	}
	if e.Stderr != "" {
		return fmt.Sprintf("%s: exit %d: %s", cmd, e.ExitCode, e.Stderr)
	}
	return fmt.Sprintf("%s: exit %d", cmd, e.ExitCode)
}

// Unwrap returns the underlying start error for errors.Is and errors.As.
func (e *CommandError) Unwrap() error {
	return e.Err
}
