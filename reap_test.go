package matex

import (
	"context"
	"strings"
	"testing"
)

func reapFixture(t *testing.T, branches []string, pushErr error) (*Reaper, *fakeRunner) {
	t.Helper()

	run := &fakeRunner{fn: func(dir string, env []string, name string, args ...string) (string, error) {
		switch args[0] {
		case "ls-remote":
			var lines []string
			for _, b := range branches {
				lines = append(lines, testTip+"\trefs/heads/"+b)
			}
			return strings.Join(lines, "\n"), nil
		case "push":
			return "", pushErr
		}
		return "", nil
	}}

	rp, err := NewReaper("/repo", "origin", "examples", WithReaperRunner(run))
	if err != nil {
		t.Fatalf("Failed to create reaper: %v", err)
	}
	return rp, run
}

func TestReaperList(t *testing.T) {
	want := []string{"examples/doc/run/widgets", "examples/doc/run/raw-data"}
	rp, run := reapFixture(t, want, nil)

	branches, err := rp.List(context.Background())
	assertNoError(t, err, "List")

	if len(branches) != 2 || branches[0] != want[0] || branches[1] != want[1] {
		t.Fatalf("Unexpected branches: %v", branches)
	}
	if run.called("ls-remote --heads origin examples/*") != 1 {
		t.Fatalf("Expected a namespace-scoped ls-remote, calls: %v", run.calls)
	}
}

func TestReaperDeletes(t *testing.T) {
	want := []string{"examples/a/b/c", "examples/d/e/f"}
	rp, run := reapFixture(t, want, nil)

	deleted, err := rp.Reap(context.Background(), false)
	assertNoError(t, err, "Reap")

	if len(deleted) != 2 {
		t.Fatalf("Expected 2 deleted branches, got %v", deleted)
	}
	if run.called("push origin --delete "+want[0]+" "+want[1]) != 1 {
		t.Fatalf("Expected one batched delete, calls: %v", run.calls)
	}
}

func TestReaperDryRun(t *testing.T) {
	rp, run := reapFixture(t, []string{"examples/a/b/c"}, nil)

	branches, err := rp.Reap(context.Background(), true)
	assertNoError(t, err, "Reap dry-run")

	if len(branches) != 1 {
		t.Fatalf("Expected the doomed branch to be reported, got %v", branches)
	}
	if run.called("push") != 0 {
		t.Fatalf("Dry run must not delete, calls: %v", run.calls)
	}
}

func TestReaperNothingToReap(t *testing.T) {
	rp, run := reapFixture(t, nil, nil)

	branches, err := rp.Reap(context.Background(), false)
	assertNoError(t, err, "Reap with empty namespace")

	if len(branches) != 0 {
		t.Fatalf("Expected no branches, got %v", branches)
	}
	if run.called("push") != 0 {
		t.Fatalf("Nothing to delete, calls: %v", run.calls)
	}
}

func TestReaperDeleteFailure(t *testing.T) {
	pushErr := &CommandError{Name: "git", ExitCode: 1, Stderr: "remote: permission denied"}
	rp, _ := reapFixture(t, []string{"examples/a/b/c"}, pushErr)

	// Deletion failures are fatal: the remote may hold a partial namespace.
	if _, err := rp.Reap(context.Background(), false); err == nil {
		t.Fatal("Expected the deletion failure to surface")
	}
}
