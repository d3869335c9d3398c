package matex

import (
	"context"
	"testing"
)

func TestBranchTip(t *testing.T) {
	run := &fakeRunner{fn: func(dir string, env []string, name string, args ...string) (string, error) {
		return testTip + "\n", nil
	}}
	repo := gitRepo{dir: "/repo", run: run}

	tip, ok := repo.branchTip(context.Background(), "examples/d/r/t")
	if !ok || tip != testTip {
		t.Fatalf("Expected tip %s, got %q (ok=%v)", testTip, tip, ok)
	}

	run.fn = func(dir string, env []string, name string, args ...string) (string, error) {
		return "", &CommandError{Name: name, Args: args, ExitCode: 1}
	}
	if _, ok := repo.branchTip(context.Background(), "examples/d/r/t"); ok {
		t.Fatal("Expected ok=false for a missing branch")
	}
}

func TestLsRemoteHeads(t *testing.T) {
	out := testTip + "\trefs/heads/examples/doc/run/widgets\n" +
		testTip + "\trefs/heads/examples/doc/run/raw-data\n" +
		"warning: something unrelated\n"
	run := &fakeRunner{fn: func(dir string, env []string, name string, args ...string) (string, error) {
		return out, nil
	}}
	repo := gitRepo{dir: "/repo", run: run}

	branches, err := repo.lsRemoteHeads(context.Background(), "origin", "examples/*")
	assertNoError(t, err, "lsRemoteHeads")

	want := []string{"examples/doc/run/widgets", "examples/doc/run/raw-data"}
	if len(branches) != len(want) {
		t.Fatalf("Expected %d branches, got %v", len(want), branches)
	}
	for i, b := range want {
		if branches[i] != b {
			t.Errorf("Expected branch %s at %d, got %s", b, i, branches[i])
		}
	}
}

func TestLsRemoteHeadsEmpty(t *testing.T) {
	run := &fakeRunner{fn: func(dir string, env []string, name string, args ...string) (string, error) {
		return "", nil
	}}
	repo := gitRepo{dir: "/repo", run: run}

	branches, err := repo.lsRemoteHeads(context.Background(), "origin", "examples/*")
	assertNoError(t, err, "lsRemoteHeads")
	if len(branches) != 0 {
		t.Fatalf("Expected no branches, got %v", branches)
	}
}
