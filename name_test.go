package matex

import (
	"path/filepath"
	"testing"
)

func TestBranchName(t *testing.T) {
	branch := BranchName("examples", "quickstart", "build", "widgets")
	if branch != "examples/quickstart/build/widgets" {
		t.Fatalf("Unexpected branch name: %s", branch)
	}

	// Distinct keys must never collide.
	other := BranchName("examples", "quickstart", "build", "raw-data")
	if branch == other {
		t.Fatalf("Distinct targets produced the same branch: %s", branch)
	}
}

func TestWorktreePath(t *testing.T) {
	got := WorktreePath("/tmp/out", "examples", "quickstart", "build", "widgets")
	want := filepath.Join("/tmp/out", "examples", "quickstart", "build", "widgets")
	if got != want {
		t.Fatalf("Expected worktree path %s, got %s", want, got)
	}
}
