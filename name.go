package matex

import (
	"path"
	"path/filepath"
)

// DefaultNamespace is the fixed first segment of every materialized branch.
const DefaultNamespace = "examples"

// BranchName derives the branch identifier for one materialization key.
// It is pure and injective for distinct (documentID, runID, target) inputs:
// the three components are path segments, so no two keys can collide.
// Components are assumed to be sanitized upstream (they come from file stems
// and pragma values, which never contain separators).
func BranchName(namespace, documentID, runID, target string) string {
	return path.Join(namespace, documentID, runID, target)
}

// WorktreePath mirrors BranchName on the filesystem: the same hierarchy
// under root, with the platform's path separators.
func WorktreePath(root, namespace, documentID, runID, target string) string {
	return filepath.Join(root, namespace, documentID, runID, target)
}
