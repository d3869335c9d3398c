package matex

import (
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

// gitmodulesFile is the nested-repository manifest inside a snapshot.
const gitmodulesFile = ".gitmodules"

// RewriteSubmodules makes relative submodule URLs in the snapshot at dir
// self-contained. A relative url entry such as "../raw-data.git" is replaced
// by the hosting repository's URL plus a branch key naming the nested
// target's own materialized branch:
//
//	url = <baseURL>
//	branch = <namespace>/<documentID>/<runID>/<target>
//
// The nested target is resolved against the snippet's declared targets: the
// one matching the URL stem, or carrying it as a name prefix ("../raw-data.git"
// resolves to a declared "raw-data-work"). A stem with no declared match is
// used as-is.
//
// Entries that are already absolute are left untouched, which also makes the
// rewrite idempotent. Returns true when the manifest changed; a snapshot
// without a manifest is a no-op.
func RewriteSubmodules(fs afero.Fs, dir, namespace, documentID, runID, baseURL string, targets []string) (bool, error) {
	manifest := filepath.Join(dir, gitmodulesFile)
	data, err := afero.ReadFile(fs, manifest)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}

	lines := strings.Split(string(data), "\n")
	out := make([]string, 0, len(lines)+2)
	changed := false
	for _, line := range lines {
		indent, key, value, ok := splitManifestLine(line)
		if !ok || key != "url" || !isRelativeURL(value) {
			out = append(out, line)
			continue
		}
		target := resolveNestedTarget(strings.TrimSuffix(path.Base(value), ".git"), targets)
		out = append(out, indent+"url = "+baseURL)
		out = append(out, indent+"branch = "+BranchName(namespace, documentID, runID, target))
		changed = true
	}
	if !changed {
		return false, nil
	}
	return true, afero.WriteFile(fs, manifest, []byte(strings.Join(out, "\n")), 0o644)
}

// resolveNestedTarget maps a relative URL stem to the declared materialize
// target it refers to. Exact name match wins; otherwise the first declared
// target the stem prefixes (the snippet clones "../raw-data.git" into its
// working copy "raw-data-work" and materializes that).
func resolveNestedTarget(stem string, targets []string) string {
	for _, target := range targets {
		if target == stem {
			return target
		}
	}
	for _, target := range targets {
		if strings.HasPrefix(target, stem) {
			return target
		}
	}
	return stem
}

// splitManifestLine parses one "key = value" manifest line, preserving its
// leading whitespace.
func splitManifestLine(line string) (indent, key, value string, ok bool) {
	trimmed := strings.TrimLeft(line, " \t")
	indent = line[:len(line)-len(trimmed)]
	key, value, found := strings.Cut(trimmed, "=")
	if !found {
		return "", "", "", false
	}
	return indent, strings.TrimSpace(key), strings.TrimSpace(value), true
}

// isRelativeURL reports whether a submodule URL is relative to the
// superproject's own remote.
func isRelativeURL(u string) bool {
	return strings.HasPrefix(u, "./") || strings.HasPrefix(u, "../")
}
