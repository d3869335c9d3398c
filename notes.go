package matex

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
)

// FingerprintLabel prefixes the fingerprint field inside a cache record.
const FingerprintLabel = "Fingerprint:"

// cacheStore persists per-branch fingerprints as git notes attached to
// branch tips. Notes live outside the commit graph, so the bookkeeping is
// never observable as a commit or a commit-message marker.
//
// A record is trustworthy only in combination with the tip it is attached
// to: if the branch was rewritten by other means, its new tip carries no
// note and lookup reports a miss. Fail-safe, not fail-open.
type cacheStore struct {
	repo gitRepo
	ref  string // refs/notes/<namespace>
	log  *slog.Logger
}

// notesRef derives the notes namespace from the branch namespace.
func notesRef(namespace string) string {
	return "refs/notes/" + namespace
}

// lookup reads the fingerprint recorded on the current tip of branch.
// ok is false when the branch does not exist, carries no note, or carries
// a note that does not parse (corrupt records are misses, not failures).
func (s cacheStore) lookup(ctx context.Context, branch string) (fp, tip string, ok bool) {
	tip, exists := s.repo.branchTip(ctx, branch)
	if !exists {
		return "", "", false
	}

	note, err := s.repo.noteShow(ctx, s.ref, tip)
	if err != nil {
		return "", tip, false
	}

	fp, err = parseRecord(note)
	if err != nil {
		s.log.Warn("ignoring unparsable cache record",
			"branch", branch,
			"tip", tip,
			"error", err)
		return "", tip, false
	}
	return fp, tip, true
}

// record attaches fingerprint to the current tip of branch, replacing any
// prior record for that tip.
func (s cacheStore) record(ctx context.Context, branch, fingerprint string) error {
	tip, exists := s.repo.branchTip(ctx, branch)
	if !exists {
		return fmt.Errorf("record %s: branch does not exist", branch)
	}
	return s.repo.noteAdd(ctx, s.ref, tip, FingerprintLabel+" "+fingerprint)
}

// parseRecord extracts the fingerprint from a cache record body.
func parseRecord(note string) (string, error) {
	for _, line := range strings.Split(note, "\n") {
		value, ok := strings.CutPrefix(strings.TrimSpace(line), FingerprintLabel)
		if !ok {
			continue
		}
		value = strings.TrimSpace(value)
		if !isHex(value) {
			return "", fmt.Errorf("%w: bad fingerprint %q", ErrRecordCorrupt, value)
		}
		return value, nil
	}
	return "", fmt.Errorf("%w: no %s line", ErrRecordCorrupt, FingerprintLabel)
}
