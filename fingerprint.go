package matex

import (
	"crypto/sha256"
	"encoding/hex"
	"hash"
)

// HashFunc returns a fresh hash.Hash used to fingerprint snippet bodies.
type HashFunc func() hash.Hash

// defaultHashFunc is SHA-256: the fingerprint gates branch regeneration, so
// it must be a cryptographic digest, stable across platforms and runs.
func defaultHashFunc() hash.Hash {
	return sha256.New()
}

// Fingerprint returns the SHA-256 digest of a snippet body as lowercase hex.
// Identical bodies always produce identical fingerprints; any byte change
// produces a different one.
func Fingerprint(body []byte) string {
	return fingerprintWith(defaultHashFunc(), body)
}

// fingerprintWith renders the digest of body under h as lowercase hex.
func fingerprintWith(h hash.Hash, body []byte) string {
	h.Write(body)
	return hex.EncodeToString(h.Sum(nil))
}

// isHex reports whether s is non-empty lowercase or uppercase hex.
func isHex(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
		case r >= 'a' && r <= 'f':
		case r >= 'A' && r <= 'F':
		default:
			return false
		}
	}
	return true
}
