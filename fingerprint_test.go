package matex

import (
	"crypto/sha512"
	"hash"
	"testing"
)

func TestFingerprintDeterministic(t *testing.T) {
	body := []byte("git init widgets\n")

	a := Fingerprint(body)
	b := Fingerprint(body)
	if a != b {
		t.Fatalf("Same body produced different fingerprints: %s vs %s", a, b)
	}
	if len(a) != 64 {
		t.Fatalf("Expected 64 hex chars for SHA-256, got %d (%s)", len(a), a)
	}
	if !isHex(a) {
		t.Fatalf("Fingerprint is not hex: %s", a)
	}
}

func TestFingerprintChangesWithBody(t *testing.T) {
	a := Fingerprint([]byte("git init widgets\n"))
	b := Fingerprint([]byte("git init widgets"))
	if a == b {
		t.Fatalf("Distinct bodies produced the same fingerprint: %s", a)
	}
}

func TestFingerprintWithCustomHash(t *testing.T) {
	var h HashFunc = func() hash.Hash { return sha512.New() }

	fp := fingerprintWith(h(), []byte("payload"))
	if len(fp) != 128 {
		t.Fatalf("Expected 128 hex chars for SHA-512, got %d", len(fp))
	}
	if fp == Fingerprint([]byte("payload")) {
		t.Fatal("SHA-512 fingerprint unexpectedly matched the SHA-256 one")
	}
}

func TestIsHex(t *testing.T) {
	valid := []string{"0", "deadbeef", "DEADBEEF", "0123456789abcdefABCDEF"}
	for _, s := range valid {
		if !isHex(s) {
			t.Errorf("Expected %q to be hex", s)
		}
	}

	invalid := []string{"", "xyz", "dead beef", "0x12", "g1"}
	for _, s := range invalid {
		if isHex(s) {
			t.Errorf("Expected %q to not be hex", s)
		}
	}
}
