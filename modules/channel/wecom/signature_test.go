package wecom

import (
	"strings"
	"testing"
)

func TestSignatureSortsInputs(t *testing.T) {
	t.Parallel()

	// The digest covers the sorted concatenation, so argument order must
	// not matter.
	a := Signature("token", "1700000000", "nonce", "payload")
	b := Signature("payload", "nonce", "1700000000", "token")
	if a != b {
		t.Errorf("signature depends on argument order: %q != %q", a, b)
	}
	if len(a) != 40 {
		t.Errorf("digest length = %d, want 40 hex chars", len(a))
	}
	if a != strings.ToLower(a) {
		t.Errorf("digest not lowercase hex: %q", a)
	}
}

func TestSignatureKnownVector(t *testing.T) {
	t.Parallel()

	// sha1("abc") = a9993e364706816aba3e25717850c26c9cd0d89d; the three
	// parts sort to a, b, c.
	got := Signature("b", "c", "a")
	if got != "a9993e364706816aba3e25717850c26c9cd0d89d" {
		t.Errorf("Signature = %q", got)
	}
}

func TestValidSignature(t *testing.T) {
	t.Parallel()

	sig := Signature("token", "1700000000", "nonce")

	if !ValidSignature(sig, "token", "1700000000", "nonce") {
		t.Error("valid signature rejected")
	}
	if ValidSignature("", "token", "1700000000", "nonce") {
		t.Error("empty signature accepted")
	}
	if ValidSignature(sig, "token", "1700000000", "othernonce") {
		t.Error("signature over different parts accepted")
	}
	// Comparison is case-sensitive: an uppercased correct digest fails.
	if ValidSignature(strings.ToUpper(sig), "token", "1700000000", "nonce") {
		t.Error("uppercased signature accepted")
	}
}
