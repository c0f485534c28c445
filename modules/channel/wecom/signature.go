package wecom

import (
	"crypto/sha1"
	"encoding/hex"
	"sort"
	"strings"
)

// Signature computes the callback signature: the inputs are sorted
// lexicographically as strings, concatenated, and SHA1-hex-digested.
// Encrypted deliveries sign {token, timestamp, nonce, payload}; plaintext
// deliveries sign only {token, timestamp, nonce}. Pure function, no I/O.
func Signature(parts ...string) string {
	sorted := make([]string, len(parts))
	copy(sorted, parts)
	sort.Strings(sorted)

	sum := sha1.Sum([]byte(strings.Join(sorted, "")))
	return hex.EncodeToString(sum[:])
}

// ValidSignature reports whether got matches the computed signature of
// parts. The comparison is case-sensitive: an uppercased hex digest of the
// correct value must still reject.
func ValidSignature(got string, parts ...string) bool {
	return got != "" && got == Signature(parts...)
}
