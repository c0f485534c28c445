package line

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
)

// ValidSignature reports whether signature matches the HMAC-SHA256 of body
// keyed by secret, base64 standard encoding. The comparison is over the
// exact raw body bytes as transmitted; re-serializing a parsed payload
// would silently break the check. Pure function, no I/O.
func ValidSignature(secret string, body []byte, signature string) bool {
	if signature == "" {
		return false
	}
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	expected := base64.StdEncoding.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}
