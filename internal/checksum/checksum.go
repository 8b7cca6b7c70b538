// Package checksum computes the content digests used for change detection and ETags.
package checksum

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// Sum returns the hex-encoded SHA-256 digest of data.
func Sum(data []byte) string {
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}

// ETag quotes a full digest for an HTTP ETag header. It is not shortened:
// If-Match values are compared against the whole checksum.
func ETag(sum string) string {
	return `"` + sum + `"`
}

// ParseETag returns the digest carried by an ETag or If-Match value. Quotes
// and a weak-validator prefix are optional.
func ParseETag(v string) string {
	v = strings.TrimSpace(v)
	v = strings.TrimPrefix(v, "W/")
	return strings.Trim(v, `"`)
}
