// Package checksum computes content digests used as note ETags and vault change markers.
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

// SumString is Sum for string content.
func SumString(s string) string {
	return Sum([]byte(s))
}

// ETag quotes a checksum for use in an ETag header.
func ETag(sum string) string {
	return `"` + sum + `"`
}

// ParseIfMatch strips quotes and the weak prefix from an If-Match header value.
// "*" and empty values yield "" which callers treat as "no precondition".
func ParseIfMatch(v string) string {
	v = strings.TrimSpace(v)
	v = strings.TrimPrefix(v, "W/")
	v = strings.Trim(v, `"`)
	if v == "*" {
		return ""
	}
	return v
}
