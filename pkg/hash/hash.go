package hash

import (
	"crypto/sha256"
	"encoding/hex"
)

// SHA256Hex returns the hex-encoded SHA256 hash of the input string.
func SHA256Hex(input string) string {
	h := sha256.Sum256([]byte(input))
	return hex.EncodeToString(h[:])
}

// Prefix returns the first n characters of SHA256(input).
func Prefix(input string, n int) string {
	full := SHA256Hex(input)
	if n > len(full) || n <= 0 {
		return full
	}
	return full[:n]
}

// PageKey is the Redis key for a cached page body.
func PageKey(url string) string {
	return "page:" + Prefix(url, 32)
}

// ShortIP produces an irreversible 12-char token for log correlation.
func ShortIP(ip string) string {
	return Prefix(ip, 12)
}
