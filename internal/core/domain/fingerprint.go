package domain

import (
	"crypto/md5" //nolint:gosec // change detection only, not security-sensitive
	"encoding/hex"
)

// Fingerprint computes the content digest used for change detection.
// It is deterministic: identical input always yields identical output, and
// any byte difference changes the result with overwhelming probability.
// MD5 is used purely as a fast 128-bit equality check, never for security.
func Fingerprint(content string) string {
	sum := md5.Sum([]byte(content)) //nolint:gosec // see above
	return hex.EncodeToString(sum[:])
}
