package transcript

import (
	"crypto/sha256"
	"encoding/hex"
	"io"
)

// Checksum returns the SHA-256 hex digest of content. The digest identifies
// byte-identical source files regardless of filename, which is what duplicate
// grouping keys on.
func Checksum(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])
}

// ChecksumReader computes the SHA-256 hex digest of everything readable from r.
func ChecksumReader(r io.Reader) (string, error) {
	h := sha256.New()
	if _, err := io.Copy(h, r); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
