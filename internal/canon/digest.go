package canon

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// DomainOutput prefixes digests of run outputs. The version suffix allows
// the encoding to change without old digests colliding with new ones.
const DomainOutput = "stratasim/output/v1"

// Digest computes SHA256(domain + 0x00 + data) as lowercase hex.
func Digest(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// MarshalDigest canonicalizes v and digests it under domain.
// It returns both the canonical bytes and the digest.
func MarshalDigest(domain string, v any) ([]byte, string, error) {
	data, err := Marshal(v)
	if err != nil {
		return nil, "", fmt.Errorf("canonical marshal: %w", err)
	}
	return data, Digest(domain, data), nil
}
