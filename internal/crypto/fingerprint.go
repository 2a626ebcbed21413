package crypto

import (
	"encoding/hex"

	"golang.org/x/crypto/blake2b"
)

// Fingerprint returns a short hex fingerprint of an opaque id.
//
// It hashes with BLAKE2b-256 and truncates to 10 bytes (20 hex chars).
func Fingerprint(id []byte) string {
	sum := blake2b.Sum256(id)
	return hex.EncodeToString(sum[:10])
}
