package utils

import (
	"crypto/sha256"
	"encoding/hex"
)

// ContentHash computes the hex-encoded sha256 digest of data. This is the
// tamper-detection hash stored alongside a record's CID; it is computed from
// the raw bytes independently of the storage provider's own addressing.
func ContentHash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
