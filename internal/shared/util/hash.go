package util

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// OwnerKey derives the object-key segment for an owner so raw user and guest
// IDs never appear in storage paths. Surrounding whitespace is ignored.
func OwnerKey(ownerID string) string {
	sum := sha256.Sum256([]byte(strings.TrimSpace(ownerID)))
	return hex.EncodeToString(sum[:])
}
