package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// hashKey builds a namespaced cache key from a prefix and its parts, e.g.
// "artifact:<sha256 of design hash + render options>". The full 256-bit hash
// keeps distinct designs and option sets from ever sharing an entry.
func hashKey(prefix string, parts ...any) string {
	data, _ := json.Marshal(parts)
	sum := sha256.Sum256(data)
	return fmt.Sprintf("%s:%s", prefix, hex.EncodeToString(sum[:]))
}

// Hash returns the SHA-256 hex digest of data. The pipeline hashes the
// design's TOML form with it, so any edit to a design changes its artifact
// key.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
