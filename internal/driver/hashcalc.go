package driver

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"

	"moveflow/internal/moves"
)

// Digest is a SHA-256 value used as a disk cache key.
type Digest [sha256.Size]byte

func (d Digest) String() string { return hex.EncodeToString(d[:]) }

// IsZero reports whether d was never computed.
func (d Digest) IsZero() bool { return d == Digest{} }

// combineDigest: H(content || part1 || part2 ...). parts уже в детерминированном порядке.
func combineDigest(content Digest, parts ...[]byte) Digest {
	h := sha256.New()
	_, _ = h.Write(content[:])
	for _, p := range parts {
		_, _ = h.Write(p)
	}
	var out Digest
	copy(out[:], h.Sum(nil))
	return out
}

// CacheKey derives the disk cache key for a fixture from its content hash.
// Both the payload and the snapshot schema take part, so bumping either
// invalidates old entries.
func CacheKey(content [sha256.Size]byte) Digest {
	var schema [4]byte
	binary.LittleEndian.PutUint16(schema[0:], diskCacheSchemaVersion)
	binary.LittleEndian.PutUint16(schema[2:], moves.SnapshotSchema)
	return combineDigest(Digest(content), schema[:])
}
