package codec

import (
	"encoding/hex"
	"fmt"

	"github.com/zeebo/blake3"

	"github.com/dshills/drawstorm/internal/diagram"
)

// Digest is a blake3 content hash.
type Digest [32]byte

// String returns the hex form of d.
func (d Digest) String() string {
	return hex.EncodeToString(d[:])
}

// IsZero reports whether d is the zero value.
func (d Digest) IsZero() bool {
	return d == Digest{}
}

// Sum returns the digest of data.
func Sum(data []byte) Digest {
	return Digest(blake3.Sum256(data))
}

// DigestDocument hashes the deterministic encoding of doc. Equal documents
// have equal digests regardless of map iteration order.
func DigestDocument(doc diagram.Document) (Digest, error) {
	data, err := Marshal(doc)
	if err != nil {
		return Digest{}, fmt.Errorf("digest document %s: %w", doc.ID, err)
	}
	return Sum(data), nil
}
