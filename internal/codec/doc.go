// Package codec encodes diagram documents for storage.
//
// Documents are serialized with deterministic CBOR, so the same document
// always produces the same bytes, and then compressed with zstd. A blake3
// digest of the uncompressed encoding identifies document content; the
// autosaver uses it to skip saves that would not change anything.
package codec
