package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"hash"
)

// DomainTrace is the domain prefix for trace content digests.
// Version suffix enables future algorithm migration.
const DomainTrace = "plantrace/trace/v1"

// NewTraceHasher returns a SHA-256 hash pre-seeded with the trace domain.
// Format: SHA256(domain + 0x00 + data)
// The null byte separator prevents domain/data boundary ambiguity.
//
// Feed it the decompressed trace bytes (e.g. via io.TeeReader) and finish
// with HexDigest.
func NewTraceHasher() hash.Hash {
	h := sha256.New()
	h.Write([]byte(DomainTrace))
	h.Write([]byte{0x00})
	return h
}

// HexDigest returns the hex encoding of h's current sum.
func HexDigest(h hash.Hash) string {
	return hex.EncodeToString(h.Sum(nil))
}

// TraceDigest computes the content digest of a fully buffered trace.
func TraceDigest(data []byte) string {
	h := NewTraceHasher()
	h.Write(data)
	return HexDigest(h)
}
