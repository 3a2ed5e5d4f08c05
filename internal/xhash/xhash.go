// Package xhash wraps golang.org/x/crypto/sha3 with the one-shot and
// streaming SHA3-512 entry points the rest of the device core needs,
// mirroring original_source/src/crypto/sha/sha3.rs (itself a thin wrapper
// around the secure element's hash accelerator).
package xhash

import (
	"hash"

	"golang.org/x/crypto/sha3"
)

// Sum512 hashes data with SHA3-512 in one call.
func Sum512(data []byte) [64]byte {
	return sha3.Sum512(data)
}

// Streaming wraps a running SHA3-512 state so the transaction parser can
// hash a transaction byte-by-byte as it streams in, without holding the
// whole buffer in memory.
type Streaming struct {
	h hash.Hash
}

// NewStreaming starts a fresh SHA3-512 hash.
func NewStreaming() *Streaming {
	return &Streaming{h: sha3.New512()}
}

// Write feeds more bytes into the running hash. It never returns an error;
// hash.Hash.Write is documented to never fail.
func (s *Streaming) Write(p []byte) {
	s.h.Write(p)
}

// Sum returns the 64-byte digest of everything written so far without
// resetting the running state.
func (s *Streaming) Sum() [64]byte {
	var out [64]byte
	copy(out[:], s.h.Sum(nil))
	return out
}
