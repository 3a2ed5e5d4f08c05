// Package secure provides RAII-style wiping of sensitive byte buffers and
// constant-time comparison, grounded on
// original_source/src/crypto/secure.rs. Go has no destructors and no
// volatile-write intrinsic, so the Rust module's tools are adapted rather
// than transliterated: Release zeroes a buffer and calls runtime.KeepAlive
// immediately after, which keeps the GC from proving the zeroing dead and
// eliding it -- the same role compiler_fence(SeqCst) plays after Rust's
// write_volatile loop.
package secure

import (
	"crypto/subtle"
	"runtime"
)

// Bytes is a fixed-size sensitive buffer (SensitiveBytes<N>). Callers must
// call Release when done; Go has no Drop, so this must be explicit,
// typically via defer.
type Bytes struct {
	data []byte
}

// NewBytes allocates a zeroed sensitive buffer of size n.
func NewBytes(n int) *Bytes {
	return &Bytes{data: make([]byte, n)}
}

// Slice returns the underlying buffer for reading or writing.
func (b *Bytes) Slice() []byte { return b.data }

// CopyFrom copies src into the buffer, truncating if src is longer.
func (b *Bytes) CopyFrom(src []byte) {
	n := len(b.data)
	if len(src) < n {
		n = len(src)
	}
	copy(b.data[:n], src[:n])
}

// Release zeroes the buffer and fences the write against dead-store
// elimination (secure_wipe). Call it via defer as soon as the buffer is
// allocated.
func (b *Bytes) Release() {
	for i := range b.data {
		b.data[i] = 0
	}
	runtime.KeepAlive(b.data)
}

// ConstantTimeEqual reports whether a and b are byte-equal, in time
// independent of where they first differ (constant_time_eq).
func ConstantTimeEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	return subtle.ConstantTimeCompare(a, b) == 1
}

// WithDerivedKey derives a 32-byte private scalar along path via derive,
// hands it to f inside a Bytes wrapper, and releases the wrapper before
// returning -- regardless of whether f succeeds -- mirroring
// with_derived_key's scope-bound zeroing.
func WithDerivedKey(derive func() ([32]byte, error), f func(key *Bytes) (any, error)) (any, error) {
	raw, err := derive()
	if err != nil {
		return nil, err
	}
	key := NewBytes(32)
	key.CopyFrom(raw[:])
	defer key.Release()
	return f(key)
}
