// Package scalar implements arithmetic modulo the Ristretto255/Ed25519
// group order L, mirroring original_source/src/crypto/scalar.rs. Scalars
// are fixed-size big-endian byte arrays; each operation converts to
// math/big, computes, and folds the result back mod L through reduceInto
// (or big.Int.Exp for Invert).
package scalar

import (
	"crypto/rand"
	"encoding/hex"
	"math/big"

	"github.com/xelis-project/ledger-xelis-core/internal/apperr"
)

const byteLen = 32

// Scalar is an integer modulo L, stored big-endian.
type Scalar [byteLen]byte

var (
	// L = 2^252 + 27742317777372353535851937790883648493, the Ristretto255
	// group order.
	groupOrder = mustHex("1000000000000000000000000000000014def9dea2f79cd65812631a5cf5d3ed")
	lMinus2    = mustHex("1000000000000000000000000000000014def9dea2f79cd65812631a5cf5d3eb")
)

// Zero is the scalar 0.
var Zero Scalar

// One is the scalar 1.
var One = func() Scalar {
	var s Scalar
	s[byteLen-1] = 1
	return s
}()

func mustHex(s string) *big.Int {
	n, ok := new(big.Int).SetString(s, 16)
	if !ok {
		panic("scalar: bad constant " + s)
	}
	return n
}

func beToInt(b []byte) *big.Int { return new(big.Int).SetBytes(b) }

func reduceInto(n *big.Int) Scalar {
	r := new(big.Int).Mod(n, groupOrder)
	var s Scalar
	r.FillBytes(s[:])
	return s
}

// IsZero reports whether s is the zero scalar.
func (s Scalar) IsZero() bool {
	var acc byte
	for _, b := range s {
		acc |= b
	}
	return acc == 0
}

// IsValid reports whether s is non-zero and strictly less than L
// (scalar_is_valid).
func (s Scalar) IsValid() bool {
	if s.IsZero() {
		return false
	}
	return beToInt(s[:]).Cmp(groupOrder) < 0
}

// Reduce returns s mod L (scalar_reduce).
func Reduce(s Scalar) Scalar { return reduceInto(beToInt(s[:])) }

// WideReduce reduces a 64-byte big-endian value mod L
// (scalar_from_bytes_wide), used to fold a SHA3-512 digest into a scalar.
func WideReduce(wide [64]byte) Scalar { return reduceInto(beToInt(wide[:])) }

// WideReduceLE treats a 64-byte SHA3-512 digest as a little-endian 512-bit
// integer and reduces it mod L, matching
// reduce_mod_l_wide_le_to_be: XELIS's challenge and nonce derivation hash
// with SHA3-512 and fold the raw digest bytes in little-endian order
// before reducing.
func WideReduceLE(digest [64]byte) Scalar {
	var rev [64]byte
	for i, b := range digest {
		rev[63-i] = b
	}
	return reduceInto(beToInt(rev[:]))
}

// Add returns a+b mod L.
func Add(a, b Scalar) Scalar {
	return reduceInto(new(big.Int).Add(beToInt(a[:]), beToInt(b[:])))
}

// Sub returns a-b mod L.
func Sub(a, b Scalar) Scalar {
	return reduceInto(new(big.Int).Sub(beToInt(a[:]), beToInt(b[:])))
}

// Mul returns a*b mod L.
func Mul(a, b Scalar) Scalar {
	return reduceInto(new(big.Int).Mul(beToInt(a[:]), beToInt(b[:])))
}

// Invert computes s^-1 mod L via s^(L-2) (scalar_invert). Returns an error
// if s is zero.
func Invert(s Scalar) (Scalar, error) {
	if s.IsZero() {
		return Scalar{}, apperr.New(apperr.KeyDeriveFail)
	}
	r := new(big.Int).Exp(beToInt(s[:]), lMinus2, groupOrder)
	var out Scalar
	r.FillBytes(out[:])
	return out, nil
}

// Random draws a uniformly random, L-reduced scalar (scalar_random).
func Random() (Scalar, error) {
	var buf [byteLen]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return Scalar{}, apperr.New(apperr.CryptoError)
	}
	return Reduce(Scalar(buf)), nil
}

// FromBytes reduces a 32-byte big-endian value mod L (scalar_from_bytes).
func FromBytes(b [byteLen]byte) Scalar { return Reduce(Scalar(b)) }

// Bytes returns the big-endian encoding of s.
func (s Scalar) Bytes() [byteLen]byte { return [byteLen]byte(s) }

// Hex returns the big-endian hex encoding of s, for logging/diagnostics.
func (s Scalar) Hex() string { return hex.EncodeToString(s[:]) }
