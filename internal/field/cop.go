// Package field implements arithmetic over the field GF(p), p = 2^255-19,
// the field underlying Ristretto255 / Edwards25519.
//
// Every operation is funnelled through the narrow coprocessor shim in this
// file: modAdd, modSub, modMul, modPow. On the real secure element this
// shape is backed by cx_math_{add,sub,mul,pow}m_no_throw, which only ever
// expose modular primitives over big-endian byte buffers (see
// original_source/src/cx/mod.rs and crypto/ristretto.rs). Here math/big
// plays the role of that coprocessor: callers above this file never touch
// a big.Int, only the fixed-size Elem byte arrays, so the rest of the
// package reads exactly like firmware code written against an opaque
// bignum unit.
package field

import "math/big"

const byteLen = 32

var (
	// p = 2^255 - 19.
	modulus = mustHex("7fffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffed")
	// (p-5)/8, the exponent used by Decaf/Ristretto's inverse sqrt.
	pow22523Exp = mustHex("0ffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffd")
)

func mustHex(s string) *big.Int {
	n, ok := new(big.Int).SetString(s, 16)
	if !ok {
		panic("field: bad constant " + s)
	}
	return n
}

func beToInt(b []byte) *big.Int {
	return new(big.Int).SetBytes(b)
}

func intToBE(n *big.Int, out []byte) {
	n.FillBytes(out)
}

// coprocessor modular primitives, operating on 32-byte big-endian buffers.

func modAdd(a, b [byteLen]byte) [byteLen]byte {
	r := new(big.Int).Add(beToInt(a[:]), beToInt(b[:]))
	r.Mod(r, modulus)
	var out [byteLen]byte
	intToBE(r, out[:])
	return out
}

func modSub(a, b [byteLen]byte) [byteLen]byte {
	r := new(big.Int).Sub(beToInt(a[:]), beToInt(b[:]))
	r.Mod(r, modulus)
	var out [byteLen]byte
	intToBE(r, out[:])
	return out
}

func modMul(a, b [byteLen]byte) [byteLen]byte {
	r := new(big.Int).Mul(beToInt(a[:]), beToInt(b[:]))
	r.Mod(r, modulus)
	var out [byteLen]byte
	intToBE(r, out[:])
	return out
}

func modPow(a, e [byteLen]byte) [byteLen]byte {
	r := new(big.Int).Exp(beToInt(a[:]), beToInt(e[:]), modulus)
	var out [byteLen]byte
	intToBE(r, out[:])
	return out
}
