// Package ristretto implements the Ristretto255 group built from the
// field primitives in internal/field, following the construction used in
// original_source/src/crypto/ristretto.rs: decompress/compress, Edwards
// point addition in extended coordinates, and double-and-add scalar
// multiplication. Nothing in this package calls into crypto/elliptic or
// any external curve library, on purpose: the device core's Open
// Question resolution (spec §4.1) is that this group must be built from
// the same modular primitives a secure-element coprocessor would expose,
// not borrowed whole from a library.
package ristretto

import (
	"crypto/subtle"

	"github.com/xelis-project/ledger-xelis-core/internal/apperr"
	"github.com/xelis-project/ledger-xelis-core/internal/field"
)

// Compressed is the 32-byte wire encoding of a Ristretto255 element.
type Compressed [32]byte

// Point is a Ristretto255 group element in extended projective coordinates
// (X, Y, Z, T) with the invariant X*Y = Z*T.
type Point struct {
	X, Y, Z, T field.Elem
}

// Identity is the group identity element.
var Identity = Point{
	X: field.Elem{},
	Y: field.One,
	Z: field.One,
	T: field.Elem{},
}

// Decompress parses and validates a compressed Ristretto255 point,
// following the exact sequence in CompressedRistretto::decompress.
func Decompress(c Compressed) (Point, error) {
	s := c
	if s[0]&0x80 != 0 {
		return Point{}, apperr.New(apperr.InvalidCompressedPoint)
	}
	s[0] &= 0x7f

	sElem, err := field.FromBytes(s[:])
	if err != nil {
		return Point{}, apperr.New(apperr.InvalidCompressedPoint)
	}

	ss := field.Square(sElem)
	u1 := field.Sub(field.One, ss)
	u2 := field.Add(field.One, ss)
	u2Sqr := field.Square(u2)

	u1Sqr := field.Square(u1)
	negD := field.Neg(field.D)
	v := field.Sub(field.Mul(negD, u1Sqr), u2Sqr)

	vU2Sqr := field.Mul(v, u2Sqr)
	i, ok, _ := field.SqrtRatioM1(field.One, vU2Sqr)
	if !ok {
		return Point{}, apperr.New(apperr.InvalidCompressedPoint)
	}

	dx := field.Mul(i, u2)
	dy := field.Mul(field.Mul(i, dx), v)

	twoS := field.Add(sElem, sElem)
	x := field.Mul(twoS, dx)
	x = field.CondNegate(x, field.IsNegative(x))

	y := field.Mul(u1, dy)
	t := field.Mul(x, y)

	if field.IsNegative(t) || field.IsZero(y) {
		return Point{}, apperr.New(apperr.InvalidCompressedPoint)
	}

	return Point{X: x, Y: y, Z: field.One, T: t}, nil
}

// Compress encodes p following RistrettoPoint::compress.
func (p Point) Compress() Compressed {
	u1 := field.Mul(field.Add(p.Z, p.Y), field.Sub(p.Z, p.Y))
	u2 := field.Mul(p.X, p.Y)
	u2Sqr := field.Square(u2)
	u1U2Sqr := field.Mul(u1, u2Sqr)

	invSqrt, _, _ := field.SqrtRatioM1(field.One, u1U2Sqr)

	den1 := field.Mul(invSqrt, u1)
	den2 := field.Mul(invSqrt, u2)
	denInvProd := field.Mul(den1, den2)
	zInv := field.Mul(denInvProd, p.T)

	tZInv := field.Mul(p.T, zInv)
	rotate := field.IsNegative(tZInv)

	var xOut, yOut, denInv field.Elem
	if rotate {
		xOut = field.Mul(p.Y, field.SqrtM1)
		yOut = field.Mul(p.X, field.SqrtM1)
		denInv = field.Mul(den1, field.InvSqrtAMinusD)
	} else {
		xOut = p.X
		yOut = p.Y
		denInv = den2
	}

	xZInv := field.Mul(xOut, zInv)
	if field.IsNegative(xZInv) {
		yOut = field.Neg(yOut)
	}

	s := field.Mul(field.Sub(p.Z, yOut), denInv)
	s = field.CondNegate(s, field.IsNegative(s))

	return Compressed(s.Bytes())
}

// Add returns p+q using the extended-coordinate Edwards addition formulas
// (edwards_add).
func Add(p, q Point) Point {
	a := field.Mul(field.Sub(p.Y, p.X), field.Sub(q.Y, q.X))
	b := field.Mul(field.Add(p.Y, p.X), field.Add(q.Y, q.X))
	c := field.Mul(field.Mul(p.T, q.T), field.Add(field.D, field.D))
	d := field.Add(field.Mul(p.Z, q.Z), field.Mul(p.Z, q.Z))

	e := field.Sub(b, a)
	h := field.Add(b, a)
	f := field.Sub(d, c)
	g := field.Add(d, c)

	return Point{
		X: field.Mul(e, f),
		Y: field.Mul(g, h),
		Z: field.Mul(f, g),
		T: field.Mul(e, h),
	}
}

// ScalarMult computes scalar*point via LSB-to-MSB double-and-add, matching
// scalar_mult_ristretto. scalar is a 32-byte big-endian integer; it need
// not be pre-reduced mod the group order.
func ScalarMult(scalar [32]byte, point Point) Point {
	result := Identity
	temp := point
	for i := 0; i < 256; i++ {
		byteIdx := 31 - i/8
		bitIdx := uint(i % 8)
		if (scalar[byteIdx]>>bitIdx)&1 != 0 {
			result = Add(result, temp)
		}
		temp = Add(temp, temp)
	}
	return result
}

// ToLE returns c's bytes reversed into little-endian order, the form XELIS
// hashes into its Schnorr challenge and nonce derivation.
func (c Compressed) ToLE() [32]byte {
	var out [32]byte
	for i, b := range c {
		out[31-i] = b
	}
	return out
}

// FromLE converts a little-endian wire encoding into the big-endian
// Compressed form used inside this package.
func FromLE(le [32]byte) Compressed {
	var c Compressed
	for i, b := range le {
		c[31-i] = b
	}
	return c
}

// Equal reports whether the compressed encodings of p and q are identical,
// using a constant-time comparison.
func Equal(p, q Compressed) bool {
	return subtle.ConstantTimeCompare(p[:], q[:]) == 1
}
