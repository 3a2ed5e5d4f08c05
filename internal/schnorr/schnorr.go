// Package schnorr implements XELIS's non-standard Schnorr signing
// convention, grounded on original_source/src/crypto/signature.rs. Unlike
// textbook Schnorr, the public key doubles as an El-Gamal-style decryption
// key: A = x^-1*H rather than x*G, which shapes both sign and verify here.
package schnorr

import (
	"github.com/xelis-project/ledger-xelis-core/internal/apperr"
	"github.com/xelis-project/ledger-xelis-core/internal/field"
	"github.com/xelis-project/ledger-xelis-core/internal/ristretto"
	"github.com/xelis-project/ledger-xelis-core/internal/scalar"
	"github.com/xelis-project/ledger-xelis-core/internal/xhash"
)

// SignatureSize is the wire size of a XELIS signature, s || e.
const SignatureSize = 64

// Signature is s || e, both scalars mod L.
type Signature struct {
	S scalar.Scalar
	E scalar.Scalar
}

// Bytes returns the big-endian s || e encoding (to_be_bytes).
func (sig Signature) Bytes() [SignatureSize]byte {
	var out [SignatureSize]byte
	sb := sig.S.Bytes()
	eb := sig.E.Bytes()
	copy(out[:32], sb[:])
	copy(out[32:], eb[:])
	return out
}

// DerivePublicKey computes A = x^-1*H for a big-endian private scalar,
// returning its compressed encoding (xelis_derive_public_key /
// xelis_public_from_private).
func DerivePublicKey(priv scalar.Scalar) (ristretto.Compressed, error) {
	if priv.IsZero() {
		return ristretto.Compressed{}, apperr.New(apperr.KeyDeriveFail)
	}
	inv, err := scalar.Invert(priv)
	if err != nil {
		return ristretto.Compressed{}, apperr.New(apperr.KeyDeriveFail)
	}
	point := ristretto.ScalarMult(inv.Bytes(), ristretto.H)
	return point.Compress(), nil
}

// challenge computes e = wide_reduce(SHA3-512(A_le || msg || R_le))
// (xelis_challenge_from_hash).
func challenge(a, r ristretto.Compressed, msg []byte) scalar.Scalar {
	aLE := a.ToLE()
	rLE := r.ToLE()
	buf := make([]byte, 0, 32+len(msg)+32)
	buf = append(buf, aLE[:]...)
	buf = append(buf, msg...)
	buf = append(buf, rLE[:]...)
	digest := xhash.Sum512(buf)
	return scalar.WideReduceLE(digest)
}

// detNonce computes the deterministic nonce k = wide_reduce(SHA3-512(sk||msg))
// (det_nonce_be).
func detNonce(priv scalar.Scalar, msg []byte) scalar.Scalar {
	sk := priv.Bytes()
	buf := make([]byte, 0, 32+len(msg))
	buf = append(buf, sk[:]...)
	buf = append(buf, msg...)
	digest := xhash.Sum512(buf)
	return scalar.WideReduceLE(digest)
}

// Sign computes a XELIS signature over msg (already the caller's message
// hash / commitment bytes) using private key priv and its matching
// compressed public key pub (schnorr_sign):
//
//	k = det_nonce(priv, msg)
//	R = k*H
//	e = challenge(A, msg, R)
//	s = k + x^-1*e
func Sign(priv scalar.Scalar, pub ristretto.Compressed, msg []byte) (Signature, error) {
	if priv.IsZero() {
		return Signature{}, apperr.New(apperr.TxSignFail)
	}

	k := detNonce(priv, msg)
	if k.IsZero() {
		return Signature{}, apperr.New(apperr.TxSignFail)
	}

	rPoint := ristretto.ScalarMult(k.Bytes(), ristretto.H)
	rComp := rPoint.Compress()

	e := challenge(pub, rComp, msg)

	invPriv, err := scalar.Invert(priv)
	if err != nil {
		return Signature{}, apperr.New(apperr.TxSignFail)
	}
	eOverSk := scalar.Mul(e, invPriv)
	s := scalar.Add(k, eOverSk)

	return Signature{S: s, E: e}, nil
}

// Verify checks sig against public key pub and message msg. XELIS
// verification reconstructs R from s and e: since s = k + x^-1*e and
// A = x^-1*H, we have s*H = k*H + x^-1*e*H = R + e*A, so
// R = s*H - e*A. The challenge recomputed from (A, msg, R) must equal
// sig.E.
func Verify(pub ristretto.Compressed, msg []byte, sig Signature) (bool, error) {
	aPoint, err := ristretto.Decompress(pub)
	if err != nil {
		return false, apperr.New(apperr.InvalidCompressedPoint)
	}

	sH := ristretto.ScalarMult(sig.S.Bytes(), ristretto.H)
	eA := ristretto.ScalarMult(sig.E.Bytes(), aPoint)
	negEA := ristretto.Point{
		X: field.Neg(eA.X),
		Y: eA.Y,
		Z: eA.Z,
		T: field.Neg(eA.T),
	}
	rPoint := ristretto.Add(sH, negEA)
	rComp := rPoint.Compress()

	eCheck := challenge(pub, rComp, msg)
	return eCheck == sig.E, nil
}
