// Package commitment verifies Pedersen commitments C = v*G + r*H against
// blinding factors supplied out-of-band from the transaction bytes they
// commit to, grounded on original_source/src/crypto/commitment.rs.
package commitment

import (
	"github.com/xelis-project/ledger-xelis-core/internal/apperr"
	"github.com/xelis-project/ledger-xelis-core/internal/ristretto"
	"github.com/xelis-project/ledger-xelis-core/internal/scalar"
)

// Verify checks that commitment equals v*G + r*H, where amount is encoded
// as a 64-bit big-endian integer right-aligned in a 32-byte scalar and
// blinder is a 32-byte big-endian scalar (verify_pedersen_commitment). The
// wire commitment is compared in little-endian form, matching the
// transaction encoding XELIS streams to the device.
func Verify(commitment [32]byte, amount uint64, blinder scalar.Scalar) error {
	var amountScalar scalar.Scalar
	amountScalar[24] = byte(amount >> 56)
	amountScalar[25] = byte(amount >> 48)
	amountScalar[26] = byte(amount >> 40)
	amountScalar[27] = byte(amount >> 32)
	amountScalar[28] = byte(amount >> 24)
	amountScalar[29] = byte(amount >> 16)
	amountScalar[30] = byte(amount >> 8)
	amountScalar[31] = byte(amount)

	vg := ristretto.ScalarMult(amountScalar.Bytes(), ristretto.G)
	rh := ristretto.ScalarMult(blinder.Bytes(), ristretto.H)
	computed := ristretto.Add(vg, rh)
	computedLE := computed.Compress().ToLE()

	if computedLE != commitment {
		return apperr.New(apperr.InvalidCommitment)
	}
	return nil
}

// Verifier accumulates blinders received ahead of a streamed transaction
// and checks each transfer's commitment as the parser uncovers it
// (CommitmentVerifier).
type Verifier struct {
	blinders []scalar.Scalar
	verified []bool
	count    int
}

// NewVerifier returns an empty verifier.
func NewVerifier() *Verifier {
	return &Verifier{}
}

// Reset clears all accumulated blinders and verification state.
func (v *Verifier) Reset() {
	v.blinders = nil
	v.verified = nil
	v.count = 0
}

// InitBlinders clears any previously received blinders ahead of a new
// batch.
func (v *Verifier) InitBlinders() {
	v.blinders = v.blinders[:0]
}

// AddBlinder appends a single blinder, as they arrive chunk by chunk.
func (v *Verifier) AddBlinder(b scalar.Scalar) {
	v.blinders = append(v.blinders, b)
}

// BlinderCount returns how many blinders have been received so far.
func (v *Verifier) BlinderCount() int { return len(v.blinders) }

// InitVerification prepares to track verification of outputCount
// transfers.
func (v *Verifier) InitVerification(outputCount int) {
	v.verified = make([]bool, outputCount)
	v.count = 0
}

// VerifyOutput checks the commitment for transfer idx against the
// blinder received for that index and amount (verify_output).
func (v *Verifier) VerifyOutput(idx int, commitment [32]byte, amount uint64) error {
	if idx < 0 || idx >= len(v.verified) || idx >= len(v.blinders) {
		return apperr.New(apperr.TxParsingFail)
	}
	if err := Verify(commitment, amount, v.blinders[idx]); err != nil {
		return err
	}
	v.verified[idx] = true
	v.count++
	return nil
}

// AllVerified reports whether every tracked output has been verified.
func (v *Verifier) AllVerified() bool {
	for _, ok := range v.verified {
		if !ok {
			return false
		}
	}
	return true
}

// VerifiedCount returns how many outputs have been verified so far.
func (v *Verifier) VerifiedCount() int { return v.count }
