package commitment

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/xelis-project/ledger-xelis-core/internal/ristretto"
	"github.com/xelis-project/ledger-xelis-core/internal/scalar"
)

func makeCommitment(t *testing.T, amount uint64, blinder scalar.Scalar) [32]byte {
	t.Helper()
	var amountScalar scalar.Scalar
	amountScalar[31] = byte(amount)
	amountScalar[30] = byte(amount >> 8)
	amountScalar[29] = byte(amount >> 16)
	amountScalar[28] = byte(amount >> 24)
	vg := ristretto.ScalarMult(amountScalar.Bytes(), ristretto.G)
	rh := ristretto.ScalarMult(blinder.Bytes(), ristretto.H)
	return ristretto.Add(vg, rh).Compress().ToLE()
}

func TestVerifyAccepts(t *testing.T) {
	blinder, err := scalar.Random()
	require.NoError(t, err)
	c := makeCommitment(t, 42, blinder)
	require.NoError(t, Verify(c, 42, blinder))
}

func TestVerifyRejectsWrongAmount(t *testing.T) {
	blinder, err := scalar.Random()
	require.NoError(t, err)
	c := makeCommitment(t, 42, blinder)
	require.Error(t, Verify(c, 43, blinder))
}

func TestVerifyRejectsWrongBlinder(t *testing.T) {
	blinder, err := scalar.Random()
	require.NoError(t, err)
	other, err := scalar.Random()
	require.NoError(t, err)
	c := makeCommitment(t, 42, blinder)
	require.Error(t, Verify(c, 42, other))
}

func TestVerifierTracksEachOutputIndependently(t *testing.T) {
	v := NewVerifier()
	v.InitBlinders()

	b0, err := scalar.Random()
	require.NoError(t, err)
	b1, err := scalar.Random()
	require.NoError(t, err)
	v.AddBlinder(b0)
	v.AddBlinder(b1)
	require.Equal(t, 2, v.BlinderCount())

	v.InitVerification(2)
	c0 := makeCommitment(t, 10, b0)
	c1 := makeCommitment(t, 20, b1)

	require.NoError(t, v.VerifyOutput(0, c0, 10))
	require.False(t, v.AllVerified())
	require.NoError(t, v.VerifyOutput(1, c1, 20))
	require.True(t, v.AllVerified())
	require.Equal(t, 2, v.VerifiedCount())
}

func TestVerifierRejectsOutOfRangeIndex(t *testing.T) {
	v := NewVerifier()
	v.InitBlinders()
	b0, err := scalar.Random()
	require.NoError(t, err)
	v.AddBlinder(b0)
	v.InitVerification(1)

	c0 := makeCommitment(t, 10, b0)
	require.Error(t, v.VerifyOutput(5, c0, 10))
}
