package ristretto

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestIdentityCompressDecompressRoundTrip(t *testing.T) {
	c := Identity.Compress()
	p, err := Decompress(c)
	require.NoError(t, err)
	require.Equal(t, c, p.Compress())
}

func TestGeneratorCompressDecompressRoundTrip(t *testing.T) {
	p, err := Decompress(G.Compress())
	require.NoError(t, err)
	require.True(t, Equal(p.Compress(), G.Compress()))
}

func TestAddIdentityIsNoop(t *testing.T) {
	sum := Add(G, Identity)
	require.True(t, Equal(sum.Compress(), G.Compress()))
}

func TestScalarMultByOneIsIdentity(t *testing.T) {
	var one [32]byte
	one[31] = 1
	got := ScalarMult(one, G)
	require.True(t, Equal(got.Compress(), G.Compress()))
}

func TestScalarMultByZeroIsIdentity(t *testing.T) {
	var zero [32]byte
	got := ScalarMult(zero, G)
	require.True(t, Equal(got.Compress(), Identity.Compress()))
}

func TestScalarMultByTwoMatchesDoubling(t *testing.T) {
	var two [32]byte
	two[31] = 2
	got := ScalarMult(two, G)
	want := Add(G, G)
	require.True(t, Equal(got.Compress(), want.Compress()))
}

func TestHIsIndependentOfG(t *testing.T) {
	require.False(t, Equal(H.Compress(), G.Compress()))
}

func TestDecompressRejectsHighBit(t *testing.T) {
	c := G.Compress()
	c[0] |= 0x80
	_, err := Decompress(c)
	require.Error(t, err)
}

func TestToLEReversesBytes(t *testing.T) {
	c := G.Compress()
	le := c.ToLE()
	for i := range c {
		require.Equal(t, c[len(c)-1-i], le[i])
	}
}

func TestEqual(t *testing.T) {
	require.True(t, Equal(G.Compress(), G.Compress()))
	require.False(t, Equal(G.Compress(), H.Compress()))
}
