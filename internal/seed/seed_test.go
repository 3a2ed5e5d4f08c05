package seed

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/xelis-project/ledger-xelis-core/internal/apperr"
)

func TestParsePathRoundTrip(t *testing.T) {
	data := []byte{2, 0x80, 0, 0, 0, 0, 0, 0, 1}
	path, err := ParsePath(data)
	require.NoError(t, err)
	require.Len(t, path, 2)
	require.Equal(t, uint32(0x80000000), path[0])
	require.Equal(t, uint32(1), path[1])
}

func TestParsePathRejectsLengthMismatch(t *testing.T) {
	_, err := ParsePath([]byte{2, 0, 0, 0, 0})
	require.Equal(t, apperr.WrongApduLength, apperr.CodeOf(err))
}

func TestParsePathRejectsEmpty(t *testing.T) {
	_, err := ParsePath(nil)
	require.Equal(t, apperr.WrongApduLength, apperr.CodeOf(err))
}

func TestDeriveIsDeterministic(t *testing.T) {
	seed := []byte("01234567890123456789012345678901")
	path := Path{0, 1}

	a, err := Derive(seed, path)
	require.NoError(t, err)
	b, err := Derive(seed, path)
	require.NoError(t, err)
	require.Equal(t, a, b)
}

func TestDeriveDiffersAcrossPaths(t *testing.T) {
	seed := []byte("01234567890123456789012345678901")

	a, err := Derive(seed, Path{0})
	require.NoError(t, err)
	b, err := Derive(seed, Path{1})
	require.NoError(t, err)
	require.NotEqual(t, a, b)
}

func TestDeriveIgnoresHardenedBitAlreadySet(t *testing.T) {
	seed := []byte("01234567890123456789012345678901")

	a, err := Derive(seed, Path{0})
	require.NoError(t, err)
	b, err := Derive(seed, Path{hardenedBit})
	require.NoError(t, err)
	require.Equal(t, a, b)
}

func TestDeriverMatchesFreeFunction(t *testing.T) {
	seed := []byte("01234567890123456789012345678901")
	path := Path{0, 2, 3}

	want, err := Derive(seed, path)
	require.NoError(t, err)
	got, err := NewDeriver(seed).Derive(path)
	require.NoError(t, err)
	require.Equal(t, want, got)
}
