package apperr

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCodeOfNilIsOk(t *testing.T) {
	require.Equal(t, Ok, CodeOf(nil))
}

func TestCodeOfRoundTripsWrappedCode(t *testing.T) {
	err := New(MemoRequired)
	require.Equal(t, MemoRequired, CodeOf(err))
}

func TestCodeOfDefaultsForForeignErrors(t *testing.T) {
	require.Equal(t, CryptoError, CodeOf(foreignErr{}))
}

func TestIsMatchesSameCodeOnly(t *testing.T) {
	a := New(Deny)
	require.True(t, a.(Error).Is(New(Deny)))
	require.False(t, a.(Error).Is(New(WrongP1P2)))
}

func TestErrorMessageKnownAndUnknownCodes(t *testing.T) {
	require.Equal(t, "success", New(Ok).Error())
	require.Equal(t, "unknown status word", New(Code(0x1234)).Error())
}

type foreignErr struct{}

func (foreignErr) Error() string { return "not ours" }
