package field

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestOneIsMultiplicativeIdentity(t *testing.T) {
	x := SqrtM1
	require.Equal(t, x, Mul(x, One))
}

func TestAddSub(t *testing.T) {
	a := SqrtM1
	b := InvSqrtAMinusD
	sum := Add(a, b)
	back := Sub(sum, b)
	require.Equal(t, a, back)
}

func TestNegTwice(t *testing.T) {
	a := D
	require.Equal(t, a, Neg(Neg(a)))
}

func TestCondNegate(t *testing.T) {
	a := SqrtM1
	require.Equal(t, a, CondNegate(a, false))
	require.Equal(t, Neg(a), CondNegate(a, true))
}

func TestIsZero(t *testing.T) {
	var zero Elem
	require.True(t, IsZero(zero))
	require.False(t, IsZero(One))
}

func TestSquareMatchesMul(t *testing.T) {
	a := D
	require.Equal(t, Mul(a, a), Square(a))
}

func TestSqrtRatioM1OfOneOverOne(t *testing.T) {
	x, ok, wasSquare := SqrtRatioM1(One, One)
	require.True(t, ok)
	require.True(t, wasSquare)
	require.Equal(t, One, Square(x))
}

func TestFromBytesRejectsOutOfRange(t *testing.T) {
	var huge Elem
	for i := range huge {
		huge[i] = 0xff
	}
	_, err := FromBytes(huge[:])
	require.Error(t, err)
}

func TestFromBytesRoundTrip(t *testing.T) {
	e, err := FromBytes(D[:])
	require.NoError(t, err)
	require.Equal(t, D, e)
}

func TestFromBytesWrongLength(t *testing.T) {
	_, err := FromBytes(make([]byte, 16))
	require.Error(t, err)
}
