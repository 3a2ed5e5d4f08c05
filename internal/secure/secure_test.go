package secure

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestReleaseZeroesBuffer(t *testing.T) {
	b := NewBytes(16)
	b.CopyFrom([]byte("sensitive-key-material"))

	b.Release()
	for _, v := range b.Slice() {
		require.Zero(t, v)
	}
}

func TestCopyFromTruncatesOversizedSource(t *testing.T) {
	b := NewBytes(4)
	b.CopyFrom([]byte{1, 2, 3, 4, 5, 6})
	got := b.Slice()
	require.Len(t, got, 4)
	require.Equal(t, byte(1), got[0])
	require.Equal(t, byte(4), got[3])
}

func TestConstantTimeEqual(t *testing.T) {
	a := []byte{1, 2, 3}
	b := []byte{1, 2, 3}
	c := []byte{1, 2, 4}

	require.True(t, ConstantTimeEqual(a, b))
	require.False(t, ConstantTimeEqual(a, c))
	require.False(t, ConstantTimeEqual(a, []byte{1, 2}))
}

func TestWithDerivedKeyReleasesOnSuccess(t *testing.T) {
	var captured *Bytes
	raw := [32]byte{1, 2, 3, 4}

	_, err := WithDerivedKey(
		func() ([32]byte, error) { return raw, nil },
		func(key *Bytes) (any, error) {
			captured = key
			require.Equal(t, byte(1), key.Slice()[0])
			return "ok", nil
		},
	)
	require.NoError(t, err)
	require.Zero(t, captured.Slice()[0])
}

func TestWithDerivedKeyReleasesOnError(t *testing.T) {
	var captured *Bytes
	raw := [32]byte{9, 9, 9}
	wantErr := errTest{}

	_, err := WithDerivedKey(
		func() ([32]byte, error) { return raw, nil },
		func(key *Bytes) (any, error) {
			captured = key
			return nil, wantErr
		},
	)
	require.Equal(t, wantErr, err)
	require.Zero(t, captured.Slice()[0])
}

func TestWithDerivedKeyPropagatesDeriveError(t *testing.T) {
	wantErr := errTest{}
	_, err := WithDerivedKey(
		func() ([32]byte, error) { return [32]byte{}, wantErr },
		func(key *Bytes) (any, error) {
			t.Fatal("f should not run when derive fails")
			return nil, nil
		},
	)
	require.Equal(t, wantErr, err)
}

type errTest struct{}

func (errTest) Error() string { return "test error" }
