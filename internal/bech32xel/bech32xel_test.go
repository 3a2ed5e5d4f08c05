package bech32xel

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/xelis-project/ledger-xelis-core/internal/ristretto"
)

func TestEncodeDecodeRoundTripMainnet(t *testing.T) {
	pub := ristretto.G.Compress()
	addr, err := Encode(pub, true)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(addr, "xel:"))

	got, mainnet, err := Decode(addr)
	require.NoError(t, err)
	require.True(t, mainnet)
	require.Equal(t, pub, got)
}

func TestEncodeDecodeRoundTripTestnet(t *testing.T) {
	pub := ristretto.H.Compress()
	addr, err := Encode(pub, false)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(addr, "xet:"))

	got, mainnet, err := Decode(addr)
	require.NoError(t, err)
	require.False(t, mainnet)
	require.Equal(t, pub, got)
}

func TestDecodeRejectsCorruptedChecksum(t *testing.T) {
	addr, err := Encode(ristretto.G.Compress(), true)
	require.NoError(t, err)
	corrupted := []byte(addr)
	last := corrupted[len(corrupted)-1]
	for _, c := range charset {
		if byte(c) != last {
			corrupted[len(corrupted)-1] = byte(c)
			break
		}
	}
	_, _, err = Decode(string(corrupted))
	require.Error(t, err)
}

func TestDecodeRejectsUnknownHRP(t *testing.T) {
	_, _, err := Decode("xyz:qqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqq")
	require.Error(t, err)
}

func TestDecodeRejectsMissingSeparator(t *testing.T) {
	_, _, err := Decode("xelqqqqqqq")
	require.Error(t, err)
}
