package streamtx

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/xelis-project/ledger-xelis-core/internal/memo"
)

func buildTransferBody(version byte, commit [32]byte, tailLen int) []byte {
	var source [32]byte
	body := make([]byte, 0, 1+32+1+1+65+32+tailLen)
	body = append(body, version)
	body = append(body, source[:]...)
	body = append(body, TxTransfer)
	body = append(body, 1) // one transfer

	var asset, dest [32]byte
	body = append(body, asset[:]...)
	body = append(body, dest[:]...)
	body = append(body, 0) // has_extra_data = false
	body = append(body, commit[:]...)
	body = append(body, make([]byte, tailLen)...)
	return body
}

func TestParseHeaderAndExtractCommitmentSingleChunk(t *testing.T) {
	preview := memo.Preview{TxType: TxTransfer}
	var commit [32]byte
	commit[0] = 0xAB

	body := buildTransferBody(1, commit, 32+32+160)

	p := New()
	n, err := p.ParseHeader(body, preview, 1)
	require.NoError(t, err)
	require.Equal(t, 35, n)
	require.True(t, p.InTransfers)
	require.EqualValues(t, 1, p.TransferCount)

	got, consumed, err := p.ExtractCommitment(body[n:])
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Equal(t, commit, *got)
	require.Equal(t, len(body)-n, consumed)
	require.EqualValues(t, 1, p.TransfersParsed)
}

func TestParseHeaderRejectsTxTypeMismatch(t *testing.T) {
	preview := memo.Preview{TxType: TxBurn}
	body := buildTransferBody(1, [32]byte{}, 0)

	p := New()
	_, err := p.ParseHeader(body, preview, 1)
	require.Error(t, err)
}

func TestParseHeaderRejectsTransferCountMismatch(t *testing.T) {
	preview := memo.Preview{TxType: TxTransfer}
	body := buildTransferBody(1, [32]byte{}, 0)

	p := New()
	_, err := p.ParseHeader(body, preview, 2)
	require.Error(t, err)
}

func TestExtractCommitmentSplitAcrossChunks(t *testing.T) {
	preview := memo.Preview{TxType: TxTransfer}
	var commit [32]byte
	commit[5] = 0x42
	tailLen := 32 + 32 + 160
	body := buildTransferBody(1, commit, tailLen)

	p := New()
	n, err := p.ParseHeader(body, preview, 1)
	require.NoError(t, err)
	rest := body[n:]

	// Feed the transfer body one byte at a time; the commitment should
	// only surface once the 65-byte output header and all 32 commitment
	// bytes have arrived.
	var got *[32]byte
	for i := 0; i < len(rest); i++ {
		c, _, err := p.ExtractCommitment(rest[i : i+1])
		require.NoError(t, err)
		if c != nil {
			got = c
		}
	}
	require.NotNil(t, got)
	require.Equal(t, commit, *got)
}

func TestParseBurnAcceptsMatchingAmount(t *testing.T) {
	p := New()
	burn := &memo.Burn{AssetIndex: memo.NativeAssetIndex, Amount: 12345}

	var asset [32]byte
	body := make([]byte, 0, BurnPayloadSize)
	body = append(body, asset[:]...)
	var amountBytes [8]byte
	amountBytes[7] = byte(12345 & 0xff)
	amountBytes[6] = byte(12345 >> 8)
	body = append(body, amountBytes[:]...)

	n, err := p.ParseBurn(body, burn)
	require.NoError(t, err)
	require.Equal(t, BurnPayloadSize, n)
	require.True(t, p.BurnParsed)
}

func TestParseBurnRejectsAmountMismatch(t *testing.T) {
	p := New()
	burn := &memo.Burn{AssetIndex: memo.NativeAssetIndex, Amount: 1}

	body := make([]byte, BurnPayloadSize)
	body[39] = 2 // amount = 2, preview says 1

	_, err := p.ParseBurn(body, burn)
	require.Error(t, err)
}
