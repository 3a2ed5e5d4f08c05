package frame

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/xelis-project/ledger-xelis-core/internal/apperr"
	"github.com/xelis-project/ledger-xelis-core/internal/memo"
)

func TestParseInstructionGetVersion(t *testing.T) {
	ins, err := ParseInstruction(insGetVersion, 0, 0)
	require.NoError(t, err)
	require.Equal(t, byte(insGetVersion), ins.INS)
}

func TestParseInstructionGetPubKeyDisplayFlag(t *testing.T) {
	ins, err := ParseInstruction(insGetPubKey, 1, 0)
	require.NoError(t, err)
	require.True(t, ins.Display)

	ins, err = ParseInstruction(insGetPubKey, 0, 0)
	require.NoError(t, err)
	require.False(t, ins.Display)
}

func TestParseInstructionSignTxFirstChunkRequiresMoreFlag(t *testing.T) {
	_, err := ParseInstruction(insSignTx, 0, p2ChunkLast)
	require.Equal(t, apperr.WrongP1P2, apperr.CodeOf(err))

	ins, err := ParseInstruction(insSignTx, 0, p2MoreData)
	require.NoError(t, err)
	require.Equal(t, byte(0), ins.Chunk)
	require.True(t, ins.More)
}

func TestParseInstructionRejectsUnknownP1P2(t *testing.T) {
	_, err := ParseInstruction(insGetVersion, 1, 0)
	require.Equal(t, apperr.WrongP1P2, apperr.CodeOf(err))
}

func TestParseInstructionRejectsUnknownIns(t *testing.T) {
	_, err := ParseInstruction(0x99, 0, 0)
	require.Equal(t, apperr.InsNotSupported, apperr.CodeOf(err))
}

type autoApprover struct{ approve bool }

func (a autoApprover) ApproveTransaction(*memo.DisplayTx) bool { return a.approve }
func (a autoApprover) ApproveAddress(string) bool              { return a.approve }

func TestDispatcherGetVersionAndAppName(t *testing.T) {
	d := NewDispatcher([]byte("01234567890123456789012345678901"), autoApprover{approve: true}, true)

	resp, sw := d.Handle(Frame{INS: insGetVersion, P1: 0, P2: 0})
	require.Equal(t, apperr.Ok, sw)
	require.Len(t, resp, 3)

	resp, sw = d.Handle(Frame{INS: insGetAppName, P1: 0, P2: 0})
	require.Equal(t, apperr.Ok, sw)
	require.Equal(t, appName, string(resp))
}

func TestDispatcherGetPubKey(t *testing.T) {
	d := NewDispatcher([]byte("01234567890123456789012345678901"), autoApprover{approve: true}, true)
	path := []byte{1, 0, 0, 0, 0}

	resp, sw := d.Handle(Frame{INS: insGetPubKey, P1: 0, P2: 0, Data: path})
	require.Equal(t, apperr.Ok, sw)
	require.Len(t, resp, 33)
	require.Equal(t, byte(32), resp[0])
}

func TestDispatcherGetPubKeyDisplayDenied(t *testing.T) {
	d := NewDispatcher([]byte("01234567890123456789012345678901"), autoApprover{approve: false}, true)
	path := []byte{1, 0, 0, 0, 0}

	_, sw := d.Handle(Frame{INS: insGetPubKey, P1: 1, P2: 0, Data: path})
	require.Equal(t, apperr.Deny, sw)
}

func TestDispatcherLoadMemoDenied(t *testing.T) {
	d := NewDispatcher([]byte("01234567890123456789012345678901"), autoApprover{approve: false}, true)

	preview := memo.Preview{TxType: memo.TxBurn, Fee: 1, Nonce: 1}
	burn := &memo.Burn{AssetIndex: memo.NativeAssetIndex, Amount: 5}
	encoded := memo.Encode(preview, nil, nil, burn)

	_, sw := d.Handle(Frame{INS: insLoadMemo, P1: 0, P2: 0x00, Data: encoded})
	require.Equal(t, apperr.Deny, sw)
}

func TestDispatcherResetsSessionForNonStreamingInstructions(t *testing.T) {
	d := NewDispatcher([]byte("01234567890123456789012345678901"), autoApprover{approve: true}, true)

	preview := memo.Preview{TxType: memo.TxBurn, Fee: 1, Nonce: 1}
	burn := &memo.Burn{AssetIndex: memo.NativeAssetIndex, Amount: 5}
	encoded := memo.Encode(preview, nil, nil, burn)
	_, sw := d.Handle(Frame{INS: insLoadMemo, P1: 0, P2: 0x00, Data: encoded})
	require.Equal(t, apperr.Ok, sw)

	_, sw = d.Handle(Frame{INS: insGetVersion, P1: 0, P2: 0})
	require.Equal(t, apperr.Ok, sw)

	var blinderWire [32]byte
	_, sw = d.Handle(Frame{INS: insSendBlinders, P2: 0x80, Data: blinderWire[:]})
	require.Equal(t, apperr.MemoRequired, sw)
}
