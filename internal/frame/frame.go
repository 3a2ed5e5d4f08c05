// Package frame implements the APDU instruction table and dispatch loop
// binding the host-facing protocol to a session.Context, grounded on
// original_source/src/main.rs's Instruction/TryFrom<ApduHeader>,
// handle_apdu, and sample_main.
package frame

import (
	"github.com/xelis-project/ledger-xelis-core/internal/apperr"
	"github.com/xelis-project/ledger-xelis-core/internal/applog"
	"github.com/xelis-project/ledger-xelis-core/internal/bech32xel"
	"github.com/xelis-project/ledger-xelis-core/internal/memo"
	"github.com/xelis-project/ledger-xelis-core/internal/ristretto"
	"github.com/xelis-project/ledger-xelis-core/internal/scalar"
	"github.com/xelis-project/ledger-xelis-core/internal/schnorr"
	"github.com/xelis-project/ledger-xelis-core/internal/secure"
	"github.com/xelis-project/ledger-xelis-core/internal/seed"
	"github.com/xelis-project/ledger-xelis-core/internal/session"
)

// Instruction codes, matching the firmware's INS byte exactly.
const (
	insGetVersion   byte = 0x03
	insGetAppName   byte = 0x04
	insGetPubKey    byte = 0x05
	insSignTx       byte = 0x06
	insLoadMemo     byte = 0x10
	insSendBlinders byte = 0x12
)

const (
	p2ChunkLast = 0x00
	p2MoreData  = 0x80
	p1ChunkMax  = 0xFF
)

// Frame is one APDU: a 4-byte header plus its data payload
// (cla, ins, p1, p2 | data).
type Frame struct {
	CLA, INS, P1, P2 byte
	Data             []byte
}

// FrameSource yields frames one at a time, standing in for the firmware's
// Comm::next_command transport loop.
type FrameSource interface {
	Next() (Frame, error)
}

// Approver renders a parsed transaction or address for on-device review
// and reports whether the user approved it (ui_display_tx / ui_display_pk).
type Approver interface {
	ApproveTransaction(tx *memo.DisplayTx) bool
	ApproveAddress(addr string) bool
}

// Instruction is a parsed, strongly-typed APDU command (Instruction).
type Instruction struct {
	INS     byte
	Chunk   byte
	More    bool
	Display bool
}

// ParseInstruction validates an APDU header's (ins, p1, p2) triple and
// classifies it into an Instruction, exactly mirroring
// TryFrom<ApduHeader>::try_from's match arms. CLA is never checked here;
// the caller is expected to reject the wrong class before reaching this.
func ParseInstruction(ins, p1, p2 byte) (Instruction, error) {
	switch {
	case ins == insGetVersion && p1 == 0 && p2 == 0:
		return Instruction{INS: ins}, nil

	case ins == insGetAppName && p1 == 0 && p2 == 0:
		return Instruction{INS: ins}, nil

	case ins == insGetPubKey && (p1 == 0 || p1 == 1) && p2 == 0:
		return Instruction{INS: ins, Display: p1 != 0}, nil

	case ins == insSignTx && p1 == 0 && p2 == p2MoreData:
		return Instruction{INS: ins, Chunk: p1, More: true}, nil
	case ins == insSignTx && p1 >= 1 && (p2 == p2ChunkLast || p2 == p2MoreData):
		return Instruction{INS: ins, Chunk: p1, More: p2 == p2MoreData}, nil

	case ins == insLoadMemo && (p2 == p2ChunkLast || p2 == p2MoreData):
		return Instruction{INS: ins, Chunk: p1, More: p2 == p2MoreData}, nil

	case ins == insSendBlinders:
		return Instruction{INS: ins, Chunk: p1, More: p2&p2MoreData != 0}, nil

	case ins == insGetVersion || ins == insGetAppName || ins == insGetPubKey ||
		ins == insSignTx || ins == insLoadMemo || ins == insSendBlinders:
		return Instruction{}, apperr.New(apperr.WrongP1P2)

	default:
		return Instruction{}, apperr.New(apperr.InsNotSupported)
	}
}

// appName is returned verbatim for GetAppName, standing in for the
// firmware's CARGO_PKG_NAME.
const appName = "Xelis"

// versionMajor/Minor/Patch are returned for GetVersion.
const (
	versionMajor = 1
	versionMinor = 0
	versionPatch = 0
)

// Dispatcher routes parsed instructions to session.Context, deriving keys
// through a seed.Deriver and gating transaction/address display through an
// Approver (handle_apdu's match arms).
type Dispatcher struct {
	Session  *session.Context
	Deriver  seed.Deriver
	Approver Approver
	Mainnet  bool
}

// NewDispatcher wires a fresh session around masterSeed.
func NewDispatcher(masterSeed []byte, approver Approver, mainnet bool) *Dispatcher {
	return &Dispatcher{
		Session:  session.New(masterSeed),
		Deriver:  seed.NewDeriver(masterSeed),
		Approver: approver,
		Mainnet:  mainnet,
	}
}

// previewApprover adapts Dispatcher.Approver's richer
// ApproveTransaction(*memo.DisplayTx) to the narrower interface
// session.Context.LoadMemo expects, rendering the preview into a DisplayTx
// before asking the Approver (memo_to_parsed_tx + ui_display_tx).
type previewApprover struct{ a Approver }

func (p previewApprover) ApprovePreview(preview memo.Preview) bool {
	return p.a.ApproveTransaction(memo.ToDisplayTx(preview))
}

// Handle parses f's header into an Instruction and dispatches it, resetting
// the session for any instruction outside the streaming trio
// (SignTx/LoadMemo/SendBlinders), matching handle_apdu's reset rule. It
// returns the response payload and the status word to report.
func (d *Dispatcher) Handle(f Frame) ([]byte, apperr.Code) {
	ins, err := ParseInstruction(f.INS, f.P1, f.P2)
	if err != nil {
		applog.Debugf("frame: reject ins=%#x p1=%#x p2=%#x: %v", f.INS, f.P1, f.P2, err)
		return nil, apperr.CodeOf(err)
	}

	if ins.INS != insSignTx && ins.INS != insLoadMemo && ins.INS != insSendBlinders {
		d.Session.Reset()
	}

	var resp []byte
	switch ins.INS {
	case insGetAppName:
		resp = []byte(appName)

	case insGetVersion:
		resp = []byte{versionMajor, versionMinor, versionPatch}

	case insGetPubKey:
		resp, err = d.handleGetPubKey(f.Data, ins.Display)

	case insSignTx:
		resp, err = d.Session.SignTx(ins.Chunk, ins.More, f.Data)

	case insLoadMemo:
		err = d.Session.LoadMemo(ins.Chunk, ins.More, f.Data, previewApprover{d.Approver})

	case insSendBlinders:
		err = d.Session.SendBlinders(f.P2, f.Data)
	}

	if err != nil {
		applog.Debugf("frame: ins=%#x failed: %v", ins.INS, err)
		return nil, apperr.CodeOf(err)
	}
	return resp, apperr.Ok
}

// handleGetPubKey derives the path's public key with the private scalar
// held in a secure.Bytes buffer for the derivation's duration, wiped as
// soon as the public key has been computed (with_derived_key).
func (d *Dispatcher) handleGetPubKey(data []byte, display bool) ([]byte, error) {
	path, err := seed.ParsePath(data)
	if err != nil {
		return nil, err
	}

	res, err := secure.WithDerivedKey(
		func() ([32]byte, error) {
			priv, err := d.Deriver.Derive(path)
			if err != nil {
				return [32]byte{}, apperr.New(apperr.KeyDeriveFail)
			}
			return [32]byte(priv), nil
		},
		func(key *secure.Bytes) (any, error) {
			var priv scalar.Scalar
			copy(priv[:], key.Slice())
			pub, err := schnorr.DerivePublicKey(priv)
			if err != nil {
				return nil, apperr.New(apperr.KeyDeriveFail)
			}
			return pub, nil
		},
	)
	if err != nil {
		return nil, err
	}
	pub := res.(ristretto.Compressed)

	if display {
		addr, err := bech32xel.Encode(pub, d.Mainnet)
		if err != nil {
			return nil, apperr.New(apperr.AddrDisplayFail)
		}
		if !d.Approver.ApproveAddress(addr) {
			return nil, apperr.New(apperr.Deny)
		}
	}

	le := pub.ToLE()
	out := make([]byte, 0, 33)
	out = append(out, 32)
	out = append(out, le[:]...)
	return out, nil
}
