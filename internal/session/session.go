// Package session drives the per-transaction state machine that binds
// memo preview approval, blinding-factor receipt, and streamed
// transaction signing into one coherent flow, grounded on
// original_source/src/handlers/sign_tx/mod.rs's TxContext and its
// handler_load_memo/handler_send_blinders/handler_sign_tx trio.
package session

import (
	"github.com/xelis-project/ledger-xelis-core/internal/apperr"
	"github.com/xelis-project/ledger-xelis-core/internal/commitment"
	"github.com/xelis-project/ledger-xelis-core/internal/memo"
	"github.com/xelis-project/ledger-xelis-core/internal/ristretto"
	"github.com/xelis-project/ledger-xelis-core/internal/scalar"
	"github.com/xelis-project/ledger-xelis-core/internal/schnorr"
	"github.com/xelis-project/ledger-xelis-core/internal/secure"
	"github.com/xelis-project/ledger-xelis-core/internal/seed"
	"github.com/xelis-project/ledger-xelis-core/internal/streamtx"
	"github.com/xelis-project/ledger-xelis-core/internal/xhash"
)

// State names the session's position in the preview/sign flow.
type State int

const (
	StateIdle State = iota
	StatePreviewLoading
	StatePreviewApproved
	StateBlindersReceived
	StateSigning
	StateSigned
)

const (
	// MaxTransactionLen bounds the total streamed transaction body.
	MaxTransactionLen = 1 << 20
	// MaxMemoSize bounds the TLV preview buffer.
	MaxMemoSize = 32 * 1024
	// MaxChunks bounds how many APDU chunks one transaction may span.
	MaxChunks = 4500
)

// PreviewApprover decides whether a previewed transaction should proceed,
// standing in for the firmware's on-device confirmation screen
// (ui_display_tx). It is deliberately narrower than the frame package's
// Approver: session only ever needs a yes/no on the parsed preview, and
// rendering that preview for the user is the dispatcher's job.
type PreviewApprover interface {
	ApprovePreview(preview memo.Preview) bool
}

// Context is the per-session state machine (TxContext).
type Context struct {
	state State

	path       seed.Path
	masterSeed []byte

	hasher      *xhash.Streaming
	txHash      [64]byte
	totalSize   int
	chunkCount  int

	memoPreview     memo.Preview
	memoBuffer      []byte
	memoChunkCount  int
	previewApproved bool

	signCompleted bool
	signSucceeded bool

	parser   *streamtx.Parser
	verifier *commitment.Verifier
}

// New returns a fresh, idle session bound to masterSeed (the device's
// root key material, never leaving this process).
func New(masterSeed []byte) *Context {
	return &Context{
		masterSeed: masterSeed,
		parser:     streamtx.New(),
		verifier:   commitment.NewVerifier(),
	}
}

// State returns the session's current state.
func (c *Context) State() State { return c.state }

// Reset returns the session to Idle, discarding all in-flight preview,
// blinder, and signing state (TxContext::reset).
func (c *Context) Reset() {
	c.state = StateIdle
	c.path = nil
	c.hasher = nil
	c.txHash = [64]byte{}
	c.totalSize = 0
	c.chunkCount = 0
	c.memoPreview = memo.Preview{}
	c.memoBuffer = nil
	c.memoChunkCount = 0
	c.previewApproved = false
	c.signCompleted = false
	c.signSucceeded = false
	c.parser.Reset()
	c.verifier.Reset()
	memo.Global().Clear()
}

func expectedChunk(count int) byte {
	if count == 0 {
		return 0
	}
	return byte((count-1)%255) + 1
}

// LoadMemo accumulates one chunk of the memo TLV buffer and, once the
// final chunk (more == false) arrives, parses it and asks approver to
// confirm it (handler_load_memo).
func (c *Context) LoadMemo(chunk byte, more bool, data []byte, approver PreviewApprover) error {
	if chunk == 0 {
		c.memoBuffer = c.memoBuffer[:0]
		c.memoChunkCount = 0
		c.previewApproved = false
		c.verifier.InitBlinders()
		memo.Global().Clear()
		c.state = StatePreviewLoading
	}

	if chunk != expectedChunk(c.memoChunkCount) {
		return apperr.New(apperr.TxParsingFail)
	}
	c.memoChunkCount++

	if len(c.memoBuffer)+len(data) > MaxMemoSize {
		return apperr.New(apperr.TxWrongLength)
	}
	c.memoBuffer = append(c.memoBuffer, data...)

	if more {
		return nil
	}

	preview, err := memo.ParseTLV(c.memoBuffer)
	if err != nil {
		return err
	}
	c.memoBuffer = c.memoBuffer[:0]

	if !approver.ApprovePreview(preview) {
		c.state = StateIdle
		return apperr.New(apperr.Deny)
	}

	c.memoPreview = preview
	c.previewApproved = true
	c.state = StatePreviewApproved
	return nil
}

// SendBlinders records the Pedersen blinding factors for the outputs in
// the approved preview, each arriving little-endian over the wire and
// reduced to the device's native big-endian scalar representation
// (handler_send_blinders). p2's top bit marks the final chunk, at which
// point the blinder count is checked against the preview.
func (c *Context) SendBlinders(p2 byte, data []byte) error {
	if len(data)%32 != 0 {
		return apperr.New(apperr.WrongApduLength)
	}

	// A completed batch is replaced by the next one; chunks of a batch
	// still in progress accumulate.
	if c.state == StateBlindersReceived {
		c.verifier.InitBlinders()
	}
	for off := 0; off < len(data); off += 32 {
		var le [32]byte
		copy(le[:], data[off:off+32])
		var be [32]byte
		for i, b := range le {
			be[31-i] = b
		}
		c.verifier.AddBlinder(scalar.Scalar(be))
	}

	if p2&0x80 != 0 {
		if !c.previewApproved {
			return apperr.New(apperr.MemoRequired)
		}
		expected := expectedOutputs(c.memoPreview)
		if c.verifier.BlinderCount() != expected {
			return apperr.New(apperr.TxParsingFail)
		}
		c.state = StateBlindersReceived
	}
	return nil
}

func expectedOutputs(p memo.Preview) int {
	switch p.TxType {
	case memo.TxTransfer:
		return len(memo.Global().Outs)
	case memo.TxBurn:
		return 1
	default:
		return 0
	}
}

// SignTx feeds one chunk of the transaction body through the streaming
// parser and commitment verifier, hashing every byte unconditionally, and
// on the final chunk derives the signing key and returns the completed
// signature (handler_sign_tx / parse_and_verify_stream /
// finalize_transaction / compute_signature_and_append).
//
// chunk 0 carries the BIP32 path instead of transaction bytes, per the
// wire convention parse_header expects.
func (c *Context) SignTx(chunk byte, more bool, data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, apperr.New(apperr.TxParsingFail)
	}

	if chunk == 0 {
		if !c.previewApproved {
			return nil, apperr.New(apperr.MemoRequired)
		}
		path, err := seed.ParsePath(data)
		if err != nil {
			return nil, err
		}
		c.path = path
		c.signCompleted = false
		c.signSucceeded = false
		c.hasher = xhash.NewStreaming()
		c.totalSize = 0
		c.chunkCount = 0
		c.parser.Reset()

		if c.memoPreview.TxType == memo.TxBurn || c.memoPreview.TxType == memo.TxTransfer {
			c.verifier.InitVerification(len(memo.Global().Outs))
		}
		c.state = StateSigning
		return nil, nil
	}

	expected := byte(c.chunkCount%255) + 1
	if chunk != expected {
		return nil, apperr.New(apperr.TxParsingFail)
	}
	c.chunkCount++

	c.totalSize += len(data)
	if c.totalSize > MaxTransactionLen {
		return nil, apperr.New(apperr.TxWrongLength)
	}
	if c.chunkCount > MaxChunks {
		return nil, apperr.New(apperr.TxParsingFail)
	}

	c.hasher.Write(data)

	if err := c.parseAndVerifyStream(data); err != nil {
		return nil, err
	}

	if !more {
		sig, err := c.finalizeTransaction()
		if err != nil {
			return nil, err
		}
		c.signSucceeded = true
		c.signCompleted = true
		c.state = StateSigned
		return sig, nil
	}

	return nil, nil
}

func (c *Context) parseAndVerifyStream(data []byte) error {
	offset := 0

	if c.parser.BytesSeen < 35 {
		n, err := c.parser.ParseHeader(data[offset:], c.memoPreview, len(memo.Global().Outs))
		if err != nil {
			return err
		}
		offset += n
	}

	if c.parser.InTransfers {
		for c.parser.TransfersParsed < c.parser.TransferCount && offset < len(data) {
			commit, consumed, err := c.parser.ExtractCommitment(data[offset:])
			if err != nil {
				return err
			}
			if commit != nil {
				idx := int(c.parser.TransfersParsed) - 1
				amount := memo.Global().Outs[idx].Amount
				if err := c.verifier.VerifyOutput(idx, *commit, amount); err != nil {
					return err
				}
			}
			offset += consumed
			c.parser.BytesSeen += consumed
		}
	}

	if c.memoPreview.TxType == memo.TxBurn && c.parser.BytesSeen >= 35 && !c.parser.BurnParsed && offset < len(data) {
		n, err := c.parser.ParseBurn(data[offset:], memo.Global().Burn)
		if err != nil {
			return err
		}
		offset += n
		c.parser.BytesSeen += n
	}

	return nil
}

// burnTotalBodyLen is the total size, in bytes, a BURN transaction's signed
// body (everything streamed through SignTx after the chunk-0 path) must add
// up to before a signature is emitted: version(1) + source_pubkey(32) +
// tx_type(1) + burn_payload(40, asset32 ∥ amount8).
const burnTotalBodyLen = 1 + 32 + 1 + streamtx.BurnPayloadSize

func (c *Context) finalizeTransaction() ([]byte, error) {
	switch c.memoPreview.TxType {
	case memo.TxTransfer:
		if !c.verifier.AllVerified() || c.verifier.VerifiedCount() != len(memo.Global().Outs) {
			return nil, apperr.New(apperr.InvalidCommitment)
		}
	case memo.TxBurn:
		if !c.parser.BurnParsed {
			return nil, apperr.New(apperr.TxParsingFail)
		}
		if c.totalSize != burnTotalBodyLen {
			return nil, apperr.New(apperr.TxWrongLength)
		}
	}

	c.txHash = c.hasher.Sum()
	return c.computeSignature()
}

// computeSignature derives the signing key into a secure.Bytes buffer,
// signs the finalised tx hash, and returns the wire-format response
// 0x40 ∥ s_le(32) ∥ e_le(32) (compute_signature_and_append). s and e are
// each byte-reversed independently; the pair is not reversed as one
// 64-byte block. The private scalar is wiped (with_derived_key) as soon
// as the signature has been produced.
func (c *Context) computeSignature() ([]byte, error) {
	res, err := secure.WithDerivedKey(
		func() ([32]byte, error) {
			priv, err := seed.Derive(c.masterSeed, c.path)
			if err != nil {
				return [32]byte{}, err
			}
			return [32]byte(priv), nil
		},
		func(key *secure.Bytes) (any, error) {
			var priv scalar.Scalar
			copy(priv[:], key.Slice())

			pub, err := schnorr.DerivePublicKey(priv)
			if err != nil {
				return nil, err
			}

			sig, err := schnorr.Sign(priv, pub, c.txHash[:])
			if err != nil {
				return nil, err
			}

			sBE := sig.S.Bytes()
			eBE := sig.E.Bytes()

			out := make([]byte, 0, 1+len(sBE)+len(eBE))
			out = append(out, schnorr.SignatureSize)
			for i := len(sBE) - 1; i >= 0; i-- {
				out = append(out, sBE[i])
			}
			for i := len(eBE) - 1; i >= 0; i-- {
				out = append(out, eBE[i])
			}
			return out, nil
		},
	)
	if err != nil {
		return nil, err
	}
	return res.([]byte), nil
}

// VerifySignature is a host/test-side convenience that checks sig against
// the caller-supplied public key and message via schnorr.Verify (not part
// of the original firmware, which never verifies its own output).
func VerifySignature(pub ristretto.Compressed, msg []byte, sig schnorr.Signature) (bool, error) {
	return schnorr.Verify(pub, msg, sig)
}
