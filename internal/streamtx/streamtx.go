// Package streamtx implements the bounded, never-backtracking transaction
// body parser that extracts just enough structure (header fields, and one
// Pedersen commitment per transfer) from a transaction streamed in
// arbitrarily-sized chunks, grounded on
// original_source/src/handlers/sign_tx/tx_parser.rs. The parser never
// buffers the whole transaction: its largest piece of state is the
// 256-byte partial-record scratch buffer used while a multi-chunk field
// (a varint, or a commitment split across two APDUs) is still arriving.
package streamtx

import (
	"github.com/xelis-project/ledger-xelis-core/internal/apperr"
	"github.com/xelis-project/ledger-xelis-core/internal/memo"
)

// Transaction type values, shared with the memo package's tag values.
const (
	TxBurn     = memo.TxBurn
	TxTransfer = memo.TxTransfer
)

// BurnPayloadSize is the fixed-size asset(32)+amount(8) burn body.
const BurnPayloadSize = 40

// partialKind tracks which multi-chunk field extractCommitment is
// mid-way through (PartialType).
type partialKind int

const (
	partialNone partialKind = iota
	partialExtraLength
	partialExtraData
	partialCommitment
)

// Parser is the streaming transaction body parser (TxStreamParser).
type Parser struct {
	BytesSeen       int
	TxVersion       byte
	SourcePubkey    [32]byte
	InTransfers     bool
	TransferCount   byte
	TransfersParsed byte
	BurnParsed      bool

	pendingTailSkip int
	partialBuf      [256]byte
	partialLen      int
	partialType     partialKind
	extraDataLen    int
}

// New returns a freshly reset parser.
func New() *Parser {
	return &Parser{}
}

// Reset returns the parser to its initial state, for reuse across
// transactions.
func (p *Parser) Reset() {
	*p = Parser{}
}

// ParseHeader consumes the version byte, source pubkey, tx type, and
// (for transfers) the transfer count from the front of the transaction
// stream, cross-checking the tx type and transfer count against the
// already-approved preview (parse_header). It returns how many bytes of
// data it consumed.
func (p *Parser) ParseHeader(data []byte, preview memo.Preview, outCount int) (int, error) {
	offset := 0

	if p.BytesSeen == 0 && offset < len(data) {
		p.TxVersion = data[offset]
		offset++
		p.BytesSeen++
	}

	if p.BytesSeen >= 1 && p.BytesSeen < 33 {
		needed := 33 - p.BytesSeen
		available := min(len(data)-offset, needed)
		start := p.BytesSeen - 1
		copy(p.SourcePubkey[start:start+available], data[offset:offset+available])
		offset += available
		p.BytesSeen += available
	}

	if p.BytesSeen == 33 && offset < len(data) {
		txType := data[offset]
		offset++
		p.BytesSeen++

		if txType != preview.TxType {
			return offset, apperr.New(apperr.TxParsingFail)
		}

		switch txType {
		case TxTransfer:
			p.InTransfers = true
		default:
			p.BytesSeen = 35
			return offset, nil
		}
	}

	if p.BytesSeen == 34 && p.InTransfers && offset < len(data) {
		p.TransferCount = data[offset]
		offset++
		p.BytesSeen++

		if int(p.TransferCount) != outCount {
			return offset, apperr.New(apperr.TxParsingFail)
		}
	}

	return offset, nil
}

// ParseBurn accumulates the fixed 40-byte burn payload (asset(32) +
// amount(8), big-endian) and checks the amount against the approved
// burn preview (parse_burn).
func (p *Parser) ParseBurn(data []byte, burn *memo.Burn) (int, error) {
	offset := 0
	for p.partialLen < BurnPayloadSize && offset < len(data) {
		p.partialBuf[p.partialLen] = data[offset]
		p.partialLen++
		offset++
	}

	if p.partialLen == BurnPayloadSize {
		amount := beUint64(p.partialBuf[32:40])
		if burn == nil {
			return offset, apperr.New(apperr.TxParsingFail)
		}
		if amount != burn.Amount {
			return offset, apperr.New(apperr.TxParsingFail)
		}
		p.BurnParsed = true
		p.partialLen = 0
	}

	return offset, nil
}

// ExtractCommitment advances through one transfer's asset/dest/extra
// fields and returns its trailing 32-byte Pedersen commitment once fully
// received (extract_commitment_from_transfer). It is resumable: a partial
// call returns (nil, consumed, nil) and the parser remembers where it left
// off for the next chunk.
func (p *Parser) ExtractCommitment(data []byte) (commitment *[32]byte, consumed int, err error) {
	off := 0

	if p.pendingTailSkip > 0 {
		take := min(p.pendingTailSkip, len(data))
		p.pendingTailSkip -= take
		return nil, take, nil
	}

	for {
		switch p.partialType {
		case partialNone:
			if p.partialLen < 65 {
				needed := 65 - p.partialLen
				available := min(needed, len(data)-off)
				copy(p.partialBuf[p.partialLen:p.partialLen+available], data[off:off+available])
				off += available
				consumed += available
				p.partialLen += available

				if p.partialLen < 65 {
					return nil, consumed, nil
				}
			}

			hasExtra := p.partialBuf[64]
			p.partialLen = 0

			if hasExtra == 1 {
				p.partialType = partialExtraLength
			} else {
				p.partialType = partialCommitment
			}

		case partialExtraLength:
			startOff := off
			done := false
			for i := off; i < len(data); i++ {
				if p.partialLen >= 9 {
					return nil, consumed, apperr.New(apperr.TxParsingFail)
				}
				p.partialBuf[p.partialLen] = data[i]
				p.partialLen++
				off++
				consumed++

				if data[i]&0x80 == 0 {
					extraLen, _, verr := readVarint(p.partialBuf[:p.partialLen])
					if verr != nil {
						return nil, consumed, verr
					}
					p.partialLen = 0
					if extraLen > 0 {
						p.partialType = partialExtraData
						p.extraDataLen = extraLen
					} else {
						p.partialType = partialCommitment
					}
					done = true
					break
				}
			}
			if off == startOff || !done {
				return nil, consumed, nil
			}

		case partialExtraData:
			remaining := p.extraDataLen - p.partialLen
			available := min(remaining, len(data)-off)
			off += available
			consumed += available
			p.partialLen += available

			if p.partialLen >= p.extraDataLen {
				p.partialType = partialCommitment
				p.partialLen = 0
			} else {
				return nil, consumed, nil
			}

		case partialCommitment:
			needed := 32 - p.partialLen
			available := min(needed, len(data)-off)
			copy(p.partialBuf[p.partialLen:p.partialLen+available], data[off:off+available])
			off += available
			consumed += available
			p.partialLen += available

			if p.partialLen >= 32 {
				var c [32]byte
				copy(c[:], p.partialBuf[:32])
				p.partialType = partialNone
				p.partialLen = 0

				tailLen := transferTailLenAfterCommit(p.TxVersion)
				have := max(len(data)-off, 0)
				skipNow := min(tailLen, have)
				off += skipNow
				consumed += skipNow
				p.pendingTailSkip = tailLen - skipNow

				p.TransfersParsed++
				return &c, consumed, nil
			}
			return nil, consumed, nil
		}

		if off >= len(data) {
			return nil, consumed, nil
		}
	}
}

func readVarint(data []byte) (int, int, error) {
	value := 0
	shift := 0
	consumed := 0
	for _, b := range data {
		if consumed >= 9 {
			return 0, 0, apperr.New(apperr.TxParsingFail)
		}
		value |= int(b&0x7f) << shift
		consumed++
		if b&0x80 == 0 {
			return value, consumed, nil
		}
		shift += 7
	}
	return 0, 0, apperr.New(apperr.TxParsingFail)
}

func transferTailLenAfterCommit(txVersion byte) int {
	if txVersion >= 1 {
		return 32 + 32 + 160
	}
	return 32 + 32 + 128
}

func beUint64(b []byte) uint64 {
	var v uint64
	for _, c := range b {
		v = v<<8 | uint64(c)
	}
	return v
}
