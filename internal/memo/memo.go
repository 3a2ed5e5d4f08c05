// Package memo parses and (for host/test use) encodes the XLB1 preview
// TLV format: a compact summary of a transaction's user-visible fields
// that the host sends ahead of the transaction bytes themselves, so the
// device can display a preview before committing to the (non-reversible,
// streamed) signing pass. Grounded on original_source/src/xlb.rs.
package memo

import (
	"encoding/binary"
	"sync"

	"github.com/xelis-project/ledger-xelis-core/internal/apperr"
)

// TLV tags, must match the host encoder.
const (
	TagTxType    byte = 0x01
	TagFee       byte = 0x02
	TagNonce     byte = 0x03
	TagAssetTable byte = 0x04
	TagOutCount  byte = 0x10 // no length field
	TagOutItem   byte = 0x20
	TagBurn      byte = 0x30
)

// Transaction type values carried in TagTxType.
const (
	TxBurn           byte = 0
	TxTransfer       byte = 1
	TxMultisig       byte = 2
	TxInvokeContract byte = 3
	TxDeployContract byte = 4
)

// NativeAssetIndex is the implicit index of the chain's native asset; it
// is never stored in the asset table.
const NativeAssetIndex byte = 0

// NativeAsset is the all-zero asset identifier for the native asset.
var NativeAsset [32]byte

const maxVarintBytes = 9

// Out describes one transfer output as previewed (MemoOut).
type Out struct {
	AssetIndex byte
	Dest       [32]byte
	Amount     uint64
	ExtraLen   uint64
	Preview    []byte
}

// Burn describes a burn transaction's preview (MemoBurn).
type Burn struct {
	AssetIndex byte
	Amount     uint64
}

// Preview is the result of parsing a memo: the fields the device displays
// for user approval (MemoPreview).
type Preview struct {
	TxType byte
	Fee    uint64
	Nonce  uint64
}

// Workspace holds the asset table and per-output previews decoded from
// the most recently parsed memo (MemoWorkspace). It is a process-wide
// singleton: the device has exactly one preview in flight at a time, and
// every session resets it before loading a new memo.
type Workspace struct {
	AssetTable [][32]byte
	Outs       []Out
	Burn       *Burn
}

var (
	workspaceOnce sync.Once
	workspace     *Workspace
)

// Global returns the process-wide memo workspace, constructing it on
// first use (memo_ws_mut).
func Global() *Workspace {
	workspaceOnce.Do(func() {
		workspace = &Workspace{}
	})
	return workspace
}

// Clear empties the workspace ahead of parsing a new memo.
func (w *Workspace) Clear() {
	w.AssetTable = w.AssetTable[:0]
	w.Outs = w.Outs[:0]
	w.Burn = nil
}

// Asset resolves a TAG_OUT_ITEM/TAG_BURN asset index to its 32-byte asset
// id: 0 is always the native asset, 1..N index into the asset table
// (get_memo_asset).
func (w *Workspace) Asset(index byte) [32]byte {
	if index == NativeAssetIndex {
		return NativeAsset
	}
	tableIdx := int(index) - 1
	if tableIdx >= 0 && tableIdx < len(w.AssetTable) {
		return w.AssetTable[tableIdx]
	}
	return NativeAsset
}

func readLEB128(buf []byte, off int) (uint64, int, error) {
	var val uint64
	var shift uint
	consumed := 0
	for {
		if off >= len(buf) || consumed >= maxVarintBytes {
			return 0, 0, apperr.New(apperr.TxParsingFail)
		}
		b := buf[off]
		off++
		consumed++
		val |= uint64(b&0x7f) << shift
		if b&0x80 == 0 {
			break
		}
		shift += 7
		if shift >= 64 {
			return 0, 0, apperr.New(apperr.TxParsingFail)
		}
	}
	return val, off, nil
}

// ParseTLV decodes a memo buffer into the process workspace and returns
// its header-level preview fields (parse_memo_tlv). Unknown tags are
// skipped for forward compatibility; TAG_OUT_COUNT, if present, is
// validated against the number of TAG_OUT_ITEM entries actually parsed.
func ParseTLV(memo []byte) (Preview, error) {
	ws := Global()
	ws.Clear()

	var preview Preview
	var expectedOuts *uint64
	off := 0

	for off < len(memo) {
		tag := memo[off]
		off++

		if tag == TagOutCount {
			n, noff, err := readLEB128(memo, off)
			if err != nil {
				return Preview{}, err
			}
			off = noff
			expectedOuts = &n
			continue
		}

		length, noff, err := readLEB128(memo, off)
		if err != nil {
			return Preview{}, err
		}
		off = noff
		if off+int(length) > len(memo) {
			return Preview{}, apperr.New(apperr.TxParsingFail)
		}
		val := memo[off : off+int(length)]
		off += int(length)

		switch tag {
		case TagTxType:
			if len(val) != 1 {
				return Preview{}, apperr.New(apperr.MemoInvalid)
			}
			preview.TxType = val[0]

		case TagFee:
			if len(val) != 8 {
				return Preview{}, apperr.New(apperr.MemoInvalid)
			}
			preview.Fee = binary.LittleEndian.Uint64(val)

		case TagNonce:
			if len(val) != 8 {
				return Preview{}, apperr.New(apperr.MemoInvalid)
			}
			preview.Nonce = binary.LittleEndian.Uint64(val)

		case TagAssetTable:
			p := 0
			assetCount, pn, err := readLEB128(val, p)
			if err != nil {
				return Preview{}, err
			}
			p = pn
			if p+int(assetCount)*32 > len(val) {
				return Preview{}, apperr.New(apperr.MemoInvalid)
			}
			for i := uint64(0); i < assetCount; i++ {
				var asset [32]byte
				copy(asset[:], val[p:p+32])
				p += 32
				ws.AssetTable = append(ws.AssetTable, asset)
			}
			if len(ws.AssetTable) > 255 {
				return Preview{}, apperr.New(apperr.MemoInvalid)
			}

		case TagOutItem:
			if len(val) < 1+32+8 {
				return Preview{}, apperr.New(apperr.MemoInvalid)
			}
			p := 0
			assetIndex := val[p]
			p++
			if assetIndex > 0 && int(assetIndex) > len(ws.AssetTable) {
				return Preview{}, apperr.New(apperr.MemoInvalid)
			}
			var dest [32]byte
			copy(dest[:], val[p:p+32])
			p += 32
			amount := binary.LittleEndian.Uint64(val[p : p+8])
			p += 8

			extraLen, pn1, err := readLEB128(val, p)
			if err != nil {
				return Preview{}, err
			}
			p = pn1
			previewLen, pn2, err := readLEB128(val, p)
			if err != nil {
				return Preview{}, err
			}
			p = pn2
			if p+int(previewLen) > len(val) {
				return Preview{}, apperr.New(apperr.MemoInvalid)
			}
			out := Out{
				AssetIndex: assetIndex,
				Dest:       dest,
				Amount:     amount,
				ExtraLen:   extraLen,
				Preview:    append([]byte(nil), val[p:p+int(previewLen)]...),
			}
			ws.Outs = append(ws.Outs, out)

		case TagBurn:
			if len(val) < 1+8 {
				return Preview{}, apperr.New(apperr.MemoInvalid)
			}
			assetIndex := val[0]
			if assetIndex > 0 && int(assetIndex) > len(ws.AssetTable) {
				return Preview{}, apperr.New(apperr.MemoInvalid)
			}
			amount := binary.LittleEndian.Uint64(val[1:9])
			// The remaining preview-length-prefixed bytes are display-only
			// and not retained; only the fields the device needs to act on
			// (asset, amount) are kept.
			ws.Burn = &Burn{AssetIndex: assetIndex, Amount: amount}

		default:
			// unknown tag: ignore for forward compatibility
		}
	}

	if expectedOuts != nil && uint64(len(ws.Outs)) != *expectedOuts {
		return Preview{}, apperr.New(apperr.MemoInvalid)
	}

	return preview, nil
}

func appendLEB128(buf []byte, v uint64) []byte {
	for {
		b := byte(v & 0x7f)
		v >>= 7
		if v != 0 {
			b |= 0x80
		}
		buf = append(buf, b)
		if v == 0 {
			return buf
		}
	}
}

// DisplayTransfer is one transfer output rendered for on-device review,
// paired with its resolved asset id (ParsedTransfer).
type DisplayTransfer struct {
	Asset     [32]byte
	Recipient [32]byte
	Amount    uint64
	HasExtra  bool
}

// DisplayBurn is a burn transaction rendered for on-device review
// (ParsedBurn).
type DisplayBurn struct {
	Asset  [32]byte
	Amount uint64
}

// DisplayTx is the human-readable rendering of a parsed preview that the
// device shows the user before it will sign anything (ParsedTransaction /
// ui_display_tx). Only transfer and burn transactions carry per-output
// detail; the workspace is the source of that detail since Preview itself
// only holds header-level fields.
type DisplayTx struct {
	TxType    byte
	Fee       uint64
	Nonce     uint64
	Transfers []DisplayTransfer
	Burn      *DisplayBurn
}

// ToDisplayTx renders p and the process workspace's outputs/burn into the
// form the device's approval screen consumes (memo_to_parsed_tx).
func ToDisplayTx(p Preview) *DisplayTx {
	ws := Global()
	dt := &DisplayTx{TxType: p.TxType, Fee: p.Fee, Nonce: p.Nonce}

	switch p.TxType {
	case TxTransfer:
		dt.Transfers = make([]DisplayTransfer, 0, len(ws.Outs))
		for _, o := range ws.Outs {
			dt.Transfers = append(dt.Transfers, DisplayTransfer{
				Asset:     ws.Asset(o.AssetIndex),
				Recipient: o.Dest,
				Amount:    o.Amount,
				HasExtra:  o.ExtraLen > 0,
			})
		}

	case TxBurn:
		if ws.Burn != nil {
			dt.Burn = &DisplayBurn{Asset: ws.Asset(ws.Burn.AssetIndex), Amount: ws.Burn.Amount}
		}
	}

	return dt
}

// Encode serializes a preview, asset table, and set of outputs (or a
// burn) into the XLB1 TLV wire format ParseTLV expects. This is a host-
// side convenience for tests and the simulator, not something the
// firmware itself ever did (it only parses memos, never builds them).
func Encode(p Preview, assetTable [][32]byte, outs []Out, burn *Burn) []byte {
	var buf []byte

	buf = append(buf, TagTxType, 1, p.TxType)

	buf = append(buf, TagFee)
	buf = appendLEB128(buf, 8)
	var feeBytes [8]byte
	binary.LittleEndian.PutUint64(feeBytes[:], p.Fee)
	buf = append(buf, feeBytes[:]...)

	buf = append(buf, TagNonce)
	buf = appendLEB128(buf, 8)
	var nonceBytes [8]byte
	binary.LittleEndian.PutUint64(nonceBytes[:], p.Nonce)
	buf = append(buf, nonceBytes[:]...)

	if len(assetTable) > 0 {
		var tableVal []byte
		tableVal = appendLEB128(tableVal, uint64(len(assetTable)))
		for _, a := range assetTable {
			tableVal = append(tableVal, a[:]...)
		}
		buf = append(buf, TagAssetTable)
		buf = appendLEB128(buf, uint64(len(tableVal)))
		buf = append(buf, tableVal...)
	}

	if len(outs) > 0 {
		buf = append(buf, TagOutCount)
		buf = appendLEB128(buf, uint64(len(outs)))
	}

	for _, o := range outs {
		var val []byte
		val = append(val, o.AssetIndex)
		val = append(val, o.Dest[:]...)
		var amountBytes [8]byte
		binary.LittleEndian.PutUint64(amountBytes[:], o.Amount)
		val = append(val, amountBytes[:]...)
		val = appendLEB128(val, o.ExtraLen)
		val = appendLEB128(val, uint64(len(o.Preview)))
		val = append(val, o.Preview...)

		buf = append(buf, TagOutItem)
		buf = appendLEB128(buf, uint64(len(val)))
		buf = append(buf, val...)
	}

	if burn != nil {
		var val []byte
		val = append(val, burn.AssetIndex)
		var amountBytes [8]byte
		binary.LittleEndian.PutUint64(amountBytes[:], burn.Amount)
		val = append(val, amountBytes[:]...)
		val = appendLEB128(val, 0) // preview length, unused on decode

		buf = append(buf, TagBurn)
		buf = appendLEB128(buf, uint64(len(val)))
		buf = append(buf, val...)
	}

	return buf
}
