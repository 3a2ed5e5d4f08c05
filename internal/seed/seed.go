// Package seed derives per-account private scalars from a master seed
// along a BIP32 path, grounded on original_source/src/utils.rs's
// Bip32Path wire format and the blockwatch-cc-tzgo derivation pattern
// (bip32.NewMasterKey + NewChildKey), adapted here to the XELIS scalar
// domain instead of ed25519.
package seed

import (
	"encoding/binary"

	"github.com/tyler-smith/go-bip32"

	"github.com/xelis-project/ledger-xelis-core/internal/apperr"
	"github.com/xelis-project/ledger-xelis-core/internal/scalar"
)

// hardenedBit marks a BIP32 path component as hardened.
const hardenedBit = 0x80000000

// Path is a BIP32 derivation path, each component already in the wire
// convention the host encodes (may or may not carry the hardened bit).
type Path []uint32

// ParsePath decodes the wire encoding used by the GetPubKey/SignTx APDUs'
// path field: a one-byte component count followed by that many 4-byte
// big-endian components (Bip32Path::try_from).
func ParsePath(data []byte) (Path, error) {
	if len(data) == 0 || int(data[0])*4 != len(data)-1 {
		return nil, apperr.New(apperr.WrongApduLength)
	}
	count := int(data[0])
	path := make(Path, count)
	for i := 0; i < count; i++ {
		off := 1 + i*4
		path[i] = binary.BigEndian.Uint32(data[off : off+4])
	}
	return path, nil
}

// Deriver binds a master seed so callers never have to carry it alongside
// every derivation call (the dispatcher holds one rather than the raw
// seed bytes).
type Deriver struct {
	MasterSeed []byte
}

// NewDeriver returns a Deriver bound to masterSeed.
func NewDeriver(masterSeed []byte) Deriver {
	return Deriver{MasterSeed: masterSeed}
}

// Derive walks the bound master seed through path.
func (d Deriver) Derive(path Path) (scalar.Scalar, error) {
	return Derive(d.MasterSeed, path)
}

// Derive walks masterSeed through path using hardened BIP32 child
// derivation at every level (the device never derives non-hardened
// children), reducing the final 32-byte key material mod L into a
// private scalar.
func Derive(masterSeed []byte, path Path) (scalar.Scalar, error) {
	key, err := bip32.NewMasterKey(masterSeed)
	if err != nil {
		return scalar.Scalar{}, apperr.New(apperr.KeyDeriveFail)
	}

	for _, component := range path {
		idx := component
		if idx < hardenedBit {
			idx |= hardenedBit
		}
		key, err = key.NewChildKey(idx)
		if err != nil {
			return scalar.Scalar{}, apperr.New(apperr.KeyDeriveFail)
		}
	}

	var raw [32]byte
	copy(raw[:], key.Key)
	return scalar.FromBytes(raw), nil
}
