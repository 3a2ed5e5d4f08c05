// Package bech32xel implements XELIS's bech32-like address encoding,
// grounded on original_source/src/crypto/address.rs: a 3-letter HRP
// ("xel"/"xet"), a ':' separator instead of bech32's '1', and BIP-173's
// charset, checksum polymod and generator constants.
package bech32xel

import (
	"strings"

	"github.com/xelis-project/ledger-xelis-core/internal/apperr"
	"github.com/xelis-project/ledger-xelis-core/internal/ristretto"
)

const (
	mainnetHRP = "xel"
	testnetHRP = "xet"
	separator  = ':'
	charset    = "qpzry9x8gf2tvdw0s3jn54khce6mua7l"

	// addressTypeNormal is the single address type the device core emits;
	// XELIS defines others (e.g. contract) that this core never constructs.
	addressTypeNormal = 0x00
)

var charsetIndex = func() map[byte]byte {
	m := make(map[byte]byte, len(charset))
	for i := 0; i < len(charset); i++ {
		m[charset[i]] = byte(i)
	}
	return m
}()

func polymodStep(chk uint32, value byte) uint32 {
	gen := [5]uint32{0x3b6a57b2, 0x26508e6d, 0x1ea119fa, 0x3d4233dd, 0x2a1462b3}
	b := chk >> 25
	chk = ((chk & 0x1ffffff) << 5) ^ uint32(value)
	for i := 0; i < 5; i++ {
		if (b>>uint(i))&1 == 1 {
			chk ^= gen[i]
		}
	}
	return chk
}

func checksum(hrp string, data []byte) [6]byte {
	chk := uint32(1)
	for i := 0; i < len(hrp); i++ {
		chk = polymodStep(chk, hrp[i]>>5)
	}
	chk = polymodStep(chk, 0)
	for i := 0; i < len(hrp); i++ {
		chk = polymodStep(chk, hrp[i]&31)
	}
	for _, b := range data {
		chk = polymodStep(chk, b)
	}
	for i := 0; i < 6; i++ {
		chk = polymodStep(chk, 0)
	}
	chk ^= 1
	var out [6]byte
	for i := 0; i < 6; i++ {
		out[i] = byte((chk >> uint(5*(5-i))) & 31)
	}
	return out
}

// convertBits regroups a byte stream between bit widths, as
// convert_bits_fixed does for the 8-to-5 (encode) and 5-to-8 (decode)
// directions.
func convertBits(data []byte, from, to uint, pad bool) ([]byte, error) {
	var acc uint32
	var bits uint
	maxVal := uint32(1<<to) - 1
	out := make([]byte, 0, len(data)*int(from)/int(to)+1)

	for _, value := range data {
		if uint32(value)>>from != 0 {
			return nil, apperr.New(apperr.AddressError)
		}
		acc = (acc << from) | uint32(value)
		bits += from
		for bits >= to {
			bits -= to
			out = append(out, byte((acc>>bits)&maxVal))
		}
	}

	if pad && bits > 0 {
		out = append(out, byte((acc<<(to-bits))&maxVal))
	} else if !pad && (bits >= from || (acc<<(to-bits))&maxVal != 0) {
		return nil, apperr.New(apperr.AddressError)
	}

	return out, nil
}

// Encode formats a compressed Ristretto public key as a XELIS address
// (format_address). pubKey is in the device core's native big-endian
// compressed form; XELIS addresses encode it little-endian.
func Encode(pubKey ristretto.Compressed, mainnet bool) (string, error) {
	hrp := testnetHRP
	if mainnet {
		hrp = mainnetHRP
	}

	le := pubKey.ToLE()
	payload := make([]byte, 0, 33)
	payload = append(payload, le[:]...)
	payload = append(payload, addressTypeNormal)

	groups, err := convertBits(payload, 8, 5, true)
	if err != nil {
		return "", err
	}

	cs := checksum(hrp, groups)

	var sb strings.Builder
	sb.WriteString(hrp)
	sb.WriteByte(separator)
	for _, g := range groups {
		sb.WriteByte(charset[g])
	}
	for _, c := range cs {
		sb.WriteByte(charset[c])
	}
	return sb.String(), nil
}

// Decode parses a XELIS address, validating its checksum and returning
// the device's native big-endian compressed public key plus whether it
// was a mainnet ("xel") or testnet ("xet") address. Decode is not part of
// the original firmware (the device only ever displays and signs, never
// consumes addresses), added here as a host-side convenience so the
// signer's compressed output can be round-tripped back through the same
// encoding it is asked to display.
func Decode(addr string) (pubKey ristretto.Compressed, mainnet bool, err error) {
	idx := strings.IndexByte(addr, separator)
	if idx < 0 {
		return ristretto.Compressed{}, false, apperr.New(apperr.AddressError)
	}
	hrp := addr[:idx]
	switch hrp {
	case mainnetHRP:
		mainnet = true
	case testnetHRP:
		mainnet = false
	default:
		return ristretto.Compressed{}, false, apperr.New(apperr.AddressError)
	}

	data := addr[idx+1:]
	if len(data) < 6 {
		return ristretto.Compressed{}, false, apperr.New(apperr.AddressError)
	}

	groups := make([]byte, len(data))
	for i := 0; i < len(data); i++ {
		v, ok := charsetIndex[data[i]]
		if !ok {
			return ristretto.Compressed{}, false, apperr.New(apperr.AddressError)
		}
		groups[i] = v
	}

	cs := checksum(hrp, groups[:len(groups)-6])
	tail := groups[len(groups)-6:]
	for i := range cs {
		if cs[i] != tail[i] {
			return ristretto.Compressed{}, false, apperr.New(apperr.AddressError)
		}
	}
	payload, err := convertBits(groups[:len(groups)-6], 5, 8, false)
	if err != nil {
		return ristretto.Compressed{}, false, apperr.New(apperr.AddressError)
	}
	if len(payload) != 33 || payload[32] != addressTypeNormal {
		return ristretto.Compressed{}, false, apperr.New(apperr.AddressError)
	}

	var le [32]byte
	copy(le[:], payload[:32])
	for i, b := range le {
		pubKey[31-i] = b
	}
	return pubKey, mainnet, nil
}
