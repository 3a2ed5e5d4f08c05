// Command xelis-device-sim drives internal/frame.Dispatcher through one
// full transfer preview/sign flow over an in-process APDU loop, standing
// in for the hardware transport original_source/src/main.rs's sample_main
// reads from. It exists to exercise the device core end to end without a
// physical device or Speculos.
package main

import (
	"crypto/rand"
	"encoding/hex"
	"flag"
	"fmt"
	"log"

	elog "github.com/echa/log"

	"github.com/xelis-project/ledger-xelis-core/internal/apperr"
	"github.com/xelis-project/ledger-xelis-core/internal/applog"
	"github.com/xelis-project/ledger-xelis-core/internal/frame"
	"github.com/xelis-project/ledger-xelis-core/internal/memo"
	"github.com/xelis-project/ledger-xelis-core/internal/ristretto"
	"github.com/xelis-project/ledger-xelis-core/internal/scalar"
)

const (
	insGetVersion   = 0x03
	insGetAppName   = 0x04
	insGetPubKey    = 0x05
	insSignTx       = 0x06
	insLoadMemo     = 0x10
	insSendBlinders = 0x12
)

// cliApprover auto-approves everything it sees and prints what it would
// have shown a human, standing in for ui_display_tx/ui_display_pk.
type cliApprover struct{}

func (cliApprover) ApproveTransaction(tx *memo.DisplayTx) bool {
	fmt.Println("--- transaction review ---")
	fmt.Printf("fee=%d nonce=%d\n", tx.Fee, tx.Nonce)
	for i, t := range tx.Transfers {
		fmt.Printf("  output %d: asset=%x amount=%d dest=%x\n", i+1, t.Asset[:4], t.Amount, t.Recipient[:4])
	}
	if tx.Burn != nil {
		fmt.Printf("  burn: asset=%x amount=%d\n", tx.Burn.Asset[:4], tx.Burn.Amount)
	}
	fmt.Println("--- approved ---")
	return true
}

func (cliApprover) ApproveAddress(addr string) bool {
	fmt.Printf("--- address review: %s ---\n", addr)
	return true
}

func reverse32(b [32]byte) [32]byte {
	var out [32]byte
	for i, v := range b {
		out[31-i] = v
	}
	return out
}

func main() {
	verbose := flag.Bool("v", false, "enable debug logging")
	flag.Parse()

	if *verbose {
		applog.UseLogger(elog.Log)
	}

	var masterSeed [32]byte
	if _, err := rand.Read(masterSeed[:]); err != nil {
		log.Fatalf("seed: %v", err)
	}

	d := frame.NewDispatcher(masterSeed[:], cliApprover{}, true)

	// GetVersion
	mustHandle(d, insGetVersion, 0, 0, nil)

	// GetPubKey for path m/0' (display off)
	pathWire := []byte{1, 0, 0, 0, 0}
	pub := mustHandle(d, insGetPubKey, 0, 0, pathWire)
	fmt.Printf("public key: %s\n", hex.EncodeToString(pub[1:]))

	var pubLE [32]byte
	copy(pubLE[:], pub[1:])

	// Build a one-output transfer preview and approve it.
	amount := uint64(100_000_000) // 1 XELIS
	var dest [32]byte
	copy(dest[:], []byte("recipient-address-placeholder---"))

	preview := memo.Preview{TxType: memo.TxTransfer, Fee: 1000, Nonce: 1}
	out := memo.Out{AssetIndex: memo.NativeAssetIndex, Dest: dest, Amount: amount}
	memoBytes := memo.Encode(preview, nil, []memo.Out{out}, nil)

	mustHandle(d, insLoadMemo, 0, 0x00, memoBytes)

	// Blinder for the single output, and its Pedersen commitment.
	blinder, err := scalar.Random()
	if err != nil {
		log.Fatalf("blinder: %v", err)
	}
	var amountScalar scalar.Scalar
	amountScalar[24] = byte(amount >> 56)
	amountScalar[25] = byte(amount >> 48)
	amountScalar[26] = byte(amount >> 40)
	amountScalar[27] = byte(amount >> 32)
	amountScalar[28] = byte(amount >> 24)
	amountScalar[29] = byte(amount >> 16)
	amountScalar[30] = byte(amount >> 8)
	amountScalar[31] = byte(amount)

	vg := ristretto.ScalarMult(amountScalar.Bytes(), ristretto.G)
	rh := ristretto.ScalarMult(blinder.Bytes(), ristretto.H)
	commit := ristretto.Add(vg, rh).Compress().ToLE()

	blinderWire := reverse32(blinder.Bytes())
	mustHandle(d, insSendBlinders, 0, 0x80, blinderWire[:])

	// chunk 0 of SignTx carries the BIP32 path.
	mustHandle(d, insSignTx, 0, 0x80, pathWire)

	// chunk 1 carries the whole streamed transaction body in one shot.
	const txVersion = 1
	const tailLen = 32 + 32 + 160 // ownership commitment + range proof placeholder (v1)

	body := make([]byte, 0, 1+32+1+1+32+32+1+32+tailLen)
	body = append(body, txVersion)
	body = append(body, pubLE[:]...)
	body = append(body, memo.TxTransfer)
	body = append(body, 1) // transfer count

	body = append(body, memo.NativeAsset[:]...)
	body = append(body, dest[:]...)
	body = append(body, 0) // has_extra_data = false
	body = append(body, commit[:]...)
	body = append(body, make([]byte, tailLen)...)

	sig := mustHandle(d, insSignTx, 1, 0x00, body)
	fmt.Printf("signature: %s\n", hex.EncodeToString(sig))
}

func mustHandle(d *frame.Dispatcher, ins, p1, p2 byte, data []byte) []byte {
	resp, sw := d.Handle(frame.Frame{CLA: 0xe0, INS: ins, P1: p1, P2: p2, Data: data})
	if sw != apperr.Ok {
		log.Fatalf("ins=%#x p1=%#x p2=%#x failed: %v", ins, p1, p2, apperr.New(sw))
	}
	return resp
}
