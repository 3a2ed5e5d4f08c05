// Package apperr defines the status-word error taxonomy shared by every
// layer of the device core. Every failure in the module collapses to one
// of these codes; none carries a payload, mirroring the firmware's
// #[repr(u16)] AppSW enum (see original_source/src/main.rs).
package apperr

// Code is a status word, wire-compatible with the firmware's AppSW values.
type Code uint16

const (
	Ok                       Code = 0x9000
	Deny                     Code = 0x6985
	WrongP1P2                Code = 0x6A86
	InsNotSupported          Code = 0x6D00
	ClaNotSupported          Code = 0x6E00
	TxDisplayFail            Code = 0xB001
	AddrDisplayFail          Code = 0xB002
	TxWrongLength            Code = 0xB004
	TxParsingFail            Code = 0xB005
	TxHashFail               Code = 0xB006
	TxSignFail               Code = 0xB008
	KeyDeriveFail            Code = 0xB009
	VersionParsingFail       Code = 0xB00A
	WrongApduLength          Code = 0x6983
	MemoRequired             Code = 0xB00C
	MemoInvalid              Code = 0xB00D
	InvalidCommitment        Code = 0xC000
	BlindersRequired         Code = 0xC001
	InvalidCompressedPoint   Code = 0xC002
	CryptoError              Code = 0x6F00
	AddressError             Code = 0x6F01
	ParamError               Code = 0x6F02
)

var names = map[Code]string{
	Ok:                     "success",
	Deny:                   "denied by user",
	WrongP1P2:              "wrong P1/P2",
	InsNotSupported:        "instruction not supported",
	ClaNotSupported:        "class not supported",
	TxDisplayFail:          "transaction display failed",
	AddrDisplayFail:        "address display failed",
	TxWrongLength:          "transaction wrong length",
	TxParsingFail:          "transaction parsing failed",
	TxHashFail:             "transaction hashing failed",
	TxSignFail:             "transaction signing failed",
	KeyDeriveFail:          "key derivation failed",
	VersionParsingFail:     "version parsing failed",
	WrongApduLength:        "wrong APDU length",
	MemoRequired:           "approved memo required before signing",
	MemoInvalid:            "invalid memo",
	InvalidCommitment:      "invalid commitment",
	BlindersRequired:       "blinders required",
	InvalidCompressedPoint: "invalid compressed ristretto point",
	CryptoError:            "crypto error",
	AddressError:           "address error",
	ParamError:             "parameter error",
}

// Error adapts a Code to the error interface without attaching any payload.
type Error struct {
	Code Code
}

func (e Error) Error() string {
	if s, ok := names[e.Code]; ok {
		return s
	}
	return "unknown status word"
}

// New wraps a Code as an error.
func New(c Code) error {
	return Error{Code: c}
}

// Is reports whether err's Code matches c, satisfying errors.Is.
func (e Error) Is(target error) bool {
	t, ok := target.(Error)
	return ok && t.Code == e.Code
}

// CodeOf extracts the status word from err, defaulting to CryptoError for
// any error that did not originate in this module.
func CodeOf(err error) Code {
	if err == nil {
		return Ok
	}
	if e, ok := err.(Error); ok {
		return e.Code
	}
	return CryptoError
}
