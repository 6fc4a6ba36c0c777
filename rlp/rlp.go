// Package rlp implements Ethereum's Recursive Length Prefix encoding, the
// canonical serialization used on the transaction-signing hot path (see the
// tx package's SigningPreimage and Envelope methods) and by
// access-list/blob-hash encoding. It is hand-rolled per
// the wire rules rather than delegated to go-ethereum/rlp, since the codec
// itself is the component under specification, not an implementation detail.
package rlp

import (
	"errors"
	"math/big"
)

// ErrInvalidValue is returned when attempting to encode a value RLP cannot
// represent, such as a negative integer.
var ErrInvalidValue = errors.New("rlp: cannot encode negative integer")

// Item is either a byte string (String) or a list of nested Items (List).
// Exactly one of the two is meaningful at a time, and the constructor
// decides which: List marks the item as a list, even with no children,
// while Bytes (or any Item literal, since the flag is unexported) yields a
// byte string whatever List holds. IsList reports the kind.
type Item struct {
	String []byte
	List    []Item
	isList  bool
}

// Bytes constructs a byte-string Item.
func Bytes(b []byte) Item { return Item{String: b} }

// List constructs a list Item from its children.
func List(items ...Item) Item { return Item{List: items, isList: true} }

// IsList reports whether the item is a list (as opposed to a byte string).
func (it Item) IsList() bool { return it.isList }

// Encode serializes an RLP item following the canonical rules:
//   - a single byte < 0x80 encodes as itself
//   - a byte string of length 0..55 encodes as 0x80+len, then the bytes
//   - a longer byte string encodes as 0xb7+len(be(len)), then be(len), then bytes
//   - a list's payload is the concatenation of its encoded items, framed the
//     same way with 0xc0/0xf7 base markers
func Encode(item Item) []byte {
	if item.isList {
		return encodeList(item.List)
	}
	return encodeString(item.String)
}

func encodeString(b []byte) []byte {
	if len(b) == 1 && b[0] < 0x80 {
		return []byte{b[0]}
	}
	return framePayload(b, 0x80, 0xb7)
}

func encodeList(items []Item) []byte {
	var payload []byte
	for _, it := range items {
		payload = append(payload, Encode(it)...)
	}
	return framePayload(payload, 0xc0, 0xf7)
}

// framePayload prepends the short/long length header for a payload, given
// the short-form base (used when len <= 55) and the long-form base (used
// otherwise, followed by the big-endian length of the length).
func framePayload(payload []byte, shortBase, longBase byte) []byte {
	if len(payload) <= 55 {
		out := make([]byte, 0, 1+len(payload))
		out = append(out, shortBase+byte(len(payload)))
		return append(out, payload...)
	}
	lenBytes := beTrimmed(uint64(len(payload)))
	out := make([]byte, 0, 1+len(lenBytes)+len(payload))
	out = append(out, longBase+byte(len(lenBytes)))
	out = append(out, lenBytes...)
	return append(out, payload...)
}

// beTrimmed returns the minimal big-endian representation of n (no leading
// zero byte; n == 0 yields an empty slice, matching the integer-elision rule).
func beTrimmed(n uint64) []byte {
	if n == 0 {
		return nil
	}
	var buf [8]byte
	for i := 7; i >= 0; i-- {
		buf[i] = byte(n)
		n >>= 8
	}
	i := 0
	for i < 8 && buf[i] == 0 {
		i++
	}
	return buf[i:]
}

// EncodeUint encodes a non-negative integer using RLP's byte-string elision
// rule: leading zero bytes are stripped and 0 encodes as the empty string
// (0x80).
func EncodeUint(n uint64) []byte {
	return encodeString(beTrimmed(n))
}

// EncodeLongUnsigned is an alias for EncodeUint kept for readers matching
// spec terminology (large unsigned fields such as gas values, nonces).
func EncodeLongUnsigned(n uint64) []byte {
	return EncodeUint(n)
}

// EncodeBigUint encodes a non-negative big.Int the same way: leading zero
// bytes stripped, zero as the empty string. A negative value is a caller
// error (RLP has no signed-integer representation) and returns ErrInvalidValue
// via EncodeBigUintChecked; this variant panics, matching the teacher's style
// of treating programmer-level invariant violations as non-recoverable.
func EncodeBigUint(v *big.Int) []byte {
	b, err := EncodeBigUintChecked(v)
	if err != nil {
		panic(err)
	}
	return b
}

// EncodeBigUintChecked is the error-returning counterpart of EncodeBigUint,
// used anywhere a caller-supplied value must not be allowed to panic the
// network path (tx building, access-list encoding).
func EncodeBigUintChecked(v *big.Int) ([]byte, error) {
	if v == nil {
		return encodeString(nil), nil
	}
	if v.Sign() < 0 {
		return nil, ErrInvalidValue
	}
	if v.Sign() == 0 {
		return encodeString(nil), nil
	}
	return encodeString(v.Bytes()), nil
}

// AsBytes is a helper item constructor for raw addresses/hashes, trimming
// nothing: the caller controls exact byte content.
func AsBytes(b []byte) Item { return Bytes(b) }

// AsUint builds the Item for a RLP-elided unsigned integer.
func AsUint(n uint64) Item { return Bytes(beTrimmed(n)) }

// AsBigUint builds the Item for a RLP-elided big.Int. Negative values panic;
// callers on the signing hot path should validate with EncodeBigUintChecked
// first, or rely on tx.Builder's upstream validation.
func AsBigUint(v *big.Int) Item {
	if v == nil || v.Sign() == 0 {
		return Bytes(nil)
	}
	if v.Sign() < 0 {
		panic(ErrInvalidValue)
	}
	return Bytes(v.Bytes())
}
