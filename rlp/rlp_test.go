package rlp

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeKnownScalars(t *testing.T) {
	assert.Equal(t, []byte{0x80}, Encode(AsUint(0)))
	assert.Equal(t, []byte{0x7f}, Encode(AsUint(127)))
	assert.Equal(t, []byte{0x81, 0x80}, Encode(AsUint(128)))
}

func TestEncodeEmptyString(t *testing.T) {
	assert.Equal(t, []byte{0x80}, Encode(Bytes(nil)))
}

func TestEncodeShortString(t *testing.T) {
	// "dog" -> 0x83 'd' 'o' 'g'
	got := Encode(Bytes([]byte("dog")))
	assert.Equal(t, []byte{0x83, 'd', 'o', 'g'}, got)
}

func TestEncodeLongString(t *testing.T) {
	s := make([]byte, 56)
	for i := range s {
		s[i] = 'a'
	}
	got := Encode(Bytes(s))
	require.True(t, len(got) > 56)
	assert.Equal(t, byte(0xb7+1), got[0])
	assert.Equal(t, byte(56), got[1])
}

func TestEncodeEmptyList(t *testing.T) {
	assert.Equal(t, []byte{0xc0}, Encode(List()))
}

func TestEncodeShortList(t *testing.T) {
	// ["cat", "dog"] -> 0xc8 0x83 c a t 0x83 d o g
	got := Encode(List(Bytes([]byte("cat")), Bytes([]byte("dog"))))
	want := []byte{0xc8, 0x83, 'c', 'a', 't', 0x83, 'd', 'o', 'g'}
	assert.Equal(t, want, got)
}

func TestRoundTripVectors(t *testing.T) {
	vectors := []Item{
		Bytes(nil),
		AsUint(0),
		AsUint(127),
		AsUint(128),
		AsUint(0xdeadbeef),
		Bytes([]byte("dog")),
		List(),
		List(Bytes([]byte("cat")), Bytes([]byte("dog"))),
		List(AsUint(0), AsUint(1), List(AsUint(2), Bytes([]byte{0xff}))),
	}
	for _, v := range vectors {
		enc := Encode(v)
		dec, err := Decode(enc)
		require.NoError(t, err)
		assert.Equal(t, enc, Encode(dec))
	}
}

func TestDeterministicDoubleEncode(t *testing.T) {
	item := List(
		AsUint(0),
		AsBigUint(big.NewInt(20_000_000_000)),
		AsUint(21000),
		Bytes(mustHex("3535353535353535353535353535353535353535")),
		AsBigUint(new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil)),
		Bytes(nil),
		AsUint(1),
		AsUint(0),
		AsUint(0),
	)
	a := Encode(item)
	b := Encode(item)
	assert.Equal(t, a, b)
	// 9-field list, each individually short: still within the short-list
	// header range for this vector (payload <= 55 bytes is NOT guaranteed in
	// general, but this specific legacy-signing-preimage vector is).
	assert.Equal(t, byte(0xc0)|byte(len(a)-1), a[0])
}

func TestNegativeBigUintRejected(t *testing.T) {
	_, err := EncodeBigUintChecked(big.NewInt(-1))
	assert.ErrorIs(t, err, ErrInvalidValue)
}

func TestDecodeMalformedTruncated(t *testing.T) {
	_, err := Decode([]byte{0x83, 'd', 'o'}) // claims 3 bytes, only has 2
	assert.ErrorIs(t, err, ErrMalformed)
}

func TestDecodeTrailingBytesRejected(t *testing.T) {
	_, err := Decode([]byte{0x80, 0x80})
	assert.ErrorIs(t, err, ErrMalformed)
}

func mustHex(s string) []byte {
	b := make([]byte, len(s)/2)
	for i := range b {
		hi := unhexDigit(s[2*i])
		lo := unhexDigit(s[2*i+1])
		b[i] = hi<<4 | lo
	}
	return b
}

func unhexDigit(c byte) byte {
	switch {
	case c >= '0' && c <= '9':
		return c - '0'
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10
	}
	return 0
}
