package hexutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	cases := [][]byte{
		{},
		{0x00},
		{0xde, 0xad, 0xbe, 0xef},
		make([]byte, 64),
	}
	for _, b := range cases {
		enc := Encode(b, true)
		dec, err := Decode(enc)
		require.NoError(t, err)
		assert.Equal(t, b, dec)
	}
}

func TestEncodeNoPrefix(t *testing.T) {
	assert.Equal(t, "", Encode(nil, false))
	assert.Equal(t, "0x", Encode(nil, true))
	assert.Equal(t, "deadbeef", Encode([]byte{0xde, 0xad, 0xbe, 0xef}, false))
}

func TestDecodeCaseInsensitive(t *testing.T) {
	lower, err := Decode("0xdeadbeef")
	require.NoError(t, err)
	upper, err := Decode("0XDEADBEEF")
	require.NoError(t, err)
	assert.Equal(t, lower, upper)

	noPrefix, err := Decode("deadbeef")
	require.NoError(t, err)
	assert.Equal(t, lower, noPrefix)
}

func TestDecodeEmpty(t *testing.T) {
	b, err := Decode("0x")
	require.NoError(t, err)
	assert.Empty(t, b)

	b, err = Decode("")
	require.NoError(t, err)
	assert.Empty(t, b)
}

func TestDecodeOddLength(t *testing.T) {
	_, err := Decode("0xabc")
	assert.ErrorIs(t, err, ErrInvalidLength)
}

func TestDecodeInvalidChar(t *testing.T) {
	_, err := Decode("0xzz")
	assert.ErrorIs(t, err, ErrInvalidChar)
}

func TestEncodeIntoBufferTooSmall(t *testing.T) {
	dst := make([]byte, 2)
	_, err := EncodeInto([]byte{0xde, 0xad}, dst, 0, false)
	assert.ErrorIs(t, err, ErrBufferTooSmall)
}

func TestDecodeIntoOffset(t *testing.T) {
	dst := make([]byte, 6)
	n, err := DecodeInto("00deadbeef00", 2, 8, dst, 1)
	require.NoError(t, err)
	assert.Equal(t, 4, n)
	assert.Equal(t, []byte{0x00, 0xde, 0xad, 0xbe, 0xef, 0x00}, dst)
}

func TestHas0xPrefix(t *testing.T) {
	assert.True(t, Has0xPrefix("0xab"))
	assert.True(t, Has0xPrefix("0XAB"))
	assert.False(t, Has0xPrefix("ab"))
	assert.False(t, Has0xPrefix("0"))
}
