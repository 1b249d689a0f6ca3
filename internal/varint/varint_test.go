package varint

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDecode_SingleByte(t *testing.T) {
	r := require.New(t)

	v, rest, err := Decode([]byte{0x0F, 0xAA})
	r.NoError(err)
	r.Equal(uint64(15), v)
	r.Equal([]byte{0xAA}, rest)
}

func TestDecode_FiveByte(t *testing.T) {
	r := require.New(t)

	// 0b1111_0001110_0000111_0001101_0001011
	want := uint64(0b1111)<<28 | uint64(0b0001110)<<21 | uint64(0b0000111)<<14 | uint64(0b0001101)<<7 | uint64(0b0001011)
	v, rest, err := Decode([]byte{0x8F, 0x8E, 0x87, 0x8D, 0x0B})
	r.NoError(err)
	r.Equal(want, v)
	r.Empty(rest)
}

func TestDecode_NinthByteTakesFullEightBits(t *testing.T) {
	r := require.New(t)

	// Eight continuation bytes each contributing 0x7f, followed by a
	// ninth byte contributing all 8 bits.
	in := []byte{0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0x00}
	v, rest, err := Decode(in)
	r.NoError(err)
	r.Equal([]byte{0x00}, rest)

	var want uint64
	for i := 0; i < 8; i++ {
		want = (want << 7) | 0x7f
	}
	want = (want << 8) | 0xFF
	r.Equal(want, v)
}

func TestDecode_Malformed(t *testing.T) {
	r := require.New(t)

	// Eight bytes, all with the continuation bit set, and no ninth byte.
	_, _, err := Decode([]byte{0x80, 0x80, 0x80, 0x80, 0x80, 0x80, 0x80, 0x80})
	r.ErrorIs(err, ErrMalformed)
}

func TestDecode_RoundTripsContinuationRule(t *testing.T) {
	r := require.New(t)

	for i := uint64(0); i < 2048; i++ {
		encoded := encode(i)
		v, rest, err := Decode(encoded)
		r.NoError(err)
		r.Equal(i, v)
		r.Empty(rest)
	}
}

func TestLen(t *testing.T) {
	r := require.New(t)

	n, err := Len([]byte{0x8F, 0x8E, 0x87, 0x8D, 0x0B, 0xFF})
	r.NoError(err)
	r.Equal(5, n)
}

// encode is the inverse of Decode, used only to build round-trip fixtures
// for the tests above.
func encode(v uint64) []byte {
	var groups []byte
	groups = append(groups, byte(v&0x7f))
	v >>= 7
	for v > 0 {
		groups = append(groups, byte(v&0x7f))
		v >>= 7
	}

	out := make([]byte, len(groups))
	for i, g := range groups {
		b := g
		if i != 0 {
			b |= 0x80
		}
		out[len(groups)-1-i] = b
	}
	return out
}
