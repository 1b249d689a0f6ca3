package fileheader

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/require"
)

func validHeader() []byte {
	buf := make([]byte, Size)
	copy(buf, Magic[:])
	binary.BigEndian.PutUint16(buf[16:18], 4096)
	buf[18] = 1
	buf[19] = 1
	buf[21] = 64
	buf[22] = 32
	buf[23] = 32
	binary.BigEndian.PutUint32(buf[28:32], 2)
	binary.BigEndian.PutUint32(buf[56:60], 1)
	return buf
}

func TestDecode_Valid(t *testing.T) {
	r := require.New(t)

	h, err := Decode(validHeader())
	r.NoError(err)
	r.Equal(4096, h.PageSize.RealSize())
	r.Equal(uint32(2), h.SizeInPages)
	r.Equal(UTF8, h.TextEncoding)
}

func TestDecode_PageSizeSentinel(t *testing.T) {
	r := require.New(t)

	buf := validHeader()
	binary.BigEndian.PutUint16(buf[16:18], 1)

	h, err := Decode(buf)
	r.NoError(err)
	r.Equal(65536, h.PageSize.RealSize())
}

func TestDecode_BadMagic(t *testing.T) {
	r := require.New(t)

	buf := validHeader()
	buf[0] = 'X'

	_, err := Decode(buf)
	r.ErrorIs(err, ErrBadMagic)
}

func TestDecode_UnknownTextEncoding(t *testing.T) {
	r := require.New(t)

	buf := validHeader()
	binary.BigEndian.PutUint32(buf[56:60], 4)

	_, err := Decode(buf)
	var want UnknownTextEncodingError
	r.ErrorAs(err, &want)
	r.Equal(uint32(4), want.Value)
}

func TestDecode_Truncated(t *testing.T) {
	r := require.New(t)

	_, err := Decode(make([]byte, 6))
	r.ErrorIs(err, ErrTruncated)
}

func TestTextEncoding_DecodeUTF16(t *testing.T) {
	r := require.New(t)

	raw := []byte{0x00, 'h', 0x00, 'i'}
	s, err := UTF16BE.Decode(raw)
	r.NoError(err)
	r.Equal("hi", s)

	raw = []byte{'h', 0x00, 'i', 0x00}
	s, err = UTF16LE.Decode(raw)
	r.NoError(err)
	r.Equal("hi", s)
}
