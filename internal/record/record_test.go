package record

import (
	"testing"

	"github.com/joeandaverde/db3image/internal/fileheader"
	"github.com/stretchr/testify/require"
)

func TestDecode_NullAndText(t *testing.T) {
	r := require.New(t)

	// header_size=3 (itself + 2 serial types), types [Null, Text(len=11)]
	text := "tjena tjena"
	header := []byte{3, 0, byte(11*2 + 13)}
	data := append(append([]byte{}, header...), []byte(text)...)

	rec, err := Decode(data, fileheader.UTF8)
	r.NoError(err)
	r.Len(rec.Columns, 2)
	r.Nil(rec.Columns[0])
	r.Equal(AtomText, rec.Columns[1].Kind)
	r.Equal(text, string(rec.Columns[1].Bytes))
}

func TestDecode_Const0AndConst1(t *testing.T) {
	r := require.New(t)

	header := []byte{3, 8, 9}
	rec, err := Decode(header, fileheader.UTF8)
	r.NoError(err)
	r.Equal(int64(0), rec.Columns[0].Int)
	r.Equal(int64(1), rec.Columns[1].Int)
}

func TestDecode_MultiByteHeaderVarintAccountedFor(t *testing.T) {
	r := require.New(t)

	// Force a two-byte header_size varint by padding the header with
	// enough serial types that header_size exceeds 127 (the cutoff for a
	// single-byte varint). 130 Null columns: header_size = 2 (its own
	// varint) + 130 = 132, which must be encoded as a 2-byte varint.
	numCols := 130
	typeArea := make([]byte, numCols) // all Null (serial type 0)
	headerSize := uint64(2 + numCols) // 2-byte varint + numCols type bytes

	// Encode headerSize as a 2-byte varint (we know it's < 128*128).
	hi := byte((headerSize>>7)&0x7f) | 0x80
	lo := byte(headerSize & 0x7f)

	data := append([]byte{hi, lo}, typeArea...)

	rec, err := Decode(data, fileheader.UTF8)
	r.NoError(err)
	r.Len(rec.Columns, numCols)
	for _, c := range rec.Columns {
		r.Nil(c)
	}
}

func TestDecode_Reserved(t *testing.T) {
	r := require.New(t)

	header := []byte{2, 10}
	_, err := Decode(header, fileheader.UTF8)
	r.ErrorIs(err, ErrReservedColumn)
}

func TestDecode_I48Column(t *testing.T) {
	r := require.New(t)

	header := []byte{2, 5}
	value := []byte{0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF}
	data := append(append([]byte{}, header...), value...)

	rec, err := Decode(data, fileheader.UTF8)
	r.NoError(err)
	r.Equal(int64(-1), rec.Columns[0].Int)
}
