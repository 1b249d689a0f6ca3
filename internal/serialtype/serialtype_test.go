package serialtype

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDecode_FixedTags(t *testing.T) {
	r := require.New(t)

	cases := []struct {
		v        uint64
		wantKind Kind
		wantSize int
	}{
		{0, Null, 0},
		{1, I8, 1},
		{2, I16, 2},
		{3, I24, 3},
		{4, I32, 4},
		{5, I48, 6},
		{6, I64, 8},
		{7, F64, 8},
		{8, Const0, 0},
		{9, Const1, 0},
	}

	for _, c := range cases {
		st := Decode(c.v)
		r.Equal(c.wantKind, st.Kind)
		size, err := st.Size()
		r.NoError(err)
		r.Equal(c.wantSize, size)
	}
}

func TestDecode_Reserved(t *testing.T) {
	r := require.New(t)

	for _, v := range []uint64{10, 11} {
		st := Decode(v)
		r.Equal(Reserved, st.Kind)
		_, err := st.Size()
		r.ErrorIs(err, ErrReserved)
	}
}

func TestDecode_BlobAndText(t *testing.T) {
	r := require.New(t)

	blob := Decode(16)
	r.Equal(Blob, blob.Kind)
	size, err := blob.Size()
	r.NoError(err)
	r.Equal(2, size)

	text := Decode(23)
	r.Equal(Text, text.Kind)
	size, err = text.Size()
	r.NoError(err)
	r.Equal(5, size)

	emptyBlob := Decode(12)
	size, err = emptyBlob.Size()
	r.NoError(err)
	r.Equal(0, size)

	emptyText := Decode(13)
	size, err = emptyText.Size()
	r.NoError(err)
	r.Equal(0, size)
}
