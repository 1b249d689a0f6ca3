// Package record decodes db3's self-describing record format: a varint
// header length, a run of serial-type tags filling the header, and a
// value area interpreted under those tags.
package record

import (
	"fmt"

	"github.com/joeandaverde/db3image/internal/fileheader"
	"github.com/joeandaverde/db3image/internal/numeric"
	"github.com/joeandaverde/db3image/internal/serialtype"
	"github.com/joeandaverde/db3image/internal/varint"
)

// AtomKind discriminates the decoded value stored in an Atom.
type AtomKind int

const (
	AtomI64 AtomKind = iota
	AtomF64
	AtomBlob
	AtomText
)

// Atom is a single decoded column value. A nil *Atom represents the SQL
// NULL produced by a Null serial type, or by a zero-length Blob/Text. A
// Reserved serial type produces no Atom; decoding it fails with
// ErrReservedColumn.
type Atom struct {
	Kind AtomKind

	Int   int64
	Float float64

	// Bytes holds the raw payload for Blob and Text. For Text it is the
	// bytes in the database's declared encoding (see Encoding); this
	// package does not transcode them.
	Bytes []byte

	// Encoding is meaningful only when Kind == AtomText.
	Encoding fileheader.TextEncoding
}

// Record is a decoded row: a parallel list of column serial types and
// their decoded values, plus the header length that was read.
type Record struct {
	HeaderSize  uint64
	ColumnTypes []serialtype.SerialType
	Columns     []*Atom
}

// ErrReservedColumn is returned when a column declares a Reserved serial
// type; Reserved is a legal value to observe, but fatal the moment a
// record asks to read or size it.
var ErrReservedColumn = fmt.Errorf("record: column has reserved serial type")

// Decode parses a record starting at the front of data. enc tags any Text
// columns with the database's declared encoding; it performs no
// transcoding itself.
func Decode(data []byte, enc fileheader.TextEncoding) (Record, error) {
	headerSize, _, err := varint.Decode(data)
	if err != nil {
		return Record{}, fmt.Errorf("record: header size: %w", err)
	}

	headerVarintLen, err := varint.Len(data)
	if err != nil {
		return Record{}, fmt.Errorf("record: header size: %w", err)
	}

	if headerSize < uint64(headerVarintLen) {
		return Record{}, fmt.Errorf("record: header size %d shorter than its own varint (%d bytes)", headerSize, headerVarintLen)
	}

	typeAreaLen := int(headerSize) - headerVarintLen
	if typeAreaLen > len(data)-headerVarintLen {
		return Record{}, fmt.Errorf("record: header size %d exceeds available data", headerSize)
	}

	typeArea := data[headerVarintLen : headerVarintLen+typeAreaLen]
	valueArea := data[headerVarintLen+typeAreaLen:]

	var columnTypes []serialtype.SerialType
	for len(typeArea) > 0 {
		v, rest, err := varint.Decode(typeArea)
		if err != nil {
			return Record{}, fmt.Errorf("record: serial type: %w", err)
		}
		columnTypes = append(columnTypes, serialtype.Decode(v))
		typeArea = rest
	}

	columns := make([]*Atom, len(columnTypes))
	for i, st := range columnTypes {
		atom, rest, err := decodeValue(st, valueArea, enc)
		if err != nil {
			return Record{}, fmt.Errorf("record: column %d: %w", i, err)
		}
		columns[i] = atom
		valueArea = rest
	}

	return Record{
		HeaderSize:  headerSize,
		ColumnTypes: columnTypes,
		Columns:     columns,
	}, nil
}

func decodeValue(st serialtype.SerialType, data []byte, enc fileheader.TextEncoding) (*Atom, []byte, error) {
	switch st.Kind {
	case serialtype.Null:
		return nil, data, nil
	case serialtype.Reserved:
		return nil, data, ErrReservedColumn
	case serialtype.Const0:
		return &Atom{Kind: AtomI64, Int: 0}, data, nil
	case serialtype.Const1:
		return &Atom{Kind: AtomI64, Int: 1}, data, nil
	case serialtype.I8:
		v, err := numeric.I8(data)
		if err != nil {
			return nil, nil, err
		}
		return &Atom{Kind: AtomI64, Int: int64(v)}, data[1:], nil
	case serialtype.I16:
		v, err := numeric.I16(data)
		if err != nil {
			return nil, nil, err
		}
		return &Atom{Kind: AtomI64, Int: int64(v)}, data[2:], nil
	case serialtype.I24:
		v, err := numeric.I24(data)
		if err != nil {
			return nil, nil, err
		}
		return &Atom{Kind: AtomI64, Int: int64(v)}, data[3:], nil
	case serialtype.I32:
		v, err := numeric.I32(data)
		if err != nil {
			return nil, nil, err
		}
		return &Atom{Kind: AtomI64, Int: int64(v)}, data[4:], nil
	case serialtype.I48:
		v, err := numeric.I48(data)
		if err != nil {
			return nil, nil, err
		}
		return &Atom{Kind: AtomI64, Int: v}, data[6:], nil
	case serialtype.I64:
		v, err := numeric.I64(data)
		if err != nil {
			return nil, nil, err
		}
		return &Atom{Kind: AtomI64, Int: v}, data[8:], nil
	case serialtype.F64:
		v, err := numeric.F64(data)
		if err != nil {
			return nil, nil, err
		}
		return &Atom{Kind: AtomF64, Float: v}, data[8:], nil
	case serialtype.Blob:
		size, err := st.Size()
		if err != nil {
			return nil, nil, err
		}
		if len(data) < size {
			return nil, nil, fmt.Errorf("record: blob needs %d bytes, have %d", size, len(data))
		}
		if size == 0 {
			return nil, data, nil
		}
		return &Atom{Kind: AtomBlob, Bytes: data[:size]}, data[size:], nil
	case serialtype.Text:
		size, err := st.Size()
		if err != nil {
			return nil, nil, err
		}
		if len(data) < size {
			return nil, nil, fmt.Errorf("record: text needs %d bytes, have %d", size, len(data))
		}
		if size == 0 {
			return nil, data, nil
		}
		return &Atom{Kind: AtomText, Bytes: data[:size], Encoding: enc}, data[size:], nil
	}
	return nil, nil, fmt.Errorf("record: unhandled serial type kind %v", st.Kind)
}
