// Package page decodes a single db3 page: its header, slot (cell pointer)
// array, and the typed cells the slots resolve to.
package page

import (
	"encoding/binary"
	"fmt"

	"github.com/joeandaverde/db3image/internal/fileheader"
	"github.com/joeandaverde/db3image/internal/record"
	"github.com/joeandaverde/db3image/internal/varint"
)

// Type identifies one of the four b-tree page shapes by its leading byte.
type Type byte

const (
	InteriorIndex Type = 0x02
	InteriorTable Type = 0x05
	LeafIndex     Type = 0x0A
	LeafTable     Type = 0x0D
)

func (t Type) String() string {
	switch t {
	case InteriorIndex:
		return "InteriorIndex"
	case InteriorTable:
		return "InteriorTable"
	case LeafIndex:
		return "LeafIndex"
	case LeafTable:
		return "LeafTable"
	}
	return fmt.Sprintf("Type(0x%02x)", byte(t))
}

func (t Type) isInterior() bool {
	return t == InteriorIndex || t == InteriorTable
}

// UnknownTypeError is returned when the leading page-type byte isn't one
// of the four recognized tags.
type UnknownTypeError struct {
	Value byte
}

func (e UnknownTypeError) Error() string {
	return fmt.Sprintf("page: unknown page type 0x%02x", e.Value)
}

// ErrTruncated is returned when a page's header, slot array, or a cell
// runs past the bytes available.
var ErrTruncated = fmt.Errorf("page: truncated")

// CellOffset is a raw on-disk offset as stored in the header's
// cell-content-offset field, where 0 is a sentinel for 65536.
type CellOffset uint16

// RealOffset returns the offset this value represents.
func (c CellOffset) RealOffset() int {
	if c == 0 {
		return 65536
	}
	return int(c)
}

const (
	leafHeaderLen     = 8
	interiorHeaderLen = 12
)

// Header is the common leaf/interior page header. RightmostPointer is only
// meaningful when Type is one of the interior variants.
type Header struct {
	Type Type

	// FirstFreeblockOffset is 0 when the page has no freeblocks.
	FirstFreeblockOffset uint16
	CellCount            uint16
	CellContentOffset    CellOffset
	FragmentedFreeBytes  uint8

	// RightmostPointer is the page number of the rightmost child.
	// Valid only for interior pages.
	RightmostPointer uint32
}

func decodeHeader(data []byte) (Header, int, error) {
	if len(data) < 1 {
		return Header{}, 0, ErrTruncated
	}

	typ := Type(data[0])
	var headerLen int
	switch typ {
	case InteriorIndex, InteriorTable:
		headerLen = interiorHeaderLen
	case LeafIndex, LeafTable:
		headerLen = leafHeaderLen
	default:
		return Header{}, 0, UnknownTypeError{Value: data[0]}
	}

	if len(data) < headerLen {
		return Header{}, 0, ErrTruncated
	}

	h := Header{
		Type:                 typ,
		FirstFreeblockOffset: binary.BigEndian.Uint16(data[1:3]),
		CellCount:            binary.BigEndian.Uint16(data[3:5]),
		CellContentOffset:    CellOffset(binary.BigEndian.Uint16(data[5:7])),
		FragmentedFreeBytes:  data[7],
	}
	if typ.isInterior() {
		h.RightmostPointer = binary.BigEndian.Uint32(data[8:12])
	}

	return h, headerLen, nil
}

// Cell is implemented by the four cell variants. Downcast with a type
// switch on the concrete type, chosen by the containing Page's Header.Type.
type Cell interface {
	isCell()
}

// InteriorTableCell points at a child page covering integer keys up to
// and including IntegerKey.
type InteriorTableCell struct {
	LeftChildPageNo uint32
	IntegerKey      uint64
}

func (InteriorTableCell) isCell() {}

// LeafTableCell carries a table row: its rowid and decoded record.
// OverflowPage is non-nil when the payload exceeded the on-page limit;
// the overflow chain itself is never followed.
type LeafTableCell struct {
	PayloadSize  uint64
	RowID        uint64
	Record       record.Record
	OverflowPage *uint32
}

func (LeafTableCell) isCell() {}

// InteriorIndexCell carries an index entry plus the child page covering
// keys less than it.
type InteriorIndexCell struct {
	LeftChildPageNo uint32
	PayloadSize     uint64
	Record          record.Record
	OverflowPage    *uint32
}

func (InteriorIndexCell) isCell() {}

// LeafIndexCell carries an index entry.
type LeafIndexCell struct {
	PayloadSize  uint64
	Record       record.Record
	OverflowPage *uint32
}

func (LeafIndexCell) isCell() {}

// PayloadLimits captures the file-header fields needed to compute the
// on-page payload ceiling before a record spills into an overflow page.
type PayloadLimits struct {
	UsableSize         int
	MaxPayloadFraction uint8
	MinPayloadFraction uint8
}

// localLimit returns the largest payload, in bytes, that fits entirely on
// the page for a cell of the given kind, following the reference format's
// U/X/M/K overflow formulas parameterised by the file header's payload
// fractions (spec §9).
func (l PayloadLimits) localLimit(isIndex bool) (maxLocal, minLocal int) {
	u := l.UsableSize
	minLocal = (u-12)*int(l.MinPayloadFraction)/255 - 23
	if isIndex {
		maxLocal = (u-12)*int(l.MaxPayloadFraction)/255 - 23
	} else {
		maxLocal = u - 35
	}
	return maxLocal, minLocal
}

// localSize returns how many bytes of a payload of the given total size
// are stored on the page itself, and whether the remainder overflows.
func (l PayloadLimits) localSize(isIndex bool, payload int) (local int, overflow bool) {
	maxLocal, minLocal := l.localLimit(isIndex)
	if payload <= maxLocal {
		return payload, false
	}
	k := minLocal + (payload-minLocal)%(l.UsableSize-4)
	if k <= maxLocal {
		return k, true
	}
	return minLocal, true
}

// Page is a decoded b-tree page: its header and its cells in slot-array
// order.
type Page struct {
	Header Header
	Number int
	Cells  []Cell
}

// Decode parses the page starting at data[0], which must begin at the
// page-type byte (for page 1, that means data already has the 100-byte
// file header trimmed off). pageStartOffset is 100 for page 1 and 0
// otherwise: on-disk slot values for page 1 are measured from the
// absolute start of the file, so the cell offsets they encode must be
// adjusted back to this buffer's own coordinates.
func Decode(data []byte, number int, pageStartOffset int, limits PayloadLimits, enc fileheader.TextEncoding) (Page, error) {
	header, headerLen, err := decodeHeader(data)
	if err != nil {
		return Page{}, err
	}

	slotBytes := int(header.CellCount) * 2
	if len(data) < headerLen+slotBytes {
		return Page{}, ErrTruncated
	}
	slotArray := data[headerLen : headerLen+slotBytes]

	cells := make([]Cell, header.CellCount)
	for i := 0; i < int(header.CellCount); i++ {
		ptr := binary.BigEndian.Uint16(slotArray[i*2 : i*2+2])
		offset := int(ptr) - pageStartOffset
		if offset < 0 || offset >= len(data) {
			return Page{}, fmt.Errorf("page: cell %d offset %d out of bounds", i, offset)
		}

		cell, err := decodeCell(header.Type, data[offset:], limits, enc)
		if err != nil {
			return Page{}, fmt.Errorf("page: cell %d: %w", i, err)
		}
		cells[i] = cell
	}

	return Page{
		Header: header,
		Number: number,
		Cells:  cells,
	}, nil
}

func decodeCell(typ Type, data []byte, limits PayloadLimits, enc fileheader.TextEncoding) (Cell, error) {
	switch typ {
	case InteriorTable:
		return decodeInteriorTableCell(data)
	case LeafTable:
		return decodeLeafTableCell(data, limits, enc)
	case InteriorIndex:
		return decodeInteriorIndexCell(data, limits, enc)
	case LeafIndex:
		return decodeLeafIndexCell(data, limits, enc)
	}
	return nil, UnknownTypeError{Value: byte(typ)}
}

func decodeInteriorTableCell(data []byte) (Cell, error) {
	if len(data) < 4 {
		return nil, ErrTruncated
	}
	childPage := binary.BigEndian.Uint32(data[:4])
	key, _, err := varint.Decode(data[4:])
	if err != nil {
		return nil, fmt.Errorf("interior table cell: %w", err)
	}
	return InteriorTableCell{LeftChildPageNo: childPage, IntegerKey: key}, nil
}

func decodeLeafTableCell(data []byte, limits PayloadLimits, enc fileheader.TextEncoding) (Cell, error) {
	payloadSize, rest, err := varint.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("leaf table cell: payload size: %w", err)
	}
	rowID, rest, err := varint.Decode(rest)
	if err != nil {
		return nil, fmt.Errorf("leaf table cell: rowid: %w", err)
	}

	body, overflowPage, err := readPayload(rest, int(payloadSize), limits, false)
	if err != nil {
		return nil, err
	}

	rec, err := record.Decode(body, enc)
	if err != nil {
		return nil, fmt.Errorf("leaf table cell: %w", err)
	}

	return LeafTableCell{
		PayloadSize:  payloadSize,
		RowID:        rowID,
		Record:       rec,
		OverflowPage: overflowPage,
	}, nil
}

func decodeInteriorIndexCell(data []byte, limits PayloadLimits, enc fileheader.TextEncoding) (Cell, error) {
	if len(data) < 4 {
		return nil, ErrTruncated
	}
	childPage := binary.BigEndian.Uint32(data[:4])

	payloadSize, rest, err := varint.Decode(data[4:])
	if err != nil {
		return nil, fmt.Errorf("interior index cell: payload size: %w", err)
	}

	body, overflowPage, err := readPayload(rest, int(payloadSize), limits, true)
	if err != nil {
		return nil, err
	}

	rec, err := record.Decode(body, enc)
	if err != nil {
		return nil, fmt.Errorf("interior index cell: %w", err)
	}

	return InteriorIndexCell{
		LeftChildPageNo: childPage,
		PayloadSize:     payloadSize,
		Record:          rec,
		OverflowPage:    overflowPage,
	}, nil
}

func decodeLeafIndexCell(data []byte, limits PayloadLimits, enc fileheader.TextEncoding) (Cell, error) {
	payloadSize, rest, err := varint.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("leaf index cell: payload size: %w", err)
	}

	body, overflowPage, err := readPayload(rest, int(payloadSize), limits, true)
	if err != nil {
		return nil, err
	}

	rec, err := record.Decode(body, enc)
	if err != nil {
		return nil, fmt.Errorf("leaf index cell: %w", err)
	}

	return LeafIndexCell{
		PayloadSize:  payloadSize,
		Record:       rec,
		OverflowPage: overflowPage,
	}, nil
}

// readPayload slices the on-page portion of a cell's payload and, when the
// payload exceeds the on-page limit, reads (but does not chase) the
// trailing overflow page number.
func readPayload(data []byte, payloadSize int, limits PayloadLimits, isIndex bool) (body []byte, overflowPage *uint32, err error) {
	local, overflows := limits.localSize(isIndex, payloadSize)
	if local < 0 {
		local = 0
	}
	if local > len(data) {
		return nil, nil, ErrTruncated
	}

	if !overflows {
		return data[:local], nil, nil
	}

	if len(data) < local+4 {
		return nil, nil, ErrTruncated
	}
	page := binary.BigEndian.Uint32(data[local : local+4])
	return data[:local], &page, nil
}
