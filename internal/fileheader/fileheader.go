// Package fileheader decodes the 100-byte db3 file header.
package fileheader

import (
	"encoding/binary"
	"fmt"
	"unicode/utf16"
)

// Size is the fixed length of the file header.
const Size = 100

// Magic is the required first 16 bytes of every db3 file.
var Magic = [16]byte{'S', 'Q', 'L', 'i', 't', 'e', ' ', 'f', 'o', 'r', 'm', 'a', 't', ' ', '3', 0}

// TextEncoding identifies the declared string encoding of a database.
type TextEncoding uint32

const (
	UTF8    TextEncoding = 1
	UTF16LE TextEncoding = 2
	UTF16BE TextEncoding = 3
)

// Decode converts raw text bytes declared under this encoding into a Go
// string. This package records the declared encoding on every Text atom
// but otherwise leaves conversion to callers (spec design note); Decode is
// the optional on-demand helper for callers who want it.
func (e TextEncoding) Decode(raw []byte) (string, error) {
	switch e {
	case UTF8:
		return string(raw), nil
	case UTF16LE, UTF16BE:
		if len(raw)%2 != 0 {
			return "", fmt.Errorf("fileheader: odd-length UTF-16 byte slice (%d bytes)", len(raw))
		}
		units := make([]uint16, len(raw)/2)
		for i := range units {
			if e == UTF16LE {
				units[i] = binary.LittleEndian.Uint16(raw[i*2:])
			} else {
				units[i] = binary.BigEndian.Uint16(raw[i*2:])
			}
		}
		return string(utf16.Decode(units)), nil
	}
	return "", UnknownTextEncodingError{Value: uint32(e)}
}

func (e TextEncoding) String() string {
	switch e {
	case UTF8:
		return "UTF-8"
	case UTF16LE:
		return "UTF-16LE"
	case UTF16BE:
		return "UTF-16BE"
	}
	return fmt.Sprintf("TextEncoding(%d)", uint32(e))
}

// ErrBadMagic is returned when the first 16 bytes don't match the required
// literal.
var ErrBadMagic = fmt.Errorf("fileheader: bad magic")

// ErrTruncated is returned when fewer than Size bytes are supplied.
var ErrTruncated = fmt.Errorf("fileheader: input shorter than %d bytes", Size)

// UnknownTextEncodingError is returned when the encoding field isn't 1, 2, or 3.
type UnknownTextEncodingError struct {
	Value uint32
}

func (e UnknownTextEncodingError) Error() string {
	return fmt.Sprintf("fileheader: unknown text encoding %d", e.Value)
}

// PageSize is the raw on-disk page-size field, which uses 1 as a sentinel
// for 65536 because the real value doesn't fit in a uint16.
type PageSize uint16

// RealSize returns the page size in bytes.
func (p PageSize) RealSize() int {
	if p == 1 {
		return 65536
	}
	return int(p)
}

// Header is the decoded 100-byte db3 file header.
type Header struct {
	PageSize              PageSize
	WriteVersion          uint8
	ReadVersion           uint8
	ReservedSpace         uint8
	MaxPayloadFraction    uint8
	MinPayloadFraction    uint8
	LeafPayloadFraction   uint8
	FileChangeCounter     uint32
	SizeInPages           uint32
	FreelistTrunkPage     uint32
	FreelistPageCount     uint32
	SchemaCookie          uint32
	SchemaFormat          uint32
	DefaultPageCacheSize  uint32
	LargestRootBTreePage  uint32
	TextEncoding          TextEncoding
	UserVersion           uint32
	IncrementalVacuum     uint32
	ApplicationID         uint32
	VersionValidFor       uint32
	LibraryVersion        uint32
}

// Decode parses a 100-byte file header. It validates the magic literal and
// the declared text encoding; every other field is accepted as-is. Page
// size power-of-two-ness is left for callers to check if they care, not a
// decode-time rejection.
func Decode(buf []byte) (Header, error) {
	if len(buf) < Size {
		return Header{}, ErrTruncated
	}

	for i, m := range Magic {
		if buf[i] != m {
			return Header{}, ErrBadMagic
		}
	}

	encodingRaw := binary.BigEndian.Uint32(buf[56:60])
	switch encodingRaw {
	case 1, 2, 3:
	default:
		return Header{}, UnknownTextEncodingError{Value: encodingRaw}
	}

	return Header{
		PageSize:             PageSize(binary.BigEndian.Uint16(buf[16:18])),
		WriteVersion:         buf[18],
		ReadVersion:          buf[19],
		ReservedSpace:        buf[20],
		MaxPayloadFraction:   buf[21],
		MinPayloadFraction:   buf[22],
		LeafPayloadFraction:  buf[23],
		FileChangeCounter:    binary.BigEndian.Uint32(buf[24:28]),
		SizeInPages:          binary.BigEndian.Uint32(buf[28:32]),
		FreelistTrunkPage:    binary.BigEndian.Uint32(buf[32:36]),
		FreelistPageCount:    binary.BigEndian.Uint32(buf[36:40]),
		SchemaCookie:         binary.BigEndian.Uint32(buf[40:44]),
		SchemaFormat:         binary.BigEndian.Uint32(buf[44:48]),
		DefaultPageCacheSize: binary.BigEndian.Uint32(buf[48:52]),
		LargestRootBTreePage: binary.BigEndian.Uint32(buf[52:56]),
		TextEncoding:         TextEncoding(encodingRaw),
		UserVersion:          binary.BigEndian.Uint32(buf[60:64]),
		IncrementalVacuum:    binary.BigEndian.Uint32(buf[64:68]),
		ApplicationID:        binary.BigEndian.Uint32(buf[68:72]),
		// buf[72:92] is reserved, skipped per spec.
		VersionValidFor: binary.BigEndian.Uint32(buf[92:96]),
		LibraryVersion:  binary.BigEndian.Uint32(buf[96:100]),
	}, nil
}
