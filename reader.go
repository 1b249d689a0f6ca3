package db3image

import (
	"errors"
	"fmt"
	"io"

	"github.com/joeandaverde/db3image/internal/fileheader"
	"github.com/joeandaverde/db3image/internal/page"
)

// Reader is the façade callers use to open a db3 image and fetch pages
// from it by number. It holds exactly one borrowed io.ReaderAt for its
// lifetime; it performs no caching and is safe for concurrent use by any
// number of goroutines, since every decode is a pure function of the
// bytes it's handed.
type Reader struct {
	source io.ReaderAt
	header FileHeader
}

// Open reads and validates the 100-byte file header from source and
// returns a Reader over it. source is borrowed, not owned: closing it (if
// it is closable) remains the caller's responsibility.
func Open(source io.ReaderAt) (*Reader, error) {
	const op = "open"

	buf := make([]byte, fileheader.Size)
	n, err := source.ReadAt(buf, 0)
	if err != nil && n < fileheader.Size {
		return nil, newError(op, shortReadKind(err), nil, err)
	}

	header, err := fileheader.Decode(buf)
	if err != nil {
		return nil, newError(op, classify(err), nil, err)
	}

	return &Reader{source: source, header: header}, nil
}

// FileHeader returns the file header parsed at Open.
func (r *Reader) FileHeader() FileHeader {
	return r.header
}

// GetPage decodes and returns the page numbered n, where page 0 is the
// file's first page (the one that aliases the 100-byte file header).
// n is bounds-checked against the file header's declared page count.
func (r *Reader) GetPage(n uint32) (Page, error) {
	op := "get_page"

	if uint64(n) >= uint64(r.header.SizeInPages) {
		return Page{}, newError(op, PageOutOfRange, pageNo(n),
			fmt.Errorf("page %d out of range: database has %d pages", n, r.header.SizeInPages))
	}

	pageSize := r.header.PageSize.RealSize()
	start := int64(n) * int64(pageSize)

	buf := make([]byte, pageSize)
	read, err := r.source.ReadAt(buf, start)
	if err != nil && read < pageSize {
		return Page{}, newError(op, shortReadKind(err), pageNo(n), err)
	}

	data := buf
	pageStartOffset := 0
	if n == 0 {
		data = buf[fileheader.Size:]
		pageStartOffset = fileheader.Size
	}

	limits := page.PayloadLimits{
		UsableSize:         pageSize - int(r.header.ReservedSpace),
		MaxPayloadFraction: r.header.MaxPayloadFraction,
		MinPayloadFraction: r.header.MinPayloadFraction,
	}

	p, err := page.Decode(data, int(n), pageStartOffset, limits, r.header.TextEncoding)
	if err != nil {
		return Page{}, newError(op, classify(err), pageNo(n), err)
	}

	return p, nil
}

func pageNo(n uint32) *int {
	v := int(n)
	return &v
}

// shortReadKind distinguishes an underlying source that simply ran out of
// bytes (Truncated) from one that failed for some other reason
// (SourceUnavailable).
func shortReadKind(err error) ErrorKind {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return Truncated
	}
	return SourceUnavailable
}
