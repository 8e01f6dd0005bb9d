package core

// streaming.go provides the reader chain used before CSV parsing.
//
// Files exported from spreadsheets often carry a byte order mark, arrive as
// UTF-16 or contain stray Latin-1 bytes. The chain fixes these on the fly
// without buffering the whole file:
//
//   - BOM handling: a UTF-8 BOM is dropped; a UTF-16 BOM switches decoding
//   - Ill-formed UTF-8 is replaced with U+FFFD
//   - CountingReader tracks bytes consumed for load logging
//
// LoadCSV applies the decoding chain itself; callers only add counting.

import (
	"io"
	"sync/atomic"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
)

// NewDecodingReader returns a reader that yields valid UTF-8 without a
// leading BOM. Input with no BOM is passed through as UTF-8.
func NewDecodingReader(r io.Reader) io.Reader {
	t := transform.Chain(
		unicode.BOMOverride(transform.Nop),
		runes.ReplaceIllFormed(),
	)
	return transform.NewReader(r, t)
}

// CountingReader counts the bytes read through it. It is safe to read the
// count from another goroutine while parsing is in progress.
type CountingReader struct {
	reader io.Reader
	n      atomic.Int64
}

// NewCountingReader wraps r.
func NewCountingReader(r io.Reader) *CountingReader {
	return &CountingReader{reader: r}
}

// Read implements io.Reader.
func (r *CountingReader) Read(p []byte) (int, error) {
	n, err := r.reader.Read(p)
	r.n.Add(int64(n))
	return n, err
}

// BytesRead returns the number of raw bytes consumed so far.
func (r *CountingReader) BytesRead() int64 {
	return r.n.Load()
}
