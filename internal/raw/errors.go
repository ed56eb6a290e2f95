package raw

import (
	"errors"
	"fmt"
)

// Decoding failures. Views and parsers wrap these with the offending offset,
// so callers should match with errors.Is.
var (
	// ErrShortBuffer means a structure or byte range extends past the image.
	ErrShortBuffer = errors.New("insufficient bytes")
	// ErrCapacityExceeded means content does not fit an embedded string.
	ErrCapacityExceeded = errors.New("capacity exceeded")
	// ErrMalformedRecord means a variable-length record declares more bytes
	// than are available.
	ErrMalformedRecord = errors.New("malformed record")
)

// Slice returns b[off:off+n] or ErrShortBuffer. Arithmetic is done in 64
// bits so offsets read from an image cannot wrap.
func Slice(b []byte, off, n uint64) ([]byte, error) {
	end := off + n
	if end < off || end > uint64(len(b)) {
		return nil, fmt.Errorf("range 0x%x..0x%x of 0x%x-byte buffer: %w", off, end, len(b), ErrShortBuffer)
	}
	return b[off:end:end], nil
}

// Range returns b[start:end] or ErrShortBuffer.
func Range(b []byte, start, end uint64) ([]byte, error) {
	if start > end {
		return nil, fmt.Errorf("range 0x%x..0x%x is reversed: %w", start, end, ErrShortBuffer)
	}
	return Slice(b, start, end-start)
}
