package raw

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"strings"
	"unicode/utf8"
)

// EmbeddedString is text stored inside a binary structure. Data never
// includes padding.
type EmbeddedString interface {
	fmt.Stringer
	Len() int
	Capacity() int
	Data() []byte
	AsString() (string, bool)
	AsStringLossy() string
}

// FixedString is a null-padded string of fixed capacity. The logical length
// is the index of the first zero byte, or the whole capacity if there is
// none. A FixedString taken from an image aliases the image bytes.
type FixedString []byte

// NewFixedString copies b into a zeroed buffer of the given capacity.
func NewFixedString(capacity int, b []byte) (FixedString, error) {
	if len(b) > capacity {
		return nil, fmt.Errorf("%d bytes into fixed string of %d: %w", len(b), capacity, ErrCapacityExceeded)
	}
	s := make(FixedString, capacity)
	copy(s, b)
	return s, nil
}

func (s FixedString) Len() int {
	if i := bytes.IndexByte(s, 0); i >= 0 {
		return i
	}
	return len(s)
}

func (s FixedString) Capacity() int            { return len(s) }
func (s FixedString) Data() []byte             { return s[:s.Len()] }
func (s FixedString) AsString() (string, bool) { return asString(s.Data()) }
func (s FixedString) AsStringLossy() string    { return lossy(s.Data()) }
func (s FixedString) String() string           { return display(s.Data()) }

// DynamicString has an explicit length and may contain zero bytes.
type DynamicString struct {
	buf    []byte
	length int
}

// NewDynamicString copies b into a zeroed buffer of the given capacity and
// records its exact length.
func NewDynamicString(capacity int, b []byte) (DynamicString, error) {
	if len(b) > capacity {
		return DynamicString{}, fmt.Errorf("%d bytes into dynamic string of %d: %w", len(b), capacity, ErrCapacityExceeded)
	}
	buf := make([]byte, capacity)
	copy(buf, b)
	return DynamicString{buf: buf, length: len(b)}, nil
}

func (s DynamicString) Len() int                 { return s.length }
func (s DynamicString) Capacity() int            { return len(s.buf) }
func (s DynamicString) Data() []byte             { return s.buf[:s.length] }
func (s DynamicString) AsString() (string, bool) { return asString(s.Data()) }
func (s DynamicString) AsStringLossy() string    { return lossy(s.Data()) }
func (s DynamicString) String() string           { return display(s.Data()) }

func asString(b []byte) (string, bool) {
	if !utf8.Valid(b) {
		return "", false
	}
	return string(b), true
}

// lossy replaces each maximal invalid subpart with one U+FFFD: a lead byte
// followed by the continuation bytes it accepts, cut short, is one error.
func lossy(b []byte) string {
	if utf8.Valid(b) {
		return string(b)
	}
	var sb strings.Builder
	sb.Grow(len(b) + 8)
	for len(b) > 0 {
		r, size := utf8.DecodeRune(b)
		if r == utf8.RuneError && size == 1 {
			size = invalidPrefix(b)
		}
		sb.WriteRune(r)
		b = b[size:]
	}
	return sb.String()
}

// invalidPrefix is the length of the maximal subpart of an ill-formed
// sequence at the front of b.
func invalidPrefix(b []byte) int {
	lo, hi := byte(0x80), byte(0xBF)
	var need int
	switch c := b[0]; {
	case c >= 0xC2 && c <= 0xDF:
		need = 1
	case c == 0xE0:
		need, lo = 2, 0xA0
	case c == 0xED:
		need, hi = 2, 0x9F
	case c >= 0xE1 && c <= 0xEF:
		need = 2
	case c == 0xF0:
		need, lo = 3, 0x90
	case c >= 0xF1 && c <= 0xF3:
		need = 3
	case c == 0xF4:
		need, hi = 3, 0x8F
	default:
		return 1
	}
	n := 1
	for n <= need && n < len(b) && b[n] >= lo && b[n] <= hi {
		n++
		lo, hi = 0x80, 0xBF
	}
	return n
}

// display prints valid UTF-8 as is and anything else as lowercase hex. Some
// header fields look like ASCII but are not guaranteed to be.
func display(b []byte) string {
	if s, ok := asString(b); ok {
		return s
	}
	return hex.EncodeToString(b)
}
