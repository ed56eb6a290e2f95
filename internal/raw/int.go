package raw

import (
	"encoding/binary"
	"strconv"
)

// Order is a byte-order strategy. Implementations are empty structs so the
// order is fixed by the type parameter, not by a runtime value.
type Order interface {
	Uint16([]byte) uint16
	Uint32([]byte) uint32
	Uint64([]byte) uint64
	PutUint16([]byte, uint16)
	PutUint32([]byte, uint32)
	PutUint64([]byte, uint64)
}

type LittleEndian struct{}

func (LittleEndian) Uint16(b []byte) uint16       { return binary.LittleEndian.Uint16(b) }
func (LittleEndian) Uint32(b []byte) uint32       { return binary.LittleEndian.Uint32(b) }
func (LittleEndian) Uint64(b []byte) uint64       { return binary.LittleEndian.Uint64(b) }
func (LittleEndian) PutUint16(b []byte, v uint16) { binary.LittleEndian.PutUint16(b, v) }
func (LittleEndian) PutUint32(b []byte, v uint32) { binary.LittleEndian.PutUint32(b, v) }
func (LittleEndian) PutUint64(b []byte, v uint64) { binary.LittleEndian.PutUint64(b, v) }

type BigEndian struct{}

func (BigEndian) Uint16(b []byte) uint16       { return binary.BigEndian.Uint16(b) }
func (BigEndian) Uint32(b []byte) uint32       { return binary.BigEndian.Uint32(b) }
func (BigEndian) Uint64(b []byte) uint64       { return binary.BigEndian.Uint64(b) }
func (BigEndian) PutUint16(b []byte, v uint16) { binary.BigEndian.PutUint16(b, v) }
func (BigEndian) PutUint32(b []byte, v uint32) { binary.BigEndian.PutUint32(b, v) }
func (BigEndian) PutUint64(b []byte, v uint64) { binary.BigEndian.PutUint64(b, v) }

// U16 is a 16-bit unsigned integer stored as raw bytes in order O. Being a
// byte array it has no alignment requirement and can sit anywhere in an
// image.
type U16[O Order] [2]byte

func NewU16[O Order](v uint16) U16[O] {
	var r U16[O]
	r.Set(v)
	return r
}

func (r U16[O]) Get() uint16 {
	var o O
	return o.Uint16(r[:])
}
func (r *U16[O]) Set(v uint16) {
	var o O
	o.PutUint16(r[:], v)
}
func (r U16[O]) String() string { return strconv.FormatUint(uint64(r.Get()), 10) }

// U32 is a 32-bit unsigned integer stored as raw bytes in order O.
type U32[O Order] [4]byte

func NewU32[O Order](v uint32) U32[O] {
	var r U32[O]
	r.Set(v)
	return r
}

func (r U32[O]) Get() uint32 {
	var o O
	return o.Uint32(r[:])
}
func (r *U32[O]) Set(v uint32) {
	var o O
	o.PutUint32(r[:], v)
}
func (r U32[O]) String() string { return strconv.FormatUint(uint64(r.Get()), 10) }

// U64 is a 64-bit unsigned integer stored as raw bytes in order O.
type U64[O Order] [8]byte

func NewU64[O Order](v uint64) U64[O] {
	var r U64[O]
	r.Set(v)
	return r
}

func (r U64[O]) Get() uint64 {
	var o O
	return o.Uint64(r[:])
}
func (r *U64[O]) Set(v uint64) {
	var o O
	o.PutUint64(r[:], v)
}
func (r U64[O]) String() string { return strconv.FormatUint(r.Get(), 10) }

// Signed variants share the unsigned encoding (two's complement).

type I16[O Order] [2]byte

func NewI16[O Order](v int16) I16[O] {
	var r I16[O]
	r.Set(v)
	return r
}

func (r I16[O]) Get() int16 {
	var o O
	return int16(o.Uint16(r[:]))
}
func (r *I16[O]) Set(v int16) {
	var o O
	o.PutUint16(r[:], uint16(v))
}
func (r I16[O]) String() string { return strconv.FormatInt(int64(r.Get()), 10) }

type I32[O Order] [4]byte

func NewI32[O Order](v int32) I32[O] {
	var r I32[O]
	r.Set(v)
	return r
}

func (r I32[O]) Get() int32 {
	var o O
	return int32(o.Uint32(r[:]))
}
func (r *I32[O]) Set(v int32) {
	var o O
	o.PutUint32(r[:], uint32(v))
}
func (r I32[O]) String() string { return strconv.FormatInt(int64(r.Get()), 10) }

type I64[O Order] [8]byte

func NewI64[O Order](v int64) I64[O] {
	var r I64[O]
	r.Set(v)
	return r
}

func (r I64[O]) Get() int64 {
	var o O
	return int64(o.Uint64(r[:]))
}
func (r *I64[O]) Set(v int64) {
	var o O
	o.PutUint64(r[:], uint64(v))
}
func (r I64[O]) String() string { return strconv.FormatInt(r.Get(), 10) }

// Little-endian shorthands, the byte order of every DS structure.
type (
	U16LE = U16[LittleEndian]
	U32LE = U32[LittleEndian]
)

// U16At reads a little-endian U16 at off. The caller has already checked
// that b holds off+2 bytes.
func U16At(b []byte, off int) U16LE { return U16LE(b[off : off+2]) }

// U32At reads a little-endian U32 at off. The caller has already checked
// that b holds off+4 bytes.
func U32At(b []byte, off int) U32LE { return U32LE(b[off : off+4]) }
