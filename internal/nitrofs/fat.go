package nitrofs

import (
	"fmt"
	"iter"

	"github.com/FabianRolfMatthiasNoll/ndsfs/internal/raw"
)

// FATEntrySize is the on-disk size of one allocation table entry.
const FATEntrySize = 8

// FATEntry is the byte range [Start, End) of one file in the image.
type FATEntry struct {
	Start raw.U32LE
	End   raw.U32LE
}

// Size is End-Start, or 0 for a reversed entry.
func (e FATEntry) Size() uint32 {
	if e.End.Get() < e.Start.Get() {
		return 0
	}
	return e.End.Get() - e.Start.Get()
}

// File returns the entry's bytes, aliasing rom.
func (e FATEntry) File(rom []byte) ([]byte, error) {
	return raw.Range(rom, uint64(e.Start.Get()), uint64(e.End.Get()))
}

// FAT is a view over the allocation table inside an image. The position of
// an entry is its file ID.
type FAT struct {
	raw []byte
}

// NewFAT overlays the table at rom[offset:offset+size]. The table must hold
// whole entries.
func NewFAT(rom []byte, offset, size uint32) (FAT, error) {
	b, err := raw.Slice(rom, uint64(offset), uint64(size))
	if err != nil {
		return FAT{}, fmt.Errorf("file allocation table: %w", err)
	}
	if len(b)%FATEntrySize != 0 {
		return FAT{}, fmt.Errorf("file allocation table size 0x%x is not a multiple of %d: %w", size, FATEntrySize, raw.ErrShortBuffer)
	}
	return FAT{raw: b}, nil
}

func (f FAT) Len() int { return len(f.raw) / FATEntrySize }

// Entry returns the entry for a file ID.
func (f FAT) Entry(id int) (FATEntry, bool) {
	if id < 0 || id >= f.Len() {
		return FATEntry{}, false
	}
	off := id * FATEntrySize
	return FATEntry{Start: raw.U32At(f.raw, off), End: raw.U32At(f.raw, off+4)}, true
}

// File returns the bytes of a file ID.
func (f FAT) File(id int, rom []byte) ([]byte, error) {
	e, ok := f.Entry(id)
	if !ok {
		return nil, fmt.Errorf("file id %d not in allocation table of %d entries: %w", id, f.Len(), raw.ErrShortBuffer)
	}
	b, err := e.File(rom)
	if err != nil {
		return nil, fmt.Errorf("file id %d: %w", id, err)
	}
	return b, nil
}

// All yields every entry with its file ID.
func (f FAT) All() iter.Seq2[int, FATEntry] {
	return func(yield func(int, FATEntry) bool) {
		for id := 0; id < f.Len(); id++ {
			e, _ := f.Entry(id)
			if !yield(id, e) {
				return
			}
		}
	}
}
