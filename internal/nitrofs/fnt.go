package nitrofs

import (
	"fmt"
	"iter"
	"slices"
	"strings"

	"github.com/FabianRolfMatthiasNoll/ndsfs/internal/raw"
)

const (
	// DirEntrySize is the on-disk size of a main table entry.
	DirEntrySize = 8

	// FirstDirectoryID is the ID of the root directory. Walk IDs at or above
	// it are directories, IDs below it are files.
	FirstDirectoryID = 0xF000

	// MaxNameLength is the longest name a sub-table record can hold.
	MaxNameLength = 0x7F

	directoryBit = 0x80
)

// IsDirectoryID reports whether a walk ID names a directory.
func IsDirectoryID(id uint16) bool { return id >= FirstDirectoryID }

// DirEntry is one directory's record in the main table.
type DirEntry struct {
	SubTableOffset raw.U32LE // relative to the start of the name table
	FirstFileID    raw.U16LE
	// TotalOrParent is the number of directories for the root, and the
	// parent directory ID for every other entry.
	TotalOrParent raw.U16LE
}

// SubTableEntry is a FileEntry or a DirectoryEntry.
type SubTableEntry interface {
	EntryName() raw.DynamicString
	isSubTableEntry()
}

type FileEntry struct {
	Name raw.DynamicString
}

type DirectoryEntry struct {
	Name raw.DynamicString
	ID   raw.U16LE
}

func (e FileEntry) EntryName() raw.DynamicString      { return e.Name }
func (e DirectoryEntry) EntryName() raw.DynamicString { return e.Name }
func (FileEntry) isSubTableEntry()                    {}
func (DirectoryEntry) isSubTableEntry()               {}

// parseSubTableEntry decodes one record from the front of b and returns the
// remaining bytes. A zero marker ends the sub-table and is reported as
// done; a record that runs past b is ErrMalformedRecord.
func parseSubTableEntry(b []byte) (entry SubTableEntry, rest []byte, done bool, err error) {
	if len(b) == 0 {
		return nil, nil, true, nil
	}
	marker := b[0]
	length := int(marker &^ directoryBit)
	if length == 0 {
		return nil, nil, true, nil
	}
	b = b[1:]
	if len(b) < length {
		return nil, nil, false, fmt.Errorf("name of %d bytes with %d left: %w", length, len(b), raw.ErrMalformedRecord)
	}
	name, err := raw.NewDynamicString(MaxNameLength, b[:length])
	if err != nil {
		return nil, nil, false, err
	}
	b = b[length:]

	if marker&directoryBit == 0 {
		return FileEntry{Name: name}, b, false, nil
	}
	if len(b) < 2 {
		return nil, nil, false, fmt.Errorf("directory %q without id: %w", name, raw.ErrMalformedRecord)
	}
	return DirectoryEntry{Name: name, ID: raw.U16At(b, 0)}, b[2:], false, nil
}

// FileNameTable is the parsed directory tree. MainTable[i] and SubTables[i]
// describe directory index i, whose ID is FirstDirectoryID+i.
type FileNameTable struct {
	MainTable []DirEntry
	SubTables [][]SubTableEntry
}

// ParseFNT reads the name table starting at base. A sub-table with a
// malformed record keeps the records before it; the rest of the table is
// still parsed.
func ParseFNT(rom []byte, base uint32) (*FileNameTable, error) {
	root, err := raw.Slice(rom, uint64(base), DirEntrySize)
	if err != nil {
		return nil, fmt.Errorf("file name table root: %w", err)
	}
	total := int(raw.U16At(root, 6).Get())

	mainRaw, err := raw.Slice(rom, uint64(base), uint64(total)*DirEntrySize)
	if err != nil {
		return nil, fmt.Errorf("file name table with %d directories: %w", total, err)
	}

	t := &FileNameTable{
		MainTable: make([]DirEntry, total),
		SubTables: make([][]SubTableEntry, total),
	}
	for i := range t.MainTable {
		off := i * DirEntrySize
		t.MainTable[i] = DirEntry{
			SubTableOffset: raw.U32At(mainRaw, off),
			FirstFileID:    raw.U16At(mainRaw, off+4),
			TotalOrParent:  raw.U16At(mainRaw, off+6),
		}
	}

	for i, dir := range t.MainTable {
		start := uint64(base) + uint64(dir.SubTableOffset.Get())
		if start > uint64(len(rom)) {
			return nil, fmt.Errorf("sub-table of directory %#x at 0x%x: %w", FirstDirectoryID+i, start, raw.ErrShortBuffer)
		}
		b := rom[start:]

		var entries []SubTableEntry
		for {
			entry, rest, done, err := parseSubTableEntry(b)
			if done || err != nil {
				break
			}
			entries = append(entries, entry)
			b = rest
		}
		t.SubTables[i] = slices.Clip(entries)
	}

	return t, nil
}

// Path is a sequence of name components from the root.
type Path []raw.DynamicString

// String joins the lossy components with '/'.
func (p Path) String() string {
	parts := make([]string, len(p))
	for i, name := range p {
		parts[i] = name.AsStringLossy()
	}
	return strings.Join(parts, "/")
}

// Name is the last component.
func (p Path) Name() string {
	if len(p) == 0 {
		return ""
	}
	return p[len(p)-1].AsStringLossy()
}

// All walks the tree depth first in on-disk order, yielding every file and
// directory with its ID. Files are numbered from their directory's
// FirstFileID; directories yield their own ID and are then descended into.
// Each yielded Path is a fresh slice the caller may keep.
//
// A directory whose ID is out of range, or which has already been descended
// into during this walk, is yielded but not descended into again. Every
// sub-table is therefore walked at most once, whatever the links.
func (t *FileNameTable) All() iter.Seq2[Path, uint16] {
	return func(yield func(Path, uint16) bool) {
		if len(t.MainTable) == 0 {
			return
		}
		descended := make([]bool, len(t.MainTable))
		t.walk(yield, 0, nil, descended)
	}
}

func (t *FileNameTable) walk(yield func(Path, uint16) bool, dir int, path Path, descended []bool) bool {
	descended[dir] = true

	fileID := t.MainTable[dir].FirstFileID.Get()
	for _, entry := range t.SubTables[dir] {
		switch e := entry.(type) {
		case FileEntry:
			if !yield(append(slices.Clip(path), e.Name), fileID) {
				return false
			}
			fileID++

		case DirectoryEntry:
			id := e.ID.Get()
			child := append(slices.Clip(path), e.Name)
			if !yield(slices.Clone(child), id) {
				return false
			}
			if !IsDirectoryID(id) {
				continue
			}
			index := int(id - FirstDirectoryID)
			if index >= len(t.MainTable) || descended[index] {
				continue
			}
			if !t.walk(yield, index, child, descended) {
				return false
			}
		}
	}
	return true
}

// Walk calls fn for every entry yielded by All.
func (t *FileNameTable) Walk(fn func(path Path, id uint16)) {
	for path, id := range t.All() {
		fn(path, id)
	}
}

// Directory returns the sub-table of the directory with the given ID.
func (t *FileNameTable) Directory(id uint16) ([]SubTableEntry, bool) {
	if !IsDirectoryID(id) {
		return nil, false
	}
	index := int(id - FirstDirectoryID)
	if index >= len(t.SubTables) {
		return nil, false
	}
	return t.SubTables[index], true
}
