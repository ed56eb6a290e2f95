package nitrofs

import (
	"errors"
	"fmt"
	"iter"
	"strings"
)

// ErrNotFound is returned by Open for a path that is not a file.
var ErrNotFound = errors.New("file not found")

// Files combines the name and allocation tables of one image. It borrows
// ROM, and every slice it returns aliases ROM.
type Files struct {
	FNT *FileNameTable
	FAT FAT
	ROM []byte
}

func NewFiles(fnt *FileNameTable, fat FAT, rom []byte) *Files {
	return &Files{FNT: fnt, FAT: fat, ROM: rom}
}

// File returns the contents of a file ID.
func (f *Files) File(id uint16) ([]byte, error) {
	return f.FAT.File(int(id), f.ROM)
}

// FileData is one yield of Each: the file bytes, or why they could not be
// sliced out of the image.
type FileData struct {
	ID   uint16
	Data []byte
	Err  error
}

// Each yields every file (not directory) in walk order.
func (f *Files) Each() iter.Seq2[Path, FileData] {
	return func(yield func(Path, FileData) bool) {
		for path, id := range f.FNT.All() {
			if IsDirectoryID(id) {
				continue
			}
			data, err := f.File(id)
			if !yield(path, FileData{ID: id, Data: data, Err: err}) {
				return
			}
		}
	}
}

// Lookup resolves a '/'-separated path to its walk ID. Leading and trailing
// separators are ignored; the empty path is the root directory.
func (f *Files) Lookup(path string) (uint16, bool) {
	want := strings.Trim(path, "/")
	if want == "" {
		return FirstDirectoryID, len(f.FNT.MainTable) > 0
	}
	for p, id := range f.FNT.All() {
		if p.String() == want {
			return id, true
		}
	}
	return 0, false
}

// Open returns the contents of the file at path.
func (f *Files) Open(path string) ([]byte, error) {
	id, ok := f.Lookup(path)
	if !ok || IsDirectoryID(id) {
		return nil, fmt.Errorf("%s: %w", path, ErrNotFound)
	}
	return f.File(id)
}
