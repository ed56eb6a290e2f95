// Package romio loads cartridge images from disk. Images may be stored
// as is or compressed with zstd or LZ4 (frame format); the compression is
// detected from the leading magic bytes, not the file name.
package romio

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// MaxImageSize bounds the decoded size of an image. The largest DSi
// cartridges are 4 GiB chips but no dumped title is close to that.
const MaxImageSize = 1 << 30

// ErrTooLarge is returned when an image decodes past MaxImageSize.
var ErrTooLarge = errors.New("image exceeds maximum size")

// Format is the container an image was stored in.
type Format uint8

const (
	FormatRaw Format = iota
	FormatZstd
	FormatLZ4
)

func (f Format) String() string {
	switch f {
	case FormatRaw:
		return "raw"
	case FormatZstd:
		return "zstd"
	case FormatLZ4:
		return "lz4"
	default:
		return fmt.Sprintf("unknown(%d)", f)
	}
}

var (
	zstdMagic = []byte{0x28, 0xB5, 0x2F, 0xFD}
	lz4Magic  = []byte{0x04, 0x22, 0x4D, 0x18}
)

// Detect identifies the container from the first bytes of a file.
func Detect(head []byte) Format {
	switch {
	case bytes.HasPrefix(head, zstdMagic):
		return FormatZstd
	case bytes.HasPrefix(head, lz4Magic):
		return FormatLZ4
	default:
		return FormatRaw
	}
}

// A streaming zstd.Decoder cannot be shared, so Decode makes one per call.
var zstdOptions = []zstd.DOption{
	zstd.WithDecoderConcurrency(1),
	zstd.WithDecoderMaxMemory(MaxImageSize),
}

// Decode reads an image from r, decompressing it if needed.
func Decode(r io.Reader) ([]byte, Format, error) {
	br := bufio.NewReader(r)
	head, err := br.Peek(4)
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, FormatRaw, fmt.Errorf("reading image: %w", err)
	}
	format := Detect(head)

	var src io.Reader = br
	switch format {
	case FormatZstd:
		dec, err := zstd.NewReader(br, zstdOptions...)
		if err != nil {
			return nil, format, fmt.Errorf("zstd: %w", err)
		}
		defer dec.Close()
		src = dec
	case FormatLZ4:
		src = lz4.NewReader(br)
	}

	data, err := io.ReadAll(io.LimitReader(src, MaxImageSize+1))
	if err != nil {
		return nil, format, fmt.Errorf("decoding %s image: %w", format, err)
	}
	if len(data) > MaxImageSize {
		return nil, format, fmt.Errorf("%s image: %w", format, ErrTooLarge)
	}
	return data, format, nil
}

// Load reads the image at path. logger may be nil.
func Load(path string, logger *slog.Logger) ([]byte, error) {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	data, format, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	logger.Debug("image loaded",
		"path", path,
		"format", format.String(),
		"bytes", len(data),
	)
	return data, nil
}
