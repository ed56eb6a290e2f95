package cart

import (
	"encoding/binary"
	"errors"
	"image/color"
	"testing"

	"github.com/FabianRolfMatthiasNoll/ndsfs/internal/raw"
)

// withBanner appends a version 1 banner to rom and points the header at it.
func withBanner(rom []byte, english string) []byte {
	off := len(rom)
	b := make([]byte, bannerMinSize)
	binary.LittleEndian.PutUint16(b[0:], 1)

	// first tile: row 0 is pixels 1,2,3,4,5,6,7,8
	b[bannerOffIcon+0] = 0x21
	b[bannerOffIcon+1] = 0x43
	b[bannerOffIcon+2] = 0x65
	b[bannerOffIcon+3] = 0x87
	// second tile, first byte: pixel (8,0) = 0xF
	b[bannerOffIcon+32] = 0x0F

	binary.LittleEndian.PutUint16(b[bannerOffPalette+2:], 0x001F) // red
	binary.LittleEndian.PutUint16(b[bannerOffPalette+4:], 0x7C00) // blue

	for i, r := range english {
		binary.LittleEndian.PutUint16(b[bannerOffTitles+int(English)*bannerTitleSize+i*2:], uint16(r))
	}
	binary.LittleEndian.PutUint16(b[2:], CRC16(b[bannerOffIcon:bannerMinSize]))

	rom = append(rom, b...)
	binary.LittleEndian.PutUint32(rom[offBanner:], uint32(off))
	return rom
}

func TestReadBanner(t *testing.T) {
	rom := withBanner(buildROM("ICON", 0), "Hello\nWorld")
	h, _ := ParseHeader(rom)

	b, err := h.ReadBanner(rom)
	if err != nil {
		t.Fatalf("ReadBanner error: %v", err)
	}
	if b.Version() != 1 || len(b.Bytes()) != bannerMinSize {
		t.Fatalf("version %d size %#x", b.Version(), len(b.Bytes()))
	}
	if !b.ChecksumOK() {
		t.Fatalf("ChecksumOK = false, want true")
	}

	if title, ok := b.Title(English); !ok || title != "Hello\nWorld" {
		t.Fatalf("English title got %q, %v", title, ok)
	}
	if title, ok := b.Title(Japanese); !ok || title != "" {
		t.Fatalf("Japanese title got %q, %v", title, ok)
	}
	if _, ok := b.Title(Chinese); ok {
		t.Fatalf("Chinese title present in a version 1 banner")
	}
}

func TestBannerIcon(t *testing.T) {
	rom := withBanner(buildROM("ICON", 0), "")
	h, _ := ParseHeader(rom)
	b, _ := h.ReadBanner(rom)

	img := b.Icon()
	if img.Bounds().Dx() != IconSize || img.Bounds().Dy() != IconSize {
		t.Fatalf("icon bounds %v", img.Bounds())
	}
	for x := 0; x < 8; x++ {
		if got := img.ColorIndexAt(x, 0); got != uint8(x+1) {
			t.Fatalf("pixel (%d,0) got %d want %d", x, got, x+1)
		}
	}
	if got := img.ColorIndexAt(8, 0); got != 0xF {
		t.Fatalf("pixel (8,0) got %d want 15", got)
	}
	if got := img.ColorIndexAt(0, 1); got != 0 {
		t.Fatalf("pixel (0,1) got %d want 0", got)
	}

	pal := b.Palette()
	if pal[0] != (color.NRGBA{}) {
		t.Fatalf("palette[0] got %v want transparent", pal[0])
	}
	if pal[1] != (color.NRGBA{R: 0xFF, A: 0xFF}) {
		t.Fatalf("palette[1] got %v want red", pal[1])
	}
	if pal[2] != (color.NRGBA{B: 0xFF, A: 0xFF}) {
		t.Fatalf("palette[2] got %v want blue", pal[2])
	}
}

func TestReadBanner_Missing(t *testing.T) {
	rom := buildROM("NONE", 0)
	h, _ := ParseHeader(rom)
	if _, err := h.ReadBanner(rom); !errors.Is(err, ErrNoBanner) {
		t.Fatalf("got %v want ErrNoBanner", err)
	}

	binary.LittleEndian.PutUint32(rom[offBanner:], 0x3F0)
	if _, err := h.ReadBanner(rom); !errors.Is(err, raw.ErrShortBuffer) {
		t.Fatalf("truncated banner: got %v want ErrShortBuffer", err)
	}
}

func TestLanguageString(t *testing.T) {
	if English.String() != "English" || Korean.String() != "Korean" {
		t.Fatalf("names got %s %s", English, Korean)
	}
	if Language(9).String() != "Language(9)" {
		t.Fatalf("out of range got %s", Language(9))
	}
	if len(Languages()) != 8 {
		t.Fatalf("Languages got %d want 8", len(Languages()))
	}
}
