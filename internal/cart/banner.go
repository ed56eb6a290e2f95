package cart

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"strings"

	"golang.org/x/text/encoding/unicode"

	"github.com/FabianRolfMatthiasNoll/ndsfs/internal/raw"
)

// ErrNoBanner is returned by ReadBanner when the header has no banner offset.
var ErrNoBanner = errors.New("no icon/title banner")

const (
	bannerMinSize = 0x840

	bannerOffIcon    = 0x020
	bannerOffPalette = 0x220
	bannerOffTitles  = 0x240
	bannerTitleSize  = 0x100

	// IconSize is the width and height of the banner icon in pixels.
	IconSize = 32
)

// Language selects one of the banner titles.
type Language int

const (
	Japanese Language = iota
	English
	French
	German
	Italian
	Spanish
	Chinese
	Korean
)

var languageNames = [...]string{"Japanese", "English", "French", "German", "Italian", "Spanish", "Chinese", "Korean"}

func (l Language) String() string {
	if l < 0 || int(l) >= len(languageNames) {
		return fmt.Sprintf("Language(%d)", int(l))
	}
	return languageNames[l]
}

// Languages lists every language in banner order.
func Languages() []Language {
	return []Language{Japanese, English, French, German, Italian, Spanish, Chinese, Korean}
}

// Banner is a view over the icon/title block.
type Banner struct {
	raw []byte
}

// ReadBanner overlays the banner at the header's banner offset.
func (h *Header) ReadBanner(rom []byte) (*Banner, error) {
	off := h.BannerOffset().Get()
	if off == 0 {
		return nil, ErrNoBanner
	}
	if uint64(off)+2 > uint64(len(rom)) {
		return nil, fmt.Errorf("banner at 0x%x: %w", off, raw.ErrShortBuffer)
	}
	size := bannerSize(raw.U16At(rom, int(off)).Get())
	b, err := raw.Slice(rom, uint64(off), uint64(size))
	if err != nil {
		return nil, fmt.Errorf("banner: %w", err)
	}
	return &Banner{raw: b}, nil
}

// bannerSize is the number of bytes read for a banner version; only the
// fields this package decodes are included.
func bannerSize(version uint16) int {
	switch {
	case version >= 3:
		return 0xA40
	case version == 2:
		return 0x940
	default:
		return bannerMinSize
	}
}

// Bytes returns the banner bytes, aliasing the image.
func (b *Banner) Bytes() []byte { return b.raw }

func (b *Banner) Version() uint16 { return raw.U16At(b.raw, 0).Get() }

// Checksum is the stored CRC of 0x020-0x83F.
func (b *Banner) Checksum() uint16 { return raw.U16At(b.raw, 2).Get() }

func (b *Banner) ChecksumOK() bool {
	return CRC16(b.raw[bannerOffIcon:bannerMinSize]) == b.Checksum()
}

// Palette returns the 16 icon colours. Index 0 is transparent.
func (b *Banner) Palette() color.Palette {
	p := make(color.Palette, 16)
	for i := range p {
		c := raw.U16At(b.raw, bannerOffPalette+i*2).Get()
		p[i] = color.NRGBA{
			R: expand5(c & 0x1F),
			G: expand5((c >> 5) & 0x1F),
			B: expand5((c >> 10) & 0x1F),
			A: 0xFF,
		}
	}
	p[0] = color.NRGBA{}
	return p
}

func expand5(v uint16) uint8 { return uint8(v<<3 | v>>2) }

// Icon decodes the 32x32 icon: 4x4 tiles of 8x8 pixels, 4 bits per pixel,
// low nibble first.
func (b *Banner) Icon() *image.Paletted {
	img := image.NewPaletted(image.Rect(0, 0, IconSize, IconSize), b.Palette())
	bitmap := b.raw[bannerOffIcon:bannerOffPalette]
	for tile := 0; tile < 16; tile++ {
		tx, ty := tile%4*8, tile/4*8
		for i := 0; i < 32; i++ {
			v := bitmap[tile*32+i]
			x, y := tx+i%4*2, ty+i/4
			img.SetColorIndex(x, y, v&0x0F)
			img.SetColorIndex(x+1, y, v>>4)
		}
	}
	return img
}

// Title returns the title in a language. Chinese needs banner version 2 and
// Korean version 3.
func (b *Banner) Title(lang Language) (string, bool) {
	if lang < 0 || int(lang) >= len(languageNames) {
		return "", false
	}
	off := bannerOffTitles + int(lang)*bannerTitleSize
	if off+bannerTitleSize > len(b.raw) {
		return "", false
	}
	text, err := unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM).NewDecoder().Bytes(b.raw[off : off+bannerTitleSize])
	if err != nil {
		return "", false
	}
	s := string(text)
	if i := strings.IndexByte(s, 0); i >= 0 {
		s = s[:i]
	}
	return s, true
}
