// Package report prints human-readable summaries of an image.
package report

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/FabianRolfMatthiasNoll/ndsfs/internal/cart"
	"github.com/FabianRolfMatthiasNoll/ndsfs/internal/nitrofs"
)

type styles struct {
	label lipgloss.Style
	value lipgloss.Style
	good  lipgloss.Style
	bad   lipgloss.Style
	dir   lipgloss.Style
}

// newStyles binds the styles to w, so colour is only emitted when w is a
// terminal.
func newStyles(w io.Writer) styles {
	r := lipgloss.NewRenderer(w)
	return styles{
		label: r.NewStyle().Bold(true).Foreground(lipgloss.ANSIColor(6)),
		value: r.NewStyle().Foreground(lipgloss.ANSIColor(7)),
		good:  r.NewStyle().Bold(true).Foreground(lipgloss.ANSIColor(2)),
		bad:   r.NewStyle().Bold(true).Foreground(lipgloss.ANSIColor(7)).Background(lipgloss.ANSIColor(1)),
		dir:   r.NewStyle().Bold(true).Foreground(lipgloss.ANSIColor(4)),
	}
}

const labelWidth = 14

type block struct {
	s  styles
	sb strings.Builder
}

func (b *block) line(label, format string, args ...any) {
	b.sb.WriteString(b.s.label.Render(fmt.Sprintf("%-*s", labelWidth, label)))
	b.sb.WriteString(b.s.value.Render(fmt.Sprintf(format, args...)))
	b.sb.WriteByte('\n')
}

func (b *block) check(ok bool) string {
	if ok {
		return b.s.good.Render("ok")
	}
	return b.s.bad.Render("BAD")
}

func size(n uint32) string { return humanize.IBytes(uint64(n)) }

// Header writes the summary block for an image.
func Header(w io.Writer, h *cart.Header, rom []byte) error {
	b := &block{s: newStyles(w)}

	b.line("Title", "%s", h.Title())
	b.line("Game code", "%s", h.GameCode())
	b.line("Maker code", "%s", h.MakerCode())
	b.line("Unit", "%s (0x%02x)", h.UnitName(), h.UnitCode())
	b.line("Region", "%s (0x%02x)", h.RegionName(), h.Region())
	b.line("ROM version", "%d", h.ROMVersion())
	b.line("Capacity", "%s (raw %d)", humanize.IBytes(h.DeviceCapacity()), h.DeviceCapacityRaw())
	b.line("Image size", "%s (used %s)", humanize.IBytes(uint64(len(rom))), size(h.TotalUsedROMSize().Get()))

	for _, c := range []struct {
		name string
		info cart.CodeInfo
	}{{"ARM9", h.ARM9()}, {"ARM7", h.ARM7()}} {
		b.line(c.name, "offset 0x%08x entry 0x%08x ram 0x%08x size %s",
			c.info.ROMOffset.Get(), c.info.EntryAddress.Get(), c.info.RAMAddress.Get(), size(c.info.Size.Get()))
	}
	for _, t := range []struct {
		name  string
		table cart.OffsetAndSize
	}{
		{"FNT", h.FNT()},
		{"FAT", h.FAT()},
		{"ARM9 overlay", h.ARM9Overlay()},
		{"ARM7 overlay", h.ARM7Overlay()},
	} {
		b.line(t.name, "offset 0x%08x size %s", t.table.Offset.Get(), size(t.table.Size.Get()))
	}

	banner, err := h.ReadBanner(rom)
	switch {
	case errors.Is(err, cart.ErrNoBanner):
		b.line("Banner", "none")
	case err != nil:
		b.line("Banner", "offset 0x%08x unreadable: %v", h.BannerOffset().Get(), err)
	default:
		title, _ := banner.Title(cart.English)
		b.line("Banner", "offset 0x%08x version %d crc %s", h.BannerOffset().Get(), banner.Version(), b.check(banner.ChecksumOK()))
		if title != "" {
			b.line("Banner title", "%s", strings.ReplaceAll(title, "\n", " / "))
		}
	}

	b.line("Header CRC", "0x%04x %s", h.HeaderChecksum().Get(), b.check(h.HeaderChecksumOK()))
	b.line("Logo CRC", "0x%04x %s", h.NintendoLogoChecksum().Get(), b.check(h.LogoChecksumOK()))

	_, err = io.WriteString(w, b.sb.String())
	return err
}

// Tree writes one line per entry of the name table, in walk order.
// Directories end with '/'.
func Tree(w io.Writer, files *nitrofs.Files) error {
	s := newStyles(w)
	var sb strings.Builder
	for path, id := range files.FNT.All() {
		name := "/" + path.String()
		if nitrofs.IsDirectoryID(id) {
			sb.WriteString(s.dir.Render(name + "/"))
		} else {
			sb.WriteString(name)
		}
		sb.WriteByte('\n')
	}
	_, err := io.WriteString(w, sb.String())
	return err
}
