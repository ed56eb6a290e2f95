package cart

import (
	"fmt"

	"github.com/FabianRolfMatthiasNoll/ndsfs/internal/nitrofs"
	"github.com/FabianRolfMatthiasNoll/ndsfs/internal/raw"
)

// HeaderSize is the size of the cartridge header at the start of the image.
const HeaderSize = 0x200

const (
	offTitle        = 0x000
	offGameCode     = 0x00C
	offMakerCode    = 0x010
	offUnitCode     = 0x012
	offSeedSelect   = 0x013
	offCapacity     = 0x014
	offRegion       = 0x01D
	offROMVersion   = 0x01E
	offAutostart    = 0x01F
	offARM9         = 0x020
	offARM7         = 0x030
	offFNT          = 0x040
	offFAT          = 0x048
	offARM9Overlay  = 0x050
	offARM7Overlay  = 0x058
	offPortNormal   = 0x060
	offPortKey1     = 0x064
	offBanner       = 0x068
	offSecureCRC    = 0x06C
	offSecureDelay  = 0x06E
	offARM9AutoLoad = 0x070
	offARM7AutoLoad = 0x074
	offSecureOff    = 0x078
	offUsedROMSize  = 0x080
	offHeaderSize   = 0x084
	offNANDEndROM   = 0x094
	offNANDStartRW  = 0x096
	offFastBoot     = 0x0B0
	offLogo         = 0x0C0
	offLogoCRC      = 0x15C
	offHeaderCRC    = 0x15E
	offDebug        = 0x160
	offDebugRAM     = 0x168

	logoSize = 0x9C
)

// CodeInfo describes the ARM9 or ARM7 boot binary.
type CodeInfo struct {
	ROMOffset    raw.U32LE
	EntryAddress raw.U32LE
	RAMAddress   raw.U32LE
	Size         raw.U32LE
}

// Bytes returns the binary as stored in rom. It is not decoded.
func (c CodeInfo) Bytes(rom []byte) ([]byte, error) {
	return raw.Slice(rom, uint64(c.ROMOffset.Get()), uint64(c.Size.Get()))
}

// OffsetAndSize locates a table inside the image.
type OffsetAndSize struct {
	Offset raw.U32LE
	Size   raw.U32LE
}

func (o OffsetAndSize) Bytes(rom []byte) ([]byte, error) {
	return raw.Slice(rom, uint64(o.Offset.Get()), uint64(o.Size.Get()))
}

// Header is a view over the first HeaderSize bytes of an image. It keeps a
// reference to those bytes and copies nothing.
type Header struct {
	raw []byte
}

// ParseHeader overlays the header on rom. It only fails if rom is too short.
func ParseHeader(rom []byte) (*Header, error) {
	if len(rom) < HeaderSize {
		return nil, fmt.Errorf("ROM of %d bytes too small to contain header: %w", len(rom), raw.ErrShortBuffer)
	}
	return &Header{raw: rom[:HeaderSize:HeaderSize]}, nil
}

// Bytes returns the header bytes, aliasing the image.
func (h *Header) Bytes() []byte { return h.raw }

func (h *Header) str(off, n int) raw.FixedString { return raw.FixedString(h.raw[off : off+n : off+n]) }
func (h *Header) u16(off int) raw.U16LE          { return raw.U16At(h.raw, off) }
func (h *Header) u32(off int) raw.U32LE          { return raw.U32At(h.raw, off) }

func (h *Header) codeInfo(off int) CodeInfo {
	return CodeInfo{
		ROMOffset:    h.u32(off),
		EntryAddress: h.u32(off + 4),
		RAMAddress:   h.u32(off + 8),
		Size:         h.u32(off + 12),
	}
}

func (h *Header) offsetAndSize(off int) OffsetAndSize {
	return OffsetAndSize{Offset: h.u32(off), Size: h.u32(off + 4)}
}

func (h *Header) Title() raw.FixedString     { return h.str(offTitle, 12) }
func (h *Header) GameCode() raw.FixedString  { return h.str(offGameCode, 4) }
func (h *Header) MakerCode() raw.FixedString { return h.str(offMakerCode, 2) }

func (h *Header) UnitCode() byte             { return h.raw[offUnitCode] }
func (h *Header) EncryptionSeedSelect() byte { return h.raw[offSeedSelect] }
func (h *Header) DeviceCapacityRaw() byte    { return h.raw[offCapacity] }
func (h *Header) Region() byte               { return h.raw[offRegion] }
func (h *Header) ROMVersion() byte           { return h.raw[offROMVersion] }
func (h *Header) Autostart() byte            { return h.raw[offAutostart] }

// DeviceCapacity is the chip size in bytes, 128 KiB << DeviceCapacityRaw.
// Exponents past 46 do not fit and yield 0.
func (h *Header) DeviceCapacity() uint64 {
	shift := uint(h.DeviceCapacityRaw())
	if shift > 46 {
		return 0
	}
	return (128 * 1024) << shift
}

func (h *Header) ARM9() CodeInfo                     { return h.codeInfo(offARM9) }
func (h *Header) ARM7() CodeInfo                     { return h.codeInfo(offARM7) }
func (h *Header) FNT() OffsetAndSize                 { return h.offsetAndSize(offFNT) }
func (h *Header) FAT() OffsetAndSize                 { return h.offsetAndSize(offFAT) }
func (h *Header) ARM9Overlay() OffsetAndSize         { return h.offsetAndSize(offARM9Overlay) }
func (h *Header) ARM7Overlay() OffsetAndSize         { return h.offsetAndSize(offARM7Overlay) }
func (h *Header) PortNormal() raw.U32LE              { return h.u32(offPortNormal) }
func (h *Header) PortKey1() raw.U32LE                { return h.u32(offPortKey1) }
func (h *Header) BannerOffset() raw.U32LE            { return h.u32(offBanner) }
func (h *Header) SecureAreaChecksum() raw.U16LE      { return h.u16(offSecureCRC) }
func (h *Header) SecureAreaDelay() raw.U16LE         { return h.u16(offSecureDelay) }
func (h *Header) ARM9AutoLoad() raw.U32LE            { return h.u32(offARM9AutoLoad) }
func (h *Header) ARM7AutoLoad() raw.U32LE            { return h.u32(offARM7AutoLoad) }
func (h *Header) SecureAreaDisable() raw.FixedString { return h.str(offSecureOff, 8) }
func (h *Header) TotalUsedROMSize() raw.U32LE        { return h.u32(offUsedROMSize) }
func (h *Header) ROMHeaderSize() raw.U32LE           { return h.u32(offHeaderSize) }
func (h *Header) NANDEndOfROM() raw.U16LE            { return h.u16(offNANDEndROM) }
func (h *Header) NANDStartOfRW() raw.U16LE           { return h.u16(offNANDStartRW) }
func (h *Header) FastBoot() raw.FixedString          { return h.str(offFastBoot, 0x10) }
func (h *Header) NintendoLogo() []byte               { return h.raw[offLogo : offLogo+logoSize : offLogo+logoSize] }
func (h *Header) NintendoLogoChecksum() raw.U16LE    { return h.u16(offLogoCRC) }
func (h *Header) HeaderChecksum() raw.U16LE          { return h.u16(offHeaderCRC) }
func (h *Header) Debug() OffsetAndSize               { return h.offsetAndSize(offDebug) }
func (h *Header) DebugRAMAddress() raw.U32LE         { return h.u32(offDebugRAM) }

// ReadFNT parses the file name table. An image without files stores a
// zero-sized table, which yields an empty table rather than an error.
func (h *Header) ReadFNT(rom []byte) (*nitrofs.FileNameTable, error) {
	fnt := h.FNT()
	if fnt.Size.Get() == 0 {
		return &nitrofs.FileNameTable{}, nil
	}
	return nitrofs.ParseFNT(rom, fnt.Offset.Get())
}

// ReadFAT overlays the file allocation table.
func (h *Header) ReadFAT(rom []byte) (nitrofs.FAT, error) {
	fat := h.FAT()
	return nitrofs.NewFAT(rom, fat.Offset.Get(), fat.Size.Get())
}

// ReadFiles reads both tables. The offsets are taken as stored; they are not
// checked against each other.
func (h *Header) ReadFiles(rom []byte) (*nitrofs.Files, error) {
	fnt, err := h.ReadFNT(rom)
	if err != nil {
		return nil, err
	}
	fat, err := h.ReadFAT(rom)
	if err != nil {
		return nil, err
	}
	return nitrofs.NewFiles(fnt, fat, rom), nil
}

// UnitName decodes the unit code.
func (h *Header) UnitName() string {
	switch h.UnitCode() {
	case 0x00:
		return "NDS"
	case 0x02:
		return "NDS+DSi"
	case 0x03:
		return "DSi"
	default:
		return "Other/unknown"
	}
}

// RegionName decodes the region byte.
func (h *Header) RegionName() string {
	switch h.Region() {
	case 0x00:
		return "Normal"
	case 0x40:
		return "Korea"
	case 0x80:
		return "China"
	default:
		return "Other/unknown"
	}
}
