package cart

import (
	"encoding/binary"
	"errors"
	"testing"

	"github.com/FabianRolfMatthiasNoll/ndsfs/internal/nitrofs"
	"github.com/FabianRolfMatthiasNoll/ndsfs/internal/raw"
)

// buildROM makes a synthetic image: header, a name table with a root
// holding "readme.txt" and a directory "data" holding "a.bin", an
// allocation table and the two file bodies. Checksums are valid.
func buildROM(title string, capacity byte) []byte {
	rom := make([]byte, 0x400)

	copy(rom[offTitle:offTitle+12], title)
	copy(rom[offGameCode:], "ADAE")
	copy(rom[offMakerCode:], "01")
	rom[offCapacity] = capacity

	// ARM9 binary at 0x300
	binary.LittleEndian.PutUint32(rom[offARM9:], 0x300)
	binary.LittleEndian.PutUint32(rom[offARM9+4:], 0x02000800)
	binary.LittleEndian.PutUint32(rom[offARM9+8:], 0x02000000)
	binary.LittleEndian.PutUint32(rom[offARM9+12:], 0x10)

	// name table at 0x200
	fnt := []byte{
		// main table: root, then "data"
		0x10, 0, 0, 0, 0, 0, 2, 0,
		0x23, 0, 0, 0, 1, 0, 0x00, 0xF0,
		// root sub-table at +0x10
		10, 'r', 'e', 'a', 'd', 'm', 'e', '.', 't', 'x', 't',
		0x84, 'd', 'a', 't', 'a', 0x01, 0xF0,
		0,
		// "data" sub-table at +0x23
		5, 'a', '.', 'b', 'i', 'n',
		0,
	}
	copy(rom[0x200:], fnt)
	binary.LittleEndian.PutUint32(rom[offFNT:], 0x200)
	binary.LittleEndian.PutUint32(rom[offFNT+4:], uint32(len(fnt)))

	// allocation table at 0x280: file 0 = 0x380..0x385, file 1 = 0x390..0x393
	binary.LittleEndian.PutUint32(rom[0x280:], 0x380)
	binary.LittleEndian.PutUint32(rom[0x284:], 0x385)
	binary.LittleEndian.PutUint32(rom[0x288:], 0x390)
	binary.LittleEndian.PutUint32(rom[0x28C:], 0x393)
	binary.LittleEndian.PutUint32(rom[offFAT:], 0x280)
	binary.LittleEndian.PutUint32(rom[offFAT+4:], 16)
	copy(rom[0x380:], "hello")
	copy(rom[0x390:], "abc")

	for i := 0; i < logoSize; i++ {
		rom[offLogo+i] = byte(i * 7)
	}
	binary.LittleEndian.PutUint16(rom[offLogoCRC:], CRC16(rom[offLogo:offLogo+logoSize]))
	binary.LittleEndian.PutUint16(rom[offHeaderCRC:], CRC16(rom[:offHeaderCRC]))

	return rom
}

func TestParseHeader_Basic(t *testing.T) {
	rom := buildROM("POKEMON D", 0x07)

	h, err := ParseHeader(rom)
	if err != nil {
		t.Fatalf("ParseHeader error: %v", err)
	}
	if h.Title().String() != "POKEMON D" {
		t.Fatalf("Title got %q want %q", h.Title().String(), "POKEMON D")
	}
	if h.GameCode().String() != "ADAE" || h.MakerCode().String() != "01" {
		t.Fatalf("codes got %s / %s", h.GameCode(), h.MakerCode())
	}
	if h.DeviceCapacity() != 16*1024*1024 {
		t.Fatalf("DeviceCapacity got %d want 16MiB", h.DeviceCapacity())
	}
	arm9 := h.ARM9()
	if arm9.ROMOffset.Get() != 0x300 || arm9.EntryAddress.Get() != 0x02000800 || arm9.Size.Get() != 0x10 {
		t.Fatalf("ARM9 got offset %#x entry %#x size %#x", arm9.ROMOffset.Get(), arm9.EntryAddress.Get(), arm9.Size.Get())
	}
	if b, err := arm9.Bytes(rom); err != nil || len(b) != 0x10 {
		t.Fatalf("ARM9 bytes got %d, %v", len(b), err)
	}
	if h.UnitName() != "NDS" || h.RegionName() != "Normal" {
		t.Fatalf("decoded unit/region got %s / %s", h.UnitName(), h.RegionName())
	}
	if !h.HeaderChecksumOK() || !h.LogoChecksumOK() {
		t.Fatalf("checksums got header=%v logo=%v, want true", h.HeaderChecksumOK(), h.LogoChecksumOK())
	}
}

func TestParseHeader_NoCopy(t *testing.T) {
	rom := buildROM("A", 0)
	h, _ := ParseHeader(rom)
	rom[offTitle] = 'B'
	if h.Title().String() != "B" {
		t.Fatalf("header does not alias the image: title %q", h.Title().String())
	}
	if len(h.Bytes()) != HeaderSize {
		t.Fatalf("Bytes got %d want %d", len(h.Bytes()), HeaderSize)
	}
}

func TestParseHeader_ShortROM(t *testing.T) {
	if _, err := ParseHeader(make([]byte, HeaderSize-1)); !errors.Is(err, raw.ErrShortBuffer) {
		t.Fatalf("expected ErrShortBuffer on too-small ROM, got %v", err)
	}
	if _, err := ParseHeader(make([]byte, HeaderSize)); err != nil {
		t.Fatalf("exact-size ROM error: %v", err)
	}
}

func TestDeviceCapacity(t *testing.T) {
	cases := []struct {
		raw  byte
		want uint64
	}{
		{0, 128 * 1024},
		{1, 256 * 1024},
		{9, 64 * 1024 * 1024},
		{46, 128 * 1024 << 46},
		{47, 0},
	}
	for _, c := range cases {
		rom := make([]byte, HeaderSize)
		rom[offCapacity] = c.raw
		h, _ := ParseHeader(rom)
		if got := h.DeviceCapacity(); got != c.want {
			t.Fatalf("DeviceCapacity(%d) got %d want %d", c.raw, got, c.want)
		}
	}
}

func TestHeaderChecksum_Bad(t *testing.T) {
	rom := buildROM("TEST", 0)
	rom[offTitle] ^= 0xFF // corrupt a header byte
	h, _ := ParseHeader(rom)
	if h.HeaderChecksumOK() {
		t.Fatalf("HeaderChecksumOK = true, want false after corruption")
	}
	if !h.LogoChecksumOK() {
		t.Fatalf("LogoChecksumOK = false, logo was not touched")
	}
}

func TestCRC16(t *testing.T) {
	if got := CRC16([]byte("123456789")); got != 0x4B37 {
		t.Fatalf("CRC16 check value got %#04x want 0x4b37", got)
	}
	if got := CRC16(nil); got != 0xFFFF {
		t.Fatalf("CRC16(nil) got %#04x want 0xffff", got)
	}
}

func TestReadFiles(t *testing.T) {
	rom := buildROM("FILES", 0)
	h, _ := ParseHeader(rom)

	files, err := h.ReadFiles(rom)
	if err != nil {
		t.Fatalf("ReadFiles error: %v", err)
	}
	if files.FAT.Len() != 2 {
		t.Fatalf("FAT entries got %d want 2", files.FAT.Len())
	}

	type emission struct {
		path string
		id   uint16
	}
	var got []emission
	files.FNT.Walk(func(p nitrofs.Path, id uint16) {
		got = append(got, emission{p.String(), id})
	})
	want := []emission{{"readme.txt", 0}, {"data", 0xF001}, {"data/a.bin", 1}}
	if len(got) != len(want) {
		t.Fatalf("walk got %v want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("walk[%d] got %+v want %+v", i, got[i], want[i])
		}
	}

	if data, err := files.Open("data/a.bin"); err != nil || string(data) != "abc" {
		t.Fatalf("Open got %q, %v", data, err)
	}
	if data, err := files.File(0); err != nil || string(data) != "hello" {
		t.Fatalf("File(0) got %q, %v", data, err)
	}
}

func TestReadFNT_ZeroSize(t *testing.T) {
	rom := buildROM("EMPTY", 0)
	// garbage offset must not matter when the size is zero
	binary.LittleEndian.PutUint32(rom[offFNT:], 0xFFFFFFF0)
	binary.LittleEndian.PutUint32(rom[offFNT+4:], 0)
	h, _ := ParseHeader(rom)

	fnt, err := h.ReadFNT(rom)
	if err != nil {
		t.Fatalf("ReadFNT error: %v", err)
	}
	if len(fnt.MainTable) != 0 || len(fnt.SubTables) != 0 {
		t.Fatalf("zero-size table got %d/%d entries", len(fnt.MainTable), len(fnt.SubTables))
	}
	if _, err := h.ReadFiles(rom); err != nil {
		t.Fatalf("ReadFiles with empty name table error: %v", err)
	}
}

func TestReadFiles_Failures(t *testing.T) {
	rom := buildROM("BAD", 0)
	binary.LittleEndian.PutUint32(rom[offFAT:], 0x3FC)
	h, _ := ParseHeader(rom)
	if _, err := h.ReadFiles(rom); !errors.Is(err, raw.ErrShortBuffer) {
		t.Fatalf("FAT past end: got %v want ErrShortBuffer", err)
	}

	rom = buildROM("BAD", 0)
	binary.LittleEndian.PutUint32(rom[offFNT:], 0x3FE)
	h, _ = ParseHeader(rom)
	if _, err := h.ReadFiles(rom); !errors.Is(err, raw.ErrShortBuffer) {
		t.Fatalf("FNT past end: got %v want ErrShortBuffer", err)
	}
}
