package report

import (
	"bytes"
	"encoding/binary"
	"strings"
	"testing"

	"github.com/FabianRolfMatthiasNoll/ndsfs/internal/cart"
)

func buildROM(t *testing.T) ([]byte, *cart.Header) {
	t.Helper()
	rom := make([]byte, 0x300)
	copy(rom, "REPORT")
	copy(rom[0x0C:], "ARPE")
	rom[0x14] = 0x07

	fnt := []byte{
		0x10, 0, 0, 0, 0, 0, 2, 0,
		0x18, 0, 0, 0, 1, 0, 0x00, 0xF0,
		0x82, 'D', 'D', 0x01, 0xF0,
		1, 'A',
		0,
		5, 'B', '.', 'T', 'X', 'T',
		0,
	}
	copy(rom[0x200:], fnt)
	binary.LittleEndian.PutUint32(rom[0x40:], 0x200)
	binary.LittleEndian.PutUint32(rom[0x44:], uint32(len(fnt)))
	binary.LittleEndian.PutUint32(rom[0x48:], 0x280)
	binary.LittleEndian.PutUint32(rom[0x4C:], 16)

	h, err := cart.ParseHeader(rom)
	if err != nil {
		t.Fatalf("ParseHeader: %v", err)
	}
	return rom, h
}

// field returns the value printed after label, with spacing collapsed.
func field(out, label string) string {
	for _, line := range strings.Split(out, "\n") {
		if rest, ok := strings.CutPrefix(line, label); ok {
			return strings.Join(strings.Fields(rest), " ")
		}
	}
	return ""
}

func TestHeader(t *testing.T) {
	rom, h := buildROM(t)
	var buf bytes.Buffer
	if err := Header(&buf, h, rom); err != nil {
		t.Fatalf("Header: %v", err)
	}
	out := buf.String()

	cases := map[string]string{
		"Title":      "REPORT",
		"Game code":  "ARPE",
		"Unit":       "NDS (0x00)",
		"Capacity":   "16 MiB (raw 7)",
		"FNT":        "offset 0x00000200 size 31 B",
		"Banner":     "none",
		"Header CRC": "0x0000 BAD",
	}
	for label, want := range cases {
		if got := field(out, label); got != want {
			t.Fatalf("%s got %q want %q\n%s", label, got, want, out)
		}
	}
}

func TestTree(t *testing.T) {
	rom, h := buildROM(t)
	files, err := h.ReadFiles(rom)
	if err != nil {
		t.Fatalf("ReadFiles: %v", err)
	}
	var buf bytes.Buffer
	if err := Tree(&buf, files); err != nil {
		t.Fatalf("Tree: %v", err)
	}
	want := "/DD/\n/DD/B.TXT\n/A\n"
	if buf.String() != want {
		t.Fatalf("got %q want %q", buf.String(), want)
	}
}
