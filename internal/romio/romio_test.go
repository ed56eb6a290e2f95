package romio

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

func image() []byte {
	b := make([]byte, 0x1000)
	for i := range b {
		b[i] = byte(i * 31)
	}
	copy(b, "TESTIMAGE")
	return b
}

func zstdCompress(t *testing.T, data []byte) []byte {
	t.Helper()
	enc, err := zstd.NewWriter(nil)
	if err != nil {
		t.Fatalf("zstd writer: %v", err)
	}
	defer enc.Close()
	return enc.EncodeAll(data, nil)
}

func lz4Compress(t *testing.T, data []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := lz4.NewWriter(&buf)
	if _, err := w.Write(data); err != nil {
		t.Fatalf("lz4 write: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("lz4 close: %v", err)
	}
	return buf.Bytes()
}

func TestDecode(t *testing.T) {
	want := image()
	cases := []struct {
		name   string
		stored []byte
		format Format
	}{
		{"raw", want, FormatRaw},
		{"zstd", zstdCompress(t, want), FormatZstd},
		{"lz4", lz4Compress(t, want), FormatLZ4},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got, format, err := Decode(bytes.NewReader(c.stored))
			if err != nil {
				t.Fatalf("Decode error: %v", err)
			}
			if format != c.format {
				t.Fatalf("format got %v want %v", format, c.format)
			}
			if !bytes.Equal(got, want) {
				t.Fatalf("decoded %d bytes, differs from original", len(got))
			}
		})
	}
}

func TestDecode_Short(t *testing.T) {
	got, format, err := Decode(bytes.NewReader([]byte{0x28, 0xB5}))
	if err != nil {
		t.Fatalf("Decode error: %v", err)
	}
	if format != FormatRaw || len(got) != 2 {
		t.Fatalf("got %v with %d bytes, want raw with 2", format, len(got))
	}
}

func TestDecode_CorruptZstd(t *testing.T) {
	stored := append([]byte{0x28, 0xB5, 0x2F, 0xFD}, bytes.Repeat([]byte{0xEE}, 32)...)
	if _, _, err := Decode(bytes.NewReader(stored)); err == nil {
		t.Fatalf("corrupt zstd stream decoded without error")
	}
}

func TestLoad(t *testing.T) {
	want := image()
	path := filepath.Join(t.TempDir(), "game.nds.zst")
	if err := os.WriteFile(path, zstdCompress(t, want), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	got, err := Load(path, nil)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if !bytes.Equal(got, want) {
		t.Fatalf("loaded image differs from original")
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.nds"), nil); !os.IsNotExist(err) {
		t.Fatalf("missing file: got %v want not-exist", err)
	}
}
