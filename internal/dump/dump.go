// Package dump renders the decoded cartridge structures as YAML, JSON or
// CBOR documents.
package dump

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/fxamacker/cbor/v2"
	"gopkg.in/yaml.v3"
)

// Format selects the document encoding.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
	FormatCBOR Format = "cbor"
)

// Formats lists the supported formats.
func Formats() []Format { return []Format{FormatYAML, FormatJSON, FormatCBOR} }

// ParseFormat accepts a format name, case-insensitively. "yml" is YAML.
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(name) {
	case "yaml", "yml":
		return FormatYAML, nil
	case "json":
		return FormatJSON, nil
	case "cbor":
		return FormatCBOR, nil
	default:
		return "", fmt.Errorf("unknown dump format %q", name)
	}
}

// Ext is the file extension for documents in this format.
func (f Format) Ext() string { return "." + string(f) }

// encMode produces deterministic CBOR: sorted map keys and the shortest
// integer encodings.
var encMode cbor.EncMode

func init() {
	var err error
	encMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("dump: CBOR encoder initialization failed: " + err.Error())
	}
}

// Encode writes doc to w.
func Encode(w io.Writer, format Format, doc any) error {
	switch format {
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return fmt.Errorf("yaml: %w", err)
		}
		return enc.Close()
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(doc); err != nil {
			return fmt.Errorf("json: %w", err)
		}
		return nil
	case FormatCBOR:
		if err := encMode.NewEncoder(w).Encode(doc); err != nil {
			return fmt.Errorf("cbor: %w", err)
		}
		return nil
	default:
		return fmt.Errorf("unknown dump format %q", format)
	}
}

// Hex32 is an offset or address. Text formats print it as 0x%08x; CBOR
// keeps the integer.
type Hex32 uint32

func (h Hex32) MarshalText() ([]byte, error) {
	return []byte(fmt.Sprintf("0x%08x", uint32(h))), nil
}

// Hex16 is a checksum or ID, printed as 0x%04x in text formats.
type Hex16 uint16

func (h Hex16) MarshalText() ([]byte, error) {
	return []byte(fmt.Sprintf("0x%04x", uint16(h))), nil
}

// Text is an embedded string. It is written as text when it is valid UTF-8;
// otherwise text formats get hex digits and CBOR gets a byte string.
type Text []byte

func (t Text) MarshalText() ([]byte, error) {
	if utf8.Valid(t) {
		return t, nil
	}
	return []byte(hex.EncodeToString(t)), nil
}

func (t Text) MarshalCBOR() ([]byte, error) {
	if utf8.Valid(t) {
		return encMode.Marshal(string(t))
	}
	return encMode.Marshal([]byte(t))
}

// Bytes is opaque binary data: hex in text formats, a byte string in CBOR.
type Bytes []byte

func (b Bytes) MarshalText() ([]byte, error) {
	return []byte(hex.EncodeToString(b)), nil
}
