// Package extract writes the contents of a cartridge image to a host
// directory.
package extract

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/zeebo/blake3"
	"gopkg.in/yaml.v3"

	"github.com/FabianRolfMatthiasNoll/ndsfs/internal/cart"
	"github.com/FabianRolfMatthiasNoll/ndsfs/internal/nitrofs"
)

const (
	FilesDir     = "files"
	SystemDir    = "system"
	ManifestName = "manifest.yaml"
)

// Options configures Extract.
type Options struct {
	// Output is the directory to write into. It is created if missing.
	Output string

	// Overwrite replaces existing files. Without it an existing file is
	// an error.
	Overwrite bool

	// Manifest writes ManifestName listing every extracted file.
	Manifest bool

	// System also writes the header, boot binaries, overlay tables and
	// banner under SystemDir.
	System bool

	// Logger receives per-file diagnostics. If nil, nothing is logged.
	Logger *slog.Logger
}

// Summary counts what Extract did.
type Summary struct {
	Files       int
	Directories int
	Bytes       int64
	Skipped     int
	// MaxFileID is the highest file ID in the name table, or -1 if there
	// are no files.
	MaxFileID int
}

// ManifestEntry describes one extracted file.
type ManifestEntry struct {
	Path   string `yaml:"path"`
	ID     uint16 `yaml:"id"`
	Size   int    `yaml:"size"`
	BLAKE3 string `yaml:"blake3"`
}

// Manifest is the document written to ManifestName.
type Manifest struct {
	Title    string          `yaml:"title"`
	GameCode string          `yaml:"game_code"`
	Files    []ManifestEntry `yaml:"files"`
}

// Extract writes every file of the image under Output/FilesDir. Entries
// whose names are unsafe on the host, whose path repeats an earlier entry,
// or whose bytes lie outside the image are logged and skipped; write
// failures abort.
func Extract(ctx context.Context, files *nitrofs.Files, header *cart.Header, options Options) (Summary, error) {
	if options.Output == "" {
		return Summary{}, fmt.Errorf("output directory is required")
	}
	logger := options.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	summary := Summary{MaxFileID: -1}
	manifest := Manifest{
		Title:    header.Title().AsStringLossy(),
		GameCode: header.GameCode().AsStringLossy(),
	}

	root := filepath.Join(options.Output, FilesDir)
	if err := os.MkdirAll(root, 0o755); err != nil {
		return summary, fmt.Errorf("creating %s: %w", root, err)
	}

	seen := make(map[string]bool)
	for path, id := range files.FNT.All() {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		if !nitrofs.IsDirectoryID(id) {
			summary.MaxFileID = max(summary.MaxFileID, int(id))
		}

		parts, err := path.SafeComponents()
		if err != nil {
			logger.Warn("skipping entry", "path", path.String(), "id", id, "error", err)
			summary.Skipped++
			continue
		}
		rel := filepath.Join(parts...)
		if seen[rel] {
			logger.Warn("skipping duplicate entry", "path", path.String(), "id", id)
			summary.Skipped++
			continue
		}
		seen[rel] = true
		target := filepath.Join(root, rel)

		if nitrofs.IsDirectoryID(id) {
			if err := os.MkdirAll(target, 0o755); err != nil {
				return summary, fmt.Errorf("creating %s: %w", target, err)
			}
			summary.Directories++
			continue
		}

		data, err := files.File(id)
		if err != nil {
			logger.Warn("skipping file", "path", path.String(), "id", id, "error", err)
			summary.Skipped++
			continue
		}
		if err := writeFile(target, data, options.Overwrite); err != nil {
			return summary, err
		}
		logger.Debug("extracted", "path", path.String(), "id", id, "bytes", len(data))

		summary.Files++
		summary.Bytes += int64(len(data))
		if options.Manifest {
			digest := blake3.Sum256(data)
			manifest.Files = append(manifest.Files, ManifestEntry{
				Path:   filepath.ToSlash(rel),
				ID:     id,
				Size:   len(data),
				BLAKE3: hex.EncodeToString(digest[:]),
			})
		}
	}

	if options.System {
		if err := writeSystem(files.ROM, header, options, logger); err != nil {
			return summary, err
		}
	}
	if options.Manifest {
		if err := writeManifest(filepath.Join(options.Output, ManifestName), manifest, options.Overwrite); err != nil {
			return summary, err
		}
	}
	return summary, nil
}

func writeFile(target string, data []byte, overwrite bool) error {
	flags := os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	if !overwrite {
		flags = os.O_WRONLY | os.O_CREATE | os.O_EXCL
	}
	f, err := os.OpenFile(target, flags, 0o644)
	if err != nil {
		return fmt.Errorf("writing %s: %w", target, err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return fmt.Errorf("writing %s: %w", target, err)
	}
	return f.Close()
}

// segment is a named region of the image written by the System option.
type segment struct {
	name string
	read func() ([]byte, error)
}

func writeSystem(rom []byte, header *cart.Header, options Options, logger *slog.Logger) error {
	dir := filepath.Join(options.Output, SystemDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", dir, err)
	}

	segments := []segment{
		{"header.bin", func() ([]byte, error) { return header.Bytes(), nil }},
		{"arm9.bin", func() ([]byte, error) { return header.ARM9().Bytes(rom) }},
		{"arm7.bin", func() ([]byte, error) { return header.ARM7().Bytes(rom) }},
		{"arm9ovt.bin", func() ([]byte, error) { return header.ARM9Overlay().Bytes(rom) }},
		{"arm7ovt.bin", func() ([]byte, error) { return header.ARM7Overlay().Bytes(rom) }},
		{"banner.bin", func() ([]byte, error) {
			banner, err := header.ReadBanner(rom)
			if err != nil {
				return nil, err
			}
			return banner.Bytes(), nil
		}},
	}
	for _, s := range segments {
		data, err := s.read()
		if errors.Is(err, cart.ErrNoBanner) {
			continue
		}
		if err != nil {
			logger.Warn("skipping system segment", "name", s.name, "error", err)
			continue
		}
		if len(data) == 0 {
			continue
		}
		if err := writeFile(filepath.Join(dir, s.name), data, options.Overwrite); err != nil {
			return err
		}
	}
	return nil
}

func writeManifest(target string, manifest Manifest, overwrite bool) error {
	data, err := yaml.Marshal(manifest)
	if err != nil {
		return fmt.Errorf("encoding manifest: %w", err)
	}
	return writeFile(target, data, overwrite)
}
