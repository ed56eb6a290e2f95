// ndsview shows the icon and titles stored in a cartridge image's banner.
package main

import (
	"errors"
	"fmt"
	"image"
	"image/png"
	"os"

	"github.com/spf13/pflag"

	"github.com/FabianRolfMatthiasNoll/ndsfs/internal/cart"
	"github.com/FabianRolfMatthiasNoll/ndsfs/internal/cli"
	"github.com/FabianRolfMatthiasNoll/ndsfs/internal/config"
	"github.com/FabianRolfMatthiasNoll/ndsfs/internal/romio"
	"github.com/FabianRolfMatthiasNoll/ndsfs/internal/ui"
)

type CLIFlags struct {
	ROMPath string
	Config  string
	Scale   int
	Title   string

	// headless
	PNGOut string // write the icon to a PNG and exit
}

func parseFlags() (CLIFlags, error) {
	var f CLIFlags
	fs := pflag.NewFlagSet("ndsview", pflag.ContinueOnError)
	fs.StringVar(&f.ROMPath, "rom", "", "path to image (.nds, .nds.zst, .nds.lz4)")
	fs.StringVar(&f.Config, "config", "", "config file (default: $"+config.EnvVar+")")
	fs.IntVar(&f.Scale, "scale", 0, "window scale")
	fs.StringVar(&f.Title, "title", "", "window title")
	fs.StringVar(&f.PNGOut, "outpng", "", "write the icon to PNG at path instead of opening a window")
	if err := fs.Parse(os.Args[1:]); err != nil {
		return f, err
	}
	if f.ROMPath == "" && fs.NArg() == 1 {
		f.ROMPath = fs.Arg(0)
	}
	if f.ROMPath == "" {
		return f, errors.New("--rom is required")
	}
	return f, nil
}

// saveIconPNG writes the icon enlarged by scale with nearest-neighbour
// sampling.
func saveIconPNG(b *cart.Banner, scale int, path string) error {
	icon := b.Icon()
	size := cart.IconSize * scale
	img := image.NewPaletted(image.Rect(0, 0, size, size), icon.Palette)
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			img.SetColorIndex(x, y, icon.ColorIndexAt(x/scale, y/scale))
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return png.Encode(f, img)
}

func run() error {
	f, err := parseFlags()
	if err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}

	cfg, err := config.Load(f.Config)
	if err != nil {
		return err
	}
	if f.Scale > 0 {
		cfg.Viewer.Scale = f.Scale
	}
	if f.Title != "" {
		cfg.Viewer.Title = f.Title
	}
	level, err := cfg.Level()
	if err != nil {
		return err
	}
	logger := cli.NewCommandLogger(level)

	rom, err := romio.Load(f.ROMPath, logger)
	if err != nil {
		return err
	}
	h, err := cart.ParseHeader(rom)
	if err != nil {
		return err
	}
	banner, err := h.ReadBanner(rom)
	switch {
	case errors.Is(err, cart.ErrNoBanner):
		logger.Warn("image has no banner", "path", f.ROMPath)
		banner = nil
	case err != nil:
		return err
	case !banner.ChecksumOK():
		logger.Warn("banner checksum mismatch", "path", f.ROMPath)
	}
	logger.Info("image loaded", "title", h.Title().String(), "game_code", h.GameCode().String())

	if f.PNGOut != "" {
		if banner == nil {
			return errors.New("no icon to write")
		}
		if err := saveIconPNG(banner, cfg.Viewer.Scale, f.PNGOut); err != nil {
			return fmt.Errorf("write PNG: %w", err)
		}
		logger.Info("wrote icon", "path", f.PNGOut)
		return nil
	}

	uiCfg := ui.Config{Title: cfg.Viewer.Title, Scale: cfg.Viewer.Scale, ScreenshotDir: cfg.Viewer.ScreenshotDir}
	app := ui.NewApp(uiCfg, h, banner, logger)
	return app.Run()
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
