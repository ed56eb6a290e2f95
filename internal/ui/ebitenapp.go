package ui

import (
	"fmt"
	"image"
	"image/png"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/FabianRolfMatthiasNoll/ndsfs/internal/cart"
)

// The logical screen is one DS screen.
const (
	screenW = 256
	screenH = 192

	iconScale = 4
	lineH     = 14
)

// App shows the icon and titles of one image.
type App struct {
	cfg    Config
	header *cart.Header
	banner *cart.Banner // nil if the image has none
	logger *slog.Logger

	icon    *ebiten.Image
	langs   []cart.Language // languages with a non-empty title
	langIdx int

	showInfo   bool
	screenshot bool
}

func NewApp(cfg Config, h *cart.Header, banner *cart.Banner, logger *slog.Logger) *App {
	cfg.Defaults()
	if logger == nil {
		logger = slog.Default()
	}
	ebiten.SetWindowTitle(cfg.Title)
	ebiten.SetWindowSize(screenW*cfg.Scale, screenH*cfg.Scale)

	a := &App{cfg: cfg, header: h, banner: banner, logger: logger}
	if banner != nil {
		a.icon = ebiten.NewImageFromImage(banner.Icon())
		for _, lang := range cart.Languages() {
			if title, ok := banner.Title(lang); ok && title != "" {
				a.langs = append(a.langs, lang)
			}
		}
		// start on English when present
		for i, lang := range a.langs {
			if lang == cart.English {
				a.langIdx = i
			}
		}
	}
	return a
}

func (a *App) Run() error { return ebiten.RunGame(a) }

func (a *App) Update() error {
	if n := len(a.langs); n > 0 {
		if inpututil.IsKeyJustPressed(ebiten.KeyArrowRight) {
			a.langIdx = (a.langIdx + 1) % n
		}
		if inpututil.IsKeyJustPressed(ebiten.KeyArrowLeft) {
			a.langIdx = (a.langIdx + n - 1) % n
		}
	}

	// Toggle header overlay (Escape or I)
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) || inpututil.IsKeyJustPressed(ebiten.KeyI) {
		a.showInfo = !a.showInfo
	}

	// Screenshot (F12), taken at the end of the next Draw
	if inpututil.IsKeyJustPressed(ebiten.KeyF12) {
		a.screenshot = true
	}
	return nil
}

func (a *App) Draw(screen *ebiten.Image) {
	if a.icon != nil {
		op := &ebiten.DrawImageOptions{}
		op.GeoM.Scale(iconScale, iconScale)
		op.GeoM.Translate(float64(screenW-cart.IconSize*iconScale)/2, 16)
		screen.DrawImage(a.icon, op)
	}

	y := 16 + cart.IconSize*iconScale + 8
	for _, line := range a.titleLines() {
		x := (screenW - len(line)*6) / 2
		ebitenutil.DebugPrintAt(screen, line, max(x, 4), y)
		y += lineH
	}

	if a.showInfo {
		ebitenutil.DebugPrintAt(screen, strings.Join(a.infoLines(), "\n"), 4, 4)
	}

	if a.screenshot {
		a.screenshot = false
		if err := a.saveScreenshot(screen); err != nil {
			a.logger.Error("screenshot failed", "error", err)
		}
	}
}

func (a *App) Layout(outW, outH int) (int, int) { return screenW, screenH }

// titleLines is the selected title split into its lines, with the
// language name last.
func (a *App) titleLines() []string {
	if len(a.langs) == 0 {
		return []string{a.header.Title().AsStringLossy()}
	}
	lang := a.langs[a.langIdx]
	title, _ := a.banner.Title(lang)
	lines := strings.Split(title, "\n")
	return append(lines, "", fmt.Sprintf("< %s >", lang))
}

func (a *App) infoLines() []string {
	h := a.header
	return []string{
		fmt.Sprintf("Title    %s", h.Title()),
		fmt.Sprintf("Code     %s-%s", h.GameCode(), h.MakerCode()),
		fmt.Sprintf("Unit     %s", h.UnitName()),
		fmt.Sprintf("Region   %s", h.RegionName()),
		fmt.Sprintf("Version  %d", h.ROMVersion()),
		fmt.Sprintf("Capacity %d KiB", h.DeviceCapacity()/1024),
	}
}

func (a *App) saveScreenshot(screen *ebiten.Image) error {
	img := image.NewRGBA(image.Rect(0, 0, screenW, screenH))
	screen.ReadPixels(img.Pix)

	if a.cfg.ScreenshotDir != "" {
		if err := os.MkdirAll(a.cfg.ScreenshotDir, 0o755); err != nil {
			return err
		}
	}
	ts := time.Now().Format("20060102_150405")
	name := filepath.Join(a.cfg.ScreenshotDir, fmt.Sprintf("%s_%s.png", a.header.GameCode().AsStringLossy(), ts))
	f, err := os.Create(name)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		return err
	}
	a.logger.Info("screenshot saved", "path", name)
	return nil
}
