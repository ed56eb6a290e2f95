package ui

// Config contains window related settings.
type Config struct {
	Title string // window title
	Scale int    // integer upscaling factor
	// ScreenshotDir is where F12 writes PNGs. Empty means the working
	// directory.
	ScreenshotDir string
}

// Defaults fills missing fields with reasonable defaults.
func (c *Config) Defaults() {
	if c.Title == "" {
		c.Title = "ndsview"
	}
	if c.Scale <= 0 {
		c.Scale = 3
	}
}
