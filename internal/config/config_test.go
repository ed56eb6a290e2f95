package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	return path
}

func TestDefault(t *testing.T) {
	c := Default()
	if c.LogLevel != "info" || c.Dump.Format != "yaml" || c.Extract.Output != "out" {
		t.Fatalf("defaults got %+v", c)
	}
	if c.Viewer.Title != "ndsview" || c.Viewer.Scale != 3 {
		t.Fatalf("viewer defaults got %+v", c.Viewer)
	}
	if c.Dump.Output != "" || c.Viewer.ScreenshotDir != "" {
		t.Fatalf("output directories default to empty: %+v", c)
	}
	if c.Extract.Overwrite || c.Mount.AllowOther {
		t.Fatalf("boolean defaults must be false: %+v", c)
	}
}

func TestLoadFile_YAML(t *testing.T) {
	path := writeConfig(t, "ndstool.yaml", `
log_level: debug
dump:
  format: cbor
  output: dumps
extract:
  output: /tmp/x
  manifest: true
viewer:
  scale: 4
  screenshot_dir: shots
`)
	c, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if c.Dump.Format != "cbor" || c.Extract.Output != "/tmp/x" || !c.Extract.Manifest {
		t.Fatalf("got %+v", c)
	}
	if c.Dump.Output != "dumps" {
		t.Fatalf("dump output got %q", c.Dump.Output)
	}
	if c.Viewer.Scale != 4 || c.Viewer.Title != "ndsview" || c.Viewer.ScreenshotDir != "shots" {
		t.Fatalf("viewer got %+v", c.Viewer)
	}
	if level, err := c.Level(); err != nil || level != slog.LevelDebug {
		t.Fatalf("Level got %v, %v", level, err)
	}
}

func TestLoadFile_JSONC(t *testing.T) {
	path := writeConfig(t, "ndstool.jsonc", `{
  // mount settings
  "mount": {"allow_other": true},
  "extract": {"system": true,},
}`)
	c, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if !c.Mount.AllowOther || !c.Extract.System {
		t.Fatalf("got %+v", c)
	}
	if c.LogLevel != "info" {
		t.Fatalf("LogLevel got %q want default", c.LogLevel)
	}
}

func TestLoadFile_Errors(t *testing.T) {
	cases := []struct{ name, body string }{
		{"bad.toml", "log_level = 'info'"},
		{"bad.yaml", "dump: [1, 2"},
		{"bad.json", "{"},
		{"level.yaml", "log_level: loud"},
	}
	for _, c := range cases {
		if _, err := LoadFile(writeConfig(t, c.name, c.body)); err == nil {
			t.Fatalf("%s loaded without error", c.name)
		}
	}
	if _, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatalf("missing file loaded without error")
	}
}

func TestLoad_Env(t *testing.T) {
	path := writeConfig(t, "env.yml", "log_level: warn\n")

	t.Setenv(EnvVar, "")
	c, err := Load("")
	if err != nil || c.LogLevel != "info" {
		t.Fatalf("no config got %+v, %v", c, err)
	}

	t.Setenv(EnvVar, path)
	c, err = Load("")
	if err != nil || c.LogLevel != "warn" {
		t.Fatalf("env config got %+v, %v", c, err)
	}

	explicit := writeConfig(t, "flag.yaml", "log_level: error\n")
	c, err = Load(explicit)
	if err != nil || c.LogLevel != "error" {
		t.Fatalf("explicit config got %+v, %v", c, err)
	}
}
