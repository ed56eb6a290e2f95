package cli

import (
	"context"
	"log/slog"
	"testing"
)

func TestNewCommandLogger_Level(t *testing.T) {
	logger := NewCommandLogger(slog.LevelWarn)
	ctx := context.Background()
	if logger.Enabled(ctx, slog.LevelInfo) {
		t.Fatalf("info enabled at warn level")
	}
	if !logger.Enabled(ctx, slog.LevelError) {
		t.Fatalf("error disabled at warn level")
	}
}
