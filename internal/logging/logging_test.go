package logging

import (
	"context"
	"log/slog"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in       string
		expected slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"DEBUG", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"", slog.LevelInfo},
		{"nonsense", slog.LevelInfo},
	}

	for _, tt := range tests {
		if got := parseLevel(tt.in); got != tt.expected {
			t.Errorf("parseLevel(%q) = %v, want %v", tt.in, got, tt.expected)
		}
	}
}

func TestNewRespectsLevel(t *testing.T) {
	log := New("error")
	ctx := context.Background()
	if log.Enabled(ctx, slog.LevelWarn) {
		t.Error("warn enabled on an error-level logger")
	}
	if !log.Enabled(ctx, slog.LevelError) {
		t.Error("error not enabled on an error-level logger")
	}
}
