package logging

import (
	"log/slog"
	"testing"

	"github.com/TomHarkness/TransparentBalanceApp/internal/server/config"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"warn":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"info":    slog.LevelInfo,
		"":        slog.LevelInfo,
		"bogus":   slog.LevelInfo,
		" DEBUG ": slog.LevelDebug,
	}
	for in, want := range cases {
		if got := parseLevel(in); got != want {
			t.Fatalf("parseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestNewBuildsLogger(t *testing.T) {
	for _, format := range []string{"text", "json"} {
		logger := New(config.LoggingConfig{Level: "info", Format: format})
		if logger == nil {
			t.Fatalf("nil logger for format %q", format)
		}
	}
}
