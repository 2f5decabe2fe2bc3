package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestLogger_WritesToConfiguredOutput(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(WithOutput(&buf))

	l.Info().Str("path", "/a").Msg("listing loaded")

	out := buf.String()
	if !strings.Contains(out, "listing loaded") {
		t.Errorf("output = %q, want message", out)
	}
	if !strings.Contains(out, "/a") {
		t.Errorf("output = %q, want field value", out)
	}
}

func TestLogger_Named(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(WithOutput(&buf)).Named("navigator")

	l.Warnf("redirect to %s", "/b")

	if !strings.Contains(buf.String(), "navigator") {
		t.Errorf("output = %q, want component name", buf.String())
	}
}

func TestLogger_WithFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fsnav.log")
	var buf bytes.Buffer
	l := NewLogger(WithOutput(&buf), WithFile(path))

	l.Error().Msg("boom")
	if err := l.Close(); err != nil {
		t.Fatalf("Close() error: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read log file: %v", err)
	}
	if !strings.Contains(string(data), `"message":"boom"`) {
		t.Errorf("log file = %q, want JSON line", data)
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want zerolog.Level
	}{
		{"", zerolog.InfoLevel},
		{"debug", zerolog.DebugLevel},
		{" WARN ", zerolog.WarnLevel},
		{"nonsense", zerolog.InfoLevel},
	}
	for _, tt := range tests {
		if got := ParseLevel(tt.in); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
