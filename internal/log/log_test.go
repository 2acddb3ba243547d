package log

import (
	"bytes"
	"errors"
	"os"
	"strings"
	"testing"
)

func capture(t *testing.T, level Level) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	SetOutput(&buf)
	SetLevel(level)
	t.Cleanup(func() {
		SetOutput(os.Stderr)
		SetLevel(LevelInfo)
	})
	return &buf
}

func TestLevelFiltering(t *testing.T) {
	buf := capture(t, LevelWarn)
	Debug("hidden")
	Info("hidden")
	Warn("shown", "k", 1)
	Error("failed", errors.New("boom"))

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Fatalf("expected debug/info to be filtered, got %q", out)
	}
	if !strings.Contains(out, "[WARN] shown k=1") {
		t.Fatalf("expected warn line, got %q", out)
	}
	if !strings.Contains(out, "[ERROR] failed err=boom") {
		t.Fatalf("expected error line, got %q", out)
	}
}

func TestKeyValueFormatting(t *testing.T) {
	buf := capture(t, LevelDebug)
	Debug("msg", "path", "/a b", 3, "skipped", "odd")
	out := buf.String()
	if !strings.Contains(out, `path="/a b"`) {
		t.Fatalf("expected quoted value, got %q", out)
	}
	if strings.Contains(out, "skipped") || strings.Contains(out, "odd") {
		t.Fatalf("non-string keys and dangling values must be dropped, got %q", out)
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]Level{
		"debug":   LevelDebug,
		"INFO":    LevelInfo,
		"":        LevelInfo,
		"warning": LevelWarn,
		"error":   LevelError,
	}
	for in, want := range cases {
		got, err := ParseLevel(in)
		if err != nil || got != want {
			t.Fatalf("ParseLevel(%q): expected %v, got %v (%v)", in, want, got, err)
		}
	}
	if _, err := ParseLevel("loud"); err == nil {
		t.Fatalf("expected error for unknown level")
	}
}
