package logger

import (
	"bytes"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]Level{
		"debug":   LevelDebug,
		"DEBUG":   LevelDebug,
		"info":    LevelInfo,
		"warn":    LevelWarn,
		"warning": LevelWarn,
		"error":   LevelError,
		"":        LevelInfo,
		"bogus":   LevelInfo,
		" info ":  LevelInfo,
	}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestLevelGating(t *testing.T) {
	var buf bytes.Buffer
	l := New("test", "warn")
	l.SetOutput(&buf)

	l.Debug("skipped", "below threshold")
	l.Info("skipped", "below threshold")
	l.Warn("kept", "at threshold")
	l.Error("kept", "above threshold")

	out := buf.String()
	if strings.Contains(out, "below threshold") {
		t.Errorf("entries below the minimum level were written:\n%s", out)
	}
	if got := strings.Count(out, "\n"); got != 2 {
		t.Errorf("wrote %d lines, want 2:\n%s", got, out)
	}
}

func TestLineFormat(t *testing.T) {
	var buf bytes.Buffer
	l := New("masker", "debug")
	l.SetOutput(&buf)

	l.Infof("mask_done", "%d values", 7)

	line := buf.String()
	for _, part := range []string{"INFO", "[MASKER]", "mask_done: 7 values"} {
		if !strings.Contains(line, part) {
			t.Errorf("line missing %q: %s", part, line)
		}
	}
}

func TestSetLevel(t *testing.T) {
	var buf bytes.Buffer
	l := New("test", "error")
	l.SetOutput(&buf)

	l.Info("dropped", "still gated")
	l.SetLevel("debug")
	l.Debug("written", "now passes")

	out := buf.String()
	if strings.Contains(out, "still gated") || !strings.Contains(out, "now passes") {
		t.Errorf("SetLevel not applied:\n%s", out)
	}
}
