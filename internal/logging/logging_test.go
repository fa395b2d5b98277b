package logging

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

func TestNewDisabledIsNop(t *testing.T) {
	var buf bytes.Buffer
	logger := New(false, &buf)
	logger.Info("hidden")
	if buf.Len() != 0 {
		t.Fatalf("expected no output, got %q", buf.String())
	}
}

func TestComponentLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := NewComponentLogger(New(true, &buf), "poller")
	logger.Debug("tick", "n", 1)

	out := buf.String()
	if !strings.Contains(out, FieldComponent+"=poller") {
		t.Errorf("missing component attr: %q", out)
	}
	if !strings.Contains(out, "msg=tick") {
		t.Errorf("missing message: %q", out)
	}
}

func TestComponentLoggerNilBase(t *testing.T) {
	logger := NewComponentLogger(nil, "x")
	logger.Error("dropped") // must not panic
}

func TestNewNopDisabled(t *testing.T) {
	if NewNop().Enabled(context.Background(), slog.LevelError) {
		t.Error("nop logger reports enabled")
	}
}
