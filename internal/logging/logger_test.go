package logging

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

func TestPrettyHandlerIncludesComponentPrefix(t *testing.T) {
	var buf bytes.Buffer
	levelVar := new(slog.LevelVar)
	levelVar.Set(slog.LevelInfo)

	logger := slog.New(newPrettyHandler(&buf, levelVar, false))
	logger = NewComponentLogger(logger, "rules")
	logger.Info("pass completed", Int("fields", 3))

	line := buf.String()
	if !strings.Contains(line, "rules: pass completed") {
		t.Fatalf("expected component prefix, got %q", line)
	}
	if !strings.Contains(line, "fields=3") {
		t.Fatalf("expected attribute output, got %q", line)
	}
}

func TestPrettyHandlerQuotesValuesWithSpaces(t *testing.T) {
	var buf bytes.Buffer
	levelVar := new(slog.LevelVar)
	levelVar.Set(slog.LevelInfo)

	logger := slog.New(newPrettyHandler(&buf, levelVar, false))
	logger.Info("resolved", String("alias", "high elf"))

	if !strings.Contains(buf.String(), `alias="high elf"`) {
		t.Fatalf("expected quoted value, got %q", buf.String())
	}
}

func TestPrettyHandlerRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	levelVar := new(slog.LevelVar)
	levelVar.Set(slog.LevelWarn)

	logger := slog.New(newPrettyHandler(&buf, levelVar, false))
	logger.Info("should be suppressed")
	if buf.Len() != 0 {
		t.Fatalf("expected no output below level, got %q", buf.String())
	}
	logger.Warn("visible")
	if !strings.Contains(buf.String(), "WARN visible") {
		t.Fatalf("expected warn line, got %q", buf.String())
	}
}

func TestNoopLoggerDiscards(t *testing.T) {
	logger := NewNop()
	if logger.Enabled(context.Background(), slog.LevelError) {
		t.Fatal("noop logger should not be enabled at any level")
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := New(Options{Format: "yaml"}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}
