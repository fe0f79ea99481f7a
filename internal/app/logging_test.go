package app

import (
	"bytes"
	"strings"
	"testing"
)

func newTestLogger(level LogLevel) (*Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	return NewLogger(LoggerConfig{Level: level, Output: &buf, Prefix: "test"}), &buf
}

func TestLogLevelString(t *testing.T) {
	tests := []struct {
		level    LogLevel
		expected string
	}{
		{LogLevelDebug, "DEBUG"},
		{LogLevelInfo, "INFO"},
		{LogLevelWarn, "WARN"},
		{LogLevelError, "ERROR"},
		{LogLevel(99), "UNKNOWN"},
	}

	for _, tt := range tests {
		if got := tt.level.String(); got != tt.expected {
			t.Errorf("LogLevel(%d).String() = %q, want %q", tt.level, got, tt.expected)
		}
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected LogLevel
	}{
		{"debug", LogLevelDebug},
		{"DEBUG", LogLevelDebug},
		{"Info", LogLevelInfo},
		{"warn", LogLevelWarn},
		{"WARNING", LogLevelWarn},
		{"error", LogLevelError},
		{"unknown", LogLevelInfo},
		{"", LogLevelInfo},
	}

	for _, tt := range tests {
		if got := ParseLogLevel(tt.input); got != tt.expected {
			t.Errorf("ParseLogLevel(%q) = %v, want %v", tt.input, got, tt.expected)
		}
	}
}

func TestNewLoggerDefaultOutput(t *testing.T) {
	logger := NewLogger(LoggerConfig{})
	if logger.sink.output == nil {
		t.Error("expected default output to be set")
	}
}

func TestLoggerLevels(t *testing.T) {
	logger, buf := newTestLogger(LogLevelWarn)

	logger.Debug("debug")
	logger.Info("info")
	logger.Warn("warn")
	logger.Error("error")

	output := buf.String()
	for _, hidden := range []string{"[DEBUG]", "[INFO]"} {
		if strings.Contains(output, hidden) {
			t.Errorf("expected %s to be filtered out", hidden)
		}
	}
	for _, shown := range []string{"[WARN] test: warn", "[ERROR] test: error"} {
		if !strings.Contains(output, shown) {
			t.Errorf("expected %q in output, got: %s", shown, output)
		}
	}
}

func TestLoggerFormat(t *testing.T) {
	logger, buf := newTestLogger(LogLevelInfo)
	logger.Info("saved %s in %d ms", "doc-1", 42)

	if !strings.Contains(buf.String(), "saved doc-1 in 42 ms") {
		t.Errorf("expected formatted message, got: %s", buf.String())
	}
}

func TestLoggerFieldsAreSorted(t *testing.T) {
	logger, buf := newTestLogger(LogLevelInfo)

	logger.WithFields(map[string]any{"zeta": 1, "alpha": "a"}).WithComponent("autosave").Info("tick")

	want := "tick {alpha=a, component=autosave, zeta=1}\n"
	if !strings.HasSuffix(buf.String(), want) {
		t.Errorf("expected suffix %q, got: %s", want, buf.String())
	}
}

func TestLoggerWithFieldDoesNotMutateParent(t *testing.T) {
	logger, buf := newTestLogger(LogLevelInfo)

	_ = logger.WithField("key", "value")
	logger.Info("plain")

	if strings.Contains(buf.String(), "key=value") {
		t.Errorf("parent logger picked up child field: %s", buf.String())
	}
}

func TestDerivedLoggersShareLevel(t *testing.T) {
	logger, buf := newTestLogger(LogLevelError)
	child := logger.WithComponent("history")

	child.Info("hidden")
	if buf.Len() != 0 {
		t.Fatal("expected no output at error level")
	}

	logger.SetLevel(LogLevelInfo)
	child.Info("visible")
	if !strings.Contains(buf.String(), "visible") {
		t.Error("expected child to follow the parent's level")
	}
	if child.Level() != LogLevelInfo {
		t.Errorf("child.Level() = %v, want INFO", child.Level())
	}
}

func TestLoggerSetOutput(t *testing.T) {
	logger, buf1 := newTestLogger(LogLevelInfo)
	var buf2 bytes.Buffer

	logger.Info("to buf1")
	logger.SetOutput(&buf2)
	logger.Info("to buf2")

	if !strings.Contains(buf1.String(), "to buf1") || strings.Contains(buf1.String(), "to buf2") {
		t.Errorf("buf1 = %q", buf1.String())
	}
	if !strings.Contains(buf2.String(), "to buf2") {
		t.Errorf("buf2 = %q", buf2.String())
	}
}

func TestLoggerDisableEnable(t *testing.T) {
	logger, buf := newTestLogger(LogLevelInfo)

	logger.Disable()
	logger.Info("should not appear")
	if buf.Len() != 0 {
		t.Error("expected no output when disabled")
	}

	logger.Enable()
	logger.Info("should appear")
	if buf.Len() == 0 {
		t.Error("expected output when enabled")
	}
}

func TestNullLogger(t *testing.T) {
	NullLogger.Debug("test")
	NullLogger.Info("test")
	NullLogger.WithComponent("x").Warn("test")
	NullLogger.Error("test")
}

func TestGetSetLogger(t *testing.T) {
	logger := GetLogger()
	if logger == nil {
		t.Fatal("GetLogger() returned nil")
	}
	if GetLogger() != logger {
		t.Error("expected GetLogger() to return same instance")
	}

	custom, _ := newTestLogger(LogLevelDebug)
	SetLogger(custom)
	t.Cleanup(func() { SetLogger(logger) })
	if GetLogger() != custom {
		t.Error("expected SetLogger to replace the logger")
	}
}

func TestDefaultLoggerConfig(t *testing.T) {
	cfg := DefaultLoggerConfig()

	if cfg.Level != LogLevelInfo {
		t.Errorf("expected default level INFO, got %v", cfg.Level)
	}
	if cfg.Output == nil {
		t.Error("expected default output to be set")
	}
	if cfg.Prefix != "drawstorm" {
		t.Errorf("expected prefix 'drawstorm', got %q", cfg.Prefix)
	}
}
